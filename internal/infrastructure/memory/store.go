// Package memory is an in-process entity store used in development when
// Postgres is unreachable and as the backing store in tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seronsenapati/STAYLO/internal/domain/entity"
	repo "github.com/seronsenapati/STAYLO/internal/domain/repository"
)

// Store holds all collections behind one lock so aggregate operations
// (listing delete with its reviews) are atomic.
type Store struct {
	mu       sync.RWMutex
	seq      int64
	users    map[string]entity.User
	listings map[string]listingRow
	reviews  map[string]entity.Review
	now      func() time.Time
}

type listingRow struct {
	entity.Listing
	seq int64
}

func NewStore() *Store {
	return &Store{
		users:    map[string]entity.User{},
		listings: map[string]listingRow{},
		reviews:  map[string]entity.Review{},
		now:      time.Now,
	}
}

// SetClock overrides the timestamp source.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Listings() repo.ListingRepository { return &listingRepo{s} }
func (s *Store) Reviews() repo.ReviewRepository   { return &reviewRepo{s} }
func (s *Store) Users() repo.UserRepository       { return &userRepo{s} }

func cloneListing(l entity.Listing) *entity.Listing {
	l.Reviews = slices.Clone(l.Reviews)
	return &l
}

type listingRepo struct{ s *Store }

func (r *listingRepo) GetByID(_ context.Context, id string) (*entity.Listing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.listings[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return cloneListing(row.Listing), nil
}

func (r *listingRepo) GetDetail(_ context.Context, id string) (*entity.ListingDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.listings[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	l := cloneListing(row.Listing)
	l.Owner = r.s.userRef(l.Owner.ID)
	d := &entity.ListingDetail{Listing: *l, ReviewDocs: make([]entity.Review, 0, len(l.Reviews))}
	for _, rid := range l.Reviews {
		rv, ok := r.s.reviews[rid]
		if !ok {
			continue
		}
		rv.Author = r.s.userRef(rv.Author.ID)
		d.ReviewDocs = append(d.ReviewDocs, rv)
	}
	return d, nil
}

func (r *listingRepo) List(_ context.Context, offset, limit int) ([]entity.Listing, int, error) {
	if offset < 0 || limit < 0 {
		return nil, 0, fmt.Errorf("list listings: negative offset %d or limit %d", offset, limit)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := make([]listingRow, 0, len(r.s.listings))
	for _, row := range r.s.listings {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})
	total := len(rows)
	if offset >= total {
		return []entity.Listing{}, total, nil
	}
	end := total
	if limit < total-offset {
		end = offset + limit
	}
	out := make([]entity.Listing, 0, end-offset)
	for _, row := range rows[offset:end] {
		out = append(out, *cloneListing(row.Listing))
	}
	return out, total, nil
}

func (r *listingRepo) Create(_ context.Context, l *entity.Listing) error {
	if l.Owner.ID == "" {
		return &repo.ConstraintError{Messages: []string{"Path `owner` is required."}}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if _, exists := r.s.listings[l.ID]; exists {
		return repo.ErrDuplicate
	}
	now := r.s.now()
	l.CreatedAt, l.UpdatedAt = now, now
	if l.Reviews == nil {
		l.Reviews = []string{}
	}
	r.s.seq++
	r.s.listings[l.ID] = listingRow{Listing: *cloneListing(*l), seq: r.s.seq}
	return nil
}

func (r *listingRepo) Update(_ context.Context, id string, p entity.ListingPatch) (*entity.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.listings[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	row.Title = p.Title
	row.Description = p.Description
	row.Price = p.Price
	row.Location = p.Location
	row.Country = p.Country
	row.UpdatedAt = r.s.now()
	r.s.listings[id] = row
	return cloneListing(row.Listing), nil
}

func (r *listingRepo) UpdateImage(_ context.Context, id string, img entity.Image) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.listings[id]
	if !ok {
		return repo.ErrNotFound
	}
	row.Image = img
	row.UpdatedAt = r.s.now()
	r.s.listings[id] = row
	return nil
}

func (r *listingRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.listings[id]
	if !ok {
		return repo.ErrNotFound
	}
	for _, rid := range row.Reviews {
		delete(r.s.reviews, rid)
	}
	delete(r.s.listings, id)
	return nil
}

func (r *listingRepo) AppendReview(_ context.Context, listingID, reviewID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.listings[listingID]
	if !ok {
		return repo.ErrNotFound
	}
	if !slices.Contains(row.Reviews, reviewID) {
		row.Reviews = append(slices.Clone(row.Reviews), reviewID)
		r.s.listings[listingID] = row
	}
	return nil
}

func (r *listingRepo) PullReview(_ context.Context, listingID, reviewID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.listings[listingID]
	if !ok {
		return repo.ErrNotFound
	}
	row.Reviews = slices.DeleteFunc(slices.Clone(row.Reviews), func(id string) bool { return id == reviewID })
	r.s.listings[listingID] = row
	return nil
}

type reviewRepo struct{ s *Store }

func (r *reviewRepo) GetByID(_ context.Context, id string) (*entity.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rv, ok := r.s.reviews[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &rv, nil
}

func (r *reviewRepo) Create(_ context.Context, rv *entity.Review) error {
	if rv.Author.ID == "" {
		return &repo.ConstraintError{Messages: []string{"Path `author` is required."}}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	if _, exists := r.s.reviews[rv.ID]; exists {
		return repo.ErrDuplicate
	}
	rv.CreatedAt = r.s.now()
	r.s.reviews[rv.ID] = *rv
	return nil
}

func (r *reviewRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reviews[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.reviews, id)
	return nil
}

func (r *reviewRepo) ListOrphans(_ context.Context, olderThan time.Time, limit int) ([]entity.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	referenced := map[string]struct{}{}
	for _, row := range r.s.listings {
		for _, rid := range row.Reviews {
			referenced[rid] = struct{}{}
		}
	}
	var out []entity.Review
	for id, rv := range r.s.reviews {
		if _, ok := referenced[id]; ok || !rv.CreatedAt.Before(olderThan) {
			continue
		}
		out = append(out, rv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Username == u.Username || strings.EqualFold(existing.Email, u.Email) {
			return repo.ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := r.s.now()
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.users[u.ID] = *u
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repo.ErrNotFound
}

// userRef expects the read lock to be held.
func (s *Store) userRef(id string) entity.UserRef {
	if u, ok := s.users[id]; ok {
		return entity.UserRef{ID: u.ID, Username: u.Username}
	}
	return entity.UserRef{ID: id}
}
