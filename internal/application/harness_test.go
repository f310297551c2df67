package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/seronsenapati/STAYLO/internal/domain/entity"
	"github.com/seronsenapati/STAYLO/internal/domain/gateway"
	repo "github.com/seronsenapati/STAYLO/internal/domain/repository"
	"github.com/seronsenapati/STAYLO/internal/infrastructure/memory"
	"github.com/seronsenapati/STAYLO/pkg/helpers"
	"github.com/seronsenapati/STAYLO/pkg/metrics"
)

var errStoreDown = errors.New("connection refused")

// flakyListings injects failures into selected listing operations.
type flakyListings struct {
	repo.ListingRepository
	getErr, createErr, updateErr, deleteErr, appendErr, pullErr error
}

func (f *flakyListings) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.ListingRepository.GetByID(ctx, id)
}

func (f *flakyListings) Create(ctx context.Context, l *entity.Listing) error {
	if f.createErr != nil {
		return f.createErr
	}
	return f.ListingRepository.Create(ctx, l)
}

func (f *flakyListings) Update(ctx context.Context, id string, p entity.ListingPatch) (*entity.Listing, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.ListingRepository.Update(ctx, id, p)
}

func (f *flakyListings) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.ListingRepository.Delete(ctx, id)
}

func (f *flakyListings) AppendReview(ctx context.Context, listingID, reviewID string) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	return f.ListingRepository.AppendReview(ctx, listingID, reviewID)
}

func (f *flakyListings) PullReview(ctx context.Context, listingID, reviewID string) error {
	if f.pullErr != nil {
		return f.pullErr
	}
	return f.ListingRepository.PullReview(ctx, listingID, reviewID)
}

type flakyReviews struct {
	repo.ReviewRepository
	createErr, deleteErr error
}

func (f *flakyReviews) Create(ctx context.Context, r *entity.Review) error {
	if f.createErr != nil {
		return f.createErr
	}
	return f.ReviewRepository.Create(ctx, r)
}

func (f *flakyReviews) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.ReviewRepository.Delete(ctx, id)
}

type stubGeocoder struct {
	points []entity.Geometry
	err    error
	calls  int
}

func (g *stubGeocoder) ForwardGeocode(_ context.Context, _ string, _ int) ([]entity.Geometry, error) {
	g.calls++
	return g.points, g.err
}

type stubImages struct {
	name   string
	stored gateway.StoredImage
	err    error
	calls  int
}

func (s *stubImages) Upload(_ context.Context, u *gateway.Upload) (gateway.StoredImage, error) {
	s.calls++
	if s.err != nil {
		return gateway.StoredImage{}, s.err
	}
	rc, err := u.Open()
	if err != nil {
		return gateway.StoredImage{}, err
	}
	_ = rc.Close()
	return s.stored, nil
}

func (s *stubImages) Name() string { return s.name }

type recordingEvents struct {
	mu     sync.Mutex
	events []gateway.Event
}

func (r *recordingEvents) Publish(_ context.Context, evt gateway.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func (r *recordingEvents) ofType(t string) []gateway.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []gateway.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type harness struct {
	store    *memory.Store
	listings *flakyListings
	reviews  *flakyReviews
	geocoder *stubGeocoder
	images   *stubImages
	events   *recordingEvents
	metrics  *metrics.Recorder

	guard      *Guard
	listingSvc *ListingService
	reviewSvc  *ReviewService
	userSvc    *UserService

	owner *entity.User
	other *entity.User
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := helpers.NewDiscardLogger()
	h := &harness{
		store:    memory.NewStore(),
		geocoder: &stubGeocoder{points: []entity.Geometry{{Type: entity.GeometryPoint, Coordinates: [2]float64{73.8278, 15.4989}}}},
		images: &stubImages{
			name:   "cloudinary",
			stored: gateway.StoredImage{Path: "https://res.cloudinary.com/demo/image/upload/v1/staylo_DEV/cabin.jpg", Filename: "staylo_DEV/cabin"},
		},
		events:  &recordingEvents{},
		metrics: metrics.New(prometheus.NewRegistry()),
	}
	h.listings = &flakyListings{ListingRepository: h.store.Listings()}
	h.reviews = &flakyReviews{ReviewRepository: h.store.Reviews()}
	h.guard = NewGuard(h.listings, h.reviews, logger)
	resolver := NewResolver(h.geocoder, h.images, h.events, h.metrics, logger)
	h.listingSvc = NewListingService(h.listings, h.guard, resolver, h.events, h.metrics, logger)
	h.reviewSvc = NewReviewService(h.listings, h.reviews, h.guard, h.events, h.metrics, logger)
	h.userSvc = NewUserService(h.store.Users(), helpers.NewJWTManager("test-secret", time.Hour, "staylo"), logger)

	h.owner = h.addUser(t, "alice")
	h.other = h.addUser(t, "bob")
	return h
}

var (
	secretHashOnce sync.Once
	secretHash     string
)

// addUser creates a user whose password is "secret1".
func (h *harness) addUser(t *testing.T, name string) *entity.User {
	t.Helper()
	secretHashOnce.Do(func() {
		secretHash, _ = helpers.HashPassword("secret1")
	})
	require.NotEmpty(t, secretHash)
	u := &entity.User{Username: name, Email: name + "@example.com", Password: secretHash}
	require.NoError(t, h.store.Users().Create(context.Background(), u))
	return u
}

func asUser(u *entity.User, path string) *RequestContext {
	return NewRequestContext(&Identity{ID: u.ID, Username: u.Username}, path)
}

func anonymous(path string) *RequestContext {
	return NewRequestContext(nil, path)
}

func (h *harness) seedListing(t *testing.T, owner *entity.User) *entity.Listing {
	t.Helper()
	l := &entity.Listing{
		Title:    "Cabin",
		Price:    100,
		Location: "Goa",
		Country:  "India",
		Image:    entity.Image{URL: "https://res.cloudinary.com/demo/image/upload/v1/staylo_DEV/old.jpg", Filename: "staylo_DEV/old"},
		Geometry: entity.FallbackGeometry(),
		Owner:    entity.UserRef{ID: owner.ID},
	}
	require.NoError(t, h.store.Listings().Create(context.Background(), l))
	return l
}

func (h *harness) seedReview(t *testing.T, listingID string, author *entity.User) *entity.Review {
	t.Helper()
	ctx := context.Background()
	r := &entity.Review{Comment: "Lovely stay", Rating: 5, Author: entity.UserRef{ID: author.ID}}
	require.NoError(t, h.store.Reviews().Create(ctx, r))
	require.NoError(t, h.store.Listings().AppendReview(ctx, listingID, r.ID))
	return r
}

func jpegUpload() *gateway.Upload {
	return &gateway.Upload{
		Filename:    "cabin.jpg",
		ContentType: "image/jpeg",
		Size:        3,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("img")), nil
		},
	}
}

func lastMessage(rc *RequestContext) Message {
	msgs := rc.Messages()
	if len(msgs) == 0 {
		return Message{}
	}
	return msgs[len(msgs)-1]
}
