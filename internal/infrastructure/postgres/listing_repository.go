package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seronsenapati/STAYLO/internal/domain/entity"
	"github.com/seronsenapati/STAYLO/internal/domain/repository"
)

const listingColumns = `
	l.id::text, l.title, l.description, l.price, l.location, l.country,
	l.image_url, l.image_filename, l.geometry_type, l.longitude, l.latitude,
	l.owner_id::text, l.review_ids::text[], l.created_at, l.updated_at`

type ListingRepository struct {
	pool *pgxpool.Pool
}

func NewListingRepository(pool *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{pool: pool}
}

func scanListing(row pgx.Row, extra ...any) (*entity.Listing, error) {
	l := &entity.Listing{}
	dest := []any{
		&l.ID, &l.Title, &l.Description, &l.Price, &l.Location, &l.Country,
		&l.Image.URL, &l.Image.Filename, &l.Geometry.Type, &l.Geometry.Coordinates[0], &l.Geometry.Coordinates[1],
		&l.Owner.ID, &l.Reviews, &l.CreatedAt, &l.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, mapError(err)
	}
	if l.Reviews == nil {
		l.Reviews = []string{}
	}
	return l, nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT `+listingColumns+` FROM listings l WHERE l.id = $1`, id)
	return scanListing(row)
}

func (r *ListingRepository) GetDetail(ctx context.Context, id string) (*entity.ListingDetail, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	var ownerName *string
	row := r.pool.QueryRow(ctx, `
		SELECT `+listingColumns+`, u.username
		FROM listings l
		LEFT JOIN users u ON u.id = l.owner_id
		WHERE l.id = $1
	`, id)
	l, err := scanListing(row, &ownerName)
	if err != nil {
		return nil, err
	}
	if ownerName != nil {
		l.Owner.Username = *ownerName
	}

	rows, err := r.pool.Query(ctx, `
		SELECT rv.id::text, rv.comment, rv.rating, rv.author_id::text, COALESCE(u.username, ''), rv.created_at
		FROM unnest($1::uuid[]) WITH ORDINALITY AS ref(id, ord)
		JOIN reviews rv ON rv.id = ref.id
		LEFT JOIN users u ON u.id = rv.author_id
		ORDER BY ref.ord
	`, l.Reviews)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	d := &entity.ListingDetail{Listing: *l, ReviewDocs: []entity.Review{}}
	for rows.Next() {
		var rv entity.Review
		if err := rows.Scan(&rv.ID, &rv.Comment, &rv.Rating, &rv.Author.ID, &rv.Author.Username, &rv.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		d.ReviewDocs = append(d.ReviewDocs, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return d, nil
}

func (r *ListingRepository) List(ctx context.Context, offset, limit int) ([]entity.Listing, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM listings`).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+listingColumns+`
		FROM listings l
		ORDER BY l.created_at DESC, l.id DESC
		OFFSET $1 LIMIT $2
	`, offset, limit)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	out := []entity.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err)
	}
	return out, total, nil
}

func (r *ListingRepository) Create(ctx context.Context, l *entity.Listing) error {
	if l.Geometry.Type == "" {
		l.Geometry.Type = entity.GeometryPoint
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO listings (title, description, price, location, country,
			image_url, image_filename, geometry_type, longitude, latitude, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id::text, created_at, updated_at
	`, l.Title, l.Description, l.Price, l.Location, l.Country,
		l.Image.URL, l.Image.Filename, l.Geometry.Type, l.Geometry.Coordinates[0], l.Geometry.Coordinates[1], l.Owner.ID)

	if err := row.Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return mapError(err)
	}
	l.Reviews = []string{}
	return nil
}

// Update applies the patch; owner, geometry and review references stay untouched.
func (r *ListingRepository) Update(ctx context.Context, id string, p entity.ListingPatch) (*entity.Listing, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE listings l
		SET title = $2, description = $3, price = $4, location = $5, country = $6, updated_at = now()
		WHERE l.id = $1
		RETURNING `+listingColumns,
		id, p.Title, p.Description, p.Price, p.Location, p.Country)
	return scanListing(row)
}

func (r *ListingRepository) UpdateImage(ctx context.Context, id string, img entity.Image) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	res, err := r.pool.Exec(ctx, `
		UPDATE listings
		SET image_url = $2, image_filename = $3, updated_at = now()
		WHERE id = $1
	`, id, img.URL, img.Filename)
	if err != nil {
		return mapError(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the listing and every review it references in one transaction.
func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var reviewIDs []string
		if err := tx.QueryRow(ctx,
			`DELETE FROM listings WHERE id = $1 RETURNING review_ids::text[]`, id,
		).Scan(&reviewIDs); err != nil {
			return err
		}
		if len(reviewIDs) == 0 {
			return nil
		}
		_, err := tx.Exec(ctx, `DELETE FROM reviews WHERE id = ANY($1::uuid[])`, reviewIDs)
		return err
	})
	return mapError(err)
}

func (r *ListingRepository) AppendReview(ctx context.Context, listingID, reviewID string) error {
	if !validID(listingID) || !validID(reviewID) {
		return repository.ErrNotFound
	}
	res, err := r.pool.Exec(ctx, `
		UPDATE listings
		SET review_ids = CASE
				WHEN $2::uuid = ANY(review_ids) THEN review_ids
				ELSE array_append(review_ids, $2::uuid)
			END,
			updated_at = now()
		WHERE id = $1
	`, listingID, reviewID)
	if err != nil {
		return mapError(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ListingRepository) PullReview(ctx context.Context, listingID, reviewID string) error {
	if !validID(listingID) || !validID(reviewID) {
		return repository.ErrNotFound
	}
	res, err := r.pool.Exec(ctx, `
		UPDATE listings
		SET review_ids = array_remove(review_ids, $2::uuid), updated_at = now()
		WHERE id = $1
	`, listingID, reviewID)
	if err != nil {
		return mapError(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.ListingRepository = (*ListingRepository)(nil)
