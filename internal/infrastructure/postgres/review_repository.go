package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seronsenapati/STAYLO/internal/domain/entity"
	"github.com/seronsenapati/STAYLO/internal/domain/repository"
)

type ReviewRepository struct {
	pool *pgxpool.Pool
}

func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	rv := &entity.Review{}
	row := r.pool.QueryRow(ctx, `
		SELECT rv.id::text, rv.comment, rv.rating, rv.author_id::text, COALESCE(u.username, ''), rv.created_at
		FROM reviews rv
		LEFT JOIN users u ON u.id = rv.author_id
		WHERE rv.id = $1
	`, id)
	if err := row.Scan(&rv.ID, &rv.Comment, &rv.Rating, &rv.Author.ID, &rv.Author.Username, &rv.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	return rv, nil
}

func (r *ReviewRepository) Create(ctx context.Context, rv *entity.Review) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO reviews (comment, rating, author_id)
		VALUES ($1, $2, $3)
		RETURNING id::text, created_at
	`, rv.Comment, rv.Rating, rv.Author.ID)
	return mapError(row.Scan(&rv.ID, &rv.CreatedAt))
}

func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	res, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ReviewRepository) ListOrphans(ctx context.Context, olderThan time.Time, limit int) ([]entity.Review, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT rv.id::text, rv.comment, rv.rating, rv.author_id::text, rv.created_at
		FROM reviews rv
		WHERE rv.created_at < $1
		  AND NOT EXISTS (SELECT 1 FROM listings l WHERE rv.id = ANY(l.review_ids))
		ORDER BY rv.created_at
		LIMIT $2
	`, olderThan, limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []entity.Review
	for rows.Next() {
		var rv entity.Review
		if err := rows.Scan(&rv.ID, &rv.Comment, &rv.Rating, &rv.Author.ID, &rv.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		out = append(out, rv)
	}
	return out, mapError(rows.Err())
}

var _ repository.ReviewRepository = (*ReviewRepository)(nil)
