package repository

import (
	"context"
	"time"

	"github.com/seronsenapati/STAYLO/internal/domain/entity"
)

// ReviewRepository defines persistence operations for reviews.
type ReviewRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Review, error)
	Create(ctx context.Context, r *entity.Review) error
	Delete(ctx context.Context, id string) error
	// ListOrphans returns reviews created before olderThan that no listing references.
	ListOrphans(ctx context.Context, olderThan time.Time, limit int) ([]entity.Review, error)
}
