package repository

import (
	"context"

	"github.com/seronsenapati/STAYLO/internal/domain/entity"
)

// ListingRepository defines persistence operations for listings.
type ListingRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Listing, error)
	// GetDetail returns the listing with owner and reviews (with authors) populated.
	GetDetail(ctx context.Context, id string) (*entity.ListingDetail, error)
	// List returns one page ordered by creation time, newest first, plus the total count.
	List(ctx context.Context, offset, limit int) ([]entity.Listing, int, error)
	Create(ctx context.Context, l *entity.Listing) error
	Update(ctx context.Context, id string, patch entity.ListingPatch) (*entity.Listing, error)
	UpdateImage(ctx context.Context, id string, img entity.Image) error
	// Delete removes the listing together with the reviews it references.
	Delete(ctx context.Context, id string) error
	// AppendReview adds reviewID to the end of the review list unless already present.
	AppendReview(ctx context.Context, listingID, reviewID string) error
	// PullReview removes every occurrence of reviewID from the review list.
	PullReview(ctx context.Context, listingID, reviewID string) error
}
