package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/seronsenapati/STAYLO/internal/domain/apperr"
	"github.com/seronsenapati/STAYLO/internal/domain/entity"
	repo "github.com/seronsenapati/STAYLO/internal/domain/repository"
)

const (
	msgLoginRequired    = "You must be logged in to continue"
	msgListingNotFound  = "Listing not found"
	msgListingMissing   = "Listing you requested for does not exist"
	msgListingForbidden = "You do not have permission to edit this listing"
	msgReviewNotFound   = "Review not found"
	msgReviewForbidden  = "You do not have permission to delete this review"
	msgStoreUnavailable = "Something went wrong. Please try again."
)

// Guard runs the access-control checks. Every failing check queues a flash
// message on the RequestContext and returns the redirect to follow together
// with the classified error; a nil error means the request may proceed.
type Guard struct {
	Listings repo.ListingRepository
	Reviews  repo.ReviewRepository
	Logger   *logrus.Logger
}

func NewGuard(listings repo.ListingRepository, reviews repo.ReviewRepository, logger *logrus.Logger) *Guard {
	return &Guard{Listings: listings, Reviews: reviews, Logger: logger}
}

func (g *Guard) RequireAuthenticated(rc *RequestContext) (Outcome, error) {
	if rc.Identity != nil && rc.Identity.ID != "" {
		return Outcome{}, nil
	}
	rc.RedirectAfterLogin = rc.Path
	rc.Flash(FlashError, msgLoginRequired)
	return redirectTo("/login"), apperr.New(apperr.Unauthenticated, msgLoginRequired)
}

// RequireListingOwner loads the listing and checks the bound identity owns it.
// A missing owner id or a missing identity never passes.
func (g *Guard) RequireListingOwner(ctx context.Context, rc *RequestContext, listingID string) (*entity.Listing, Outcome, error) {
	l, err := g.Listings.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			rc.Flash(FlashError, msgListingNotFound)
			return nil, redirectTo("/listings"), apperr.New(apperr.NotFound, msgListingNotFound)
		}
		out, serr := g.storeFailure(rc, err, logrus.Fields{"listing_id": listingID})
		return nil, out, serr
	}
	uid := rc.UserID()
	if uid == "" || l.Owner.ID == "" || l.Owner.ID != uid {
		rc.Flash(FlashError, msgListingForbidden)
		return nil, redirectTo(listingPath(listingID)), apperr.New(apperr.Forbidden, msgListingForbidden)
	}
	return l, Outcome{}, nil
}

// RequireReviewAuthor loads the review and checks the bound identity wrote it.
func (g *Guard) RequireReviewAuthor(ctx context.Context, rc *RequestContext, listingID, reviewID string) (*entity.Review, Outcome, error) {
	r, err := g.Reviews.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			rc.Flash(FlashError, msgReviewNotFound)
			return nil, redirectTo(listingPath(listingID)), apperr.New(apperr.NotFound, msgReviewNotFound)
		}
		out, serr := g.storeFailure(rc, err, logrus.Fields{"listing_id": listingID, "review_id": reviewID})
		return nil, out, serr
	}
	uid := rc.UserID()
	if uid == "" || r.Author.ID == "" || r.Author.ID != uid {
		rc.Flash(FlashError, msgReviewForbidden)
		return nil, redirectTo(listingPath(listingID)), apperr.New(apperr.Forbidden, msgReviewForbidden)
	}
	return r, Outcome{}, nil
}

func (g *Guard) storeFailure(rc *RequestContext, err error, fields logrus.Fields) (Outcome, error) {
	if g.Logger != nil {
		g.Logger.WithError(err).WithFields(fields).Error("access check: store lookup failed")
	}
	rc.Flash(FlashError, msgStoreUnavailable)
	return redirectTo("/listings"), apperr.Wrap(apperr.StoreUnavailable, msgStoreUnavailable, err)
}
