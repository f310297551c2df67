package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/seronsenapati/STAYLO/internal/domain/apperr"
	"github.com/seronsenapati/STAYLO/internal/domain/entity"
	"github.com/seronsenapati/STAYLO/internal/domain/gateway"
	repo "github.com/seronsenapati/STAYLO/internal/domain/repository"
	"github.com/seronsenapati/STAYLO/pkg/metrics"
	"github.com/seronsenapati/STAYLO/pkg/validation"
)

const (
	msgReviewCreated      = "Review submitted successfully!"
	msgReviewDeleted      = "Successfully deleted review!"
	msgReviewCreateFailed = "Error creating review. Please try again."
	msgReviewDeleteFailed = "Error deleting review. Please try again."
)

const (
	opReviewCreate = "review.create"
	opReviewDelete = "review.delete"

	degradedReviewOrphaned = "review_orphaned"
)

// ReviewService orchestrates the two-step review writes. The steps are
// ordered so that a listing never references a review that does not exist;
// a failure between them leaves an orphaned review, which is reported and
// surfaced but not repaired here.
type ReviewService struct {
	Listings repo.ListingRepository
	Reviews  repo.ReviewRepository
	Guard    *Guard
	Events   gateway.EventPublisher
	Metrics  *metrics.Recorder
	Logger   *logrus.Logger
}

func NewReviewService(listings repo.ListingRepository, reviews repo.ReviewRepository, guard *Guard, events gateway.EventPublisher, m *metrics.Recorder, logger *logrus.Logger) *ReviewService {
	return &ReviewService{Listings: listings, Reviews: reviews, Guard: guard, Events: events, Metrics: m, Logger: logger}
}

func (s *ReviewService) Create(ctx context.Context, rc *RequestContext, listingID string, sub validation.ReviewSubmission) (Outcome, error) {
	back := listingPath(listingID)
	if out, err := s.Guard.RequireAuthenticated(rc); err != nil {
		s.Metrics.Mutation(opReviewCreate, metrics.ResultDenied)
		return out, err
	}
	in, res := validation.ValidateReview(sub)
	if !res.Valid() {
		s.Metrics.Mutation(opReviewCreate, metrics.ResultInvalid)
		rc.Flash(FlashError, res.Message())
		return redirectTo(back), apperr.Validation(res.Errors)
	}

	l, err := s.Listings.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return s.failed(rc, opReviewCreate, "/listings", msgListingNotFound, apperr.New(apperr.NotFound, msgListingNotFound))
		}
		s.Logger.WithError(err).WithField("listing_id", listingID).Error("load listing for review failed")
		return s.failed(rc, opReviewCreate, back, msgReviewCreateFailed, apperr.Wrap(apperr.StoreUnavailable, msgReviewCreateFailed, err))
	}

	r := &entity.Review{
		Comment: in.Comment,
		Rating:  in.Rating,
		Author:  entity.UserRef{ID: rc.Identity.ID, Username: rc.Identity.Username},
	}
	if err := s.Reviews.Create(ctx, r); err != nil {
		s.Logger.WithError(err).WithField("listing_id", l.ID).Error("create review failed")
		return s.failed(rc, opReviewCreate, back, msgReviewCreateFailed, apperr.Wrap(storeKind(err), msgReviewCreateFailed, err))
	}
	if err := s.Listings.AppendReview(ctx, l.ID, r.ID); err != nil {
		s.reportOrphan(ctx, rc, l.ID, r.ID, "listing reference not appended", err)
		return s.failed(rc, opReviewCreate, back, msgReviewCreateFailed, apperr.Wrap(storeKind(err), msgReviewCreateFailed, err))
	}

	s.Metrics.Mutation(opReviewCreate, metrics.ResultSuccess)
	publish(ctx, s.Events, s.Logger, gateway.Event{Type: gateway.EventReviewCreated, ListingID: l.ID, ReviewID: r.ID, UserID: rc.UserID()})
	rc.Flash(FlashSuccess, msgReviewCreated)
	return redirectTo(back), nil
}

func (s *ReviewService) Delete(ctx context.Context, rc *RequestContext, listingID, reviewID string) (Outcome, error) {
	back := listingPath(listingID)
	if out, err := s.Guard.RequireAuthenticated(rc); err != nil {
		s.Metrics.Mutation(opReviewDelete, metrics.ResultDenied)
		return out, err
	}
	if _, out, err := s.Guard.RequireReviewAuthor(ctx, rc, listingID, reviewID); err != nil {
		s.Metrics.Mutation(opReviewDelete, metrics.ResultDenied)
		return out, err
	}

	l, err := s.Listings.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return s.failed(rc, opReviewDelete, "/listings", msgListingNotFound, apperr.New(apperr.NotFound, msgListingNotFound))
		}
		s.Logger.WithError(err).WithField("listing_id", listingID).Error("load listing for review delete failed")
		return s.failed(rc, opReviewDelete, back, msgReviewDeleteFailed, apperr.Wrap(apperr.StoreUnavailable, msgReviewDeleteFailed, err))
	}
	if !l.HasReview(reviewID) {
		return s.failed(rc, opReviewDelete, back, msgReviewNotFound, apperr.New(apperr.NotFound, msgReviewNotFound))
	}

	if err := s.Listings.PullReview(ctx, listingID, reviewID); err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"listing_id": listingID, "review_id": reviewID}).Error("pull review reference failed")
		return s.failed(rc, opReviewDelete, back, msgReviewDeleteFailed, apperr.Wrap(storeKind(err), msgReviewDeleteFailed, err))
	}
	if err := s.Reviews.Delete(ctx, reviewID); err != nil {
		s.reportOrphan(ctx, rc, listingID, reviewID, "review document not deleted", err)
		return s.failed(rc, opReviewDelete, back, msgReviewDeleteFailed, apperr.Wrap(storeKind(err), msgReviewDeleteFailed, err))
	}

	s.Metrics.Mutation(opReviewDelete, metrics.ResultSuccess)
	publish(ctx, s.Events, s.Logger, gateway.Event{Type: gateway.EventReviewDeleted, ListingID: listingID, ReviewID: reviewID, UserID: rc.UserID()})
	rc.Flash(FlashSuccess, msgReviewDeleted)
	return redirectTo(back), nil
}

func (s *ReviewService) failed(rc *RequestContext, op, back, msg string, err error) (Outcome, error) {
	s.Metrics.Mutation(op, metrics.ResultFailure)
	rc.Flash(FlashError, msg)
	return redirectTo(back), err
}

func (s *ReviewService) reportOrphan(ctx context.Context, rc *RequestContext, listingID, reviewID, reason string, cause error) {
	s.Metrics.Degraded(degradedReviewOrphaned)
	s.Logger.WithError(cause).WithFields(logrus.Fields{
		"listing_id": listingID,
		"review_id":  reviewID,
		"reason":     reason,
	}).Warn("review left orphaned")
	publish(ctx, s.Events, s.Logger, gateway.Event{
		Type:      gateway.EventReviewOrphaned,
		ListingID: listingID,
		ReviewID:  reviewID,
		UserID:    rc.UserID(),
		Reason:    reason,
	})
}

func storeKind(err error) apperr.Kind {
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.NotFound
	}
	return apperr.StoreUnavailable
}
