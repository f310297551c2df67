package application

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/seronsenapati/STAYLO/internal/domain/apperr"
	"github.com/seronsenapati/STAYLO/internal/domain/entity"
	"github.com/seronsenapati/STAYLO/internal/domain/gateway"
	repo "github.com/seronsenapati/STAYLO/internal/domain/repository"
	"github.com/seronsenapati/STAYLO/pkg/metrics"
	"github.com/seronsenapati/STAYLO/pkg/validation"
)

// PageSize is the number of listings on one index page.
const PageSize = 12

const (
	msgMissingImage   = "Please upload an image"
	msgListingCreated = "Successfully created a new listing!"
	msgListingUpdated = "Successfully updated listing!"
	msgListingDeleted = "Successfully deleted listing!"
	msgCreateFailed   = "Error creating listing. Please try again."
	msgUpdateFailed   = "Error updating listing. Please try again."
	msgDeleteFailed   = "Error deleting listing. Please try again."
)

const (
	opListingCreate = "listing.create"
	opListingUpdate = "listing.update"
	opListingDelete = "listing.delete"
)

// ListingForm is a listing submission plus the optional uploaded image.
type ListingForm struct {
	Listing validation.ListingSubmission
	Image   *gateway.Upload
}

// ListingService orchestrates listing reads and mutations. Every mutation
// method returns the Outcome to follow; the error only classifies a failure
// that has already been turned into a flash message.
type ListingService struct {
	Listings repo.ListingRepository
	Guard    *Guard
	Resolver *Resolver
	Events   gateway.EventPublisher
	Metrics  *metrics.Recorder
	Logger   *logrus.Logger
}

func NewListingService(listings repo.ListingRepository, guard *Guard, resolver *Resolver, events gateway.EventPublisher, m *metrics.Recorder, logger *logrus.Logger) *ListingService {
	return &ListingService{Listings: listings, Guard: guard, Resolver: resolver, Events: events, Metrics: m, Logger: logger}
}

func (s *ListingService) Index(ctx context.Context, page int) (Outcome, error) {
	if page < 1 {
		page = 1
	}
	offset := math.MaxInt
	if page-1 <= math.MaxInt/PageSize {
		offset = (page - 1) * PageSize
	}
	items, total, err := s.Listings.List(ctx, offset, PageSize)
	if err != nil {
		s.Logger.WithError(err).Error("list listings failed")
		return Outcome{}, apperr.Wrap(apperr.StoreUnavailable, "Could not load listings", err)
	}
	totalPages := (total + PageSize - 1) / PageSize
	return render("listings/index", entity.ListingPage{
		Listings:    items,
		CurrentPage: page,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}), nil
}

func (s *ListingService) NewForm(rc *RequestContext) (Outcome, error) {
	if out, err := s.Guard.RequireAuthenticated(rc); err != nil {
		return out, err
	}
	return render("listings/new", nil), nil
}

func (s *ListingService) Show(ctx context.Context, rc *RequestContext, id string) (Outcome, error) {
	detail, err := s.Listings.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			rc.Flash(FlashError, msgListingMissing)
			return redirectTo("/listings"), apperr.New(apperr.NotFound, msgListingMissing)
		}
		s.Logger.WithError(err).WithField("listing_id", id).Error("load listing detail failed")
		return Outcome{}, apperr.Wrap(apperr.StoreUnavailable, "Could not load listing", err)
	}
	return render("listings/show", map[string]any{
		"listing": detail,
		"isOwner": rc.UserID() != "" && rc.UserID() == detail.Owner.ID,
	}), nil
}

func (s *ListingService) EditForm(ctx context.Context, rc *RequestContext, id string) (Outcome, error) {
	if out, err := s.Guard.RequireAuthenticated(rc); err != nil {
		return out, err
	}
	l, out, err := s.Guard.RequireListingOwner(ctx, rc, id)
	if err != nil {
		return out, err
	}
	return render("listings/edit", map[string]any{
		"listing":          l,
		"originalImageUrl": ThumbnailURL(l.Image),
	}), nil
}

func (s *ListingService) Create(ctx context.Context, rc *RequestContext, form ListingForm) (Outcome, error) {
	const back = "/listings/new"
	if out, err := s.Guard.RequireAuthenticated(rc); err != nil {
		s.Metrics.Mutation(opListingCreate, metrics.ResultDenied)
		return out, err
	}
	if form.Image == nil {
		s.Metrics.Mutation(opListingCreate, metrics.ResultInvalid)
		rc.Flash(FlashError, msgMissingImage)
		return redirectTo(back), apperr.New(apperr.MissingImage, msgMissingImage)
	}
	in, res := validation.ValidateListing(form.Listing)
	if !res.Valid() {
		return s.invalid(rc, opListingCreate, back, res)
	}

	img, err := s.Resolver.StoreImage(ctx, form.Image)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", rc.UserID()).Error("store listing image failed")
		return s.failed(rc, opListingCreate, back, msgCreateFailed, apperr.Wrap(apperr.Unhandled, msgCreateFailed, err))
	}

	l := &entity.Listing{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Location:    in.Location,
		Country:     in.Country,
		Image:       img,
		Geometry:    s.Resolver.Geometry(ctx, in.Location),
		Owner:       entity.UserRef{ID: rc.Identity.ID, Username: rc.Identity.Username},
	}
	if err := s.Listings.Create(ctx, l); err != nil {
		return s.storeFailed(rc, opListingCreate, back, msgCreateFailed, err)
	}

	s.Metrics.Mutation(opListingCreate, metrics.ResultSuccess)
	publish(ctx, s.Events, s.Logger, gateway.Event{Type: gateway.EventListingCreated, ListingID: l.ID, UserID: rc.UserID()})
	rc.Flash(FlashSuccess, msgListingCreated)
	return redirectTo("/listings"), nil
}

func (s *ListingService) Update(ctx context.Context, rc *RequestContext, id string, form ListingForm) (Outcome, error) {
	back := listingPath(id) + "/edit"
	if out, err := s.Guard.RequireAuthenticated(rc); err != nil {
		s.Metrics.Mutation(opListingUpdate, metrics.ResultDenied)
		return out, err
	}
	if _, out, err := s.Guard.RequireListingOwner(ctx, rc, id); err != nil {
		s.Metrics.Mutation(opListingUpdate, metrics.ResultDenied)
		return out, err
	}
	in, res := validation.ValidateListing(form.Listing)
	if !res.Valid() {
		return s.invalid(rc, opListingUpdate, back, res)
	}

	var img *entity.Image
	if form.Image != nil {
		stored, err := s.Resolver.StoreImage(ctx, form.Image)
		if err != nil {
			s.Logger.WithError(err).WithField("listing_id", id).Error("store listing image failed")
			return s.failed(rc, opListingUpdate, back, msgUpdateFailed, apperr.Wrap(apperr.Unhandled, msgUpdateFailed, err))
		}
		img = &stored
	}

	patch := entity.ListingPatch{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Location:    in.Location,
		Country:     in.Country,
	}
	if _, err := s.Listings.Update(ctx, id, patch); err != nil {
		return s.storeFailed(rc, opListingUpdate, back, msgUpdateFailed, err)
	}
	if img != nil {
		if err := s.Listings.UpdateImage(ctx, id, *img); err != nil {
			return s.storeFailed(rc, opListingUpdate, back, msgUpdateFailed, err)
		}
	}

	s.Metrics.Mutation(opListingUpdate, metrics.ResultSuccess)
	publish(ctx, s.Events, s.Logger, gateway.Event{Type: gateway.EventListingUpdated, ListingID: id, UserID: rc.UserID()})
	rc.Flash(FlashSuccess, msgListingUpdated)
	return redirectTo(listingPath(id)), nil
}

func (s *ListingService) Delete(ctx context.Context, rc *RequestContext, id string) (Outcome, error) {
	if out, err := s.Guard.RequireAuthenticated(rc); err != nil {
		s.Metrics.Mutation(opListingDelete, metrics.ResultDenied)
		return out, err
	}
	if _, out, err := s.Guard.RequireListingOwner(ctx, rc, id); err != nil {
		s.Metrics.Mutation(opListingDelete, metrics.ResultDenied)
		return out, err
	}
	if err := s.Listings.Delete(ctx, id); err != nil {
		return s.storeFailed(rc, opListingDelete, listingPath(id), msgDeleteFailed, err)
	}

	s.Metrics.Mutation(opListingDelete, metrics.ResultSuccess)
	publish(ctx, s.Events, s.Logger, gateway.Event{Type: gateway.EventListingDeleted, ListingID: id, UserID: rc.UserID()})
	rc.Flash(FlashSuccess, msgListingDeleted)
	return redirectTo("/listings"), nil
}

func (s *ListingService) invalid(rc *RequestContext, op, back string, res validation.Result) (Outcome, error) {
	s.Metrics.Mutation(op, metrics.ResultInvalid)
	rc.Flash(FlashError, res.Message())
	return redirectTo(back), apperr.Validation(res.Errors)
}

func (s *ListingService) failed(rc *RequestContext, op, back, msg string, err error) (Outcome, error) {
	s.Metrics.Mutation(op, metrics.ResultFailure)
	rc.Flash(FlashError, msg)
	return redirectTo(back), err
}

// storeFailed maps a store error from a write: a vanished listing goes back
// to the index, a constraint rejection shows the store's messages, anything
// else gets the generic message.
func (s *ListingService) storeFailed(rc *RequestContext, op, back, generic string, err error) (Outcome, error) {
	var ce *repo.ConstraintError
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return s.failed(rc, op, "/listings", msgListingNotFound, apperr.Wrap(apperr.NotFound, msgListingNotFound, err))
	case errors.As(err, &ce):
		msg := "Validation Error: " + strings.Join(ce.Messages, ", ")
		s.Metrics.Mutation(op, metrics.ResultInvalid)
		rc.Flash(FlashError, msg)
		return redirectTo(back), &apperr.Error{Kind: apperr.ValidationFailed, Msg: msg, Fields: ce.Messages, Err: err}
	default:
		s.Logger.WithError(err).WithFields(logrus.Fields{"operation": op, "user_id": rc.UserID()}).Error("listing store write failed")
		return s.failed(rc, op, back, generic, apperr.Wrap(apperr.StoreUnavailable, generic, err))
	}
}
