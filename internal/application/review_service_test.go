package application

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seronsenapati/STAYLO/internal/domain/apperr"
	"github.com/seronsenapati/STAYLO/internal/domain/gateway"
	repo "github.com/seronsenapati/STAYLO/internal/domain/repository"
	"github.com/seronsenapati/STAYLO/pkg/validation"
)

func goodReview() validation.ReviewSubmission {
	return validation.ReviewSubmission{Rating: "4", Comment: "Great view"}
}

func TestCreateReview(t *testing.T) {
	h := newHarness(t)
	l := h.seedListing(t, h.owner)
	rc := asUser(h.other, "/listings/"+l.ID+"/reviews")

	out, err := h.reviewSvc.Create(context.Background(), rc, l.ID, goodReview())
	require.NoError(t, err)
	assert.Equal(t, "/listings/"+l.ID, out.Redirect)
	assert.Equal(t, "Review submitted successfully!", lastMessage(rc).Text)

	got, err := h.store.Listings().GetByID(context.Background(), l.ID)
	require.NoError(t, err)
	require.Len(t, got.Reviews, 1)
	r, err := h.store.Reviews().GetByID(context.Background(), got.Reviews[0])
	require.NoError(t, err)
	assert.Equal(t, h.other.ID, r.Author.ID)
	assert.Equal(t, 4, r.Rating)
}

func TestCreateReview_InvalidRating(t *testing.T) {
	for _, rating := range []string{"0", "6", "3.5", "x"} {
		h := newHarness(t)
		l := h.seedListing(t, h.owner)
		rc := asUser(h.other, "/listings/"+l.ID+"/reviews")
		sub := goodReview()
		sub.Rating = rating

		out, err := h.reviewSvc.Create(context.Background(), rc, l.ID, sub)
		assert.True(t, apperr.Is(err, apperr.ValidationFailed), "rating %q", rating)
		assert.Equal(t, "/listings/"+l.ID, out.Redirect)
		got, _ := h.store.Listings().GetByID(context.Background(), l.ID)
		assert.Empty(t, got.Reviews)
	}
}

func TestCreateReview_MissingListing(t *testing.T) {
	h := newHarness(t)
	rc := asUser(h.other, "/listings/nope/reviews")

	out, err := h.reviewSvc.Create(context.Background(), rc, "nope", goodReview())
	assert.True(t, apperr.Is(err, apperr.NotFound))
	assert.Equal(t, "/listings", out.Redirect)
	orphans, _ := h.store.Reviews().ListOrphans(context.Background(), farFuture(), 10)
	assert.Empty(t, orphans, "no review written")
}

func TestCreateReview_AppendFailureLeavesReportedOrphan(t *testing.T) {
	h := newHarness(t)
	l := h.seedListing(t, h.owner)
	h.listings.appendErr = fmt.Errorf("%w: %v", repo.ErrStoreUnavailable, errStoreDown)
	rc := asUser(h.other, "/listings/"+l.ID+"/reviews")

	out, err := h.reviewSvc.Create(context.Background(), rc, l.ID, goodReview())
	assert.True(t, apperr.Is(err, apperr.StoreUnavailable))
	assert.Equal(t, "/listings/"+l.ID, out.Redirect)
	assert.Equal(t, "Error creating review. Please try again.", lastMessage(rc).Text)

	orphaned := h.events.ofType(gateway.EventReviewOrphaned)
	require.Len(t, orphaned, 1)
	assert.Equal(t, l.ID, orphaned[0].ListingID)
	assert.Equal(t, 1.0, h.metrics.DegradedCount(degradedReviewOrphaned))

	_, err = h.store.Reviews().GetByID(context.Background(), orphaned[0].ReviewID)
	assert.NoError(t, err, "review document stays behind")
	got, _ := h.store.Listings().GetByID(context.Background(), l.ID)
	assert.Empty(t, got.Reviews, "listing never references a missing review")
}

func TestCreateReview_RequiresLogin(t *testing.T) {
	h := newHarness(t)
	l := h.seedListing(t, h.owner)
	rc := anonymous("/listings/" + l.ID + "/reviews")

	out, err := h.reviewSvc.Create(context.Background(), rc, l.ID, goodReview())
	assert.True(t, apperr.Is(err, apperr.Unauthenticated))
	assert.Equal(t, "/login", out.Redirect)
}

func TestDeleteReview_RemovesReferenceOnce(t *testing.T) {
	h := newHarness(t)
	l := h.seedListing(t, h.owner)
	r1 := h.seedReview(t, l.ID, h.other)
	r2 := h.seedReview(t, l.ID, h.owner)
	rc := asUser(h.other, "/listings/"+l.ID+"/reviews/"+r1.ID)

	out, err := h.reviewSvc.Delete(context.Background(), rc, l.ID, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, "/listings/"+l.ID, out.Redirect)
	assert.Equal(t, "Successfully deleted review!", lastMessage(rc).Text)

	got, err := h.store.Listings().GetByID(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{r2.ID}, got.Reviews)
	_, err = h.store.Reviews().GetByID(context.Background(), r1.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestDeleteReview_ForbiddenForNonAuthor(t *testing.T) {
	h := newHarness(t)
	l := h.seedListing(t, h.owner)
	r := h.seedReview(t, l.ID, h.other)
	rc := asUser(h.owner, "/listings/"+l.ID+"/reviews/"+r.ID)

	out, err := h.reviewSvc.Delete(context.Background(), rc, l.ID, r.ID)
	assert.True(t, apperr.Is(err, apperr.Forbidden))
	assert.Equal(t, "/listings/"+l.ID, out.Redirect)
	assert.Equal(t, "You do not have permission to delete this review", lastMessage(rc).Text)

	got, _ := h.store.Listings().GetByID(context.Background(), l.ID)
	assert.Equal(t, []string{r.ID}, got.Reviews)
}

func TestDeleteReview_NotFound(t *testing.T) {
	h := newHarness(t)
	l := h.seedListing(t, h.owner)
	rc := asUser(h.other, "/listings/"+l.ID+"/reviews/missing")

	out, err := h.reviewSvc.Delete(context.Background(), rc, l.ID, "missing")
	assert.True(t, apperr.Is(err, apperr.NotFound))
	assert.Equal(t, "/listings/"+l.ID, out.Redirect)
	assert.Equal(t, "Review not found", lastMessage(rc).Text)
}

func TestDeleteReview_NotReferencedByListing(t *testing.T) {
	h := newHarness(t)
	l := h.seedListing(t, h.owner)
	elsewhere := h.seedListing(t, h.owner)
	r := h.seedReview(t, elsewhere.ID, h.other)
	rc := asUser(h.other, "/listings/"+l.ID+"/reviews/"+r.ID)

	_, err := h.reviewSvc.Delete(context.Background(), rc, l.ID, r.ID)
	assert.True(t, apperr.Is(err, apperr.NotFound))
	_, err = h.store.Reviews().GetByID(context.Background(), r.ID)
	assert.NoError(t, err)
}

func TestDeleteReview_DocumentDeleteFailureIsSurfaced(t *testing.T) {
	h := newHarness(t)
	l := h.seedListing(t, h.owner)
	r := h.seedReview(t, l.ID, h.other)
	h.reviews.deleteErr = fmt.Errorf("%w: %v", repo.ErrStoreUnavailable, errStoreDown)
	rc := asUser(h.other, "/listings/"+l.ID+"/reviews/"+r.ID)

	out, err := h.reviewSvc.Delete(context.Background(), rc, l.ID, r.ID)
	assert.True(t, apperr.Is(err, apperr.StoreUnavailable))
	assert.Equal(t, "/listings/"+l.ID, out.Redirect)
	assert.Equal(t, "Error deleting review. Please try again.", lastMessage(rc).Text)

	got, _ := h.store.Listings().GetByID(context.Background(), l.ID)
	assert.Empty(t, got.Reviews, "reference removed first")
	require.Len(t, h.events.ofType(gateway.EventReviewOrphaned), 1)
	assert.Equal(t, 1.0, h.metrics.DegradedCount(degradedReviewOrphaned))
}

func TestDeleteReview_PullFailureChangesNothing(t *testing.T) {
	h := newHarness(t)
	l := h.seedListing(t, h.owner)
	r := h.seedReview(t, l.ID, h.other)
	h.listings.pullErr = fmt.Errorf("%w: %v", repo.ErrStoreUnavailable, errStoreDown)
	rc := asUser(h.other, "/listings/"+l.ID+"/reviews/"+r.ID)

	_, err := h.reviewSvc.Delete(context.Background(), rc, l.ID, r.ID)
	assert.True(t, apperr.Is(err, apperr.StoreUnavailable))
	_, err = h.store.Reviews().GetByID(context.Background(), r.ID)
	assert.NoError(t, err)
	assert.Empty(t, h.events.ofType(gateway.EventReviewOrphaned))
}
