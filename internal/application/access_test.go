package application

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seronsenapati/STAYLO/internal/domain/apperr"
	"github.com/seronsenapati/STAYLO/internal/domain/entity"
	repo "github.com/seronsenapati/STAYLO/internal/domain/repository"
)

func farFuture() time.Time { return time.Now().Add(24 * time.Hour) }

func TestRequireAuthenticated(t *testing.T) {
	h := newHarness(t)

	rc := asUser(h.owner, "/listings/new")
	out, err := h.guard.RequireAuthenticated(rc)
	require.NoError(t, err)
	assert.Equal(t, Outcome{}, out)
	assert.Empty(t, rc.Messages())

	rc = NewRequestContext(&Identity{}, "/listings/new")
	_, err = h.guard.RequireAuthenticated(rc)
	assert.True(t, apperr.Is(err, apperr.Unauthenticated), "identity without id is anonymous")
}

func TestRequireListingOwner_MissingOwnerIsForbidden(t *testing.T) {
	h := newHarness(t)
	l := &entity.Listing{ID: "no-owner", Title: "Orphan"}
	h.listings.ListingRepository = ownerlessListings{ListingRepository: h.store.Listings(), l: l}

	rc := asUser(h.owner, "/listings/no-owner")
	_, out, err := h.guard.RequireListingOwner(context.Background(), rc, "no-owner")
	assert.True(t, apperr.Is(err, apperr.Forbidden))
	assert.Equal(t, "/listings/no-owner", out.Redirect)
}

func TestRequireListingOwner_AnonymousIsForbidden(t *testing.T) {
	h := newHarness(t)
	l := h.seedListing(t, h.owner)

	_, _, err := h.guard.RequireListingOwner(context.Background(), anonymous("/x"), l.ID)
	assert.True(t, apperr.Is(err, apperr.Forbidden))
}

func TestRequireListingOwner_StoreFailure(t *testing.T) {
	h := newHarness(t)
	h.listings.getErr = fmt.Errorf("%w: %v", repo.ErrStoreUnavailable, errStoreDown)
	rc := asUser(h.owner, "/listings/abc")

	_, out, err := h.guard.RequireListingOwner(context.Background(), rc, "abc")
	assert.True(t, apperr.Is(err, apperr.StoreUnavailable))
	assert.Equal(t, "/listings", out.Redirect)
	assert.Equal(t, FlashError, lastMessage(rc).Kind)
}

func TestRequireReviewAuthor(t *testing.T) {
	h := newHarness(t)
	l := h.seedListing(t, h.owner)
	r := h.seedReview(t, l.ID, h.other)

	got, _, err := h.guard.RequireReviewAuthor(context.Background(), asUser(h.other, "/"), l.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)

	_, out, err := h.guard.RequireReviewAuthor(context.Background(), asUser(h.owner, "/"), l.ID, r.ID)
	assert.True(t, apperr.Is(err, apperr.Forbidden))
	assert.Equal(t, "/listings/"+l.ID, out.Redirect)
}

type ownerlessListings struct {
	repo.ListingRepository
	l *entity.Listing
}

func (o ownerlessListings) GetByID(_ context.Context, id string) (*entity.Listing, error) {
	if id == o.l.ID {
		return o.l, nil
	}
	return nil, repo.ErrNotFound
}
