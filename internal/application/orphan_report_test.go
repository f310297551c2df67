package application

import (
	"context"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seronsenapati/STAYLO/internal/domain/entity"
	"github.com/seronsenapati/STAYLO/internal/domain/gateway"
	"github.com/seronsenapati/STAYLO/pkg/helpers"
)

func TestOrphanReporterRun(t *testing.T) {
	h := newHarness(t)
	l := h.seedListing(t, h.owner)
	h.seedReview(t, l.ID, h.other)

	orphan := &entity.Review{Comment: "left behind", Rating: 3, Author: entity.UserRef{ID: h.other.ID}}
	require.NoError(t, h.store.Reviews().Create(context.Background(), orphan))

	o := NewOrphanReporter(h.store.Reviews(), h.events, h.metrics, helpers.NewDiscardLogger(), 10*time.Minute)

	n, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "fresh reviews are inside the grace period")

	o.Now = func() time.Time { return time.Now().Add(time.Hour) }
	n, err = o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	reported := h.events.ofType(gateway.EventReviewOrphaned)
	require.Len(t, reported, 1)
	assert.Equal(t, orphan.ID, reported[0].ReviewID)

	_, err = h.store.Reviews().GetByID(context.Background(), orphan.ID)
	assert.NoError(t, err, "report only, never repair")
}

func TestOrphanReporterSchedule(t *testing.T) {
	h := newHarness(t)
	o := NewOrphanReporter(h.store.Reviews(), nil, nil, helpers.NewDiscardLogger(), time.Minute)
	c := cron.New()

	require.NoError(t, o.Schedule(c, "@every 1h"))
	assert.Len(t, c.Entries(), 1)
	require.NoError(t, o.Schedule(c, ""))
	assert.Len(t, c.Entries(), 1)
	assert.Error(t, o.Schedule(c, "not a spec"))
}
