package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestRecorderCounts(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.Mutation("listing.create", ResultSuccess)
	r.Mutation("listing.create", ResultSuccess)
	r.Mutation("listing.create", ResultFailure)
	r.Degraded("review_orphaned")

	assert.Equal(t, 2.0, r.MutationCount("listing.create", ResultSuccess))
	assert.Equal(t, 1.0, r.MutationCount("listing.create", ResultFailure))
	assert.Equal(t, 1.0, r.DegradedCount("review_orphaned"))
	assert.Equal(t, 0.0, r.DegradedCount("geocode"))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.Mutation("listing.delete", ResultSuccess)
		r.Degraded("geocode")
	})
	assert.Zero(t, r.MutationCount("listing.delete", ResultSuccess))
}
