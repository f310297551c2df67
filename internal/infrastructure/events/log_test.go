package events

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seronsenapati/STAYLO/internal/domain/gateway"
)

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)
	p := NewLog(logger)

	require.NoError(t, p.Publish(context.Background(), gateway.Event{Type: gateway.EventListingCreated, ListingID: "l1"}))
	assert.Empty(t, buf.String(), "routine events stay at debug level")

	require.NoError(t, p.Publish(context.Background(), gateway.Event{
		Type:      gateway.EventReviewOrphaned,
		ListingID: "l1",
		ReviewID:  "r1",
		Reason:    "listing reference not appended",
	}))
	out := buf.String()
	assert.Contains(t, out, `"level":"warning"`)
	assert.Contains(t, out, `"review_id":"r1"`)
	assert.Contains(t, out, "listing reference not appended")
}
