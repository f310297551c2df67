package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seronsenapati/STAYLO/internal/domain/gateway"
)

// publish delivers evt without ever failing the caller.
func publish(ctx context.Context, p gateway.EventPublisher, logger *logrus.Logger, evt gateway.Event) {
	if p == nil {
		return
	}
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	if err := p.Publish(ctx, evt); err != nil && logger != nil {
		logger.WithError(err).WithField("event", evt.Type).Warn("publish event failed")
	}
}
