// Package events implements gateway.EventPublisher.
package events

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seronsenapati/STAYLO/internal/domain/gateway"
	"github.com/seronsenapati/STAYLO/pkg/helpers"
)

const publishTimeout = 2 * time.Second

// Rabbit publishes events as JSON onto a durable RabbitMQ queue.
type Rabbit struct {
	pub *helpers.RabbitPublisher
}

func NewRabbit(pub *helpers.RabbitPublisher) *Rabbit {
	return &Rabbit{pub: pub}
}

func (r *Rabbit) Publish(ctx context.Context, evt gateway.Event) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return r.pub.PublishJSON(ctx, evt.Type, evt)
}

// Log writes events to the logger; used when no broker is configured.
type Log struct {
	Logger *logrus.Logger
}

func NewLog(logger *logrus.Logger) *Log {
	return &Log{Logger: logger}
}

func (l *Log) Publish(_ context.Context, evt gateway.Event) error {
	entry := l.Logger.WithFields(logrus.Fields{
		"event":      evt.Type,
		"listing_id": evt.ListingID,
		"review_id":  evt.ReviewID,
		"user_id":    evt.UserID,
	})
	if evt.Reason != "" {
		entry = entry.WithField("reason", evt.Reason)
	}
	if evt.Degraded() {
		entry.Warn("degraded event")
		return nil
	}
	entry.Debug("event")
	return nil
}

var (
	_ gateway.EventPublisher = (*Rabbit)(nil)
	_ gateway.EventPublisher = (*Log)(nil)
)
