package application

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/seronsenapati/STAYLO/internal/domain/gateway"
	repo "github.com/seronsenapati/STAYLO/internal/domain/repository"
	"github.com/seronsenapati/STAYLO/pkg/metrics"
)

const orphanScanLimit = 100

// OrphanReporter periodically looks for reviews no listing references and
// reports them. It never deletes or relinks anything.
type OrphanReporter struct {
	Reviews repo.ReviewRepository
	Events  gateway.EventPublisher
	Metrics *metrics.Recorder
	Logger  *logrus.Logger
	// Grace skips reviews younger than this; a review is briefly
	// unreferenced between its two create steps.
	Grace time.Duration
	Now   func() time.Time
}

func NewOrphanReporter(reviews repo.ReviewRepository, events gateway.EventPublisher, m *metrics.Recorder, logger *logrus.Logger, grace time.Duration) *OrphanReporter {
	return &OrphanReporter{Reviews: reviews, Events: events, Metrics: m, Logger: logger, Grace: grace, Now: time.Now}
}

// Run performs one scan and returns how many orphans were reported.
func (o *OrphanReporter) Run(ctx context.Context) (int, error) {
	cutoff := o.Now().Add(-o.Grace)
	orphans, err := o.Reviews.ListOrphans(ctx, cutoff, orphanScanLimit)
	if err != nil {
		o.Logger.WithError(err).Error("orphan scan failed")
		return 0, err
	}
	for _, r := range orphans {
		o.Metrics.Degraded("review_orphan_detected")
		o.Logger.WithFields(logrus.Fields{
			"review_id":  r.ID,
			"author_id":  r.Author.ID,
			"created_at": r.CreatedAt,
		}).Warn("unreferenced review found")
		publish(ctx, o.Events, o.Logger, gateway.Event{
			Type:     gateway.EventReviewOrphaned,
			ReviewID: r.ID,
			UserID:   r.Author.ID,
			Reason:   "unreferenced review found by scan",
		})
	}
	if len(orphans) > 0 {
		o.Logger.WithField("count", len(orphans)).Info("orphan scan finished")
	}
	return len(orphans), nil
}

// Schedule registers the scan on c. An empty spec leaves it unscheduled.
func (o *OrphanReporter) Schedule(c *cron.Cron, spec string) error {
	if spec == "" {
		return nil
	}
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		_, _ = o.Run(ctx)
	})
	return err
}
