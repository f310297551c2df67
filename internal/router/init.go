package router

import (
	"context"

	"github.com/seronsenapati/STAYLO/internal/application"
	"github.com/seronsenapati/STAYLO/internal/container"
	handlers "github.com/seronsenapati/STAYLO/internal/interface/http"
	"github.com/seronsenapati/STAYLO/internal/router/modules"
)

// Services groups the orchestrators built from the container, so main can
// reach the ones it schedules outside HTTP.
type Services struct {
	Guard    *application.Guard
	Resolver *application.Resolver
	Listings *application.ListingService
	Reviews  *application.ReviewService
	Users    *application.UserService
	Orphans  *application.OrphanReporter
}

func BuildServices() Services {
	logger := container.GetLogger()
	events := container.GetEvents()
	rec := container.GetMetrics()

	guard := application.NewGuard(container.GetListings(), container.GetReviews(), logger)
	resolver := application.NewResolver(container.GetGeocoder(), container.GetImages(), events, rec, logger)
	return Services{
		Guard:    guard,
		Resolver: resolver,
		Listings: application.NewListingService(container.GetListings(), guard, resolver, events, rec, logger),
		Reviews:  application.NewReviewService(container.GetListings(), container.GetReviews(), guard, events, rec, logger),
		Users:    application.NewUserService(container.GetUsers(), container.GetJWT(), logger),
		Orphans:  application.NewOrphanReporter(container.GetReviews(), events, rec, logger, container.GetConfig().OrphanGracePeriod),
	}
}

// InitModules builds handlers for every feature module and adds them to the
// registry. Call once during startup, after the container is filled.
func InitModules(r *Registry, svc Services) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	view := handlers.NewPresenter(container.GetSessions(), container.GetCookies(), cfg.SessionTTL, logger, cfg.IsProduction())

	r.Add(modules.NewUserModule(handlers.NewUserHandler(svc.Users, view, container.GetCookies(), logger), container.GetRedis()))
	r.Add(modules.NewListingModule(handlers.NewListingHandler(svc.Listings, view, logger), container.GetRedis()))
	r.Add(modules.NewReviewModule(handlers.NewReviewHandler(svc.Reviews, view, logger), container.GetRedis()))
	r.Add(modules.NewHealthModule(healthChecks()))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(container.GetPromRegistry()))
	}
}

// healthChecks pings only the backends that were connected at startup.
func healthChecks() map[string]modules.CheckFunc {
	checks := map[string]modules.CheckFunc{}
	if pool := container.GetPGPool(); pool != nil {
		checks["postgres"] = pool.Ping
	}
	if rdb := container.GetRedis(); rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return checks
}
