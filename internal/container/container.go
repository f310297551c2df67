package container

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/seronsenapati/STAYLO/config"
	"github.com/seronsenapati/STAYLO/internal/domain/gateway"
	repo "github.com/seronsenapati/STAYLO/internal/domain/repository"
	"github.com/seronsenapati/STAYLO/pkg/helpers"
	"github.com/seronsenapati/STAYLO/pkg/metrics"
)

// app-level container to share constructed components across packages.
// main fills it once at startup; the router wires modules from it.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client

	jwtManager *helpers.JWTManager
	cookies    *helpers.Manager
	sessions   gateway.SessionStore

	listings repo.ListingRepository
	reviews  repo.ReviewRepository
	users    repo.UserRepository

	geocoder gateway.Geocoder
	images   gateway.ImageStore
	events   gateway.EventPublisher

	promRegistry *prometheus.Registry
	recorder     *metrics.Recorder
)

func SetConfig(c *config.Config)    { cfg = c }
func GetConfig() *config.Config     { return cfg }
func SetLogger(l *logrus.Logger)    { logger = l }
func GetLogger() *logrus.Logger     { return logger }
func SetPGPool(p *pgxpool.Pool)     { pgPool = p }
func GetPGPool() *pgxpool.Pool      { return pgPool }
func SetRedis(r *redis.Client)      { redisClient = r }
func GetRedis() *redis.Client       { return redisClient }
func SetJWT(m *helpers.JWTManager)  { jwtManager = m }
func GetJWT() *helpers.JWTManager   { return jwtManager }
func SetCookies(m *helpers.Manager) { cookies = m }
func GetCookies() *helpers.Manager  { return cookies }

func SetSessions(s gateway.SessionStore) { sessions = s }
func GetSessions() gateway.SessionStore  { return sessions }

// SetStores installs the entity store gateway: Postgres repositories, or the
// in-memory store when running degraded in development.
func SetStores(l repo.ListingRepository, r repo.ReviewRepository, u repo.UserRepository) {
	listings, reviews, users = l, r, u
}
func GetListings() repo.ListingRepository { return listings }
func GetReviews() repo.ReviewRepository   { return reviews }
func GetUsers() repo.UserRepository       { return users }

// SetGeocoder accepts nil when geocoding is not configured.
func SetGeocoder(g gateway.Geocoder)         { geocoder = g }
func GetGeocoder() gateway.Geocoder          { return geocoder }
func SetImages(s gateway.ImageStore)         { images = s }
func GetImages() gateway.ImageStore          { return images }
func SetEvents(p gateway.EventPublisher)     { events = p }
func GetEvents() gateway.EventPublisher      { return events }
func SetPromRegistry(r *prometheus.Registry) { promRegistry = r }
func GetPromRegistry() *prometheus.Registry  { return promRegistry }
func SetMetrics(m *metrics.Recorder)         { recorder = m }
func GetMetrics() *metrics.Recorder          { return recorder }
