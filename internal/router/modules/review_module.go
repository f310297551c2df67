package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/seronsenapati/STAYLO/internal/interface/http"
	"github.com/seronsenapati/STAYLO/internal/interface/middleware"
)

// ReviewModule wires review creation and deletion under a listing.
type ReviewModule struct {
	Handler *handlers.ReviewHandler
	Redis   *redis.Client
}

func NewReviewModule(h *handlers.ReviewHandler, rdb *redis.Client) *ReviewModule {
	return &ReviewModule{Handler: h, Redis: rdb}
}

func (m *ReviewModule) Register(rg *gin.RouterGroup) {
	limiter := middleware.RateLimit(m.Redis, 20, time.Minute, middleware.KeyByUserID(), nil)

	rg.POST("/listings/:id/reviews", limiter, m.Handler.Create)
	rg.DELETE("/listings/:id/reviews/:reviewId", limiter, m.Handler.Delete)
}
