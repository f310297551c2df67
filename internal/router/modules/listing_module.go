package modules

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/seronsenapati/STAYLO/internal/interface/http"
	"github.com/seronsenapati/STAYLO/internal/interface/middleware"
)

// ListingModule wires the listing pages and mutations. PUT and DELETE arrive
// as POST ?_method=... and are rewritten by MethodOverride before routing.
type ListingModule struct {
	Handler *handlers.ListingHandler
	Redis   *redis.Client
}

func NewListingModule(h *handlers.ListingHandler, rdb *redis.Client) *ListingModule {
	return &ListingModule{Handler: h, Redis: rdb}
}

func (m *ListingModule) Register(rg *gin.RouterGroup) {
	writeLimiter := middleware.RateLimit(m.Redis, 30, time.Minute, middleware.KeyByUserID(), nil)

	rg.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/listings") })
	rg.GET("/listings", m.Handler.Index)
	rg.GET("/listings/new", m.Handler.New)
	rg.POST("/listings", writeLimiter, m.Handler.Create)
	rg.GET("/listings/:id", m.Handler.Show)
	rg.GET("/listings/:id/edit", m.Handler.Edit)
	rg.PUT("/listings/:id", writeLimiter, m.Handler.Update)
	rg.DELETE("/listings/:id", writeLimiter, m.Handler.Delete)
}
