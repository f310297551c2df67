package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/seronsenapati/STAYLO/internal/interface/http"
	"github.com/seronsenapati/STAYLO/internal/interface/middleware"
)

// UserModule wires signup, login and logout.
// GET/POST /signup, GET/POST /login, GET /logout
type UserModule struct {
	Handler *handlers.UserHandler
	Redis   *redis.Client
}

func NewUserModule(h *handlers.UserHandler, rdb *redis.Client) *UserModule {
	return &UserModule{Handler: h, Redis: rdb}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	// 10 credential attempts per minute per IP and route
	credLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.GET("/signup", m.Handler.SignupForm)
	rg.POST("/signup", credLimiter, m.Handler.Signup)
	rg.GET("/login", m.Handler.LoginForm)
	rg.POST("/login", credLimiter, m.Handler.Login)
	rg.GET("/logout", m.Handler.Logout)
}
