package modules

import (
	"expvar"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/seronsenapati/STAYLO/internal/interface/middleware"
)

// DebugModule exposes expvar and Prometheus metrics to private networks only.
type DebugModule struct {
	Registry *prometheus.Registry
}

func NewDebugModule(reg *prometheus.Registry) *DebugModule {
	return &DebugModule{Registry: reg}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	private := privateOnly(middleware.AllowPrivateIP())

	rg.GET("/debug/vars", private, gin.WrapH(expvar.Handler()))
	if m.Registry != nil {
		rg.GET("/metrics", private, gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	}
}

// privateOnly hides the route from public clients.
func privateOnly(allow middleware.AllowFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !allow(c) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		c.Next()
	}
}
