package middleware

import (
	"net"

	"github.com/gin-gonic/gin"
)

// AllowPrivateIP matches loopback and private-range clients. It doubles as a
// RateLimit bypass and as the debug routes' access gate.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		if parsed == nil {
			return false
		}
		return parsed.IsLoopback() || parsed.IsPrivate()
	}
}
