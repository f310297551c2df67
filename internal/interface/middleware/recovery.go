package middleware

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/seronsenapati/STAYLO/pkg/helpers"
	"github.com/seronsenapati/STAYLO/pkg/response"
)

// Recovery turns panics into the error page. Production hides the detail
// from both the response and the logs, and skips gin's stack dump.
func Recovery(logger *logrus.Logger, production bool) gin.HandlerFunc {
	dump := gin.DefaultErrorWriter
	if production {
		dump = io.Discard
	}
	return gin.CustomRecoveryWithWriter(dump, func(c *gin.Context, recovered any) {
		fields := logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.Request.URL.Path,
		}
		msg := "Something went wrong"
		if production {
			fields["panic_type"] = fmt.Sprintf("%T", recovered)
			msg = "Internal server error"
		} else {
			fields[helpers.PanicKey] = recovered
		}
		logger.WithFields(fields).Error("panic recovered")
		response.ErrorPage(c, http.StatusInternalServerError, msg)
		c.Abort()
	})
}
