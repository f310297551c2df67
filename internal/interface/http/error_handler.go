package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/seronsenapati/STAYLO/pkg/response"
)

// NotFound renders the error page for unmatched routes.
func NotFound(c *gin.Context) {
	response.ErrorPage(c, http.StatusNotFound, "Page Not Found")
}
