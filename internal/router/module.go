package router

import "github.com/gin-gonic/gin"

// Module is a feature area (users, listings, reviews, debug) that mounts its
// routes on the site root group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
