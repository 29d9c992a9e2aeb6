package handler

import (
	"github.com/gin-gonic/gin"
)

const (
	msgInternal         = "Internal Server Error"
	msgMethodNotAllowed = "Method Not Allowed"
	msgNotFound         = "Not Found"
)

// respondError writes the {"message": ...} body used by every error response.
func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}
