package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"linkly/internal/apperrors"
)

// respondError writes err with the status apperrors assigns to it. Messages of
// internal failures are not exposed; the logging middleware records them.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	status := apperrors.HTTPStatus(err)
	message := err.Error()
	switch status {
	case http.StatusInternalServerError:
		message = "Internal server error"
	case http.StatusServiceUnavailable:
		message = "Service temporarily unavailable, please try again later"
	case http.StatusNotFound:
		message = "URL not found"
	}

	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request body",
		"details": err.Error(),
	})
}
