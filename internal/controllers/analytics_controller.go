package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"linkly/internal/middleware"
	"linkly/internal/models"
	"linkly/internal/service"
)

type AnalyticsController struct {
	analyticsService service.AnalyticsService
}

func NewAnalyticsController(analyticsService service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{analyticsService: analyticsService}
}

// GetDashboard handles GET /api/v1/analytics
func (ac *AnalyticsController) GetDashboard(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	var filter models.AnalyticsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	resp, err := ac.analyticsService.Dashboard(c.Request.Context(), userID, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetURLAnalytics handles GET /api/v1/analytics/url/:urlId
func (ac *AnalyticsController) GetURLAnalytics(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	// Get hours parameter (default to 24)
	hours := 24
	if hoursStr := c.Query("hours"); hoursStr != "" {
		if parsedHours, err := strconv.Atoi(hoursStr); err == nil && parsedHours > 0 {
			hours = parsedHours
		}
	}

	resp, err := ac.analyticsService.URLAnalytics(c.Request.Context(), userID, c.Param("urlId"), hours)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
