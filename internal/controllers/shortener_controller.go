package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"linkly/internal/entities"
	"linkly/internal/middleware"
	"linkly/internal/models"
	"linkly/internal/ratelimit"
	"linkly/internal/service"
)

type ShortenerController struct {
	urlService service.URLService
}

func NewShortenerController(urlService service.URLService) *ShortenerController {
	return &ShortenerController{
		urlService: urlService,
	}
}

// CreateShortURL handles POST /api/v1/shorten. Anonymous callers are allowed and
// counted against the anonymous quota.
func (sc *ShortenerController) CreateShortURL(c *gin.Context) {
	var req models.CreateURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	in := service.CreateInput{
		TargetURL:   req.URL,
		CustomSlug:  req.Slug,
		WantQR:      req.GenerateQR,
		Fingerprint: ratelimit.Fingerprint(c.ClientIP(), c.Request.UserAgent()),
	}
	if userID, ok := middleware.UserID(c); ok {
		in.OwnerID = &userID
	}

	response, err := sc.urlService.CreateShortURL(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

func clickContext(c *gin.Context) entities.ClickContext {
	return entities.ClickContext{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Referrer:  c.Request.Referer(),
		At:        time.Now(),
	}
}

// RedirectToURL handles GET /:shortCode - redirects to original URL
func (sc *ShortenerController) RedirectToURL(c *gin.Context) {
	originalURL, err := sc.urlService.ResolveShortURL(c.Request.Context(), c.Param("shortCode"), clickContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	// 302 so browsers come back through us and every visit is counted
	c.Redirect(http.StatusFound, originalURL)
}

// GetOriginalURLPublic handles GET /api/v1/redirect/:shortCode - returns original URL as JSON (public, no auth)
func (sc *ShortenerController) GetOriginalURLPublic(c *gin.Context) {
	originalURL, err := sc.urlService.ResolveShortURL(c.Request.Context(), c.Param("shortCode"), clickContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"original_url": originalURL,
	})
}

// GetUserURLs handles GET /api/v1/urls - returns all URLs for the authenticated user
func (sc *ShortenerController) GetUserURLs(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	urls, err := sc.urlService.GetUserURLs(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, urls)
}
