package server

import (
	"net/http"
	"strconv"

	"donation-service/internal/carousel"
	"donation-service/internal/search"
	"donation-service/internal/site"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const visitorCookie = "gm_visitor"

type searchResponse struct {
	Query   string         `json:"query"`
	Results []search.Entry `json:"results"`
	Message string         `json:"message,omitempty"`
}

func (h *handlers) search(c *gin.Context) {
	query := search.NormalizeQuery(c.Query("q"))
	results := h.Search.Search(query)

	resp := searchResponse{Query: query, Results: results}
	if results == nil {
		resp.Results = []search.Entry{}
	} else if len(results) == 0 {
		resp.Message = "No results found"
	}
	c.JSON(http.StatusOK, resp)
}

// visitorID returns the visitor cookie, issuing a new one when absent.
func (h *handlers) visitorID(c *gin.Context) string {
	if id, err := c.Cookie(visitorCookie); err == nil && id != "" {
		return id
	}
	id := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(visitorCookie, id, h.Site.VisitorCookieAge, "/", "", false, true)
	return id
}

func (h *handlers) getConsent(c *gin.Context) {
	visitor := h.visitorID(c)

	accepted, err := h.Consent.Accepted(c.Request.Context(), visitor)
	if err != nil {
		h.Logger.ErrorContext(c.Request.Context(), "Error reading consent", "error", err)
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accepted":    accepted,
		"showBanner":  !accepted,
		"showDelayMs": h.Consent.ShowDelay().Milliseconds(),
	})
}

func (h *handlers) acceptConsent(c *gin.Context) {
	visitor := h.visitorID(c)

	if err := h.Consent.Accept(c.Request.Context(), visitor); err != nil {
		h.Logger.ErrorContext(c.Request.Context(), "Error storing consent", "error", err)
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"accepted": true, "showBanner": false})
}

// breadcrumb also marks which of the nav links passed as href parameters
// point at the current page.
func (h *handlers) breadcrumb(c *gin.Context) {
	path := c.Query("path")

	active := map[string]bool{}
	for _, href := range c.QueryArray("href") {
		active[href] = site.IsActive(path, href)
	}

	c.JSON(http.StatusOK, gin.H{
		"label":  site.Breadcrumb(path),
		"page":   site.CurrentPage(path),
		"active": active,
	})
}

// carouselSettings tells a widget how often to advance and how many slides
// fit the reported viewport width.
func (h *handlers) carouselSettings(c *gin.Context) {
	var intervalMs int
	switch widget := c.DefaultQuery("widget", "slideshow"); widget {
	case "slideshow":
		intervalMs = h.Site.Carousel.SlideshowIntervalMs
	case "partners":
		intervalMs = h.Site.Carousel.PartnersIntervalMs
	case "team":
		intervalMs = h.Site.Carousel.TeamIntervalMs
	default:
		fail(c, http.StatusBadRequest, "unknown carousel widget "+widget)
		return
	}

	width, err := strconv.Atoi(c.DefaultQuery("width", "0"))
	if err != nil || width < 0 {
		fail(c, http.StatusBadRequest, "width must be a non-negative integer")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"intervalMs":     intervalMs,
		"slidesPerView":  carousel.SlidesPerView(width),
		"swipeThreshold": carousel.SwipeThreshold,
		"scrollStep":     carousel.ScrollStep,
	})
}
