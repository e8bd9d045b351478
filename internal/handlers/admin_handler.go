package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dezmoond/chita-afisha/internal/helpers"
	"github.com/dezmoond/chita-afisha/internal/middleware"
)

// TriggerScrape runs a full sweep of the ticketing sources on demand and
// reports what it did. The periodic job keeps running on its own schedule;
// this endpoint exists for staff who do not want to wait for the next tick.
func TriggerScrape(c *gin.Context) {
	s := middleware.GetScraper(c)
	if s == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Scraper not configured.")
		return
	}

	stats := s.Run(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"message":        "Scrape completed.",
		"created":        stats.Created,
		"skipped":        stats.Skipped,
		"sources_failed": stats.SourcesFailed,
	})
}
