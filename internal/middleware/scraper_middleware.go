package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/dezmoond/chita-afisha/internal/scraper"
)

func ScraperMiddleware(s *scraper.Scraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("scraper", s)
		c.Next()
	}
}

func GetScraper(c *gin.Context) *scraper.Scraper {
	s, exists := c.Get("scraper")
	if !exists {
		return nil
	}
	return s.(*scraper.Scraper)
}
