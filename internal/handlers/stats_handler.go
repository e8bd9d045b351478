package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dezmoond/chita-afisha/internal/helpers"
	"github.com/dezmoond/chita-afisha/internal/middleware"
	"github.com/dezmoond/chita-afisha/internal/models"
)

// StatsCacheKey is invalidated by the event and news observers registered at
// server start.
const StatsCacheKey = "site_stats"

const statsCacheTTL = 10 * time.Minute

// SiteStats are the aggregate counters shown on every page of the site.
type SiteStats struct {
	UpcomingEvents int64            `json:"upcoming_events"`
	TodayEvents    int64            `json:"today_events"`
	TotalEvents    int64            `json:"total_events"`
	Venues         int64            `json:"venues"`
	Ensembles      int64            `json:"ensembles"`
	PublishedNews  int64            `json:"published_news"`
	ByCategory     map[string]int64 `json:"by_category"`
}

// GetStats serves the counters from cache when fresh. Event and news writes
// invalidate the key through the model observers, so a stale window only
// follows direct database edits.
func GetStats(c *gin.Context) {
	store := middleware.GetCache(c)
	if store != nil {
		if cached, ok := store.Get(StatsCacheKey); ok {
			c.JSON(http.StatusOK, cached.(SiteStats))
			return
		}
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var stats SiteStats
	var err error
	now := time.Now()
	countInto := func(query *gorm.DB, dst *int64) {
		if err != nil {
			return
		}
		err = query.Count(dst).Error
	}
	countInto(gormDB.Model(&models.Event{}).Scopes(models.Upcoming(now)), &stats.UpcomingEvents)
	countInto(gormDB.Model(&models.Event{}).Scopes(models.Today(now)), &stats.TodayEvents)
	countInto(gormDB.Model(&models.Event{}), &stats.TotalEvents)
	countInto(gormDB.Model(&models.Venue{}), &stats.Venues)
	countInto(gormDB.Model(&models.Ensemble{}), &stats.Ensembles)
	countInto(gormDB.Model(&models.News{}).Where("is_published = ?", true), &stats.PublishedNews)

	var perCategory []struct {
		Category string
		Total    int64
	}
	if err == nil {
		err = gormDB.Model(&models.Event{}).
			Select("category, COUNT(*) AS total").
			Group("category").
			Find(&perCategory).Error
	}
	// A failed query must not pin ten minutes of zeros in the cache.
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error computing site statistics.")
		return
	}

	stats.ByCategory = map[string]int64{}
	for _, row := range perCategory {
		stats.ByCategory[row.Category] = row.Total
	}

	if store != nil {
		store.Set(StatsCacheKey, stats, statsCacheTTL)
	}

	c.JSON(http.StatusOK, stats)
}
