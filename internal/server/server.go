package server

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/dezmoond/chita-afisha/config"
	"github.com/dezmoond/chita-afisha/internal/cache"
	"github.com/dezmoond/chita-afisha/internal/handlers"
	"github.com/dezmoond/chita-afisha/internal/jobs"
	"github.com/dezmoond/chita-afisha/internal/middleware"
	"github.com/dezmoond/chita-afisha/internal/models"
	"github.com/dezmoond/chita-afisha/internal/scraper"
)

const defaultScrapeInterval = 6 * time.Hour

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	logger := log.Logger
	store := cache.New()
	registerObservers(store, logger)

	sc := scraper.New(db, logger, scraper.DefaultSources)
	jobs.NewScrapeJob(db, logger, scraper.DefaultSources).
		Start(context.Background(), scrapeInterval())

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	setupRoutes(r, db, store, sc)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return r.Run(":" + port)
}

// registerObservers wires the cross-cutting reactions to model writes: an
// audit line per change, and dropping the cached site counters so the next
// stats request recomputes them.
func registerObservers(store cache.Cache, logger zerolog.Logger) {
	audit := logger.With().Str("component", "audit").Logger()

	models.RegisterEventObserver(func(e *models.Event, action models.Action) {
		audit.Info().
			Str("event", e.Name).
			Str("slug", e.Slug).
			Str("action", string(action)).
			Msg("event changed")
		store.Invalidate(handlers.StatsCacheKey)
	})
	models.RegisterNewsObserver(func(n *models.News, action models.Action) {
		audit.Info().
			Str("title", n.Title).
			Str("slug", n.Slug).
			Str("action", string(action)).
			Msg("news changed")
		store.Invalidate(handlers.StatsCacheKey)
	})
}

func scrapeInterval() time.Duration {
	if raw := os.Getenv("SCRAPE_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			return d
		}
	}
	return defaultScrapeInterval
}

func setupRoutes(r *gin.Engine, db *gorm.DB, store cache.Cache, sc *scraper.Scraper) {
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.CacheMiddleware(store))

	r.Static("/uploads", "./uploads")
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	public := r.Group("/v1")
	{
		public.POST("/register", handlers.Register)
		public.POST("/login", handlers.Login)
		public.GET("/stats", handlers.GetStats)
		public.POST("/contact", handlers.SubmitContact)

		eventPublic := public.Group("/events")
		{
			eventPublic.GET("", handlers.ListEvents)
			eventPublic.GET("/archive", handlers.ArchiveEvents)
			eventPublic.GET("/today", handlers.TodayEvents)
			eventPublic.GET("/week", handlers.WeekEvents)
			eventPublic.GET("/:slug", handlers.GetEvent)
		}

		newsPublic := public.Group("/news")
		{
			newsPublic.GET("", handlers.ListNews)
			newsPublic.GET("/:slug", handlers.GetNews)
		}

		venuePublic := public.Group("/venues")
		{
			venuePublic.GET("", handlers.ListVenues)
			venuePublic.GET("/:id", handlers.GetVenue)
		}

		ensemblePublic := public.Group("/ensembles")
		{
			ensemblePublic.GET("", handlers.ListEnsembles)
			ensemblePublic.GET("/:id", handlers.GetEnsemble)
		}

		festivalPublic := public.Group("/festivals")
		{
			festivalPublic.GET("", handlers.ListFestivals)
			festivalPublic.GET("/:id", handlers.GetFestival)
		}
	}

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		protected.GET("/profile", handlers.GetProfile)
		protected.PUT("/profile", handlers.UpdateProfile)
		protected.GET("/my/events", handlers.MyEvents)
		protected.GET("/my/news", handlers.MyNews)

		eventProtected := protected.Group("/events")
		{
			eventProtected.POST("", handlers.CreateEvent)
			eventProtected.PUT("/:id", handlers.UpdateEvent)
			eventProtected.DELETE("/:id", handlers.DeleteEvent)
		}

		newsProtected := protected.Group("/news")
		{
			newsProtected.POST("", handlers.CreateNews)
			newsProtected.PUT("/:id", handlers.UpdateNews)
			newsProtected.DELETE("/:id", handlers.DeleteNews)
		}

		venueProtected := protected.Group("/venues")
		{
			venueProtected.POST("", handlers.CreateVenue)
			venueProtected.PUT("/:id", handlers.UpdateVenue)
			venueProtected.DELETE("/:id", handlers.DeleteVenue)
		}

		ensembleProtected := protected.Group("/ensembles")
		{
			ensembleProtected.POST("", handlers.CreateEnsemble)
			ensembleProtected.PUT("/:id", handlers.UpdateEnsemble)
			ensembleProtected.DELETE("/:id", handlers.DeleteEnsemble)
		}

		festivalProtected := protected.Group("/festivals")
		{
			festivalProtected.POST("", handlers.CreateFestival)
			festivalProtected.PUT("/:id", handlers.UpdateFestival)
			festivalProtected.DELETE("/:id", handlers.DeleteFestival)
		}
	}

	staff := r.Group("/v1/admin")
	staff.Use(middleware.JWTAuthMiddleware(), middleware.StaffOnlyMiddleware())
	staff.Use(middleware.ScraperMiddleware(sc))
	{
		staff.POST("/scrape", handlers.TriggerScrape)
	}
}
