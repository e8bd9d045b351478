package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/dezmoond/chita-afisha/internal/scraper"
)

// ScrapeJob reruns the ingestion sweep on an interval. Each sweep is
// independent; a failed one just waits for the next tick.
type ScrapeJob struct {
	scraper *scraper.Scraper
	log     zerolog.Logger
}

func NewScrapeJob(db *gorm.DB, log zerolog.Logger, sources []scraper.Source) *ScrapeJob {
	return &ScrapeJob{
		scraper: scraper.New(db, log, sources),
		log:     log.With().Str("component", "scrape-job").Logger(),
	}
}

// Start runs one sweep immediately, then one per interval, until ctx is done.
func (j *ScrapeJob) Start(ctx context.Context, interval time.Duration) {
	go func() {
		j.run(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				j.run(ctx)
			}
		}
	}()
}

func (j *ScrapeJob) run(ctx context.Context) {
	stats := j.scraper.Run(ctx)
	j.log.Info().
		Int("created", stats.Created).
		Int("skipped", stats.Skipped).
		Int("sources_failed", stats.SourcesFailed).
		Msg("sweep finished")
}
