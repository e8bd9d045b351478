// Package scraper ingests events from external ticketing listings. Each run
// is a single sequential best-effort sweep: failures are skipped at the
// smallest possible granularity (session, then record, then source) and
// never abort the other sources.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/dezmoond/chita-afisha/internal/models"
)

const (
	// The upstream scrape had no timeout at all; a hung source would stall
	// the whole sweep.
	requestTimeout = 15 * time.Second
	browserUA      = "Mozilla/5.0"
	// Relative ticket links resolve against the ticketing site, not the
	// individual listing URL.
	ticketBase = "https://quicktickets.ru"
)

// nowFunc supplies the reference time for year inference; tests pin it.
var nowFunc = time.Now

type Scraper struct {
	db       *gorm.DB
	client   *http.Client
	log      zerolog.Logger
	sources  []Source
	imageDir string
}

// RunStats summarizes one sweep.
type RunStats struct {
	Created       int
	Skipped       int
	SourcesFailed int
}

func New(db *gorm.DB, log zerolog.Logger, sources []Source) *Scraper {
	return &Scraper{
		db:       db,
		client:   &http.Client{Timeout: requestTimeout},
		log:      log.With().Str("component", "scraper").Logger(),
		sources:  sources,
		imageDir: "./uploads/events",
	}
}

// Run sweeps every configured source once. A failing source is logged and
// skipped; the remaining sources still run.
func (s *Scraper) Run(ctx context.Context) RunStats {
	var stats RunStats
	for _, src := range s.sources {
		created, skipped, err := s.runSource(ctx, src)
		stats.Created += created
		stats.Skipped += skipped
		if err != nil {
			stats.SourcesFailed++
			s.log.Error().Err(err).Str("source", src.ID).Msg("source sweep failed")
			continue
		}
		s.log.Info().Str("source", src.ID).Int("created", created).Int("skipped", skipped).Msg("source processed")
	}
	return stats
}

func (s *Scraper) runSource(ctx context.Context, src Source) (created, skipped int, err error) {
	venue, err := s.resolveVenue(src.Name)
	if err != nil {
		return 0, 0, fmt.Errorf("resolve venue %q: %w", src.Name, err)
	}

	events, err := s.fetchListing(ctx, src.URL)
	if err != nil {
		return 0, 0, fmt.Errorf("fetch %s: %w", src.URL, err)
	}

	for _, ev := range events {
		c, sk := s.storeSessions(ctx, ev, venue)
		created += c
		skipped += sk
	}
	return created, skipped, nil
}

// resolveVenue is get-or-create by name; a newly created row gets empty
// address and description. The sweep is assumed to run one at a time, so the
// check-then-act window is acceptable here.
func (s *Scraper) resolveVenue(name string) (*models.Venue, error) {
	var venue models.Venue
	err := s.db.Where("name = ?", name).
		FirstOrCreate(&venue, models.Venue{Name: name, Address: "", Description: ""}).Error
	if err != nil {
		return nil, err
	}
	return &venue, nil
}

func (s *Scraper) fetchListing(ctx context.Context, listingURL string) ([]rawEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listingURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUA)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	base, err := url.Parse(ticketBase)
	if err != nil {
		return nil, err
	}
	return parseListing(resp.Body, base)
}

// storeSessions persists one event per parseable session string. Duplicates
// (same composite name) and unparseable sessions are skipped, never fatal.
func (s *Scraper) storeSessions(ctx context.Context, ev rawEvent, venue *models.Venue) (created, skipped int) {
	for _, raw := range ev.Sessions {
		date, tod, err := parseSessionDate(raw, nowFunc())
		if err != nil {
			s.log.Warn().Err(err).Str("title", ev.Title).Msg("skipping session")
			skipped++
			continue
		}

		// Conservative dedup key: title plus date, matching the stored name.
		name := fmt.Sprintf("%s (%s)", ev.Title, date)
		var count int64
		if err := s.db.Model(&models.Event{}).Where("name = ?", name).Count(&count).Error; err != nil {
			s.log.Error().Err(err).Str("name", name).Msg("dedup lookup failed")
			skipped++
			continue
		}
		if count > 0 {
			skipped++
			continue
		}

		imagePath := s.downloadImage(ctx, ev.ImageURL)

		event := models.Event{
			// Category is fixed: the source text is not classified.
			Category:    models.CategoryConcert,
			Name:        name,
			Date:        date,
			Time:        tod,
			Price:       "",
			Description: ev.Description,
			TicketURL:   ev.TicketURL,
			ImagePath:   imagePath,
			VenueID:     &venue.ID,
		}
		if err := s.db.Create(&event).Error; err != nil {
			s.log.Error().Err(err).Str("name", name).Msg("create failed")
			skipped++
			continue
		}
		created++
	}
	return created, skipped
}

// downloadImage is best effort: any failure just means the event goes in
// without an image.
func (s *Scraper) downloadImage(ctx context.Context, imageURL string) string {
	if imageURL == "" {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return ""
	}
	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Warn().Err(err).Str("url", imageURL).Msg("image download failed")
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}

	parsed, err := url.Parse(imageURL)
	if err != nil {
		return ""
	}
	name := path.Base(parsed.Path)
	if name == "." || name == "/" {
		return ""
	}

	if err := os.MkdirAll(s.imageDir, os.ModePerm); err != nil {
		return ""
	}
	dst := filepath.Join(s.imageDir, name)
	f, err := os.Create(dst)
	if err != nil {
		return ""
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(dst)
		return ""
	}
	return dst
}
