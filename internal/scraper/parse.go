package scraper

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dezmoond/chita-afisha/internal/models"
)

const (
	placeholderTitle       = "Без названия"
	placeholderDescription = "Без описания"
)

var ruMonths = map[string]time.Month{
	"января": time.January, "февраля": time.February, "марта": time.March,
	"апреля": time.April, "мая": time.May, "июня": time.June,
	"июля": time.July, "августа": time.August, "сентября": time.September,
	"октября": time.October, "ноября": time.November, "декабря": time.December,
}

// rawEvent is one listing block before date parsing and de-duplication. A
// block can carry several session strings; each becomes its own event.
type rawEvent struct {
	Title       string
	Description string
	Sessions    []string
	TicketURL   string
	ImageURL    string
}

// parseListing extracts listing blocks from the page. Missing pieces degrade
// to placeholders or empty strings; nothing in here is a hard failure.
func parseListing(r io.Reader, base *url.URL) ([]rawEvent, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var events []rawEvent
	doc.Find("div.elem").Each(func(_ int, block *goquery.Selection) {
		ev := rawEvent{
			Title:       placeholderTitle,
			Description: placeholderDescription,
		}

		// Session dates reuse span.underline inside div.sessions; only spans
		// outside that container can be the title.
		titleSpans := block.Find("span.underline").Not("div.sessions span.underline")
		if title := strings.TrimSpace(titleSpans.First().Text()); title != "" {
			ev.Title = title
		}
		if desc := strings.TrimSpace(block.Find("div.d").First().Text()); desc != "" {
			ev.Description = desc
		}

		block.Find("div.sessions span.underline").Each(func(_ int, s *goquery.Selection) {
			if raw := strings.TrimSpace(s.Text()); raw != "" {
				ev.Sessions = append(ev.Sessions, raw)
			}
		})

		if href, ok := block.Find("p.b a").First().Attr("href"); ok {
			if ref, err := url.Parse(href); err == nil {
				ev.TicketURL = base.ResolveReference(ref).String()
			}
		}
		if src, ok := block.Find("img.polaroid").First().Attr("src"); ok {
			ev.ImageURL = src
		}

		events = append(events, ev)
	})

	return events, nil
}

// parseSessionDate converts a session string like "15 мая 19:00" into a date
// and a time of day. The listing carries no year, so the current year is
// assumed; listings read near the December/January boundary will misdate
// next-year events, which mirrors the upstream data and is left as-is.
func parseSessionDate(raw string, now time.Time) (models.DateOnly, models.TimeOfDay, error) {
	fields := strings.Fields(raw)
	if len(fields) != 3 {
		return models.DateOnly{}, models.TimeOfDay{}, fmt.Errorf("malformed session %q", raw)
	}

	day, err := strconv.Atoi(fields[0])
	if err != nil {
		return models.DateOnly{}, models.TimeOfDay{}, fmt.Errorf("bad day in %q: %w", raw, err)
	}

	month, ok := ruMonths[strings.ToLower(fields[1])]
	if !ok {
		return models.DateOnly{}, models.TimeOfDay{}, fmt.Errorf("unknown month in %q", raw)
	}

	clock := strings.Split(fields[2], ":")
	if len(clock) != 2 {
		return models.DateOnly{}, models.TimeOfDay{}, fmt.Errorf("bad time in %q", raw)
	}
	hour, err := strconv.Atoi(clock[0])
	if err != nil {
		return models.DateOnly{}, models.TimeOfDay{}, fmt.Errorf("bad hour in %q: %w", raw, err)
	}
	minute, err := strconv.Atoi(clock[1])
	if err != nil {
		return models.DateOnly{}, models.TimeOfDay{}, fmt.Errorf("bad minute in %q: %w", raw, err)
	}
	if day < 1 || day > 31 || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return models.DateOnly{}, models.TimeOfDay{}, fmt.Errorf("out-of-range session %q", raw)
	}

	return models.NewDate(now.Year(), month, day), models.NewTime(hour, minute), nil
}
