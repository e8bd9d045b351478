package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Query scopes for event listings. The temporal scopes take an explicit "now"
// so that the cut-off is fixed once per request, not re-evaluated mid-query.

// Upcoming selects events that have not started yet: dated after today, or
// dated today at the current time or later. Ascending by (date, time).
func Upcoming(now time.Time) func(db *gorm.DB) *gorm.DB {
	today := DateOf(now).String()
	clock := TimeOf(now).String()
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("date > ? OR (date = ? AND time >= ?)", today, today, clock).
			Order("date ASC, time ASC")
	}
}

// Past selects events that already started, newest first.
func Past(now time.Time) func(db *gorm.DB) *gorm.DB {
	today := DateOf(now).String()
	clock := TimeOf(now).String()
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("date < ? OR (date = ? AND time < ?)", today, today, clock).
			Order("date DESC, time DESC")
	}
}

// Today selects events dated today regardless of time of day. This is the
// date-equality notion: an event that started an hour ago is still "today"
// here even though Upcoming excludes it.
func Today(now time.Time) func(db *gorm.DB) *gorm.DB {
	today := DateOf(now).String()
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("date = ?", today).Order("time ASC")
	}
}

// ThisWeek selects events within [today, today+7], bounds inclusive.
func ThisWeek(now time.Time) func(db *gorm.DB) *gorm.DB {
	today := DateOf(now)
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("date >= ? AND date <= ?", today.String(), today.AddDays(7).String()).
			Order("date ASC, time ASC")
	}
}

// ByCategory narrows to one category; empty or "all" is a no-op.
func ByCategory(category string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if category == "" || category == "all" {
			return db
		}
		return db.Where("category = ?", category)
	}
}

func ByVenue(venueID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if venueID == uuid.Nil {
			return db
		}
		return db.Where("venue_id = ?", venueID)
	}
}

// ByEnsemble matches events having the ensemble among their associations.
// The join can produce one row per association, so the result is deduplicated.
func ByEnsemble(ensembleID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if ensembleID == uuid.Nil {
			return db
		}
		return db.Joins("JOIN event_ensembles ON event_ensembles.event_id = events.id").
			Where("event_ensembles.ensemble_id = ?", ensembleID).
			Distinct("events.*")
	}
}

// Search matches the query case-insensitively against name or description.
func Search(q string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		q = strings.TrimSpace(q)
		if q == "" {
			return db
		}
		pattern := "%" + strings.ToLower(q) + "%"
		return db.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
}

func DateFrom(d DateOnly) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("date >= ?", d.String())
	}
}

func DateTo(d DateOnly) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("date <= ?", d.String())
	}
}

// ByCreator scopes to records owned by the user. Events without a creator
// have a NULL created_by_id and never match.
func ByCreator(userID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("created_by_id = ?", userID)
	}
}

// News scopes.

func PublishedNews(db *gorm.DB) *gorm.DB {
	return db.Where("is_published = ?", true).Order("published_at DESC")
}

func NewsByCategory(category string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if category == "" || category == "all" {
			return db
		}
		return db.Where("category = ?", category)
	}
}

func NewsSearch(q string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		q = strings.TrimSpace(q)
		if q == "" {
			return db
		}
		pattern := "%" + strings.ToLower(q) + "%"
		return db.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", pattern, pattern)
	}
}

func NewsByAuthor(userID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("author_id = ?", userID)
	}
}
