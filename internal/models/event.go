package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dezmoond/chita-afisha/internal/helpers"
)

type Event struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Category    string     `gorm:"size:50;not null" json:"category"`
	Name        string     `gorm:"unique;not null" json:"name"`
	Slug        string     `gorm:"uniqueIndex;not null" json:"slug"`
	Date        DateOnly   `gorm:"type:date;not null" json:"date"`
	Time        TimeOfDay  `gorm:"type:time;not null" json:"time"`
	Price       string     `gorm:"size:50" json:"price"`
	Description string     `json:"description"`
	TicketURL   string     `gorm:"size:500" json:"ticket_url,omitempty"`
	ImagePath   string     `json:"image_path,omitempty"`
	VenueID     *uuid.UUID `gorm:"type:uuid" json:"venue_id,omitempty"`
	Venue       *Venue     `gorm:"constraint:OnDelete:SET NULL;" json:"venue,omitempty"`
	CreatedByID *uuid.UUID `gorm:"type:uuid" json:"created_by_id,omitempty"`
	CreatedBy   *User      `gorm:"constraint:OnDelete:CASCADE;" json:"created_by,omitempty"`
	Ensembles   []Ensemble `gorm:"many2many:event_ensembles;" json:"ensembles,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// BeforeCreate assigns the id and computes the slug. The slug is generated
// exactly once: updates never touch it, and a caller-provided slug is kept.
// The event date is baked into the slug base so that recurring programmes with
// identical names stay distinguishable.
func (event *Event) BeforeCreate(tx *gorm.DB) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Slug == "" {
		base := helpers.Slugify(event.Name) + event.Date.Format("-2006-01-02")
		slug, err := helpers.UniqueSlug(tx, "events", "slug", base)
		if err != nil {
			return err
		}
		event.Slug = slug
	}
	return nil
}

// IsPast reports whether the event has already started relative to now:
// either its date is before today, or it is dated today with an earlier time.
func (e *Event) IsPast(now time.Time) bool {
	today := DateOf(now)
	if e.Date.BeforeDate(today) {
		return true
	}
	return e.Date.EqualDate(today) && e.Time.BeforeClock(TimeOf(now))
}

// IsToday is date-equality only; an event that already started today still
// counts. IsUpcoming is the time-aware notion and disagrees with IsToday for
// such events. Both are kept deliberately.
func (e *Event) IsToday(now time.Time) bool {
	return e.Date.EqualDate(DateOf(now))
}

// IsUpcoming reports whether the event has not started yet: dated after
// today, or today at the current time or later.
func (e *Event) IsUpcoming(now time.Time) bool {
	today := DateOf(now)
	if e.Date.AfterDate(today) {
		return true
	}
	return e.Date.EqualDate(today) && !e.Time.BeforeClock(TimeOf(now))
}
