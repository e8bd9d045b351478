package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Venue is a physical location hosting events. There is no natural key: the
// scraper relies on get-or-create by name, nothing more.
type Venue struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Address     string    `gorm:"size:500" json:"address"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (venue *Venue) BeforeCreate(tx *gorm.DB) (err error) {
	if venue.ID == uuid.Nil {
		venue.ID = uuid.New()
	}
	return
}
