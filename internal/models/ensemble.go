package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ensemble is a performing group, linked to events many-to-many.
type Ensemble struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	Events      []Event   `gorm:"many2many:event_ensembles;" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ensemble *Ensemble) BeforeCreate(tx *gorm.DB) (err error) {
	if ensemble.ID == uuid.Nil {
		ensemble.ID = uuid.New()
	}
	return
}
