package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Festival is standalone reference data. An earlier schema revision linked
// events to festivals directly; the final schema replaced that relation with
// Event.created_by, so no foreign key exists here.
type Festival struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Date        DateOnly  `gorm:"type:date;not null" json:"date"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (festival *Festival) BeforeCreate(tx *gorm.DB) (err error) {
	if festival.ID == uuid.Nil {
		festival.ID = uuid.New()
	}
	return
}
