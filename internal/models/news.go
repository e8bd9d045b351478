package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dezmoond/chita-afisha/internal/helpers"
)

const (
	excerptMaxLen   = 150
	excerptMinBreak = 100
	readingWPM      = 200
)

type News struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Slug        string     `gorm:"uniqueIndex;not null" json:"slug"`
	Category    string     `gorm:"size:50;not null" json:"category"`
	Content     string     `gorm:"not null" json:"content"`
	Excerpt     string     `gorm:"size:200" json:"excerpt"`
	ImagePath   string     `json:"image_path,omitempty"`
	AuthorID    *uuid.UUID `gorm:"type:uuid" json:"author_id,omitempty"`
	Author      *User      `gorm:"constraint:OnDelete:SET NULL;" json:"author,omitempty"`
	IsPublished bool       `gorm:"not null;default:false" json:"is_published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (News) TableName() string {
	return "news"
}

func (news *News) BeforeCreate(tx *gorm.DB) error {
	if news.ID == uuid.Nil {
		news.ID = uuid.New()
	}
	if news.Slug == "" {
		slug, err := helpers.UniqueSlug(tx, "news", "slug", helpers.Slugify(news.Title))
		if err != nil {
			return err
		}
		news.Slug = slug
	}
	return nil
}

// BeforeSave defaults the excerpt from the content and stamps the publication
// time the first time the article is published.
func (news *News) BeforeSave(tx *gorm.DB) error {
	if news.Excerpt == "" && news.Content != "" {
		news.Excerpt = makeExcerpt(news.Content)
	}
	if news.IsPublished && news.PublishedAt == nil {
		now := time.Now()
		news.PublishedAt = &now
	}
	return nil
}

// makeExcerpt takes the first 150 characters of the content and, when the
// content is longer, cuts back to the last word boundary as long as that
// boundary is not too close to the start. The marker is always appended.
func makeExcerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= excerptMaxLen {
		return strings.TrimSpace(content) + "..."
	}
	cut := runes[:excerptMaxLen]
	// The boundary threshold counts characters, not bytes, so Cyrillic text
	// measures the same as ASCII.
	space := -1
	for i, r := range cut {
		if r == ' ' {
			space = i
		}
	}
	if space > excerptMinBreak {
		cut = cut[:space]
	}
	return strings.TrimSpace(string(cut)) + "..."
}

// ReadingTime estimates minutes to read the content at 200 words per minute,
// never reporting less than a minute.
func (n *News) ReadingTime() int {
	words := len(strings.Fields(n.Content))
	minutes := words / readingWPM
	if words%readingWPM != 0 {
		minutes++
	}
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
