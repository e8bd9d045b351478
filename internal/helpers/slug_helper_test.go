package helpers

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Концерт весны", "koncert-vesny"},
		// й decomposes to и plus a combining breve under NFD, so it comes
		// out as "i".
		{"Забайкальская краевая филармония", "zabaikalskaya-kraevaya-filarmoniya"},
		{"Hello, World!", "hello-world"},
		{"Café  &  Déjà Vu", "cafe-deja-vu"},
		{"Щи и борщ", "schi-i-borsch"},
		{"  --- ", "item"},
		{"", "item"},
		{"Ёлка 2024!", "elka-2024"},
		{"съезд", "sezd"},
	}

	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugifyCapsLength(t *testing.T) {
	long := ""
	for i := 0; i < 60; i++ {
		long += "слово "
	}
	got := Slugify(long)
	if len([]rune(got)) > 150 {
		t.Errorf("slug length %d exceeds cap", len([]rune(got)))
	}
	if got[len(got)-1] == '-' {
		t.Errorf("capped slug ends with a dash: %q", got)
	}
}

func TestUniqueSlug(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("CREATE TABLE pages (slug TEXT UNIQUE)").Error; err != nil {
		t.Fatalf("create table: %v", err)
	}

	take := func(base string) string {
		slug, err := UniqueSlug(db, "pages", "slug", base)
		if err != nil {
			t.Fatalf("UniqueSlug(%q): %v", base, err)
		}
		if err := db.Exec("INSERT INTO pages (slug) VALUES (?)", slug).Error; err != nil {
			t.Fatalf("insert %q: %v", slug, err)
		}
		return slug
	}

	if got := take("afisha"); got != "afisha" {
		t.Errorf("first slug = %q", got)
	}
	if got := take("afisha"); got != "afisha-1" {
		t.Errorf("second slug = %q", got)
	}
	if got := take("afisha"); got != "afisha-2" {
		t.Errorf("third slug = %q", got)
	}
	if got := take("other"); got != "other" {
		t.Errorf("unrelated base collided: %q", got)
	}
}
