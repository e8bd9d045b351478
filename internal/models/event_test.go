package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	// :memory: is per-connection; keep the pool at one so every query sees
	// the same database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	err = db.AutoMigrate(
		&User{},
		&Venue{},
		&Ensemble{},
		&Festival{},
		&Event{},
		&News{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	if err := RegisterNotifyCallbacks(db); err != nil {
		t.Fatalf("failed to register callbacks: %v", err)
	}

	return db
}

func mustCreate(t *testing.T, db *gorm.DB, value any) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("create %T: %v", value, err)
	}
}

func TestEventSlugIncludesDate(t *testing.T) {
	db := setupTestDB(t)

	event := Event{
		Category:    CategoryConcert,
		Name:        "Концерт весны",
		Date:        NewDate(2024, time.June, 15),
		Time:        NewTime(19, 0),
		Description: "Весенняя программа.",
	}
	mustCreate(t, db, &event)

	if event.Slug != "koncert-vesny-2024-06-15" {
		t.Errorf("slug = %q, want %q", event.Slug, "koncert-vesny-2024-06-15")
	}
}

func TestEventSlugCollisionCounter(t *testing.T) {
	db := setupTestDB(t)

	// Distinct names that normalize to the same slug base on the same date.
	first := Event{
		Category:    CategoryConcert,
		Name:        "Вечер романса",
		Date:        NewDate(2024, time.June, 15),
		Time:        NewTime(18, 0),
		Description: "x",
	}
	second := Event{
		Category:    CategoryConcert,
		Name:        "Вечер романса!",
		Date:        NewDate(2024, time.June, 15),
		Time:        NewTime(20, 0),
		Description: "x",
	}
	third := Event{
		Category:    CategoryConcert,
		Name:        "Вечер романса...",
		Date:        NewDate(2024, time.June, 15),
		Time:        NewTime(21, 0),
		Description: "x",
	}
	mustCreate(t, db, &first)
	mustCreate(t, db, &second)
	mustCreate(t, db, &third)

	if first.Slug != "vecher-romansa-2024-06-15" {
		t.Errorf("first slug = %q", first.Slug)
	}
	if second.Slug != "vecher-romansa-2024-06-15-1" {
		t.Errorf("second slug = %q", second.Slug)
	}
	if third.Slug != "vecher-romansa-2024-06-15-2" {
		t.Errorf("third slug = %q", third.Slug)
	}
}

func TestEventSlugDateSuffixSeparatesRecurrences(t *testing.T) {
	db := setupTestDB(t)

	// Names vary only in punctuation, so both normalize to the same base and
	// only the date suffix keeps the slugs apart.
	first := Event{
		Category:    CategoryConcert,
		Name:        "Орган и скрипка",
		Date:        NewDate(2024, time.June, 15),
		Time:        NewTime(19, 0),
		Description: "x",
	}
	second := Event{
		Category:    CategoryConcert,
		Name:        "Орган и скрипка!",
		Date:        NewDate(2024, time.June, 16),
		Time:        NewTime(19, 0),
		Description: "x",
	}
	mustCreate(t, db, &first)
	mustCreate(t, db, &second)

	if first.Slug != "organ-i-skripka-2024-06-15" {
		t.Errorf("first slug = %q", first.Slug)
	}
	if second.Slug != "organ-i-skripka-2024-06-16" {
		t.Errorf("second slug = %q", second.Slug)
	}
}

func TestEventSlugNeverRegenerated(t *testing.T) {
	db := setupTestDB(t)

	event := Event{
		Category:    CategoryConcert,
		Name:        "Премьера",
		Date:        NewDate(2024, time.June, 15),
		Time:        NewTime(19, 0),
		Description: "x",
	}
	mustCreate(t, db, &event)
	original := event.Slug

	event.Name = "Премьера сезона"
	event.Date = NewDate(2024, time.July, 1)
	if err := db.Save(&event).Error; err != nil {
		t.Fatalf("save: %v", err)
	}

	var reloaded Event
	if err := db.First(&reloaded, "id = ?", event.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Slug != original {
		t.Errorf("slug changed on update: %q -> %q", original, reloaded.Slug)
	}
}

func TestEventTemporalMethods(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

	startedToday := Event{Date: NewDate(2024, time.June, 15), Time: NewTime(10, 0)}
	atNoon := Event{Date: NewDate(2024, time.June, 15), Time: NewTime(12, 0)}
	tonight := Event{Date: NewDate(2024, time.June, 15), Time: NewTime(19, 0)}
	yesterday := Event{Date: NewDate(2024, time.June, 14), Time: NewTime(19, 0)}
	tomorrow := Event{Date: NewDate(2024, time.June, 16), Time: NewTime(9, 0)}

	// An event that started an hour ago is past and no longer upcoming, but
	// still belongs to today's listing.
	if !startedToday.IsPast(now) || startedToday.IsUpcoming(now) || !startedToday.IsToday(now) {
		t.Errorf("started-today event classified wrong")
	}
	// Exactly now counts as not started yet.
	if atNoon.IsPast(now) || !atNoon.IsUpcoming(now) {
		t.Errorf("event at the current minute should be upcoming")
	}
	if tonight.IsPast(now) || !tonight.IsUpcoming(now) || !tonight.IsToday(now) {
		t.Errorf("tonight event classified wrong")
	}
	if !yesterday.IsPast(now) || yesterday.IsUpcoming(now) || yesterday.IsToday(now) {
		t.Errorf("yesterday event classified wrong")
	}
	if tomorrow.IsPast(now) || !tomorrow.IsUpcoming(now) || tomorrow.IsToday(now) {
		t.Errorf("tomorrow event classified wrong")
	}
}

func TestTemporalScopesPartition(t *testing.T) {
	db := setupTestDB(t)
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

	seed := []Event{
		{Category: CategoryConcert, Name: "a", Date: NewDate(2024, time.June, 14), Time: NewTime(19, 0), Description: "x"},
		{Category: CategoryConcert, Name: "b", Date: NewDate(2024, time.June, 15), Time: NewTime(10, 0), Description: "x"},
		{Category: CategoryConcert, Name: "c", Date: NewDate(2024, time.June, 15), Time: NewTime(12, 0), Description: "x"},
		{Category: CategoryConcert, Name: "d", Date: NewDate(2024, time.June, 15), Time: NewTime(19, 0), Description: "x"},
		{Category: CategoryConcert, Name: "e", Date: NewDate(2024, time.June, 16), Time: NewTime(9, 0), Description: "x"},
		{Category: CategoryConcert, Name: "f", Date: NewDate(2024, time.June, 22), Time: NewTime(19, 0), Description: "x"},
		{Category: CategoryConcert, Name: "g", Date: NewDate(2024, time.June, 23), Time: NewTime(19, 0), Description: "x"},
	}
	for i := range seed {
		mustCreate(t, db, &seed[i])
	}

	names := func(scope func(*gorm.DB) *gorm.DB) []string {
		var events []Event
		if err := db.Scopes(scope).Find(&events).Error; err != nil {
			t.Fatalf("query: %v", err)
		}
		out := make([]string, len(events))
		for i, e := range events {
			out[i] = e.Name
		}
		return out
	}

	upcoming := names(Upcoming(now))
	past := names(Past(now))
	today := names(Today(now))
	week := names(ThisWeek(now))

	// Every event is either upcoming or past, never both.
	if len(upcoming)+len(past) != len(seed) {
		t.Errorf("upcoming (%v) + past (%v) do not partition the %d events", upcoming, past, len(seed))
	}
	seen := map[string]bool{}
	for _, n := range append(append([]string{}, upcoming...), past...) {
		if seen[n] {
			t.Errorf("event %q in both partitions", n)
		}
		seen[n] = true
	}

	wantUpcoming := []string{"c", "d", "e", "f", "g"}
	if !equalStrings(upcoming, wantUpcoming) {
		t.Errorf("upcoming = %v, want %v", upcoming, wantUpcoming)
	}
	wantPast := []string{"b", "a"}
	if !equalStrings(past, wantPast) {
		t.Errorf("past = %v, want %v", past, wantPast)
	}

	// Today is date-equality: the already-started "b" is included.
	wantToday := []string{"b", "c", "d"}
	if !equalStrings(today, wantToday) {
		t.Errorf("today = %v, want %v", today, wantToday)
	}

	// Week spans [today, today+7] inclusive; "g" is on day eight.
	wantWeek := []string{"b", "c", "d", "e", "f"}
	if !equalStrings(week, wantWeek) {
		t.Errorf("week = %v, want %v", week, wantWeek)
	}
}

func equalStrings(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestVenueDeleteNullifiesEvents(t *testing.T) {
	db := setupTestDB(t)

	venue := Venue{Name: "Филармония"}
	mustCreate(t, db, &venue)

	event := Event{
		Category:    CategoryConcert,
		Name:        "Концерт",
		Date:        NewDate(2024, time.June, 15),
		Time:        NewTime(19, 0),
		Description: "x",
		VenueID:     &venue.ID,
	}
	mustCreate(t, db, &event)

	if err := db.Delete(&venue).Error; err != nil {
		t.Fatalf("delete venue: %v", err)
	}

	var reloaded Event
	if err := db.First(&reloaded, "id = ?", event.ID).Error; err != nil {
		t.Fatalf("event should survive venue deletion: %v", err)
	}
	if reloaded.VenueID != nil {
		t.Errorf("venue_id = %v, want nil", reloaded.VenueID)
	}
}

func TestUserDeleteCascadesEvents(t *testing.T) {
	db := setupTestDB(t)

	user := User{Username: "masha", Email: "masha@example.com", Password: "x"}
	mustCreate(t, db, &user)

	event := Event{
		Category:    CategoryConcert,
		Name:        "Авторский вечер",
		Date:        NewDate(2024, time.June, 15),
		Time:        NewTime(19, 0),
		Description: "x",
		CreatedByID: &user.ID,
	}
	mustCreate(t, db, &event)

	if err := db.Delete(&user).Error; err != nil {
		t.Fatalf("delete user: %v", err)
	}

	var count int64
	db.Model(&Event{}).Where("id = ?", event.ID).Count(&count)
	if count != 0 {
		t.Errorf("event survived its creator's deletion")
	}
}

func TestFilterScopesCompose(t *testing.T) {
	db := setupTestDB(t)

	venue := Venue{Name: "Родина"}
	other := Venue{Name: "Узоры"}
	mustCreate(t, db, &venue)
	mustCreate(t, db, &other)

	seed := []Event{
		{Category: CategoryConcert, Name: "Симфония номер пять", Date: NewDate(2024, time.June, 15), Time: NewTime(19, 0), Description: "x", VenueID: &venue.ID},
		{Category: CategoryPlay, Name: "Симфония города", Date: NewDate(2024, time.June, 16), Time: NewTime(19, 0), Description: "x", VenueID: &venue.ID},
		{Category: CategoryConcert, Name: "Симфония леса", Date: NewDate(2024, time.June, 17), Time: NewTime(19, 0), Description: "x", VenueID: &other.ID},
		{Category: CategoryConcert, Name: "Балет", Date: NewDate(2024, time.June, 18), Time: NewTime(19, 0), Description: "x", VenueID: &venue.ID},
	}
	for i := range seed {
		mustCreate(t, db, &seed[i])
	}

	var events []Event
	err := db.Model(&Event{}).Scopes(
		ByCategory(CategoryConcert),
		Search("номер"),
		ByVenue(venue.ID),
	).Find(&events).Error
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	if len(events) != 1 || events[0].Name != "Симфония номер пять" {
		t.Errorf("composed filters returned %d events, want exactly the one match", len(events))
	}
}

func TestByEnsembleDeduplicates(t *testing.T) {
	db := setupTestDB(t)

	quartet := Ensemble{Name: "Квартет"}
	soloist := Ensemble{Name: "Солист"}
	mustCreate(t, db, &quartet)
	mustCreate(t, db, &soloist)

	event := Event{
		Category:    CategoryConcert,
		Name:        "Совместный концерт",
		Date:        NewDate(2024, time.June, 15),
		Time:        NewTime(19, 0),
		Description: "x",
		Ensembles:   []Ensemble{quartet, soloist},
	}
	mustCreate(t, db, &event)

	var events []Event
	if err := db.Model(&Event{}).Scopes(ByEnsemble(quartet.ID)).Find(&events).Error; err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("got %d rows, want 1", len(events))
	}
}

func TestByCreatorSkipsOrphanEvents(t *testing.T) {
	db := setupTestDB(t)

	user := User{Username: "petya", Email: "petya@example.com", Password: "x"}
	mustCreate(t, db, &user)

	owned := Event{
		Category: CategoryConcert, Name: "Свой", Date: NewDate(2024, time.June, 15),
		Time: NewTime(19, 0), Description: "x", CreatedByID: &user.ID,
	}
	orphan := Event{
		Category: CategoryConcert, Name: "Импортированный", Date: NewDate(2024, time.June, 16),
		Time: NewTime(19, 0), Description: "x",
	}
	mustCreate(t, db, &owned)
	mustCreate(t, db, &orphan)

	var events []Event
	if err := db.Model(&Event{}).Scopes(ByCreator(user.ID)).Find(&events).Error; err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 1 || events[0].Name != "Свой" {
		t.Errorf("got %d events, want only the owned one", len(events))
	}

	// A NULL creator must not leak into anyone's listing, random id included.
	if err := db.Model(&Event{}).Scopes(ByCreator(uuid.New())).Find(&events).Error; err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("orphan events matched a random creator id")
	}
}

func TestEventObserversFire(t *testing.T) {
	db := setupTestDB(t)
	t.Cleanup(ResetObservers)

	var got []Action
	RegisterEventObserver(func(e *Event, action Action) {
		got = append(got, action)
	})

	event := Event{
		Category: CategoryConcert, Name: "Наблюдаемый", Date: NewDate(2024, time.June, 15),
		Time: NewTime(19, 0), Description: "x",
	}
	mustCreate(t, db, &event)

	event.Description = "y"
	if err := db.Save(&event).Error; err != nil {
		t.Fatalf("save: %v", err)
	}

	if len(got) != 2 || got[0] != ActionCreated || got[1] != ActionUpdated {
		t.Errorf("observer calls = %v", got)
	}

	// A write that never lands must not reach an observer.
	dup := Event{
		Category: CategoryConcert, Name: "Наблюдаемый", Date: NewDate(2024, time.June, 16),
		Time: NewTime(19, 0), Description: "x",
	}
	if err := db.Create(&dup).Error; err == nil {
		t.Fatal("duplicate name accepted")
	}
	if len(got) != 2 {
		t.Errorf("failed create notified observers: %v", got)
	}

	// Same for a delete that matches nothing.
	if err := db.Where("name = ?", "нет такого").Delete(&Event{}).Error; err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("zero-row delete notified observers: %v", got)
	}

	if err := db.Delete(&event).Error; err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(got) != 3 || got[2] != ActionDeleted {
		t.Errorf("observer calls after delete = %v", got)
	}
}
