package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dezmoond/chita-afisha/internal/cache"
	"github.com/dezmoond/chita-afisha/internal/middleware"
	"github.com/dezmoond/chita-afisha/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

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

	err = db.AutoMigrate(
		&models.User{},
		&models.Venue{},
		&models.Ensemble{},
		&models.Festival{},
		&models.Event{},
		&models.News{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	if err := models.RegisterNotifyCallbacks(db); err != nil {
		t.Fatalf("failed to register callbacks: %v", err)
	}
	return db
}

func setupRouter(t *testing.T, db *gorm.DB, store cache.Cache) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(middleware.DatabaseMiddleware(db))
	if store != nil {
		r.Use(middleware.CacheMiddleware(store))
	}

	public := r.Group("/v1")
	{
		public.POST("/register", Register)
		public.POST("/login", Login)
		public.GET("/stats", GetStats)
		public.GET("/events", ListEvents)
		public.GET("/events/archive", ArchiveEvents)
		public.GET("/events/:slug", GetEvent)
	}

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		protected.GET("/profile", GetProfile)
		protected.POST("/venues", CreateVenue)
	}

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func signToken(t *testing.T, userID string, isStaff bool) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  userID,
		"is_staff": isStaff,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestRegisterAndLoginFlow(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	db := setupTestDB(t)
	r := setupRouter(t, db, nil)

	register := map[string]string{
		"username": "masha",
		"email":    "masha@example.com",
		"password": "secret123",
	}
	if w := doJSON(t, r, http.MethodPost, "/v1/register", register, ""); w.Code != http.StatusCreated {
		t.Fatalf("register = %d: %s", w.Code, w.Body)
	}
	if w := doJSON(t, r, http.MethodPost, "/v1/register", register, ""); w.Code != http.StatusConflict {
		t.Errorf("duplicate register = %d, want 409", w.Code)
	}

	login := map[string]string{"username": "masha", "password": "secret123"}
	w := doJSON(t, r, http.MethodPost, "/v1/login", login, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login = %d: %s", w.Code, w.Body)
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("no token in login response: %s", w.Body)
	}

	bad := map[string]string{"username": "masha", "password": "wrong"}
	if w := doJSON(t, r, http.MethodPost, "/v1/login", bad, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("bad password = %d, want 401", w.Code)
	}

	// The issued token passes the auth middleware.
	if w := doJSON(t, r, http.MethodGet, "/v1/profile", nil, resp.Token); w.Code != http.StatusOK {
		t.Errorf("profile with token = %d: %s", w.Code, w.Body)
	}
	if w := doJSON(t, r, http.MethodGet, "/v1/profile", nil, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("profile without token = %d, want 401", w.Code)
	}
}

func TestListEventsFilters(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t, db, nil)

	venue := models.Venue{Name: "Родина"}
	if err := db.Create(&venue).Error; err != nil {
		t.Fatal(err)
	}

	tomorrow := models.DateOf(time.Now().AddDate(0, 0, 1))
	nextWeek := models.DateOf(time.Now().AddDate(0, 0, 6))
	lastWeek := models.DateOf(time.Now().AddDate(0, 0, -7))

	seed := []models.Event{
		{Category: models.CategoryConcert, Name: "Симфония весны", Date: tomorrow, Time: models.NewTime(19, 0), Description: "x", VenueID: &venue.ID},
		{Category: models.CategoryBallet, Name: "Щелкунчик", Date: nextWeek, Time: models.NewTime(18, 0), Description: "x"},
		{Category: models.CategoryConcert, Name: "Прошедший концерт", Date: lastWeek, Time: models.NewTime(19, 0), Description: "x"},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatal(err)
		}
	}

	listNames := func(rawQuery string) []string {
		w := doJSON(t, r, http.MethodGet, "/v1/events?"+rawQuery, nil, "")
		if w.Code != http.StatusOK {
			t.Fatalf("list = %d: %s", w.Code, w.Body)
		}
		var resp struct {
			Events []models.Event `json:"events"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		names := make([]string, len(resp.Events))
		for i, e := range resp.Events {
			names[i] = e.Name
		}
		return names
	}

	// The default listing holds only upcoming events.
	if got := listNames(""); len(got) != 2 {
		t.Errorf("unfiltered upcoming = %v", got)
	}

	q := url.Values{"category": {models.CategoryBallet}}
	if got := listNames(q.Encode()); len(got) != 1 || got[0] != "Щелкунчик" {
		t.Errorf("category filter = %v", got)
	}

	q = url.Values{"venue": {venue.ID.String()}}
	if got := listNames(q.Encode()); len(got) != 1 || got[0] != "Симфония весны" {
		t.Errorf("venue filter = %v", got)
	}

	// A malformed venue id degrades to the unfiltered listing.
	if got := listNames("venue=not-a-uuid"); len(got) != 2 {
		t.Errorf("malformed venue filter = %v", got)
	}

	q = url.Values{"q": {"весны"}}
	if got := listNames(q.Encode()); len(got) != 1 || got[0] != "Симфония весны" {
		t.Errorf("search filter = %v", got)
	}

	// The archive holds the inverse set.
	w := doJSON(t, r, http.MethodGet, "/v1/events/archive", nil, "")
	var archive struct {
		Events []models.Event `json:"events"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &archive); err != nil {
		t.Fatalf("decode archive: %v", err)
	}
	if len(archive.Events) != 1 || archive.Events[0].Name != "Прошедший концерт" {
		t.Errorf("archive = %d events", len(archive.Events))
	}
}

func TestGetEventBySlug(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t, db, nil)

	event := models.Event{
		Category:    models.CategoryConcert,
		Name:        "Органный вечер",
		Date:        models.NewDate(2024, time.June, 15),
		Time:        models.NewTime(19, 0),
		Description: "x",
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatal(err)
	}

	w := doJSON(t, r, http.MethodGet, "/v1/events/"+event.Slug, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get = %d: %s", w.Code, w.Body)
	}

	if w := doJSON(t, r, http.MethodGet, "/v1/events/no-such-slug", nil, ""); w.Code != http.StatusNotFound {
		t.Errorf("missing slug = %d, want 404", w.Code)
	}
}

func TestCreateVenueRequiresAuth(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	db := setupTestDB(t)
	r := setupRouter(t, db, nil)

	user := models.User{Username: "admin", Email: "admin@example.com", Password: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}

	body := map[string]string{"name": "Новая сцена"}
	if w := doJSON(t, r, http.MethodPost, "/v1/venues", body, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated create = %d, want 401", w.Code)
	}

	token := signToken(t, user.ID.String(), false)
	if w := doJSON(t, r, http.MethodPost, "/v1/venues", body, token); w.Code != http.StatusCreated {
		t.Errorf("authenticated create = %d: %s", w.Code, w.Body)
	}
}

func TestStatsServedFromCache(t *testing.T) {
	db := setupTestDB(t)
	store := cache.New()
	r := setupRouter(t, db, store)

	venue := models.Venue{Name: "Родина"}
	if err := db.Create(&venue).Error; err != nil {
		t.Fatal(err)
	}

	get := func() SiteStats {
		w := doJSON(t, r, http.MethodGet, "/v1/stats", nil, "")
		if w.Code != http.StatusOK {
			t.Fatalf("stats = %d: %s", w.Code, w.Body)
		}
		var s SiteStats
		if err := json.Unmarshal(w.Body.Bytes(), &s); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return s
	}

	first := get()
	if first.Venues != 1 {
		t.Fatalf("venues = %d, want 1", first.Venues)
	}

	// A direct database write is invisible until the key is invalidated.
	if err := db.Create(&models.Venue{Name: "Узоры"}).Error; err != nil {
		t.Fatal(err)
	}
	if cached := get(); cached.Venues != 1 {
		t.Errorf("stats recomputed despite warm cache: venues = %d", cached.Venues)
	}

	store.Invalidate(StatsCacheKey)
	if fresh := get(); fresh.Venues != 2 {
		t.Errorf("stats stale after invalidation: venues = %d", fresh.Venues)
	}
}

func TestStatsQueryFailureNotCached(t *testing.T) {
	db := setupTestDB(t)
	store := cache.New()
	r := setupRouter(t, db, store)

	if err := db.Exec("DROP TABLE events").Error; err != nil {
		t.Fatal(err)
	}

	w := doJSON(t, r, http.MethodGet, "/v1/stats", nil, "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("stats over broken schema = %d, want 500", w.Code)
	}
	if _, ok := store.Get(StatsCacheKey); ok {
		t.Error("failed computation left an entry in the cache")
	}
}
