package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dezmoond/chita-afisha/internal/helpers"
	"github.com/dezmoond/chita-afisha/internal/models"
)

// applyEventFilters narrows a listing by the optional query criteria.
// Absent and "all" values are no-ops, and malformed dates are ignored rather
// than rejected, so a bad filter degrades to the unfiltered listing.
func applyEventFilters(c *gin.Context, query *gorm.DB) *gorm.DB {
	query = query.Scopes(
		models.ByCategory(c.Query("category")),
		models.Search(c.Query("q")),
	)

	if venueID, err := helpers.ParseUUIDParam(c.Query("venue")); err == nil && venueID != uuid.Nil {
		query = query.Scopes(models.ByVenue(venueID))
	}
	if ensembleID, err := helpers.ParseUUIDParam(c.Query("ensemble")); err == nil && ensembleID != uuid.Nil {
		query = query.Scopes(models.ByEnsemble(ensembleID))
	}
	if from, err := models.ParseDate(c.Query("start_date")); err == nil {
		query = query.Scopes(models.DateFrom(from))
	}
	if to, err := models.ParseDate(c.Query("end_date")); err == nil {
		query = query.Scopes(models.DateTo(to))
	}
	return query
}

func listEventsWithBase(c *gin.Context, base func(db *gorm.DB) *gorm.DB) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	query := gormDB.Model(&models.Event{}).Scopes(base)
	query = applyEventFilters(c, query)

	var events []models.Event
	if err := query.Preload("Venue").Preload("Ensembles").Find(&events).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving events.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"total":  len(events),
	})
}

// ListEvents is the main listing: upcoming events, ascending.
func ListEvents(c *gin.Context) {
	listEventsWithBase(c, models.Upcoming(time.Now()))
}

// ArchiveEvents lists already-started events, newest first.
func ArchiveEvents(c *gin.Context) {
	listEventsWithBase(c, models.Past(time.Now()))
}

// TodayEvents lists everything dated today, started or not.
func TodayEvents(c *gin.Context) {
	listEventsWithBase(c, models.Today(time.Now()))
}

// WeekEvents lists events within the next seven days.
func WeekEvents(c *gin.Context) {
	listEventsWithBase(c, models.ThisWeek(time.Now()))
}

func GetEvent(c *gin.Context) {
	slug := c.Param("slug")

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var event models.Event
	if err := gormDB.Preload("Venue").Preload("Ensembles").Preload("CreatedBy").Where("slug = ?", slug).First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	c.JSON(http.StatusOK, event)
}

func CreateEvent(c *gin.Context) {
	name := c.PostForm("name")
	category := c.PostForm("category")
	description := c.PostForm("description")
	price := c.PostForm("price")
	ticketURL := c.PostForm("ticket_url")

	if name == "" || description == "" {
		helpers.RespondWithError(c, http.StatusBadRequest, "Missing required fields.")
		return
	}
	if !models.IsEventCategory(category) {
		helpers.RespondWithError(c, http.StatusBadRequest, "Unknown event category.")
		return
	}

	date, err := models.ParseDate(c.PostForm("date"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD.")
		return
	}
	eventTime, err := models.ParseTime(c.PostForm("time"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid time format, expected HH:MM.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var user models.User
	if err := gormDB.Where("id = ?", userID).First(&user).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "User not found.")
		return
	}

	var venueID *uuid.UUID
	if v := c.PostForm("venue_id"); v != "" {
		parsed, err := uuid.Parse(v)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid venue id.")
			return
		}
		var venue models.Venue
		if err := gormDB.Where("id = ?", parsed).First(&venue).Error; err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Venue not found.")
			return
		}
		venueID = &parsed
	}

	var ensembles []models.Ensemble
	for i := 0; ; i++ {
		ensembleName := c.PostForm(fmt.Sprintf("ensembles[%d]", i))
		if ensembleName == "" {
			break
		}
		var ensemble models.Ensemble
		if err := gormDB.Where("name = ?", ensembleName).FirstOrCreate(&ensemble, models.Ensemble{Name: ensembleName}).Error; err != nil {
			helpers.RespondWithError(c, http.StatusInternalServerError, "Error processing ensembles.")
			return
		}
		ensembles = append(ensembles, ensemble)
	}

	event := models.Event{
		ID:          uuid.New(),
		Category:    category,
		Name:        name,
		Date:        date,
		Time:        eventTime,
		Price:       price,
		Description: description,
		TicketURL:   ticketURL,
		VenueID:     venueID,
		CreatedByID: &user.ID,
		Ensembles:   ensembles,
	}

	imageFile, err := c.FormFile("image")
	if err == nil {
		imagePath, err := helpers.UploadFile(c, imageFile, "events")
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		event.ImagePath = imagePath
	}

	if err := gormDB.Create(&event).Error; err != nil {
		// Event names are globally unique; a duplicate is a hard failure,
		// never a silent rename.
		helpers.RespondWithError(c, http.StatusConflict, "An event with this name already exists.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Event created successfully.",
		"event_id": event.ID,
		"slug":     event.Slug,
	})
}

func UpdateEvent(c *gin.Context) {
	eventID := c.Param("id")
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var event models.Event
	if err := gormDB.Where("id = ? AND created_by_id = ?", eventID, userID).First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusForbidden, "Event not found or you don't have permission to update.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error finding event.")
		return
	}

	if name := c.PostForm("name"); name != "" {
		event.Name = name
	}
	if category := c.PostForm("category"); category != "" {
		if !models.IsEventCategory(category) {
			helpers.RespondWithError(c, http.StatusBadRequest, "Unknown event category.")
			return
		}
		event.Category = category
	}
	if d := c.PostForm("date"); d != "" {
		date, err := models.ParseDate(d)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD.")
			return
		}
		event.Date = date
	}
	if t := c.PostForm("time"); t != "" {
		eventTime, err := models.ParseTime(t)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid time format, expected HH:MM.")
			return
		}
		event.Time = eventTime
	}
	if price := c.PostForm("price"); price != "" {
		event.Price = price
	}
	if description := c.PostForm("description"); description != "" {
		event.Description = description
	}
	if ticketURL := c.PostForm("ticket_url"); ticketURL != "" {
		event.TicketURL = ticketURL
	}

	imageFile, err := c.FormFile("image")
	if err == nil {
		imagePath, err := helpers.UploadFile(c, imageFile, "events")
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		if event.ImagePath != "" {
			if err := helpers.DeleteFile(event.ImagePath); err != nil {
				fmt.Printf("Error deleting old image: %v\n", err)
			}
		}
		event.ImagePath = imagePath
	}

	// The slug was assigned at first save and stays as-is even when the
	// name or date changes.
	if err := gormDB.Save(&event).Error; err != nil {
		helpers.RespondWithError(c, http.StatusConflict, "Failed to update event; the name may already be taken.")
		return
	}

	var ensembles []models.Ensemble
	replace := false
	for i := 0; ; i++ {
		ensembleName := c.PostForm(fmt.Sprintf("ensembles[%d]", i))
		if ensembleName == "" {
			break
		}
		replace = true
		var ensemble models.Ensemble
		if err := gormDB.Where("name = ?", ensembleName).FirstOrCreate(&ensemble, models.Ensemble{Name: ensembleName}).Error; err != nil {
			helpers.RespondWithError(c, http.StatusInternalServerError, "Error processing ensembles.")
			return
		}
		ensembles = append(ensembles, ensemble)
	}
	if replace {
		if err := gormDB.Model(&event).Association("Ensembles").Replace(ensembles); err != nil {
			helpers.RespondWithError(c, http.StatusInternalServerError, "Error updating ensembles.")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event updated successfully.",
		"event":   event,
	})
}

func DeleteEvent(c *gin.Context) {
	eventID := c.Param("id")
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	result := gormDB.Where("id = ? AND created_by_id = ?", eventID, userID).Delete(&models.Event{})
	if result.Error != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete event.")
		return
	}

	if result.RowsAffected == 0 {
		helpers.RespondWithError(c, http.StatusForbidden, "Event not found or you don't have permission to delete.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event deleted successfully.",
	})
}
