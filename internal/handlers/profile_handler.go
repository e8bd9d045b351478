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

func GetProfile(c *gin.Context) {
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
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "User not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving profile.")
		return
	}

	var eventCount, newsCount int64
	gormDB.Model(&models.Event{}).Scopes(models.ByCreator(user.ID)).Count(&eventCount)
	gormDB.Model(&models.News{}).Scopes(models.NewsByAuthor(user.ID)).Count(&newsCount)

	c.JSON(http.StatusOK, gin.H{
		"user":        user,
		"full_name":   user.FullName(),
		"event_count": eventCount,
		"news_count":  newsCount,
	})
}

func UpdateProfile(c *gin.Context) {
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

	if firstName := c.PostForm("first_name"); firstName != "" {
		user.FirstName = firstName
	}
	if lastName := c.PostForm("last_name"); lastName != "" {
		user.LastName = lastName
	}
	if phone := c.PostForm("phone"); phone != "" {
		user.Phone = &phone
	}
	if bio := c.PostForm("bio"); bio != "" {
		user.Bio = bio
	}
	if bd := c.PostForm("birth_date"); bd != "" {
		birthDate, err := models.ParseDate(bd)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD.")
			return
		}
		user.BirthDate = &birthDate
	}

	avatarFile, err := c.FormFile("avatar")
	if err == nil {
		avatarPath, err := helpers.UploadFile(c, avatarFile, "avatars")
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		if user.AvatarPath != "" {
			if err := helpers.DeleteFile(user.AvatarPath); err != nil {
				fmt.Printf("Error deleting old avatar: %v\n", err)
			}
		}
		user.AvatarPath = avatarPath
	}

	if err := gormDB.Save(&user).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update profile.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully.",
		"user":    user,
	})
}

// MyEvents lists the caller's own events. The optional "when" filter narrows
// to upcoming or past; anything else returns all of them, newest first.
func MyEvents(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}
	ownerID, err := uuid.Parse(userID.(string))
	if err != nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid user ID in token.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	query := gormDB.Model(&models.Event{}).Scopes(models.ByCreator(ownerID))
	switch c.Query("when") {
	case "upcoming":
		query = query.Scopes(models.Upcoming(time.Now()))
	case "past":
		query = query.Scopes(models.Past(time.Now()))
	default:
		query = query.Order("date DESC, time DESC")
	}
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

// MyNews lists the caller's own articles, drafts included.
func MyNews(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}
	authorID, err := uuid.Parse(userID.(string))
	if err != nil {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid user ID in token.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var news []models.News
	if err := gormDB.Scopes(models.NewsByAuthor(authorID)).Order("created_at DESC").Find(&news).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving news.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"news":  news,
		"total": len(news),
	})
}
