package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dezmoond/chita-afisha/internal/helpers"
	"github.com/dezmoond/chita-afisha/internal/models"
)

type FestivalRequest struct {
	Name        string `json:"name" binding:"required"`
	Date        string `json:"date" binding:"required"`
	Description string `json:"description"`
}

func ListFestivals(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var festivals []models.Festival
	if err := gormDB.Order("date ASC").Find(&festivals).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving festivals.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"festivals": festivals})
}

func GetFestival(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var festival models.Festival
	if err := gormDB.Where("id = ?", c.Param("id")).First(&festival).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Festival not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving festival.")
		return
	}

	c.JSON(http.StatusOK, festival)
}

func CreateFestival(c *gin.Context) {
	var req FestivalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	date, err := models.ParseDate(req.Date)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	festival := models.Festival{
		Name:        req.Name,
		Date:        date,
		Description: req.Description,
	}
	if err := gormDB.Create(&festival).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create festival.")
		return
	}

	c.JSON(http.StatusCreated, festival)
}

func UpdateFestival(c *gin.Context) {
	var req FestivalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	date, err := models.ParseDate(req.Date)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var festival models.Festival
	if err := gormDB.Where("id = ?", c.Param("id")).First(&festival).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Festival not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving festival.")
		return
	}

	festival.Name = req.Name
	festival.Date = date
	festival.Description = req.Description
	if err := gormDB.Save(&festival).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update festival.")
		return
	}

	c.JSON(http.StatusOK, festival)
}

func DeleteFestival(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	result := gormDB.Where("id = ?", c.Param("id")).Delete(&models.Festival{})
	if result.Error != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete festival.")
		return
	}
	if result.RowsAffected == 0 {
		helpers.RespondWithError(c, http.StatusNotFound, "Festival not found.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Festival deleted successfully."})
}
