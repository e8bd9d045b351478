package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dezmoond/chita-afisha/internal/helpers"
	"github.com/dezmoond/chita-afisha/internal/models"
)

type VenueRequest struct {
	Name        string `json:"name" binding:"required"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

func ListVenues(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var venues []models.Venue
	if err := gormDB.Order("name ASC").Find(&venues).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving venues.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"venues": venues})
}

func GetVenue(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var venue models.Venue
	if err := gormDB.Where("id = ?", c.Param("id")).First(&venue).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Venue not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving venue.")
		return
	}

	c.JSON(http.StatusOK, venue)
}

func CreateVenue(c *gin.Context) {
	var req VenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	venue := models.Venue{
		Name:        req.Name,
		Address:     req.Address,
		Description: req.Description,
	}
	if err := gormDB.Create(&venue).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create venue.")
		return
	}

	c.JSON(http.StatusCreated, venue)
}

func UpdateVenue(c *gin.Context) {
	var req VenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var venue models.Venue
	if err := gormDB.Where("id = ?", c.Param("id")).First(&venue).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Venue not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving venue.")
		return
	}

	venue.Name = req.Name
	venue.Address = req.Address
	venue.Description = req.Description
	if err := gormDB.Save(&venue).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update venue.")
		return
	}

	c.JSON(http.StatusOK, venue)
}

// DeleteVenue removes the venue; events that referenced it keep existing
// with a null venue.
func DeleteVenue(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	result := gormDB.Where("id = ?", c.Param("id")).Delete(&models.Venue{})
	if result.Error != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete venue.")
		return
	}
	if result.RowsAffected == 0 {
		helpers.RespondWithError(c, http.StatusNotFound, "Venue not found.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Venue deleted successfully."})
}
