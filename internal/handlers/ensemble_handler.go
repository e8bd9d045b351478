package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dezmoond/chita-afisha/internal/helpers"
	"github.com/dezmoond/chita-afisha/internal/models"
)

type EnsembleRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func ListEnsembles(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var ensembles []models.Ensemble
	if err := gormDB.Order("name ASC").Find(&ensembles).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving ensembles.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ensembles": ensembles})
}

func GetEnsemble(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var ensemble models.Ensemble
	if err := gormDB.Where("id = ?", c.Param("id")).First(&ensemble).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Ensemble not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving ensemble.")
		return
	}

	c.JSON(http.StatusOK, ensemble)
}

func CreateEnsemble(c *gin.Context) {
	var req EnsembleRequest
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

	ensemble := models.Ensemble{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := gormDB.Create(&ensemble).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create ensemble.")
		return
	}

	c.JSON(http.StatusCreated, ensemble)
}

func UpdateEnsemble(c *gin.Context) {
	var req EnsembleRequest
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

	var ensemble models.Ensemble
	if err := gormDB.Where("id = ?", c.Param("id")).First(&ensemble).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Ensemble not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving ensemble.")
		return
	}

	ensemble.Name = req.Name
	ensemble.Description = req.Description
	if err := gormDB.Save(&ensemble).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update ensemble.")
		return
	}

	c.JSON(http.StatusOK, ensemble)
}

func DeleteEnsemble(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	result := gormDB.Where("id = ?", c.Param("id")).Delete(&models.Ensemble{})
	if result.Error != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete ensemble.")
		return
	}
	if result.RowsAffected == 0 {
		helpers.RespondWithError(c, http.StatusNotFound, "Ensemble not found.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ensemble deleted successfully."})
}
