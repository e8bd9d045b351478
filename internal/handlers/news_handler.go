package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dezmoond/chita-afisha/internal/helpers"
	"github.com/dezmoond/chita-afisha/internal/models"
)

// ListNews returns published articles, newest first, with optional category
// and free-text filters and page/limit pagination.
func ListNews(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	pageNum, err := helpers.StringToInt(c.DefaultQuery("page", "1"))
	if err != nil || pageNum < 1 {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid page number.")
		return
	}
	limitNum, err := helpers.StringToInt(c.DefaultQuery("limit", "10"))
	if err != nil || limitNum < 1 {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid limit.")
		return
	}

	query := gormDB.Model(&models.News{}).Scopes(
		models.PublishedNews,
		models.NewsByCategory(c.Query("category")),
		models.NewsSearch(c.Query("q")),
	)

	var totalCount int64
	query.Count(&totalCount)

	var news []models.News
	offset := (pageNum - 1) * limitNum
	if err := query.Preload("Author").Offset(offset).Limit(limitNum).Find(&news).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving news.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"news":        news,
		"total":       totalCount,
		"page":        pageNum,
		"limit":       limitNum,
		"total_pages": (totalCount + int64(limitNum) - 1) / int64(limitNum),
	})
}

func GetNews(c *gin.Context) {
	slug := c.Param("slug")

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var news models.News
	if err := gormDB.Preload("Author").Where("slug = ? AND is_published = ?", slug, true).First(&news).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "News article not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving news article.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"news":         news,
		"reading_time": news.ReadingTime(),
	})
}

func CreateNews(c *gin.Context) {
	title := c.PostForm("title")
	category := c.PostForm("category")
	content := c.PostForm("content")
	excerpt := c.PostForm("excerpt")
	isPublished := c.PostForm("is_published") == "true"

	if title == "" || content == "" {
		helpers.RespondWithError(c, http.StatusBadRequest, "Missing required fields.")
		return
	}
	if !models.IsNewsCategory(category) {
		helpers.RespondWithError(c, http.StatusBadRequest, "Unknown news category.")
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

	news := models.News{
		ID:          uuid.New(),
		Title:       title,
		Category:    category,
		Content:     content,
		Excerpt:     excerpt,
		AuthorID:    &user.ID,
		IsPublished: isPublished,
	}

	imageFile, err := c.FormFile("image")
	if err == nil {
		imagePath, err := helpers.UploadFile(c, imageFile, "news")
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		news.ImagePath = imagePath
	}

	if err := gormDB.Create(&news).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create news article.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "News article created successfully.",
		"news_id": news.ID,
		"slug":    news.Slug,
	})
}

func UpdateNews(c *gin.Context) {
	newsID := c.Param("id")
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

	var news models.News
	if err := gormDB.Where("id = ? AND author_id = ?", newsID, userID).First(&news).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusForbidden, "News article not found or you don't have permission to update.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error finding news article.")
		return
	}

	if title := c.PostForm("title"); title != "" {
		news.Title = title
	}
	if category := c.PostForm("category"); category != "" {
		if !models.IsNewsCategory(category) {
			helpers.RespondWithError(c, http.StatusBadRequest, "Unknown news category.")
			return
		}
		news.Category = category
	}
	if content := c.PostForm("content"); content != "" {
		news.Content = content
	}
	if excerpt := c.PostForm("excerpt"); excerpt != "" {
		news.Excerpt = excerpt
	}
	if published := c.PostForm("is_published"); published != "" {
		news.IsPublished = published == "true"
	}

	imageFile, err := c.FormFile("image")
	if err == nil {
		imagePath, err := helpers.UploadFile(c, imageFile, "news")
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		news.ImagePath = imagePath
	}

	if err := gormDB.Save(&news).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update news article.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "News article updated successfully.",
		"news":    news,
	})
}

func DeleteNews(c *gin.Context) {
	newsID := c.Param("id")
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

	result := gormDB.Where("id = ? AND author_id = ?", newsID, userID).Delete(&models.News{})
	if result.Error != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete news article.")
		return
	}
	if result.RowsAffected == 0 {
		helpers.RespondWithError(c, http.StatusForbidden, "News article not found or you don't have permission to delete.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "News article deleted successfully.",
	})
}
