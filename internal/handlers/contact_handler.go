package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dezmoond/chita-afisha/internal/helpers"
)

type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

// SubmitContact records a visitor message. There is no mail relay; messages
// land in the structured log where the operators read them.
func SubmitContact(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	log.Info().
		Str("name", req.Name).
		Str("email", req.Email).
		Str("subject", req.Subject).
		Str("message", req.Message).
		Msg("contact form submission")

	c.JSON(http.StatusOK, gin.H{
		"message": "Thank you for your message. We will get back to you soon.",
	})
}
