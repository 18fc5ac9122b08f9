package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/personal-blog-api/internal/service"
	"github.com/rs/zerolog"
)

// Newsletter outcomes
const (
	MsgSubscribed        = "Subscribed successfully"
	MsgAlreadySubscribed = "Already subscribed"
)

// SubscribeRequest is the body of POST /api/newsletter
type SubscribeRequest struct {
	Email string `json:"email" form:"email" binding:"required,email"`
}

// NewsletterHandler handles newsletter signups
type NewsletterHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewNewsletterHandler creates a new NewsletterHandler
func NewNewsletterHandler(services *service.Services, log zerolog.Logger) *NewsletterHandler {
	return &NewsletterHandler{
		services: services,
		log:      log.With().Str("handler", "newsletter").Logger(),
	}
}

// Subscribe handles POST /api/newsletter
func (h *NewsletterHandler) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	created, err := h.services.Newsletter.Subscribe(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if !created {
		c.JSON(http.StatusOK, gin.H{"message": MsgAlreadySubscribed})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": MsgSubscribed})
}
