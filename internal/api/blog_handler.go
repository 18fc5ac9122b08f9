package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/service"
	"github.com/rs/zerolog"
)

// MsgBlogDeleted is returned by a successful delete
const MsgBlogDeleted = "Blog deleted successfully"

// BlogHandler handles the post endpoints
type BlogHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewBlogHandler creates a new BlogHandler
func NewBlogHandler(services *service.Services, log zerolog.Logger) *BlogHandler {
	return &BlogHandler{
		services: services,
		log:      log.With().Str("handler", "blog").Logger(),
	}
}

// List handles GET /api/blogs
func (h *BlogHandler) List(c *gin.Context) {
	posts, err := h.services.Posts.List(c.Request.Context())
	h.respondPosts(c, posts, err)
}

// Featured handles GET /api/blogs/featured
func (h *BlogHandler) Featured(c *gin.Context) {
	posts, err := h.services.Posts.ListFeatured(c.Request.Context())
	h.respondPosts(c, posts, err)
}

// Latest handles GET /api/blogs/latest/:count. A count that is not a
// positive number falls back to the default.
func (h *BlogHandler) Latest(c *gin.Context) {
	n, _ := strconv.Atoi(c.Param("count"))
	posts, err := h.services.Posts.ListLatest(c.Request.Context(), n)
	h.respondPosts(c, posts, err)
}

// Get handles GET /api/blogs/:slug
func (h *BlogHandler) Get(c *gin.Context) {
	post, err := h.services.Posts.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Create handles POST /api/blogs
func (h *BlogHandler) Create(c *gin.Context) {
	var input models.PostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err)
		return
	}

	post, err := h.services.Posts.Create(c.Request.Context(), &input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// Update handles PUT /api/blogs/:slug
func (h *BlogHandler) Update(c *gin.Context) {
	var input models.PostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err)
		return
	}

	post, err := h.services.Posts.Update(c.Request.Context(), c.Param("slug"), &input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Delete handles DELETE /api/blogs/:id
func (h *BlogHandler) Delete(c *gin.Context) {
	if err := h.services.Posts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": MsgBlogDeleted})
}

func (h *BlogHandler) respondPosts(c *gin.Context, posts []*models.Post, err error) {
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	c.JSON(http.StatusOK, posts)
}
