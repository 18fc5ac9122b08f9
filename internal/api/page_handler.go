package api

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/personal-blog-api/internal/models"
	"github.com/personal-blog-api/internal/render"
	"github.com/personal-blog-api/internal/service"
	"github.com/personal-blog-api/internal/web"
	"github.com/rs/zerolog"
)

// PageHandler serves the public HTML site
type PageHandler struct {
	services  *service.Services
	templates *web.Templates
	log       zerolog.Logger
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(services *service.Services, templates *web.Templates, log zerolog.Logger) *PageHandler {
	return &PageHandler{
		services:  services,
		templates: templates,
		log:       log.With().Str("handler", "pages").Logger(),
	}
}

// Home handles GET /
func (h *PageHandler) Home(c *gin.Context) {
	ctx := c.Request.Context()
	featured, err := h.services.Posts.ListFeatured(ctx)
	if err != nil {
		h.serverError(c, err)
		return
	}
	latest, err := h.services.Posts.ListLatest(ctx, models.DefaultLatestCount)
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.page(c, http.StatusOK, web.PageHome, web.HomeData{Title: "Home", Featured: featured, Latest: latest})
}

// List handles GET /blog
func (h *PageHandler) List(c *gin.Context) {
	posts, err := h.services.Posts.List(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.page(c, http.StatusOK, web.PageList, web.ListData{Title: "Blog", Posts: posts})
}

// Detail handles GET /blog/:slug
func (h *PageHandler) Detail(c *gin.Context) {
	post, err := h.services.Posts.GetBySlug(c.Request.Context(), c.Param("slug"))
	if service.IsKind(err, service.KindNotFound) {
		h.page(c, http.StatusNotFound, web.PageNotFound, web.NotFoundData{Title: "Not found"})
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}

	body, err := render.Render(post.Content)
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.page(c, http.StatusOK, web.PageDetail, web.DetailData{Title: post.Title, Post: post, Body: body})
}

// Newsletter handles GET /newsletter
func (h *PageHandler) Newsletter(c *gin.Context) {
	h.page(c, http.StatusOK, web.PageNewsletter, web.NewsletterData{Title: "Newsletter"})
}

// Subscribe handles the newsletter form post
func (h *PageHandler) Subscribe(c *gin.Context) {
	email := c.PostForm("email")
	data := web.NewsletterData{Title: "Newsletter", Email: email}

	created, err := h.services.Newsletter.Subscribe(c.Request.Context(), email)
	switch {
	case service.IsKind(err, service.KindValidation):
		data.Message, data.Failed = "Please enter a valid email", true
		h.page(c, http.StatusBadRequest, web.PageNewsletter, data)
		return
	case err != nil:
		h.serverError(c, err)
		return
	case created:
		data.Message = MsgSubscribed
	default:
		data.Message = MsgAlreadySubscribed
	}
	data.Email = ""
	h.page(c, http.StatusOK, web.PageNewsletter, data)
}

// Stylesheet handles GET /static/article.css
func (h *PageHandler) Stylesheet(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "text/css; charset=utf-8", []byte(render.Stylesheet()))
}

func (h *PageHandler) page(c *gin.Context, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.templates.Render(&buf, name, data); err != nil {
		h.serverError(c, err)
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func (h *PageHandler) serverError(c *gin.Context, err error) {
	h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Page failed")
	c.String(http.StatusInternalServerError, "Internal server error")
}
