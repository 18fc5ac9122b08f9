package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/personal-blog-api/internal/service"
	"github.com/rs/zerolog"
)

// ExportHandler streams the post collection
type ExportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// StreamExport handles GET /api/blogs/export?format=...
// Streams every post directly to the response
func (h *ExportHandler) StreamExport(c *gin.Context) {
	format := c.Query("format")
	if format == "" {
		format = service.FormatNDJSON // Default to NDJSON for streaming
	}

	var contentType string
	switch format {
	case service.FormatNDJSON:
		contentType = "application/x-ndjson"
	case service.FormatJSON:
		contentType = "application/json"
	default:
		c.JSON(http.StatusBadRequest, errorResponse{Message: "format must be one of: ndjson, json"})
		return
	}

	h.log.Info().Str("format", format).Msg("Starting streaming export")

	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", `attachment; filename="posts.`+format+`"`)
	c.Status(http.StatusOK)

	count, err := h.services.Posts.Export(c.Request.Context(), c.Writer, format)
	if err != nil {
		// Can't return error JSON after streaming has started
		h.log.Error().Err(err).Int("written", count).Msg("Export failed")
		return
	}
	h.log.Info().Int("count", count).Msg("Export streamed")
}
