package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/personal-blog-api/internal/service"
	"github.com/personal-blog-api/internal/validation"
	"github.com/rs/zerolog"
)

// errorResponse is the body of every failed API call
type errorResponse struct {
	Message string                       `json:"message"`
	Errors  []validation.ValidationError `json:"errors,omitempty"`
}

func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindValidation, service.KindConflict:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps a service error onto its status and body. Internal
// errors are logged and surfaced generically.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) || svcErr.Kind == service.KindInternal {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, errorResponse{Message: service.MsgServerError})
		return
	}
	c.JSON(statusFor(svcErr.Kind), errorResponse{Message: svcErr.Message, Errors: svcErr.Fields})
}

// respondBindingError reports a request body that failed to bind
func respondBindingError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse{
		Message: service.MsgValidationFailed,
		Errors:  validation.FromBindingError(err),
	})
}
