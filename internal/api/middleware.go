package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/personal-blog-api/internal/service"
)

const adminIDKey = "adminID"

// authMiddleware requires a valid bearer token and stores the admin id
func authMiddleware(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Message: service.MsgNotAuthorized})
			return
		}

		adminID, err := auth.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Message: service.MsgNotAuthorized})
			return
		}

		c.Set(adminIDKey, adminID)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
