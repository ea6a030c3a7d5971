package api

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	apperrors "github.com/vladimiradmaev/macro-tracker/internal/errors"
	"github.com/vladimiradmaev/macro-tracker/internal/interfaces"
	"github.com/vladimiradmaev/macro-tracker/internal/logger"
)

const userIDKey = "userID"

// AuthMiddleware validates the bearer token and stores the user id on the
// context. Browsers cannot set headers on WebSocket upgrades, so those may
// pass the token as ?access_token= instead.
func AuthMiddleware(auth interfaces.AuthServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			abortWithError(c, err)
			return
		}

		userID, err := auth.Authenticate(token)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if websocket.IsWebSocketUpgrade(c.Request) {
			if token := c.Query("access_token"); token != "" {
				return token, nil
			}
		}
		return "", apperrors.NewAuthError("missing authorization header")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", apperrors.NewAuthError("invalid authorization format, use 'Bearer <token>'")
	}
	return parts[1], nil
}

// currentUser returns the id set by AuthMiddleware
func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// RequestLogger logs one line per request through the application logger
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		}
		if userID := currentUser(c); userID != "" {
			fields = append(fields, "user_id", userID)
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Error("HTTP request", fields...)
		case status >= 400:
			logger.Warn("HTTP request", fields...)
		default:
			logger.Info("HTTP request", fields...)
		}
	}
}
