package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/onegreenvn/outreach-campaign-dashboard/internal/models"
)

type BearerTokenMiddleware struct {
	jwtSecret []byte
}

func NewBearerTokenMiddleware(jwtSecret string) *BearerTokenMiddleware {
	return &BearerTokenMiddleware{jwtSecret: []byte(jwtSecret)}
}

// ValidateToken checks an HS256 token issued by the auth service
func (m *BearerTokenMiddleware) ValidateToken(tokenString string) (*models.TokenInfo, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.UserID == "" {
		return nil, errors.New("token has no user_id")
	}

	info := &models.TokenInfo{
		UserID: claims.UserID,
		Email:  claims.Email,
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}

// BearerTokenAuthMiddleware validates JWT token and sets user info in context.
// EventSource clients cannot send headers, so an access_token query parameter is accepted too.
func (m *BearerTokenMiddleware) BearerTokenAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// If user_id is already set, skip authentication
		if _, exists := c.Get("user_id"); exists {
			c.Next()
			return
		}

		var tokenString string
		authHeader := c.GetHeader("Authorization")
		switch {
		case strings.HasPrefix(authHeader, "Bearer "):
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		case authHeader == "" && c.Query("access_token") != "":
			tokenString = c.Query("access_token")
		default:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		tokenInfo, err := m.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		// Set user info in context
		c.Set("user_id", tokenInfo.UserID)
		c.Set("token_info", tokenInfo)
		c.Set("access_token", tokenString)

		c.Next()
	}
}
