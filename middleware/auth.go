package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Amo12312/accordai/models"
	"github.com/Amo12312/accordai/repository"
	"github.com/Amo12312/accordai/services"
)

// ContextUserKey is where Auth places the authenticated *models.User.
const ContextUserKey = "auth_user"

// Auth validates the bearer token and loads the user into the gin
// context. Missing or invalid tokens abort with 401.
func Auth(jwtService services.JWTService, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := resolveUser(c, jwtService, userRepo)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Token is not valid",
			})
			return
		}
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// OptionalAuth loads the user when a valid bearer token is present but
// lets anonymous requests through untouched. Used by endpoints that
// serve both guests and accounts.
func OptionalAuth(jwtService services.JWTService, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, ok := resolveUser(c, jwtService, userRepo); ok {
			c.Set(ContextUserKey, user)
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user placed by Auth/OptionalAuth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

func resolveUser(c *gin.Context, jwtService services.JWTService, userRepo repository.UserRepository) (*models.User, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	claims, err := jwtService.ValidateToken(parts[1])
	if err != nil {
		log.Printf("INFO: [Auth] Token validation failed: %v", err)
		return nil, false
	}

	user, err := userRepo.FindByID(claims.UserID)
	if err != nil {
		log.Printf("INFO: [Auth] User %s from token not found: %v", claims.UserID, err)
		return nil, false
	}
	return user, true
}
