package middleware

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/resumeiq/skilltest-backend/internal/config"
	"github.com/resumeiq/skilltest-backend/internal/response"
	"github.com/resumeiq/skilltest-backend/internal/service"
)

const (
	// ContextKeyClaims is the Gin context key for JWT claims.
	ContextKeyClaims = "claims"
	// ContextKeyResumeID is the Gin context key for the authorized resume ID.
	ContextKeyResumeID = "resume_id"

	// ServiceKeyHeader carries the shared key that authenticates the
	// question-generation collaborator on ingestion routes.
	ServiceKeyHeader = "X-Service-Key"
)

// RequireCandidateJWT validates a candidate JWT from the Authorization
// header and checks that its resume claim matches the :resume_id path
// param. A candidate token only ever grants access to its own test.
func RequireCandidateJWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := extractAndValidateClaims(c, authService)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		if !authorizeResume(c, claims) {
			return
		}
		c.Next()
	}
}

// RequireCandidateWSAuth validates a candidate JWT from the query param
// ?token=... Used for WebSocket upgrade requests, where browsers cannot set
// an Authorization header.
func RequireCandidateWSAuth(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.Query("token")
		if tokenStr == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		claims, err := authService.ValidateToken(tokenStr)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		if !authorizeResume(c, claims) {
			return
		}
		c.Next()
	}
}

// RequireServiceKey authenticates server-to-server ingestion calls with the
// shared key from config. Rejects everything when no key is configured.
func RequireServiceKey(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(ServiceKeyHeader)
		if cfg.IngestServiceKey == "" || key == "" ||
			subtle.ConstantTimeCompare([]byte(key), []byte(cfg.IngestServiceKey)) != 1 {
			response.AbortFail(c, http.StatusForbidden, response.ErrForbidden)
			return
		}
		c.Next()
	}
}

// GetClaims retrieves the JWT claims from the Gin context.
func GetClaims(c *gin.Context) *service.Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := val.(*service.Claims)
	if !ok {
		return nil
	}
	return claims
}

// GetResumeID retrieves the authorized resume ID from the Gin context.
func GetResumeID(c *gin.Context) uuid.UUID {
	val, exists := c.Get(ContextKeyResumeID)
	if !exists {
		return uuid.Nil
	}
	id, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

func authorizeResume(c *gin.Context, claims *service.Claims) bool {
	resumeID, err := uuid.Parse(c.Param("resume_id"))
	if err != nil {
		response.AbortFail(c, http.StatusBadRequest, response.ErrInvalidID)
		return false
	}

	if claims.ResumeID != resumeID.String() {
		response.AbortFail(c, http.StatusForbidden, response.ErrForbidden)
		return false
	}

	c.Set(ContextKeyClaims, claims)
	c.Set(ContextKeyResumeID, resumeID)
	return true
}

func extractAndValidateClaims(c *gin.Context, authService *service.AuthService) (*service.Claims, error) {
	tokenStr := ""

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			tokenStr = parts[1]
		}
	}

	if tokenStr == "" {
		return nil, fmt.Errorf("authorization header required")
	}

	return authService.ValidateToken(tokenStr)
}
