package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/careflowhq/careflow-api/internal/handler"
	"github.com/careflowhq/careflow-api/internal/model"
	"github.com/careflowhq/careflow-api/internal/service/auth"
	apperrors "github.com/careflowhq/careflow-api/pkg/errors"
)

const (
	ContextAccountID = "accountID"
	ContextEmail     = "accountEmail"
	ContextClaims    = "tokenClaims"
)

type AuthMiddleware struct {
	authService *auth.Service
}

func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate verifies the bearer token and sets principal info in
// context. It says nothing about role.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			c.Abort()
			return
		}

		claims, err := m.authService.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			handler.RespondError(c, err)
			c.Abort()
			return
		}

		c.Set(ContextAccountID, claims.AccountID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// RequireRole gates a route group on one role. The role is re-resolved
// from the store on every request; it is not read from the token. A
// failed lookup is a 503, never a 403; "could not check" and "wrong
// role" are different answers.
func (m *AuthMiddleware) RequireRole(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, ok := AccountID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
			c.Abort()
			return
		}

		resolved, err := m.authService.ResolveRole(c.Request.Context(), accountID)
		if err != nil {
			if apperrors.IsKind(err, apperrors.NotFound) {
				c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("no account for principal"))
			} else {
				handler.RespondError(c, err)
			}
			c.Abort()
			return
		}

		if resolved != role {
			c.JSON(http.StatusForbidden, handler.NewErrorResponse("forbidden"))
			c.Abort()
			return
		}

		c.Next()
	}
}

// AccountID returns the authenticated principal id from context.
func AccountID(c *gin.Context) (accountID uuid.UUID, ok bool) {
	v, exists := c.Get(ContextAccountID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
