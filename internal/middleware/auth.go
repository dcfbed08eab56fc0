package middleware

import (
	"net/http"
	"strings"

	"github.com/denisok-ai/LytSlot/pkg/jwtutil"
	"github.com/denisok-ai/LytSlot/pkg/logger"
	"github.com/denisok-ai/LytSlot/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const claimsContextKey = "claims"

// AuthMiddleware derives the auth guards from token validation.
type AuthMiddleware struct {
	jwt      *jwtutil.JWTUtil
	adminIDs []int64
}

// NewAuthMiddleware builds the guard set. adminIDs is the configured
// allow-list for admin endpoints; empty means admin access is unconfigured.
func NewAuthMiddleware(jwt *jwtutil.JWTUtil, adminIDs []int64) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, adminIDs: adminIDs}
}

// BearerToken extracts the bearer token from a request, or "".
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Authenticate validates the bearer token and stores its claims in the
// context. 401 when the token is absent or invalid.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromEcho(c)

		tokenString := BearerToken(c.Request())
		if tokenString == "" {
			log.Warn("Missing authorization token")
			prometheus.RecordAuthError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		claims, err := m.jwt.ValidateToken(tokenString)
		if err != nil {
			log.Warn("Invalid or expired token", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		c.Set(claimsContextKey, claims)
		return next(c)
	}
}

// RequireTenant rejects authenticated requests whose claims carry no tenant.
// Must run after Authenticate.
func (m *AuthMiddleware) RequireTenant(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims := ClaimsFrom(c)
		if claims == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}
		if claims.TenantID == "" {
			logger.FromEcho(c).Warn("Token has no tenant binding")
			prometheus.RecordAuthError("tenant_not_bound")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant_not_bound"})
		}
		return next(c)
	}
}

// RequireAdmin allows only subjects from the configured admin list. 503 when
// the list is unconfigured. Must run after Authenticate.
func (m *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims := ClaimsFrom(c)
		if claims == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}
		if len(m.adminIDs) == 0 {
			logger.FromEcho(c).Error("Admin list not configured (ADMIN_TELEGRAM_IDS)")
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "admin list not configured"})
		}
		telegramID, err := claims.TelegramID()
		if err != nil {
			prometheus.RecordAuthError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}
		for _, id := range m.adminIDs {
			if id == telegramID {
				return next(c)
			}
		}
		logger.FromEcho(c).Warn("Non-admin subject on admin endpoint",
			zap.Int64("telegram_id", telegramID))
		prometheus.RecordAuthError("not_admin")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "admin access required"})
	}
}

// ClaimsFrom returns the validated claims set by Authenticate, or nil.
func ClaimsFrom(c echo.Context) *jwtutil.SessionClaims {
	claims, ok := c.Get(claimsContextKey).(*jwtutil.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}
