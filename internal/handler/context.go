package handler

import (
	"net/http"

	"github.com/denisok-ai/LytSlot/internal/middleware"
	"github.com/denisok-ai/LytSlot/internal/store"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// tenantStore pins a repository to the tenant from the request's verified
// claims. The guards guarantee the claims exist; a miswired route without
// them gets a non-nil HTTPError so the caller short-circuits instead of
// proceeding with a nil repository.
func tenantStore(c echo.Context, s *store.Store) (*store.TenantStore, error) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
	}
	if claims.TenantID == "" {
		return nil, echo.NewHTTPError(http.StatusForbidden, echo.Map{"error": "tenant_not_bound"})
	}
	return s.ForTenant(claims.TenantID), nil
}

// advertiserID returns the request subject as a telegram id.
func advertiserID(c echo.Context) (int64, error) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
	}
	id, err := claims.TelegramID()
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
	}
	return id, nil
}

// notFoundOr maps gorm absence to a tenant-safe 404 and anything else to a
// 500. Cross-tenant rows are indistinguishable from absent ones.
func notFoundOr(c echo.Context, err error, resource string) error {
	if err == gorm.ErrRecordNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": resource + " not found"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}
