package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	db  *gorm.DB
	rdb *redis.Client // nil when no broker is configured
}

func NewHealthHandler(db *gorm.DB, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, rdb: rdb}
}

// Health is the liveness probe: the process is up, no dependency checks.
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// Ready is the readiness probe: checks the database and, when a broker is
// configured, the queue transport. 503 with a per-check status map on any
// failure.
func (h *HealthHandler) Ready(c echo.Context) error {
	checks := map[string]string{}

	if err := h.db.Exec("SELECT 1").Error; err != nil {
		checks["database"] = "error: " + err.Error()
	} else {
		checks["database"] = "ok"
	}

	if h.rdb != nil {
		if err := h.rdb.Ping(c.Request().Context()).Err(); err != nil {
			checks["redis"] = "error: " + err.Error()
		} else {
			checks["redis"] = "ok"
		}
	}

	for _, v := range checks {
		if v != "ok" {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{
				"status": "not_ready",
				"checks": checks,
			})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ready", "checks": checks})
}
