package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/denisok-ai/LytSlot/internal/store"
	"github.com/denisok-ai/LytSlot/internal/telegram"
	"github.com/denisok-ai/LytSlot/pkg/config"
	"github.com/denisok-ai/LytSlot/pkg/jwtutil"
	"github.com/denisok-ai/LytSlot/pkg/logger"
	"github.com/denisok-ai/LytSlot/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthHandler issues session tokens from Telegram Login payloads.
type AuthHandler struct {
	store *store.Store
	jwt   *jwtutil.JWTUtil
	cfg   *config.Config
}

// NewAuthHandler wires the auth endpoints.
func NewAuthHandler(st *store.Store, jwt *jwtutil.JWTUtil, cfg *config.Config) *AuthHandler {
	return &AuthHandler{store: st, jwt: jwt, cfg: cfg}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	TenantID    string `json:"tenant_id"`
}

// telegramUserName derives a tenant display name from login payload fields.
func telegramUserName(payload map[string]string) string {
	first := payload["first_name"]
	last := payload["last_name"]
	if first != "" || last != "" {
		return strings.TrimSpace(first + " " + last)
	}
	if payload["username"] != "" {
		return "@" + payload["username"]
	}
	if payload["id"] != "" {
		return payload["id"]
	}
	return "User"
}

// telegramIDFromPayload resolves the numeric user id from "id", "user_id"
// or the nested WebApp "user" JSON object.
func telegramIDFromPayload(payload map[string]string) int64 {
	raw := payload["id"]
	if raw == "" {
		raw = payload["user_id"]
	}
	if raw == "" {
		if userJSON := payload["user"]; userJSON != "" {
			if unescaped, err := url.QueryUnescape(userJSON); err == nil {
				userJSON = unescaped
			}
			var user struct {
				ID int64 `json:"id"`
			}
			if err := json.Unmarshal([]byte(userJSON), &user); err == nil {
				return user.ID
			}
		}
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// Callback verifies a Telegram Login initData blob, creates the tenant on
// first login and returns a JWT bound to it.
func (h *AuthHandler) Callback(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		InitData string `json:"init_data"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	payload, err := telegram.VerifyLoginInitData(
		h.cfg.Telegram.BotToken, req.InitData, h.cfg.Telegram.AuthDateMaxAge)
	if err != nil {
		switch err {
		case telegram.ErrNotConfigured:
			log.Error("Telegram bot token not configured")
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "telegram bot token not configured"})
		case telegram.ErrMalformed:
			prometheus.RecordAuthError("malformed_init_data")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid init_data"})
		case telegram.ErrExpired:
			prometheus.RecordAuthError("init_data_expired")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "init_data expired"})
		default:
			log.Warn("Telegram login verification failed", zap.Error(err))
			prometheus.RecordAuthError("invalid_signature")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid telegram signature"})
		}
	}

	telegramID := telegramIDFromPayload(payload)
	if telegramID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing user id in init_data"})
	}

	tenant, err := h.store.FindOrCreateTenant(telegramID, telegramUserName(payload))
	if err != nil {
		log.Error("Failed to find or create tenant", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	token, err := h.jwt.GenerateToken(telegramID, tenant.ID)
	if err != nil {
		log.Error("Failed to issue token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	log.Info("Telegram login",
		zap.Int64("telegram_id", telegramID), zap.String("tenant_id", tenant.ID))
	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		TenantID:    tenant.ID,
	})
}

// DevLogin issues a token for a bare telegram id without Telegram
// verification. Gated by ENABLE_DEV_LOGIN; 404 when disabled so the
// endpoint is invisible in production.
func (h *AuthHandler) DevLogin(c echo.Context) error {
	if !h.cfg.EnableDevLogin {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not available"})
	}

	log := logger.FromEcho(c)

	var req struct {
		TelegramID int64 `json:"telegram_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.TelegramID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "telegram_id must be positive"})
	}

	tenant, err := h.store.FindOrCreateTenant(req.TelegramID,
		"Dev User "+strconv.FormatInt(req.TelegramID, 10))
	if err != nil {
		log.Error("dev_login failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "dev_login failed"})
	}

	token, err := h.jwt.GenerateToken(req.TelegramID, tenant.ID)
	if err != nil {
		log.Error("Failed to issue token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "dev_login failed"})
	}

	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		TenantID:    tenant.ID,
	})
}
