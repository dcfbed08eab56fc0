package handler

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/http"

	"github.com/denisok-ai/LytSlot/internal/model"
	"github.com/denisok-ai/LytSlot/internal/store"
	"github.com/denisok-ai/LytSlot/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const apiKeyPrefix = "lytslot_"

// generateAPIKey creates a cryptographically secure API key.
// Returns a key in format: lytslot_<base64-encoded-32-random-bytes>
func generateAPIKey() (string, error) {
	bytes := make([]byte, 32) // 256 bits of entropy
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return apiKeyPrefix + base64.RawURLEncoding.EncodeToString(bytes), nil
}

// hashAPIKey returns the SHA256 hash of the key for storage.
// We store the hash, not the plaintext key.
func hashAPIKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

// APIKeyHandler serves tenant-scoped API keys.
type APIKeyHandler struct {
	store *store.Store
}

func NewAPIKeyHandler(st *store.Store) *APIKeyHandler {
	return &APIKeyHandler{store: st}
}

type apiKeyPreview struct {
	ID         string  `json:"id"`
	Name       *string `json:"name"`
	CreatedAt  string  `json:"created_at"`
	KeyPreview string  `json:"key_preview"`
}

// ListAPIKeys returns key previews; the secret is never shown again.
func (h *APIKeyHandler) ListAPIKeys(c echo.Context) error {
	ts, err := tenantStore(c, h.store)
	if err != nil {
		return err
	}
	keys, err := ts.ListAPIKeys()
	if err != nil {
		logger.FromEcho(c).Error("Failed to list api keys", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]apiKeyPreview, 0, len(keys))
	for _, k := range keys {
		out = append(out, apiKeyPreview{
			ID:         k.ID,
			Name:       k.Name,
			CreatedAt:  k.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			KeyPreview: "••••",
		})
	}
	return c.JSON(http.StatusOK, out)
}

// CreateAPIKey creates a key and returns the raw secret exactly once.
func (h *APIKeyHandler) CreateAPIKey(c echo.Context) error {
	log := logger.FromEcho(c)
	ts, err := tenantStore(c, h.store)
	if err != nil {
		return err
	}

	var req struct {
		Name *string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	rawKey, err := generateAPIKey()
	if err != nil {
		log.Error("Failed to generate api key", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "key generation failed"})
	}

	key := model.APIKey{
		KeyHash: hashAPIKey(rawKey),
		Name:    req.Name,
	}
	if err := ts.CreateAPIKey(&key); err != nil {
		log.Error("Failed to store api key", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "key creation failed"})
	}

	log.Info("API key created", zap.String("id", key.ID))
	return c.JSON(http.StatusCreated, echo.Map{
		"id":         key.ID,
		"name":       key.Name,
		"created_at": key.CreatedAt,
		"key":        rawKey, // shown only once
	})
}

// DeleteAPIKey revokes a key.
func (h *APIKeyHandler) DeleteAPIKey(c echo.Context) error {
	ts, err := tenantStore(c, h.store)
	if err != nil {
		return err
	}
	if err := ts.DeleteAPIKey(c.Param("id")); err != nil {
		return notFoundOr(c, err, "api key")
	}
	return c.NoContent(http.StatusNoContent)
}
