package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"testing"
	"time"
)

// signInitData builds a signed Telegram initData blob for the given fields.
func signInitData(botToken string, fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+fields[k])
	}
	secretMac := hmac.New(sha256.New, []byte("WebAppData"))
	secretMac.Write([]byte(botToken))
	mac := hmac.New(sha256.New, secretMac.Sum(nil))
	mac.Write([]byte(strings.Join(parts, "\n")))

	parts = append(parts, "hash="+hex.EncodeToString(mac.Sum(nil)))
	return strings.Join(parts, "&")
}

func callbackBody(initData string) string {
	return fmt.Sprintf(`{"init_data":%q}`, initData)
}

func TestCallback(t *testing.T) {
	env := newTestEnv(t)
	initData := signInitData(testBotToken, map[string]string{
		"id":         "9001",
		"first_name": "Alice",
		"auth_date":  fmt.Sprintf("%d", time.Now().Unix()),
	})

	rec := env.request(http.MethodPost, "/api/auth/callback", "", callbackBody(initData))
	wantStatus(t, rec, http.StatusOK)

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		TenantID    string `json:"tenant_id"`
	}
	decodeBody(t, rec, &resp)
	if resp.TokenType != "bearer" {
		t.Errorf("token_type = %q, want bearer", resp.TokenType)
	}
	if resp.TenantID == "" {
		t.Fatal("tenant_id missing from response")
	}

	claims, err := env.jwt.ValidateToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("issued token is invalid: %v", err)
	}
	if claims.TenantID != resp.TenantID {
		t.Errorf("token tenant = %q, response tenant = %q", claims.TenantID, resp.TenantID)
	}

	tenant, err := env.store.FindTenantByTelegramID(9001)
	if err != nil {
		t.Fatalf("tenant not created: %v", err)
	}
	if tenant.Name != "Alice" {
		t.Errorf("tenant name = %q, want Alice", tenant.Name)
	}

	// Second login reuses the tenant.
	rec = env.request(http.MethodPost, "/api/auth/callback", "", callbackBody(initData))
	wantStatus(t, rec, http.StatusOK)
	var again struct {
		TenantID string `json:"tenant_id"`
	}
	decodeBody(t, rec, &again)
	if again.TenantID != resp.TenantID {
		t.Errorf("second login bound tenant %q, want %q", again.TenantID, resp.TenantID)
	}
}

func TestCallback_NestedWebAppUser(t *testing.T) {
	env := newTestEnv(t)
	initData := signInitData(testBotToken, map[string]string{
		"user":      `{"id":424242,"first_name":"Bob"}`,
		"auth_date": fmt.Sprintf("%d", time.Now().Unix()),
	})

	rec := env.request(http.MethodPost, "/api/auth/callback", "", callbackBody(initData))
	wantStatus(t, rec, http.StatusOK)

	if _, err := env.store.FindTenantByTelegramID(424242); err != nil {
		t.Errorf("tenant for nested user id not created: %v", err)
	}
}

func TestCallback_BadSignature(t *testing.T) {
	env := newTestEnv(t)
	initData := signInitData(testBotToken, map[string]string{
		"id":        "9001",
		"auth_date": fmt.Sprintf("%d", time.Now().Unix()),
	})
	tampered := strings.Replace(initData, "9001", "9002", 1)

	rec := env.request(http.MethodPost, "/api/auth/callback", "", callbackBody(tampered))
	wantStatus(t, rec, http.StatusUnauthorized)
}

func TestCallback_Malformed(t *testing.T) {
	env := newTestEnv(t)
	rec := env.request(http.MethodPost, "/api/auth/callback", "", callbackBody("garbage"))
	wantStatus(t, rec, http.StatusBadRequest)
}

func TestCallback_BotTokenNotConfigured(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Telegram.BotToken = ""

	initData := signInitData(testBotToken, map[string]string{"id": "1"})
	rec := env.request(http.MethodPost, "/api/auth/callback", "", callbackBody(initData))
	wantStatus(t, rec, http.StatusServiceUnavailable)
}

func TestDevLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(http.MethodPost, "/api/auth/dev-login", "", `{"telegram_id":555}`)
	wantStatus(t, rec, http.StatusOK)
	var resp struct {
		AccessToken string `json:"access_token"`
		TenantID    string `json:"tenant_id"`
	}
	decodeBody(t, rec, &resp)
	if resp.TenantID == "" || resp.AccessToken == "" {
		t.Fatalf("incomplete response: %s", rec.Body.String())
	}

	tenant, err := env.store.FindTenantByTelegramID(555)
	if err != nil {
		t.Fatalf("tenant not created: %v", err)
	}
	if tenant.Name != "Dev User 555" {
		t.Errorf("tenant name = %q", tenant.Name)
	}

	rec = env.request(http.MethodPost, "/api/auth/dev-login", "", `{"telegram_id":0}`)
	wantStatus(t, rec, http.StatusBadRequest)
}

func TestDevLogin_Disabled(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.EnableDevLogin = false

	rec := env.request(http.MethodPost, "/api/auth/dev-login", "", `{"telegram_id":555}`)
	wantStatus(t, rec, http.StatusNotFound)
}
