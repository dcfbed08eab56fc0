package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/denisok-ai/LytSlot/pkg/jwtutil"
	"github.com/labstack/echo/v4"
)

func newTestJWT() *jwtutil.JWTUtil {
	return jwtutil.NewJWTUtil(&jwtutil.JWTConfig{Secret: "test-secret", ExpireMinutes: 60})
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func doRequest(t *testing.T, h echo.HandlerFunc, token string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		if got := BearerToken(req); got != tc.want {
			t.Errorf("BearerToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestAuthenticate(t *testing.T) {
	jwt := newTestJWT()
	m := NewAuthMiddleware(jwt, nil)

	token, err := jwt.GenerateToken(42, "tenant-a")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	rec := doRequest(t, m.Authenticate(func(c echo.Context) error {
		claims := ClaimsFrom(c)
		if claims == nil {
			t.Fatal("claims not stored in context")
		}
		if claims.TenantID != "tenant-a" {
			t.Errorf("TenantID = %q", claims.TenantID)
		}
		return okHandler(c)
	}), token)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	if rec := doRequest(t, m.Authenticate(okHandler), ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("missing token: status = %d, want 401", rec.Code)
	}
	if rec := doRequest(t, m.Authenticate(okHandler), "garbage"); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", rec.Code)
	}
}

func TestRequireTenant(t *testing.T) {
	jwt := newTestJWT()
	m := NewAuthMiddleware(jwt, nil)
	chain := m.Authenticate(m.RequireTenant(okHandler))

	withTenant, _ := jwt.GenerateToken(42, "tenant-a")
	if rec := doRequest(t, chain, withTenant); rec.Code != http.StatusOK {
		t.Errorf("bound token: status = %d, want 200", rec.Code)
	}

	withoutTenant, _ := jwt.GenerateToken(42, "")
	rec := doRequest(t, chain, withoutTenant)
	if rec.Code != http.StatusForbidden {
		t.Errorf("unbound token: status = %d, want 403", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "tenant_not_bound") {
		t.Errorf("body = %q, want tenant_not_bound", body)
	}
}

func TestRequireAdmin(t *testing.T) {
	jwt := newTestJWT()
	adminToken, _ := jwt.GenerateToken(1, "")
	otherToken, _ := jwt.GenerateToken(2, "")

	// Unconfigured allow-list disables admin endpoints entirely.
	unconfigured := NewAuthMiddleware(jwt, nil)
	rec := doRequest(t, unconfigured.Authenticate(unconfigured.RequireAdmin(okHandler)), adminToken)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("empty list: status = %d, want 503", rec.Code)
	}

	m := NewAuthMiddleware(jwt, []int64{1})
	chain := m.Authenticate(m.RequireAdmin(okHandler))
	if rec := doRequest(t, chain, adminToken); rec.Code != http.StatusOK {
		t.Errorf("admin: status = %d, want 200", rec.Code)
	}
	if rec := doRequest(t, chain, otherToken); rec.Code != http.StatusForbidden {
		t.Errorf("non-admin: status = %d, want 403", rec.Code)
	}
}
