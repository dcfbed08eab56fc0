package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appmiddleware "github.com/denisok-ai/LytSlot/internal/middleware"
	"github.com/denisok-ai/LytSlot/internal/model"
	"github.com/denisok-ai/LytSlot/internal/store"
	"github.com/denisok-ai/LytSlot/pkg/config"
	"github.com/denisok-ai/LytSlot/pkg/jwtutil"
	"github.com/labstack/echo/v4"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testBotToken = "123456:TEST-TOKEN"

// fakeQueue records enqueued jobs; err makes Enqueue fail.
type fakeQueue struct {
	enqueued []enqueuedJob
	err      error
}

type enqueuedJob struct {
	jobType   string
	payload   any
	requestID string
}

func (q *fakeQueue) Enqueue(ctx context.Context, jobType string, payload any, requestID string) error {
	if q.err != nil {
		return q.err
	}
	q.enqueued = append(q.enqueued, enqueuedJob{jobType: jobType, payload: payload, requestID: requestID})
	return nil
}

func (q *fakeQueue) types() []string {
	out := make([]string, 0, len(q.enqueued))
	for _, j := range q.enqueued {
		out = append(out, j.jobType)
	}
	return out
}

// testEnv is a full API wired like the server main, with sqlite storage and
// a recording queue.
type testEnv struct {
	e     *echo.Echo
	db    *gorm.DB
	store *store.Store
	jwt   *jwtutil.JWTUtil
	queue *fakeQueue
	cfg   *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&model.Tenant{}, &model.Channel{}, &model.Slot{}, &model.Order{},
		&model.Payment{}, &model.View{}, &model.APIKey{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	st := store.New(db)
	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{Secret: "test-secret", ExpireMinutes: 60})
	queue := &fakeQueue{}
	cfg := &config.Config{
		JWT:            config.JWTConfig{Secret: "test-secret", ExpireMinutes: 60},
		Telegram:       config.TelegramConfig{BotToken: testBotToken, AuthDateMaxAge: 24 * time.Hour},
		EnableDevLogin: true,
	}

	authMW := appmiddleware.NewAuthMiddleware(jwt, []int64{1})

	authHandler := NewAuthHandler(st, jwt, cfg)
	channelHandler := NewChannelHandler(st)
	slotHandler := NewSlotHandler(st)
	orderHandler := NewOrderHandler(st, queue)
	apiKeyHandler := NewAPIKeyHandler(st)
	analyticsHandler := NewAnalyticsHandler(st)
	adminHandler := NewAdminHandler(st)
	webhookHandler := NewWebhookHandler(queue)

	e := echo.New()
	e.Use(appmiddleware.RequestIDMiddleware)

	e.POST("/api/auth/callback", authHandler.Callback)
	e.POST("/api/auth/dev-login", authHandler.DevLogin)

	api := e.Group("/api")
	api.Use(authMW.Authenticate)
	api.Use(authMW.RequireTenant)
	api.GET("/channels", channelHandler.ListChannels)
	api.POST("/channels", channelHandler.CreateChannel)
	api.GET("/channels/:id", channelHandler.GetChannel)
	api.PATCH("/channels/:id", channelHandler.UpdateChannel)
	api.GET("/slots", slotHandler.ListSlots)
	api.POST("/slots", slotHandler.CreateSlot)
	api.GET("/slots/:id", slotHandler.GetSlot)
	api.GET("/orders", orderHandler.ListOrders)
	api.POST("/orders", orderHandler.CreateOrder)
	api.GET("/orders/:id", orderHandler.GetOrder)
	api.PATCH("/orders/:id", orderHandler.UpdateOrder)
	api.GET("/api-keys", apiKeyHandler.ListAPIKeys)
	api.POST("/api-keys", apiKeyHandler.CreateAPIKey)
	api.DELETE("/api-keys/:id", apiKeyHandler.DeleteAPIKey)
	api.GET("/analytics/views", analyticsHandler.GetViews)
	api.GET("/analytics/summary", analyticsHandler.GetSummary)

	admin := e.Group("/api/admin")
	admin.Use(authMW.Authenticate)
	admin.Use(authMW.RequireAdmin)
	admin.GET("/channels", adminHandler.ListChannels)
	admin.GET("/revenue", adminHandler.Revenue)

	e.POST("/api/webhooks/stripe", webhookHandler.Stripe)
	e.POST("/api/webhooks/yookassa", webhookHandler.YooKassa)

	return &testEnv{e: e, db: db, store: st, jwt: jwt, queue: queue, cfg: cfg}
}

// login creates a tenant for the telegram id and returns its token.
func (env *testEnv) login(t *testing.T, telegramID int64) (token, tenantID string) {
	t.Helper()
	tenant, err := env.store.FindOrCreateTenant(telegramID, "Test Tenant")
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	token, err = env.jwt.GenerateToken(telegramID, tenant.ID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token, tenant.ID
}

func (env *testEnv) request(method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

// seedChannelAndSlot creates a channel with one free slot under the tenant.
func (env *testEnv) seedChannelAndSlot(t *testing.T, tenantID string) (channelID, slotID string) {
	t.Helper()
	ts := env.store.ForTenant(tenantID)
	channel := &model.Channel{Username: "testchannel"}
	if err := ts.CreateChannel(channel); err != nil {
		t.Fatalf("create channel: %v", err)
	}
	slot := &model.Slot{ChannelID: channel.ID, StartsAt: time.Now().Add(time.Hour)}
	if err := ts.CreateSlot(slot); err != nil {
		t.Fatalf("create slot: %v", err)
	}
	return channel.ID, slot.ID
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, want, rec.Body.String())
	}
}
