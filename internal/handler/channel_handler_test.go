package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/denisok-ai/LytSlot/internal/model"
)

func TestCreateChannel(t *testing.T) {
	env := newTestEnv(t)
	token, tenantID := env.login(t, 100)

	rec := env.request(http.MethodPost, "/api/channels", token,
		`{"username":"mychannel","price_per_slot":2500}`)
	wantStatus(t, rec, http.StatusCreated)

	var channel model.Channel
	decodeBody(t, rec, &channel)
	if channel.TenantID != tenantID {
		t.Errorf("TenantID = %q, want %q", channel.TenantID, tenantID)
	}
	if channel.PricePerSlot != 2500 {
		t.Errorf("PricePerSlot = %v, want 2500", channel.PricePerSlot)
	}
	if channel.SlotDuration != 3600 {
		t.Errorf("SlotDuration = %d, want default 3600", channel.SlotDuration)
	}
	if !channel.IsActive {
		t.Error("IsActive = false, want default true")
	}

	rec = env.request(http.MethodPost, "/api/channels", token, `{}`)
	wantStatus(t, rec, http.StatusBadRequest)
}

func TestListChannels_TenantScoped(t *testing.T) {
	env := newTestEnv(t)
	tokenA, tenantA := env.login(t, 100)
	tokenB, _ := env.login(t, 200)
	env.seedChannelAndSlot(t, tenantA)

	rec := env.request(http.MethodGet, "/api/channels", tokenA, "")
	wantStatus(t, rec, http.StatusOK)
	var listA []model.Channel
	decodeBody(t, rec, &listA)
	if len(listA) != 1 {
		t.Errorf("tenant A sees %d channels, want 1", len(listA))
	}

	rec = env.request(http.MethodGet, "/api/channels", tokenB, "")
	wantStatus(t, rec, http.StatusOK)
	var listB []model.Channel
	decodeBody(t, rec, &listB)
	if len(listB) != 0 {
		t.Errorf("tenant B sees %d channels, want 0", len(listB))
	}
}

func TestUpdateChannel(t *testing.T) {
	env := newTestEnv(t)
	token, tenantID := env.login(t, 100)
	channelID, _ := env.seedChannelAndSlot(t, tenantID)

	rec := env.request(http.MethodPatch, "/api/channels/"+channelID, token,
		`{"is_active":false,"price_per_slot":500}`)
	wantStatus(t, rec, http.StatusOK)
	var channel model.Channel
	decodeBody(t, rec, &channel)
	if channel.IsActive {
		t.Error("IsActive not updated")
	}
	if channel.PricePerSlot != 500 {
		t.Errorf("PricePerSlot = %v, want 500", channel.PricePerSlot)
	}
	if channel.Username != "testchannel" {
		t.Errorf("Username = %q, untouched fields must survive", channel.Username)
	}

	// Cross-tenant patch is a 404.
	tokenB, _ := env.login(t, 200)
	rec = env.request(http.MethodPatch, "/api/channels/"+channelID, tokenB, `{"is_active":true}`)
	wantStatus(t, rec, http.StatusNotFound)
}

func TestSlots(t *testing.T) {
	env := newTestEnv(t)
	token, tenantID := env.login(t, 100)
	channelID, slotID := env.seedChannelAndSlot(t, tenantID)

	rec := env.request(http.MethodGet, "/api/slots?channel_id="+channelID, token, "")
	wantStatus(t, rec, http.StatusOK)
	var slots []model.Slot
	decodeBody(t, rec, &slots)
	if len(slots) != 1 || slots[0].ID != slotID {
		t.Fatalf("got %d slots", len(slots))
	}
	if slots[0].Status != model.SlotStatusFree {
		t.Errorf("Status = %q, want free", slots[0].Status)
	}

	// channel_id is mandatory.
	rec = env.request(http.MethodGet, "/api/slots", token, "")
	wantStatus(t, rec, http.StatusBadRequest)

	rec = env.request(http.MethodPost, "/api/slots", token,
		fmt.Sprintf(`{"channel_id":%q,"datetime":"2026-09-01T12:00:00Z"}`, channelID))
	wantStatus(t, rec, http.StatusCreated)

	// Slot on a foreign channel looks like a missing channel.
	tokenB, _ := env.login(t, 200)
	rec = env.request(http.MethodPost, "/api/slots", tokenB,
		fmt.Sprintf(`{"channel_id":%q,"datetime":"2026-09-01T12:00:00Z"}`, channelID))
	wantStatus(t, rec, http.StatusNotFound)
}
