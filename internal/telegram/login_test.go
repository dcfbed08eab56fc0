package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

const testBotToken = "123456:TEST-TOKEN"

// signInitData builds a valid initData blob the way Telegram does.
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
	dataCheckString := strings.Join(parts, "\n")

	secretMac := hmac.New(sha256.New, []byte("WebAppData"))
	secretMac.Write([]byte(botToken))
	mac := hmac.New(sha256.New, secretMac.Sum(nil))
	mac.Write([]byte(dataCheckString))
	hash := hex.EncodeToString(mac.Sum(nil))

	pairs := make([]string, 0, len(fields)+1)
	for _, k := range keys {
		pairs = append(pairs, k+"="+fields[k])
	}
	pairs = append(pairs, "hash="+hash)
	return strings.Join(pairs, "&")
}

func TestVerifyLoginInitData(t *testing.T) {
	fields := map[string]string{
		"id":         "9001",
		"first_name": "Alice",
		"auth_date":  fmt.Sprintf("%d", time.Now().Unix()),
	}
	initData := signInitData(testBotToken, fields)

	payload, err := VerifyLoginInitData(testBotToken, initData, 24*time.Hour)
	if err != nil {
		t.Fatalf("VerifyLoginInitData() error = %v", err)
	}
	if payload["id"] != "9001" {
		t.Errorf("id = %q, want 9001", payload["id"])
	}
	if _, ok := payload["hash"]; ok {
		t.Error("hash should be removed from the returned payload")
	}
}

func TestVerifyLoginInitData_TamperedField(t *testing.T) {
	fields := map[string]string{
		"id":        "9001",
		"auth_date": fmt.Sprintf("%d", time.Now().Unix()),
	}
	initData := signInitData(testBotToken, fields)
	tampered := strings.Replace(initData, "id=9001", "id=9002", 1)

	if _, err := VerifyLoginInitData(testBotToken, tampered, 24*time.Hour); err != ErrInvalidSignature {
		t.Errorf("error = %v, want ErrInvalidSignature", err)
	}
}

func TestVerifyLoginInitData_WrongBotToken(t *testing.T) {
	initData := signInitData("other:token", map[string]string{"id": "1"})
	if _, err := VerifyLoginInitData(testBotToken, initData, 24*time.Hour); err != ErrInvalidSignature {
		t.Errorf("error = %v, want ErrInvalidSignature", err)
	}
}

func TestVerifyLoginInitData_ExpiredAuthDate(t *testing.T) {
	old := time.Now().Add(-25 * time.Hour).Unix()
	fields := map[string]string{
		"id":        "9001",
		"auth_date": fmt.Sprintf("%d", old),
	}
	// Valid signature, stale auth_date: must still be rejected.
	initData := signInitData(testBotToken, fields)

	if _, err := VerifyLoginInitData(testBotToken, initData, 24*time.Hour); err != ErrExpired {
		t.Errorf("error = %v, want ErrExpired", err)
	}
}

func TestVerifyLoginInitData_Malformed(t *testing.T) {
	cases := []struct {
		name     string
		initData string
	}{
		{"empty", ""},
		{"no pairs", "garbage-without-equals"},
		{"no hash", "id=9001&auth_date=123"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := VerifyLoginInitData(testBotToken, tc.initData, 24*time.Hour); err != ErrMalformed {
				t.Errorf("error = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestVerifyLoginInitData_NoToken(t *testing.T) {
	if _, err := VerifyLoginInitData("", "id=1&hash=x", 24*time.Hour); err != ErrNotConfigured {
		t.Errorf("error = %v, want ErrNotConfigured", err)
	}
}

func TestTruncateMessage(t *testing.T) {
	short := "короткое сообщение 🛍"
	if got := truncateMessage(short); got != short {
		t.Errorf("short message changed: %q", got)
	}

	// 5000 two-byte characters: the cut must count runes, never bytes, and
	// the result must stay valid UTF-8.
	long := strings.Repeat("ж", 5000)
	got := truncateMessage(long)
	if n := utf8.RuneCountInString(got); n != 4096 {
		t.Errorf("rune count = %d, want 4096", n)
	}
	if !utf8.ValidString(got) {
		t.Error("truncated message is not valid UTF-8")
	}

	exact := strings.Repeat("э", 4096)
	if got := truncateMessage(exact); got != exact {
		t.Error("message at the limit was truncated")
	}
}

func TestChannelChatID(t *testing.T) {
	if got := ChannelChatID("mychannel"); got != "@mychannel" {
		t.Errorf("ChannelChatID(mychannel) = %q", got)
	}
	if got := ChannelChatID("@mychannel"); got != "@mychannel" {
		t.Errorf("ChannelChatID(@mychannel) = %q", got)
	}
}
