package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Login verification failures. Handlers map these to HTTP statuses.
var (
	ErrNotConfigured    = errors.New("telegram bot token not configured")
	ErrMalformed        = errors.New("malformed init data")
	ErrInvalidSignature = errors.New("invalid telegram signature")
	ErrExpired          = errors.New("init data expired")
)

// VerifyLoginInitData validates a Telegram Login Widget / WebApp initData
// blob and returns its fields on success.
//
// See: https://core.telegram.org/widgets/login#checking-authorization
// secret_key = HMAC-SHA256(key="WebAppData", msg=bot_token)
// hash       = HMAC-SHA256(key=secret_key, msg=data_check_string)
//
// The blob is ampersand-delimited key=value pairs; the data check string is
// the sorted "k=v" lines joined by newline, with the hash field removed.
// A payload whose auth_date is older than maxAge is rejected even with a
// valid signature.
func VerifyLoginInitData(botToken, initData string, maxAge time.Duration) (map[string]string, error) {
	if botToken == "" {
		return nil, ErrNotConfigured
	}

	parsed := make(map[string]string)
	for _, p := range strings.Split(initData, "&") {
		if k, v, ok := strings.Cut(p, "="); ok {
			parsed[k] = v
		}
	}
	if len(parsed) == 0 {
		return nil, ErrMalformed
	}

	checkHash, ok := parsed["hash"]
	if !ok || checkHash == "" {
		return nil, ErrMalformed
	}
	delete(parsed, "hash")

	keys := make([]string, 0, len(parsed))
	for k := range parsed {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+parsed[k])
	}
	dataCheckString := strings.Join(parts, "\n")

	secretMac := hmac.New(sha256.New, []byte("WebAppData"))
	secretMac.Write([]byte(botToken))
	secretKey := secretMac.Sum(nil)

	mac := hmac.New(sha256.New, secretKey)
	mac.Write([]byte(dataCheckString))
	computed := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(computed), []byte(checkHash)) {
		return nil, ErrInvalidSignature
	}

	if authDate, ok := parsed["auth_date"]; ok && authDate != "" {
		ts, err := strconv.ParseInt(authDate, 10, 64)
		if err != nil {
			return nil, ErrMalformed
		}
		if time.Since(time.Unix(ts, 0)) > maxAge {
			return nil, ErrExpired
		}
	}

	return parsed, nil
}
