package jwtutil

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	ExpireMinutes int
}

// SessionClaims represents the JWT claims issued on login.
// Subject holds the telegram id; TenantID is empty until the user is bound
// to a tenant.
type SessionClaims struct {
	TenantID string `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

// TelegramID returns the subject as a numeric telegram id.
func (c *SessionClaims) TelegramID() (int64, error) {
	if c.Subject == "" {
		return 0, errors.New("token has no subject")
	}
	return strconv.ParseInt(c.Subject, 10, 64)
}

// JWTUtil is a utility for JWT token operations
type JWTUtil struct {
	config *JWTConfig
}

// NewJWTUtil creates a new JWT utility with the given configuration
func NewJWTUtil(config *JWTConfig) *JWTUtil {
	return &JWTUtil{
		config: config,
	}
}

// GenerateToken creates a session token for a telegram user, optionally
// bound to a tenant. Expiry defaults to 60 minutes when unconfigured.
func (j *JWTUtil) GenerateToken(telegramID int64, tenantID string) (string, error) {
	if j.config == nil {
		return "", errors.New("JWT configuration not provided")
	}

	expireMinutes := j.config.ExpireMinutes
	if expireMinutes <= 0 {
		expireMinutes = 60
	}

	claims := SessionClaims{
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(telegramID, 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(expireMinutes) * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.config.Secret))
}

// ValidateToken validates and parses the JWT token
func (j *JWTUtil) ValidateToken(tokenString string) (*SessionClaims, error) {
	if j.config == nil {
		return nil, errors.New("JWT configuration not provided")
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&SessionClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(j.config.Secret), nil
		},
	)

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// SubjectOrEmpty decodes a token and returns its subject, or "" on any
// failure. Used by the rate limiter, which must never reject a request for
// a bad token.
func (j *JWTUtil) SubjectOrEmpty(tokenString string) string {
	claims, err := j.ValidateToken(tokenString)
	if err != nil {
		return ""
	}
	return claims.Subject
}
