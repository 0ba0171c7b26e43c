package services

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

var ErrInvalidSession = errors.New("invalid session")

const sessionKeyInfo = "infogrid admin session v1"

// Session is what the admin cookie carries once opened.
type Session struct {
	AdminID    string    `json:"adminId"`
	Username   string    `json:"username"`
	Role       string    `json:"role"`
	IsLoggedIn bool      `json:"isLoggedIn"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

type sessionClaims struct {
	AdminID    string `json:"adminId"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	IsLoggedIn bool   `json:"isLoggedIn"`
	jwt.RegisteredClaims
}

// SessionCodec signs sessions as HS256 JWTs and seals them with XChaCha20-Poly1305.
// Both keys are derived from one secret with HKDF-SHA256.
type SessionCodec struct {
	signKey []byte
	aead    cipher.AEAD
	ttl     time.Duration
	now     func() time.Time
}

func NewSessionCodec(secret string, ttl time.Duration) (*SessionCodec, error) {
	if len(secret) < 32 {
		return nil, errors.New("session secret must be at least 32 characters")
	}
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(sessionKeyInfo))
	encKey := make([]byte, chacha20poly1305.KeySize)
	signKey := make([]byte, 32)
	if _, err := io.ReadFull(kdf, encKey); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(kdf, signKey); err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(encKey)
	if err != nil {
		return nil, err
	}
	return &SessionCodec{signKey: signKey, aead: aead, ttl: ttl, now: time.Now}, nil
}

func (c *SessionCodec) TTL() time.Duration {
	return c.ttl
}

// Seal returns the cookie value for s and the moment it expires.
func (c *SessionCodec) Seal(s Session) (string, time.Time, error) {
	now := c.now().UTC()
	exp := now.Add(c.ttl)
	claims := sessionClaims{
		AdminID:    s.AdminID,
		Username:   s.Username,
		Role:       s.Role,
		IsLoggedIn: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.AdminID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signKey)
	if err != nil {
		return "", time.Time{}, err
	}
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(signed)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", time.Time{}, err
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(signed), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), exp, nil
}

// Open reverses Seal. Tampered, expired or logged-out values return ErrInvalidSession.
func (c *SessionCodec) Open(value string) (Session, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil || len(raw) < c.aead.NonceSize()+c.aead.Overhead() {
		return Session{}, ErrInvalidSession
	}
	nonce, ciphertext := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plain, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return Session{}, ErrInvalidSession
	}

	claims := &sessionClaims{}
	_, err = jwt.ParseWithClaims(string(plain), claims, func(token *jwt.Token) (interface{}, error) {
		return c.signKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if !claims.IsLoggedIn || claims.AdminID == "" {
		return Session{}, ErrInvalidSession
	}
	return Session{
		AdminID:    claims.AdminID,
		Username:   claims.Username,
		Role:       claims.Role,
		IsLoggedIn: true,
		ExpiresAt:  claims.ExpiresAt.Time,
	}, nil
}
