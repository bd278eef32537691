// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName carries the session token for browser clients.
const CookieName = "auth_token"

// ErrNoToken is returned when a request carries neither a bearer header nor the cookie.
var ErrNoToken = errors.New("no session token")

// Sessions signs and verifies EdDSA session tokens whose "sub" is the player id.
type Sessions struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	// expire is the token lifetime, 0 => no exp claim.
	expire time.Duration
	now    func() time.Time
}

// NewSessions generates a fresh ed25519 key pair. Tokens do not survive a restart.
func NewSessions(expire time.Duration) (*Sessions, error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	return &Sessions{privateKey: priv, publicKey: pub, expire: expire, now: time.Now}, nil
}

// Guest is an anonymous player identity.
type Guest struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Token       string `json:"token"`
}

// NewGuest allocates a player id and signs a token for it.
func (s *Sessions) NewGuest(displayName string) (Guest, error) {
	id := uuid.NewString()
	if strings.TrimSpace(displayName) == "" {
		displayName = "Guest-" + id[:8]
	}
	token, err := s.CreateJWT(id, displayName)
	if err != nil {
		return Guest{}, err
	}
	return Guest{PlayerID: id, DisplayName: displayName, Token: token}, nil
}

// CreateJWT signs a token with sub = playerID.
func (s *Sessions) CreateJWT(playerID, displayName string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  playerID,
		"name": displayName,
		"iat":  s.now().Unix(),
	}
	if s.expire > 0 {
		claims["exp"] = s.now().Add(s.expire).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(s.privateKey)
}

// AuthenticateJWT verifies a token and returns its "sub".
func (s *Sessions) AuthenticateJWT(tokenString string) (string, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.publicKey, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid jwt claims")
	}
	playerID, ok := claims["sub"].(string)
	if !ok || playerID == "" {
		return "", fmt.Errorf("missing sub in jwt")
	}
	return playerID, nil
}

// FromRequest authenticates the bearer header, falling back to the auth cookie.
func (s *Sessions) FromRequest(r *http.Request) (string, error) {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return s.AuthenticateJWT(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return s.AuthenticateJWT(c.Value)
	}
	return "", ErrNoToken
}
