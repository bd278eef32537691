package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuestTokenRoundTrip(t *testing.T) {
	s, err := NewSessions(time.Hour)
	require.NoError(t, err)

	g, err := s.NewGuest("Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", g.DisplayName)
	assert.NotEmpty(t, g.PlayerID)

	sub, err := s.AuthenticateJWT(g.Token)
	require.NoError(t, err)
	assert.Equal(t, g.PlayerID, sub)

	anon, err := s.NewGuest("  ")
	require.NoError(t, err)
	assert.Contains(t, anon.DisplayName, "Guest-")
}

func TestExpiredTokenRejected(t *testing.T) {
	s, err := NewSessions(time.Minute)
	require.NoError(t, err)
	issued := time.Now()
	s.now = func() time.Time { return issued }

	token, err := s.CreateJWT("p1", "Alice")
	require.NoError(t, err)

	s.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = s.AuthenticateJWT(token)
	assert.Error(t, err)
}

func TestForeignKeyRejected(t *testing.T) {
	a, err := NewSessions(0)
	require.NoError(t, err)
	b, err := NewSessions(0)
	require.NoError(t, err)

	token, err := a.CreateJWT("p1", "Alice")
	require.NoError(t, err)
	_, err = b.AuthenticateJWT(token)
	assert.Error(t, err)
}

func TestFromRequest(t *testing.T) {
	s, err := NewSessions(0)
	require.NoError(t, err)
	token, err := s.CreateJWT("p1", "Alice")
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err = s.FromRequest(r)
	assert.ErrorIs(t, err, ErrNoToken)

	r.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	id, err := s.FromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "p1", id)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	id, err = s.FromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "p1", id)
}
