package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-auth-api/internal/token"
)

func protectedEcho(t *testing.T) http.Handler {
	t.Helper()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, ok := SubjectFromContext(r.Context())
		require.True(t, ok)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(subject))
	})
}

func TestRequireAccess(t *testing.T) {
	tokens := token.NewManager("test-secret", 30*time.Minute, 7*24*time.Hour)
	mw := NewAuthMiddleware(tokens)
	handler := mw.RequireAccess(protectedEcho(t))

	accessToken, err := tokens.IssueAccessToken("alice")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())
}

func TestRequireAccessRejectsRefreshToken(t *testing.T) {
	tokens := token.NewManager("test-secret", 30*time.Minute, 7*24*time.Hour)
	mw := NewAuthMiddleware(tokens)
	handler := mw.RequireAccess(protectedEcho(t))

	refreshToken, err := tokens.IssueRefreshToken("alice")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+refreshToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
}

func TestRequireAccessMissingOrMalformedHeader(t *testing.T) {
	tokens := token.NewManager("test-secret", 30*time.Minute, 7*24*time.Hour)
	mw := NewAuthMiddleware(tokens)
	handler := mw.RequireAccess(protectedEcho(t))

	for _, header := range []string{"", "Bearer", "Bearer ", "Basic abc", "garbage"} {
		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header: %q", header)
	}
}

func TestBearerTokenCaseInsensitiveScheme(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer some-token")

	tok, ok := BearerToken(req)
	require.True(t, ok)
	assert.Equal(t, "some-token", tok)
}
