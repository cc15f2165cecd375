//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-auth-api/internal/config"
	"go-auth-api/internal/handler"
	"go-auth-api/internal/middleware"
	"go-auth-api/internal/password"
	"go-auth-api/internal/repository"
	"go-auth-api/internal/router"
	"go-auth-api/internal/service"
	"go-auth-api/internal/token"
)

type testServer struct {
	*httptest.Server
	users  *repository.MemoryUserRepository
	tokens *token.Manager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		ServerPort:       "8000",
		RequestTimeout:   30 * time.Second,
		SecretKey:        "test-secret",
		AccessTTL:        30 * time.Minute,
		RefreshTTL:       7 * 24 * time.Hour,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     1000,
		AuthRateLimitRPM: 1000,
	}

	users := repository.NewMemoryUserRepository()
	tokens := token.NewManager(cfg.SecretKey, cfg.AccessTTL, cfg.RefreshTTL)
	authService := service.NewAuthService(users, password.NewHasher(), tokens)
	authMiddleware := middleware.NewAuthMiddleware(tokens)
	authHandler := handler.NewAuthHandler(authService)

	server := httptest.NewServer(router.New(cfg, authMiddleware, authHandler))
	t.Cleanup(server.Close)

	return &testServer{Server: server, users: users, tokens: tokens}
}

func (s *testServer) register(t *testing.T, username string, pass string) *http.Response {
	t.Helper()

	body, err := json.Marshal(map[string]string{"username": username, "password": pass})
	require.NoError(t, err)

	resp, err := http.Post(s.URL+"/register", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (s *testServer) login(t *testing.T, username string, pass string) *http.Response {
	t.Helper()

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", pass)

	resp, err := http.Post(s.URL+"/token", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (s *testServer) bearerRequest(t *testing.T, method string, path string, tok string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, s.URL+path, nil)
	require.NoError(t, err)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

type tokenPairBody struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func decodeTokenPair(t *testing.T, resp *http.Response) tokenPairBody {
	t.Helper()

	var pair tokenPairBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pair))
	return pair
}
