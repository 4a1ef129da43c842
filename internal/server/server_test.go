package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-sales-agent/internal/auth"
	"go-sales-agent/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticAsker string

func (s staticAsker) Ask(ctx context.Context, question string) string {
	return string(s)
}

type nopPoster struct{}

func (nopPoster) PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	return channelID, "1.0", nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:            8080,
			ShutdownTimeout: time.Second,
			AllowedOrigins:  []string{"http://localhost:5173"},
		},
		POS:      config.POSConfig{Timeout: time.Second, RequestsPerSec: 1, MaxPages: 1},
		LLM:      config.LLMConfig{Timeout: time.Second},
		Auth:     config.AuthConfig{TokenTTL: time.Hour, AdminUsername: "owner"},
		Business: config.BusinessConfig{Timezone: "America/New_York"},
	}
}

func newTestServer(cfg *config.Config, opts Options) *Server {
	if opts.Asker == nil {
		opts.Asker = staticAsker("answer")
	}
	return New(cfg, opts, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthAlwaysMounted(t *testing.T) {
	s := newTestServer(testConfig(), Options{})

	w := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"online"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAPIRoutesRequireJWTSecret(t *testing.T) {
	s := newTestServer(testConfig(), Options{})

	for _, path := range []string{"/login", "/api/ask"} {
		w := serve(s, httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`)))
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
	w := serve(s, httptest.NewRequest(http.MethodPost, "/slack/events", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPIFlow(t *testing.T) {
	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)
	cfg := testConfig()
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.AdminPasswordHash = hash
	s := newTestServer(cfg, Options{Asker: staticAsker("Sales look good.")})

	w := serve(s, httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"message":"today?"}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(s, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"owner","password":"s3cret"}`)))
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"message":"today?"}`))
	req.Header.Set("Authorization", "Bearer "+login.Token)
	w = serve(s, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"reply":"Sales look good."}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/reports/today", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	w = serve(s, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSlackRoutesVerifySignature(t *testing.T) {
	cfg := testConfig()
	cfg.Slack = config.SlackConfig{BotToken: "xoxb-test", SigningSecret: "shh"}
	s := newTestServer(cfg, Options{Poster: nopPoster{}})

	w := serve(s, httptest.NewRequest(http.MethodPost, "/slack/events", strings.NewReader(`{"type":"url_verification","challenge":"c"}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSlackRoutesNotMountedWithoutSigningSecret(t *testing.T) {
	cfg := testConfig()
	cfg.Slack = config.SlackConfig{BotToken: "xoxb-test"}
	s := newTestServer(cfg, Options{Poster: nopPoster{}})

	form := "command=%2Fsales&text=today&response_url=http%3A%2F%2F169.254.169.254%2F"
	req := httptest.NewRequest(http.MethodPost, "/slack/commands", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := serve(s, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShutdownRunsHooksInOrder(t *testing.T) {
	cfg := testConfig()
	cfg.Slack = config.SlackConfig{BotToken: "xoxb-test", SigningSecret: "shh"}
	s := newTestServer(cfg, Options{Poster: nopPoster{}})

	var order []string
	s.RegisterShutdownHook(func(ctx context.Context) error {
		order = append(order, "first")
		return nil
	})
	s.RegisterShutdownHook(func(ctx context.Context) error {
		order = append(order, "second")
		return errors.New("close failed")
	})

	err := s.shutdown(context.Background(), &http.Server{})
	assert.ErrorContains(t, err, "close failed")
	assert.Equal(t, []string{"first", "second"}, order)
}
