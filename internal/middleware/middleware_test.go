package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"go-sales-agent/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func protectedRouter(tokens *auth.TokenManager) *gin.Engine {
	r := gin.New()
	r.GET("/secret", AuthMiddleware(tokens), RequireRole(auth.RoleAdmin), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextUsername))
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	adminToken, err := tokens.GenerateToken("owner", auth.RoleAdmin)
	require.NoError(t, err)
	staffToken, err := tokens.GenerateToken("clerk", "staff")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"no bearer prefix", adminToken, http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"wrong role", "Bearer " + staffToken, http.StatusForbidden},
		{"admin", "Bearer " + adminToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/secret", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			protectedRouter(tokens).ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	r := gin.New()
	r.Use(RequestLogger(logger))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	id := w.Header().Get(RequestIDHeader)
	assert.Len(t, id, 36)
	assert.Equal(t, id, w.Body.String())
	assert.Contains(t, buf.String(), `"path":"/ping"`)
	assert.Contains(t, buf.String(), id)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func signedSlackRequest(secret, body string, ts time.Time) *http.Request {
	stamp := strconv.FormatInt(ts.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("v0:" + stamp + ":" + body))

	req := httptest.NewRequest(http.MethodPost, "/slack/events", strings.NewReader(body))
	req.Header.Set("X-Slack-Request-Timestamp", stamp)
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(mac.Sum(nil)))
	return req
}

func slackRouter(secret string) *gin.Engine {
	r := gin.New()
	r.POST("/slack/events", VerifySlackSignature(secret, discardLogger()), func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.String(http.StatusOK, string(body))
	})
	return r
}

func TestVerifySlackSignature(t *testing.T) {
	body := `{"type":"url_verification","challenge":"abc"}`

	t.Run("valid signature keeps body", func(t *testing.T) {
		w := httptest.NewRecorder()
		slackRouter("shh").ServeHTTP(w, signedSlackRequest("shh", body, time.Now()))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, body, w.Body.String())
	})

	t.Run("wrong secret", func(t *testing.T) {
		w := httptest.NewRecorder()
		slackRouter("shh").ServeHTTP(w, signedSlackRequest("other", body, time.Now()))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing headers", func(t *testing.T) {
		w := httptest.NewRecorder()
		slackRouter("shh").ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/slack/events", strings.NewReader(body)))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		w := httptest.NewRecorder()
		slackRouter("shh").ServeHTTP(w, signedSlackRequest("shh", body, time.Now().Add(-time.Hour)))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejected without secret", func(t *testing.T) {
		w := httptest.NewRecorder()
		slackRouter("").ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/slack/events", strings.NewReader(body)))
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = httptest.NewRecorder()
		slackRouter("").ServeHTTP(w, signedSlackRequest("", body, time.Now()))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
