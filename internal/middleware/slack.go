package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/slack-go/slack"
)

// VerifySlackSignature checks the X-Slack-Signature HMAC against the signing
// secret and restores the body for the handler. With no secret every request is rejected.
func VerifySlackSignature(signingSecret string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Fail closed when no secret is configured
		if signingSecret == "" {
			logger.Error("slack request rejected, no signing secret configured")
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		// 2. Read the raw body and put it back for the handler
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		// 3. Check the timestamp and HMAC headers
		verifier, err := slack.NewSecretsVerifier(c.Request.Header, signingSecret)
		if err != nil {
			logger.Warn("slack request missing signature headers", "error", err)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		if _, err := verifier.Write(body); err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		if err := verifier.Ensure(); err != nil {
			logger.Warn("slack signature mismatch", "error", err)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}
