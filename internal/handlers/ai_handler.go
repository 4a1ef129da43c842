package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"go-sales-agent/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Asker answers a free-text sales question. Failures come back as reply text.
type Asker interface {
	Ask(ctx context.Context, question string) string
}

type AskRequest struct {
	Message string `json:"message" binding:"required"`
}

type AIHandler struct {
	assistant Asker
	logger    *slog.Logger
}

func NewAIHandler(assistant Asker, logger *slog.Logger) *AIHandler {
	return &AIHandler{assistant: assistant, logger: logger}
}

// AskAI handles POST /api/ask.
func (h *AIHandler) AskAI(c *gin.Context) {
	var req AskRequest
	// 1. Parse the question
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	// 2. Route, gather sales data and ask the model. Failures come back as text.
	reply := h.assistant.Ask(c.Request.Context(), req.Message)
	h.logger.Debug("answered direct question", "user", c.GetString(middleware.ContextUsername))
	// 3. Return the Answer
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
