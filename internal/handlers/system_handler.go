package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Features reports which integrations were configured at startup.
type Features struct {
	LiveData bool `json:"live_data"`
	LLM      bool `json:"llm"`
	Slack    bool `json:"slack"`
	API      bool `json:"api"`
}

type SystemHandler struct {
	started  time.Time
	loc      *time.Location
	features Features
	now      func() time.Time
}

func NewSystemHandler(loc *time.Location, features Features) *SystemHandler {
	return &SystemHandler{started: time.Now(), loc: loc, features: features, now: time.Now}
}

// Health handles GET /health.
func (h *SystemHandler) Health(c *gin.Context) {
	now := h.now()
	c.JSON(http.StatusOK, gin.H{
		"status":   "online",
		"uptime":   now.Sub(h.started).Round(time.Second).String(),
		"time":     now.In(h.loc).Format(time.RFC3339),
		"features": h.features,
	})
}
