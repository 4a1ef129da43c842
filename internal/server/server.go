package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go-sales-agent/internal/assistant"
	"go-sales-agent/internal/auth"
	"go-sales-agent/internal/config"
	"go-sales-agent/internal/handlers"
	"go-sales-agent/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Options carries the components built in main. Sources and Poster may be nil
// when the POS or Slack integration is not configured.
type Options struct {
	Asker    handlers.Asker
	Sources  *assistant.Sources
	Poster   handlers.MessagePoster
	LLMReady bool
}

type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	slack  *handlers.SlackHandler
	hooks  []func(ctx context.Context) error
	logger *slog.Logger
}

func New(cfg *config.Config, opts Options, logger *slog.Logger) *Server {
	s := &Server{cfg: cfg, engine: gin.New(), logger: logger}
	s.setupRoutes(opts)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) setupRoutes(opts Options) {
	r := s.engine
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(s.logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	apiEnabled := s.cfg.Auth.JWTSecret != ""
	slackEnabled := s.cfg.Slack.Enabled() && s.cfg.Slack.SigningSecret != "" && opts.Poster != nil

	system := handlers.NewSystemHandler(s.cfg.Location(), handlers.Features{
		LiveData: opts.Sources != nil,
		LLM:      opts.LLMReady,
		Slack:    slackEnabled,
		API:      apiEnabled,
	})
	r.GET("/health", system.Health)

	// --- FEATURE FLAG: Slack ---
	if slackEnabled {
		s.slack = handlers.NewSlackHandler(opts.Asker, opts.Poster, s.cfg.LLM.Timeout+s.cfg.POS.FetchBudget(), s.logger)
		sl := r.Group("/slack")
		sl.Use(middleware.VerifySlackSignature(s.cfg.Slack.SigningSecret, s.logger))
		{
			sl.POST("/events", s.slack.Events)
			sl.POST("/commands", s.slack.Commands)
		}
	} else {
		s.logger.Info("Slack routes are disabled, SLACK_BOT_TOKEN and SLACK_SIGNING_SECRET are both required")
	}

	// --- FEATURE FLAG: direct HTTP API ---
	if !apiEnabled {
		s.logger.Info("API routes are disabled, JWT_SECRET is not set")
		return
	}
	if s.cfg.Auth.AdminPasswordHash == "" {
		s.logger.Warn("ADMIN_PASSWORD_HASH is empty, /login will reject every request")
	}

	tokens := auth.NewTokenManager(s.cfg.Auth.JWTSecret, s.cfg.Auth.TokenTTL)
	r.POST("/login", handlers.NewLoginHandler(tokens, s.cfg.Auth, s.logger).Login)

	ai := handlers.NewAIHandler(opts.Asker, s.logger)
	reports := handlers.NewReportHandler(opts.Sources, s.cfg.Location(), s.logger)

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(tokens))
	api.Use(middleware.RequireRole(auth.RoleAdmin))
	{
		api.POST("/ask", ai.AskAI)
		api.GET("/reports/today", reports.GetToday)
		api.GET("/reports/compare", reports.GetComparison)
		api.GET("/reports/top", reports.GetTopProducts)
	}
}
