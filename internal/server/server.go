// internal/server/server.go

// Package server exposes the intake service over HTTP.
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"blueprint-leads/internal/common/config"
	"blueprint-leads/internal/common/errors"
	"blueprint-leads/internal/common/logger"
	"blueprint-leads/internal/common/observability"
	"blueprint-leads/internal/intake"
	"blueprint-leads/internal/quiz"
)

// Server holds the HTTP layer around the intake service.
type Server struct {
	service    *intake.Service
	adminToken string
	logger     logger.Logger
	obs        *observability.Observability
	engine     *gin.Engine
}

// New builds the router. CORS is open to the configured origins so the
// quiz frontend can post directly from the browser.
func New(service *intake.Service, cfg *config.Config, obs *observability.Observability, log logger.Logger) *Server {
	s := &Server{
		service:    service,
		adminToken: cfg.Admin.Token,
		logger:     log,
		obs:        obs,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.Server.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "x-admin-token")
	engine.Use(cors.New(corsConfig))

	engine.HandleMethodNotAllowed = true
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	engine.POST("/leads", s.observe(s.handleSubmit))
	engine.GET("/leads", s.handleList)
	engine.POST("/score", s.handleScore)
	engine.GET("/healthz", s.handleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.engine = engine
	return s
}

// Handler returns the underlying http.Handler for http.Server wiring and
// tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// observe wraps a handler with the intake counter and duration metrics.
func (s *Server) observe(handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		handler(c)

		status := "accepted"
		if c.Writer.Status() >= http.StatusBadRequest {
			status = "rejected"
		}
		s.obs.RecordIntake(c.Request.Context(), status)
		s.obs.RecordIntakeDuration(c.Request.Context(), time.Since(start), status)
	}
}

// flagRequest is the alternate POST /leads shape that flips the follow-up
// flag instead of creating a lead.
type flagRequest struct {
	FlagFollowUp  bool   `json:"flagFollowUp"`
	ContactHandle string `json:"contactHandle"`
}

func (s *Server) handleSubmit(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		writeError(c, errors.NewMalformedPayloadError(err))
		return
	}

	// A follow-up flag rides the same endpoint as a submission.
	var flag flagRequest
	if jsonErr := json.Unmarshal(raw, &flag); jsonErr == nil && flag.FlagFollowUp {
		if stdErr := s.service.FlagFollowUp(flag.ContactHandle); stdErr != nil {
			writeError(c, stdErr)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	l, stdErr := s.service.Submit(raw)
	if stdErr != nil {
		writeError(c, stdErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "id": l.ID})
}

func (s *Server) handleList(c *gin.Context) {
	token := c.GetHeader("x-admin-token")
	if token == "" || token != s.adminToken {
		writeError(c, errors.NewUnauthorizedError())
		return
	}

	c.JSON(http.StatusOK, gin.H{"leads": s.service.ListAll()})
}

// scoreRequest carries raw quiz answers for standalone scoring.
type scoreRequest struct {
	Answers quiz.AnswerSet `json:"answers"`
}

func (s *Server) handleScore(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.NewMalformedPayloadError(err))
		return
	}

	archetype, tally := s.service.ScoreAnswers(req.Answers)
	c.JSON(http.StatusOK, gin.H{
		"archetype": archetype,
		"tally":     tally,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func writeError(c *gin.Context, stdErr *errors.StandardError) {
	c.JSON(errors.HTTPStatus(stdErr.Code), gin.H{
		"error": stdErr.Message,
		"code":  stdErr.Code,
	})
}
