package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/codesmith-ai/codesmith/pkg/config"
	"github.com/codesmith-ai/codesmith/pkg/prompts"
	"github.com/codesmith-ai/codesmith/pkg/utils"
)

// MakeRequest is the intake payload accepted by POST /make.
type MakeRequest struct {
	Email         string               `json:"email" binding:"required,email"`
	Secret        string               `json:"secret" binding:"required"`
	Task          string               `json:"task" binding:"required"`
	Round         int                  `json:"round" binding:"min=0"`
	Nonce         string               `json:"nonce" binding:"required"`
	Brief         string               `json:"brief" binding:"required"`
	Checks        []string             `json:"checks"`
	EvaluationURL string               `json:"evaluation_url" binding:"required,url"`
	Attachments   []prompts.Attachment `json:"attachments"`
}

// JobRunner executes an accepted job to its terminal state. The production
// implementation is Pipeline.
type JobRunner interface {
	Execute(ctx context.Context, job *Job, req MakeRequest)
}

// Server is the HTTP intake surface: health, job intake, job status, and a
// websocket progress stream per job.
type Server struct {
	cfg      *config.Config
	registry *Registry
	runner   JobRunner
	logger   *utils.Logger
	engine   *gin.Engine
	upgrader websocket.Upgrader
}

func NewServer(cfg *config.Config, runner JobRunner, logger *utils.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		cfg:      cfg,
		registry: NewRegistry(),
		runner:   runner,
		logger:   logger,
		engine:   gin.New(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.engine.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/", s.handleHealth)
	s.engine.POST("/make", s.handleMake)
	s.engine.GET("/jobs/:id", s.handleJob)
	s.engine.GET("/jobs/:id/events", s.handleEvents)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Start serves until the listener fails.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.logger.LogProcessStep("Listening on " + addr)
	return s.engine.Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "api is working"})
}

func (s *Server) handleMake(c *gin.Context) {
	var req MakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
		return
	}
	if req.Secret != s.cfg.SharedSecret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid secret"})
		return
	}

	job := NewJob(uuid.NewString(), req.Task)
	s.registry.Add(job)
	s.logger.Logf("job %s accepted for task %q (round %d)", job.ID, req.Task, req.Round)

	// The job outlives the request; it reports through the callback URL.
	go s.runner.Execute(context.Background(), job, req)

	c.JSON(http.StatusAccepted, gin.H{"id": job.ID, "state": JobQueued})
}

func (s *Server) handleJob(c *gin.Context) {
	job, ok := s.registry.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown job"})
		return
	}
	c.JSON(http.StatusOK, job.View())
}

// handleEvents streams job progress messages over a websocket until the
// job reaches a terminal state or the client goes away.
func (s *Server) handleEvents(c *gin.Context) {
	job, ok := s.registry.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown job"})
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.LogError(fmt.Errorf("websocket upgrade failed: %w", err))
		return
	}
	defer conn.Close()

	events, cancel := job.Subscribe()
	defer cancel()

	for message := range events {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(message)); err != nil {
			return
		}
	}
	final := job.View()
	conn.WriteMessage(websocket.TextMessage, []byte(fmt.Sprintf("job %s: %s", final.ID, final.State)))
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(final.State)))
}

// validationMessage flattens binding failures into a single field-oriented
// message instead of validator's verbose struct paths.
func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	msg := "invalid request:"
	for i, fe := range fieldErrs {
		if i > 0 {
			msg += ";"
		}
		msg += fmt.Sprintf(" %s failed %s validation", fe.Field(), fe.Tag())
	}
	return msg
}
