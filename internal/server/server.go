package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskboard/internal/auth"
	"taskboard/internal/models"
	"taskboard/internal/service"
)

const actorKey = "actor"

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server provides HTTP handlers for the task board backend.
type Server struct {
	engine    *gin.Engine
	svc       *service.Service
	auth      *auth.Authenticator
	db        Pinger
	logger    *slog.Logger
	staticDir string
}

// New constructs the HTTP server with routes and middleware configured.
func New(svc *service.Service, authn *auth.Authenticator, db Pinger, logger *slog.Logger, staticDir string) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api/healthz"))

	srv := &Server{
		engine:    router,
		svc:       svc,
		auth:      authn,
		db:        db,
		logger:    logger,
		staticDir: staticDir,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API and static handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)
		api.POST("/registration", s.handleRegister)
		api.POST("/login", s.handleLogin)

		authed := api.Group("", s.requireActor)
		authed.GET("/email-check", s.handleEmailCheck)

		boards := authed.Group("/boards")
		{
			boards.GET("", s.handleListBoards)
			boards.POST("", s.handleCreateBoard)
			boards.GET("/active", s.handleListBoards)
			boards.GET("/:id", s.handleGetBoard)
			boards.PUT("/:id", s.handleUpdateBoard)
			boards.PATCH("/:id", s.handleUpdateBoard)
			boards.DELETE("/:id", s.handleDeleteBoard)
			boards.POST("/:id/deactivate", s.handleDeactivateBoard)
		}

		tasks := authed.Group("/tasks")
		{
			tasks.GET("", s.handleListTasks)
			tasks.POST("", s.handleCreateTask)
			tasks.GET("/assigned-to-me", s.handleAssignedToMe)
			tasks.GET("/reviewing", s.handleReviewing)
			tasks.GET("/:id", s.handleGetTask)
			tasks.PUT("/:id", s.handleUpdateTask)
			tasks.PATCH("/:id", s.handleUpdateTask)
			tasks.DELETE("/:id", s.handleDeleteTask)
			tasks.GET("/:id/comments", s.handleListComments)
			tasks.POST("/:id/comments", s.handleCreateComment)
			tasks.DELETE("/:id/comments/:comment_id", s.handleDeleteComment)
		}
	}

	s.mountStatic()
}

// handleHealth reports readiness, including database reachability.
func (s *Server) handleHealth(c *gin.Context) {
	if s.db != nil {
		if err := s.db.Ping(c.Request.Context()); err != nil {
			s.respondError(c, http.StatusServiceUnavailable, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requireActor resolves the request token and aborts with 401 when it is
// missing or unknown.
func (s *Server) requireActor(c *gin.Context) {
	key := auth.TokenFromHeader(c.GetHeader("Authorization"))
	user, err := s.auth.Resolve(c.Request.Context(), key)
	if err != nil {
		s.fail(c, err)
		c.Abort()
		return
	}
	c.Set(actorKey, user)
	c.Next()
}

// actor returns the user resolved by requireActor, or nil.
func actor(c *gin.Context) *models.User {
	if v, ok := c.Get(actorKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// parseID converts a path parameter to int64 with error handling.
func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid identifier"})
		return 0, false
	}
	return id, true
}

// statusFor maps service error kinds to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail responds with the status matching err's kind.
func (s *Server) fail(c *gin.Context, err error) {
	s.respondError(c, statusFor(err), err)
}

// respondError logs the error and returns a JSON payload. Internal failures
// are logged in full and reported generically.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": http.StatusText(status)})
		return
	}
	s.logger.Debug("request rejected", slog.String("path", c.FullPath()), slog.Int("status", status), slog.String("error", err.Error()))
	body := gin.H{"error": err.Error()}
	if details := service.DetailsOf(err); len(details) > 0 {
		body["details"] = details
	}
	c.JSON(status, body)
}

// respondSuccess writes payload as JSON, or only the status when it is nil.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
