// Package httpserver is the REST transport: fiber routes, the two auth gates
// and the mapping of service errors to HTTP statuses.
package httpserver

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tasklist/internal/logging"
	"github.com/dmitrijs2005/tasklist/internal/server/auth"
	"github.com/dmitrijs2005/tasklist/internal/server/metrics"
	"github.com/dmitrijs2005/tasklist/internal/server/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const shutdownTimeout = 5 * time.Second

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators of the HTTP server.
type Deps struct {
	Users    *services.UserService
	Lists    *services.ListService
	Sessions services.SessionManager
	Issuer   auth.Issuer
	Store    Pinger
	Metrics  *metrics.Metrics

	// CORSAllowedOrigins is a comma separated origin list or "*".
	CORSAllowedOrigins string
}

type HTTPServer struct {
	address string
	app     *fiber.App
	deps    Deps
	logger  logging.Logger
}

func NewHTTPServer(address string, l logging.Logger, deps Deps) *HTTPServer {
	if deps.CORSAllowedOrigins == "" {
		deps.CORSAllowedOrigins = "*"
	}

	s := &HTTPServer{
		address: address,
		deps:    deps,
		logger:  l.With("module", "http_server"),
	}

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})
	s.routes()

	return s
}

// App exposes the fiber application, mainly for app.Test.
func (s *HTTPServer) App() *fiber.App {
	return s.app
}

func (s *HTTPServer) routes() {
	s.app.Use(recover.New())
	s.app.Use(requestid.New())
	s.app.Use(s.requestLogger)
	s.app.Use(cors.New(cors.Config{
		AllowOrigins:  s.deps.CORSAllowedOrigins,
		AllowMethods:  "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders:  "Origin, Content-Type, Accept, x-access-token, x-refresh-token, _id",
		ExposeHeaders: "x-access-token, x-refresh-token",
	}))

	s.app.Get("/healthz", s.health)
	s.app.Get("/readyz", s.ready)
	if s.deps.Metrics != nil {
		s.app.Get("/metrics", metricsHandler(s.deps.Metrics))
	}

	authenticate := Authenticate(s.deps.Issuer, s.deps.Metrics)
	verifySession := VerifySession(s.deps.Sessions, s.deps.Metrics)

	u := s.app.Group("/users")
	u.Post("/", s.signup)
	u.Post("/login", s.login)
	u.Get("/me/access-token", verifySession, s.refreshAccessToken)
	u.Delete("/session", verifySession, s.logout)

	l := s.app.Group("/lists", authenticate)
	l.Get("/", s.getLists)
	l.Post("/", s.createList)
	l.Patch("/:id", s.renameList)
	l.Delete("/:id", s.deleteList)
	l.Get("/:listId/tasks", s.getTasks)
	l.Post("/:listId/tasks", s.createTask)
	l.Patch("/:listId/tasks/:taskId", s.updateTask)
	l.Delete("/:listId/tasks/:taskId", s.deleteTask)
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	return s.app.Listen(s.address)
}

// requestLogger logs one line per request and observes its latency.
func (s *HTTPServer) requestLogger(c *fiber.Ctx) error {
	start := time.Now()

	chainErr := c.Next()
	if chainErr != nil {
		if err := c.App().ErrorHandler(c, chainErr); err != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	status := c.Response().StatusCode()
	elapsed := time.Since(start)
	s.deps.Metrics.ObserveRequest(c.Method(), status, elapsed)

	args := []any{
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"duration", elapsed,
		"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
	}
	switch {
	case status >= 500:
		s.logger.Error(c.UserContext(), "request", append(args, "error", chainErr)...)
	case status >= 400:
		s.logger.Warn(c.UserContext(), "request", args...)
	default:
		s.logger.Info(c.UserContext(), "request", args...)
	}
	return nil
}
