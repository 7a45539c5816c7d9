package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmavtt/tabletop-core/internal/auth"
	"github.com/dmavtt/tabletop-core/internal/dice"
	"github.com/dmavtt/tabletop-core/internal/infrastructure/config"
	"github.com/dmavtt/tabletop-core/internal/infrastructure/logging"
	"github.com/dmavtt/tabletop-core/internal/journal"
	"github.com/dmavtt/tabletop-core/internal/library"
	"github.com/dmavtt/tabletop-core/internal/scene"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config     config.ServerConfig
	WS         config.WebSocketConfig
	Security   config.SecurityConfig
	UploadsDir string
	Logger     *logging.Logger
	Auth       *auth.Service
	Users      auth.UserRepository
	Scenes     scene.Repository
	Dice       dice.Repository
	Journal    journal.Repository
	Library    library.Repository
	Version    string
}

// Server is the HTTP API server for tabletop-core.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg           config.ServerConfig
	wsCfg         config.WebSocketConfig
	uploadsDir    string
	tokenTTLHours int
	logger        *logging.Logger
	authSvc       *auth.Service
	users         auth.UserRepository
	scenes        scene.Repository
	dice          dice.Repository
	journal       journal.Repository
	library       library.Repository
	version       string
	server        *http.Server
	hub           *Hub
	tickets       *ticketStore
	cancel        context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("auth service is required")
	}
	if deps.Scenes == nil {
		return nil, fmt.Errorf("scene repository is required")
	}

	return &Server{
		cfg:           deps.Config,
		wsCfg:         deps.WS,
		uploadsDir:    deps.UploadsDir,
		tokenTTLHours: deps.Security.JWT.TTLHours,
		logger:        deps.Logger,
		authSvc:       deps.Auth,
		users:         deps.Users,
		scenes:        deps.Scenes,
		dice:          deps.Dice,
		journal:       deps.Journal,
		library:       deps.Library,
		version:       deps.Version,
		tickets:       newTicketStore(),
	}, nil
}

// Start begins listening for HTTP connections.
//
// It sets up the router, starts the WebSocket hub and ticket cleanup,
// and launches the HTTP listener in a background goroutine. The server
// is stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	s.hub = NewHub(s.wsCfg, s.logger)
	go s.hub.Run(srvCtx)
	go s.cleanTicketsLoop(srvCtx)

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	// Cancel background goroutines (hub, ticket cleanup)
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
