package webserver

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/netutil"
)

// ShutdownTimeout bounds how long Run waits for an in-flight request once
// its context is done. After it the connection is dropped.
const ShutdownTimeout = 5 * time.Second

// State is the lifecycle state of a Server.
type State int

const (
	// Stopped means no listener is bound.
	Stopped State = iota
	// Running means the listener is bound and requests are being served.
	Running
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

// Server serves the files under Config.RootDir over plain HTTP. Connections
// are handled one at a time and each carries a single request.
type Server struct {
	cfg    Config
	logger *log.Logger
	// shutdownTimeout bounds the graceful part of Run's shutdown.
	shutdownTimeout time.Duration

	mu       sync.Mutex
	state    State
	listener net.Listener
	http     *http.Server
}

// New creates a stopped server. A missing root directory is not an error;
// every request will simply be answered with 404.
func New(cfg Config, logger *log.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	if logger == nil {
		logger = log.Default()
	}

	if info, err := os.Stat(cfg.RootDir); err != nil {
		logger.Printf("Warning: root directory unavailable: %v", err)
	} else if !info.IsDir() {
		logger.Printf("Warning: root is not a directory: %s", cfg.RootDir)
	}

	return &Server{
		cfg:             cfg,
		logger:          logger,
		shutdownTimeout: ShutdownTimeout,
	}, nil
}

// Config returns the server's configuration.
func (s *Server) Config() Config {
	return s.cfg
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Addr returns the bound address, or nil if the server is stopped.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start binds the listener. On failure the server stays stopped and nothing
// is left listening.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Running {
		return errors.New("server already running")
	}

	ln, err := net.Listen("tcp", s.cfg.Address())
	if err != nil {
		return errors.Wrapf(err, "unable to listen on %s", s.cfg.Address())
	}

	srv := &http.Server{
		Handler:  NewHandler(s.cfg.RootDir, s.logger),
		ErrorLog: s.logger,
	}
	// One request per connection, one connection at a time.
	srv.SetKeepAlivesEnabled(false)

	s.listener = netutil.LimitListener(ln, 1)
	s.http = srv
	s.state = Running
	return nil
}

// Serve blocks serving requests until the server is stopped. It returns nil
// after a clean stop.
func (s *Server) Serve() error {
	s.mu.Lock()
	srv, ln := s.http, s.listener
	s.mu.Unlock()

	if srv == nil {
		return errors.New("server not started")
	}

	err := srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	s.mu.Lock()
	if s.http == srv {
		s.state = Stopped
		s.http = nil
		s.listener = nil
	}
	s.mu.Unlock()
	return errors.Wrap(err, "serve failed")
}

// Stop closes the listener and waits, bounded by ctx, for the request in
// flight to complete. If ctx ends first, the remaining connection is closed
// forcibly and the stop still succeeds. Stopping a stopped server is a no-op.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.state = Stopped
	s.http = nil
	s.listener = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	err := srv.Shutdown(ctx)
	if err != nil && ctx.Err() != nil {
		s.logger.Printf("Warning: request still in flight at shutdown, closing connection: %v", err)
		if err := srv.Close(); err != nil {
			s.logger.Printf("Warning: forced close failed: %v", err)
		}
		return nil
	}
	return errors.Wrap(err, "shutdown failed")
}

// Run starts the server if needed and serves until ctx is done, then stops
// it. It returns nil when stopped through ctx.
func (s *Server) Run(ctx context.Context) error {
	if s.State() != Running {
		if err := s.Start(); err != nil {
			return err
		}
	}

	served := make(chan error, 1)
	go func() {
		served <- s.Serve()
	}()

	select {
	case err := <-served:
		if stopErr := s.Stop(context.Background()); stopErr != nil {
			s.logger.Printf("Warning: %v", stopErr)
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.Stop(shutdownCtx); err != nil {
		return err
	}
	return <-served
}
