package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/uploadkit/pkg/filesize"
	"github.com/dmitrymomot/uploadkit/pkg/logger"
	"github.com/dmitrymomot/uploadkit/pkg/upload"
)

const (
	defaultMaxBodySize     = 32 << 20
	defaultShutdownTimeout = 5 * time.Second
)

// Server serves the upload endpoint with graceful shutdown.
type Server struct {
	cfg        Config
	upload     upload.Config
	uploadOpts []upload.Option
	checks     []func(context.Context) error
	log        *slog.Logger
	maxBody    int64
	router     *chi.Mux

	mu   sync.Mutex
	srv  *http.Server
	once sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the process logger. Upload audit entries are forwarded to it.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithUploadOptions passes opts to every Uploader the server creates,
// for example a shared transfer or sink.
func WithUploadOptions(opts ...upload.Option) Option {
	return func(s *Server) {
		s.uploadOpts = append(s.uploadOpts, opts...)
	}
}

// WithHealthcheck registers a dependency probe for GET /health.
func WithHealthcheck(fn func(context.Context) error) Option {
	return func(s *Server) {
		if fn != nil {
			s.checks = append(s.checks, fn)
		}
	}
}

// New returns a Server that builds an Uploader from uploadCfg for every request.
func New(cfg Config, uploadCfg upload.Config, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		upload:  uploadCfg,
		log:     logger.Nop(),
		maxBody: defaultMaxBodySize,
		router:  chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if n := filesize.Parse(cfg.MaxBodySize); n > 0 {
		s.maxBody = n
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Post("/upload", s.handleUpload)
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the HTTP server and blocks until ctx is done, SIGINT or SIGTERM
// arrives, or the listener fails. Listener failures are wrapped with ErrStart.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.srv != nil {
		s.mu.Unlock()
		return errors.Join(ErrStart, ErrAlreadyRunning)
	}
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}
	if srv.Addr == "" {
		srv.Addr = ":8080"
	}
	s.srv = srv
	s.mu.Unlock()

	s.log.InfoContext(ctx, "http server listening", slog.String("addr", srv.Addr))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case <-ctx.Done():
		_ = s.Shutdown(context.Background())
		runErr = <-errCh
	case <-stop:
		_ = s.Shutdown(context.Background())
		runErr = <-errCh
	case runErr = <-errCh:
	}

	if runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
		return errors.Join(ErrStart, runErr)
	}
	s.log.Info("http server stopped")
	return nil
}

// Shutdown stops the server gracefully. It is safe for repeated calls.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		srv := s.srv
		s.mu.Unlock()
		if srv == nil {
			return
		}

		timeout := s.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = defaultShutdownTimeout
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		err = srv.Shutdown(ctx)
	})

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Join(ErrShutdown, err)
	}
	return nil
}

// RequestIDExtractor adds the chi request id to log records.
// Pass it to logger.WithContextExtractors.
func RequestIDExtractor(ctx context.Context) (slog.Attr, bool) {
	if id := middleware.GetReqID(ctx); id != "" {
		return logger.RequestID(id), true
	}
	return slog.Attr{}, false
}
