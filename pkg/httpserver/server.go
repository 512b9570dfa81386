package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/subscriptions/pkg/logger"
)

// Server runs one or more HTTP listeners and shuts them down together.
type Server struct {
	cfg       Config
	log       *slog.Logger
	listeners []*http.Server
}

// New creates a Server. A nil logger discards output.
func New(cfg Config, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	return &Server{cfg: cfg, log: log}
}

// Handle registers h on addr. It panics if addr is empty or h is nil.
func (s *Server) Handle(addr string, h http.Handler) {
	if addr == "" {
		panic("httpserver: addr cannot be empty")
	}
	if h == nil {
		panic("httpserver: handler cannot be nil")
	}
	s.listeners = append(s.listeners, &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	})
}

// Run serves every registered listener until ctx is cancelled, SIGINT or
// SIGTERM arrives, or one listener fails. All listeners are then shut down.
func (s *Server) Run(ctx context.Context) error {
	if len(s.listeners) == 0 {
		return errors.Join(ErrStart, ErrNoListeners)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lns := make([]net.Listener, 0, len(s.listeners))
	for _, srv := range s.listeners {
		ln, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			for _, l := range lns {
				_ = l.Close()
			}
			return errors.Join(ErrStart, err)
		}
		lns = append(lns, ln)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, srv := range s.listeners {
		ln := lns[i]
		s.log.InfoContext(ctx, "http listener started", slog.String("addr", ln.Addr().String()))
		g.Go(func() error {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.Join(ErrStart, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown()
	})

	return g.Wait()
}

func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	for _, srv := range s.listeners {
		if err := srv.Shutdown(ctx); err != nil {
			s.log.ErrorContext(ctx, "http listener shutdown failed", slog.String("addr", srv.Addr), logger.Error(err))
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(ErrShutdown, errors.Join(errs...))
	}
	s.log.InfoContext(ctx, "http listeners stopped")
	return nil
}
