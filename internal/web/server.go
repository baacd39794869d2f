package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/roach88/polls/internal/poll"
)

//go:embed templates/*.html
var templatesFS embed.FS

// DefaultLatestLimit is how many questions the index shows when Options
// leaves LatestLimit unset.
const DefaultLatestLimit = 5

// shutdownTimeout bounds how long Serve waits for in-flight requests.
const shutdownTimeout = 5 * time.Second

// Store is the persistence the handlers read and write.
type Store interface {
	Question(ctx context.Context, id string) (poll.Question, error)
	PublishedQuestions(ctx context.Context, now time.Time, limit int) ([]poll.Question, error)
	Choices(ctx context.Context, questionID string) ([]poll.Choice, error)
	Vote(ctx context.Context, questionID, choiceID string) (poll.Choice, error)
	Ping(ctx context.Context) error
}

// Options configures a Server. Zero values pick defaults.
type Options struct {
	Clock        poll.Clock
	Logger       *slog.Logger
	LatestLimit  int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server renders poll pages from a Store.
type Server struct {
	store  Store
	clock  poll.Clock
	logger *slog.Logger
	limit  int
	tmpl   *template.Template

	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewServer parses the embedded templates and returns a ready Server.
func NewServer(st Store, opts Options) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		store:        st,
		clock:        opts.Clock,
		logger:       opts.Logger,
		limit:        opts.LatestLimit,
		tmpl:         tmpl,
		readTimeout:  opts.ReadTimeout,
		writeTimeout: opts.WriteTimeout,
	}
	if s.clock == nil {
		s.clock = poll.SystemClock{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.limit <= 0 {
		s.limit = DefaultLatestLimit
	}
	return s, nil
}

// Handler returns the routed, logged HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /polls/{$}", s.handleIndex)
	mux.HandleFunc("GET /polls/{id}/{$}", s.handleDetail)
	mux.HandleFunc("GET /polls/{id}/results/{$}", s.handleResults)
	mux.HandleFunc("POST /polls/{id}/vote/{$}", s.handleVote)
	mux.HandleFunc("GET /api/polls/{$}", s.handleAPIIndex)
	mux.HandleFunc("GET /api/polls/{id}/{$}", s.handleAPIDetail)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return s.logRequests(mux)
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully. Returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
