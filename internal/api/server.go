package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"botanize/internal/confidence"
	"botanize/internal/entitlement"
	"botanize/internal/journal"
	"botanize/internal/logging"
	"botanize/internal/observe"
	"botanize/internal/quota"
	"botanize/internal/session"
	"botanize/internal/taxonomy"
)

// Journal is the subset of the journal the server uses.
type Journal interface {
	Add(ctx context.Context, entry journal.Entry) (journal.Entry, error)
	List(ctx context.Context, limit int) ([]journal.Entry, error)
	Delete(ctx context.Context, id string) error
}

// Deps are the components the handlers call.
type Deps struct {
	Taxonomy   *taxonomy.Store
	Matcher    *observe.Matcher
	Adjuster   *confidence.Adjuster
	Tracker    *quota.Tracker
	Identifier *session.Identifier
	Gate       entitlement.Gate
	// Journal is nil when journalling is disabled.
	Journal Journal
	// Token, when set, guards every /api route with bearer authentication.
	Token string
}

// Server exposes Deps over HTTP.
type Server struct {
	bind   string
	deps   Deps
	logger *slog.Logger
	engine *gin.Engine

	listener net.Listener
	server   *http.Server
}

// New builds the router. bind may be empty when only Handler is used.
func New(bind string, deps Deps, logger *slog.Logger) (*Server, error) {
	if deps.Taxonomy == nil || deps.Matcher == nil || deps.Adjuster == nil || deps.Tracker == nil || deps.Gate == nil {
		return nil, errors.New("api server requires taxonomy, matcher, adjuster, tracker, and gate")
	}
	s := &Server{
		bind:   strings.TrimSpace(bind),
		deps:   deps,
		logger: logging.NewComponentLogger(logger, "api"),
	}
	s.engine = s.routes()
	s.server = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Handler returns the HTTP handler for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr returns the bound address once Run is listening.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Listen binds the configured address.
func (s *Server) Listen() error {
	if s.bind == "" {
		return errors.New("api bind address is empty")
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener
	return nil
}

// Run serves until ctx is cancelled, then shuts down gracefully. Listen is
// called first when it has not been.
func (s *Server) Run(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	s.logger.Info("api server listening", logging.String("address", s.listener.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(s.listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api shutdown: %w", err)
	}
	s.logger.Info("api server stopped")
	return nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(requestIDMiddleware(), requestLogMiddleware(s.logger), gin.Recovery())
	r.MaxMultipartMemory = maxImageBytes

	api := r.Group("/api", authMiddleware(s.deps.Token))
	api.GET("/organs", s.handleOrgans)
	api.GET("/questions/:organ", s.handleQuestions)
	api.POST("/observe", s.handleObserve)
	api.POST("/adjust", s.handleAdjust)
	api.POST("/identify", s.handleIdentify)
	api.GET("/quota", s.handleQuota)
	api.POST("/quota/answer", s.handleQuotaAnswer)
	api.GET("/species", s.handleSpeciesSearch)
	api.GET("/species/:name", s.handleSpecies)
	api.GET("/journal", s.handleJournalList)
	api.DELETE("/journal/:id", s.handleJournalDelete)
	return r
}
