// Package http provides the HTTP transport layer for the library.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"

	"github.com/mvaleed/bibliotheca/internal/config"
	"github.com/mvaleed/bibliotheca/internal/domain"
	"github.com/mvaleed/bibliotheca/internal/service"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Server is the HTTP server for the library.
type Server struct {
	httpServer      *http.Server
	router          *chi.Mux
	catalogService  *service.CatalogService
	loanService     *service.LoanService
	defaultLoanDays int
	logger          *slog.Logger
}

// NewServer creates a new HTTP server.
func NewServer(
	cfg *config.Config,
	catalogService *service.CatalogService,
	loanService *service.LoanService,
	logger *slog.Logger,
) *Server {
	s := &Server{
		router:          chi.NewRouter(),
		catalogService:  catalogService,
		loanService:     loanService,
		defaultLoanDays: cfg.DefaultLoanDays,
		logger:          logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// ListenAndServe starts the HTTP server on the given address.
// It returns http.ErrServerClosed once Shutdown has been called, including
// when Shutdown ran before the listener was opened.
func (s *Server) ListenAndServe(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.httpServer.Serve(listener)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(30 * time.Second))
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.handleHealth)

	// API v1
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/books", func(r chi.Router) {
			r.Get("/", s.handleListBooks)
			r.With(requireJSON).Post("/", s.handleAddBook)
			r.Get("/{id}", s.handleGetBook)
			r.Delete("/{id}", s.handleRemoveBook)
			r.With(requireJSON).Post("/{id}/loan", s.handleLoanBook)
			r.Post("/{id}/return", s.handleReturnBook)
		})

		r.Get("/loans/overdue", s.handleOverdueLoans)
	})
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Response helpers

type errorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var status int
	var resp errorResponse

	switch {
	case errors.Is(err, domain.ErrDuplicateKey):
		status = http.StatusConflict
		resp = errorResponse{Error: err.Error(), Code: "DUPLICATE_IDENTIFIER"}

	case errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusBadRequest
		resp = errorResponse{Error: err.Error(), Code: "INVALID_ARGUMENT"}
		var ves domain.ValidationErrors
		var ve domain.ValidationError
		if errors.As(err, &ves) {
			resp.Details = make(map[string]string, len(ves))
			for _, e := range ves {
				resp.Details[e.Field] = e.Message
			}
		} else if errors.As(err, &ve) {
			resp.Details = map[string]string{ve.Field: ve.Message}
		}

	case errors.Is(err, domain.ErrBookNotFound):
		status = http.StatusNotFound
		resp = errorResponse{Error: "book not found", Code: "NOT_FOUND"}

	case errors.Is(err, domain.ErrInvalidState):
		status = http.StatusConflict
		resp = errorResponse{Error: err.Error(), Code: "INVALID_STATE"}

	default:
		s.logger.Error("unhandled error", slog.String("error", err.Error()))
		status = http.StatusInternalServerError
		resp = errorResponse{Error: "internal server error", Code: "INTERNAL_ERROR"}
	}

	s.writeJSON(w, status, resp)
}

func (s *Server) readJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.ValidationError{Field: "body", Message: "invalid JSON"}
	}
	return nil
}
