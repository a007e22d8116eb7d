// Package server implements the HTTP ingress: a chi-routed JSON API under
// /api/v1 in front of the Service Facade and Tool Dispatcher (§6).
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/manak-ai/retrieval/internal/apperror"
	"github.com/manak-ai/retrieval/internal/auth"
	"github.com/manak-ai/retrieval/internal/domain"
	"github.com/manak-ai/retrieval/internal/tool"
)

// DocumentService is the subset of *service.DocumentService the ingress
// calls into.
type DocumentService interface {
	Add(ctx context.Context, documentID string) error
	OverviewQuery(ctx context.Context, req domain.QueryRequest) (domain.OverviewResponse, error)
	ChunkQuery(ctx context.Context, req domain.QueryRequest) (domain.ChunkResponse, error)
}

// RepositoryService is the subset of *service.RepositoryService the ingress
// calls into.
type RepositoryService interface {
	Add(ctx context.Context, repositoryID, branch string) error
	OverviewQuery(ctx context.Context, req domain.QueryRequest) (domain.OverviewResponse, error)
	ChunkQuery(ctx context.Context, req domain.QueryRequest) (domain.ChunkResponse, error)
}

// ToolInvoker is the subset of *tool.Dispatcher the ingress calls into.
type ToolInvoker interface {
	Invoke(ctx context.Context, req tool.InvokeRequest) tool.InvokeResponse
}

// Config configures the HTTP ingress.
type Config struct {
	Port           int
	ServiceName    string
	Logger         *slog.Logger
	AllowedOrigins []string
}

// Server is the HTTP ingress described by §6.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	logger     *slog.Logger
}

// New builds a Server wired to the given Document Service, Repository
// Service, and Tool Dispatcher.
func New(cfg Config, documents DocumentService, repositories RepositoryService, tools ToolInvoker) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "retrieval"
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLoggingMiddleware(logger))
	router.Use(middleware.Recoverer)
	router.Use(corsMiddleware(cfg.AllowedOrigins))

	router.Get("/", rootHandler(serviceName))
	router.Get("/healthz", healthHandler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.RequireBearerToken)

		r.Post("/document", documentAddHandler(documents))
		r.Post("/document/overview/query", documentOverviewHandler(documents))
		r.Post("/document/chunk/query", documentChunkHandler(documents))

		r.Post("/repository", repositoryAddHandler(repositories))
		r.Post("/repository/overview/query", repositoryOverviewHandler(repositories))
		r.Post("/repository/chunk/query", repositoryChunkHandler(repositories))

		r.Post("/tool/invoke", toolInvokeHandler(tools))
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{httpServer: httpServer, router: router, logger: logger}
}

// Router returns the underlying chi router, mainly for tests.
func (s *Server) Router() *chi.Mux { return s.router }

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "address", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}
	return nil
}

func requestLoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote_addr", r.RemoteAddr,
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := false
			if len(allowedOrigins) == 0 {
				allowed = true
				origin = "*"
			} else {
				for _, o := range allowedOrigins {
					if o == "*" || o == origin {
						allowed = true
						break
					}
				}
			}

			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Max-Age", "86400")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rootHandler(serviceName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"service": serviceName,
			"status":  "ok",
		})
	}
}

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error to an HTTP status using its apperror.Kind when
// present, defaulting to 500 for anything else (§7).
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if appErr := asAppError(err); appErr != nil {
		status = appErr.HTTPStatus()
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func asAppError(err error) *apperror.Error {
	for err != nil {
		if e, ok := err.(*apperror.Error); ok {
			return e
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil
		}
		err = u.Unwrap()
	}
	return nil
}
