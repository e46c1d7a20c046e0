package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ajitpratap0/castgraph/internal/backend"
	"github.com/ajitpratap0/castgraph/internal/metrics"
	"github.com/ajitpratap0/castgraph/internal/models"
	"github.com/ajitpratap0/castgraph/internal/store"
)

// Catalog is the service the API exposes.
type Catalog interface {
	backend.Backend
	Stats(ctx context.Context) (*models.CatalogStats, error)
}

// Server is an HTTP API server that exposes catalog operations.
type Server struct {
	catalog   Catalog
	store     store.Store
	logger    *slog.Logger
	authToken string // empty = no auth required
}

// NewServer creates a new Server with the given dependencies.
func NewServer(cat Catalog, st store.Store, logger *slog.Logger, authToken string) *Server {
	return &Server{
		catalog:   cat,
		store:     st,
		logger:    logger,
		authToken: authToken,
	}
}

// Handler returns an http.Handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check and metrics: no auth required.
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Read endpoints.
	mux.HandleFunc("GET /autocomplete/{role}", s.auth(s.handleAutocomplete))
	mux.HandleFunc("GET /actors/{name}/filmography", s.auth(s.handleFilmography))
	mux.HandleFunc("GET /movies/{title}/cast", s.auth(s.handleCast))
	mux.HandleFunc("GET /actors", s.auth(s.handleList(models.RoleSubject)))
	mux.HandleFunc("GET /movies", s.auth(s.handleList(models.RoleRelated)))
	mux.HandleFunc("GET /actors/{name}", s.auth(s.handleGet(models.RoleSubject, "name")))
	mux.HandleFunc("GET /movies/{title}", s.auth(s.handleGet(models.RoleRelated, "title")))
	mux.HandleFunc("GET /movie/poster/{title}", s.auth(s.handlePoster))
	mux.HandleFunc("GET /stats", s.auth(s.handleStats))

	// Write endpoints.
	mux.HandleFunc("POST /add_actor_from_tmdb/{name}", s.auth(s.handleRegister))
	mux.HandleFunc("POST /seed", s.auth(s.handleSeed))
	mux.HandleFunc("DELETE /actors/{name}", s.auth(s.handleDelete(models.RoleSubject, "name")))
	mux.HandleFunc("DELETE /movies/{title}", s.auth(s.handleDelete(models.RoleRelated, "title")))

	return s.requestID(s.instrument(mux))
}

// --- middleware ---

// auth wraps a handler with Bearer token authentication when authToken is set.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authToken == "" {
			next(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

// requestID tags every response with an X-Request-ID, reusing the caller's.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument counts requests by matched route pattern and status code.
func (s *Server) instrument(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		mux.ServeHTTP(rec, r)
		_, pattern := mux.Handler(r)
		if pattern == "" {
			pattern = "unmatched"
		}
		metrics.Inc(metrics.APIRequests, pattern, strconv.Itoa(rec.status))
		s.logger.Debug("api request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}

// --- handlers ---

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	role, err := models.ParseRole(r.PathValue("role"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid search type")
		return
	}
	q := r.URL.Query().Get("query")
	if q == "" {
		s.writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	out, err := s.catalog.Suggest(r.Context(), role, q)
	if err != nil {
		s.logger.Error("failed to autocomplete", "role", role, "query", q, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to autocomplete")
		return
	}
	if out == nil {
		out = []models.Suggestion{}
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleFilmography(w http.ResponseWriter, r *http.Request) {
	s.lookup(w, r, models.RoleSubject, r.PathValue("name"))
}

func (s *Server) handleCast(w http.ResponseWriter, r *http.Request) {
	s.lookup(w, r, models.RoleRelated, r.PathValue("title"))
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request, role models.Role, name string) {
	if name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	res, err := s.catalog.LookupRelations(r.Context(), role, name)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, role.Label()+" not found")
			return
		}
		s.logger.Error("failed to look up relations", "role", role, "name", name, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to look up relations")
		return
	}
	if res.Related == nil {
		res.Related = []models.Entity{}
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleList(role models.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := s.catalog.ListAll(r.Context(), role)
		if err != nil {
			s.logger.Error("failed to list", "role", role, "error", err)
			s.writeError(w, http.StatusInternalServerError, "failed to list")
			return
		}
		if out == nil {
			out = []models.Entity{}
		}
		s.writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) handleGet(role models.Role, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue(param)
		e, err := s.store.Get(r.Context(), role, name)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				s.writeError(w, http.StatusNotFound, role.Label()+" not found")
				return
			}
			s.logger.Error("failed to get entity", "role", role, "name", name, "error", err)
			s.writeError(w, http.StatusInternalServerError, "failed to get entity")
			return
		}
		s.writeJSON(w, http.StatusOK, e)
	}
}

func (s *Server) handleDelete(role models.Role, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue(param)
		if err := s.store.Delete(r.Context(), role, name); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				s.writeError(w, http.StatusNotFound, role.Label()+" not found")
				return
			}
			s.logger.Error("failed to delete entity", "role", role, "name", name, "error", err)
			s.writeError(w, http.StatusInternalServerError, "failed to delete entity")
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	actor, err := s.catalog.RegisterSubject(r.Context(), name)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "Actor "+name+" not found in TMDB")
			return
		}
		s.logger.Error("failed to register actor", "name", name, "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, actor)
}

func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	rep, err := s.catalog.SeedDefaultDataset(r.Context())
	if err != nil {
		s.logger.Error("failed to seed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to seed")
		return
	}
	s.writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handlePoster(w http.ResponseWriter, r *http.Request) {
	title := r.PathValue("title")
	p, err := s.catalog.FetchPoster(r.Context(), title)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "poster not found")
			return
		}
		s.logger.Warn("failed to fetch poster", "title", title, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to fetch poster")
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.catalog.Stats(r.Context())
	if err != nil {
		s.logger.Error("failed to get stats", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	s.writeJSON(w, http.StatusOK, stats)
}

// --- helpers ---

// writeJSON encodes v as JSON and writes it to w with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(v); encErr != nil {
		s.logger.Error("failed to encode response", "error", encErr)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// Shutdown gracefully shuts down an http.Server with the given timeout.
// This is a convenience helper used by the serve command.
func Shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
