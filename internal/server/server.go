// Package server exposes the catalog over HTTP. It is a thin adapter: the
// REST surface maps one-to-one onto catalog operations, and error kinds
// map onto status codes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/HenryZhang-ZHY/beetle/internal/catalog"
	beetleerrors "github.com/HenryZhang-ZHY/beetle/internal/errors"
	"github.com/HenryZhang-ZHY/beetle/internal/searcher"
)

// Server serves the beetle HTTP API.
type Server struct {
	catalog *catalog.Catalog
	http    *http.Server
}

// New creates a server bound to addr.
func New(cat *catalog.Catalog, addr string) *Server {
	s := &Server{catalog: cat}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// routes wires the REST API.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/indexes", s.handleList)
	mux.HandleFunc("POST /api/indexes", s.handleCreate)
	mux.HandleFunc("GET /api/indexes/{name}", s.handleGet)
	mux.HandleFunc("DELETE /api/indexes/{name}", s.handleRemove)
	mux.HandleFunc("POST /api/indexes/{name}/update", s.handleUpdate)
	mux.HandleFunc("POST /api/indexes/{name}/reset", s.handleReset)
	mux.HandleFunc("GET /api/indexes/{name}/search", s.handleSearch)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	return logRequests(mux)
}

// ListenAndServe blocks serving requests until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()

	slog.Info("http server listening", slog.String("addr", s.http.Addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

// Handler exposes the route table for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

type errorResponse struct {
	Error string `json:"error"`
}

type indexResponse struct {
	IndexName  string `json:"index_name"`
	IndexPath  string `json:"index_path"`
	TargetPath string `json:"target_path"`
}

type createRequest struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type updateResponse struct {
	Scanned  int `json:"scanned"`
	Added    int `json:"added"`
	Modified int `json:"modified"`
	Removed  int `json:"removed"`
	Skipped  int `json:"skipped"`
}

type searchResponse struct {
	Query      string            `json:"query"`
	IndexName  string            `json:"index_name"`
	Results    []searcher.Result `json:"results"`
	TotalHits  int               `json:"total_results"`
	DurationMs float64           `json:"duration_ms"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	metas, err := s.catalog.List()
	if err != nil {
		writeError(w, err)
		return
	}

	response := make([]indexResponse, 0, len(metas))
	for _, m := range metas {
		response = append(response, indexResponse{
			IndexName:  m.IndexName,
			IndexPath:  m.IndexPath,
			TargetPath: m.TargetPath,
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	if req.Name == "" || req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name and path are required"})
		return
	}

	if err := s.catalog.Create(req.Name, req.Path); err != nil {
		writeError(w, err)
		return
	}

	meta, err := s.catalog.GetMetadata(req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, indexResponse{
		IndexName:  meta.IndexName,
		IndexPath:  meta.IndexPath,
		TargetPath: meta.TargetPath,
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	meta, err := s.catalog.GetMetadata(r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, indexResponse{
		IndexName:  meta.IndexName,
		IndexPath:  meta.IndexPath,
		TargetPath: meta.TargetPath,
	})
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Remove(r.PathValue("name")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	stats, err := s.catalog.Update(r.Context(), r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updateResponse{
		Scanned:  stats.Scanned,
		Added:    stats.Added,
		Modified: stats.Modified,
		Removed:  stats.Removed,
		Skipped:  stats.Skipped,
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Reset(r.PathValue("name")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	query := r.URL.Query().Get("q")

	start := time.Now()
	results, err := s.catalog.Search(r.Context(), name, query)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Query:      query,
		IndexName:  name,
		Results:    results,
		TotalHits:  len(results),
		DurationMs: float64(time.Since(start).Microseconds()) / 1000.0,
	})
}

// writeError maps an engine error onto its HTTP status.
func writeError(w http.ResponseWriter, err error) {
	status := beetleerrors.KindOf(err).HTTPStatus()
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", slog.String("error", err.Error()))
	}
}

// logRequests logs one line per request.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration", time.Since(start)))
	})
}
