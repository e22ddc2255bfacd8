package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	apperrors "github.com/lepinkainen/bookreel/internal/errors"
	"github.com/lepinkainen/bookreel/internal/media"
	"github.com/lepinkainen/bookreel/internal/recommend"
)

const maxBodySize = 1 << 20

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query string `json:"query"`
	Type  string `json:"type"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []media.Item `json:"results"`
}

// RecommendationsRequest is the body of POST /get_recommendations.
type RecommendationsRequest struct {
	ItemID string `json:"item_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.search(w, r, req)
}

func (s *Server) handleSearchQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		query = q.Get("query")
	}
	s.search(w, r, SearchRequest{Query: query, Type: q.Get("type")})
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, req SearchRequest) {
	typ, err := recommend.ParseType(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := s.svc.Search(r.Context(), req.Query, typ)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

func (s *Server) handleGetRecommendations(w http.ResponseWriter, r *http.Request) {
	var req RecommendationsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.recommend(w, r, req.ItemID)
}

func (s *Server) handleRecommendationsByID(w http.ResponseWriter, r *http.Request) {
	s.recommend(w, r, chi.URLParam(r, "id"))
}

func (s *Server) recommend(w http.ResponseWriter, r *http.Request, id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		writeError(w, http.StatusBadRequest, "item_id is required")
		return
	}

	resp, err := s.svc.GetRecommendations(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.Stats())
}

func (s *Server) handleCacheClear(w http.ResponseWriter, _ *http.Request) {
	removed := s.cache.Clear()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "cache cleared",
		"entries_removed": removed,
	})
}

// writeServiceError maps service errors onto HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case apperrors.IsNotFoundError(err):
		writeError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, recommend.ErrInvalidType):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "request timed out")
	case errors.Is(err, context.Canceled):
		// Client went away; nobody reads the body.
		slog.Debug("Request cancelled", "path", r.URL.Path)
		w.WriteHeader(http.StatusServiceUnavailable)
	default:
		slog.Warn("Request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadGateway, "catalog unavailable")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer func() { _ = r.Body.Close() }()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
