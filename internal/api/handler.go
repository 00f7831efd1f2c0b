// Package api exposes the content and management HTTP surface: record CRUD
// with publish/unpublish, advanced search, bulk index maintenance, and cache
// administration.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/proposalhub/search-sync/internal/index"
	"github.com/proposalhub/search-sync/internal/record"
	"github.com/proposalhub/search-sync/internal/search"
	"github.com/proposalhub/search-sync/internal/store"
	apperrors "github.com/proposalhub/search-sync/pkg/errors"
	"github.com/proposalhub/search-sync/pkg/logger"
)

// Handler serves all API routes.
type Handler struct {
	store   *store.Store
	manager *index.Manager
	search  *search.Service
	cache   *search.QueryCache
	logger  *slog.Logger
}

// New creates a Handler. search and cache are optional; the corresponding
// routes respond 503 when absent.
func New(s *store.Store, manager *index.Manager, svc *search.Service, cache *search.QueryCache) *Handler {
	return &Handler{
		store:   s,
		manager: manager,
		search:  svc,
		cache:   cache,
		logger:  slog.Default().With("component", "api-handler"),
	}
}

// CreateRecord handles POST /api/v1/records.
func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.decodeDraft(w, r)
	if !ok {
		return
	}
	rec, err := h.store.Create(r.Context(), draft)
	if err != nil {
		h.writeAppError(w, r, "create record", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, rec)
}

// GetRecord handles GET /api/v1/records/{id}.
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	rec, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.writeAppError(w, r, "get record", err)
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

// GetRecordByDocumentID handles GET /api/v1/documents/{documentId}.
func (h *Handler) GetRecordByDocumentID(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("documentId")
	if documentID == "" {
		h.writeError(w, http.StatusBadRequest, "documentId is required")
		return
	}
	rec, err := h.store.GetByDocumentID(r.Context(), documentID)
	if err != nil {
		h.writeAppError(w, r, "get record by document id", err)
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

// UpdateRecord handles PUT /api/v1/records/{id}. The body is a partial
// document; absent fields are left untouched.
func (h *Handler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	draft, ok := h.decodeDraft(w, r)
	if !ok {
		return
	}
	rec, err := h.store.Update(r.Context(), id, draft)
	if err != nil {
		h.writeAppError(w, r, "update record", err)
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

// DeleteRecord handles DELETE /api/v1/records/{id}.
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		h.writeAppError(w, r, "delete record", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PublishRecord handles POST /api/v1/records/{id}/publish. The write sets
// only the publication timestamp, so the stored record is indexed verbatim.
func (h *Handler) PublishRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<16))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	at, err := parsePublishBody(body)
	if err != nil {
		h.writeAppError(w, r, "publish record", err)
		return
	}
	draft := &record.Draft{PublishedAt: record.SetTo(&at)}
	rec, err := h.store.Update(r.Context(), id, draft)
	if err != nil {
		h.writeAppError(w, r, "publish record", err)
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

// UnpublishRecord handles POST /api/v1/records/{id}/unpublish.
func (h *Handler) UnpublishRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	draft := &record.Draft{PublishedAt: record.SetTo(nil)}
	rec, err := h.store.Update(r.Context(), id, draft)
	if err != nil {
		h.writeAppError(w, r, "unpublish record", err)
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

// Search handles GET /api/v1/search. Facet filters arrive as filter.<name>
// query parameters, e.g. filter.industry=Healthcare.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if h.search == nil {
		h.writeError(w, http.StatusServiceUnavailable, "search is not configured")
		return
	}
	start := time.Now()
	log := logger.FromContext(r.Context())

	params, err := parseSearchParams(r)
	if err != nil {
		h.writeAppError(w, r, "search", err)
		return
	}

	resp, err := h.search.Search(r.Context(), params)
	if err != nil {
		log.Error("search failed", "query", params.Query, "error", err)
		h.writeError(w, http.StatusBadGateway, "search failed")
		return
	}

	log.Info("search completed",
		"query", params.Query,
		"total_hits", resp.EstimatedTotalHits,
		"cached", resp.Cached,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, resp)
}

// IndexRefresh handles POST /api/v1/index/refresh: clear then rebuild. The
// response always carries 200 with the outcome in the body.
func (h *Handler) IndexRefresh(w http.ResponseWriter, r *http.Request) {
	result := h.manager.Refresh(r.Context())
	h.writeJSON(w, http.StatusOK, result)
}

// IndexRebuild handles POST /api/v1/index/rebuild.
func (h *Handler) IndexRebuild(w http.ResponseWriter, r *http.Request) {
	result, err := h.manager.Rebuild(r.Context())
	if err != nil {
		h.writeAppError(w, r, "index rebuild", err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// IndexClear handles POST /api/v1/index/clear.
func (h *Handler) IndexClear(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Clear(r.Context()); err != nil {
		h.writeAppError(w, r, "index clear", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// IndexConfigure handles POST /api/v1/index/configure.
func (h *Handler) IndexConfigure(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Configure(r.Context()); err != nil {
		h.writeAppError(w, r, "index configure", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "configured"})
}

// IndexStats handles GET /api/v1/index/stats.
func (h *Handler) IndexStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.manager.Stats(r.Context())
	if err != nil {
		h.writeAppError(w, r, "index stats", err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": strconv.FormatFloat(hitRate, 'f', 1, 64) + "%",
	})
}

// CacheInvalidate handles POST /api/v1/cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

// decodeDraft parses and validates the request body, writing the error
// response itself on failure.
func (h *Handler) decodeDraft(w http.ResponseWriter, r *http.Request) (*record.Draft, bool) {
	var req draftRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	draft, err := req.toDraft()
	if err != nil {
		h.writeAppError(w, r, "decode draft", err)
		return nil, false
	}
	if err := validateEnums(draft); err != nil {
		h.writeAppError(w, r, "validate draft", err)
		return nil, false
	}
	return draft, true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		h.writeError(w, http.StatusBadRequest, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

// parseSearchParams reads the advanced-search query string. filter.<name>
// parameters become exact-match facet filters.
func parseSearchParams(r *http.Request) (search.Params, error) {
	q := r.URL.Query()
	params := search.Params{Query: q.Get("q")}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.ParseInt(v, 10, 64)
		if err != nil || limit < 1 {
			return params, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest,
				"limit must be a positive integer")
		}
		params.Limit = limit
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.ParseInt(v, 10, 64)
		if err != nil || offset < 0 {
			return params, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest,
				"offset must be a non-negative integer")
		}
		params.Offset = offset
	}
	if v := q.Get("cropLength"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 {
			return params, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest,
				"cropLength must be a positive integer")
		}
		params.CropLength = n
	}

	for key, values := range q {
		if !strings.HasPrefix(key, "filter.") || len(values) == 0 {
			continue
		}
		name := strings.TrimPrefix(key, "filter.")
		if name == "" {
			continue
		}
		if params.Filters == nil {
			params.Filters = make(map[string]string)
		}
		params.Filters[name] = values[0]
	}

	if v := q.Get("facets"); v != "" {
		params.Facets = strings.Split(v, ",")
	}
	if v := q.Get("highlight"); v != "" {
		params.Highlight = strings.Split(v, ",")
	}
	if v := q.Get("crop"); v != "" {
		params.Crop = strings.Split(v, ",")
	}
	if v := q.Get("sort"); v != "" {
		params.Sort = strings.Split(v, ",")
	}
	return params, nil
}

func (h *Handler) writeAppError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := apperrors.HTTPStatusCode(err)
	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error(op+" failed", "error", err)
	} else {
		log.Warn(op+" rejected", "status", status, "error", err)
	}

	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	} else if errors.Is(err, apperrors.ErrRecordNotFound) {
		message = "record not found"
	}
	h.writeError(w, status, message)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
