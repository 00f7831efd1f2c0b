package api

import (
	"net/http"
	"time"

	"github.com/proposalhub/search-sync/pkg/health"
	"github.com/proposalhub/search-sync/pkg/metrics"
	"github.com/proposalhub/search-sync/pkg/middleware"
)

// NewRouter builds the full HTTP handler with all routes and the middleware
// chain.
//
// Route table:
//
//	POST   /api/v1/records                   → create record
//	GET    /api/v1/records/{id}              → get record
//	PUT    /api/v1/records/{id}              → update record (partial body)
//	DELETE /api/v1/records/{id}              → delete record
//	POST   /api/v1/records/{id}/publish      → set publication timestamp
//	POST   /api/v1/records/{id}/unpublish    → clear publication timestamp
//	GET    /api/v1/documents/{documentId}    → get record by search key
//	GET    /api/v1/search                    → advanced search passthrough
//	POST   /api/v1/index/refresh             → clear then rebuild
//	POST   /api/v1/index/rebuild             → rebuild without clearing
//	POST   /api/v1/index/clear               → clear and wait for empty
//	POST   /api/v1/index/configure           → apply engine settings
//	GET    /api/v1/index/stats               → engine stats and settings
//	GET    /api/v1/cache/stats               → query cache hit/miss counters
//	POST   /api/v1/cache/invalidate          → drop all cached search results
//	GET    /health/live, /health/ready       → probes
//
// Middleware chain (outermost first): RequestID → Metrics → Timeout.
func NewRouter(h *Handler, checker *health.Checker, m *metrics.Metrics, writeTimeout time.Duration) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/records", h.CreateRecord)
	mux.HandleFunc("GET /api/v1/records/{id}", h.GetRecord)
	mux.HandleFunc("PUT /api/v1/records/{id}", h.UpdateRecord)
	mux.HandleFunc("DELETE /api/v1/records/{id}", h.DeleteRecord)
	mux.HandleFunc("POST /api/v1/records/{id}/publish", h.PublishRecord)
	mux.HandleFunc("POST /api/v1/records/{id}/unpublish", h.UnpublishRecord)
	mux.HandleFunc("GET /api/v1/documents/{documentId}", h.GetRecordByDocumentID)

	mux.HandleFunc("GET /api/v1/search", h.Search)

	mux.HandleFunc("POST /api/v1/index/refresh", h.IndexRefresh)
	mux.HandleFunc("POST /api/v1/index/rebuild", h.IndexRebuild)
	mux.HandleFunc("POST /api/v1/index/clear", h.IndexClear)
	mux.HandleFunc("POST /api/v1/index/configure", h.IndexConfigure)
	mux.HandleFunc("GET /api/v1/index/stats", h.IndexStats)

	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)

	if checker != nil {
		mux.HandleFunc("GET /health/live", checker.LiveHandler())
		mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	}

	var chain http.Handler = mux
	chain = middleware.Timeout(writeTimeout)(chain)
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.RequestID(chain)
	return chain
}
