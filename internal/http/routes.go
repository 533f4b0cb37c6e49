// Package httpx wires the marketplace services to their HTTP surface.
package httpx

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/backlot/backlot-api/internal/core"
)

// RouterConfig groups everything Routes needs to build the handler tree.
type RouterConfig struct {
	Jobs         JobAPI
	Pipeline     PipelineAPI
	Discovery    DiscoveryAPI
	Messaging    MessagingAPI
	Identity     core.IdentityProvider
	DB           *sql.DB
	Cache        CacheHealth // Optional
	Logger       *slog.Logger
	PageSizeHint int // default discovery page size; 0 uses the repo default
}

// Routes builds the full HTTP handler: health endpoints plus the
// authenticated /api tree, wrapped in logging and panic recovery.
func Routes(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	if cfg.DB != nil {
		mux.Handle("GET /readyz", readyHandler(cfg.DB, cfg.Cache))
	}

	api := http.NewServeMux()
	registerJobRoutes(api, cfg)
	registerApplicationRoutes(api, cfg)
	registerMessageRoutes(api, cfg)

	authed := RequireAuth(cfg.Identity)(api)
	mux.Handle("/api/", authed)

	var handler http.Handler = mux
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}

func registerJobRoutes(mux *http.ServeMux, cfg RouterConfig) {
	jobs := NewJobHandlers(cfg.Jobs)
	discovery := NewDiscoveryHandlers(cfg.Discovery, cfg.PageSizeHint)

	mux.HandleFunc("POST /api/jobs", jobs.Create)
	mux.HandleFunc("GET /api/jobs/mine", jobs.ListMine)
	// The literal "search" segment outranks the {id} wildcard in the mux.
	mux.HandleFunc("GET /api/jobs/search", discovery.Search)
	mux.HandleFunc("GET /api/jobs/{id}", jobs.Get)
	mux.HandleFunc("PUT /api/jobs/{id}/status", jobs.SetStatus)
	mux.HandleFunc("PUT /api/jobs/{id}/stage", jobs.SetStage)
	mux.HandleFunc("DELETE /api/jobs/{id}", jobs.Delete)
}

func registerApplicationRoutes(mux *http.ServeMux, cfg RouterConfig) {
	apps := NewApplicationHandlers(cfg.Pipeline)

	mux.HandleFunc("POST /api/jobs/{id}/applications", apps.Apply)
	mux.HandleFunc("GET /api/jobs/{id}/applications", apps.ListByJob)
	mux.HandleFunc("GET /api/applications/{id}", apps.Get)
	mux.HandleFunc("PUT /api/applications/{id}/status", apps.ChangeStatus)
	mux.HandleFunc("POST /api/applications/{id}/reject", apps.Reject)
}

func registerMessageRoutes(mux *http.ServeMux, cfg RouterConfig) {
	msgs := NewMessageHandlers(cfg.Messaging)

	mux.HandleFunc("POST /api/applications/{id}/messages", msgs.Send)
	mux.HandleFunc("GET /api/applications/{id}/messages", msgs.Thread)
	mux.HandleFunc("POST /api/applications/{id}/messages/read", msgs.MarkAllRead)
	mux.HandleFunc("GET /api/applications/{id}/messages/unread", msgs.UnreadBadge)
	mux.HandleFunc("POST /api/messages/{id}/read", msgs.MarkRead)
}
