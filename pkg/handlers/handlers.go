package handlers

import (
	"context"
	"log/slog"
	"net/http"

	adminsvc "github.com/chris/fairtask-ledger/pkg/admin"
	"github.com/chris/fairtask-ledger/pkg/api"
	"github.com/chris/fairtask-ledger/pkg/engine"
	"github.com/chris/fairtask-ledger/pkg/handlers/admin"
	"github.com/chris/fairtask-ledger/pkg/handlers/ledger"
	"github.com/chris/fairtask-ledger/pkg/handlers/respond"
	"github.com/chris/fairtask-ledger/pkg/handlers/users"
	"github.com/chris/fairtask-ledger/pkg/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ApiHandler implements the server interface by composing the user, ledger
// and admin handlers.
type ApiHandler struct {
	*users.UsersHandler
	*ledger.LedgerHandler
	*admin.AdminHandler
}

// NewApiHandler creates a new ApiHandler.
func NewApiHandler(eng *engine.Engine, ops *adminsvc.Service) *ApiHandler {
	return &ApiHandler{
		UsersHandler:  users.NewUsersHandler(eng),
		LedgerHandler: ledger.NewLedgerHandler(eng),
		AdminHandler:  admin.NewAdminHandler(ops),
	}
}

// Make sure we conform to the interface
var _ api.ServerInterface = (*ApiHandler)(nil)

// RouterConfig holds what NewRouter needs besides the handler.
type RouterConfig struct {
	Engine      *engine.Engine
	Admin       *adminsvc.Service
	Hub         http.Handler
	Logger      *slog.Logger
	CORSOrigins []string
}

// NewRouter builds the HTTP server: the API routes, the wallet-update
// websocket and the Prometheus endpoint. User routes are refused while
// maintenance mode is on.
func NewRouter(cfg RouterConfig) http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.NewStructuredLogger(cfg.Logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", api.AdminHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Handle("/metrics", promhttp.Handler())
	if cfg.Hub != nil {
		router.Handle("/ws", cfg.Hub)
	}

	maintenance := middleware.Maintenance(func(ctx context.Context) (bool, error) {
		settings, err := cfg.Engine.Settings(ctx)
		return settings.MaintenanceMode, err
	}, cfg.Logger)

	api.HandlerWithOptions(NewApiHandler(cfg.Engine, cfg.Admin), api.ChiServerOptions{
		BaseRouter:      router,
		UserMiddlewares: []api.MiddlewareFunc{maintenance},
		ErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
			respond.BadRequest(w, err)
		},
	})
	return router
}
