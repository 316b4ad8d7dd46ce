package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/faraz-lgtm/lsat-booking-platform/internal/http/handlers"
	httpmiddleware "github.com/faraz-lgtm/lsat-booking-platform/internal/http/middleware"
	"github.com/faraz-lgtm/lsat-booking-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	CartHandler        *handlers.CartHandler
	CheckoutHandler    *handlers.CheckoutHandler
	OrdersHandler      *handlers.OrdersHandler
	RescheduleHandler  *handlers.RescheduleHandler
	AdminOrdersHandler *handlers.AdminOrdersHandler
	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Rate limiting for the public token-authenticated endpoints.
	PublicRateLimit float64
	PublicBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (health, metrics, token-authenticated reschedule)
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.RescheduleHandler != nil {
			public.Route("/public/reschedule", func(r chi.Router) {
				if cfg.PublicRateLimit > 0 {
					r.Use(httpmiddleware.RateLimit(cfg.PublicRateLimit, cfg.PublicBurst))
				}
				r.Get("/info", cfg.RescheduleHandler.GetInfo)
				r.Post("/confirm", cfg.RescheduleHandler.Confirm)
				r.Post("/confirm-all", cfg.RescheduleHandler.ConfirmAll)
			})
		}
	})

	// Tenant-scoped endpoints (X-Org-Id resolves the org)
	r.Group(func(tenant chi.Router) {
		tenant.Use(httpmiddleware.OrgContext)
		if cfg.CartHandler != nil {
			tenant.Get("/cart", cfg.CartHandler.GetCart)
			tenant.Put("/cart", cfg.CartHandler.PutCart)
			tenant.Delete("/cart", cfg.CartHandler.DeleteCart)
		}
		if cfg.CheckoutHandler != nil {
			tenant.Route("/checkout", func(r chi.Router) {
				r.Get("/", cfg.CheckoutHandler.GetState)
				r.Post("/advance", cfg.CheckoutHandler.Advance)
				r.Post("/back", cfg.CheckoutHandler.Back)
				r.Delete("/", cfg.CheckoutHandler.Abandon)
			})
		}
		if cfg.OrdersHandler != nil {
			tenant.Post("/orders", cfg.OrdersHandler.CreateOrder)
		}
	})

	// Admin routes (protected by HMAC JWT)
	if cfg.AdminAuthSecret != "" && cfg.AdminOrdersHandler != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/orders", cfg.AdminOrdersHandler.ListOrders)
			admin.Get("/orders/{orderID}", cfg.AdminOrdersHandler.GetOrder)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
