package rest

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"callmood/internal/metrics"
	"callmood/internal/service"
	"callmood/internal/transport/rest/handler"
	"callmood/internal/transport/rest/middleware"
	"callmood/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService     *service.AuthService
	CallService     *service.CallService
	AnalysisService *service.AnalysisService
	WSHub           *ws.Hub
	Metrics         *metrics.Metrics
	Logger          *logrus.Logger
	AllowedOrigins  []string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	webhookHandler := handler.NewWebhookHandler(c.CallService, c.Logger)
	callHandler := handler.NewCallHandler(c.CallService, c.AnalysisService, c.Logger)
	wsHandler := ws.NewHandler(c.WSHub, c.AllowedOrigins, c.Logger)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.AllowedOrigins))
	r.Use(middleware.RequestLogger(c.Logger, c.Metrics))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")
	r.Handle("/metrics", c.Metrics.Handler()).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST", "OPTIONS")
	v1.HandleFunc("/webhooks/retell", webhookHandler.Retell).Methods("POST", "OPTIONS")

	// Dashboard routes (require auth)
	authed := v1.NewRoute().Subrouter()
	authed.Use(authMW.RequireAuth)

	authed.HandleFunc("/auth/verify", authHandler.Verify).Methods("GET", "OPTIONS")
	authed.HandleFunc("/calls", callHandler.List).Methods("GET", "OPTIONS")
	authed.HandleFunc("/calls/refresh", callHandler.Refresh).Methods("POST", "OPTIONS")
	authed.HandleFunc("/calls/{callId}/analyze", callHandler.Analyze).Methods("POST", "OPTIONS")
	authed.HandleFunc("/calls/{callId}/analysis", callHandler.Analysis).Methods("GET", "OPTIONS")
	authed.HandleFunc("/calls/{callId}/dashboard", callHandler.Dashboard).Methods("GET", "OPTIONS")
	authed.HandleFunc("/analyze", callHandler.Upload).Methods("POST", "OPTIONS")

	// WebSocket route (token in query param)
	authed.HandleFunc("/ws/calls", wsHandler.CallsWS).Methods("GET")

	return r
}

func corsMiddleware(allowedOrigins []string) mux.MiddlewareFunc {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case allowAll:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin != "" && allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", strings.Join([]string{"Content-Type", "Authorization"}, ", "))

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
