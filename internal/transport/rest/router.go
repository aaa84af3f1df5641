package rest

import (
	"net/http"

	"paperbuilder/internal/config"
	"paperbuilder/internal/confirm"
	"paperbuilder/internal/service"
	"paperbuilder/internal/transport/rest/handler"
	"paperbuilder/internal/transport/rest/middleware"
	"paperbuilder/internal/transport/ws"

	"github.com/gorilla/mux"
	"github.com/swaggo/swag"
	"go.uber.org/zap"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService *service.AuthService
	Editor      *service.Editor
	Gate        *confirm.Gate
	WSHub       *ws.Hub
	CORS        config.CORSConfig
	Logger      *zap.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	paperHandler := handler.NewPaperHandler(c.Editor, c.Gate)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.Editor, c.Logger)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.CORS))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// WebSocket routes (public with token in query param)
	v1.HandleFunc("/ws/paper", wsHandler.PaperWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// API description, registered by the docs package
	r.HandleFunc("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))
	}).Methods("GET")

	// Author routes
	authorRoutes := v1.NewRoute().Subrouter()
	authorRoutes.Use(authMW.RequireAuthor)
	RegisterPaperRoutes(authorRoutes, paperHandler)

	return r
}

// RegisterPaperRoutes mounts the paper endpoints on r. Fixed segments are
// registered before {sectionId} so they are not captured as ids.
func RegisterPaperRoutes(r *mux.Router, h *handler.PaperHandler) {
	r.HandleFunc("/paper", h.Get).Methods("GET", "OPTIONS")
	r.HandleFunc("/paper/export", h.Export).Methods("GET", "OPTIONS")
	r.HandleFunc("/paper/import", h.Import).Methods("POST", "OPTIONS")

	r.HandleFunc("/paper/confirm", h.GetPending).Methods("GET", "OPTIONS")
	r.HandleFunc("/paper/confirm", h.Confirm).Methods("POST", "OPTIONS")
	r.HandleFunc("/paper/confirm", h.Cancel).Methods("DELETE", "OPTIONS")

	r.HandleFunc("/paper/sections", h.AddSection).Methods("POST", "OPTIONS")
	r.HandleFunc("/paper/sections/order", h.ReorderSections).Methods("PUT", "OPTIONS")
	r.HandleFunc("/paper/sections/move", h.MoveSection).Methods("POST", "OPTIONS")
	r.HandleFunc("/paper/sections/{sectionId}", h.EditSection).Methods("PUT", "OPTIONS")
	r.HandleFunc("/paper/sections/{sectionId}", h.DeleteSection).Methods("DELETE", "OPTIONS")
	r.HandleFunc("/paper/sections/{sectionId}/title", h.RenameSection).Methods("PATCH", "OPTIONS")
	r.HandleFunc("/paper/sections/{sectionId}/duplicate", h.DuplicateSection).Methods("POST", "OPTIONS")

	r.HandleFunc("/paper/sections/{sectionId}/groups", h.AddGroup).Methods("POST", "OPTIONS")
	r.HandleFunc("/paper/sections/{sectionId}/groups/{groupId}", h.EditGroup).Methods("PUT", "OPTIONS")
	r.HandleFunc("/paper/sections/{sectionId}/groups/{groupId}", h.DeleteGroup).Methods("DELETE", "OPTIONS")

	r.HandleFunc("/paper/sections/{sectionId}/groups/{groupId}/questions", h.AddQuestion).Methods("POST", "OPTIONS")
	r.HandleFunc("/paper/sections/{sectionId}/groups/{groupId}/questions/{questionId}", h.EditQuestion).Methods("PUT", "OPTIONS")
	r.HandleFunc("/paper/sections/{sectionId}/groups/{groupId}/questions/{questionId}", h.DeleteQuestion).Methods("DELETE", "OPTIONS")
}

func corsMiddleware(cfg config.CORSConfig) mux.MiddlewareFunc {
	allowedOrigins := cfg.AllowedOrigins
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	allowedMethods := cfg.AllowedMethods
	if allowedMethods == "" {
		allowedMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	}
	allowedHeaders := cfg.AllowedHeaders
	if allowedHeaders == "" {
		allowedHeaders = "Content-Type, Authorization"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)
			w.Header().Set("Access-Control-Expose-Headers", handler.AutosaveErrorHeader+", Content-Disposition")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
