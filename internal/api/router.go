package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/homeguardian-core/internal/auth"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Public
		r.Get("/health", s.handleHealth)
		r.Post("/auth/login", s.handleLogin)
		r.Get("/metrics", s.handleMetrics)

		// WebSocket command channel (auth via ticket or token, validated in handler)
		r.Get("/ws", s.handleWebSocket)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/auth/me", s.handleMe)
			r.Post("/auth/ws-ticket", s.handleWSTicket)

			r.Route("/devices", func(r chi.Router) {
				r.Get("/", s.handleListDevices)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetDevice)
					r.Get("/log", s.handleDeviceLog)
					r.Post("/commands", s.handleDeviceCommand)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", s.handleListNotifications)
				r.Patch("/{id}", s.handleUpdateNotification)
			})

			r.Group(func(r chi.Router) {
				r.Use(s.requirePermission(auth.PermActivityRead))
				r.Get("/activity", s.handleActivity)
				r.Get("/activity/archive", s.handleActivityArchive)
			})

			r.Route("/users", func(r chi.Router) {
				r.With(s.requirePermission(auth.PermUserManage)).Get("/", s.handleListUsers)

				r.Group(func(r chi.Router) {
					r.Use(s.requirePermission(auth.PermAccessManage))
					r.Put("/{username}/devices/{id}", s.handleGrantAccess)
					r.Delete("/{username}/devices/{id}", s.handleRevokeAccess)
				})
			})
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"version":        s.version,
		"uptime_seconds": int64(time.Since(s.startTime).Seconds()),
		"devices":        s.ctl.DeviceCount(),
		"clients":        s.channel.Hub().ClientCount(),
	})
}

// handleMetrics serves Prometheus metrics when a collector is configured.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.metrics == nil {
		writeNotFound(w, "metrics not enabled")
		return
	}
	s.metrics.Handler().ServeHTTP(w, r)
}
