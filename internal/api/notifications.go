package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/homeguardian-core/internal/auth"
	"github.com/nerrad567/homeguardian-core/internal/notify"
)

// contactRequest is the request body for PATCH /notifications/{id}.
type contactRequest struct {
	ContactAddress *string `json:"contact_address"`
}

// handleListNotifications returns every notification to admins and the
// caller's own notifications to guests.
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var list []notify.Notification
	if claims.Role == auth.RoleAdmin {
		list = s.ctl.Notifications()
	} else {
		list = s.ctl.NotificationsFor(claims.Actor())
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": list, "count": len(list)})
}

// handleUpdateNotification changes a notification's contact address.
// Guests may only change their own notifications.
func (s *Server) handleUpdateNotification(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	id := chi.URLParam(r, "id")

	n, ok := s.ctl.Notification(id)
	if !ok || (claims.Role != auth.RoleAdmin && n.Recipient != claims.Actor()) {
		writeNotFound(w, "notification not found")
		return
	}

	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.ContactAddress == nil {
		writeBadRequest(w, "contact_address is required")
		return
	}

	address := strings.TrimSpace(*req.ContactAddress)
	if !s.ctl.UpdateNotificationContact(id, address) {
		writeNotFound(w, "notification not found")
		return
	}

	n, _ = s.ctl.Notification(id)
	writeJSON(w, http.StatusOK, n)
}
