package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleListUsers returns every registered user. Password hashes are never
// serialised.
func (s *Server) handleListUsers(w http.ResponseWriter, _ *http.Request) {
	users := s.ctl.Users()
	writeJSON(w, http.StatusOK, map[string]any{"users": users, "count": len(users)})
}

// handleGrantAccess gives a guest access to a device.
func (s *Server) handleGrantAccess(w http.ResponseWriter, r *http.Request) {
	s.changeAccess(w, r, true)
}

// handleRevokeAccess removes a guest's access to a device.
func (s *Server) handleRevokeAccess(w http.ResponseWriter, r *http.Request) {
	s.changeAccess(w, r, false)
}

func (s *Server) changeAccess(w http.ResponseWriter, r *http.Request, grant bool) {
	admin := claimsFrom(r.Context()).Actor()
	guest := chi.URLParam(r, "username")
	deviceID := chi.URLParam(r, "id")

	var ok bool
	if grant {
		ok = s.ctl.GrantAccess(admin, guest, deviceID)
	} else {
		ok = s.ctl.RevokeAccess(admin, guest, deviceID)
	}
	if !ok {
		// The controller's activity log carries the reason.
		writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, "access change refused")
		return
	}

	u, _ := s.ctl.User(guest)
	s.channel.Announce(deviceID)
	writeJSON(w, http.StatusOK, u)
}
