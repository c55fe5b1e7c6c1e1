package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// commandRequest is the request body for POST /devices/{id}/commands.
type commandRequest struct {
	Command string `json:"command"`
}

// handleListDevices returns the devices the caller may see, in
// registration order.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	devices := s.ctl.DevicesFor(claims.Actor())
	writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
}

// handleGetDevice returns one device. Devices outside the caller's access
// are reported as not found.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.visible(r, id) {
		writeNotFound(w, "device not found")
		return
	}
	snap, _ := s.ctl.Device(id)
	writeJSON(w, http.StatusOK, snap)
}

// handleDeviceLog returns a device's own records.
func (s *Server) handleDeviceLog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.visible(r, id) {
		writeNotFound(w, "device not found")
		return
	}
	records, _ := s.ctl.DeviceLog(id)
	writeJSON(w, http.StatusOK, map[string]any{"device_id": id, "records": records, "count": len(records)})
}

// handleDeviceCommand runs a command as the caller. The controller records
// every attempt, including refused ones. A successful command is announced
// to the command channel.
func (s *Server) handleDeviceCommand(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	req.Command = strings.TrimSpace(req.Command)
	if req.Command == "" {
		writeBadRequest(w, "command is required")
		return
	}

	actor := claimsFrom(r.Context()).Actor()
	visible := s.visible(r, id)

	ok := s.ctl.ControlDeviceAs(actor, id, req.Command)
	if !visible {
		writeNotFound(w, "device not found")
		return
	}
	if ok {
		s.channel.Announce(id)
	}

	snap, _ := s.ctl.Device(id)
	writeJSON(w, http.StatusOK, map[string]any{
		"device_id": id,
		"command":   req.Command,
		"ok":        ok,
		"device":    snap,
	})
}

// visible reports whether the device exists and the caller may reach it.
func (s *Server) visible(r *http.Request, id string) bool {
	if _, ok := s.ctl.Device(id); !ok {
		return false
	}
	return s.ctl.CanControl(claimsFrom(r.Context()).Actor(), id)
}
