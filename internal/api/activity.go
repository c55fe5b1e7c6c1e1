package api

import (
	"net/http"
	"strconv"

	"github.com/nerrad567/homeguardian-core/internal/activity"
)

// handleActivity returns the controller's in-memory activity log for the
// current process, in append order.
func (s *Server) handleActivity(w http.ResponseWriter, _ *http.Request) {
	records := s.ctl.ActivityLog()
	writeJSON(w, http.StatusOK, map[string]any{"records": records, "count": len(records)})
}

// handleActivityArchive queries archived records across restarts.
//
// Query parameters:
//   - actor: filter by actor (username or SYSTEM)
//   - action: filter by action (ON, GRANT_ACCESS, EMERGENCY, ...)
//   - device_id: filter by device
//   - limit: max results (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleActivityArchive(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeUnavailable(w, "activity archive not configured")
		return
	}

	q := r.URL.Query()
	filter := activity.Filter{
		Actor:    q.Get("actor"),
		Action:   q.Get("action"),
		DeviceID: q.Get("device_id"),
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeBadRequest(w, "limit must be an integer")
			return
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeBadRequest(w, "offset must be an integer")
			return
		}
		filter.Offset = n
	}

	result, err := s.archive.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list archived activity", "error", err)
		writeInternalError(w, "failed to list archived activity")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
