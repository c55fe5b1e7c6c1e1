package api

import (
	"net/http"
	"time"
)

// handleWebSocket authenticates the caller and hands the connection to the
// command channel, which then acts as the authenticated user.
//
// Accepted credentials, in order: ?ticket= (from POST /auth/ws-ticket),
// ?token= and an Authorization bearer header.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.wsActor(r)
	if !ok {
		writeUnauthorized(w, "valid ticket or token required")
		return
	}
	if _, known := s.ctl.User(actor); !known {
		writeUnauthorized(w, "unknown user")
		return
	}

	s.channel.ServeWS(w, r, actor)
}

func (s *Server) wsActor(r *http.Request) (string, bool) {
	q := r.URL.Query()
	if ticket := q.Get("ticket"); ticket != "" {
		return s.tickets.consume(ticket, time.Now())
	}

	token := q.Get("token")
	if token == "" {
		token = bearerToken(r)
	}
	if token == "" {
		return "", false
	}
	claims, err := s.authenticateToken(token)
	if err != nil {
		return "", false
	}
	return claims.Actor(), true
}
