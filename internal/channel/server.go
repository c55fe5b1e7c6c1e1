package channel

import (
	"encoding/json"

	"github.com/nerrad567/homeguardian-core/internal/activity"
	"github.com/nerrad567/homeguardian-core/internal/device"
	"github.com/nerrad567/homeguardian-core/internal/infrastructure/config"
	"github.com/nerrad567/homeguardian-core/internal/infrastructure/logging"
)

// Controller is the part of the device controller the channel drives.
type Controller interface {
	ControlDeviceAs(actor, deviceID, command string) bool
	DevicesFor(actor string) []device.Snapshot
}

// Response is the outcome of one message.
type Response struct {
	// Reply goes to the sender only.
	Reply string

	// SyncID is the device to announce to every client, or empty.
	SyncID string
}

// Server decodes messages, runs them against the controller and fans out
// SYNC notices through its Hub.
type Server struct {
	ctl    Controller
	hub    *Hub
	chCfg  config.ChannelConfig
	wsCfg  config.WebSocketConfig
	logger *logging.Logger
}

// NewServer creates a server. An empty channel actor defaults to SYSTEM.
func NewServer(ctl Controller, chCfg config.ChannelConfig, wsCfg config.WebSocketConfig, logger *logging.Logger) *Server {
	if chCfg.Actor == "" {
		chCfg.Actor = activity.ActorSystem
	}
	logger = logger.With("component", "channel")
	return &Server{
		ctl:    ctl,
		hub:    NewHub(logger),
		chCfg:  chCfg,
		wsCfg:  wsCfg,
		logger: logger,
	}
}

// Hub returns the server's client registry.
func (s *Server) Hub() *Hub { return s.hub }

// Respond handles one message for actor without touching any client.
func (s *Server) Respond(actor, payload string, isText bool) Response {
	if !isText {
		return Response{Reply: ReplyUnsupportedMessage}
	}

	req, err := Parse(payload)
	if err != nil {
		s.logger.Debug("rejected message", "actor", actor, "error", err)
		return Response{Reply: ReplyUnknownCommand}
	}

	if req.Verb == VerbSync {
		return Response{Reply: s.snapshot(actor)}
	}

	ok := s.ctl.ControlDeviceAs(actor, req.DeviceID, req.Command)
	resp := Response{Reply: req.Result(ok)}
	if ok {
		resp.SyncID = req.DeviceID
	}
	return resp
}

// Handle answers one message from c and, on success, announces the device
// to every client. The reply is queued before the announcement.
func (s *Server) Handle(c *Client, payload string, isText bool) {
	resp := s.Respond(c.actor, payload, isText)
	s.hub.Send(c, resp.Reply)
	if resp.SyncID != "" {
		s.Announce(resp.SyncID)
	}
}

// Announce broadcasts SYNC:<deviceID> to every connected client.
func (s *Server) Announce(deviceID string) {
	s.hub.Broadcast(SyncNotice(deviceID))
}

func (s *Server) snapshot(actor string) string {
	data, err := json.Marshal(s.ctl.DevicesFor(actor))
	if err != nil {
		s.logger.Error("failed to marshal snapshot", "error", err)
		return VerbSnapshot + ":[]"
	}
	return VerbSnapshot + ":" + string(data)
}
