package channel

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/homeguardian-core/internal/auth"
	"github.com/nerrad567/homeguardian-core/internal/controller"
	"github.com/nerrad567/homeguardian-core/internal/device"
	"github.com/nerrad567/homeguardian-core/internal/infrastructure/config"
	"github.com/nerrad567/homeguardian-core/internal/infrastructure/logging"
)

func newHome(t *testing.T) *controller.Controller {
	t.Helper()
	ctrl := controller.New(controller.Deps{})
	for _, d := range []device.Device{
		device.NewLight("D001", "Living Room Light"),
		device.NewLock("D002", "Front Door Lock"),
	} {
		if !ctrl.RegisterDevice(d) {
			t.Fatalf("RegisterDevice(%s) = false", d.ID())
		}
	}
	guest := &auth.User{Username: "guest1", Name: "Gary Guest", Role: auth.RoleGuest, AccessibleDevices: []string{"D001"}}
	if !ctrl.RegisterUser(guest) {
		t.Fatal("RegisterUser(guest1) = false")
	}
	return ctrl
}

func newTestServer(ctl Controller, actor string) *Server {
	return NewServer(ctl,
		config.ChannelConfig{Actor: actor, SendBuffer: 16},
		config.WebSocketConfig{PingInterval: 30, PongTimeout: 10},
		logging.Discard())
}

func TestServer_Respond(t *testing.T) {
	s := newTestServer(newHome(t), "")

	tests := []struct {
		name     string
		actor    string
		payload  string
		isText   bool
		reply    string
		syncID   string
		snapshot bool
	}{
		{name: "turn on", actor: "SYSTEM", payload: "TURN_ON:D001", isText: true, reply: "TURN_ON:D001:true", syncID: "D001"},
		{name: "turn off lower case", actor: "SYSTEM", payload: "turn_off:D001", isText: true, reply: "TURN_OFF:D001:true", syncID: "D001"},
		{name: "unknown device", actor: "SYSTEM", payload: "TURN_ON:D999", isText: true, reply: "TURN_ON:D999:false"},
		{name: "cmd", actor: "SYSTEM", payload: "CMD:D001:BRIGHTNESS=80", isText: true, reply: "CMD:D001:BRIGHTNESS=80:true", syncID: "D001"},
		{name: "cmd rejected", actor: "SYSTEM", payload: "CMD:D001:BRIGHTNESS=101", isText: true, reply: "CMD:D001:BRIGHTNESS=101:false"},
		{name: "guest refused", actor: "guest1", payload: "TURN_ON:D002", isText: true, reply: "TURN_ON:D002:false"},
		{name: "guest permitted", actor: "guest1", payload: "TURN_ON:D001", isText: true, reply: "TURN_ON:D001:true", syncID: "D001"},
		{name: "unknown verb", actor: "SYSTEM", payload: "REBOOT", isText: true, reply: ReplyUnknownCommand},
		{name: "binary", actor: "SYSTEM", payload: "TURN_ON:D001", isText: false, reply: ReplyUnsupportedMessage},
		{name: "sync", actor: "SYSTEM", payload: "SYNC", isText: true, snapshot: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Respond(tt.actor, tt.payload, tt.isText)
			if tt.snapshot {
				if !strings.HasPrefix(got.Reply, "SNAPSHOT:") {
					t.Fatalf("Reply = %q, want SNAPSHOT prefix", got.Reply)
				}
			} else if got.Reply != tt.reply {
				t.Errorf("Reply = %q, want %q", got.Reply, tt.reply)
			}
			if got.SyncID != tt.syncID {
				t.Errorf("SyncID = %q, want %q", got.SyncID, tt.syncID)
			}
		})
	}
}

func TestServer_SnapshotIsScopedToActor(t *testing.T) {
	s := newTestServer(newHome(t), "")

	decode := func(reply string) []device.Snapshot {
		t.Helper()
		var snaps []device.Snapshot
		if err := json.Unmarshal([]byte(strings.TrimPrefix(reply, "SNAPSHOT:")), &snaps); err != nil {
			t.Fatalf("snapshot is not JSON: %v", err)
		}
		return snaps
	}

	if got := decode(s.Respond("SYSTEM", "SYNC", true).Reply); len(got) != 2 {
		t.Errorf("SYSTEM snapshot has %d devices, want 2", len(got))
	}
	got := decode(s.Respond("guest1", "SYNC", true).Reply)
	if len(got) != 1 || got[0].ID != "D001" {
		t.Errorf("guest1 snapshot = %+v, want only D001", got)
	}
	if got := decode(s.Respond("stranger", "SYNC", true).Reply); len(got) != 0 {
		t.Errorf("stranger snapshot has %d devices, want 0", len(got))
	}
}

func TestServer_HandleRepliesBeforeSync(t *testing.T) {
	s := newTestServer(newHome(t), "")
	sender := NewClient("SYSTEM", "sender", 8, nil)
	other := NewClient("SYSTEM", "other", 8, nil)
	s.Hub().Register(sender)
	s.Hub().Register(other)

	s.Handle(sender, "TURN_ON:D001", true)

	if got := <-sender.send; got != "TURN_ON:D001:true" {
		t.Errorf("sender first message = %q, want reply", got)
	}
	if got := <-sender.send; got != "SYNC:D001" {
		t.Errorf("sender second message = %q, want SYNC:D001", got)
	}
	if got := <-other.send; got != "SYNC:D001" {
		t.Errorf("other message = %q, want SYNC:D001", got)
	}
}

func TestServer_FailureIsNotBroadcast(t *testing.T) {
	s := newTestServer(newHome(t), "")
	sender := NewClient("SYSTEM", "sender", 8, nil)
	other := NewClient("SYSTEM", "other", 8, nil)
	s.Hub().Register(sender)
	s.Hub().Register(other)

	s.Handle(sender, "TURN_ON:D999", true)
	s.Handle(sender, "garbage", true)

	if got := <-sender.send; got != "TURN_ON:D999:false" {
		t.Errorf("first reply = %q", got)
	}
	if got := <-sender.send; got != ReplyUnknownCommand {
		t.Errorf("second reply = %q", got)
	}
	if n := len(other.send); n != 0 {
		t.Errorf("other client received %d messages, want 0", n)
	}
}

func TestServer_SlowClientDoesNotFailCommand(t *testing.T) {
	ctrl := newHome(t)
	s := newTestServer(ctrl, "")
	sender := NewClient("SYSTEM", "sender", 8, nil)
	stuck := NewClient("SYSTEM", "stuck", 1, nil)
	stuck.send <- "filler"
	s.Hub().Register(sender)
	s.Hub().Register(stuck)

	s.Handle(sender, "TURN_ON:D001", true)

	if got := <-sender.send; got != "TURN_ON:D001:true" {
		t.Errorf("reply = %q", got)
	}
	snap, _ := ctrl.Device("D001")
	if !snap.Connected {
		t.Errorf("D001 Connected = false, want true")
	}
}

// readLine reads one reply with a deadline.
func readLine(t *testing.T, conn net.Conn, r *bufio.Reader) string {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck // test deadline
	line, err := r.ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return strings.TrimSuffix(line, "\n")
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount() = %d, want %d", h.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServer_TCP(t *testing.T) {
	ctrl := newHome(t)
	s := newTestServer(ctrl, "")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- s.Serve(ctx, ln) }()

	a, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial a: %v", err)
	}
	defer a.Close()
	b, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial b: %v", err)
	}
	defer b.Close()
	waitForClients(t, s.Hub(), 2)

	ra, rb := bufio.NewReader(a), bufio.NewReader(b)
	before := len(ctrl.ActivityLog())

	if _, err := a.Write([]byte("TURN_ON:D001\r\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := readLine(t, a, ra); got != "TURN_ON:D001:true" {
		t.Errorf("reply = %q, want TURN_ON:D001:true", got)
	}
	if got := readLine(t, a, ra); got != "SYNC:D001" {
		t.Errorf("sender notice = %q, want SYNC:D001", got)
	}
	if got := readLine(t, b, rb); got != "SYNC:D001" {
		t.Errorf("other notice = %q, want SYNC:D001", got)
	}
	if got := len(ctrl.ActivityLog()) - before; got != 1 {
		t.Errorf("ActivityLog grew by %d, want 1", got)
	}

	if _, err := a.Write([]byte("TURN_ON:D999\nTURN_ON\x00\nSYNC\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := readLine(t, a, ra); got != "TURN_ON:D999:false" {
		t.Errorf("reply = %q, want TURN_ON:D999:false", got)
	}
	if got := readLine(t, a, ra); got != ReplyUnsupportedMessage {
		t.Errorf("reply = %q, want %q", got, ReplyUnsupportedMessage)
	}
	if got := readLine(t, a, ra); !strings.HasPrefix(got, "SNAPSHOT:[") {
		t.Errorf("reply = %q, want SNAPSHOT", got)
	}

	cancel()
	select {
	case err := <-served:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}

func TestServer_TCPLineTooLong(t *testing.T) {
	tests := []struct {
		name    string
		maxLine int
		length  int
	}{
		{name: "configured limit below read buffer", maxLine: 32, length: 100},
		{name: "default limit", maxLine: 0, length: 5000},
		{name: "line fills several reads", maxLine: 16, length: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(newHome(t), config.ChannelConfig{MaxLineLength: tt.maxLine, SendBuffer: 16}, config.WebSocketConfig{}, logging.Discard())

			ln, err := net.Listen("tcp", "127.0.0.1:0")
			if err != nil {
				t.Fatalf("listen: %v", err)
			}
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go s.Serve(ctx, ln) //nolint:errcheck // stopped by cancel

			conn, err := net.Dial("tcp", ln.Addr().String())
			if err != nil {
				t.Fatalf("dial: %v", err)
			}
			defer conn.Close()
			waitForClients(t, s.Hub(), 1)
			r := bufio.NewReader(conn)

			if _, err := conn.Write([]byte(strings.Repeat("X", tt.length) + "\nSYNC\n")); err != nil {
				t.Fatalf("write: %v", err)
			}
			if got := readLine(t, conn, r); got != ReplyUnknownCommand {
				t.Errorf("reply = %q, want %q", got, ReplyUnknownCommand)
			}
			if got := readLine(t, conn, r); !strings.HasPrefix(got, "SNAPSHOT:[") {
				t.Errorf("reply = %q, want SNAPSHOT after over-long line", got)
			}
			if got := s.Hub().ClientCount(); got != 1 {
				t.Errorf("ClientCount() = %d, want 1", got)
			}
		})
	}
}

func TestServer_TCPLineAtLimit(t *testing.T) {
	s := NewServer(newHome(t), config.ChannelConfig{MaxLineLength: 12, SendBuffer: 16}, config.WebSocketConfig{}, logging.Discard())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Serve(ctx, ln) //nolint:errcheck // stopped by cancel

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	r := bufio.NewReader(conn)

	if _, err := conn.Write([]byte("TURN_ON:D001\r\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := readLine(t, conn, r); got != "TURN_ON:D001:true" {
		t.Errorf("reply = %q, want TURN_ON:D001:true", got)
	}
}

func TestServer_ServeStopsAfterCancel(t *testing.T) {
	s := newTestServer(newHome(t), "")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- s.Serve(ctx, ln) }()

	var conns []net.Conn
	for i := 0; i < 5; i++ {
		conn, err := net.Dial("tcp", ln.Addr().String())
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		conns = append(conns, conn)
	}
	defer func() {
		for _, c := range conns {
			c.Close()
		}
	}()

	cancel()
	select {
	case err := <-served:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}

func TestServer_WebSocket(t *testing.T) {
	ctrl := newHome(t)
	s := newTestServer(ctrl, "")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.ServeWS(w, r, r.URL.Query().Get("as"))
	}))
	defer srv.Close()

	dial := func(actor string) *websocket.Conn {
		t.Helper()
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?as=" + actor
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		return conn
	}
	read := func(conn *websocket.Conn) string {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck // test deadline
		typ, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if typ != websocket.TextMessage {
			t.Fatalf("message type = %d, want text", typ)
		}
		return string(data)
	}

	guest := dial("guest1")
	defer guest.Close()
	admin := dial("SYSTEM")
	defer admin.Close()
	waitForClients(t, s.Hub(), 2)

	if err := guest.WriteMessage(websocket.TextMessage, []byte("TURN_ON:D002")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := read(guest); got != "TURN_ON:D002:false" {
		t.Errorf("guest reply = %q, want refusal", got)
	}

	if err := guest.WriteMessage(websocket.BinaryMessage, []byte("TURN_ON:D001")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := read(guest); got != ReplyUnsupportedMessage {
		t.Errorf("binary reply = %q, want %q", got, ReplyUnsupportedMessage)
	}

	if err := guest.WriteMessage(websocket.TextMessage, []byte("TURN_ON:D001")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := read(guest); got != "TURN_ON:D001:true" {
		t.Errorf("guest reply = %q, want TURN_ON:D001:true", got)
	}
	if got := read(guest); got != "SYNC:D001" {
		t.Errorf("guest notice = %q, want SYNC:D001", got)
	}
	if got := read(admin); got != "SYNC:D001" {
		t.Errorf("admin notice = %q, want SYNC:D001", got)
	}
}
