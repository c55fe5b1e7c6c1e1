package device

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var fixedTime = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		id      string
		devName string
		wantErr error
	}{
		{"light", KindLight, "D001", "Living Room Light", nil},
		{"lock", KindLock, "D002", "Front Door", nil},
		{"alarm", KindAlarm, "D003", "Home Alarm", nil},
		{"camera", KindCamera, "D004", "Porch Camera", nil},
		{"motion sensor", KindMotionSensor, "D005", "Hall Sensor", nil},
		{"unknown kind", Kind("toaster"), "D006", "Toaster", ErrInvalidKind},
		{"empty id", KindLight, "", "Light", ErrInvalidID},
		{"id with space", KindLight, "D 1", "Light", ErrInvalidID},
		{"blank name", KindLight, "D007", "   ", ErrInvalidName},
		{"long name", KindLight, "D008", strings.Repeat("x", maxNameLength+1), ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(tt.kind, tt.id, tt.devName)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if d.ID() != tt.id {
				t.Errorf("ID() = %q, want %q", d.ID(), tt.id)
			}
			if d.Kind() != tt.kind {
				t.Errorf("Kind() = %q, want %q", d.Kind(), tt.kind)
			}
			if d.Connected() {
				t.Error("Connected() = true for new device, want false")
			}
			if len(d.Log()) != 0 {
				t.Errorf("Log() has %d records for new device, want 0", len(d.Log()))
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"light", KindLight, false},
		{" LOCK ", KindLock, false},
		{"Motion_Sensor", KindMotionSensor, false},
		{"thermostat", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in       string
		wantName string
		wantArg  string
	}{
		{"on", "ON", ""},
		{" Brightness=80 ", "BRIGHTNESS", "80"},
		{"colour=Warm White", "COLOUR", "Warm White"},
		{"owner_passcode=1234,5678", "OWNER_PASSCODE", "1234,5678"},
		{"", "", ""},
	}
	for _, tt := range tests {
		got := ParseCommand(tt.in)
		if got.Name != tt.wantName || got.Arg != tt.wantArg {
			t.Errorf("ParseCommand(%q) = {%q %q}, want {%q %q}", tt.in, got.Name, got.Arg, tt.wantName, tt.wantArg)
		}
	}
}

func TestBaselineCommands(t *testing.T) {
	for _, kind := range AllKinds {
		t.Run(string(kind), func(t *testing.T) {
			d, err := New(kind, "X1", "Test Device", WithClock(fixedClock))
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			before := len(d.Log())
			if !d.HandleCommand("on") {
				t.Fatal("HandleCommand(on) = false, want true")
			}
			if !d.Connected() {
				t.Error("Connected() = false after ON, want true")
			}
			if !d.HandleCommand("OFF") {
				t.Fatal("HandleCommand(OFF) = false, want true")
			}
			if d.Connected() {
				t.Error("Connected() = true after OFF, want false")
			}
			if got := len(d.Log()) - before; got != 2 {
				t.Errorf("ON then OFF appended %d records, want 2", got)
			}
			if !d.HandleCommand("lock") || !d.HandleCommand("unlock") {
				t.Error("baseline LOCK/UNLOCK returned false")
			}
		})
	}
}

func TestUnknownCommand(t *testing.T) {
	for _, kind := range AllKinds {
		t.Run(string(kind), func(t *testing.T) {
			d, _ := New(kind, "X1", "Test Device")
			before := len(d.Log())

			if d.HandleCommand("FLY_AWAY") {
				t.Error("HandleCommand(FLY_AWAY) = true, want false")
			}

			log := d.Log()
			if len(log) != before+1 {
				t.Fatalf("Log() grew by %d, want 1", len(log)-before)
			}
			last := log[len(log)-1]
			if last.Action != ActionUnknownCommand {
				t.Errorf("Action = %q, want %q", last.Action, ActionUnknownCommand)
			}
			if last.Message != "Unknown command: FLY_AWAY" {
				t.Errorf("Message = %q", last.Message)
			}

			events := d.DrainEvents()
			if len(events) != 1 || events[0].Kind != EventRejected {
				t.Errorf("DrainEvents() = %+v, want one rejected event", events)
			}
		})
	}
}

func TestRecordFields(t *testing.T) {
	l := NewLight("D001", "Living Room Light", WithClock(fixedClock))
	l.HandleCommand("ON")
	l.HandleCommand("BRIGHTNESS=80")

	log := l.Log()
	if len(log) != 2 {
		t.Fatalf("Log() len = %d, want 2", len(log))
	}
	if log[0].LogID != "D001-1" || log[1].LogID != "D001-2" {
		t.Errorf("LogIDs = %q, %q, want D001-1, D001-2", log[0].LogID, log[1].LogID)
	}
	for _, rec := range log {
		if rec.Actor != "SYSTEM" {
			t.Errorf("Actor = %q, want SYSTEM", rec.Actor)
		}
		if rec.DeviceID != "D001" || rec.DeviceName != "Living Room Light" {
			t.Errorf("device fields = %q/%q", rec.DeviceID, rec.DeviceName)
		}
		if !rec.Timestamp.Equal(fixedTime) {
			t.Errorf("Timestamp = %v, want %v", rec.Timestamp, fixedTime)
		}
	}
}

func TestEventsMatchRecords(t *testing.T) {
	c := NewCamera("D004", "Porch Camera")
	c.HandleCommand("RECORD")
	c.HandleCommand("ZOOM=20")
	c.HandleCommand("ZOOM=abc")

	events := c.DrainEvents()
	log := c.Log()
	if len(events) != len(log) {
		t.Fatalf("events = %d, records = %d, want equal", len(events), len(log))
	}
	for i := range events {
		if events[i].Record.LogID != log[i].LogID {
			t.Errorf("event %d LogID = %q, want %q", i, events[i].Record.LogID, log[i].LogID)
		}
	}
	if got := c.DrainEvents(); len(got) != 0 {
		t.Errorf("second DrainEvents() = %d events, want 0", len(got))
	}
}

func TestOutboxBounded(t *testing.T) {
	l := NewLight("D001", "Light")
	for i := 0; i < maxPendingEvents+10; i++ {
		l.HandleCommand("ON")
	}
	events := l.DrainEvents()
	if len(events) != maxPendingEvents {
		t.Fatalf("DrainEvents() len = %d, want %d", len(events), maxPendingEvents)
	}
	if events[0].Record.LogID != "D001-11" {
		t.Errorf("oldest kept event = %q, want D001-11", events[0].Record.LogID)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	m := NewMotionSensor("D005", "Hall Sensor")
	m.HandleCommand("LINK_LIGHT=D001")

	snap := m.Snapshot()
	lights := snap.State["linked_lights"].([]string)
	lights[0] = "HACKED"
	snap.State["enabled"] = true

	again := m.Snapshot()
	if got := again.State["linked_lights"].([]string)[0]; got != "D001" {
		t.Errorf("linked_lights[0] = %q after mutating snapshot, want D001", got)
	}
	if again.State["enabled"] != false {
		t.Error("mutating snapshot changed device state")
	}
	if snap.Kind != KindMotionSensor || snap.ID != "D005" {
		t.Errorf("Snapshot() identity = %q/%q", snap.ID, snap.Kind)
	}
}

func TestLogIsCopy(t *testing.T) {
	l := NewLight("D001", "Light")
	l.HandleCommand("ON")
	log := l.Log()
	log[0].Message = "tampered"
	if l.Log()[0].Message == "tampered" {
		t.Error("Log() returned a live reference")
	}
}
