package device

import "testing"

func TestAlarmArming(t *testing.T) {
	a := NewAlarm("D003", "Home Alarm")
	a.HandleCommand("POWER_OFF")
	if a.Enabled() || a.Armed() {
		t.Fatal("POWER_OFF left the alarm enabled or armed")
	}

	a.HandleCommand("arm")
	if !a.Armed() || !a.Enabled() {
		t.Errorf("after ARM armed=%v enabled=%v, want true/true", a.Armed(), a.Enabled())
	}

	a.HandleCommand("DISARM")
	if a.Armed() {
		t.Error("Armed() = true after DISARM")
	}
	if !a.Enabled() {
		t.Error("DISARM disabled the system")
	}
}

func TestAlarmTriggerCamera(t *testing.T) {
	a := NewAlarm("D003", "Home Alarm")

	if a.HandleCommand("TRIGGER_CAM") {
		t.Error("TRIGGER_CAM without camera = true, want false")
	}
	if got := a.Log()[0].Message; got != MessageNoCamera {
		t.Errorf("Message = %q, want %q", got, MessageNoCamera)
	}

	a.HandleCommand("LINK_CAMERA=D004")
	a.DrainEvents()
	if !a.HandleCommand("TRIGGER_CAM") {
		t.Fatal("TRIGGER_CAM with camera = false")
	}
	events := a.DrainEvents()
	want := Request{DeviceID: "D004", Command: CmdRecord}
	if len(events) != 1 || len(events[0].Requests) != 1 || events[0].Requests[0] != want {
		t.Errorf("events = %+v, want one with request %+v", events, want)
	}
}

func TestAlarmLinkCameraRejectsBadID(t *testing.T) {
	a := NewAlarm("D003", "Home Alarm")
	if a.HandleCommand("LINK_CAMERA=") {
		t.Error("LINK_CAMERA with empty id = true")
	}
	if a.LinkedCameraID() != "" {
		t.Errorf("LinkedCameraID() = %q, want empty", a.LinkedCameraID())
	}
}

func TestAlarmMotion(t *testing.T) {
	tests := []struct {
		name      string
		commands  []string
		wantKind  EventKind
		wantMsg   string
		wantCamRq bool
	}{
		{"disarmed", []string{"ENABLE_MS", "LINK_CAMERA=D004"}, EventInfo, MessageMotionSkip, false},
		{"not linked", []string{"ARM", "LINK_CAMERA=D004"}, EventInfo, MessageMotionSkip, false},
		{"armed and linked", []string{"ARM", "ENABLE_MS", "LINK_CAMERA=D004"}, EventEmergency, MessageIntrusion, true},
		{"armed without camera", []string{"ARM", "ENABLE_MS"}, EventEmergency, MessageIntrusion, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAlarm("D003", "Home Alarm")
			for _, cmd := range tt.commands {
				a.HandleCommand(cmd)
			}
			a.DrainEvents()

			if !a.HandleCommand("MOTION") {
				t.Error("MOTION = false, want true")
			}
			events := a.DrainEvents()
			if len(events) != 1 {
				t.Fatalf("events = %d, want 1", len(events))
			}
			ev := events[0]
			if ev.Kind != tt.wantKind || ev.Record.Message != tt.wantMsg {
				t.Errorf("event = %s %q, want %s %q", ev.Kind, ev.Record.Message, tt.wantKind, tt.wantMsg)
			}
			if got := len(ev.Requests) == 1; got != tt.wantCamRq {
				t.Errorf("camera request = %v, want %v", got, tt.wantCamRq)
			}
		})
	}
}

func TestAlarmEmergency(t *testing.T) {
	a := NewAlarm("D003", "Home Alarm")
	a.HandleCommand("EMERGENCY")
	events := a.DrainEvents()
	if len(events) != 1 || events[0].Kind != EventEmergency {
		t.Errorf("EMERGENCY events = %+v, want one emergency", events)
	}
}
