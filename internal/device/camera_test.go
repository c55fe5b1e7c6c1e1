package device

import "testing"

func TestCameraZoom(t *testing.T) {
	c := NewCamera("D004", "Porch Camera")

	if c.Zoom(11) {
		t.Error("Zoom(11) = true, want false")
	}
	if c.ZoomLevel() != 1 {
		t.Errorf("ZoomLevel() = %d after rejection, want 1", c.ZoomLevel())
	}
	before := len(c.Log())

	if !c.Zoom(7) {
		t.Fatal("Zoom(7) = false, want true")
	}
	if c.ZoomLevel() != 7 {
		t.Errorf("ZoomLevel() = %d, want 7", c.ZoomLevel())
	}
	log := c.Log()
	if len(log) != before+1 {
		t.Fatalf("Zoom(7) appended %d records, want 1", len(log)-before)
	}
	if log[len(log)-1].Message != "Zoom level set to: 7" {
		t.Errorf("Message = %q, want %q", log[len(log)-1].Message, "Zoom level set to: 7")
	}

	for _, n := range []int{0, -3, 100} {
		if c.Zoom(n) {
			t.Errorf("Zoom(%d) = true, want false", n)
		}
	}
	if c.ZoomLevel() != 7 {
		t.Errorf("ZoomLevel() = %d, want 7", c.ZoomLevel())
	}
}

func TestCameraRecording(t *testing.T) {
	c := NewCamera("D004", "Porch Camera")
	if !c.HandleCommand("RECORD") || !c.Recording() {
		t.Fatal("RECORD on enabled camera did not start recording")
	}

	c.HandleCommand("DISABLE")
	if c.Recording() {
		t.Error("Recording() = true after DISABLE")
	}
	if c.HandleCommand("RECORD") {
		t.Error("RECORD on disabled camera = true")
	}
	if c.HandleCommand("FOOTAGE") {
		t.Error("FOOTAGE on disabled camera = true")
	}

	c.HandleCommand("ENABLE")
	c.HandleCommand("RECORD")
	c.HandleCommand("STOP")
	if c.Recording() {
		t.Error("Recording() = true after STOP")
	}
	if !c.HandleCommand("FOOTAGE") {
		t.Error("FOOTAGE on enabled camera = false")
	}
}

func TestCameraMotionLink(t *testing.T) {
	c := NewCamera("D004", "Porch Camera")
	c.HandleCommand("ENABLE_MOTION")
	if !c.MotionLinked() {
		t.Error("MotionLinked() = false after ENABLE_MOTION")
	}
	c.HandleCommand("disable_motion")
	if c.MotionLinked() {
		t.Error("MotionLinked() = true after DISABLE_MOTION")
	}
}
