package channel

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Request
		wantErr bool
	}{
		{in: "TURN_ON:D001", want: Request{Verb: VerbTurnOn, DeviceID: "D001", Command: "ON"}},
		{in: "turn_off:D001", want: Request{Verb: VerbTurnOff, DeviceID: "D001", Command: "OFF"}},
		{in: "TURN_ON:D001\r\n", want: Request{Verb: VerbTurnOn, DeviceID: "D001", Command: "ON"}},
		{in: "TURN_ON:", want: Request{Verb: VerbTurnOn, DeviceID: "", Command: "ON"}},
		{in: "SYNC", want: Request{Verb: VerbSync}},
		{in: "sync", want: Request{Verb: VerbSync}},
		{in: "CMD:D002:UNLOCK_GUEST=1234", want: Request{Verb: VerbCmd, DeviceID: "D002", Command: "UNLOCK_GUEST=1234"}},
		{in: "Cmd:D004:a:b", want: Request{Verb: VerbCmd, DeviceID: "D004", Command: "a:b"}},
		{in: "TURN_ON", wantErr: true},
		{in: "SYNC:D001", wantErr: true},
		{in: "CMD:D001", wantErr: true},
		{in: "CMD::ON", wantErr: true},
		{in: "CMD:D001: ", wantErr: true},
		{in: "HELLO", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownCommand) {
					t.Errorf("Parse(%q) error = %v, want ErrUnknownCommand", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRequestResult(t *testing.T) {
	tests := []struct {
		req  Request
		ok   bool
		want string
	}{
		{Request{Verb: VerbTurnOn, DeviceID: "D001"}, true, "TURN_ON:D001:true"},
		{Request{Verb: VerbTurnOff, DeviceID: "D999"}, false, "TURN_OFF:D999:false"},
		{Request{Verb: VerbCmd, DeviceID: "D004", Command: "ZOOM=3"}, true, "CMD:D004:ZOOM=3:true"},
	}
	for _, tt := range tests {
		if got := tt.req.Result(tt.ok); got != tt.want {
			t.Errorf("Result(%v) = %q, want %q", tt.ok, got, tt.want)
		}
	}
	if got := SyncNotice("D001"); got != "SYNC:D001" {
		t.Errorf("SyncNotice() = %q, want SYNC:D001", got)
	}
}

func TestIsText(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want bool
	}{
		{"plain", []byte("TURN_ON:D001"), true},
		{"tab", []byte("CMD:D001:\tON"), true},
		{"unicode", []byte("CMD:D001:COLOUR=Bleu ciel é"), true},
		{"nul", []byte("TURN_ON\x00"), false},
		{"bell", []byte{0x07}, false},
		{"invalid utf8", []byte{0xff, 0xfe, 'A'}, false},
		{"empty", []byte{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsText(tt.in); got != tt.want {
				t.Errorf("IsText(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
