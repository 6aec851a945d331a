package pad

import (
	"encoding/binary"
	"testing"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/rig-bridge/internal/config"
)

func makeEvent(value int16, typ, number uint8) []byte {
	b := make([]byte, eventSize)
	binary.LittleEndian.PutUint32(b[0:4], 12345)
	binary.LittleEndian.PutUint16(b[4:6], uint16(value))
	b[6] = typ
	b[7] = number
	return b
}

func TestParseEvent(t *testing.T) {
	ev, err := parseEvent(makeEvent(-32767, eventTypeAxis, axisHatX))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ev.Value != -32767 || ev.Type != eventTypeAxis || ev.Number != axisHatX {
		t.Fatalf("parsed event = %+v", ev)
	}

	if _, err := parseEvent([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected short-event error")
	}
}

func TestJoystickSamplePriority(t *testing.T) {
	j := &Joystick{doneC: make(chan struct{})}

	if got := j.Sample(); got != Neutral {
		t.Fatalf("initial sample = %v", got)
	}

	apply := func(value int16, number uint8) {
		ev, err := parseEvent(makeEvent(value, eventTypeAxis, number))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		j.apply(ev)
	}

	apply(-32767, axisHatX)
	if got := j.Sample(); got != Left {
		t.Fatalf("sample = %v, want Left", got)
	}

	// 水平优先：左按住同时向上推，仍然返回 Left
	apply(-32767, axisHatY)
	if got := j.Sample(); got != Left {
		t.Fatalf("sample = %v, want Left (horizontal priority)", got)
	}

	apply(0, axisHatX)
	if got := j.Sample(); got != Up {
		t.Fatalf("sample = %v, want Up", got)
	}

	apply(32767, axisHatY)
	if got := j.Sample(); got != Down {
		t.Fatalf("sample = %v, want Down", got)
	}

	apply(32767, axisHatX)
	if got := j.Sample(); got != Right {
		t.Fatalf("sample = %v, want Right", got)
	}
}

func TestJoystickIgnoresButtonsAndOtherAxes(t *testing.T) {
	j := &Joystick{doneC: make(chan struct{})}

	ev, _ := parseEvent(makeEvent(1, eventTypeButton, 0))
	j.apply(ev)
	ev, _ = parseEvent(makeEvent(32767, eventTypeAxis, 0)) // 摇杆轴，不是 hat
	j.apply(ev)
	if got := j.Sample(); got != Neutral {
		t.Fatalf("sample = %v, want Neutral", got)
	}

	// 内核初始回放事件（type 带 init 位）同样生效
	ev, _ = parseEvent(makeEvent(32767, eventTypeAxis|eventTypeInit, axisHatX))
	j.apply(ev)
	if got := j.Sample(); got != Right {
		t.Fatalf("sample = %v, want Right after init replay", got)
	}
}

func TestOpenFallsBackToNull(t *testing.T) {
	logger := zap.NewNop()

	s := Open(cfgpkg.PadConfig{Enable: false, Device: "/dev/input/js0"}, logger)
	if _, ok := s.(Null); !ok {
		t.Fatalf("disabled pad should yield Null sampler")
	}

	s = Open(cfgpkg.PadConfig{Enable: true, Device: "/nonexistent/js99"}, logger)
	if _, ok := s.(Null); !ok {
		t.Fatalf("missing device should yield Null sampler")
	}
	if got := s.Sample(); got != Neutral {
		t.Fatalf("null sample = %v", got)
	}
}

func TestDirectionString(t *testing.T) {
	cases := map[Direction]string{
		Neutral: "neutral", Left: "left", Right: "right", Up: "up", Down: "down",
	}
	for d, want := range cases {
		if d.String() != want {
			t.Fatalf("%d.String() = %q, want %q", d, d.String(), want)
		}
	}
}
