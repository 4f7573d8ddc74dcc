package commander

import (
	"testing"

	"github.com/mikehamer/crazypilot/joystick"
)

type fixedTilt struct{ x, y float32 }

func (f fixedTilt) Tilt() (float32, float32) { return f.x, f.y }

func newTestCommander(t *testing.T, mode ControlMode) *Commander {
	t.Helper()
	c, err := New(joystick.New(), joystick.New(), mode, Settings{PitchRate: 50, YawRate: 100, MaxThrust: 100})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestCommanderAssignsThrustAndDeadband(t *testing.T) {
	c := newTestCommander(t, Mode2)

	if c.Left().ThrustAxis() != joystick.ThrustY || c.Right().ThrustAxis() != joystick.ThrustNone {
		t.Errorf("mode2 thrust axes = %v, %v", c.Left().ThrustAxis(), c.Right().ThrustAxis())
	}
	if x, _ := c.Left().Deadband(); x != YawDeadband {
		t.Errorf("left deadband = %v, want %v", x, YawDeadband)
	}
	if x, _ := c.Right().Deadband(); x != 0 {
		t.Errorf("right deadband = %v, want 0", x)
	}

	if err := c.SetMode(Mode3); err != nil {
		t.Fatal(err)
	}
	if c.Left().ThrustAxis() != joystick.ThrustNone || c.Right().ThrustAxis() != joystick.ThrustY {
		t.Errorf("mode3 thrust axes = %v, %v", c.Left().ThrustAxis(), c.Right().ThrustAxis())
	}
	if x, _ := c.Right().Deadband(); x != YawDeadband {
		t.Errorf("right deadband = %v, want %v", x, YawDeadband)
	}
}

func TestCommanderPrepare(t *testing.T) {
	c := newTestCommander(t, Mode2)

	c.Left().Begin()
	c.Left().Move(0, 1) // full thrust
	c.Right().Begin()
	c.Right().Move(1, 0.5)

	sp, err := c.Prepare()
	if err != nil {
		t.Fatal(err)
	}
	want := Setpoint{Roll: 50, Pitch: -25, Yaw: 0, Thrust: 65535}
	if sp != want {
		t.Errorf("Prepare() = %+v, want %+v", sp, want)
	}
}

func TestCommanderModeChangeRecentres(t *testing.T) {
	c := newTestCommander(t, Mode2)
	c.Right().Begin()
	c.Right().Move(0.7, 0.7)

	if err := c.SetMode(Mode1); err != nil {
		t.Fatal(err)
	}
	if s := c.Right().State(); s != (joystick.State{}) {
		t.Errorf("right stick after mode change = %+v", s)
	}
}

func TestCommanderTilt(t *testing.T) {
	c := newTestCommander(t, Mode2)

	if err := c.SetMode(Tilt); err != ErrorTiltUnavailable {
		t.Fatalf("SetMode(Tilt) error = %v", err)
	}
	if c.Mode() != Mode2 {
		t.Errorf("mode = %s after rejected change", c.Mode())
	}

	c.SetTiltSource(fixedTilt{x: 0.5, y: -1})
	if err := c.SetMode(Tilt); err != nil {
		t.Fatal(err)
	}
	sp, err := c.Prepare()
	if err != nil {
		t.Fatal(err)
	}
	if sp.Roll != 25 || sp.Pitch != 50 {
		t.Errorf("tilt setpoint = %+v", sp)
	}

	c.SetTiltSource(nil)
	if c.Mode() != DefaultMode {
		t.Errorf("mode = %s after tilt source removed, want %s", c.Mode(), DefaultMode)
	}
}

func TestCommanderRejects(t *testing.T) {
	if _, err := New(nil, joystick.New(), Mode1, Settings{}); err != ErrorMissingJoystick {
		t.Errorf("nil joystick error = %v", err)
	}
	if _, err := New(joystick.New(), joystick.New(), ControlMode(7), Settings{}); err != ErrorInvalidMode {
		t.Errorf("bad mode error = %v", err)
	}
}
