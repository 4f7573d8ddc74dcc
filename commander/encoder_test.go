package commander

import (
	"bytes"
	"math"
	"testing"

	"github.com/mikehamer/crazypilot/crazyflie"
)

func TestScale(t *testing.T) {
	s := Settings{PitchRate: 40, YawRate: 200, MaxThrust: 50}

	got := s.Scale(Controls{Pitch: 0.5, Roll: -0.25, Yaw: 1, Thrust: 1})
	want := Setpoint{Roll: -10, Pitch: -20, Yaw: 200, Thrust: 32767}
	if got != want {
		t.Errorf("Scale() = %+v, want %+v", got, want)
	}
}

func TestScaleThrustClamp(t *testing.T) {
	s := Settings{PitchRate: 40, YawRate: 200, MaxThrust: 100}

	tests := []struct {
		thrust float32
		want   uint16
	}{
		{-1, 0},
		{0, 0},
		{1, 65535},
		{2, 65535},
	}
	for _, test := range tests {
		got := s.Scale(Controls{Thrust: test.thrust}).Thrust
		if got != test.want {
			t.Errorf("thrust %v: got %d, want %d", test.thrust, got, test.want)
		}
	}
}

func TestThrustValue(t *testing.T) {
	tests := []struct {
		in   float64
		want uint16
	}{
		{math.NaN(), 0},
		{math.Inf(1), 65535},
		{math.Inf(-1), 0},
		{1234.9, 1234},
		{70000, 65535},
	}
	for _, test := range tests {
		if got := ThrustValue(test.in); got != test.want {
			t.Errorf("ThrustValue(%v) = %d, want %d", test.in, got, test.want)
		}
	}
}

func TestEncode(t *testing.T) {
	axes := Axes{LeftX: 1, LeftY: 1, RightX: -1, RightY: 0.5}
	settings := Settings{PitchRate: 40, YawRate: 150, MaxThrust: 100}

	p, err := Encode(Mode2.Index(), axes, settings)
	if err != nil {
		t.Fatal(err)
	}

	want := crazyflie.NewCommanderPacket(-40, -20, 150, 65535)
	if !bytes.Equal(p.Bytes(), want.Bytes()) {
		t.Errorf("Encode() = % X\nwant       % X", p.Bytes(), want.Bytes())
	}
	if len(p.Bytes()) != crazyflie.CommanderPacketSize {
		t.Errorf("frame length = %d", len(p.Bytes()))
	}
}

func TestEncodeRejects(t *testing.T) {
	settings := Slow.DefaultSettings()

	if _, err := Encode(NumModes, Axes{}, settings); err != ErrorInvalidMode {
		t.Errorf("bad mode error = %v", err)
	}
	if _, err := Encode(Tilt.Index(), Axes{}, settings); err != ErrorTiltUnavailable {
		t.Errorf("tilt error = %v", err)
	}

	nan := float32(math.NaN())
	if _, err := Encode(Mode1.Index(), Axes{LeftY: nan}, settings); err != ErrorInvalidValue {
		t.Errorf("NaN error = %v", err)
	}
	inf := float32(math.Inf(1))
	if _, err := Encode(Mode1.Index(), Axes{RightX: inf}, settings); err != ErrorInvalidValue {
		t.Errorf("Inf error = %v", err)
	}

	for _, bad := range []Settings{
		{PitchRate: nan, YawRate: 150, MaxThrust: 80},
		{PitchRate: 40, YawRate: inf, MaxThrust: 80},
		{PitchRate: 40, YawRate: 150, MaxThrust: 250},
	} {
		p, err := Encode(Mode2.Index(), Axes{}, bad)
		if err != ErrorInvalidSettings || p != nil {
			t.Errorf("Encode with %+v = %v, %v", bad, p, err)
		}
	}
}

func TestEncodeSetpoint(t *testing.T) {
	values := [4]float32{10, 20, 30, 40000}

	tests := []struct {
		mode ControlMode
		want *crazyflie.CommanderPacket
	}{
		{Mode1, crazyflie.NewCommanderPacket(30, 20, 10, 40000)},
		{Mode3, crazyflie.NewCommanderPacket(10, 20, 30, 40000)},
	}
	for _, test := range tests {
		p, err := EncodeSetpoint(test.mode.Index(), values)
		if err != nil {
			t.Fatalf("%s: %s", test.mode, err)
		}
		if *p != *test.want {
			t.Errorf("%s: EncodeSetpoint() = %+v, want %+v", test.mode, *p, *test.want)
		}
	}

	if _, err := EncodeSetpoint(-1, values); err != ErrorInvalidMode {
		t.Errorf("bad mode error = %v", err)
	}
}

func TestPermuteThrustField(t *testing.T) {
	// Mode2 takes thrust from the left stick's vertical axis
	sp, err := Permute(Mode2, [4]float32{0, 70000, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if sp.Thrust != 65535 {
		t.Errorf("thrust = %d, want 65535", sp.Thrust)
	}
}
