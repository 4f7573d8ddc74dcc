package commander

import "fmt"

// ControlMode selects which stick axis drives which flight channel.
type ControlMode int

const (
	Mode1 ControlMode = iota
	Mode2
	Mode3
	Mode4
	Tilt
)

// NumModes counts every mode, Tilt included.
const NumModes = 5

// DefaultMode is what a fresh install flies with.
const DefaultMode = Mode2

// Axis identifies one input channel. The four stick axes come first, in the
// order the mode titles are listed.
type Axis int

const (
	LeftX Axis = iota
	LeftY
	RightX
	RightY
	TiltX
	TiltY
)

// Stick identifies one of the two thumb sticks.
type Stick int

const (
	LeftStick Stick = iota
	RightStick
)

func (s Stick) String() string {
	if s == LeftStick {
		return "left"
	}
	return "right"
}

// Route is the source axis of each flight channel.
type Route struct {
	Pitch, Roll, Yaw, Thrust Axis
}

var routes = [NumModes]Route{
	Mode1: {Pitch: LeftY, Roll: RightX, Yaw: LeftX, Thrust: RightY},
	Mode2: {Pitch: RightY, Roll: RightX, Yaw: LeftX, Thrust: LeftY},
	Mode3: {Pitch: LeftY, Roll: LeftX, Yaw: RightX, Thrust: RightY},
	Mode4: {Pitch: RightY, Roll: LeftX, Yaw: RightX, Thrust: LeftY},
	Tilt:  {Pitch: TiltY, Roll: TiltX, Yaw: LeftX, Thrust: RightY},
}

// stick labels in LeftX, LeftY, RightX, RightY order
var titles = [NumModes][4]string{
	Mode1: {"Yaw", "Pitch", "Roll", "Thrust"},
	Mode2: {"Yaw", "Thrust", "Roll", "Pitch"},
	Mode3: {"Roll", "Pitch", "Yaw", "Thrust"},
	Mode4: {"Roll", "Thrust", "Yaw", "Pitch"},
	Tilt:  {"Yaw", "", "", "Thrust"},
}

var modeNames = [NumModes]string{"mode1", "mode2", "mode3", "mode4", "tilt"}

// ParseMode validates a mode index.
func ParseMode(index int) (ControlMode, error) {
	mode := ControlMode(index)
	if !mode.Valid() {
		return 0, ErrorInvalidMode
	}
	return mode, nil
}

// ParseModeName accepts "mode1".."mode4" and "tilt".
func ParseModeName(name string) (ControlMode, error) {
	for i, n := range modeNames {
		if n == name {
			return ControlMode(i), nil
		}
	}
	return 0, ErrorInvalidMode
}

func (m ControlMode) Valid() bool {
	return m >= Mode1 && m <= Tilt
}

func (m ControlMode) Index() int {
	return int(m)
}

func (m ControlMode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("ControlMode(%d)", int(m))
	}
	return modeNames[m]
}

// Sources is the axis table of the mode. An invalid mode has an empty one.
func (m ControlMode) Sources() Route {
	if !m.Valid() {
		return Route{}
	}
	return routes[m]
}

// Route picks the pitch, roll, yaw and thrust inputs out of the sampled axes.
func (m ControlMode) Route(axes Axes) (Controls, error) {
	if !m.Valid() {
		return Controls{}, ErrorInvalidMode
	}
	if m.NeedsTilt() && !axes.HasTilt {
		return Controls{}, ErrorTiltUnavailable
	}
	r := routes[m]
	c := Controls{
		Pitch:  axes.Value(r.Pitch),
		Roll:   axes.Value(r.Roll),
		Yaw:    axes.Value(r.Yaw),
		Thrust: axes.Value(r.Thrust),
	}
	if !c.finite() {
		return Controls{}, ErrorInvalidValue
	}
	return c, nil
}

// Titles labels the LeftX, LeftY, RightX and RightY axes.
func (m ControlMode) Titles() [4]string {
	if !m.Valid() {
		return [4]string{}
	}
	return titles[m]
}

func (m ControlMode) NeedsTilt() bool {
	return m == Tilt
}

// ThrustStick is the stick whose vertical axis drives thrust.
func (m ControlMode) ThrustStick() Stick {
	return stickOf(m.Sources().Thrust)
}

// YawStick is the stick whose horizontal axis drives yaw.
func (m ControlMode) YawStick() Stick {
	return stickOf(m.Sources().Yaw)
}

func stickOf(axis Axis) Stick {
	if axis == LeftX || axis == LeftY {
		return LeftStick
	}
	return RightStick
}
