package commander

import (
	"sync"

	"github.com/mikehamer/crazypilot/joystick"
)

// YawDeadband is applied to the horizontal axis of the yaw stick.
const YawDeadband = 0.1

// TiltSource reports the device attitude, normalized to [-1, 1].
type TiltSource interface {
	Tilt() (x, y float32)
}

// Commander binds the two sticks, and optionally a tilt source, to a control
// mode and a set of sensitivity settings.
type Commander struct {
	lock     sync.Mutex
	left     *joystick.Joystick
	right    *joystick.Joystick
	tilt     TiltSource
	mode     ControlMode
	settings Settings
}

func New(left, right *joystick.Joystick, mode ControlMode, settings Settings) (*Commander, error) {
	if left == nil || right == nil {
		return nil, ErrorMissingJoystick
	}
	c := &Commander{left: left, right: right, settings: settings.Clamped()}
	if err := c.SetMode(mode); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Commander) Left() *joystick.Joystick {
	return c.left
}

func (c *Commander) Right() *joystick.Joystick {
	return c.right
}

func (c *Commander) Joystick(s Stick) *joystick.Joystick {
	if s == LeftStick {
		return c.left
	}
	return c.right
}

// SetTiltSource installs the motion source used by the Tilt mode. Removing
// it while flying Tilt falls back to the default mode.
func (c *Commander) SetTiltSource(tilt TiltSource) {
	c.lock.Lock()
	c.tilt = tilt
	fallback := tilt == nil && c.mode.NeedsTilt()
	c.lock.Unlock()

	if fallback {
		c.SetMode(DefaultMode)
	}
}

func (c *Commander) TiltSource() TiltSource {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.tilt
}

// SetMode switches the mode, recentres both sticks and reassigns the thrust
// axis and the yaw deadband.
func (c *Commander) SetMode(mode ControlMode) error {
	if !mode.Valid() {
		return ErrorInvalidMode
	}

	c.lock.Lock()
	if mode.NeedsTilt() && c.tilt == nil {
		c.lock.Unlock()
		return ErrorTiltUnavailable
	}
	c.mode = mode
	c.lock.Unlock()

	// Cancel notifies observers, keep the lock released
	for _, s := range []Stick{LeftStick, RightStick} {
		js := c.Joystick(s)
		js.Cancel()

		axis := joystick.ThrustNone
		if mode.ThrustStick() == s {
			axis = joystick.ThrustY
		}
		js.SetThrustAxis(axis)

		deadband := 0.0
		if mode.YawStick() == s {
			deadband = YawDeadband
		}
		if err := js.SetDeadband(deadband, 0); err != nil {
			return err
		}
	}
	return nil
}

func (c *Commander) Mode() ControlMode {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.mode
}

func (c *Commander) SetSettings(settings Settings) {
	c.lock.Lock()
	c.settings = settings.Clamped()
	c.lock.Unlock()
}

func (c *Commander) Settings() Settings {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.settings
}

// Axes samples both sticks and the tilt source.
func (c *Commander) Axes() Axes {
	c.lock.Lock()
	tilt := c.tilt
	c.lock.Unlock()

	l, r := c.left.State(), c.right.State()
	axes := Axes{LeftX: l.X, LeftY: l.Y, RightX: r.X, RightY: r.Y}
	if tilt != nil {
		axes.TiltX, axes.TiltY = tilt.Tilt()
		axes.HasTilt = true
	}
	return axes
}

// Prepare samples the inputs into the current setpoint.
func (c *Commander) Prepare() (Setpoint, error) {
	axes := c.Axes()

	c.lock.Lock()
	mode, settings := c.mode, c.settings
	c.lock.Unlock()

	controls, err := mode.Route(axes)
	if err != nil {
		return Setpoint{}, err
	}
	return settings.Scale(controls), nil
}
