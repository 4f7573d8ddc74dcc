// Package joystick models a virtual thumb stick: a normalized (x, y)
// position in [-1, 1], a per-axis deadband, and an activated flag that is
// set while a finger (or a physical stick) holds it.
package joystick

import (
	"math"
	"sync"
)

// ThrustAxis selects whether the stick's vertical axis drives thrust. A
// thrust stick reports y in [0, 1] with the bottom edge as zero.
type ThrustAxis uint8

const (
	ThrustNone ThrustAxis = iota
	ThrustY
)

type State struct {
	X         float32 `json:"x"`
	Y         float32 `json:"y"`
	Activated bool    `json:"activated"`
}

type Joystick struct {
	lock       sync.Mutex
	x, y       float32
	activated  bool
	deadbandX  float64
	deadbandY  float64
	thrustAxis ThrustAxis

	observers      map[int]func(State)
	nextObserverID int
}

type Option func(*Joystick)

// WithDeadband panics on a deadband outside [0, 1); use SetDeadband for
// values coming from user input.
func WithDeadband(x, y float64) Option {
	return func(js *Joystick) {
		if err := js.SetDeadband(x, y); err != nil {
			panic(err)
		}
	}
}

func WithThrustAxis(axis ThrustAxis) Option {
	return func(js *Joystick) { js.thrustAxis = axis }
}

func New(opts ...Option) *Joystick {
	js := &Joystick{observers: make(map[int]func(State))}
	for _, opt := range opts {
		opt(js)
	}
	return js
}

func validDeadband(d float64) bool {
	return d >= 0 && d < 1
}

func (js *Joystick) SetDeadband(x, y float64) error {
	if !validDeadband(x) || !validDeadband(y) {
		return ErrorInvalidDeadband
	}
	js.lock.Lock()
	js.deadbandX, js.deadbandY = x, y
	js.lock.Unlock()
	return nil
}

func (js *Joystick) Deadband() (float64, float64) {
	js.lock.Lock()
	defer js.lock.Unlock()
	return js.deadbandX, js.deadbandY
}

// SetThrustAxis changes the vertical axis mapping. The stick is recentred
// since the previous y is meaningless under the new mapping.
func (js *Joystick) SetThrustAxis(axis ThrustAxis) {
	js.lock.Lock()
	js.thrustAxis = axis
	js.x, js.y = 0, 0
	js.lock.Unlock()
}

func (js *Joystick) ThrustAxis() ThrustAxis {
	js.lock.Lock()
	defer js.lock.Unlock()
	return js.thrustAxis
}

// Begin marks the stick as held.
func (js *Joystick) Begin() {
	js.lock.Lock()
	changed := !js.activated
	js.activated = true
	state := js.stateLocked()
	js.lock.Unlock()

	if changed {
		js.notify(state)
	}
}

// Move sets the raw stick position. Values are clamped to [-1, 1] before the
// deadband is applied.
func (js *Joystick) Move(x, y float64) error {
	if !finite(x) || !finite(y) {
		return ErrorInvalidValue
	}

	js.lock.Lock()
	js.x = float32(ApplyDeadband(js.deadbandX, Clamp(x)))
	yUpdate := ApplyDeadband(js.deadbandY, Clamp(y))
	if js.thrustAxis == ThrustY {
		yUpdate = (yUpdate + 1) / 2
	}
	js.y = float32(yUpdate)
	state := js.stateLocked()
	js.lock.Unlock()

	js.notify(state)
	return nil
}

// End is the touch-release event.
func (js *Joystick) End() {
	js.Cancel()
}

// Cancel returns the stick to neutral and deactivates it. It is safe to call
// any number of times; observers only hear about actual changes.
func (js *Joystick) Cancel() {
	js.lock.Lock()
	changed := js.activated || js.x != 0 || js.y != 0
	js.x, js.y = 0, 0
	js.activated = false
	state := js.stateLocked()
	js.lock.Unlock()

	if changed {
		js.notify(state)
	}
}

func (js *Joystick) stateLocked() State {
	return State{X: js.x, Y: js.y, Activated: js.activated}
}

func (js *Joystick) State() State {
	js.lock.Lock()
	defer js.lock.Unlock()
	return js.stateLocked()
}

func (js *Joystick) X() float32 {
	return js.State().X
}

func (js *Joystick) Y() float32 {
	return js.State().Y
}

func (js *Joystick) Activated() bool {
	return js.State().Activated
}

// HProgress is the horizontal position as a fraction of the full travel.
func (js *Joystick) HProgress() float32 {
	return (js.X() + 1) / 2
}

// VProgress is the vertical position as a fraction of the full travel.
func (js *Joystick) VProgress() float32 {
	js.lock.Lock()
	defer js.lock.Unlock()
	if js.thrustAxis == ThrustY {
		return js.y
	}
	return (js.y + 1) / 2
}

// OnUpdate registers an observer called after every state change. The
// returned function removes it.
func (js *Joystick) OnUpdate(f func(State)) func() {
	js.lock.Lock()
	id := js.nextObserverID
	js.nextObserverID++
	js.observers[id] = f
	js.lock.Unlock()

	return func() {
		js.lock.Lock()
		delete(js.observers, id)
		js.lock.Unlock()
	}
}

func (js *Joystick) notify(state State) {
	js.lock.Lock()
	observers := make([]func(State), 0, len(js.observers))
	for _, f := range js.observers {
		observers = append(observers, f)
	}
	js.lock.Unlock()

	for _, f := range observers {
		f(state)
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
