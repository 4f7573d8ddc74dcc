// Package gamepad drives the virtual sticks from a USB game controller.
package gamepad

import (
	"context"
	"log"
	"time"

	"github.com/pkg/errors"
	sjs "github.com/simulatedsimian/joystick"

	"github.com/mikehamer/crazypilot/joystick"
)

const (
	axisRange = 32767

	// DefaultPollPeriod is faster than the control loop so that every
	// setpoint sees fresh input.
	DefaultPollPeriod = 20 * time.Millisecond
)

type Info struct {
	ID      int
	Name    string
	Axes    int
	Buttons int
}

// List probes the first ten device IDs.
func List() []Info {
	var found []Info
	for id := 0; id < 10; id++ {
		js, err := sjs.Open(id)
		if err != nil {
			break
		}
		found = append(found, Info{ID: id, Name: js.Name(), Axes: js.AxisCount(), Buttons: js.ButtonCount()})
		js.Close()
	}
	return found
}

type Gamepad struct {
	device sjs.Joystick
	layout Layout
	left   *joystick.Joystick
	right  *joystick.Joystick

	// OnInput is called after every poll that found the arm button held.
	OnInput func()

	armed bool
}

// Open opens device id and binds it to the two sticks.
func Open(id int, layout Layout, left, right *joystick.Joystick) (*Gamepad, error) {
	device, err := sjs.Open(id)
	if err != nil {
		return nil, errors.Wrapf(err, "gamepad: open %d", id)
	}
	g, err := New(device, layout, left, right)
	if err != nil {
		device.Close()
		return nil, err
	}
	return g, nil
}

func New(device sjs.Joystick, layout Layout, left, right *joystick.Joystick) (*Gamepad, error) {
	if device.AxisCount() <= layout.maxAxis() {
		return nil, ErrorTooFewAxes
	}
	log.Printf("gamepad: using %s (%d axes, %d buttons) as %s", device.Name(), device.AxisCount(), device.ButtonCount(), layout.Name)
	return &Gamepad{device: device, layout: layout, left: left, right: right}, nil
}

func (g *Gamepad) Close() {
	g.left.Cancel()
	g.right.Cancel()
	g.device.Close()
}

// Run polls the device every period until ctx is cancelled.
func (g *Gamepad) Run(ctx context.Context, period time.Duration) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			g.release()
			return nil
		case <-ticker.C:
		}

		state, err := g.device.Read()
		if err != nil {
			log.Printf("gamepad: read: %s", err)
			g.release()
			continue
		}
		g.Update(state)
	}
}

// Update applies one device reading to the sticks.
func (g *Gamepad) Update(state sjs.State) {
	if len(state.AxisData) <= g.layout.maxAxis() {
		return
	}
	if state.Buttons&(1<<g.layout.ArmButton) == 0 {
		g.release()
		return
	}

	if !g.armed {
		g.armed = true
		g.left.Begin()
		g.right.Begin()
	}

	g.move(g.left, state.AxisData[g.layout.LeftX], state.AxisData[g.layout.LeftY])
	g.move(g.right, state.AxisData[g.layout.RightX], state.AxisData[g.layout.RightY])

	if g.OnInput != nil {
		g.OnInput()
	}
}

func (g *Gamepad) move(js *joystick.Joystick, rawX, rawY int) {
	x := normalize(rawX)
	y := -normalize(rawY) // device Y grows downwards

	// Move maps [-1, 1] onto thrust [0, 1]. A sprung stick rests in the
	// centre, so only its upper half may produce thrust.
	if js.ThrustAxis() == joystick.ThrustY && !g.layout.FullRangeThrottle {
		y = 2*max(0, y) - 1
	}

	if err := js.Move(x, y); err != nil {
		log.Printf("gamepad: %s", err)
	}
}

func (g *Gamepad) release() {
	if !g.armed {
		return
	}
	g.armed = false
	g.left.Cancel()
	g.right.Cancel()
}

func normalize(raw int) float64 {
	return joystick.Clamp(float64(raw) / axisRange)
}
