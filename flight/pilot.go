// Package flight runs the control loop: it samples the sticks through a
// commander, holds the copter at zero until both sticks are held, and streams
// one setpoint per period without ever queueing more than one unacknowledged
// frame.
package flight

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/mikehamer/crazypilot/commander"
	"github.com/mikehamer/crazypilot/crazyflie"
	"github.com/mikehamer/crazypilot/joystick"
)

const (
	DefaultPeriod       = 50 * time.Millisecond
	DefaultInputTimeout = 500 * time.Millisecond
)

// Vehicle receives setpoints. *crazyflie.Crazyflie implements it.
type Vehicle interface {
	SetpointSend(packet *crazyflie.CommanderPacket, done func(error)) error
}

// Status is a snapshot of the loop.
type Status struct {
	Locked    bool               `json:"locked"`
	Mode      string             `json:"mode"`
	ModeIndex int                `json:"modeIndex"`
	Setpoint  commander.Setpoint `json:"setpoint"`
	Sent      uint64             `json:"sent"`
	Missed    uint64             `json:"missed"`
}

type Pilot struct {
	commander *commander.Commander
	vehicle   Vehicle

	period       time.Duration
	inputTimeout time.Duration
	now          func() time.Time

	lock        sync.Mutex
	locked      bool
	awaitingAck bool
	setpoint    commander.Setpoint
	lastInput   time.Time
	sent        uint64
	missed      uint64

	observers      map[int]func(commander.Setpoint)
	nextObserverID int

	removeInputObservers []func()
}

type Option func(*Pilot)

func WithPeriod(period time.Duration) Option {
	return func(p *Pilot) { p.period = period }
}

// WithInputTimeout arms the input watchdog: a held stick that goes without an
// update for timeout releases both sticks. Only polled sources, which report
// at a steady rate even when nothing moves, should arm it; a touch held still
// sends nothing. The watchdog is disarmed by default.
func WithInputTimeout(timeout time.Duration) Option {
	return func(p *Pilot) { p.inputTimeout = timeout }
}

func WithClock(now func() time.Time) Option {
	return func(p *Pilot) { p.now = now }
}

func NewPilot(c *commander.Commander, vehicle Vehicle, opts ...Option) *Pilot {
	p := &Pilot{
		commander: c,
		vehicle:   vehicle,
		period:    DefaultPeriod,
		now:       time.Now,
		locked:    true,
		observers: make(map[int]func(commander.Setpoint)),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.lastInput = p.now()

	for _, js := range []*joystick.Joystick{c.Left(), c.Right()} {
		p.removeInputObservers = append(p.removeInputObservers, js.OnUpdate(p.inputReceived))
	}
	return p
}

func (p *Pilot) inputReceived(joystick.State) {
	p.lock.Lock()
	p.lastInput = p.now()
	p.lock.Unlock()
}

func (p *Pilot) Commander() *commander.Commander {
	return p.commander
}

// Touch records input activity without moving a stick, for polled sources
// that repeat an unchanged position.
func (p *Pilot) Touch() {
	p.inputReceived(joystick.State{})
}

// SetMode changes the control mode. Both sticks are recentred and the pilot
// locks until they are held again.
func (p *Pilot) SetMode(mode commander.ControlMode) error {
	if err := p.commander.SetMode(mode); err != nil {
		return err
	}
	p.relock()
	return nil
}

func (p *Pilot) SetSettings(settings commander.Settings) {
	p.commander.SetSettings(settings)
	p.commander.Left().Cancel()
	p.commander.Right().Cancel()
	p.relock()
}

func (p *Pilot) relock() {
	p.lock.Lock()
	p.locked = true
	p.lock.Unlock()
}

// OnSetpoint registers an observer called with every setpoint handed to the
// vehicle. The returned function removes it.
func (p *Pilot) OnSetpoint(f func(commander.Setpoint)) func() {
	p.lock.Lock()
	id := p.nextObserverID
	p.nextObserverID++
	p.observers[id] = f
	p.lock.Unlock()

	return func() {
		p.lock.Lock()
		delete(p.observers, id)
		p.lock.Unlock()
	}
}

func (p *Pilot) Status() Status {
	mode := p.commander.Mode()

	p.lock.Lock()
	defer p.lock.Unlock()
	return Status{
		Locked:    p.locked,
		Mode:      mode.String(),
		ModeIndex: mode.Index(),
		Setpoint:  p.setpoint,
		Sent:      p.sent,
		Missed:    p.missed,
	}
}

// Tick sends one setpoint. While the previous one is still unacknowledged the
// tick is skipped and ErrorMissedUpdate returned.
func (p *Pilot) Tick() error {
	p.checkWatchdog()

	left, right := p.commander.Left().Activated(), p.commander.Right().Activated()

	p.lock.Lock()
	if p.awaitingAck {
		p.missed++
		p.lock.Unlock()
		return ErrorMissedUpdate
	}
	if p.locked && left && right {
		p.locked = false
		log.Println("flight: commander unlocked")
	} else if !p.locked && !left && !right {
		p.locked = true
		log.Println("flight: commander locked")
	}
	locked := p.locked
	p.lock.Unlock()

	var sp commander.Setpoint
	if !locked {
		var err error
		if sp, err = p.commander.Prepare(); err != nil {
			return err
		}
	}
	return p.send(sp)
}

func (p *Pilot) send(sp commander.Setpoint) error {
	p.lock.Lock()
	p.awaitingAck = true
	p.lock.Unlock()

	// the vehicle may acknowledge synchronously, do not hold the lock
	err := p.vehicle.SetpointSend(sp.Packet(), p.acknowledged)

	p.lock.Lock()
	if err != nil {
		p.awaitingAck = false
		p.lock.Unlock()
		return err
	}
	p.setpoint = sp
	p.sent++
	observers := make([]func(commander.Setpoint), 0, len(p.observers))
	for _, f := range p.observers {
		observers = append(observers, f)
	}
	p.lock.Unlock()

	for _, f := range observers {
		f(sp)
	}
	return nil
}

func (p *Pilot) acknowledged(err error) {
	if err != nil {
		log.Printf("flight: setpoint lost: %s", err)
	}
	p.lock.Lock()
	p.awaitingAck = false
	p.lock.Unlock()
}

func (p *Pilot) checkWatchdog() {
	if p.inputTimeout <= 0 {
		return
	}
	left, right := p.commander.Left(), p.commander.Right()
	if !left.Activated() && !right.Activated() {
		return
	}

	p.lock.Lock()
	expired := p.now().Sub(p.lastInput) > p.inputTimeout
	p.lock.Unlock()

	if expired {
		log.Printf("flight: no input for %s, releasing sticks", p.inputTimeout)
		left.Cancel()
		right.Cancel()
	}
}

// Run ticks until ctx is cancelled, then sends a last zero setpoint so the
// copter stops its motors.
func (p *Pilot) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.stop()
			return nil
		case <-ticker.C:
		}

		switch err := p.Tick(); err {
		case nil:
		case ErrorMissedUpdate:
			log.Println("flight: missed commander update")
		default:
			log.Printf("flight: %s", err)
		}
	}
}

func (p *Pilot) stop() {
	p.commander.Left().Cancel()
	p.commander.Right().Cancel()
	p.relock()

	p.lock.Lock()
	p.awaitingAck = false
	p.lock.Unlock()

	if err := p.send(commander.Setpoint{}); err != nil {
		log.Printf("flight: final setpoint: %s", err)
	}
}

// Close detaches the pilot from the sticks.
func (p *Pilot) Close() {
	for _, remove := range p.removeInputObservers {
		remove()
	}
	p.removeInputObservers = nil
}
