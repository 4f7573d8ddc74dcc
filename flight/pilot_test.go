package flight

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mikehamer/crazypilot/commander"
	"github.com/mikehamer/crazypilot/crazyflie"
	"github.com/mikehamer/crazypilot/joystick"
	"github.com/mikehamer/crazypilot/link"
)

// fakeVehicle keeps the ack callbacks so tests decide when a frame is
// acknowledged.
type fakeVehicle struct {
	lock    sync.Mutex
	packets []crazyflie.CommanderPacket
	pending []func(error)
}

func (v *fakeVehicle) SetpointSend(packet *crazyflie.CommanderPacket, done func(error)) error {
	v.lock.Lock()
	defer v.lock.Unlock()
	v.packets = append(v.packets, *packet)
	v.pending = append(v.pending, done)
	return nil
}

func (v *fakeVehicle) ackAll() {
	v.lock.Lock()
	pending := v.pending
	v.pending = nil
	v.lock.Unlock()

	for _, done := range pending {
		done(nil)
	}
}

func (v *fakeVehicle) last() crazyflie.CommanderPacket {
	v.lock.Lock()
	defer v.lock.Unlock()
	return v.packets[len(v.packets)-1]
}

func (v *fakeVehicle) count() int {
	v.lock.Lock()
	defer v.lock.Unlock()
	return len(v.packets)
}

type testClock struct {
	lock sync.Mutex
	t    time.Time
}

func (c *testClock) now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.t
}

func (c *testClock) advance(d time.Duration) {
	c.lock.Lock()
	c.t = c.t.Add(d)
	c.lock.Unlock()
}

func newTestPilot(t *testing.T, v Vehicle, opts ...Option) *Pilot {
	t.Helper()
	c, err := commander.New(joystick.New(), joystick.New(), commander.Mode2,
		commander.Settings{PitchRate: 40, YawRate: 200, MaxThrust: 100})
	if err != nil {
		t.Fatal(err)
	}
	return NewPilot(c, v, opts...)
}

func TestLockedUntilBothSticksHeld(t *testing.T) {
	v := &fakeVehicle{}
	p := newTestPilot(t, v)
	left, right := p.Commander().Left(), p.Commander().Right()

	left.Begin()
	left.Move(0, 1)
	if err := p.Tick(); err != nil {
		t.Fatal(err)
	}
	if got := v.last(); got.Thrust != 0 || !p.Status().Locked {
		t.Errorf("one stick held: packet %+v, locked %v", got, p.Status().Locked)
	}
	v.ackAll()

	right.Begin()
	right.Move(0.5, 0)
	if err := p.Tick(); err != nil {
		t.Fatal(err)
	}
	got := v.last()
	if p.Status().Locked || got.Thrust != 65535 || got.Roll != 20 {
		t.Errorf("both held: packet %+v, locked %v", got, p.Status().Locked)
	}
	v.ackAll()

	// still unlocked with one stick released
	right.End()
	p.Tick()
	v.ackAll()
	if p.Status().Locked {
		t.Error("locked with the left stick still held")
	}

	left.End()
	p.Tick()
	v.ackAll()
	if !p.Status().Locked {
		t.Error("not locked after both sticks released")
	}
	if got := v.last(); got != *crazyflie.NewCommanderPacket(0, 0, 0, 0) {
		t.Errorf("locked packet = %+v", got)
	}
}

func TestTickSkippedUntilAcknowledged(t *testing.T) {
	v := &fakeVehicle{}
	p := newTestPilot(t, v)

	if err := p.Tick(); err != nil {
		t.Fatal(err)
	}
	if err := p.Tick(); err != ErrorMissedUpdate {
		t.Fatalf("second tick error = %v, want %v", err, ErrorMissedUpdate)
	}
	if v.count() != 1 {
		t.Errorf("sent %d packets, want 1", v.count())
	}

	v.ackAll()
	if err := p.Tick(); err != nil {
		t.Fatal(err)
	}
	status := p.Status()
	if status.Sent != 2 || status.Missed != 1 {
		t.Errorf("status = %+v", status)
	}
}

func TestWatchdogReleasesSticks(t *testing.T) {
	clock := &testClock{t: time.Unix(1000, 0)}
	v := &fakeVehicle{}
	p := newTestPilot(t, v, WithClock(clock.now), WithInputTimeout(500*time.Millisecond))
	left, right := p.Commander().Left(), p.Commander().Right()

	left.Begin()
	right.Begin()
	right.Move(0, 0.5)

	clock.advance(400 * time.Millisecond)
	p.Tick()
	v.ackAll()
	if !right.Activated() {
		t.Fatal("sticks released before the timeout")
	}

	clock.advance(200 * time.Millisecond)
	p.Tick()
	v.ackAll()
	if left.Activated() || right.Activated() {
		t.Error("sticks still held after the timeout")
	}
	if !p.Status().Locked {
		t.Error("pilot not locked after the watchdog fired")
	}
}

func TestTouchFeedsWatchdog(t *testing.T) {
	clock := &testClock{t: time.Unix(1000, 0)}
	p := newTestPilot(t, &fakeVehicle{}, WithClock(clock.now), WithInputTimeout(500*time.Millisecond))
	left := p.Commander().Left()
	left.Begin()

	for i := 0; i < 5; i++ {
		clock.advance(300 * time.Millisecond)
		p.Touch()
		p.checkWatchdog()
	}
	if !left.Activated() {
		t.Error("stick released although input kept arriving")
	}
}

func TestHeldTouchSurvivesSilence(t *testing.T) {
	clock := &testClock{t: time.Unix(1000, 0)}
	v := &fakeVehicle{}
	p := newTestPilot(t, v, WithClock(clock.now))
	c := p.Commander()

	left := joystick.NewTouchPad(c.Left(), joystick.DefaultRadius)
	right := joystick.NewTouchPad(c.Right(), joystick.DefaultRadius)
	left.TouchBegan(100, 400)
	right.TouchBegan(300, 400)
	left.TouchMoved(100, 400-joystick.DefaultRadius) // half thrust

	if err := p.Tick(); err != nil {
		t.Fatal(err)
	}
	v.ackAll()
	held := v.last().Thrust
	if held == 0 {
		t.Fatal("no thrust while holding the stick")
	}

	// the finger stays put, so the client sends nothing
	clock.advance(2 * time.Second)
	if err := p.Tick(); err != nil {
		t.Fatal(err)
	}
	v.ackAll()

	if got := v.last().Thrust; got != held {
		t.Errorf("thrust after a still hold = %d, want %d", got, held)
	}
	if !c.Left().Activated() || !left.Touching() {
		t.Error("held stick was released")
	}
	if p.Status().Locked {
		t.Error("pilot locked while both sticks are held")
	}
}

func TestSetModeRelocks(t *testing.T) {
	v := &fakeVehicle{}
	p := newTestPilot(t, v)
	p.Commander().Left().Begin()
	p.Commander().Right().Begin()
	p.Tick()
	v.ackAll()
	if p.Status().Locked {
		t.Fatal("expected unlocked")
	}

	if err := p.SetMode(commander.Mode1); err != nil {
		t.Fatal(err)
	}
	status := p.Status()
	if !status.Locked || status.ModeIndex != 0 || status.Mode != "mode1" {
		t.Errorf("status after SetMode = %+v", status)
	}
	if p.Commander().Left().Activated() {
		t.Error("left stick still held after mode change")
	}

	if err := p.SetMode(commander.ControlMode(9)); err != commander.ErrorInvalidMode {
		t.Errorf("SetMode(9) error = %v", err)
	}
}

func TestOnSetpoint(t *testing.T) {
	v := &fakeVehicle{}
	p := newTestPilot(t, v)

	var got []commander.Setpoint
	remove := p.OnSetpoint(func(sp commander.Setpoint) { got = append(got, sp) })
	p.Tick()
	v.ackAll()
	remove()
	p.Tick()

	if len(got) != 1 {
		t.Errorf("observer called %d times, want 1", len(got))
	}
}

func TestRunSendsFinalZeroSetpoint(t *testing.T) {
	rec := link.NewRecorder()
	cf := crazyflie.Connect(link.NewQueue(rec, link.WithPeriod(time.Millisecond), link.WithKeepAlive(false)))
	defer cf.Disconnect()

	p := newTestPilot(t, cf, WithPeriod(5*time.Millisecond))
	p.Commander().Left().Begin()
	p.Commander().Left().Move(0, 1)
	p.Commander().Right().Begin()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := p.Run(ctx); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if s := cf.Stats(); s.Acked+s.Dropped == s.Sent {
			break
		}
		time.Sleep(time.Millisecond)
	}

	packets := rec.Packets()
	if len(packets) < 2 {
		t.Fatalf("recorded %d packets", len(packets))
	}

	var first, last crazyflie.CommanderPacket
	if err := first.LoadFromBytes(packets[0]); err != nil {
		t.Fatal(err)
	}
	if err := last.LoadFromBytes(packets[len(packets)-1]); err != nil {
		t.Fatal(err)
	}
	if first.Thrust != 65535 {
		t.Errorf("first thrust = %d, want 65535", first.Thrust)
	}
	if last != *crazyflie.NewCommanderPacket(0, 0, 0, 0) {
		t.Errorf("final packet = %+v", last)
	}
}
