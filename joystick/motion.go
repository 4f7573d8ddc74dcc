package joystick

import "sync"

// Motion holds the attitude last reported by a motion sensor, as the x and y
// components of gravity in g. Calibrate takes the current attitude as level.
// Tilt reports the calibrated values clamped to [-1, 1], which makes a
// *Motion usable as the tilt source of a commander.
type Motion struct {
	lock       sync.Mutex
	x, y       float64
	offX, offY float64
	received   bool
}

func NewMotion() *Motion {
	return &Motion{}
}

func (m *Motion) Update(x, y float64) error {
	if !finite(x) || !finite(y) {
		return ErrorInvalidValue
	}
	m.lock.Lock()
	m.x, m.y = x, y
	m.received = true
	m.lock.Unlock()
	return nil
}

func (m *Motion) Calibrate() {
	m.lock.Lock()
	m.offX, m.offY = m.x, m.y
	m.lock.Unlock()
}

// Reset levels the attitude and forgets the calibration.
func (m *Motion) Reset() {
	m.lock.Lock()
	m.x, m.y = 0, 0
	m.offX, m.offY = 0, 0
	m.received = false
	m.lock.Unlock()
}

// Received reports whether an attitude arrived since the last Reset.
func (m *Motion) Received() bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.received
}

func (m *Motion) Tilt() (x, y float32) {
	m.lock.Lock()
	defer m.lock.Unlock()
	return float32(Clamp(m.x - m.offX)), float32(Clamp(m.y - m.offY))
}
