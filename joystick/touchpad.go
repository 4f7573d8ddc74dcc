package joystick

import "sync"

// DefaultRadius is the stick travel, in points, from centre to edge.
const DefaultRadius = 80.0

// TouchPad turns raw touch coordinates (screen space, y growing downwards)
// into stick positions. The first touch point becomes the stick centre; for
// a thrust stick the centre sits one radius above the finger so that the
// stick starts at zero thrust.
type TouchPad struct {
	js     *Joystick
	radius float64

	lock     sync.Mutex
	cx, cy   float64
	touching bool
}

func NewTouchPad(js *Joystick, radius float64) *TouchPad {
	if radius <= 0 {
		radius = DefaultRadius
	}
	return &TouchPad{js: js, radius: radius}
}

func (tp *TouchPad) Joystick() *Joystick {
	return tp.js
}

func (tp *TouchPad) TouchBegan(px, py float64) error {
	if !finite(px) || !finite(py) {
		return ErrorInvalidValue
	}

	tp.lock.Lock()
	defer tp.lock.Unlock()

	tp.cx, tp.cy = px, py
	if tp.js.ThrustAxis() == ThrustY {
		tp.cy -= tp.radius
	}
	tp.touching = true
	tp.js.Begin()
	return nil
}

// TouchMoved fails with ErrorNotTouching when no touch is in progress,
// including after the stick was cancelled from elsewhere (a mode change).
// The client has to begin a new touch in that case.
func (tp *TouchPad) TouchMoved(px, py float64) error {
	tp.lock.Lock()
	defer tp.lock.Unlock()

	if tp.touching && !tp.js.Activated() {
		tp.touching = false
	}
	if !tp.touching {
		return ErrorNotTouching
	}
	x := (px - tp.cx) / tp.radius
	y := -1 * (py - tp.cy) / tp.radius
	return tp.js.Move(x, y)
}

// TouchEnded also covers a cancelled touch.
func (tp *TouchPad) TouchEnded() {
	tp.lock.Lock()
	tp.touching = false
	tp.lock.Unlock()
	tp.js.End()
}

func (tp *TouchPad) Touching() bool {
	tp.lock.Lock()
	defer tp.lock.Unlock()
	return tp.touching && tp.js.Activated()
}
