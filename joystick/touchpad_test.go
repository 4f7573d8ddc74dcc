package joystick

import (
	"sync"
	"testing"
)

func TestTouchPadNormalizes(t *testing.T) {
	js := New()
	tp := NewTouchPad(js, 80)

	if err := tp.TouchMoved(10, 10); err != ErrorNotTouching {
		t.Errorf("move before touch: expected ErrorNotTouching, got %v", err)
	}

	tp.TouchBegan(200, 300)
	if !js.Activated() {
		t.Fatal("touch did not activate the stick")
	}

	tp.TouchMoved(240, 260) // right 40, up 40
	if js.X() != 0.5 || js.Y() != 0.5 {
		t.Errorf("got (%v, %v), want (0.5, 0.5)", js.X(), js.Y())
	}

	tp.TouchMoved(0, 1000) // far outside, clamped
	if js.X() != -1 || js.Y() != -1 {
		t.Errorf("got (%v, %v), want (-1, -1)", js.X(), js.Y())
	}

	tp.TouchEnded()
	if js.State() != (State{}) {
		t.Errorf("state after release = %+v", js.State())
	}
}

func TestTouchPadThrustStartsAtZero(t *testing.T) {
	js := New(WithThrustAxis(ThrustY))
	tp := NewTouchPad(js, 0)

	tp.TouchBegan(100, 500)
	tp.TouchMoved(100, 500)
	if js.Y() != 0 {
		t.Errorf("thrust at touch point = %v, want 0", js.Y())
	}

	tp.TouchMoved(100, 500-2*DefaultRadius)
	if js.Y() != 1 {
		t.Errorf("thrust at top = %v, want 1", js.Y())
	}
}

func TestTouchPadForgetsCancelledTouch(t *testing.T) {
	js := New()
	tp := NewTouchPad(js, 80)

	tp.TouchBegan(100, 100)
	js.Cancel() // e.g. the control mode changed under the finger

	if tp.Touching() {
		t.Error("touch still reported after the stick was cancelled")
	}
	if err := tp.TouchMoved(140, 100); err != ErrorNotTouching {
		t.Errorf("move after cancel: expected ErrorNotTouching, got %v", err)
	}
	if js.Activated() || js.X() != 0 {
		t.Errorf("cancelled stick moved: %+v", js.State())
	}

	tp.TouchBegan(100, 100)
	if err := tp.TouchMoved(140, 100); err != nil {
		t.Fatalf("move after a new touch: %v", err)
	}
	if js.X() != 0.5 {
		t.Errorf("x = %v, want 0.5", js.X())
	}
}

func TestTouchPadConcurrentRelease(t *testing.T) {
	js := New()
	tp := NewTouchPad(js, 80)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			tp.TouchBegan(100, 100)
			tp.TouchMoved(120, 90)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			tp.TouchEnded()
		}
	}()
	wg.Wait()

	tp.TouchEnded()
	if tp.Touching() || js.Activated() {
		t.Error("touch survived the final release")
	}
}
