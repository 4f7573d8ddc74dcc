package joystick

import "fmt"

type joystickError uint8

func (e joystickError) Error() string {
	return fmt.Sprintf("joystick: %s", joystickErrorString[e])
}

const (
	ErrorInvalidValue joystickError = iota
	ErrorInvalidDeadband
	ErrorNotTouching
)

var joystickErrorString = map[joystickError]string{
	ErrorInvalidValue:    "position is not a finite number",
	ErrorInvalidDeadband: "deadband must be in [0, 1)",
	ErrorNotTouching:     "move received without a touch in progress",
}
