package commander

import "fmt"

type commanderError uint8

func (e commanderError) Error() string {
	return fmt.Sprintf("commander: %s", commanderErrorString[e])
}

const (
	ErrorInvalidMode commanderError = iota
	ErrorInvalidSensitivity
	ErrorInvalidValue
	ErrorTiltUnavailable
	ErrorNotEditable
	ErrorMissingJoystick
	ErrorInvalidSettings
)

var commanderErrorString = map[commanderError]string{
	ErrorInvalidMode:        "control mode index out of range",
	ErrorInvalidSensitivity: "sensitivity index out of range",
	ErrorInvalidValue:       "control value is not a finite number",
	ErrorTiltUnavailable:    "tilt mode needs a motion source",
	ErrorNotEditable:        "only the custom sensitivity can be edited",
	ErrorMissingJoystick:    "both joysticks are required",
	ErrorInvalidSettings:    "sensitivity settings are not finite or out of range",
}
