package gamepad

import "fmt"

type gamepadError uint8

func (e gamepadError) Error() string {
	return fmt.Sprintf("gamepad: %s", gamepadErrorString[e])
}

const (
	ErrorUnknownLayout gamepadError = iota
	ErrorTooFewAxes
	ErrorNotFound
)

var gamepadErrorString = map[gamepadError]string{
	ErrorUnknownLayout: "unknown layout",
	ErrorTooFewAxes:    "device has fewer axes than the layout needs",
	ErrorNotFound:      "no gamepad found",
}
