package flight

import "fmt"

type flightError uint8

func (e flightError) Error() string {
	return fmt.Sprintf("flight: %s", flightErrorString[e])
}

const (
	ErrorMissedUpdate flightError = iota
)

var flightErrorString = map[flightError]string{
	ErrorMissedUpdate: "previous setpoint not yet acknowledged",
}
