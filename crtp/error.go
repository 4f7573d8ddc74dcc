package crtp

import "fmt"

type crtpError uint8

func (e crtpError) Error() string {
	return fmt.Sprintf("crtp: %s", crtpErrorString[e])
}

const (
	ErrorPacketIncorrectType crtpError = iota
	ErrorPacketIncorrectLength
)

var crtpErrorString = map[crtpError]string{
	ErrorPacketIncorrectType:   "cannot decode packet from bytes: incorrect format",
	ErrorPacketIncorrectLength: "cannot decode packet from bytes: incorrect length",
}
