package link

import "fmt"

type linkError uint8

func (e linkError) Error() string {
	return fmt.Sprintf("link: %s", linkErrorString[e])
}

const (
	ErrorNoAck linkError = iota
	ErrorClosed
	ErrorEmptyPacket
	ErrorPacketTooLong
)

var linkErrorString = map[linkError]string{
	ErrorNoAck:         "packet was not acknowledged",
	ErrorClosed:        "link has been closed",
	ErrorEmptyPacket:   "refusing to send an empty packet",
	ErrorPacketTooLong: "packet exceeds the 32 byte radio payload",
}
