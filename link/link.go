// Package link moves encoded CRTP frames from the flight loop to a
// Crazyflie. A Device is the raw transport (a Crazyradio dongle or the USB
// cable); Queue schedules frames onto a Device from a single worker goroutine.
package link

// Device is a half-duplex CRTP transport. Every SendPacket is followed by a
// ReadResponse which returns whether the copter acknowledged the frame and
// any payload it piggybacked on the acknowledgement.
type Device interface {
	SendPacket(data []byte) error
	ReadResponse() (bool, []byte, error)
	Close() error
}

// AckFunc is called once per frame, with nil when the copter acknowledged
// it, or with the error that made the queue give up on it.
type AckFunc func(err error)

// Link accepts frames for transmission.
type Link interface {
	Send(packet []byte, ack AckFunc) error
	SendPriority(packet []byte, ack AckFunc) error
	Close() error
}
