package crtp

// Request is a packet the host sends. Bytes returns the whole frame, header
// included.
type Request interface {
	Port() Port
	Bytes() []byte
}

// Response is a packet decoded from an acknowledgement payload.
// LoadFromBytes must leave the packet untouched when it returns an error.
type Response interface {
	Port() Port
	LoadFromBytes([]byte) error
}

// Decode loads resp into p after checking that it arrived on p's port.
func Decode(resp []byte, p Response) error {
	if len(resp) == 0 {
		return ErrorPacketIncorrectLength
	}
	if Header(resp[0]).Port() != p.Port() {
		return ErrorPacketIncorrectType
	}
	return p.LoadFromBytes(resp)
}
