package crtp

const (
	PortConsole  Port = 0x00
	PortParam    Port = 0x02
	PortSetpoint Port = 0x03
	PortMem      Port = 0x04
	PortLog      Port = 0x05
	PortPosition Port = 0x06
	PortPlatform Port = 0x0D
	PortLink     Port = 0x0F
)

// Acknowledgement payloads the firmware sends when it has nothing to report.
const (
	PortEmpty1 byte = 0xF3
	PortEmpty2 byte = 0xF7
)

// NullPacket is sent to keep the link alive when no setpoint is queued.
var NullPacket = []byte{0xFF}

type Header byte
type Port byte
type Channel byte

// NewHeader builds the first byte of a CRTP frame. The two link bits are left
// clear, which is what the firmware expects from BLE and radio alike.
func NewHeader(port Port, channel Channel) Header {
	return Header(((byte(port) & 0x0F) << 4) | (byte(channel) & 0x03))
}

func HeaderBytes(port Port, channel Channel) byte {
	return byte(NewHeader(port, channel))
}

func (header Header) Channel() Channel {
	return Channel((byte(header) >> 0) & 0x03)
}

func (header Header) Port() Port {
	return Port((byte(header) >> 4) & 0x0F)
}

func (header Header) Link() byte {
	return (byte(header) >> 2) & 0x03
}

// IsEmptyAck reports whether resp is an acknowledgement without payload.
func IsEmptyAck(resp []byte) bool {
	return len(resp) == 0 || resp[0] == PortEmpty1 || resp[0] == PortEmpty2
}
