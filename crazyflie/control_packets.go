package crazyflie

import (
	"encoding/binary"
	"math"

	"github.com/mikehamer/crazypilot/crtp"
)

// CommanderPacketSize is the wire size of a commander frame: header, three
// float32 angles/rates and a uint16 thrust, packed without padding.
const CommanderPacketSize = 1 + 3*4 + 2

// CommanderHeader is the CRTP header of a commander frame (setpoint port,
// channel 0).
var CommanderHeader = crtp.NewHeader(crtp.PortSetpoint, 0)

// ---- COMMANDER: LEGACY RPYT SETPOINT ----
type CommanderPacket struct {
	Header crtp.Header
	Roll   float32
	Pitch  float32
	Yaw    float32
	Thrust uint16
}

func NewCommanderPacket(roll, pitch, yaw float32, thrust uint16) *CommanderPacket {
	return &CommanderPacket{
		Header: CommanderHeader,
		Roll:   roll,
		Pitch:  pitch,
		Yaw:    yaw,
		Thrust: thrust,
	}
}

var (
	_ crtp.Request  = (*CommanderPacket)(nil)
	_ crtp.Response = (*CommanderPacket)(nil)
)

func (p *CommanderPacket) Port() crtp.Port {
	return p.Header.Port()
}

func (p *CommanderPacket) Channel() crtp.Channel {
	return p.Header.Channel()
}

// Bytes returns the complete frame, header included, little-endian.
func (p *CommanderPacket) Bytes() []byte {
	packet := make([]byte, CommanderPacketSize)
	packet[0] = byte(p.Header)
	copy(packet[1:5], float32ToBytes(p.Roll))
	copy(packet[5:9], float32ToBytes(p.Pitch))
	copy(packet[9:13], float32ToBytes(p.Yaw))
	copy(packet[13:15], uint16ToBytes(p.Thrust))
	return packet
}

func (p *CommanderPacket) LoadFromBytes(b []byte) error {
	if len(b) != CommanderPacketSize {
		return crtp.ErrorPacketIncorrectLength
	}
	header := crtp.Header(b[0])
	if header.Port() != crtp.PortSetpoint || header.Channel() != 0 {
		return crtp.ErrorPacketIncorrectType
	}

	p.Header = header
	p.Roll = bytesToFloat32(b[1:5])
	p.Pitch = bytesToFloat32(b[5:9])
	p.Yaw = bytesToFloat32(b[9:13])
	p.Thrust = binary.LittleEndian.Uint16(b[13:15])
	return nil
}

// Valid reports whether every float field is finite.
func (p *CommanderPacket) Valid() bool {
	for _, v := range []float32{p.Roll, p.Pitch, p.Yaw} {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
