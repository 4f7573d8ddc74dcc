package crazyradio

import "strings"

const (
	vendorID  = 0x1915
	productID = 0x7777
)

// DefaultAddress is the factory address of every Crazyflie.
const DefaultAddress uint64 = 0xE7E7E7E7E7

// Transmission datarate enum
type Datarate uint16

const (
	Datarate250KPS Datarate = iota
	Datarate1MPS
	Datarate2MPS
)

// ParseDatarate accepts the spellings used in Crazyflie URIs: 250K, 1M, 2M.
func ParseDatarate(s string) (Datarate, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "250K", "250KPS":
		return Datarate250KPS, nil
	case "1M", "1MPS":
		return Datarate1MPS, nil
	case "2M", "2MPS", "":
		return Datarate2MPS, nil
	}
	return 0, ErrorInvalidDatarate
}

func (d Datarate) String() string {
	switch d {
	case Datarate250KPS:
		return "250K"
	case Datarate1MPS:
		return "1M"
	case Datarate2MPS:
		return "2M"
	}
	return "invalid"
}

// Transmission power enum
type Power uint16

const (
	PowerM18DBM Power = iota
	PowerM12DBM
	PowerM6DBM
	Power0DBM
)

// Radio commands enum
type radioCommand uint8

const (
	SET_RADIO_CHANNEL radioCommand = 0x01
	SET_RADIO_ADDRESS radioCommand = 0x02
	SET_DATA_RATE     radioCommand = 0x03
	SET_RADIO_POWER   radioCommand = 0x04
	SET_RADIO_ARD     radioCommand = 0x05
	SET_RADIO_ARC     radioCommand = 0x06
	SET_ACK_ENABLE    radioCommand = 0x10
	SET_CONT_CARRIER  radioCommand = 0x20
	SCANN_CHANNELS    radioCommand = 0x21
	LAUNCH_BOOTLOADER radioCommand = 0xFF
)
