package crazyflie

import (
	"strings"

	"github.com/mikehamer/crazypilot/crtp"
)

// Bootloader traffic goes to the link port on channel 3 with both link bits
// set, which makes the header byte 0xFF.
const bootloaderHeader byte = 0xFF

const (
	cmdGetInfo     byte = 0x10
	cmdLoadBuffer  byte = 0x14
	cmdWriteFlash  byte = 0x18
	cmdFlashStatus byte = 0x19
	cmdReadFlash   byte = 0x1C
	cmdReset       byte = 0xF0
	cmdResetInit   byte = 0xFF
)

// TargetCPU is one of the two processors of a Crazyflie 2.
type TargetCPU uint8

const (
	TargetNRF51 TargetCPU = iota
	TargetSTM32
)

var cpuName = map[TargetCPU]string{TargetNRF51: "nrf51", TargetSTM32: "stm32"}

func (t TargetCPU) String() string {
	if name, ok := cpuName[t]; ok {
		return name
	}
	return "unknown"
}

// id is the target byte of bootloader commands.
func (t TargetCPU) id() byte {
	return 0xFE | byte(t)
}

// ParseTarget accepts "stm32" and "nrf51", in any case.
func ParseTarget(name string) (TargetCPU, error) {
	for t, n := range cpuName {
		if strings.EqualFold(n, name) {
			return t, nil
		}
	}
	return 0, ErrorUnknownTarget
}

func isBootloaderReply(b []byte, target byte, commands ...byte) bool {
	if len(b) < 3 || b[0] != bootloaderHeader || b[1] != target {
		return false
	}
	for _, c := range commands {
		if b[2] == c {
			return true
		}
	}
	return false
}

// ---- BOOTLOADER REQUEST: RESET INIT ----
type BootloaderRequestResetInit struct{}

func (p *BootloaderRequestResetInit) Port() crtp.Port {
	return crtp.PortLink
}

func (p *BootloaderRequestResetInit) Bytes() []byte {
	return []byte{bootloaderHeader, TargetNRF51.id(), cmdResetInit}
}

// ---- BOOTLOADER REQUEST: RESET ----
type BootloaderRequestReset struct {
	ToFirmware bool
}

func (p *BootloaderRequestReset) Port() crtp.Port {
	return crtp.PortLink
}

func (p *BootloaderRequestReset) Bytes() []byte {
	mode := byte(0x00) // bootloader
	if p.ToFirmware {
		mode = 0x01
	}
	return []byte{bootloaderHeader, TargetNRF51.id(), cmdReset, mode}
}

// ---- BOOTLOADER RESPONSE: ADDRESS ----
// The reply to a reset init carries the low bytes of the radio address the
// bootloader will listen on.
type BootloaderResponseAddress struct {
	NewAddress uint64
}

func (p *BootloaderResponseAddress) Port() crtp.Port {
	return crtp.PortLink
}

func (p *BootloaderResponseAddress) LoadFromBytes(b []byte) error {
	if !isBootloaderReply(b, TargetNRF51.id(), cmdResetInit) {
		return crtp.ErrorPacketIncorrectType
	}
	if len(b) < 7 {
		return crtp.ErrorPacketIncorrectLength
	}

	p.NewAddress = uint64(b[3]) | uint64(b[4])<<8 | uint64(b[5])<<16 | uint64(b[6])<<24 | uint64(0xB1)<<32
	return nil
}
