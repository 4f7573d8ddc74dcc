package crazyflie

import (
	"bytes"
	"encoding/binary"

	"github.com/mikehamer/crazypilot/crtp"
	"github.com/mikehamer/crazypilot/link"
)

func putUint16s(b []byte, values ...int) []byte {
	for _, v := range values {
		b = binary.LittleEndian.AppendUint16(b, uint16(v))
	}
	return b
}

func getUint16(b []byte) int {
	return int(binary.LittleEndian.Uint16(b))
}

// ---- FLASH REQUEST: GET INFO ----
type FlashRequestGetInfo struct {
	Target TargetCPU
}

func (p *FlashRequestGetInfo) Port() crtp.Port {
	return crtp.PortLink
}

func (p *FlashRequestGetInfo) Bytes() []byte {
	return []byte{bootloaderHeader, p.Target.id(), cmdGetInfo}
}

// ---- FLASH RESPONSE: GET INFO ----
type FlashResponseGetInfo struct {
	Target         TargetCPU
	PageSize       int
	NumBuffPages   int
	NumFlashPages  int
	StartFlashPage int
}

func (p *FlashResponseGetInfo) Port() crtp.Port {
	return crtp.PortLink
}

func (p *FlashResponseGetInfo) LoadFromBytes(b []byte) error {
	if !isBootloaderReply(b, p.Target.id(), cmdGetInfo) {
		return crtp.ErrorPacketIncorrectType
	}
	if len(b) < 11 {
		return crtp.ErrorPacketIncorrectLength
	}

	p.PageSize = getUint16(b[3:5])
	p.NumBuffPages = getUint16(b[5:7])
	p.NumFlashPages = getUint16(b[7:9])
	p.StartFlashPage = getUint16(b[9:11])
	return nil
}

// Capacity is the number of bytes available to firmware.
func (p *FlashResponseGetInfo) Capacity() int {
	return (p.NumFlashPages - p.StartFlashPage) * p.PageSize
}

// ---- FLASH REQUEST: LOAD BUFFER PAGE ----
type FlashRequestLoadBufferPage struct {
	Target        TargetCPU
	BufferPageNum int
	BufferPageIdx int
	Data          []byte
}

func (p *FlashRequestLoadBufferPage) Port() crtp.Port {
	return crtp.PortLink
}

func (p *FlashRequestLoadBufferPage) Bytes() []byte {
	packet := []byte{bootloaderHeader, p.Target.id(), cmdLoadBuffer}
	packet = putUint16s(packet, p.BufferPageNum, p.BufferPageIdx)
	return append(packet, p.Data...)
}

// MaxDataSize is what fits in one frame after the 7 byte command prefix.
func (p *FlashRequestLoadBufferPage) MaxDataSize() int {
	return link.MaxPacketSize - 7
}

// ---- FLASH REQUEST: WRITE LOADED PAGES ----
// The buffer pages, starting from page 0, are written to flash from
// FlashPage on.
type FlashRequestWriteFlash struct {
	Target    TargetCPU
	FlashPage int
	PageCount int
}

func (p *FlashRequestWriteFlash) Port() crtp.Port {
	return crtp.PortLink
}

func (p *FlashRequestWriteFlash) Bytes() []byte {
	packet := []byte{bootloaderHeader, p.Target.id(), cmdWriteFlash}
	return putUint16s(packet, 0, p.FlashPage, p.PageCount)
}

// ---- FLASH REQUEST: FLASHING STATUS ----
type FlashRequestStatus struct {
	Target TargetCPU
}

func (p *FlashRequestStatus) Port() crtp.Port {
	return crtp.PortLink
}

func (p *FlashRequestStatus) Bytes() []byte {
	return []byte{bootloaderHeader, p.Target.id(), cmdFlashStatus}
}

// ---- FLASH RESPONSE: FLASHING STATUS ----
// Sent after a write completes and in reply to a status request. Replies
// for a write still in progress do not decode.
type FlashResponseStatus struct {
	Target    TargetCPU
	ErrorCode uint8
}

func (p *FlashResponseStatus) Port() crtp.Port {
	return crtp.PortLink
}

func (p *FlashResponseStatus) LoadFromBytes(b []byte) error {
	if !isBootloaderReply(b, p.Target.id(), cmdWriteFlash, cmdFlashStatus) {
		return crtp.ErrorPacketIncorrectType
	}
	if len(b) < 5 {
		return crtp.ErrorPacketIncorrectLength
	}
	if b[3] == 0 {
		return crtp.ErrorPacketIncorrectType
	}

	p.ErrorCode = b[4]
	return nil
}

// ---- FLASH REQUEST: READ FLASH ----
type FlashRequestRead struct {
	Target      TargetCPU
	PageIndex   int
	PageAddress int
}

func (p *FlashRequestRead) Port() crtp.Port {
	return crtp.PortLink
}

func (p *FlashRequestRead) Bytes() []byte {
	packet := []byte{bootloaderHeader, p.Target.id(), cmdReadFlash}
	return putUint16s(packet, p.PageIndex, p.PageAddress)
}

// ---- FLASH RESPONSE: READ FLASH ----
type FlashResponseRead struct {
	Target      TargetCPU
	PageIndex   int
	PageAddress int
	Data        []byte
}

func (p *FlashResponseRead) Port() crtp.Port {
	return crtp.PortLink
}

func (p *FlashResponseRead) LoadFromBytes(b []byte) error {
	if !isBootloaderReply(b, p.Target.id(), cmdReadFlash) {
		return crtp.ErrorPacketIncorrectType
	}
	if len(b) < 7 {
		return crtp.ErrorPacketIncorrectLength
	}
	// a late reply to an earlier read
	if !bytes.Equal(b[3:7], putUint16s(nil, p.PageIndex, p.PageAddress)) {
		return crtp.ErrorPacketIncorrectType
	}

	p.Data = append([]byte(nil), b[7:]...)
	return nil
}
