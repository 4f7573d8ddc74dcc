// Package crazyradio drives a Crazyradio PA USB dongle. A Radio talks to a
// single copter at a time and satisfies link.Device.
package crazyradio

import (
	"context"
	"sync"
	"time"

	"github.com/google/gousb"
	"github.com/pkg/errors"
)

const (
	controlTimeout  = 250 * time.Millisecond
	transferTimeout = 50 * time.Millisecond
	vendorOut       = gousb.ControlOut | gousb.ControlVendor | gousb.ControlDevice
)

type Radio struct {
	lock     sync.Mutex
	context  *gousb.Context
	device   *gousb.Device
	intfDone func()
	dataOut  *gousb.OutEndpoint
	dataIn   *gousb.InEndpoint

	channel uint8
	address uint64
}

// Open claims the first Crazyradio found and puts it in its default state:
// 2M, channel 80, the factory address, full power, 3 retries.
func Open() (*Radio, error) {
	usbContext := gousb.NewContext()

	dev, err := usbContext.OpenDeviceWithVIDPID(vendorID, productID)
	if err != nil {
		usbContext.Close()
		return nil, errors.Wrap(err, "crazyradio: opening device")
	}
	if dev == nil {
		usbContext.Close()
		return nil, ErrorDeviceNotFound
	}
	dev.ControlTimeout = controlTimeout
	dev.SetAutoDetach(true)

	intf, done, err := dev.DefaultInterface()
	if err != nil {
		dev.Close()
		usbContext.Close()
		return nil, errors.Wrap(err, "crazyradio: claiming interface")
	}

	// open the endpoint for transfers out
	dOut, err := intf.OutEndpoint(1)
	if err != nil {
		done()
		dev.Close()
		usbContext.Close()
		return nil, errors.Wrap(err, "crazyradio: opening out endpoint")
	}

	// open the endpoint for transfers in
	dIn, err := intf.InEndpoint(1)
	if err != nil {
		done()
		dev.Close()
		usbContext.Close()
		return nil, errors.Wrap(err, "crazyradio: opening in endpoint")
	}

	radio := &Radio{
		context:  usbContext,
		device:   dev,
		intfDone: done,
		dataOut:  dOut,
		dataIn:   dIn,
	}

	for _, step := range []func() error{
		func() error { return radio.SetDatarate(Datarate2MPS) },
		func() error { return radio.SetChannel(80) },
		func() error { return radio.SetAddress(DefaultAddress) },
		func() error { return radio.SetPower(Power0DBM) },
		func() error { return radio.SetArc(3) },
		func() error { return radio.SetArdBytes(32) },
	} {
		if err := step(); err != nil {
			radio.Close()
			return nil, err
		}
	}
	return radio, nil
}

// Configure points the radio at a copter.
func (radio *Radio) Configure(channel uint8, address uint64, datarate Datarate) error {
	if err := radio.SetDatarate(datarate); err != nil {
		return err
	}
	if err := radio.SetChannel(channel); err != nil {
		return err
	}
	return radio.SetAddress(address)
}

func (radio *Radio) Close() error {
	radio.lock.Lock()
	defer radio.lock.Unlock()

	if radio.device == nil {
		return nil
	}
	radio.intfDone()
	err := radio.device.Close()
	radio.context.Close()
	radio.device = nil
	return err
}

func (radio *Radio) control(command radioCommand, value uint16, data []byte) error {
	radio.lock.Lock()
	defer radio.lock.Unlock()

	_, err := radio.device.Control(vendorOut, uint8(command), value, 0, data)
	return err
}

func (radio *Radio) SetChannel(channel uint8) error {
	if channel > 125 {
		return ErrorInvalidChannel
	}
	if err := radio.control(SET_RADIO_CHANNEL, uint16(channel), nil); err != nil {
		return err
	}
	radio.channel = channel
	return nil
}

func (radio *Radio) Channel() uint8 {
	return radio.channel
}

func (radio *Radio) SetDatarate(datarate Datarate) error {
	if datarate > Datarate2MPS {
		return ErrorInvalidDatarate
	}
	return radio.control(SET_DATA_RATE, uint16(datarate), nil)
}

func (radio *Radio) SetPower(power Power) error {
	if power > Power0DBM {
		return ErrorInvalidPower
	}
	return radio.control(SET_RADIO_POWER, uint16(power), nil)
}

func (radio *Radio) SetArc(arc uint8) error {
	if arc > 15 {
		return ErrorInvalidArc
	}
	return radio.control(SET_RADIO_ARC, uint16(arc), nil)
}

func (radio *Radio) SetArdTime(delay uint8) error {
	// Auto Retransmit Delay:
	// 0x00 - Wait 250uS
	// 0x01 - Wait 500uS
	// ........
	// 0x0F - Wait 4000uS
	if delay > 0x0F {
		return ErrorInvalidArdTime
	}
	return radio.control(SET_RADIO_ARD, uint16(delay), nil)
}

func (radio *Radio) SetArdBytes(nbytes uint8) error {
	// 0x00 - 0 Byte
	// ........
	// 0x20 - 32 Bytes
	if nbytes > 0x20 {
		return ErrorInvalidArdBytes
	}
	return radio.control(SET_RADIO_ARD, uint16(0x80|uint16(nbytes)), nil)
}

func (radio *Radio) SetAckEnable(enable bool) error {
	value := uint16(0)
	if enable {
		value = 1
	}
	return radio.control(SET_ACK_ENABLE, value, nil)
}

func (radio *Radio) SetAddress(address uint64) error {
	a, err := addressBytes(address)
	if err != nil {
		return err
	}
	if radio.address == address {
		return nil
	}
	if err := radio.control(SET_RADIO_ADDRESS, 0, a); err != nil {
		return err
	}
	radio.address = address
	return nil
}

func (radio *Radio) Address() uint64 {
	return radio.address
}

// addressBytes lays out a 40 bit radio address most significant byte first.
func addressBytes(address uint64) ([]byte, error) {
	if address>>40 != 0 {
		return nil, ErrorInvalidAddress
	}

	a := make([]byte, 5)
	a[4] = uint8((address >> 0) & 0xFF)
	a[3] = uint8((address >> 8) & 0xFF)
	a[2] = uint8((address >> 16) & 0xFF)
	a[1] = uint8((address >> 24) & 0xFF)
	a[0] = uint8((address >> 32) & 0xFF)
	return a, nil
}

func (radio *Radio) SendPacket(data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), transferTimeout)
	defer cancel()

	length, err := radio.dataOut.WriteContext(ctx, data)
	if err != nil {
		return err
	}
	if len(data) != length {
		return ErrorWriteLength
	}
	return nil
}

func (radio *Radio) ReadResponse() (bool, []byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), transferTimeout)
	defer cancel()

	resp := make([]byte, 64)
	length, err := radio.dataIn.ReadContext(ctx, resp)
	if err != nil {
		return false, nil, err
	}
	if length < 1 {
		return false, nil, nil
	}
	return parseAck(resp[:length])
}

// parseAck splits a radio status frame.
//
//	uint8_t resp : 1
//	uint8_t power detector : 1
//	uint8_t reserved : 2
//	uint8_t retransmission count : 4
//	uint8_t ackdata[0:32 bytes]
func parseAck(frame []byte) (bool, []byte, error) {
	ackReceived := (frame[0] & 0x01) != 0
	return ackReceived, frame[1:], nil
}
