// Package crazyusb talks CRTP to a Crazyflie plugged in with a USB cable.
// The cable link has no radio acknowledgements: every written frame counts
// as delivered, and a read timeout means the copter had nothing to say.
package crazyusb

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/gousb"
	"github.com/mikehamer/crazypilot/crtp"
	pkgerrors "github.com/pkg/errors"
)

const (
	vendorID  = 0x0483
	productID = 0x5740

	controlTimeout  = 200 * time.Millisecond
	transferTimeout = 20 * time.Millisecond
	vendorOut       = gousb.ControlOut | gousb.ControlVendor | gousb.ControlDevice
)

type Device struct {
	lock     sync.Mutex
	context  *gousb.Context
	device   *gousb.Device
	intfDone func()
	dataOut  *gousb.OutEndpoint
	dataIn   *gousb.InEndpoint
}

func isCrazyflie(desc *gousb.DeviceDesc) bool {
	return desc.Vendor == vendorID && desc.Product == productID
}

// CountConnectedCrazyflies returns how many copters are plugged in.
func CountConnectedCrazyflies() int {
	usbContext := gousb.NewContext()
	defer usbContext.Close()

	count := 0
	usbContext.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if isCrazyflie(desc) {
			count++
		}
		return false
	})
	return count
}

// Open claims the single Crazyflie connected over USB and enables CRTP on it.
func Open() (*Device, error) {
	usbContext := gousb.NewContext()

	devices, err := usbContext.OpenDevices(isCrazyflie)
	if err != nil && len(devices) == 0 {
		usbContext.Close()
		return nil, pkgerrors.Wrap(err, "crazyusb: listing devices")
	}
	if len(devices) == 0 {
		usbContext.Close()
		return nil, ErrorDeviceNotFound
	}
	if len(devices) > 1 {
		for _, dev := range devices {
			dev.Close()
		}
		usbContext.Close()
		return nil, ErrorMultipleDevicesFound
	}

	dev := devices[0]
	dev.ControlTimeout = controlTimeout
	dev.SetAutoDetach(true)

	intf, done, err := dev.DefaultInterface()
	if err != nil {
		dev.Close()
		usbContext.Close()
		return nil, pkgerrors.Wrap(err, "crazyusb: claiming interface")
	}

	dOut, err := intf.OutEndpoint(1)
	if err == nil {
		var dIn *gousb.InEndpoint
		dIn, err = intf.InEndpoint(1)
		if err == nil {
			d := &Device{
				context:  usbContext,
				device:   dev,
				intfDone: done,
				dataOut:  dOut,
				dataIn:   dIn,
			}

			// toggling resets the firmware side of the link
			if err = d.setCRTP(false); err == nil {
				err = d.setCRTP(true)
			}
			if err == nil {
				return d, nil
			}
		}
	}

	done()
	dev.Close()
	usbContext.Close()
	return nil, pkgerrors.Wrap(err, "crazyusb: opening device")
}

func (d *Device) setCRTP(enable bool) error {
	value := uint16(0)
	if enable {
		value = 1
	}
	_, err := d.device.Control(vendorOut, 0x01, 0x01, value, nil)
	return err
}

func (d *Device) Close() error {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.device == nil {
		return nil
	}
	d.setCRTP(false)
	d.intfDone()
	err := d.device.Close()
	d.context.Close()
	d.device = nil
	return err
}

func (d *Device) SendPacket(data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), transferTimeout)
	defer cancel()

	length, err := d.dataOut.WriteContext(ctx, data)
	if err != nil {
		return err
	}
	if len(data) != length {
		return ErrorWriteLength
	}
	return nil
}

func (d *Device) ReadResponse() (bool, []byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), transferTimeout)
	defer cancel()

	resp := make([]byte, 64)
	length, err := d.dataIn.ReadContext(ctx, resp)
	return readResult(resp[:max(length, 0)], err)
}

// readResult maps a USB read onto link semantics. A timeout is the copter
// having nothing queued, which we report as an empty acknowledgement.
func readResult(resp []byte, err error) (bool, []byte, error) {
	if isTimeout(err) {
		return true, []byte{crtp.PortEmpty1}, nil
	}
	if err != nil {
		return false, nil, err
	}
	return true, resp, nil
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, gousb.TransferTimedOut) ||
		errors.Is(err, gousb.ErrorTimeout) ||
		errors.Is(err, gousb.TransferCancelled)
}
