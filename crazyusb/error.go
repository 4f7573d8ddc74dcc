package crazyusb

import "fmt"

type crtpUsbError uint8

func (e crtpUsbError) Error() string {
	return fmt.Sprintf("crazyusb: %s", crtpUsbErrorString[e])
}

const (
	ErrorDeviceNotFound crtpUsbError = iota
	ErrorMultipleDevicesFound
	ErrorWriteLength
)

var crtpUsbErrorString = map[crtpUsbError]string{
	ErrorDeviceNotFound:       "device not found",
	ErrorMultipleDevicesFound: "multiple crazyflies found",
	ErrorWriteLength:          "incorrect number of bytes written to endpoint",
}
