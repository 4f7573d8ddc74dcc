package crazyflie

import "fmt"

type crazyflieError uint8

func (e crazyflieError) Error() string {
	return fmt.Sprintf("crazyflie: %s", crazyflieErrorString[e])
}

const (
	ErrorNoResponse crazyflieError = iota
	ErrorInvalidSetpoint
	ErrorDisconnected
	ErrorUnknownTarget
	ErrorBootloaderInfo
	ErrorFlashDataTooLarge
	ErrorFlashFailed
	ErrorFlashVerify
)

var crazyflieErrorString = map[crazyflieError]string{
	ErrorNoResponse:        "not responding",
	ErrorInvalidSetpoint:   "setpoint contains a non-finite value",
	ErrorDisconnected:      "not connected",
	ErrorUnknownTarget:     "unknown target CPU",
	ErrorBootloaderInfo:    "bootloader reported an unusable flash layout",
	ErrorFlashDataTooLarge: "image does not fit in flash",
	ErrorFlashFailed:       "bootloader failed to write flash",
	ErrorFlashVerify:       "flash content differs from the image",
}
