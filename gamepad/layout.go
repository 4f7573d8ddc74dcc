package gamepad

import "runtime"

// Layout maps a controller onto the two sticks. The axis fields index the
// device's AxisData.
type Layout struct {
	Name   string
	LeftX  int
	LeftY  int
	RightX int
	RightY int

	// ArmButton is the bit that must be held for the sticks to count as
	// touched. Releasing it releases both sticks.
	ArmButton uint

	// FullRangeThrottle marks a throttle lever that stays where it is put;
	// its whole travel maps to thrust. A sprung stick only uses the upper half.
	FullRangeThrottle bool
}

var DualShock4 = Layout{
	Name:      "DualShock4",
	LeftX:     0,
	LeftY:     1,
	RightX:    3,
	RightY:    4,
	ArmButton: 4, // L1
}

var DualShock4Windows = Layout{
	Name:      "DualShock4",
	LeftX:     0,
	LeftY:     1,
	RightX:    2,
	RightY:    3,
	ArmButton: 4,
}

// same mapping on windows and linux
var HotasX = Layout{
	Name:              "HotasX",
	LeftX:             4,
	LeftY:             2,
	RightX:            0,
	RightY:            1,
	ArmButton:         0, // R1, trigger
	FullRangeThrottle: true,
}

// LayoutByName returns the layout for the running OS.
func LayoutByName(name string) (Layout, error) {
	switch name {
	case "DualShock4":
		if runtime.GOOS == "windows" {
			return DualShock4Windows, nil
		}
		return DualShock4, nil
	case "HotasX":
		return HotasX, nil
	}
	return Layout{}, ErrorUnknownLayout
}

func LayoutNames() []string {
	return []string{"DualShock4", "HotasX"}
}

func (l Layout) maxAxis() int {
	return max(l.LeftX, l.LeftY, l.RightX, l.RightY)
}
