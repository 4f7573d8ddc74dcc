package commander

import (
	"math"

	"github.com/mikehamer/crazypilot/crazyflie"
)

const maxThrustValue = math.MaxUint16

// Axes is one sample of every input channel.
type Axes struct {
	LeftX, LeftY   float32
	RightX, RightY float32
	TiltX, TiltY   float32
	HasTilt        bool
}

func (a Axes) Value(axis Axis) float32 {
	switch axis {
	case LeftX:
		return a.LeftX
	case LeftY:
		return a.LeftY
	case RightX:
		return a.RightX
	case RightY:
		return a.RightY
	case TiltX:
		return a.TiltX
	case TiltY:
		return a.TiltY
	}
	return 0
}

// Controls are the normalized flight inputs, before scaling.
type Controls struct {
	Pitch, Roll, Yaw, Thrust float32
}

func (c Controls) finite() bool {
	return finite(c.Pitch) && finite(c.Roll) && finite(c.Yaw) && finite(c.Thrust)
}

// Setpoint is a scaled command, ready to be packed.
type Setpoint struct {
	Roll   float32 `json:"roll"`
	Pitch  float32 `json:"pitch"`
	Yaw    float32 `json:"yaw"`
	Thrust uint16  `json:"thrust"`
}

func (s Setpoint) Packet() *crazyflie.CommanderPacket {
	return crazyflie.NewCommanderPacket(s.Roll, s.Pitch, s.Yaw, s.Thrust)
}

func (s Setpoint) Bytes() []byte {
	return s.Packet().Bytes()
}

// Scale converts normalized controls into angles, rates and a raw thrust.
// Pitch is inverted: pushing the stick forward pitches the nose down.
func (s Settings) Scale(c Controls) Setpoint {
	return Setpoint{
		Roll:   c.Roll * s.PitchRate,
		Pitch:  -c.Pitch * s.PitchRate,
		Yaw:    c.Yaw * s.YawRate,
		Thrust: ThrustValue(float64(c.Thrust) * maxThrustValue * float64(s.MaxThrust) / 100),
	}
}

// ThrustValue clamps a raw thrust to the range of the wire field.
func ThrustValue(v float64) uint16 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= maxThrustValue {
		return maxThrustValue
	}
	return uint16(v)
}

// Encode routes the axes through the mode, scales them and packs the result.
func Encode(modeIndex int, axes Axes, settings Settings) (*crazyflie.CommanderPacket, error) {
	mode, err := ParseMode(modeIndex)
	if err != nil {
		return nil, err
	}
	if !settings.Valid() {
		return nil, ErrorInvalidSettings
	}
	controls, err := mode.Route(axes)
	if err != nil {
		return nil, err
	}
	return settings.Scale(controls).Packet(), nil
}

// Permute assigns already scaled values, given in LeftX, LeftY, RightX,
// RightY order, to the setpoint fields the mode routes them to.
func Permute(mode ControlMode, values [4]float32) (Setpoint, error) {
	controls, err := mode.Route(Axes{
		LeftX:  values[0],
		LeftY:  values[1],
		RightX: values[2],
		RightY: values[3],
	})
	if err != nil {
		return Setpoint{}, err
	}
	return Setpoint{
		Roll:   controls.Roll,
		Pitch:  controls.Pitch,
		Yaw:    controls.Yaw,
		Thrust: ThrustValue(float64(controls.Thrust)),
	}, nil
}

// EncodeSetpoint is Permute for a raw mode index, packed into a frame.
func EncodeSetpoint(modeIndex int, values [4]float32) (*crazyflie.CommanderPacket, error) {
	mode, err := ParseMode(modeIndex)
	if err != nil {
		return nil, err
	}
	sp, err := Permute(mode, values)
	if err != nil {
		return nil, err
	}
	return sp.Packet(), nil
}
