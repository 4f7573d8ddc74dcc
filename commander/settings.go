package commander

import "math"

// Limits of the user tunable sensitivity values.
const (
	MinPitchRate float32 = 0
	MaxPitchRate float32 = 80
	MinYawRate   float32 = 0
	MaxYawRate   float32 = 500
	MinThrust    float32 = 0
	MaxThrust    float32 = 100
)

// Settings scale normalized stick values into a setpoint. PitchRate is the
// maximum pitch and roll angle in degrees, YawRate the maximum yaw rate in
// degrees per second and MaxThrust a percentage of full thrust.
type Settings struct {
	PitchRate float32 `yaml:"pitchRate" json:"pitchRate"`
	YawRate   float32 `yaml:"yawRate" json:"yawRate"`
	MaxThrust float32 `yaml:"maxThrust" json:"maxThrust"`
}

// clamp maps NaN to lo; min and max would pass it through.
func clamp(v, lo, hi float32) float32 {
	if v != v {
		return lo
	}
	return max(lo, min(hi, v))
}

func finite(v float32) bool {
	return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
}

// NewSettings returns settings clamped to their limits.
func NewSettings(pitchRate, yawRate, maxThrust float32) Settings {
	return Settings{PitchRate: pitchRate, YawRate: yawRate, MaxThrust: maxThrust}.Clamped()
}

func (s Settings) Clamped() Settings {
	return Settings{
		PitchRate: clamp(s.PitchRate, MinPitchRate, MaxPitchRate),
		YawRate:   clamp(s.YawRate, MinYawRate, MaxYawRate),
		MaxThrust: clamp(s.MaxThrust, MinThrust, MaxThrust),
	}
}

func (s Settings) Finite() bool {
	return finite(s.PitchRate) && finite(s.YawRate) && finite(s.MaxThrust)
}

// Valid reports whether every value is finite and within its limits.
func (s Settings) Valid() bool {
	return s.Finite() && s == s.Clamped()
}

func (s *Settings) SetPitchRate(v float32) {
	s.PitchRate = clamp(v, MinPitchRate, MaxPitchRate)
}

func (s *Settings) SetYawRate(v float32) {
	s.YawRate = clamp(v, MinYawRate, MaxYawRate)
}

func (s *Settings) SetMaxThrust(v float32) {
	s.MaxThrust = clamp(v, MinThrust, MaxThrust)
}

// Sensitivity is a named settings preset.
type Sensitivity string

const (
	Slow   Sensitivity = "slow"
	Fast   Sensitivity = "fast"
	Custom Sensitivity = "custom"
)

var sensitivities = []Sensitivity{Slow, Fast, Custom}

var defaultSettings = map[Sensitivity]Settings{
	Slow:   {PitchRate: 40, YawRate: 150, MaxThrust: 80},
	Fast:   {PitchRate: 75, YawRate: 200, MaxThrust: 90},
	Custom: {PitchRate: 60, YawRate: 200, MaxThrust: 85},
}

func SensitivityForIndex(index int) (Sensitivity, error) {
	if index < 0 || index >= len(sensitivities) {
		return "", ErrorInvalidSensitivity
	}
	return sensitivities[index], nil
}

func ParseSensitivity(name string) (Sensitivity, error) {
	for _, s := range sensitivities {
		if string(s) == name {
			return s, nil
		}
	}
	return "", ErrorInvalidSensitivity
}

func Sensitivities() []Sensitivity {
	return append([]Sensitivity(nil), sensitivities...)
}

func (s Sensitivity) Index() int {
	for i, v := range sensitivities {
		if v == s {
			return i
		}
	}
	return -1
}

// Editable reports whether the user may change the preset's values.
func (s Sensitivity) Editable() bool {
	return s == Custom
}

func (s Sensitivity) DefaultSettings() Settings {
	return defaultSettings[s]
}
