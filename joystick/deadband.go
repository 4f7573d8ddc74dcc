package joystick

// Clamp limits v to [-1, 1].
func Clamp(v float64) float64 {
	return max(-1, min(1, v))
}

// ApplyDeadband zeroes |v| <= d and rescales the remainder so the output
// still covers the whole [-1, 1] range.
func ApplyDeadband(d, v float64) float64 {
	if d <= 0 {
		return v
	}

	a := 1 / (1 - d)
	switch {
	case v < -d:
		return a * (v + d)
	case v > d:
		return a * (v - d)
	}
	return 0
}
