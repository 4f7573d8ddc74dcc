package main

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/mikehamer/crazypilot/commander"
	"github.com/mikehamer/crazypilot/crazyflie"
	"github.com/mikehamer/crazypilot/prefs"
)

func parseValues(args []string) ([4]float32, error) {
	var values [4]float32
	if len(args) != len(values) {
		return values, errors.Errorf("expected 4 values, got %d", len(args))
	}
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg, 32)
		if err != nil {
			return values, errors.Wrapf(err, "value %d", i+1)
		}
		values[i] = float32(v)
	}
	return values, nil
}

// encodeFrame scales normalized stick values with the active settings, or
// only permutes them when raw is set.
func encodeFrame(p *prefs.Preferences, modeIndex int, raw bool, values [4]float32) (*crazyflie.CommanderPacket, error) {
	if modeIndex < 0 {
		modeIndex = p.Mode().Index()
	}
	if raw {
		return commander.EncodeSetpoint(modeIndex, values)
	}

	axes := commander.Axes{LeftX: values[0], LeftY: values[1], RightX: values[2], RightY: values[3]}
	return commander.Encode(modeIndex, axes, p.Active())
}

func encodeCommand(context *cli.Context) error {
	_, p, err := loadPrefs(context)
	if err != nil {
		return err
	}

	values, err := parseValues(context.Args())
	if err != nil {
		return err
	}

	packet, err := encodeFrame(p, context.Int("mode"), context.Bool("raw"), values)
	if err != nil {
		return err
	}

	fmt.Printf("roll %.3f pitch %.3f yaw %.3f thrust %d\n", packet.Roll, packet.Pitch, packet.Yaw, packet.Thrust)
	fmt.Printf("% X\n", packet.Bytes())
	return nil
}
