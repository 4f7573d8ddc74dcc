package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/mikehamer/crazypilot/commander"
)

var axisNames = map[commander.Axis]string{
	commander.LeftX:  "left x",
	commander.LeftY:  "left y",
	commander.RightX: "right x",
	commander.RightY: "right y",
	commander.TiltX:  "tilt x",
	commander.TiltY:  "tilt y",
}

func modesCommand(context *cli.Context) error {
	for i := 0; i < commander.NumModes; i++ {
		mode := commander.ControlMode(i)
		r := mode.Sources()
		fmt.Printf("%d %-5s  pitch: %-7s  roll: %-7s  yaw: %-7s  thrust: %-7s  sticks: %q\n",
			i, mode, axisNames[r.Pitch], axisNames[r.Roll], axisNames[r.Yaw], axisNames[r.Thrust], mode.Titles())
	}
	return nil
}
