package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/mikehamer/crazypilot/firmware"
	"github.com/mikehamer/crazypilot/gamepad"
)

var linkFlags = append([]cli.Flag{
	cli.StringFlag{
		Name:  "link",
		Value: "radio",
		Usage: "How to reach the Crazyflie: radio, usb or dry-run",
	},
}, radioFlags...)

var radioFlags = []cli.Flag{
	cli.UintFlag{
		Name:  "channel",
		Value: 80,
		Usage: "Set the radio channel (default is channel: 80)",
	},
	cli.StringFlag{
		Name:  "address",
		Value: "0xE7E7E7E7E7",
		Usage: "Set the radio address (default is address: E7E7E7E7E7)",
	},
	cli.StringFlag{
		Name:  "datarate",
		Value: "2M",
		Usage: "Set the radio datarate: 250K, 1M or 2M",
	},
}

var gamepadFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "gamepad",
		Value: -1,
		Usage: "Fly with the gamepad of this ID (see the gamepads command)",
	},
	cli.StringFlag{
		Name:  "layout",
		Value: "DualShock4",
		Usage: "Gamepad layout: DualShock4 or HotasX",
	},
}

func flags(groups ...[]cli.Flag) []cli.Flag {
	var all []cli.Flag
	for _, g := range groups {
		all = append(all, g...)
	}
	return all
}

var COMMANDS = []cli.Command{
	{
		Name:   "fly",
		Usage:  "Fly with a gamepad",
		Flags:  flags(linkFlags, gamepadFlags),
		Action: flyCommand,
	},

	{
		Name:  "serve",
		Usage: "Start the HTTP/websocket server and fly from its clients",
		Flags: flags(linkFlags, gamepadFlags, []cli.Flag{
			cli.UintFlag{
				Name:  "port, p",
				Value: 8000,
				Usage: "HTTP Listenning port",
			},
			cli.StringFlag{
				Name:  "static, s",
				Value: "",
				Usage: "Optional static folder. Served on /static with index.html accessible on /",
			},
		}),
		Action: serveCommand,
	},

	{
		Name:      "encode",
		Usage:     "Print the commander frame for four stick values",
		ArgsUsage: "<left x> <left y> <right x> <right y>",
		Flags: []cli.Flag{
			cli.IntFlag{
				Name:  "mode, m",
				Value: -1,
				Usage: "Control mode index (default is the stored mode)",
			},
			cli.BoolFlag{
				Name:  "raw, r",
				Usage: "Values are already scaled; only permute them",
			},
		},
		Action: encodeCommand,
	},

	{
		Name:   "modes",
		Usage:  "List the control modes and their stick assignment",
		Action: modesCommand,
	},

	{
		Name:   "gamepads",
		Usage:  "List connected gamepads and the known layouts",
		Action: gamepadsCommand,
	},

	{
		Name:      "flash",
		Usage:     "Flash new firmware over the radio",
		ArgsUsage: "<release.zip | image.bin>",
		Flags: flags(radioFlags, []cli.Flag{
			cli.StringFlag{
				Name:  "target, t",
				Usage: "CPU a bare image is written to: stm32 or nrf51",
			},
			cli.StringFlag{
				Name:  "platform",
				Value: firmware.DefaultPlatform,
				Usage: "Platform whose images are taken from a release",
			},
			cli.StringFlag{
				Name:  "release, r",
				Usage: "Download and flash a published release (tag or \"latest\")",
			},
			cli.BoolFlag{
				Name:  "list",
				Usage: "List the published releases",
			},
			cli.BoolFlag{
				Name:  "verify",
				Usage: "Read the firmware back after writing it",
			},
		}),
		Action: flashCommand,
	},

	{
		Name:   "configure",
		Usage:  "Edit the control mode and sensitivity preferences",
		Action: configureCommand,
	},
}

func gamepadsCommand(context *cli.Context) error {
	found := gamepad.List()
	if len(found) == 0 {
		fmt.Println("No gamepads detected")
	}
	for _, info := range found {
		fmt.Printf("Gamepad ID: %d: Name: %s, Axes: %d, Buttons: %d\n", info.ID, info.Name, info.Axes, info.Buttons)
	}
	fmt.Printf("Layouts: %v\n", gamepad.LayoutNames())
	return nil
}
