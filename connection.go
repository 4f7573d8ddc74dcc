package main

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/mikehamer/crazypilot/commander"
	"github.com/mikehamer/crazypilot/crazyflie"
	"github.com/mikehamer/crazypilot/crazyradio"
	"github.com/mikehamer/crazypilot/crazyusb"
	"github.com/mikehamer/crazypilot/flight"
	"github.com/mikehamer/crazypilot/gamepad"
	"github.com/mikehamer/crazypilot/joystick"
	"github.com/mikehamer/crazypilot/link"
	"github.com/mikehamer/crazypilot/prefs"
)

func parseAddress(s string) (uint64, error) {
	address, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 64) // trim any leading hex prefix
	if err != nil {
		return 0, errors.Wrapf(err, "address %q", s)
	}
	return address, nil
}

// openRadio opens the Crazyradio and points it at the copter named by the
// link flags.
func openRadio(context *cli.Context) (*crazyradio.Radio, error) {
	address, err := parseAddress(context.String("address"))
	if err != nil {
		return nil, err
	}
	datarate, err := crazyradio.ParseDatarate(context.String("datarate"))
	if err != nil {
		return nil, err
	}

	radio, err := crazyradio.Open()
	if err != nil {
		return nil, err
	}
	if err := radio.Configure(uint8(context.Uint("channel")), address, datarate); err != nil {
		radio.Close()
		return nil, err
	}
	log.Printf("Using Crazyradio on %d/%s/0x%X", radio.Channel(), datarate, radio.Address())
	return radio, nil
}

func openDevice(context *cli.Context) (link.Device, error) {
	switch kind := context.String("link"); kind {
	case "radio":
		return openRadio(context)

	case "usb":
		usb, err := crazyusb.Open()
		if err != nil {
			return nil, err
		}
		return usb, nil

	case "dry-run":
		log.Println("Dry run, frames are not sent anywhere")
		return link.NewRecorder(), nil

	default:
		return nil, errors.Errorf("unknown link %q", kind)
	}
}

func connect(context *cli.Context) (*crazyflie.Crazyflie, error) {
	device, err := openDevice(context)
	if err != nil {
		return nil, err
	}

	return crazyflie.Connect(link.NewQueue(device)), nil
}

func prefsPath(context *cli.Context) (string, error) {
	if path := context.GlobalString("prefs"); path != "" {
		return path, nil
	}
	return prefs.DefaultPath()
}

func loadPrefs(context *cli.Context) (string, *prefs.Preferences, error) {
	path, err := prefsPath(context)
	if err != nil {
		return "", nil, err
	}
	p, err := prefs.Load(path)
	if err != nil {
		return "", nil, err
	}
	return path, p, nil
}

// newPilot wires the stored preferences, two sticks and the copter together.
func newPilot(p *prefs.Preferences, cf *crazyflie.Crazyflie, opts ...flight.Option) (*flight.Pilot, error) {
	mode := p.Mode()
	if mode.NeedsTilt() {
		log.Printf("No motion source for %s, flying %s", mode, commander.DefaultMode)
		mode = commander.DefaultMode
	}

	c, err := commander.New(joystick.New(), joystick.New(), mode, p.Active())
	if err != nil {
		return nil, err
	}
	return flight.NewPilot(c, cf, opts...), nil
}

// openGamepad returns nil when no gamepad was asked for.
func openGamepad(context *cli.Context, pilot *flight.Pilot) (*gamepad.Gamepad, error) {
	id := context.Int("gamepad")
	if id < 0 {
		return nil, nil
	}

	layout, err := gamepad.LayoutByName(context.String("layout"))
	if err != nil {
		return nil, err
	}
	c := pilot.Commander()
	g, err := gamepad.Open(id, layout, c.Left(), c.Right())
	if err != nil {
		return nil, err
	}
	g.OnInput = pilot.Touch
	return g, nil
}

// waitForAck gives the copter a moment to acknowledge the final frame.
func waitForAck(cf *crazyflie.Crazyflie, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if s := cf.Stats(); s.Acked+s.Dropped >= s.Sent {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}
