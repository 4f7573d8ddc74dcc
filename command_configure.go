package main

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/mikehamer/crazypilot/commander"
	"github.com/mikehamer/crazypilot/prefs"
)

const configureHelp = "(Mode: m %d | Sensitivity: s slow|fast|custom | Pitch rate: p %f | Yaw rate: y %f | Max thrust: t %f | Exit: Ctrl-D)"

// applyPreference runs one configure command, e.g. "m 2" or "p 45".
func applyPreference(p *prefs.Preferences, command byte, arg string) error {
	switch command {
	case 'm', 'M':
		index, err := strconv.Atoi(arg)
		if err != nil {
			return err
		}
		mode, err := commander.ParseMode(index)
		if err != nil {
			return err
		}
		return p.SetMode(mode)

	case 's', 'S':
		s, err := commander.ParseSensitivity(arg)
		if err != nil {
			return err
		}
		return p.Select(s)

	case 'p', 'P', 'y', 'Y', 't', 'T':
		v, err := strconv.ParseFloat(arg, 32)
		if err != nil {
			return err
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return commander.ErrorInvalidValue
		}
		settings := p.Active()
		switch command {
		case 'p', 'P':
			settings.SetPitchRate(float32(v))
		case 'y', 'Y':
			settings.SetYawRate(float32(v))
		default:
			settings.SetMaxThrust(float32(v))
		}
		return p.Update(p.Sensitivity, settings)
	}
	return errors.Errorf("unknown command %q", command)
}

func printPreferences(p *prefs.Preferences) {
	s := p.Active()
	fmt.Printf("Mode %d (%s, sticks %q), %s sensitivity: pitch rate %.0f, yaw rate %.0f, max thrust %.0f%%\n",
		p.ControlMode, p.Mode(), p.Mode().Titles(), p.Sensitivity, s.PitchRate, s.YawRate, s.MaxThrust)
}

func configure(in io.Reader, path string, p *prefs.Preferences) error {
	printPreferences(p)
	fmt.Println(configureHelp)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 || len(fields[0]) != 1 {
			fmt.Println("Error: Incorrect format. Expecting e.g. \"m 1\" or \"s custom\"")
			continue
		}

		if err := applyPreference(p, fields[0][0], fields[1]); err != nil {
			fmt.Println(err)
			continue
		}
		if err := p.Save(path); err != nil {
			return err
		}
		printPreferences(p)
	}
	return scanner.Err()
}

func configureCommand(context *cli.Context) error {
	path, p, err := loadPrefs(context)
	if err != nil {
		return err
	}
	fmt.Printf("Editing %s\n", path)
	return configure(os.Stdin, path, p)
}
