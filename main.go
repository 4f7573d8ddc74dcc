package main

import (
	"io"
	"log"
	"os"

	"github.com/urfave/cli"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	app := cli.NewApp()
	app.Name = "crazypilot"
	app.Usage = "Fly a Crazyflie from virtual sticks or a gamepad"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "log-file",
			Usage: "Also write the log to this file, rotated at 10 MB",
		},
		cli.StringFlag{
			Name:   "prefs",
			Usage:  "Preferences file (default is ~/.crazypilot/preferences.yaml)",
			EnvVar: "CRAZYPILOT_PREFS",
		},
	}
	app.Before = setupLogging
	app.Commands = COMMANDS

	if err := app.Run(os.Args); err != nil {
		log.Fatalln(err)
	}
}

func setupLogging(context *cli.Context) error {
	path := context.GlobalString("log-file")
	if path == "" {
		return nil
	}

	log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}))
	return nil
}
