package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"github.com/mikehamer/crazypilot/flight"
	"github.com/mikehamer/crazypilot/gamepad"
)

func flyCommand(c *cli.Context) error {
	_, p, err := loadPrefs(c)
	if err != nil {
		return err
	}

	if c.Int("gamepad") < 0 {
		return cli.NewExitError("fly needs a gamepad, pass --gamepad <id>", 1)
	}

	cf, err := connect(c)
	if err != nil {
		return err
	}
	defer cf.Disconnect()

	// the gamepad is polled, so silence means it is gone
	pilot, err := newPilot(p, cf, flight.WithInputTimeout(flight.DefaultInputTimeout))
	if err != nil {
		return err
	}
	defer pilot.Close()

	pad, err := openGamepad(c, pilot)
	if err != nil {
		return err
	}
	defer pad.Close()

	mode := pilot.Commander().Mode()
	fmt.Printf("Flying %s (%v) with %s settings. Hold the arm button to fly, Ctrl-C to stop.\n",
		mode, mode.Titles(), p.Sensitivity)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		pad.Run(ctx, gamepad.DefaultPollPeriod)
	}()

	err = pilot.Run(ctx)
	wg.Wait()
	waitForAck(cf, time.Second)

	stats := cf.Stats()
	log.Printf("Sent %d setpoints, %d acknowledged, %d dropped", stats.Sent, stats.Acked, stats.Dropped)
	return err
}
