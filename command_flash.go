package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/urfave/cli"

	"github.com/mikehamer/crazypilot/crazyflie"
	"github.com/mikehamer/crazypilot/crazyradio"
	"github.com/mikehamer/crazypilot/firmware"
	"github.com/mikehamer/crazypilot/link"
)

func flashCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if c.Bool("list") {
		return listReleases(ctx)
	}

	images, err := flashImages(ctx, c)
	if err != nil {
		return err
	}

	datarate, err := crazyradio.ParseDatarate(c.String("datarate"))
	if err != nil {
		return err
	}
	radio, err := openRadio(c)
	if err != nil {
		return err
	}
	channel, address := radio.Channel(), radio.Address()

	cf := crazyflie.Connect(link.NewQueue(radio))
	defer cf.Disconnect()

	f := crazyflie.NewFlasher(cf, func(toBootloader bool, bootloader uint64) error {
		if toBootloader {
			return radio.Configure(crazyflie.BootloaderChannel, bootloader, crazyradio.Datarate2MPS)
		}
		return radio.Configure(channel, address, datarate)
	})
	f.Verify = c.Bool("verify")
	f.Progress = func(target crazyflie.TargetCPU, written, total int) {
		fmt.Print(".")
		if written == total {
			fmt.Printf(" %s: %d bytes\n", target, total)
		}
	}

	for _, image := range images {
		fmt.Printf("%s: %d bytes\n", image.Target, len(image.Data))
	}
	if err := f.Flash(images...); err != nil {
		fmt.Println()
		return err
	}
	fmt.Println("Done, the copter is restarting")
	return nil
}

// flashImages loads the images named on the command line: a release zip, a
// bare image for --target, or a published release.
func flashImages(ctx context.Context, c *cli.Context) ([]crazyflie.Image, error) {
	platform := c.String("platform")

	if tag := c.String("release"); tag != "" {
		client := firmware.NewClient()
		release, err := client.Find(ctx, tag)
		if err != nil {
			return nil, err
		}
		fmt.Printf("Release %s\n", release.Tag)
		archive, err := client.Download(ctx, release)
		if err != nil {
			return nil, err
		}
		return archive.Images(platform)
	}

	if c.NArg() != 1 {
		return nil, cli.NewExitError("flash needs a release zip or an image, or --release", 1)
	}
	path := c.Args().First()

	if strings.EqualFold(filepath.Ext(path), ".zip") {
		archive, err := firmware.OpenArchive(path)
		if err != nil {
			return nil, err
		}
		return archive.Images(platform)
	}

	if c.String("target") == "" {
		return nil, cli.NewExitError("flashing a bare image needs --target stm32 or nrf51", 1)
	}
	target, err := crazyflie.ParseTarget(c.String("target"))
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return []crazyflie.Image{{Target: target, Data: data}}, nil
}

func listReleases(ctx context.Context) error {
	releases, err := firmware.NewClient().Releases(ctx)
	if err != nil {
		return err
	}
	for _, r := range releases {
		asset, err := r.ZipAsset()
		if err != nil {
			continue
		}
		fmt.Printf("%s\t%s\n", r.Tag, asset.Name)
	}
	return nil
}
