package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"github.com/mikehamer/crazypilot/crazyserver"
	"github.com/mikehamer/crazypilot/gamepad"
)

func serveCommand(c *cli.Context) error {
	path, p, err := loadPrefs(c)
	if err != nil {
		return err
	}

	cf, err := connect(c)
	if err != nil {
		return err
	}
	defer cf.Disconnect()

	pilot, err := newPilot(p, cf)
	if err != nil {
		return err
	}
	defer pilot.Close()

	pad, err := openGamepad(c, pilot)
	if err != nil {
		return err
	}

	server := crazyserver.New(pilot, cf, p, path)
	defer server.Close()

	addr := fmt.Sprintf("127.0.0.1:%d", c.Uint("port"))
	httpServer := &http.Server{Addr: addr, Handler: server.Router(c.String("static"))}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		pilot.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		if pad == nil {
			return
		}
		defer pad.Close()
		pad.Run(ctx, gamepad.DefaultPollPeriod)
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	fmt.Println("Starting the server ...")
	fmt.Printf("Listenning on %s\n", addr)
	err = httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		err = nil
	}

	stop()
	wg.Wait()
	waitForAck(cf, time.Second)
	log.Println("Server stopped")
	return err
}
