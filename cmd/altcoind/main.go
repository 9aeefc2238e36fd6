// Command altcoind runs the session layer as a standalone process: load
// configuration, open the host store, and run until interrupted.
//
// Grounded on backend-engineer1-land/lnd.go's main()/lndMain() split (a
// thin main that prints a startup error and exits non-zero, with the real
// work in a function that returns an error so top-level defers still run).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	network "github.com/canitude/libaltcoin-network"
	"github.com/btcsuite/btclog"
	flags "github.com/jessevdk/go-flags"
)

var log = btclog.NewBackend(os.Stdout).Logger("ALTD")

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := network.DefaultConfig()
	if _, err := flags.Parse(&cfg); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return nil
		}
		return err
	}

	network.UseLogger(log)
	log.Info("starting")

	p2p, err := network.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := p2p.Start(ctx); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info("shutting down")
	p2p.Stop()
	return p2p.Close()
}
