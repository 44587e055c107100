package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tkjaer/rtlookup/internal/config"
	"github.com/tkjaer/rtlookup/internal/lookup"
	"github.com/tkjaer/rtlookup/internal/version"
)

func main() {
	args, err := config.ParseArgs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if args.ShowVersion {
		fmt.Println(version.FullVersion())
		return
	}

	// Setup logging
	logFile, err := config.SetupLogging(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to setup logging: %v\n", err)
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	slog.Debug("Starting route lookup",
		"table", args.TableFile,
		"destinations", len(args.Destinations),
		"engine", args.Engine,
		"empty_table", args.EmptyTable,
	)

	lm, err := lookup.NewLookupManager(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Set up signal handling for Ctrl+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan error)
	go func() {
		done <- lm.Run()
	}()

	select {
	case err = <-done:
	case <-sigChan:
		slog.Debug("Received interrupt signal, stopping...")
		lm.Stop()
		// Wait for Run() to flush outputs
		err = <-done
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	slog.Debug("Route lookup completed")
}
