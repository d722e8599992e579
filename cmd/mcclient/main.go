// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Command mcclient reads and writes PLC devices over the MC protocol.
//
//	mcclient -a 192.168.40.103:5012 D10 D10,4 M0..7=1
//
// Without expressions on the command line it reads them from stdin, one per line.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ffutop/mc-protocol/internal/config"
	"github.com/ffutop/mc-protocol/internal/console"
	"github.com/ffutop/mc-protocol/plc"
	"github.com/ffutop/mc-protocol/transport"
	"github.com/ffutop/mc-protocol/transport/local"
	"github.com/ffutop/mc-protocol/transport/serial"
	"github.com/ffutop/mc-protocol/transport/tcp"
	"github.com/ffutop/mc-protocol/transport/udp"
)

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"transport":     "plc.transport",
	"address":       "plc.address",
	"frame":         "plc.session.frame",
	"timeout":       "plc.timeout",
	"drain_timeout": "plc.drain_timeout",
	"serial_number": "plc.session.serial_number",
	"device":        "plc.serial.device",
	"baud_rate":     "plc.serial.baud_rate",
	"persistence":   "simulator.persistence.type",
	"data":          "simulator.persistence.path",
	"log_level":     "log.level",
	"log_file":      "log.file",
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("mcclient", pflag.ContinueOnError)
	fs.StringP("config", "c", "", "Configuration file path.")
	fs.StringP("transport", "t", "tcp", "Transport to the PLC (tcp, udp, serial, local).")
	fs.StringP("address", "a", "", "PLC address, e.g. 192.168.40.103:5012.")
	fs.StringP("frame", "f", "MC3E", "Frame type (MC3E, MC4E).")
	fs.DurationP("timeout", "W", 0, "Response wait time.")
	fs.Duration("drain_timeout", 0, "Quiet time that ends a response.")
	fs.Uint16("serial_number", 0, "MC4E serial number.")
	fs.StringP("device", "p", "", "Serial port device name.")
	fs.IntP("baud_rate", "s", 0, "Serial port speed.")
	fs.String("persistence", "", "Device memory storage of the local transport (memory, file, mmap, sql).")
	fs.String("data", "", "Device memory file or DSN of the local transport.")
	fs.StringP("log_level", "v", "", "Log verbosity level (debug, info, warn, error).")
	fs.StringP("log_file", "L", "", "Log file name ('-' for logging to STDERR only).")
	return fs
}

// loadConfig parses args and merges them over the configuration file.
func loadConfig(args []string) (*config.Config, []string, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	v := viper.New()
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	configFile, _ := fs.GetString("config")
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return nil, nil, err
	}
	return cfg, fs.Args(), nil
}

func newTransport(cfg *config.Config) (transport.Transport, error) {
	switch cfg.PLC.Transport {
	case "tcp":
		c := tcp.NewClient(cfg.PLC.Address)
		c.Timeout = cfg.PLC.Timeout
		c.DrainTimeout = cfg.PLC.DrainTimeout
		return c, nil
	case "udp":
		c := udp.NewClient(cfg.PLC.Address)
		c.Timeout = cfg.PLC.Timeout
		c.DrainTimeout = cfg.PLC.DrainTimeout
		return c, nil
	case "serial":
		return serial.NewClient(cfg.PLC.Serial), nil
	case "local":
		// in-process simulator backed by the simulator persistence settings
		c, err := local.NewClient(cfg.Simulator.Persistence)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown transport type: %s", cfg.PLC.Transport)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	cfg, exprs, err := loadConfig(args)
	if err != nil {
		return err
	}
	config.SetupLogger(cfg.Log, os.Stderr)

	session, err := cfg.PLC.Session.Session()
	if err != nil {
		return err
	}
	t, err := newTransport(cfg)
	if err != nil {
		return err
	}

	client := plc.New(t, plc.WithSession(session))
	slog.Debug("Connecting to PLC", "transport", cfg.PLC.Transport, "address", cfg.PLC.Address, "frame", session.Frame)
	if err := client.Open(ctx); err != nil {
		return err
	}
	defer client.Close()

	in := stdin
	if len(exprs) > 0 {
		in = strings.NewReader(strings.Join(exprs, "\n"))
	}
	return console.Run(ctx, client, in, stdout)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "mcclient: %v\n", err)
		stop()
		os.Exit(1)
	}
}
