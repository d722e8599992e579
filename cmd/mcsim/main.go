// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Command mcsim runs a simulated PLC answering MC3E/MC4E batch read and
// write requests over TCP and UDP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ffutop/mc-protocol/internal/config"
	"github.com/ffutop/mc-protocol/internal/simulator"
	"github.com/ffutop/mc-protocol/internal/simulator/persistence"
	"github.com/ffutop/mc-protocol/transport"
	"github.com/ffutop/mc-protocol/transport/tcp"
	"github.com/ffutop/mc-protocol/transport/udp"
)

func main() {
	configFile := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	config.SetupLogger(cfg.Log, os.Stdout)

	slog.Info("Starting MC simulator...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg.Simulator); err != nil {
		slog.Error("Simulator stopped with error", "err", err)
		stop()
		os.Exit(1)
	}
	slog.Info("Goodbye.")
}

func run(ctx context.Context, cfg config.SimulatorConfig) error {
	storage, err := persistence.New(cfg.Persistence.Type, cfg.Persistence.Path)
	if err != nil {
		return err
	}
	defer storage.Close()

	memory, err := storage.Load()
	if err != nil {
		return fmt.Errorf("failed to load device memory: %w", err)
	}
	slog.Info("Device memory loaded", "persistence", cfg.Persistence.Type, "path", cfg.Persistence.Path)

	servers, err := newServers(cfg.Listeners)
	if err != nil {
		return err
	}
	return simulator.New(memory, storage).Serve(ctx, servers...)
}

func newServers(listeners []config.ListenerConfig) ([]transport.Server, error) {
	var servers []transport.Server
	for _, l := range listeners {
		switch l.Type {
		case "tcp":
			servers = append(servers, tcp.NewServer(l.Address))
		case "udp":
			servers = append(servers, udp.NewServer(l.Address))
		default:
			return nil, fmt.Errorf("unknown listener type: %s", l.Type)
		}
	}
	if len(servers) == 0 {
		return nil, fmt.Errorf("no listeners configured")
	}
	return servers, nil
}
