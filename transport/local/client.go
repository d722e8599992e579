// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package local

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/ffutop/mc-protocol/internal/config"
	"github.com/ffutop/mc-protocol/internal/simulator"
	"github.com/ffutop/mc-protocol/internal/simulator/persistence"
	"github.com/ffutop/mc-protocol/transport"
)

// Client implements transport.Transport on top of an in-process simulator.
type Client struct {
	sim     *simulator.Simulator
	storage persistence.Storage
}

var _ transport.Transport = (*Client)(nil)

// NewClient loads the simulator memory described by cfg.
func NewClient(cfg config.PersistenceConfig) (*Client, error) {
	storage, err := persistence.New(cfg.Type, cfg.Path)
	if err != nil {
		return nil, err
	}
	slog.Info("Initializing local PLC", "persistence", cfg.Type, "path", cfg.Path)

	m, err := storage.Load()
	if err != nil {
		storage.Close()
		return nil, fmt.Errorf("failed to load device memory: %w", err)
	}
	return &Client{
		sim:     simulator.New(m, storage),
		storage: storage,
	}, nil
}

// Send answers the request synchronously.
func (c *Client) Send(ctx context.Context, request []byte) ([]byte, error) {
	slog.Debug("send to local plc", "request", hex.EncodeToString(request))
	return c.sim.Handle(ctx, request)
}

// Connect is a no-op for the local PLC.
func (c *Client) Connect(ctx context.Context) error {
	return nil
}

// Close saves and closes the storage.
func (c *Client) Close() error {
	if err := c.storage.Save(c.sim.Memory()); err != nil {
		c.storage.Close()
		return err
	}
	return c.storage.Close()
}
