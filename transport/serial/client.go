// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package serial

import (
	"context"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/ffutop/mc-protocol/internal/config"
	"github.com/ffutop/mc-protocol/mc"
	"github.com/ffutop/mc-protocol/transport"
)

// Client implements transport.Transport over a serial line carrying binary
// MC3E/MC4E frames, e.g. through a serial-to-Ethernet bridge.
// Responses are delimited by their own length field rather than by line silence.
type Client struct {
	port
}

var _ transport.Transport = (*Client)(nil)

// NewClient allocates and initializes a serial Client.
func NewClient(cfg config.SerialConfig) *Client {
	client := &Client{}

	client.Config.Address = cfg.Device
	client.Config.BaudRate = cfg.BaudRate
	client.Config.DataBits = cfg.DataBits
	client.Config.StopBits = cfg.StopBits
	client.Config.Parity = cfg.Parity
	client.Config.Timeout = cfg.Timeout
	if client.Config.Timeout == 0 {
		client.Config.Timeout = serialTimeout
	}
	if cfg.RS485 {
		client.Config.RS485.Enabled = true
		client.Config.RS485.DelayRtsBeforeSend = cfg.DelayRtsBeforeSend
		client.Config.RS485.DelayRtsAfterSend = cfg.DelayRtsAfterSend
		client.Config.RS485.RtsHighDuringSend = cfg.RtsHighDuringSend
		client.Config.RS485.RtsHighAfterSend = cfg.RtsHighAfterSend
		client.Config.RS485.RxDuringTx = cfg.RxDuringTx
	}

	client.IdleTimeout = serialIdleTimeout
	return client
}

// Connect implements transport.Transport.
func (mb *Client) Connect(ctx context.Context) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return mb.connect(ctx)
}

// Close implements transport.Transport.
func (mb *Client) Close() error {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return mb.close()
}

// Send writes the request frame and reads one response frame.
func (mb *Client) Send(ctx context.Context, request []byte) ([]byte, error) {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if err := mb.connect(ctx); err != nil {
		return nil, err
	}
	mb.lastActivity = time.Now()
	mb.startCloseTimer()

	slog.Debug("send to plc", "device", mb.Config.Address, "request", hex.EncodeToString(request))
	if _, err := mb.rwc.Write(request); err != nil {
		mb.close()
		return nil, err
	}

	response, err := mc.ReadResponse(mb.rwc)
	if err != nil {
		mb.close() // the stream may be out of sync
		if errors.Is(err, io.EOF) {
			return nil, transport.ErrClosed
		}
		return nil, err
	}
	slog.Debug("recv from plc", "device", mb.Config.Address, "response", hex.EncodeToString(response))
	return response, nil
}
