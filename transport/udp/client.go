// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package udp

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/ffutop/mc-protocol/transport"
)

const (
	udpTimeout      = 5 * time.Second
	udpDrainTimeout = 20 * time.Millisecond
	maxDatagramSize = 2048
)

// Client implements transport.Transport over a connected UDP socket.
type Client struct {
	Address string
	// Timeout bounds the wait for the first response datagram.
	Timeout time.Duration
	// DrainTimeout is how long to wait for further datagrams of the same response.
	DrainTimeout time.Duration

	mu   sync.Mutex
	conn net.Conn
}

var _ transport.Transport = (*Client)(nil)

// NewClient allocates and initializes a UDP Client.
func NewClient(address string) *Client {
	return &Client{
		Address:      address,
		Timeout:      udpTimeout,
		DrainTimeout: udpDrainTimeout,
	}
}

// Send writes the request as one datagram and collects the response datagrams.
// After a failed exchange the socket is dropped, so datagrams arriving late
// for it never reach the next request.
func (mb *Client) Send(ctx context.Context, request []byte) ([]byte, error) {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if err := mb.connect(ctx); err != nil {
		return nil, fmt.Errorf("mc: failed to connect to %s: %w", mb.Address, err)
	}

	response, err := mb.exchange(ctx, request)
	if err != nil {
		mb.close()
		return nil, err
	}
	slog.Debug("recv from plc", "addr", mb.Address, "response", hex.EncodeToString(response))
	return response, nil
}

func (mb *Client) exchange(ctx context.Context, request []byte) ([]byte, error) {
	deadline := time.Now().Add(mb.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	slog.Debug("send to plc", "addr", mb.Address, "request", hex.EncodeToString(request))
	if _, err := mb.conn.Write(request); err != nil {
		return nil, fmt.Errorf("failed to write datagram: %w", err)
	}

	buf := make([]byte, maxDatagramSize)
	var response []byte
	if err := mb.conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}
	for {
		n, err := mb.conn.Read(buf)
		if err != nil {
			if len(response) > 0 && errors.Is(err, os.ErrDeadlineExceeded) {
				break
			}
			return nil, err
		}
		if n == 0 {
			return nil, transport.ErrClosed
		}
		response = append(response, buf[:n]...)
		if err := mb.conn.SetReadDeadline(time.Now().Add(mb.DrainTimeout)); err != nil {
			return nil, err
		}
	}
	return response, nil
}

// Connect implements transport.Transport.
func (mb *Client) Connect(ctx context.Context) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return mb.connect(ctx)
}

// Close implements transport.Transport. UDP has no session to tear down,
// the socket is simply released.
func (mb *Client) Close() error {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return mb.close()
}

func (mb *Client) close() error {
	if mb.conn == nil {
		return nil
	}
	err := mb.conn.Close()
	mb.conn = nil
	return err
}

func (mb *Client) connect(ctx context.Context) error {
	if mb.conn != nil {
		return nil
	}
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "udp", mb.Address)
	if err != nil {
		return err
	}
	mb.conn = conn
	return nil
}
