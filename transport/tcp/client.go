// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package tcp

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/ffutop/mc-protocol/transport"
)

const (
	tcpTimeout      = 10 * time.Second
	tcpDrainTimeout = 20 * time.Millisecond
	tcpKeepAlive    = 45 * time.Second
	readBufferSize  = 256
)

// Client implements transport.Transport over a persistent TCP connection.
type Client struct {
	Address string
	// Timeout bounds dialing, writing and the wait for the first response byte.
	Timeout time.Duration
	// DrainTimeout is how long the line must stay quiet before a response is complete.
	DrainTimeout time.Duration
	KeepAlive    time.Duration

	mu   sync.Mutex
	conn net.Conn
}

var _ transport.Transport = (*Client)(nil)

// NewClient allocates and initializes a TCP Client.
func NewClient(address string) *Client {
	return &Client{
		Address:      address,
		Timeout:      tcpTimeout,
		DrainTimeout: tcpDrainTimeout,
		KeepAlive:    tcpKeepAlive,
	}
}

// Send writes a request frame and drains the response.
func (mb *Client) Send(ctx context.Context, request []byte) ([]byte, error) {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if err := mb.connect(ctx); err != nil {
		return nil, fmt.Errorf("mc: failed to connect to %s: %w", mb.Address, err)
	}

	deadline := time.Now().Add(mb.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := mb.conn.SetWriteDeadline(deadline); err != nil {
		mb.close()
		return nil, err
	}

	slog.Debug("send to plc", "addr", mb.Address, "request", hex.EncodeToString(request))
	if _, err := mb.conn.Write(request); err != nil {
		mb.close() // force a redial on the next request
		return nil, fmt.Errorf("failed to write to connection: %w", err)
	}

	response, err := Drain(mb.conn, deadline, mb.DrainTimeout)
	if err != nil {
		mb.close()
		return nil, err
	}
	slog.Debug("recv from plc", "addr", mb.Address, "response", hex.EncodeToString(response))
	return response, nil
}

// Drain reads until no byte arrives for quiet. The first read waits until deadline.
// A zero-length read or EOF means the peer closed the connection.
func Drain(conn net.Conn, deadline time.Time, quiet time.Duration) ([]byte, error) {
	buf := make([]byte, readBufferSize)
	var out []byte

	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}
	for {
		n, err := conn.Read(buf)
		out = append(out, buf[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, transport.ErrClosed
			}
			if len(out) > 0 && errors.Is(err, os.ErrDeadlineExceeded) {
				return out, nil
			}
			return nil, err
		}
		if n == 0 {
			return nil, transport.ErrClosed
		}
		if err := conn.SetReadDeadline(time.Now().Add(quiet)); err != nil {
			return nil, err
		}
	}
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
	mb.close()
	return nil
}

// connect ensures there is an active connection. Caller must hold the mutex.
func (mb *Client) connect(ctx context.Context) error {
	if mb.conn != nil {
		return nil
	}
	dialer := net.Dialer{Timeout: mb.Timeout, KeepAlive: mb.KeepAlive}
	conn, err := dialer.DialContext(ctx, "tcp", mb.Address)
	if err != nil {
		return err
	}
	slog.Debug("connected to plc", "addr", mb.Address)
	mb.conn = conn
	return nil
}

// close closes the connection and resets the state. Caller must hold the mutex.
func (mb *Client) close() {
	if mb.conn != nil {
		mb.conn.Close()
		mb.conn = nil
	}
}
