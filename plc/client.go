// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package plc

import (
	"context"
	"fmt"
	"sync"

	"github.com/ffutop/mc-protocol/mc"
	"github.com/ffutop/mc-protocol/transport"
)

// Client reads and writes PLC devices with batch read/write commands.
//
// Every method returns the PLC end code as a value. A non-zero end code is not
// an error: reads then return zeroed values and the caller inspects the code.
// The error return is reserved for parsing, transport and integrity failures.
// Calls are serialised, only one request is ever outstanding on the transport.
type Client struct {
	mu      sync.Mutex
	session mc.Session
	exec    Executor
}

// New creates a Client on top of t. The default session is MC3E addressed to
// the directly connected CPU.
func New(t transport.Transport, opts ...Option) *Client {
	s := mc.DefaultSession(mc.Frame3E)
	for _, opt := range opts {
		opt(&s)
	}
	return &Client{
		session: s,
		exec:    Executor{Transport: t, Frame: s.Frame},
	}
}

// Session returns the routing constants used for every request.
func (c *Client) Session() mc.Session {
	return c.session
}

// Open connects the transport.
func (c *Client) Open(ctx context.Context) error {
	return c.exec.Transport.Connect(ctx)
}

// Close closes the transport.
func (c *Client) Close() error {
	return c.exec.Transport.Close()
}

// SetBits writes consecutive bit devices starting at d.
func (c *Client) SetBits(ctx context.Context, d mc.Device, values []bool) (mc.EndCode, error) {
	count, err := pointCount(d, len(values), mc.MaxBitPoints)
	if err != nil {
		return 0, err
	}
	payload := mc.AppendAddress(make([]byte, 0, mc.AddressHeaderSize+(len(values)+1)/2), d, count)
	payload = append(payload, mc.PackBits(values)...)
	code, _, err := c.exchange(ctx, mc.CommandBatchWrite, mc.SubCommandBit, payload)
	return code, err
}

// GetBits reads count consecutive bit devices starting at d.
func (c *Client) GetBits(ctx context.Context, d mc.Device, count uint16) ([]bool, mc.EndCode, error) {
	if _, err := pointCount(d, int(count), mc.MaxBitPoints); err != nil {
		return nil, 0, err
	}
	code, data, err := c.exchange(ctx, mc.CommandBatchRead, mc.SubCommandBit, mc.AppendAddress(nil, d, count))
	if err != nil {
		return nil, 0, err
	}
	if !code.OK() {
		return make([]bool, count), code, nil
	}
	if need := (int(count) + 1) / 2; len(data) < need {
		return nil, code, fmt.Errorf("%w: %d bits need %d bytes, got %d", mc.ErrIncompleteResponse, count, need, len(data))
	}
	return mc.UnpackBits(data, int(count)), code, nil
}

// WriteBlock writes consecutive words starting at d.
func (c *Client) WriteBlock(ctx context.Context, d mc.Device, values []int16) (mc.EndCode, error) {
	count, err := pointCount(d, len(values), mc.MaxWordPoints)
	if err != nil {
		return 0, err
	}
	payload := mc.AppendAddress(make([]byte, 0, mc.AddressHeaderSize+len(values)*2), d, count)
	payload = append(payload, mc.PackWords(values)...)
	code, _, err := c.exchange(ctx, mc.CommandBatchWrite, mc.SubCommandWord, payload)
	return code, err
}

// ReadBlock reads count consecutive words starting at d.
func (c *Client) ReadBlock(ctx context.Context, d mc.Device, count uint16) ([]int16, mc.EndCode, error) {
	if _, err := pointCount(d, int(count), mc.MaxWordPoints); err != nil {
		return nil, 0, err
	}
	code, data, err := c.exchange(ctx, mc.CommandBatchRead, mc.SubCommandWord, mc.AppendAddress(nil, d, count))
	if err != nil {
		return nil, 0, err
	}
	if !code.OK() {
		return make([]int16, count), code, nil
	}
	if need := int(count) * 2; len(data) < need {
		return nil, code, fmt.Errorf("%w: %d words need %d bytes, got %d", mc.ErrIncompleteResponse, count, need, len(data))
	}
	return mc.UnpackWords(data, int(count)), code, nil
}

// SetWord writes a single word.
func (c *Client) SetWord(ctx context.Context, d mc.Device, value int16) (mc.EndCode, error) {
	return c.WriteBlock(ctx, d, []int16{value})
}

// GetWord reads a single word.
func (c *Client) GetWord(ctx context.Context, d mc.Device) (int16, mc.EndCode, error) {
	values, code, err := c.ReadBlock(ctx, d, 1)
	if err != nil {
		return 0, code, err
	}
	return values[0], code, nil
}

func (c *Client) exchange(ctx context.Context, command, subCommand uint16, payload []byte) (mc.EndCode, []byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	request := mc.EncodeRequest(c.session, command, subCommand, payload)
	response, err := c.exec.Execute(ctx, request)
	if err != nil {
		return 0, nil, err
	}
	return mc.DecodeResponse(c.session.Frame, response)
}

func checkDevice(d mc.Device) error {
	if !d.Kind.HasWireCode() {
		return fmt.Errorf("%w: %v", mc.ErrUnsupportedDevice, d.Kind)
	}
	return nil
}

// pointCount checks n against the batch limit of one request.
func pointCount(d mc.Device, n, limit int) (uint16, error) {
	if err := checkDevice(d); err != nil {
		return 0, err
	}
	if n > limit {
		return 0, fmt.Errorf("%w: %d points, at most %d per request", mc.ErrTooManyPoints, n, limit)
	}
	return uint16(n), nil
}
