// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package plc

import (
	"context"

	"github.com/ffutop/mc-protocol/mc"
)

// The ByName variants parse the device name with mc.ParseDevice first.

func (c *Client) SetBitsByName(ctx context.Context, name string, values []bool) (mc.EndCode, error) {
	d, err := mc.ParseDevice(name)
	if err != nil {
		return 0, err
	}
	return c.SetBits(ctx, d, values)
}

func (c *Client) GetBitsByName(ctx context.Context, name string, count uint16) ([]bool, mc.EndCode, error) {
	d, err := mc.ParseDevice(name)
	if err != nil {
		return nil, 0, err
	}
	return c.GetBits(ctx, d, count)
}

func (c *Client) WriteBlockByName(ctx context.Context, name string, values []int16) (mc.EndCode, error) {
	d, err := mc.ParseDevice(name)
	if err != nil {
		return 0, err
	}
	return c.WriteBlock(ctx, d, values)
}

func (c *Client) ReadBlockByName(ctx context.Context, name string, count uint16) ([]int16, mc.EndCode, error) {
	d, err := mc.ParseDevice(name)
	if err != nil {
		return nil, 0, err
	}
	return c.ReadBlock(ctx, d, count)
}

func (c *Client) SetWordByName(ctx context.Context, name string, value int16) (mc.EndCode, error) {
	d, err := mc.ParseDevice(name)
	if err != nil {
		return 0, err
	}
	return c.SetWord(ctx, d, value)
}

func (c *Client) GetWordByName(ctx context.Context, name string) (int16, mc.EndCode, error) {
	d, err := mc.ParseDevice(name)
	if err != nil {
		return 0, 0, err
	}
	return c.GetWord(ctx, d)
}
