// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package plc

import "github.com/ffutop/mc-protocol/mc"

// Option is a functional option for configuring the Client.
type Option func(*mc.Session)

// WithFrame selects the frame variant, keeping the other routing constants.
//
// Example:
//
//	c := plc.New(tcp.NewClient("192.168.40.103:5012"), plc.WithFrame(mc.Frame4E))
func WithFrame(f mc.Frame) Option {
	return func(s *mc.Session) {
		s.Frame = f
	}
}

// WithSession replaces all routing constants.
func WithSession(session mc.Session) Option {
	return func(s *mc.Session) {
		*s = session
	}
}

// WithSerialNumber sets the MC4E serial number. It is sent unchanged with every request.
func WithSerialNumber(n uint16) Option {
	return func(s *mc.Session) {
		s.SerialNumber = n
	}
}
