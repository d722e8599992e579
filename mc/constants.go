// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package mc

import (
	"fmt"
	"strings"
)

// Frame selects the MC header variant.
type Frame int

const (
	Frame3E Frame = iota
	Frame4E
)

func (f Frame) String() string {
	switch f {
	case Frame3E:
		return "MC3E"
	case Frame4E:
		return "MC4E"
	}
	return "unknown"
}

// ParseFrame accepts "MC3E"/"3E" and "MC4E"/"4E", case-insensitively.
func ParseFrame(s string) (Frame, error) {
	switch strings.TrimPrefix(strings.ToUpper(s), "MC") {
	case "3E", "":
		return Frame3E, nil
	case "4E":
		return Frame4E, nil
	}
	return Frame3E, fmt.Errorf("mc: unknown frame %q", s)
}

// Subheaders, little-endian on the wire.
const (
	SubHeader3E         = 0x0050
	SubHeader4E         = 0x0054
	SubHeader3EResponse = 0x00D0
	SubHeader4EResponse = 0x00D4
)

// Commands.
const (
	CommandBatchRead  = 0x0401
	CommandBatchWrite = 0x1401
)

// Sub commands.
const (
	SubCommandWord = 0x0000
	SubCommandBit  = 0x0001
)

// Largest point counts of one batch read or write.
const (
	MaxWordPoints = 960
	MaxBitPoints  = 7168
)

const (
	header3ESize = 11
	header4ESize = 15

	// requestTrailer is the part of the data length that precedes the payload:
	// monitoring timer, command and sub command.
	requestTrailer = 6

	// AddressHeaderSize is the size of the offset/kind/count block that starts
	// every device read or write payload.
	AddressHeaderSize = 6
)

// HeaderSize returns the response header length up to and including the end code.
func (f Frame) HeaderSize() int {
	if f == Frame4E {
		return header4ESize
	}
	return header3ESize
}

// Session holds the per-connection routing constants written into every request.
type Session struct {
	Frame           Frame
	SerialNumber    uint16
	NetworkNumber   uint8
	StationNumber   uint16 // only the low byte goes on the wire
	IONumber        uint16
	ChannelNumber   uint16 // only the low byte goes on the wire
	MonitoringTimer uint16
}

// DefaultSession returns the routing constants for a directly connected CPU.
func DefaultSession(f Frame) Session {
	return Session{
		Frame:           f,
		SerialNumber:    0x0001,
		NetworkNumber:   0x00,
		StationNumber:   0x00FF,
		IONumber:        0x03FF,
		ChannelNumber:   0x0000,
		MonitoringTimer: 0x0010,
	}
}
