// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package mc

import (
	"encoding/binary"
	"fmt"
)

// EncodeRequest builds a request frame for the given session.
//
// Layout (all multi-byte fields little-endian):
//
//	subheader(2) [serial(2) reserved(2)] network(1) station(1) io(2) channel(1)
//	length(2) timer(2) command(2) subcommand(2) payload(n)
//
// The bracketed block is present for MC4E only. length covers everything
// from the timer to the end of the payload.
func EncodeRequest(s Session, command, subCommand uint16, payload []byte) []byte {
	raw := make([]byte, 0, header4ESize+requestTrailer+len(payload))
	if s.Frame == Frame4E {
		raw = binary.LittleEndian.AppendUint16(raw, SubHeader4E)
		raw = binary.LittleEndian.AppendUint16(raw, s.SerialNumber)
		raw = append(raw, 0x00, 0x00)
	} else {
		raw = binary.LittleEndian.AppendUint16(raw, SubHeader3E)
	}
	raw = s.appendRoute(raw)
	raw = binary.LittleEndian.AppendUint16(raw, uint16(len(payload)+requestTrailer))
	raw = binary.LittleEndian.AppendUint16(raw, s.MonitoringTimer)
	raw = binary.LittleEndian.AppendUint16(raw, command)
	raw = binary.LittleEndian.AppendUint16(raw, subCommand)
	return append(raw, payload...)
}

func (s Session) appendRoute(raw []byte) []byte {
	raw = append(raw, s.NetworkNumber, byte(s.StationNumber))
	raw = binary.LittleEndian.AppendUint16(raw, s.IONumber)
	return append(raw, byte(s.ChannelNumber))
}

// responseFields reads the declared byte count (end code included) and the end code.
func responseFields(f Frame, raw []byte) (count int, code EndCode, ok bool) {
	n := f.HeaderSize()
	if len(raw) < n {
		return 0, 0, false
	}
	count = int(binary.LittleEndian.Uint16(raw[n-4:]))
	code = EndCode(binary.LittleEndian.Uint16(raw[n-2:]))
	return count, code, true
}

// DecodeResponse returns the end code and payload of a response frame.
// The payload is limited to the bytes actually received.
func DecodeResponse(f Frame, raw []byte) (EndCode, []byte, error) {
	count, code, ok := responseFields(f, raw)
	if !ok {
		return 0, nil, fmt.Errorf("%w: got %d bytes, header needs %d", ErrIncompleteResponse, len(raw), f.HeaderSize())
	}
	n := f.HeaderSize()
	size := count - 2
	if size < 0 {
		size = 0
	}
	if avail := len(raw) - n; size > avail {
		size = avail
	}
	payload := make([]byte, size)
	copy(payload, raw[n:])
	return code, payload, nil
}

// IsIncorrectResponse reports whether a response claims success but carries a
// payload whose size disagrees with the declared byte count. Responses shorter
// than the header are incorrect as well. A non-zero end code is never incorrect.
func IsIncorrectResponse(f Frame, raw []byte) bool {
	count, code, ok := responseFields(f, raw)
	if !ok {
		return true
	}
	if code != 0 {
		return false
	}
	return count-2 != len(raw)-f.HeaderSize()
}

// EncodeResponse builds a response frame echoing the routing fields of s.
func EncodeResponse(s Session, code EndCode, payload []byte) []byte {
	raw := make([]byte, 0, header4ESize+len(payload))
	if s.Frame == Frame4E {
		raw = binary.LittleEndian.AppendUint16(raw, SubHeader4EResponse)
		raw = binary.LittleEndian.AppendUint16(raw, s.SerialNumber)
		raw = append(raw, 0x00, 0x00)
	} else {
		raw = binary.LittleEndian.AppendUint16(raw, SubHeader3EResponse)
	}
	raw = s.appendRoute(raw)
	raw = binary.LittleEndian.AppendUint16(raw, uint16(len(payload)+2))
	raw = binary.LittleEndian.AppendUint16(raw, uint16(code))
	return append(raw, payload...)
}

// Request is a decoded request frame.
type Request struct {
	Session    Session
	Command    uint16
	SubCommand uint16
	Payload    []byte
}

// DecodeRequest parses a request frame. The frame variant is taken from the subheader.
func DecodeRequest(raw []byte) (*Request, error) {
	if len(raw) < 2 {
		return nil, fmt.Errorf("%w: %d bytes", ErrMalformedRequest, len(raw))
	}
	req := &Request{}
	s := &req.Session
	p := 2
	switch binary.LittleEndian.Uint16(raw) {
	case SubHeader3E:
		s.Frame = Frame3E
	case SubHeader4E:
		s.Frame = Frame4E
		if len(raw) < 6 {
			return nil, fmt.Errorf("%w: %d bytes", ErrMalformedRequest, len(raw))
		}
		s.SerialNumber = binary.LittleEndian.Uint16(raw[2:])
		p = 6
	default:
		return nil, fmt.Errorf("%w: subheader 0x%04X", ErrMalformedRequest, binary.LittleEndian.Uint16(raw))
	}
	if len(raw) < p+13 {
		return nil, fmt.Errorf("%w: %d bytes", ErrMalformedRequest, len(raw))
	}
	s.NetworkNumber = raw[p]
	s.StationNumber = uint16(raw[p+1])
	s.IONumber = binary.LittleEndian.Uint16(raw[p+2:])
	s.ChannelNumber = uint16(raw[p+4])
	length := int(binary.LittleEndian.Uint16(raw[p+5:]))
	if length != len(raw)-(p+7) {
		return nil, fmt.Errorf("%w: data length %d, got %d bytes", ErrMalformedRequest, length, len(raw)-(p+7))
	}
	s.MonitoringTimer = binary.LittleEndian.Uint16(raw[p+7:])
	req.Command = binary.LittleEndian.Uint16(raw[p+9:])
	req.SubCommand = binary.LittleEndian.Uint16(raw[p+11:])
	req.Payload = raw[p+13:]
	return req, nil
}

// AppendAddress appends the 6-byte offset/kind/count block that starts every
// device access payload.
func AppendAddress(b []byte, d Device, count uint16) []byte {
	b = append(b, byte(d.Offset), byte(d.Offset>>8), byte(d.Offset>>16), byte(d.Kind))
	return binary.LittleEndian.AppendUint16(b, count)
}

// ParseAddress reads the block written by AppendAddress.
func ParseAddress(b []byte) (Device, uint16, error) {
	if len(b) < AddressHeaderSize {
		return Device{}, 0, fmt.Errorf("%w: address block needs %d bytes, got %d", ErrMalformedRequest, AddressHeaderSize, len(b))
	}
	d := Device{
		Offset: uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16,
		Kind:   DeviceKind(b[3]),
	}
	return d, binary.LittleEndian.Uint16(b[4:]), nil
}
