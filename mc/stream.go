// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package mc

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ReadRequest reads exactly one request frame from a byte stream.
func ReadRequest(r io.Reader) ([]byte, error) {
	head := make([]byte, 2)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, err
	}
	// bytes between the subheader and the end of the data length field
	var rest int
	switch binary.LittleEndian.Uint16(head) {
	case SubHeader3E:
		rest = 7
	case SubHeader4E:
		rest = 11
	default:
		return nil, fmt.Errorf("%w: subheader 0x%04X", ErrMalformedRequest, binary.LittleEndian.Uint16(head))
	}
	return readFramed(r, head, rest)
}

// ReadResponse reads exactly one response frame from a byte stream.
func ReadResponse(r io.Reader) ([]byte, error) {
	head := make([]byte, 2)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, err
	}
	var rest int
	switch binary.LittleEndian.Uint16(head) {
	case SubHeader3EResponse:
		rest = header3ESize - 4
	case SubHeader4EResponse:
		rest = header4ESize - 4
	default:
		return nil, fmt.Errorf("%w: subheader 0x%04X", ErrMalformedResponse, binary.LittleEndian.Uint16(head))
	}
	return readFramed(r, head, rest)
}

// readFramed reads rest more header bytes, whose last two hold the data length,
// and then the data itself.
func readFramed(r io.Reader, head []byte, rest int) ([]byte, error) {
	frame := make([]byte, len(head)+rest)
	copy(frame, head)
	if _, err := io.ReadFull(r, frame[len(head):]); err != nil {
		return nil, err
	}
	length := int(binary.LittleEndian.Uint16(frame[len(frame)-2:]))
	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return append(frame, body...), nil
}
