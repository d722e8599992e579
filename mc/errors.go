// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package mc

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDeviceFormat is returned when a device name cannot be parsed.
	ErrInvalidDeviceFormat = errors.New("mc: invalid device format")
	// ErrIncompleteResponse is returned when a response is too short to decode.
	ErrIncompleteResponse = errors.New("mc: incomplete response")
	// ErrUnsupportedDevice is returned for device kinds without a wire code.
	ErrUnsupportedDevice = errors.New("mc: unsupported device")
	// ErrMalformedRequest is returned by DecodeRequest for frames it cannot parse.
	ErrMalformedRequest = errors.New("mc: malformed request")
	// ErrMalformedResponse is returned for a response frame with an unknown subheader.
	ErrMalformedResponse = errors.New("mc: malformed response")
	// ErrTooManyPoints is returned when a request exceeds the batch point limit.
	ErrTooManyPoints = errors.New("mc: too many points")
)

// EndCode is the completion status reported by the PLC. Zero means success.
type EndCode uint16

// OK reports whether the PLC accepted the request.
func (c EndCode) OK() bool {
	return c == 0
}

func (c EndCode) String() string {
	return fmt.Sprintf("0x%04X", uint16(c))
}

// Err returns nil for a successful end code and an *EndCodeError otherwise.
func (c EndCode) Err() error {
	if c.OK() {
		return nil
	}
	return &EndCodeError{Code: c}
}

// EndCodeError wraps a non-zero end code for callers that want error semantics.
type EndCodeError struct {
	Code EndCode
}

func (e *EndCodeError) Error() string {
	return fmt.Sprintf("mc: plc returned end code %v", e.Code)
}
