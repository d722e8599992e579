// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package plc

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ffutop/mc-protocol/mc"
	"github.com/ffutop/mc-protocol/transport"
)

// MaxAttempts is the number of exchanges tried before a request is given up.
const MaxAttempts = 10

// ErrResponseIntegrityExhausted is returned when every attempt produced a
// response whose length disagreed with its header.
var ErrResponseIntegrityExhausted = errors.New("plc: response integrity retries exhausted")

// Executor drives one request/response exchange, re-sending the identical
// request while the PLC answers with structurally inconsistent responses.
// Transport errors are returned at once.
type Executor struct {
	Transport transport.Transport
	Frame     mc.Frame
}

// Execute sends request and returns the first consistent response.
func (e *Executor) Execute(ctx context.Context, request []byte) ([]byte, error) {
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		response, err := e.Transport.Send(ctx, request)
		if err != nil {
			return nil, err
		}
		if !mc.IsIncorrectResponse(e.Frame, response) {
			return response, nil
		}
		slog.Debug("incorrect response from plc", "attempt", attempt, "response", hex.EncodeToString(response))
	}
	return nil, fmt.Errorf("%w after %d attempts", ErrResponseIntegrityExhausted, MaxAttempts)
}
