// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package transport

import (
	"context"
	"errors"
)

// ErrClosed is returned when the peer closes the connection during an exchange.
var ErrClosed = errors.New("transport: connection closed by peer")

// Transport carries raw MC frames to a PLC and back.
// Implementations are not safe for concurrent Send calls.
type Transport interface {
	// Connect opens the underlying connection. It is a no-op when already connected.
	Connect(ctx context.Context) error
	// Send writes the whole request and returns every byte the peer sent back
	// before the line went quiet.
	Send(ctx context.Context, request []byte) ([]byte, error)
	Close() error
}

// RequestHandler answers one raw request frame with one raw response frame.
type RequestHandler func(ctx context.Context, request []byte) ([]byte, error)

// Server accepts request frames and answers them through a RequestHandler.
type Server interface {
	// Start starts the server and blocks. It should be called in a goroutine.
	Start(ctx context.Context, handler RequestHandler) error
	Close() error
}
