// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package udp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/ffutop/mc-protocol/transport"
)

// Server answers MC frames carried in UDP datagrams, one request per datagram.
type Server struct {
	Address string
	Handler transport.RequestHandler

	mu   sync.Mutex
	conn net.PacketConn
}

var _ transport.Server = (*Server)(nil)

// NewServer creates a new UDP Server.
func NewServer(address string) *Server {
	return &Server{Address: address}
}

// Listen binds the socket and returns its address.
func (s *Server) Listen() (net.Addr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		conn, err := net.ListenPacket("udp", s.Address)
		if err != nil {
			return nil, fmt.Errorf("failed to listen on %s: %w", s.Address, err)
		}
		s.conn = conn
	}
	return s.conn.LocalAddr(), nil
}

// Start serves datagrams until ctx is cancelled.
func (s *Server) Start(ctx context.Context, handler transport.RequestHandler) error {
	s.Handler = handler
	addr, err := s.Listen()
	if err != nil {
		return err
	}
	slog.Info("MC UDP server listening", "addr", addr)

	go func() {
		<-ctx.Done()
		s.Close()
	}()

	buf := make([]byte, maxDatagramSize)
	for {
		n, peer, err := s.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			slog.Error("Failed to read datagram", "err", err)
			continue
		}
		request := make([]byte, n)
		copy(request, buf[:n])

		response, err := s.Handler(ctx, request)
		if err != nil {
			slog.Error("Handler failed", "peer", peer, "err", err)
			continue
		}
		if len(response) == 0 {
			continue
		}
		if _, err := s.conn.WriteTo(response, peer); err != nil {
			slog.Error("Failed to write datagram", "peer", peer, "err", err)
		}
	}
}

// Close releases the socket.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
