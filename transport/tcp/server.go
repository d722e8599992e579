// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package tcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/ffutop/mc-protocol/mc"
	"github.com/ffutop/mc-protocol/transport"
)

// Server accepts MC frames over TCP.
type Server struct {
	Address string
	Handler transport.RequestHandler

	mu       sync.Mutex
	listener net.Listener
}

var _ transport.Server = (*Server)(nil)

// NewServer creates a new TCP Server.
func NewServer(address string) *Server {
	return &Server{
		Address: address,
	}
}

// Listen binds the listening socket. Start calls it when needed; calling it
// first lets the caller learn the bound address.
func (s *Server) Listen() (net.Addr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		listener, err := net.Listen("tcp", s.Address)
		if err != nil {
			return nil, fmt.Errorf("failed to listen on %s: %w", s.Address, err)
		}
		s.listener = listener
	}
	return s.listener.Addr(), nil
}

// Start starts the TCP server.
func (s *Server) Start(ctx context.Context, handler transport.RequestHandler) error {
	s.Handler = handler
	addr, err := s.Listen()
	if err != nil {
		return err
	}
	slog.Info("MC TCP server listening", "addr", addr)

	go func() {
		<-ctx.Done()
		s.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			slog.Error("Failed to accept connection", "err", err)
			continue
		}
		go s.handleConnection(ctx, conn)
	}
}

// Close closes the server listener.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	slog.Info("New TCP client connected", "addr", conn.RemoteAddr())

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		request, err := mc.ReadRequest(conn)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				slog.Info("TCP client disconnected", "addr", conn.RemoteAddr())
			} else {
				slog.Error("Failed to read request", "addr", conn.RemoteAddr(), "err", err)
			}
			return
		}

		response, err := s.Handler(ctx, request)
		if err != nil {
			slog.Error("Handler failed", "err", err)
			return
		}
		if len(response) == 0 {
			continue
		}
		if _, err := conn.Write(response); err != nil {
			slog.Error("Failed to write response to connection", "err", err)
			return
		}
	}
}
