// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package simulator

import (
	"context"
	"encoding/binary"
	"errors"
	"log/slog"
	"sync"

	"github.com/ffutop/mc-protocol/internal/simulator/model"
	"github.com/ffutop/mc-protocol/internal/simulator/persistence"
	"github.com/ffutop/mc-protocol/mc"
)

// End codes answered by the simulator.
const (
	EndCodePointCount mc.EndCode = 0xC051 // number of points out of range
	EndCodeOutOfRange mc.EndCode = 0xC056 // device range exceeds memory
	EndCodeCommand    mc.EndCode = 0xC059 // unsupported command or sub command
	EndCodeDevice     mc.EndCode = 0xC05B // device cannot be accessed this way
	EndCodeDataLength mc.EndCode = 0xC061 // request data does not match the point count
)

// Simulator answers MC batch read/write requests from a device memory.
// Requests are processed one at a time.
type Simulator struct {
	mu      sync.Mutex
	memory  *model.Memory
	storage persistence.Storage
}

// New creates a Simulator. storage may be nil.
func New(m *model.Memory, storage persistence.Storage) *Simulator {
	if storage == nil {
		storage = persistence.NewMemoryStorage()
	}
	return &Simulator{memory: m, storage: storage}
}

// Memory returns the device memory.
func (s *Simulator) Memory() *model.Memory {
	return s.memory
}

// Handle implements transport.RequestHandler. Frames that cannot be parsed
// are reported as errors and get no response.
func (s *Simulator) Handle(ctx context.Context, request []byte) ([]byte, error) {
	req, err := mc.DecodeRequest(request)
	if err != nil {
		return nil, err
	}
	code, payload := s.Process(req)
	if !code.OK() {
		slog.Debug("request rejected", "command", req.Command, "subcommand", req.SubCommand, "code", code)
		payload = errorInfo(req)
	}
	return mc.EncodeResponse(req.Session, code, payload), nil
}

// Process executes one decoded request against the memory.
func (s *Simulator) Process(req *mc.Request) (mc.EndCode, []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch req.Command {
	case mc.CommandBatchRead:
		return s.batchRead(req)
	case mc.CommandBatchWrite:
		return s.batchWrite(req)
	default:
		return EndCodeCommand, nil
	}
}

func (s *Simulator) batchRead(req *mc.Request) (mc.EndCode, []byte) {
	if len(req.Payload) != mc.AddressHeaderSize {
		return EndCodeDataLength, nil
	}
	d, count, code := parseAddress(req)
	if !code.OK() {
		return code, nil
	}

	switch req.SubCommand {
	case mc.SubCommandWord:
		words, err := s.memory.ReadWords(d, int(count))
		if err != nil {
			return memoryCode(err), nil
		}
		data := make([]byte, 0, len(words)*2)
		for _, w := range words {
			data = binary.LittleEndian.AppendUint16(data, w)
		}
		return 0, data
	default:
		bits, err := s.memory.ReadBits(d, int(count))
		if err != nil {
			return memoryCode(err), nil
		}
		return 0, mc.PackBits(bits)
	}
}

func (s *Simulator) batchWrite(req *mc.Request) (mc.EndCode, []byte) {
	d, count, code := parseAddress(req)
	if !code.OK() {
		return code, nil
	}
	data := req.Payload[mc.AddressHeaderSize:]

	var points int
	switch req.SubCommand {
	case mc.SubCommandWord:
		if len(data) != int(count)*2 {
			return EndCodeDataLength, nil
		}
		words := make([]uint16, count)
		for i := range words {
			words[i] = binary.LittleEndian.Uint16(data[i*2:])
		}
		if err := s.memory.WriteWords(d, words); err != nil {
			return memoryCode(err), nil
		}
		points = model.WordPoints(d.Kind, len(words))
	default:
		if len(data) != (int(count)+1)/2 {
			return EndCodeDataLength, nil
		}
		if err := s.memory.WriteBits(d, mc.UnpackBits(data, int(count))); err != nil {
			return memoryCode(err), nil
		}
		points = int(count)
	}

	s.storage.OnWrite(d.Kind, int(d.Offset), points)
	return 0, nil
}

// parseAddress validates the sub command, the device and the point count.
func parseAddress(req *mc.Request) (mc.Device, uint16, mc.EndCode) {
	if req.SubCommand != mc.SubCommandWord && req.SubCommand != mc.SubCommandBit {
		return mc.Device{}, 0, EndCodeCommand
	}
	d, count, err := mc.ParseAddress(req.Payload)
	if err != nil {
		return mc.Device{}, 0, EndCodeDataLength
	}
	if !d.Kind.HasWireCode() {
		return mc.Device{}, 0, EndCodeDevice
	}
	limit := mc.MaxWordPoints
	if req.SubCommand == mc.SubCommandBit {
		limit = mc.MaxBitPoints
	}
	if count == 0 || int(count) > limit {
		return mc.Device{}, 0, EndCodePointCount
	}
	return d, count, 0
}

func memoryCode(err error) mc.EndCode {
	switch {
	case errors.Is(err, model.ErrOutOfRange):
		return EndCodeOutOfRange
	case errors.Is(err, model.ErrNotBitDevice), errors.Is(err, model.ErrUnknownDevice):
		return EndCodeDevice
	}
	return EndCodeCommand
}

// errorInfo echoes the routing fields and the command of a rejected request.
func errorInfo(req *mc.Request) []byte {
	s := req.Session
	info := []byte{s.NetworkNumber, byte(s.StationNumber)}
	info = binary.LittleEndian.AppendUint16(info, s.IONumber)
	info = append(info, byte(s.ChannelNumber))
	info = binary.LittleEndian.AppendUint16(info, req.Command)
	return binary.LittleEndian.AppendUint16(info, req.SubCommand)
}
