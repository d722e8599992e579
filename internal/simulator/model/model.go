// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package model

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ffutop/mc-protocol/mc"
)

// Points is the number of addressable points held for every device kind.
const Points = 0x10000

var (
	// ErrOutOfRange is returned when an access runs past the end of a device.
	ErrOutOfRange = errors.New("model: device range out of bounds")
	// ErrNotBitDevice is returned for bit access to a word device.
	ErrNotBitDevice = errors.New("model: device is not bit addressable")
	// ErrUnknownDevice is returned for kinds the memory does not hold.
	ErrUnknownDevice = errors.New("model: unknown device")
)

// Memory holds the device memory of a simulated PLC.
//
// Bit devices keep one byte per point, 1 (ON) or 0 (OFF). Word devices keep
// one uint16 per point. A word access to a bit device covers 16 points per
// word, the lowest point in bit 0.
type Memory struct {
	mu sync.RWMutex

	Bits  map[mc.DeviceKind][]byte
	Words map[mc.DeviceKind][]uint16
}

// Kinds returns the device kinds with a wire code, in wire code order.
func Kinds() []mc.DeviceKind {
	var kinds []mc.DeviceKind
	for k := 0; k <= 0xFF; k++ {
		if kind := mc.DeviceKind(k); kind.HasWireCode() {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// NewMemory creates a memory initialized to zero.
func NewMemory() *Memory {
	m := &Memory{
		Bits:  make(map[mc.DeviceKind][]byte),
		Words: make(map[mc.DeviceKind][]uint16),
	}
	for _, k := range Kinds() {
		if k.IsBit() {
			m.Bits[k] = make([]byte, Points)
		} else {
			m.Words[k] = make([]uint16, Points)
		}
	}
	return m
}

// WordPoints returns how many storage points a word access of n words covers.
func WordPoints(k mc.DeviceKind, n int) int {
	if k.IsBit() {
		return n * 16
	}
	return n
}

// ReadBits reads count consecutive bit points.
func (m *Memory) ReadBits(d mc.Device, count int) ([]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bits, err := m.bitRange(d, count)
	if err != nil {
		return nil, err
	}
	out := make([]bool, count)
	for i, b := range bits {
		out[i] = b != 0
	}
	return out, nil
}

// WriteBits writes consecutive bit points.
func (m *Memory) WriteBits(d mc.Device, values []bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bits, err := m.bitRange(d, len(values))
	if err != nil {
		return err
	}
	for i, v := range values {
		bits[i] = 0
		if v {
			bits[i] = 1
		}
	}
	return nil
}

// ReadWords reads count consecutive words.
func (m *Memory) ReadWords(d mc.Device, count int) ([]uint16, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]uint16, count)
	if bits, ok := m.Bits[d.Kind]; ok {
		if err := checkRange(d, WordPoints(d.Kind, count)); err != nil {
			return nil, err
		}
		for i := range out {
			for j := 0; j < 16; j++ {
				if bits[int(d.Offset)+i*16+j] != 0 {
					out[i] |= 1 << j
				}
			}
		}
		return out, nil
	}

	words, ok := m.Words[d.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownDevice, d.Kind)
	}
	if err := checkRange(d, count); err != nil {
		return nil, err
	}
	copy(out, words[d.Offset:])
	return out, nil
}

// WriteWords writes consecutive words.
func (m *Memory) WriteWords(d mc.Device, values []uint16) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if bits, ok := m.Bits[d.Kind]; ok {
		if err := checkRange(d, WordPoints(d.Kind, len(values))); err != nil {
			return err
		}
		for i, v := range values {
			for j := 0; j < 16; j++ {
				bits[int(d.Offset)+i*16+j] = byte(v>>j) & 1
			}
		}
		return nil
	}

	words, ok := m.Words[d.Kind]
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownDevice, d.Kind)
	}
	if err := checkRange(d, len(values)); err != nil {
		return err
	}
	copy(words[d.Offset:], values)
	return nil
}

// Point returns the raw value of one storage point.
func (m *Memory) Point(k mc.DeviceKind, offset int) (uint16, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if offset < 0 || offset >= Points {
		return 0, false
	}
	if bits, ok := m.Bits[k]; ok {
		return uint16(bits[offset]), true
	}
	if words, ok := m.Words[k]; ok {
		return words[offset], true
	}
	return 0, false
}

// SetPoint stores the raw value of one storage point.
func (m *Memory) SetPoint(k mc.DeviceKind, offset int, v uint16) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if offset < 0 || offset >= Points {
		return false
	}
	if bits, ok := m.Bits[k]; ok {
		bits[offset] = byte(v & 1)
		return true
	}
	if words, ok := m.Words[k]; ok {
		words[offset] = v
		return true
	}
	return false
}

func (m *Memory) bitRange(d mc.Device, count int) ([]byte, error) {
	bits, ok := m.Bits[d.Kind]
	if !ok {
		if _, word := m.Words[d.Kind]; word {
			return nil, fmt.Errorf("%w: %v", ErrNotBitDevice, d.Kind)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnknownDevice, d.Kind)
	}
	if err := checkRange(d, count); err != nil {
		return nil, err
	}
	return bits[d.Offset : int(d.Offset)+count], nil
}

func checkRange(d mc.Device, points int) error {
	if int(d.Offset)+points > Points {
		return fmt.Errorf("%w: %v + %d points", ErrOutOfRange, d, points)
	}
	return nil
}
