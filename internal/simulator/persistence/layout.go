// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"unsafe"

	"github.com/ffutop/mc-protocol/internal/simulator/model"
	"github.com/ffutop/mc-protocol/mc"
)

// region is the part of a storage file that backs one device kind.
type region struct {
	offset int
	width  int // bytes per point
}

// The file holds one region per kind in wire code order: model.Points bytes
// for bit devices and model.Points*2 bytes for word devices.
var regions, totalSize = buildLayout()

func buildLayout() (map[mc.DeviceKind]region, int) {
	layout := make(map[mc.DeviceKind]region)
	size := 0
	for _, k := range model.Kinds() {
		r := region{offset: size, width: 1}
		if !k.IsBit() {
			r.width = 2
		}
		layout[k] = r
		size += model.Points * r.width
	}
	return layout, size
}

// byteRange returns the bytes backing points [offset, offset+points) of kind.
func byteRange(kind mc.DeviceKind, offset, points int) (start, end int, ok bool) {
	r, ok := regions[kind]
	if !ok || offset < 0 || points < 0 || offset+points > model.Points {
		return 0, 0, false
	}
	start = r.offset + offset*r.width
	return start, start + points*r.width, true
}

// mapBytesToMemory constructs a Memory backed by the provided data slice.
// Word regions are cast in place, so stored words use the host's byte order
// and a file is only portable between hosts of the same endianness.
func mapBytesToMemory(data []byte) *model.Memory {
	m := &model.Memory{
		Bits:  make(map[mc.DeviceKind][]byte),
		Words: make(map[mc.DeviceKind][]uint16),
	}
	for k, r := range regions {
		b := data[r.offset : r.offset+model.Points*r.width]
		if r.width == 1 {
			m.Bits[k] = b
			continue
		}
		m.Words[k] = unsafe.Slice((*uint16)(unsafe.Pointer(&b[0])), model.Points)
	}
	return m
}
