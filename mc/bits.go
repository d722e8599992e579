// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package mc

import "encoding/binary"

// PackBits packs bit values two per byte: even elements go to the high nibble,
// odd elements to the low nibble. An odd count leaves the last low nibble empty.
func PackBits(values []bool) []byte {
	out := make([]byte, (len(values)+1)/2)
	for i, v := range values {
		if !v {
			continue
		}
		if i%2 == 0 {
			out[i/2] |= 0x10
		} else {
			out[i/2] |= 0x01
		}
	}
	return out
}

// UnpackBits reverses PackBits for count elements. Missing bytes read as off.
func UnpackBits(data []byte, count int) []bool {
	out := make([]bool, count)
	for i := 0; i < count && i/2 < len(data); i++ {
		b := data[i/2]
		if i%2 == 0 {
			out[i] = (b>>4)&1 == 1
		} else {
			out[i] = b&1 == 1
		}
	}
	return out
}

// PackWords encodes words as little-endian 16-bit values.
func PackWords(values []int16) []byte {
	out := make([]byte, 0, len(values)*2)
	for _, v := range values {
		out = binary.LittleEndian.AppendUint16(out, uint16(v))
	}
	return out
}

// UnpackWords decodes count little-endian signed words. data must hold 2*count bytes.
func UnpackWords(data []byte, count int) []int16 {
	out := make([]int16, count)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return out
}
