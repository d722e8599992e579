// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package mc

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func bits(v ...int) []bool {
	out := make([]bool, len(v))
	for i, x := range v {
		out[i] = x != 0
	}
	return out
}

func TestPackBits(t *testing.T) {
	tests := []struct {
		name string
		in   []bool
		want []byte
	}{
		{"Empty", nil, []byte{}},
		{"Single", bits(1), []byte{0x10}},
		{"Pair", bits(1, 0), []byte{0x10}},
		{"PairLow", bits(0, 1), []byte{0x01}},
		{"Odd", bits(1, 0, 1), []byte{0x10, 0x10}},
		{"Five", bits(1, 0, 1, 1, 0), []byte{0x10, 0x11, 0x00}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PackBits(tt.in); !bytes.Equal(got, tt.want) {
				t.Errorf("PackBits() = %X, want %X", got, tt.want)
			}
		})
	}
}

func TestBits_RoundTrip(t *testing.T) {
	for _, in := range [][]bool{bits(1, 0, 1, 1, 0), bits(1), bits(0, 1), bits(1, 1, 1, 1, 1, 1, 1)} {
		got := UnpackBits(PackBits(in), len(in))
		if diff := cmp.Diff(in, got); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestUnpackBits_ShortData(t *testing.T) {
	got := UnpackBits([]byte{0x11}, 4)
	if diff := cmp.Diff(bits(1, 1, 0, 0), got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestWords_RoundTrip(t *testing.T) {
	in := []int16{0, 1, -1, 32767, -32768, 0x1234}
	raw := PackWords(in)
	if !bytes.Equal(raw[:4], []byte{0x00, 0x00, 0x01, 0x00}) || !bytes.Equal(raw[4:6], []byte{0xFF, 0xFF}) {
		t.Errorf("PackWords() = %X", raw)
	}
	if diff := cmp.Diff(in, UnpackWords(raw, len(in))); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
