// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package model

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ffutop/mc-protocol/mc"
)

func TestKinds(t *testing.T) {
	kinds := Kinds()
	if len(kinds) != 28 {
		t.Errorf("len(Kinds()) = %d, want 28", len(kinds))
	}
	for _, k := range kinds {
		if k == mc.KindTT || k == mc.KindA {
			t.Errorf("reserved kind %v listed", k)
		}
	}
}

func TestMemory_Words(t *testing.T) {
	m := NewMemory()
	d := mc.MustParseDevice("D100")

	if err := m.WriteWords(d, []uint16{1, 0xFFFF, 3}); err != nil {
		t.Fatal(err)
	}
	got, err := m.ReadWords(d.Add(1), 2)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]uint16{0xFFFF, 3}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestMemory_Bits(t *testing.T) {
	m := NewMemory()
	d := mc.MustParseDevice("M10")

	if err := m.WriteBits(d, []bool{true, false, true}); err != nil {
		t.Fatal(err)
	}
	got, err := m.ReadBits(d, 4)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]bool{true, false, true, false}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestMemory_WordAccessToBitDevice(t *testing.T) {
	m := NewMemory()
	d := mc.MustParseDevice("M16")

	if err := m.WriteWords(d, []uint16{0x8001}); err != nil {
		t.Fatal(err)
	}
	bits, _ := m.ReadBits(d, 16)
	if !bits[0] || !bits[15] || bits[1] {
		t.Errorf("bits = %v", bits)
	}
	words, err := m.ReadWords(d, 1)
	if err != nil || words[0] != 0x8001 {
		t.Errorf("ReadWords = %X, %v", words, err)
	}
}

func TestMemory_Errors(t *testing.T) {
	m := NewMemory()
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"BitOnWordDevice", m.WriteBits(mc.MustParseDevice("D0"), []bool{true}), ErrNotBitDevice},
		{"PastEnd", m.WriteWords(mc.Device{Kind: mc.KindD, Offset: Points - 1}, []uint16{1, 2}), ErrOutOfRange},
		{"BitWordsPastEnd", m.WriteWords(mc.Device{Kind: mc.KindM, Offset: Points - 8}, []uint16{1}), ErrOutOfRange},
		{"Reserved", m.WriteWords(mc.Device{Kind: mc.KindTT}, []uint16{1}), ErrUnknownDevice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.want) {
				t.Errorf("err = %v, want %v", tt.err, tt.want)
			}
		})
	}
}

func TestMemory_Points(t *testing.T) {
	m := NewMemory()
	if !m.SetPoint(mc.KindW, 3, 0x1234) || !m.SetPoint(mc.KindX, 3, 1) {
		t.Fatal("SetPoint failed")
	}
	if v, ok := m.Point(mc.KindW, 3); !ok || v != 0x1234 {
		t.Errorf("Point(W3) = %X, %v", v, ok)
	}
	if v, ok := m.Point(mc.KindX, 3); !ok || v != 1 {
		t.Errorf("Point(X3) = %X, %v", v, ok)
	}
	if _, ok := m.Point(mc.KindA, 0); ok {
		t.Errorf("Point on reserved kind succeeded")
	}
	if m.SetPoint(mc.KindD, Points, 1) {
		t.Errorf("SetPoint past end succeeded")
	}
}
