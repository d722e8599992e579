// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ffutop/mc-protocol/internal/simulator/model"
	"github.com/ffutop/mc-protocol/mc"
)

func TestLayout(t *testing.T) {
	start, end, ok := byteRange(mc.KindM, 10, 3)
	if !ok || end-start != 3 {
		t.Errorf("byteRange(M) = %d, %d, %v", start, end, ok)
	}
	start, end, ok = byteRange(mc.KindD, 10, 3)
	if !ok || end-start != 6 {
		t.Errorf("byteRange(D) = %d, %d, %v", start, end, ok)
	}
	if _, _, ok := byteRange(mc.KindD, model.Points-1, 2); ok {
		t.Errorf("byteRange past end succeeded")
	}
	if _, _, ok := byteRange(mc.KindTT, 0, 1); ok {
		t.Errorf("byteRange on reserved kind succeeded")
	}
	last := regions[mc.KindZ]
	if last.offset+model.Points*last.width != totalSize {
		t.Errorf("last region ends at %d, total %d", last.offset+model.Points*last.width, totalSize)
	}
}

// writeAndReload stores a few points through s, closes it and loads them back
// through reopen.
func writeAndReload(t *testing.T, s Storage, reopen func() Storage) {
	t.Helper()
	m, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	d := mc.MustParseDevice("D100")
	if err := m.WriteWords(d, []uint16{0x1234, 0xBEEF}); err != nil {
		t.Fatal(err)
	}
	s.OnWrite(d.Kind, int(d.Offset), 2)

	x := mc.MustParseDevice("X1F")
	if err := m.WriteBits(x, []bool{true, false, true}); err != nil {
		t.Fatal(err)
	}
	s.OnWrite(x.Kind, int(x.Offset), 3)

	if err := s.Save(m); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2 := reopen()
	defer s2.Close()
	m2, err := s2.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	words, err := m2.ReadWords(d, 2)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]uint16{0x1234, 0xBEEF}, words); diff != "" {
		t.Errorf("words mismatch (-want +got):\n%s", diff)
	}
	bits, err := m2.ReadBits(x, 3)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]bool{true, false, true}, bits); diff != "" {
		t.Errorf("bits mismatch (-want +got):\n%s", diff)
	}
}

func TestFileStorage_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.bin")
	writeAndReload(t, NewFileStorage(path), func() Storage { return NewFileStorage(path) })
}

func TestMmapStorage_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.mmap")
	writeAndReload(t, NewMmapStorage(path), func() Storage { return NewMmapStorage(path) })
}

func TestSQLStorage_Reload(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "devices.db")
	writeAndReload(t, NewSQLStorage("sqlite3", dsn), func() Storage { return NewSQLStorage("sqlite3", dsn) })
}

func TestNew(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		typ     string
		wantErr bool
	}{
		{"", false},
		{"memory", false},
		{"file", false},
		{"mmap", false},
		{"sql", false},
		{"redis", true},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			s, err := New(tt.typ, filepath.Join(dir, tt.typ))
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(%q) error = %v, wantErr %v", tt.typ, err, tt.wantErr)
			}
			if s != nil {
				s.Close()
			}
		})
	}
}
