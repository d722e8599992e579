// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package mc

import (
	"errors"
	"testing"
)

func TestParseDevice(t *testing.T) {
	tests := []struct {
		name string
		want Device
	}{
		{"D100", Device{KindD, 100}},
		{"d100", Device{KindD, 100}},
		{"X1A", Device{KindX, 0x1A}},
		{"y1f", Device{KindY, 0x1F}},
		{"B10", Device{KindB, 0x10}},
		{"W100", Device{KindW, 0x100}},
		{"ZR5", Device{KindZR, 5}},
		{"Z5", Device{KindZ, 5}},
		{"CC12", Device{KindCC, 12}},
		{"CN3", Device{KindCN, 3}},
		{"SD20", Device{KindSD, 20}},
		{"SM400", Device{KindSM, 400}},
		{"TN7", Device{KindTN, 7}},
		{"TS0", Device{KindTS, 0}},
		{"M8000", Device{KindM, 8000}},
		{"R32767", Device{KindR, 32767}},
		{"L10", Device{KindL, 10}},
		{"TT1", Device{KindTT, 1}},
		{"A3", Device{KindA, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDevice(tt.name)
			if err != nil {
				t.Fatalf("ParseDevice(%q) error = %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("ParseDevice(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestParseDevice_Invalid(t *testing.T) {
	tests := []string{
		"",
		"Q10",
		"1D",
		"D",
		"DX1",
		"D1A",
		"XG",
		"CX1",
		"C",
		"S10",
		"SX1",
		"TA1",
		"T",
		"ZRA",
		"D-1",
		"D 1",
		"D16777216",
	}

	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseDevice(name)
			if !errors.Is(err, ErrInvalidDeviceFormat) {
				t.Fatalf("ParseDevice(%q) = %v, %v; want ErrInvalidDeviceFormat", name, got, err)
			}
			if got != (Device{}) {
				t.Errorf("ParseDevice(%q) returned %v alongside error", name, got)
			}
		})
	}
}

func TestDevice_StringRoundTrip(t *testing.T) {
	for _, name := range []string{"D100", "X1A", "ZR5", "Z5", "CC12", "W1FF", "SM400"} {
		d, err := ParseDevice(name)
		if err != nil {
			t.Fatalf("ParseDevice(%q) error = %v", name, err)
		}
		if d.String() != name {
			t.Errorf("String() = %q, want %q", d.String(), name)
		}
		again, err := ParseDevice(d.String())
		if err != nil || again != d {
			t.Errorf("re-parse of %q = %v, %v", d.String(), again, err)
		}
	}
}

func TestDeviceKind_Classification(t *testing.T) {
	words := map[DeviceKind]bool{KindD: true, KindSD: true, KindZ: true, KindZR: true, KindR: true, KindW: true}
	hex := map[DeviceKind]bool{KindX: true, KindY: true, KindB: true, KindW: true}

	for k := range kindNames {
		if got := k.IsBit(); got == words[k] {
			t.Errorf("%v.IsBit() = %v", k, got)
		}
		if got := k.IsHex(); got != hex[k] {
			t.Errorf("%v.IsHex() = %v", k, got)
		}
	}
}

func TestDeviceKind_WireCode(t *testing.T) {
	if KindM != 0x90 || KindD != 0xA8 || KindW != 0xB4 || KindZ != 0xCC {
		t.Fatalf("unexpected wire codes: M=%#x D=%#x W=%#x Z=%#x", uint8(KindM), uint8(KindD), uint8(KindW), uint8(KindZ))
	}
	for _, k := range []DeviceKind{KindTT, KindTM, KindCT, KindCM, KindA, KindUnknown} {
		if k.HasWireCode() {
			t.Errorf("%v.HasWireCode() = true", k)
		}
	}
	for _, k := range []DeviceKind{KindM, KindD, KindZR, KindSN, KindZ} {
		if !k.HasWireCode() {
			t.Errorf("%v.HasWireCode() = false", k)
		}
	}
	if KindByName("QQ") != KindUnknown {
		t.Errorf("KindByName(QQ) should be KindUnknown")
	}
}
