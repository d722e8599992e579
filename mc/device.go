// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package mc

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxOffset is the largest device offset that fits the 3-byte address field.
const MaxOffset = 0xFFFFFF

// DeviceKind identifies a PLC device family. The value is the code sent on the wire.
type DeviceKind uint8

// Device kinds with a wire code.
const (
	KindM  DeviceKind = 0x90
	KindSM DeviceKind = 0x91
	KindL  DeviceKind = 0x92
	KindF  DeviceKind = 0x93
	KindV  DeviceKind = 0x94
	KindS  DeviceKind = 0x98
	KindX  DeviceKind = 0x9C
	KindY  DeviceKind = 0x9D
	KindB  DeviceKind = 0xA0
	KindSB DeviceKind = 0xA1
	KindDX DeviceKind = 0xA2
	KindDY DeviceKind = 0xA3
	KindD  DeviceKind = 0xA8
	KindSD DeviceKind = 0xA9
	KindR  DeviceKind = 0xAF
	KindZR DeviceKind = 0xB0
	KindW  DeviceKind = 0xB4
	KindSW DeviceKind = 0xB5
	KindTC DeviceKind = 0xC0
	KindTS DeviceKind = 0xC1
	KindTN DeviceKind = 0xC2
	KindCC DeviceKind = 0xC3
	KindCS DeviceKind = 0xC4
	KindCN DeviceKind = 0xC5
	KindSC DeviceKind = 0xC6
	KindSS DeviceKind = 0xC7
	KindSN DeviceKind = 0xC8
	KindZ  DeviceKind = 0xCC
)

// Reserved kinds. They are accepted by the parser but have no wire code.
const (
	KindTT DeviceKind = iota + 0xCD
	KindTM
	KindCT
	KindCM
	KindA
	KindUnknown
)

var kindNames = map[DeviceKind]string{
	KindM: "M", KindSM: "SM", KindL: "L", KindF: "F", KindV: "V", KindS: "S",
	KindX: "X", KindY: "Y", KindB: "B", KindSB: "SB", KindDX: "DX", KindDY: "DY",
	KindD: "D", KindSD: "SD", KindR: "R", KindZR: "ZR", KindW: "W", KindSW: "SW",
	KindTC: "TC", KindTS: "TS", KindTN: "TN", KindCC: "CC", KindCS: "CS", KindCN: "CN",
	KindSC: "SC", KindSS: "SS", KindSN: "SN", KindZ: "Z",
	KindTT: "TT", KindTM: "TM", KindCT: "CT", KindCM: "CM", KindA: "A",
}

var kindsByName = func() map[string]DeviceKind {
	m := make(map[string]DeviceKind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

// KindByName resolves a device mnemonic. Unknown names map to KindUnknown.
func KindByName(name string) DeviceKind {
	if k, ok := kindsByName[name]; ok {
		return k
	}
	return KindUnknown
}

func (k DeviceKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("DeviceKind(0x%02X)", uint8(k))
}

// HasWireCode reports whether k can be sent to the PLC.
func (k DeviceKind) HasWireCode() bool {
	return k < KindTT && kindNames[k] != ""
}

// IsBit reports whether k is bit addressable.
func (k DeviceKind) IsBit() bool {
	switch k {
	case KindD, KindSD, KindZ, KindZR, KindR, KindW:
		return false
	}
	return true
}

// IsHex reports whether the textual offset of k is written in base 16.
func (k DeviceKind) IsHex() bool {
	switch k {
	case KindX, KindY, KindB, KindW:
		return true
	}
	return false
}

// Device is a device address inside the PLC.
type Device struct {
	Kind   DeviceKind
	Offset uint32
}

func (d Device) String() string {
	if d.Kind.IsHex() {
		return d.Kind.String() + strings.ToUpper(strconv.FormatUint(uint64(d.Offset), 16))
	}
	return d.Kind.String() + strconv.FormatUint(uint64(d.Offset), 10)
}

// Add returns the device n elements after d.
func (d Device) Add(n uint32) Device {
	return Device{Kind: d.Kind, Offset: d.Offset + n}
}

// ParseDevice parses a device name such as "D100", "X1A" or "ZR20".
func ParseDevice(name string) (Device, error) {
	s := strings.ToUpper(name)
	if s == "" {
		return Device{}, fmt.Errorf("%w: empty name", ErrInvalidDeviceFormat)
	}

	var code, digits string
	switch s[0] {
	case 'A', 'B', 'D', 'F', 'L', 'M', 'R', 'V', 'W', 'X', 'Y':
		code, digits = s[:1], s[1:]
	case 'Z':
		if strings.HasPrefix(s, "ZR") {
			code, digits = "ZR", s[2:]
		} else {
			code, digits = "Z", s[1:]
		}
	case 'C':
		code, digits = twoLetter(s, "CC", "CM", "CN", "CS", "CT")
	case 'S':
		code, digits = twoLetter(s, "SD", "SM")
	case 'T':
		code, digits = twoLetter(s, "TC", "TM", "TN", "TS", "TT")
	}
	if code == "" {
		return Device{}, fmt.Errorf("%w: %q", ErrInvalidDeviceFormat, name)
	}

	kind := KindByName(code)
	if kind == KindUnknown {
		return Device{}, fmt.Errorf("%w: unknown device %q", ErrInvalidDeviceFormat, code)
	}

	base := 10
	if kind.IsHex() {
		base = 16
	}
	offset, err := strconv.ParseUint(digits, base, 24)
	if err != nil {
		return Device{}, fmt.Errorf("%w: bad offset in %q: %w", ErrInvalidDeviceFormat, name, err)
	}
	return Device{Kind: kind, Offset: uint32(offset)}, nil
}

// MustParseDevice is like ParseDevice but panics on error.
func MustParseDevice(name string) Device {
	d, err := ParseDevice(name)
	if err != nil {
		panic(err)
	}
	return d
}

func twoLetter(s string, allowed ...string) (code, digits string) {
	if len(s) < 2 {
		return "", ""
	}
	for _, a := range allowed {
		if s[:2] == a {
			return a, s[2:]
		}
	}
	return "", ""
}
