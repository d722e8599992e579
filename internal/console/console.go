// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package console evaluates the operator expressions understood by mcclient:
//
//	D10        read one point
//	D10,4      read four points
//	D10=5      write one point
//	D10..12=5  write 5 to D10, D11 and D12
//
// Bit devices are accessed with bit commands and print 0 or 1; word devices
// are accessed with word commands.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/ffutop/mc-protocol/mc"
)

// ErrSyntax is returned for expressions that match none of the forms.
var ErrSyntax = errors.New("console: invalid expression")

// PLC is the device access used by the console. *plc.Client implements it.
type PLC interface {
	GetBits(ctx context.Context, d mc.Device, count uint16) ([]bool, mc.EndCode, error)
	SetBits(ctx context.Context, d mc.Device, values []bool) (mc.EndCode, error)
	ReadBlock(ctx context.Context, d mc.Device, count uint16) ([]int16, mc.EndCode, error)
	WriteBlock(ctx context.Context, d mc.Device, values []int16) (mc.EndCode, error)
}

// Command is one parsed expression.
type Command struct {
	Device mc.Device
	Count  uint16
	Write  bool
	Value  int16

	// list is set by the NAME,N form, which prints nothing but the
	// error line when the PLC rejects the read.
	list bool
	text string
}

func (c Command) String() string {
	return c.text
}

// Parse parses a single expression.
func Parse(line string) (Command, error) {
	text := strings.ToUpper(strings.TrimSpace(line))
	cmd := Command{Count: 1, text: text}

	if name, n, ok := strings.Cut(text, ","); ok {
		d, err := mc.ParseDevice(strings.TrimSpace(name))
		if err != nil {
			return Command{}, err
		}
		count, err := strconv.ParseUint(strings.TrimSpace(n), 10, 16)
		if err != nil || count == 0 {
			return Command{}, fmt.Errorf("%w: bad count in %q", ErrSyntax, line)
		}
		cmd.Device, cmd.Count, cmd.list = d, uint16(count), true
		return cmd, nil
	}

	if lhs, rhs, ok := strings.Cut(text, "="); ok {
		v, err := parseValue(strings.TrimSpace(rhs))
		if err != nil {
			return Command{}, fmt.Errorf("%w: bad value in %q", ErrSyntax, line)
		}
		cmd.Write, cmd.Value = true, v

		name, end, isRange := strings.Cut(lhs, "..")
		d, err := mc.ParseDevice(strings.TrimSpace(name))
		if err != nil {
			return Command{}, err
		}
		cmd.Device = d
		if isRange {
			base := 10
			if d.Kind.IsHex() {
				base = 16
			}
			last, err := strconv.ParseUint(strings.TrimSpace(end), base, 24)
			if err != nil || uint32(last) < d.Offset || uint64(last)-uint64(d.Offset) >= math.MaxUint16 {
				return Command{}, fmt.Errorf("%w: bad range in %q", ErrSyntax, line)
			}
			cmd.Count = uint16(uint32(last) - d.Offset + 1)
		}
		return cmd, nil
	}

	d, err := mc.ParseDevice(text)
	if err != nil {
		return Command{}, err
	}
	cmd.Device = d
	return cmd, nil
}

// parseValue accepts signed words and their unsigned spelling up to 0xFFFF.
func parseValue(s string) (int16, error) {
	v, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, err
	}
	if v < math.MinInt16 || v > math.MaxUint16 {
		return 0, strconv.ErrRange
	}
	return int16(uint16(v)), nil
}

// Exec runs cmd against p and returns the output lines. A non-zero end code
// is reported as an "ERROR:0x...." line, not as an error.
func Exec(ctx context.Context, p PLC, cmd Command) ([]string, error) {
	if cmd.Write {
		return execWrite(ctx, p, cmd)
	}
	return execRead(ctx, p, cmd)
}

func execRead(ctx context.Context, p PLC, cmd Command) ([]string, error) {
	var (
		values []int
		code   mc.EndCode
	)
	if cmd.Device.Kind.IsBit() {
		bits, c, err := p.GetBits(ctx, cmd.Device, cmd.Count)
		if err != nil {
			return nil, err
		}
		code = c
		for _, b := range bits {
			v := 0
			if b {
				v = 1
			}
			values = append(values, v)
		}
	} else {
		words, c, err := p.ReadBlock(ctx, cmd.Device, cmd.Count)
		if err != nil {
			return nil, err
		}
		code = c
		for _, w := range words {
			values = append(values, int(w))
		}
	}

	if !code.OK() && cmd.list {
		return []string{errorLine(code)}, nil
	}
	lines := make([]string, 0, len(values)+1)
	for i, v := range values {
		lines = append(lines, fmt.Sprintf("%v=%d", cmd.Device.Add(uint32(i)), v))
	}
	if !code.OK() {
		lines = append(lines, errorLine(code))
	}
	return lines, nil
}

func execWrite(ctx context.Context, p PLC, cmd Command) ([]string, error) {
	var (
		code mc.EndCode
		err  error
	)
	if cmd.Device.Kind.IsBit() {
		bits := make([]bool, cmd.Count)
		for i := range bits {
			bits[i] = cmd.Value != 0
		}
		code, err = p.SetBits(ctx, cmd.Device, bits)
	} else {
		words := make([]int16, cmd.Count)
		for i := range words {
			words[i] = cmd.Value
		}
		code, err = p.WriteBlock(ctx, cmd.Device, words)
	}
	if err != nil {
		return nil, err
	}
	lines := []string{cmd.text}
	if !code.OK() {
		lines = append(lines, errorLine(code))
	}
	return lines, nil
}

func errorLine(code mc.EndCode) string {
	return "ERROR:" + code.String()
}

// Run evaluates every non-empty line of r and writes the output to w.
// Lines starting with '#' are skipped. Failed expressions print an
// "ERROR:" line and evaluation continues; the failures are returned joined.
func Run(ctx context.Context, p PLC, r io.Reader, w io.Writer) error {
	var errs []error
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := runLine(ctx, p, line, w); err != nil {
			fmt.Fprintf(w, "ERROR:%v\n", err)
			errs = append(errs, err)
		}
		if ctx.Err() != nil {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func runLine(ctx context.Context, p PLC, line string, w io.Writer) error {
	cmd, err := Parse(line)
	if err != nil {
		return err
	}
	lines, err := Exec(ctx, p, cmd)
	if err != nil {
		return err
	}
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	return nil
}
