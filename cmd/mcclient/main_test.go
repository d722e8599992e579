// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ffutop/mc-protocol/internal/simulator"
	"github.com/ffutop/mc-protocol/internal/simulator/model"
	"github.com/ffutop/mc-protocol/transport/serial"
	"github.com/ffutop/mc-protocol/transport/tcp"
	"github.com/ffutop/mc-protocol/transport/udp"
)

func TestLoadConfig_Flags(t *testing.T) {
	cfg, exprs, err := loadConfig([]string{"-t", "UDP", "-a", "10.0.0.1:5013", "-f", "4e", "--serial_number", "9", "D10", "M0,2"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PLC.Transport != "udp" || cfg.PLC.Address != "10.0.0.1:5013" {
		t.Errorf("plc = %+v", cfg.PLC)
	}
	s, err := cfg.PLC.Session.Session()
	if err != nil {
		t.Fatal(err)
	}
	if s.Frame.String() != "MC4E" || s.SerialNumber != 9 || s.StationNumber != 0xFF {
		t.Errorf("session = %+v", s)
	}
	if len(exprs) != 2 || exprs[0] != "D10" || exprs[1] != "M0,2" {
		t.Errorf("exprs = %v", exprs)
	}
	if cfg.PLC.Serial.BaudRate != 19200 {
		t.Errorf("baud rate default = %d", cfg.PLC.Serial.BaudRate)
	}
}

func TestNewTransport(t *testing.T) {
	cfg, _, err := loadConfig([]string{"-W", "3s"})
	if err != nil {
		t.Fatal(err)
	}
	tr, err := newTransport(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if c, ok := tr.(*tcp.Client); !ok || c.Timeout != 3*time.Second {
		t.Errorf("transport = %#v", tr)
	}

	cfg.PLC.Transport = "udp"
	if tr, _ := newTransport(cfg); tr == nil {
		t.Error("udp transport is nil")
	} else if _, ok := tr.(*udp.Client); !ok {
		t.Errorf("transport = %T", tr)
	}
	cfg.PLC.Transport = "serial"
	if tr, _ := newTransport(cfg); tr == nil {
		t.Error("serial transport is nil")
	} else if _, ok := tr.(*serial.Client); !ok {
		t.Errorf("transport = %T", tr)
	}
	cfg.PLC.Transport = "local"
	if tr, err := newTransport(cfg); err != nil {
		t.Errorf("local transport: %v", err)
	} else {
		tr.Close()
	}
	cfg.PLC.Transport = "can"
	if _, err := newTransport(cfg); err == nil {
		t.Error("unknown transport accepted")
	}
}

func TestRun_Local(t *testing.T) {
	data := filepath.Join(t.TempDir(), "plc.bin")
	args := []string{"-t", "local", "--persistence", "file", "--data", data}

	var out bytes.Buffer
	if err := run(context.Background(), append(args, "ZR5=-7"), nil, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	out.Reset()
	if err := run(context.Background(), append(args, "ZR5"), nil, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := out.String(); got != "ZR5=-7\n" {
		t.Errorf("output = %q", got)
	}
}

func TestRun(t *testing.T) {
	srv := tcp.NewServer("127.0.0.1:0")
	addr, err := srv.Listen()
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go srv.Start(ctx, simulator.New(model.NewMemory(), nil).Handle)

	var out bytes.Buffer
	if err := run(ctx, []string{"-a", addr.String(), "D10=5", "D10,2"}, nil, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got, want := out.String(), "D10=5\nD10=5\nD11=0\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	out.Reset()
	err = run(ctx, []string{"-a", addr.String()}, strings.NewReader("M3=1\nM3\nQ1\n"), &out)
	if err == nil {
		t.Error("bad expression not reported")
	}
	if !strings.HasPrefix(out.String(), "M3=1\nM3=1\nERROR:") {
		t.Errorf("output = %q", out.String())
	}
}
