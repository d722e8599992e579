// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ffutop/mc-protocol/internal/config"
	"github.com/ffutop/mc-protocol/internal/simulator/persistence"
	"github.com/ffutop/mc-protocol/mc"
)

func TestNewServers(t *testing.T) {
	servers, err := newServers([]config.ListenerConfig{
		{Type: "tcp", Address: "127.0.0.1:0"},
		{Type: "udp", Address: "127.0.0.1:0"},
	})
	if err != nil || len(servers) != 2 {
		t.Fatalf("newServers = %v, %v", servers, err)
	}
	if _, err := newServers([]config.ListenerConfig{{Type: "serial"}}); err == nil {
		t.Error("unknown listener type accepted")
	}
	if _, err := newServers(nil); err == nil {
		t.Error("empty listener list accepted")
	}
}

func TestRun_StopsAndReleasesStorage(t *testing.T) {
	for _, typ := range []string{"file", "mmap", "sql"} {
		t.Run(typ, func(t *testing.T) {
			cfg := config.SimulatorConfig{
				Listeners:   []config.ListenerConfig{{Type: "tcp", Address: "127.0.0.1:0"}},
				Persistence: config.PersistenceConfig{Type: typ, Path: filepath.Join(t.TempDir(), "plc."+typ)},
			}

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			if err := run(ctx, cfg); err != nil {
				t.Fatalf("run: %v", err)
			}

			s, err := persistence.New(typ, cfg.Persistence.Path)
			if err != nil {
				t.Fatal(err)
			}
			defer s.Close()
			m, err := s.Load()
			if err != nil {
				t.Fatalf("storage not reusable after run: %v", err)
			}
			if _, err := m.ReadWords(mc.MustParseDevice("D0"), 1); err != nil {
				t.Error(err)
			}
		})
	}
}
