// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"fmt"

	"github.com/ffutop/mc-protocol/internal/simulator/model"
	"github.com/ffutop/mc-protocol/mc"
)

// Storage defines the interface for persisting the simulator device memory.
type Storage interface {
	// Load returns the device memory, empty if nothing was stored yet.
	Load() (*model.Memory, error)

	// Save saves the whole device memory.
	Save(m *model.Memory) error

	// OnWrite is called after points [offset, offset+points) of kind changed.
	OnWrite(kind mc.DeviceKind, offset, points int)

	Close() error
}

// New creates the storage named by typ. path is a file path for "file" and
// "mmap" and a data source name for "sql".
func New(typ, path string) (Storage, error) {
	switch typ {
	case "", "memory":
		return NewMemoryStorage(), nil
	case "file":
		return NewFileStorage(path), nil
	case "mmap":
		return NewMmapStorage(path), nil
	case "sql":
		return NewSQLStorage("sqlite3", path), nil
	}
	return nil, fmt.Errorf("unknown persistence type: %s", typ)
}
