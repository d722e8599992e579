// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/ffutop/mc-protocol/internal/simulator/model"
	"github.com/ffutop/mc-protocol/mc"
)

// SQLStorage keeps one row per written point in table mc_devices.
// The driver must be registered by the caller, e.g. a blank import of
// github.com/mattn/go-sqlite3 in main.
type SQLStorage struct {
	driver string
	dsn    string
	db     *sql.DB
	memory *model.Memory
}

// NewSQLStorage creates a new SQLStorage.
func NewSQLStorage(driver, dsn string) *SQLStorage {
	return &SQLStorage{
		driver: driver,
		dsn:    dsn,
	}
}

// Load connects to the database and reads every stored point.
func (s *SQLStorage) Load() (*model.Memory, error) {
	db, err := sql.Open(s.driver, s.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	s.db = db

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	m := model.NewMemory()
	rows, err := db.Query("SELECT kind, address, value FROM mc_devices")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind, offset, value int
		if err := rows.Scan(&kind, &offset, &value); err != nil {
			return nil, fmt.Errorf("failed to scan device row: %w", err)
		}
		if !m.SetPoint(mc.DeviceKind(kind), offset, uint16(value)) {
			slog.Warn("Ignoring stored point", "kind", kind, "offset", offset)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read devices: %w", err)
	}

	s.memory = m
	return m, nil
}

func (s *SQLStorage) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS mc_devices (
		kind INTEGER,
		address INTEGER,
		value INTEGER,
		PRIMARY KEY (kind, address)
	);
	`
	_, err := s.db.Exec(query)
	return err
}

// Save is a no-op, OnWrite keeps the table current.
func (s *SQLStorage) Save(m *model.Memory) error {
	return nil
}

// OnWrite upserts the changed points in one transaction.
func (s *SQLStorage) OnWrite(kind mc.DeviceKind, offset, points int) {
	if s.db == nil || s.memory == nil {
		return
	}
	if err := s.upsert(kind, offset, points); err != nil {
		slog.Error("Failed to persist points", "kind", kind, "offset", offset, "points", points, "err", err)
	}
}

func (s *SQLStorage) upsert(kind mc.DeviceKind, offset, points int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO mc_devices (kind, address, value) VALUES (?, ?, ?) ON CONFLICT(kind, address) DO UPDATE SET value=excluded.value")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := 0; i < points; i++ {
		v, ok := s.memory.Point(kind, offset+i)
		if !ok {
			break
		}
		if _, err := stmt.Exec(int(kind), offset+i, int(v)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
