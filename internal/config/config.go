// Copyright (c) 2025-2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ffutop/mc-protocol/mc"
)

// Config defines the global configuration structure
type Config struct {
	PLC       PLCConfig       `mapstructure:"plc"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
	Log       LogConfig       `mapstructure:"log"`
}

// LogConfig defines logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
	File  string `mapstructure:"file"`  // Log file path
}

// PLCConfig defines the PLC the client talks to
type PLCConfig struct {
	Transport    string        `mapstructure:"transport"` // "tcp", "udp", "serial"
	Address      string        `mapstructure:"address"`   // e.g. "192.168.40.103:5012"
	Timeout      time.Duration `mapstructure:"timeout"`
	DrainTimeout time.Duration `mapstructure:"drain_timeout"` // quiet time that ends a response
	Serial       SerialConfig  `mapstructure:"serial"`        // Used if Transport is "serial"
	Session      SessionConfig `mapstructure:"session"`
}

// SessionConfig defines the routing constants placed in every request
type SessionConfig struct {
	Frame           string `mapstructure:"frame"` // "MC3E" or "MC4E"
	SerialNumber    uint16 `mapstructure:"serial_number"`
	NetworkNumber   uint8  `mapstructure:"network_number"`
	StationNumber   uint16 `mapstructure:"station_number"`
	IONumber        uint16 `mapstructure:"io_number"`
	ChannelNumber   uint16 `mapstructure:"channel_number"`
	MonitoringTimer uint16 `mapstructure:"monitoring_timer"`
}

// SimulatorConfig defines the simulated PLC
type SimulatorConfig struct {
	Listeners   []ListenerConfig  `mapstructure:"listeners"`
	Persistence PersistenceConfig `mapstructure:"persistence"`
}

// ListenerConfig defines one socket the simulator answers on
type ListenerConfig struct {
	Type    string `mapstructure:"type"`    // "tcp", "udp"
	Address string `mapstructure:"address"` // e.g. "0.0.0.0:5012"
}

// PersistenceConfig defines data storage settings
type PersistenceConfig struct {
	Type string `mapstructure:"type"` // "memory", "file", "mmap", "sql"
	Path string `mapstructure:"path"` // File path for "file/mmap", DSN for "sql"
}

// SerialConfig defines serial line settings
type SerialConfig struct {
	Device   string        `mapstructure:"device"`
	BaudRate int           `mapstructure:"baud_rate"`
	DataBits int           `mapstructure:"data_bits"`
	Parity   string        `mapstructure:"parity"`
	StopBits int           `mapstructure:"stop_bits"`
	Timeout  time.Duration `mapstructure:"timeout"`

	// RS485 specific
	RS485              bool          `mapstructure:"rs485"`
	DelayRtsBeforeSend time.Duration `mapstructure:"delay_rts_before_send"`
	DelayRtsAfterSend  time.Duration `mapstructure:"delay_rts_after_send"`
	RtsHighDuringSend  bool          `mapstructure:"rts_high_during_send"`
	RtsHighAfterSend   bool          `mapstructure:"rts_high_after_send"`
	RxDuringTx         bool          `mapstructure:"rx_during_tx"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	d := mc.DefaultSession(mc.Frame3E)

	v.SetDefault("log.level", "info")
	v.SetDefault("plc.transport", "tcp")
	v.SetDefault("plc.address", "127.0.0.1:5012")
	v.SetDefault("plc.timeout", 10*time.Second)
	v.SetDefault("plc.drain_timeout", 20*time.Millisecond)
	v.SetDefault("plc.session.frame", d.Frame.String())
	v.SetDefault("plc.session.serial_number", d.SerialNumber)
	v.SetDefault("plc.session.network_number", d.NetworkNumber)
	v.SetDefault("plc.session.station_number", d.StationNumber)
	v.SetDefault("plc.session.io_number", d.IONumber)
	v.SetDefault("plc.session.channel_number", d.ChannelNumber)
	v.SetDefault("plc.session.monitoring_timer", d.MonitoringTimer)
	v.SetDefault("plc.serial.baud_rate", 19200)
	v.SetDefault("plc.serial.data_bits", 8)
	v.SetDefault("plc.serial.parity", "N")
	v.SetDefault("plc.serial.stop_bits", 1)
	v.SetDefault("simulator.listeners", []map[string]any{
		{"type": "tcp", "address": "0.0.0.0:5012"},
	})
	v.SetDefault("simulator.persistence.type", "memory")
}

// LoadConfig loads configuration from file
func LoadConfig(configFile string) (*Config, error) {
	return Load(viper.New(), configFile)
}

// Load reads configuration into v, which may already carry bound flags.
// A missing config file is only an error when configFile names it explicitly.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/mcprotocol/")
		v.AddConfigPath("$HOME/.mcprotocol")
		v.AddConfigPath(".")
	}

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate / Fixups
	config.PLC.Transport = strings.ToLower(config.PLC.Transport)
	fixupSerial(&config.PLC.Serial)
	if _, err := config.PLC.Session.Session(); err != nil {
		return nil, err
	}
	for i := range config.Simulator.Listeners {
		l := &config.Simulator.Listeners[i]
		l.Type = strings.ToLower(l.Type)
	}

	return &config, nil
}

// Session converts the configured routing constants.
func (c SessionConfig) Session() (mc.Session, error) {
	f, err := mc.ParseFrame(c.Frame)
	if err != nil {
		return mc.Session{}, err
	}
	return mc.Session{
		Frame:           f,
		SerialNumber:    c.SerialNumber,
		NetworkNumber:   c.NetworkNumber,
		StationNumber:   c.StationNumber,
		IONumber:        c.IONumber,
		ChannelNumber:   c.ChannelNumber,
		MonitoringTimer: c.MonitoringTimer,
	}, nil
}

func fixupSerial(s *SerialConfig) {
	s.Parity = strings.ToUpper(s.Parity)
	if s.Timeout == 0 {
		s.Timeout = 500 * time.Millisecond
	}
}
