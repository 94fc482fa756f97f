// Copyright (c) 2024-2025, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

// Package conf loads and validates the driver configuration.
package conf

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/openthread/ot-radiodrv/types"
)

// minAckTimeoutUs is the earliest an imm-ACK can be fully received: the
// transmitter's turnaround plus the ACK's air time.
const minAckTimeoutUs = types.AifsTimeUs +
	(types.PhyHeaderLenBytes+types.ImmAckLenBytes)*types.TimeUsPerOctet

// Config is the startup configuration of one radio driver instance.
type Config struct {
	// Channel is the initial 802.15.4 channel (11..26).
	Channel types.ChannelId `yaml:"channel"`

	// CcaMode selects the CCA method: ed, carrier, carrier-and-ed,
	// carrier-or-ed.
	CcaMode string `yaml:"cca-mode"`

	// CcaEdThresholdDbm is the ED threshold for CCA mode(s) using energy.
	CcaEdThresholdDbm int8 `yaml:"cca-ed-threshold"`

	// RxBuffers is the number of receive buffer slots in the pool.
	RxBuffers int `yaml:"rx-buffers"`

	// AckTimeoutUs bounds the wait for an imm-ACK after a transmission.
	AckTimeoutUs uint32 `yaml:"ack-timeout-us"`

	// TxPowerDbm is the transmit power. Informational to the peripheral
	// binding; the FSM does not read it.
	TxPowerDbm int8 `yaml:"tx-power"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Channel:           11,
		CcaMode:           "ed",
		CcaEdThresholdDbm: types.DefaultCcaConfig().EdThresholdDbm,
		RxBuffers:         4,
		AckTimeoutUs:      types.AckTimeoutUs,
		TxPowerDbm:        0,
	}
}

// Load reads a YAML config file. Omitted keys keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (cfg *Config) Validate() error {
	if cfg.Channel < types.MinChannelNumber || cfg.Channel > types.MaxChannelNumber {
		return errors.Errorf("channel %d out of range %d..%d", cfg.Channel,
			types.MinChannelNumber, types.MaxChannelNumber)
	}
	if _, ok := types.ParseCcaMode(cfg.CcaMode); !ok {
		return errors.Errorf("unknown cca-mode %q", cfg.CcaMode)
	}
	if cfg.RxBuffers < 1 {
		return errors.Errorf("rx-buffers must be >= 1, got %d", cfg.RxBuffers)
	}
	if cfg.AckTimeoutUs < minAckTimeoutUs {
		return errors.Errorf("ack-timeout-us must be >= %d (turnaround plus imm-ACK air time)",
			minAckTimeoutUs)
	}
	return nil
}

// CcaConfig converts the textual CCA settings to the driver's runtime form.
// Call after Validate.
func (cfg *Config) CcaConfig() types.CcaConfig {
	mode, _ := types.ParseCcaMode(cfg.CcaMode)
	return types.CcaConfig{Mode: mode, EdThresholdDbm: cfg.CcaEdThresholdDbm}
}
