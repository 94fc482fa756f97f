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

// Package types holds the shared types and 802.15.4 PHY/MAC constants of the
// radio driver.
package types

import "github.com/simonlingoogle/go-simplelogger"

type ChannelId = uint8

// IEEE 802.15.4-2015 2.4 GHz O-QPSK PHY parameters. The driver assumes this
// PHY throughout; sub-GHz pages are not supported.
const (
	MinChannelNumber ChannelId = 11
	MaxChannelNumber ChannelId = 26

	TimeUsPerSymbol   = 16  // 62.5 ksymbol/s
	SymbolsPerOctet   = 2   // 4 bits per symbol
	TimeUsPerOctet    = TimeUsPerSymbol * SymbolsPerOctet
	PhyHeaderLenBytes = 6   // preamble (4) + SFD (1) + PHR (1)
	MaxPsduLenBytes   = 127 // aMaxPhyPacketSize
	FcsLenBytes       = 2
	ImmAckLenBytes    = 3 + FcsLenBytes // FCF (2) + seq (1) + FCS

	AifsTimeUs   = 12 * TimeUsPerSymbol  // aTurnaroundTime before an imm-ACK
	CcaTimeUs    = 8 * TimeUsPerSymbol   // one CCA measurement period
	AckTimeoutUs = 54 * TimeUsPerSymbol  // macAckWaitDuration for imm-ACKs
	EdMinTimeUs  = CcaTimeUs             // shortest ED measurement the PHY does
)

const (
	// RssiInvalid marks an RSSI/ED value that was not measured.
	RssiInvalid int8 = 127
)

// CcaMode selects how the radio judges the channel busy during CCA.
type CcaMode byte

const (
	CcaModeEd          CcaMode = 0 // energy above threshold
	CcaModeCarrier     CcaMode = 1 // carrier sense only
	CcaModeCarrierEd   CcaMode = 2 // carrier sense AND energy
	CcaModeCarrierOrEd CcaMode = 3
)

func (m CcaMode) String() string {
	switch m {
	case CcaModeEd:
		return "ed"
	case CcaModeCarrier:
		return "carrier"
	case CcaModeCarrierEd:
		return "carrier-and-ed"
	case CcaModeCarrierOrEd:
		return "carrier-or-ed"
	default:
		simplelogger.Panicf("invalid CcaMode: %d", byte(m))
		return "invalid"
	}
}

// ParseCcaMode parses the textual form used in config files and the CLI.
func ParseCcaMode(s string) (CcaMode, bool) {
	switch s {
	case "ed":
		return CcaModeEd, true
	case "carrier":
		return CcaModeCarrier, true
	case "carrier-and-ed":
		return CcaModeCarrierEd, true
	case "carrier-or-ed":
		return CcaModeCarrierOrEd, true
	default:
		return CcaModeEd, false
	}
}

// CcaConfig is the process-wide CCA configuration; it is read by the engine
// when arming CCA, ED, or a transmit-with-CCA.
type CcaConfig struct {
	Mode           CcaMode
	EdThresholdDbm int8
}

// DefaultCcaConfig returns the 802.15.4 default for the 2.4 GHz PHY.
func DefaultCcaConfig() CcaConfig {
	return CcaConfig{Mode: CcaModeEd, EdThresholdDbm: -75}
}
