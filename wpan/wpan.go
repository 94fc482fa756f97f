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

// Package wpan dissects the 802.15.4 MAC header fields the transition engine
// needs: frame type, the AckRequest bit, and the sequence number. It also
// builds immediate ACKs and computes on-air frame durations.
package wpan

import (
	"encoding/binary"
	"fmt"

	"github.com/openthread/ot-radiodrv/types"
)

type FrameType = uint16

const (
	FrameTypeBeacon  FrameType = 0
	FrameTypeData    FrameType = 1
	FrameTypeAck     FrameType = 2
	FrameTypeCommand FrameType = 3
)

// Values for both Src and Dst addressing modes, Table 7-3, 802.15.4-2015.
const (
	AddrModeNone     = 0
	AddrModeReserved = 1
	AddrModeShort    = 2
	AddrModeExtended = 3
)

// FrameControl is the 16-bit FCF at the start of every MAC frame.
type FrameControl uint16

func (fc FrameControl) String() string {
	return fmt.Sprintf("0x%04x", uint16(fc))
}

func (fc FrameControl) FrameType() FrameType {
	return FrameType(fc & 0x0007)
}

func (fc FrameControl) SecurityEnabled() bool {
	return (fc & 0x0008) != 0
}

func (fc FrameControl) FramePending() bool {
	return (fc & 0x0010) != 0
}

func (fc FrameControl) AckRequest() bool {
	return (fc & 0x0020) != 0
}

func (fc FrameControl) PanidCompression() bool {
	return (fc & 0x0040) != 0
}

func (fc FrameControl) SequenceNumberSuppression() bool {
	return (fc & 0x0100) != 0
}

func (fc FrameControl) DestAddrMode() uint16 {
	return uint16((fc & 0x0c00) >> 10)
}

func (fc FrameControl) SourceAddrMode() uint16 {
	return uint16((fc & 0xc000) >> 14)
}

func (fc FrameControl) FrameVersion() uint16 {
	return uint16((fc & 0x3000) >> 12)
}

// ParseFrameControl reads the FCF from the start of a PSDU. A PSDU shorter
// than the FCF yields a zero FCF (reserved frame type 4 is never produced,
// type 0/beacon is; callers reject on length first).
func ParseFrameControl(psdu []byte) FrameControl {
	if len(psdu) < 2 {
		return 0
	}
	return FrameControl(binary.LittleEndian.Uint16(psdu[:2]))
}

// SequenceNumber returns the MAC sequence number of the PSDU, or false when
// the frame suppresses it.
func SequenceNumber(psdu []byte) (uint8, bool) {
	fc := ParseFrameControl(psdu)
	if fc.SequenceNumberSuppression() || len(psdu) < 3 {
		return 0, false
	}
	return psdu[2], true
}

// AckRequested reports whether the PSDU has the AckRequest FCF bit set.
// ACK frames themselves are never acknowledged.
func AckRequested(psdu []byte) bool {
	fc := ParseFrameControl(psdu)
	return fc.AckRequest() && fc.FrameType() != FrameTypeAck
}

// IsAck reports whether the PSDU is an ACK frame.
func IsAck(psdu []byte) bool {
	return len(psdu) >= 2 && ParseFrameControl(psdu).FrameType() == FrameTypeAck
}

// IsAckFor reports whether ack acknowledges the given transmitted PSDU,
// matching frame type and sequence number.
func IsAckFor(ack []byte, psdu []byte) bool {
	if !IsAck(ack) {
		return false
	}
	ackSeq, ok1 := SequenceNumber(ack)
	txSeq, ok2 := SequenceNumber(psdu)
	return ok1 && ok2 && ackSeq == txSeq
}

// NewImmAck builds an immediate ACK (frame version 2006) for the received
// PSDU, carrying its sequence number. The framePending bit is set when the
// receiver holds queued data for the sender. The trailing FCS octets are
// left zero; the PHY computes them on air.
func NewImmAck(psdu []byte, framePending bool) []byte {
	seq, _ := SequenceNumber(psdu)
	var fc FrameControl = FrameControl(FrameTypeAck)
	if framePending {
		fc |= 0x0010
	}
	ack := make([]byte, types.ImmAckLenBytes)
	binary.LittleEndian.PutUint16(ack[:2], uint16(fc))
	ack[2] = seq
	return ack
}

// FrameDurationUs is the on-air time of a PSDU of the given length on the
// 2.4 GHz O-QPSK PHY, including the PHY header.
func FrameDurationUs(psduLen int) uint32 {
	return uint32(types.PhyHeaderLenBytes+psduLen) * types.TimeUsPerOctet
}
