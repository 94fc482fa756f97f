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

package wpan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openthread/ot-radiodrv/types"
)

func TestParseFrameControl(t *testing.T) {
	fc := ParseFrameControl([]byte{0x61, 0x88, 0x42})
	assert.Equal(t, FrameTypeData, fc.FrameType())
	assert.True(t, fc.AckRequest())
	assert.True(t, fc.PanidCompression())
	assert.False(t, fc.SecurityEnabled())
	assert.Equal(t, uint16(AddrModeShort), fc.DestAddrMode())
	assert.Equal(t, uint16(AddrModeShort), fc.SourceAddrMode())

	assert.Equal(t, FrameControl(0), ParseFrameControl([]byte{0x61}))
	assert.Equal(t, "0x8861", ParseFrameControl([]byte{0x61, 0x88}).String())
}

func TestSequenceNumber(t *testing.T) {
	seq, ok := SequenceNumber([]byte{0x61, 0x88, 0x42, 0xaa})
	require.True(t, ok)
	assert.Equal(t, uint8(0x42), seq)

	// Sequence number suppression bit set (2015 frames).
	_, ok = SequenceNumber([]byte{0x61, 0x89, 0x42})
	assert.False(t, ok)

	_, ok = SequenceNumber([]byte{0x61, 0x88})
	assert.False(t, ok)
}

func TestAckRequested(t *testing.T) {
	assert.True(t, AckRequested([]byte{0x61, 0x88, 0x42}))
	assert.False(t, AckRequested([]byte{0x41, 0x88, 0x42}))

	// An ACK frame with the AR bit is never acknowledged itself.
	assert.False(t, AckRequested([]byte{0x22, 0x00, 0x42}))
	assert.False(t, AckRequested([]byte{0x61}))
}

func TestNewImmAck(t *testing.T) {
	ack := NewImmAck([]byte{0x61, 0x88, 0x42, 0xaa, 0xbb}, false)
	require.Len(t, ack, types.ImmAckLenBytes)
	assert.True(t, IsAck(ack))
	assert.Equal(t, uint8(0x42), ack[2])
	assert.False(t, ParseFrameControl(ack).FramePending())

	ack = NewImmAck([]byte{0x61, 0x88, 0x42}, true)
	assert.True(t, ParseFrameControl(ack).FramePending())
}

func TestIsAckFor(t *testing.T) {
	psdu := []byte{0x61, 0x88, 0x42, 0xaa, 0xbb}
	assert.True(t, IsAckFor(NewImmAck(psdu, false), psdu))
	assert.True(t, IsAckFor(NewImmAck(psdu, true), psdu))

	other := []byte{0x61, 0x88, 0x43, 0xaa, 0xbb}
	assert.False(t, IsAckFor(NewImmAck(other, false), psdu))
	assert.False(t, IsAckFor(psdu, psdu)) // a data frame is not an ACK
	assert.False(t, IsAckFor(nil, psdu))
}

func TestFrameDurationUs(t *testing.T) {
	// imm-ACK: (6 PHY header + 5 PSDU) octets * 32 us.
	assert.Equal(t, uint32(352), FrameDurationUs(types.ImmAckLenBytes))
	// Max frame: (6 + 127) * 32 us = 4256 us.
	assert.Equal(t, uint32(4256), FrameDurationUs(types.MaxPsduLenBytes))
}
