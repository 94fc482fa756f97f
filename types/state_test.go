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

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allStates = []RadioState{
	StateDisabling, StateSleep, StateWaitingTimeslot, StateWaitingRxFrame,
	StateRxHeader, StateRxFrame, StateTxAck, StateCcaBeforeTx, StateTxFrame,
	StateRxAck, StateEd, StateCca, StateContinuousCarrier,
}

func TestRadioStateString(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range allStates {
		name := s.String()
		assert.NotEmpty(t, name)
		assert.False(t, seen[name], "duplicate state name %s", name)
		seen[name] = true
	}
	assert.Equal(t, "WaitingRxFrame", StateWaitingRxFrame.String())
	assert.Equal(t, "ContinuousCarrier", StateContinuousCarrier.String())
}

// Every state belongs to at most one of the families; sleep, receive and
// transmit families are disjoint.
func TestStateFamiliesDisjoint(t *testing.T) {
	for _, s := range allStates {
		n := 0
		if s.IsSleepFamily() {
			n++
		}
		if s.IsReceiveFamily() {
			n++
		}
		if s.IsTransmitFamily() {
			n++
		}
		assert.LessOrEqual(t, n, 1, "state %v in %d families", s, n)
	}
}

func TestStateFamilyMembers(t *testing.T) {
	assert.True(t, StateDisabling.IsSleepFamily())
	assert.True(t, StateSleep.IsSleepFamily())

	for _, s := range []RadioState{StateWaitingTimeslot, StateWaitingRxFrame,
		StateRxHeader, StateRxFrame, StateTxAck} {
		assert.True(t, s.IsReceiveFamily(), "%v", s)
	}
	for _, s := range []RadioState{StateCcaBeforeTx, StateTxFrame, StateRxAck} {
		assert.True(t, s.IsTransmitFamily(), "%v", s)
	}

	assert.False(t, StateEd.IsReceiveFamily())
	assert.False(t, StateCca.IsTransmitFamily())
	assert.False(t, StateContinuousCarrier.IsSleepFamily())
}

func TestIsIdleReceive(t *testing.T) {
	for _, s := range allStates {
		want := s == StateWaitingTimeslot || s == StateWaitingRxFrame
		assert.Equal(t, want, s.IsIdleReceive(), "%v", s)
	}
}

func TestCcaModeRoundTrip(t *testing.T) {
	for _, m := range []CcaMode{CcaModeEd, CcaModeCarrier, CcaModeCarrierEd, CcaModeCarrierOrEd} {
		parsed, ok := ParseCcaMode(m.String())
		assert.True(t, ok)
		assert.Equal(t, m, parsed)
	}
	_, ok := ParseCcaMode("psychic")
	assert.False(t, ok)
}

func TestRadioErrorString(t *testing.T) {
	assert.Equal(t, "none", RadioErrorString(ErrorNone))
	assert.Equal(t, "no-ack", RadioErrorString(ErrorNoAck))
	assert.Equal(t, "channel-access-failure", RadioErrorString(ErrorChannelAccessFailure))
	assert.Equal(t, "abort", RadioErrorString(ErrorAbort))
}

func TestPhyTimings(t *testing.T) {
	assert.Equal(t, 128, CcaTimeUs)
	assert.Equal(t, CcaTimeUs, EdMinTimeUs)
	assert.Equal(t, 32, TimeUsPerOctet)
	assert.Equal(t, 192, AifsTimeUs)
	assert.Equal(t, 5, ImmAckLenBytes)
}
