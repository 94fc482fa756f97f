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

package simradio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openthread/ot-radiodrv/hal"
	"github.com/openthread/ot-radiodrv/types"
	"github.com/openthread/ot-radiodrv/wpan"
)

func drain(r *Radio) []hal.Event {
	var evs []hal.Event
	for {
		ev, ok := r.Events().PollEvent()
		if !ok {
			return evs
		}
		evs = append(evs, ev)
	}
}

func TestInjectFrame(t *testing.T) {
	r := New()
	psdu := make([]byte, types.MaxPsduLenBytes)
	frame := []byte{0x41, 0x88, 0x17, 0xaa, 0xbb}

	assert.False(t, r.InjectFrame(frame, -60, 200), "nothing armed, frame lost")

	r.ReceiveStart(psdu)
	assert.True(t, r.ReceiverArmed())
	require.True(t, r.InjectFrame(frame, -60, 200))
	assert.False(t, r.ReceiverArmed())
	assert.Equal(t, frame, psdu[:len(frame)])

	evs := drain(r)
	require.Len(t, evs, 3)
	assert.Equal(t, hal.EventFrameStart, evs[0].Type)
	assert.Equal(t, hal.EventAddressMatched, evs[1].Type)
	assert.Equal(t, hal.EventFrameReceived, evs[2].Type)
	assert.Equal(t, len(frame), evs[2].PsduLen)
	assert.Equal(t, int8(-60), evs[2].Rssi)
}

func TestInjectFrameTooLong(t *testing.T) {
	r := New()
	r.ReceiveStart(make([]byte, 16))
	assert.False(t, r.InjectFrame(make([]byte, 17), -60, 200))
	assert.True(t, r.ReceiverArmed())
}

func TestInjectCrcAndFiltered(t *testing.T) {
	r := New()
	assert.False(t, r.InjectCrcError())
	assert.False(t, r.InjectFilteredFrame())

	r.ReceiveStart(make([]byte, types.MaxPsduLenBytes))
	require.True(t, r.InjectCrcError())
	evs := drain(r)
	require.Len(t, evs, 2)
	assert.Equal(t, hal.EventCrcError, evs[1].Type)

	r.ReceiveStart(make([]byte, types.MaxPsduLenBytes))
	require.True(t, r.InjectFilteredFrame())
	evs = drain(r)
	require.Len(t, evs, 2)
	assert.Equal(t, hal.EventFilterReject, evs[1].Type)
}

func TestTransmitQueuesTxDone(t *testing.T) {
	r := New()
	var tapped []byte
	r.SetTxHook(func(psdu []byte) { tapped = psdu })

	frame := []byte{0x41, 0x88, 0x17, 0xaa, 0xbb}
	r.TransmitStart(frame)
	assert.Equal(t, frame, r.LastTransmitted())
	assert.Equal(t, frame, tapped)

	evs := drain(r)
	require.Len(t, evs, 1)
	assert.Equal(t, hal.EventTxDone, evs[0].Type)
}

func TestAckWindowBehaviors(t *testing.T) {
	frame := []byte{0x61, 0x88, 0x42, 0xaa, 0xbb}

	r := New()
	r.TransmitStart(frame)
	drain(r)
	ackBuf := make([]byte, types.MaxPsduLenBytes)
	r.AckRxStart(ackBuf, types.AckTimeoutUs)
	evs := drain(r)
	require.Len(t, evs, 1)
	assert.Equal(t, hal.EventFrameReceived, evs[0].Type)
	assert.True(t, wpan.IsAckFor(ackBuf[:evs[0].PsduLen], frame))

	r.SetAckBehavior(AckTimeout)
	r.AckRxStart(ackBuf, types.AckTimeoutUs)
	evs = drain(r)
	require.Len(t, evs, 1)
	assert.Equal(t, hal.EventRxTimeout, evs[0].Type)

	r.SetAckBehavior(AckCrcError)
	r.AckRxStart(ackBuf, types.AckTimeoutUs)
	evs = drain(r)
	require.Len(t, evs, 1)
	assert.Equal(t, hal.EventCrcError, evs[0].Type)
}

func TestAckFramePendingBit(t *testing.T) {
	r := New()
	r.SetAckFramePending(true)
	r.TransmitStart([]byte{0x61, 0x88, 0x42, 0xaa, 0xbb})
	drain(r)

	ackBuf := make([]byte, types.MaxPsduLenBytes)
	r.AckRxStart(ackBuf, types.AckTimeoutUs)
	evs := drain(r)
	require.Len(t, evs, 1)
	assert.True(t, wpan.ParseFrameControl(ackBuf[:evs[0].PsduLen]).FramePending())
}

func TestCcaScripting(t *testing.T) {
	r := New()
	r.CcaStart()
	evs := drain(r)
	require.Len(t, evs, 1)
	assert.False(t, evs[0].Busy)

	r.SetCcaBusy(true)
	r.CcaStart()
	evs = drain(r)
	require.Len(t, evs, 1)
	assert.True(t, evs[0].Busy)
}

func TestEdScripting(t *testing.T) {
	r := New()
	r.SetEdLevel(-72)
	r.EdStart(640)
	assert.Equal(t, uint32(640), r.LastEdDurationUs())

	evs := drain(r)
	require.Len(t, evs, 1)
	assert.Equal(t, hal.EventEdDone, evs[0].Type)
	assert.Equal(t, int8(-72), evs[0].EdLevelDbm)
}

// EdAbort never reports more progress than was armed.
func TestEdAbortClamped(t *testing.T) {
	r := New()
	r.SetEdElapsedOnAbort(5000)
	r.EdStart(640)
	assert.Equal(t, uint32(640), r.EdAbort())

	r.SetEdElapsedOnAbort(100)
	r.EdStart(640)
	assert.Equal(t, uint32(100), r.EdAbort())
}

func TestDisableClearsEverything(t *testing.T) {
	r := New()
	r.ReceiveStart(make([]byte, types.MaxPsduLenBytes))
	r.ContinuousCarrierStart()
	assert.False(t, r.Disabled())

	assert.True(t, r.Disable())
	assert.True(t, r.Disabled())
	assert.False(t, r.ReceiverArmed())
	assert.False(t, r.CarrierOn())
}

func TestAbortDisarmsReceive(t *testing.T) {
	r := New()
	r.ReceiveStart(make([]byte, types.MaxPsduLenBytes))
	r.Abort()
	assert.False(t, r.ReceiverArmed())
	assert.Empty(t, drain(r), "abort produces no completion event")
}
