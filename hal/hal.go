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

// Package hal is the boundary to the radio peripheral. The transition engine
// arms operations through the Radio interface; the peripheral binding answers
// with discrete, mutually exclusive completion Events, either pushed into the
// engine or pulled from an EventSource by the fallback pump.
package hal

import (
	"github.com/simonlingoogle/go-simplelogger"

	"github.com/openthread/ot-radiodrv/types"
)

type EventType uint8

const (
	// Receive path
	EventFrameStart     EventType = iota // SFD seen, header reception started
	EventAddressMatched                  // address filter passed mid-frame
	EventFilterReject                    // address/PAN filter rejected the frame
	EventFrameReceived                   // full frame in the armed buffer, FCS ok
	EventCrcError                        // full frame received, FCS bad
	EventRxTimeout                       // bounded receive window expired (ACK wait)

	// Transmit path
	EventTxDone    // frame (or ACK) fully transmitted
	EventCcaResult // CCA sample finished, see Busy

	// Measurement path
	EventEdDone // energy detection finished, see EdLevelDbm

	// Power path
	EventDisabled // radio reached the DISABLED (low power) state
)

func (t EventType) String() string {
	switch t {
	case EventFrameStart:
		return "FrameStart"
	case EventAddressMatched:
		return "AddressMatched"
	case EventFilterReject:
		return "FilterReject"
	case EventFrameReceived:
		return "FrameReceived"
	case EventCrcError:
		return "CrcError"
	case EventRxTimeout:
		return "RxTimeout"
	case EventTxDone:
		return "TxDone"
	case EventCcaResult:
		return "CcaResult"
	case EventEdDone:
		return "EdDone"
	case EventDisabled:
		return "Disabled"
	default:
		simplelogger.Panicf("invalid hal.EventType: %d", uint8(t))
		return "invalid"
	}
}

// Event is one hardware completion notification. Exactly one operation's
// payload fields are meaningful, selected by Type.
type Event struct {
	Type EventType

	// EventFrameReceived
	PsduLen int
	Rssi    int8
	Lqi     uint8

	// EventCcaResult
	Busy bool

	// EventEdDone
	EdLevelDbm int8
}

// Radio is the set of operations the transition engine arms on the
// peripheral. Calls only start hardware activity; completion arrives as an
// Event. Implementations must not deliver events synchronously from inside
// these calls.
type Radio interface {
	// SetChannel retunes the radio. Only called while no operation is armed.
	SetChannel(ch types.ChannelId)

	// SetCcaConfig applies cfg to subsequent CCA/ED operations.
	SetCcaConfig(cfg types.CcaConfig)

	// ReceiveStart arms the receiver writing into psdu. Events: FrameStart,
	// AddressMatched, then FrameReceived / CrcError / FilterReject.
	ReceiveStart(psdu []byte)

	// ReceiveStop disarms the receiver; no further receive events follow.
	ReceiveStop()

	// AckRxStart arms a bounded receive window for an imm-ACK. Events:
	// FrameReceived / CrcError within the window, or RxTimeout.
	AckRxStart(psdu []byte, timeoutUs uint32)

	// TransmitStart sends the PSDU without CCA. Event: TxDone.
	TransmitStart(psdu []byte)

	// CcaStart samples the channel once. Event: CcaResult.
	CcaStart()

	// EdStart measures channel energy for at least durationUs. Event: EdDone.
	EdStart(durationUs uint32)

	// EdAbort cancels a running ED measurement and reports how many µs of it
	// completed. No EdDone event follows.
	EdAbort() (elapsedUs uint32)

	// ContinuousCarrierStart emits an unmodulated carrier until stopped.
	ContinuousCarrierStart()

	// ContinuousCarrierStop ends the carrier emission.
	ContinuousCarrierStop()

	// Abort stops whatever receive/transmit/CCA operation is armed, without
	// a completion event and without leaving the active power state. A
	// running ED is aborted via EdAbort instead.
	Abort()

	// Disable enters the low power state. Returns true when the transition
	// completed synchronously; otherwise an EventDisabled follows.
	Disable() (instant bool)
}

// EventSource is the pull side of event delivery, used by the fallback pump
// when the binding cannot push events into the engine directly.
type EventSource interface {
	// PollEvent returns the oldest pending event, or false when drained.
	PollEvent() (Event, bool)
}
