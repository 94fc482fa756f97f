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

import "github.com/simonlingoogle/go-simplelogger"

// RadioState is the driver's single state of record. Exactly one value holds
// at any instant; only the transition engine mutates it.
type RadioState byte

const (
	// Sleep family
	StateDisabling RadioState = iota // entering low power mode
	StateSleep                       // low power mode

	// Receive family
	StateWaitingTimeslot // inactive, time slot denied or revoked
	StateWaitingRxFrame  // receiver armed (or buffer-starved), waiting for a frame
	StateRxHeader        // got SFD, receiving the MAC header
	StateRxFrame         // address filter passed, receiving the rest of the frame
	StateTxAck           // frame received, transmitting the imm-ACK

	// Transmit family
	StateCcaBeforeTx // performing CCA prior to transmission
	StateTxFrame     // transmitting the data frame
	StateRxAck       // waiting for the imm-ACK of a transmitted frame

	StateEd                // energy detection procedure
	StateCca               // standalone CCA procedure
	StateContinuousCarrier // emitting an unmodulated carrier
)

func (s RadioState) String() string {
	switch s {
	case StateDisabling:
		return "Disabling"
	case StateSleep:
		return "Sleep"
	case StateWaitingTimeslot:
		return "WaitingTimeslot"
	case StateWaitingRxFrame:
		return "WaitingRxFrame"
	case StateRxHeader:
		return "RxHeader"
	case StateRxFrame:
		return "RxFrame"
	case StateTxAck:
		return "TxAck"
	case StateCcaBeforeTx:
		return "CcaBeforeTx"
	case StateTxFrame:
		return "TxFrame"
	case StateRxAck:
		return "RxAck"
	case StateEd:
		return "Ed"
	case StateCca:
		return "Cca"
	case StateContinuousCarrier:
		return "ContinuousCarrier"
	default:
		simplelogger.Panicf("invalid RadioState: %d", byte(s))
		return "invalid"
	}
}

// IsSleepFamily reports whether s belongs to the sleep family.
func (s RadioState) IsSleepFamily() bool {
	return s == StateDisabling || s == StateSleep
}

// IsReceiveFamily reports whether s belongs to the receive family.
func (s RadioState) IsReceiveFamily() bool {
	return s >= StateWaitingTimeslot && s <= StateTxAck
}

// IsTransmitFamily reports whether s belongs to the transmit family.
func (s RadioState) IsTransmitFamily() bool {
	return s >= StateCcaBeforeTx && s <= StateRxAck
}

// IsIdleReceive reports whether s is a receive state with no frame exchange
// in flight. New ED/CCA/carrier procedures may only start here or in Sleep.
func (s RadioState) IsIdleReceive() bool {
	return s == StateWaitingTimeslot || s == StateWaitingRxFrame
}
