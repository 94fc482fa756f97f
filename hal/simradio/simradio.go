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

// Package simradio is a deterministic software stand-in for the radio
// peripheral, used by the diagnostic console and by integration-style tests.
// Armed operations complete by queuing events into an internal hal.Queue;
// the driver drains the queue through its fallback pump, so no event is ever
// delivered from inside an arming call.
package simradio

import (
	"sync"

	"github.com/openthread/ot-radiodrv/hal"
	"github.com/openthread/ot-radiodrv/logger"
	"github.com/openthread/ot-radiodrv/types"
	"github.com/openthread/ot-radiodrv/wpan"
)

// AckBehavior scripts what happens in the ACK window after a transmission.
type AckBehavior byte

const (
	AckSuccess  AckBehavior = iota // a matching imm-ACK arrives
	AckTimeout                     // nothing arrives, window expires
	AckCrcError                    // a corrupted frame arrives
)

// Radio implements hal.Radio. All knob setters and arming calls are safe for
// concurrent use.
type Radio struct {
	mu     sync.Mutex
	events *hal.Queue

	channel types.ChannelId
	ccaCfg  types.CcaConfig

	rxPsdu    []byte // armed receive destination, nil when disarmed
	ackRxPsdu []byte // armed ACK window destination, nil when disarmed
	lastTx    []byte
	carrierOn bool
	disabled  bool

	ccaBusy         bool
	edLevelDbm      int8
	edArmedUs       uint32
	edElapsedOnAbrt uint32
	ackBehavior     AckBehavior
	ackFramePending bool

	txHook func(psdu []byte)
}

func New() *Radio {
	return &Radio{events: hal.NewQueue(), disabled: true, edLevelDbm: -100}
}

// Events returns the queue to attach as the driver's event source.
func (r *Radio) Events() *hal.Queue {
	return r.events
}

// SetTxHook installs a tap on every transmitted PSDU (frames and ACKs),
// called outside the radio lock. Used for packet capture.
func (r *Radio) SetTxHook(hook func(psdu []byte)) {
	r.mu.Lock()
	r.txHook = hook
	r.mu.Unlock()
}

// Knobs scripting future behavior.

func (r *Radio) SetCcaBusy(busy bool) {
	r.mu.Lock()
	r.ccaBusy = busy
	r.mu.Unlock()
}

func (r *Radio) SetEdLevel(dbm int8) {
	r.mu.Lock()
	r.edLevelDbm = dbm
	r.mu.Unlock()
}

// SetEdElapsedOnAbort scripts the progress EdAbort reports.
func (r *Radio) SetEdElapsedOnAbort(us uint32) {
	r.mu.Lock()
	r.edElapsedOnAbrt = us
	r.mu.Unlock()
}

func (r *Radio) SetAckBehavior(b AckBehavior) {
	r.mu.Lock()
	r.ackBehavior = b
	r.mu.Unlock()
}

// SetAckFramePending scripts the frame-pending bit of generated ACKs.
func (r *Radio) SetAckFramePending(fp bool) {
	r.mu.Lock()
	r.ackFramePending = fp
	r.mu.Unlock()
}

// Introspection for tests and the console.

func (r *Radio) Channel() types.ChannelId {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.channel
}

func (r *Radio) CcaConfig() types.CcaConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ccaCfg
}

// LastTransmitted returns a copy of the most recently transmitted PSDU.
func (r *Radio) LastTransmitted() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastTx == nil {
		return nil
	}
	out := make([]byte, len(r.lastTx))
	copy(out, r.lastTx)
	return out
}

func (r *Radio) ReceiverArmed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rxPsdu != nil
}

func (r *Radio) CarrierOn() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.carrierOn
}

// Disabled reports whether the simulated peripheral is in low power.
func (r *Radio) Disabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.disabled
}

// LastEdDurationUs returns the duration of the most recent EdStart.
func (r *Radio) LastEdDurationUs() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.edArmedUs
}

// InjectFrame simulates an incoming frame while the receiver is armed: the
// PSDU is copied into the armed buffer and the start/match/received event
// sequence is queued. Returns false (frame lost on air) when no receive is
// armed. An armed ACK window accepts the frame too.
func (r *Radio) InjectFrame(psdu []byte, rssi int8, lqi uint8) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	dst := r.rxPsdu
	viaAckWindow := false
	if dst == nil {
		dst = r.ackRxPsdu
		viaAckWindow = true
	}
	if dst == nil || len(psdu) > len(dst) {
		return false
	}
	copy(dst, psdu)
	if viaAckWindow {
		r.ackRxPsdu = nil
	} else {
		r.rxPsdu = nil
		r.events.Push(hal.Event{Type: hal.EventFrameStart})
		r.events.Push(hal.Event{Type: hal.EventAddressMatched})
	}
	r.events.Push(hal.Event{Type: hal.EventFrameReceived, PsduLen: len(psdu), Rssi: rssi, Lqi: lqi})
	return true
}

// InjectCrcError simulates an incoming frame that fails the FCS check.
func (r *Radio) InjectCrcError() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.rxPsdu != nil:
		r.rxPsdu = nil
		r.events.Push(hal.Event{Type: hal.EventFrameStart})
		r.events.Push(hal.Event{Type: hal.EventCrcError})
	case r.ackRxPsdu != nil:
		r.ackRxPsdu = nil
		r.events.Push(hal.Event{Type: hal.EventCrcError})
	default:
		return false
	}
	return true
}

// InjectFilteredFrame simulates a frame rejected by the address filter.
func (r *Radio) InjectFilteredFrame() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rxPsdu == nil {
		return false
	}
	r.rxPsdu = nil
	r.events.Push(hal.Event{Type: hal.EventFrameStart})
	r.events.Push(hal.Event{Type: hal.EventFilterReject})
	return true
}

// hal.Radio implementation.

func (r *Radio) SetChannel(ch types.ChannelId) {
	r.mu.Lock()
	r.channel = ch
	r.mu.Unlock()
	logger.Tracef("simradio: channel %d", ch)
}

func (r *Radio) SetCcaConfig(cfg types.CcaConfig) {
	r.mu.Lock()
	r.ccaCfg = cfg
	r.mu.Unlock()
}

func (r *Radio) ReceiveStart(psdu []byte) {
	r.mu.Lock()
	r.disabled = false
	r.rxPsdu = psdu
	r.mu.Unlock()
}

func (r *Radio) ReceiveStop() {
	r.mu.Lock()
	r.rxPsdu = nil
	r.mu.Unlock()
}

func (r *Radio) AckRxStart(psdu []byte, timeoutUs uint32) {
	r.mu.Lock()
	r.disabled = false
	r.ackRxPsdu = psdu
	behavior := r.ackBehavior
	lastTx := r.lastTx
	switch behavior {
	case AckSuccess:
		ack := wpan.NewImmAck(lastTx, r.ackFramePending)
		copy(psdu, ack)
		r.ackRxPsdu = nil
		r.events.Push(hal.Event{Type: hal.EventFrameReceived, PsduLen: len(ack), Rssi: -40, Lqi: 255})
	case AckTimeout:
		r.ackRxPsdu = nil
		r.events.Push(hal.Event{Type: hal.EventRxTimeout})
	case AckCrcError:
		r.ackRxPsdu = nil
		r.events.Push(hal.Event{Type: hal.EventCrcError})
	}
	r.mu.Unlock()
}

func (r *Radio) TransmitStart(psdu []byte) {
	r.mu.Lock()
	r.disabled = false
	r.lastTx = make([]byte, len(psdu))
	copy(r.lastTx, psdu)
	hook := r.txHook
	r.events.Push(hal.Event{Type: hal.EventTxDone})
	r.mu.Unlock()

	if hook != nil {
		hook(psdu)
	}
}

func (r *Radio) CcaStart() {
	r.mu.Lock()
	r.disabled = false
	r.events.Push(hal.Event{Type: hal.EventCcaResult, Busy: r.ccaBusy})
	r.mu.Unlock()
}

func (r *Radio) EdStart(durationUs uint32) {
	r.mu.Lock()
	r.disabled = false
	r.edArmedUs = durationUs
	r.events.Push(hal.Event{Type: hal.EventEdDone, EdLevelDbm: r.edLevelDbm})
	r.mu.Unlock()
}

func (r *Radio) EdAbort() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	elapsed := r.edElapsedOnAbrt
	if elapsed > r.edArmedUs {
		elapsed = r.edArmedUs
	}
	return elapsed
}

func (r *Radio) ContinuousCarrierStart() {
	r.mu.Lock()
	r.disabled = false
	r.carrierOn = true
	r.mu.Unlock()
}

func (r *Radio) ContinuousCarrierStop() {
	r.mu.Lock()
	r.carrierOn = false
	r.mu.Unlock()
}

func (r *Radio) Abort() {
	r.mu.Lock()
	r.rxPsdu = nil
	r.ackRxPsdu = nil
	r.mu.Unlock()
}

func (r *Radio) Disable() bool {
	r.mu.Lock()
	r.rxPsdu = nil
	r.ackRxPsdu = nil
	r.carrierOn = false
	r.disabled = true
	r.mu.Unlock()
	return true
}
