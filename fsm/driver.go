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

// Package fsm implements the transition engine of the 802.15.4 radio driver:
// the thirteen-state machine that serializes client transition requests,
// hardware completion events, arbiter grant/revoke notifications, and buffer
// pool pressure over one radio peripheral.
//
// All mutation funnels through one Driver instance and its internal lock;
// this is the critical section that keeps client requests and the hardware
// event path from interleaving. Upward Client callbacks are queued while the
// lock is held and invoked after it is released, so a client may issue a new
// request from inside a callback.
package fsm

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/openthread/ot-radiodrv/conf"
	"github.com/openthread/ot-radiodrv/hal"
	"github.com/openthread/ot-radiodrv/logger"
	"github.com/openthread/ot-radiodrv/raal"
	"github.com/openthread/ot-radiodrv/rxbuf"
	"github.com/openthread/ot-radiodrv/types"
)

// Client receives the upward results of driver procedures. Callbacks run on
// the goroutine that triggered them, after the driver lock is released.
type Client interface {
	// FrameReceived hands over a received frame. The buffer slot is owned by
	// the client until it is returned via Driver.NotifyBufferReleased.
	FrameReceived(buf *rxbuf.Buffer)

	// TransmitDone reports a completed transmission (ACKed, when the frame
	// requested an ACK).
	TransmitDone(psdu []byte)

	// TransmitFailed reports an unsuccessful transmission: ErrorChannelAccessFailure,
	// ErrorNoAck, or ErrorAbort (time slot revoked mid-procedure).
	TransmitFailed(psdu []byte, err types.RadioError)

	// EnergyDetected reports the result of an energy detection procedure.
	EnergyDetected(levelDbm int8)

	// CcaDone reports the result of a standalone CCA procedure.
	CcaDone(channelClear bool)
}

// Stats counts driver activity for diagnostics.
type Stats struct {
	RxFrames    uint32
	RxErrors    uint32
	TxFrames    uint32
	TxAcks      uint32
	AckTimeouts uint32
}

type procedureKind byte

const (
	procReceive procedureKind = iota
	procEd
	procCca
	procCarrier
)

// pendingProcedure records requester intent that could not be armed yet,
// because the time slot was denied/revoked or no receive buffer was free.
type pendingProcedure struct {
	kind procedureKind
}

// Driver is the radio driver state machine. Create with New, then Init.
type Driver struct {
	mu  sync.Mutex
	cbs []func()

	radio   hal.Radio
	arbiter raal.Arbiter
	client  Client
	source  hal.EventSource
	pool    *rxbuf.Pool

	state       types.RadioState
	initialized bool
	pending     *pendingProcedure

	channel      types.ChannelId
	channelDirty bool
	ccaCfg       types.CcaConfig
	ccaDirty     bool
	ackTimeoutUs uint32

	rxBuf     *rxbuf.Buffer // armed receive slot, driver-owned
	ackTxPsdu []byte        // imm-ACK under transmission in TxAck
	ackRxPsdu []byte        // dedicated ACK receive buffer, never pool-backed
	txPsdu    []byte        // client frame of the active transmit procedure
	txCca     bool

	edRequestedUs uint32
	edRemainingUs uint32

	stats Stats
}

// New creates a driver over the given peripheral, arbiter and client.
// The driver is inert until Init.
func New(cfg *conf.Config, radio hal.Radio, arbiter raal.Arbiter, client Client) *Driver {
	d := &Driver{
		radio:        radio,
		arbiter:      arbiter,
		client:       client,
		state:        types.StateSleep,
		channel:      cfg.Channel,
		ccaCfg:       cfg.CcaConfig(),
		ackTimeoutUs: cfg.AckTimeoutUs,
		pool:         rxbuf.NewPool(cfg.RxBuffers),
		ackRxPsdu:    make([]byte, types.MaxPsduLenBytes),
	}
	return d
}

// AttachEventSource enables the fallback pump path (PumpRadioEvents) for
// peripheral bindings that cannot push events into the driver directly.
func (d *Driver) AttachEventSource(src hal.EventSource) {
	d.mu.Lock()
	d.source = src
	d.mu.Unlock()
}

// Init brings the driver into the Sleep state and programs the startup
// channel and CCA configuration into the peripheral.
func (d *Driver) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.initialized {
		return errors.New("driver already initialized")
	}
	if d.radio == nil || d.arbiter == nil || d.client == nil {
		return errors.New("driver needs a radio, an arbiter and a client")
	}
	d.radio.SetChannel(d.channel)
	d.radio.SetCcaConfig(d.ccaCfg)
	d.channelDirty = false
	d.ccaDirty = false
	d.state = types.StateSleep
	d.initialized = true
	logger.Debugf("fsm: initialized on channel %d", d.channel)
	return nil
}

// Deinit force-resets the driver: any active procedure is aborted without
// upward notification, the time slot is released, and the state returns to
// Sleep. The driver may be Init-ed again afterwards.
func (d *Driver) Deinit() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return
	}
	switch {
	case d.state == types.StateEd:
		d.radio.EdAbort()
	case d.state == types.StateContinuousCarrier:
		d.radio.ContinuousCarrierStop()
	case !d.state.IsSleepFamily():
		d.radio.Abort()
	}
	d.arbiter.EndTimeslot()
	d.releaseRxBuf()
	d.pending = nil
	d.txPsdu = nil
	d.ackTxPsdu = nil
	d.edRemainingUs = 0
	d.radio.Disable()
	d.state = types.StateSleep
	d.initialized = false
	logger.Debugf("fsm: deinitialized")
}

// State returns the current radio state. Callable from any context.
func (d *Driver) State() types.RadioState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// GetStats returns a snapshot of the activity counters.
func (d *Driver) GetStats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// FreeBufferCount returns the number of driver-owned receive slots.
func (d *Driver) FreeBufferCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pool.FreeCount()
}

// notify queues an upward callback to run after the lock is released.
func (d *Driver) notify(cb func()) {
	d.cbs = append(d.cbs, cb)
}

// flush releases the lock and runs the queued callbacks in order. Must be
// the deferred counterpart of every mu.Lock in an entry point that can
// produce callbacks.
func (d *Driver) flush() {
	cbs := d.cbs
	d.cbs = nil
	d.mu.Unlock()
	for _, cb := range cbs {
		cb()
	}
}

func (d *Driver) setState(s types.RadioState) {
	if d.state != s {
		logger.Tracef("fsm: %v -> %v", d.state, s)
		d.state = s
	}
}

// releaseRxBuf returns the armed (undelivered) slot to the pool.
func (d *Driver) releaseRxBuf() {
	if d.rxBuf != nil {
		d.pool.Release(d.rxBuf)
		d.rxBuf = nil
	}
}

func (d *Driver) applyChannelIfDirty() {
	if d.channelDirty {
		d.radio.SetChannel(d.channel)
		d.channelDirty = false
	}
}

func (d *Driver) applyCcaCfgIfDirty() {
	if d.ccaDirty {
		d.radio.SetCcaConfig(d.ccaCfg)
		d.ccaDirty = false
	}
}

// armReceive (re)enters the receive family from any unarmed condition: it
// acquires the time slot and a buffer slot, parking in WaitingTimeslot or
// buffer-starved WaitingRxFrame when either is unavailable. Every
// return-to-receive point funnels through here, so a deferred channel
// update is applied on the next arming.
func (d *Driver) armReceive() {
	d.txPsdu = nil
	d.ackTxPsdu = nil

	if !d.arbiter.RequestTimeslot() {
		d.pending = &pendingProcedure{kind: procReceive}
		d.setState(types.StateWaitingTimeslot)
		return
	}
	d.applyChannelIfDirty()
	if d.rxBuf == nil {
		d.rxBuf = d.pool.TakeFree()
	}
	if d.rxBuf == nil {
		// Pool exhausted: stay parked until NotifyBufferReleased re-arms.
		d.pending = &pendingProcedure{kind: procReceive}
		d.setState(types.StateWaitingRxFrame)
		logger.Debugf("fsm: receive armed without buffer, pool exhausted")
		return
	}
	d.pending = nil
	d.radio.ReceiveStart(d.rxBuf.Psdu)
	d.setState(types.StateWaitingRxFrame)
}
