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

package fsm

import (
	"github.com/openthread/ot-radiodrv/logger"
	"github.com/openthread/ot-radiodrv/rxbuf"
	"github.com/openthread/ot-radiodrv/types"
)

// NotifyBufferReleased returns a buffer slot delivered via
// Client.FrameReceived to the pool. Releasing the same slot twice, or a
// foreign slot, is ignored. When the driver is parked in WaitingRxFrame for
// lack of a buffer, the returned slot re-arms the receiver.
func (d *Driver) NotifyBufferReleased(buf *rxbuf.Buffer) {
	d.mu.Lock()
	defer d.flush()

	if !d.pool.Release(buf) {
		logger.Warnf("fsm: ignoring release of free or foreign buffer")
		return
	}
	if d.initialized && d.pending != nil && d.pending.kind == procReceive &&
		d.state == types.StateWaitingRxFrame && d.rxBuf == nil {
		d.armReceive()
	}
}

// NotifyChannelChanged records a new channel. In Sleep it is programmed
// immediately; with the receiver idle-armed the receiver is bounced onto the
// new channel; mid-procedure the change is deferred to the next receive
// arming (armReceive applies it).
func (d *Driver) NotifyChannelChanged(ch types.ChannelId) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.channel = ch
	d.channelDirty = true
	if !d.initialized {
		return
	}
	switch {
	case d.state.IsSleepFamily():
		d.applyChannelIfDirty()
	case d.state == types.StateWaitingRxFrame && d.rxBuf != nil:
		d.radio.ReceiveStop()
		d.applyChannelIfDirty()
		d.radio.ReceiveStart(d.rxBuf.Psdu)
	}
}

// NotifyCcaConfigChanged records a new CCA configuration, applied at the
// next arming of an operation that performs a CCA or ED.
func (d *Driver) NotifyCcaConfigChanged(cfg types.CcaConfig) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.ccaCfg = cfg
	d.ccaDirty = true
}

// TimeslotGranted implements raal.Listener: the arbiter granted a slot
// requested earlier. The latent procedure parked in WaitingTimeslot is armed
// now.
func (d *Driver) TimeslotGranted() {
	d.mu.Lock()
	defer d.flush()

	if !d.initialized || d.state != types.StateWaitingTimeslot || d.pending == nil {
		logger.Tracef("fsm: dropping grant in state %v", d.state)
		return
	}
	kind := d.pending.kind
	d.pending = nil
	switch kind {
	case procReceive:
		d.armReceive()
	case procEd:
		d.applyChannelIfDirty()
		d.applyCcaCfgIfDirty()
		d.radio.EdStart(d.edRemainingUs)
		d.setState(types.StateEd)
	case procCca:
		d.applyChannelIfDirty()
		d.applyCcaCfgIfDirty()
		d.radio.CcaStart()
		d.setState(types.StateCca)
	case procCarrier:
		d.applyChannelIfDirty()
		d.radio.ContinuousCarrierStart()
		d.setState(types.StateContinuousCarrier)
	}
}

// TimeslotRevoked implements raal.Listener: the arbiter withdrew the slot
// mid-procedure. The active operation is aborted and the procedure either
// fails upward (transmit) or parks to resume on the next grant (receive,
// ED, CCA, carrier).
func (d *Driver) TimeslotRevoked() {
	d.mu.Lock()
	defer d.flush()

	if !d.initialized {
		return
	}
	switch {
	case d.state.IsSleepFamily(), d.state == types.StateWaitingTimeslot:
		// Nothing held; nothing to do.

	case d.state == types.StateTxAck:
		// The received frame was already delivered; only the ACK is lost.
		d.radio.Abort()
		d.ackTxPsdu = nil
		d.pending = &pendingProcedure{kind: procReceive}
		d.setState(types.StateWaitingTimeslot)

	case d.state.IsReceiveFamily():
		// Keep the claimed buffer slot for the re-arm after the next grant.
		if d.rxBuf != nil {
			d.radio.Abort()
		}
		d.pending = &pendingProcedure{kind: procReceive}
		d.setState(types.StateWaitingTimeslot)

	case d.state.IsTransmitFamily():
		d.radio.Abort()
		d.failTransmit(types.ErrorAbort)
		d.pending = &pendingProcedure{kind: procReceive}
		d.setState(types.StateWaitingTimeslot)

	case d.state == types.StateEd:
		elapsed := d.radio.EdAbort()
		if elapsed >= d.edRemainingUs {
			d.edRemainingUs = types.EdMinTimeUs
		} else {
			d.edRemainingUs -= elapsed
			if d.edRemainingUs < types.EdMinTimeUs {
				d.edRemainingUs = types.EdMinTimeUs
			}
		}
		d.pending = &pendingProcedure{kind: procEd}
		d.setState(types.StateWaitingTimeslot)

	case d.state == types.StateCca:
		// The sample restarts from scratch on the next grant.
		d.radio.Abort()
		d.pending = &pendingProcedure{kind: procCca}
		d.setState(types.StateWaitingTimeslot)

	case d.state == types.StateContinuousCarrier:
		d.radio.ContinuousCarrierStop()
		d.pending = &pendingProcedure{kind: procCarrier}
		d.setState(types.StateWaitingTimeslot)
	}
}
