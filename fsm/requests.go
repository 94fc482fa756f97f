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
	"github.com/openthread/ot-radiodrv/types"
)

// Client transition requests. Each is a compare-and-transition: it succeeds
// iff the current state is in the request's legal source set, and a false
// return leaves the state untouched. A request may complete its arming
// asynchronously (time slot denied, buffer pool exhausted) and still report
// true; the latent intent is resumed by the corresponding notification.
//
// Legal source sets:
//
//	RequestSleep              receive family, ContinuousCarrier
//	RequestReceive            Sleep, ContinuousCarrier
//	RequestTransmit           WaitingRxFrame
//	RequestEnergyDetection    Sleep, WaitingTimeslot, WaitingRxFrame
//	RequestCca                Sleep, WaitingTimeslot, WaitingRxFrame
//	RequestContinuousCarrier  Sleep, WaitingTimeslot, WaitingRxFrame

// RequestSleep transitions to the Sleep state, disabling the radio. Any
// latent receive intent is dropped.
func (d *Driver) RequestSleep() bool {
	d.mu.Lock()
	defer d.flush()

	if !d.initialized {
		return false
	}
	if !d.state.IsReceiveFamily() && d.state != types.StateContinuousCarrier {
		return false
	}

	if d.state == types.StateContinuousCarrier {
		d.radio.ContinuousCarrierStop()
	}
	d.pending = nil
	d.txPsdu = nil
	d.ackTxPsdu = nil
	d.releaseRxBuf()
	d.arbiter.EndTimeslot()
	if d.radio.Disable() {
		d.setState(types.StateSleep)
	} else {
		d.setState(types.StateDisabling)
	}
	return true
}

// RequestReceive transitions to the receive family and arms the receiver.
// When no buffer slot is free or the time slot is denied, arming is deferred
// (the request still succeeds) and completed by the matching notification.
func (d *Driver) RequestReceive() bool {
	d.mu.Lock()
	defer d.flush()

	if !d.initialized {
		return false
	}
	if d.state != types.StateSleep && d.state != types.StateContinuousCarrier {
		return false
	}

	if d.state == types.StateContinuousCarrier {
		d.radio.ContinuousCarrierStop()
	}
	d.armReceive()
	return true
}

// RequestTransmit starts transmission of psdu, preceded by a CCA when cca is
// set. Legal only while idle-receiving. The outcome is reported through
// Client.TransmitDone / Client.TransmitFailed; the caller owns psdu until
// then.
func (d *Driver) RequestTransmit(psdu []byte, cca bool) bool {
	d.mu.Lock()
	defer d.flush()

	if !d.initialized {
		return false
	}
	if d.state != types.StateWaitingRxFrame {
		return false
	}
	if len(psdu) < types.ImmAckLenBytes || len(psdu) > types.MaxPsduLenBytes {
		logger.Warnf("fsm: rejecting transmit of %d byte PSDU", len(psdu))
		return false
	}

	if d.rxBuf != nil {
		d.radio.ReceiveStop()
	}
	d.txPsdu = psdu
	d.txCca = cca
	d.applyChannelIfDirty()
	if cca {
		d.applyCcaCfgIfDirty()
		d.radio.CcaStart()
		d.setState(types.StateCcaBeforeTx)
	} else {
		d.radio.TransmitStart(psdu)
		d.setState(types.StateTxFrame)
	}
	return true
}

// RequestEnergyDetection measures channel energy for at least durationUs
// microseconds. The summed armed time covers durationUs even across a
// time-slot revoke/grant gap. The level is reported via
// Client.EnergyDetected, after which the driver re-enters receive.
func (d *Driver) RequestEnergyDetection(durationUs uint32) bool {
	d.mu.Lock()
	defer d.flush()

	if !d.initialized || durationUs == 0 {
		return false
	}
	if d.state != types.StateSleep && !d.state.IsIdleReceive() {
		return false
	}

	d.stopIdleReceiver()
	d.edRequestedUs = durationUs
	d.edRemainingUs = durationUs
	if !d.arbiter.RequestTimeslot() {
		d.pending = &pendingProcedure{kind: procEd}
		d.setState(types.StateWaitingTimeslot)
		return true
	}
	d.pending = nil
	d.applyChannelIfDirty()
	d.applyCcaCfgIfDirty()
	d.radio.EdStart(durationUs)
	d.setState(types.StateEd)
	return true
}

// RequestCca samples the channel once; the busy/clear outcome is reported
// via Client.CcaDone, after which the driver re-enters receive.
func (d *Driver) RequestCca() bool {
	d.mu.Lock()
	defer d.flush()

	if !d.initialized {
		return false
	}
	if d.state != types.StateSleep && !d.state.IsIdleReceive() {
		return false
	}

	d.stopIdleReceiver()
	if !d.arbiter.RequestTimeslot() {
		d.pending = &pendingProcedure{kind: procCca}
		d.setState(types.StateWaitingTimeslot)
		return true
	}
	d.pending = nil
	d.applyChannelIfDirty()
	d.applyCcaCfgIfDirty()
	d.radio.CcaStart()
	d.setState(types.StateCca)
	return true
}

// RequestContinuousCarrier emits an unmodulated carrier until a subsequent
// Sleep or Receive request ends it.
func (d *Driver) RequestContinuousCarrier() bool {
	d.mu.Lock()
	defer d.flush()

	if !d.initialized {
		return false
	}
	if d.state != types.StateSleep && !d.state.IsIdleReceive() {
		return false
	}

	d.stopIdleReceiver()
	if !d.arbiter.RequestTimeslot() {
		d.pending = &pendingProcedure{kind: procCarrier}
		d.setState(types.StateWaitingTimeslot)
		return true
	}
	d.pending = nil
	d.applyChannelIfDirty()
	d.radio.ContinuousCarrierStart()
	d.setState(types.StateContinuousCarrier)
	return true
}

// stopIdleReceiver disarms the receiver when leaving WaitingRxFrame for a
// measurement/carrier procedure. The buffer slot stays claimed for the
// return to receive.
func (d *Driver) stopIdleReceiver() {
	if d.state == types.StateWaitingRxFrame && d.rxBuf != nil {
		d.radio.ReceiveStop()
	}
}
