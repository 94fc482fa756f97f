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
	"github.com/openthread/ot-radiodrv/hal"
	"github.com/openthread/ot-radiodrv/logger"
	"github.com/openthread/ot-radiodrv/types"
	"github.com/openthread/ot-radiodrv/wpan"
)

// HandleRadioEvent is the push path of event delivery: the peripheral
// binding calls it once per completion event, from any goroutine.
func (d *Driver) HandleRadioEvent(ev hal.Event) {
	d.mu.Lock()
	defer d.flush()
	d.handleEvent(ev)
}

// PumpRadioEvents is the pull path: it drains the attached EventSource,
// dispatching each event as HandleRadioEvent would, and returns the number
// of events handled. For bindings that queue events instead of pushing them.
func (d *Driver) PumpRadioEvents() int {
	n := 0
	for {
		d.mu.Lock()
		src := d.source
		if src == nil {
			d.mu.Unlock()
			return n
		}
		ev, ok := src.PollEvent()
		if !ok {
			d.mu.Unlock()
			return n
		}
		d.handleEvent(ev)
		d.flush()
		n++
	}
}

// handleEvent dispatches one completion event against the current state.
// Events that do not match the state are stale leftovers of an aborted
// operation and are dropped with a trace. Caller holds d.mu.
func (d *Driver) handleEvent(ev hal.Event) {
	if !d.initialized {
		logger.Tracef("fsm: dropping %v, driver not initialized", ev.Type)
		return
	}

	switch ev.Type {
	case hal.EventFrameStart:
		if d.state == types.StateWaitingRxFrame && d.rxBuf != nil {
			d.setState(types.StateRxHeader)
		} else {
			d.dropEvent(ev)
		}

	case hal.EventAddressMatched:
		if d.state == types.StateRxHeader {
			d.setState(types.StateRxFrame)
		} else {
			d.dropEvent(ev)
		}

	case hal.EventFilterReject:
		switch d.state {
		case types.StateRxHeader, types.StateRxFrame:
			// Frame not for us: no upward report, restart the receiver.
			d.armReceive()
		default:
			d.dropEvent(ev)
		}

	case hal.EventFrameReceived:
		d.handleFrameReceived(ev)

	case hal.EventCrcError:
		d.handleCrcError(ev)

	case hal.EventRxTimeout:
		if d.state == types.StateRxAck {
			d.failTransmit(types.ErrorNoAck)
			d.stats.AckTimeouts++
			d.armReceive()
		} else {
			d.dropEvent(ev)
		}

	case hal.EventTxDone:
		d.handleTxDone(ev)

	case hal.EventCcaResult:
		d.handleCcaResult(ev)

	case hal.EventEdDone:
		if d.state == types.StateEd {
			level := ev.EdLevelDbm
			d.edRemainingUs = 0
			d.notify(func() { d.client.EnergyDetected(level) })
			d.armReceive()
		} else {
			d.dropEvent(ev)
		}

	case hal.EventDisabled:
		if d.state == types.StateDisabling {
			d.setState(types.StateSleep)
		} else {
			d.dropEvent(ev)
		}

	default:
		logger.Panicf("fsm: unknown event type %d", uint8(ev.Type))
	}
}

func (d *Driver) handleFrameReceived(ev hal.Event) {
	switch d.state {
	case types.StateWaitingRxFrame, types.StateRxHeader, types.StateRxFrame:
		if d.rxBuf == nil {
			d.dropEvent(ev)
			return
		}
		buf := d.rxBuf
		buf.Len = ev.PsduLen
		buf.Rssi = ev.Rssi
		buf.Lqi = ev.Lqi
		d.rxBuf = nil // ownership moves to the client
		d.stats.RxFrames++
		d.notify(func() { d.client.FrameReceived(buf) })

		if wpan.AckRequested(buf.Frame()) {
			// AIFS handling is the peripheral's job; arm the ACK right away.
			d.ackTxPsdu = wpan.NewImmAck(buf.Frame(), false)
			d.radio.TransmitStart(d.ackTxPsdu)
			d.setState(types.StateTxAck)
		} else {
			d.armReceive()
		}

	case types.StateRxAck:
		ack := d.ackRxPsdu[:ev.PsduLen]
		if wpan.IsAckFor(ack, d.txPsdu) {
			psdu := d.txPsdu
			d.stats.TxFrames++
			d.notify(func() { d.client.TransmitDone(psdu) })
			d.armReceive()
		} else {
			// Some other frame inside our ACK window. Keep waiting; the
			// peripheral's timeout still bounds the procedure.
			d.radio.AckRxStart(d.ackRxPsdu, d.ackTimeoutUs)
		}

	default:
		d.dropEvent(ev)
	}
}

func (d *Driver) handleCrcError(ev hal.Event) {
	switch d.state {
	case types.StateWaitingRxFrame, types.StateRxHeader, types.StateRxFrame:
		d.stats.RxErrors++
		d.armReceive()
	case types.StateRxAck:
		d.stats.RxErrors++
		d.failTransmit(types.ErrorNoAck)
		d.armReceive()
	default:
		d.dropEvent(ev)
	}
}

func (d *Driver) handleTxDone(ev hal.Event) {
	switch d.state {
	case types.StateTxAck:
		d.stats.TxAcks++
		d.armReceive()

	case types.StateTxFrame:
		logger.AssertNotNil(d.txPsdu, "transmit completed without an active frame")
		if wpan.AckRequested(d.txPsdu) {
			d.radio.AckRxStart(d.ackRxPsdu, d.ackTimeoutUs)
			d.setState(types.StateRxAck)
		} else {
			psdu := d.txPsdu
			d.stats.TxFrames++
			d.notify(func() { d.client.TransmitDone(psdu) })
			d.armReceive()
		}

	default:
		d.dropEvent(ev)
	}
}

func (d *Driver) handleCcaResult(ev hal.Event) {
	switch d.state {
	case types.StateCcaBeforeTx:
		logger.AssertNotNil(d.txPsdu, "CCA sample without an active frame")
		if ev.Busy {
			d.failTransmit(types.ErrorChannelAccessFailure)
			d.armReceive()
		} else {
			d.radio.TransmitStart(d.txPsdu)
			d.setState(types.StateTxFrame)
		}

	case types.StateCca:
		clear := !ev.Busy
		d.notify(func() { d.client.CcaDone(clear) })
		d.armReceive()

	default:
		d.dropEvent(ev)
	}
}

// failTransmit queues the TransmitFailed callback for the active transmit
// procedure and drops the frame reference.
func (d *Driver) failTransmit(err types.RadioError) {
	psdu := d.txPsdu
	d.txPsdu = nil
	d.notify(func() { d.client.TransmitFailed(psdu, err) })
}

func (d *Driver) dropEvent(ev hal.Event) {
	logger.Tracef("fsm: dropping stale %v in state %v", ev.Type, d.state)
}
