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

// Package raal is the radio arbitration abstraction layer: the contract with
// the external time-slot arbiter that shares the radio hardware among
// competing users. The arbitration policy itself lives outside the driver.
package raal

// Arbiter grants and releases radio-hardware time slots.
type Arbiter interface {
	// RequestTimeslot asks for radio access now. A false return means the
	// request is queued; the arbiter calls Listener.TimeslotGranted later.
	RequestTimeslot() bool

	// EndTimeslot releases the currently held slot (or a queued request).
	EndTimeslot()
}

// Listener receives the arbiter's asynchronous notifications. The driver
// implements it; the arbiter must not call it re-entrantly from inside
// RequestTimeslot/EndTimeslot.
type Listener interface {
	// TimeslotGranted signals that a queued request now holds the radio.
	// A request is queued either by a denied RequestTimeslot or by
	// TimeslotRevoked taking a held slot away.
	TimeslotGranted()

	// TimeslotRevoked withdraws the radio at an arbitrary moment; the driver
	// suspends or aborts whatever hardware operation is active. The revoked
	// holder is implicitly re-queued: the arbiter calls TimeslotGranted
	// later without a new RequestTimeslot, unless EndTimeslot is called
	// first.
	TimeslotRevoked()
}

// Continuous is the arbiter used when the radio is not shared: every request
// is granted immediately and never revoked.
type Continuous struct{}

func (Continuous) RequestTimeslot() bool { return true }

func (Continuous) EndTimeslot() {}
