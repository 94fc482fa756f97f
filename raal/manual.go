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

package raal

// Manual is a scripted arbiter for tests and the diagnostic console. Grant
// and Revoke flip availability and notify the listener; requests made while
// unavailable stay queued until the next Grant.
type Manual struct {
	listener  Listener
	available bool
	held      bool
	queued    bool
}

// NewManual creates a Manual arbiter that starts out granting requests.
func NewManual() *Manual {
	return &Manual{available: true}
}

// SetListener binds the driver. Must be set before use.
func (m *Manual) SetListener(l Listener) {
	m.listener = l
}

// Holding reports whether a slot is currently held.
func (m *Manual) Holding() bool {
	return m.held
}

func (m *Manual) RequestTimeslot() bool {
	if !m.available {
		m.queued = true
		return false
	}
	m.held = true
	return true
}

func (m *Manual) EndTimeslot() {
	m.held = false
	m.queued = false
}

// Grant makes the radio available; a queued request is granted via the
// listener callback.
func (m *Manual) Grant() {
	m.available = true
	if m.queued {
		m.queued = false
		m.held = true
		m.listener.TimeslotGranted()
	}
}

// Revoke withdraws the radio. A held slot is taken away via the listener
// callback; the driver's subsequent request parks as queued.
func (m *Manual) Revoke() {
	m.available = false
	if m.held {
		m.held = false
		m.queued = true
		m.listener.TimeslotRevoked()
	}
}
