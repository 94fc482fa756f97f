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

// RadioError codes reported upward with procedure outcomes. Values follow
// the OpenThread error.h numbering so they can be passed through unchanged.
type RadioError = uint8

const (
	ErrorNone                 RadioError = 0
	ErrorNoBufs               RadioError = 3
	ErrorBusy                 RadioError = 5
	ErrorNoAck                RadioError = 10
	ErrorAbort                RadioError = 11
	ErrorInvalidState         RadioError = 13
	ErrorChannelAccessFailure RadioError = 15
	ErrorFcs                  RadioError = 17
	ErrorDestinationAddressFiltered RadioError = 29
)

// RadioErrorString names err for logs and the CLI.
func RadioErrorString(err RadioError) string {
	switch err {
	case ErrorNone:
		return "none"
	case ErrorNoBufs:
		return "no-bufs"
	case ErrorBusy:
		return "busy"
	case ErrorNoAck:
		return "no-ack"
	case ErrorAbort:
		return "abort"
	case ErrorInvalidState:
		return "invalid-state"
	case ErrorChannelAccessFailure:
		return "channel-access-failure"
	case ErrorFcs:
		return "fcs"
	case ErrorDestinationAddressFiltered:
		return "addr-filtered"
	default:
		return "unknown"
	}
}
