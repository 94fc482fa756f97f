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

// Package rxbuf implements the fixed pool of receive-frame buffers. A slot
// is owned by the driver between TakeFree and frame delivery, by the client
// between delivery and Release. The driver never writes a client-owned slot.
package rxbuf

import (
	"github.com/openthread/ot-radiodrv/logger"
	"github.com/openthread/ot-radiodrv/types"
)

// Buffer is one receive slot. Psdu aliases the slot storage and holds the
// received PSDU after delivery; Len is set by the driver at delivery time.
type Buffer struct {
	Psdu []byte
	Len  int
	Rssi int8
	Lqi  uint8

	free bool
	pool *Pool
}

// IsFree reports slot occupancy; exported for diagnostics only.
func (b *Buffer) IsFree() bool {
	return b.free
}

// Frame returns the delivered PSDU bytes.
func (b *Buffer) Frame() []byte {
	return b.Psdu[:b.Len]
}

// Pool is the fixed set of receive slots.
type Pool struct {
	slots []Buffer
}

// NewPool creates a pool of n free slots, each able to hold a max-size PSDU.
func NewPool(n int) *Pool {
	logger.AssertTrue(n > 0, "receive pool needs at least one slot, got %d", n)
	p := &Pool{slots: make([]Buffer, n)}
	for i := range p.slots {
		p.slots[i].Psdu = make([]byte, types.MaxPsduLenBytes)
		p.slots[i].free = true
		p.slots[i].pool = p
	}
	return p
}

// Cap returns the total number of slots.
func (p *Pool) Cap() int {
	return len(p.slots)
}

// FreeCount returns the number of slots currently owned by the driver.
func (p *Pool) FreeCount() int {
	n := 0
	for i := range p.slots {
		if p.slots[i].free {
			n++
		}
	}
	return n
}

// TakeFree claims a free slot for reception, or nil when the pool is
// exhausted (all slots handed to the client).
func (p *Pool) TakeFree() *Buffer {
	for i := range p.slots {
		if p.slots[i].free {
			p.slots[i].free = false
			p.slots[i].Len = 0
			p.slots[i].Rssi = types.RssiInvalid
			p.slots[i].Lqi = 0
			return &p.slots[i]
		}
	}
	return nil
}

// Release returns a client-owned slot to the pool. Releasing a slot that is
// already free is a no-op; the first release per cycle wins. Returns whether
// the slot changed ownership.
func (p *Pool) Release(b *Buffer) bool {
	if b == nil || b.pool != p || b.free {
		return false
	}
	b.free = true
	return true
}
