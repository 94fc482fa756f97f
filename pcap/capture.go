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

package pcap

import (
	"sync"
	"time"

	"github.com/openthread/ot-radiodrv/types"
)

// Capture timestamps frames relative to its creation and serializes writers.
type Capture struct {
	mu    sync.Mutex
	file  File
	start time.Time
}

func NewCapture(file File) *Capture {
	return &Capture{file: file, start: time.Now()}
}

// Add appends one PSDU to the capture.
func (c *Capture) Add(psdu []byte, channel types.ChannelId, rssiDbm int8) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.file.AppendFrame(Frame{
		TimestampUs: uint64(time.Since(c.start).Microseconds()),
		Data:        psdu,
		Channel:     channel,
		RssiDbm:     rssiDbm,
	})
}

// Close syncs and closes the underlying file.
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.file.Sync(); err != nil {
		_ = c.file.Close()
		return err
	}
	return c.file.Close()
}
