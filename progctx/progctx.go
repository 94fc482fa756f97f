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

// Package progctx ties the lifetime of the diagnostic tool's goroutines (the
// console loop, the event pump) to one cancellable program context.
package progctx

import (
	"context"
	"sync"

	"github.com/openthread/ot-radiodrv/logger"
)

// ProgCtx is the program-lifetime context. It implements context.Context.
type ProgCtx struct {
	context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	wg       sync.WaitGroup
	routines map[string]int
	deferred []func()
}

// New creates a ProgCtx from the parent context.
func New(parent context.Context) *ProgCtx {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &ProgCtx{
		Context:  ctx,
		cancel:   cancel,
		routines: map[string]int{},
	}
}

// Cancel ends the program context, reporting reason, and runs the deferred
// cleanups in registration order. Only the first call has any effect.
func (ctx *ProgCtx) Cancel(reason interface{}) {
	if ctx.Err() != nil {
		return
	}
	ctx.cancel()

	if err, ok := reason.(error); ok {
		logger.TraceError("program exit: %v", err)
	} else if reason != nil {
		logger.Infof("program exit: %v", reason)
	}

	ctx.mu.Lock()
	deferred := ctx.deferred
	ctx.deferred = nil
	ctx.mu.Unlock()
	for _, f := range deferred {
		f()
	}
}

// Defer registers a cleanup to run when Cancel fires. Must not be called
// after the context is done.
func (ctx *ProgCtx) Defer(f func()) {
	if ctx.Err() != nil {
		logger.Panicf("Defer after program context is done")
	}
	ctx.mu.Lock()
	ctx.deferred = append(ctx.deferred, f)
	ctx.mu.Unlock()
}

// WaitAdd registers delta goroutines under name to wait for.
func (ctx *ProgCtx) WaitAdd(name string, delta int) {
	ctx.mu.Lock()
	ctx.routines[name] += delta
	ctx.mu.Unlock()
	ctx.wg.Add(delta)
}

// WaitDone marks one goroutine under name as finished.
func (ctx *ProgCtx) WaitDone(name string) {
	ctx.mu.Lock()
	if ctx.routines[name] <= 0 {
		ctx.mu.Unlock()
		logger.Panicf("routine %s is not running, should not call WaitDone", name)
	}
	ctx.routines[name]--
	ctx.mu.Unlock()
	ctx.wg.Done()
}

// WaitCount returns the number of registered goroutines still running.
func (ctx *ProgCtx) WaitCount() int {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	total := 0
	for _, c := range ctx.routines {
		total += c
	}
	return total
}

// Wait blocks until all registered goroutines have finished.
func (ctx *ProgCtx) Wait() {
	ctx.mu.Lock()
	logger.Debugf("program context waiting for routines: %v", ctx.routines)
	ctx.mu.Unlock()
	ctx.wg.Wait()
}
