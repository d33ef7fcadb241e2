// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chans

import "code.hybscloud.com/iox"

// Loop is a single-goroutine cooperative executor: a microtask queue
// (future settlement callbacks, drained to exhaustion) and a macrotask
// queue (one task per tick, the yield boundary).
//
// All loop, channel, future, and select state is single-owner: it must be
// touched only from the goroutine driving the loop. The one cross-goroutine
// entry point is [Inbox.Post].
type Loop struct {
	serial  Serial
	micro   []func()
	macro   []func()
	inboxes []*Inbox
	yieldF  *Future[struct{}]
	gen     uint64
}

// NewLoop creates an idle loop.
func NewLoop() *Loop {
	return &Loop{serial: nextSerial()}
}

// Serial returns the serial number assigned to this loop.
func (l *Loop) Serial() Serial {
	return l.serial
}

// Defer enqueues fn as a microtask. Microtasks run before any further
// macrotask, in FIFO order, including microtasks they enqueue themselves.
func (l *Loop) Defer(fn func()) {
	l.micro = append(l.micro, fn)
}

// Schedule enqueues fn as a macrotask (the setImmediate analogue).
// One macrotask runs per tick, followed by a full microtask drain.
func (l *Loop) Schedule(fn func()) {
	l.macro = append(l.macro, fn)
}

// Generation returns the macrotask-yield generation counter. It increments
// every time a [Loop.Yield] handle resolves; wraparound at the uint64
// boundary is expected and harmless: callers compare for inequality only.
func (l *Loop) Generation() uint64 {
	return l.gen
}

// Yield returns a handle that resolves after the next macrotask boundary.
// The handle is self-conflating: all callers within the same turn receive
// the same pending future, and one macrotask tick unblocks them all.
func (l *Loop) Yield() *Future[struct{}] {
	if l.yieldF != nil {
		return l.yieldF
	}
	f := NewFuture[struct{}](l)
	l.yieldF = f
	l.Schedule(func() {
		l.gen++
		l.yieldF = nil
		f.Resolve(struct{}{})
	})
	return f
}

// Tick runs one scheduling step: posted inbox work is collected, then
// either the pending microtasks are drained or one macrotask runs followed
// by a microtask drain. Reports whether any work was done.
func (l *Loop) Tick() bool {
	l.collect()
	if len(l.micro) > 0 {
		l.drainMicro()
		return true
	}
	if len(l.macro) > 0 {
		fn := l.macro[0]
		l.macro = l.macro[1:]
		fn()
		l.drainMicro()
		return true
	}
	return false
}

// Run ticks until the loop is quiescent: no microtasks, no macrotasks,
// and nothing posted on an inbox at the moment of the check.
func (l *Loop) Run() {
	for l.Tick() {
	}
}

func (l *Loop) drainMicro() {
	for len(l.micro) > 0 {
		fn := l.micro[0]
		l.micro = l.micro[1:]
		fn()
	}
}

// collect moves posted inbox work onto the macrotask queue.
func (l *Loop) collect() {
	for _, ib := range l.inboxes {
		for {
			fn, err := ib.q.Dequeue()
			if err != nil {
				break
			}
			l.macro = append(l.macro, fn)
		}
	}
}

// Await drives l until f settles and returns its result.
//
// If the loop quiesces with f still pending and no inbox is registered,
// every task is asleep and nothing external can wake one: Await panics with
// a deadlock diagnostic. With inboxes registered it parks with adaptive
// backoff (iox.Backoff) until a producer posts.
func Await[T any](l *Loop, f *Future[T]) (T, error) {
	var bo iox.Backoff
	for !f.Settled() {
		if l.Tick() {
			bo.Reset()
			continue
		}
		if len(l.inboxes) == 0 {
			panic("chans: deadlock: all tasks are asleep")
		}
		bo.Wait()
	}
	return f.Result()
}
