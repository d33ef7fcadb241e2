// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chans

import "code.hybscloud.com/lfq"

// inboxCapacity is the bounded capacity of an inbox transport queue.
// 64 absorbs timer bursts while keeping the ring small; producers observe
// backpressure through iox.ErrWouldBlock rather than unbounded growth.
const inboxCapacity = 64

// Inbox is the cross-goroutine ingress boundary of a [Loop]: a bounded
// single-producer single-consumer queue. Exactly one producer goroutine may
// call [Inbox.Post]; the loop is the consumer. Create one inbox per
// producer (a timer goroutine, an I/O callback source).
//
// Posted functions run on the loop as macrotasks, in post order.
type Inbox struct {
	q lfq.SPSC[func()]
}

// NewInbox creates an inbox registered with the loop.
// Must be called on the loop goroutine.
func (l *Loop) NewInbox() *Inbox {
	ib := &Inbox{}
	ib.q.Init(inboxCapacity)
	l.inboxes = append(l.inboxes, ib)
	return ib
}

// Post hands fn to the loop from the producer goroutine.
// Non-blocking: returns iox.ErrWouldBlock when the bounded queue is full.
func (ib *Inbox) Post(fn func()) error {
	return ib.q.Enqueue(&fn)
}
