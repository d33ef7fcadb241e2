// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chans

import (
	"iter"

	"code.hybscloud.com/iox"
)

// Channel is a typed FIFO point of rendezvous between any number of
// senders and receivers on one [Loop], optionally buffered, with Go close
// semantics: send on closed fails with [ErrSendClosed], receive drains the
// buffer then yields the closed marker.
//
// Queue invariants (outside a close in progress): a non-empty sender queue
// implies the receiver queue is empty and the buffer full or absent; a
// non-empty receiver queue implies both the buffer and the sender queue are
// empty. Elements are delivered in strict FIFO order across the channel's
// lifetime.
type Channel[T any] struct {
	loop  *Loop
	buf   *Ring[T] // nil when unbuffered
	sendq []Sender[T]
	recvq []Receiver[T]
	open  bool
	def   func() T

	// Unsafe disables the macrotask yield on Send and Recv settlement.
	// Only for callers that know their tasks cannot form a microtask
	// cycle.
	Unsafe bool
}

// NewChannel creates a channel on l. Capacity 0 is a strict rendezvous;
// positive capacity buffers that many elements.
func NewChannel[T any](l *Loop, capacity int) *Channel[T] {
	if capacity < 0 {
		panic("chans: negative channel capacity")
	}
	ch := &Channel[T]{loop: l, open: true}
	if capacity > 0 {
		ch.buf = NewRing[T](capacity)
	}
	return ch
}

// Loop returns the loop the channel lives on.
func (ch *Channel[T]) Loop() *Loop {
	return ch.loop
}

// Cap returns the buffer capacity, 0 for unbuffered.
func (ch *Channel[T]) Cap() int {
	if ch.buf == nil {
		return 0
	}
	return ch.buf.Cap()
}

// Len returns the number of buffered elements.
func (ch *Channel[T]) Len() int {
	if ch.buf == nil {
		return 0
	}
	return ch.buf.Len()
}

// Concurrency returns pending senders minus pending receivers: positive
// while senders are blocked, negative while receivers are.
func (ch *Channel[T]) Concurrency() int {
	return len(ch.sendq) - len(ch.recvq)
}

// SetDefault installs the factory producing the value delivered with the
// closed marker. Without one, closed receives carry the zero value.
func (ch *Channel[T]) SetDefault(fn func() T) {
	ch.def = fn
}

func (ch *Channel[T]) closedDefault() T {
	if ch.def != nil {
		return ch.def()
	}
	var zero T
	return zero
}

// AddSender offers s to the channel. Delivery is synchronous when a
// receiver is waiting or the buffer has room; otherwise s is enqueued.
// Reports whether s was enqueued (true) or satisfied inline (false).
//
// On a closed channel it fails immediately with [ErrSendClosed] without
// invoking s. A non-nil error with queued false otherwise is an abort or a
// receiver-callback failure raised during inline delivery.
func (ch *Channel[T]) AddSender(s Sender[T]) (queued bool, err error) {
	if !ch.open {
		return false, ErrSendClosed
	}
	if len(ch.recvq) > 0 {
		r := ch.recvq[0]
		v, serr := s.Send(nil, true)
		if serr != nil {
			// aborted send: the peeked receiver keeps its place
			return false, serr
		}
		ch.recvq = ch.recvq[1:]
		return false, r.Recv(v, true)
	}
	if ch.buf != nil && !ch.buf.Full() {
		v, serr := s.Send(nil, true)
		if serr != nil {
			return false, serr
		}
		ch.buf.Push(v)
		return false, nil
	}
	ch.sendq = append(ch.sendq, s)
	return true, nil
}

// RemoveSender removes the last occurrence of s (identity comparison) from
// the sender queue. No-op when absent; tolerates double removal.
func (ch *Channel[T]) RemoveSender(s Sender[T]) {
	for i := len(ch.sendq) - 1; i >= 0; i-- {
		if ch.sendq[i] == s {
			ch.sendq = append(ch.sendq[:i], ch.sendq[i+1:]...)
			return
		}
	}
}

// AddReceiver offers r to the channel. Priority: buffered element, then a
// waiting sender, then the closed marker; otherwise r is enqueued.
// Reports whether r was enqueued (true) or satisfied inline (false).
//
// A non-nil error is a callback failure during inline delivery; when the
// failing callback is a staged sender refilling the buffer, r has already
// been satisfied.
func (ch *Channel[T]) AddReceiver(r Receiver[T]) (queued bool, err error) {
	if ch.buf != nil && !ch.buf.Empty() {
		v, _ := ch.buf.Shift()
		if rerr := r.Recv(v, true); rerr != nil {
			// staged senders stay queued past a free slot; Close flushes
			return false, rerr
		}
		return false, ch.fillFromSenders()
	}
	if len(ch.sendq) > 0 {
		s := ch.sendq[0]
		v, serr := s.Send(nil, true)
		ch.sendq = ch.sendq[1:]
		if serr != nil {
			return false, serr
		}
		return false, r.Recv(v, true)
	}
	if !ch.open {
		return false, r.Recv(ch.closedDefault(), false)
	}
	ch.recvq = append(ch.recvq, r)
	return true, nil
}

// RemoveReceiver removes the last occurrence of r (identity comparison)
// from the receiver queue. No-op when absent; tolerates double removal.
func (ch *Channel[T]) RemoveReceiver(r Receiver[T]) {
	for i := len(ch.recvq) - 1; i >= 0; i-- {
		if ch.recvq[i] == r {
			ch.recvq = append(ch.recvq[:i], ch.recvq[i+1:]...)
			return
		}
	}
}

// fillFromSenders moves staged senders into free buffer slots.
// The first sender failure stops the fill and is returned.
func (ch *Channel[T]) fillFromSenders() error {
	for len(ch.sendq) > 0 && !ch.buf.Full() {
		s := ch.sendq[0]
		ch.sendq = ch.sendq[1:]
		v, serr := s.Send(nil, true)
		if serr != nil {
			return serr
		}
		ch.buf.Push(v)
	}
	return nil
}

// TrySend attempts a non-blocking send: hand v to a waiting receiver, or
// buffer it. Returns [ErrSendClosed] on a closed channel and
// iox.ErrWouldBlock when the send cannot complete now.
func (ch *Channel[T]) TrySend(v T) error {
	if !ch.open {
		return ErrSendClosed
	}
	if len(ch.recvq) > 0 {
		r := ch.recvq[0]
		ch.recvq = ch.recvq[1:]
		return r.Recv(v, true)
	}
	if ch.buf != nil && ch.buf.Push(v) {
		return nil
	}
	return iox.ErrWouldBlock
}

// TryRecv attempts a non-blocking receive.
//
// (v, true, nil): an element was delivered, possibly advancing a staged
// sender into the buffer; err may be non-nil alongside ok true when the
// buffer refill hit a sender-callback failure after v was already taken.
// (default, false, nil): closed and drained.
// (zero, false, iox.ErrWouldBlock): open, empty, no sender waiting.
func (ch *Channel[T]) TryRecv() (v T, ok bool, err error) {
	if ch.buf != nil && !ch.buf.Empty() {
		v, _ = ch.buf.Shift()
		return v, true, ch.fillFromSenders()
	}
	if len(ch.sendq) > 0 {
		s := ch.sendq[0]
		ch.sendq = ch.sendq[1:]
		sv, serr := s.Send(nil, true)
		if serr != nil {
			return v, false, serr
		}
		return sv, true, nil
	}
	if !ch.open {
		return ch.closedDefault(), false, nil
	}
	return v, false, iox.ErrWouldBlock
}

// Close transitions the channel to closed. Waiting receivers observe the
// closed marker; staged senders are flushed into free buffer slots, and the
// rest fail with [ErrSendClosed]. Buffered elements remain drainable.
//
// Returns [ErrCloseClosed] on a second close. Otherwise, the last
// non-sentinel callback error raised during the notifications is returned
// after every party has been notified; callers that need deterministic
// error handling should treat it as "last error wins".
func (ch *Channel[T]) Close() error {
	if !ch.open {
		return ErrCloseClosed
	}
	ch.open = false
	var last error
	if len(ch.recvq) > 0 {
		rq := ch.recvq
		ch.recvq = nil
		def := ch.closedDefault()
		for _, r := range rq {
			if err := r.Recv(def, false); err != nil {
				last = err
			}
		}
	}
	if ch.buf != nil {
		for len(ch.sendq) > 0 && !ch.buf.Full() {
			s := ch.sendq[0]
			ch.sendq = ch.sendq[1:]
			v, serr := s.Send(nil, true)
			if serr != nil {
				last = serr
				continue
			}
			ch.buf.Push(v)
		}
	}
	sq := ch.sendq
	ch.sendq = nil
	for _, s := range sq {
		if _, serr := s.Send(ErrSendClosed, false); serr != nil && serr != ErrSendClosed {
			last = serr
		}
	}
	return last
}

// sendOp is the suspension-side Sender behind Channel.Send.
type sendOp[T any] struct {
	v    T
	ch   *Channel[T]
	f    *Future[struct{}]
	gen  uint64
	done bool
	off  func()
}

func (op *sendOp[T]) Send(err error, ok bool) (T, error) {
	var zero T
	if op.done {
		if !ok {
			return zero, err
		}
		return zero, errStaleCallback
	}
	op.done = true
	if op.off != nil {
		op.off()
		op.off = nil
	}
	if !ok {
		settleYield(op.ch.loop, op.gen, op.ch.Unsafe, op.f, struct{}{}, err)
		return zero, err
	}
	settleYield(op.ch.loop, op.gen, op.ch.Unsafe, op.f, struct{}{}, nil)
	return op.v, nil
}

// Send delivers v, suspending while no receiver is available and the
// buffer is full. The future resolves once v has been handed off (to a
// receiver or a buffer slot) and rejects with [ErrSendClosed] or the
// cancellation reason.
func (ch *Channel[T]) Send(v T, sig *Signal) *Future[struct{}] {
	f := NewFuture[struct{}](ch.loop)
	if sig != nil && sig.Aborted() {
		f.Reject(sig.Reason())
		return f
	}
	op := &sendOp[T]{v: v, ch: ch, f: f, gen: ch.loop.Generation()}
	queued, err := ch.AddSender(op)
	if err != nil && !op.done {
		op.done = true
		settleYield(ch.loop, op.gen, ch.Unsafe, f, struct{}{}, err)
		return f
	}
	if queued && sig != nil {
		op.off = sig.OnAbort(func(reason error) {
			if op.done {
				return
			}
			op.done = true
			ch.RemoveSender(op)
			settleYield(ch.loop, op.gen, ch.Unsafe, f, struct{}{}, reason)
		})
	}
	return f
}

// recvOp is the suspension-side Receiver behind Channel.Recv.
type recvOp[T any] struct {
	ch   *Channel[T]
	f    *Future[Result[T]]
	gen  uint64
	done bool
	off  func()
}

func (op *recvOp[T]) Recv(v T, ok bool) error {
	if op.done {
		return errStaleCallback
	}
	op.done = true
	if op.off != nil {
		op.off()
		op.off = nil
	}
	settleYield(op.ch.loop, op.gen, op.ch.Unsafe, op.f, Result[T]{Value: v, OK: ok}, nil)
	return nil
}

// Recv obtains the next element, suspending while the channel is open,
// empty, and senderless. The future resolves with a [Result]: OK false is
// the closed marker carrying the channel default. It rejects with the
// cancellation reason.
func (ch *Channel[T]) Recv(sig *Signal) *Future[Result[T]] {
	f := NewFuture[Result[T]](ch.loop)
	if sig != nil && sig.Aborted() {
		f.Reject(sig.Reason())
		return f
	}
	op := &recvOp[T]{ch: ch, f: f, gen: ch.loop.Generation()}
	queued, err := ch.AddReceiver(op)
	if err != nil && !op.done {
		op.done = true
		settleYield(ch.loop, op.gen, ch.Unsafe, f, Result[T]{}, err)
		return f
	}
	if queued && sig != nil {
		op.off = sig.OnAbort(func(reason error) {
			if op.done {
				return
			}
			op.done = true
			ch.RemoveReceiver(op)
			settleYield(ch.loop, op.gen, ch.Unsafe, f, Result[T]{}, reason)
		})
	}
	return f
}

// Drain returns a synchronous iterator over the elements retrievable
// without suspending: buffered values and staged senders, stopping at the
// first would-block or the closed marker.
func (ch *Channel[T]) Drain() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, ok, err := ch.TryRecv()
			if !ok {
				return
			}
			if !yield(v) || err != nil {
				return
			}
		}
	}
}

// ForEach receives elements asynchronously until the channel closes,
// calling fn for each. The future resolves on the closed marker and
// rejects if a receive rejects.
func (ch *Channel[T]) ForEach(fn func(v T)) *Future[struct{}] {
	f := NewFuture[struct{}](ch.loop)
	var step func()
	step = func() {
		ch.Recv(nil).OnSettled(func(r Result[T], err error) {
			if err != nil {
				f.Reject(err)
				return
			}
			if !r.OK {
				f.Resolve(struct{}{})
				return
			}
			fn(r.Value)
			step()
		})
	}
	step()
	return f
}
