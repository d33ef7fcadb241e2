// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chans

// Case is one participant of a [Select]: a channel send ([Send]), a
// channel receive ([Recv]), or an external future ([Wait]). A case may be
// registered with at most one Select for its lifetime.
type Case interface {
	// Index returns the case's stable position in the select's input
	// list, -1 before registration.
	Index() int

	setIndex(int)
	setPendingIndex(int)
	pendingIndex() int
	attach(s *Select)
	selectOf() *Select
	// terminal reports an unconsumed ready result.
	terminal() bool
	// register offers a callback bound to tk to the case's channel;
	// reports queued like AddSender/AddReceiver. Never called on
	// external cases.
	register(tk *token) (queued bool, err error)
	// withdraw removes a live queued callback. Idempotent.
	withdraw()
	// chanID identifies the underlying channel, nil for external cases.
	chanID() any
	isSend() bool
	isExternal() bool
	// pendingExternal returns the still-unconsumed external future,
	// ok false for channel cases and consumed external cases.
	pendingExternal() (any, bool)
}

// token is the stop-semaphore token of one select attempt: authorization
// for exactly one case to complete it. stop distinguishes a true
// suspension (pending callbacks must be withdrawn on wakeup) from a
// reentrant synchronous probe (no cleanup needed).
type token struct {
	stop bool
}

// SendCase is a send participant: when selected, expr is evaluated and its
// value delivered to the channel.
type SendCase[T any] struct {
	ch   *Channel[T]
	expr func() T
	sel  *Select
	idx  int
	pidx int
	cb   *boundSend[T]
	ok   bool // terminal: delivered, not yet consumed
}

// Send creates a send case for ch. expr runs at delivery time, once per
// selection of this case.
func Send[T any](ch *Channel[T], expr func() T) *SendCase[T] {
	return &SendCase[T]{ch: ch, expr: expr, idx: -1}
}

// Consume acknowledges the delivery recorded by the latest poll or wait
// and rearms the case. Reports true on a consumed delivery and
// [ErrCaseNotReady] when the case holds none.
func (c *SendCase[T]) Consume() (bool, error) {
	if c.sel != nil && c.sel.inUse {
		return false, ErrCasesInUse
	}
	if !c.ok {
		return false, ErrCaseNotReady
	}
	c.ok = false
	return true, nil
}

func (c *SendCase[T]) Index() int            { return c.idx }
func (c *SendCase[T]) setIndex(i int)        { c.idx = i }
func (c *SendCase[T]) setPendingIndex(i int) { c.pidx = i }
func (c *SendCase[T]) pendingIndex() int     { return c.pidx }
func (c *SendCase[T]) attach(s *Select)      { c.sel = s }
func (c *SendCase[T]) selectOf() *Select     { return c.sel }
func (c *SendCase[T]) terminal() bool        { return c.ok }
func (c *SendCase[T]) chanID() any           { return c.ch }
func (c *SendCase[T]) isSend() bool          { return true }
func (c *SendCase[T]) isExternal() bool      { return false }

func (c *SendCase[T]) pendingExternal() (any, bool) { return nil, false }

func (c *SendCase[T]) register(tk *token) (bool, error) {
	c.cb = &boundSend[T]{c: c, tk: tk}
	queued, err := c.ch.AddSender(c.cb)
	if !queued {
		c.cb = nil
	}
	return queued, err
}

func (c *SendCase[T]) withdraw() {
	if c.cb != nil {
		c.ch.RemoveSender(c.cb)
		c.cb = nil
	}
}

// boundSend is the per-attempt sender callback of a SendCase, bound to the
// stop token current at registration. A fire whose token no longer matches
// the select's slot is a stale wakeup: the failure branch stays inert by
// re-throwing the provided sentinel, the delivery branch refuses.
type boundSend[T any] struct {
	c  *SendCase[T]
	tk *token
}

func (b *boundSend[T]) Send(err error, ok bool) (T, error) {
	var zero T
	c := b.c
	s := c.sel
	if s.tok != b.tk {
		if !ok {
			return zero, err
		}
		return zero, errStaleCallback
	}
	s.tok = nil
	c.cb = nil
	if !b.tk.stop {
		// synchronous probe from poll: no suspension to complete
		if !ok {
			return zero, err
		}
		v := c.expr()
		c.ok = true
		return v, nil
	}
	swerr := s.sweep()
	if !ok {
		s.finishWait(-1, firstErr(err, swerr))
		return zero, err
	}
	v := c.expr()
	c.ok = true
	s.finishWait(c.idx, swerr)
	return v, nil
}

// RecvCase is a receive participant: when selected, it captures the next
// element or the closed marker.
type RecvCase[T any] struct {
	ch   *Channel[T]
	sel  *Select
	idx  int
	pidx int
	cb   *boundRecv[T]
	next T
	ok   bool
	has  bool // terminal: next/ok valid, not yet consumed
}

// Recv creates a receive case for ch.
func Recv[T any](ch *Channel[T]) *RecvCase[T] {
	return &RecvCase[T]{ch: ch, idx: -1}
}

// Consume returns the element recorded by the latest poll or wait and
// rearms the case. ok false is the closed marker carrying the channel
// default. Returns [ErrCaseNotReady] when the case holds no result.
func (c *RecvCase[T]) Consume() (v T, ok bool, err error) {
	if c.sel != nil && c.sel.inUse {
		return v, false, ErrCasesInUse
	}
	if !c.has {
		return v, false, ErrCaseNotReady
	}
	v, ok = c.next, c.ok
	var zero T
	c.next, c.ok, c.has = zero, false, false
	return v, ok, nil
}

func (c *RecvCase[T]) Index() int            { return c.idx }
func (c *RecvCase[T]) setIndex(i int)        { c.idx = i }
func (c *RecvCase[T]) setPendingIndex(i int) { c.pidx = i }
func (c *RecvCase[T]) pendingIndex() int     { return c.pidx }
func (c *RecvCase[T]) attach(s *Select)      { c.sel = s }
func (c *RecvCase[T]) selectOf() *Select     { return c.sel }
func (c *RecvCase[T]) terminal() bool        { return c.has }
func (c *RecvCase[T]) chanID() any           { return c.ch }
func (c *RecvCase[T]) isSend() bool          { return false }
func (c *RecvCase[T]) isExternal() bool      { return false }

func (c *RecvCase[T]) pendingExternal() (any, bool) { return nil, false }

func (c *RecvCase[T]) register(tk *token) (bool, error) {
	c.cb = &boundRecv[T]{c: c, tk: tk}
	queued, err := c.ch.AddReceiver(c.cb)
	if !queued {
		c.cb = nil
	}
	return queued, err
}

func (c *RecvCase[T]) withdraw() {
	if c.cb != nil {
		c.ch.RemoveReceiver(c.cb)
		c.cb = nil
	}
}

// boundRecv is the per-attempt receiver callback of a RecvCase.
type boundRecv[T any] struct {
	c  *RecvCase[T]
	tk *token
}

func (b *boundRecv[T]) Recv(v T, ok bool) error {
	c := b.c
	s := c.sel
	if s.tok != b.tk {
		return errStaleCallback
	}
	s.tok = nil
	c.cb = nil
	c.next, c.ok, c.has = v, ok, true
	if b.tk.stop {
		swerr := s.sweep()
		s.finishWait(c.idx, swerr)
	}
	return nil
}

// WaitCase is an external-value participant: a future whose outcome, once
// observed, makes the case ready exactly once; consumption removes it from
// the select's pending set.
type WaitCase[T any] struct {
	f        *Future[T]
	sel      *Select
	idx      int
	pidx     int
	val      T
	err      error
	settled  bool
	consumed bool
}

// Wait creates an external-value case for f.
func Wait[T any](f *Future[T]) *WaitCase[T] {
	return &WaitCase[T]{f: f, idx: -1}
}

// Consume returns the future's outcome, recorded when the future settled:
// the resolved value, or the stored rejection as err. Either way the
// case is removed from the select's pending set. Returns
// [ErrCaseNotReady] when the future has not settled or the case was
// already consumed.
func (c *WaitCase[T]) Consume() (v T, err error) {
	if c.sel != nil && c.sel.inUse {
		return v, ErrCasesInUse
	}
	if !c.settled || c.consumed {
		return v, ErrCaseNotReady
	}
	c.consumed = true
	c.sel.splice(c)
	return c.val, c.err
}

func (c *WaitCase[T]) Index() int            { return c.idx }
func (c *WaitCase[T]) setIndex(i int)        { c.idx = i }
func (c *WaitCase[T]) setPendingIndex(i int) { c.pidx = i }
func (c *WaitCase[T]) pendingIndex() int     { return c.pidx }
func (c *WaitCase[T]) selectOf() *Select     { return c.sel }
func (c *WaitCase[T]) terminal() bool        { return c.settled && !c.consumed }
func (c *WaitCase[T]) chanID() any           { return nil }
func (c *WaitCase[T]) isSend() bool          { return false }
func (c *WaitCase[T]) isExternal() bool      { return true }

func (c *WaitCase[T]) pendingExternal() (any, bool) { return c.f, !c.consumed }

// attach installs the standing continuation. It observes the outcome
// (rejection included) as soon as the future settles, keeping the case
// ready for later polls and waking a suspended wait.
func (c *WaitCase[T]) attach(s *Select) {
	c.sel = s
	c.f.OnSettled(func(v T, err error) {
		c.val, c.err, c.settled = v, err, true
		s.externalReady(c)
	})
}

func (c *WaitCase[T]) register(*token) (bool, error) {
	panic("chans: register on external case")
}

func (c *WaitCase[T]) withdraw() {}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
