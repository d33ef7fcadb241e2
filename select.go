// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chans

import (
	"math/rand/v2"
	"slices"

	"code.hybscloud.com/iox"
)

// Select multiplexes a fixed ordered set of cases and resolves exactly one
// ready case per attempt, chosen with uniform random fairness across ready
// cases (Fisher–Yates reshuffle of the pending set between attempts, as in
// Go's select).
//
// Channel cases remain selectable across attempts; external cases leave
// the pending set once consumed. At most one wait may be outstanding, and
// no poll or consumption may interleave with it.
type Select struct {
	loop    *Loop
	cases   []Case
	pending []Case
	tok     *token
	inUse   bool
	shuffle bool
	intn    func(n int) int

	waitF   *Future[int]
	waitGen uint64
	off     func()

	// Unsafe disables the macrotask yield on Wait settlement.
	Unsafe bool
}

// NewSelect creates a select over cases, assigning each its stable index
// in input order. The initial pending order is a uniform random
// permutation.
//
// Panics when a case is already registered with a select, or when two
// cases are a send and a receive on the same channel: the two ends would
// rendezvous with each other during registration.
func NewSelect(l *Loop, cases ...Case) *Select {
	s := &Select{loop: l, cases: slices.Clone(cases), intn: rand.IntN}
	for i, c := range cases {
		if c.selectOf() != nil || c.Index() >= 0 {
			panic("chans: case already registered with a select")
		}
		c.setIndex(i)
		c.attach(s)
	}
	for i, a := range cases {
		if a.chanID() == nil {
			continue
		}
		for _, b := range cases[i+1:] {
			if b.chanID() == a.chanID() && a.isSend() != b.isSend() {
				panic("chans: select contains send and receive on the same channel")
			}
		}
	}
	s.pending = slices.Clone(s.cases)
	s.reshuffle()
	return s
}

// Cases returns the cases in input order; index positions match the
// results of Poll and Wait.
func (s *Select) Cases() []Case {
	return slices.Clone(s.cases)
}

// Len returns the number of still-pending cases.
func (s *Select) Len() int {
	return len(s.pending)
}

// Pending returns the futures of the still-pending external cases.
func (s *Select) Pending() []any {
	var out []any
	for _, c := range s.cases {
		if f, ok := c.pendingExternal(); ok {
			out = append(out, f)
		}
	}
	return out
}

// reshuffle applies a Fisher–Yates permutation to the pending set and
// re-stamps every case's pending index.
func (s *Select) reshuffle() {
	for i := len(s.pending) - 1; i > 0; i-- {
		j := s.intn(i + 1)
		s.pending[i], s.pending[j] = s.pending[j], s.pending[i]
	}
	for i, c := range s.pending {
		c.setPendingIndex(i)
	}
	s.shuffle = false
}

// splice removes a consumed external case from the pending set,
// decrementing the pending index of every successor.
func (s *Select) splice(c Case) {
	i := c.pendingIndex()
	s.pending = append(s.pending[:i], s.pending[i+1:]...)
	for j := i; j < len(s.pending); j++ {
		s.pending[j].setPendingIndex(j)
	}
}

// Poll probes the cases without suspending and returns the index of one
// ready case, or iox.ErrWouldBlock when none is ready.
//
// A ready send case has already delivered (its expression was evaluated
// and the value handed off); a ready receive case holds its element; both
// stay recorded until consumed. Callback failures raised while probing
// propagate; when idx is non-negative the failing probe still delivered.
func (s *Select) Poll() (idx int, err error) {
	if s.inUse {
		return -1, ErrCasesInUse
	}
	return s.poll()
}

func (s *Select) poll() (int, error) {
	// a case left ready by a prior partial operation short-circuits
	for _, c := range s.pending {
		if c.terminal() {
			return c.Index(), nil
		}
	}
	if s.shuffle {
		s.reshuffle()
	}
	s.shuffle = true
	for _, c := range s.pending {
		if c.isExternal() {
			continue // externals become ready only via their terminal state
		}
		tk := &token{}
		s.tok = tk
		queued, err := c.register(tk)
		if err != nil {
			if s.tok == tk {
				s.tok = nil
				return -1, err
			}
			// the callback consumed the token before the failure: delivered
			return c.Index(), err
		}
		if !queued {
			return c.Index(), nil
		}
		c.withdraw()
		s.tok = nil
	}
	return -1, iox.ErrWouldBlock
}

// Wait resolves with the index of one ready case, suspending until a case
// becomes ready. It rejects with the cancellation reason, with
// [ErrSendClosed] when a registered send case's channel closes, or with
// [ErrCasesInUse] on reentry.
//
// Settlement is deferred past the next macrotask boundary unless the
// loop's generation advanced during the call or Unsafe is set. The stop
// sweep (withdrawal of every losing callback) completes before the
// future settles.
func (s *Select) Wait(sig *Signal) *Future[int] {
	f := NewFuture[int](s.loop)
	if sig != nil && sig.Aborted() {
		f.Reject(sig.Reason())
		return f
	}
	if s.inUse {
		f.Reject(ErrCasesInUse)
		return f
	}
	gen := s.loop.Generation()
	idx, err := s.poll()
	if err == nil || err != iox.ErrWouldBlock {
		settleYield(s.loop, gen, s.Unsafe, f, idx, err)
		return f
	}

	s.inUse = true
	s.waitF = f
	s.waitGen = gen
	tk := &token{stop: true}
	s.tok = tk
	if sig != nil {
		s.off = sig.OnAbort(func(reason error) {
			if s.tok != tk {
				return
			}
			s.tok = nil
			s.sweep() // cancellation reason dominates sweep errors
			s.finishWait(-1, reason)
		})
	}
	for _, c := range s.pending {
		if s.tok != tk {
			break // a registration completed inline and won
		}
		if c.isExternal() {
			continue // the standing continuation wakes us
		}
		if _, err := c.register(tk); err != nil {
			if s.tok == tk {
				s.tok = nil
				swerr := s.sweep()
				s.finishWait(-1, firstErr(err, swerr))
			}
			break
		}
	}
	return f
}

// externalReady records that an external case settled. Fired from the
// case's standing continuation, always as a loop microtask.
func (s *Select) externalReady(c Case) {
	if s.tok == nil || !s.tok.stop {
		return // no wait in progress; poll will observe the terminal state
	}
	s.tok = nil
	swerr := s.sweep()
	s.finishWait(c.Index(), swerr)
}

// sweep withdraws the still-queued callbacks of every pending case. Always
// runs before the wait's user-visible resolution. The error return is the
// first non-sentinel withdrawal failure; removal itself cannot fail, so it
// is nil today.
func (s *Select) sweep() error {
	for _, c := range s.pending {
		c.withdraw()
	}
	return nil
}

// finishWait ends the in-progress wait: idx is the winning case index, or
// err the rejection. Settlement is deferred through the yield gate.
func (s *Select) finishWait(idx int, err error) {
	s.inUse = false
	if s.off != nil {
		s.off()
		s.off = nil
	}
	f := s.waitF
	s.waitF = nil
	if f == nil {
		return
	}
	settleYield(s.loop, s.waitGen, s.Unsafe, f, idx, err)
}
