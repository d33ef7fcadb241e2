// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chans

import "errors"

// ErrAborted is the cancellation reason when a signal is aborted with a
// nil reason.
var ErrAborted = errors.New("chans: operation aborted")

// Signal is an external cancellation handle for send, receive, and select
// wait. Aborting is one-way: a triggered signal stays triggered and the
// reason is propagated unchanged to every outstanding operation bound to
// it.
//
// Single-owner like all loop state. To abort from another goroutine, post
// the abort through an [Inbox].
type Signal struct {
	aborted bool
	reason  error
	subs    []*abortSub
}

type abortSub struct {
	fn  func(error)
	off bool
}

// NewSignal creates a signal and its abort trigger. Abort is idempotent;
// a nil reason is replaced with [ErrAborted].
func NewSignal() (*Signal, func(reason error)) {
	s := &Signal{}
	return s, s.abort
}

// Aborted reports whether the signal has been triggered.
func (s *Signal) Aborted() bool {
	return s.aborted
}

// Reason returns the abort reason, nil while untriggered.
func (s *Signal) Reason() error {
	return s.reason
}

// OnAbort registers fn to run when the signal triggers and returns an
// unsubscribe function. On an already triggered signal fn runs inline.
// Unsubscribe is idempotent and safe after the signal fired.
func (s *Signal) OnAbort(fn func(reason error)) (off func()) {
	if s.aborted {
		fn(s.reason)
		return func() {}
	}
	sub := &abortSub{fn: fn}
	s.subs = append(s.subs, sub)
	return func() { sub.off = true }
}

func (s *Signal) abort(reason error) {
	if s.aborted {
		return
	}
	if reason == nil {
		reason = ErrAborted
	}
	s.aborted = true
	s.reason = reason
	subs := s.subs
	s.subs = nil
	for _, sub := range subs {
		if !sub.off {
			sub.fn(reason)
		}
	}
}
