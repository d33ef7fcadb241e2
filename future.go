// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chans

import "code.hybscloud.com/kont"

// Future is a one-shot asynchronous outcome bound to a [Loop]: it settles
// exactly once, with a value or an error, and the terminal state then
// remains stable. Settlement callbacks run as loop microtasks, never
// synchronously from Resolve/Reject, so user callbacks cannot reenter
// channel state mid-operation.
type Future[T any] struct {
	loop   *Loop
	done   bool
	result kont.Either[error, T]
	subs   []func(T, error)
}

// NewFuture creates a pending future on l.
func NewFuture[T any](l *Loop) *Future[T] {
	return &Future[T]{loop: l}
}

// Loop returns the loop the future settles on.
func (f *Future[T]) Loop() *Loop {
	return f.loop
}

// Resolve settles the future with v.
// Reports whether this call settled it; a future settles at most once and
// later calls are ignored.
func (f *Future[T]) Resolve(v T) bool {
	return f.settle(v, nil)
}

// Reject settles the future with a non-nil error.
// Reports whether this call settled it.
func (f *Future[T]) Reject(err error) bool {
	if err == nil {
		panic("chans: reject with nil error")
	}
	var zero T
	return f.settle(zero, err)
}

// Settled reports whether the future holds its terminal state.
func (f *Future[T]) Settled() bool {
	return f.done
}

// Result returns the terminal state. Panics if the future is pending.
func (f *Future[T]) Result() (T, error) {
	if !f.done {
		panic("chans: result of pending future")
	}
	if err, ok := f.result.GetLeft(); ok {
		var zero T
		return zero, err
	}
	v, _ := f.result.GetRight()
	return v, nil
}

// OnSettled registers fn to run as a loop microtask once the future
// settles. On an already settled future the callback is deferred, not run
// inline.
func (f *Future[T]) OnSettled(fn func(v T, err error)) {
	if f.done {
		f.dispatch(fn)
		return
	}
	f.subs = append(f.subs, fn)
}

func (f *Future[T]) settle(v T, err error) bool {
	if f.done {
		return false
	}
	f.done = true
	if err != nil {
		f.result = kont.Left[error, T](err)
	} else {
		f.result = kont.Right[error](v)
	}
	subs := f.subs
	f.subs = nil
	for _, fn := range subs {
		f.dispatch(fn)
	}
	return true
}

func (f *Future[T]) dispatch(fn func(v T, err error)) {
	f.loop.Defer(func() {
		v, err := f.Result()
		fn(v, err)
	})
}

// settleYield settles f, deferring past the next macrotask boundary unless
// the loop's generation already advanced since gen was sampled or the
// caller opted out via unsafe. This is the cycle-breaking yield required of
// send, receive, and select wait.
func settleYield[T any](l *Loop, gen uint64, unsafe bool, f *Future[T], v T, err error) {
	if unsafe || l.Generation() != gen {
		f.settle(v, err)
		return
	}
	l.Yield().OnSettled(func(struct{}, error) {
		f.settle(v, err)
	})
}
