// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chans_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/chans"
)

func TestLoopSerialMonotonic(t *testing.T) {
	a := chans.NewLoop()
	b := chans.NewLoop()
	if b.Serial() <= a.Serial() {
		t.Fatalf("serials not increasing: %d then %d", a.Serial(), b.Serial())
	}
}

func TestLoopMicroBeforeMacro(t *testing.T) {
	l := chans.NewLoop()
	var order []string
	l.Schedule(func() { order = append(order, "macro") })
	l.Defer(func() { order = append(order, "micro") })
	l.Run()
	if len(order) != 2 || order[0] != "micro" || order[1] != "macro" {
		t.Fatalf("order = %v", order)
	}
}

func TestLoopMicroDrainsToExhaustion(t *testing.T) {
	l := chans.NewLoop()
	var n int
	l.Defer(func() {
		n++
		l.Defer(func() { n++ })
	})
	if !l.Tick() {
		t.Fatal("tick did no work")
	}
	if n != 2 {
		t.Fatalf("n = %d, want 2 (nested microtask in same drain)", n)
	}
}

func TestYieldConflation(t *testing.T) {
	l := chans.NewLoop()
	f1 := l.Yield()
	f2 := l.Yield()
	if f1 != f2 {
		t.Fatal("yield handles within one turn differ")
	}
	gen := l.Generation()
	l.Run()
	if !f1.Settled() {
		t.Fatal("yield did not resolve")
	}
	if l.Generation() != gen+1 {
		t.Fatalf("generation = %d, want %d", l.Generation(), gen+1)
	}
	if l.Yield() == f1 {
		t.Fatal("yield handle not renewed after resolution")
	}
}

func TestFutureSettleOnce(t *testing.T) {
	l := chans.NewLoop()
	f := chans.NewFuture[int](l)
	if f.Settled() {
		t.Fatal("fresh future settled")
	}
	if !f.Resolve(1) {
		t.Fatal("first resolve refused")
	}
	if f.Resolve(2) || f.Reject(errors.New("late")) {
		t.Fatal("second settle accepted")
	}
	if v := await(t, l, f); v != 1 {
		t.Fatalf("result = %d, want 1", v)
	}
}

func TestFutureCallbacksDeferred(t *testing.T) {
	l := chans.NewLoop()
	f := chans.NewFuture[int](l)
	var got int
	f.OnSettled(func(v int, err error) { got = v })
	f.Resolve(7)
	if got != 0 {
		t.Fatal("callback ran synchronously from Resolve")
	}
	l.Run()
	if got != 7 {
		t.Fatalf("got = %d, want 7", got)
	}
	// registration on a settled future is deferred too
	var late int
	f.OnSettled(func(v int, err error) { late = v })
	if late != 0 {
		t.Fatal("late callback ran inline")
	}
	l.Run()
	if late != 7 {
		t.Fatalf("late = %d, want 7", late)
	}
}

func TestFutureRejectNilPanics(t *testing.T) {
	l := chans.NewLoop()
	f := chans.NewFuture[int](l)
	defer func() {
		if recover() == nil {
			t.Fatal("Reject(nil) did not panic")
		}
	}()
	f.Reject(nil)
}

func TestAwaitDeadlockPanics(t *testing.T) {
	l := chans.NewLoop()
	f := chans.NewFuture[int](l)
	defer func() {
		if recover() == nil {
			t.Fatal("await on a dead loop did not panic")
		}
	}()
	chans.Await(l, f)
}

func TestInboxPost(t *testing.T) {
	skipRace(t)
	l := chans.NewLoop()
	ib := l.NewInbox()
	f := chans.NewFuture[int](l)
	go func() {
		for ib.Post(func() { f.Resolve(42) }) != nil {
		}
	}()
	if v := await(t, l, f); v != 42 {
		t.Fatalf("posted result = %d, want 42", v)
	}
}

func TestSignalAbort(t *testing.T) {
	sig, abort := chans.NewSignal()
	if sig.Aborted() || sig.Reason() != nil {
		t.Fatal("fresh signal triggered")
	}
	reason := errors.New("why")
	var seen []error
	off := sig.OnAbort(func(err error) { seen = append(seen, err) })
	_ = off
	sig.OnAbort(func(err error) { seen = append(seen, err) })
	abort(reason)
	abort(errors.New("again")) // idempotent: first reason sticks
	if !sig.Aborted() || sig.Reason() != reason {
		t.Fatalf("reason = %v, want %v", sig.Reason(), reason)
	}
	if len(seen) != 2 || seen[0] != reason || seen[1] != reason {
		t.Fatalf("seen = %v", seen)
	}
	// late registration fires inline with the stored reason
	var late error
	sig.OnAbort(func(err error) { late = err })
	if late != reason {
		t.Fatalf("late = %v, want %v", late, reason)
	}
}

func TestSignalUnsubscribe(t *testing.T) {
	sig, abort := chans.NewSignal()
	fired := false
	off := sig.OnAbort(func(error) { fired = true })
	off()
	off() // idempotent
	abort(nil)
	if fired {
		t.Fatal("unsubscribed listener fired")
	}
	if sig.Reason() != chans.ErrAborted {
		t.Fatalf("nil reason not defaulted: %v", sig.Reason())
	}
}
