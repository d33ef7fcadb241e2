// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chans

import (
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// Step evaluates a channel protocol until the first effect suspension.
// Returns (result, nil) on completion, or (zero, suspension) if pending.
func Step[R any](protocol kont.Expr[R]) (R, *kont.Suspension[R]) {
	return kont.StepExpr(protocol)
}

// Advance dispatches the suspended channel operation. Non-blocking:
// returns iox.ErrWouldBlock while the operation cannot make progress (the
// rendezvous boundary); the suspension is unconsumed and may be retried
// after a peer makes progress.
//
// On success (nil error) the suspension is consumed and the protocol
// advances to the next effect or completion.
func Advance[R any](susp *kont.Suspension[R]) (R, *kont.Suspension[R], error) {
	sop, ok := susp.Op().(chanDispatcher)
	if !ok {
		panic("chans: unhandled effect in Advance")
	}
	v, err := sop.DispatchChan()
	if err != nil {
		var zero R
		return zero, susp, err
	}
	result, next := susp.Resume(v)
	return result, next, nil
}

// chanHandler implements kont.Handler for channel effects, converting
// non-blocking dispatch into blocking evaluation for Exec.
type chanHandler struct{}

// Dispatch implements kont.Handler via structural interface assertion.
// Waits past the iox.ErrWouldBlock boundary with adaptive backoff.
func (chanHandler) Dispatch(op kont.Operation) (kont.Resumed, bool) {
	sop, ok := op.(chanDispatcher)
	if !ok {
		panic("chans: unhandled effect in chanHandler")
	}
	return dispatchWait(sop), true
}

// dispatchWait retries DispatchChan until it succeeds, backing off with
// iox.Backoff while the operation would block.
func dispatchWait(sop chanDispatcher) kont.Resumed {
	var bo iox.Backoff
	for {
		v, err := sop.DispatchChan()
		if err == nil {
			return v
		}
		bo.Wait()
	}
}

// Exec runs a Cont-world channel protocol to completion on the calling
// goroutine, backing off with iox.Backoff at the rendezvous boundary.
//
// Channel state is single-owner: Exec must be the only accessor of the
// channels the protocol touches, so a protocol that needs a peer (an
// unbuffered rendezvous, a full-buffer send) deadlocks under Exec; use
// [Run] to interleave both sides instead.
func Exec[R any](protocol kont.Eff[R]) R {
	return kont.Handle(protocol, chanHandler{})
}

// Run runs two Cont-world channel protocols to completion, interleaving
// both on the calling goroutine and backing off (iox.Backoff) when
// neither side can make progress. Does not spawn goroutines.
func Run[A, B any](a kont.Eff[A], b kont.Eff[B]) (A, B) {
	return RunExpr(Reify(a), Reify(b))
}

// RunExpr runs two Expr-world channel protocols to completion,
// interleaving both on the calling goroutine.
func RunExpr[A, B any](a kont.Expr[A], b kont.Expr[B]) (A, B) {
	resultA, suspA := Step[A](a)
	resultB, suspB := Step[B](b)
	var bo iox.Backoff

	var sopA chanDispatcher
	if suspA != nil {
		sopA = suspA.Op().(chanDispatcher)
	}
	var sopB chanDispatcher
	if suspB != nil {
		sopB = suspB.Op().(chanDispatcher)
	}

	for suspA != nil || suspB != nil {
		progress := false
		if suspA != nil {
			v, err := sopA.DispatchChan()
			if err == nil {
				resultA, suspA = suspA.Resume(v)
				if suspA != nil {
					sopA = suspA.Op().(chanDispatcher)
				}
				progress = true
			}
		}
		if suspB != nil {
			v, err := sopB.DispatchChan()
			if err == nil {
				resultB, suspB = suspB.Resume(v)
				if suspB != nil {
					sopB = suspB.Op().(chanDispatcher)
				}
				progress = true
			}
		}
		if !progress {
			bo.Wait()
		} else {
			bo.Reset()
		}
	}
	return resultA, resultB
}
