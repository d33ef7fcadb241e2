// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chans

import (
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// chanDispatcher is the structural interface for channel effect
// operations. DispatchChan is non-blocking: it returns iox.ErrWouldBlock
// at the rendezvous boundary while the operation cannot make progress.
type chanDispatcher interface {
	DispatchChan() (kont.Resumed, error)
}

// SendOp is the effect operation sending Value to C.
// Perform(&SendOp[T]{C: c, Value: v}) delivers v through the channel.
//
// Dispatch is stateful: the first dispatch registers with AddSender (an
// inline rendezvous completes immediately), later dispatches observe the
// fired callback. Send on a closed channel panics, as in Go.
type SendOp[T any] struct {
	kont.Phantom[struct{}]
	C     *Channel[T]
	Value T

	queued bool
	fired  bool
	err    error
}

// DispatchChan handles SendOp on the channel.
// Non-blocking: returns iox.ErrWouldBlock while no receiver or buffer
// slot is available.
func (op *SendOp[T]) DispatchChan() (kont.Resumed, error) {
	if op.fired {
		if op.err != nil {
			panic(op.err)
		}
		return struct{}{}, nil
	}
	if op.queued {
		return nil, iox.ErrWouldBlock
	}
	queued, err := op.C.AddSender(op)
	if err != nil && !op.fired {
		if err == ErrSendClosed {
			panic(err)
		}
		return nil, err
	}
	if queued {
		op.queued = true
		return nil, iox.ErrWouldBlock
	}
	if op.err != nil {
		panic(op.err)
	}
	return struct{}{}, nil
}

// Send implements the channel sender callback protocol for the operation.
func (op *SendOp[T]) Send(err error, ok bool) (T, error) {
	op.fired = true
	if !ok {
		op.err = err
		var zero T
		return zero, err
	}
	return op.Value, nil
}

// RecvOp is the effect operation receiving from C.
// Perform(&RecvOp[T]{C: c}) resumes with a [Result]: OK false is the
// closed marker carrying the channel default.
type RecvOp[T any] struct {
	kont.Phantom[Result[T]]
	C *Channel[T]

	queued bool
	fired  bool
	r      Result[T]
}

// DispatchChan handles RecvOp on the channel.
// Non-blocking: returns iox.ErrWouldBlock while the channel is open,
// empty, and senderless.
func (op *RecvOp[T]) DispatchChan() (kont.Resumed, error) {
	if op.fired {
		return op.r, nil
	}
	if op.queued {
		return nil, iox.ErrWouldBlock
	}
	queued, err := op.C.AddReceiver(op)
	if err != nil && !op.fired {
		return nil, err
	}
	if queued {
		op.queued = true
		return nil, iox.ErrWouldBlock
	}
	return op.r, nil
}

// Recv implements the channel receiver callback protocol for the
// operation.
func (op *RecvOp[T]) Recv(v T, ok bool) error {
	op.fired = true
	op.r = Result[T]{Value: v, OK: ok}
	return nil
}

// CloseOp is the effect operation closing C.
// Perform(&CloseOp[T]{C: c}) closes the channel. Close of a closed
// channel panics, as in Go; so does a callback failure raised by the
// close notifications.
type CloseOp[T any] struct {
	kont.Phantom[struct{}]
	C *Channel[T]
}

// DispatchChan handles CloseOp on the channel. Never blocks.
func (op *CloseOp[T]) DispatchChan() (kont.Resumed, error) {
	if err := op.C.Close(); err != nil {
		panic(err)
	}
	return struct{}{}, nil
}

// Reify converts a Cont-world channel protocol to Expr-world.
// The resulting Expr can be evaluated with RunExpr or stepped with Step
// and Advance.
func Reify[A any](m kont.Eff[A]) kont.Expr[A] {
	return kont.Reify(m)
}

// Reflect converts an Expr-world channel protocol to Cont-world.
// The resulting Eff can be evaluated with Exec or Run.
func Reflect[A any](m kont.Expr[A]) kont.Eff[A] {
	return kont.Reflect(m)
}
