// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chans

import (
	"code.hybscloud.com/kont"
)

// SendThen sends v to c and then continues with next.
// Fuses Perform(&SendOp[T]{...}) + Then.
func SendThen[T, B any](c *Channel[T], v T, next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(&SendOp[T]{C: c, Value: v}), next)
}

// RecvBind receives from c and passes the element (or the closed marker,
// ok false) to f.
// Fuses Perform(&RecvOp[T]{...}) + Bind.
func RecvBind[T, B any](c *Channel[T], f func(v T, ok bool) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(&RecvOp[T]{C: c}), func(r Result[T]) kont.Eff[B] {
		return f(r.Value, r.OK)
	})
}

// CloseDone closes c and returns a.
// Fuses Perform(&CloseOp[T]{...}) + Then + Pure.
func CloseDone[T, A any](c *Channel[T], a A) kont.Eff[A] {
	return kont.Then(kont.Perform(&CloseOp[T]{C: c}), kont.Pure(a))
}

// Iterate runs a recursive channel protocol.
// step returns Left(nextState) to continue or Right(result) to finish.
func Iterate[S, A any](initial S, step func(S) kont.Eff[kont.Either[S, A]]) kont.Eff[A] {
	return kont.Bind(step(initial), func(e kont.Either[S, A]) kont.Eff[A] {
		if left, ok := e.GetLeft(); ok {
			return Iterate(left, step)
		}
		right, _ := e.GetRight()
		return kont.Pure(right)
	})
}
