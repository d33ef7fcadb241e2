// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chans

// Sender is the callback protocol for queued senders. A value implementing
// Sender is handed to [Channel.AddSender]; the channel invokes Send exactly
// once, when it can complete or must fail the send.
//
// With ok true the implementation returns the value to deliver; returning a
// non-nil error instead aborts that single send. With ok false delivery
// failed (err is the cause, e.g. [ErrSendClosed]) and the implementation
// must return a non-nil error, conventionally err itself. Returning the
// identical err value (identity comparison, not equality) is swallowed by
// the channel, so implementations propagate failure without inventing
// wrapper errors.
//
// Sender values must be comparable (in practice: pointers); queue removal
// matches by identity.
type Sender[T any] interface {
	Send(err error, ok bool) (T, error)
}

// Receiver is the callback protocol for queued receivers. The channel
// invokes Recv exactly once: ok true delivers v; ok false means the channel
// is closed and drained, v being the channel's default value. A non-nil
// return propagates out of the delivering operation.
//
// Receiver values must be comparable (in practice: pointers); queue removal
// matches by identity.
type Receiver[T any] interface {
	Recv(v T, ok bool) error
}

// Result pairs a received value with its delivery flag: OK true is a
// delivered element, OK false the closed-and-drained marker carrying the
// channel default.
type Result[T any] struct {
	Value T
	OK    bool
}
