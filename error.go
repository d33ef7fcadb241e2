// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chans

import "errors"

// Channel failure kinds. Both are identity-comparable sentinel values:
// the sender callback protocol swallows an error re-thrown with the exact
// identity it was invoked with (see [Sender]), so == on these values is
// part of the contract, not an implementation detail.
var (
	// ErrSendClosed reports a send on a closed channel: a sender added
	// after close, or a queued sender flushed by close.
	ErrSendClosed = errors.New("chans: send on closed channel")

	// ErrCloseClosed reports a close of an already closed channel.
	ErrCloseClosed = errors.New("chans: close of closed channel")
)

// Select protocol-misuse kinds. These indicate a contract violation by the
// caller (reentrant use, consuming an unready case), not a runtime state
// that can be waited out.
var (
	// ErrCasesInUse reports reentrant use of a Select while a wait is in
	// progress.
	ErrCasesInUse = errors.New("chans: select cases in use")

	// ErrCaseNotReady reports consuming a case that holds no unconsumed
	// result.
	ErrCaseNotReady = errors.New("chans: select case not ready")

	// errStaleCallback reports a callback invoked after its stop token was
	// consumed and the callback withdrawn. Internal consistency check; it
	// surfaces only when a channel delivers to a withdrawn select callback
	// that the stop sweep could not reach.
	errStaleCallback = errors.New("chans: callback fired after withdraw")
)
