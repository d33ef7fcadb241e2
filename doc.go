// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package chans provides Go-style channels and a select construct for a
// single-threaded cooperative runtime: asynchronous tasks share one event
// [Loop] and suspension points are explicit.
//
// # Architecture
//
//   - Execution: a single-goroutine [Loop] with a microtask queue (future
//     settlement) and a macrotask queue (the yield boundary). Cross-goroutine
//     ingress is a bounded single-producer [Inbox] via [code.hybscloud.com/lfq].
//   - Channels: [Channel] is a typed, optionally buffered FIFO rendezvous
//     between any number of senders and receivers, with Go close semantics.
//     Non-blocking variants return [code.hybscloud.com/iox.ErrWouldBlock] at
//     the rendezvous boundary.
//   - Select: [Select] multiplexes a fixed ordered set of cases ([Send],
//     [Recv], or an external [Wait] future) and resolves exactly one ready
//     case per wait, with uniform random fairness across ready cases.
//   - Suspension: blocking operations return a [Future] settled on the loop;
//     cancellation is external via [Signal].
//   - Protocols: a Cont-world API ([SendThen], [RecvBind], [CloseDone]) on
//     [code.hybscloud.com/kont] expresses channel programs as effect
//     protocols, evaluated with [Exec], [Run], or stepped with [Step] and
//     [Advance].
//
// # Yield to macrotask
//
// Channel send/receive and select wait settle no earlier than the next
// macrotask boundary of their loop, unless the loop's generation counter
// already advanced during the call. This breaks microtask cycles that would
// otherwise starve macrotask work when two cooperative tasks communicate in
// a tight loop. The per-channel and per-select Unsafe toggles disable the
// yield for callers that know it is safe.
//
// # Example
//
//	l := chans.NewLoop()
//	ch := chans.NewChannel[int](l, 0)
//	recv := ch.Recv(nil)
//	ch.Send(1, nil)
//	r, _ := chans.Await(l, recv)
//	// r.Value == 1, r.OK == true
package chans
