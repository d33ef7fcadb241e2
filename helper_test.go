// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chans_test

import (
	"testing"

	"code.hybscloud.com/chans"
	"code.hybscloud.com/kont"
)

// await drives l until f settles, failing the test on rejection.
func await[T any](t *testing.T, l *chans.Loop, f *chans.Future[T]) T {
	t.Helper()
	v, err := chans.Await(l, f)
	if err != nil {
		t.Fatalf("await: unexpected rejection: %v", err)
	}
	return v
}

// awaitErr drives l until f settles and returns the rejection, failing the
// test on resolution.
func awaitErr[T any](t *testing.T, l *chans.Loop, f *chans.Future[T]) error {
	t.Helper()
	_, err := chans.Await(l, f)
	if err == nil {
		t.Fatal("awaitErr: future resolved, want rejection")
	}
	return err
}

// execExpr drives a protocol to completion via Step+Advance loop.
// Retries on iox.ErrWouldBlock (peer not ready yet).
// Used by stepping tests to exercise the non-blocking path.
func execExpr[R any](protocol kont.Expr[R]) R {
	result, susp := chans.Step[R](protocol)
	for susp != nil {
		var err error
		result, susp, err = chans.Advance(susp)
		if err != nil {
			continue
		}
	}
	return result
}

// skipRace skips tests that exercise the lfq SPSC inbox transport.
// The race detector tracks per-variable happens-before and cannot
// see SPSC's cross-variable memory ordering (store-release on data,
// load-acquire on index), producing false positives.
func skipRace(tb testing.TB) {
	tb.Helper()
	if raceEnabled {
		tb.Skip("skip: SPSC uses cross-variable memory ordering")
	}
}
