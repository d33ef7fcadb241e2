// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chans_test

import (
	"testing"
	"testing/quick"

	"code.hybscloud.com/chans"
)

func TestRingFIFOWraparound(t *testing.T) {
	r := chans.NewRing[int](3)
	for _, v := range []int{1, 2, 3} {
		if !r.Push(v) {
			t.Fatalf("push %d failed", v)
		}
	}
	if r.Push(4) {
		t.Fatal("push into full ring succeeded")
	}
	if !r.Full() || r.Len() != 3 {
		t.Fatalf("len = %d, full = %v", r.Len(), r.Full())
	}
	if v, ok := r.Shift(); !ok || v != 1 {
		t.Fatalf("shift = %d, %v, want 1", v, ok)
	}
	if !r.Push(4) {
		t.Fatal("push after shift failed")
	}
	for i, want := range []int{2, 3, 4} {
		if v, ok := r.Peek(); !ok || v != want {
			t.Fatalf("peek %d = %d, %v, want %d", i, v, ok, want)
		}
		if v, ok := r.Shift(); !ok || v != want {
			t.Fatalf("shift %d = %d, %v, want %d", i, v, ok, want)
		}
	}
	if !r.Empty() {
		t.Fatal("ring not empty after drain")
	}
	if _, ok := r.Shift(); ok {
		t.Fatal("shift from empty ring succeeded")
	}
	if _, ok := r.Peek(); ok {
		t.Fatal("peek into empty ring succeeded")
	}
}

func TestRingResetClear(t *testing.T) {
	r := chans.NewRing[*int](2)
	v := new(int)
	r.Push(v)
	r.Reset()
	if !r.Empty() || r.Len() != 0 {
		t.Fatal("reset did not empty the ring")
	}
	r.Push(v)
	r.Clear()
	if !r.Empty() {
		t.Fatal("clear did not empty the ring")
	}
	r.Push(nil)
	if p, ok := r.Shift(); !ok || p != nil {
		t.Fatal("ring reuse after clear broken")
	}
}

func TestRingNonPositiveCapacityPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewRing(0) did not panic")
		}
	}()
	chans.NewRing[int](0)
}

// TestPropertyRingFIFO proves that for any payload fitting the ring,
// push-all then shift-all returns exactly the payload in order.
func TestPropertyRingFIFO(t *testing.T) {
	property := func(payload []int) bool {
		if len(payload) == 0 {
			return true
		}
		r := chans.NewRing[int](len(payload))
		for _, v := range payload {
			if !r.Push(v) {
				return false
			}
		}
		for _, want := range payload {
			v, ok := r.Shift()
			if !ok || v != want {
				return false
			}
		}
		return r.Empty()
	}
	if err := quick.Check(property, nil); err != nil {
		t.Error(err)
	}
}
