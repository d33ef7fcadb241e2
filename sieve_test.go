// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chans_test

import (
	"testing"

	"code.hybscloud.com/chans"
)

// TestPrimeSieve builds the classic concurrent prime sieve out of
// cooperative tasks on one loop: a generator pumps 2, 3, 4, … into an
// unbuffered channel and each discovered prime inserts a filter stage.
func TestPrimeSieve(t *testing.T) {
	const n = 25
	l := chans.NewLoop()

	pump := func(ch *chans.Channel[int]) {
		var step func(int)
		step = func(i int) {
			ch.Send(i, nil).OnSettled(func(_ struct{}, err error) {
				if err == nil {
					step(i + 1)
				}
			})
		}
		step(2)
	}

	filter := func(src, dst *chans.Channel[int], prime int) {
		var step func()
		step = func() {
			src.Recv(nil).OnSettled(func(r chans.Result[int], err error) {
				if err != nil || !r.OK {
					return
				}
				if r.Value%prime != 0 {
					dst.Send(r.Value, nil).OnSettled(func(struct{}, error) { step() })
					return
				}
				step()
			})
		}
		step()
	}

	newCh := func() *chans.Channel[int] {
		ch := chans.NewChannel[int](l, 0)
		ch.Unsafe = true
		return ch
	}

	done := chans.NewFuture[[]int](l)
	src := newCh()
	pump(src)
	var primes []int
	var head func(src *chans.Channel[int])
	head = func(src *chans.Channel[int]) {
		src.Recv(nil).OnSettled(func(r chans.Result[int], err error) {
			if err != nil || !r.OK {
				t.Errorf("sieve stream broke: %+v, %v", r, err)
				return
			}
			primes = append(primes, r.Value)
			if len(primes) == n {
				done.Resolve(primes)
				return
			}
			next := newCh()
			filter(src, next, r.Value)
			head(next)
		})
	}
	head(src)

	got, err := chans.Await(l, done)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}
	if len(got) != n {
		t.Fatalf("collected %d primes, want %d", len(got), n)
	}
	for i, p := range want {
		if got[i] != p {
			t.Fatalf("primes = %v, want prefix %v", got, want)
		}
	}
	if got[n-1] != 97 {
		t.Fatalf("25th prime = %d, want 97", got[n-1])
	}
}
