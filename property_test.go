// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chans_test

import (
	"reflect"
	"testing"
	"testing/quick"

	"code.hybscloud.com/chans"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// TestPropertyChannelFIFO proves that for any arbitrarily generated
// sequence of integers, an unbuffered channel delivers strict FIFO without
// loss, duplication, or reordering: a sender protocol pushes the payload
// and closes, a receiver protocol drains until the closed marker.
func TestPropertyChannelFIFO(t *testing.T) {
	propertyFIFO := func(payload []int) bool {
		l := chans.NewLoop()
		ch := chans.NewChannel[int](l, 0)

		sender := chans.Iterate(payload, func(s []int) kont.Eff[kont.Either[[]int, struct{}]] {
			if len(s) == 0 {
				return chans.CloseDone(ch, kont.Right[[]int, struct{}](struct{}{}))
			}
			return chans.SendThen(ch, s[0], kont.Pure(kont.Left[[]int, struct{}](s[1:])))
		})

		receiver := chans.Iterate(make([]int, 0, len(payload)), func(acc []int) kont.Eff[kont.Either[[]int, []int]] {
			return chans.RecvBind(ch, func(n int, ok bool) kont.Eff[kont.Either[[]int, []int]] {
				if !ok {
					return kont.Pure(kont.Right[[]int, []int](acc))
				}
				return kont.Pure(kont.Left[[]int, []int](append(acc, n)))
			})
		})

		_, received := chans.Run[struct{}, []int](sender, receiver)

		if len(payload) == 0 && len(received) == 0 {
			return true
		}
		return reflect.DeepEqual(payload, received)
	}
	if err := quick.Check(propertyFIFO, nil); err != nil {
		t.Error(err)
	}
}

// TestPropertyBufferedModel checks TrySend/TryRecv on a buffered channel
// against a plain slice model for any arbitrary operation sequence:
// buffer bound, FIFO order, and would-block boundaries all match.
func TestPropertyBufferedModel(t *testing.T) {
	const capacity = 4
	property := func(ops []bool) bool {
		l := chans.NewLoop()
		ch := chans.NewChannel[int](l, capacity)
		var model []int
		next := 0
		for _, isSend := range ops {
			if isSend {
				err := ch.TrySend(next)
				if len(model) < capacity {
					if err != nil {
						return false
					}
					model = append(model, next)
				} else if err != iox.ErrWouldBlock {
					return false
				}
				next++
			} else {
				v, ok, err := ch.TryRecv()
				if len(model) > 0 {
					if !ok || err != nil || v != model[0] {
						return false
					}
					model = model[1:]
				} else if ok || err != iox.ErrWouldBlock {
					return false
				}
			}
			if ch.Len() != len(model) || ch.Len() > capacity {
				return false
			}
		}
		return true
	}
	if err := quick.Check(property, nil); err != nil {
		t.Error(err)
	}
}

// TestPropertyConservation proves that every successfully sent element is
// accounted for: received before close plus drained after close (the
// elements still buffered at close) equals sent, for any payload and
// buffer capacities 0 through 3.
func TestPropertyConservation(t *testing.T) {
	property := func(payload []int8, capRaw uint8) bool {
		l := chans.NewLoop()
		capacity := int(capRaw % 4)
		ch := chans.NewChannel[int8](l, capacity)
		ch.Unsafe = true

		sent := 0
		for _, v := range payload {
			if ch.TrySend(v) == nil {
				sent++
			}
		}
		received := 0
		// drain half before close
		for received < sent/2 {
			if _, ok, _ := ch.TryRecv(); !ok {
				break
			}
			received++
		}
		if ch.Close() != nil {
			return false
		}
		drained := 0
		for {
			_, ok, _ := ch.TryRecv()
			if !ok {
				break
			}
			drained++
		}
		return sent == received+drained
	}
	if err := quick.Check(property, nil); err != nil {
		t.Error(err)
	}
}
