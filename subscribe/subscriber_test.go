package subscribe_test

import (
	"errors"
	"testing"

	"github.com/canitude/libaltcoin-network/subscribe"
	"github.com/stretchr/testify/require"
)

func TestRelayDeliversInOrder(t *testing.T) {
	sub := subscribe.NewSubscriber[int]()
	var seen []int

	sub.Subscribe(func(err error, v int) bool {
		seen = append(seen, v)
		return true
	})

	sub.Relay(1)
	sub.Relay(2)
	sub.Relay(3)

	require.Equal(t, []int{1, 2, 3}, seen)
}

func TestHandlerUnsubscribesOnFalse(t *testing.T) {
	sub := subscribe.NewSubscriber[int]()
	calls := 0

	sub.Subscribe(func(err error, v int) bool {
		calls++
		return false
	})

	sub.Relay(1)
	sub.Relay(2)

	require.Equal(t, 1, calls)
}

func TestStopDeliversErrorOnce(t *testing.T) {
	sub := subscribe.NewSubscriber[int]()
	boom := errors.New("boom")
	var gotErr error
	calls := 0

	sub.Subscribe(func(err error, v int) bool {
		calls++
		gotErr = err
		return true
	})

	sub.Stop(boom)
	sub.Stop(errors.New("second"))

	require.Equal(t, 1, calls)
	require.Equal(t, boom, gotErr)
	require.True(t, sub.Stopped())
}

func TestSubscribeAfterStopFiresImmediately(t *testing.T) {
	sub := subscribe.NewSubscriber[int]()
	boom := errors.New("boom")
	sub.Stop(boom)

	var gotErr error
	sub.Subscribe(func(err error, v int) bool {
		gotErr = err
		return true
	})

	require.Equal(t, boom, gotErr)
}
