package synchronize_test

import (
	"testing"

	"github.com/canitude/libaltcoin-network/synchronize"
	"github.com/stretchr/testify/require"
)

func TestOnFirstSuccessFiresImmediately(t *testing.T) {
	var result int
	calls := 0
	j := synchronize.New(3, synchronize.OnFirstSuccess, 0, func(c int) {
		calls++
		result = c
	})

	j.Report(1)
	j.Report(0)
	j.Report(1)

	require.Equal(t, 1, calls)
	require.Equal(t, 0, result)
}

func TestOnFirstErrorFiresOnFirstNonZero(t *testing.T) {
	calls := 0
	j := synchronize.New(2, synchronize.OnFirstError, 0, func(c int) {
		calls++
	})

	j.Report(0)
	j.Report(7)
	j.Report(0)

	require.Equal(t, 1, calls)
}

func TestOnCountWaitsForAll(t *testing.T) {
	calls := 0
	j := synchronize.New(3, synchronize.OnCount, 0, func(c int) {
		calls++
	})

	j.Report(1)
	require.Equal(t, 0, calls)
	j.Report(1)
	require.Equal(t, 0, calls)
	j.Report(0)
	require.Equal(t, 1, calls)
}
