package scheduler

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJitteredIntervalBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, base := range []int{1, 2, 10, 60} {
		lo := time.Duration(base-1) * time.Minute
		hi := time.Duration(base+1) * time.Minute
		for i := 0; i < 2000; i++ {
			d := JitteredInterval(base, rng.Float64())
			require.GreaterOrEqual(t, d, lo, "base=%d", base)
			require.LessOrEqual(t, d, hi, "base=%d", base)
		}
	}
}

func TestJitteredIntervalDefaultBaseInMilliseconds(t *testing.T) {
	for _, u := range []float64{0, 0.1, 0.25, 0.5, 0.75, 0.9999} {
		ms := JitteredInterval(10, u).Milliseconds()
		require.GreaterOrEqual(t, ms, int64(540000))
		require.LessOrEqual(t, ms, int64(660000))
	}
}

func TestJitteredIntervalEdges(t *testing.T) {
	require.Equal(t, 9*time.Minute, JitteredInterval(10, 0))
	require.Equal(t, 10*time.Minute, JitteredInterval(10, 0.5))
	require.Equal(t, 11*time.Minute, JitteredInterval(10, 0.99))
	// out-of-range inputs are clamped
	require.Equal(t, 9*time.Minute, JitteredInterval(10, -3))
	require.Equal(t, 11*time.Minute, JitteredInterval(10, 7))
}

func TestIntervalNextUsesRand(t *testing.T) {
	i := Interval{BaseMinutes: 5, Rand: func() float64 { return 0 }}
	require.Equal(t, 4*time.Minute, i.Next())

	d := Interval{BaseMinutes: 5}.Next()
	require.GreaterOrEqual(t, d, 4*time.Minute)
	require.LessOrEqual(t, d, 6*time.Minute)
}

func TestJitterVaries(t *testing.T) {
	seen := map[time.Duration]bool{}
	rng := rand.New(rand.NewPCG(7, 7))
	for i := 0; i < 200; i++ {
		seen[JitteredInterval(10, rng.Float64())] = true
	}
	require.Greater(t, len(seen), 1)
}
