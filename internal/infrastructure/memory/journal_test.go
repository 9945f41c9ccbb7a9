package memory

import (
	"context"
	"strconv"
	"testing"

	"github.com/example/visa-watch/internal/domain/attempt"
	"github.com/stretchr/testify/require"
)

func ids(as []attempt.Attempt) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.ID
	}
	return out
}

func TestRingKeepsNewest(t *testing.T) {
	ctx := context.Background()
	j := New(3)

	got, err := j.Recent(ctx, 5)
	require.NoError(t, err)
	require.Empty(t, got)

	for i := 1; i <= 5; i++ {
		require.NoError(t, j.Record(ctx, attempt.Attempt{ID: strconv.Itoa(i)}))
	}

	got, err = j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, []string{"5", "4", "3"}, ids(got))

	got, err = j.Recent(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"5", "4"}, ids(got))
}

func TestPartialRing(t *testing.T) {
	ctx := context.Background()
	j := New(0)
	require.Len(t, j.buf, DefaultCapacity)

	require.NoError(t, j.Record(ctx, attempt.Attempt{ID: "a"}))
	require.NoError(t, j.Record(ctx, attempt.Attempt{ID: "b"}))
	got, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a"}, ids(got))
	require.NoError(t, j.Close())
}
