package parallel

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/go-mdc"
)

func TestParallel(t *testing.T) {
	t.Parallel()

	t.Run("collects all results in order", func(t *testing.T) {
		t.Parallel()

		results, err := Parallel(context.Background(),
			func(ctx context.Context) (int, error) { return 1, nil },
			func(ctx context.Context) (int, error) { return 2, nil },
			func(ctx context.Context) (int, error) { return 3, nil },
		)

		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, results)
	})

	t.Run("returns first error", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")

		_, err := Parallel(context.Background(),
			func(ctx context.Context) (int, error) { return 1, nil },
			func(ctx context.Context) (int, error) { return 0, boom },
		)

		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("works without a diagnostic context", func(t *testing.T) {
		t.Parallel()

		results, err := Parallel(context.Background(),
			func(ctx context.Context) (bool, error) {
				_, ok := mdc.Get(ctx, "anything")
				return ok, nil
			},
		)

		require.NoError(t, err)
		assert.False(t, results[0])
	})
}

func TestParallel_ForwardsDiagnosticContext(t *testing.T) {
	t.Parallel()

	ctx := mdc.NewContext(context.Background())
	mdc.Insert(ctx, "request_id", "req-7")

	results, err := Parallel(ctx,
		func(ctx context.Context) (string, error) {
			// Caller entries are visible in the branch.
			v, _ := mdc.Get(ctx, "request_id")

			// Branch entries stay in the branch.
			mdc.Insert(ctx, "branch", "a")

			return v, nil
		},
		func(ctx context.Context) (string, error) {
			v, _ := mdc.Get(ctx, "request_id")
			mdc.Insert(ctx, "branch", "b")

			return v, nil
		},
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"req-7", "req-7"}, results)

	// Branch writes did not leak back to the caller.
	_, ok := mdc.Get(ctx, "branch")
	assert.False(t, ok)
}

func TestParallel2(t *testing.T) {
	t.Parallel()

	ctx := mdc.NewContext(context.Background())
	mdc.Insert(ctx, "tenant", "acme")

	a, b, err := Parallel2(ctx,
		func(ctx context.Context) (string, error) {
			v, _ := mdc.Get(ctx, "tenant")
			return v, nil
		},
		func(ctx context.Context) (int, error) { return 42, nil },
	)

	require.NoError(t, err)
	assert.Equal(t, "acme", a)
	assert.Equal(t, 42, b)
}

func TestParallel2_Error(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	a, b, err := Parallel2(context.Background(),
		func(ctx context.Context) (string, error) { return "x", nil },
		func(ctx context.Context) (int, error) { return 0, boom },
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, a)
	assert.Zero(t, b)
}

func TestParallel3(t *testing.T) {
	t.Parallel()

	a, b, c, err := Parallel3(context.Background(),
		func(ctx context.Context) (string, error) { return "x", nil },
		func(ctx context.Context) (int, error) { return 2, nil },
		func(ctx context.Context) (bool, error) { return true, nil },
	)

	require.NoError(t, err)
	assert.Equal(t, "x", a)
	assert.Equal(t, 2, b)
	assert.True(t, c)
}

func TestParallelLimit(t *testing.T) {
	t.Parallel()

	const limit = 2

	var active, maxActive atomic.Int32

	fns := make([]func(context.Context) (int, error), 8)
	for i := range fns {
		fns[i] = func(ctx context.Context) (int, error) {
			n := active.Add(1)
			for {
				cur := maxActive.Load()
				if n <= cur || maxActive.CompareAndSwap(cur, n) {
					break
				}
			}

			defer active.Add(-1)

			return i, nil
		}
	}

	results, err := ParallelLimit(context.Background(), limit, fns...)

	require.NoError(t, err)
	assert.Len(t, results, 8)
	assert.LessOrEqual(t, maxActive.Load(), int32(limit))
}

func TestParallelPartial(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	results := ParallelPartial(context.Background(),
		func(ctx context.Context) (int, error) { return 1, nil },
		func(ctx context.Context) (int, error) { return 0, boom },
		func(ctx context.Context) (int, error) { return 3, nil },
	)

	require.Len(t, results, 3)
	assert.Equal(t, 1, results[0].Value)
	require.Error(t, results[1].Err)
	assert.ErrorIs(t, results[1].Err, boom)
	assert.Equal(t, 3, results[2].Value)
}

func TestParallelPartialLimit(t *testing.T) {
	t.Parallel()

	ctx := mdc.NewContext(context.Background())
	mdc.Insert(ctx, "job", "batch-1")

	results := ParallelPartialLimit(ctx, 2,
		func(ctx context.Context) (string, error) {
			v, _ := mdc.Get(ctx, "job")
			return v, nil
		},
		func(ctx context.Context) (string, error) {
			v, _ := mdc.Get(ctx, "job")
			return v, nil
		},
		func(ctx context.Context) (string, error) {
			v, _ := mdc.Get(ctx, "job")
			return v, nil
		},
	)

	require.Len(t, results, 3)
	for _, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, "batch-1", r.Value)
	}
}

func TestFanOut(t *testing.T) {
	t.Parallel()

	t.Run("processes all items", func(t *testing.T) {
		t.Parallel()

		items := []int{1, 2, 3, 4, 5}

		var mu sync.Mutex
		seen := make(map[int]bool)

		err := FanOut(context.Background(), 3, items, func(ctx context.Context, item int) error {
			mu.Lock()
			defer mu.Unlock()
			seen[item] = true

			return nil
		})

		require.NoError(t, err)
		assert.Len(t, seen, len(items))
	})

	t.Run("workers see caller entries", func(t *testing.T) {
		t.Parallel()

		ctx := mdc.NewContext(context.Background())
		mdc.Insert(ctx, "queue", "emails")

		err := FanOut(ctx, 2, []string{"a", "b", "c"}, func(ctx context.Context, item string) error {
			v, ok := mdc.Get(ctx, "queue")
			if !ok || v != "emails" {
				return errors.New("missing queue entry")
			}

			return nil
		})

		require.NoError(t, err)
	})

	t.Run("stops on worker error", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")

		err := FanOut(context.Background(), 2, []int{1, 2, 3}, func(ctx context.Context, item int) error {
			if item == 2 {
				return boom
			}

			return nil
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
	})
}
