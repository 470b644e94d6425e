package search

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastOpts() Options {
	return Options{Debounce: 2 * time.Millisecond, BlurGrace: 5 * time.Millisecond}
}

func matchAll[T any](T, string) bool { return true }

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, time.Millisecond, msg)
}

func TestQueryIsRecordedImmediately(t *testing.T) {
	fetch := func(ctx context.Context) ([]string, error) { return []string{"a"}, nil }
	r := NewResolver(fetch, matchAll[string], fastOpts())

	r.SetQuery(context.Background(), "pu")
	st := r.State()
	assert.Equal(t, "pu", st.Query)
	assert.True(t, st.Open)

	eventually(t, func() bool { return len(r.State().Results) == 1 }, "debounced fetch should land")
	assert.False(t, r.State().Loading)
}

func TestEmptyQueryClearsWithoutFetching(t *testing.T) {
	var calls int32
	fetch := func(ctx context.Context) ([]string, error) {
		atomic.AddInt32(&calls, 1)
		return []string{"a"}, nil
	}
	r := NewResolver(fetch, matchAll[string], fastOpts())

	r.SetQuery(context.Background(), "x")
	eventually(t, func() bool { return len(r.State().Results) == 1 }, "first fetch")

	r.SetQuery(context.Background(), "")
	st := r.State()
	assert.False(t, st.Open)
	assert.Empty(t, st.Results)

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClientSideFiltering(t *testing.T) {
	products := []string{"Water Pump", "Pressure Valve", "Pump Motor"}
	fetch := func(ctx context.Context) ([]string, error) { return products, nil }
	r := NewResolver(fetch, func(item, q string) bool { return FoldContains(item, q) }, fastOpts())

	r.SetQuery(context.Background(), "pump")
	eventually(t, func() bool { return len(r.State().Results) == 2 }, "filtered results")
	assert.Equal(t, []string{"Water Pump", "Pump Motor"}, r.State().Results)
}

func TestStaleFetchResultIsDropped(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	fetch := func(ctx context.Context) ([]string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			<-release
			return []string{"first"}, nil
		}
		return []string{"second"}, nil
	}
	r := NewResolver(fetch, matchAll[string], fastOpts())
	ctx := context.Background()

	r.SetQuery(ctx, "a")
	eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, "first fetch in flight")

	// A newer query supersedes the still-blocked first fetch.
	r.SetQuery(ctx, "ab")
	eventually(t, func() bool {
		st := r.State()
		return len(st.Results) == 1 && st.Results[0] == "second"
	}, "second query's results commit")

	// Release the stale fetch; its result must not overwrite the state.
	close(release)
	time.Sleep(10 * time.Millisecond)
	st := r.State()
	require.Len(t, st.Results, 1)
	assert.Equal(t, "second", st.Results[0])
	assert.False(t, st.Loading)
}

func TestFetchFailureDegradesToEmptyResults(t *testing.T) {
	fetch := func(ctx context.Context) ([]string, error) { return nil, errors.New("upstream down") }
	r := NewResolver(fetch, matchAll[string], fastOpts())

	r.SetQuery(context.Background(), "x")
	eventually(t, func() bool {
		st := r.State()
		return !st.Loading && st.Query == "x" && len(st.Results) == 0
	}, "failure yields empty results without error")
	assert.True(t, r.State().Open)
}

func TestSelectClosesAndClears(t *testing.T) {
	fetch := func(ctx context.Context) ([]string, error) { return []string{"a", "b"}, nil }
	r := NewResolver(fetch, matchAll[string], fastOpts())

	r.SetQuery(context.Background(), "q")
	eventually(t, func() bool { return len(r.State().Results) == 2 }, "results")

	picked, ok := r.Select(1)
	require.True(t, ok)
	assert.Equal(t, "b", picked)

	st := r.State()
	assert.Empty(t, st.Query)
	assert.Empty(t, st.Results)
	assert.False(t, st.Open)

	_, ok = r.Select(0)
	assert.False(t, ok)
}

func TestBlurClosesAfterGraceUnlessRetyped(t *testing.T) {
	fetch := func(ctx context.Context) ([]string, error) { return []string{"a"}, nil }
	r := NewResolver(fetch, matchAll[string], fastOpts())
	ctx := context.Background()

	r.SetQuery(ctx, "q")
	r.Blur()
	eventually(t, func() bool { return !r.State().Open }, "blur closes after grace")

	// Typing during the grace period keeps the list open.
	r.SetQuery(ctx, "q2")
	r.Blur()
	r.SetQuery(ctx, "q3")
	time.Sleep(15 * time.Millisecond)
	assert.True(t, r.State().Open)
}

func TestSetKeysResolversByLineID(t *testing.T) {
	fetch := func(ctx context.Context) ([]string, error) { return []string{"a"}, nil }
	set := NewSet(func() *Resolver[string] {
		return NewResolver(fetch, matchAll[string], fastOpts())
	})

	a, b := uuid.New(), uuid.New()
	ra := set.For(a)
	rb := set.For(b)
	assert.NotSame(t, ra, rb)
	assert.Same(t, ra, set.For(a))
	assert.Equal(t, 2, set.Len())

	ra.SetQuery(context.Background(), "x")
	set.Drop(a)
	assert.False(t, set.Has(a))
	assert.True(t, set.Has(b))
	assert.Equal(t, 1, set.Len())

	// The surviving row's resolver is untouched by the removal.
	assert.Empty(t, rb.State().Query)
}
