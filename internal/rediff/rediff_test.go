package rediff

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mergeview/internal/compare"
	"mergeview/internal/document"
	"mergeview/internal/fragment"
)

func snap(text string, stamp int64) *document.Snapshot {
	s := document.New("", text).Snapshot()
	s.Stamp = stamp
	return &s
}

type countingOracle struct {
	calls atomic.Int32
	fn    compare.OracleFunc
}

func (c *countingOracle) Compare(ctx context.Context, t1, t2 string, p compare.Policy) ([]fragment.LineFragment, error) {
	c.calls.Add(1)
	return c.fn(ctx, t1, t2, p)
}

func counting(fn compare.OracleFunc) *countingOracle {
	return &countingOracle{fn: fn}
}

func TestAbsentSideOneIsPureInsertion(t *testing.T) {
	o := counting(compare.NewLineOracle().Compare)
	res := Recompute(context.Background(), o, Input{Side2: snap("a\nb", 7), Policy: compare.DefaultPolicy()})

	require.Equal(t, OutcomeOK, res.Outcome)
	require.False(t, res.Equal)
	require.Equal(t, []fragment.LineFragment{{EndLine2: 2, EndOffset2: 3}}, res.Fragments)
	require.Equal(t, fragment.Inserted, res.Fragments[0].Type())
	require.Equal(t, int64(0), res.Stamp1)
	require.Equal(t, int64(7), res.Stamp2)
	require.Zero(t, o.calls.Load())
}

func TestAbsentSideTwoIsPureDeletion(t *testing.T) {
	o := counting(compare.NewLineOracle().Compare)
	res := Recompute(context.Background(), o, Input{Side1: snap("a\nb\n", 1), Policy: compare.DefaultPolicy()})

	require.Equal(t, []fragment.LineFragment{{EndLine1: 2, EndOffset1: 4}}, res.Fragments)
	require.Equal(t, fragment.Deleted, res.Fragments[0].Type())
	require.False(t, res.Equal)
	require.Zero(t, o.calls.Load())
}

func TestEqualNeedsIdenticalBytes(t *testing.T) {
	oracle := compare.NewLineOracle()

	res := Recompute(context.Background(), oracle, Input{Side1: snap("a\nb\n", 0), Side2: snap("a\nb\n", 0), Policy: compare.DefaultPolicy()})
	require.Equal(t, OutcomeOK, res.Outcome)
	require.Empty(t, res.Fragments)
	require.True(t, res.Equal)

	trim := compare.Policy{Ignore: compare.IgnoreTrimWhitespace, Highlight: compare.HighlightByLine}
	res = Recompute(context.Background(), oracle, Input{Side1: snap("a \nb\n", 0), Side2: snap("a\nb\n", 0), Policy: trim})
	require.Equal(t, OutcomeOK, res.Outcome)
	require.Empty(t, res.Fragments)
	require.False(t, res.Equal)
}

func TestHighlightNoneSkipsOracle(t *testing.T) {
	o := counting(compare.NewLineOracle().Compare)
	p := compare.Policy{Highlight: compare.HighlightNone}
	res := Recompute(context.Background(), o, Input{Side1: snap("a", 0), Side2: snap("b", 0), Policy: p})
	require.Equal(t, OutcomeOK, res.Outcome)
	require.Empty(t, res.Fragments)
	require.False(t, res.Equal)
	require.Zero(t, o.calls.Load())
}

func TestOutcomes(t *testing.T) {
	in := Input{Side1: snap("a\n", 3), Side2: snap("b\n", 4), Policy: compare.DefaultPolicy()}
	tests := []struct {
		name   string
		oracle compare.OracleFunc
		want   Outcome
	}{
		{
			name: "too large",
			oracle: func(context.Context, string, string, compare.Policy) ([]fragment.LineFragment, error) {
				return nil, compare.ErrTooLarge
			},
			want: OutcomeTooLarge,
		},
		{
			name: "failed",
			oracle: func(context.Context, string, string, compare.Policy) ([]fragment.LineFragment, error) {
				return nil, errors.New("boom")
			},
			want: OutcomeFailed,
		},
		{
			name: "panic",
			oracle: func(context.Context, string, string, compare.Policy) ([]fragment.LineFragment, error) {
				panic("oracle bug")
			},
			want: OutcomeFailed,
		},
		{
			name: "invalid fragments",
			oracle: func(context.Context, string, string, compare.Policy) ([]fragment.LineFragment, error) {
				return []fragment.LineFragment{{StartLine1: 2, EndLine1: 1}}, nil
			},
			want: OutcomeFailed,
		},
		{
			name: "cancelled",
			oracle: func(context.Context, string, string, compare.Policy) ([]fragment.LineFragment, error) {
				return nil, context.Canceled
			},
			want: OutcomeCancelled,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Recompute(context.Background(), tt.oracle, in)
			require.Equal(t, tt.want, res.Outcome)
			require.Empty(t, res.Fragments)
			require.False(t, res.Equal)
			require.Error(t, res.Err)
			require.Equal(t, int64(3), res.Stamp1)
			require.Equal(t, int64(4), res.Stamp2)
		})
	}
}

func blockingOracle(started chan<- struct{}) compare.OracleFunc {
	return func(ctx context.Context, t1, t2 string, p compare.Policy) ([]fragment.LineFragment, error) {
		if t1 == "block\n" {
			started <- struct{}{}
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return compare.NewLineOracle().Compare(ctx, t1, t2, p)
	}
}

func receive(t *testing.T, ch <-chan Result) Result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for result")
		return Result{}
	}
}

func TestStartCancelsPrevious(t *testing.T) {
	started := make(chan struct{}, 1)
	o := NewOrchestrator(blockingOracle(started), nil)
	defer o.Stop()

	g1 := o.Start(context.Background(), Input{Side1: snap("block\n", 1), Side2: snap("x\n", 1), Policy: compare.DefaultPolicy()})
	<-started
	g2 := o.Start(context.Background(), Input{Side1: snap("a\n", 2), Side2: snap("b\n", 2), Policy: compare.DefaultPolicy()})
	require.Greater(t, g2, g1)
	require.Equal(t, g2, o.Latest())

	byGen := map[uint64]Result{}
	for range 2 {
		r := receive(t, o.Results())
		byGen[r.Generation] = r
	}
	require.Equal(t, OutcomeCancelled, byGen[g1].Outcome)
	require.Equal(t, OutcomeOK, byGen[g2].Outcome)
	require.Len(t, byGen[g2].Fragments, 1)
}

func TestCancel(t *testing.T) {
	started := make(chan struct{}, 1)
	o := NewOrchestrator(blockingOracle(started), nil)
	defer o.Stop()

	g := o.Start(context.Background(), Input{Side1: snap("block\n", 1), Side2: snap("x\n", 1), Policy: compare.DefaultPolicy()})
	<-started
	o.Cancel()
	r := receive(t, o.Results())
	require.Equal(t, g, r.Generation)
	require.Equal(t, OutcomeCancelled, r.Outcome)
}

func TestStopReleasesWorkers(t *testing.T) {
	started := make(chan struct{}, 1)
	o := NewOrchestrator(blockingOracle(started), nil)
	o.Start(context.Background(), Input{Side1: snap("block\n", 1), Side2: snap("x\n", 1), Policy: compare.DefaultPolicy()})
	<-started
	o.Stop()
	require.Zero(t, o.Start(context.Background(), Input{}))
}
