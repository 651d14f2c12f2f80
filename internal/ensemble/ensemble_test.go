package ensemble

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bigsmall-bot/internal/classify"
	"bigsmall-bot/internal/feed"
)

func historyFromDigits(digits ...int) []feed.DrawRecord {
	draws := make([]feed.DrawRecord, len(digits))
	for i, digit := range digits {
		n := 1000 + digit
		draws[i] = feed.DrawRecord{
			Period: fmt.Sprintf("%06d", i+1),
			Number: n,
			Label:  feed.LabelOf(n),
		}
	}
	return draws
}

// mixedHistory returns n draws with a varied digit pattern.
func mixedHistory(n int) []feed.DrawRecord {
	digits := make([]int, n)
	for i := range digits {
		digits[i] = (i*7 + 3) % 10
	}
	return historyFromDigits(digits...)
}

type mockMetrics struct {
	mu              sync.Mutex
	classifierFails int
}

func (m *mockMetrics) ClassifierErrorsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.classifierFails++
}

func (m *mockMetrics) failures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.classifierFails
}

func TestAggregateInsufficientHistory(t *testing.T) {
	agg := NewWithJitter(func() int { return 0 })

	_, err := agg.Aggregate(mixedHistory(MinHistory - 1))
	require.Error(t, err)

	var insufficientErr *InsufficientHistoryError
	require.True(t, errors.As(err, &insufficientErr))
	assert.Equal(t, MinHistory-1, insufficientErr.Have)
	assert.Equal(t, MinHistory, insufficientErr.Need)

	_, err = agg.Aggregate(nil)
	require.Error(t, err)
}

func TestAggregateVoteInvariant(t *testing.T) {
	agg := NewWithJitter(func() int { return 0 })

	res, err := agg.Aggregate(mixedHistory(40))
	require.NoError(t, err)

	assert.Equal(t, res.TotalModels, res.VotesBig+res.VotesSmall)
	// 125 primary weight plus 93 pool votes, nothing skipped at depth 40
	assert.Equal(t, 218, res.TotalModels)
}

func TestAggregateConfidenceBounds(t *testing.T) {
	agg := New()

	for n := MinHistory; n <= 60; n += 5 {
		res, err := agg.Aggregate(mixedHistory(n))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Confidence, 90, "history %d", n)
		assert.LessOrEqual(t, res.Confidence, 99, "history %d", n)
	}
}

func TestAggregateJitterReclamped(t *testing.T) {
	draws := mixedHistory(45)

	high := NewWithJitter(func() int { return 100 })
	res, err := high.Aggregate(draws)
	require.NoError(t, err)
	assert.Equal(t, 99, res.Confidence)

	low := NewWithJitter(func() int { return -100 })
	res, err = low.Aggregate(draws)
	require.NoError(t, err)
	assert.Equal(t, 90, res.Confidence)
}

func TestAggregateDeterministicWithFixedJitter(t *testing.T) {
	draws := mixedHistory(50)

	first, err := NewWithJitter(func() int { return 0 }).Aggregate(draws)
	require.NoError(t, err)
	second, err := NewWithJitter(func() int { return 0 }).Aggregate(draws)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAggregateTieGoesToBig(t *testing.T) {
	// prime says BIG on a trailing 7, fibonacci reverses it to SMALL;
	// equal weights force a tie
	agg := &Aggregator{
		models: []classify.Model{
			{Name: "prime", Kind: classify.KindPrime, Weight: 1},
			{Name: "fibonacci", Kind: classify.KindFibonacci, Weight: 1},
		},
		jitter: func() int { return 0 },
		logger: zerolog.Nop(),
	}

	digits := make([]int, MinHistory)
	digits[len(digits)-1] = 7
	res, err := agg.Aggregate(historyFromDigits(digits...))
	require.NoError(t, err)

	assert.Equal(t, 1, res.VotesBig)
	assert.Equal(t, 1, res.VotesSmall)
	assert.Equal(t, feed.Big, res.Prediction)
	// raw 50% clamps up to the confidence floor
	assert.Equal(t, 90, res.Confidence)
}

func TestAggregateSkipsFailingVoter(t *testing.T) {
	metrics := &mockMetrics{}
	agg := &Aggregator{
		models: []classify.Model{
			{Name: "position_50", Kind: classify.KindPosition, Params: classify.Params{Offset: 50}, Weight: 1},
			{Name: "prime", Kind: classify.KindPrime, Weight: 2},
		},
		jitter:  func() int { return 0 },
		metrics: metrics,
		logger:  zerolog.Nop(),
	}

	digits := make([]int, MinHistory)
	digits[len(digits)-1] = 7
	res, err := agg.Aggregate(historyFromDigits(digits...))
	require.NoError(t, err)

	assert.Equal(t, 1, metrics.failures())
	assert.Equal(t, 2, res.TotalModels)
	assert.Equal(t, feed.Big, res.Prediction)
	// a unanimous vote caps at the confidence ceiling
	assert.Equal(t, 99, res.Confidence)
}

func TestAggregateContainsPanickingVoter(t *testing.T) {
	metrics := &mockMetrics{}
	agg := &Aggregator{
		models: []classify.Model{
			// a negative offset indexes past the end of the history
			{Name: "position_neg", Kind: classify.KindPosition, Params: classify.Params{Offset: -2}, Weight: 1},
			{Name: "prime", Kind: classify.KindPrime, Weight: 3},
		},
		jitter:  func() int { return 0 },
		metrics: metrics,
		logger:  zerolog.Nop(),
	}

	digits := make([]int, MinHistory)
	digits[len(digits)-1] = 7
	res, err := agg.Aggregate(historyFromDigits(digits...))
	require.NoError(t, err)

	assert.Equal(t, 1, metrics.failures())
	assert.Equal(t, 3, res.TotalModels)
	assert.Equal(t, res.TotalModels, res.VotesBig+res.VotesSmall)
	assert.Equal(t, feed.Big, res.Prediction)
}

func TestAggregateAllVotersFailing(t *testing.T) {
	agg := &Aggregator{
		models: []classify.Model{
			{Name: "position_50", Kind: classify.KindPosition, Params: classify.Params{Offset: 50}, Weight: 1},
		},
		jitter: func() int { return 0 },
		logger: zerolog.Nop(),
	}

	_, err := agg.Aggregate(mixedHistory(MinHistory))
	require.Error(t, err)
}

func TestAggregateNegativeJitterBelowCeiling(t *testing.T) {
	agg := &Aggregator{
		models: []classify.Model{
			{Name: "prime", Kind: classify.KindPrime, Weight: 1},
		},
		jitter: func() int { return -2 },
		logger: zerolog.Nop(),
	}

	digits := make([]int, MinHistory)
	digits[len(digits)-1] = 7
	res, err := agg.Aggregate(historyFromDigits(digits...))
	require.NoError(t, err)

	// clamp to 99 first, then jitter down inside the band
	assert.Equal(t, 97, res.Confidence)
}

func BenchmarkAggregate(b *testing.B) {
	agg := NewWithJitter(func() int { return 0 })
	draws := mixedHistory(60)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := agg.Aggregate(draws); err != nil {
			b.Fatal(err)
		}
	}
}
