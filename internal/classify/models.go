package classify

import "fmt"

// PrimaryModels returns the ten hand-weighted classifiers the ensemble
// always runs.
func PrimaryModels() []Model {
	return []Model{
		{Name: "exp_trend", Kind: KindExpTrend, Params: Params{Lookback: 20, Decay: 0.85}, Weight: 18},
		{Name: "frequency", Kind: KindFrequency, Params: Params{Lookback: 30}, Weight: 15},
		{Name: "streak", Kind: KindStreak, Weight: 22},
		{Name: "alternating", Kind: KindAlternating, Params: Params{Lookback: 10}, Weight: 16},
		{Name: "mirror", Kind: KindMirror, Params: Params{Lookback: 5}, Weight: 12},
		{Name: "odd_even", Kind: KindOddEven, Weight: 10},
		{Name: "gap", Kind: KindGap, Params: Params{Lookback: 12}, Weight: 11},
		{Name: "sum_modulo", Kind: KindSumModulo, Params: Params{Lookback: 8}, Weight: 8},
		{Name: "prime", Kind: KindPrime, Weight: 6},
		{Name: "fibonacci", Kind: KindFibonacci, Weight: 7},
	}
}

// ExpansionPool returns the 93 parameterized micro-models, each voting
// with weight 1. The enumeration is fixed at startup; pool size never
// depends on the data.
func ExpansionPool() []Model {
	var pool []Model

	for i := 0; i < 13; i++ {
		decay := 0.70 + 0.02*float64(i)
		pool = append(pool, Model{
			Name:   fmt.Sprintf("exp_trend_d%.2f", decay),
			Kind:   KindExpTrend,
			Params: Params{Lookback: 20, Decay: decay},
			Weight: 1,
		})
	}

	for lb := 15; lb <= 50; lb += 3 {
		pool = append(pool, Model{
			Name:   fmt.Sprintf("frequency_lb%d", lb),
			Kind:   KindFrequency,
			Params: Params{Lookback: lb},
			Weight: 1,
		})
	}

	for lb := 5; lb <= 20; lb += 2 {
		pool = append(pool, Model{
			Name:   fmt.Sprintf("alternating_lb%d", lb),
			Kind:   KindAlternating,
			Params: Params{Lookback: lb},
			Weight: 1,
		})
	}

	for lb := 3; lb <= 12; lb++ {
		pool = append(pool, Model{
			Name:   fmt.Sprintf("mirror_lb%d", lb),
			Kind:   KindMirror,
			Params: Params{Lookback: lb},
			Weight: 1,
		})
	}

	for lb := 8; lb <= 22; lb += 2 {
		pool = append(pool, Model{
			Name:   fmt.Sprintf("gap_lb%d", lb),
			Kind:   KindGap,
			Params: Params{Lookback: lb},
			Weight: 1,
		})
	}

	for i := 0; i <= 11; i++ {
		pool = append(pool, Model{
			Name:   fmt.Sprintf("weighted_sum_%d", i),
			Kind:   KindWeightedSum,
			Params: Params{Lookback: 5 + i, Exponent: 1.2 + 0.1*float64(i)},
			Weight: 1,
		})
	}

	for i := 0; i <= 9; i++ {
		pool = append(pool, Model{
			Name:   fmt.Sprintf("position_%d", i),
			Kind:   KindPosition,
			Params: Params{Offset: i},
			Weight: 1,
		})
	}

	for w := 2; w <= 9; w++ {
		pool = append(pool, Model{
			Name:   fmt.Sprintf("xor_w%d", w),
			Kind:   KindXOR,
			Params: Params{Lookback: w},
			Weight: 1,
		})
	}

	for w := 3; w <= 14; w++ {
		pool = append(pool, Model{
			Name:   fmt.Sprintf("rolling_avg_w%d", w),
			Kind:   KindRollingAvg,
			Params: Params{Lookback: w},
			Weight: 1,
		})
	}

	return pool
}
