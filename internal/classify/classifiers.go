// Package classify implements the heuristic draw classifiers and the
// declarative model registry the ensemble votes with.
package classify

import (
	"fmt"
	"math"

	"bigsmall-bot/internal/feed"
)

// Kind identifies one classifier algorithm.
type Kind string

const (
	KindExpTrend    Kind = "exp_trend"
	KindFrequency   Kind = "frequency"
	KindStreak      Kind = "streak"
	KindAlternating Kind = "alternating"
	KindMirror      Kind = "mirror"
	KindOddEven     Kind = "odd_even"
	KindGap         Kind = "gap"
	KindSumModulo   Kind = "sum_modulo"
	KindPrime       Kind = "prime"
	KindFibonacci   Kind = "fibonacci"
	KindWeightedSum Kind = "weighted_sum"
	KindPosition    Kind = "position"
	KindXOR         Kind = "xor"
	KindRollingAvg  Kind = "rolling_avg"
)

// Params carries the knobs a classifier kind may read. Fields a kind
// does not use are ignored.
type Params struct {
	Lookback int
	Decay    float64
	Exponent float64
	Offset   int
}

// Model is one voter: a classifier kind bound to a parameter set and an
// ensemble weight.
type Model struct {
	Name   string
	Kind   Kind
	Params Params
	Weight int
}

// Classify evaluates the model against the chronological draw history.
func (m Model) Classify(draws []feed.DrawRecord) (feed.Label, error) {
	if len(draws) == 0 {
		return "", fmt.Errorf("%s: empty history", m.Name)
	}

	switch m.Kind {
	case KindExpTrend:
		return expTrend(draws, m.Params.Lookback, m.Params.Decay), nil
	case KindFrequency:
		return frequency(draws, m.Params.Lookback), nil
	case KindStreak:
		return streak(draws), nil
	case KindAlternating:
		return alternating(draws, m.Params.Lookback), nil
	case KindMirror:
		return mirror(draws, m.Params.Lookback), nil
	case KindOddEven:
		return oddEven(draws), nil
	case KindGap:
		return gap(draws, m.Params.Lookback), nil
	case KindSumModulo:
		return sumModulo(draws, m.Params.Lookback), nil
	case KindPrime:
		return prime(draws), nil
	case KindFibonacci:
		return fibonacci(draws), nil
	case KindWeightedSum:
		return weightedSum(draws, m.Params.Lookback, m.Params.Exponent), nil
	case KindPosition:
		return position(draws, m.Params.Offset)
	case KindXOR:
		return xorDigits(draws, m.Params.Lookback), nil
	case KindRollingAvg:
		return rollingAvg(draws, m.Params.Lookback), nil
	default:
		return "", fmt.Errorf("unknown classifier kind %q", m.Kind)
	}
}

// window returns the last n draws, or all of them if fewer exist.
func window(draws []feed.DrawRecord, n int) []feed.DrawRecord {
	if n <= 0 || n >= len(draws) {
		return draws
	}
	return draws[len(draws)-n:]
}

// expTrend weights recent draws higher and bets against the dominant
// label. Ties count as a BIG trend.
func expTrend(draws []feed.DrawRecord, lookback int, decay float64) feed.Label {
	w := window(draws, lookback)
	n := len(w)

	var bigWeight, smallWeight float64
	for i, d := range w {
		weight := math.Pow(decay, float64(n-i-1))
		if d.Label == feed.Big {
			bigWeight += weight
		} else {
			smallWeight += weight
		}
	}

	trend := feed.Big
	if smallWeight > bigWeight {
		trend = feed.Small
	}
	return trend.Opposite()
}

// frequency bets against whichever label dominates the window once the
// big/small ratio leaves the 0.7..1.3 band.
func frequency(draws []feed.DrawRecord, lookback int) feed.Label {
	w := window(draws, lookback)

	var bigCount, smallCount int
	for _, d := range w {
		if d.Label == feed.Big {
			bigCount++
		} else {
			smallCount++
		}
	}

	// smallCount of zero yields +Inf, which lands in the first branch
	ratio := float64(bigCount) / float64(smallCount)
	switch {
	case ratio > 1.3:
		return feed.Small
	case ratio < 0.7:
		return feed.Big
	case bigCount > smallCount:
		return feed.Small
	default:
		return feed.Big
	}
}

// streak measures the run of identical labels ending at the latest
// draw, scanning at most 10 draws back. Only a run of exactly 2 keeps
// the current label.
func streak(draws []feed.DrawRecord) feed.Label {
	last := draws[len(draws)-1].Label

	run := 1
	for i := len(draws) - 2; i >= 0 && run < 10; i-- {
		if draws[i].Label != last {
			break
		}
		run++
	}

	if run == 2 {
		return last
	}
	return last.Opposite()
}

// alternating inspects how often adjacent labels differ in the window.
func alternating(draws []feed.DrawRecord, lookback int) feed.Label {
	w := window(draws, lookback)
	last := w[len(w)-1].Label
	if len(w) < 2 {
		return last.Opposite()
	}

	diffs := 0
	for i := 1; i < len(w); i++ {
		if w[i].Label != w[i-1].Label {
			diffs++
		}
	}

	ratio := float64(diffs) / float64(len(w)-1)
	switch {
	case ratio > 0.65:
		return last.Opposite()
	case ratio < 0.35:
		return last
	default:
		return last.Opposite()
	}
}

// mirror reflects the digit sum of the window back onto the 0-9 ring.
func mirror(draws []feed.DrawRecord, lookback int) feed.Label {
	w := window(draws, lookback)

	sum := 0
	for _, d := range w {
		sum += d.LastDigit()
	}

	mirrorDigit := (10 - sum%10) % 10
	if mirrorDigit >= 5 {
		return feed.Big
	}
	return feed.Small
}

func oddEven(draws []feed.DrawRecord) feed.Label {
	last := draws[len(draws)-1]
	if last.LastDigit()%2 == 0 {
		return last.Label.Opposite()
	}
	return last.Label
}

// gap averages the absolute digit distance between adjacent draws.
func gap(draws []feed.DrawRecord, lookback int) feed.Label {
	w := window(draws, lookback)
	last := w[len(w)-1].Label
	if len(w) < 2 {
		return last.Opposite()
	}

	total := 0
	for i := 1; i < len(w); i++ {
		total += abs(w[i].LastDigit() - w[i-1].LastDigit())
	}

	avg := float64(total) / float64(len(w)-1)
	switch {
	case avg > 4.5:
		return last.Opposite()
	case avg < 2.5:
		return last
	default:
		return last.Opposite()
	}
}

func sumModulo(draws []feed.DrawRecord, lookback int) feed.Label {
	w := window(draws, lookback)

	sum := 0
	for _, d := range w {
		sum += d.LastDigit()
	}

	switch sum % 3 {
	case 0:
		return feed.Big
	case 1:
		return feed.Small
	default:
		return w[len(w)-1].Label
	}
}

func prime(draws []feed.DrawRecord) feed.Label {
	switch draws[len(draws)-1].LastDigit() {
	case 2, 3, 5, 7:
		return feed.Big
	default:
		return feed.Small
	}
}

func fibonacci(draws []feed.DrawRecord) feed.Label {
	last := draws[len(draws)-1]
	switch last.LastDigit() {
	case 0, 1, 2, 3, 5, 8:
		return last.Label
	default:
		return last.Label.Opposite()
	}
}

// weightedSum scores each digit by a position power and tests the
// parity of the summed score's floor.
func weightedSum(draws []feed.DrawRecord, lookback int, exponent float64) feed.Label {
	w := window(draws, lookback)

	sum := 0.0
	for i, d := range w {
		sum += float64(d.LastDigit()) * math.Pow(float64(i+1), exponent)
	}

	if int64(math.Floor(sum))%2 == 0 {
		return feed.Big
	}
	return feed.Small
}

// position examines the single draw offset places back from the latest.
func position(draws []feed.DrawRecord, offset int) (feed.Label, error) {
	idx := len(draws) - 1 - offset
	if idx < 0 {
		return "", fmt.Errorf("position offset %d exceeds history length %d", offset, len(draws))
	}

	if (draws[idx].LastDigit()+offset)%10 >= 5 {
		return feed.Big, nil
	}
	return feed.Small, nil
}

func xorDigits(draws []feed.DrawRecord, windowSize int) feed.Label {
	w := window(draws, windowSize)

	acc := 0
	for _, d := range w {
		acc ^= d.LastDigit()
	}

	if acc >= 5 {
		return feed.Big
	}
	return feed.Small
}

// rollingAvg bets against the rounded mean digit of the window.
func rollingAvg(draws []feed.DrawRecord, windowSize int) feed.Label {
	w := window(draws, windowSize)

	sum := 0
	for _, d := range w {
		sum += d.LastDigit()
	}

	avg := float64(sum) / float64(len(w))
	if math.Round(avg) >= 5 {
		return feed.Small
	}
	return feed.Big
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
