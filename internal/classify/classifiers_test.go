package classify

import (
	"fmt"
	"testing"

	"bigsmall-bot/internal/feed"
)

// drawsFromDigits builds a chronological history whose numbers end in
// the given digits.
func drawsFromDigits(digits ...int) []feed.DrawRecord {
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

func TestStreak(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		digits []int
		want   feed.Label
	}{
		{"run of three reverses", []int{2, 7, 7, 7}, feed.Small},
		{"run of one reverses", []int{2, 7}, feed.Small},
		{"run of two keeps", []int{2, 7, 7}, feed.Big},
		{"long small run reverses", []int{3, 3, 3, 3, 3}, feed.Big},
		{"single draw reverses", []int{7}, feed.Small},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := streak(drawsFromDigits(tt.digits...))
			if got != tt.want {
				t.Errorf("streak(%v) = %s, want %s", tt.digits, got, tt.want)
			}
		})
	}
}

func TestPrime(t *testing.T) {
	t.Parallel()
	tests := []struct {
		digit int
		want  feed.Label
	}{
		{2, feed.Big},
		{3, feed.Big},
		{5, feed.Big},
		{7, feed.Big},
		{4, feed.Small},
		{9, feed.Small},
		{0, feed.Small},
		{1, feed.Small},
	}

	for _, tt := range tests {
		got := prime(drawsFromDigits(tt.digit))
		if got != tt.want {
			t.Errorf("prime(last digit %d) = %s, want %s", tt.digit, got, tt.want)
		}
	}
}

func TestExpTrend(t *testing.T) {
	t.Parallel()
	t.Run("all big bets small", func(t *testing.T) {
		draws := drawsFromDigits(7, 8, 9, 6, 5)
		if got := expTrend(draws, 20, 0.85); got != feed.Small {
			t.Errorf("expected SMALL, got %s", got)
		}
	})

	t.Run("all small bets big", func(t *testing.T) {
		draws := drawsFromDigits(1, 2, 3, 0, 4)
		if got := expTrend(draws, 20, 0.85); got != feed.Big {
			t.Errorf("expected BIG, got %s", got)
		}
	})

	t.Run("tie counts as big trend", func(t *testing.T) {
		// decay 1.0 weights both draws equally
		draws := drawsFromDigits(7, 2)
		if got := expTrend(draws, 20, 1.0); got != feed.Small {
			t.Errorf("expected SMALL, got %s", got)
		}
	})

	t.Run("recent draws dominate", func(t *testing.T) {
		// one recent SMALL outweighs two decayed BIGs
		draws := drawsFromDigits(7, 7, 2)
		if got := expTrend(draws, 3, 0.5); got != feed.Big {
			t.Errorf("expected BIG, got %s", got)
		}
	})
}

func TestFrequency(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		digits []int
		want   feed.Label
	}{
		{"big heavy window", []int{7, 8, 9, 6, 5, 7, 8, 9, 6, 5, 2, 3}, feed.Small},
		{"small heavy window", []int{1, 2, 3, 0, 4, 1, 2, 3, 0, 4, 7, 8}, feed.Big},
		{"balanced leaning big", []int{7, 8, 9, 6, 5, 7, 1, 2, 3, 0, 4}, feed.Small},
		{"balanced leaning small", []int{1, 2, 3, 0, 4, 1, 7, 8, 9, 6, 5}, feed.Big},
		{"all big", []int{7, 7, 7}, feed.Small},
		{"all small", []int{2, 2, 2}, feed.Big},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := frequency(drawsFromDigits(tt.digits...), 30)
			if got != tt.want {
				t.Errorf("frequency(%v) = %s, want %s", tt.digits, got, tt.want)
			}
		})
	}
}

func TestAlternating(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		digits []int
		want   feed.Label
	}{
		{"perfect alternation reverses last", []int{7, 2, 7, 2, 7}, feed.Small},
		{"constant labels keep last", []int{7, 8, 9, 6, 5}, feed.Big},
		{"mid band reverses last", []int{7, 7, 2, 2, 7}, feed.Small},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := alternating(drawsFromDigits(tt.digits...), 10)
			if got != tt.want {
				t.Errorf("alternating(%v) = %s, want %s", tt.digits, got, tt.want)
			}
		})
	}
}

func TestMirror(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		digits []int
		want   feed.Label
	}{
		{"sum 3 mirrors to 7", []int{1, 2}, feed.Big},
		{"sum 10 mirrors to 0", []int{5, 5}, feed.Small},
		{"sum 0 mirrors to 0", []int{0, 0, 0}, feed.Small},
		{"sum 14 mirrors to 6", []int{7, 7}, feed.Big},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mirror(drawsFromDigits(tt.digits...), 5)
			if got != tt.want {
				t.Errorf("mirror(%v) = %s, want %s", tt.digits, got, tt.want)
			}
		})
	}
}

func TestOddEven(t *testing.T) {
	t.Parallel()
	tests := []struct {
		digit int
		want  feed.Label
	}{
		{4, feed.Big},   // even digit, SMALL label reversed
		{8, feed.Small}, // even digit, BIG label reversed
		{7, feed.Big},   // odd digit, BIG label kept
		{3, feed.Small}, // odd digit, SMALL label kept
	}

	for _, tt := range tests {
		got := oddEven(drawsFromDigits(tt.digit))
		if got != tt.want {
			t.Errorf("oddEven(last digit %d) = %s, want %s", tt.digit, got, tt.want)
		}
	}
}

func TestGap(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		digits []int
		want   feed.Label
	}{
		{"volatile digits reverse", []int{0, 9, 0, 9}, feed.Small},
		{"flat digits keep", []int{5, 5, 5}, feed.Big},
		{"mid band reverses", []int{0, 3, 6}, feed.Small},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gap(drawsFromDigits(tt.digits...), 12)
			if got != tt.want {
				t.Errorf("gap(%v) = %s, want %s", tt.digits, got, tt.want)
			}
		})
	}
}

func TestSumModulo(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		digits []int
		want   feed.Label
	}{
		{"sum mod 3 is 0", []int{1, 2}, feed.Big},
		{"sum mod 3 is 1", []int{1, 3}, feed.Small},
		{"sum mod 3 is 2 keeps last", []int{7, 7}, feed.Big},
		{"sum mod 3 is 2 keeps small last", []int{4, 4}, feed.Small},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sumModulo(drawsFromDigits(tt.digits...), 8)
			if got != tt.want {
				t.Errorf("sumModulo(%v) = %s, want %s", tt.digits, got, tt.want)
			}
		})
	}
}

func TestFibonacci(t *testing.T) {
	t.Parallel()
	tests := []struct {
		digit int
		want  feed.Label
	}{
		{5, feed.Big},   // fibonacci digit, BIG label kept
		{8, feed.Big},   // fibonacci digit, BIG label kept
		{0, feed.Small}, // fibonacci digit, SMALL label kept
		{4, feed.Big},   // non-fibonacci, SMALL label reversed
		{9, feed.Small}, // non-fibonacci, BIG label reversed
	}

	for _, tt := range tests {
		got := fibonacci(drawsFromDigits(tt.digit))
		if got != tt.want {
			t.Errorf("fibonacci(last digit %d) = %s, want %s", tt.digit, got, tt.want)
		}
	}
}

func TestWeightedSum(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		digits []int
		want   feed.Label
	}{
		{"even floor", []int{2}, feed.Big},
		{"odd floor", []int{3}, feed.Small},
		{"fractional sum floors before parity", []int{1, 1}, feed.Small}, // 1 + 2^1.2 = 3.29
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := weightedSum(drawsFromDigits(tt.digits...), 5, 1.2)
			if got != tt.want {
				t.Errorf("weightedSum(%v) = %s, want %s", tt.digits, got, tt.want)
			}
		})
	}
}

func TestPosition(t *testing.T) {
	t.Parallel()
	draws := drawsFromDigits(5, 8, 9, 7)

	tests := []struct {
		offset int
		want   feed.Label
	}{
		{0, feed.Big},   // 7+0
		{1, feed.Small}, // 9+1 wraps to 0
		{2, feed.Small}, // 8+2 wraps to 0
		{3, feed.Big},   // 5+3
	}

	for _, tt := range tests {
		got, err := position(draws, tt.offset)
		if err != nil {
			t.Fatalf("position(offset %d) unexpected error: %v", tt.offset, err)
		}
		if got != tt.want {
			t.Errorf("position(offset %d) = %s, want %s", tt.offset, got, tt.want)
		}
	}

	if _, err := position(draws, 9); err == nil {
		t.Error("expected error for offset beyond history")
	}
}

func TestXORDigits(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		digits     []int
		windowSize int
		want       feed.Label
	}{
		{"xor above threshold", []int{5, 3}, 2, feed.Big},
		{"xor below threshold", []int{1, 2}, 2, feed.Small},
		{"three digit window", []int{4, 7, 2}, 3, feed.Small},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := xorDigits(drawsFromDigits(tt.digits...), tt.windowSize)
			if got != tt.want {
				t.Errorf("xorDigits(%v) = %s, want %s", tt.digits, got, tt.want)
			}
		})
	}
}

func TestRollingAvg(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		digits []int
		want   feed.Label
	}{
		{"high average counters small", []int{9, 9, 9}, feed.Small},
		{"low average counters big", []int{1, 1, 1}, feed.Big},
		{"half rounds up", []int{4, 5}, feed.Small},
		{"below half stays big", []int{4, 4}, feed.Big},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rollingAvg(drawsFromDigits(tt.digits...), len(tt.digits))
			if got != tt.want {
				t.Errorf("rollingAvg(%v) = %s, want %s", tt.digits, got, tt.want)
			}
		})
	}
}

func TestWindowClampsToHistory(t *testing.T) {
	t.Parallel()
	draws := drawsFromDigits(7, 7, 7)

	// lookback far beyond the history must not panic or error
	if got := frequency(draws, 50); got != feed.Small {
		t.Errorf("expected SMALL from clamped window, got %s", got)
	}
	if got := mirror(draws, 50); got == "" {
		t.Error("expected a label from clamped window")
	}

	w := window(draws, 50)
	if len(w) != 3 {
		t.Errorf("expected clamped window of 3, got %d", len(w))
	}
	w = window(draws, 2)
	if len(w) != 2 {
		t.Errorf("expected window of 2, got %d", len(w))
	}
}

func TestModelClassifyEmptyHistory(t *testing.T) {
	t.Parallel()
	m := Model{Name: "prime", Kind: KindPrime, Weight: 1}
	if _, err := m.Classify(nil); err == nil {
		t.Error("expected error for empty history")
	}
}

func TestModelClassifyUnknownKind(t *testing.T) {
	t.Parallel()
	m := Model{Name: "bogus", Kind: Kind("bogus"), Weight: 1}
	if _, err := m.Classify(drawsFromDigits(1, 2, 3)); err == nil {
		t.Error("expected error for unknown kind")
	}
}
