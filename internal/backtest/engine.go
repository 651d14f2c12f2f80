package backtest

import (
	"fmt"
	"math"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat/distuv"

	"bigsmall-bot/internal/ensemble"
	"bigsmall-bot/internal/feed"
)

// Evaluation is one walk-forward step: a prediction made on the
// history before a draw, scored against that draw.
type Evaluation struct {
	Period     string     `json:"period"`
	Predicted  feed.Label `json:"predicted"`
	Actual     feed.Label `json:"actual"`
	Number     int        `json:"number"`
	Confidence int        `json:"confidence"`
	VotesBig   int        `json:"votes_big"`
	VotesSmall int        `json:"votes_small"`
	Hit        bool       `json:"hit"`
}

// Results holds the aggregate outcome of a backtest run.
type Results struct {
	Evaluations []Evaluation

	TotalPredictions int
	Hits             int
	Misses           int
	Skipped          int
	HitRate          float64

	MeanConfidence   float64
	MedianConfidence float64
	StdDevConfidence float64

	LongestHitStreak  int
	LongestMissStreak int

	// PValue is the two-sided binomial probability of a hit count at
	// least this extreme under a fair coin.
	PValue float64

	StartPeriod string
	EndPeriod   string
	Elapsed     time.Duration
}

// Engine replays history through the ensemble, one draw at a time.
type Engine struct {
	agg     *ensemble.Aggregator
	loader  *Loader
	warmup  int
	results *Results
}

// NewEngine creates a walk-forward engine. Warmup values below the
// ensemble minimum are raised to it.
func NewEngine(agg *ensemble.Aggregator, loader *Loader, warmup int) *Engine {
	if warmup < ensemble.MinHistory {
		warmup = ensemble.MinHistory
	}
	return &Engine{
		agg:     agg,
		loader:  loader,
		warmup:  warmup,
		results: &Results{Evaluations: make([]Evaluation, 0)},
	}
}

// Run walks the loaded history: for every draw past the warmup the
// ensemble predicts on the draws before it and is scored against the
// draw itself.
func (e *Engine) Run() error {
	draws := e.loader.Draws()
	if len(draws) <= e.warmup {
		return fmt.Errorf("history too short: have %d draws, warmup needs at least %d", len(draws), e.warmup+1)
	}

	log.Info().
		Int("draws", len(draws)).
		Int("warmup", e.warmup).
		Str("first_period", draws[0].Period).
		Str("last_period", draws[len(draws)-1].Period).
		Msg("Starting backtest")

	start := time.Now()

	for i := e.warmup; i < len(draws); i++ {
		result, err := e.agg.Aggregate(draws[:i])
		if err != nil {
			e.results.Skipped++
			log.Warn().Err(err).Str("period", draws[i].Period).Msg("evaluation skipped")
			continue
		}

		actual := draws[i]
		e.results.Evaluations = append(e.results.Evaluations, Evaluation{
			Period:     actual.Period,
			Predicted:  result.Prediction,
			Actual:     actual.Label,
			Number:     actual.Number,
			Confidence: result.Confidence,
			VotesBig:   result.VotesBig,
			VotesSmall: result.VotesSmall,
			Hit:        result.Prediction == actual.Label,
		})
	}

	e.results.Elapsed = time.Since(start)
	e.calculateMetrics()

	log.Info().
		Int("predictions", e.results.TotalPredictions).
		Float64("hit_rate", e.results.HitRate).
		Dur("elapsed", e.results.Elapsed).
		Msg("Backtest complete")

	return nil
}

// calculateMetrics fills the aggregate fields from the evaluations.
func (e *Engine) calculateMetrics() {
	r := e.results
	r.TotalPredictions = len(r.Evaluations)
	if r.TotalPredictions == 0 {
		return
	}

	confidences := make([]float64, 0, r.TotalPredictions)
	hitStreak, missStreak := 0, 0

	for _, eval := range r.Evaluations {
		confidences = append(confidences, float64(eval.Confidence))

		if eval.Hit {
			r.Hits++
			hitStreak++
			missStreak = 0
			if hitStreak > r.LongestHitStreak {
				r.LongestHitStreak = hitStreak
			}
		} else {
			r.Misses++
			missStreak++
			hitStreak = 0
			if missStreak > r.LongestMissStreak {
				r.LongestMissStreak = missStreak
			}
		}
	}

	r.HitRate = float64(r.Hits) / float64(r.TotalPredictions)

	r.MeanConfidence, _ = stats.Mean(confidences)
	r.MedianConfidence, _ = stats.Median(confidences)
	if r.TotalPredictions > 1 {
		r.StdDevConfidence, _ = stats.StandardDeviationSample(confidences)
	}

	r.PValue = binomialPValue(r.Hits, r.TotalPredictions)

	r.StartPeriod = r.Evaluations[0].Period
	r.EndPeriod = r.Evaluations[len(r.Evaluations)-1].Period
}

// binomialPValue is the two-sided probability of seeing a hit count at
// least as extreme as k out of n under a fair coin.
func binomialPValue(k, n int) float64 {
	if n == 0 {
		return 1
	}

	dist := distuv.Binomial{N: float64(n), P: 0.5}
	lower := dist.CDF(float64(k))
	upper := dist.Survival(float64(k - 1))

	p := 2 * math.Min(lower, upper)
	if p > 1 {
		p = 1
	}
	return p
}

// GetResults returns the backtest results.
func (e *Engine) GetResults() *Results {
	return e.results
}
