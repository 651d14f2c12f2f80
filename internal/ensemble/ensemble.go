// Package ensemble combines the weighted classifier votes into a
// single BIG or SMALL call with a bounded presentation confidence.
package ensemble

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"bigsmall-bot/internal/classify"
	"bigsmall-bot/internal/feed"
)

// MinHistory is the fewest chronological draws the aggregator accepts.
const MinHistory = 30

// Bounds for the displayed confidence. The score is a presentation
// artifact, not a calibrated probability, and always lands in range.
const (
	minConfidence = 90
	maxConfidence = 99
)

// MetricsInterface defines the metrics the aggregator reports.
type MetricsInterface interface {
	ClassifierErrorsInc()
}

// InsufficientHistoryError reports too few draws to aggregate.
type InsufficientHistoryError struct {
	Have int
	Need int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient history: have %d draws, need %d", e.Have, e.Need)
}

// Result is one aggregation outcome. VotesBig plus VotesSmall always
// equals TotalModels, the sum of all weights cast.
type Result struct {
	Prediction  feed.Label
	Confidence  int
	VotesBig    int
	VotesSmall  int
	TotalModels int
}

type Aggregator struct {
	models  []classify.Model
	jitter  func() int
	metrics MetricsInterface
	logger  zerolog.Logger
}

// New builds an aggregator over the ten primary models plus the full
// expansion pool.
func New() *Aggregator {
	return NewWithJitter(func() int { return rand.Intn(5) - 2 })
}

// NewWithJitter overrides the confidence perturbation. Tests and the
// backtester pass a fixed function for reproducible output.
func NewWithJitter(jitter func() int) *Aggregator {
	return &Aggregator{
		models: append(classify.PrimaryModels(), classify.ExpansionPool()...),
		jitter: jitter,
		logger: log.With().Str("component", "ensemble").Logger(),
	}
}

// SetMetrics attaches the metrics sink.
func (a *Aggregator) SetMetrics(m MetricsInterface) {
	a.metrics = m
}

// Aggregate tallies the weighted votes of every model over the
// chronological history. A failing model loses its vote and nothing
// else; ties go to BIG.
func (a *Aggregator) Aggregate(draws []feed.DrawRecord) (*Result, error) {
	if len(draws) < MinHistory {
		return nil, &InsufficientHistoryError{Have: len(draws), Need: MinHistory}
	}

	var votesBig, votesSmall int
	for _, m := range a.models {
		label, err := a.vote(m, draws)
		if err != nil {
			a.logger.Debug().Err(err).Str("model", m.Name).Msg("vote skipped")
			if a.metrics != nil {
				a.metrics.ClassifierErrorsInc()
			}
			continue
		}
		if label == feed.Big {
			votesBig += m.Weight
		} else {
			votesSmall += m.Weight
		}
	}

	total := votesBig + votesSmall
	if total == 0 {
		return nil, fmt.Errorf("no classifier cast a vote")
	}

	prediction := feed.Small
	top := votesSmall
	if votesBig >= votesSmall {
		prediction = feed.Big
		top = votesBig
	}

	confidence := clamp(int(math.Round(float64(top) / float64(total) * 100)))
	confidence = clamp(confidence + a.jitter())

	return &Result{
		Prediction:  prediction,
		Confidence:  confidence,
		VotesBig:    votesBig,
		VotesSmall:  votesSmall,
		TotalModels: total,
	}, nil
}

// vote isolates one model run so a panicking classifier only costs its
// own vote.
func (a *Aggregator) vote(m classify.Model, draws []feed.DrawRecord) (label feed.Label, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("classifier panic: %v", r)
		}
	}()
	return m.Classify(draws)
}

func clamp(confidence int) int {
	if confidence < minConfidence {
		return minConfidence
	}
	if confidence > maxConfidence {
		return maxConfidence
	}
	return confidence
}
