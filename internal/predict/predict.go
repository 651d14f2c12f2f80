// Package predict runs the prediction cycle: fetch history, resolve
// the prior call, aggregate a new one, update tracker state.
package predict

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"bigsmall-bot/internal/ensemble"
	"bigsmall-bot/internal/feed"
	"bigsmall-bot/internal/tracker"
)

// HistoryFetcher supplies the chronological draw history.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context) ([]feed.DrawRecord, error)
}

// MetricsInterface defines the metrics the orchestrator reports.
type MetricsInterface interface {
	PredictionsInc()
	CycleFailuresInc()
	CycleDurationObserve(float64)
	LastConfidenceSet(float64)
	DrawsAnalyzedSet(float64)
}

// Meta carries the diagnostic block of the prediction payload.
type Meta struct {
	TotalModelsUsed    int            `json:"total_models_used"`
	VotesDistribution  map[string]int `json:"votes_distribution"`
	DataPointsAnalyzed int            `json:"data_points_analyzed"`
}

// Payload is the prediction document served to API and stream
// consumers. Key names are fixed, downstream parsers match on them.
type Payload struct {
	LastPeriod      string `json:"last_period"`
	LastResult      string `json:"last_result"`
	ResultStatus    string `json:"result_status"`
	NextPeriod      string `json:"next_period"`
	Prediction      string `json:"prediction"`
	ConfidenceScore string `json:"confidence_score"`
	Meta            Meta   `json:"_meta"`
}

// Service wires the feed, the aggregator and the tracker into one
// request-driven pipeline.
type Service struct {
	fetcher HistoryFetcher
	agg     *ensemble.Aggregator
	tracker *tracker.Tracker
	metrics MetricsInterface
	logger  zerolog.Logger

	// serializes resolve-aggregate-record so concurrent requests
	// cannot lose tracker updates
	mu sync.Mutex
}

func New(fetcher HistoryFetcher, agg *ensemble.Aggregator, tr *tracker.Tracker) *Service {
	return &Service{
		fetcher: fetcher,
		agg:     agg,
		tracker: tr,
		logger:  log.With().Str("component", "predict").Logger(),
	}
}

// SetMetrics attaches the metrics sink.
func (s *Service) SetMetrics(m MetricsInterface) {
	s.metrics = m
}

// Predict runs one full cycle. On any error the tracker state is left
// untouched.
func (s *Service) Predict(ctx context.Context) (*Payload, error) {
	start := time.Now()
	cycleID := uuid.New().String()

	draws, err := s.fetcher.FetchHistory(ctx)
	if err != nil {
		s.failCycle(cycleID, err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	status := s.tracker.Resolve(draws)

	result, err := s.agg.Aggregate(draws)
	if err != nil {
		s.failCycle(cycleID, err)
		return nil, err
	}

	latest := draws[len(draws)-1]
	next, err := NextPeriod(latest.Period)
	if err != nil {
		s.failCycle(cycleID, err)
		return nil, err
	}

	s.tracker.Record(next, result.Prediction)

	payload := &Payload{
		LastPeriod:      latest.Period,
		LastResult:      fmt.Sprintf("%s (%d)", latest.Label, latest.Number),
		ResultStatus:    string(status),
		NextPeriod:      next,
		Prediction:      string(result.Prediction),
		ConfidenceScore: fmt.Sprintf("%d%%", result.Confidence),
		Meta: Meta{
			TotalModelsUsed: result.TotalModels,
			VotesDistribution: map[string]int{
				string(feed.Big):   result.VotesBig,
				string(feed.Small): result.VotesSmall,
			},
			DataPointsAnalyzed: len(draws),
		},
	}

	if s.metrics != nil {
		s.metrics.PredictionsInc()
		s.metrics.CycleDurationObserve(time.Since(start).Seconds())
		s.metrics.LastConfidenceSet(float64(result.Confidence))
		s.metrics.DrawsAnalyzedSet(float64(len(draws)))
	}

	s.logger.Info().
		Str("cycle_id", cycleID).
		Str("next_period", next).
		Str("prediction", string(result.Prediction)).
		Int("confidence", result.Confidence).
		Str("result_status", string(status)).
		Int("draws", len(draws)).
		Dur("elapsed", time.Since(start)).
		Msg("prediction cycle complete")

	return payload, nil
}

func (s *Service) failCycle(cycleID string, err error) {
	if s.metrics != nil {
		s.metrics.CycleFailuresInc()
	}
	s.logger.Error().Str("cycle_id", cycleID).Err(err).Msg("prediction cycle failed")
}

// NextPeriod returns the decimal successor of a period identifier.
// Identifiers routinely exceed 64 bits so the increment runs on
// math/big.
func NextPeriod(period string) (string, error) {
	n, ok := new(big.Int).SetString(period, 10)
	if !ok {
		return "", fmt.Errorf("period %q is not numeric", period)
	}
	return n.Add(n, big.NewInt(1)).String(), nil
}
