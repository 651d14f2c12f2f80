package backtest

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"bigsmall-bot/internal/feed"
)

// HistoryFetcher is the upstream source a live-data backtest pulls
// from. Satisfied by feed.Client.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context) ([]feed.DrawRecord, error)
}

// Loader holds the draw history a backtest replays.
type Loader struct {
	draws []feed.DrawRecord

	StartPeriod string
	EndPeriod   string
}

// NewLoader creates an empty loader.
func NewLoader() *Loader {
	return &Loader{draws: make([]feed.DrawRecord, 0)}
}

// LoadFromJSON reads a history document in the upstream wire shape
// from a file.
func (l *Loader) LoadFromJSON(filePath string) error {
	body, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read history file: %w", err)
	}

	draws, err := feed.DecodeHistory(body)
	if err != nil {
		return fmt.Errorf("failed to decode history file: %w", err)
	}

	l.absorb(draws)

	log.Info().
		Str("file", filePath).
		Int("draws", len(l.draws)).
		Str("first_period", l.StartPeriod).
		Str("last_period", l.EndPeriod).
		Msg("History file loaded")

	return nil
}

// LoadFromFeed downloads the history from the live upstream feed.
func (l *Loader) LoadFromFeed(ctx context.Context, fetcher HistoryFetcher) error {
	draws, err := fetcher.FetchHistory(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch history: %w", err)
	}

	l.absorb(draws)

	log.Info().
		Int("draws", len(l.draws)).
		Str("first_period", l.StartPeriod).
		Str("last_period", l.EndPeriod).
		Msg("Live history loaded")

	return nil
}

// LoadRecords takes an already decoded history, oldest first.
func (l *Loader) LoadRecords(draws []feed.DrawRecord) {
	l.absorb(draws)
}

// absorb replaces the held history wholesale; a backtest replays one
// contiguous history, never a merge of several.
func (l *Loader) absorb(draws []feed.DrawRecord) {
	l.draws = draws
	if len(l.draws) > 0 {
		l.StartPeriod = l.draws[0].Period
		l.EndPeriod = l.draws[len(l.draws)-1].Period
	}
}

// Draws returns the loaded history, oldest first.
func (l *Loader) Draws() []feed.DrawRecord {
	return l.draws
}

// Count returns the number of loaded draws.
func (l *Loader) Count() int {
	return len(l.draws)
}
