package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/big"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"bigsmall-bot/internal/cfg"
	"bigsmall-bot/internal/feed"
)

// historyItem mirrors one entry of the upstream history document.
type historyItem struct {
	IssueNo string `json:"issueNo"`
	Number  int    `json:"number"`
}

type historyDocument struct {
	Data struct {
		List []historyItem `json:"list"`
	} `json:"data"`
}

// HistoryCollector polls the upstream feed and accumulates every draw
// it has seen, keyed by period. The live feed only serves one page, so
// long backtest histories have to be collected over time.
type HistoryCollector struct {
	client *feed.Client
	seen   map[string]feed.DrawRecord
}

func NewHistoryCollector(config *cfg.Settings) *HistoryCollector {
	client := feed.NewClient(feed.Options{
		URL:       config.FeedURL,
		Timeout:   config.FeedTimeout,
		Attempts:  config.FeedAttempts,
		Backoff:   config.FeedBackoff,
		RateLimit: config.FeedRateLimit,
		UserAgent: config.FeedUserAgent,
	})

	return &HistoryCollector{
		client: client,
		seen:   make(map[string]feed.DrawRecord),
	}
}

// Poll fetches the current history page and merges it. Returns the
// number of draws not seen before.
func (h *HistoryCollector) Poll(ctx context.Context) (int, error) {
	draws, err := h.client.FetchHistory(ctx)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, d := range draws {
		if _, ok := h.seen[d.Period]; !ok {
			h.seen[d.Period] = d
			added++
		}
	}
	return added, nil
}

// Count returns the number of accumulated draws.
func (h *HistoryCollector) Count() int {
	return len(h.seen)
}

// Save writes the accumulated history to a JSON file in the wire
// shape, newest first, so the backtest loader can read it back.
func (h *HistoryCollector) Save(path string) error {
	items := make([]historyItem, 0, len(h.seen))
	for _, d := range h.seen {
		items = append(items, historyItem{IssueNo: d.Period, Number: d.Number})
	}

	// Periods are numeric strings of varying magnitude, so compare as
	// integers rather than lexically.
	sort.Slice(items, func(i, j int) bool {
		a, okA := new(big.Int).SetString(items[i].IssueNo, 10)
		b, okB := new(big.Int).SetString(items[j].IssueNo, 10)
		if !okA || !okB {
			return items[i].IssueNo > items[j].IssueNo
		}
		return a.Cmp(b) > 0
	})

	doc := &historyDocument{}
	doc.Data.List = items

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

func main() {
	var (
		outPath  = flag.String("out", "collected_history.json", "Output file path")
		interval = flag.Duration("interval", time.Minute, "Poll interval")
		duration = flag.Duration("duration", time.Hour, "How long to collect before exiting")
	)
	flag.Parse()

	config, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	collector := NewHistoryCollector(&config)

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Collecting draws from %s every %s for %s", config.FeedURL, *interval, *duration)

	poll := func() {
		added, err := collector.Poll(sigCtx)
		if err != nil {
			log.Printf("Poll failed: %v", err)
			return
		}
		if added > 0 {
			log.Printf("Collected %d new draws (%d total)", added, collector.Count())
			if err := collector.Save(*outPath); err != nil {
				log.Printf("Save failed: %v", err)
			}
		}
	}

	poll()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		select {
		case <-sigCtx.Done():
			if err := collector.Save(*outPath); err != nil {
				log.Fatalf("Final save failed: %v", err)
			}
			log.Printf("History collection completed: %d draws in %s", collector.Count(), *outPath)
			return
		case <-ticker.C:
			poll()
		}
	}
}
