package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/big"
	"math/rand"
	"os"
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

func main() {
	var (
		outPath     = flag.String("out", "sample_history.json", "Output file path")
		count       = flag.Int("count", 360, "Number of draws to generate")
		seed        = flag.Int64("seed", 1, "Random seed")
		startPeriod = flag.String("start-period", "20250812001", "Period of the oldest draw")
	)
	flag.Parse()

	fmt.Printf("Generating sample draw history...\n")
	fmt.Printf("  Count: %d\n", *count)
	fmt.Printf("  Start Period: %s\n", *startPeriod)
	fmt.Printf("  Seed: %d\n", *seed)
	fmt.Printf("  Output: %s\n", *outPath)

	doc, err := generateHistory(*startPeriod, *count, *seed)
	if err != nil {
		log.Fatalf("Failed to generate history: %v", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal history: %v", err)
	}

	if err := os.WriteFile(*outPath, data, 0644); err != nil {
		log.Fatalf("Failed to write history: %v", err)
	}

	fmt.Printf("✓ Generated %d draws into %s\n", *count, *outPath)
}

// generateHistory builds a wire-shaped document with consecutive
// periods, stored newest first like the live feed.
func generateHistory(startPeriod string, count int, seed int64) (*historyDocument, error) {
	period, ok := new(big.Int).SetString(startPeriod, 10)
	if !ok {
		return nil, fmt.Errorf("start period %q is not numeric", startPeriod)
	}

	rng := rand.New(rand.NewSource(seed))
	one := big.NewInt(1)

	items := make([]historyItem, count)
	for i := 0; i < count; i++ {
		items[count-1-i] = historyItem{
			IssueNo: period.String(),
			Number:  1000 + rng.Intn(9000),
		}
		period.Add(period, one)
	}

	doc := &historyDocument{}
	doc.Data.List = items
	return doc, nil
}
