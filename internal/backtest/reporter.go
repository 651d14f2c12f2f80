package backtest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Reporter writes backtest reports.
type Reporter struct {
	results    *Results
	outputPath string
}

// NewReporter creates a new reporter.
func NewReporter(results *Results, outputPath string) *Reporter {
	return &Reporter{
		results:    results,
		outputPath: outputPath,
	}
}

// GenerateReport writes all report formats under the output path.
func (r *Reporter) GenerateReport() error {
	if err := os.MkdirAll(r.outputPath, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := r.generateSummary(); err != nil {
		return err
	}

	if err := r.generateEvaluationLog(); err != nil {
		return err
	}

	return r.generateJSONReport()
}

// generateSummary writes a human-readable summary.
func (r *Reporter) generateSummary() error {
	summaryPath := filepath.Join(r.outputPath, "backtest_summary.txt")
	file, err := os.Create(summaryPath)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "BACKTEST RESULTS SUMMARY\n")
	fmt.Fprintf(file, "========================\n\n")

	fmt.Fprintf(file, "Period Range: %s to %s\n", r.results.StartPeriod, r.results.EndPeriod)
	fmt.Fprintf(file, "Elapsed: %s\n\n", r.results.Elapsed)

	fmt.Fprintf(file, "PREDICTION STATISTICS\n")
	fmt.Fprintf(file, "---------------------\n")
	fmt.Fprintf(file, "Total Predictions: %d\n", r.results.TotalPredictions)
	fmt.Fprintf(file, "Hits: %d\n", r.results.Hits)
	fmt.Fprintf(file, "Misses: %d\n", r.results.Misses)
	fmt.Fprintf(file, "Skipped: %d\n", r.results.Skipped)
	fmt.Fprintf(file, "Hit Rate: %.2f%%\n", r.results.HitRate*100)
	fmt.Fprintf(file, "Binomial p-Value (two-sided): %.4f\n\n", r.results.PValue)

	fmt.Fprintf(file, "CONFIDENCE\n")
	fmt.Fprintf(file, "----------\n")
	fmt.Fprintf(file, "Mean: %.2f%%\n", r.results.MeanConfidence)
	fmt.Fprintf(file, "Median: %.2f%%\n", r.results.MedianConfidence)
	fmt.Fprintf(file, "Std Dev: %.2f\n\n", r.results.StdDevConfidence)

	fmt.Fprintf(file, "STREAKS\n")
	fmt.Fprintf(file, "-------\n")
	fmt.Fprintf(file, "Longest Hit Streak: %d\n", r.results.LongestHitStreak)
	fmt.Fprintf(file, "Longest Miss Streak: %d\n", r.results.LongestMissStreak)

	confStats := r.calculateConfidenceStats()
	if len(confStats) > 0 {
		fmt.Fprintf(file, "\nHIT RATE BY CONFIDENCE\n")
		fmt.Fprintf(file, "----------------------\n")

		levels := make([]int, 0, len(confStats))
		for level := range confStats {
			levels = append(levels, level)
		}
		sort.Ints(levels)

		for _, level := range levels {
			s := confStats[level]
			fmt.Fprintf(file, "%d%%: %d predictions, %.2f%% hit rate\n",
				level, s.Count, s.HitRate*100)
		}
	}

	log.Info().Str("file", summaryPath).Msg("Summary report generated")
	return nil
}

// generateEvaluationLog writes a CSV log of every evaluation.
func (r *Reporter) generateEvaluationLog() error {
	csvPath := filepath.Join(r.outputPath, "evaluation_log.csv")
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create evaluation log: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Period", "Predicted", "Actual", "Number", "Confidence",
		"Votes BIG", "Votes SMALL", "Hit",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, eval := range r.results.Evaluations {
		record := []string{
			eval.Period,
			string(eval.Predicted),
			string(eval.Actual),
			strconv.Itoa(eval.Number),
			strconv.Itoa(eval.Confidence),
			strconv.Itoa(eval.VotesBig),
			strconv.Itoa(eval.VotesSmall),
			strconv.FormatBool(eval.Hit),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	log.Info().Str("file", csvPath).Msg("Evaluation log generated")
	return nil
}

// generateJSONReport writes a JSON report with all data.
func (r *Reporter) generateJSONReport() error {
	jsonPath := filepath.Join(r.outputPath, "backtest_results.json")

	report := map[string]interface{}{
		"summary": map[string]interface{}{
			"start_period":        r.results.StartPeriod,
			"end_period":          r.results.EndPeriod,
			"total_predictions":   r.results.TotalPredictions,
			"hits":                r.results.Hits,
			"misses":              r.results.Misses,
			"skipped":             r.results.Skipped,
			"hit_rate":            r.results.HitRate,
			"mean_confidence":     r.results.MeanConfidence,
			"median_confidence":   r.results.MedianConfidence,
			"stddev_confidence":   r.results.StdDevConfidence,
			"longest_hit_streak":  r.results.LongestHitStreak,
			"longest_miss_streak": r.results.LongestMissStreak,
			"p_value":             r.results.PValue,
			"elapsed":             r.results.Elapsed.String(),
		},
		"evaluations":  r.results.Evaluations,
		"generated_at": time.Now(),
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON report: %w", err)
	}

	log.Info().Str("file", jsonPath).Msg("JSON report generated")
	return nil
}

// ConfidenceStats groups evaluations that share a confidence value.
type ConfidenceStats struct {
	Count   int
	Hits    int
	HitRate float64
}

// calculateConfidenceStats buckets evaluations by confidence.
func (r *Reporter) calculateConfidenceStats() map[int]*ConfidenceStats {
	buckets := make(map[int]*ConfidenceStats)

	for _, eval := range r.results.Evaluations {
		if _, exists := buckets[eval.Confidence]; !exists {
			buckets[eval.Confidence] = &ConfidenceStats{}
		}

		s := buckets[eval.Confidence]
		s.Count++
		if eval.Hit {
			s.Hits++
		}
	}

	for _, s := range buckets {
		if s.Count > 0 {
			s.HitRate = float64(s.Hits) / float64(s.Count)
		}
	}

	return buckets
}

// PrintSummary prints a summary to console.
func (r *Reporter) PrintSummary() {
	fmt.Println("\n=== BACKTEST RESULTS ===")
	fmt.Printf("Periods: %s to %s\n", r.results.StartPeriod, r.results.EndPeriod)
	fmt.Printf("Predictions: %d\n", r.results.TotalPredictions)
	fmt.Printf("Hits: %d\n", r.results.Hits)
	fmt.Printf("Misses: %d\n", r.results.Misses)
	fmt.Printf("Hit Rate: %.2f%%\n", r.results.HitRate*100)
	fmt.Printf("Mean Confidence: %.2f%%\n", r.results.MeanConfidence)
	fmt.Printf("Longest Hit Streak: %d\n", r.results.LongestHitStreak)
	fmt.Printf("Longest Miss Streak: %d\n", r.results.LongestMissStreak)
	fmt.Printf("Binomial p-Value: %.4f\n", r.results.PValue)
	fmt.Println("========================")
}
