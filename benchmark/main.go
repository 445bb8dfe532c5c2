// Package main provides a performance benchmarking tool for the canvass CLI.
// It generates synthetic CVR exports of increasing size against an election
// definition, measures tabulation times with and without the tally store,
// running each test multiple times, treating the first successful run as cold
// and averaging the rest as warm, and generates CSV output for performance
// analysis and documentation.
//
// Prerequisites:
// - canvass binary installed and available in PATH
//
// Usage: go run benchmark/main.go [election-file]
//
//	election-file: Path to the election definition JSON document
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/votary/canvass/core"
	"github.com/votary/canvass/schema"
)

// BenchmarkResult holds the result of a benchmark run (no-store average, cold run and average of warm runs).
type BenchmarkResult struct {
	Fixture     string
	Ballots     int
	NoStoreTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	ElectionPath string
	WorkDir      string
	Timeout      time.Duration
	NoStoreRuns  int
	StoreRuns    int
	BallotCounts []int
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [election-file]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		ElectionPath: os.Args[1],
		Timeout:      5 * time.Minute,
		NoStoreRuns:  3,
		StoreRuns:    4,
		BallotCounts: []int{1000, 10000, 100000, 500000},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	workDir, err := os.MkdirTemp("", "canvass-benchmark-*")
	if err != nil {
		fmt.Printf("Failed to create work dir: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = os.RemoveAll(workDir) }()
	config.WorkDir = workDir

	ed, err := loadElection(config.ElectionPath)
	if err != nil {
		fmt.Printf("Failed to load election definition: %v\n", err)
		os.Exit(1)
	}

	// Clear the store so cold runs start from nothing
	fmt.Printf("Clearing tally store...\n")
	clearCmd := exec.Command("canvass", "store", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear store: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Store cleared successfully\n")
	}

	results := runBenchmarks(config, ed)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the canvass binary and election file exist
func checkPrerequisites(config BenchmarkConfig) error {
	// Check if canvass is available
	if _, err := exec.LookPath("canvass"); err != nil {
		return fmt.Errorf("canvass binary not found in PATH")
	}

	if _, err := os.Stat(config.ElectionPath); os.IsNotExist(err) {
		return fmt.Errorf("election file not found at %s", config.ElectionPath)
	}

	return nil
}

func loadElection(path string) (*schema.ElectionDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return schema.ParseElection(data)
}

// runBenchmarks executes all benchmark tests across configured fixture sizes
func runBenchmarks(config BenchmarkConfig, ed *schema.ElectionDefinition) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d fixture sizes, %v timeout, no-store: %d runs, store: %d runs\n",
		len(config.BallotCounts), config.Timeout, config.NoStoreRuns, config.StoreRuns)

	for _, count := range config.BallotCounts {
		fixture := fmt.Sprintf("cvrs-%d.jsonl", count)
		fmt.Printf("Benchmarking %s\n", fixture)

		fixturePath := filepath.Join(config.WorkDir, fixture)
		if err := generateCVRFile(fixturePath, &ed.Election, count); err != nil {
			fmt.Printf("Failed to generate %s: %v\n", fixture, err)
			continue
		}

		result := runBenchmarkSuite(config, fixture, fixturePath, count)
		results = append(results, result)
	}

	return results
}

// generateCVRFile writes a newline-delimited CVR export with the requested
// number of ballots, cycling through the election's ballot styles and voting
// for pseudo-random options.
func generateCVRFile(path string, election *schema.Election, ballots int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	rng := rand.New(rand.NewSource(42))
	styles := election.BallotStyles

	for i := 0; i < ballots; i++ {
		style := &styles[i%len(styles)]
		record := map[string]any{
			"_ballotId":      fmt.Sprintf("ballot-%d", i),
			"_ballotStyleId": style.ID,
			"_precinctId":    style.Precincts[i%len(style.Precincts)],
			"_scannerId":     fmt.Sprintf("scanner-%d", i%4),
			"_batchId":       fmt.Sprintf("batch-%d", i%16),
			"_testBallot":    false,
		}
		for _, contest := range core.ContestsForBallotStyle(election, style) {
			record[contest.ID] = randomSelections(rng, &contest)
		}

		line, err := json.Marshal(record)
		if err != nil {
			return err
		}
		if _, err := file.Write(append(line, '\n')); err != nil {
			return err
		}
	}

	return nil
}

// randomSelections picks up to seat-count options for a contest, sometimes
// none, so undervotes appear in the generated data.
func randomSelections(rng *rand.Rand, contest *schema.Contest) []string {
	if contest.Type != schema.CandidateContestType {
		if rng.Intn(10) == 0 {
			return []string{}
		}
		return []string{[]string{"yes", "no"}[rng.Intn(2)]}
	}

	picks := rng.Intn(contest.SeatCount() + 1)
	selections := []string{}
	for _, idx := range rng.Perm(len(contest.Candidates))[:min(picks, len(contest.Candidates))] {
		selections = append(selections, contest.Candidates[idx].ID)
	}
	return selections
}

// runBenchmarkSuite runs both no-store and store benchmarks for a fixture
func runBenchmarkSuite(config BenchmarkConfig, fixture, fixturePath string, ballots int) BenchmarkResult {
	fmt.Printf("Running tabulation on %s\n", fixture)

	// Helper to run a benchmark phase
	runPhase := func(storeBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, fixturePath, storeBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avg := sum / float64(len(times))
			avgTime = fmt.Sprintf("%.3fs", avg)
		}
		return cold, avgTime
	}

	// Phase 1: No-store runs
	_, noStoreAvg := runPhase("none", config.NoStoreRuns, "No-store")

	// Phase 2: Store runs
	coldTime, warmAvg := runPhase("sqlite", config.StoreRuns, "Store")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-store average: %s, Cold time: %s, Warm average: %s\n", noStoreAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Fixture:     fixture,
		Ballots:     ballots,
		NoStoreTime: noStoreAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a tabulation multiple times with the specified store backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, fixturePath, storeBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{
		"tabulate",
		"--election", config.ElectionPath,
		"--store-backend", storeBackend,
		"--output", "json",
		"--output-file", filepath.Join(config.WorkDir, "results.json"),
		fixturePath,
	}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("canvass", args...)
		cmd.Dir = config.WorkDir

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return !strings.Contains(outputStr, "Cannot tabulate") &&
		!strings.Contains(outputStr, "Cannot write")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/canvass_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"fixture", "ballots", "no_store_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		row := []string{result.Fixture, fmt.Sprintf("%d", result.Ballots), result.NoStoreTime, result.ColdTime, result.WarmTime}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	fmt.Printf("%-20s %10s %14s %12s %12s\n", "FIXTURE", "BALLOTS", "NO-STORE AVG", "COLD", "WARM AVG")
	for _, result := range results {
		fmt.Printf("%-20s %10d %14s %12s %12s\n",
			result.Fixture, result.Ballots, result.NoStoreTime, result.ColdTime, result.WarmTime)
	}
}
