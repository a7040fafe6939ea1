// Package main provides a performance benchmarking tool for the robotsampler CLI.
// It measures execution times across trial counts and command types,
// running each test multiple times, treating the first successful run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - robotsampler binary installed and available in PATH
//
// Usage: go run benchmark/main.go [workers]
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Scenario    string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Timeout      time.Duration
	Workers      int
	NoCacheRuns  int
	CacheRuns    int
	Scenarios    []string
	ScenarioSims map[string]int
	SweepArgs    []string
}

// completionPhrases identify a successful run of each command in its text output.
var completionPhrases = map[string]string{
	"run":     "Simulated",
	"compare": "Compared",
	"sweep":   "Sweep completed in",
}

func main() {
	workers := 8
	if len(os.Args) == 2 {
		n, err := strconv.Atoi(os.Args[1])
		if err != nil || n <= 0 {
			fmt.Printf("Usage: %s [workers]\n", os.Args[0])
			os.Exit(1)
		}
		workers = n
	}

	config := BenchmarkConfig{
		Timeout:     5 * time.Minute,
		Workers:     workers,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Scenarios:   []string{"small", "medium", "large"},
		ScenarioSims: map[string]int{
			"small":  10_000,
			"medium": 100_000,
			"large":  1_000_000,
		},
		SweepArgs: []string{"--horizons", "7,14,28,56", "--occupancies", "0.05,0.1", "--detections", "0.05,0.1"},
	}

	if _, err := exec.LookPath("robotsampler"); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", errors.New("robotsampler binary not found in PATH"))
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("robotsampler", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// runBenchmarks executes all benchmark tests across configured scenarios
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d scenarios, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.Scenarios), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, scenario := range config.Scenarios {
		sims := config.ScenarioSims[scenario]
		fmt.Printf("Benchmarking %s (%d sims)\n", scenario, sims)

		base := []string{"--sims", strconv.Itoa(sims), "--workers", strconv.Itoa(config.Workers)}
		results = append(results,
			runBenchmarkSuite(config, scenario, "run", base),
			runBenchmarkSuite(config, scenario, "compare", base),
			runBenchmarkSuite(config, scenario, "sweep", append(base, config.SweepArgs...)),
		)
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, scenario, command string, extraArgs []string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", command, scenario)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, command, extraArgs, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Scenario:    scenario,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a robotsampler command multiple times with specified cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, command string, extraArgs []string, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append([]string{command, "--cache-backend", cacheBackend}, extraArgs...)

	var times []float64
	for run := 1; run <= numRuns; run++ {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		output, err := exec.CommandContext(ctx, "robotsampler", args...).CombinedOutput()
		if err == nil && isSuccess(output, command) {
			times = append(times, time.Since(start).Seconds())
		}
		cancel()
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte, command string) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, completionPhrases[command]) &&
		strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/robotsampler_benchmark_%s.csv", timestamp)

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

	if err := writer.Write([]string{"scenario", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write([]string{result.Scenario, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "run", "Single Configuration:")
	printCommandSummary(results, "compare", "Paired Comparison:")
	printCommandSummary(results, "sweep", "Grid Sweep:")

	fmt.Printf("Benchmark script completed successfully\n")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-8s: No-cache: %s, Cold: %s, Warm: %s\n", result.Scenario, result.NoCacheTime, result.ColdTime, result.WarmTime)
		}
	}
}
