// Package main provides a performance benchmarking tool for the prefscore CLI.
// It measures execution times for every catalog and command, once without a store
// and once recording into SQLite. The first successful run of each phase is treated
// as cold and the rest are averaged as warm. Results are written to CSV.
//
// Prerequisites:
// - prefscore binary installed and available in PATH
// - Catalog files, each with at least one user and one product
//
// Usage: go run benchmark/main.go catalog.yaml [catalog.yaml...]
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark suite for one catalog and command.
type BenchmarkResult struct {
	Catalog     string
	Command     string
	NoStoreTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Catalogs    []string
	Timeout     time.Duration
	Workers     int
	NoStoreRuns int
	StoreRuns   int
	StoreDir    string
}

// benchmarkCommand is one prefscore invocation measured against every catalog.
type benchmarkCommand struct {
	name        string
	description string
	args        func(catalog string) ([]string, error)
}

func main() {
	if len(os.Args) < 2 {
		fmt.Printf("Usage: %s catalog.yaml [catalog.yaml...]\n", os.Args[0])
		os.Exit(1)
	}

	storeDir, err := os.MkdirTemp("", "prefscore-benchmark-*")
	if err != nil {
		fmt.Printf("Failed to create store directory: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = os.RemoveAll(storeDir) }()

	config := BenchmarkConfig{
		Catalogs:    os.Args[1:],
		Timeout:     5 * time.Minute,
		Workers:     14,
		NoStoreRuns: 3,
		StoreRuns:   4,
		StoreDir:    storeDir,
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the prefscore binary and catalogs exist.
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("prefscore"); err != nil {
		return fmt.Errorf("prefscore binary not found in PATH")
	}
	for _, catalog := range config.Catalogs {
		if _, err := os.Stat(catalog); os.IsNotExist(err) {
			return fmt.Errorf("catalog not found at %s", catalog)
		}
	}
	return nil
}

// firstUser asks prefscore for the users of a catalog and returns the first id.
func firstUser(catalog string) (string, error) {
	out, err := exec.Command("prefscore", "users", "--catalog", catalog, "--output", "csv", "--store-backend", "none").Output()
	if err != nil {
		return "", fmt.Errorf("failed to list users of %s: %w", catalog, err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) < 2 {
		return "", fmt.Errorf("catalog %s has no users", catalog)
	}
	return strings.Split(lines[1], ",")[0], nil
}

var commands = []benchmarkCommand{
	{
		name:        "rank",
		description: "rank every product for one user",
		args: func(catalog string) ([]string, error) {
			user, err := firstUser(catalog)
			if err != nil {
				return nil, err
			}
			return []string{"rank", "--catalog", catalog, "--user", user, "--limit", "0"}, nil
		},
	},
	{
		name:        "users",
		description: "summarize every user",
		args: func(catalog string) ([]string, error) {
			return []string{"users", "--catalog", catalog}, nil
		},
	},
}

// runBenchmarks executes all benchmark commands across configured catalogs.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d catalogs, %v timeout, %d workers, no-store: %d runs, store: %d runs\n",
		len(config.Catalogs), config.Timeout, config.Workers, config.NoStoreRuns, config.StoreRuns)

	for _, catalog := range config.Catalogs {
		fmt.Printf("Benchmarking %s\n", catalog)
		for _, c := range commands {
			args, err := c.args(catalog)
			if err != nil {
				fmt.Printf("  Skipping %s: %v\n", c.name, err)
				continue
			}
			results = append(results, runBenchmarkSuite(config, catalog, c, args))
		}
	}

	return results
}

// runBenchmarkSuite runs both no-store and store benchmarks for a command.
func runBenchmarkSuite(config BenchmarkConfig, catalog string, c benchmarkCommand, args []string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", c.description, catalog)

	runPhase := func(storeArgs []string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, append(args, storeArgs...), numRuns)
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

	// Phase 1: No store
	_, noStoreAvg := runPhase([]string{"--store-backend", "none"}, config.NoStoreRuns, "No-store")

	// Phase 2: Record into a fresh SQLite store
	dbPath := filepath.Join(config.StoreDir, fmt.Sprintf("%s-%s.db", filepath.Base(catalog), c.name))
	coldTime, warmAvg := runPhase([]string{"--store-backend", "sqlite", "--store-db-connect", dbPath}, config.StoreRuns, "Store")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-store average: %s, Cold time: %s, Warm average: %s\n", noStoreAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Catalog:     catalog,
		Command:     c.name,
		NoStoreTime: noStoreAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a prefscore command multiple times and returns the cold time and warm times.
func runBenchmark(config BenchmarkConfig, args []string, numRuns int) (coldTime float64, warmTimes []float64) {
	args = append(args, "--workers", fmt.Sprint(config.Workers))

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("prefscore", args...)

		done := make(chan bool)
		var cmdErr error

		go func() {
			_, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
			<-done
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/prefscore_benchmark_%s.csv", timestamp)

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

	if err := writer.Write([]string{"catalog", "cmd", "no_store_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Catalog, result.Command, result.NoStoreTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary.
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, c := range commands {
		fmt.Printf("%s:\n", c.description)
		for _, result := range results {
			if result.Command == c.name {
				fmt.Printf("  %-24s: No-store: %s, Cold: %s, Warm: %s\n", result.Catalog, result.NoStoreTime, result.ColdTime, result.WarmTime)
			}
		}
	}
	fmt.Printf("Benchmark script completed successfully\n")
}
