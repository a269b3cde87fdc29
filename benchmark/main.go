// Package main provides a performance benchmarking tool for the repopulse CLI.
// It synthesizes saved histories of different sizes, runs each table command
// multiple times, treats the first successful cached run as cold and averages
// the rest as warm, and writes CSV output for performance analysis.
//
// Prerequisites:
// - repopulse binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for the synthesized inputs and the benchmark cache
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/repopulse/internal/source"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	History     string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Histories   []string
	Sizes       map[string]int
	Commands    []string
}

// historyStart is the first day of every synthesized history.
var historyStart = time.Date(2019, 9, 1, 0, 0, 0, 0, time.UTC)

const historyNow = "2025-01-01"

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     os.Args[1],
		Timeout:     5 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Histories:   []string{"small", "medium", "large"},
		Sizes: map[string]int{
			"small":  500,
			"medium": 5000,
			"large":  50000,
		},
		Commands: []string{"daily", "monthly"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	for _, name := range config.Histories {
		if err := writeHistory(historyPath(config, name), config.Sizes[name]); err != nil {
			fmt.Printf("Failed to synthesize %s history: %v\n", name, err)
			os.Exit(1)
		}
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

// checkPrerequisites verifies that the repopulse binary and the work dir exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("repopulse"); err != nil {
		return fmt.Errorf("repopulse binary not found in PATH")
	}
	return os.MkdirAll(config.WorkDir, 0o755)
}

func historyPath(config BenchmarkConfig, name string) string {
	return filepath.Join(config.WorkDir, name+"_nodes.json")
}

// writeHistory synthesizes n pull requests and n issues with a fixed seed.
func writeHistory(path string, n int) error {
	rng := rand.New(rand.NewPCG(uint64(n), 42))
	span := int(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC).Sub(historyStart).Hours() / 24)
	labels := []string{"cxx20", "cxx23", "cxx26", "LWG", "bug", "enhancement", "uncharted"}
	reviewers := []string{"alice", "bob", "carol", "dave"}

	at := func(day int) string {
		return historyStart.AddDate(0, 0, day).Add(time.Duration(rng.IntN(86400)) * time.Second).Format(time.RFC3339)
	}
	pickLabels := func() source.RawLabels {
		var nodes []source.RawLabel
		for _, name := range labels {
			if rng.IntN(6) == 0 {
				nodes = append(nodes, source.RawLabel{Name: name})
			}
		}
		return source.RawLabels{TotalCount: len(nodes), Nodes: nodes}
	}

	var nodes source.RawNodes
	for i := range n {
		opened := rng.IntN(span)
		pr := source.RawPRNode{ID: int64(i + 1), CreatedAt: at(opened), Labels: pickLabels()}
		for r := range rng.IntN(4) {
			pr.Reviews.Nodes = append(pr.Reviews.Nodes, source.RawReview{
				Author:      &source.RawAuthor{Login: reviewers[rng.IntN(len(reviewers))]},
				SubmittedAt: at(opened + r + 1),
			})
		}
		pr.Reviews.TotalCount = len(pr.Reviews.Nodes)
		if rng.IntN(10) < 8 {
			closed := at(opened + 5 + rng.IntN(120))
			pr.ClosedAt = &closed
			if rng.IntN(10) < 7 {
				pr.MergedAt = &closed
			}
		}
		nodes.PRNodes = append(nodes.PRNodes, pr)

		issueOpened := rng.IntN(span)
		issue := source.RawIssueNode{ID: int64(n + i + 1), CreatedAt: at(issueOpened), Labels: pickLabels()}
		if rng.IntN(10) < 6 {
			closed := at(issueOpened + 1 + rng.IntN(365))
			issue.ClosedAt = &closed
		}
		nodes.IssueNodes = append(nodes.IssueNodes, issue)
	}

	data, err := json.Marshal(nodes)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// runBenchmarks executes all benchmark tests across the synthesized histories
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d histories, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.Histories), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, name := range config.Histories {
		fmt.Printf("Benchmarking %s history (%d pull requests)\n", name, config.Sizes[name])
		for _, command := range config.Commands {
			results = append(results, runBenchmarkSuite(config, name, command))
		}
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, history, command string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", command, history)

	cacheFile := filepath.Join(config.WorkDir, "benchmark_cache.db")
	_ = os.Remove(cacheFile)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, history, command, cacheBackend, cacheFile, numRuns)
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
		History:     history,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a repopulse command multiple times with specified cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, history, command, cacheBackend, cacheFile string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{
		command, historyPath(config, history),
		"--timezone", "UTC",
		"--now", historyNow,
		"--output", "json",
		"--output-file", filepath.Join(config.WorkDir, command+".json"),
		"--cache-backend", cacheBackend,
	}
	if cacheBackend == "sqlite" {
		args = append(args, "--cache-db-connect", cacheFile)
	}

	var times []float64
	for range numRuns {
		start := time.Now()

		cmd := exec.Command("repopulse", args...)
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

// isSuccess checks if command output carries the completion line
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Time:") && strings.Contains(outputStr, "rows)")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("repopulse_benchmark_%s.csv", timestamp))

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

	if err := writer.Write([]string{"history", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write([]string{result.History, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range config.Commands {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-8s: No-cache: %s, Cold: %s, Warm: %s\n", result.History, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
	fmt.Printf("Benchmark script completed successfully\n")
}
