// Package main provides a performance benchmarking tool for the rubric CLI.
// It generates synthetic rubrics of increasing size together with batches of
// answer files, then times `rubric score` with history disabled and with the
// SQLite history backend. The first successful run of each phase is treated as
// cold and the rest are averaged as warm. Results are written to a CSV file.
//
// Prerequisites:
// - rubric binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where generated rubrics and answer files are written
package main

import (
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// RubricSize describes the shape of one generated rubric.
type RubricSize struct {
	Name              string
	Groups            int
	CriteriaPerGroup  int
	AnswerFiles       int
	SkipEveryNth      int // Every nth criterion is skipped in the answers
	LeaveEveryNthOpen int // Every nth criterion is left unanswered
}

// BenchmarkResult holds the result of a benchmark run for one rubric size and backend.
type BenchmarkResult struct {
	Size     string
	Backend  string
	Criteria int
	Runs     int
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir string
	Timeout time.Duration
	Workers int
	Runs    int
	Sizes   []RubricSize
}

var scoreOptions = []float64{0, 2, 4, 6, 8, 10}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir: os.Args[1],
		Timeout: 5 * time.Minute,
		Workers: 8,
		Runs:    4,
		Sizes: []RubricSize{
			{Name: "small", Groups: 4, CriteriaPerGroup: 5, AnswerFiles: 20, SkipEveryNth: 7, LeaveEveryNthOpen: 11},
			{Name: "medium", Groups: 10, CriteriaPerGroup: 20, AnswerFiles: 100, SkipEveryNth: 7, LeaveEveryNthOpen: 11},
			{Name: "large", Groups: 25, CriteriaPerGroup: 40, AnswerFiles: 250, SkipEveryNth: 7, LeaveEveryNthOpen: 11},
		},
	}

	if _, err := exec.LookPath("rubric"); err != nil {
		fmt.Println("Prerequisites check failed: rubric binary not found in PATH")
		os.Exit(1)
	}
	if err := os.MkdirAll(config.WorkDir, 0o755); err != nil {
		fmt.Printf("Failed to create work dir: %v\n", err)
		os.Exit(1)
	}

	results, err := runBenchmarks(config)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// runBenchmarks generates inputs for every size and times both backends.
func runBenchmarks(config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d sizes, %v timeout, %d workers, %d runs per phase\n",
		len(config.Sizes), config.Timeout, config.Workers, config.Runs)

	for _, size := range config.Sizes {
		fmt.Printf("Generating %s rubric (%d criteria, %d answer files)\n",
			size.Name, size.Groups*size.CriteriaPerGroup, size.AnswerFiles)

		formPath, answerPaths, err := generateInputs(config.WorkDir, size)
		if err != nil {
			return nil, err
		}

		for _, backend := range []string{"none", "sqlite"} {
			results = append(results, runBenchmarkSuite(config, size, backend, formPath, answerPaths))
		}
	}

	return results, nil
}

// runBenchmarkSuite times `rubric score` for one rubric size on one backend.
func runBenchmarkSuite(config BenchmarkConfig, size RubricSize, backend, formPath string, answerPaths []string) BenchmarkResult {
	fmt.Printf("  %s backend (%d runs)\n", backend, config.Runs)

	args := []string{"score", formPath}
	args = append(args, answerPaths...)
	args = append(args,
		"--output", "json",
		"--output-file", filepath.Join(config.WorkDir, size.Name+".out.json"),
		"--workers", strconv.Itoa(config.Workers),
		"--history-backend", backend,
	)
	if backend == "sqlite" {
		dbPath := filepath.Join(config.WorkDir, size.Name+".history.db")
		_ = os.Remove(dbPath)
		args = append(args, "--history-db-connect", dbPath)
	}

	cold, warm := runBenchmark(config, args)

	result := BenchmarkResult{
		Size:     size.Name,
		Backend:  backend,
		Criteria: size.Groups * size.CriteriaPerGroup,
		Runs:     size.AnswerFiles,
		ColdTime: "TIMEOUT",
		WarmTime: "TIMEOUT",
	}
	if cold > 0 {
		result.ColdTime = fmt.Sprintf("%.3fs", cold)
	}
	if len(warm) > 0 {
		var sum float64
		for _, t := range warm {
			sum += t
		}
		result.WarmTime = fmt.Sprintf("%.3fs", sum/float64(len(warm)))
	}

	fmt.Printf("  Cold time: %s, Warm average: %s\n", result.ColdTime, result.WarmTime)
	return result
}

// runBenchmark executes a rubric command several times and returns the cold time and warm times.
func runBenchmark(config BenchmarkConfig, args []string) (coldTime float64, warmTimes []float64) {
	var times []float64
	for range config.Runs {
		start := time.Now()
		cmd := exec.Command("rubric", args...)

		done := make(chan error, 1)
		go func() {
			done <- cmd.Run()
		}()

		select {
		case err := <-done:
			if err == nil {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// generateInputs writes an equally weighted rubric and its answer files for size.
func generateInputs(dir string, size RubricSize) (string, []string, error) {
	groupWeight := 100 / float64(size.Groups)
	criterionWeight := 100 / float64(size.CriteriaPerGroup)

	options := make([]map[string]any, len(scoreOptions))
	for i, s := range scoreOptions {
		options[i] = map[string]any{"score": s}
	}

	groups := make([]map[string]any, size.Groups)
	for g := range size.Groups {
		criteria := make([]map[string]any, size.CriteriaPerGroup)
		for c := range size.CriteriaPerGroup {
			criteria[c] = map[string]any{
				"id":      criterionID(g, c),
				"title":   fmt.Sprintf("Criterion %d.%d", g+1, c+1),
				"weight":  criterionWeight,
				"options": options,
			}
		}
		groups[g] = map[string]any{
			"id":       fmt.Sprintf("g%d", g),
			"title":    fmt.Sprintf("Group %d", g+1),
			"weight":   groupWeight,
			"criteria": criteria,
		}
	}

	formPath := filepath.Join(dir, size.Name+".rubric.yaml")
	if err := writeYAML(formPath, map[string]any{
		"id":     "bench-" + size.Name,
		"title":  "Benchmark " + size.Name,
		"policy": "weighted",
		"groups": groups,
	}); err != nil {
		return "", nil, err
	}

	rng := rand.New(rand.NewPCG(42, uint64(size.Groups)))
	answerDir := filepath.Join(dir, size.Name+"-answers")
	if err := os.MkdirAll(answerDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("failed to create answer dir: %w", err)
	}

	answerPaths := make([]string, size.AnswerFiles)
	for i := range size.AnswerFiles {
		var answers []map[string]any
		n := 0
		for g := range size.Groups {
			for c := range size.CriteriaPerGroup {
				n++
				switch {
				case n%size.LeaveEveryNthOpen == 0:
					continue
				case n%size.SkipEveryNth == 0:
					answers = append(answers, map[string]any{"criterion": criterionID(g, c), "skipped": true})
				default:
					answers = append(answers, map[string]any{
						"criterion": criterionID(g, c),
						"score":     scoreOptions[rng.IntN(len(scoreOptions))],
					})
				}
			}
		}
		answerPaths[i] = filepath.Join(answerDir, fmt.Sprintf("run-%04d.yaml", i))
		if err := writeYAML(answerPaths[i], map[string]any{"answers": answers}); err != nil {
			return "", nil, err
		}
	}

	return formPath, answerPaths, nil
}

func criterionID(group, criterion int) string {
	return fmt.Sprintf("g%d-c%d", group, criterion)
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/rubric_benchmark_%s.csv", timestamp)

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

	if err := writer.Write([]string{"size", "backend", "criteria", "runs", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range results {
		record := []string{r.Size, r.Backend, strconv.Itoa(r.Criteria), strconv.Itoa(r.Runs), r.ColdTime, r.WarmTime}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary.
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, r := range results {
		fmt.Printf("  %-8s %-7s %5d criteria x %4d runs: Cold: %s, Warm: %s\n",
			r.Size, r.Backend, r.Criteria, r.Runs, r.ColdTime, r.WarmTime)
	}
}
