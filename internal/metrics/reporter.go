package metrics

import (
	"bufio"
	"encoding/json"
	"fmt"
	"iter"
	"os"
	"path/filepath"
)

// maxHistoryLine bounds a single history.jsonl line.
const maxHistoryLine = 1024 * 1024

// Reporter stores run metrics under <out>/metrics: latest.json,
// run_<id>.json and an append-only history.jsonl.
type Reporter struct {
	dir         string
	historyFile string
}

// NewReporter creates a reporter writing under <outputDir>/metrics.
func NewReporter(outputDir string) *Reporter {
	dir := filepath.Join(outputDir, "metrics")
	return &Reporter{
		dir:         dir,
		historyFile: filepath.Join(dir, "history.jsonl"),
	}
}

// Dir returns the metrics directory.
func (r *Reporter) Dir() string {
	return r.dir
}

// Write stores a run.
func (r *Reporter) Write(run *RunMetrics) error {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}

	for _, name := range []string{"latest.json", fmt.Sprintf("run_%s.json", run.RunID)} {
		if err := writeIndented(filepath.Join(r.dir, name), run); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}

	if err := r.appendHistory(run); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// writeIndented writes v as indented JSON through a temporary file.
func writeIndented(path string, v any) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".metrics-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (r *Reporter) appendHistory(run *RunMetrics) error {
	line, err := json.Marshal(run)
	if err != nil {
		return err
	}

	file, err := os.OpenFile(r.historyFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := file.Write(append(line, '\n')); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// History yields every readable run in history.jsonl, oldest first.
// Lines that do not decode are skipped.
func (r *Reporter) History() iter.Seq2[*RunMetrics, error] {
	return func(yield func(*RunMetrics, error) bool) {
		file, err := os.Open(r.historyFile)
		if os.IsNotExist(err) {
			return
		}
		if err != nil {
			yield(nil, err)
			return
		}
		defer file.Close()

		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, 0, 64*1024), maxHistoryLine)
		for scanner.Scan() {
			var run RunMetrics
			if json.Unmarshal(scanner.Bytes(), &run) != nil {
				continue
			}
			if !yield(&run, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// ReadHistory returns the last limit runs, or all of them when limit <= 0.
func (r *Reporter) ReadHistory(limit int) ([]*RunMetrics, error) {
	var runs []*RunMetrics
	for run, err := range r.History() {
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
		if limit > 0 && len(runs) > limit {
			runs = runs[1:]
		}
	}
	return runs, nil
}

// LastRun returns the most recent run, or nil without history.
func (r *Reporter) LastRun() (*RunMetrics, error) {
	runs, err := r.ReadHistory(1)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return runs[0], nil
}

// Comparison is the difference between two runs.
type Comparison struct {
	CurrentRunID   string  `json:"current_run_id"`
	PreviousRunID  string  `json:"previous_run_id"`
	SpeedupFactor  float64 `json:"speedup_factor"`
	TimeSavedMs    int64   `json:"time_saved_ms"`
	EntriesDiff    int64   `json:"entries_diff"`
	ThroughputDiff float64 `json:"throughput_diff"`
}

// CompareRuns compares current with previous; nil when either is missing.
func CompareRuns(current, previous *RunMetrics) *Comparison {
	if current == nil || previous == nil || current.Totals == nil || previous.Totals == nil {
		return nil
	}

	cur, prev := current.Totals, previous.Totals
	speedup := float64(1)
	if cur.DurationMs > 0 {
		speedup = float64(prev.DurationMs) / float64(cur.DurationMs)
	}

	return &Comparison{
		CurrentRunID:   current.RunID,
		PreviousRunID:  previous.RunID,
		SpeedupFactor:  speedup,
		TimeSavedMs:    prev.DurationMs - cur.DurationMs,
		EntriesDiff:    cur.EntriesWritten - prev.EntriesWritten,
		ThroughputDiff: cur.Throughput - prev.Throughput,
	}
}

// FormatComparison returns a one-line summary of a comparison.
func FormatComparison(c *Comparison) string {
	if c == nil {
		return "No previous run to compare"
	}

	direction := "faster"
	if c.SpeedupFactor < 1 {
		direction = "slower"
	}

	// TimeSavedMs is previous - current; print the change of this run.
	return fmt.Sprintf("%.2fx %s than previous run (%+dms, %+d entries, %+.0f entries/sec)",
		c.SpeedupFactor, direction, -c.TimeSavedMs, c.EntriesDiff, c.ThroughputDiff)
}
