// Package metrics provides performance metrics collection and reporting.
package metrics

import (
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Stage names recorded by a build.
const (
	StageDiscover = "discover"
	StageIngest   = "ingest"
	StageMedia    = "media"
	StageExport   = "export"
)

// StageMetrics holds metrics for a single processing stage.
type StageMetrics struct {
	Name       string             `json:"name"`
	StartTime  time.Time          `json:"start_time"`
	EndTime    time.Time          `json:"end_time"`
	DurationMs int64              `json:"duration_ms"`
	Counters   map[string]int64   `json:"counters,omitempty"`
	Gauges     map[string]float64 `json:"gauges,omitempty"`
}

// RunMetrics holds all metrics for a complete run.
type RunMetrics struct {
	RunID       string                   `json:"run_id"`
	Timestamp   time.Time                `json:"timestamp"`
	Config      map[string]any           `json:"config"`
	Stages      map[string]*StageMetrics `json:"stages"`
	Totals      *TotalMetrics            `json:"totals"`
	Environment *EnvironmentInfo         `json:"environment"`
}

// TotalMetrics holds aggregate metrics.
type TotalMetrics struct {
	DurationMs     int64   `json:"duration_ms"`
	PeakMemoryMB   float64 `json:"peak_memory_mb"`
	EntriesWritten int64   `json:"entries_written"`
	FilesWritten   int     `json:"files_written"`
	Throughput     float64 `json:"throughput_entries_per_sec"`
}

// EnvironmentInfo holds system environment details.
type EnvironmentInfo struct {
	GoVersion string `json:"go_version"`
	GOOS      string `json:"goos"`
	GOARCH    string `json:"goarch"`
	NumCPU    int    `json:"num_cpu"`
	MaxProcs  int    `json:"max_procs"`
}

// Collector collects metrics during execution. It is safe for concurrent use;
// stages may overlap when languages are built in parallel.
type Collector struct {
	mu         sync.Mutex
	runID      string
	startTime  time.Time
	config     map[string]any
	stages     map[string]*StageMetrics
	peakMemory uint64
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		runID:     uuid.NewString(),
		startTime: time.Now(),
		config:    make(map[string]any),
		stages:    make(map[string]*StageMetrics),
	}
}

// SetConfig stores configuration for the run.
func (c *Collector) SetConfig(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config[key] = value
}

// SetConfigMap stores multiple configuration values.
func (c *Collector) SetConfigMap(config map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range config {
		c.config[k] = v
	}
}

// StartStage begins timing a processing stage. Starting a stage that is
// already running keeps the earliest start time.
func (c *Collector) StartStage(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.stages[name]; !ok {
		c.stages[name] = &StageMetrics{
			Name:      name,
			StartTime: time.Now(),
			Counters:  make(map[string]int64),
			Gauges:    make(map[string]float64),
		}
	}
	c.updatePeakMemory()
}

// EndStage completes timing for a stage. The latest end time wins.
func (c *Collector) EndStage(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if stage, ok := c.stages[name]; ok {
		stage.EndTime = time.Now()
		stage.DurationMs = stage.EndTime.Sub(stage.StartTime).Milliseconds()
	}
	c.updatePeakMemory()
}

// AddCounter increments a counter of a stage.
func (c *Collector) AddCounter(stage, name string, delta int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.stages[stage]; ok {
		s.Counters[name] += delta
	}
}

// SetCounter sets a counter of a stage.
func (c *Collector) SetCounter(stage, name string, value int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.stages[stage]; ok {
		s.Counters[name] = value
	}
}

// SetGauge sets a gauge of a stage.
func (c *Collector) SetGauge(stage, name string, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.stages[stage]; ok {
		s.Gauges[name] = value
	}
}

// updatePeakMemory tracks the maximum memory usage. Callers hold mu.
func (c *Collector) updatePeakMemory() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	if m.Alloc > c.peakMemory {
		c.peakMemory = m.Alloc
	}
}

// Finalize creates the final RunMetrics report.
func (c *Collector) Finalize(entries int64, filesWritten int) *RunMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.updatePeakMemory()
	totalDuration := time.Since(c.startTime)

	throughput := float64(0)
	if totalDuration.Seconds() > 0 {
		throughput = float64(entries) / totalDuration.Seconds()
	}

	return &RunMetrics{
		RunID:     c.runID,
		Timestamp: c.startTime,
		Config:    c.config,
		Stages:    c.stages,
		Totals: &TotalMetrics{
			DurationMs:     totalDuration.Milliseconds(),
			PeakMemoryMB:   float64(c.peakMemory) / 1024 / 1024,
			EntriesWritten: entries,
			FilesWritten:   filesWritten,
			Throughput:     throughput,
		},
		Environment: &EnvironmentInfo{
			GoVersion: runtime.Version(),
			GOOS:      runtime.GOOS,
			GOARCH:    runtime.GOARCH,
			NumCPU:    runtime.NumCPU(),
			MaxProcs:  runtime.GOMAXPROCS(0),
		},
	}
}

// RunID returns the run identifier.
func (c *Collector) RunID() string {
	return c.runID
}

// StageDuration returns the duration of a completed stage.
func (c *Collector) StageDuration(name string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if stage, ok := c.stages[name]; ok && !stage.EndTime.IsZero() {
		return stage.EndTime.Sub(stage.StartTime)
	}
	return 0
}
