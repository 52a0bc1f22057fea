package writer

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"Go2NetLoss/internal/model"
)

// TimelineSummary holds the metadata of one dumped analyzer run.
type TimelineSummary struct {
	Technique string         `json:"technique"`
	Scenario  string         `json:"scenario"`
	Iteration string         `json:"iteration"`
	Buckets   map[string]int `json:"buckets"`
	Timestamp string         `json:"timestamp"`
}

// GobWriter dumps every bucket of an analyzer result to disk in gob format.
// It implements the model.TimelineWriter interface.
type GobWriter struct {
	rootPath string
}

// NewGobWriter creates a timeline writer rooted at rootPath.
func NewGobWriter(rootPath string) *GobWriter {
	return &GobWriter{rootPath: rootPath}
}

// Write stores result under <root>/<scenario>/<iteration>/<technique>/ as one
// .dat file per non-empty bucket plus a summary.json.
func (w *GobWriter) Write(scenario, iteration string, result *model.Result) error {
	dir := filepath.Join(w.rootPath, scenario, iteration, result.Technique)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create timeline directory: %w", err)
	}

	summary := TimelineSummary{
		Technique: result.Technique,
		Scenario:  scenario,
		Iteration: iteration,
		Buckets:   make(map[string]int),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	for _, bucket := range result.Buckets() {
		if bucket.Len() == 0 {
			continue
		}
		summary.Buckets[bucket.Name] = bucket.Len()
		if err := writeGob(filepath.Join(dir, bucket.Name+".dat"), bucket.Results); err != nil {
			return err
		}
	}

	summaryFile, err := os.Create(filepath.Join(dir, "summary.json"))
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer summaryFile.Close()

	jsonEncoder := json.NewEncoder(summaryFile)
	jsonEncoder.SetIndent("", "  ")
	if err := jsonEncoder.Encode(summary); err != nil {
		return fmt.Errorf("failed to encode summary to json: %w", err)
	}
	return nil
}

func writeGob(path string, results []model.LossResult) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create timeline file '%s': %w", path, err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(results); err != nil {
		return fmt.Errorf("failed to encode timeline to gob for file '%s': %w", path, err)
	}
	return nil
}

// ReadTimeline decodes a bucket written by GobWriter.
func ReadTimeline(path string) ([]model.LossResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var results []model.LossResult
	if err := gob.NewDecoder(file).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode timeline '%s': %w", path, err)
	}
	return results, nil
}
