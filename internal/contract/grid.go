package contract

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/andyhoegh/RobotSampler-Sims/schema"
	"gopkg.in/yaml.v3"
)

// GridFile is the YAML layout of a sweep grid file.
//
//	horizons: [7, 14, 28, 56]
//	occupancies: [0.05, 0.10, 0.15]
//	detections: [0.05, 0.10, 0.15]
//	batchings: [subsample, independent]
type GridFile struct {
	Horizons    []int     `yaml:"horizons"`
	Occupancies []float64 `yaml:"occupancies"`
	Detections  []float64 `yaml:"detections"`
	Batchings   []string  `yaml:"batchings"`
}

// LoadGridFile reads and parses a YAML grid file.
func LoadGridFile(path string) (*GridFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read grid file: %w", err)
	}
	return ParseGrid(data)
}

// ParseGrid parses YAML grid contents. Every axis must be present and non-empty.
func ParseGrid(data []byte) (*GridFile, error) {
	var grid GridFile
	if err := yaml.Unmarshal(data, &grid); err != nil {
		return nil, fmt.Errorf("failed to parse grid file: %w", err)
	}
	switch {
	case len(grid.Horizons) == 0:
		return nil, errors.New("grid file has no horizons")
	case len(grid.Occupancies) == 0:
		return nil, errors.New("grid file has no occupancies")
	case len(grid.Detections) == 0:
		return nil, errors.New("grid file has no detections")
	}
	if len(grid.Batchings) == 0 {
		grid.Batchings = []string{string(schema.SubsampleBatching)}
	}
	return &grid, nil
}

// apply copies the grid axes into cfg.
func (g *GridFile) apply(cfg *Config) error {
	batchings, err := ParseBatchingList(strings.Join(g.Batchings, ","))
	if err != nil {
		return fmt.Errorf("grid file: %w", err)
	}
	cfg.Horizons = g.Horizons
	cfg.Occupancies = g.Occupancies
	cfg.Detections = g.Detections
	cfg.Batchings = batchings
	return nil
}

// splitList splits a comma-separated list, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ParseIntList parses a comma-separated list of integers.
func ParseIntList(s string) ([]int, error) {
	parts := splitList(s)
	if len(parts) == 0 {
		return nil, errors.New("list is empty")
	}
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid integer '%s'", p)
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseFloatList parses a comma-separated list of probabilities.
func ParseFloatList(s string) ([]float64, error) {
	parts := splitList(s)
	if len(parts) == 0 {
		return nil, errors.New("list is empty")
	}
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := parseProbability("value", p)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseBatchingList parses a comma-separated list of batching modes.
func ParseBatchingList(s string) ([]schema.BatchingMode, error) {
	parts := splitList(s)
	if len(parts) == 0 {
		return nil, errors.New("list is empty")
	}
	out := make([]schema.BatchingMode, 0, len(parts))
	for _, p := range parts {
		mode := schema.BatchingMode(strings.ToLower(p))
		if _, ok := schema.ValidBatchingModes[mode]; !ok {
			return nil, fmt.Errorf("invalid batching '%s'. must be subsample, independent", p)
		}
		out = append(out, mode)
	}
	return out, nil
}
