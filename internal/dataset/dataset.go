package dataset

import (
	"encoding/json"
	"fmt"
	"os"
)

// Point is a labeled 2-D sample. Immutable once created.
type Point struct {
	X1 float64 `json:"x1"`
	X2 float64 `json:"x2"`
	Y  int     `json:"y"` // 0 or 1
}

// Set is an ordered collection of points. Order does not affect correctness
// of any objective, only the determinism of floating-point summation.
type Set struct {
	Points []Point `json:"points"`
}

// Features returns the homogeneous feature vector [x1, x2, 1] for p.
// The trailing 1 carries the bias term.
func (p Point) Features() []float64 {
	return []float64{p.X1, p.X2, 1}
}

// SignedLabel maps the 0/1 label to -1/+1 for the margin-based objectives.
func (p Point) SignedLabel() float64 {
	return float64(2*p.Y - 1)
}

// Load reads a dataset from a JSON file of the form {"points": [...]}.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	var set Set
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}
	if len(set.Points) == 0 {
		return nil, fmt.Errorf("dataset %s contains no points", path)
	}
	return &set, nil
}

// Save writes the dataset to a JSON file using the temp-file-plus-rename
// pattern so a crash never leaves a truncated file behind.
func (s *Set) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize dataset: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp dataset file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename dataset file: %w", err)
	}
	return nil
}
