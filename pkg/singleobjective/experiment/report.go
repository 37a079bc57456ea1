package experiment

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Save writes one JSON file per algorithm into dir, named
// <runID>_<algorithm>.json, and returns their paths.
func (r *Report) Save(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating results directory: %w", err)
	}

	paths := make([]string, 0, len(r.Algorithms))
	for _, ar := range r.Algorithms {
		data, err := json.MarshalIndent(ar, "", "  ")
		if err != nil {
			return paths, fmt.Errorf("encoding %s results: %w", ar.Name, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.json", r.RunID, ar.Name))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("writing %s results: %w", ar.Name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// LoadAlgorithmReport reads a file written by Save.
func LoadAlgorithmReport(path string) (*AlgorithmReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ar AlgorithmReport
	if err := json.Unmarshal(data, &ar); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &ar, nil
}
