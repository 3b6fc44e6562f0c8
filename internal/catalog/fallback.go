package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/example/fitgram/pkg/models"
)

// FallbackVersion identifies the bundled dataset below
const FallbackVersion = "2024.1"

//go:embed fallback.json
var fallbackJSON []byte

var bundled = mustDecode(fallbackJSON)

func mustDecode(raw []byte) []models.Exercise {
	list, err := DecodeDataset(raw)
	if err != nil {
		panic(fmt.Sprintf("catalog: bundled fallback dataset: %v", err))
	}
	return list
}

// Fallback returns a copy of the bundled exercise dataset
func Fallback() []models.Exercise {
	return append([]models.Exercise(nil), bundled...)
}

// DecodeDataset parses and validates a JSON exercise list
func DecodeDataset(raw []byte) ([]models.Exercise, error) {
	var list []models.Exercise
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if err := ValidateDataset(list); err != nil {
		return nil, err
	}
	return list, nil
}

// LoadDatasetFile reads a JSON dataset from disk
func LoadDatasetFile(path string) ([]models.Exercise, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	return DecodeDataset(raw)
}

// ValidateDataset checks that a dataset can stand in for the remote catalog:
// non-empty, unique positive ids, a muscle group and a known difficulty on
// every entry.
func ValidateDataset(list []models.Exercise) error {
	if len(list) == 0 {
		return fmt.Errorf("dataset is empty")
	}
	seen := make(map[int64]bool, len(list))
	for i, ex := range list {
		switch {
		case ex.ID <= 0:
			return fmt.Errorf("entry %d: invalid id %d", i, ex.ID)
		case seen[ex.ID]:
			return fmt.Errorf("entry %d: duplicate id %d", i, ex.ID)
		case ex.MuscleGroup == "":
			return fmt.Errorf("entry %d (id %d): missing muscle group", i, ex.ID)
		case !ex.Difficulty.Valid():
			return fmt.Errorf("entry %d (id %d): unknown difficulty %q", i, ex.ID, ex.Difficulty)
		}
		seen[ex.ID] = true
	}
	return nil
}
