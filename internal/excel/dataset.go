package excel

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/example/fitgram/internal/catalog"
	"github.com/example/fitgram/pkg/models"
)

// LoadDataset reads a fallback dataset from a .json, .xlsx or .csv file and
// validates it. Spreadsheet rows with errors fail the whole load.
func LoadDataset(path string) ([]models.Exercise, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return catalog.LoadDatasetFile(path)
	case ".xlsx", ".csv":
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", filepath.Ext(path))
	}

	config := DefaultImportConfig()
	config.FilePath = path
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		config.SheetName = ""
	}
	result, err := ImportExercises(config)
	if err != nil {
		return nil, err
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("dataset %s: %d invalid rows, first: %s", path, len(result.Errors), result.Errors[0])
	}
	if err := catalog.ValidateDataset(result.Exercises); err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return result.Exercises, nil
}
