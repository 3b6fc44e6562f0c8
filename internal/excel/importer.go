package excel

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/example/fitgram/pkg/models"
	"github.com/xuri/excelize/v2"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath           string // Path to the Excel or CSV file
	IDColumn           string // Column with the numeric id; blank cells get the next free id
	NameColumn         string // Column with the exercise name
	MuscleGroupColumn  string // Column with the muscle group
	DifficultyColumn   string // Column with the difficulty (name or 1-3)
	VideoURLColumn     string // Column with the video link
	ThumbnailURLColumn string // Column with the thumbnail link
	DescriptionColumn  string // Column with the description
	SheetName          string // Name of the sheet to import
	StartRow           int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		IDColumn:           "A",
		NameColumn:         "B",
		MuscleGroupColumn:  "C",
		DifficultyColumn:   "D",
		VideoURLColumn:     "E",
		ThumbnailURLColumn: "F",
		DescriptionColumn:  "G",
		SheetName:          "Sheet1",
		StartRow:           2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Skipped        int
	Errors         []string
	Exercises      []models.Exercise
}

var errSkipRow = errors.New("skipping row")

// ImportExercises reads exercises from an Excel or CSV file. Rows that fail
// validation are reported in the result and left out.
func ImportExercises(config ImportConfig) (*ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))
	if ext == ".csv" {
		return importFromCSV(config)
	}
	return importFromExcel(config)
}

// importFromExcel imports exercises from an Excel file
func importFromExcel(config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := config.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	b := newBuilder()
	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}
		if isBlank(row) {
			continue
		}
		b.result.TotalProcessed++
		if err := b.add(rowData(row, config)); err != nil {
			b.fail(i+1, err)
		}
	}
	return b.finish(), nil
}

// importFromCSV imports exercises from a CSV file. A row with only its first
// cell filled starts a muscle group section for the rows below it.
func importFromCSV(config ImportConfig) (*ImportResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	b := newBuilder()
	rowNum := 0
	currentGroup := ""

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}

		rowNum++
		if rowNum < config.StartRow || isBlank(row) {
			continue
		}

		if group, ok := sectionHeader(row); ok {
			currentGroup = group
			continue
		}

		b.result.TotalProcessed++
		data := rowData(row, config)
		if data.group == "" {
			data.group = currentGroup
		}
		if err := b.add(data); err != nil {
			b.fail(rowNum, err)
		}
	}
	return b.finish(), nil
}

type exerciseData struct {
	id, name, group, difficulty, video, thumbnail, description string
}

func rowData(row []string, config ImportConfig) exerciseData {
	return exerciseData{
		id:          cell(row, config.IDColumn),
		name:        cell(row, config.NameColumn),
		group:       cell(row, config.MuscleGroupColumn),
		difficulty:  cell(row, config.DifficultyColumn),
		video:       cell(row, config.VideoURLColumn),
		thumbnail:   cell(row, config.ThumbnailURLColumn),
		description: cell(row, config.DescriptionColumn),
	}
}

func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func sectionHeader(row []string) (string, bool) {
	first := strings.Trim(strings.TrimSpace(row[0]), "\"")
	if first == "" {
		return "", false
	}
	for _, c := range row[1:] {
		if strings.TrimSpace(c) != "" {
			return "", false
		}
	}
	return first, true
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// builder accumulates rows; a repeated id replaces the earlier row
type builder struct {
	result  *ImportResult
	byID    map[int64]int
	pending []models.Exercise // rows without an id
}

func newBuilder() *builder {
	return &builder{
		result: &ImportResult{Errors: make([]string, 0)},
		byID:   make(map[int64]int),
	}
}

func (b *builder) fail(rowNum int, err error) {
	b.result.Skipped++
	if !errors.Is(err, errSkipRow) {
		b.result.Errors = append(b.result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
	}
}

func (b *builder) add(d exerciseData) error {
	if d.name == "" && d.group == "" {
		return errSkipRow
	}
	if d.name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if d.group == "" {
		return fmt.Errorf("muscle group cannot be empty")
	}

	ex := models.Exercise{
		Name:         d.name,
		MuscleGroup:  d.group,
		Difficulty:   parseDifficulty(d.difficulty),
		VideoURL:     d.video,
		ThumbnailURL: d.thumbnail,
		Description:  d.description,
	}

	if d.id == "" {
		b.pending = append(b.pending, ex)
		b.result.Created++
		return nil
	}
	id, err := strconv.ParseInt(d.id, 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid id %q", d.id)
	}
	ex.ID = id

	if idx, exists := b.byID[id]; exists {
		b.result.Exercises[idx] = ex
		b.result.Updated++
		return nil
	}
	b.byID[id] = len(b.result.Exercises)
	b.result.Exercises = append(b.result.Exercises, ex)
	b.result.Created++
	return nil
}

func (b *builder) finish() *ImportResult {
	var next int64
	for id := range b.byID {
		if id > next {
			next = id
		}
	}
	for _, ex := range b.pending {
		next++
		ex.ID = next
		b.result.Exercises = append(b.result.Exercises, ex)
	}
	return b.result
}

// parseDifficulty accepts a level name or 1-3; anything else is Beginner
func parseDifficulty(s string) models.Difficulty {
	for _, d := range []models.Difficulty{models.DifficultyBeginner, models.DifficultyIntermediate, models.DifficultyAdvanced} {
		if strings.EqualFold(s, string(d)) {
			return d
		}
	}
	switch parseIntOrDefault(s, 1, 3, 1) {
	case 2:
		return models.DifficultyIntermediate
	case 3:
		return models.DifficultyAdvanced
	}
	return models.DifficultyBeginner
}

// WriteExercises saves list as an xlsx file in the default column layout
func WriteExercises(path string, list []models.Exercise) error {
	f := excelize.NewFile()
	defer f.Close()

	config := DefaultImportConfig()
	header := []string{"ID", "Name", "Muscle Group", "Difficulty", "Video URL", "Thumbnail URL", "Description"}
	if err := f.SetSheetRow(config.SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	sorted := append([]models.Exercise(nil), list...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	for i, ex := range sorted {
		row := []interface{}{ex.ID, ex.Name, ex.MuscleGroup, string(ex.Difficulty), ex.VideoURL, ex.ThumbnailURL, ex.Description}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(config.SheetName, axis, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return f.SaveAs(path)
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}

// Helper function to parse integer within a range
func parseIntInRange(s string, min, max int) (int, error) {
	var val int
	if _, err := fmt.Sscanf(s, "%d", &val); err != nil {
		return min, err
	}
	if val < min {
		return min, nil
	}
	if val > max {
		return max, nil
	}
	return val, nil
}

// Helper function to parse integer with default value
func parseIntOrDefault(s string, min, max, defaultVal int) int {
	if val, err := parseIntInRange(s, min, max); err == nil {
		return val
	}
	return defaultVal
}
