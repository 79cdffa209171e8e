package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"vocabdrill/internal/logger"
	"vocabdrill/internal/models"
	"vocabdrill/internal/repository"
	"vocabdrill/internal/validation"
)

// Column order of an import file
const (
	colWord = iota
	colType
	colPronunciation
	colDifficulty
	colDefinition
	colSource
	colTarget
	numColumns
)

// EntryStore receives imported content
type EntryStore interface {
	AddEntry(ctx context.Context, entry repository.ContentEntry) (bool, error)
}

// Result holds the tally of an import run
type Result struct {
	Processed int      `json:"processed"`
	Created   int      `json:"created"`
	Existing  int      `json:"existing"`
	Invalid   int      `json:"invalid"`
	Errors    []string `json:"errors,omitempty"`
}

// Importer loads word / definition / example rows from CSV or XLSX files
type Importer struct {
	store EntryStore
	log   *logger.Logger
}

// New creates an importer that writes to store
func New(store EntryStore, log *logger.Logger) *Importer {
	if log == nil {
		log = logger.NewNop()
	}
	return &Importer{store: store, log: log}
}

// ImportFile imports a .csv file, or any other file as an Excel workbook
// reading rows from sheet.
func (im *Importer) ImportFile(ctx context.Context, path, sheet string) (*Result, error) {
	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV file: %w", err)
		}
		defer f.Close()
		return im.ImportCSV(ctx, f)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows from sheet %s: %w", sheet, err)
	}
	return im.ImportRows(ctx, rows)
}

// ImportCSV imports rows read from r
func (im *Importer) ImportCSV(ctx context.Context, r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return im.ImportRows(ctx, rows)
}

// ImportRows imports already-split rows. A leading header row is skipped.
// Invalid rows are counted and reported; a storage failure stops the run.
func (im *Importer) ImportRows(ctx context.Context, rows [][]string) (*Result, error) {
	result := &Result{Errors: make([]string, 0)}

	for i, row := range rows {
		if i == 0 && isHeader(row) {
			continue
		}
		if isBlank(row) {
			continue
		}
		result.Processed++

		entry, err := parseRow(row)
		if err != nil {
			result.Invalid++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}

		created, err := im.store.AddEntry(ctx, entry)
		if validation.IsValidationError(err) {
			result.Invalid++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		if err != nil {
			return result, fmt.Errorf("row %d: %w", i+1, err)
		}
		if created {
			result.Created++
		} else {
			result.Existing++
		}
	}

	im.log.Info("content import finished",
		"processed", result.Processed,
		"created", result.Created,
		"existing", result.Existing,
		"invalid", result.Invalid)
	return result, nil
}

func parseRow(row []string) (repository.ContentEntry, error) {
	if len(row) < numColumns {
		return repository.ContentEntry{}, fmt.Errorf("expected %d columns, got %d", numColumns, len(row))
	}
	cell := func(i int) string { return strings.TrimSpace(row[i]) }

	tier, err := models.ParseTier(cell(colDifficulty))
	if err != nil {
		return repository.ContentEntry{}, err
	}
	entry := repository.ContentEntry{
		Word:          cell(colWord),
		WordType:      cell(colType),
		Pronunciation: cell(colPronunciation),
		Difficulty:    tier,
		Definition:    cell(colDefinition),
		SourceText:    cell(colSource),
		TargetText:    cell(colTarget),
	}

	switch {
	case entry.Word == "":
		return entry, fmt.Errorf("word is required")
	case entry.SourceText == "":
		return entry, fmt.Errorf("source sentence is required")
	case entry.TargetText == "":
		return entry, fmt.Errorf("target sentence is required")
	}
	return entry, nil
}

func isHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(row[colWord]), "word")
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
