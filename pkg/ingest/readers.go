package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/finstmt/fsg/pkg/dataset"
	"github.com/finstmt/fsg/pkg/observability"
)

// ReadCSV reads one trial-balance CSV file into a dataset
func ReadCSV(path string) (*dataset.Dataset, error) {
	f, err := os.Open(path) //nolint:gosec // operator-provided data path
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // ragged rows are tolerated, cells default empty

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	rows, err := parseRecords(records, filepath.Base(path))
	if err != nil {
		return nil, err
	}

	return dataset.New(rows), nil
}

// ReadXLSX reads one trial-balance sheet from an xlsx workbook. An empty
// sheet name selects the workbook's first sheet.
func ReadXLSX(path, sheet string) (*dataset.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only workbook

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheet, path, err)
	}

	rows, err := parseRecords(records, fmt.Sprintf("%s[%s]", filepath.Base(path), sheet))
	if err != nil {
		return nil, err
	}

	return dataset.New(rows), nil
}

// ReadFile dispatches on the file extension
func ReadFile(path string) (*dataset.Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(path)
	case ".xlsx":
		return ReadXLSX(path, "")
	default:
		return nil, fmt.Errorf("unsupported trial balance format %q", filepath.Ext(path))
	}
}

// LoadDir reads every trial-balance file in a data directory into named
// datasets (keyed by file name without extension). Unreadable files are
// logged and skipped.
func LoadDir(dir string, logger logrus.FieldLogger) (map[string]*dataset.Dataset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*dataset.Dataset{}, nil
		}
		return nil, fmt.Errorf("failed to read data directory %s: %w", dir, err)
	}

	datasets := make(map[string]*dataset.Dataset)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".csv" && ext != ".xlsx" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		ds, readErr := ReadFile(path)
		if readErr != nil {
			logger.WithError(readErr).WithField("file", path).Error("Failed to load trial balance")
			continue
		}

		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		datasets[name] = ds
		observability.DatasetRows.WithLabelValues(name).Set(float64(ds.Len()))

		logger.WithField("dataset", name).
			WithField("rows", ds.Len()).
			WithField("years", len(ds.Years())).
			Info("Trial balance loaded")
	}

	observability.DatasetsLoaded.Set(float64(len(datasets)))

	return datasets, nil
}
