package file

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/synthworks/tabsynth/pkg/errors"
	"github.com/synthworks/tabsynth/pkg/models"
)

// DatasetStoreConfig contains configuration for file-based dataset storage.
type DatasetStoreConfig struct {
	BasePath   string `json:"base_path" yaml:"base_path"`
	CreateDirs bool   `json:"create_dirs" yaml:"create_dirs"`
}

// DatasetStore reads and writes tabular datasets as CSV or JSON files. It is
// the persistence layer for both original reference data and generated
// output artifacts.
type DatasetStore struct {
	config *DatasetStoreConfig
	logger *logrus.Logger
}

// NewDatasetStore creates a file-backed dataset store.
func NewDatasetStore(config *DatasetStoreConfig, logger *logrus.Logger) (*DatasetStore, error) {
	if config == nil {
		config = &DatasetStoreConfig{CreateDirs: true}
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &DatasetStore{config: config, logger: logger}, nil
}

// ReadDataset loads a dataset from a path, dispatching on extension.
func (s *DatasetStore) ReadDataset(ctx context.Context, path string) (*models.Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return s.readCSV(path)
	case ".json":
		return s.readJSON(path)
	default:
		return nil, errors.NewValidationError(errors.CodeInvalidFormat,
			fmt.Sprintf("unsupported dataset format: %s", filepath.Ext(path)))
	}
}

// WriteDataset persists a dataset to a path, dispatching on extension.
func (s *DatasetStore) WriteDataset(ctx context.Context, path string, dataset *models.Dataset) error {
	if dataset == nil {
		return errors.NewValidationError(errors.CodeInvalidInput, "dataset cannot be nil")
	}

	dir := filepath.Dir(path)
	if s.config.CreateDirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeWriteFailed,
				fmt.Sprintf("failed to create directory: %s", dir))
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return s.writeCSV(path, dataset)
	case ".json":
		return s.writeJSON(path, dataset)
	default:
		return errors.NewValidationError(errors.CodeInvalidFormat,
			fmt.Sprintf("unsupported dataset format: %s", filepath.Ext(path)))
	}
}

// ParseCSV builds a dataset from already-open CSV content, used by the upload
// endpoint. The first record is the header; fields are normalized into typed
// values so equality semantics match across datasets.
func ParseCSV(name string, records [][]string) (*models.Dataset, error) {
	if len(records) == 0 {
		return nil, errors.NewValidationError(errors.CodeInvalidInput, "CSV content is empty")
	}

	header := records[0]
	if len(header) == 0 {
		return nil, errors.WrapError(errors.ErrNoColumns, errors.ErrorTypeValidation, errors.CodeInvalidInput, "CSV has no header columns")
	}

	dataset := &models.Dataset{
		ID:        uuid.NewString(),
		Name:      name,
		Columns:   header,
		CreatedAt: time.Now(),
	}

	for _, record := range records[1:] {
		row := make(models.Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = models.ParseValue(record[i])
			} else {
				row[col] = nil
			}
		}
		dataset.Rows = append(dataset.Rows, row)
	}

	return dataset, nil
}

func (s *DatasetStore) readCSV(path string) (*models.Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeReadFailed,
			fmt.Sprintf("failed to open dataset: %s", path))
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeReadFailed, "failed to read CSV")
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	dataset, err := ParseCSV(name, records)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"path":    path,
		"rows":    dataset.RowCount(),
		"columns": len(dataset.Columns),
	}).Info("Dataset loaded")

	return dataset, nil
}

func (s *DatasetStore) readJSON(path string) (*models.Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeReadFailed,
			fmt.Sprintf("failed to open dataset: %s", path))
	}
	defer file.Close()

	var dataset models.Dataset
	if err := json.NewDecoder(file).Decode(&dataset); err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeReadFailed, "failed to decode JSON dataset")
	}
	return &dataset, nil
}

func (s *DatasetStore) writeCSV(path string, dataset *models.Dataset) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeWriteFailed,
			fmt.Sprintf("failed to create file: %s", path))
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(dataset.Columns); err != nil {
		return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeWriteFailed, "failed to write CSV header")
	}

	record := make([]string, len(dataset.Columns))
	for _, row := range dataset.Rows {
		for i, col := range dataset.Columns {
			record[i] = models.FormatValue(row[col])
		}
		if err := writer.Write(record); err != nil {
			return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeWriteFailed, "failed to write CSV row")
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeWriteFailed, "failed to flush CSV")
	}

	s.logger.WithFields(logrus.Fields{
		"path": path,
		"rows": dataset.RowCount(),
	}).Info("Dataset written")

	return nil
}

func (s *DatasetStore) writeJSON(path string, dataset *models.Dataset) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeWriteFailed,
			fmt.Sprintf("failed to create file: %s", path))
	}
	defer file.Close()

	// Rows marshal as column->value objects; the schema keeps column order.
	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(dataset); err != nil {
		return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeWriteFailed, "failed to encode JSON dataset")
	}
	return nil
}
