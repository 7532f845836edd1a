package interfaces

import (
	"context"
	"time"

	"github.com/synthworks/tabsynth/pkg/models"
)

// DatasetStore persists datasets as file artifacts (CSV or JSON).
type DatasetStore interface {
	// ReadDataset loads a dataset from a path.
	ReadDataset(ctx context.Context, path string) (*models.Dataset, error)

	// WriteDataset persists a dataset to a path.
	WriteDataset(ctx context.Context, path string, dataset *models.Dataset) error
}

// DatasetCache holds uploaded datasets as process-scoped state with an
// explicit lifecycle: created on upload, destroyed on explicit delete or TTL
// expiry, never an implicit global map.
type DatasetCache interface {
	Put(ctx context.Context, dataset *models.Dataset, ttl time.Duration) error
	Get(ctx context.Context, id string) (*models.Dataset, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
	Close() error
}

// DatasetRegistry records dataset and project metadata in a relational store.
type DatasetRegistry interface {
	Connect(ctx context.Context) error
	Close() error

	CreateProject(ctx context.Context, name string) (int64, error)
	RegisterDataset(ctx context.Context, record *DatasetRecord) error
	ListDatasets(ctx context.Context, projectID int64) ([]*DatasetRecord, error)
	DeleteDataset(ctx context.Context, id string) error
}

// DatasetRecord is the registry row for one stored dataset.
type DatasetRecord struct {
	ID         string    `json:"id"`
	ProjectID  int64     `json:"project_id"`
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	RowCount   int       `json:"row_count"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// ArtifactSink uploads generated artifacts to remote object storage.
type ArtifactSink interface {
	// PutArtifact stores the named artifact bytes and returns its location.
	PutArtifact(ctx context.Context, name string, data []byte) (string, error)
}
