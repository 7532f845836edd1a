package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/synthworks/tabsynth/pkg/errors"
	"github.com/synthworks/tabsynth/pkg/interfaces"
)

// RegistryConfig contains PostgreSQL connection configuration.
type RegistryConfig struct {
	Host            string        `json:"host" yaml:"host"`
	Port            int           `json:"port" yaml:"port"`
	Database        string        `json:"database" yaml:"database"`
	Username        string        `json:"username" yaml:"username"`
	Password        string        `json:"password" yaml:"password"`
	SSLMode         string        `json:"ssl_mode" yaml:"ssl_mode"`
	MaxOpenConns    int           `json:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" yaml:"conn_max_lifetime"`
}

// defaultProjectName is the project that holds datasets registered without an
// explicit project, such as direct API uploads.
const defaultProjectName = "default"

// Registry records projects and their datasets in PostgreSQL.
type Registry struct {
	config *RegistryConfig
	db     *sql.DB
	logger *logrus.Logger

	mu               sync.RWMutex
	connected        bool
	defaultProjectID int64
}

// NewRegistry creates a PostgreSQL-backed dataset registry.
func NewRegistry(config *RegistryConfig, logger *logrus.Logger) (*Registry, error) {
	if config == nil {
		return nil, errors.NewValidationError(errors.CodeInvalidInput, "registry config cannot be nil")
	}
	if logger == nil {
		logger = logrus.New()
	}

	if config.Host == "" {
		config.Host = "localhost"
	}
	if config.Port == 0 {
		config.Port = 5432
	}
	if config.Database == "" {
		config.Database = "tabsynth"
	}
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}
	if config.MaxOpenConns == 0 {
		config.MaxOpenConns = 10
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 5
	}
	if config.ConnMaxLifetime == 0 {
		config.ConnMaxLifetime = 5 * time.Minute
	}

	return &Registry{config: config, logger: logger}, nil
}

// Connect opens the database connection, verifies it, and ensures the schema
// exists.
func (r *Registry) Connect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.connected {
		return nil
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		r.config.Host, r.config.Port, r.config.Database,
		r.config.Username, r.config.Password, r.config.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeConnectionFailed, "failed to open PostgreSQL connection")
	}

	db.SetMaxOpenConns(r.config.MaxOpenConns)
	db.SetMaxIdleConns(r.config.MaxIdleConns)
	db.SetConnMaxLifetime(r.config.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeConnectionFailed, "failed to ping PostgreSQL")
	}

	r.db = db
	if err := r.ensureSchema(ctx); err != nil {
		db.Close()
		r.db = nil
		return err
	}
	if err := r.ensureDefaultProject(ctx); err != nil {
		db.Close()
		r.db = nil
		return err
	}

	r.connected = true
	r.logger.WithFields(logrus.Fields{
		"host":     r.config.Host,
		"port":     r.config.Port,
		"database": r.config.Database,
	}).Info("Connected to PostgreSQL")

	return nil
}

// Close releases the database connection.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.connected || r.db == nil {
		return nil
	}

	err := r.db.Close()
	r.connected = false
	r.db = nil
	r.logger.Info("PostgreSQL connection closed")
	return err
}

// HealthCheck pings the database.
func (r *Registry) HealthCheck(ctx context.Context) error {
	db, err := r.activeDB()
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeConnectionFailed, "PostgreSQL health check failed")
	}
	return nil
}

func (r *Registry) ensureSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE TABLE IF NOT EXISTS datasets (
		id TEXT PRIMARY KEY,
		project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		path TEXT NOT NULL,
		row_count INTEGER NOT NULL DEFAULT 0,
		uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_datasets_project ON datasets(project_id);`

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeStorageError, "failed to create registry schema")
	}
	return nil
}

// ensureDefaultProject resolves (creating if needed) the project that backs
// dataset registrations carrying no project ID. Without it every insert would
// hit the datasets.project_id foreign key.
func (r *Registry) ensureDefaultProject(ctx context.Context) error {
	err := r.db.QueryRowContext(ctx,
		"SELECT id FROM projects WHERE name = $1 ORDER BY id LIMIT 1",
		defaultProjectName).Scan(&r.defaultProjectID)
	if err == sql.ErrNoRows {
		err = r.db.QueryRowContext(ctx,
			"INSERT INTO projects (name) VALUES ($1) RETURNING id",
			defaultProjectName).Scan(&r.defaultProjectID)
	}
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeStorageError, "failed to ensure default project")
	}
	return nil
}

// DefaultProjectID returns the project used for registrations with no
// explicit project. Zero until Connect succeeds.
func (r *Registry) DefaultProjectID() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultProjectID
}

// CreateProject inserts a project and returns its ID.
func (r *Registry) CreateProject(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, errors.NewValidationError(errors.CodeInvalidInput, "project name cannot be empty")
	}

	db, err := r.activeDB()
	if err != nil {
		return 0, err
	}

	var id int64
	err = db.QueryRowContext(ctx,
		"INSERT INTO projects (name) VALUES ($1) RETURNING id", name).Scan(&id)
	if err != nil {
		return 0, errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeWriteFailed, "failed to create project")
	}

	r.logger.WithFields(logrus.Fields{"project_id": id, "name": name}).Info("Project created")
	return id, nil
}

// RegisterDataset records dataset metadata under a project.
func (r *Registry) RegisterDataset(ctx context.Context, record *interfaces.DatasetRecord) error {
	if record == nil || record.ID == "" {
		return errors.NewValidationError(errors.CodeInvalidInput, "dataset record must have an ID")
	}

	db, err := r.activeDB()
	if err != nil {
		return err
	}

	uploadedAt := record.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = time.Now()
	}

	projectID := record.ProjectID
	if projectID == 0 {
		projectID = r.DefaultProjectID()
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO datasets (id, project_id, name, path, row_count, uploaded_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET name = $3, path = $4, row_count = $5`,
		record.ID, projectID, record.Name, record.Path, record.RowCount, uploadedAt)
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeWriteFailed, "failed to register dataset")
	}
	return nil
}

// ListDatasets returns all dataset records for a project, newest first.
func (r *Registry) ListDatasets(ctx context.Context, projectID int64) ([]*interfaces.DatasetRecord, error) {
	db, err := r.activeDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, project_id, name, path, row_count, uploaded_at
		 FROM datasets WHERE project_id = $1 ORDER BY uploaded_at DESC`, projectID)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeReadFailed, "failed to list datasets")
	}
	defer rows.Close()

	var records []*interfaces.DatasetRecord
	for rows.Next() {
		record := &interfaces.DatasetRecord{}
		if err := rows.Scan(&record.ID, &record.ProjectID, &record.Name,
			&record.Path, &record.RowCount, &record.UploadedAt); err != nil {
			return nil, errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeReadFailed, "failed to scan dataset record")
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeReadFailed, "failed to iterate dataset records")
	}
	return records, nil
}

// DeleteDataset removes a dataset record.
func (r *Registry) DeleteDataset(ctx context.Context, id string) error {
	db, err := r.activeDB()
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, "DELETE FROM datasets WHERE id = $1", id)
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeWriteFailed, "failed to delete dataset")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return errors.WrapError(errors.ErrDatasetNotFound, errors.ErrorTypeStorage,
			errors.CodeDatasetNotFound, fmt.Sprintf("dataset not found: %s", id))
	}
	return nil
}

func (r *Registry) activeDB() (*sql.DB, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.connected || r.db == nil {
		return nil, errors.NewStorageError(errors.CodeConnectionFailed, "not connected to PostgreSQL")
	}
	return r.db, nil
}
