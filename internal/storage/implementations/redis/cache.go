package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/synthworks/tabsynth/pkg/constants"
	"github.com/synthworks/tabsynth/pkg/errors"
	"github.com/synthworks/tabsynth/pkg/models"
)

// CacheConfig contains Redis cache configuration.
type CacheConfig struct {
	Host         string        `json:"host" yaml:"host"`
	Port         int           `json:"port" yaml:"port"`
	Password     string        `json:"password" yaml:"password"`
	Database     int           `json:"database" yaml:"database"`
	KeyPrefix    string        `json:"key_prefix" yaml:"key_prefix"`
	DefaultTTL   time.Duration `json:"default_ttl" yaml:"default_ttl"`
	PoolSize     int           `json:"pool_size" yaml:"pool_size"`
	DialTimeout  time.Duration `json:"dial_timeout" yaml:"dial_timeout"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
}

// DatasetCache stores uploaded datasets in Redis so the copilot endpoints can
// reuse them across requests without re-reading files.
type DatasetCache struct {
	config *CacheConfig
	client *redis.Client
	logger *logrus.Logger

	mu        sync.RWMutex
	connected bool
}

// NewDatasetCache creates a Redis-backed dataset cache.
func NewDatasetCache(config *CacheConfig, logger *logrus.Logger) (*DatasetCache, error) {
	if config == nil {
		return nil, errors.NewValidationError(errors.CodeInvalidInput, "cache config cannot be nil")
	}
	if logger == nil {
		logger = logrus.New()
	}

	if config.Host == "" {
		config.Host = "localhost"
	}
	if config.Port == 0 {
		config.Port = 6379
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "tabsynth:dataset:"
	}
	if config.DefaultTTL == 0 {
		config.DefaultTTL = constants.DefaultCacheTTL
	}
	if config.PoolSize == 0 {
		config.PoolSize = 10
	}
	if config.DialTimeout == 0 {
		config.DialTimeout = 5 * time.Second
	}

	return &DatasetCache{
		config: config,
		logger: logger,
	}, nil
}

// Connect establishes the Redis connection and verifies it with a ping.
func (c *DatasetCache) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	c.client = redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", c.config.Host, c.config.Port),
		Password:     c.config.Password,
		DB:           c.config.Database,
		PoolSize:     c.config.PoolSize,
		DialTimeout:  c.config.DialTimeout,
		ReadTimeout:  c.config.ReadTimeout,
		WriteTimeout: c.config.WriteTimeout,
	})

	if err := c.client.Ping(ctx).Err(); err != nil {
		return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeConnectionFailed, "failed to connect to Redis")
	}

	c.connected = true
	c.logger.WithFields(logrus.Fields{
		"host":     c.config.Host,
		"port":     c.config.Port,
		"database": c.config.Database,
	}).Info("Connected to Redis")

	return nil
}

// Close releases the Redis connection.
func (c *DatasetCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected || c.client == nil {
		return nil
	}

	err := c.client.Close()
	c.connected = false
	c.client = nil
	c.logger.Info("Redis connection closed")
	return err
}

// HealthCheck pings the Redis server.
func (c *DatasetCache) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected || c.client == nil {
		return errors.NewStorageError(errors.CodeConnectionFailed, "not connected to Redis")
	}
	if err := c.client.Ping(ctx).Err(); err != nil {
		return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeConnectionFailed, "Redis health check failed")
	}
	return nil
}

// Put stores a dataset under its ID. A zero TTL uses the configured default.
func (c *DatasetCache) Put(ctx context.Context, dataset *models.Dataset, ttl time.Duration) error {
	if dataset == nil || dataset.ID == "" {
		return errors.NewValidationError(errors.CodeInvalidInput, "dataset must have an ID")
	}

	client, err := c.activeClient()
	if err != nil {
		return err
	}

	if ttl <= 0 {
		ttl = c.config.DefaultTTL
	}

	data, err := json.Marshal(dataset)
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeWriteFailed, "failed to marshal dataset")
	}

	if err := client.Set(ctx, c.key(dataset.ID), data, ttl).Err(); err != nil {
		return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeWriteFailed, "failed to cache dataset")
	}

	c.logger.WithFields(logrus.Fields{
		"dataset_id": dataset.ID,
		"rows":       dataset.RowCount(),
		"ttl":        ttl,
	}).Debug("Dataset cached")

	return nil
}

// Get retrieves a dataset by ID.
func (c *DatasetCache) Get(ctx context.Context, id string) (*models.Dataset, error) {
	client, err := c.activeClient()
	if err != nil {
		return nil, err
	}

	data, err := client.Get(ctx, c.key(id)).Bytes()
	if err == redis.Nil {
		return nil, errors.WrapError(errors.ErrDatasetNotFound, errors.ErrorTypeStorage,
			errors.CodeDatasetNotFound, fmt.Sprintf("dataset not found: %s", id))
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeReadFailed, "failed to read cached dataset")
	}

	var dataset models.Dataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeReadFailed, "failed to unmarshal cached dataset")
	}
	return &dataset, nil
}

// Delete removes a dataset from the cache. Deleting a missing key is not an
// error.
func (c *DatasetCache) Delete(ctx context.Context, id string) error {
	client, err := c.activeClient()
	if err != nil {
		return err
	}
	if err := client.Del(ctx, c.key(id)).Err(); err != nil {
		return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeWriteFailed, "failed to delete cached dataset")
	}
	return nil
}

// List returns the IDs of all cached datasets.
func (c *DatasetCache) List(ctx context.Context) ([]string, error) {
	client, err := c.activeClient()
	if err != nil {
		return nil, err
	}

	var ids []string
	iter := client.Scan(ctx, 0, c.config.KeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, iter.Val()[len(c.config.KeyPrefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeReadFailed, "failed to scan cached datasets")
	}
	return ids, nil
}

func (c *DatasetCache) key(id string) string {
	return c.config.KeyPrefix + id
}

func (c *DatasetCache) activeClient() (*redis.Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.connected || c.client == nil {
		return nil, errors.NewStorageError(errors.CodeConnectionFailed, "not connected to Redis")
	}
	return c.client, nil
}
