package file

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthworks/tabsynth/pkg/models"
)

func testDataset() *models.Dataset {
	return &models.Dataset{
		ID:      "ds-1",
		Name:    "customers",
		Columns: []string{"id", "name", "balance", "active"},
		Rows: []models.Row{
			{"id": int64(1), "name": "alice", "balance": 10.5, "active": true},
			{"id": int64(2), "name": "bob", "balance": nil, "active": false},
		},
		CreatedAt: time.Now(),
	}
}

func TestCSVRoundTrip(t *testing.T) {
	store, err := NewDatasetStore(nil, logrus.New())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "customers.csv")
	ctx := context.Background()

	require.NoError(t, store.WriteDataset(ctx, path, testDataset()))

	loaded, err := store.ReadDataset(ctx, path)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "balance", "active"}, loaded.Columns)
	require.Len(t, loaded.Rows, 2)

	assert.Equal(t, int64(1), loaded.Rows[0]["id"])
	assert.Equal(t, "alice", loaded.Rows[0]["name"])
	assert.Equal(t, 10.5, loaded.Rows[0]["balance"])
	assert.Equal(t, true, loaded.Rows[0]["active"])

	// Empty CSV fields come back as nulls, not empty strings.
	assert.Nil(t, loaded.Rows[1]["balance"])
}

func TestJSONRoundTrip(t *testing.T) {
	store, err := NewDatasetStore(nil, logrus.New())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "customers.json")
	ctx := context.Background()

	require.NoError(t, store.WriteDataset(ctx, path, testDataset()))

	loaded, err := store.ReadDataset(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "customers", loaded.Name)
	assert.Len(t, loaded.Rows, 2)
	assert.Equal(t, "alice", loaded.Rows[0]["name"])
}

func TestUnsupportedExtension(t *testing.T) {
	store, err := NewDatasetStore(nil, logrus.New())
	require.NoError(t, err)

	_, err = store.ReadDataset(context.Background(), "data.parquet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported dataset format")

	err = store.WriteDataset(context.Background(), "data.parquet", testDataset())
	require.Error(t, err)
}

func TestReadMissingFile(t *testing.T) {
	store, err := NewDatasetStore(nil, logrus.New())
	require.NoError(t, err)

	_, err = store.ReadDataset(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestParseCSVRaggedRows(t *testing.T) {
	records := [][]string{
		{"a", "b"},
		{"1"},
	}
	dataset, err := ParseCSV("ragged", records)
	require.NoError(t, err)
	require.Len(t, dataset.Rows, 1)
	assert.Equal(t, int64(1), dataset.Rows[0]["a"])
	assert.Nil(t, dataset.Rows[0]["b"])
}

func TestParseCSVEmpty(t *testing.T) {
	_, err := ParseCSV("empty", nil)
	require.Error(t, err)
}
