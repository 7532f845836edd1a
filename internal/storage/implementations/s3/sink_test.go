package s3

import (
	"context"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSinkValidation(t *testing.T) {
	_, err := NewSink(nil, logrus.New())
	require.Error(t, err)

	_, err = NewSink(&SinkConfig{}, logrus.New())
	require.Error(t, err, "bucket is required")

	sink, err := NewSink(&SinkConfig{Bucket: "artifacts"}, logrus.New())
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", sink.config.Region)
}

func TestObjectKey(t *testing.T) {
	sink, err := NewSink(&SinkConfig{Bucket: "artifacts"}, logrus.New())
	require.NoError(t, err)
	assert.Equal(t, "out.csv", sink.ObjectKey("out.csv"))

	sink, err = NewSink(&SinkConfig{Bucket: "artifacts", Prefix: "generated/v1"}, logrus.New())
	require.NoError(t, err)
	assert.Equal(t, "generated/v1/out.csv", sink.ObjectKey("out.csv"))
}

func TestPutArtifactRequiresConnection(t *testing.T) {
	sink, err := NewSink(&SinkConfig{Bucket: "artifacts"}, logrus.New())
	require.NoError(t, err)

	_, err = sink.PutArtifact(context.Background(), "out.csv", []byte("a,b\n1,2\n"))
	require.Error(t, err)

	_, err = sink.PutArtifact(context.Background(), "", nil)
	require.Error(t, err)
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "text/csv", contentTypeFor("out.csv"))
	assert.Equal(t, "application/json", contentTypeFor("stats.JSON"))
	assert.Equal(t, "application/octet-stream", contentTypeFor("model.bin"))
}

func TestSinkIntegration(t *testing.T) {
	if os.Getenv("S3_INTEGRATION") == "" {
		t.Skip("set S3_INTEGRATION to run S3 integration tests")
	}

	sink, err := NewSink(&SinkConfig{
		Bucket:          os.Getenv("S3_BUCKET"),
		Endpoint:        os.Getenv("S3_ENDPOINT"),
		AccessKeyID:     os.Getenv("S3_ACCESS_KEY"),
		SecretAccessKey: os.Getenv("S3_SECRET_KEY"),
		ForcePathStyle:  true,
	}, logrus.New())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, sink.Connect(ctx))
	defer sink.Close()

	location, err := sink.PutArtifact(ctx, "integration/out.csv", []byte("a,b\n1,2\n"))
	require.NoError(t, err)
	assert.Contains(t, location, "s3://")
}
