package s3

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/sirupsen/logrus"

	"github.com/synthworks/tabsynth/pkg/errors"
)

// SinkConfig contains S3 artifact sink configuration. Endpoint supports
// S3-compatible stores such as MinIO.
type SinkConfig struct {
	Region          string `json:"region" yaml:"region"`
	Bucket          string `json:"bucket" yaml:"bucket"`
	Prefix          string `json:"prefix" yaml:"prefix"`
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
	ForcePathStyle  bool   `json:"force_path_style" yaml:"force_path_style"`
}

// Sink uploads generated dataset artifacts to an S3 bucket.
type Sink struct {
	config *SinkConfig
	client *s3.S3
	logger *logrus.Logger

	mu        sync.RWMutex
	connected bool
}

// NewSink creates an S3 artifact sink.
func NewSink(config *SinkConfig, logger *logrus.Logger) (*Sink, error) {
	if config == nil {
		return nil, errors.NewValidationError(errors.CodeInvalidInput, "sink config cannot be nil")
	}
	if config.Bucket == "" {
		return nil, errors.NewValidationError(errors.CodeMissingField, "S3 bucket is required")
	}
	if logger == nil {
		logger = logrus.New()
	}
	if config.Region == "" {
		config.Region = "us-east-1"
	}

	return &Sink{config: config, logger: logger}, nil
}

// Connect creates the AWS session and verifies bucket access.
func (s *Sink) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return nil
	}

	awsConfig := &aws.Config{
		Region: aws.String(s.config.Region),
	}
	if s.config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(s.config.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(s.config.ForcePathStyle)
	}
	if s.config.AccessKeyID != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(
			s.config.AccessKeyID, s.config.SecretAccessKey, "")
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeConnectionFailed, "failed to create AWS session")
	}

	client := s3.New(sess)
	_, err = client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.config.Bucket),
	})
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeConnectionFailed,
			fmt.Sprintf("failed to access S3 bucket: %s", s.config.Bucket))
	}

	s.client = client
	s.connected = true
	s.logger.WithFields(logrus.Fields{
		"bucket": s.config.Bucket,
		"region": s.config.Region,
	}).Info("Connected to S3")

	return nil
}

// Close releases the client. The AWS session itself holds no connections.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = nil
	s.connected = false
	return nil
}

// PutArtifact uploads artifact bytes under the configured prefix and returns
// the s3:// location.
func (s *Sink) PutArtifact(ctx context.Context, name string, data []byte) (string, error) {
	if name == "" {
		return "", errors.NewValidationError(errors.CodeInvalidInput, "artifact name cannot be empty")
	}

	s.mu.RLock()
	client := s.client
	connected := s.connected
	s.mu.RUnlock()

	if !connected || client == nil {
		return "", errors.NewStorageError(errors.CodeConnectionFailed, "not connected to S3")
	}

	key := s.ObjectKey(name)
	_, err := client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentTypeFor(name)),
	})
	if err != nil {
		return "", errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeWriteFailed,
			fmt.Sprintf("failed to upload artifact: %s", key))
	}

	location := fmt.Sprintf("s3://%s/%s", s.config.Bucket, key)
	s.logger.WithFields(logrus.Fields{
		"location": location,
		"bytes":    len(data),
	}).Info("Artifact uploaded")

	return location, nil
}

// ObjectKey builds the bucket key for an artifact name.
func (s *Sink) ObjectKey(name string) string {
	if s.config.Prefix == "" {
		return name
	}
	return path.Join(s.config.Prefix, name)
}

func contentTypeFor(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
