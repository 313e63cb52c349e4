package attachments

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/salonkit/salon-scheduler/internal/config"
)

// ======================================================
// ATTACHMENT STORE (S3)
// ======================================================

type Store interface {
	Put(ctx context.Context, key string, contentType string, data []byte) error
}

type S3Store struct {
	client *s3.Client
	bucket string
}

func NewS3Store(cfg *config.Config) *S3Store {
	client := s3.New(s3.Options{
		Region: cfg.S3Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		),
		BaseEndpoint: endpointOrNil(cfg.S3Endpoint),
		UsePathStyle: cfg.S3Endpoint != "", // MinIO/localstack
	})

	return &S3Store{
		client: client,
		bucket: cfg.S3Bucket,
	}
}

func endpointOrNil(endpoint string) *string {
	if endpoint == "" {
		return nil
	}
	return aws.String(endpoint)
}

func (s *S3Store) Put(ctx context.Context, key string, contentType string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	return err
}

// ObjectKey isola anexos por local e agendamento.
func ObjectKey(locationID uint, appointmentID uint, fileName string) string {
	return fmt.Sprintf(
		"attachments/%d/%d/%d-%s",
		locationID, appointmentID, time.Now().UnixNano(), fileName,
	)
}
