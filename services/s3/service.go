// Package s3 is the image-upload collaborator: posts and profiles reference
// images by the URL this service returns.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

type S3Service struct {
	client *s3.Client
	bucket string
	base   string
}

func NewS3Service(cfg *S3ClientConfig) (*S3Service, error) {
	configAWS, err := NewS3Config(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(configAWS)
	return &S3Service{
		client: client,
		bucket: cfg.Bucket,
		base:   fmt.Sprintf("%s/%s", cfg.Endpoint, cfg.Bucket),
	}, nil
}

// UploadImage stores the image under a fresh key and returns its public URL.
func (s *S3Service) UploadImage(ctx context.Context, content []byte, contentType string) (string, error) {
	key := fmt.Sprintf("images/%s", uuid.NewString())

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	log.Printf("S3Service: Uploaded image %s to bucket %s", key, s.bucket)
	return fmt.Sprintf("%s/%s", s.base, key), nil
}

func (s *S3Service) DeleteImage(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
