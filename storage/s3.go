package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var S3 *s3.Client

var s3Bucket string

// InitializeS3 sets up the client used for listing image uploads. Missing
// configuration downgrades uploads instead of stopping the server; listings
// without images are still sellable.
func InitializeS3() {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "eu-central-1"
	}

	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		log.Printf("Warning: S3 configuration failed, image uploads disabled: %v", err)
		return
	}

	s3Bucket = os.Getenv("S3_BUCKET_NAME")
	if s3Bucket == "" {
		log.Println("Warning: S3_BUCKET_NAME not set, image uploads disabled")
		return
	}

	S3 = s3.NewFromConfig(cfg)
}

// UploadListingImage stores one listing image and returns its public URL.
func UploadListingImage(ctx context.Context, file multipart.File, key, contentType string) (string, error) {
	if S3 == nil {
		return "", fmt.Errorf("s3 is not configured")
	}

	buf := bytes.NewBuffer(nil)
	if _, err := buf.ReadFrom(file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	_, err := S3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s3Bucket, key), nil
}
