package storage

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// PresignedURLExpiry bounds how long a client can sit on a signed URL
// before re-requesting it.
const PresignedURLExpiry = time.Hour

var errNotEnabled = errors.New("S3 storage not enabled")

// PresignClient signs upload and download URLs so file and image field
// payloads move directly between the browser and the bucket.
type PresignClient struct {
	client *s3.PresignClient
}

// NewPresignClient returns nil when storage is not configured; handlers
// translate that into a 503.
func NewPresignClient() *PresignClient {
	if !IsEnabled() {
		return nil
	}
	return &PresignClient{client: s3.NewPresignClient(s3Client)}
}

// GenerateUploadURL signs a single-part upload for a new object key.
func (p *PresignClient) GenerateUploadURL(ctx context.Context, key, contentType string, expiry time.Duration) (string, error) {
	if expiry == 0 {
		expiry = PresignedURLExpiry
	}

	result, err := p.client.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", err
	}
	return result.URL, nil
}

// GenerateDownloadURL signs a direct bucket download, bypassing the media
// proxy for large originals.
func (p *PresignClient) GenerateDownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if expiry == 0 {
		expiry = PresignedURLExpiry
	}

	result, err := p.client.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", err
	}
	return result.URL, nil
}

// MultipartUploadSession identifies an in-flight multipart upload. The
// client holds it between create, per-part signing and complete.
type MultipartUploadSession struct {
	UploadID string `json:"uploadId"`
	Key      string `json:"key"`
}

// PartInfo is one uploaded part as reported back by the client.
type PartInfo struct {
	PartNumber int32  `json:"partNumber"`
	ETag       string `json:"etag"`
}

// CreateMultipartUpload starts a multipart upload for large media files.
func CreateMultipartUpload(ctx context.Context, key, contentType string) (*MultipartUploadSession, error) {
	if !IsEnabled() {
		return nil, errNotEnabled
	}

	result, err := s3Client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, err
	}

	return &MultipartUploadSession{UploadID: *result.UploadId, Key: key}, nil
}

// GetPresignedUploadPartURL signs the upload of one part.
func GetPresignedUploadPartURL(ctx context.Context, key, uploadID string, partNumber int32) (string, error) {
	presigner := NewPresignClient()
	if presigner == nil {
		return "", errNotEnabled
	}

	result, err := presigner.client.PresignUploadPart(ctx, &s3.UploadPartInput{
		Bucket:     aws.String(bucket),
		Key:        aws.String(key),
		UploadId:   aws.String(uploadID),
		PartNumber: aws.Int32(partNumber),
	}, s3.WithPresignExpires(PresignedURLExpiry))
	if err != nil {
		return "", err
	}
	return result.URL, nil
}

// CompleteMultipartUpload assembles the uploaded parts into the object.
func CompleteMultipartUpload(ctx context.Context, key, uploadID string, parts []PartInfo) error {
	if !IsEnabled() {
		return errNotEnabled
	}

	completed := make([]types.CompletedPart, 0, len(parts))
	for _, part := range parts {
		completed = append(completed, types.CompletedPart{
			PartNumber: aws.Int32(part.PartNumber),
			ETag:       aws.String(part.ETag),
		})
	}

	_, err := s3Client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(bucket),
		Key:             aws.String(key),
		UploadId:        aws.String(uploadID),
		MultipartUpload: &types.CompletedMultipartUpload{Parts: completed},
	})
	return err
}

// AbortMultipartUpload discards an unfinished upload and its stored parts.
func AbortMultipartUpload(ctx context.Context, key, uploadID string) error {
	if !IsEnabled() {
		return errNotEnabled
	}

	_, err := s3Client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
	})
	return err
}

// ListParts returns the parts uploaded so far, letting a client resume an
// interrupted upload.
func ListParts(ctx context.Context, key, uploadID string) ([]PartInfo, error) {
	if !IsEnabled() {
		return nil, errNotEnabled
	}

	result, err := s3Client.ListParts(ctx, &s3.ListPartsInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
	})
	if err != nil {
		return nil, err
	}

	parts := make([]PartInfo, len(result.Parts))
	for i, part := range result.Parts {
		parts[i] = PartInfo{PartNumber: *part.PartNumber, ETag: *part.ETag}
	}
	return parts, nil
}
