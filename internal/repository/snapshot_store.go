package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"

	"stationwatch/internal/models"
	"stationwatch/internal/snapshot"
)

// SnapshotS3 keeps one JSON cache blob per account in an S3-compatible
// bucket, keyed by the lowercased account name.
type SnapshotS3 struct {
	client *minio.Client
	bucket string
}

func NewSnapshotS3(client *minio.Client, bucket string) *SnapshotS3 {
	return &SnapshotS3{client: client, bucket: bucket}
}

var _ SnapshotStore = (*SnapshotS3)(nil)

func objectKey(account string) string {
	return fmt.Sprintf("snapshots/%s.json", strings.ToLower(account))
}

// Load reads and normalizes the account's cache image. A missing object is
// an empty image: the account simply has no history yet.
func (s *SnapshotS3) Load(ctx context.Context, account string) (map[string]models.StationSnapshot, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectKey(account), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get snapshot blob for %q: %w", account, err)
	}
	defer func() { _ = obj.Close() }()

	data, err := io.ReadAll(obj)
	if err != nil {
		var respErr minio.ErrorResponse
		if errors.As(err, &respErr) && respErr.Code == "NoSuchKey" {
			return map[string]models.StationSnapshot{}, nil
		}
		return nil, fmt.Errorf("read snapshot blob for %q: %w", account, err)
	}

	image, err := snapshot.ParseCache(data)
	if err != nil {
		return nil, fmt.Errorf("parse snapshot blob for %q: %w", account, err)
	}
	return image, nil
}

// Save replaces the account's cache blob with the new image.
func (s *SnapshotS3) Save(ctx context.Context, account string, image map[string]models.StationSnapshot) error {
	data, err := snapshot.EncodeCache(image)
	if err != nil {
		return fmt.Errorf("encode snapshot blob for %q: %w", account, err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, objectKey(account),
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("put snapshot blob for %q: %w", account, err)
	}
	return nil
}
