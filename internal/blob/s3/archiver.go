package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mshenfield/cleansweep/internal/domain"
)

// Archiver implements domain.SnapshotArchiver, storing each poll's coarse
// snapshot as a timestamped JSON object under snapshots/YYYY/MM/DD/.
type Archiver struct {
	client *Client
	prefix string
}

// NewArchiver creates an Archiver writing under the given key prefix
// ("snapshots" when empty).
func NewArchiver(client *Client, prefix string) *Archiver {
	if prefix == "" {
		prefix = "snapshots"
	}
	return &Archiver{client: client, prefix: prefix}
}

// Archive uploads the snapshot set as one JSON object. Decimal fields
// serialize as strings, so archived values stay exact.
func (a *Archiver) Archive(ctx context.Context, takenAt time.Time, snapshots []domain.TokenSnapshot) error {
	body, err := json.Marshal(snapshots)
	if err != nil {
		return fmt.Errorf("s3blob: marshal snapshot: %w", err)
	}

	key := fmt.Sprintf("%s/%s/%s.json",
		a.prefix,
		takenAt.UTC().Format("2006/01/02"),
		takenAt.UTC().Format("150405.000000000"),
	)

	_, err = a.client.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.client.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3blob: put snapshot %s: %w", key, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.SnapshotArchiver = (*Archiver)(nil)
