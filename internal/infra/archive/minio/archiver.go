package minio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"kase/internal/app/policies"
	domaincheckout "kase/internal/domain/checkout"
)

// Archiver writes confirmed booking records to an S3-compatible bucket as
// JSON, one object per booking. The archive is an audit copy; the booking
// API remains the system of record.
type Archiver struct {
	bucket         string
	client         *minio.Client
	bucketInitOnce sync.Once
	bucketInitErr  error
}

// NewArchiver configures the archive client against the provided endpoint.
func NewArchiver(endpoint string, useSSL bool, accessKey, secretKey, bucket string) (*Archiver, error) {
	cleanEndpoint := strings.TrimSpace(endpoint)
	if cleanEndpoint == "" {
		return nil, errors.New("archive: endpoint is required")
	}
	if bucket = strings.TrimSpace(bucket); bucket == "" {
		return nil, errors.New("archive: bucket is required")
	}

	client, err := minio.New(parseEndpoint(cleanEndpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(accessKey), strings.TrimSpace(secretKey), ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("archive: create client: %w", err)
	}
	return &Archiver{bucket: bucket, client: client}, nil
}

// ArchiveReceipt stores the record under receipts/<booking id>.json.
func (a *Archiver) ArchiveReceipt(ctx context.Context, sessionID string, record domaincheckout.BookingRecord) error {
	if record.ID == "" {
		return errors.New("archive: booking id required")
	}
	if err := a.ensureBucket(ctx); err != nil {
		return err
	}

	payload, err := json.Marshal(struct {
		SessionID string `json:"session_id"`
		domaincheckout.BookingRecord
	}{SessionID: sessionID, BookingRecord: record})
	if err != nil {
		return err
	}

	key := "receipts/" + record.ID + ".json"
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("archive: put receipt: %w", err)
	}
	return nil
}

func (a *Archiver) ensureBucket(ctx context.Context) error {
	a.bucketInitOnce.Do(func() {
		exists, err := a.client.BucketExists(ctx, a.bucket)
		if err != nil {
			a.bucketInitErr = fmt.Errorf("archive: check bucket: %w", err)
			return
		}
		if exists {
			return
		}
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			a.bucketInitErr = fmt.Errorf("archive: create bucket: %w", err)
		}
	})
	return a.bucketInitErr
}

func parseEndpoint(raw string) string {
	if parsed, err := url.Parse(raw); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return raw
}

var _ policies.ArchivePort = (*Archiver)(nil)
