package service

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"examjudge/internal/common/storage"
	appErr "examjudge/pkg/errors"

	"github.com/klauspost/compress/zstd"
)

const archiveContentType = "application/zstd"

// SourceArchiver stores submitted source in object storage, zstd
// compressed, keyed by submission id. Archives are write-once.
type SourceArchiver struct {
	storage storage.ObjectStorage
	bucket  string
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewSourceArchiver creates an archiver writing to the given bucket.
func NewSourceArchiver(store storage.ObjectStorage, bucket string) (*SourceArchiver, error) {
	if store == nil {
		return nil, appErr.New(appErr.InternalServerError).WithMessage("object storage is required")
	}
	if bucket == "" {
		return nil, appErr.New(appErr.InvalidParams).WithMessage("bucket is required")
	}
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder failed: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder failed: %w", err)
	}
	return &SourceArchiver{
		storage: store,
		bucket:  bucket,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Archive compresses and stores the source, returning the object key.
func (a *SourceArchiver) Archive(ctx context.Context, submissionID, language, code string) (string, error) {
	if submissionID == "" {
		return "", appErr.ValidationError("submission_id", "required")
	}
	compressed := a.encoder.EncodeAll([]byte(code), nil)
	key := archiveKey(submissionID, language)
	if err := a.storage.PutObject(ctx, a.bucket, key, bytes.NewReader(compressed), int64(len(compressed)), archiveContentType); err != nil {
		return "", appErr.Wrapf(err, appErr.InternalServerError, "archive source failed")
	}
	return key, nil
}

// Fetch retrieves and decompresses an archived source.
func (a *SourceArchiver) Fetch(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", appErr.ValidationError("archive_key", "required")
	}
	reader, err := a.storage.GetObject(ctx, a.bucket, key)
	if err != nil {
		return "", appErr.Wrapf(err, appErr.InternalServerError, "fetch archive failed")
	}
	defer reader.Close()

	compressed, err := io.ReadAll(reader)
	if err != nil {
		return "", appErr.Wrapf(err, appErr.InternalServerError, "read archive failed")
	}
	raw, err := a.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return "", appErr.Wrapf(err, appErr.InternalServerError, "decompress archive failed")
	}
	return string(raw), nil
}

func archiveKey(submissionID, language string) string {
	return fmt.Sprintf("submissions/%s/source.%s.zst", submissionID, language)
}
