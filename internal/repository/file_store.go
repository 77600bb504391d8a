package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ocr-ai-service/internal/domain/ocr"
)

const resultSuffix = "_result.json"

// FileStore keeps one pretty-printed JSON file per record under dir.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create results dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Save(ctx context.Context, record *ocr.ResultRecord) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(record); err != nil {
		return "", fmt.Errorf("encode result record: %w", err)
	}

	if err := os.WriteFile(s.path(record.ID), buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write result record: %w", err)
	}
	return record.ID, nil
}

func (s *FileStore) Load(ctx context.Context, id string) (*ocr.ResultRecord, error) {
	data, err := os.ReadFile(s.path(id))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ocr.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("read result record: %w", err)
	}

	var record ocr.ResultRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode result record %s: %w", id, err)
	}
	return &record, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+resultSuffix)
}
