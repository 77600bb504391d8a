package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ocr-ai-service/internal/domain/ocr"
)

// PostgresStore keeps the same flat one-record-per-request shape as FileStore,
// as a JSONB row keyed by record id. Upsert keeps the file semantics: a
// colliding id is overwritten, last write wins.
type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type resultRow struct {
	RecordID  string         `gorm:"primaryKey;column:record_id"`
	Filename  string         `gorm:"not null"`
	Strategy  string         `gorm:"not null"`
	Body      datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time
}

func (resultRow) TableName() string {
	return "results"
}

func (s *PostgresStore) Save(ctx context.Context, record *ocr.ResultRecord) (string, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("encode result record: %w", err)
	}

	row := resultRow{
		RecordID:  record.ID,
		Filename:  record.Filename,
		Strategy:  record.Strategy,
		Body:      body,
		CreatedAt: time.Now(),
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "record_id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
	if err != nil {
		return "", fmt.Errorf("save result record: %w", err)
	}
	return record.ID, nil
}

func (s *PostgresStore) Load(ctx context.Context, id string) (*ocr.ResultRecord, error) {
	var row resultRow
	err := s.db.WithContext(ctx).Where("record_id = ?", id).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("%w: %s", ocr.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load result record: %w", err)
	}

	var record ocr.ResultRecord
	if err := json.Unmarshal(row.Body, &record); err != nil {
		return nil, fmt.Errorf("decode result record %s: %w", id, err)
	}
	return &record, nil
}
