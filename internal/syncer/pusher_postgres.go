package syncer

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/compazz/posbridge/internal/domain"
)

// syncOperation is the landing table row for a replayed operation. The
// backend consumes rows from here; (op_type, dedupe_key) makes replays
// idempotent.
type syncOperation struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	OpType    string `gorm:"column:op_type;size:32;uniqueIndex:idx_op_dedupe"`
	DedupeKey string `gorm:"column:dedupe_key;size:64;uniqueIndex:idx_op_dedupe"`
	Payload   string `gorm:"column:payload;type:jsonb"`
	QueuedAt  time.Time
	PushedAt  time.Time
}

func (syncOperation) TableName() string {
	return "pos_sync_operations"
}

// PostgresPusher writes queue items directly into the backend database.
// Used by on-prem deployments where the store and the backend share a
// network and no sync API exists.
type PostgresPusher struct {
	db *gorm.DB
}

func NewPostgresPusher(dsn string) (*PostgresPusher, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Errorf("sync database open: %v", err)
	}
	if err := db.AutoMigrate(&syncOperation{}); err != nil {
		return nil, errors.Errorf("sync database migrate: %v", err)
	}
	return &PostgresPusher{db: db}, nil
}

func (p *PostgresPusher) Name() string { return "postgres" }

func (p *PostgresPusher) Push(ctx context.Context, item domain.SyncQueueItem) error {
	row := syncOperation{
		OpType:    item.Type,
		DedupeKey: dedupeKey(item),
		Payload:   string(item.Payload),
		QueuedAt:  item.CreatedAt,
		PushedAt:  time.Now(),
	}

	err := p.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "op_type"}, {Name: "dedupe_key"}},
			DoNothing: true,
		}).
		Create(&row).Error
	if err != nil {
		return errors.Errorf("sync insert: %v", err)
	}
	return nil
}

// dedupeKey extracts the stable identity of an operation. Transactions
// carry an offline id; everything else falls back to the queue id, which
// is stable for the lifetime of the item.
func dedupeKey(item domain.SyncQueueItem) string {
	var probe struct {
		OfflineID string `json:"offline_id"`
	}
	if err := json.Unmarshal(item.Payload, &probe); err == nil && probe.OfflineID != "" {
		return probe.OfflineID
	}
	return "queue_" + strconv.FormatUint(item.ID, 10)
}
