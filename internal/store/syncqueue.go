package store

import (
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/compazz/posbridge/internal/domain"
)

// AddToSyncQueue appends a pending item. The bucket sequence number keys
// the record, so iteration order is creation order. Existing items are
// never mutated by an append.
func (s *LocalStore) AddToSyncQueue(opType string, payload interface{}) (uint64, error) {
	db, err := s.handle()
	if err != nil {
		return 0, err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, errors.Wrapf(ErrStorageWriteFailed, "encode sync payload: %v", err)
	}

	var id uint64
	err = db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSyncQueue)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		id = seq
		item := domain.SyncQueueItem{
			ID:        seq,
			Type:      opType,
			Payload:   data,
			Status:    domain.SyncStatusPending,
			Attempts:  0,
			CreatedAt: time.Now(),
		}
		raw, err := json.Marshal(&item)
		if err != nil {
			return err
		}
		return b.Put(u64be(seq), raw)
	})
	if err != nil {
		return 0, errors.Wrapf(ErrStorageWriteFailed, "enqueue %s: %v", opType, err)
	}
	return id, nil
}

// GetSyncQueue returns all queue items oldest first. This ordering is the
// replay contract for the sync worker.
func (s *LocalStore) GetSyncQueue() ([]domain.SyncQueueItem, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	var out []domain.SyncQueueItem
	err = db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketSyncQueue).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var item domain.SyncQueueItem
			if err := json.Unmarshal(v, &item); err == nil {
				out = append(out, item)
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(ErrStorageUnavailable, "read sync queue: %v", err)
	}
	return out, nil
}

// RemoveSyncItem deletes a delivered queue item. Missing ids are a no-op.
func (s *LocalStore) RemoveSyncItem(id uint64) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSyncQueue).Delete(u64be(id))
	})
	if err != nil {
		return errors.Wrapf(ErrStorageWriteFailed, "remove sync item: %v", err)
	}
	return nil
}

// MarkSyncItemFailed records a delivery failure: status failed, attempt
// counter incremented, last error kept for diagnosis.
func (s *LocalStore) MarkSyncItemFailed(id uint64, reason string) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSyncQueue)
		raw := b.Get(u64be(id))
		if raw == nil {
			return nil
		}
		var item domain.SyncQueueItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return err
		}
		item.Status = domain.SyncStatusFailed
		item.Attempts++
		item.LastError = reason
		updated, err := json.Marshal(&item)
		if err != nil {
			return err
		}
		return b.Put(u64be(id), updated)
	})
	if err != nil {
		return errors.Wrapf(ErrStorageWriteFailed, "mark sync item failed: %v", err)
	}
	return nil
}

// ClearSyncQueue wipes the queue. Recovery/reset flows only.
func (s *LocalStore) ClearSyncQueue() error {
	return s.clearBucket(bucketSyncQueue)
}
