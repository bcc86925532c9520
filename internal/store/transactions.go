package store

import (
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/compazz/posbridge/internal/domain"
)

// StoreOfflineTransaction persists a sale captured while offline. A fresh
// offline id is generated unconditionally (always an insert, never an
// overwrite) and returned to the caller for later reconciliation.
func (s *LocalStore) StoreOfflineTransaction(txn domain.OfflineTransaction) (string, error) {
	db, err := s.handle()
	if err != nil {
		return "", err
	}

	txn.OfflineID = "offline_" + s.node.Generate().String()
	txn.Status = domain.TransactionStatusOffline
	txn.CreatedAt = time.Now()

	raw, err := json.Marshal(&txn)
	if err != nil {
		return "", errors.Wrapf(ErrStorageWriteFailed, "encode transaction: %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTransactions).Put([]byte(txn.OfflineID), raw)
	})
	if err != nil {
		return "", errors.Wrapf(ErrStorageWriteFailed, "store transaction: %v", err)
	}
	return txn.OfflineID, nil
}

// GetOfflineTransactions returns every stored offline transaction.
func (s *LocalStore) GetOfflineTransactions() ([]domain.OfflineTransaction, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	var out []domain.OfflineTransaction
	err = db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTransactions).ForEach(func(k, v []byte) error {
			var t domain.OfflineTransaction
			if err := json.Unmarshal(v, &t); err == nil {
				out = append(out, t)
			}
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrapf(ErrStorageUnavailable, "read transactions: %v", err)
	}
	return out, nil
}

// RemoveOfflineTransaction deletes one transaction; a missing id is a
// no-op, not an error.
func (s *LocalStore) RemoveOfflineTransaction(offlineID string) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTransactions).Delete([]byte(offlineID))
	})
	if err != nil {
		return errors.Wrapf(ErrStorageWriteFailed, "remove transaction: %v", err)
	}
	return nil
}

// MarkTransactionSynced flips a transaction to synced once the backend
// has accepted it. Missing ids are ignored.
func (s *LocalStore) MarkTransactionSynced(offlineID string) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTransactions)
		raw := b.Get([]byte(offlineID))
		if raw == nil {
			return nil
		}
		var t domain.OfflineTransaction
		if err := json.Unmarshal(raw, &t); err != nil {
			return err
		}
		t.Status = domain.TransactionStatusSynced
		updated, err := json.Marshal(&t)
		if err != nil {
			return err
		}
		return b.Put([]byte(offlineID), updated)
	})
	if err != nil {
		return errors.Wrapf(ErrStorageWriteFailed, "mark synced: %v", err)
	}
	return nil
}

// ClearOfflineTransactions deletes all offline transactions.
func (s *LocalStore) ClearOfflineTransactions() error {
	return s.clearBucket(bucketTransactions)
}

// PruneSyncedTransactions removes synced transactions created before the
// cutoff. Returns the number pruned.
func (s *LocalStore) PruneSyncedTransactions(before time.Time) (int, error) {
	db, err := s.handle()
	if err != nil {
		return 0, err
	}
	pruned := 0
	err = db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTransactions)
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var t domain.OfflineTransaction
			if err := json.Unmarshal(v, &t); err != nil {
				continue
			}
			if t.Status == domain.TransactionStatusSynced && t.CreatedAt.Before(before) {
				if err := c.Delete(); err != nil {
					return err
				}
				pruned++
			}
		}
		return nil
	})
	if err != nil {
		return 0, errors.Wrapf(ErrStorageWriteFailed, "prune transactions: %v", err)
	}
	return pruned, nil
}

func (s *LocalStore) clearBucket(name []byte) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(name); err != nil {
			return err
		}
		_, err := tx.CreateBucket(name)
		return err
	})
	if err != nil {
		return errors.Wrapf(ErrStorageWriteFailed, "clear bucket %s: %v", name, err)
	}
	return nil
}
