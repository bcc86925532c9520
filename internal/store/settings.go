package store

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	bolt "go.etcd.io/bbolt"

	"github.com/compazz/posbridge/internal/domain"
)

// StoreSetting writes a key/value setting, last write wins.
func (s *LocalStore) StoreSetting(key, value string) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(&domain.Setting{Key: key, Value: value, UpdatedAt: time.Now()})
	if err != nil {
		return errors.Wrapf(ErrStorageWriteFailed, "encode setting: %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSettings).Put([]byte(key), raw)
	})
	if err != nil {
		return errors.Wrapf(ErrStorageWriteFailed, "store setting: %v", err)
	}
	return nil
}

// GetSetting reads a setting; the bool reports presence. A missing key is
// not an error.
func (s *LocalStore) GetSetting(key string) (string, bool, error) {
	db, err := s.handle()
	if err != nil {
		return "", false, err
	}
	var value string
	found := false
	err = db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketSettings).Get([]byte(key))
		if raw == nil {
			return nil
		}
		var item domain.Setting
		if err := json.Unmarshal(raw, &item); err != nil {
			return err
		}
		value = item.Value
		found = true
		return nil
	})
	if err != nil {
		return "", false, errors.Wrapf(ErrStorageUnavailable, "read setting: %v", err)
	}
	return value, found, nil
}

// GetSettingBool coerces a setting to bool, returning def when absent.
func (s *LocalStore) GetSettingBool(key string, def bool) bool {
	v, ok, err := s.GetSetting(key)
	if err != nil || !ok {
		return def
	}
	return cast.ToBool(v)
}

// GetSettingInt64 coerces a setting to int64, returning def when absent.
func (s *LocalStore) GetSettingInt64(key string, def int64) int64 {
	v, ok, err := s.GetSetting(key)
	if err != nil || !ok {
		return def
	}
	p, err := cast.ToInt64E(v)
	if err != nil {
		return def
	}
	return p
}
