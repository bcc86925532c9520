package store

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/btree"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Storage failure taxonomy. Ordinary misses (no such setting, no such
// transaction) are not errors and never map onto these.
var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrStorageWriteFailed = errors.New("storage write failed")
)

var (
	bucketProducts     = []byte("products")
	bucketIdxBarcode   = []byte("idx_barcode")
	bucketIdxSku       = []byte("idx_sku")
	bucketIdxToken     = []byte("idx_token")
	bucketTransactions = []byte("transactions")
	bucketSettings     = []byte("settings")
	bucketSyncQueue    = []byte("sync_queue")
)

var allBuckets = [][]byte{
	bucketProducts,
	bucketIdxBarcode,
	bucketIdxSku,
	bucketIdxToken,
	bucketTransactions,
	bucketSettings,
	bucketSyncQueue,
}

// LocalStore is the durable local-first database for one till: product
// cache, offline transactions, settings and the outbound sync queue.
// bbolt holds an exclusive file lock, so a second process opening the same
// path fails Init instead of silently clobbering data.
type LocalStore struct {
	path string

	mu     sync.Mutex
	db     *bolt.DB
	node   *snowflake.Node
	tokens *btree.BTree
	tokmu  sync.RWMutex
}

// tokenEntry is one (token, product id) pair in the in-memory prefix index.
type tokenEntry struct {
	token string
	id    string
}

func (e tokenEntry) Less(than btree.Item) bool {
	o := than.(tokenEntry)
	if e.token != o.token {
		return e.token < o.token
	}
	return e.id < o.id
}

// NewLocalStore prepares a store for the given database file. nodeID
// feeds the snowflake generator and must be unique per device.
func NewLocalStore(path string, nodeID int64) (*LocalStore, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid store node id")
	}
	return &LocalStore{
		path:   path,
		node:   node,
		tokens: btree.New(8),
	}, nil
}

// NewID issues a device-unique snowflake id. Safe before Init.
func (s *LocalStore) NewID() string {
	return s.node.Generate().String()
}

// Init opens the underlying database and creates the schema. Safe to call
// multiple times; only the first successful call does work. A held file
// lock or unwritable path reports ErrStorageUnavailable.
func (s *LocalStore) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return nil
	}

	db, err := bolt.Open(s.path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return errors.Wrapf(ErrStorageUnavailable, "open %s: %v", s.path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return errors.Wrapf(ErrStorageUnavailable, "create buckets: %v", err)
	}

	s.db = db
	if err := s.rebuildTokenIndex(); err != nil {
		zap.L().Warn("token index rebuild failed", zap.Error(err))
	}
	return nil
}

// Close releases the database file lock.
func (s *LocalStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *LocalStore) handle() (*bolt.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, errors.Wrap(ErrStorageUnavailable, "store not initialized")
	}
	return s.db, nil
}

// rebuildTokenIndex loads the persisted token bucket into the in-memory
// btree used for prefix search.
func (s *LocalStore) rebuildTokenIndex() error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	fresh := btree.New(8)
	err = db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketIdxToken).ForEach(func(k, v []byte) error {
			token, id := splitTokenKey(k)
			if token != "" && id != "" {
				fresh.ReplaceOrInsert(tokenEntry{token: token, id: id})
			}
			return nil
		})
	})
	if err != nil {
		return err
	}
	s.tokmu.Lock()
	s.tokens = fresh
	s.tokmu.Unlock()
	return nil
}

// tokenKey builds the persisted composite key token NUL id. Tokens never
// contain NUL because the tokenizer only keeps printable fragments.
func tokenKey(token, id string) []byte {
	k := make([]byte, 0, len(token)+1+len(id))
	k = append(k, token...)
	k = append(k, 0)
	k = append(k, id...)
	return k
}

func splitTokenKey(k []byte) (token, id string) {
	for i, b := range k {
		if b == 0 {
			return string(k[:i]), string(k[i+1:])
		}
	}
	return string(k), ""
}

func u64be(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
