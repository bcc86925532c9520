package store

import (
	"strings"

	"github.com/google/btree"
	bolt "go.etcd.io/bbolt"

	"github.com/compazz/posbridge/internal/domain"
)

// searchResultCap bounds the token-prefix candidate set before outlet and
// active filtering are applied.
const searchResultCap = 50

// SearchProducts resolves a till query in strict priority order:
//
//  1. exact barcode match, across all outlets and regardless of the
//     active flag — a scanned barcode must resolve to exactly one item;
//  2. exact SKU match, same short-circuit behavior;
//  3. token-prefix match on the name index, deduplicated, capped at 50
//     candidates, then narrowed to active products of the given outlet.
//
// A hit on an earlier tier suppresses all later tiers.
func (s *LocalStore) SearchProducts(outletID, query string) ([]domain.Product, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, nil
	}

	if p, ok, err := s.lookupByIndex(bucketIdxBarcode, q); err != nil {
		return nil, err
	} else if ok {
		return []domain.Product{p}, nil
	}

	if p, ok, err := s.lookupByIndex(bucketIdxSku, q); err != nil {
		return nil, err
	} else if ok {
		return []domain.Product{p}, nil
	}

	return s.searchByTokenPrefix(outletID, strings.ToLower(q))
}

func (s *LocalStore) lookupByIndex(bucket []byte, key string) (domain.Product, bool, error) {
	db, err := s.handle()
	if err != nil {
		return domain.Product{}, false, err
	}
	var id string
	err = db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucket).Get([]byte(key)); v != nil {
			id = string(v)
		}
		return nil
	})
	if err != nil || id == "" {
		return domain.Product{}, false, err
	}
	return s.GetProduct(id)
}

func (s *LocalStore) searchByTokenPrefix(outletID, prefix string) ([]domain.Product, error) {
	seen := make(map[string]struct{})
	var ids []string

	s.tokmu.RLock()
	s.tokens.AscendGreaterOrEqual(tokenEntry{token: prefix}, func(item btree.Item) bool {
		e := item.(tokenEntry)
		if !strings.HasPrefix(e.token, prefix) {
			return false
		}
		if _, dup := seen[e.id]; !dup {
			seen[e.id] = struct{}{}
			ids = append(ids, e.id)
		}
		return len(ids) < searchResultCap
	})
	s.tokmu.RUnlock()

	var out []domain.Product
	for _, id := range ids {
		p, ok, err := s.GetProduct(id)
		if err != nil {
			return nil, err
		}
		if ok && p.Active && p.OutletID == outletID {
			out = append(out, p)
		}
	}
	return out, nil
}
