package store

import (
	"time"

	"github.com/google/btree"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/compazz/posbridge/internal/domain"
)

// StoreProducts replaces each product by id in a single read-write
// transaction: the batch fully commits or fully fails. Search tokens and
// the sync timestamp are regenerated for every record, never carried over.
func (s *LocalStore) StoreProducts(products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	db, err := s.handle()
	if err != nil {
		return err
	}

	// btree mutations are collected and applied only after commit so a
	// failed batch leaves the in-memory index untouched.
	type tokenOp struct {
		entry  tokenEntry
		delete bool
	}
	var ops []tokenOp

	now := time.Now()
	err = db.Update(func(tx *bolt.Tx) error {
		pb := tx.Bucket(bucketProducts)
		barcodes := tx.Bucket(bucketIdxBarcode)
		skus := tx.Bucket(bucketIdxSku)
		toks := tx.Bucket(bucketIdxToken)

		for i := range products {
			p := products[i]
			p.NameTokens = Tokenize(p.Name)
			p.LastSync = now

			// Drop stale index entries from a previous version of the
			// same product before writing the replacement.
			if old := pb.Get([]byte(p.ID)); old != nil {
				var prev domain.Product
				if err := json.Unmarshal(old, &prev); err == nil {
					if prev.Barcode != "" && prev.Barcode != p.Barcode {
						if err := barcodes.Delete([]byte(prev.Barcode)); err != nil {
							return err
						}
					}
					if prev.SKU != "" && prev.SKU != p.SKU {
						if err := skus.Delete([]byte(prev.SKU)); err != nil {
							return err
						}
					}
					for _, t := range prev.NameTokens {
						if err := toks.Delete(tokenKey(t, prev.ID)); err != nil {
							return err
						}
						ops = append(ops, tokenOp{entry: tokenEntry{token: t, id: prev.ID}, delete: true})
					}
				}
			}

			raw, err := json.Marshal(&p)
			if err != nil {
				return err
			}
			if err := pb.Put([]byte(p.ID), raw); err != nil {
				return err
			}
			if p.Barcode != "" {
				if err := barcodes.Put([]byte(p.Barcode), []byte(p.ID)); err != nil {
					return err
				}
			}
			if p.SKU != "" {
				if err := skus.Put([]byte(p.SKU), []byte(p.ID)); err != nil {
					return err
				}
			}
			for _, t := range p.NameTokens {
				if err := toks.Put(tokenKey(t, p.ID), []byte(p.ID)); err != nil {
					return err
				}
				ops = append(ops, tokenOp{entry: tokenEntry{token: t, id: p.ID}})
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(ErrStorageWriteFailed, "store products: %v", err)
	}

	s.tokmu.Lock()
	for _, op := range ops {
		if op.delete {
			s.tokens.Delete(op.entry)
		} else {
			s.tokens.ReplaceOrInsert(op.entry)
		}
	}
	s.tokmu.Unlock()
	return nil
}

// GetProducts returns all active products for an outlet. Ordering is
// storage-native (product id order).
func (s *LocalStore) GetProducts(outletID string) ([]domain.Product, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	var out []domain.Product
	err = db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketProducts).ForEach(func(k, v []byte) error {
			var p domain.Product
			if err := json.Unmarshal(v, &p); err != nil {
				return nil
			}
			if p.Active && p.OutletID == outletID {
				out = append(out, p)
			}
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrapf(ErrStorageUnavailable, "read products: %v", err)
	}
	return out, nil
}

// GetProduct loads a single product by id; the bool reports existence.
func (s *LocalStore) GetProduct(id string) (domain.Product, bool, error) {
	db, err := s.handle()
	if err != nil {
		return domain.Product{}, false, err
	}
	var p domain.Product
	found := false
	err = db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketProducts).Get([]byte(id))
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return domain.Product{}, false, errors.Wrapf(ErrStorageUnavailable, "read product: %v", err)
	}
	return p, found, nil
}

// ClearProducts wipes the product cache and all of its indexes. Only used
// by full cache reset flows; normal operation never deletes products.
func (s *LocalStore) ClearProducts() error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketProducts, bucketIdxBarcode, bucketIdxSku, bucketIdxToken} {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(ErrStorageWriteFailed, "clear products: %v", err)
	}
	s.tokmu.Lock()
	s.tokens = btree.New(8)
	s.tokmu.Unlock()
	return nil
}
