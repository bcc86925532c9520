package syncer

import (
	"context"
	"io"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/guonaihong/gout"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/compazz/posbridge/internal/domain"
	"github.com/compazz/posbridge/internal/store"
)

const catalogFetchTimeout = 30 * time.Second

// CatalogRefresher pulls the product catalog from the backend into the
// local store so searches keep working offline. A refresh replaces
// nothing on failure; the previous catalog stays usable.
type CatalogRefresher struct {
	store    *store.LocalStore
	endpoint string
	apiKey   string
}

func NewCatalogRefresher(st *store.LocalStore, endpoint, apiKey string) *CatalogRefresher {
	return &CatalogRefresher{store: st, endpoint: endpoint, apiKey: apiKey}
}

// Refresh downloads the full catalog and upserts it in one pass.
func (c *CatalogRefresher) Refresh(ctx context.Context) (int, error) {
	if c.endpoint == "" {
		return 0, errors.New("catalog endpoint not configured")
	}

	var code int
	var products []domain.Product
	err := gout.GET(c.endpoint).
		WithContext(ctx).
		SetHeader(gout.H{"X-Api-Key": c.apiKey}).
		SetTimeout(catalogFetchTimeout).
		Code(&code).
		BindJSON(&products).
		Do()
	if err != nil {
		return 0, errors.Errorf("catalog fetch: %v", err)
	}
	if code != 200 {
		return 0, errors.Errorf("catalog fetch: backend returned %d", code)
	}

	if err := c.store.StoreProducts(products); err != nil {
		return 0, err
	}

	zap.L().Info("catalog refreshed", zap.Int("products", len(products)))
	return len(products), nil
}

// ImportCatalogCSV loads products from a CSV export, the manual path for
// sites with no backend connectivity at all. Column headers must match
// the csv tags on Product.
func ImportCatalogCSV(st *store.LocalStore, r io.Reader) (int, error) {
	var products []domain.Product
	if err := gocsv.Unmarshal(r, &products); err != nil {
		return 0, errors.Errorf("catalog csv parse: %v", err)
	}
	if len(products) == 0 {
		return 0, errors.New("catalog csv contains no rows")
	}
	if err := st.StoreProducts(products); err != nil {
		return 0, err
	}
	zap.L().Info("catalog imported from csv", zap.Int("products", len(products)))
	return len(products), nil
}
