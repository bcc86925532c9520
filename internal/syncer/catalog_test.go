package syncer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportCatalogCSV(t *testing.T) {
	st := newTestStore(t)

	csv := strings.Join([]string{
		"id,outlet_id,sku,barcode,name,price,active",
		"p1,o1,SKU1,899000111,Coca-Cola 500ml,8500,true",
		"p2,o1,SKU2,,Teh Botol,5000,true",
	}, "\n")

	count, err := ImportCatalogCSV(st, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	products, err := st.GetProducts("o1")
	require.NoError(t, err)
	assert.Len(t, products, 2)

	// imported rows are searchable immediately
	hits, err := st.SearchProducts("o1", "899000111")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "p1", hits[0].ID)
}

func TestImportCatalogCSVEmpty(t *testing.T) {
	st := newTestStore(t)

	_, err := ImportCatalogCSV(st, strings.NewReader("id,outlet_id,sku,barcode,name,price,active\n"))
	assert.Error(t, err)
}
