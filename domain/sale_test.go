package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextSaleID(t *testing.T) {
	assert.Equal(t, "AS1", NextSaleID(""))
	assert.Equal(t, "AS2", NextSaleID("AS1"))
	assert.Equal(t, "AS100", NextSaleID("AS99"))
	assert.Equal(t, "AS1", NextSaleID("legacy-id"))
	assert.Equal(t, "AS1", NextSaleID("AS"))
}

func TestSaleItemListUnmarshalArray(t *testing.T) {
	var items SaleItemList
	raw := `[{"productId":3,"name":"Mouse","sku":"M-1","quantity":2,"price":55.5}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &items))
	require.Len(t, items, 1)
	assert.Equal(t, int64(3), items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 55.5, items[0].UnitPrice)
}

func TestSaleItemListUnmarshalStringEncoded(t *testing.T) {
	// Older rows stored the array double-encoded as a JSON string.
	var items SaleItemList
	raw := `"[{\"productId\":7,\"name\":\"Cable\",\"quantity\":1,\"price\":10}]"`
	require.NoError(t, json.Unmarshal([]byte(raw), &items))
	require.Len(t, items, 1)
	assert.Equal(t, int64(7), items[0].ProductID)
	assert.Equal(t, "Cable", items[0].Name)
}

func TestSaleItemListUnmarshalRejectsGarbage(t *testing.T) {
	var items SaleItemList
	assert.Error(t, json.Unmarshal([]byte(`"not json"`), &items))
	assert.Error(t, json.Unmarshal([]byte(`42`), &items))
}

func TestSaleItemListScan(t *testing.T) {
	var items SaleItemList
	require.NoError(t, items.Scan([]byte(`[{"productId":1,"quantity":4,"price":2}]`)))
	require.Len(t, items, 1)

	require.NoError(t, items.Scan(nil))
	assert.Nil(t, items)
}

func TestSaleItemListValueNilBecomesEmptyArray(t *testing.T) {
	var items SaleItemList
	v, err := items.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", string(v.([]byte)))
}
