package catalog_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kasir-scan/internal/catalog"
)

func TestDefaultCatalogLookup(t *testing.T) {
	cat := catalog.Default()
	p, err := cat.Lookup(context.Background(), "8905639296492")
	require.NoError(t, err)
	require.Equal(t, "Technosports T-Shirt", p.Title)
	require.True(t, p.UnitPrice.Equal(decimal.NewFromInt(425)))

	p, err = cat.Lookup(context.Background(), "9D3P0PA#ACJ")
	require.NoError(t, err)
	require.Equal(t, "HP Energy Star Package", p.Title)

	_, err = cat.Lookup(context.Background(), "000000")
	require.True(t, errors.Is(err, catalog.ErrNotFound))
	require.Equal(t, 6, cat.Len())
}

func TestStaticListKeepsRegistrationOrder(t *testing.T) {
	cat, err := catalog.NewStatic([]catalog.Entry{
		{Code: "b", Product: catalog.Product{Title: "B", UnitPrice: decimal.NewFromInt(2)}},
		{Code: "a", Product: catalog.Product{Title: "A", UnitPrice: decimal.NewFromInt(1)}},
		{Code: "b", Product: catalog.Product{Title: "B2", UnitPrice: decimal.NewFromInt(3)}},
	})
	require.NoError(t, err)
	entries, err := cat.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "b", entries[0].Code)
	require.Equal(t, "B2", entries[0].Product.Title)
	require.Equal(t, "a", entries[1].Code)
}

func TestNewStaticRejectsInvalidEntries(t *testing.T) {
	_, err := catalog.NewStatic([]catalog.Entry{{Code: "", Product: catalog.Product{Title: "x"}}})
	require.Error(t, err)
	_, err = catalog.NewStatic([]catalog.Entry{{Code: "x", Product: catalog.Product{UnitPrice: decimal.NewFromInt(-1)}}})
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	body := `{
  "222": {"title": "Shorts", "unitPrice": "349.50", "description": "Quick dry"},
  "111": {"title": "Cap", "unitPrice": 199, "description": "Adjustable"}
}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cat, err := catalog.LoadFile(path)
	require.NoError(t, err)
	p, err := cat.Lookup(context.Background(), "222")
	require.NoError(t, err)
	require.Equal(t, "349.5", p.UnitPrice.String())

	entries, err := cat.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, "111", entries[0].Code)

	_, err = catalog.LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
