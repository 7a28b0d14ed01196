package memory

import (
	"context"
	"testing"

	domain "github.com/quantium/marketplace-checkout/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveProduct(t *testing.T, repo *CatalogRepository, id string, supply int) {
	t.Helper()
	product, err := domain.NewProduct(id, "Product "+id, decimal.NewFromInt(10), supply, "biz@x.com")
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), product))
}

func TestGetBatchPreservesOrder(t *testing.T) {
	repo := NewCatalogRepository()
	saveProduct(t, repo, "a", 1)
	saveProduct(t, repo, "b", 2)

	products, err := repo.GetBatch(context.Background(), []string{"b", "a"})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "b", products[0].ID)
	assert.Equal(t, "a", products[1].ID)
}

func TestGetBatchMissingID(t *testing.T) {
	repo := NewCatalogRepository()
	saveProduct(t, repo, "a", 1)

	_, err := repo.GetBatch(context.Background(), []string{"a", "ghost"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "ghost", nf.ID)
}

func TestCompareAndSwapSupply(t *testing.T) {
	repo := NewCatalogRepository()
	saveProduct(t, repo, "a", 10)

	require.NoError(t, repo.CompareAndSwapSupply(context.Background(), "a", 10, 7))

	product, err := repo.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, 7, product.Supply)

	// A swap against a stale read loses.
	assert.ErrorIs(t, repo.CompareAndSwapSupply(context.Background(), "a", 10, 4), domain.ErrConflict)
	assert.ErrorIs(t, repo.CompareAndSwapSupply(context.Background(), "ghost", 1, 0), domain.ErrNotFound)
	assert.Error(t, repo.CompareAndSwapSupply(context.Background(), "a", 7, -1))
}

func TestGetReturnsClone(t *testing.T) {
	repo := NewCatalogRepository()
	saveProduct(t, repo, "a", 10)

	product, err := repo.Get(context.Background(), "a")
	require.NoError(t, err)
	product.Supply = 0

	again, err := repo.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, 10, again.Supply)
}
