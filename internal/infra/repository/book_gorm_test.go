package repository_test

import (
	"context"
	"testing"

	"bookstore/internal/domain/model"
	infraRepo "bookstore/internal/infra/repository"
	repo "bookstore/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedBooks(t *testing.T, r *infraRepo.BookGormRepository, books ...model.Book) {
	t.Helper()
	require.NoError(t, r.Seed(context.Background(), books))
}

func TestBookGorm_FindByID(t *testing.T) {
	r := infraRepo.NewBookGormRepository(openTestDB(t))
	seedBooks(t, r, model.Book{ISBN: "B1", Title: "Go", Author: "A", PublishYear: 2015, Price: 12.5, Stock: 7})

	b, err := r.FindByID(context.Background(), "B1")
	require.NoError(t, err)
	assert.Equal(t, "Go", b.Title)
	assert.Equal(t, int64(7), b.Stock)

	_, err = r.FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestBookGorm_SeedKeepsExisting(t *testing.T) {
	r := infraRepo.NewBookGormRepository(openTestDB(t))
	seedBooks(t, r, model.Book{ISBN: "B1", Title: "Go", Stock: 7})
	_, err := r.UpdateStock(context.Background(), "B1", 2, model.StockReplace)
	require.NoError(t, err)

	seedBooks(t, r, model.Book{ISBN: "B1", Title: "Go", Stock: 7}, model.Book{ISBN: "B2", Title: "Rust", Stock: 1})

	books, err := r.List(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "B1", books[0].ISBN)
	assert.Equal(t, int64(2), books[0].Stock)
}

func TestBookGorm_UpdateStock(t *testing.T) {
	ctx := context.Background()
	r := infraRepo.NewBookGormRepository(openTestDB(t))
	seedBooks(t, r, model.Book{ISBN: "B1", Title: "Go", Stock: 7})

	got, err := r.UpdateStock(ctx, "B1", 3, model.StockAdd)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got)

	got, err = r.UpdateStock(ctx, "B1", 4, model.StockSubtract)
	require.NoError(t, err)
	assert.Equal(t, int64(6), got)

	got, err = r.UpdateStock(ctx, "B1", 1, model.StockReplace)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)

	//下限なし
	got, err = r.UpdateStock(ctx, "B1", 3, model.StockSubtract)
	require.NoError(t, err)
	assert.Equal(t, int64(-2), got)

	_, err = r.UpdateStock(ctx, "nope", 1, model.StockAdd)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

// SQL側の更新式とApplyが同じ結果になる
func TestBookGorm_UpdateStockMatchesApply(t *testing.T) {
	ctx := context.Background()
	r := infraRepo.NewBookGormRepository(openTestDB(t))
	seedBooks(t, r, model.Book{ISBN: "B1", Title: "Go", Stock: 7})

	current := int64(7)
	for _, st := range []model.StockUpdateStrategy{model.StockAdd, model.StockSubtract, model.StockReplace, model.StockSubtract} {
		got, err := r.UpdateStock(ctx, "B1", 4, st)
		require.NoError(t, err)
		current = st.Apply(current, 4)
		assert.Equal(t, current, got, st)
	}
}

func TestBookGorm_DecreaseStockIfEnough(t *testing.T) {
	ctx := context.Background()
	r := infraRepo.NewBookGormRepository(openTestDB(t))
	seedBooks(t, r, model.Book{ISBN: "B1", Title: "Go", Stock: 3})

	stock, ok, err := r.DecreaseStockIfEnough(ctx, "B1", 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1), stock)

	stock, ok, err = r.DecreaseStockIfEnough(ctx, "B1", 2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(1), stock)

	_, _, err = r.DecreaseStockIfEnough(ctx, "nope", 1)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
