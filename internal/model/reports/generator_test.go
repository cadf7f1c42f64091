package reports

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	entity "github.com/sv1nxmmvt/fincontrol/internal/entity/ledger"
	"github.com/sv1nxmmvt/fincontrol/internal/model/errs"
	"github.com/sv1nxmmvt/fincontrol/internal/model/storage"
)

type countingStorage struct {
	inner *storage.InMemStorage
	calls int
}

func (c *countingStorage) ListExpenses(ctx context.Context, userID uuid.UUID) ([]entity.ExpenseView, error) {
	c.calls++
	return c.inner.ListExpenses(ctx, userID)
}

type cacheStub struct {
	rows  map[string][]entity.ReportRow
	saves int
}

func newCacheStub() *cacheStub {
	return &cacheStub{rows: make(map[string][]entity.ReportRow)}
}

func (c *cacheStub) key(userID uuid.UUID, period string) string {
	return userID.String() + ":" + period
}

func (c *cacheStub) GetReport(userID uuid.UUID, period string) ([]entity.ReportRow, error) {
	rows, ok := c.rows[c.key(userID, period)]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return rows, nil
}

func (c *cacheStub) CacheReport(userID uuid.UUID, period string, rows []entity.ReportRow) error {
	c.rows[c.key(userID, period)] = rows
	c.saves++
	return nil
}

func seedExpense(t *testing.T, store *storage.InMemStorage, userID, categoryID uuid.UUID, amount string, createdAt time.Time) {
	t.Helper()
	require.NoError(t, store.CreateExpense(context.Background(), entity.ExpenseRecord{
		ID:         uuid.New(),
		UserID:     userID,
		CategoryID: categoryID,
		Amount:     decimal.RequireFromString(amount),
		CreatedAt:  createdAt,
	}))
}

func seedCategory(t *testing.T, store *storage.InMemStorage, userID uuid.UUID, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, store.CreateCategory(context.Background(), entity.CategoryRecord{
		ID:     id,
		UserID: userID,
		Name:   name,
	}))
	return id
}

func Test_Build_GroupsByCategoryOrderedByTotalDesc(t *testing.T) {
	ctx := context.Background()
	store := storage.NewInMemStorage()
	userID := uuid.New()

	food := seedCategory(t, store, userID, "Food")
	transport := seedCategory(t, store, userID, "Transport")
	seedCategory(t, store, userID, "Unused")

	seedExpense(t, store, userID, food, "10.00", time.Now().UTC())
	seedExpense(t, store, userID, food, "20.00", time.Now().UTC())
	seedExpense(t, store, userID, transport, "5.00", time.Now().UTC())

	generator := NewGenerator(store, newCacheStub())
	rows, err := generator.Build(ctx, userID, "")
	require.NoError(t, err)

	// the zero-expense category is omitted
	require.Len(t, rows, 2)
	assert.Equal(t, "Food", rows[0].CategoryName)
	assert.Equal(t, "30.00", rows[0].TotalAmount.StringFixed(2))
	assert.Equal(t, "Transport", rows[1].CategoryName)
	assert.Equal(t, "5.00", rows[1].TotalAmount.StringFixed(2))
}

func Test_Build_EqualTotalsOrderedByName(t *testing.T) {
	ctx := context.Background()
	store := storage.NewInMemStorage()
	userID := uuid.New()

	zoo := seedCategory(t, store, userID, "Zoo")
	bar := seedCategory(t, store, userID, "Bar")
	seedExpense(t, store, userID, zoo, "10.00", time.Now().UTC())
	seedExpense(t, store, userID, bar, "10.00", time.Now().UTC())

	generator := NewGenerator(store, newCacheStub())
	rows, err := generator.Build(ctx, userID, "")
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "Bar", rows[0].CategoryName)
	assert.Equal(t, "Zoo", rows[1].CategoryName)
}

func Test_Build_PeriodFiltersOldExpenses(t *testing.T) {
	ctx := context.Background()
	store := storage.NewInMemStorage()
	userID := uuid.New()

	food := seedCategory(t, store, userID, "Food")
	seedExpense(t, store, userID, food, "10.00", time.Now().UTC())
	seedExpense(t, store, userID, food, "99.00", time.Now().UTC().AddDate(0, 0, -10))

	generator := NewGenerator(store, newCacheStub())

	rows, err := generator.Build(ctx, userID, "week")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "10.00", rows[0].TotalAmount.StringFixed(2))

	rows, err = generator.Build(ctx, userID, "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "109.00", rows[0].TotalAmount.StringFixed(2))
}

func Test_Build_UnknownPeriodIsValidationError(t *testing.T) {
	generator := NewGenerator(&countingStorage{inner: storage.NewInMemStorage()}, newCacheStub())

	_, err := generator.Build(context.Background(), uuid.New(), "decade")
	assert.True(t, errs.IsKind(err, errs.KindValidation))
}

func Test_Build_ServesSecondCallFromCache(t *testing.T) {
	ctx := context.Background()
	store := &countingStorage{inner: storage.NewInMemStorage()}
	userID := uuid.New()

	food := seedCategory(t, store.inner, userID, "Food")
	seedExpense(t, store.inner, userID, food, "10.00", time.Now().UTC())

	cache := newCacheStub()
	generator := NewGenerator(store, cache)

	first, err := generator.Build(ctx, userID, "")
	require.NoError(t, err)
	second, err := generator.Build(ctx, userID, "")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.calls)
	assert.Equal(t, 1, cache.saves)
}

func Test_Periods_IncludesAllFilters(t *testing.T) {
	assert.ElementsMatch(t, []string{"", "week", "month", "year"}, Periods())
}
