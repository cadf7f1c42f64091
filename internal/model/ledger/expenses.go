package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	entity "github.com/sv1nxmmvt/fincontrol/internal/entity/ledger"
	"github.com/sv1nxmmvt/fincontrol/internal/logger"
	"github.com/sv1nxmmvt/fincontrol/internal/model/errs"
	"github.com/sv1nxmmvt/fincontrol/internal/model/reports"
)

const amountNotPositiveMsg = "amount must be greater than zero"

type expenseStorage interface {
	// CreateExpense returns a not-found error when the category does not
	// exist under the same owner. The ownership check runs inside the same
	// transaction as the insert.
	CreateExpense(ctx context.Context, rec entity.ExpenseRecord) error
	ListExpenses(ctx context.Context, userID uuid.UUID) ([]entity.ExpenseView, error)
}

type reportCacheInvalidator interface {
	InvalidateReports(userID uuid.UUID, periods []string) error
}

type Expenses struct {
	storage expenseStorage
	cache   reportCacheInvalidator
	now     func() time.Time
}

func NewExpenses(storage expenseStorage, cache reportCacheInvalidator) *Expenses {
	return &Expenses{
		storage: storage,
		cache:   cache,
		now:     time.Now,
	}
}

// List returns the user's expenses, most recent first.
func (e *Expenses) List(ctx context.Context, userID uuid.UUID) ([]entity.ExpenseView, error) {
	views, err := e.storage.ListExpenses(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list expenses")
	}
	return views, nil
}

func (e *Expenses) Create(ctx context.Context, userID, categoryID uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errs.Validation(amountNotPositiveMsg)
	}

	rec := entity.ExpenseRecord{
		ID:         uuid.New(),
		UserID:     userID,
		CategoryID: categoryID,
		Amount:     amount,
		CreatedAt:  e.now().UTC(),
	}
	if err := e.storage.CreateExpense(ctx, rec); err != nil {
		if errs.IsKind(err, errs.KindNotFound) {
			return err
		}
		return errors.Wrap(err, "create expense")
	}

	// Cached reports are stale now. Failing to drop them must not fail the
	// write that already happened.
	if err := e.cache.InvalidateReports(userID, reports.Periods()); err != nil {
		logger.Warn("invalidate report cache",
			zap.String("userID", userID.String()), zap.Error(err))
	}

	logger.Info("expense created",
		zap.String("userID", userID.String()),
		zap.String("categoryID", categoryID.String()),
		zap.String("amount", amount.StringFixed(2)))
	return nil
}
