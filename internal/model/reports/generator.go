package reports

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/now"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	entity "github.com/sv1nxmmvt/fincontrol/internal/entity/ledger"
	"github.com/sv1nxmmvt/fincontrol/internal/logger"
	"github.com/sv1nxmmvt/fincontrol/internal/model/errs"
)

const unknownPeriodMsg = "unknown report period"

// reportFilters maps a period name to the start of the covered window.
// The empty period covers everything.
var reportFilters = map[string]func() time.Time{
	"":      func() time.Time { return time.Time{} },
	"week":  now.BeginningOfWeek,
	"month": now.BeginningOfMonth,
	"year":  now.BeginningOfYear,
}

type expensesStorage interface {
	ListExpenses(ctx context.Context, userID uuid.UUID) ([]entity.ExpenseView, error)
}

type reportCache interface {
	GetReport(userID uuid.UUID, period string) ([]entity.ReportRow, error)
	CacheReport(userID uuid.UUID, period string, rows []entity.ReportRow) error
}

type Generator struct {
	storage expensesStorage
	cache   reportCache
}

func NewGenerator(storage expensesStorage, cache reportCache) *Generator {
	return &Generator{
		storage: storage,
		cache:   cache,
	}
}

// Build groups the user's expenses by category name and sums the amounts,
// one row per category that has at least one expense in the period, ordered
// by total descending. Equal totals order by category name for determinism.
func (g *Generator) Build(ctx context.Context, userID uuid.UUID, period string) ([]entity.ReportRow, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "buildReport")
	defer span.Finish()

	filter, ok := reportFilters[period]
	if !ok {
		return nil, errs.Validation(unknownPeriodMsg)
	}

	if rows, err := g.cache.GetReport(userID, period); err == nil {
		return rows, nil
	}

	expenses, err := g.storage.ListExpenses(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "build report")
	}
	expenses = filterExpensesAfter(expenses, filter())

	rows := groupExpenses(expenses)

	if err = g.cache.CacheReport(userID, period, rows); err != nil {
		logger.Warn("cache report",
			zap.String("userID", userID.String()), zap.Error(err))
	}
	return rows, nil
}

func filterExpensesAfter(exps []entity.ExpenseView, after time.Time) []entity.ExpenseView {
	res := make([]entity.ExpenseView, 0, len(exps))
	for _, exp := range exps {
		if after.Before(exp.CreatedAt) {
			res = append(res, exp)
		}
	}
	return res
}

func groupExpenses(exps []entity.ExpenseView) []entity.ReportRow {
	m := make(map[string]decimal.Decimal)
	for _, exp := range exps {
		m[exp.CategoryName] = m[exp.CategoryName].Add(exp.Amount)
	}

	rows := make([]entity.ReportRow, 0, len(m))
	for cat, total := range m {
		rows = append(rows, entity.ReportRow{CategoryName: cat, TotalAmount: total})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].TotalAmount.Equal(rows[j].TotalAmount) {
			return rows[i].TotalAmount.GreaterThan(rows[j].TotalAmount)
		}
		return rows[i].CategoryName < rows[j].CategoryName
	})
	return rows
}

func Periods() []string {
	res := make([]string, 0, len(reportFilters))
	for k := range reportFilters {
		res = append(res, k)
	}
	return res
}
