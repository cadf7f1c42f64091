package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	// postgres driver
	_ "github.com/lib/pq"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	auditent "github.com/sv1nxmmvt/fincontrol/internal/entity/audit"
	ledgerent "github.com/sv1nxmmvt/fincontrol/internal/entity/ledger"
	userent "github.com/sv1nxmmvt/fincontrol/internal/entity/user"
	"github.com/sv1nxmmvt/fincontrol/internal/logger"
	"github.com/sv1nxmmvt/fincontrol/internal/model/errs"
)

const dsnTemplate = "user=%s password=%s host=%s dbname=%s sslmode=disable"

const (
	userExistsMsg       = "user already exists"
	categoryExistsMsg   = "category already exists"
	categoryNotFoundMsg = "category not found"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type config interface {
	Host() string
	Username() string
	Password() string
	Database() string
}

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config config) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", fmt.Sprintf(dsnTemplate,
		config.Username(),
		config.Password(),
		config.Host(),
		config.Database()))
	if err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	if err = db.Ping(); err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	if err = runMigrations(db); err != nil {
		return nil, errors.Wrap(err, "cannot migrate database")
	}
	return &PostgresStorage{db}, nil
}

// CreateUser inserts the user unless the login is taken. The existence
// check and the insert share one transaction, so concurrent registrations
// of the same login cannot both pass the check.
func (s *PostgresStorage) CreateUser(ctx context.Context, rec userent.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "create user")
	}
	defer rollback(tx)

	var existing uuid.UUID
	err = psql.Select("id").
		From("users").
		Where(sq.Eq{"login": rec.Login}).
		RunWith(tx).QueryRowContext(ctx).Scan(&existing)
	if err == nil {
		return errs.Conflict(userExistsMsg)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return errors.Wrap(err, "create user")
	}

	_, err = psql.Insert("users").
		Columns("id", "login", "password_hash").
		Values(rec.ID, rec.Login, rec.PasswordHash).
		RunWith(tx).ExecContext(ctx)
	if err != nil {
		return errors.Wrap(err, "create user")
	}
	return tx.Commit()
}

func (s *PostgresStorage) GetUserByLogin(ctx context.Context, login string) (userent.Record, bool, error) {
	var rec userent.Record
	err := psql.Select("id", "login", "password_hash").
		From("users").
		Where(sq.Eq{"login": login}).
		RunWith(s.db).QueryRowContext(ctx).
		Scan(&rec.ID, &rec.Login, &rec.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return userent.Record{}, false, nil
	}
	if err != nil {
		return userent.Record{}, false, errors.Wrap(err, "get user")
	}
	return rec, true, nil
}

func (s *PostgresStorage) ListCategories(ctx context.Context, userID uuid.UUID) ([]ledgerent.CategoryRecord, error) {
	query := psql.Select("id", "user_id", "name").
		From("categories").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at", "id")

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	defer closeRows(rows)

	cats := make([]ledgerent.CategoryRecord, 0)
	for rows.Next() {
		var c ledgerent.CategoryRecord
		if err = rows.Scan(&c.ID, &c.UserID, &c.Name); err != nil {
			return nil, errors.Wrap(err, "list categories")
		}
		cats = append(cats, c)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return cats, nil
}

func (s *PostgresStorage) CreateCategory(ctx context.Context, rec ledgerent.CategoryRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "create category")
	}
	defer rollback(tx)

	var existing uuid.UUID
	err = psql.Select("id").
		From("categories").
		Where(sq.Eq{"user_id": rec.UserID, "name": rec.Name}).
		RunWith(tx).QueryRowContext(ctx).Scan(&existing)
	if err == nil {
		return errs.Conflict(categoryExistsMsg)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return errors.Wrap(err, "create category")
	}

	_, err = psql.Insert("categories").
		Columns("id", "user_id", "name").
		Values(rec.ID, rec.UserID, rec.Name).
		RunWith(tx).ExecContext(ctx)
	if err != nil {
		return errors.Wrap(err, "create category")
	}
	return tx.Commit()
}

// CreateExpense verifies inside the transaction that the category exists
// and belongs to the same user. A category owned by someone else is
// indistinguishable from a missing one.
func (s *PostgresStorage) CreateExpense(ctx context.Context, rec ledgerent.ExpenseRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "create expense")
	}
	defer rollback(tx)

	var categoryID uuid.UUID
	err = psql.Select("id").
		From("categories").
		Where(sq.Eq{"id": rec.CategoryID, "user_id": rec.UserID}).
		RunWith(tx).QueryRowContext(ctx).Scan(&categoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return errs.NotFound(categoryNotFoundMsg)
	}
	if err != nil {
		return errors.Wrap(err, "create expense")
	}

	_, err = psql.Insert("expenses").
		Columns("id", "user_id", "category_id", "amount", "created_at").
		Values(rec.ID, rec.UserID, rec.CategoryID, rec.Amount, rec.CreatedAt).
		RunWith(tx).ExecContext(ctx)
	if err != nil {
		return errors.Wrap(err, "create expense")
	}
	return tx.Commit()
}

func (s *PostgresStorage) ListExpenses(ctx context.Context, userID uuid.UUID) ([]ledgerent.ExpenseView, error) {
	query := psql.Select("e.id", "c.name", "e.amount", "e.created_at").
		From("expenses e").
		Join("categories c ON c.id = e.category_id").
		Where(sq.Eq{"e.user_id": userID}).
		OrderBy("e.created_at DESC")

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list expenses")
	}
	defer closeRows(rows)

	exps := make([]ledgerent.ExpenseView, 0)
	for rows.Next() {
		var e ledgerent.ExpenseView
		if err = rows.Scan(&e.ID, &e.CategoryName, &e.Amount, &e.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "list expenses")
		}
		exps = append(exps, e)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list expenses")
	}
	return exps, nil
}

func (s *PostgresStorage) SaveAuditRecord(ctx context.Context, rec auditent.Record) error {
	query := psql.Insert("audit_log").
		Columns("id", "user_id", "action", "subject", "occurred_at").
		Values(rec.ID, rec.UserID, rec.Action, rec.Subject, rec.OccurredAt)

	_, err := query.RunWith(s.db).ExecContext(ctx)
	return errors.Wrap(err, "save audit record")
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logger.Warn("transaction rollback", zap.Error(err))
	}
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logger.Warn("closing rows", zap.Error(err))
	}
}
