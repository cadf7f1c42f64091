// Package ledger implements the per-user category and expense operations.
// Every operation is scoped to the user id it is given; the scoping lives
// here and in storage, not in the transport layer.
package ledger

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	entity "github.com/sv1nxmmvt/fincontrol/internal/entity/ledger"
	"github.com/sv1nxmmvt/fincontrol/internal/logger"
	"github.com/sv1nxmmvt/fincontrol/internal/model/errs"
)

const categoryNameRequiredMsg = "category name is required"

type categoryStorage interface {
	ListCategories(ctx context.Context, userID uuid.UUID) ([]entity.CategoryRecord, error)
	// CreateCategory returns a conflict error when the user already has a
	// category with the same name. Check and insert are atomic.
	CreateCategory(ctx context.Context, rec entity.CategoryRecord) error
}

type Categories struct {
	storage categoryStorage
}

func NewCategories(storage categoryStorage) *Categories {
	return &Categories{storage: storage}
}

func (c *Categories) List(ctx context.Context, userID uuid.UUID) ([]entity.CategoryView, error) {
	recs, err := c.storage.ListCategories(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}

	views := make([]entity.CategoryView, 0, len(recs))
	for _, rec := range recs {
		views = append(views, entity.CategoryView{ID: rec.ID, Name: rec.Name})
	}
	return views, nil
}

func (c *Categories) Create(ctx context.Context, userID uuid.UUID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.Validation(categoryNameRequiredMsg)
	}

	rec := entity.CategoryRecord{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
	}
	if err := c.storage.CreateCategory(ctx, rec); err != nil {
		if errs.IsKind(err, errs.KindConflict) {
			return err
		}
		return errors.Wrap(err, "create category")
	}

	logger.Info("category created",
		zap.String("userID", userID.String()), zap.String("name", name))
	return nil
}
