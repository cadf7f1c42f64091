package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	auditent "github.com/sv1nxmmvt/fincontrol/internal/entity/audit"
	ledgerent "github.com/sv1nxmmvt/fincontrol/internal/entity/ledger"
	userent "github.com/sv1nxmmvt/fincontrol/internal/entity/user"
	"github.com/sv1nxmmvt/fincontrol/internal/model/errs"
)

type memExpense struct {
	ledgerent.ExpenseRecord
	seq int
}

// InMemStorage keeps everything in maps behind one mutex. It satisfies the
// same storage interfaces as PostgresStorage and doubles as the fake the
// tests substitute for it. Holding the lock across check and insert gives
// the same atomicity the postgres implementation gets from transactions.
type InMemStorage struct {
	mu         sync.Mutex
	users      map[uuid.UUID]userent.Record
	logins     map[string]uuid.UUID
	categories []ledgerent.CategoryRecord
	expenses   []memExpense
	audit      []auditent.Record
	seq        int
}

func NewInMemStorage() *InMemStorage {
	return &InMemStorage{
		users:  make(map[uuid.UUID]userent.Record),
		logins: make(map[string]uuid.UUID),
	}
}

func (s *InMemStorage) CreateUser(_ context.Context, rec userent.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.logins[rec.Login]; taken {
		return errs.Conflict(userExistsMsg)
	}
	s.users[rec.ID] = rec
	s.logins[rec.Login] = rec.ID
	return nil
}

func (s *InMemStorage) GetUserByLogin(_ context.Context, login string) (userent.Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.logins[login]
	if !ok {
		return userent.Record{}, false, nil
	}
	return s.users[id], true, nil
}

func (s *InMemStorage) ListCategories(_ context.Context, userID uuid.UUID) ([]ledgerent.CategoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// categories are appended in creation order
	res := make([]ledgerent.CategoryRecord, 0)
	for _, c := range s.categories {
		if c.UserID == userID {
			res = append(res, c)
		}
	}
	return res, nil
}

func (s *InMemStorage) CreateCategory(_ context.Context, rec ledgerent.CategoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.categories {
		if c.UserID == rec.UserID && c.Name == rec.Name {
			return errs.Conflict(categoryExistsMsg)
		}
	}
	s.categories = append(s.categories, rec)
	return nil
}

func (s *InMemStorage) CreateExpense(_ context.Context, rec ledgerent.ExpenseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.categoryOwned(rec.CategoryID, rec.UserID) {
		return errs.NotFound(categoryNotFoundMsg)
	}
	s.seq++
	s.expenses = append(s.expenses, memExpense{ExpenseRecord: rec, seq: s.seq})
	return nil
}

func (s *InMemStorage) ListExpenses(_ context.Context, userID uuid.UUID) ([]ledgerent.ExpenseView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	own := make([]memExpense, 0)
	for _, e := range s.expenses {
		if e.UserID == userID {
			own = append(own, e)
		}
	}
	// most recent first; insertion order breaks timestamp ties
	sort.Slice(own, func(i, j int) bool {
		if !own[i].CreatedAt.Equal(own[j].CreatedAt) {
			return own[i].CreatedAt.After(own[j].CreatedAt)
		}
		return own[i].seq > own[j].seq
	})

	res := make([]ledgerent.ExpenseView, 0, len(own))
	for _, e := range own {
		res = append(res, ledgerent.ExpenseView{
			ID:           e.ID,
			CategoryName: s.categoryName(e.CategoryID),
			Amount:       e.Amount,
			CreatedAt:    e.CreatedAt,
		})
	}
	return res, nil
}

func (s *InMemStorage) SaveAuditRecord(_ context.Context, rec auditent.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.audit = append(s.audit, rec)
	return nil
}

func (s *InMemStorage) AuditRecords() []auditent.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]auditent.Record, len(s.audit))
	copy(res, s.audit)
	return res
}

func (s *InMemStorage) categoryOwned(categoryID, userID uuid.UUID) bool {
	for _, c := range s.categories {
		if c.ID == categoryID && c.UserID == userID {
			return true
		}
	}
	return false
}

func (s *InMemStorage) categoryName(categoryID uuid.UUID) string {
	for _, c := range s.categories {
		if c.ID == categoryID {
			return c.Name
		}
	}
	return ""
}
