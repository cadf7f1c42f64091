package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sv1nxmmvt/fincontrol/internal/logger"
	"github.com/sv1nxmmvt/fincontrol/internal/model/accounts"
	"github.com/sv1nxmmvt/fincontrol/internal/model/errs"
	"github.com/sv1nxmmvt/fincontrol/internal/model/events"
	"github.com/sv1nxmmvt/fincontrol/internal/model/ledger"
	"github.com/sv1nxmmvt/fincontrol/internal/model/reports"
)

type eventProducer interface {
	ProduceMessage(message []byte) error
}

type authConfig interface {
	Secret() string
	SessionTTL() time.Duration
}

type Server struct {
	accounts   *accounts.Service
	categories *ledger.Categories
	expenses   *ledger.Expenses
	reports    *reports.Generator
	producer   eventProducer
	auth       authConfig
}

func New(
	accountsSvc *accounts.Service,
	categories *ledger.Categories,
	expenses *ledger.Expenses,
	generator *reports.Generator,
	producer eventProducer,
	auth authConfig,
) *Server {
	return &Server{
		accounts:   accountsSvc,
		categories: categories,
		expenses:   expenses,
		reports:    generator,
		producer:   producer,
		auth:       auth,
	}
}

type credentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type createCategoryRequest struct {
	Name string `json:"name"`
}

type createExpenseRequest struct {
	CategoryID uuid.UUID       `json:"categoryId"`
	Amount     decimal.Decimal `json:"amount"`
}

type expenseResponse struct {
	ID           uuid.UUID `json:"id"`
	CategoryName string    `json:"categoryName"`
	Amount       string    `json:"amount"`
	CreatedAt    time.Time `json:"createdAt"`
}

type reportRowResponse struct {
	CategoryName string `json:"categoryName"`
	TotalAmount  string `json:"totalAmount"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := s.accounts.Register(c.Request.Context(), req.Login, req.Password); err != nil {
		writeError(c, err)
		return
	}

	s.publishEvent(events.Event{
		Type:       events.TypeUserRegistered,
		Subject:    req.Login,
		OccurredAt: time.Now().UTC(),
	})
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ident, err := s.accounts.Authenticate(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	ttl := s.auth.SessionTTL()
	token, err := issueToken(ident, s.auth.Secret(), ttl)
	if err != nil {
		writeError(c, err)
		return
	}

	c.SetCookie(sessionCookie, token, int(ttl.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"userId": ident.UserID,
		"login":  ident.Login,
	})
}

func (s *Server) handleLogout(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleListCategories(c *gin.Context) {
	ident := identityFromContext(c)

	views, err := s.categories.List(c.Request.Context(), ident.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (s *Server) handleCreateCategory(c *gin.Context) {
	ident := identityFromContext(c)

	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := s.categories.Create(c.Request.Context(), ident.UserID, req.Name); err != nil {
		writeError(c, err)
		return
	}

	s.publishEvent(events.Event{
		Type:       events.TypeCategoryCreated,
		UserID:     ident.UserID,
		Subject:    strings.TrimSpace(req.Name),
		OccurredAt: time.Now().UTC(),
	})
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleListExpenses(c *gin.Context) {
	ident := identityFromContext(c)

	views, err := s.expenses.List(c.Request.Context(), ident.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	res := make([]expenseResponse, 0, len(views))
	for _, v := range views {
		res = append(res, expenseResponse{
			ID:           v.ID,
			CategoryName: v.CategoryName,
			Amount:       v.Amount.StringFixed(2),
			CreatedAt:    v.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleCreateExpense(c *gin.Context) {
	ident := identityFromContext(c)

	var req createExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := s.expenses.Create(c.Request.Context(), ident.UserID, req.CategoryID, req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}

	s.publishEvent(events.Event{
		Type:       events.TypeExpenseCreated,
		UserID:     ident.UserID,
		Subject:    req.CategoryID.String(),
		OccurredAt: time.Now().UTC(),
	})
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleReport(c *gin.Context) {
	ident := identityFromContext(c)

	rows, err := s.reports.Build(c.Request.Context(), ident.UserID, c.Query("period"))
	if err != nil {
		writeError(c, err)
		return
	}

	res := make([]reportRowResponse, 0, len(rows))
	for _, row := range rows {
		res = append(res, reportRowResponse{
			CategoryName: row.CategoryName,
			TotalAmount:  row.TotalAmount.StringFixed(2),
		})
	}
	c.JSON(http.StatusOK, res)
}

// publishEvent is best effort: the audit stream must never fail a request
// that already succeeded.
func (s *Server) publishEvent(ev events.Event) {
	msg, err := events.Marshal(ev)
	if err == nil {
		err = s.producer.ProduceMessage(msg)
	}
	if err != nil {
		logger.Warn("publish ledger event",
			zap.String("type", string(ev.Type)), zap.Error(err))
	}
}

func writeError(c *gin.Context, err error) {
	switch errs.KindOf(err) {
	case errs.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errs.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errs.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errs.KindAuthentication:
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		logger.Error("internal error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
