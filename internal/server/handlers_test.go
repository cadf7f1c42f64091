package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledgerent "github.com/sv1nxmmvt/fincontrol/internal/entity/ledger"
	"github.com/sv1nxmmvt/fincontrol/internal/model/accounts"
	"github.com/sv1nxmmvt/fincontrol/internal/model/ledger"
	"github.com/sv1nxmmvt/fincontrol/internal/model/reports"
	"github.com/sv1nxmmvt/fincontrol/internal/model/storage"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

type authStub struct{}

func (authStub) Secret() string            { return "test-secret" }
func (authStub) SessionTTL() time.Duration { return time.Hour }

type producerStub struct {
	msgs [][]byte
}

func (p *producerStub) ProduceMessage(message []byte) error {
	p.msgs = append(p.msgs, message)
	return nil
}

// noCache always misses, so report requests hit storage.
type noCache struct{}

func (noCache) GetReport(uuid.UUID, string) ([]ledgerent.ReportRow, error) {
	return nil, errors.New("cache miss")
}

func (noCache) CacheReport(uuid.UUID, string, []ledgerent.ReportRow) error { return nil }

func (noCache) InvalidateReports(uuid.UUID, []string) error { return nil }

func newTestServer() (*gin.Engine, *producerStub) {
	store := storage.NewInMemStorage()
	producer := &producerStub{}

	srv := New(
		accounts.NewService(store, accounts.NewSHA256Hasher()),
		ledger.NewCategories(store),
		ledger.NewExpenses(store, noCache{}),
		reports.NewGenerator(store, noCache{}),
		producer,
		authStub{},
	)
	return srv.Engine(), producer
}

func doJSON(engine *gin.Engine, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, engine *gin.Engine, login, password string) []*http.Cookie {
	t.Helper()
	w := doJSON(engine, http.MethodPost, "/api/login",
		fmt.Sprintf(`{"login":%q,"password":%q}`, login, password), nil)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func Test_FullLedgerFlow(t *testing.T) {
	engine, producer := newTestServer()

	w := doJSON(engine, http.MethodPost, "/api/register",
		`{"login":"alice","password":"secret123"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	session := login(t, engine, "alice", "secret123")

	w = doJSON(engine, http.MethodPost, "/api/categories", `{"name":"Food"}`, session)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(engine, http.MethodGet, "/api/categories", "", session)
	require.Equal(t, http.StatusOK, w.Code)
	var cats []ledgerent.CategoryView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cats))
	require.Len(t, cats, 1)
	assert.Equal(t, "Food", cats[0].Name)

	w = doJSON(engine, http.MethodPost, "/api/expenses",
		fmt.Sprintf(`{"categoryId":%q,"amount":10.5}`, cats[0].ID), session)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(engine, http.MethodGet, "/api/expenses", "", session)
	require.Equal(t, http.StatusOK, w.Code)
	var expenses []expenseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &expenses))
	require.Len(t, expenses, 1)
	assert.Equal(t, "Food", expenses[0].CategoryName)
	assert.Equal(t, "10.50", expenses[0].Amount)

	w = doJSON(engine, http.MethodGet, "/api/report", "", session)
	require.Equal(t, http.StatusOK, w.Code)
	var report []reportRowResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	require.Len(t, report, 1)
	assert.Equal(t, "Food", report[0].CategoryName)
	assert.Equal(t, "10.50", report[0].TotalAmount)

	// register, category and expense each published one event
	assert.Len(t, producer.msgs, 3)
}

func Test_LedgerRoutes_RequireSession(t *testing.T) {
	engine, _ := newTestServer()

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/categories"},
		{http.MethodPost, "/api/categories"},
		{http.MethodGet, "/api/expenses"},
		{http.MethodPost, "/api/expenses"},
		{http.MethodGet, "/api/report"},
		{http.MethodPost, "/api/logout"},
	} {
		w := doJSON(engine, route.method, route.path, "{}", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, route.path)
	}
}

func Test_Register_DuplicateLoginIsConflict(t *testing.T) {
	engine, _ := newTestServer()

	w := doJSON(engine, http.MethodPost, "/api/register",
		`{"login":"alice","password":"secret123"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(engine, http.MethodPost, "/api/register",
		`{"login":"alice","password":"другой-пароль"}`, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "user already exists", errorMessage(t, w))
}

func Test_Login_InvalidCredentialsUnauthorized(t *testing.T) {
	engine, _ := newTestServer()

	w := doJSON(engine, http.MethodPost, "/api/register",
		`{"login":"alice","password":"secret123"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	wrongPassword := doJSON(engine, http.MethodPost, "/api/login",
		`{"login":"alice","password":"nope-nope"}`, nil)
	unknownLogin := doJSON(engine, http.MethodPost, "/api/login",
		`{"login":"bob","password":"secret123"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownLogin.Code)
	assert.Equal(t, errorMessage(t, wrongPassword), errorMessage(t, unknownLogin))
}

func Test_CreateExpense_ErrorsMapped(t *testing.T) {
	engine, _ := newTestServer()

	w := doJSON(engine, http.MethodPost, "/api/register",
		`{"login":"alice","password":"secret123"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	session := login(t, engine, "alice", "secret123")

	w = doJSON(engine, http.MethodPost, "/api/categories", `{"name":"Food"}`, session)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(engine, http.MethodGet, "/api/categories", "", session)
	var cats []ledgerent.CategoryView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cats))

	w = doJSON(engine, http.MethodPost, "/api/expenses",
		fmt.Sprintf(`{"categoryId":%q,"amount":0}`, cats[0].ID), session)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "amount must be greater than zero", errorMessage(t, w))

	w = doJSON(engine, http.MethodPost, "/api/expenses",
		fmt.Sprintf(`{"categoryId":%q,"amount":10}`, uuid.New()), session)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "category not found", errorMessage(t, w))

	w = doJSON(engine, http.MethodPost, "/api/categories", `{"name":"Food"}`, session)
	assert.Equal(t, http.StatusConflict, w.Code)
}
