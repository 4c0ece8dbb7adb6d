package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unusualtrade/hatbot/internal/bot"
	"github.com/unusualtrade/hatbot/internal/server/handler"
	"github.com/unusualtrade/hatbot/internal/strategy"
)

type fakeController struct {
	calls []string
	err   error
}

func (f *fakeController) Refresh(ctx context.Context) error {
	f.calls = append(f.calls, "refresh")
	return f.err
}

func (f *fakeController) Recalculate(ctx context.Context) error {
	f.calls = append(f.calls, "recalculate")
	return f.err
}

func (f *fakeController) Save(ctx context.Context) error {
	f.calls = append(f.calls, "save")
	return f.err
}

func (f *fakeController) ReadInventory(ctx context.Context) error {
	f.calls = append(f.calls, "read_inventory")
	return f.err
}

func testServer(t *testing.T, authToken string, ctrl *fakeController) *Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sell, err := strategy.FixedRatioSell(1.0)
	require.NoError(t, err)
	buy, err := strategy.FixedRatioBuy(0.5)
	require.NoError(t, err)
	suite := &strategy.Suite{
		SellPricer:    sell,
		BuyPricer:     buy,
		Acceptability: strategy.AcceptAll(),
		Ratio:         strategy.CatalogRatio(),
		Description:   strategy.SimpleDescription(),
	}
	b, err := bot.New("76561198000000001", suite, logger)
	require.NoError(t, err)

	return NewServer(
		Config{Port: 0, AuthToken: authToken},
		Handlers{
			Health:   handler.NewHealthHandler(),
			Status:   handler.NewStatusHandler("trade", time.Now(), b),
			Listings: handler.NewListingsHandler(b),
			Control:  handler.NewControlHandler(ctrl, logger),
		},
		logger,
	)
}

func TestStatusEndpoint(t *testing.T) {
	srv := testServer(t, "", &fakeController{})

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"mode":"trade"`)
	assert.Contains(t, body, `"account_id":"76561198000000001"`)
	assert.Contains(t, body, `"sell_listings":0`)
}

func TestListingsEndpoint(t *testing.T) {
	srv := testServer(t, "", &fakeController{})

	req := httptest.NewRequest(http.MethodGet, "/api/listings", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"76561198000000001"`)
}

func TestControlTriggers(t *testing.T) {
	ctrl := &fakeController{}
	srv := testServer(t, "", ctrl)

	for _, path := range []string{
		"/api/control/refresh",
		"/api/control/recalculate",
		"/api/control/save",
		"/api/control/read-inventory",
	} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()
		srv.httpServer.Handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, path)
	}

	assert.Equal(t, []string{"refresh", "recalculate", "save", "read_inventory"}, ctrl.calls)
}

func TestControlTriggerFailureReturns500(t *testing.T) {
	ctrl := &fakeController{err: errors.New("catalog unavailable")}
	srv := testServer(t, "", ctrl)

	req := httptest.NewRequest(http.MethodPost, "/api/control/refresh", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "catalog unavailable")
}

func TestAuthRequiredWhenTokenConfigured(t *testing.T) {
	srv := testServer(t, "sekrit", &fakeController{})

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	rec = httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := testServer(t, "", &fakeController{})

	req := httptest.NewRequest(http.MethodGet, "/api/control/save", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
