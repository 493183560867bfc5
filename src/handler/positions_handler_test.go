package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"submarine/src/engine"
	"submarine/src/model"
)

type mockPositionEngine struct {
	positions   []model.Position
	closedID    string
	amount      decimal.Decimal
	price       decimal.Decimal
	tpslParams  engine.TPSLParams
	tpslType    model.TPSLType
	canceledTP  string
	err         error
	calledCount int
}

func (m *mockPositionEngine) Positions() []model.Position { return m.positions }

func (m *mockPositionEngine) ClosePosition(id string, currentPrice decimal.Decimal) error {
	m.calledCount++
	m.closedID = id
	m.price = currentPrice
	return m.err
}

func (m *mockPositionEngine) PartialClosePosition(id string, amount, currentPrice decimal.Decimal) error {
	m.calledCount++
	m.closedID = id
	m.amount = amount
	m.price = currentPrice
	return m.err
}

func (m *mockPositionEngine) ReversePosition(id string, currentPrice decimal.Decimal) error {
	m.calledCount++
	m.closedID = id
	m.price = currentPrice
	return m.err
}

func (m *mockPositionEngine) CloseAllPositions(currentPrice decimal.Decimal) error {
	m.calledCount++
	m.price = currentPrice
	return m.err
}

func (m *mockPositionEngine) AddTakeProfitOrder(positionID string, params engine.TPSLParams) (string, error) {
	m.calledCount++
	m.closedID = positionID
	m.tpslParams = params
	m.tpslType = model.TPSLTypeTakeProfit
	return "tpsl-1", m.err
}

func (m *mockPositionEngine) AddStopLossOrder(positionID string, params engine.TPSLParams) (string, error) {
	m.calledCount++
	m.closedID = positionID
	m.tpslParams = params
	m.tpslType = model.TPSLTypeStopLoss
	return "tpsl-2", m.err
}

func (m *mockPositionEngine) CancelTPSL(positionID, tpslID string) error {
	m.calledCount++
	m.closedID = positionID
	m.canceledTP = tpslID
	return m.err
}

func TestClosePositionHandler(t *testing.T) {
	mock := &mockPositionEngine{}

	router := chi.NewRouter()
	router.Post("/api/positions/{id}/close", ClosePositionHandler(mock, nil))

	body := `{"current_price":"51000"}`
	req := httptest.NewRequest(http.MethodPost, "/api/positions/p-1/close", strings.NewReader(body))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if mock.closedID != "p-1" {
		t.Fatalf("expected id p-1, got %q", mock.closedID)
	}
	if !mock.price.Equal(decimal.RequireFromString("51000")) {
		t.Fatalf("expected price 51000, got %s", mock.price)
	}
}

func TestClosePositionHandler_NotFound(t *testing.T) {
	mock := &mockPositionEngine{err: engine.ErrPositionNotFound}

	router := chi.NewRouter()
	router.Post("/api/positions/{id}/close", ClosePositionHandler(mock, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/positions/missing/close", strings.NewReader(`{"current_price":"51000"}`))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestPartialClosePositionHandler(t *testing.T) {
	mock := &mockPositionEngine{}

	router := chi.NewRouter()
	router.Post("/api/positions/{id}/partial-close", PartialClosePositionHandler(mock, nil))

	body := `{"amount":"0.5","current_price":"55000"}`
	req := httptest.NewRequest(http.MethodPost, "/api/positions/p-1/partial-close", strings.NewReader(body))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !mock.amount.Equal(decimal.RequireFromString("0.5")) {
		t.Fatalf("expected amount 0.5, got %s", mock.amount)
	}
}

func TestReversePositionHandler_InsufficientBalance(t *testing.T) {
	mock := &mockPositionEngine{err: engine.ErrInsufficientBalance}

	router := chi.NewRouter()
	router.Post("/api/positions/{id}/reverse", ReversePositionHandler(mock, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/positions/p-1/reverse", strings.NewReader(`{"current_price":"53000"}`))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rr.Code)
	}
}

func TestCloseAllPositionsHandler(t *testing.T) {
	mock := &mockPositionEngine{}
	handler := CloseAllPositionsHandler(mock, staticPriceSource{price: decimal.RequireFromString("52000")})

	req := httptest.NewRequest(http.MethodPost, "/api/positions/close-all", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !mock.price.Equal(decimal.RequireFromString("52000")) {
		t.Fatalf("expected feed price fallback 52000, got %s", mock.price)
	}
}

func TestCloseAllPositionsHandler_EmptyBody(t *testing.T) {
	mock := &mockPositionEngine{}
	handler := CloseAllPositionsHandler(mock, staticPriceSource{price: decimal.RequireFromString("52000")})

	req := httptest.NewRequest(http.MethodPost, "/api/positions/close-all", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200 without a body, got %d", rr.Code)
	}
	if !mock.price.Equal(decimal.RequireFromString("52000")) {
		t.Fatalf("expected feed price fallback 52000, got %s", mock.price)
	}
}

func TestClosePositionHandler_EmptyBody(t *testing.T) {
	mock := &mockPositionEngine{}

	router := chi.NewRouter()
	router.Post("/api/positions/{id}/close", ClosePositionHandler(mock, staticPriceSource{price: decimal.RequireFromString("50500")}))

	req := httptest.NewRequest(http.MethodPost, "/api/positions/p-1/close", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200 without a body, got %d", rr.Code)
	}
	if mock.closedID != "p-1" {
		t.Fatalf("expected id p-1, got %q", mock.closedID)
	}
	if !mock.price.Equal(decimal.RequireFromString("50500")) {
		t.Fatalf("expected feed price fallback 50500, got %s", mock.price)
	}
}

func TestAddTPSLHandler(t *testing.T) {
	mock := &mockPositionEngine{}

	router := chi.NewRouter()
	router.Post("/api/positions/{id}/tpsl", AddTPSLHandler(mock))

	body := `{"type":"TAKE_PROFIT","trigger_price":"55000","percentage":"50"}`
	req := httptest.NewRequest(http.MethodPost, "/api/positions/p-1/tpsl", strings.NewReader(body))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}
	if mock.tpslType != model.TPSLTypeTakeProfit {
		t.Fatalf("expected take-profit branch, got %s", mock.tpslType)
	}
	if !mock.tpslParams.TriggerPrice.Equal(decimal.RequireFromString("55000")) {
		t.Fatalf("expected trigger 55000, got %s", mock.tpslParams.TriggerPrice)
	}
	if !strings.Contains(rr.Body.String(), "tpsl-1") {
		t.Fatalf("expected body to carry the new id, got %s", rr.Body.String())
	}
}

func TestAddTPSLHandler_InvalidType(t *testing.T) {
	mock := &mockPositionEngine{}

	router := chi.NewRouter()
	router.Post("/api/positions/{id}/tpsl", AddTPSLHandler(mock))

	body := `{"type":"TRAILING","trigger_price":"55000","percentage":"50"}`
	req := httptest.NewRequest(http.MethodPost, "/api/positions/p-1/tpsl", strings.NewReader(body))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	if mock.calledCount != 0 {
		t.Fatalf("engine must not be called for an unknown type")
	}
}

func TestCancelTPSLHandler(t *testing.T) {
	mock := &mockPositionEngine{}

	router := chi.NewRouter()
	router.Delete("/api/positions/{id}/tpsl/{tpslId}", CancelTPSLHandler(mock))

	req := httptest.NewRequest(http.MethodDelete, "/api/positions/p-1/tpsl/tp-9", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if mock.closedID != "p-1" || mock.canceledTP != "tp-9" {
		t.Fatalf("unexpected ids: %q %q", mock.closedID, mock.canceledTP)
	}
}

func TestListPositionsHandler(t *testing.T) {
	mock := &mockPositionEngine{positions: []model.Position{{ID: "p-1", Symbol: "BTCUSDT", Side: model.SideLong}}}
	handler := ListPositionsHandler(mock)

	req := httptest.NewRequest(http.MethodGet, "/api/positions", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "p-1") {
		t.Fatalf("expected body to list the position, got %s", rr.Body.String())
	}
}
