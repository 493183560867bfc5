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

type mockOrderEngine struct {
	params       engine.OrderParams
	currentPrice decimal.Decimal
	canceledID   string
	orders       []model.Order
	err          error
	calledCount  int
}

func (m *mockOrderEngine) SubmitOrder(params engine.OrderParams, currentPrice decimal.Decimal) error {
	m.calledCount++
	m.params = params
	m.currentPrice = currentPrice
	return m.err
}

func (m *mockOrderEngine) CancelOrder(id string) error {
	m.calledCount++
	m.canceledID = id
	return m.err
}

func (m *mockOrderEngine) Orders() []model.Order {
	return m.orders
}

type staticPriceSource struct {
	price decimal.Decimal
}

func (s staticPriceSource) LastPrice() decimal.Decimal { return s.price }

func TestSubmitOrderHandler_Success(t *testing.T) {
	mock := &mockOrderEngine{}
	handler := SubmitOrderHandler(mock, nil)

	body := `{"type":"MARKET","side":"LONG","size":"1","leverage":"10","current_price":"50000"}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}
	if mock.calledCount != 1 {
		t.Fatalf("expected engine to be called once, got %d", mock.calledCount)
	}
	if mock.params.Side != model.SideLong || mock.params.Type != model.OrderTypeMarket {
		t.Fatalf("unexpected params: %+v", mock.params)
	}
	if !mock.currentPrice.Equal(decimal.RequireFromString("50000")) {
		t.Fatalf("expected current price 50000, got %s", mock.currentPrice)
	}
}

func TestSubmitOrderHandler_FallsBackToFeedPrice(t *testing.T) {
	mock := &mockOrderEngine{}
	handler := SubmitOrderHandler(mock, staticPriceSource{price: decimal.RequireFromString("49500")})

	body := `{"type":"MARKET","side":"SHORT","size":"0.5"}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}
	if !mock.currentPrice.Equal(decimal.RequireFromString("49500")) {
		t.Fatalf("expected feed price 49500, got %s", mock.currentPrice)
	}
}

func TestSubmitOrderHandler_InvalidBody(t *testing.T) {
	mock := &mockOrderEngine{}
	handler := SubmitOrderHandler(mock, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader("not json"))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	if mock.calledCount != 0 {
		t.Fatalf("engine must not be called on bad input")
	}
}

func TestSubmitOrderHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid order", engine.ErrInvalidOrder, http.StatusBadRequest},
		{"insufficient balance", engine.ErrInsufficientBalance, http.StatusUnprocessableEntity},
		{"positions open", engine.ErrPositionsOpen, http.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := SubmitOrderHandler(&mockOrderEngine{err: tc.err}, nil)

			body := `{"type":"MARKET","side":"LONG","size":"1","current_price":"50000"}`
			req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != tc.code {
				t.Fatalf("expected status %d, got %d", tc.code, rr.Code)
			}
		})
	}
}

func TestCancelOrderHandler(t *testing.T) {
	mock := &mockOrderEngine{}

	router := chi.NewRouter()
	router.Delete("/api/orders/{id}", CancelOrderHandler(mock))

	req := httptest.NewRequest(http.MethodDelete, "/api/orders/abc-123", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if mock.canceledID != "abc-123" {
		t.Fatalf("expected id abc-123, got %q", mock.canceledID)
	}
}

func TestCancelOrderHandler_NotFound(t *testing.T) {
	mock := &mockOrderEngine{err: engine.ErrOrderNotFound}

	router := chi.NewRouter()
	router.Delete("/api/orders/{id}", CancelOrderHandler(mock))

	req := httptest.NewRequest(http.MethodDelete, "/api/orders/missing", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestListOrdersHandler(t *testing.T) {
	mock := &mockOrderEngine{orders: []model.Order{{ID: "o-1", Symbol: "BTCUSDT"}}}
	handler := ListOrdersHandler(mock)

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "o-1") {
		t.Fatalf("expected body to list the pending order, got %s", rr.Body.String())
	}
}
