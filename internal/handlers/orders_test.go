package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domain "github.com/northwind-commerce/api/internal/domain"
	"github.com/northwind-commerce/api/internal/services"
)

type stubOrderService struct {
	createFn  func(ctx context.Context, cmd services.CreateOrderCommand) (domain.Order, error)
	confirmFn func(ctx context.Context, cmd services.ConfirmOrderCommand) (domain.Order, error)
	cancelFn  func(ctx context.Context, cmd services.CancelOrderCommand) (domain.Order, error)
	shipFn    func(ctx context.Context, cmd services.ShipOrderCommand) (domain.Order, error)
	getFn     func(ctx context.Context, orderID string) (domain.Order, error)
	listFn    func(ctx context.Context) ([]domain.Order, error)
}

func (s *stubOrderService) CreateOrder(ctx context.Context, cmd services.CreateOrderCommand) (domain.Order, error) {
	if s.createFn == nil {
		return domain.Order{}, nil
	}
	return s.createFn(ctx, cmd)
}

func (s *stubOrderService) ConfirmOrder(ctx context.Context, cmd services.ConfirmOrderCommand) (domain.Order, error) {
	if s.confirmFn == nil {
		return domain.Order{}, nil
	}
	return s.confirmFn(ctx, cmd)
}

func (s *stubOrderService) CancelOrder(ctx context.Context, cmd services.CancelOrderCommand) (domain.Order, error) {
	if s.cancelFn == nil {
		return domain.Order{}, nil
	}
	return s.cancelFn(ctx, cmd)
}

func (s *stubOrderService) ShipOrder(ctx context.Context, cmd services.ShipOrderCommand) (domain.Order, error) {
	if s.shipFn == nil {
		return domain.Order{}, nil
	}
	return s.shipFn(ctx, cmd)
}

func (s *stubOrderService) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	if s.getFn == nil {
		return domain.Order{}, nil
	}
	return s.getFn(ctx, orderID)
}

func (s *stubOrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx)
}

func newOrderTestServer(t *testing.T, svc services.OrderService) *httptest.Server {
	t.Helper()
	router := NewRouter(WithOrderRoutes(NewOrderHandlers(svc).Routes))
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func sampleOrder(status domain.OrderStatus) domain.Order {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return domain.Order{
		ID:            "ord_01ABC",
		CustomerEmail: "jo@example.com",
		Status:        status,
		PaymentMethod: domain.PaymentMethodCreditCard,
		Items: []domain.OrderItem{
			{Sequence: 1, ProductID: "prod-1", SKU: "SKU-1", Quantity: 1, UnitPrice: 10_00, Subtotal: 10_00},
		},
		Totals:    domain.OrderTotals{Subtotal: 10_00, Fee: 30, Total: 10_30},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func decodeResponse(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return payload
}

func TestCreateOrderEndpoint(t *testing.T) {
	var captured services.CreateOrderCommand
	svc := &stubOrderService{
		createFn: func(_ context.Context, cmd services.CreateOrderCommand) (domain.Order, error) {
			captured = cmd
			return sampleOrder(domain.OrderStatusPending), nil
		},
	}
	server := newOrderTestServer(t, svc)

	body := `{"customer_email":"jo@example.com","product_ids":["prod-1"],"payment_method":"Credit_Card"}`
	resp, err := http.Post(server.URL+"/api/v1/orders", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	payload := decodeResponse(t, resp)
	if payload["id"] != "ord_01ABC" || payload["status"] != "pending" {
		t.Fatalf("unexpected payload: %v", payload)
	}

	// The handler lowercases the payment method before routing.
	if captured.PaymentMethod != domain.PaymentMethodCreditCard {
		t.Fatalf("expected normalised payment method, got %s", captured.PaymentMethod)
	}
}

func TestCreateOrderEndpointRejectsMalformedBody(t *testing.T) {
	server := newOrderTestServer(t, &stubOrderService{})

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", `{"customer_email":`},
		{"unknown field", `{"customer_email":"jo@example.com","coupon":"SAVE10"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(server.URL+"/api/v1/orders", "application/json", strings.NewReader(tc.body))
			if err != nil {
				t.Fatalf("post: %v", err)
			}
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
			payload := decodeResponse(t, resp)
			if payload["error"] != "invalid_request" {
				t.Fatalf("expected invalid_request, got %v", payload["error"])
			}
		})
	}
}

func TestOrderEndpointErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"cannot cancel shipped", services.ErrCannotCancelShipped, http.StatusConflict, "cannot_cancel_shipped"},
		{"invalid transition", services.ErrOrderInvalidTransition, http.StatusConflict, "invalid_transition"},
		{"order not found", services.ErrOrderNotFound, http.StatusNotFound, "order_not_found"},
		{"product not found", services.ErrProductNotFound, http.StatusNotFound, "product_not_found"},
		{"out of stock", services.ErrOutOfStock, http.StatusConflict, "out_of_stock"},
		{"payment failed", services.ErrPaymentFailed, http.StatusPaymentRequired, "payment_failed"},
		{"invalid input", services.ErrOrderInvalidInput, http.StatusBadRequest, "invalid_request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubOrderService{
				cancelFn: func(context.Context, services.CancelOrderCommand) (domain.Order, error) {
					return domain.Order{}, tc.err
				},
			}
			server := newOrderTestServer(t, svc)

			resp, err := http.Post(server.URL+"/api/v1/orders/ord_01ABC:cancel", "application/json", nil)
			if err != nil {
				t.Fatalf("post: %v", err)
			}
			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, resp.StatusCode)
			}
			payload := decodeResponse(t, resp)
			if payload["error"] != tc.wantCode {
				t.Fatalf("expected code %s, got %v", tc.wantCode, payload["error"])
			}
		})
	}
}

func TestConfirmOrderEndpoint(t *testing.T) {
	svc := &stubOrderService{
		confirmFn: func(_ context.Context, cmd services.ConfirmOrderCommand) (domain.Order, error) {
			if cmd.OrderID != "ord_01ABC" {
				t.Fatalf("unexpected order id %s", cmd.OrderID)
			}
			return sampleOrder(domain.OrderStatusConfirmed), nil
		},
	}
	server := newOrderTestServer(t, svc)

	resp, err := http.Post(server.URL+"/api/v1/orders/ord_01ABC:confirm", "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	payload := decodeResponse(t, resp)
	if payload["status"] != "confirmed" {
		t.Fatalf("expected confirmed, got %v", payload["status"])
	}
}

func TestShipOrderEndpointPassesTracking(t *testing.T) {
	svc := &stubOrderService{
		shipFn: func(_ context.Context, cmd services.ShipOrderCommand) (domain.Order, error) {
			if cmd.TrackingNumber != "TRACK-9" {
				t.Fatalf("unexpected tracking %s", cmd.TrackingNumber)
			}
			order := sampleOrder(domain.OrderStatusShipped)
			order.TrackingNumber = cmd.TrackingNumber
			return order, nil
		},
	}
	server := newOrderTestServer(t, svc)

	body := `{"tracking_number":"TRACK-9"}`
	resp, err := http.Post(server.URL+"/api/v1/orders/ord_01ABC:ship", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	payload := decodeResponse(t, resp)
	if payload["tracking_number"] != "TRACK-9" {
		t.Fatalf("expected tracking in response, got %v", payload)
	}
}

func TestGetOrderEndpoint(t *testing.T) {
	svc := &stubOrderService{
		getFn: func(_ context.Context, orderID string) (domain.Order, error) {
			if orderID != "ord_01ABC" {
				t.Fatalf("unexpected order id %s", orderID)
			}
			return sampleOrder(domain.OrderStatusPending), nil
		},
	}
	server := newOrderTestServer(t, svc)

	resp, err := http.Get(server.URL + "/api/v1/orders/ord_01ABC")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestListOrdersEndpoint(t *testing.T) {
	svc := &stubOrderService{
		listFn: func(context.Context) ([]domain.Order, error) {
			return []domain.Order{sampleOrder(domain.OrderStatusPending)}, nil
		},
	}
	server := newOrderTestServer(t, svc)

	resp, err := http.Get(server.URL + "/api/v1/orders")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	payload := decodeResponse(t, resp)
	orders, ok := payload["orders"].([]any)
	if !ok || len(orders) != 1 {
		t.Fatalf("expected 1 order in payload, got %v", payload)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	server := newOrderTestServer(t, &stubOrderService{})

	resp, err := http.Get(server.URL + "/api/v1/unknown")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	payload := decodeResponse(t, resp)
	if payload["error"] != "route_not_found" {
		t.Fatalf("expected route_not_found, got %v", payload["error"])
	}
}

func TestHealthEndpoints(t *testing.T) {
	server := newOrderTestServer(t, &stubOrderService{})

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(server.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.StatusCode)
		}
	}
}
