package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	domain "github.com/northwind-commerce/api/internal/domain"
	"github.com/northwind-commerce/api/internal/platform/httpx"
	"github.com/northwind-commerce/api/internal/services"
)

const maxOrderBodySize = 64 * 1024

type createOrderRequest struct {
	CustomerEmail   string   `json:"customer_email"`
	ProductIDs      []string `json:"product_ids"`
	PaymentMethod   string   `json:"payment_method"`
	ShippingAddress string   `json:"shipping_address"`
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

type shipOrderRequest struct {
	TrackingNumber string `json:"tracking_number"`
}

type orderItemResponse struct {
	Sequence  int    `json:"sequence"`
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Subtotal  int64  `json:"subtotal"`
}

type orderResponse struct {
	ID              string              `json:"id"`
	CustomerEmail   string              `json:"customer_email"`
	Status          string              `json:"status"`
	PaymentMethod   string              `json:"payment_method"`
	ShippingAddress string              `json:"shipping_address,omitempty"`
	TrackingNumber  string              `json:"tracking_number,omitempty"`
	Items           []orderItemResponse `json:"items"`
	Subtotal        int64               `json:"subtotal"`
	Fee             int64               `json:"fee"`
	Total           int64               `json:"total"`
	CreatedAt       string              `json:"created_at"`
	UpdatedAt       string              `json:"updated_at"`
}

// OrderHandlers exposes the order creation and lifecycle endpoints.
type OrderHandlers struct {
	orders services.OrderService
}

// NewOrderHandlers constructs a new OrderHandlers instance.
func NewOrderHandlers(orders services.OrderService) *OrderHandlers {
	return &OrderHandlers{orders: orders}
}

// Routes registers the /orders endpoints.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.createOrder)
	r.Get("/", h.listOrders)
	r.Get("/{orderID}", h.getOrder)
	r.Post("/{orderID}:confirm", h.confirmOrder)
	r.Post("/{orderID}:cancel", h.cancelOrder)
	r.Post("/{orderID}:ship", h.shipOrder)
}

func (h *OrderHandlers) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(ctx, w) {
		return
	}

	var req createOrderRequest
	if !decodeBody(ctx, w, r, &req) {
		return
	}

	order, err := h.orders.CreateOrder(ctx, services.CreateOrderCommand{
		CustomerEmail:   req.CustomerEmail,
		ProductIDs:      req.ProductIDs,
		PaymentMethod:   domain.PaymentMethod(strings.ToLower(strings.TrimSpace(req.PaymentMethod))),
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *OrderHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(ctx, w) {
		return
	}

	orders, err := h.orders.ListOrders(ctx)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	payload := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		payload = append(payload, toOrderResponse(order))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"orders": payload})
}

func (h *OrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(ctx, w) {
		return
	}

	order, err := h.orders.GetOrder(ctx, chi.URLParam(r, "orderID"))
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandlers) confirmOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(ctx, w) {
		return
	}

	order, err := h.orders.ConfirmOrder(ctx, services.ConfirmOrderCommand{
		OrderID: chi.URLParam(r, "orderID"),
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandlers) cancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(ctx, w) {
		return
	}

	var req cancelOrderRequest
	if r.ContentLength != 0 {
		if !decodeBody(ctx, w, r, &req) {
			return
		}
	}

	order, err := h.orders.CancelOrder(ctx, services.CancelOrderCommand{
		OrderID: chi.URLParam(r, "orderID"),
		Reason:  req.Reason,
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandlers) shipOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(ctx, w) {
		return
	}

	var req shipOrderRequest
	if r.ContentLength != 0 {
		if !decodeBody(ctx, w, r, &req) {
			return
		}
	}

	order, err := h.orders.ShipOrder(ctx, services.ShipOrderCommand{
		OrderID:        chi.URLParam(r, "orderID"),
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandlers) available(ctx context.Context, w http.ResponseWriter) bool {
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return false
	}
	return true
}

func decodeBody(ctx context.Context, w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxOrderBodySize)
	defer func() {
		_, _ = io.Copy(io.Discard, body)
	}()

	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return false
	}
	return true
}

func writeOrderError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCannotCancelShipped):
		httpx.WriteError(ctx, w, httpx.NewError("cannot_cancel_shipped", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrOrderInvalidTransition):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_transition", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", err.Error(), http.StatusNotFound))
	case errors.Is(err, services.ErrProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", err.Error(), http.StatusNotFound))
	case errors.Is(err, services.ErrOutOfStock):
		httpx.WriteError(ctx, w, httpx.NewError("out_of_stock", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrPaymentFailed):
		httpx.WriteError(ctx, w, httpx.NewError("payment_failed", err.Error(), http.StatusPaymentRequired))
	case errors.Is(err, services.ErrOrderInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "unexpected error", http.StatusInternalServerError))
	}
}

func toOrderResponse(order domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			Sequence:  item.Sequence,
			ProductID: item.ProductID,
			SKU:       item.SKU,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}
	return orderResponse{
		ID:              order.ID,
		CustomerEmail:   order.CustomerEmail,
		Status:          string(order.Status),
		PaymentMethod:   string(order.PaymentMethod),
		ShippingAddress: order.ShippingAddress,
		TrackingNumber:  order.TrackingNumber,
		Items:           items,
		Subtotal:        order.Totals.Subtotal,
		Fee:             order.Totals.Fee,
		Total:           order.Totals.Total,
		CreatedAt:       order.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       order.UpdatedAt.Format(time.RFC3339),
	}
}
