package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rl1809/retail-store/internal/core/domain"
	"github.com/rl1809/retail-store/internal/core/service"
	"github.com/rl1809/retail-store/internal/port"
)

const dateLayout = "2006-01-02"

type HTTPHandler struct {
	orders  *service.OrderService
	reports *service.ReportService
	journal port.OrderJournal
}

func NewHTTPHandler(orders *service.OrderService, reports *service.ReportService, journal port.OrderJournal) *HTTPHandler {
	return &HTTPHandler{
		orders:  orders,
		reports: reports,
		journal: journal,
	}
}

// Register wires all routes onto the mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/orders", h.PlaceOrder)
	mux.HandleFunc("GET /api/orders/{id}", h.GetOrder)
	mux.HandleFunc("GET /api/users/{id}/orders", h.ListUserOrders)
	mux.HandleFunc("GET /api/reports/sales", h.SalesReport)
	mux.HandleFunc("POST /api/products/{id}/restock", h.Restock)
	mux.HandleFunc("GET /health", h.HealthCheck)
}

type placeOrderRequest struct {
	RequestID string `json:"request_id,omitempty"`
	UserID    int    `json:"user_id"`
	ProductID int    `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type placeOrderResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"order_id,omitempty"`
	Message string `json:"message"`
}

func (h *HTTPHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, placeOrderResponse{Message: "invalid request body"})
		return
	}

	orderID, err := h.orders.PlaceOrder(r.Context(), service.PlaceOrderRequest{
		RequestID: req.RequestID,
		UserID:    req.UserID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		status, message := placementStatus(err)
		writeJSON(w, status, placeOrderResponse{Message: message})
		return
	}

	writeJSON(w, http.StatusOK, placeOrderResponse{
		Success: true,
		OrderID: orderID,
		Message: "order placed successfully",
	})
}

func placementStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		return http.StatusBadRequest, "quantity must be positive"
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, "product not found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusGone, "insufficient stock"
	case errors.Is(err, domain.ErrDuplicateRequest):
		return http.StatusConflict, "duplicate request"
	default:
		return http.StatusInternalServerError, "order could not be placed"
	}
}

type orderResponse struct {
	OrderID   string `json:"order_id"`
	UserID    int    `json:"user_id"`
	ProductID int    `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	PlacedAt  string `json:"placed_at"`
	Status    string `json:"status"`
}

func toOrderResponse(rec domain.OrderRecord) orderResponse {
	return orderResponse{
		OrderID:   rec.OrderID,
		UserID:    rec.UserID,
		ProductID: rec.ProductID,
		Quantity:  rec.Quantity,
		UnitPrice: rec.UnitPrice.String(),
		PlacedAt:  rec.PlacedAt.Format(time.RFC3339),
		Status:    string(rec.Status),
	}
}

func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	rec, err := h.journal.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "order not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(*rec))
}

func (h *HTTPHandler) ListUserOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid user id"})
		return
	}

	records, err := h.journal.FindByUser(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal error"})
		return
	}

	out := make([]orderResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toOrderResponse(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

type salesRow struct {
	ProductID     int    `json:"product_id"`
	ProductName   string `json:"product_name"`
	TotalQuantity int    `json:"total_quantity"`
	TotalRevenue  string `json:"total_revenue"`
}

func (h *HTTPHandler) SalesReport(w http.ResponseWriter, r *http.Request) {
	from, err := time.Parse(dateLayout, r.URL.Query().Get("from"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid from date, use YYYY-MM-DD"})
		return
	}
	to, err := time.Parse(dateLayout, r.URL.Query().Get("to"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid to date, use YYYY-MM-DD"})
		return
	}

	report, err := h.reports.Report(r.Context(), from, to)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRange) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "start date is after end date"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal error"})
		return
	}

	out := make([]salesRow, 0, len(report))
	for _, agg := range report {
		out = append(out, salesRow{
			ProductID:     agg.ProductID,
			ProductName:   agg.ProductName,
			TotalQuantity: agg.TotalQuantity,
			TotalRevenue:  agg.TotalRevenue.String(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type restockRequest struct {
	Quantity int `json:"quantity"`
}

type restockResponse struct {
	Success  bool   `json:"success"`
	NewStock int    `json:"new_stock,omitempty"`
	Message  string `json:"message"`
}

func (h *HTTPHandler) Restock(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, restockResponse{Message: "invalid product id"})
		return
	}

	var req restockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, restockResponse{Message: "invalid request body"})
		return
	}

	newStock, err := h.orders.Restock(r.Context(), productID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidQuantity):
			writeJSON(w, http.StatusBadRequest, restockResponse{Message: "quantity must be positive"})
		case errors.Is(err, domain.ErrProductNotFound):
			writeJSON(w, http.StatusNotFound, restockResponse{Message: "product not found"})
		default:
			writeJSON(w, http.StatusInternalServerError, restockResponse{Message: "restock failed"})
		}
		return
	}

	writeJSON(w, http.StatusOK, restockResponse{
		Success:  true,
		NewStock: newStock,
		Message:  "stock updated",
	})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
