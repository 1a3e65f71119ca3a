package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	identity "github.com/tair/retail-core/internal/identity/domain"
	"github.com/tair/retail-core/internal/middleware"
	productdomain "github.com/tair/retail-core/internal/product/domain"
	"github.com/tair/retail-core/internal/sale/domain"
	"github.com/tair/retail-core/internal/sale/usecase/command"
	"github.com/tair/retail-core/internal/sale/usecase/query"
	stockdomain "github.com/tair/retail-core/internal/stock/domain"
	tenantdomain "github.com/tair/retail-core/internal/tenant/domain"
	"github.com/tair/retail-core/pkg/logger"
)

// SaleHandler handles HTTP requests for sales
type SaleHandler struct {
	createSale *command.CreateSaleHandler
	cancelSale *command.CancelSaleHandler
	getSale    *query.GetSaleHandler
	listSales  *query.ListSalesHandler
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(
	createSale *command.CreateSaleHandler,
	cancelSale *command.CancelSaleHandler,
	getSale *query.GetSaleHandler,
	listSales *query.ListSalesHandler,
) *SaleHandler {
	return &SaleHandler{
		createSale: createSale,
		cancelSale: cancelSale,
		getSale:    getSale,
		listSales:  listSales,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CreateSale handles POST /api/sales
func (h *SaleHandler) CreateSale(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{
			Success: false,
			Error:   "Authentication required",
		})
		return
	}

	var req struct {
		TenantID uint                    `json:"tenant_id"`
		Items    []command.SaleItemInput `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	sale, err := h.createSale.Handle(r.Context(), command.CreateSaleCommand{
		Actor:    actor,
		TenantID: req.TenantID,
		Items:    req.Items,
	})
	if err != nil {
		h.respondError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Sale committed successfully",
		Data:    sale,
	})
}

// CancelSale handles POST /api/sales/{id}/cancel
func (h *SaleHandler) CancelSale(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{
			Success: false,
			Error:   "Authentication required",
		})
		return
	}

	id, err := pathID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid sale ID",
		})
		return
	}

	sale, err := h.cancelSale.Handle(r.Context(), command.CancelSaleCommand{
		Actor:  actor,
		SaleID: id,
	})
	if err != nil {
		h.respondError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Sale cancelled successfully",
		Data:    sale,
	})
}

// GetSale handles GET /api/sales/{id}
func (h *SaleHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{
			Success: false,
			Error:   "Authentication required",
		})
		return
	}

	id, err := pathID(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid sale ID",
		})
		return
	}

	sale, err := h.getSale.Handle(r.Context(), query.GetSaleQuery{
		Actor:  actor,
		SaleID: id,
	})
	if err != nil {
		h.respondError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    sale,
	})
}

// ListSales handles GET /api/sales
func (h *SaleHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{
			Success: false,
			Error:   "Authentication required",
		})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	sales, err := h.listSales.Handle(r.Context(), query.ListSalesQuery{
		Actor:  actor,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.respondError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    sales,
	})
}

// RegisterRoutes registers all sale routes on the /api subrouter
func (h *SaleHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/sales", h.ListSales).Methods("GET")
	router.HandleFunc("/sales", h.CreateSale).Methods("POST")
	router.HandleFunc("/sales/{id}", h.GetSale).Methods("GET")
	router.HandleFunc("/sales/{id}/cancel", h.CancelSale).Methods("POST")
}

// RegisterHealthCheck registers health check endpoint
func RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "Database unavailable",
			})
			return
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Retail core service is healthy",
		})
	}).Methods("GET")
}

func (h *SaleHandler) respondError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		logger.Error(ctx).Err(err).Msg("Sale request failed")
		respondJSON(w, status, Response{
			Success: false,
			Error:   "Internal server error",
		})
		return
	}

	respondJSON(w, status, Response{
		Success: false,
		Error:   err.Error(),
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, stockdomain.ErrInsufficientStock):
		return http.StatusBadRequest
	case errors.Is(err, identity.ErrUnauthorized),
		errors.Is(err, tenantdomain.ErrAccessDenied),
		errors.Is(err, tenantdomain.ErrSuspended):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, tenantdomain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	return uint(id), err
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
