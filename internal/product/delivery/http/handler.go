package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	identity "github.com/tair/retail-core/internal/identity/domain"
	"github.com/tair/retail-core/internal/middleware"
	"github.com/tair/retail-core/internal/product/domain"
	"github.com/tair/retail-core/internal/product/usecase/command"
	"github.com/tair/retail-core/internal/product/usecase/query"
	stockdomain "github.com/tair/retail-core/internal/stock/domain"
	stockcommand "github.com/tair/retail-core/internal/stock/usecase/command"
	stockquery "github.com/tair/retail-core/internal/stock/usecase/query"
	tenantdomain "github.com/tair/retail-core/internal/tenant/domain"
	"github.com/tair/retail-core/pkg/logger"
)

// ProductHandler handles HTTP requests for products and their stock
type ProductHandler struct {
	createProduct *command.CreateProductHandler
	getProduct    *query.GetProductHandler
	listProducts  *query.ListProductsHandler
	restock       *stockcommand.RestockHandler
	adjustStock   *stockcommand.AdjustStockHandler
	listMovements *stockquery.ListMovementsHandler
}

// NewProductHandler creates a new product handler
func NewProductHandler(
	createProduct *command.CreateProductHandler,
	getProduct *query.GetProductHandler,
	listProducts *query.ListProductsHandler,
	restock *stockcommand.RestockHandler,
	adjustStock *stockcommand.AdjustStockHandler,
	listMovements *stockquery.ListMovementsHandler,
) *ProductHandler {
	return &ProductHandler{
		createProduct: createProduct,
		getProduct:    getProduct,
		listProducts:  listProducts,
		restock:       restock,
		adjustStock:   adjustStock,
		listMovements: listMovements,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CreateProduct handles POST /api/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{
			Success: false,
			Error:   "Authentication required",
		})
		return
	}

	var req struct {
		TenantID uint   `json:"tenant_id"`
		Name     string `json:"name"`
		SKU      string `json:"sku"`
		Price    string `json:"price"`
		StockQty int    `json:"stock_qty"`
		MinStock int    `json:"min_stock"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid price",
		})
		return
	}

	product, err := h.createProduct.Handle(r.Context(), command.CreateProductCommand{
		Actor:    actor,
		TenantID: req.TenantID,
		Name:     req.Name,
		SKU:      req.SKU,
		Price:    price,
		StockQty: req.StockQty,
		MinStock: req.MinStock,
	})
	if err != nil {
		respondError(r, w, err)
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Product created successfully",
		Data:    product,
	})
}

// GetProduct handles GET /api/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
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
			Error:   "Invalid product ID",
		})
		return
	}

	product, err := h.getProduct.Handle(r.Context(), query.GetProductQuery{
		Actor:     actor,
		ProductID: id,
	})
	if err != nil {
		respondError(r, w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    product,
	})
}

// ListProducts handles GET /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
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
	lowStock := r.URL.Query().Get("low_stock") == "true"

	products, err := h.listProducts.Handle(r.Context(), query.ListProductsQuery{
		Actor:    actor,
		LowStock: lowStock,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		respondError(r, w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    products,
	})
}

// Restock handles POST /api/products/{id}/restock
func (h *ProductHandler) Restock(w http.ResponseWriter, r *http.Request) {
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
			Error:   "Invalid product ID",
		})
		return
	}

	var req struct {
		Quantity int    `json:"quantity"`
		Reason   string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	transaction, err := h.restock.Handle(r.Context(), stockcommand.RestockCommand{
		Actor:     actor,
		ProductID: id,
		Quantity:  req.Quantity,
		Reason:    req.Reason,
	})
	if err != nil {
		respondError(r, w, err)
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Stock added successfully",
		Data:    transaction,
	})
}

// AdjustStock handles POST /api/products/{id}/adjust
func (h *ProductHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
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
			Error:   "Invalid product ID",
		})
		return
	}

	var req struct {
		Quantity int    `json:"quantity"`
		Reason   string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	transaction, err := h.adjustStock.Handle(r.Context(), stockcommand.AdjustStockCommand{
		Actor:     actor,
		ProductID: id,
		Quantity:  req.Quantity,
		Reason:    req.Reason,
	})
	if err != nil {
		respondError(r, w, err)
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Stock adjusted successfully",
		Data:    transaction,
	})
}

// ListMovements handles GET /api/products/{id}/movements
func (h *ProductHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
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
			Error:   "Invalid product ID",
		})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	movements, err := h.listMovements.Handle(r.Context(), stockquery.ListMovementsQuery{
		Actor:     actor,
		ProductID: id,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		respondError(r, w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    movements,
	})
}

// RegisterRoutes registers all product routes on the /api subrouter
func (h *ProductHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/products", h.ListProducts).Methods("GET")
	router.HandleFunc("/products", h.CreateProduct).Methods("POST")
	router.HandleFunc("/products/{id}", h.GetProduct).Methods("GET")
	router.HandleFunc("/products/{id}/restock", h.Restock).Methods("POST")
	router.HandleFunc("/products/{id}/adjust", h.AdjustStock).Methods("POST")
	router.HandleFunc("/products/{id}/movements", h.ListMovements).Methods("GET")
}

func respondError(r *http.Request, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, stockdomain.ErrInvalidRequest),
		errors.Is(err, stockdomain.ErrInsufficientStock):
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
	case errors.Is(err, domain.ErrNotFound):
		respondJSON(w, http.StatusNotFound, Response{
			Success: false,
			Error:   "Product not found",
		})
	case errors.Is(err, identity.ErrUnauthorized),
		errors.Is(err, tenantdomain.ErrAccessDenied),
		errors.Is(err, tenantdomain.ErrSuspended):
		respondJSON(w, http.StatusForbidden, Response{
			Success: false,
			Error:   err.Error(),
		})
	case errors.Is(err, tenantdomain.ErrNotFound):
		respondJSON(w, http.StatusNotFound, Response{
			Success: false,
			Error:   err.Error(),
		})
	default:
		logger.Error(r.Context()).Err(err).Msg("Product request failed")
		respondJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Internal server error",
		})
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
