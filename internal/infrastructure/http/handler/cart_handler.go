package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mrops-br/storefront-api/internal/app/dto"
	"github.com/mrops-br/storefront-api/internal/app/service"
	"github.com/mrops-br/storefront-api/internal/domain"
	"github.com/mrops-br/storefront-api/internal/infrastructure/http/response"
)

// CartHandler handles HTTP requests for the session cart
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(service *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger,
	}
}

// GetCart handles GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.GetCart(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, cart)
}

// CountItems handles GET /api/cart/count
func (h *CartHandler) CountItems(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.service.Count(r.Context()))
}

// AddItem handles POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req dto.AddToCartRequest
	if err := decodeJSONBody(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Invalid add to cart request",
			slog.String("error", err.Error()),
		)
		writeServiceError(w, err)
		return
	}

	cart, err := h.service.AddToCart(r.Context(), req.ProductID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, cart)
}

// RemoveItem handles DELETE /api/cart/items/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.Atoi(chi.URLParam(r, "productId"))
	if err != nil || productID <= 0 {
		response.Error(w, http.StatusBadRequest, domain.ErrInvalidProductID)
		return
	}

	if err := h.service.RemoveFromCart(r.Context(), productID); err != nil {
		writeServiceError(w, err)
		return
	}

	response.NoContent(w)
}

// ClearCart handles DELETE /api/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.service.ClearCart(r.Context())
	response.NoContent(w)
}
