package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/gopherfood/internal/domain/model"
	"github.com/polkiloo/gopherfood/internal/server/http/dto"
	"github.com/polkiloo/gopherfood/internal/usecase"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Place handles POST /api/orders.
func (h *OrderHandler) Place(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed order request")
		return
	}

	method, err := model.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		respondError(c, err)
		return
	}

	cmd := usecase.PlaceOrderCommand{
		UserID:        CurrentPrincipal(c).UserID,
		Lines:         toOrderLines(req.Items),
		PromoCode:     req.PromoCode,
		PaymentMethod: method,
	}
	if req.Shipping != nil {
		cmd.Shipping = toShippingAddress(*req.Shipping)
	}

	order, err := h.facade.PlaceOrder(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(*order))
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.facade.Order(c.Request.Context(), CurrentPrincipal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// ListMine handles GET /api/orders/my.
func (h *OrderHandler) ListMine(c *gin.Context) {
	orders, err := h.facade.MyOrders(c.Request.Context(), CurrentPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders))
}

// ListAll handles GET /api/orders for administrators.
func (h *OrderHandler) ListAll(c *gin.Context) {
	page, ok := queryInt(c, "page", 0)
	if !ok {
		return
	}
	size, ok := queryInt(c, "size", defaultPageSize)
	if !ok {
		return
	}
	if page < 0 || size <= 0 || size > maxPageSize {
		badRequest(c, "page out of range")
		return
	}

	orders, err := h.facade.AllOrders(c.Request.Context(), CurrentPrincipal(c), page, size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders))
}

// UpdateStatus handles PUT /api/orders/:id/status?status=.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	status, err := model.ParseOrderStatus(c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}

	order, err := h.facade.UpdateOrderStatus(c.Request.Context(), CurrentPrincipal(c), id, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Cancel handles PUT /api/orders/:id/cancel.
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.facade.CancelOrder(c.Request.Context(), CurrentPrincipal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

func toOrderLines(items []dto.OrderLineRequest) []model.OrderLine {
	lines := make([]model.OrderLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, model.OrderLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return lines
}

func toOrderResponses(orders []model.Order) []dto.OrderResponse {
	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o))
	}
	return response
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, dto.OrderItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Status:      string(it.Status),
			ChefID:      it.ChefID,
		})
	}
	return dto.OrderResponse{
		ID:              order.ID,
		UserID:          order.UserID,
		Status:          string(order.Status),
		PaymentMethod:   string(order.PaymentMethod),
		Items:           items,
		Subtotal:        order.Subtotal,
		PromoDiscount:   order.PromoDiscount,
		LoyaltyDiscount: order.LoyaltyDiscount,
		Discount:        order.Discount,
		Total:           order.Total,
		PromotionCode:   order.PromotionCode,
		Shipping:        toShippingResponse(order.Shipping, time.Time{}),
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}
