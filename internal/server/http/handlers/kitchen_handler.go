package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/gopherfood/internal/domain/model"
	"github.com/polkiloo/gopherfood/internal/server/http/dto"
)

// KitchenHandler serves the cooking queue to kitchen staff.
type KitchenHandler struct {
	facade KitchenFacade
	feed   http.Handler
}

// NewKitchenHandler constructs KitchenHandler. feed upgrades websocket subscribers.
func NewKitchenHandler(facade KitchenFacade, feed http.Handler) *KitchenHandler {
	return &KitchenHandler{facade: facade, feed: feed}
}

// Queue handles GET /api/kitchen/orders.
func (h *KitchenHandler) Queue(c *gin.Context) {
	orders, err := h.facade.KitchenQueue(c.Request.Context(), CurrentPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders))
}

// Aggregated handles GET /api/kitchen/aggregated.
func (h *KitchenHandler) Aggregated(c *gin.Context) {
	items, err := h.facade.KitchenAggregate(c.Request.Context(), CurrentPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response := make([]dto.AggregatedItemResponse, 0, len(items))
	for _, it := range items {
		response = append(response, dto.AggregatedItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Pending:     it.Pending,
			Cooking:     it.Cooking,
		})
	}
	c.JSON(http.StatusOK, response)
}

// UpdateItem handles PUT /api/kitchen/items/:itemId/status?status=.
func (h *KitchenHandler) UpdateItem(c *gin.Context) {
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}
	status, err := model.ParseItemStatus(c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}

	order, err := h.facade.UpdateItemStatus(c.Request.Context(), CurrentPrincipal(c), itemID, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Claim handles POST /api/kitchen/orders/:id/claim.
func (h *KitchenHandler) Claim(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.facade.ClaimOrder(c.Request.Context(), CurrentPrincipal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Finish handles POST /api/kitchen/orders/:id/finish.
func (h *KitchenHandler) Finish(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.facade.FinishOrder(c.Request.Context(), CurrentPrincipal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Feed handles GET /api/kitchen/ws.
func (h *KitchenHandler) Feed(c *gin.Context) {
	if h.feed == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.ErrorResponse{Code: "UNAVAILABLE", Message: "kitchen feed disabled"})
		return
	}
	h.feed.ServeHTTP(c.Writer, c.Request)
}
