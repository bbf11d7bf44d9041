package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/gopherfood/internal/domain/model"
	"github.com/polkiloo/gopherfood/internal/server/http/dto"
)

// ShippingHandler manages the caller's default delivery address.
type ShippingHandler struct {
	facade ShippingFacade
}

// NewShippingHandler constructs ShippingHandler.
func NewShippingHandler(facade ShippingFacade) *ShippingHandler {
	return &ShippingHandler{facade: facade}
}

// Get handles GET /api/shipping/me.
func (h *ShippingHandler) Get(c *gin.Context) {
	info, err := h.facade.DefaultShipping(c.Request.Context(), CurrentPrincipal(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toShippingResponse(info.ShippingAddress, info.UpdatedAt))
}

// Put handles PUT /api/shipping/me.
func (h *ShippingHandler) Put(c *gin.Context) {
	var req dto.ShippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed shipping request")
		return
	}

	info, err := h.facade.SetDefaultShipping(c.Request.Context(), CurrentPrincipal(c).UserID, toShippingAddress(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toShippingResponse(info.ShippingAddress, info.UpdatedAt))
}

func toShippingAddress(req dto.ShippingRequest) model.ShippingAddress {
	return model.ShippingAddress{
		Phone:       req.Phone,
		AddressLine: req.AddressLine,
		City:        req.City,
		Note:        req.Note,
	}
}

func toShippingResponse(addr model.ShippingAddress, updatedAt time.Time) dto.ShippingResponse {
	resp := dto.ShippingResponse{
		Phone:       addr.Phone,
		AddressLine: addr.AddressLine,
		City:        addr.City,
		Note:        addr.Note,
	}
	if !updatedAt.IsZero() {
		resp.UpdatedAt = &updatedAt
	}
	return resp
}
