package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/gopherfood/internal/domain/model"
	"github.com/polkiloo/gopherfood/internal/server/http/dto"
)

// PromotionHandler serves discount previews and promotion administration.
type PromotionHandler struct {
	facade PromotionFacade
}

// NewPromotionHandler constructs PromotionHandler.
func NewPromotionHandler(facade PromotionFacade) *PromotionHandler {
	return &PromotionHandler{facade: facade}
}

// Preview handles POST /api/promotions/preview.
func (h *PromotionHandler) Preview(c *gin.Context) {
	var req dto.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed preview request")
		return
	}

	result, err := h.facade.PreviewDiscount(c.Request.Context(), req.Code, toOrderLines(req.Items))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.PreviewResponse{Code: req.Code, Discount: result.Amount, Message: result.Message}
	if result.Promotion != nil {
		id := result.Promotion.ID
		resp.PromotionID = &id
	}
	c.JSON(http.StatusOK, resp)
}

// List handles GET /api/admin/promotions.
func (h *PromotionHandler) List(c *gin.Context) {
	promos, err := h.facade.Promotions(c.Request.Context(), CurrentPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response := make([]dto.PromotionResponse, 0, len(promos))
	for _, p := range promos {
		response = append(response, toPromotionResponse(p))
	}
	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/admin/promotions/:id.
func (h *PromotionHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	promo, err := h.facade.Promotion(c.Request.Context(), CurrentPrincipal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPromotionResponse(*promo))
}

// Create handles POST /api/admin/promotions.
func (h *PromotionHandler) Create(c *gin.Context) {
	var req dto.PromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed promotion")
		return
	}

	promo, err := h.facade.CreatePromotion(c.Request.Context(), CurrentPrincipal(c), toPromotion(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPromotionResponse(*promo))
}

// Update handles PATCH /api/admin/promotions/:id.
func (h *PromotionHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var patch dto.PromotionPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "malformed promotion patch")
		return
	}

	promo, err := h.facade.UpdatePromotion(c.Request.Context(), CurrentPrincipal(c), id, patch.Update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPromotionResponse(*promo))
}

// Delete handles DELETE /api/admin/promotions/:id.
func (h *PromotionHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.facade.DeletePromotion(c.Request.Context(), CurrentPrincipal(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func toPromotion(req dto.PromotionRequest) model.Promotion {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return model.Promotion{
		Code:          req.Code,
		Name:          req.Name,
		Type:          model.PromotionType(strings.ToUpper(req.Type)),
		Value:         req.Value,
		MinOrderTotal: req.MinOrderTotal,
		Scope:         model.PromotionScope(strings.ToUpper(req.Scope)),
		CategoryID:    req.CategoryID,
		ProductIDs:    req.ProductIDs,
		Active:        active,
		StartAt:       req.StartAt,
		EndAt:         req.EndAt,
		MaxUses:       req.MaxUses,
	}
}

func toPromotionResponse(p model.Promotion) dto.PromotionResponse {
	return dto.PromotionResponse{
		ID:            p.ID,
		Code:          p.Code,
		Name:          p.Name,
		Type:          string(p.Type),
		Value:         p.Value,
		MinOrderTotal: p.MinOrderTotal,
		Scope:         string(p.Scope),
		CategoryID:    p.CategoryID,
		ProductIDs:    p.ProductIDs,
		Active:        p.Active,
		StartAt:       p.StartAt,
		EndAt:         p.EndAt,
		MaxUses:       p.MaxUses,
		UsedCount:     p.UsedCount,
		CreatedAt:     p.CreatedAt,
	}
}
