package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/gopherfood/internal/server/http/dto"
)

const (
	signatureHeader = "Stripe-Signature"
	maxWebhookBytes = 64 << 10
)

// PaymentHandler manages checkout links and processor callbacks.
type PaymentHandler struct {
	facade PaymentFacade
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(facade PaymentFacade) *PaymentHandler {
	return &PaymentHandler{facade: facade}
}

// Link handles POST /api/payments/:orderId/link.
func (h *PaymentHandler) Link(c *gin.Context) {
	orderID, ok := pathID(c, "orderId")
	if !ok {
		return
	}
	url, err := h.facade.CreatePaymentLink(c.Request.Context(), CurrentPrincipal(c), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PaymentLinkResponse{OrderID: orderID, CheckoutURL: url})
}

// Webhook handles POST /api/payments/webhook. Rejected callbacks are still
// acknowledged so the processor stops retrying them; only store failures
// ask for a retry.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusBadRequest)
		return
	}

	if err := h.facade.HandlePaymentCallback(c.Request.Context(), payload, c.GetHeader(signatureHeader)); err != nil {
		_ = c.Error(err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusOK)
}
