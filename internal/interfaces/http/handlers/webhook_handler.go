package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"pharmapool.backend/internal/domain/entities"
	domainerrors "pharmapool.backend/internal/domain/errors"
	"pharmapool.backend/internal/infrastructure/gateway"
	"pharmapool.backend/internal/interfaces/http/response"
	"pharmapool.backend/pkg/logger"
)

const (
	PaystackSignatureHeader = "X-Paystack-Signature"

	maxWebhookBody = 1 << 20
)

type signatureVerifier interface {
	VerifyWebhookSignature(body []byte, signature string) bool
}

type callbackService interface {
	VerifyByGatewayCallback(ctx context.Context, walletAddress, reference string) (*entities.VerifyPledgeResult, error)
}

// WebhookHandler handles payment gateway callbacks
type WebhookHandler struct {
	verifier signatureVerifier
	escrow   callbackService
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(verifier signatureVerifier, escrow callbackService) *WebhookHandler {
	return &WebhookHandler{verifier: verifier, escrow: escrow}
}

// HandlePaystackWebhook re-verifies the pledge named by a charge.success
// event. The event body itself is never trusted for the outcome.
// POST /api/v1/webhooks/paystack
func (h *WebhookHandler) HandlePaystackWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("unreadable body"))
		return
	}

	if !h.verifier.VerifyWebhookSignature(body, c.GetHeader(PaystackSignatureHeader)) {
		logger.Warn(c.Request.Context(), "Rejected webhook with bad signature")
		response.Error(c, domainerrors.Unauthorized("invalid signature"))
		return
	}

	event, err := gateway.ParseWebhookEvent(body)
	if err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if event.Event != gateway.EventChargeSuccess || event.WalletAddress == "" {
		logger.Debug(c.Request.Context(), "Ignoring webhook event",
			zap.String("event", event.Event),
			zap.String("reference", event.Reference),
		)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	// A non-2xx answer makes the gateway redeliver, which is what we want
	// while the outcome is unknown.
	if _, err := h.escrow.VerifyByGatewayCallback(c.Request.Context(), event.WalletAddress, event.Reference); err != nil {
		logger.Error(c.Request.Context(), "Webhook verification failed",
			zap.String("wallet_address", event.WalletAddress),
			zap.String("reference", event.Reference),
			zap.Error(err),
		)
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
