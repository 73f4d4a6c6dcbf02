package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"pharmapool.backend/internal/domain/entities"
	domainerrors "pharmapool.backend/internal/domain/errors"
	"pharmapool.backend/internal/interfaces/http/middleware"
	"pharmapool.backend/internal/interfaces/http/response"
)

type escrowService interface {
	CreateWallet(ctx context.Context, kind entities.ConversationKind, conversationID, requesterID uuid.UUID, input *entities.CreateWalletInput) (*entities.WalletDetails, error)
	GetWalletDetails(ctx context.Context, kind entities.ConversationKind, conversationID, userID uuid.UUID) (*entities.WalletDetails, error)
	InitializePledge(ctx context.Context, walletAddress string, userID uuid.UUID, input *entities.InitializePledgeInput) (*entities.InitializePledgeResult, error)
	VerifyPledge(ctx context.Context, kind entities.ConversationKind, walletAddress string, userID uuid.UUID, input *entities.VerifyPledgeInput) (*entities.VerifyPledgeResult, error)
	AcknowledgeReceipt(ctx context.Context, kind entities.ConversationKind, userID uuid.UUID, input *entities.AcknowledgeReceiptInput) (*entities.WalletView, error)
}

// WalletHandler handles escrow wallet endpoints
type WalletHandler struct {
	escrow escrowService
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(escrow escrowService) *WalletHandler {
	return &WalletHandler{escrow: escrow}
}

// CreateWallet opens an escrow wallet for a conversation
// POST /api/v1/wallet/:kind/:conversationId
func (h *WalletHandler) CreateWallet(c *gin.Context) {
	kind, conversationID, ok := conversationParams(c)
	if !ok {
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var input entities.CreateWalletInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	details, err := h.escrow.CreateWallet(c.Request.Context(), kind, conversationID, userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message":      "wallet created successfully",
		"wallet":       details.Wallet,
		"conversation": details.Conversation,
	})
}

// GetWalletDetails returns the wallet bound to a conversation
// GET /api/v1/wallet/:kind/:conversationId
func (h *WalletHandler) GetWalletDetails(c *gin.Context) {
	kind, conversationID, ok := conversationParams(c)
	if !ok {
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	details, err := h.escrow.GetWalletDetails(c.Request.Context(), kind, conversationID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message":      "wallet fetched successfully",
		"wallet":       details.Wallet,
		"conversation": details.Conversation,
	})
}

// InitializePledge starts a gateway checkout for a pledge
// POST /api/v1/wallet/payment/accept/:walletAddress
func (h *WalletHandler) InitializePledge(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var input entities.InitializePledgeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	result, err := h.escrow.InitializePledge(c.Request.Context(), c.Param("walletAddress"), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// VerifyPledge confirms a pledge with the gateway. A declined payment is
// still a 200 with success=false.
// POST /api/v1/wallet/payment/verify/:kind/:walletAddress
func (h *WalletHandler) VerifyPledge(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var input entities.VerifyPledgeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	result, err := h.escrow.VerifyPledge(c.Request.Context(), kind, c.Param("walletAddress"), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "payment successful"
	if !result.Success {
		message = "payment not successful"
	}
	response.Success(c, http.StatusOK, gin.H{
		"success": result.Success,
		"message": message,
		"wallet":  result.Wallet,
	})
}

// AcknowledgeReceipt records receipt of goods or funds
// POST /api/v1/wallet/receipt/acknowledge/:kind
func (h *WalletHandler) AcknowledgeReceipt(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var input entities.AcknowledgeReceiptInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	wallet, err := h.escrow.AcknowledgeReceipt(c.Request.Context(), kind, userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "acknowledgement successful",
		"wallet":  wallet,
	})
}

func requireUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return uuid.Nil, false
	}
	return userID, true
}

func kindParam(c *gin.Context) (entities.ConversationKind, bool) {
	kind, ok := entities.ParseConversationKind(c.Param("kind"))
	if !ok {
		response.Error(c, domainerrors.BadRequest("kind must be chat or chatroom"))
		return "", false
	}
	return kind, true
}

func conversationParams(c *gin.Context) (entities.ConversationKind, uuid.UUID, bool) {
	kind, ok := kindParam(c)
	if !ok {
		return "", uuid.Nil, false
	}
	conversationID, err := uuid.Parse(c.Param("conversationId"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid conversation ID"))
		return "", uuid.Nil, false
	}
	return kind, conversationID, true
}
