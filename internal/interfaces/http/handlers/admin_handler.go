package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"pharmapool.backend/internal/domain/entities"
	domainerrors "pharmapool.backend/internal/domain/errors"
	"pharmapool.backend/internal/interfaces/http/response"
	"pharmapool.backend/pkg/utils"
)

const (
	defaultAdminPageSize = 20
	maxAdminPageSize     = 100
)

type adminWalletService interface {
	ListWallets(ctx context.Context, page utils.Page) ([]*entities.WalletView, int64, error)
	GetWalletByID(ctx context.Context, id uuid.UUID) (*entities.WalletDetails, error)
	ListWalletEvents(ctx context.Context, id uuid.UUID) ([]*entities.WalletEvent, error)
}

// AdminHandler handles admin console endpoints
type AdminHandler struct {
	escrow adminWalletService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(escrow adminWalletService) *AdminHandler {
	return &AdminHandler{escrow: escrow}
}

// ListWallets lists wallets, newest first
// GET /api/v1/admin/wallets?page=1&limit=20
func (h *AdminHandler) ListWallets(c *gin.Context) {
	number, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	page := utils.NewPage(number, limit, defaultAdminPageSize, maxAdminPageSize)

	wallets, total, err := h.escrow.ListWallets(c.Request.Context(), page)
	if err != nil {
		response.Error(c, err)
		return
	}
	if wallets == nil {
		wallets = []*entities.WalletView{}
	}

	response.Success(c, http.StatusOK, gin.H{
		"wallets": wallets,
		"meta":    page.Meta(total),
	})
}

// GetWallet returns one wallet with its conversation
// GET /api/v1/admin/wallets/:id
func (h *AdminHandler) GetWallet(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid wallet ID"))
		return
	}

	details, err := h.escrow.GetWalletByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"wallet":       details.Wallet,
		"conversation": details.Conversation,
	})
}

// ListWalletEvents returns a wallet's audit trail
// GET /api/v1/admin/wallets/:id/events
func (h *AdminHandler) ListWalletEvents(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid wallet ID"))
		return
	}

	events, err := h.escrow.ListWalletEvents(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if events == nil {
		events = []*entities.WalletEvent{}
	}

	response.Success(c, http.StatusOK, gin.H{"events": events})
}
