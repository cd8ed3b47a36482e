package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dkondrashov/marketplace-backend/internal/http/handlers/common"
	"github.com/dkondrashov/marketplace-backend/internal/service"
)

// EscrowHandler предоставляет HTTP слой временных кошельков.
type EscrowHandler struct {
	escrow *service.EscrowService
}

// NewEscrowHandler создаёт хэндлер.
func NewEscrowHandler(escrow *service.EscrowService) *EscrowHandler {
	return &EscrowHandler{escrow: escrow}
}

// ListMine обрабатывает GET /escrow. Временные балансы текущего фрилансера.
func (h *EscrowHandler) ListMine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	balances, err := h.escrow.ListEscrowBalances(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"escrow_balances": balances})
}

// Finalize обрабатывает POST /jobs/:id/finalize.
// Ручной перевод накопленного баланса фрилансеру, обычно не требуется:
// расчёт происходит автоматически при одобрении последней вехи.
func (h *EscrowHandler) Finalize(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	released, err := h.escrow.FinalizePayment(c.Request.Context(), userID, jobID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"released": released})
}
