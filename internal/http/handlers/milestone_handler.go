package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/dkondrashov/marketplace-backend/internal/dto"
	"github.com/dkondrashov/marketplace-backend/internal/http/handlers/common"
	"github.com/dkondrashov/marketplace-backend/internal/service"
)

// MilestoneHandler предоставляет HTTP слой вех и их одобрения.
type MilestoneHandler struct {
	milestones *service.MilestoneService
	escrow     *service.EscrowService
}

// NewMilestoneHandler создаёт хэндлер.
func NewMilestoneHandler(milestones *service.MilestoneService, escrow *service.EscrowService) *MilestoneHandler {
	return &MilestoneHandler{milestones: milestones, escrow: escrow}
}

// AddMilestone обрабатывает POST /jobs/:id/milestones. Только владелец работы.
func (h *MilestoneHandler) AddMilestone(c *gin.Context) {
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

	var req dto.AddMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	payment, err := decimal.NewFromString(req.Payment)
	if err != nil {
		common.RespondBadRequest(c, "некорректный формат суммы")
		return
	}

	milestone, err := h.milestones.AddMilestone(c.Request.Context(), userID, jobID, req.Title, payment)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, milestone)
}

// ListJobMilestones обрабатывает GET /jobs/:id/milestones.
func (h *MilestoneHandler) ListJobMilestones(c *gin.Context) {
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

	milestones, err := h.milestones.ListJobMilestones(c.Request.Context(), userID, jobID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"milestones": milestones})
}

// Submit обрабатывает POST /milestones/:id/submit. Только назначенный фрилансер.
func (h *MilestoneHandler) Submit(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	milestoneID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	result, err := h.milestones.Submit(c.Request.Context(), userID, milestoneID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"milestone": result.Milestone,
		"outcome":   result.Outcome,
	})
}

// Approve обрабатывает POST /milestones/:id/approve. Только владелец работы.
// Одобрение последней вехи автоматически переводит накопленную сумму
// на основной кошелёк фрилансера.
func (h *MilestoneHandler) Approve(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	milestoneID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	result, err := h.escrow.ApproveMilestone(c.Request.Context(), userID, milestoneID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if result.AlreadyApproved {
		c.JSON(http.StatusOK, gin.H{
			"milestone": result.Milestone,
			"message":   "веха уже одобрена",
		})
		return
	}

	response := gin.H{
		"milestone":      result.Milestone,
		"escrow_balance": result.EscrowBalance,
		"finalized":      result.Finalized,
	}
	if result.Finalized {
		response["released"] = result.Released
	}

	c.JSON(http.StatusOK, response)
}
