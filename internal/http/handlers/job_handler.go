package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/dkondrashov/marketplace-backend/internal/dto"
	"github.com/dkondrashov/marketplace-backend/internal/http/handlers/common"
	"github.com/dkondrashov/marketplace-backend/internal/service"
)

// JobHandler предоставляет HTTP слой работ.
type JobHandler struct {
	jobs *service.JobService
}

// NewJobHandler создаёт хэндлер.
func NewJobHandler(jobs *service.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// PostJob обрабатывает POST /jobs. Только для работодателей.
func (h *JobHandler) PostJob(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.PostJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	budget, err := decimal.NewFromString(req.Budget)
	if err != nil {
		common.RespondBadRequest(c, "некорректный формат бюджета")
		return
	}

	job, err := h.jobs.PostJob(c.Request.Context(), userID, service.PostJobInput{
		Title:          req.Title,
		Description:    req.Description,
		Budget:         budget,
		SkillsRequired: req.SkillsRequired,
		Duration:       req.Duration,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, job)
}

// GetJob обрабатывает GET /jobs/:id.
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	job, err := h.jobs.GetJob(c.Request.Context(), jobID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListOpen обрабатывает GET /jobs.
func (h *JobHandler) ListOpen(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	jobs, err := h.jobs.ListOpen(c.Request.Context(), limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// ListMine обрабатывает GET /jobs/mine. Работы текущего работодателя.
func (h *JobHandler) ListMine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	jobs, err := h.jobs.ListMine(c.Request.Context(), userID, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// RemainingBudget обрабатывает GET /jobs/:id/budget.
func (h *JobHandler) RemainingBudget(c *gin.Context) {
	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	remaining, err := h.jobs.RemainingBudget(c.Request.Context(), jobID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"remaining_budget": remaining})
}
