package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dkondrashov/marketplace-backend/internal/http/handlers/common"
	"github.com/dkondrashov/marketplace-backend/internal/service"
)

// ApplicationHandler предоставляет HTTP слой откликов на работы.
type ApplicationHandler struct {
	applications *service.ApplicationService
}

// NewApplicationHandler создаёт хэндлер.
func NewApplicationHandler(applications *service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

// Apply обрабатывает POST /jobs/:id/apply. Только для фрилансеров.
func (h *ApplicationHandler) Apply(c *gin.Context) {
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

	application, err := h.applications.Apply(c.Request.Context(), userID, jobID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, application)
}

// ListApplicants обрабатывает GET /jobs/:id/applicants. Только владелец работы.
func (h *ApplicationHandler) ListApplicants(c *gin.Context) {
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

	applicants, err := h.applications.ListApplicants(c.Request.Context(), userID, jobID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"applicants": applicants})
}

// ListMy обрабатывает GET /applications. Отклики текущего фрилансера.
func (h *ApplicationHandler) ListMy(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	applications, err := h.applications.ListMy(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": applications})
}

// Accept обрабатывает POST /applications/:id/accept.
func (h *ApplicationHandler) Accept(c *gin.Context) {
	h.decide(c, true)
}

// Reject обрабатывает POST /applications/:id/reject.
func (h *ApplicationHandler) Reject(c *gin.Context) {
	h.decide(c, false)
}

func (h *ApplicationHandler) decide(c *gin.Context, accept bool) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	applicationID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var application interface{}
	if accept {
		application, err = h.applications.Accept(c.Request.Context(), userID, applicationID)
	} else {
		application, err = h.applications.Reject(c.Request.Context(), userID, applicationID)
	}
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, application)
}
