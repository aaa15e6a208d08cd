package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"skillscope/internal/domain/reporting"
	"skillscope/internal/domain/skill"
	"skillscope/internal/shared/logger"
	"skillscope/internal/shared/utils"
)

// ReportingHandler serves the read-only analytics views backing the
// dashboard pages.
type ReportingHandler struct {
	reports     reporting.Repository
	technicians skill.TechnicianRepository
	logger      logger.Interface
}

func NewReportingHandler(reports reporting.Repository, technicians skill.TechnicianRepository, log logger.Interface) *ReportingHandler {
	return &ReportingHandler{reports: reports, technicians: technicians, logger: log}
}

func (h *ReportingHandler) TopDiscoveredSkills(c *gin.Context) {
	rows, err := h.reports.TopDiscoveredSkills(c.Request.Context(), countQuery(c, 20))
	if err != nil {
		h.logger.Errorw("failed to load top discovered skills", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", rows)
}

func (h *ReportingHandler) ManagedSkillOccurrences(c *gin.Context) {
	rows, err := h.reports.ManagedSkillOccurrences(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", rows)
}

func (h *ReportingHandler) TopUnassociatedSkills(c *gin.Context) {
	rows, err := h.reports.TopUnassociatedSkills(c.Request.Context(), countQuery(c, 10))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", rows)
}

func (h *ReportingHandler) ListTechnicians(c *gin.Context) {
	technicians, err := h.technicians.ListActive(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", technicians)
}

func (h *ReportingHandler) ManagedSkillsByTechnician(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid technician ID")
		return
	}
	rows, err := h.reports.ManagedSkillsByTechnician(c.Request.Context(), uint(id))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", rows)
}

func (h *ReportingHandler) TechniciansByManagedSkill(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Query parameter 'name' is required")
		return
	}
	rows, err := h.reports.TechniciansByManagedSkill(c.Request.Context(), name)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", rows)
}

func (h *ReportingHandler) Throughput(c *gin.Context) {
	row, err := h.reports.CompletionThroughput(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", row)
}

func countQuery(c *gin.Context, fallback int) int {
	raw := c.Query("count")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > 500 {
		return fallback
	}
	return n
}
