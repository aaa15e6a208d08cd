package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"skillscope/internal/application/taxonomy"
	"skillscope/internal/shared/logger"
	"skillscope/internal/shared/utils"
)

// TaxonomyHandler exposes taxonomy curation: CRUD on managed and distilled
// skills plus the manual merge and associate actions.
type TaxonomyHandler struct {
	service *taxonomy.Service
	logger  logger.Interface
}

func NewTaxonomyHandler(service *taxonomy.Service, log logger.Interface) *TaxonomyHandler {
	return &TaxonomyHandler{service: service, logger: log}
}

type skillRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=255"`
	Description string `json:"description" binding:"max=1024"`
	IsException bool   `json:"is_exception"`
}

type mergeRequest struct {
	SourceID uint `json:"source_id" binding:"required"`
	TargetID uint `json:"target_id" binding:"required"`
}

type associateRequest struct {
	ChildID  uint `json:"child_id" binding:"required"`
	ParentID uint `json:"parent_id" binding:"required"`
}

func (h *TaxonomyHandler) GetCounts(c *gin.Context) {
	counts, err := h.service.Counts(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to load taxonomy counts", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", counts)
}

func (h *TaxonomyHandler) ListManaged(c *gin.Context) {
	skills, err := h.service.ListManaged(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", skills)
}

func (h *TaxonomyHandler) CreateManaged(c *gin.Context) {
	var req skillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.service.CreateManaged(c.Request.Context(), req.Name, req.Description, req.IsException)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, created)
}

func (h *TaxonomyHandler) UpdateManaged(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req skillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.UpdateManaged(c.Request.Context(), id, req.Name, req.Description, req.IsException); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Managed skill updated", nil)
}

func (h *TaxonomyHandler) DeleteManaged(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.service.DeleteManaged(c.Request.Context(), id); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Managed skill deleted", nil)
}

func (h *TaxonomyHandler) MergeManaged(c *gin.Context) {
	var req mergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SourceID == req.TargetID {
		utils.ErrorResponse(c, http.StatusBadRequest, "Cannot merge a skill into itself")
		return
	}
	if err := h.service.MergeManaged(c.Request.Context(), req.SourceID, req.TargetID); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Managed skills merged", nil)
}

// AssociateDiscovered links a discovered skill to a managed skill.
func (h *TaxonomyHandler) AssociateDiscovered(c *gin.Context) {
	var req associateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.service.AssociateDiscovered(c.Request.Context(), req.ChildID, req.ParentID); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Skill associated", nil)
}

func (h *TaxonomyHandler) ListDistilled(c *gin.Context) {
	skills, err := h.service.ListDistilled(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", skills)
}

func (h *TaxonomyHandler) CreateDistilled(c *gin.Context) {
	var req skillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	created, err := h.service.CreateDistilled(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, created)
}

func (h *TaxonomyHandler) UpdateDistilled(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req skillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.service.UpdateDistilled(c.Request.Context(), id, req.Name, req.Description); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Distilled skill updated", nil)
}

func (h *TaxonomyHandler) DeleteDistilled(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.service.DeleteDistilled(c.Request.Context(), id); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Distilled skill deleted", nil)
}

func (h *TaxonomyHandler) MergeDistilled(c *gin.Context) {
	var req mergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SourceID == req.TargetID {
		utils.ErrorResponse(c, http.StatusBadRequest, "Cannot merge a skill into itself")
		return
	}
	if err := h.service.MergeDistilled(c.Request.Context(), req.SourceID, req.TargetID); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Distilled skills merged", nil)
}

// AssociateManaged links a managed skill to a distilled skill.
func (h *TaxonomyHandler) AssociateManaged(c *gin.Context) {
	var req associateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.service.AssociateManaged(c.Request.Context(), req.ChildID, req.ParentID); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Skill associated", nil)
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid skill ID")
		return 0, false
	}
	return uint(id), true
}
