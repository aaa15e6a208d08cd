package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skillscope/internal/domain/queue"
	"skillscope/internal/shared/logger"
	"skillscope/internal/shared/utils"
)

// QueueHandler serves the live worker dashboard and operator queue actions.
type QueueHandler struct {
	queueRepo queue.Repository
	logger    logger.Interface
}

func NewQueueHandler(queueRepo queue.Repository, log logger.Interface) *QueueHandler {
	return &QueueHandler{queueRepo: queueRepo, logger: log}
}

// GetStatus returns per-status ticket counts.
func (h *QueueHandler) GetStatus(c *gin.Context) {
	counts, err := h.queueRepo.StatusCounts(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to load queue status", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"pending":   counts[queue.StatusPending],
		"claimed":   counts[queue.StatusClaimed],
		"completed": counts[queue.StatusCompleted],
		"error":     counts[queue.StatusError],
	})
}

// GetActiveClaims lists tickets currently bound to workers.
func (h *QueueHandler) GetActiveClaims(c *gin.Context) {
	claims, err := h.queueRepo.ActiveClaims(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to load active claims", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", claims)
}

// RequeueErrors moves Error tickets back to Pending for another pass.
func (h *QueueHandler) RequeueErrors(c *gin.Context) {
	count, err := h.queueRepo.RequeueErrors(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to requeue errored tickets", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Errored tickets requeued", gin.H{"requeued": count})
}

// ResetStuck releases claims orphaned by dead workers.
func (h *QueueHandler) ResetStuck(c *gin.Context) {
	count, err := h.queueRepo.ResetStuck(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to reset stuck tickets", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Stuck tickets reset", gin.H{"reset": count})
}
