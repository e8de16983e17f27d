// Package handler exposes the on-demand topic interleaving path (spec.md
// §4.3 "Topic path") as an HTTP endpoint, invoked by the UI each time it
// requests a fresh batch of topic suggestions for a user.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	httpPlatform "github.com/iai-group/arxivdigest-go/internal/platform/http"
	ledgerModel "github.com/iai-group/arxivdigest-go/modules/ledger/model"
	"github.com/iai-group/arxivdigest-go/modules/schedule/service"
)

// TopicHandler serves the per-user topic refresh route.
type TopicHandler struct {
	scheduler *service.TopicScheduler
}

// NewTopicHandler creates a new topic handler.
func NewTopicHandler(scheduler *service.TopicScheduler) *TopicHandler {
	return &TopicHandler{scheduler: scheduler}
}

// RegisterRoutes mounts the topic refresh route under router.
func (h *TopicHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/users/:userID/topics/refresh", h.Refresh)
}

// Refresh triggers one topic interleaving batch for a single user.
func (h *TopicHandler) Refresh(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userID"), 10, 64)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, string(ledgerModel.CodeValidationError), "invalid user id")
		return
	}

	if err := h.scheduler.RunForUser(c.Request.Context(), userID); err != nil {
		httpPlatform.RespondWithError(c, http.StatusInternalServerError, string(ledgerModel.CodeInternalError), err.Error())
		return
	}

	httpPlatform.RespondWithSuccess(c, http.StatusOK, gin.H{"message": "topic suggestions refreshed"})
}
