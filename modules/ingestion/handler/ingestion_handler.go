package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	platformAuth "github.com/iai-group/arxivdigest-go/internal/platform/auth"
	ingestionModel "github.com/iai-group/arxivdigest-go/modules/ingestion/model"
	"github.com/iai-group/arxivdigest-go/modules/ingestion/service"
	ledgerModel "github.com/iai-group/arxivdigest-go/modules/ledger/model"
)

// IngestionHandler serves the external-system push routes of spec.md §6.
type IngestionHandler struct {
	service *service.IngestionService
}

// NewIngestionHandler creates a new ingestion handler.
func NewIngestionHandler(service *service.IngestionService) *IngestionHandler {
	return &IngestionHandler{service: service}
}

// RegisterRoutes mounts the ingestion routes under router. router must
// already carry platformAuth.SystemKeyMiddleware.
func (h *IngestionHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/articles", h.PushArticles)
	router.POST("/topics", h.PushTopics)
}

// PushArticles handles POST /recommendations/articles.
func (h *IngestionHandler) PushArticles(c *gin.Context) {
	systemID, ok := platformAuth.GetSystemID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ingestionModel.Response{Success: false, Error: "unauthenticated"})
		return
	}

	var req ingestionModel.ArticleRecommendationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ingestionModel.Response{Success: false, Error: "invalid request payload"})
		return
	}

	if err := h.service.PushArticles(c.Request.Context(), systemID, req); err != nil {
		c.JSON(statusFor(err), ingestionModel.Response{Success: false, Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, ingestionModel.Response{Success: true})
}

// PushTopics handles POST /recommendations/topics.
func (h *IngestionHandler) PushTopics(c *gin.Context) {
	systemID, ok := platformAuth.GetSystemID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ingestionModel.Response{Success: false, Error: "unauthenticated"})
		return
	}

	var req ingestionModel.TopicRecommendationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ingestionModel.Response{Success: false, Error: "invalid request payload"})
		return
	}

	if err := h.service.PushTopics(c.Request.Context(), systemID, req); err != nil {
		c.JSON(statusFor(err), ingestionModel.Response{Success: false, Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, ingestionModel.Response{Success: true})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ledgerModel.ErrValidation), errors.Is(err, ledgerModel.ErrOutsideEligibleWindow), errors.Is(err, ledgerModel.ErrUserNotFound), errors.Is(err, ledgerModel.ErrArticleNotFound):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
