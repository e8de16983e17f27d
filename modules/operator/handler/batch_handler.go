package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	httpPlatform "github.com/iai-group/arxivdigest-go/internal/platform/http"
	digestService "github.com/iai-group/arxivdigest-go/modules/digest/service"
	ledgerModel "github.com/iai-group/arxivdigest-go/modules/ledger/model"
	ledgerPorts "github.com/iai-group/arxivdigest-go/modules/ledger/ports"
	rewardService "github.com/iai-group/arxivdigest-go/modules/reward/service"
	scheduleService "github.com/iai-group/arxivdigest-go/modules/schedule/service"
)

// BatchHandler exposes an operator-only surface for triggering batch
// cycles and pulling reward reports outside the external scheduler.
type BatchHandler struct {
	store             ledgerPorts.LedgerStore
	articleScheduler  *scheduleService.ArticleScheduler
	digestDispatcher  *digestService.Dispatcher
	rewardAggregator  *rewardService.Aggregator
	usersPerDigestRun int
}

// NewBatchHandler creates a new operator batch handler.
func NewBatchHandler(store ledgerPorts.LedgerStore, articleScheduler *scheduleService.ArticleScheduler, digestDispatcher *digestService.Dispatcher, rewardAggregator *rewardService.Aggregator, usersPerDigestRun int) *BatchHandler {
	return &BatchHandler{
		store:             store,
		articleScheduler:  articleScheduler,
		digestDispatcher:  digestDispatcher,
		rewardAggregator:  rewardAggregator,
		usersPerDigestRun: usersPerDigestRun,
	}
}

// RegisterRoutes mounts the operator batch/reward routes under router.
func (h *BatchHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/batches/articles", h.RunArticleBatch)
	router.POST("/batches/digest", h.RunDigestBatch)
	router.GET("/rewards", h.GetRewardReport)
}

// RunArticleBatch triggers one interleaving scheduler cycle on demand.
func (h *BatchHandler) RunArticleBatch(c *gin.Context) {
	if err := h.articleScheduler.RunArticles(c.Request.Context()); err != nil {
		httpPlatform.RespondWithError(c, http.StatusInternalServerError, string(ledgerModel.CodeInternalError), err.Error())
		return
	}
	httpPlatform.RespondWithSuccess(c, http.StatusOK, gin.H{"message": "article batch complete"})
}

// RunDigestBatch triggers one digest dispatch cycle on demand, paging
// through every registered user.
func (h *BatchHandler) RunDigestBatch(c *gin.Context) {
	ctx := c.Request.Context()
	now := time.Now().UTC()

	won, err := h.digestDispatcher.TryAcquireDailyRun(ctx, now)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusInternalServerError, string(ledgerModel.CodeInternalError), err.Error())
		return
	}
	if !won {
		httpPlatform.RespondWithSuccess(c, http.StatusOK, gin.H{"message": "digest batch already claimed by another replica"})
		return
	}

	offset := 0
	for {
		users, err := h.store.PageUsers(ctx, h.usersPerDigestRun, offset)
		if err != nil {
			httpPlatform.RespondWithError(c, http.StatusInternalServerError, string(ledgerModel.CodeInternalError), err.Error())
			return
		}
		if len(users) == 0 {
			break
		}
		if err := h.digestDispatcher.Run(ctx, now, users); err != nil {
			httpPlatform.RespondWithError(c, http.StatusInternalServerError, string(ledgerModel.CodeInternalError), err.Error())
			return
		}
		offset += len(users)
	}

	httpPlatform.RespondWithSuccess(c, http.StatusOK, gin.H{"message": "digest batch complete"})
}

// GetRewardReport pulls a C6 report for the requested window/system/mode.
// Query params: start, end (RFC3339), system_id (optional), kind
// (article|topic, default article), mode (day|week|month, default day).
func (h *BatchHandler) GetRewardReport(c *gin.Context) {
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, string(ledgerModel.CodeValidationError), "invalid start timestamp")
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, string(ledgerModel.CodeValidationError), "invalid end timestamp")
		return
	}

	var systemID *int64
	if raw := c.Query("system_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpPlatform.RespondWithError(c, http.StatusBadRequest, string(ledgerModel.CodeValidationError), "invalid system_id")
			return
		}
		systemID = &id
	}

	mode := rewardService.AggregationMode(c.DefaultQuery("mode", string(rewardService.ModeDay)))

	var report *rewardService.Report
	if c.DefaultQuery("kind", "article") == "topic" {
		report, err = h.rewardAggregator.TopicReward(c.Request.Context(), start, end, systemID, mode)
	} else {
		report, err = h.rewardAggregator.ArticleReward(c.Request.Context(), start, end, systemID, mode)
	}
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusInternalServerError, string(ledgerModel.CodeInternalError), err.Error())
		return
	}

	httpPlatform.RespondWithSuccess(c, http.StatusOK, report)
}
