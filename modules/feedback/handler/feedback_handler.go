package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	httpPlatform "github.com/iai-group/arxivdigest-go/internal/platform/http"
	digestService "github.com/iai-group/arxivdigest-go/modules/digest/service"
	ledgerModel "github.com/iai-group/arxivdigest-go/modules/ledger/model"
	"github.com/iai-group/arxivdigest-go/modules/feedback/service"
)

// FeedbackHandler serves the inbound callback routes that attribute
// interaction events to impressions (spec.md §4.5).
type FeedbackHandler struct {
	attributor *service.Attributor
	dispatcher *digestService.Dispatcher
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(attributor *service.Attributor, dispatcher *digestService.Dispatcher) *FeedbackHandler {
	return &FeedbackHandler{attributor: attributor, dispatcher: dispatcher}
}

// RegisterRoutes mounts the callback routes used by both the web frontend
// and digest email links.
func (h *FeedbackHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/web/click/:userID/:articleID", h.ClickWeb)
	router.POST("/web/save/:userID/:articleID", h.SaveWeb)
	router.POST("/web/seen/:userID/:articleID", h.SeenWeb)
	router.GET("/mail/read/:userID/:articleID/:trace", h.ClickEmail)
	router.GET("/mail/save/:userID/:articleID/:trace", h.SaveEmail)
	router.GET("/mail/unsubscribe/:trace", h.Unsubscribe)
}

func parseUserID(c *gin.Context) (int64, bool) {
	userID, err := strconv.ParseInt(c.Param("userID"), 10, 64)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, string(ledgerModel.CodeValidationError), "Invalid user id")
		return 0, false
	}
	return userID, true
}

// ClickWeb handles a read-link click originating from the web surface.
func (h *FeedbackHandler) ClickWeb(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	if err := h.attributor.ClickWeb(c.Request.Context(), userID, c.Param("articleID")); err != nil {
		httpPlatform.RespondWithError(c, http.StatusInternalServerError, string(ledgerModel.GetErrorCode(err)), ledgerModel.GetErrorMessage(err))
		return
	}
	httpPlatform.RespondWithSuccess(c, http.StatusOK, nil)
}

// SaveWeb handles a save-toggle request from the web surface. Body:
// {"saved": true|false}.
func (h *FeedbackHandler) SaveWeb(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	var req struct {
		Saved bool `json:"saved"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, string(ledgerModel.CodeValidationError), "Invalid request payload")
		return
	}
	if err := h.attributor.SaveWeb(c.Request.Context(), userID, c.Param("articleID"), req.Saved); err != nil {
		httpPlatform.RespondWithError(c, http.StatusInternalServerError, string(ledgerModel.GetErrorCode(err)), ledgerModel.GetErrorMessage(err))
		return
	}
	httpPlatform.RespondWithSuccess(c, http.StatusOK, nil)
}

// SeenWeb handles an impression-rendered beacon from the web surface.
func (h *FeedbackHandler) SeenWeb(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	if err := h.attributor.SeenWeb(c.Request.Context(), userID, c.Param("articleID")); err != nil {
		httpPlatform.RespondWithError(c, http.StatusInternalServerError, string(ledgerModel.GetErrorCode(err)), ledgerModel.GetErrorMessage(err))
		return
	}
	httpPlatform.RespondWithSuccess(c, http.StatusOK, nil)
}

// ClickEmail handles a digest email's read link. Routed with GET since it
// is followed directly from a mail client. A trace mismatch (forged or
// stale link) leaves the flag untouched and is not reported to the
// caller: per spec.md §4.5, the user is still redirected to the article
// either way, the same as a legitimate click.
func (h *FeedbackHandler) ClickEmail(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	_ = h.attributor.ClickEmail(c.Request.Context(), userID, c.Param("articleID"), c.Param("trace"))
	c.Redirect(http.StatusFound, "https://arxiv.org/abs/"+c.Param("articleID"))
}

// SaveEmail handles a digest email's save link. Like ClickEmail, a trace
// mismatch is a silent no-op and the redirect still happens.
func (h *FeedbackHandler) SaveEmail(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	_ = h.attributor.SaveEmail(c.Request.Context(), userID, c.Param("articleID"), c.Param("trace"))
	c.Redirect(http.StatusFound, "https://arxiv.org/abs/"+c.Param("articleID"))
}

// Unsubscribe handles a digest email's unsubscribe link.
func (h *FeedbackHandler) Unsubscribe(c *gin.Context) {
	if err := h.dispatcher.HandleUnsubscribe(c.Request.Context(), c.Param("trace")); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, string(ledgerModel.GetErrorCode(err)), ledgerModel.GetErrorMessage(err))
		return
	}
	httpPlatform.RespondWithSuccess(c, http.StatusOK, gin.H{"message": "unsubscribed"})
}
