package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iai-group/arxivdigest-go/internal/config"
	"github.com/iai-group/arxivdigest-go/internal/platform/logger"
	ledgerModel "github.com/iai-group/arxivdigest-go/modules/ledger/model"
	"github.com/iai-group/arxivdigest-go/modules/schedule/service"
)

// stubLedgerStore implements ports.LedgerStore, exercising only the two
// methods TopicScheduler calls; every other method is unreachable from
// this handler's routes.
type stubLedgerStore struct {
	candidates map[int64]map[int64][]ledgerModel.CandidateTopic
	insertErr  error
	inserted   []ledgerModel.TopicImpression
}

func (s *stubLedgerStore) FetchCandidateTopics(ctx context.Context, userIDs []int64) (map[int64]map[int64][]ledgerModel.CandidateTopic, error) {
	return s.candidates, nil
}

func (s *stubLedgerStore) InsertTopicImpressions(ctx context.Context, rows []ledgerModel.TopicImpression, expireUserID int64) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = rows
	return nil
}

func (s *stubLedgerStore) PageUsers(ctx context.Context, limit, offset int) ([]ledgerModel.User, error) {
	return nil, nil
}
func (s *stubLedgerStore) CountUsers(ctx context.Context) (int, error) { return 0, nil }
func (s *stubLedgerStore) FetchCandidateArticles(ctx context.Context, userIDs []int64) (map[int64]map[int64][]ledgerModel.CandidateArticle, error) {
	return nil, nil
}
func (s *stubLedgerStore) InsertArticleImpressions(ctx context.Context, rows []ledgerModel.ArticleImpression) error {
	return nil
}
func (s *stubLedgerStore) FetchUnsentDigest(ctx context.Context, userIDs []int64) (map[int64]map[time.Time][]ledgerModel.DigestArticle, error) {
	return nil, nil
}
func (s *stubLedgerStore) StampTraces(ctx context.Context, rows []ledgerModel.TraceStamp) error {
	return nil
}
func (s *stubLedgerStore) AttributeArticleInteraction(ctx context.Context, kind ledgerModel.InteractionKind, userID int64, articleID string, trace *string, flag bool) error {
	return nil
}
func (s *stubLedgerStore) FetchFeedbackWindow(ctx context.Context, start, end time.Time, systemID *int64) ([]ledgerModel.ArticleImpression, error) {
	return nil, nil
}
func (s *stubLedgerStore) FetchTopicFeedbackWindow(ctx context.Context, start, end time.Time, systemID *int64) ([]ledgerModel.TopicImpressionState, error) {
	return nil, nil
}
func (s *stubLedgerStore) Unsubscribe(ctx context.Context, trace string) error { return nil }
func (s *stubLedgerStore) GetSystemByAPIKey(ctx context.Context, apiKey string) (*ledgerModel.System, error) {
	return nil, nil
}
func (s *stubLedgerStore) UpsertCandidateArticleRankings(ctx context.Context, rows []ledgerModel.CandidateRanking) error {
	return nil
}
func (s *stubLedgerStore) UpsertCandidateTopicRankings(ctx context.Context, rows []ledgerModel.CandidateTopicRanking) error {
	return nil
}
func (s *stubLedgerStore) ArticleEligible(ctx context.Context, articleID string) (bool, error) {
	return true, nil
}
func (s *stubLedgerStore) UserExists(ctx context.Context, userID int64) (bool, error) {
	return true, nil
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New("error", "console")
	require.NoError(t, err)
	return l
}

func TestTopicHandler_Refresh(t *testing.T) {
	cfg := config.InterleaveConfig{TopicsMultileavedPerBatch: 4, SystemsMultileavedPerUser: 2}

	t.Run("refreshes successfully", func(t *testing.T) {
		store := &stubLedgerStore{
			candidates: map[int64]map[int64][]ledgerModel.CandidateTopic{
				1: {10: {{Topic: "machine learning", Explanation: "match"}}},
			},
		}
		scheduler := service.NewTopicScheduler(store, cfg, mustTestLogger(t))
		handler := NewTopicHandler(scheduler)

		router := setupTestRouter()
		router.POST("/users/:userID/topics/refresh", handler.Refresh)

		req, _ := http.NewRequest(http.MethodPost, "/users/1/topics/refresh", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, store.inserted)
	})

	t.Run("returns 400 for non-numeric user id", func(t *testing.T) {
		store := &stubLedgerStore{}
		scheduler := service.NewTopicScheduler(store, cfg, mustTestLogger(t))
		handler := NewTopicHandler(scheduler)

		router := setupTestRouter()
		router.POST("/users/:userID/topics/refresh", handler.Refresh)

		req, _ := http.NewRequest(http.MethodPost, "/users/not-a-number/topics/refresh", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns 500 when the store fails", func(t *testing.T) {
		store := &stubLedgerStore{
			candidates: map[int64]map[int64][]ledgerModel.CandidateTopic{
				1: {10: {{Topic: "machine learning", Explanation: "match"}}},
			},
			insertErr: assert.AnError,
		}
		scheduler := service.NewTopicScheduler(store, cfg, mustTestLogger(t))
		handler := NewTopicHandler(scheduler)

		router := setupTestRouter()
		router.POST("/users/:userID/topics/refresh", handler.Refresh)

		req, _ := http.NewRequest(http.MethodPost, "/users/1/topics/refresh", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestTopicHandler_RegisterRoutes(t *testing.T) {
	store := &stubLedgerStore{}
	cfg := config.InterleaveConfig{TopicsMultileavedPerBatch: 4, SystemsMultileavedPerUser: 2}
	scheduler := service.NewTopicScheduler(store, cfg, mustTestLogger(t))
	handler := NewTopicHandler(scheduler)

	router := setupTestRouter()
	v1 := router.Group("/api/v1")
	handler.RegisterRoutes(v1)

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/users/1/topics/refresh", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.NotEqual(t, http.StatusNotFound, w.Code)
}
