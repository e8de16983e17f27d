package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iai-group/arxivdigest-go/internal/config"
	ledgerModel "github.com/iai-group/arxivdigest-go/modules/ledger/model"
)

// mockLedgerStore implements ports.LedgerStore for scheduler unit tests,
// following the Func-field mock pattern used throughout this codebase's
// service-layer tests.
type mockLedgerStore struct {
	PageUsersFunc                func(ctx context.Context, limit, offset int) ([]ledgerModel.User, error)
	CountUsersFunc               func(ctx context.Context) (int, error)
	FetchCandidateArticlesFunc   func(ctx context.Context, userIDs []int64) (map[int64]map[int64][]ledgerModel.CandidateArticle, error)
	InsertArticleImpressionsFunc func(ctx context.Context, rows []ledgerModel.ArticleImpression) error
	FetchCandidateTopicsFunc     func(ctx context.Context, userIDs []int64) (map[int64]map[int64][]ledgerModel.CandidateTopic, error)
	InsertTopicImpressionsFunc   func(ctx context.Context, rows []ledgerModel.TopicImpression, expireUserID int64) error
}

func (m *mockLedgerStore) PageUsers(ctx context.Context, limit, offset int) ([]ledgerModel.User, error) {
	return m.PageUsersFunc(ctx, limit, offset)
}

func (m *mockLedgerStore) CountUsers(ctx context.Context) (int, error) {
	return m.CountUsersFunc(ctx)
}

func (m *mockLedgerStore) FetchCandidateArticles(ctx context.Context, userIDs []int64) (map[int64]map[int64][]ledgerModel.CandidateArticle, error) {
	return m.FetchCandidateArticlesFunc(ctx, userIDs)
}

func (m *mockLedgerStore) InsertArticleImpressions(ctx context.Context, rows []ledgerModel.ArticleImpression) error {
	return m.InsertArticleImpressionsFunc(ctx, rows)
}

func (m *mockLedgerStore) FetchUnsentDigest(ctx context.Context, userIDs []int64) (map[int64]map[time.Time][]ledgerModel.DigestArticle, error) {
	return nil, nil
}
func (m *mockLedgerStore) StampTraces(ctx context.Context, rows []ledgerModel.TraceStamp) error {
	return nil
}
func (m *mockLedgerStore) AttributeArticleInteraction(ctx context.Context, kind ledgerModel.InteractionKind, userID int64, articleID string, trace *string, flag bool) error {
	return nil
}
func (m *mockLedgerStore) FetchFeedbackWindow(ctx context.Context, start, end time.Time, systemID *int64) ([]ledgerModel.ArticleImpression, error) {
	return nil, nil
}
func (m *mockLedgerStore) FetchCandidateTopics(ctx context.Context, userIDs []int64) (map[int64]map[int64][]ledgerModel.CandidateTopic, error) {
	if m.FetchCandidateTopicsFunc != nil {
		return m.FetchCandidateTopicsFunc(ctx, userIDs)
	}
	return nil, nil
}
func (m *mockLedgerStore) InsertTopicImpressions(ctx context.Context, rows []ledgerModel.TopicImpression, expireUserID int64) error {
	if m.InsertTopicImpressionsFunc != nil {
		return m.InsertTopicImpressionsFunc(ctx, rows, expireUserID)
	}
	return nil
}
func (m *mockLedgerStore) FetchTopicFeedbackWindow(ctx context.Context, start, end time.Time, systemID *int64) ([]ledgerModel.TopicImpressionState, error) {
	return nil, nil
}
func (m *mockLedgerStore) Unsubscribe(ctx context.Context, trace string) error { return nil }
func (m *mockLedgerStore) GetSystemByAPIKey(ctx context.Context, apiKey string) (*ledgerModel.System, error) {
	return nil, nil
}
func (m *mockLedgerStore) UpsertCandidateArticleRankings(ctx context.Context, rows []ledgerModel.CandidateRanking) error {
	return nil
}
func (m *mockLedgerStore) UpsertCandidateTopicRankings(ctx context.Context, rows []ledgerModel.CandidateTopicRanking) error {
	return nil
}
func (m *mockLedgerStore) ArticleEligible(ctx context.Context, articleID string) (bool, error) {
	return true, nil
}
func (m *mockLedgerStore) UserExists(ctx context.Context, userID int64) (bool, error) {
	return true, nil
}

func TestArticleScheduler_RunArticles_SkipsUsersWithNoRecommendations(t *testing.T) {
	store := &mockLedgerStore{
		PageUsersFunc: func(ctx context.Context, limit, offset int) ([]ledgerModel.User, error) {
			if offset > 0 {
				return nil, nil
			}
			return []ledgerModel.User{{ID: 1}, {ID: 2}}, nil
		},
		CountUsersFunc: func(ctx context.Context) (int, error) { return 2, nil },
		FetchCandidateArticlesFunc: func(ctx context.Context, userIDs []int64) (map[int64]map[int64][]ledgerModel.CandidateArticle, error) {
			return map[int64]map[int64][]ledgerModel.CandidateArticle{
				1: {10: []ledgerModel.CandidateArticle{{ArticleID: "a", Score: 3}, {ArticleID: "b", Score: 2}}},
			}, nil
		},
	}

	var inserted []ledgerModel.ArticleImpression
	store.InsertArticleImpressionsFunc = func(ctx context.Context, rows []ledgerModel.ArticleImpression) error {
		inserted = append(inserted, rows...)
		return nil
	}

	cfg := config.InterleaveConfig{RecommendationsPerUser: 4, SystemsMultileavedPerUser: 2, UsersPerBatch: 10}
	scheduler := NewArticleScheduler(store, cfg, mustTestLogger(t))

	err := scheduler.RunArticles(context.Background())
	require.NoError(t, err)

	for _, row := range inserted {
		assert.Equal(t, int64(1), row.UserID, "only user 1 had candidates")
	}
	assert.NotEmpty(t, inserted)
}

func TestArticleScheduler_RunArticles_PositionScoreDescending(t *testing.T) {
	store := &mockLedgerStore{
		PageUsersFunc: func(ctx context.Context, limit, offset int) ([]ledgerModel.User, error) {
			if offset > 0 {
				return nil, nil
			}
			return []ledgerModel.User{{ID: 1}}, nil
		},
		CountUsersFunc: func(ctx context.Context) (int, error) { return 1, nil },
		FetchCandidateArticlesFunc: func(ctx context.Context, userIDs []int64) (map[int64]map[int64][]ledgerModel.CandidateArticle, error) {
			return map[int64]map[int64][]ledgerModel.CandidateArticle{
				1: {
					10: {{ArticleID: "a", Score: 3}, {ArticleID: "b", Score: 2}, {ArticleID: "c", Score: 1}},
					20: {{ArticleID: "d", Score: 3}, {ArticleID: "e", Score: 2}, {ArticleID: "f", Score: 1}},
				},
			}, nil
		},
	}

	var inserted []ledgerModel.ArticleImpression
	store.InsertArticleImpressionsFunc = func(ctx context.Context, rows []ledgerModel.ArticleImpression) error {
		inserted = rows
		return nil
	}

	cfg := config.InterleaveConfig{RecommendationsPerUser: 4, SystemsMultileavedPerUser: 2, UsersPerBatch: 10}
	scheduler := NewArticleScheduler(store, cfg, mustTestLogger(t))

	err := scheduler.RunArticles(context.Background())
	require.NoError(t, err)
	require.Len(t, inserted, 4)

	for i, row := range inserted {
		assert.Equal(t, cfg.RecommendationsPerUser-i, row.PositionScore)
	}
}
