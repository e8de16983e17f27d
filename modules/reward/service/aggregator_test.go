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

type mockLedgerStore struct {
	FetchFeedbackWindowFunc      func(ctx context.Context, start, end time.Time, systemID *int64) ([]ledgerModel.ArticleImpression, error)
	FetchTopicFeedbackWindowFunc func(ctx context.Context, start, end time.Time, systemID *int64) ([]ledgerModel.TopicImpressionState, error)
}

func (m *mockLedgerStore) PageUsers(ctx context.Context, limit, offset int) ([]ledgerModel.User, error) {
	return nil, nil
}
func (m *mockLedgerStore) CountUsers(ctx context.Context) (int, error) { return 0, nil }
func (m *mockLedgerStore) FetchCandidateArticles(ctx context.Context, userIDs []int64) (map[int64]map[int64][]ledgerModel.CandidateArticle, error) {
	return nil, nil
}
func (m *mockLedgerStore) InsertArticleImpressions(ctx context.Context, rows []ledgerModel.ArticleImpression) error {
	return nil
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
	return m.FetchFeedbackWindowFunc(ctx, start, end, systemID)
}
func (m *mockLedgerStore) FetchCandidateTopics(ctx context.Context, userIDs []int64) (map[int64]map[int64][]ledgerModel.CandidateTopic, error) {
	return nil, nil
}
func (m *mockLedgerStore) InsertTopicImpressions(ctx context.Context, rows []ledgerModel.TopicImpression, expireUserID int64) error {
	return nil
}
func (m *mockLedgerStore) FetchTopicFeedbackWindow(ctx context.Context, start, end time.Time, systemID *int64) ([]ledgerModel.TopicImpressionState, error) {
	return m.FetchTopicFeedbackWindowFunc(ctx, start, end, systemID)
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

func ts(d time.Time) *time.Time {
	v := d
	return &v
}

func TestAggregator_ArticleReward_NormalizesToShareOfTotal(t *testing.T) {
	day := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	weights := config.EvaluationConfig{ClickedWebWeight: 1.0, ClickedEmailWeight: 1.0, SavedWeight: 2.0}

	store := &mockLedgerStore{
		FetchFeedbackWindowFunc: func(ctx context.Context, start, end time.Time, systemID *int64) ([]ledgerModel.ArticleImpression, error) {
			return []ledgerModel.ArticleImpression{
				{UserID: 1, ArticleID: "a", SystemID: 10, InterleavedAt: day, ClickedWeb: ts(day)},
				{UserID: 1, ArticleID: "b", SystemID: 20, InterleavedAt: day},
			}, nil
		},
	}

	agg := NewAggregator(store, weights)
	report, err := agg.ArticleReward(context.Background(), day, day, nil, ModeDay)
	require.NoError(t, err)
	require.Len(t, report.Systems, 2)

	var sys10, sys20 *SystemReport
	for i := range report.Systems {
		switch report.Systems[i].SystemID {
		case 10:
			sys10 = &report.Systems[i]
		case 20:
			sys20 = &report.Systems[i]
		}
	}
	require.NotNil(t, sys10)
	require.NotNil(t, sys20)

	require.Len(t, sys10.NormalizedRewards, 1)
	require.Len(t, sys10.NormalizedRewards[0], 1)
	assert.Equal(t, 1.0, sys10.NormalizedRewards[0][0], "system 10 got the only reward in its interleaving")
	assert.Equal(t, 0.0, sys20.NormalizedRewards[0][0], "system 20 got none of the reward in its interleaving")
	assert.Equal(t, 1, sys10.Impressions[0])
}

func TestAggregator_ArticleReward_ScopedToOneSystem_NormalizesAgainstAllSystems(t *testing.T) {
	day := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	weights := config.EvaluationConfig{ClickedWebWeight: 1.0, ClickedEmailWeight: 1.0}

	store := &mockLedgerStore{
		FetchFeedbackWindowFunc: func(ctx context.Context, start, end time.Time, systemID *int64) ([]ledgerModel.ArticleImpression, error) {
			require.Nil(t, systemID, "the window must be fetched unscoped even for a scoped report")
			return []ledgerModel.ArticleImpression{
				{UserID: 1, ArticleID: "a", SystemID: 10, InterleavedAt: day, ClickedWeb: ts(day)},
				{UserID: 1, ArticleID: "b", SystemID: 20, InterleavedAt: day, ClickedWeb: ts(day), ClickedEmail: ts(day)},
			}, nil
		},
	}

	agg := NewAggregator(store, weights)
	scope := int64(10)
	report, err := agg.ArticleReward(context.Background(), day, day, &scope, ModeDay)
	require.NoError(t, err)
	require.Len(t, report.Systems, 1, "only the requested system is reported")
	require.Equal(t, int64(10), report.Systems[0].SystemID)

	require.Len(t, report.Systems[0].NormalizedRewards, 1)
	require.Len(t, report.Systems[0].NormalizedRewards[0], 1)
	assert.InDelta(t, 1.0/3.0, report.Systems[0].NormalizedRewards[0][0], 1e-9,
		"system 10 scored 1 against a total of 3 across both systems in the interleaving")
}

func TestAggregator_ArticleReward_ZeroOverZeroIsZero(t *testing.T) {
	day := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	store := &mockLedgerStore{
		FetchFeedbackWindowFunc: func(ctx context.Context, start, end time.Time, systemID *int64) ([]ledgerModel.ArticleImpression, error) {
			return []ledgerModel.ArticleImpression{
				{UserID: 1, ArticleID: "a", SystemID: 10, InterleavedAt: day},
			}, nil
		},
	}
	agg := NewAggregator(store, config.EvaluationConfig{})
	report, err := agg.ArticleReward(context.Background(), day, day, nil, ModeDay)
	require.NoError(t, err)
	require.Len(t, report.Systems, 1)
	assert.Equal(t, 0.0, report.Systems[0].NormalizedRewards[0][0])
}

func TestAggregator_AggregateInts_GroupsByWeekLabel(t *testing.T) {
	data := map[time.Time]int{
		time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC): 2,
		time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC): 3,
		time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC): 1,
	}
	labels, results := aggregateInts(data, ModeWeek)
	require.Len(t, labels, 2)
	assert.Equal(t, 5, results[0])
	assert.Equal(t, 1, results[1])
}

func TestAggregator_TopicReward_UsesStateWeights(t *testing.T) {
	batch := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	weights := config.EvaluationConfig{StateWeights: map[string]float64{
		string(ledgerModel.TopicStateSystemRecommendedAccepted): 1,
		string(ledgerModel.TopicStateSystemRecommendedRejected): 0,
	}}
	store := &mockLedgerStore{
		FetchTopicFeedbackWindowFunc: func(ctx context.Context, start, end time.Time, systemID *int64) ([]ledgerModel.TopicImpressionState, error) {
			return []ledgerModel.TopicImpressionState{
				{Impression: ledgerModel.TopicImpression{UserID: 1, SystemID: 10, InterleavingBatch: batch}, State: ledgerModel.TopicStateSystemRecommendedAccepted},
				{Impression: ledgerModel.TopicImpression{UserID: 1, SystemID: 20, InterleavingBatch: batch}, State: ledgerModel.TopicStateSystemRecommendedRejected},
			}, nil
		},
	}
	agg := NewAggregator(store, weights)
	report, err := agg.TopicReward(context.Background(), batch, batch, nil, ModeDay)
	require.NoError(t, err)
	require.Len(t, report.Systems, 2)
}
