package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledgerModel "github.com/iai-group/arxivdigest-go/modules/ledger/model"
)

type mockLedgerStore struct {
	AttributeArticleInteractionFunc func(ctx context.Context, kind ledgerModel.InteractionKind, userID int64, articleID string, trace *string, flag bool) error
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
	return m.AttributeArticleInteractionFunc(ctx, kind, userID, articleID, trace, flag)
}
func (m *mockLedgerStore) FetchFeedbackWindow(ctx context.Context, start, end time.Time, systemID *int64) ([]ledgerModel.ArticleImpression, error) {
	return nil, nil
}
func (m *mockLedgerStore) FetchCandidateTopics(ctx context.Context, userIDs []int64) (map[int64]map[int64][]ledgerModel.CandidateTopic, error) {
	return nil, nil
}
func (m *mockLedgerStore) InsertTopicImpressions(ctx context.Context, rows []ledgerModel.TopicImpression, expireUserID int64) error {
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

func TestAttributor_ClickWeb_DelegatesKind(t *testing.T) {
	var gotKind ledgerModel.InteractionKind
	var gotTrace *string
	store := &mockLedgerStore{
		AttributeArticleInteractionFunc: func(ctx context.Context, kind ledgerModel.InteractionKind, userID int64, articleID string, trace *string, flag bool) error {
			gotKind = kind
			gotTrace = trace
			return nil
		},
	}
	a := NewAttributor(store)
	err := a.ClickWeb(context.Background(), 1, "arxiv:1")
	require.NoError(t, err)
	assert.Equal(t, ledgerModel.InteractionClickWeb, gotKind)
	assert.Nil(t, gotTrace)
}

func TestAttributor_SaveWeb_PassesFlagThrough(t *testing.T) {
	var gotFlag bool
	store := &mockLedgerStore{
		AttributeArticleInteractionFunc: func(ctx context.Context, kind ledgerModel.InteractionKind, userID int64, articleID string, trace *string, flag bool) error {
			gotFlag = flag
			return nil
		},
	}
	a := NewAttributor(store)

	require.NoError(t, a.SaveWeb(context.Background(), 1, "arxiv:1", true))
	assert.True(t, gotFlag)

	require.NoError(t, a.SaveWeb(context.Background(), 1, "arxiv:1", false))
	assert.False(t, gotFlag)
}

func TestAttributor_ClickEmail_PropagatesTraceMismatch(t *testing.T) {
	store := &mockLedgerStore{
		AttributeArticleInteractionFunc: func(ctx context.Context, kind ledgerModel.InteractionKind, userID int64, articleID string, trace *string, flag bool) error {
			return ledgerModel.ErrTraceMismatch
		},
	}
	a := NewAttributor(store)
	err := a.ClickEmail(context.Background(), 1, "arxiv:1", "bad-trace")
	assert.ErrorIs(t, err, ledgerModel.ErrTraceMismatch)
}

func TestAttributor_SaveEmail_ForwardsTraceValue(t *testing.T) {
	var gotTrace *string
	store := &mockLedgerStore{
		AttributeArticleInteractionFunc: func(ctx context.Context, kind ledgerModel.InteractionKind, userID int64, articleID string, trace *string, flag bool) error {
			gotTrace = trace
			return nil
		},
	}
	a := NewAttributor(store)
	require.NoError(t, a.SaveEmail(context.Background(), 1, "arxiv:1", "trace-xyz"))
	require.NotNil(t, gotTrace)
	assert.Equal(t, "trace-xyz", *gotTrace)
}
