package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iai-group/arxivdigest-go/internal/config"
	ledgerModel "github.com/iai-group/arxivdigest-go/modules/ledger/model"
)

func TestTopicScheduler_RunForUser_SkipsUserWithNoRecommendations(t *testing.T) {
	var inserted []ledgerModel.TopicImpression
	store := &mockLedgerStore{
		FetchCandidateTopicsFunc: func(ctx context.Context, userIDs []int64) (map[int64]map[int64][]ledgerModel.CandidateTopic, error) {
			return map[int64]map[int64][]ledgerModel.CandidateTopic{}, nil
		},
		InsertTopicImpressionsFunc: func(ctx context.Context, rows []ledgerModel.TopicImpression, expireUserID int64) error {
			inserted = rows
			return nil
		},
	}

	cfg := config.InterleaveConfig{TopicsMultileavedPerBatch: 4, SystemsMultileavedPerUser: 2}
	scheduler := NewTopicScheduler(store, cfg, mustTestLogger(t))

	err := scheduler.RunForUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, inserted, "no candidates means no impressions and no store call")
}

func TestTopicScheduler_RunForUser_FusesAndExpiresPriorSuggestions(t *testing.T) {
	var inserted []ledgerModel.TopicImpression
	var expiredFor int64 = -1

	store := &mockLedgerStore{
		FetchCandidateTopicsFunc: func(ctx context.Context, userIDs []int64) (map[int64]map[int64][]ledgerModel.CandidateTopic, error) {
			require.Equal(t, []int64{7}, userIDs)
			return map[int64]map[int64][]ledgerModel.CandidateTopic{
				7: {
					10: {
						{Topic: "information retrieval", Explanation: "ir match"},
						{Topic: "recommender systems", Explanation: "rec match"},
					},
					20: {
						{Topic: "natural language processing", Explanation: "nlp match"},
						{Topic: "machine learning", Explanation: "ml match"},
					},
				},
			}, nil
		},
		InsertTopicImpressionsFunc: func(ctx context.Context, rows []ledgerModel.TopicImpression, expireUserID int64) error {
			inserted = rows
			expiredFor = expireUserID
			return nil
		},
	}

	cfg := config.InterleaveConfig{TopicsMultileavedPerBatch: 4, SystemsMultileavedPerUser: 2}
	scheduler := NewTopicScheduler(store, cfg, mustTestLogger(t))

	err := scheduler.RunForUser(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, int64(7), expiredFor, "prior suggestions for this user must be expired in the same write")
	require.NotEmpty(t, inserted)
	for i, row := range inserted {
		assert.Equal(t, int64(7), row.UserID)
		assert.Equal(t, i, row.InterleavingOrder)
		assert.NotZero(t, row.InterleavingBatch)
		assert.NotEmpty(t, row.Explanation)
	}
}
