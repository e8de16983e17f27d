package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iai-group/arxivdigest-go/internal/config"
	"github.com/iai-group/arxivdigest-go/internal/platform/logger"
	ledgerModel "github.com/iai-group/arxivdigest-go/modules/ledger/model"
	"github.com/iai-group/arxivdigest-go/modules/ledger/ports"
	"github.com/iai-group/arxivdigest-go/modules/multileave/service"
)

// TopicScheduler runs the on-demand topic interleaving path (spec.md
// §4.3 "Topic path"): same shape as ArticleScheduler, but invoked per
// user on request, writing interleaving_order/interleaving_batch and
// expiring the user's unused prior suggestions first (I7).
type TopicScheduler struct {
	store ports.LedgerStore
	cfg   config.InterleaveConfig
	log   *logger.Logger
}

// NewTopicScheduler creates a new topic scheduler.
func NewTopicScheduler(store ports.LedgerStore, cfg config.InterleaveConfig, log *logger.Logger) *TopicScheduler {
	return &TopicScheduler{store: store, cfg: cfg, log: log}
}

// RunForUser fuses this user's candidate topics into a fresh batch of
// TopicImpression rows. A fresh Multileaver is constructed per call: per
// spec.md §9, fairness is re-seeded each batch and the topic path is
// typically invoked on-demand, one user at a time.
func (s *TopicScheduler) RunForUser(ctx context.Context, userID int64) error {
	batch := time.Now().UTC()

	ml := service.New(s.cfg.TopicsMultileavedPerBatch, s.cfg.SystemsMultileavedPerUser, s.cfg.CommonPrefix)

	candidates, err := s.store.FetchCandidateTopics(ctx, []int64{userID})
	if err != nil {
		return err
	}

	bySystem := candidates[userID]
	if len(bySystem) == 0 {
		s.log.Info("topic scheduler: user skipped (no recommendations)", zap.Int64("user_id", userID))
		return nil
	}

	systems := make([]int64, 0, len(bySystem))
	for sysID := range bySystem {
		systems = append(systems, sysID)
	}
	selected := ml.SelectSystems(systems)
	selectedSet := make(map[int64]struct{}, len(selected))
	for _, sysID := range selected {
		selectedSet[sysID] = struct{}{}
	}

	explanations := make(map[string]map[int64]string)
	rankings := make(map[int64][]string)
	for sysID, topics := range bySystem {
		if _, ok := selectedSet[sysID]; !ok {
			continue
		}
		items := make([]string, 0, len(topics))
		for _, c := range topics {
			items = append(items, c.Topic)
			if explanations[c.Topic] == nil {
				explanations[c.Topic] = make(map[int64]string)
			}
			explanations[c.Topic][sysID] = c.Explanation
		}
		rankings[sysID] = items
	}

	fused, credit := ml.Multileave(rankings)

	rows := make([]ledgerModel.TopicImpression, 0, len(fused))
	for i, topic := range fused {
		sysID := credit[i]
		if sysID == nil {
			continue
		}
		rows = append(rows, ledgerModel.TopicImpression{
			UserID:            userID,
			Topic:             topic,
			SystemID:          *sysID,
			InterleavingOrder: i,
			InterleavingBatch: batch,
			Explanation:       explanations[topic][*sysID],
		})
	}

	return s.store.InsertTopicImpressions(ctx, rows, userID)
}
