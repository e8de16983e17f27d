// Package service implements the ingestion surface (spec.md §6): the
// external-system push endpoints that populate CandidateRanking rows.
package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/iai-group/arxivdigest-go/internal/config"
	ingestionModel "github.com/iai-group/arxivdigest-go/modules/ingestion/model"
	ledgerModel "github.com/iai-group/arxivdigest-go/modules/ledger/model"
	ledgerPorts "github.com/iai-group/arxivdigest-go/modules/ledger/ports"
)

var topicPattern = regexp.MustCompile(`^[A-Za-z0-9\- ]+$`)

// IngestionService validates and stores external systems' pushed
// recommendations.
type IngestionService struct {
	store ledgerPorts.LedgerStore
	cfg   config.IngestionConfig
}

// NewIngestionService creates a new ingestion service.
func NewIngestionService(store ledgerPorts.LedgerStore, cfg config.IngestionConfig) *IngestionService {
	return &IngestionService{store: store, cfg: cfg}
}

// PushArticles validates and upserts article candidate rankings for one
// system, per spec.md §6's size bounds and eligibility rule.
func (s *IngestionService) PushArticles(ctx context.Context, systemID int64, req ingestionModel.ArticleRecommendationsRequest) error {
	if len(req.Recommendations) > s.cfg.MaxUsersPerRecommendation {
		return fmt.Errorf("%w: recommendations cover %d users, max is %d", ledgerModel.ErrValidation, len(req.Recommendations), s.cfg.MaxUsersPerRecommendation)
	}

	now := time.Now().UTC()
	var rows []ledgerModel.CandidateRanking

	for rawUserID, articles := range req.Recommendations {
		userID, err := strconv.ParseInt(rawUserID, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: invalid user id %q", ledgerModel.ErrValidation, rawUserID)
		}

		if len(articles) > s.cfg.MaxRecommendationsPerUser {
			return fmt.Errorf("%w: user %d has %d recommendations, max is %d", ledgerModel.ErrValidation, userID, len(articles), s.cfg.MaxRecommendationsPerUser)
		}

		exists, err := s.store.UserExists(ctx, userID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: user %d", ledgerModel.ErrUserNotFound, userID)
		}

		for _, article := range articles {
			if len(article.Explanation) > s.cfg.MaxExplanationLen {
				return fmt.Errorf("%w: explanation for article %s exceeds %d characters", ledgerModel.ErrValidation, article.ArticleID, s.cfg.MaxExplanationLen)
			}

			eligible, err := s.store.ArticleEligible(ctx, article.ArticleID)
			if err != nil {
				return err
			}
			if !eligible {
				return fmt.Errorf("%w: article %s is not within the past seven days", ledgerModel.ErrOutsideEligibleWindow, article.ArticleID)
			}

			rows = append(rows, ledgerModel.CandidateRanking{
				UserID:      userID,
				ArticleID:   article.ArticleID,
				SystemID:    systemID,
				Score:       article.Score,
				Explanation: article.Explanation,
				SubmittedAt: now,
			})
		}
	}

	if len(rows) == 0 {
		return nil
	}
	return s.store.UpsertCandidateArticleRankings(ctx, rows)
}

// PushTopics validates and upserts topic candidate rankings for one system.
func (s *IngestionService) PushTopics(ctx context.Context, systemID int64, req ingestionModel.TopicRecommendationsRequest) error {
	if len(req.Recommendations) > s.cfg.MaxUsersPerRecommendation {
		return fmt.Errorf("%w: recommendations cover %d users, max is %d", ledgerModel.ErrValidation, len(req.Recommendations), s.cfg.MaxUsersPerRecommendation)
	}

	now := time.Now().UTC()
	var rows []ledgerModel.CandidateTopicRanking

	for rawUserID, topics := range req.Recommendations {
		userID, err := strconv.ParseInt(rawUserID, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: invalid user id %q", ledgerModel.ErrValidation, rawUserID)
		}

		if len(topics) > s.cfg.MaxRecommendationsPerUser {
			return fmt.Errorf("%w: user %d has %d recommendations, max is %d", ledgerModel.ErrValidation, userID, len(topics), s.cfg.MaxRecommendationsPerUser)
		}

		exists, err := s.store.UserExists(ctx, userID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: user %d", ledgerModel.ErrUserNotFound, userID)
		}

		for _, topic := range topics {
			if len(topic.Explanation) > s.cfg.MaxExplanationLen {
				return fmt.Errorf("%w: explanation for topic %s exceeds %d characters", ledgerModel.ErrValidation, topic.Topic, s.cfg.MaxExplanationLen)
			}
			if len(topic.Topic) > s.cfg.MaxTopicLength {
				return fmt.Errorf("%w: topic %q exceeds %d characters", ledgerModel.ErrValidation, topic.Topic, s.cfg.MaxTopicLength)
			}
			if !topicPattern.MatchString(topic.Topic) {
				return fmt.Errorf("%w: topic %q contains disallowed characters", ledgerModel.ErrValidation, topic.Topic)
			}

			rows = append(rows, ledgerModel.CandidateTopicRanking{
				UserID:      userID,
				Topic:       topic.Topic,
				SystemID:    systemID,
				Score:       topic.Score,
				Explanation: topic.Explanation,
				SubmittedAt: now,
			})
		}
	}

	if len(rows) == 0 {
		return nil
	}
	return s.store.UpsertCandidateTopicRankings(ctx, rows)
}
