package repository

import (
	"context"
	"time"

	"github.com/iai-group/arxivdigest-go/modules/ledger/model"
)

// FetchCandidateTopics mirrors FetchCandidateArticles for the topic path.
// Topics have no datestamp eligibility window; every pushed candidate not
// already credited to the user's current topic impressions is eligible.
func (s *Store) FetchCandidateTopics(ctx context.Context, userIDs []int64) (map[int64]map[int64][]model.CandidateTopic, error) {
	if len(userIDs) == 0 {
		return map[int64]map[int64][]model.CandidateTopic{}, nil
	}

	query := `
		SELECT ctr.user_id, ctr.system_id, ctr.topic, ctr.score, ctr.explanation, ctr.submitted_at
		FROM candidate_topic_rankings ctr
		WHERE ctr.user_id = ANY($1)
		  AND NOT EXISTS (
		      SELECT 1 FROM topic_impressions ti
		      WHERE ti.user_id = ctr.user_id AND ti.topic = ctr.topic
		  )
		ORDER BY ctr.user_id, ctr.system_id, ctr.score DESC
	`

	rows, err := s.pool.Query(ctx, query, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64]map[int64][]model.CandidateTopic)
	for rows.Next() {
		var userID, systemID int64
		c := model.CandidateTopic{}
		if err := rows.Scan(&userID, &systemID, &c.Topic, &c.Score, &c.Explanation, &c.SubmittedAt); err != nil {
			return nil, err
		}
		c.SystemID = systemID

		if _, ok := result[userID]; !ok {
			result[userID] = make(map[int64][]model.CandidateTopic)
		}
		result[userID][systemID] = append(result[userID][systemID], c)
	}

	return result, rows.Err()
}

// InsertTopicImpressions batch-inserts TopicImpression rows for one fused
// batch, first expiring the user's unused prior suggestions (spec.md §4.3
// topic path, I7).
func (s *Store) InsertTopicImpressions(ctx context.Context, rows []model.TopicImpression, expireUserID int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE user_topic_states
		SET state = 'EXPIRED', interaction_time = now()
		WHERE user_id = $1
		  AND state IN ('USER_ADDED', 'SYSTEM_RECOMMENDED_ACCEPTED', 'SYSTEM_RECOMMENDED_REJECTED')
	`, expireUserID)
	if err != nil {
		return err
	}

	insert := `
		INSERT INTO topic_impressions (user_id, topic, system_id, interleaving_order, interleaving_batch, explanation)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, topic) DO NOTHING
	`

	for _, row := range rows {
		if _, err := tx.Exec(ctx, insert, row.UserID, row.Topic, row.SystemID, row.InterleavingOrder, row.InterleavingBatch, row.Explanation); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// FetchTopicFeedbackWindow mirrors FetchFeedbackWindow for the topic path,
// joining each topic impression to its current UserTopicState.
func (s *Store) FetchTopicFeedbackWindow(ctx context.Context, start, end time.Time, systemID *int64) ([]model.TopicImpressionState, error) {
	query := `
		SELECT ti.user_id, ti.topic, ti.system_id, ti.interleaving_order, ti.interleaving_batch, ti.explanation,
		       COALESCE(uts.state, 'SYSTEM_RECOMMENDED_REJECTED')
		FROM topic_impressions ti
		LEFT JOIN user_topic_states uts ON uts.user_id = ti.user_id AND uts.topic = ti.topic
		WHERE ti.interleaving_batch >= $1 AND ti.interleaving_batch <= $2
		  AND ($3::bigint IS NULL OR ti.system_id = $3)
		ORDER BY ti.interleaving_batch
	`

	rows, err := s.pool.Query(ctx, query, start, end, systemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.TopicImpressionState
	for rows.Next() {
		var row model.TopicImpressionState
		if err := rows.Scan(
			&row.Impression.UserID, &row.Impression.Topic, &row.Impression.SystemID,
			&row.Impression.InterleavingOrder, &row.Impression.InterleavingBatch, &row.Impression.Explanation,
			&row.State,
		); err != nil {
			return nil, err
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

// UpsertCandidateTopicRankings mirrors UpsertCandidateArticleRankings.
func (s *Store) UpsertCandidateTopicRankings(ctx context.Context, rows []model.CandidateTopicRanking) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO candidate_topic_rankings (user_id, topic, system_id, score, explanation, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, topic, system_id)
		DO UPDATE SET score = $4, explanation = $5, submitted_at = $6
	`

	for _, row := range rows {
		if _, err := tx.Exec(ctx, query, row.UserID, row.Topic, row.SystemID, row.Score, row.Explanation, row.SubmittedAt); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
