package repository

import (
	"context"

	"github.com/iai-group/arxivdigest-go/modules/ledger/model"
)

// FetchCandidateArticles returns, for each user in userIDs, every system's
// candidate articles -- restricted to articles dated within the past 7
// days, excluding (U, A) pairs that already have an Impression, and only
// for users whose last_recommended_on < today (spec.md §4.1).
func (s *Store) FetchCandidateArticles(ctx context.Context, userIDs []int64) (map[int64]map[int64][]model.CandidateArticle, error) {
	if len(userIDs) == 0 {
		return map[int64]map[int64][]model.CandidateArticle{}, nil
	}

	query := `
		SELECT cr.user_id, cr.system_id, cr.article_id, cr.score, cr.explanation, cr.submitted_at
		FROM candidate_rankings cr
		JOIN articles a ON a.id = cr.article_id
		JOIN users u ON u.id = cr.user_id
		WHERE cr.user_id = ANY($1)
		  AND a.datestamp > (CURRENT_DATE - INTERVAL '7 days')
		  AND u.last_recommended_on < CURRENT_DATE
		  AND NOT EXISTS (
		      SELECT 1 FROM impressions i
		      WHERE i.user_id = cr.user_id AND i.article_id = cr.article_id
		  )
		ORDER BY cr.user_id, cr.system_id, cr.score DESC
	`

	rows, err := s.pool.Query(ctx, query, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64]map[int64][]model.CandidateArticle)
	for rows.Next() {
		var userID, systemID int64
		c := model.CandidateArticle{}
		if err := rows.Scan(&userID, &systemID, &c.ArticleID, &c.Score, &c.Explanation, &c.SubmittedAt); err != nil {
			return nil, err
		}
		c.SystemID = systemID

		if _, ok := result[userID]; !ok {
			result[userID] = make(map[int64][]model.CandidateArticle)
		}
		result[userID][systemID] = append(result[userID][systemID], c)
	}

	return result, rows.Err()
}

// InsertArticleImpressions batch-inserts Impression rows and advances
// last_recommended_on for the affected users, atomically (I6, §5).
func (s *Store) InsertArticleImpressions(ctx context.Context, rows []model.ArticleImpression) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	insert := `
		INSERT INTO impressions (user_id, article_id, system_id, position_score, explanation, interleaved_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, article_id) DO NOTHING
	`

	advanced := make(map[int64]struct{})
	for _, row := range rows {
		if _, err := tx.Exec(ctx, insert,
			row.UserID, row.ArticleID, row.SystemID, row.PositionScore, row.Explanation, row.InterleavedAt,
		); err != nil {
			return err
		}
		advanced[row.UserID] = struct{}{}
	}

	for userID := range advanced {
		if _, err := tx.Exec(ctx,
			`UPDATE users SET last_recommended_on = CURRENT_DATE WHERE id = $1`, userID,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// UpsertCandidateArticleRankings writes pushed CandidateRanking rows,
// replacing any existing row for the same (user, article, system).
func (s *Store) UpsertCandidateArticleRankings(ctx context.Context, rows []model.CandidateRanking) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO candidate_rankings (user_id, article_id, system_id, score, explanation, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, article_id, system_id)
		DO UPDATE SET score = $4, explanation = $5, submitted_at = $6
	`

	for _, row := range rows {
		if _, err := tx.Exec(ctx, query, row.UserID, row.ArticleID, row.SystemID, row.Score, row.Explanation, row.SubmittedAt); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
