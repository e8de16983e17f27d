package repository

import (
	"context"
	"time"

	"github.com/iai-group/arxivdigest-go/modules/ledger/model"
)

// FetchUnsentDigest returns impressions from the last 7 days, grouped by
// calendar date, for users whose last_emailed_on < today (spec.md §4.4).
func (s *Store) FetchUnsentDigest(ctx context.Context, userIDs []int64) (map[int64]map[time.Time][]model.DigestArticle, error) {
	if len(userIDs) == 0 {
		return map[int64]map[time.Time][]model.DigestArticle{}, nil
	}

	query := `
		SELECT i.user_id, i.interleaved_at::date, i.article_id, i.position_score, i.explanation
		FROM impressions i
		JOIN users u ON u.id = i.user_id
		WHERE i.user_id = ANY($1)
		  AND i.interleaved_at > (now() - INTERVAL '7 days')
		  AND u.last_emailed_on < CURRENT_DATE
		ORDER BY i.user_id, i.interleaved_at::date, i.position_score DESC
	`

	rows, err := s.pool.Query(ctx, query, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64]map[time.Time][]model.DigestArticle)
	for rows.Next() {
		var userID int64
		var date time.Time
		d := model.DigestArticle{}
		if err := rows.Scan(&userID, &date, &d.ArticleID, &d.PositionScore, &d.Explanation); err != nil {
			return nil, err
		}

		if _, ok := result[userID]; !ok {
			result[userID] = make(map[time.Time][]model.DigestArticle)
		}
		result[userID][date] = append(result[userID][date], d)
	}

	return result, rows.Err()
}

// StampTraces sets seen_email, click_trace, save_trace for each row and
// advances the user's last_emailed_on, atomically per batch (spec.md §4.4).
func (s *Store) StampTraces(ctx context.Context, rows []model.TraceStamp) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	update := `
		UPDATE impressions
		SET seen_email = COALESCE(seen_email, $3), click_trace = $4, save_trace = $5
		WHERE user_id = $1 AND article_id = $2
	`

	advanced := make(map[int64]struct{})
	for _, row := range rows {
		if _, err := tx.Exec(ctx, update, row.UserID, row.ArticleID, now, row.ClickTrace, row.SaveTrace); err != nil {
			return err
		}
		advanced[row.UserID] = struct{}{}
	}

	for userID := range advanced {
		if _, err := tx.Exec(ctx,
			`UPDATE users SET last_emailed_on = CURRENT_DATE WHERE id = $1`, userID,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
