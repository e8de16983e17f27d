package repository

import (
	"context"
	"time"

	"github.com/iai-group/arxivdigest-go/modules/ledger/model"
)

// AttributeArticleInteraction applies one inbound feedback event (spec.md
// §4.5). A missing Impression row is silently ignored; a trace mismatch on
// an email-keyed event is rejected with ErrTraceMismatch. Flag timestamps
// only ever transition from null to a value (I5/P10), except save_web,
// which may also clear saved per its own semantics.
func (s *Store) AttributeArticleInteraction(ctx context.Context, kind model.InteractionKind, userID int64, articleID string, trace *string, flag bool) error {
	now := time.Now().UTC()

	switch kind {
	case model.InteractionClickWeb:
		_, err := s.pool.Exec(ctx,
			`UPDATE impressions SET clicked_web = $3 WHERE user_id = $1 AND article_id = $2 AND clicked_web IS NULL`,
			userID, articleID, now,
		)
		return err

	case model.InteractionSeenWeb:
		_, err := s.pool.Exec(ctx,
			`UPDATE impressions SET seen_web = $3 WHERE user_id = $1 AND article_id = $2 AND seen_web IS NULL`,
			userID, articleID, now,
		)
		return err

	case model.InteractionSaveWeb:
		var saved *time.Time
		if flag {
			saved = &now
		}
		_, err := s.pool.Exec(ctx,
			`UPDATE impressions SET saved = $3 WHERE user_id = $1 AND article_id = $2`,
			userID, articleID, saved,
		)
		return err

	case model.InteractionClickEmail:
		return s.attributeTraced(ctx, userID, articleID, trace, "click_trace", "clicked_email", now)

	case model.InteractionSaveEmail:
		return s.attributeTraced(ctx, userID, articleID, trace, "save_trace", "saved", now)

	default:
		return nil
	}
}

// attributeTraced implements the email-keyed events: a missing row is
// ignored; otherwise the stored trace column must equal the inbound trace,
// else the event is rejected (trace mismatch) without changing any state.
func (s *Store) attributeTraced(ctx context.Context, userID int64, articleID string, trace *string, traceColumn, flagColumn string, now time.Time) error {
	if trace == nil {
		return model.ErrTraceMismatch
	}

	var storedTrace *string
	err := s.pool.QueryRow(ctx,
		`SELECT `+traceColumn+` FROM impressions WHERE user_id = $1 AND article_id = $2`,
		userID, articleID,
	).Scan(&storedTrace)
	if err != nil {
		return nil // no row: ignore per §4.5 failure model
	}

	if storedTrace == nil || *storedTrace != *trace {
		return model.ErrTraceMismatch
	}

	_, err = s.pool.Exec(ctx,
		`UPDATE impressions SET `+flagColumn+` = $3 WHERE user_id = $1 AND article_id = $2 AND `+flagColumn+` IS NULL`,
		userID, articleID, now,
	)
	return err
}

// FetchFeedbackWindow returns impression+flag rows in [start, end],
// optionally restricted to one system, for the reward aggregator (C6).
func (s *Store) FetchFeedbackWindow(ctx context.Context, start, end time.Time, systemID *int64) ([]model.ArticleImpression, error) {
	query := `
		SELECT user_id, article_id, system_id, position_score, explanation, interleaved_at,
		       seen_email, seen_web, clicked_email, clicked_web, saved, click_trace, save_trace
		FROM impressions
		WHERE interleaved_at >= $1 AND interleaved_at <= $2
		  AND ($3::bigint IS NULL OR system_id = $3)
		ORDER BY interleaved_at
	`

	rows, err := s.pool.Query(ctx, query, start, end, systemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.ArticleImpression
	for rows.Next() {
		var imp model.ArticleImpression
		if err := rows.Scan(
			&imp.UserID, &imp.ArticleID, &imp.SystemID, &imp.PositionScore, &imp.Explanation, &imp.InterleavedAt,
			&imp.SeenEmail, &imp.SeenWeb, &imp.ClickedEmail, &imp.ClickedWeb, &imp.Saved, &imp.ClickTrace, &imp.SaveTrace,
		); err != nil {
			return nil, err
		}
		result = append(result, imp)
	}

	return result, rows.Err()
}
