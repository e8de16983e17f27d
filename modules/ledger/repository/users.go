package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iai-group/arxivdigest-go/modules/ledger/model"
)

// PageUsers returns users in deterministic ID order.
func (s *Store) PageUsers(ctx context.Context, limit, offset int) ([]model.User, error) {
	query := `
		SELECT id, contact_address, notification_interval, topics, categories,
		       registered_at, last_recommended_on, last_emailed_on, unsubscribe_trace
		FROM users
		ORDER BY id
		LIMIT $1 OFFSET $2
	`

	rows, err := s.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID,
			&u.ContactAddress,
			&u.NotificationInterval,
			&u.Topics,
			&u.Categories,
			&u.RegisteredAt,
			&u.LastRecommendedOn,
			&u.LastEmailedOn,
			&u.UnsubscribeTrace,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// CountUsers returns the total number of registered users.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var total int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total)
	return total, err
}

// UserExists reports whether a user with this ID is registered.
func (s *Store) UserExists(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	return exists, err
}

// Unsubscribe resolves a user by unsubscribe trace, sets cadence to off,
// and rotates the trace (spec.md §4.4).
func (s *Store) Unsubscribe(ctx context.Context, trace string) error {
	query := `
		UPDATE users
		SET notification_interval = 0, unsubscribe_trace = gen_random_uuid()
		WHERE unsubscribe_trace = $1
	`

	result, err := s.pool.Exec(ctx, query, trace)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}

	return nil
}

// GetSystemByAPIKey resolves the system authenticating an ingestion call.
func (s *Store) GetSystemByAPIKey(ctx context.Context, apiKey string) (*model.System, error) {
	query := `
		SELECT id, owner_user_id, api_key, active, display_name
		FROM systems
		WHERE api_key = $1 AND active = true
	`

	system := &model.System{}
	err := s.pool.QueryRow(ctx, query, apiKey).Scan(
		&system.ID,
		&system.OwnerUserID,
		&system.APIKey,
		&system.Active,
		&system.DisplayName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrSystemNotFound
		}
		return nil, err
	}

	return system, nil
}

// ArticleEligible reports whether an article is known and dated within
// the past 7 days, the ingestion-eligible window (§6, S6).
func (s *Store) ArticleEligible(ctx context.Context, articleID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM articles
			WHERE id = $1 AND datestamp > (CURRENT_DATE - INTERVAL '7 days')
		)
	`

	var eligible bool
	err := s.pool.QueryRow(ctx, query, articleID).Scan(&eligible)
	return eligible, err
}
