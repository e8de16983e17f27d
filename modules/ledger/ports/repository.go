package ports

import (
	"context"
	"time"

	"github.com/iai-group/arxivdigest-go/modules/ledger/model"
)

// LedgerStore is the durable, transactional store exposed to the rest of
// the core. It is a contract, not a schema: repository.Store is the only
// Postgres-backed implementation, but nothing above this interface may
// assume a particular storage engine.
type LedgerStore interface {
	// PageUsers returns users in a deterministic order by ID.
	PageUsers(ctx context.Context, limit, offset int) ([]model.User, error)

	// CountUsers returns the total number of registered users.
	CountUsers(ctx context.Context) (int, error)

	// FetchCandidateArticles returns, for each user in userIDs, every
	// system's candidate articles -- restricted to articles dated within
	// the past 7 days, excluding (U, A) pairs that already have an
	// Impression, and only for users whose last_recommended_on < today.
	FetchCandidateArticles(ctx context.Context, userIDs []int64) (map[int64]map[int64][]model.CandidateArticle, error)

	// InsertArticleImpressions batch-inserts Impression rows and advances
	// last_recommended_on for the affected users in the same transaction.
	InsertArticleImpressions(ctx context.Context, rows []model.ArticleImpression) error

	// FetchUnsentDigest returns impressions from the last 7 days, grouped
	// by calendar date, for users whose last_emailed_on < today.
	FetchUnsentDigest(ctx context.Context, userIDs []int64) (map[int64]map[time.Time][]model.DigestArticle, error)

	// StampTraces sets seen_email/click_trace/save_trace for each row and
	// advances the user's last_emailed_on, in a single transaction per batch.
	StampTraces(ctx context.Context, rows []model.TraceStamp) error

	// AttributeArticleInteraction applies one inbound feedback event to an
	// Impression row. trace is only consulted for the email-keyed kinds;
	// flag is only consulted for InteractionSaveWeb (true=set, false=clear).
	// See spec §4.5 for per-kind semantics.
	AttributeArticleInteraction(ctx context.Context, kind model.InteractionKind, userID int64, articleID string, trace *string, flag bool) error

	// FetchFeedbackWindow returns impression+flag rows in [start, end],
	// optionally restricted to one system, for the reward aggregator.
	FetchFeedbackWindow(ctx context.Context, start, end time.Time, systemID *int64) ([]model.ArticleImpression, error)

	// FetchCandidateTopics mirrors FetchCandidateArticles for the topic path.
	FetchCandidateTopics(ctx context.Context, userIDs []int64) (map[int64]map[int64][]model.CandidateTopic, error)

	// InsertTopicImpressions batch-inserts TopicImpression rows, expiring
	// the user's unused prior suggestions first in the same transaction.
	InsertTopicImpressions(ctx context.Context, rows []model.TopicImpression, expireUserID int64) error

	// FetchTopicFeedbackWindow mirrors FetchFeedbackWindow for the topic path.
	FetchTopicFeedbackWindow(ctx context.Context, start, end time.Time, systemID *int64) ([]model.TopicImpressionState, error)

	// Unsubscribe resolves a user by unsubscribe trace and rotates it.
	Unsubscribe(ctx context.Context, trace string) error

	// GetSystemByAPIKey resolves the system authenticating an ingestion call.
	GetSystemByAPIKey(ctx context.Context, apiKey string) (*model.System, error)

	// UpsertCandidateArticleRankings writes the pushed CandidateRanking rows,
	// replacing any existing row for the same (user, article, system).
	UpsertCandidateArticleRankings(ctx context.Context, rows []model.CandidateRanking) error

	// UpsertCandidateTopicRankings mirrors UpsertCandidateArticleRankings.
	UpsertCandidateTopicRankings(ctx context.Context, rows []model.CandidateTopicRanking) error

	// ArticleEligible reports whether an article with this ID is known and
	// dated within the past 7 days (the ingestion-eligible window).
	ArticleEligible(ctx context.Context, articleID string) (bool, error)

	// UserExists reports whether a user with this ID is registered.
	UserExists(ctx context.Context, userID int64) (bool, error)
}
