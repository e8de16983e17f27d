package model

import "time"

// ArticleImpression is one (user, article, system) row recording that a
// system's contribution reached a user (spec.md §3, I1/I2). Interaction
// flags are nullable timestamps; null means the event never happened.
type ArticleImpression struct {
	UserID        int64
	ArticleID     string
	SystemID      int64
	PositionScore int
	Explanation   string
	InterleavedAt time.Time

	SeenEmail    *time.Time
	SeenWeb      *time.Time
	ClickedEmail *time.Time
	ClickedWeb   *time.Time
	Saved        *time.Time

	ClickTrace *string
	SaveTrace  *string
}

// DigestArticle is the slice of an ArticleImpression that the digest
// dispatcher needs to render one entry of an outbound email.
type DigestArticle struct {
	ArticleID     string
	PositionScore int
	Explanation   string
}

// TraceStamp is one row of the batch written by StampTraces: the traces
// minted for one (user, article) pair at digest-dispatch time.
type TraceStamp struct {
	UserID     int64
	ArticleID  string
	ClickTrace string
	SaveTrace  string
}

// InteractionKind enumerates the inbound feedback events of spec.md §4.5.
type InteractionKind int

const (
	InteractionClickWeb InteractionKind = iota
	InteractionSaveWeb
	InteractionClickEmail
	InteractionSaveEmail
	InteractionSeenWeb
)

// TopicImpression mirrors ArticleImpression for the topic path, carrying
// interleaving_order/interleaving_batch instead of position_score.
type TopicImpression struct {
	UserID            int64
	Topic             string
	SystemID          int64
	InterleavingOrder int
	InterleavingBatch time.Time
	Explanation       string
}

// UserTopicState is the finite-state record UserTopicState of spec.md §3,
// consumed by the reward aggregator's topic variant.
type UserTopicState struct {
	UserID         int64
	Topic          string
	State          TopicState
	InteractionTime time.Time
}

// TopicState is the finite set of states a (user, topic) pair can be in.
type TopicState string

const (
	TopicStateUserAdded                 TopicState = "USER_ADDED"
	TopicStateUserRejected              TopicState = "USER_REJECTED"
	TopicStateSystemRecommendedAccepted TopicState = "SYSTEM_RECOMMENDED_ACCEPTED"
	TopicStateSystemRecommendedRejected TopicState = "SYSTEM_RECOMMENDED_REJECTED"
	TopicStateExpired                   TopicState = "EXPIRED"
	TopicStateRefreshed                 TopicState = "REFRESHED"
)

// TopicImpressionState pairs a TopicImpression with the UserTopicState
// weight needed by the reward aggregator's topic variant.
type TopicImpressionState struct {
	Impression TopicImpression
	State      TopicState
}
