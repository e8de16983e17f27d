package model

import "time"

// CandidateArticle is one system's proposal of an article for a user,
// as read back by FetchCandidateArticles -- the (U, S) -> [(A, score,
// explanation)] shape of spec.md §4.1, sorted by score descending.
type CandidateArticle struct {
	ArticleID    string
	SystemID     int64
	Score        float64
	Explanation  string
	SubmittedAt  time.Time
}

// CandidateRanking is the row pushed by an external system via the
// ingestion surface. Upserted by (UserID, ArticleID, SystemID); a later
// push for the same key replaces the earlier one.
type CandidateRanking struct {
	UserID      int64
	ArticleID   string
	SystemID    int64
	Score       float64
	Explanation string
	SubmittedAt time.Time
}

// CandidateTopic mirrors CandidateArticle for the topic path.
type CandidateTopic struct {
	Topic       string
	SystemID    int64
	Score       float64
	Explanation string
	SubmittedAt time.Time
}

// CandidateTopicRanking mirrors CandidateRanking for the topic path.
type CandidateTopicRanking struct {
	UserID      int64
	Topic       string
	SystemID    int64
	Score       float64
	Explanation string
	SubmittedAt time.Time
}
