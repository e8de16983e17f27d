package model

// ArticleRecommendation is one article entry in an ingestion push.
type ArticleRecommendation struct {
	ArticleID   string  `json:"article_id" binding:"required"`
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
}

// ArticleRecommendationsRequest is the body of POST /recommendations/articles.
type ArticleRecommendationsRequest struct {
	Recommendations map[string][]ArticleRecommendation `json:"recommendations" binding:"required"`
}

// TopicRecommendation is one topic entry in an ingestion push.
type TopicRecommendation struct {
	Topic       string  `json:"topic" binding:"required"`
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
}

// TopicRecommendationsRequest is the body of POST /recommendations/topics.
type TopicRecommendationsRequest struct {
	Recommendations map[string][]TopicRecommendation `json:"recommendations" binding:"required"`
}

// Response is the uniform ingestion response shape of spec.md §6.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
