package model

import "time"

// System is an external recommender system registered with the core. Its
// API key authenticates the ingestion surface (§4.1, §6).
type System struct {
	ID          int64
	OwnerUserID int64
	APIKey      string
	Active      bool
	DisplayName string
}

// Article is treated as immutable by the core; it is only ever read back
// to render digest content and validate ingestion.
type Article struct {
	ID         string
	Title      string
	Abstract   string
	Datestamp  time.Time
	Authors    []string
	Categories []string
}
