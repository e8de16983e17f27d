package model

import "time"

// NotificationInterval is a user's digest cadence.
type NotificationInterval int

const (
	NotificationOff NotificationInterval = iota
	NotificationDaily
	NotificationWeekly
)

// User is a recommendation recipient. Distinct from an operator account
// (see modules/operator/model.Operator) -- a User never logs in to the core.
type User struct {
	ID                   int64
	ContactAddress       string
	NotificationInterval NotificationInterval
	Topics               []string
	Categories           []string
	RegisteredAt         time.Time
	LastRecommendedOn    time.Time
	LastEmailedOn        time.Time
	UnsubscribeTrace     string
}
