package model

import "time"

// RefreshToken represents a refresh token issued to an operator session.
type RefreshToken struct {
	ID         string
	OperatorID string
	TokenHash  string
	ExpiresAt  time.Time
	CreatedAt  time.Time
	RevokedAt  *time.Time
}

// NewRefreshToken creates a new refresh token record.
func NewRefreshToken(operatorID, tokenHash string, expiresAt time.Time) *RefreshToken {
	return &RefreshToken{
		OperatorID: operatorID,
		TokenHash:  tokenHash,
		ExpiresAt:  expiresAt,
		CreatedAt:  time.Now().UTC(),
	}
}

// IsValid reports whether the token has not been revoked and is unexpired.
func (t *RefreshToken) IsValid() bool {
	return t.RevokedAt == nil && time.Now().UTC().Before(t.ExpiresAt)
}

// AuthTokens is the access/refresh token pair returned to the client.
type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}
