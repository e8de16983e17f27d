package ports

import (
	"context"

	"github.com/iai-group/arxivdigest-go/modules/operator/model"
)

// OperatorRepository defines data access for operator accounts.
type OperatorRepository interface {
	Create(ctx context.Context, operator *model.Operator) error
	GetByID(ctx context.Context, operatorID string) (*model.Operator, error)
	GetByEmail(ctx context.Context, email string) (*model.Operator, error)
}

// RefreshTokenRepository defines data access for operator refresh tokens.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, tokenHash string) error
	RevokeAllForOperator(ctx context.Context, operatorID string) error
	DeleteExpired(ctx context.Context) error
}
