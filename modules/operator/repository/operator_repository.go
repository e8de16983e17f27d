package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iai-group/arxivdigest-go/modules/operator/model"
)

// OperatorRepository implements ports.OperatorRepository against Postgres.
type OperatorRepository struct {
	pool *pgxpool.Pool
}

// NewOperatorRepository creates a new operator repository.
func NewOperatorRepository(pool *pgxpool.Pool) *OperatorRepository {
	return &OperatorRepository{pool: pool}
}

// Create inserts a new operator account.
func (r *OperatorRepository) Create(ctx context.Context, operator *model.Operator) error {
	query := `
		INSERT INTO operators (id, email, name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	operator.ID = uuid.New().String()

	_, err := r.pool.Exec(ctx, query,
		operator.ID,
		operator.Email,
		operator.Name,
		operator.PasswordHash,
		operator.CreatedAt,
		operator.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return model.ErrOperatorAlreadyExists
		}
		return err
	}

	return nil
}

// GetByID retrieves an operator by ID.
func (r *OperatorRepository) GetByID(ctx context.Context, operatorID string) (*model.Operator, error) {
	query := `
		SELECT id, email, name, password_hash, created_at, updated_at
		FROM operators
		WHERE id = $1
	`

	operator := &model.Operator{}
	err := r.pool.QueryRow(ctx, query, operatorID).Scan(
		&operator.ID,
		&operator.Email,
		&operator.Name,
		&operator.PasswordHash,
		&operator.CreatedAt,
		&operator.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOperatorNotFound
		}
		return nil, err
	}

	return operator, nil
}

// GetByEmail retrieves an operator by email.
func (r *OperatorRepository) GetByEmail(ctx context.Context, email string) (*model.Operator, error) {
	query := `
		SELECT id, email, name, password_hash, created_at, updated_at
		FROM operators
		WHERE email = $1
	`

	operator := &model.Operator{}
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&operator.ID,
		&operator.Email,
		&operator.Name,
		&operator.PasswordHash,
		&operator.CreatedAt,
		&operator.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOperatorNotFound
		}
		return nil, err
	}

	return operator, nil
}
