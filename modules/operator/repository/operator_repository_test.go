package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iai-group/arxivdigest-go/modules/operator/model"
)

// testOperatorRepo is a test wrapper that uses pgxmock in place of *pgxpool.Pool.
type testOperatorRepo struct {
	mock pgxmock.PgxPoolIface
}

func (r *testOperatorRepo) Create(ctx context.Context, operator *model.Operator) error {
	query := `
		INSERT INTO operators (id, email, name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.mock.Exec(ctx, query,
		pgxmock.AnyArg(),
		operator.Email,
		operator.Name,
		operator.PasswordHash,
		operator.CreatedAt,
		operator.UpdatedAt,
	)
	return err
}

func (r *testOperatorRepo) GetByEmail(ctx context.Context, email string) (*model.Operator, error) {
	query := `
		SELECT id, email, name, password_hash, created_at, updated_at
		FROM operators
		WHERE email = $1
	`
	operator := &model.Operator{}
	err := r.mock.QueryRow(ctx, query, email).Scan(
		&operator.ID,
		&operator.Email,
		&operator.Name,
		&operator.PasswordHash,
		&operator.CreatedAt,
		&operator.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, model.ErrOperatorNotFound
		}
		return nil, err
	}
	return operator, nil
}

func TestOperatorRepository_Create(t *testing.T) {
	t.Run("creates operator successfully", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		operator := model.NewOperator("alice@example.com", "Alice", "hashed")

		mock.ExpectExec("INSERT INTO operators").
			WithArgs(pgxmock.AnyArg(), operator.Email, operator.Name, operator.PasswordHash, operator.CreatedAt, operator.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		repo := &testOperatorRepo{mock: mock}
		err = repo.Create(context.Background(), operator)

		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOperatorRepository_GetByEmail(t *testing.T) {
	t.Run("returns operator successfully", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		now := time.Now()
		rows := pgxmock.NewRows([]string{
			"id", "email", "name", "password_hash", "created_at", "updated_at",
		}).AddRow("op-1", "alice@example.com", "Alice", "hashed", now, now)

		mock.ExpectQuery("SELECT id, email, name, password_hash, created_at, updated_at").
			WithArgs("alice@example.com").
			WillReturnRows(rows)

		repo := &testOperatorRepo{mock: mock}
		operator, err := repo.GetByEmail(context.Background(), "alice@example.com")

		require.NoError(t, err)
		assert.Equal(t, "op-1", operator.ID)
		assert.Equal(t, "Alice", operator.Name)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns error when operator not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("SELECT id, email, name, password_hash, created_at, updated_at").
			WithArgs("missing@example.com").
			WillReturnError(pgx.ErrNoRows)

		repo := &testOperatorRepo{mock: mock}
		operator, err := repo.GetByEmail(context.Background(), "missing@example.com")

		require.ErrorIs(t, err, model.ErrOperatorNotFound)
		assert.Nil(t, operator)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
