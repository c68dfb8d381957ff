package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/chat-ticketing/internal/domain"
)

// UserRepository defines persistence access for agents.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	SetQueues(ctx context.Context, userID int64, queueIDs []int64) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, profile)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Profile,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET name=$1, email=$2, password_hash=$3, profile=$4, updated_at=NOW()
        WHERE id=$5`

	cmd, err := r.pool.Exec(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Profile,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// userSelect joins assigned queue ids into the user row so a single lookup
// yields the full visibility scope.
const userSelect = `
    SELECT u.id, u.name, u.email, u.password_hash, u.profile, u.created_at, u.updated_at,
           COALESCE(array_agg(uq.queue_id) FILTER (WHERE uq.queue_id IS NOT NULL), '{}')
    FROM users u
    LEFT JOIN user_queues uq ON uq.user_id = u.id`

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := userSelect + ` WHERE u.id=$1 GROUP BY u.id`
	return r.fetchSingle(ctx, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := userSelect + ` WHERE u.email=$1 GROUP BY u.id`
	return r.fetchSingle(ctx, query, email)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Profile,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.QueueIDs,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) SetQueues(ctx context.Context, userID int64, queueIDs []int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM user_queues WHERE user_id=$1`, userID); err != nil {
		return err
	}
	for _, queueID := range queueIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO user_queues (user_id, queue_id) VALUES ($1, $2)`,
			userID, queueID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
