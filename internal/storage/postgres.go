package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yourname/exercisetracker/internal"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	username   TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS exercises (
	id          BIGSERIAL PRIMARY KEY,
	user_id     TEXT NOT NULL REFERENCES users(id),
	description TEXT NOT NULL,
	duration    INTEGER NOT NULL,
	date        DATE NOT NULL
);
CREATE INDEX IF NOT EXISTS exercises_user_id_idx ON exercises (user_id, id);
`

type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

func NewPostgresStorage(ctx context.Context, dsn string, logger internal.Logger) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Errorf("failed to ping postgres: %v", err)
		return nil, err
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		logger.Errorf("failed to create schema: %v", err)
		return nil, fmt.Errorf("storage: create schema: %w", err)
	}
	return &PostgresStorage{pool: pool, logger: logger}, nil
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

// --- UserRepository ---
func (p *PostgresStorage) CreateUser(ctx context.Context, user *internal.User) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO users (id, username) VALUES ($1, $2)`, user.ID, user.Username)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return ErrDuplicateUser
		}
		p.logger.Errorf("failed to insert user: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) GetUser(ctx context.Context, id string) (*internal.User, error) {
	row := p.pool.QueryRow(ctx, `SELECT id, username FROM users WHERE id = $1`, id)
	var u internal.User
	if err := row.Scan(&u.ID, &u.Username); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		p.logger.Errorf("failed to query user: %v", err)
		return nil, err
	}
	return &u, nil
}

func (p *PostgresStorage) ListUsers(ctx context.Context) ([]internal.User, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, username FROM users ORDER BY created_at, id`)
	if err != nil {
		p.logger.Errorf("failed to query users: %v", err)
		return nil, err
	}
	defer rows.Close()

	users := []internal.User{}
	for rows.Next() {
		var u internal.User
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			p.logger.Errorf("failed to scan user: %v", err)
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// --- ExerciseRepository ---
func (p *PostgresStorage) AddExercise(ctx context.Context, exercise *internal.Exercise) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO exercises (user_id, description, duration, date) VALUES ($1, $2, $3, $4)`,
		exercise.UserID, exercise.Description, exercise.Duration, exercise.Date.Time())
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return ErrUserNotFound
		}
		p.logger.Errorf("failed to insert exercise: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) ListExercises(ctx context.Context, userID string) ([]internal.Exercise, error) {
	rows, err := p.pool.Query(ctx, `SELECT user_id, description, duration, date FROM exercises WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		p.logger.Errorf("failed to query exercises: %v", err)
		return nil, err
	}
	defer rows.Close()

	exercises := []internal.Exercise{}
	for rows.Next() {
		var (
			e   internal.Exercise
			day time.Time
		)
		if err := rows.Scan(&e.UserID, &e.Description, &e.Duration, &day); err != nil {
			p.logger.Errorf("failed to scan exercise: %v", err)
			return nil, err
		}
		e.Date = internal.NewDate(day)
		exercises = append(exercises, e)
	}
	return exercises, rows.Err()
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// --- Compile-time assertions ---
var _ Store = (*PostgresStorage)(nil)
