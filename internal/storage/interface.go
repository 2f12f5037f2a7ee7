package storage

import (
	"context"
	"errors"
	"io"

	"github.com/yourname/exercisetracker/internal"
)

var (
	ErrUserNotFound  = errors.New("storage: user not found")
	ErrDuplicateUser = errors.New("storage: duplicate user id")
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *internal.User) error
	GetUser(ctx context.Context, id string) (*internal.User, error)
	ListUsers(ctx context.Context) ([]internal.User, error)
}

type ExerciseRepository interface {
	AddExercise(ctx context.Context, exercise *internal.Exercise) error
	ListExercises(ctx context.Context, userID string) ([]internal.Exercise, error)
}

// Store is a complete backend: both repositories plus the resources behind them.
type Store interface {
	UserRepository
	ExerciseRepository
	io.Closer
}
