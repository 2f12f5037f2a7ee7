package api

import (
	"time"

	"github.com/yourname/exercisetracker/internal"
	"github.com/yourname/exercisetracker/internal/storage"
)

type App interface {
	Logger() internal.Logger
	UserRepo() storage.UserRepository
	ExerciseRepo() storage.ExerciseRepository
	Now() time.Time
}

// Application is the production App.
type Application struct {
	logger    internal.Logger
	users     storage.UserRepository
	exercises storage.ExerciseRepository
	clock     func() time.Time
}

func NewApplication(logger internal.Logger, users storage.UserRepository, exercises storage.ExerciseRepository) *Application {
	return &Application{logger: logger, users: users, exercises: exercises, clock: time.Now}
}

// WithClock replaces the time source used for default exercise dates.
func (a *Application) WithClock(clock func() time.Time) *Application {
	a.clock = clock
	return a
}

func (a *Application) Logger() internal.Logger                  { return a.logger }
func (a *Application) UserRepo() storage.UserRepository         { return a.users }
func (a *Application) ExerciseRepo() storage.ExerciseRepository { return a.exercises }
func (a *Application) Now() time.Time                           { return a.clock() }
