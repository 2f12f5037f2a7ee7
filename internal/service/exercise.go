package service

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/yourname/exercisetracker/internal"
	"github.com/yourname/exercisetracker/internal/storage"
)

// dateLayouts are the input formats accepted for dates, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	internal.DateLayout,
	"2006/1/2",
	"1/2/2006",
	"Jan 2 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

type CreateExerciseRequest struct {
	Description string     `json:"description" form:"description" validate:"required"`
	Duration    FlexString `json:"duration" form:"duration" validate:"required"`
	Date        string     `json:"date,omitempty" form:"date"`
}

// ExerciseResponse is the owning user's identity merged with the new exercise.
type ExerciseResponse struct {
	ID          string        `json:"_id"`
	Username    string        `json:"username"`
	Description string        `json:"description"`
	Duration    int           `json:"duration"`
	Date        internal.Date `json:"date"`
}

func ParseDate(s string) (internal.Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return internal.NewDate(t), nil
		}
	}
	return internal.Date{}, &ValidationError{Field: "date", Msg: "is not a valid date: " + strconv.Quote(s)}
}

func parseDuration(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &ValidationError{Field: "duration", Msg: "must be an integer number of minutes"}
	}
	if n < 0 {
		return 0, &ValidationError{Field: "duration", Msg: "must not be negative"}
	}
	// Postgres stores duration as INTEGER.
	if n > math.MaxInt32 {
		return 0, &ValidationError{Field: "duration", Msg: "is too large"}
	}
	return n, nil
}

// BuildExercise validates req and turns it into an exercise for user. An
// empty date means the calendar day of now in UTC, not the server's local day.
func BuildExercise(user *internal.User, req *CreateExerciseRequest, now time.Time) (*internal.Exercise, error) {
	req.Description = strings.TrimSpace(req.Description)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	duration, err := parseDuration(string(req.Duration))
	if err != nil {
		return nil, err
	}

	date := internal.NewDate(now.UTC())
	if strings.TrimSpace(req.Date) != "" {
		if date, err = ParseDate(req.Date); err != nil {
			return nil, err
		}
	}

	return &internal.Exercise{
		UserID:      user.ID,
		Description: req.Description,
		Duration:    duration,
		Date:        date,
	}, nil
}

func CreateExercise(ctx context.Context, exerciseRepo storage.ExerciseRepository, user *internal.User, req *CreateExerciseRequest, now time.Time) (*ExerciseResponse, error) {
	exercise, err := BuildExercise(user, req, now)
	if err != nil {
		return nil, err
	}
	if err := exerciseRepo.AddExercise(ctx, exercise); err != nil {
		return nil, userError(err)
	}
	return &ExerciseResponse{
		ID:          user.ID,
		Username:    user.Username,
		Description: exercise.Description,
		Duration:    exercise.Duration,
		Date:        exercise.Date,
	}, nil
}
