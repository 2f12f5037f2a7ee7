package service

import (
	"strconv"
	"strings"

	"github.com/yourname/exercisetracker/internal"
)

type LogQuery struct {
	From  string `form:"from"`
	To    string `form:"to"`
	Limit string `form:"limit"`
}

// LogFilter is a parsed LogQuery. Nil fields are unset; a set Limit of 0
// yields an empty log.
type LogFilter struct {
	From  *internal.Date
	To    *internal.Date
	Limit *int
}

type LogEntry struct {
	Description string        `json:"description"`
	Duration    int           `json:"duration"`
	Date        internal.Date `json:"date"`
}

type UserLog struct {
	ID       string     `json:"_id"`
	Username string     `json:"username"`
	Count    int        `json:"count"`
	Log      []LogEntry `json:"log"`
}

func ParseLogQuery(q *LogQuery) (LogFilter, error) {
	var f LogFilter
	if s := strings.TrimSpace(q.From); s != "" {
		d, err := ParseDate(s)
		if err != nil {
			return f, &ValidationError{Field: "from", Msg: "is not a valid date"}
		}
		f.From = &d
	}
	if s := strings.TrimSpace(q.To); s != "" {
		d, err := ParseDate(s)
		if err != nil {
			return f, &ValidationError{Field: "to", Msg: "is not a valid date"}
		}
		f.To = &d
	}
	if s := strings.TrimSpace(q.Limit); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return f, &ValidationError{Field: "limit", Msg: "must be a non-negative integer"}
		}
		f.Limit = &n
	}
	return f, nil
}

// FilterExercises keeps exercises within the inclusive [From, To] range, in
// their original order, then truncates to the first Limit entries.
func FilterExercises(exercises []internal.Exercise, f LogFilter) []internal.Exercise {
	out := make([]internal.Exercise, 0, len(exercises))
	for _, e := range exercises {
		if f.From != nil && e.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && e.Date.After(*f.To) {
			continue
		}
		out = append(out, e)
	}
	if f.Limit != nil && len(out) > *f.Limit {
		out = out[:*f.Limit]
	}
	return out
}

// BuildUserLog reports Count as the number of entries actually returned,
// i.e. after both the date filter and the limit.
func BuildUserLog(user *internal.User, exercises []internal.Exercise) UserLog {
	log := make([]LogEntry, len(exercises))
	for i, e := range exercises {
		log[i] = LogEntry{Description: e.Description, Duration: e.Duration, Date: e.Date}
	}
	return UserLog{
		ID:       user.ID,
		Username: user.Username,
		Count:    len(log),
		Log:      log,
	}
}
