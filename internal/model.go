package internal

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the human readable form exercise dates are stored and
// returned in, e.g. "Sun Jan 15 2023".
const DateLayout = "Mon Jan 02 2006"

type User struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

type Exercise struct {
	UserID      string `json:"userId"`
	Description string `json:"description"`
	Duration    int    `json:"duration"` // minutes
	Date        Date   `json:"date"`
}

// Date is a calendar day without a time of day component. It always
// normalises to midnight UTC so that comparisons are day-accurate. "Today"
// is deliberately the UTC day, so a server in another zone may record the
// neighbouring day around local midnight.
type Date struct {
	t time.Time
}

func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Time() time.Time    { return d.t }
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }
func (d Date) IsZero() bool       { return d.t.IsZero() }
func (d Date) String() string     { return d.t.Format(DateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return fmt.Errorf("date %q: %w", s, err)
	}
	*d = NewDate(t)
	return nil
}

// AppError is an error with an HTTP status and a message safe to show clients.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewAppError(code int, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}
