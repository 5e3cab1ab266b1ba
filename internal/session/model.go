package session

import (
	"time"

	appErrors "github.com/pasalkarvaibhavi/fintrack/errors"
	"github.com/pasalkarvaibhavi/fintrack/internal/store"
)

// Result is the uniform outcome shape of every session operation. Session
// methods never return raw errors to the caller; failures become a
// user-facing message.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`

	err error
}

// Err exposes the underlying error of a failed result, for callers that
// map failures onto transport status codes.
func (r Result) Err() error {
	return r.err
}

func ok() Result {
	return Result{Success: true}
}

func okData(data any) Result {
	return Result{Success: true, Data: data}
}

func okMessage(message string) Result {
	return Result{Success: true, Message: message}
}

func fail(err error) Result {
	return Result{Success: false, Message: appErrors.UserMessage(err), err: err}
}

func failNotAuthenticated() Result {
	return fail(appErrors.New(appErrors.ErrAuth, "Not authenticated"))
}

// User is the sanitized projection of a store.User: everything the UI may
// hold, with the password hash stripped.
type User struct {
	ID                      string                        `json:"id"`
	Name                    string                        `json:"name"`
	Email                   string                        `json:"email"`
	Avatar                  *string                       `json:"avatar"`
	CreatedAt               time.Time                     `json:"createdAt"`
	Expenses                []store.Expense               `json:"expenses"`
	Categories              []store.Category              `json:"categories"`
	Budget                  float64                       `json:"budget"`
	Currency                string                        `json:"currency"`
	FinancialGoals          []store.Goal                  `json:"financialGoals"`
	NotificationPreferences store.NotificationPreferences `json:"notificationPreferences"`
}

func sanitize(u store.User) User {
	return User{
		ID:                      u.ID,
		Name:                    u.Name,
		Email:                   u.Email,
		Avatar:                  u.Avatar,
		CreatedAt:               u.CreatedAt,
		Expenses:                u.Expenses,
		Categories:              u.Categories,
		Budget:                  u.Budget,
		Currency:                u.Currency,
		FinancialGoals:          u.FinancialGoals,
		NotificationPreferences: u.NotificationPreferences,
	}
}

// rememberToken is the minimal persisted credential used to restore a
// session across restarts. It never carries the password.
type rememberToken struct {
	Email string `json:"email"`
}

// ResetRequest surfaces a generated reset code to the delivery collaborator
// in place of real email sending.
type ResetRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// ProfileUpdate carries the profile fields a user may edit.
type ProfileUpdate struct {
	Name   *string
	Avatar *string
}

// CategoryUpdate carries replace-by-key edits of a single category.
type CategoryUpdate struct {
	Name   *string
	Icon   *string
	Color  *string
	Budget *float64
}
