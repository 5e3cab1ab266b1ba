package api

import (
	"errors"

	appErrors "github.com/pasalkarvaibhavi/fintrack/errors"
	"github.com/pasalkarvaibhavi/fintrack/internal/session"
)

// REQUESTS START:
type RegisterRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	AutoLogin bool   `json:"auto_login"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type VerifyResetCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

type ExpenseRequest struct {
	CategoryID  string  `json:"category_id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

type CategoryRequest struct {
	Name   string  `json:"name"`
	Icon   string  `json:"icon"`
	Color  string  `json:"color"`
	Budget float64 `json:"budget"`
}

type CategoryUpdateRequest struct {
	Name   *string  `json:"name"`
	Icon   *string  `json:"icon"`
	Color  *string  `json:"color"`
	Budget *float64 `json:"budget"`
}

type ProfileRequest struct {
	Name   *string `json:"name"`
	Avatar *string `json:"avatar"`
}

type BudgetRequest struct {
	Budget float64 `json:"budget"`
}

type CurrencyRequest struct {
	Currency string `json:"currency"`
}

type GoalRequest struct {
	Name         string  `json:"name"`
	TargetAmount float64 `json:"target_amount"`
	Deadline     string  `json:"deadline"`
}

type GoalUpdateRequest struct {
	Name         *string  `json:"name"`
	TargetAmount *float64 `json:"target_amount"`
	Deadline     *string  `json:"deadline"`
	Completed    *bool    `json:"completed"`
}

type NotificationRequest struct {
	ExpenseAlerts  *bool `json:"expense_alerts"`
	BudgetWarnings *bool `json:"budget_warnings"`
	MonthlyReports *bool `json:"monthly_reports"`
}

//REQUESTS END:

//RESPONSES:

type SessionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func sessionResponse(res session.Result, token string) SessionResponse {
	return SessionResponse{
		Success: res.Success,
		Message: res.Message,
		Token:   token,
		Data:    res.Data,
	}
}

func httpStatusFromError(err error) int {
	switch {
	case errors.Is(err, appErrors.ErrNotFound):
		return 404 // not found
	case errors.Is(err, appErrors.ErrInvalidInput):
		return 400 // bad request
	case errors.Is(err, appErrors.ErrAuth):
		return 401 // unauthorized
	case errors.Is(err, appErrors.ErrExpired):
		return 401 // expired token
	case errors.Is(err, appErrors.ErrConflict):
		return 409 // conflict
	default:
		return 500 //internal error
	}
}

func statusFromResult(res session.Result, successStatus int) int {
	if res.Success {
		return successStatus
	}
	if res.Err() == nil {
		return 500
	}
	return httpStatusFromError(res.Err())
}
