package store

import (
	"fmt"
	"regexp"
	"time"

	appErrors "github.com/pasalkarvaibhavi/fintrack/errors"
)

const (
	DateLayout = "2006-01-02"

	MAX_AMOUNT_LIMIT      = 999999999999999999
	MAX_NAME_LENGTH       = 255
	MAX_DESCRIPTION_LENGTH = 1000
)

var colorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Document is the whole persisted state. It is rewritten wholesale on
// every mutation; there are no partial updates and no migrations.
type Document struct {
	Users             []User     `json:"users"`
	DefaultCategories []Category `json:"defaultCategories"`
}

type User struct {
	ID                      string                  `json:"id"`
	Name                    string                  `json:"name"`
	Email                   string                  `json:"email"`
	PasswordHash            string                  `json:"password"`
	Avatar                  *string                 `json:"avatar"`
	CreatedAt               time.Time               `json:"createdAt"`
	Expenses                []Expense               `json:"expenses"`
	Categories              []Category              `json:"categories"`
	Budget                  float64                 `json:"budget"`
	Currency                string                  `json:"currency"`
	FinancialGoals          []Goal                  `json:"financialGoals"`
	NotificationPreferences NotificationPreferences `json:"notificationPreferences"`
	ResetCode               string                  `json:"resetCode,omitempty"`
	ResetCodeExpires        *time.Time              `json:"resetCodeExpires,omitempty"`
}

type NotificationPreferences struct {
	ExpenseAlerts  bool `json:"expenseAlerts"`
	BudgetWarnings bool `json:"budgetWarnings"`
	MonthlyReports bool `json:"monthlyReports"`
}

type Category struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Icon   string  `json:"icon"`
	Color  string  `json:"color"`
	Budget float64 `json:"budget"`
}

type Expense struct {
	ID          string    `json:"id"`
	CategoryID  string    `json:"categoryId"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description,omitempty"`
	Date        string    `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Goal is carried through the update API but not interpreted by the core.
type Goal struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	TargetAmount float64   `json:"targetAmount"`
	Deadline     string    `json:"deadline,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	Completed    bool      `json:"completed"`
}

// ExpenseFields is the caller-supplied part of an Expense.
type ExpenseFields struct {
	CategoryID  string
	Amount      float64
	Description string
	Date        string
}

func (f ExpenseFields) Validate() error {
	if f.CategoryID == "" {
		return appErrors.New(appErrors.ErrInvalidInput, "Expense category is required.")
	}
	if f.Amount <= 0 {
		return appErrors.New(appErrors.ErrInvalidInput, "Expense amount must be greater than zero.")
	}
	if f.Amount > MAX_AMOUNT_LIMIT {
		return appErrors.New(appErrors.ErrInvalidInput, fmt.Sprintf("Expense amount is too large, the limit is: %d", MAX_AMOUNT_LIMIT))
	}
	if len(f.Description) > MAX_DESCRIPTION_LENGTH {
		return appErrors.New(appErrors.ErrInvalidInput, fmt.Sprintf("Description so long, maximum allowed length is: %d", MAX_DESCRIPTION_LENGTH))
	}
	if _, err := time.Parse(DateLayout, f.Date); err != nil {
		return appErrors.New(appErrors.ErrInvalidInput, "Expense date must be in YYYY-MM-DD format.")
	}
	return nil
}

// CategoryFields is the caller-supplied part of a Category.
type CategoryFields struct {
	Name   string
	Icon   string
	Color  string
	Budget float64
}

func (f CategoryFields) Validate() error {
	if f.Name == "" {
		return appErrors.New(appErrors.ErrInvalidInput, "Category name is required.")
	}
	if len(f.Name) > MAX_NAME_LENGTH {
		return appErrors.New(appErrors.ErrInvalidInput, fmt.Sprintf("Category name so long, maximum length is: %d", MAX_NAME_LENGTH))
	}
	if f.Budget <= 0 {
		return appErrors.New(appErrors.ErrInvalidInput, "Category budget must be greater than zero.")
	}
	if f.Color != "" && !colorRegex.MatchString(f.Color) {
		return appErrors.New(appErrors.ErrInvalidInput, "Category color must be a hex string, example: #3B82F6")
	}
	return nil
}

// GoalFields is the caller-supplied part of a Goal.
type GoalFields struct {
	Name         string
	TargetAmount float64
	Deadline     string
}

func (f GoalFields) Validate() error {
	if f.Name == "" {
		return appErrors.New(appErrors.ErrInvalidInput, "Goal name is required.")
	}
	if f.TargetAmount <= 0 {
		return appErrors.New(appErrors.ErrInvalidInput, "Goal target amount must be greater than zero.")
	}
	return nil
}

// UserUpdate carries replace-by-key updates for UpdateUser. A nil field is
// left untouched; a set field fully replaces the stored value, including
// the Categories, Expenses and FinancialGoals arrays.
type UserUpdate struct {
	Name                    *string
	Avatar                  *string
	PasswordHash            *string
	Budget                  *float64
	Currency                *string
	Categories              []Category
	Expenses                []Expense
	FinancialGoals          []Goal
	NotificationPreferences *NotificationPreferences
}

// GoalUpdate carries replace-by-key updates for a single financial goal.
type GoalUpdate struct {
	Name         *string
	TargetAmount *float64
	Deadline     *string
	Completed    *bool
}

// NotificationUpdate carries per-flag updates merged over the stored
// preferences.
type NotificationUpdate struct {
	ExpenseAlerts  *bool
	BudgetWarnings *bool
	MonthlyReports *bool
}
