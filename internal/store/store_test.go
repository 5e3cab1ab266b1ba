package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appErrors "github.com/pasalkarvaibhavi/fintrack/errors"
	"github.com/pasalkarvaibhavi/fintrack/internal/storage"
)

func newTestStore(t *testing.T) (*Store, *storage.MemorySlot) {
	t.Helper()
	slot := storage.NewMemorySlot()
	s, err := New(slot)
	require.NoError(t, err)
	return s, slot
}

func mustCreateUser(t *testing.T, s *Store, email string) User {
	t.Helper()
	user, err := s.CreateUser("Ann", email, "hashed-pw", nil)
	require.NoError(t, err)
	return user
}

func TestNewSeedsEmptySlot(t *testing.T) {
	s, slot := newTestStore(t)

	require.NotEmpty(t, s.DefaultCategories())

	// Seeding persists immediately.
	data, found, err := slot.Load()
	require.NoError(t, err)
	require.True(t, found)
	require.NotEmpty(t, data)
}

func TestNewFallsBackOnCorruptDocument(t *testing.T) {
	slot := storage.NewMemorySlot()
	require.NoError(t, slot.Save([]byte("{not json")))

	s, err := New(slot)
	require.NoError(t, err)
	require.NotEmpty(t, s.DefaultCategories())

	data, found, err := slot.Load()
	require.NoError(t, err)
	require.True(t, found)
	require.NotContains(t, string(data), "not json")
}

func TestCreateUserDefaults(t *testing.T) {
	s, _ := newTestStore(t)

	user := mustCreateUser(t, s, "ann@x.com")
	require.NotEmpty(t, user.ID)
	require.Equal(t, "ann@x.com", user.Email)
	require.Empty(t, user.Expenses)
	require.Equal(t, float64(DefaultBudget), user.Budget)
	require.Equal(t, DefaultCurrency, user.Currency)
	require.True(t, user.NotificationPreferences.ExpenseAlerts)
	require.Equal(t, s.DefaultCategories(), user.Categories)
}

func TestCreateUserConflict(t *testing.T) {
	s, _ := newTestStore(t)
	mustCreateUser(t, s, "ann@x.com")

	_, err := s.CreateUser("Another Ann", "ann@x.com", "other-pw", nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, appErrors.ErrConflict))

	// Email matching is exact, so a different casing registers separately.
	_, err = s.CreateUser("Ann", "Ann@x.com", "hashed-pw", nil)
	require.NoError(t, err)
}

func TestCategoryCopiesAreIndependent(t *testing.T) {
	s, _ := newTestStore(t)
	ann := mustCreateUser(t, s, "ann@x.com")
	mustCreateUser(t, s, "bob@x.com")

	renamed := append([]Category{}, ann.Categories...)
	renamed[0].Name = "Rent"
	_, err := s.UpdateUser("ann@x.com", UserUpdate{Categories: renamed})
	require.NoError(t, err)

	bob, found := s.GetUser("bob@x.com")
	require.True(t, found)
	require.NotEqual(t, "Rent", bob.Categories[0].Name)
	require.NotEqual(t, "Rent", s.DefaultCategories()[0].Name)
}

func TestUpdateUserReplacesFieldsWholesale(t *testing.T) {
	s, _ := newTestStore(t)
	ann := mustCreateUser(t, s, "ann@x.com")

	name := "Annika"
	budget := 7000.0
	// Passing a single-category array replaces the whole set, not one entry.
	updated, err := s.UpdateUser("ann@x.com", UserUpdate{
		Name:       &name,
		Budget:     &budget,
		Categories: []Category{ann.Categories[0]},
	})
	require.NoError(t, err)
	require.Equal(t, "Annika", updated.Name)
	require.Equal(t, 7000.0, updated.Budget)
	require.Len(t, updated.Categories, 1)
	require.Equal(t, "ann@x.com", updated.Email)

	_, err = s.UpdateUser("ghost@x.com", UserUpdate{Name: &name})
	require.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestAddExpensePrependsNewestFirst(t *testing.T) {
	s, _ := newTestStore(t)
	ann := mustCreateUser(t, s, "ann@x.com")
	categoryID := ann.Categories[0].ID

	first, err := s.AddExpense("ann@x.com", ExpenseFields{CategoryID: categoryID, Amount: 30, Date: "2026-08-10"})
	require.NoError(t, err)
	second, err := s.AddExpense("ann@x.com", ExpenseFields{CategoryID: categoryID, Amount: 90, Date: "2026-08-01"})
	require.NoError(t, err)

	user, found := s.GetUser("ann@x.com")
	require.True(t, found)
	require.Len(t, user.Expenses, 2)
	// Insertion order, not date order.
	require.Equal(t, second.ID, user.Expenses[0].ID)
	require.Equal(t, first.ID, user.Expenses[1].ID)
}

func TestAddExpenseValidation(t *testing.T) {
	s, _ := newTestStore(t)
	ann := mustCreateUser(t, s, "ann@x.com")
	categoryID := ann.Categories[0].ID

	_, err := s.AddExpense("ann@x.com", ExpenseFields{CategoryID: categoryID, Amount: 0, Date: "2026-08-10"})
	require.True(t, errors.Is(err, appErrors.ErrInvalidInput))

	_, err = s.AddExpense("ann@x.com", ExpenseFields{CategoryID: categoryID, Amount: 10, Date: "10/08/2026"})
	require.True(t, errors.Is(err, appErrors.ErrInvalidInput))

	_, err = s.AddExpense("ghost@x.com", ExpenseFields{CategoryID: categoryID, Amount: 10, Date: "2026-08-10"})
	require.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestUpdateExpense(t *testing.T) {
	s, _ := newTestStore(t)
	ann := mustCreateUser(t, s, "ann@x.com")
	categoryID := ann.Categories[0].ID

	expense, err := s.AddExpense("ann@x.com", ExpenseFields{CategoryID: categoryID, Amount: 30, Date: "2026-08-10"})
	require.NoError(t, err)

	updated, err := s.UpdateExpense("ann@x.com", expense.ID, ExpenseFields{
		CategoryID: categoryID, Amount: 45, Description: "groceries", Date: "2026-08-11",
	})
	require.NoError(t, err)
	require.Equal(t, expense.ID, updated.ID)
	require.Equal(t, expense.CreatedAt, updated.CreatedAt)
	require.Equal(t, 45.0, updated.Amount)
	require.Equal(t, "2026-08-11", updated.Date)

	_, err = s.UpdateExpense("ann@x.com", "missing-id", ExpenseFields{CategoryID: categoryID, Amount: 1, Date: "2026-08-11"})
	require.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestDeleteExpenseIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	ann := mustCreateUser(t, s, "ann@x.com")
	categoryID := ann.Categories[0].ID

	expense, err := s.AddExpense("ann@x.com", ExpenseFields{CategoryID: categoryID, Amount: 30, Date: "2026-08-10"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteExpense("ann@x.com", expense.ID))
	user, _ := s.GetUser("ann@x.com")
	require.Empty(t, user.Expenses)

	// Second delete of the same id still succeeds and changes nothing.
	require.NoError(t, s.DeleteExpense("ann@x.com", expense.ID))
	user, _ = s.GetUser("ann@x.com")
	require.Empty(t, user.Expenses)

	require.Error(t, s.DeleteExpense("ghost@x.com", expense.ID))
}

func TestResetCodeFlow(t *testing.T) {
	s, _ := newTestStore(t)
	mustCreateUser(t, s, "ann@x.com")

	base := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	err := s.VerifyResetCode("ghost@x.com", "123456")
	require.True(t, errors.Is(err, appErrors.ErrNotFound))
	require.Equal(t, "User not found", appErrors.UserMessage(err))

	err = s.VerifyResetCode("ann@x.com", "123456")
	require.Equal(t, "No reset code requested", appErrors.UserMessage(err))

	require.NoError(t, s.SetResetCode("ann@x.com", "123456"))

	err = s.VerifyResetCode("ann@x.com", "654321")
	require.True(t, errors.Is(err, appErrors.ErrAuth))
	require.Equal(t, "Invalid reset code", appErrors.UserMessage(err))

	// Exactly at expiry is still valid: only strictly-after counts.
	s.now = func() time.Time { return base.Add(30 * time.Minute) }
	require.NoError(t, s.VerifyResetCode("ann@x.com", "123456"))

	s.now = func() time.Time { return base.Add(30*time.Minute + time.Second) }
	err = s.VerifyResetCode("ann@x.com", "123456")
	require.True(t, errors.Is(err, appErrors.ErrExpired))
	require.Equal(t, "Reset code expired", appErrors.UserMessage(err))
}

func TestResetPasswordReverifiesAndClearsCode(t *testing.T) {
	s, _ := newTestStore(t)
	mustCreateUser(t, s, "ann@x.com")

	require.NoError(t, s.SetResetCode("ann@x.com", "123456"))

	err := s.ResetPassword("ann@x.com", "000000", "new-hash")
	require.True(t, errors.Is(err, appErrors.ErrAuth))

	require.NoError(t, s.ResetPassword("ann@x.com", "123456", "new-hash"))

	user, _ := s.GetUser("ann@x.com")
	require.Equal(t, "new-hash", user.PasswordHash)
	require.Empty(t, user.ResetCode)
	require.Nil(t, user.ResetCodeExpires)

	// The code is single-use: re-verifying after the reset fails.
	err = s.VerifyResetCode("ann@x.com", "123456")
	require.Equal(t, "No reset code requested", appErrors.UserMessage(err))
}

func TestFinancialGoals(t *testing.T) {
	s, _ := newTestStore(t)
	mustCreateUser(t, s, "ann@x.com")

	user, err := s.AddFinancialGoal("ann@x.com", GoalFields{Name: "Vacation", TargetAmount: 1200})
	require.NoError(t, err)
	require.Len(t, user.FinancialGoals, 1)
	require.False(t, user.FinancialGoals[0].Completed)

	completed := true
	user, err = s.UpdateFinancialGoal("ann@x.com", user.FinancialGoals[0].ID, GoalUpdate{Completed: &completed})
	require.NoError(t, err)
	require.True(t, user.FinancialGoals[0].Completed)
	require.Equal(t, "Vacation", user.FinancialGoals[0].Name)

	_, err = s.UpdateFinancialGoal("ann@x.com", "missing-goal", GoalUpdate{Completed: &completed})
	require.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestUpdateNotificationPreferencesMerges(t *testing.T) {
	s, _ := newTestStore(t)
	mustCreateUser(t, s, "ann@x.com")

	off := false
	user, err := s.UpdateNotificationPreferences("ann@x.com", NotificationUpdate{BudgetWarnings: &off})
	require.NoError(t, err)
	require.True(t, user.NotificationPreferences.ExpenseAlerts)
	require.False(t, user.NotificationPreferences.BudgetWarnings)
	require.True(t, user.NotificationPreferences.MonthlyReports)
}

func TestRoundTripPersistence(t *testing.T) {
	s, slot := newTestStore(t)
	ann := mustCreateUser(t, s, "ann@x.com")
	categoryID := ann.Categories[0].ID

	_, err := s.AddExpense("ann@x.com", ExpenseFields{CategoryID: categoryID, Amount: 42.5, Description: "coffee", Date: "2026-08-10"})
	require.NoError(t, err)
	_, err = s.AddFinancialGoal("ann@x.com", GoalFields{Name: "Vacation", TargetAmount: 1200})
	require.NoError(t, err)

	reloaded, err := New(slot)
	require.NoError(t, err)
	require.Equal(t, s.Snapshot(), reloaded.Snapshot())
}
