package session

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	appErrors "github.com/pasalkarvaibhavi/fintrack/errors"
	"github.com/pasalkarvaibhavi/fintrack/internal/auth"
	"github.com/pasalkarvaibhavi/fintrack/internal/store"
	"github.com/pasalkarvaibhavi/fintrack/logging"
)

// Manager is the auth state machine the UI drives. It turns raw store
// records into the sanitized current-user view and never patches that view
// directly: every mutation re-reads the user from the Store.
type Manager struct {
	mu     sync.RWMutex
	store  *store.Store
	tokens store.Slot
	user   *User
}

func NewManager(st *store.Store, tokens store.Slot) *Manager {
	return &Manager{store: st, tokens: tokens}
}

// Bootstrap restores a remembered session. A stale token (user no longer
// in the store) is discarded and the manager stays unauthenticated.
func (m *Manager) Bootstrap() {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, found, err := m.tokens.Load()
	if err != nil {
		logging.Logger.Warnf("failed to load remember-token: %v", err)
		return
	}
	if !found {
		return
	}

	var token rememberToken
	if err := json.Unmarshal(data, &token); err != nil {
		logging.Logger.Warnf("discarding corrupt remember-token: %v", err)
		_ = m.tokens.Delete()
		return
	}

	user, found := m.store.GetUser(token.Email)
	if !found {
		_ = m.tokens.Delete()
		return
	}

	sanitized := sanitize(user)
	m.user = &sanitized
}

// CurrentUser returns the sanitized active user, if any.
func (m *Manager) CurrentUser() (User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return User{}, false
	}
	return *m.user, true
}

func (m *Manager) remember(email string) error {
	data, err := json.Marshal(rememberToken{Email: email})
	if err != nil {
		return fmt.Errorf("failed to serialize remember-token: %w", err)
	}
	if err := m.tokens.Save(data); err != nil {
		return fmt.Errorf("failed to persist remember-token: %w", err)
	}
	return nil
}

// refresh re-derives the sanitized projection from the Store. Call with
// m.mu held.
func (m *Manager) refresh(email string) {
	user, found := m.store.GetUser(email)
	if !found {
		m.user = nil
		return
	}
	sanitized := sanitize(user)
	m.user = &sanitized
}

func (m *Manager) Login(email string, password string) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, found := m.store.GetUser(email)
	if !found || !auth.ComparePasswords(user.PasswordHash, password) {
		return fail(appErrors.New(appErrors.ErrAuth, "Invalid email or password"))
	}

	if err := m.remember(email); err != nil {
		return fail(err)
	}

	sanitized := sanitize(user)
	m.user = &sanitized
	return okData(sanitized)
}

func (m *Manager) Register(name string, email string, password string, autoLogin bool) Result {
	registration := auth.Registration{Name: name, Email: email, PasswordPlain: password}
	if err := registration.Validate(); err != nil {
		return fail(err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fail(err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user, err := m.store.CreateUser(name, email, hash, nil)
	if err != nil {
		return fail(err)
	}

	if !autoLogin {
		return ok()
	}

	if err := m.remember(email); err != nil {
		return fail(err)
	}
	sanitized := sanitize(user)
	m.user = &sanitized
	return okData(sanitized)
}

// Logout clears the current user and the remember-token unconditionally.
func (m *Manager) Logout() Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.user = nil
	if err := m.tokens.Delete(); err != nil {
		logging.Logger.Warnf("failed to clear remember-token: %v", err)
	}
	return ok()
}

func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate reset code: %w", err)
	}
	return strconv.FormatInt(100000+n.Int64(), 10), nil
}

// RequestPasswordReset generates a 6-digit code and stores it with a
// 30-minute expiry. Sending email is out of scope; the code is surfaced
// through the result for the delivery collaborator.
func (m *Manager) RequestPasswordReset(email string) Result {
	if _, found := m.store.GetUser(email); !found {
		return fail(appErrors.New(appErrors.ErrNotFound, "No account found with that email"))
	}

	code, err := generateResetCode()
	if err != nil {
		return fail(err)
	}
	if err := m.store.SetResetCode(email, code); err != nil {
		return fail(err)
	}

	result := okData(ResetRequest{Email: email, Code: code})
	result.Message = "Reset code sent to your email"
	return result
}

func (m *Manager) VerifyResetCode(email string, code string) Result {
	if err := m.store.VerifyResetCode(email, code); err != nil {
		return fail(err)
	}
	return ok()
}

func (m *Manager) ResetPassword(email string, code string, newPassword string) Result {
	if err := auth.ValidatePassword(newPassword); err != nil {
		return fail(err)
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fail(err)
	}
	if err := m.store.ResetPassword(email, code, hash); err != nil {
		return fail(err)
	}
	return okMessage("Password has been reset")
}

func (m *Manager) AddExpense(fields store.ExpenseFields) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		return failNotAuthenticated()
	}

	expense, err := m.store.AddExpense(m.user.Email, fields)
	if err != nil {
		return fail(err)
	}
	m.refresh(m.user.Email)
	return okData(expense)
}

func (m *Manager) UpdateExpense(expenseID string, fields store.ExpenseFields) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		return failNotAuthenticated()
	}

	expense, err := m.store.UpdateExpense(m.user.Email, expenseID, fields)
	if err != nil {
		return fail(err)
	}
	m.refresh(m.user.Email)
	return okData(expense)
}

func (m *Manager) DeleteExpense(expenseID string) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		return failNotAuthenticated()
	}

	if err := m.store.DeleteExpense(m.user.Email, expenseID); err != nil {
		return fail(err)
	}
	m.refresh(m.user.Email)
	return ok()
}

func (m *Manager) UpdateProfile(update ProfileUpdate) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		return failNotAuthenticated()
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return fail(appErrors.New(appErrors.ErrInvalidInput, "Name cannot be empty!"))
	}

	_, err := m.store.UpdateUser(m.user.Email, store.UserUpdate{
		Name:   update.Name,
		Avatar: update.Avatar,
	})
	if err != nil {
		return fail(err)
	}
	m.refresh(m.user.Email)
	return ok()
}

func (m *Manager) UpdateBudget(budget float64) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		return failNotAuthenticated()
	}

	if _, err := m.store.SetUserBudget(m.user.Email, budget); err != nil {
		return fail(err)
	}
	m.refresh(m.user.Email)
	return ok()
}

func (m *Manager) UpdateCurrency(currency string) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		return failNotAuthenticated()
	}

	if _, err := m.store.SetUserCurrency(m.user.Email, currency); err != nil {
		return fail(err)
	}
	m.refresh(m.user.Email)
	return ok()
}

// AddCategory rejects case-insensitive name collisions within the user's
// own category list, then writes the whole categories array back.
func (m *Manager) AddCategory(fields store.CategoryFields) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		return failNotAuthenticated()
	}
	if err := fields.Validate(); err != nil {
		return fail(err)
	}

	for _, c := range m.user.Categories {
		if strings.EqualFold(c.Name, fields.Name) {
			return fail(appErrors.New(appErrors.ErrConflict, "A category with this name already exists"))
		}
	}

	category := store.Category{
		ID:     uuid.New().String(),
		Name:   fields.Name,
		Icon:   fields.Icon,
		Color:  fields.Color,
		Budget: fields.Budget,
	}

	categories := append(append([]store.Category{}, m.user.Categories...), category)
	if _, err := m.store.UpdateUser(m.user.Email, store.UserUpdate{Categories: categories}); err != nil {
		return fail(err)
	}
	m.refresh(m.user.Email)
	return okData(category)
}

// UpdateCategory locates the category by id, merges the set fields and
// persists the entire categories array through the Store.
func (m *Manager) UpdateCategory(categoryID string, update CategoryUpdate) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		return failNotAuthenticated()
	}

	categories := append([]store.Category{}, m.user.Categories...)
	idx := -1
	for i := range categories {
		if categories[i].ID == categoryID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fail(appErrors.New(appErrors.ErrNotFound, "Category not found"))
	}

	merged := categories[idx]
	if update.Name != nil {
		merged.Name = *update.Name
	}
	if update.Icon != nil {
		merged.Icon = *update.Icon
	}
	if update.Color != nil {
		merged.Color = *update.Color
	}
	if update.Budget != nil {
		merged.Budget = *update.Budget
	}

	fields := store.CategoryFields{Name: merged.Name, Icon: merged.Icon, Color: merged.Color, Budget: merged.Budget}
	if err := fields.Validate(); err != nil {
		return fail(err)
	}
	if update.Name != nil {
		for i, c := range categories {
			if i != idx && strings.EqualFold(c.Name, merged.Name) {
				return fail(appErrors.New(appErrors.ErrConflict, "A category with this name already exists"))
			}
		}
	}

	categories[idx] = merged
	if _, err := m.store.UpdateUser(m.user.Email, store.UserUpdate{Categories: categories}); err != nil {
		return fail(err)
	}
	m.refresh(m.user.Email)
	return okData(merged)
}

// DeleteCategory removes a category that no expense references.
func (m *Manager) DeleteCategory(categoryID string) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		return failNotAuthenticated()
	}

	for _, e := range m.user.Expenses {
		if e.CategoryID == categoryID {
			return fail(appErrors.New(appErrors.ErrConflict, "Category still has expenses, delete or move them first"))
		}
	}

	categories := make([]store.Category, 0, len(m.user.Categories))
	found := false
	for _, c := range m.user.Categories {
		if c.ID == categoryID {
			found = true
			continue
		}
		categories = append(categories, c)
	}
	if !found {
		return fail(appErrors.New(appErrors.ErrNotFound, "Category not found"))
	}

	if _, err := m.store.UpdateUser(m.user.Email, store.UserUpdate{Categories: categories}); err != nil {
		return fail(err)
	}
	m.refresh(m.user.Email)
	return ok()
}

func (m *Manager) AddFinancialGoal(fields store.GoalFields) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		return failNotAuthenticated()
	}

	if _, err := m.store.AddFinancialGoal(m.user.Email, fields); err != nil {
		return fail(err)
	}
	m.refresh(m.user.Email)
	return ok()
}

func (m *Manager) UpdateFinancialGoal(goalID string, update store.GoalUpdate) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		return failNotAuthenticated()
	}

	if _, err := m.store.UpdateFinancialGoal(m.user.Email, goalID, update); err != nil {
		return fail(err)
	}
	m.refresh(m.user.Email)
	return ok()
}

func (m *Manager) UpdateNotificationPreferences(update store.NotificationUpdate) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		return failNotAuthenticated()
	}

	if _, err := m.store.UpdateNotificationPreferences(m.user.Email, update); err != nil {
		return fail(err)
	}
	m.refresh(m.user.Email)
	return ok()
}
