package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/pasalkarvaibhavi/fintrack/errors"
	"github.com/pasalkarvaibhavi/fintrack/logging"
)

const (
	DefaultBudget   = 5000
	DefaultCurrency = "USD"

	resetCodeTTL = 30 * time.Minute
)

// Slot is a single key-value cell of persistent storage. The Store writes
// the whole serialized Document into its slot on every mutation.
type Slot interface {
	Load() ([]byte, bool, error)
	Save(data []byte) error
	Delete() error
}

// Store is the single authority over the persisted Document. Every public
// operation is a full read-modify-persist cycle: the new Document replaces
// the old one wholesale, and the in-memory copy only advances after the
// slot write succeeded.
type Store struct {
	mu   sync.RWMutex
	slot Slot
	doc  Document
	now  func() time.Time
}

// New loads the Document from the slot, seeding and persisting the default
// dataset when the slot is empty. A corrupt persisted document falls back
// to the seed instead of failing.
func New(slot Slot) (*Store, error) {
	s := &Store{slot: slot, now: time.Now}

	data, ok, err := slot.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	if !ok {
		s.doc = seedDocument()
		if err := s.persist(s.doc); err != nil {
			return nil, err
		}
		return s, nil
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		logging.Logger.Warnf("persisted document is corrupt, reseeding: %v", err)
		s.doc = seedDocument()
		if err := s.persist(s.doc); err != nil {
			return nil, err
		}
		return s, nil
	}

	s.doc = doc
	return s, nil
}

func newID() string {
	return uuid.New().String()
}

func seedDocument() Document {
	defaults := []struct {
		name  string
		icon  string
		color string
		limit float64
	}{
		{"Housing", "🏠", "#3B82F6", 1500},
		{"Transportation", "🚗", "#EF4444", 500},
		{"Groceries", "🛒", "#10B981", 800},
		{"Utilities", "💡", "#F59E0B", 400},
		{"Dining", "🍽️", "#8B5CF6", 600},
		{"Entertainment", "🎬", "#6366F1", 400},
		{"Shopping", "🛍️", "#14B8A6", 500},
		{"Healthcare", "⚕️", "#F97316", 300},
	}

	categories := make([]Category, 0, len(defaults))
	for _, d := range defaults {
		categories = append(categories, Category{
			ID:     newID(),
			Name:   d.name,
			Icon:   d.icon,
			Color:  d.color,
			Budget: d.limit,
		})
	}

	return Document{
		Users:             []User{},
		DefaultCategories: categories,
	}
}

// persist serializes the document into the slot. Call with s.mu held.
func (s *Store) persist(doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}
	if err := s.slot.Save(data); err != nil {
		return fmt.Errorf("failed to persist document: %w", err)
	}
	return nil
}

// commit swaps the new document in after a successful slot write, so a
// failed write leaves the in-memory state untouched.
func (s *Store) commit(doc Document) error {
	if err := s.persist(doc); err != nil {
		return err
	}
	s.doc = doc
	return nil
}

func cloneCategories(categories []Category) []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func cloneExpenses(expenses []Expense) []Expense {
	out := make([]Expense, len(expenses))
	copy(out, expenses)
	return out
}

func cloneGoals(goals []Goal) []Goal {
	out := make([]Goal, len(goals))
	copy(out, goals)
	return out
}

func cloneUser(u User) User {
	c := u
	c.Expenses = cloneExpenses(u.Expenses)
	c.Categories = cloneCategories(u.Categories)
	c.FinancialGoals = cloneGoals(u.FinancialGoals)
	if u.ResetCodeExpires != nil {
		expires := *u.ResetCodeExpires
		c.ResetCodeExpires = &expires
	}
	if u.Avatar != nil {
		avatar := *u.Avatar
		c.Avatar = &avatar
	}
	return c
}

func cloneDocument(doc Document) Document {
	users := make([]User, 0, len(doc.Users))
	for _, u := range doc.Users {
		users = append(users, cloneUser(u))
	}
	return Document{
		Users:             users,
		DefaultCategories: cloneCategories(doc.DefaultCategories),
	}
}

// Snapshot returns a deep copy of the current Document.
func (s *Store) Snapshot() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneDocument(s.doc)
}

// DefaultCategories returns a copy of the seeded category set.
func (s *Store) DefaultCategories() []Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCategories(s.doc.DefaultCategories)
}

func (s *Store) findUser(email string) int {
	for i := range s.doc.Users {
		if s.doc.Users[i].Email == email {
			return i
		}
	}
	return -1
}

// GetUser looks a user up by exact email match.
func (s *Store) GetUser(email string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.findUser(email)
	if idx == -1 {
		return User{}, false
	}
	return cloneUser(s.doc.Users[idx]), true
}

// CreateUser appends a new user with a per-user copy of the default
// categories. Email uniqueness is enforced here and only here.
func (s *Store) CreateUser(name string, email string, passwordHash string, avatar *string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findUser(email) != -1 {
		return User{}, appErrors.New(appErrors.ErrConflict, "Email already in use")
	}

	user := User{
		ID:           newID(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Avatar:       avatar,
		CreatedAt:    s.now().UTC(),
		Expenses:     []Expense{},
		Categories:   cloneCategories(s.doc.DefaultCategories),
		Budget:       DefaultBudget,
		Currency:     DefaultCurrency,
		FinancialGoals: []Goal{},
		NotificationPreferences: NotificationPreferences{
			ExpenseAlerts:  true,
			BudgetWarnings: true,
			MonthlyReports: true,
		},
	}

	doc := cloneDocument(s.doc)
	doc.Users = append(doc.Users, user)
	if err := s.commit(doc); err != nil {
		return User{}, err
	}
	return cloneUser(user), nil
}

// UpdateUser shallow-merges the set fields of update into the stored user.
// A set field fully replaces the prior value; array fields are replaced
// wholesale, never patched.
func (s *Store) UpdateUser(email string, update UserUpdate) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateUserLocked(email, update)
}

func (s *Store) updateUserLocked(email string, update UserUpdate) (User, error) {
	idx := s.findUser(email)
	if idx == -1 {
		return User{}, appErrors.New(appErrors.ErrNotFound, "User not found")
	}

	doc := cloneDocument(s.doc)
	user := &doc.Users[idx]

	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Avatar != nil {
		avatar := *update.Avatar
		user.Avatar = &avatar
	}
	if update.PasswordHash != nil {
		user.PasswordHash = *update.PasswordHash
	}
	if update.Budget != nil {
		user.Budget = *update.Budget
	}
	if update.Currency != nil {
		user.Currency = *update.Currency
	}
	if update.Categories != nil {
		user.Categories = cloneCategories(update.Categories)
	}
	if update.Expenses != nil {
		user.Expenses = cloneExpenses(update.Expenses)
	}
	if update.FinancialGoals != nil {
		user.FinancialGoals = cloneGoals(update.FinancialGoals)
	}
	if update.NotificationPreferences != nil {
		user.NotificationPreferences = *update.NotificationPreferences
	}

	if err := s.commit(doc); err != nil {
		return User{}, err
	}
	return cloneUser(doc.Users[idx]), nil
}

// SetResetCode stores a password-reset code expiring 30 minutes from now.
func (s *Store) SetResetCode(email string, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findUser(email)
	if idx == -1 {
		return appErrors.New(appErrors.ErrNotFound, "User not found")
	}

	doc := cloneDocument(s.doc)
	expires := s.now().UTC().Add(resetCodeTTL)
	doc.Users[idx].ResetCode = code
	doc.Users[idx].ResetCodeExpires = &expires
	return s.commit(doc)
}

// VerifyResetCode checks a reset code without consuming it. Each failure
// mode reports a distinct message.
func (s *Store) VerifyResetCode(email string, code string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.verifyResetCodeLocked(email, code)
}

func (s *Store) verifyResetCodeLocked(email string, code string) error {
	idx := s.findUser(email)
	if idx == -1 {
		return appErrors.New(appErrors.ErrNotFound, "User not found")
	}
	user := s.doc.Users[idx]
	if user.ResetCode == "" {
		return appErrors.New(appErrors.ErrInvalidInput, "No reset code requested")
	}
	if user.ResetCode != code {
		return appErrors.New(appErrors.ErrAuth, "Invalid reset code")
	}
	if user.ResetCodeExpires == nil || s.now().After(*user.ResetCodeExpires) {
		return appErrors.New(appErrors.ErrExpired, "Reset code expired")
	}
	return nil
}

// ResetPassword re-verifies the code, then atomically sets the new password
// hash and clears the reset code. It never trusts a prior verify call.
func (s *Store) ResetPassword(email string, code string, newPasswordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.verifyResetCodeLocked(email, code); err != nil {
		return err
	}

	idx := s.findUser(email)
	doc := cloneDocument(s.doc)
	doc.Users[idx].PasswordHash = newPasswordHash
	doc.Users[idx].ResetCode = ""
	doc.Users[idx].ResetCodeExpires = nil
	return s.commit(doc)
}

// AddExpense validates the fields and prepends the new expense, so storage
// order is newest-first regardless of the expense date.
func (s *Store) AddExpense(email string, fields ExpenseFields) (Expense, error) {
	if err := fields.Validate(); err != nil {
		return Expense{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findUser(email)
	if idx == -1 {
		return Expense{}, appErrors.New(appErrors.ErrNotFound, "User not found")
	}

	expense := Expense{
		ID:          newID(),
		CategoryID:  fields.CategoryID,
		Amount:      fields.Amount,
		Description: fields.Description,
		Date:        fields.Date,
		CreatedAt:   s.now().UTC(),
	}

	doc := cloneDocument(s.doc)
	doc.Users[idx].Expenses = append([]Expense{expense}, doc.Users[idx].Expenses...)
	if err := s.commit(doc); err != nil {
		return Expense{}, err
	}
	return expense, nil
}

// UpdateExpense replaces the mutable fields of an existing expense,
// keeping its ID and creation time.
func (s *Store) UpdateExpense(email string, expenseID string, fields ExpenseFields) (Expense, error) {
	if err := fields.Validate(); err != nil {
		return Expense{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findUser(email)
	if idx == -1 {
		return Expense{}, appErrors.New(appErrors.ErrNotFound, "User not found")
	}

	doc := cloneDocument(s.doc)
	expenses := doc.Users[idx].Expenses
	for i := range expenses {
		if expenses[i].ID != expenseID {
			continue
		}
		expenses[i].CategoryID = fields.CategoryID
		expenses[i].Amount = fields.Amount
		expenses[i].Description = fields.Description
		expenses[i].Date = fields.Date
		if err := s.commit(doc); err != nil {
			return Expense{}, err
		}
		return expenses[i], nil
	}
	return Expense{}, appErrors.New(appErrors.ErrNotFound, "Expense not found")
}

// DeleteExpense removes an expense by id. Deleting an id that is already
// gone succeeds; only a missing user fails.
func (s *Store) DeleteExpense(email string, expenseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findUser(email)
	if idx == -1 {
		return appErrors.New(appErrors.ErrNotFound, "User not found")
	}

	doc := cloneDocument(s.doc)
	expenses := doc.Users[idx].Expenses
	kept := expenses[:0]
	for _, e := range expenses {
		if e.ID != expenseID {
			kept = append(kept, e)
		}
	}
	doc.Users[idx].Expenses = kept
	return s.commit(doc)
}

// SetUserBudget replaces the user's overall monthly budget.
func (s *Store) SetUserBudget(email string, budget float64) (User, error) {
	if budget <= 0 {
		return User{}, appErrors.New(appErrors.ErrInvalidInput, "Budget must be greater than zero.")
	}
	return s.UpdateUser(email, UserUpdate{Budget: &budget})
}

// SetUserCurrency replaces the user's display currency.
func (s *Store) SetUserCurrency(email string, currency string) (User, error) {
	if strings.TrimSpace(currency) == "" {
		return User{}, appErrors.New(appErrors.ErrInvalidInput, "Currency is required.")
	}
	return s.UpdateUser(email, UserUpdate{Currency: &currency})
}

// AddFinancialGoal appends a goal to the user's list.
func (s *Store) AddFinancialGoal(email string, fields GoalFields) (User, error) {
	if err := fields.Validate(); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findUser(email)
	if idx == -1 {
		return User{}, appErrors.New(appErrors.ErrNotFound, "User not found")
	}

	goal := Goal{
		ID:           newID(),
		Name:         fields.Name,
		TargetAmount: fields.TargetAmount,
		Deadline:     fields.Deadline,
		CreatedAt:    s.now().UTC(),
		Completed:    false,
	}

	goals := append(cloneGoals(s.doc.Users[idx].FinancialGoals), goal)
	return s.updateUserLocked(email, UserUpdate{FinancialGoals: goals})
}

// UpdateFinancialGoal merges the set fields into one goal and writes the
// whole goal list back.
func (s *Store) UpdateFinancialGoal(email string, goalID string, update GoalUpdate) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findUser(email)
	if idx == -1 {
		return User{}, appErrors.New(appErrors.ErrNotFound, "User not found")
	}

	goals := cloneGoals(s.doc.Users[idx].FinancialGoals)
	found := false
	for i := range goals {
		if goals[i].ID != goalID {
			continue
		}
		found = true
		if update.Name != nil {
			goals[i].Name = *update.Name
		}
		if update.TargetAmount != nil {
			goals[i].TargetAmount = *update.TargetAmount
		}
		if update.Deadline != nil {
			goals[i].Deadline = *update.Deadline
		}
		if update.Completed != nil {
			goals[i].Completed = *update.Completed
		}
	}
	if !found {
		return User{}, appErrors.New(appErrors.ErrNotFound, "Goal not found")
	}
	return s.updateUserLocked(email, UserUpdate{FinancialGoals: goals})
}

// UpdateNotificationPreferences merges the set flags over the stored ones.
func (s *Store) UpdateNotificationPreferences(email string, update NotificationUpdate) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findUser(email)
	if idx == -1 {
		return User{}, appErrors.New(appErrors.ErrNotFound, "User not found")
	}

	prefs := s.doc.Users[idx].NotificationPreferences
	if update.ExpenseAlerts != nil {
		prefs.ExpenseAlerts = *update.ExpenseAlerts
	}
	if update.BudgetWarnings != nil {
		prefs.BudgetWarnings = *update.BudgetWarnings
	}
	if update.MonthlyReports != nil {
		prefs.MonthlyReports = *update.MonthlyReports
	}
	return s.updateUserLocked(email, UserUpdate{NotificationPreferences: &prefs})
}
