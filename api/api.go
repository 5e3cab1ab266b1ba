package api

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/0xcafe-io/iz"

	"github.com/pasalkarvaibhavi/fintrack/internal/session"
	"github.com/pasalkarvaibhavi/fintrack/internal/store"
	"github.com/pasalkarvaibhavi/fintrack/logging"
)

// Api exposes the session operations over HTTP. The session manager holds
// a single active user; the api layer guards it with a bearer token issued
// at login so stray callers cannot drive someone else's session.
type Api struct {
	Service *session.Manager

	mu    sync.Mutex
	token string
}

func NewApi(service *session.Manager) *Api {
	return &Api{Service: service}
}

func (api *Api) issueToken() (string, error) {
	tokenByte := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, tokenByte); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	token := hex.EncodeToString(tokenByte)

	api.mu.Lock()
	api.token = token
	api.mu.Unlock()
	return token, nil
}

func (api *Api) clearToken() {
	api.mu.Lock()
	api.token = ""
	api.mu.Unlock()
}

// authorize checks the bearer token and that a user is active.
func (api *Api) authorize(r *iz.Request) error {
	token := r.Header.Get("Authorization")
	if token == "" {
		return fmt.Errorf("Authorization header is required.")
	}

	api.mu.Lock()
	current := api.token
	api.mu.Unlock()

	if current == "" || token != current {
		return fmt.Errorf("invalid session token, login again")
	}
	if _, active := api.Service.CurrentUser(); !active {
		return fmt.Errorf("no active session, login again")
	}
	return nil
}

func (api *Api) RegisterHandler(r *iz.Request) iz.Responder {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}

	res := api.Service.Register(req.Name, req.Email, req.Password, req.AutoLogin)
	if !res.Success {
		return iz.Respond().Status(statusFromResult(res, 201)).JSON(sessionResponse(res, ""))
	}

	token := ""
	if req.AutoLogin {
		issued, err := api.issueToken()
		if err != nil {
			logging.Logger.Errorf("failed to issue session token: %v", err)
			return iz.Respond().Status(500).Text("registration succeeded but session setup failed, try login")
		}
		token = issued
	}
	return iz.Respond().Status(201).JSON(sessionResponse(res, token))
}

func (api *Api) LoginHandler(r *iz.Request) iz.Responder {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return iz.Respond().Status(400).Text("invalid request body")
	}

	res := api.Service.Login(req.Email, req.Password)
	if !res.Success {
		return iz.Respond().Status(statusFromResult(res, 200)).JSON(sessionResponse(res, ""))
	}

	token, err := api.issueToken()
	if err != nil {
		logging.Logger.Errorf("failed to issue session token: %v", err)
		return iz.Respond().Status(500).Text("login succeeded but session setup failed, try again")
	}
	return iz.Respond().Status(200).JSON(sessionResponse(res, token))
}

func (api *Api) LogoutHandler(r *iz.Request) iz.Responder {
	if err := api.authorize(r); err != nil {
		msg := fmt.Sprintf("authorization failed: %s", err.Error())
		return iz.Respond().Status(401).Text(msg)
	}

	res := api.Service.Logout()
	api.clearToken()
	return iz.Respond().Status(200).JSON(sessionResponse(res, ""))
}

func (api *Api) AccountHandler(r *iz.Request) iz.Responder {
	if err := api.authorize(r); err != nil {
		msg := fmt.Sprintf("authorization failed: %s", err.Error())
		return iz.Respond().Status(401).Text(msg)
	}

	user, _ := api.Service.CurrentUser()
	return iz.Respond().Status(200).JSON(user)
}

func (api *Api) RequestPasswordResetHandler(r *iz.Request) iz.Responder {
	var req PasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return iz.Respond().Status(400).Text("invalid request body")
	}

	res := api.Service.RequestPasswordReset(req.Email)
	return iz.Respond().Status(statusFromResult(res, 200)).JSON(sessionResponse(res, ""))
}

func (api *Api) VerifyResetCodeHandler(r *iz.Request) iz.Responder {
	var req VerifyResetCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return iz.Respond().Status(400).Text("invalid request body")
	}

	res := api.Service.VerifyResetCode(req.Email, req.Code)
	return iz.Respond().Status(statusFromResult(res, 200)).JSON(sessionResponse(res, ""))
}

func (api *Api) ResetPasswordHandler(r *iz.Request) iz.Responder {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return iz.Respond().Status(400).Text("invalid request body")
	}

	res := api.Service.ResetPassword(req.Email, req.Code, req.NewPassword)
	return iz.Respond().Status(statusFromResult(res, 200)).JSON(sessionResponse(res, ""))
}

func (api *Api) AddExpenseHandler(r *iz.Request) iz.Responder {
	if err := api.authorize(r); err != nil {
		msg := fmt.Sprintf("authorization failed: %s", err.Error())
		return iz.Respond().Status(401).Text(msg)
	}

	var req ExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := fmt.Sprintf("failed to parse add expense request: %v", err)
		return iz.Respond().Status(400).Text(msg)
	}

	res := api.Service.AddExpense(store.ExpenseFields{
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        req.Date,
	})
	return iz.Respond().Status(statusFromResult(res, 201)).JSON(sessionResponse(res, ""))
}

func (api *Api) UpdateExpenseHandler(r *iz.Request) iz.Responder {
	if err := api.authorize(r); err != nil {
		msg := fmt.Sprintf("authorization failed: %s", err.Error())
		return iz.Respond().Status(401).Text(msg)
	}

	var req ExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := fmt.Sprintf("failed to parse update expense request: %v", err)
		return iz.Respond().Status(400).Text(msg)
	}

	res := api.Service.UpdateExpense(r.PathValue("id"), store.ExpenseFields{
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        req.Date,
	})
	return iz.Respond().Status(statusFromResult(res, 200)).JSON(sessionResponse(res, ""))
}

func (api *Api) DeleteExpenseHandler(r *iz.Request) iz.Responder {
	if err := api.authorize(r); err != nil {
		msg := fmt.Sprintf("authorization failed: %s", err.Error())
		return iz.Respond().Status(401).Text(msg)
	}

	res := api.Service.DeleteExpense(r.PathValue("id"))
	return iz.Respond().Status(statusFromResult(res, 200)).JSON(sessionResponse(res, ""))
}

func (api *Api) AddCategoryHandler(r *iz.Request) iz.Responder {
	if err := api.authorize(r); err != nil {
		msg := fmt.Sprintf("authorization failed: %s", err.Error())
		return iz.Respond().Status(401).Text(msg)
	}

	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := fmt.Sprintf("failed to parse add category request: %v", err)
		return iz.Respond().Status(400).Text(msg)
	}

	res := api.Service.AddCategory(store.CategoryFields{
		Name:   req.Name,
		Icon:   req.Icon,
		Color:  req.Color,
		Budget: req.Budget,
	})
	return iz.Respond().Status(statusFromResult(res, 201)).JSON(sessionResponse(res, ""))
}

func (api *Api) UpdateCategoryHandler(r *iz.Request) iz.Responder {
	if err := api.authorize(r); err != nil {
		msg := fmt.Sprintf("authorization failed: %s", err.Error())
		return iz.Respond().Status(401).Text(msg)
	}

	var req CategoryUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := fmt.Sprintf("failed to parse update category request: %v", err)
		return iz.Respond().Status(400).Text(msg)
	}

	res := api.Service.UpdateCategory(r.PathValue("id"), session.CategoryUpdate{
		Name:   req.Name,
		Icon:   req.Icon,
		Color:  req.Color,
		Budget: req.Budget,
	})
	return iz.Respond().Status(statusFromResult(res, 200)).JSON(sessionResponse(res, ""))
}

func (api *Api) DeleteCategoryHandler(r *iz.Request) iz.Responder {
	if err := api.authorize(r); err != nil {
		msg := fmt.Sprintf("authorization failed: %s", err.Error())
		return iz.Respond().Status(401).Text(msg)
	}

	res := api.Service.DeleteCategory(r.PathValue("id"))
	return iz.Respond().Status(statusFromResult(res, 200)).JSON(sessionResponse(res, ""))
}

func (api *Api) UpdateProfileHandler(r *iz.Request) iz.Responder {
	if err := api.authorize(r); err != nil {
		msg := fmt.Sprintf("authorization failed: %s", err.Error())
		return iz.Respond().Status(401).Text(msg)
	}

	var req ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := fmt.Sprintf("failed to parse update profile request: %v", err)
		return iz.Respond().Status(400).Text(msg)
	}

	res := api.Service.UpdateProfile(session.ProfileUpdate{Name: req.Name, Avatar: req.Avatar})
	return iz.Respond().Status(statusFromResult(res, 200)).JSON(sessionResponse(res, ""))
}

func (api *Api) UpdateBudgetHandler(r *iz.Request) iz.Responder {
	if err := api.authorize(r); err != nil {
		msg := fmt.Sprintf("authorization failed: %s", err.Error())
		return iz.Respond().Status(401).Text(msg)
	}

	var req BudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := fmt.Sprintf("failed to parse update budget request: %v", err)
		return iz.Respond().Status(400).Text(msg)
	}

	res := api.Service.UpdateBudget(req.Budget)
	return iz.Respond().Status(statusFromResult(res, 200)).JSON(sessionResponse(res, ""))
}

func (api *Api) UpdateCurrencyHandler(r *iz.Request) iz.Responder {
	if err := api.authorize(r); err != nil {
		msg := fmt.Sprintf("authorization failed: %s", err.Error())
		return iz.Respond().Status(401).Text(msg)
	}

	var req CurrencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := fmt.Sprintf("failed to parse update currency request: %v", err)
		return iz.Respond().Status(400).Text(msg)
	}

	res := api.Service.UpdateCurrency(req.Currency)
	return iz.Respond().Status(statusFromResult(res, 200)).JSON(sessionResponse(res, ""))
}

func (api *Api) AddGoalHandler(r *iz.Request) iz.Responder {
	if err := api.authorize(r); err != nil {
		msg := fmt.Sprintf("authorization failed: %s", err.Error())
		return iz.Respond().Status(401).Text(msg)
	}

	var req GoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := fmt.Sprintf("failed to parse add goal request: %v", err)
		return iz.Respond().Status(400).Text(msg)
	}

	res := api.Service.AddFinancialGoal(store.GoalFields{
		Name:         req.Name,
		TargetAmount: req.TargetAmount,
		Deadline:     req.Deadline,
	})
	return iz.Respond().Status(statusFromResult(res, 201)).JSON(sessionResponse(res, ""))
}

func (api *Api) UpdateGoalHandler(r *iz.Request) iz.Responder {
	if err := api.authorize(r); err != nil {
		msg := fmt.Sprintf("authorization failed: %s", err.Error())
		return iz.Respond().Status(401).Text(msg)
	}

	var req GoalUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := fmt.Sprintf("failed to parse update goal request: %v", err)
		return iz.Respond().Status(400).Text(msg)
	}

	res := api.Service.UpdateFinancialGoal(r.PathValue("id"), store.GoalUpdate{
		Name:         req.Name,
		TargetAmount: req.TargetAmount,
		Deadline:     req.Deadline,
		Completed:    req.Completed,
	})
	return iz.Respond().Status(statusFromResult(res, 200)).JSON(sessionResponse(res, ""))
}

func (api *Api) UpdateNotificationsHandler(r *iz.Request) iz.Responder {
	if err := api.authorize(r); err != nil {
		msg := fmt.Sprintf("authorization failed: %s", err.Error())
		return iz.Respond().Status(401).Text(msg)
	}

	var req NotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := fmt.Sprintf("failed to parse update notifications request: %v", err)
		return iz.Respond().Status(400).Text(msg)
	}

	res := api.Service.UpdateNotificationPreferences(store.NotificationUpdate{
		ExpenseAlerts:  req.ExpenseAlerts,
		BudgetWarnings: req.BudgetWarnings,
		MonthlyReports: req.MonthlyReports,
	})
	return iz.Respond().Status(statusFromResult(res, 200)).JSON(sessionResponse(res, ""))
}
