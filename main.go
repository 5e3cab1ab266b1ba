package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/0xcafe-io/iz"
	"github.com/rs/cors"

	"github.com/pasalkarvaibhavi/fintrack/api"
	"github.com/pasalkarvaibhavi/fintrack/internal/session"
	"github.com/pasalkarvaibhavi/fintrack/internal/storage"
	"github.com/pasalkarvaibhavi/fintrack/internal/store"
	"github.com/pasalkarvaibhavi/fintrack/logging"
)

// Storage slot keys, one per persisted value.
const (
	documentSlotKey = "fintrackDB"
	authSlotKey     = "fintrackAuth"
)

var corsConf = cors.New(cors.Options{
	AllowedOrigins:   []string{"*"},
	AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	AllowedHeaders:   []string{"Authorization", "Content-Type"},
	AllowCredentials: true,
})

func openSlots() (store.Slot, store.Slot, error) {
	backend := os.Getenv("FINTRACK_STORAGE")
	if backend == "" {
		backend = "file"
	}

	dataDir := os.Getenv("FINTRACK_DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}

	switch backend {
	case "file":
		docSlot, err := storage.NewFileSlot(dataDir, documentSlotKey)
		if err != nil {
			return nil, nil, err
		}
		authSlot, err := storage.NewFileSlot(dataDir, authSlotKey)
		if err != nil {
			return nil, nil, err
		}
		return docSlot, authSlot, nil
	case "sqlite":
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		db, err := storage.OpenSQLite(filepath.Join(dataDir, "fintrack.db"))
		if err != nil {
			return nil, nil, err
		}
		return storage.NewSQLiteSlot(db, documentSlotKey), storage.NewSQLiteSlot(db, authSlotKey), nil
	case "mysql":
		dsn := os.Getenv("FINTRACK_MYSQL_DSN")
		if dsn == "" {
			return nil, nil, fmt.Errorf("FINTRACK_MYSQL_DSN is required for the mysql backend")
		}
		db, err := storage.OpenMySQL(dsn)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewMySQLSlot(db, documentSlotKey), storage.NewMySQLSlot(db, authSlotKey), nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend: %q", backend)
	}
}

func main() {
	if err := logging.Init("debug"); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		return
	}

	logging.Logger.Info("application starting...")

	docSlot, authSlot, err := openSlots()
	if err != nil {
		logging.Logger.Errorf("failed to initialize storage: %v", err)
		return
	}

	db, err := store.New(docSlot)
	if err != nil {
		logging.Logger.Errorf("failed to initialize document store: %v", err)
		return
	}

	manager := session.NewManager(db, authSlot)
	manager.Bootstrap()
	if user, active := manager.CurrentUser(); active {
		logging.Logger.Infof("restored session for %s", user.Email)
	}

	server := http.NewServeMux()
	api := api.NewApi(manager)

	// USER ENDPOINTS.
	server.HandleFunc("POST /api/register", iz.Bind(api.RegisterHandler))
	server.HandleFunc("POST /api/login", iz.Bind(api.LoginHandler))
	server.HandleFunc("GET /api/logout", iz.Bind(api.LogoutHandler))
	server.HandleFunc("GET /api/account", iz.Bind(api.AccountHandler))
	server.HandleFunc("PUT /api/profile", iz.Bind(api.UpdateProfileHandler))
	server.HandleFunc("PUT /api/budget", iz.Bind(api.UpdateBudgetHandler))
	server.HandleFunc("PUT /api/currency", iz.Bind(api.UpdateCurrencyHandler))
	server.HandleFunc("PUT /api/notifications", iz.Bind(api.UpdateNotificationsHandler))

	// PASSWORD RESET ENDPOINTS.
	server.HandleFunc("POST /api/password-reset/request", iz.Bind(api.RequestPasswordResetHandler))
	server.HandleFunc("POST /api/password-reset/verify", iz.Bind(api.VerifyResetCodeHandler))
	server.HandleFunc("POST /api/password-reset/confirm", iz.Bind(api.ResetPasswordHandler))

	// EXPENSE ENDPOINTS.
	server.HandleFunc("POST /api/expense", iz.Bind(api.AddExpenseHandler))
	server.HandleFunc("PUT /api/expense/{id}", iz.Bind(api.UpdateExpenseHandler))
	server.HandleFunc("DELETE /api/expense/{id}", iz.Bind(api.DeleteExpenseHandler))

	// CATEGORY ENDPOINTS.
	server.HandleFunc("POST /api/category", iz.Bind(api.AddCategoryHandler))
	server.HandleFunc("PUT /api/category/{id}", iz.Bind(api.UpdateCategoryHandler))
	server.HandleFunc("DELETE /api/category/{id}", iz.Bind(api.DeleteCategoryHandler))

	// FINANCIAL GOAL ENDPOINTS.
	server.HandleFunc("POST /api/goal", iz.Bind(api.AddGoalHandler))
	server.HandleFunc("PUT /api/goal/{id}", iz.Bind(api.UpdateGoalHandler))

	// REPORT ENDPOINTS.
	server.HandleFunc("GET /api/summary", iz.Bind(api.SummaryHandler))
	server.HandleFunc("GET /api/reports/monthly", iz.Bind(api.MonthlyReportHandler))
	server.HandleFunc("GET /api/reports/yearly", iz.Bind(api.YearlyReportHandler))
	server.HandleFunc("GET /api/reports/category", iz.Bind(api.CategoryReportHandler))
	server.HandleFunc("GET /api/trends", iz.Bind(api.TrendsHandler))

	port := os.Getenv("APP_PORT")
	if port == "" {
		logging.Logger.Info("APP_PORT environment variable not set, using default port 8080")
		port = "8080"
	}
	fmt.Println("Starting server on port: ", port)
	handlerWithCors := corsConf.Handler(server)
	err = http.ListenAndServe(":"+port, handlerWithCors)
	if err != nil {
		logging.Logger.Errorf("failed to start server: %v", err)
		return
	}
}
