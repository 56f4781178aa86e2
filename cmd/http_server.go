package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gastoscl/rendiciones/internal"
	"github.com/gastoscl/rendiciones/internal/area"
	areapg "github.com/gastoscl/rendiciones/internal/area/postgres"
	"github.com/gastoscl/rendiciones/internal/auth"
	authpg "github.com/gastoscl/rendiciones/internal/auth/postgres"
	"github.com/gastoscl/rendiciones/internal/category"
	categorypg "github.com/gastoscl/rendiciones/internal/category/postgres"
	"github.com/gastoscl/rendiciones/internal/client"
	clientpg "github.com/gastoscl/rendiciones/internal/client/postgres"
	"github.com/gastoscl/rendiciones/internal/expense"
	expensepg "github.com/gastoscl/rendiciones/internal/expense/postgres"
	"github.com/gastoscl/rendiciones/internal/receipt"
	"github.com/gastoscl/rendiciones/internal/transport/rest"
	"github.com/gastoscl/rendiciones/internal/user"
	userpg "github.com/gastoscl/rendiciones/internal/user/postgres"
	"github.com/gastoscl/rendiciones/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func startHTTPServer() {
	cfg, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Format)
	log := logger.L()

	gdb, sqlDB, err := initDB(cfg.Database)
	if err != nil {
		log.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}

	router := chi.NewRouter()
	if err := wireRoutes(router, cfg, gdb, sqlDB); err != nil {
		log.Error("failed to wire routes", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		log.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("server shutdown error", "error", err)
		}
		if err := sqlDB.Close(); err != nil {
			log.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	log.Info("server stopped")
}

func wireRoutes(router *chi.Mux, cfg *internal.Config, gdb *gorm.DB, sqlDB *sql.DB) error {
	log := logger.L()

	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	hasher := auth.BcryptHasher{Cost: cfg.Security.BCryptCost}

	authService := auth.NewService(authpg.NewAuthRepository(gdb), tokens, cfg.Security.BCryptCost, log)
	userService := user.NewService(userpg.NewUserRepository(gdb), hasher, log)
	areaService := area.NewService(areapg.NewAreaRepository(gdb), log)
	categoryService := category.NewService(categorypg.NewCategoryRepository(gdb), log)
	clientService := client.NewService(clientpg.NewClientRepository(gdb), log)

	store, err := receipt.NewFileStore(cfg.Uploads)
	if err != nil {
		return fmt.Errorf("init receipt store: %w", err)
	}
	scanner := receipt.NewScanner(cfg.OCR, store, log)

	// A nil *Scanner must stay a nil interface or the service would call it.
	var scannerAPI expense.ScannerAPI
	if scanner != nil {
		scannerAPI = scanner
	}

	expenseService := expense.NewService(
		expensepg.NewExpenseRepository(gdb),
		userService,
		clientService,
		categoryService,
		scannerAPI,
		log,
	)

	handlers := rest.Handlers{
		Auth:    auth.NewHandler(authService),
		User:    user.NewHandler(userService),
		Area:    area.NewHandler(areaService),
		Categ:   category.NewHandler(categoryService),
		Client:  client.NewHandler(clientService),
		Expense: expense.NewHandler(expenseService),
		Receipt: receipt.NewHandler(store, scanner),
	}

	rest.RegisterAllRoutes(router, sqlDB, handlers, auth.NewRBAC(log), cfg.Server.AllowedOrigins, log)
	return nil
}

// initDB opens the configured database. Postgres goes through the pgx stdlib
// driver via sqlx so the pool settings apply to the shared *sql.DB; sqlite is
// for local development and tests.
func initDB(cfg internal.DatabaseConfig) (*gorm.DB, *sql.DB, error) {
	if cfg.Driver == "sqlite" {
		gdb, err := gorm.Open(sqlite.Open(cfg.Source), &gorm.Config{})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, nil, err
		}
		return gdb, sqlDB, nil
	}

	dbConn, err := sqlx.Connect("pgx", cfg.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: dbConn.DB}), &gorm.Config{})
	if err != nil {
		_ = dbConn.Close()
		return nil, nil, fmt.Errorf("failed to open gorm over pgx: %w", err)
	}

	return gdb, dbConn.DB, nil
}
