package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/agripredict/service-api/internal/account"
	accountrepo "github.com/agripredict/service-api/internal/account/repo"
	"github.com/agripredict/service-api/internal/analytics"
	"github.com/agripredict/service-api/internal/auth"
	"github.com/agripredict/service-api/internal/chat"
	"github.com/agripredict/service-api/internal/config"
	"github.com/agripredict/service-api/internal/contact"
	contactrepo "github.com/agripredict/service-api/internal/contact/repo"
	"github.com/agripredict/service-api/internal/crop"
	croprepo "github.com/agripredict/service-api/internal/crop/repo"
	"github.com/agripredict/service-api/internal/learning"
	learningrepo "github.com/agripredict/service-api/internal/learning/repo"
	"github.com/agripredict/service-api/internal/router"
	"github.com/agripredict/service-api/internal/upload"
	"github.com/agripredict/service-api/pkg/database"
	"github.com/agripredict/service-api/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	// this is best-effort: if no .env exists, continue (use defaults or real env)
	_ = godotenv.Load()

	// init logger
	lg, err := utilities.InitLogger(utilities.LogConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting agripredict service-api")

	// parse config; a missing JWT secret is fatal here, before any listener opens
	cfg, err := config.New()
	if err != nil {
		sugar.Fatalf("config: %v", err)
	}

	// init db
	sqlDB, err := database.Connect(database.Config{
		DSN:            cfg.Database.URL,
		MaxConns:       cfg.Database.MaxConns,
		Timeout:        cfg.Database.Timeout,
		TimeZone:       cfg.Database.TimeZone,
		ClientEncoding: cfg.Database.ClientEncoding,
	})
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer sqlDB.Close()

	// wrap with sqlx for convenience in repos/services
	db := sqlx.NewDb(sqlDB, "postgres")
	defer db.Close()

	// ensure tables
	setupCtx, setupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer setupCancel()
	accounts := accountrepo.NewAccountRepo(db)
	contacts := contactrepo.NewMessageRepo(db)
	tips := learningrepo.NewTipRepo(db)
	predictions := croprepo.NewPredictionRepo(db)
	for name, ensure := range map[string]func(context.Context) error{
		"accounts":         accounts.EnsureTable,
		"contact_messages": contacts.EnsureTable,
		"learning_tips":    tips.EnsureTable,
		"crop_predictions": predictions.EnsureTable,
	} {
		if err := ensure(setupCtx); err != nil {
			sugar.Fatalf("ensure table %s: %v", name, err)
		}
	}

	// services
	accountSvc := account.NewService(db, accounts, nil)
	accountSvc.BootstrapAdmin = cfg.AdminBootstrap
	tokenSvc := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.TTL)
	authMW := auth.NewMiddleware(tokenSvc, accountSvc, sugar)
	contactSvc := contact.NewService(db, contacts)
	learningSvc := learning.NewService(db, tips)
	analyticsSvc := analytics.NewService(db)
	cropSvc := crop.NewService(db, predictions, cfg.Crop.Endpoint, cfg.Crop.Timeout, sugar)
	chatSvc := chat.NewService(cfg.Chat.APIKey, cfg.Chat.Model, cfg.Chat.Timeout)
	if !chatSvc.Configured() {
		sugar.Warn("GEMINI_API_KEY not set; chat assistant disabled")
	}

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// mount http server
	handler := router.RegisterRoutes(sugar, router.Deps{
		Auth:      authMW,
		Accounts:  account.NewHandler(accountSvc, tokenSvc, sugar),
		Contact:   contact.NewHandler(contactSvc, sugar),
		Learning:  learning.NewHandler(learningSvc, sugar),
		Analytics: analytics.NewHandler(analyticsSvc, sugar),
		Crop:      crop.NewHandler(cropSvc, sugar),
		Chat:      chat.NewHandler(chatSvc, sugar),
		Upload:    upload.NewHandler(cfg.Upload.Dir, cfg.Upload.MaxSize, sugar),
	})
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	// run server in background
	go func() {
		sugar.Infof("listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for cleanup
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// shutdown http server
	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
