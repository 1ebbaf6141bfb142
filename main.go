package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/prem22k/c3-backend/applications/card"
	"github.com/prem22k/c3-backend/applications/email"
	"github.com/prem22k/c3-backend/config"
	"github.com/prem22k/c3-backend/db"
	"github.com/prem22k/c3-backend/logger"
	"github.com/prem22k/c3-backend/routes"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env file. Continuing...")
	}

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := logger.Init(cfg.LogLevel, cfg.LogFile, cfg.LogFormat); err != nil {
		log.Fatalf("logger: %v", err)
	}

	logger.Log.Info("[main] program started")
	ctx := context.Background()

	// --- STORE ---
	logger.Log.Info(fmt.Sprintf("[main] Connecting to %s store...", cfg.StoreDriver))
	store, err := db.NewStore(ctx, cfg)
	if err != nil {
		logger.Log.Error(fmt.Sprintf("[main] Store initialization failed: %v", err))
		os.Exit(1)
	}
	logger.Log.Info("[main] Store connection successful.")

	// --- EMAIL ---
	sender, err := email.NewSender(ctx, cfg)
	if err != nil {
		logger.Log.Error(fmt.Sprintf("[main] Email transport initialization failed: %v", err))
		os.Exit(1)
	}
	verifyCtx, cancelVerify := context.WithTimeout(ctx, 30*time.Second)
	if err := sender.Verify(verifyCtx); err != nil {
		logger.Log.Warn(fmt.Sprintf("[main] ⚠️ Email transport %s failed verification, registrations will be partial: %v", sender.Name(), err))
	} else {
		logger.Log.Info(fmt.Sprintf("[main] ✅ Email transport %s ready.", sender.Name()))
	}
	cancelVerify()
	if !email.Delivers(sender) {
		logger.Log.Warn(fmt.Sprintf("[main] ⚠️ EMAIL_TRANSPORT=%s does not deliver mail; members stay unconfirmed until a real transport is configured.", sender.Name()))
	}

	// --- CARD ---
	theme := card.ThemeByName(cfg.CardTheme).WithLogos(cfg.CardLogoLeft, cfg.CardLogoRight)
	renderer := card.NewRenderer(theme, cfg.CardVerifyURL, cfg.CardTempDir)

	e := routes.New(routes.Deps{
		Log:    logger.Log,
		Config: cfg,
		Store:  store,
		Sender: sender,
		Cards:  renderer,
	})

	go func() {
		logger.Log.Info(fmt.Sprintf("[main] HTTP listening on %s", cfg.HTTPAddr))
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error(fmt.Sprintf("[main] HTTP server: %v", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Log.Info("[main] shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error(fmt.Sprintf("[main] HTTP shutdown: %v", err))
	}
	if err := store.Close(shutdownCtx); err != nil {
		logger.Log.Error(fmt.Sprintf("[main] Store close: %v", err))
	}

	logger.Log.Info("[main] bye")
}
