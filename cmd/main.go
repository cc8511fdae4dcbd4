package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"github.com/cupitman9/finanzas-bot/internal/api"
	"github.com/cupitman9/finanzas-bot/internal/bot"
	"github.com/cupitman9/finanzas-bot/internal/config"
	"github.com/cupitman9/finanzas-bot/internal/extraction"
	"github.com/cupitman9/finanzas-bot/internal/firebase"
	"github.com/cupitman9/finanzas-bot/internal/logger"
	"github.com/cupitman9/finanzas-bot/internal/service"
	"github.com/cupitman9/finanzas-bot/internal/session"
	"github.com/cupitman9/finanzas-bot/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("error loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("error loading configuration: %v", err)
	}
	appLogger := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := storage.Migrate(cfg.PostgresURL()); err != nil {
		appLogger.Fatalf("unable to migrate database: %v", err)
	}
	storageInstance, err := storage.NewStorage(ctx, cfg.PostgresURL())
	if err != nil {
		appLogger.Fatalf("unable to connect to database: %v", err)
	}
	defer storageInstance.Close()

	users := service.NewUsers(storageInstance)
	categories := service.NewCategories(storageInstance)
	wallets := service.NewWallets(storageInstance)
	objectives := service.NewObjectives(storageInstance, storageInstance, categories, wallets)
	operations := service.NewOperations(storageInstance, categories, wallets, objectives)
	similarity := service.NewSimilarity(storageInstance, rand.New(rand.NewSource(time.Now().UnixNano())))
	comparison := service.NewComparison(storageInstance, storageInstance, storageInstance, similarity)

	var fb *firebase.Client
	var verifier api.TokenVerifier
	if cfg.FirebaseProjectID != "" {
		fb, err = firebase.NewClient(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
		if err != nil {
			appLogger.Fatalf("unable to initialize firebase: %v", err)
		}
		defer fb.Close()
		verifier = firebase.NewTokenVerifier(fb.Auth)
	} else {
		appLogger.Warn("FIREBASE_PROJECT_ID not set, authenticated routes are disabled")
	}

	app := api.New(api.Options{
		Services: api.Services{
			Users:       users,
			Categories:  categories,
			Wallets:     wallets,
			Operations:  operations,
			Objectives:  objectives,
			Professions: service.NewProfessions(storageInstance),
			Locations:   service.NewLocations(storageInstance),
			Similarity:  similarity,
			Comparison:  comparison,
		},
		Verifier:    verifier,
		Health:      storageInstance,
		Log:         appLogger,
		Development: cfg.IsDevelopment(),
	})

	var botAPI *telebot.Bot
	if cfg.BotToken != "" {
		botAPI, err = startBot(ctx, cfg, appLogger, fb, bot.Services{
			Users:      users,
			Categories: categories,
			Wallets:    wallets,
			Operations: operations,
		})
		if err != nil {
			appLogger.Fatalf("error starting bot: %v", err)
		}
	} else {
		appLogger.Warn("TELEGRAM_BOT_TOKEN not set, bot is disabled")
	}

	go func() {
		appLogger.WithField("port", cfg.HTTPPort).Info("http server start")
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTPPort)); err != nil {
			appLogger.WithError(err).Error("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info("shutting down")

	if botAPI != nil {
		botAPI.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("error shutting down http server")
	}
}

// startBot wires extraction and the session store into the Telegram handlers and starts polling.
func startBot(ctx context.Context, cfg *config.Config, appLogger *logrus.Logger, fb *firebase.Client, svc bot.Services) (*telebot.Bot, error) {
	gemini, err := extraction.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, fmt.Errorf("error creating gemini client: %w", err)
	}
	svc.Extractor = extraction.NewExtractor(gemini, extraction.NewFFmpeg(cfg.FFmpegPath, cfg.AudioTmpDir), cfg.LLMTimeout, appLogger)

	var sessions session.Store = session.NewMemoryStore()
	if cfg.SessionStore == config.SessionStoreFirestore {
		if fb == nil {
			return nil, errors.New("firestore session store requires firebase")
		}
		sessions = session.NewFirestoreStore(fb.Firestore)
	}

	botAPI, err := telebot.NewBot(telebot.Settings{
		Token:   cfg.BotToken,
		Poller:  &telebot.LongPoller{Timeout: 10 * time.Second},
		Verbose: cfg.BotDebug,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating bot instance: %w", err)
	}

	bot.RegisterHandlers(botAPI, bot.NewHandler(botAPI, svc, sessions, appLogger), appLogger)
	appLogger.WithField("sessionStore", cfg.SessionStore).Info("bot start")
	go botAPI.Start()
	return botAPI, nil
}
