package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bluegenie-core/internal/config"
	"bluegenie-core/internal/domain/model"
	aiAdapters "bluegenie-core/internal/infra/adapters/ai"
	pg "bluegenie-core/internal/infra/db/postgres"
	"bluegenie-core/internal/infra/logging"
	"bluegenie-core/internal/infra/metrics"
	red "bluegenie-core/internal/infra/redis"
	"bluegenie-core/internal/infra/sched"
	"bluegenie-core/internal/infra/storage"
	"bluegenie-core/internal/infra/web"
	"bluegenie-core/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop providers, relaxed validation)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	locker := red.NewLocker(redisClient)
	subCache := red.NewSubscriptionCache(redisClient, cfg.Redis.TTL)

	// ---- Repositories and stores ----
	profileRepo := pg.NewProfileRepoCacheDecorator(pg.NewPostgresProfileRepo(pool), redisClient, cfg.Redis.TTL)
	fileConvo, err := storage.NewFileConversationStore(cfg.Storage.DataDir, cfg.Storage.IdleResetAfter)
	if err != nil {
		log.Fatalf("conversation store: %v", err)
	}
	convoStore := storage.NewConversationStoreCacheDecorator(fileConvo, redisClient, cfg.Redis.TTL)
	library, err := storage.NewFileMusicLibrary(cfg.Storage.DataDir, cfg.Storage.MaxLibrarySongs)
	if err != nil {
		log.Fatalf("music library: %v", err)
	}
	intentLog, err := storage.NewFileIntentLog(cfg.Storage.DataDir)
	if err != nil {
		log.Fatalf("intent log: %v", err)
	}

	// ---- Adapters ----
	// Real provider clients are injected by the embedding application; the
	// standalone binary runs with the noop stand-ins.
	gen := aiAdapters.NewNoopGenerationAdapter()
	music := aiAdapters.NewNoopMusicAdapter()
	identity := aiAdapters.NewStaticIdentityAdapter("dev-user", "dev@localhost")
	if err := identity.SignIn(ctx, "dev-token"); err != nil {
		log.Fatalf("identity: %v", err)
	}

	// ---- Use cases ----
	policy := cfg.Limits.Policy()
	entitlementUC := usecase.NewEntitlementUseCase(profileRepo, intentLog, subCache, policy, logger)
	sessionUC := usecase.NewSessionUseCase(
		convoStore, library, intentLog, profileRepo, entitlementUC,
		gen, music, identity, locker, policy, cfg.Generation,
		func(state model.EntitlementState) {
			logger.Info().Str("state", string(state)).Msg("upgrade prompt requested")
		},
		logger,
	)
	if err := sessionUC.ChangePersonality(ctx, model.PersonalityDefault); err != nil {
		logger.Warn().Err(err).Msg("seeding default personality failed")
	}

	// ---- Renewal worker ----
	worker := sched.NewRenewalWorker(cfg.Scheduler.RenewalInterval, cfg.Limits.PeriodDays, entitlementUC, logger)
	go func() {
		if err := worker.Run(ctx); err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("renewal worker stopped")
		}
	}()

	// ---- HTTP server ----
	srv := web.NewServer(entitlementUC, cfg.Web.WebhookSecret, logger)
	httpErr := make(chan error, 1)
	go func() { httpErr <- srv.Run(ctx, cfg.Web.Port) }()

	// ---- Shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		logger.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()
		select {
		case <-httpErr:
		case <-time.After(15 * time.Second):
			logger.Warn().Msg("http server did not drain in time")
		}
	case err := <-httpErr:
		if err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server failed")
		}
		cancel()
	}
}
