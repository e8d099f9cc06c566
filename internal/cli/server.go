package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eco-quiz-engine/internal/app"
	"eco-quiz-engine/internal/bank"
	"eco-quiz-engine/internal/config"
	"eco-quiz-engine/internal/infra/memory"
	"eco-quiz-engine/internal/infra/postgres"
	redisstore "eco-quiz-engine/internal/infra/redis"
	"eco-quiz-engine/internal/pkg/logger"
	transport "eco-quiz-engine/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	// Postgres first, then the bank directory, then the embedded eco bank.
	loaders := memory.ChainLoader{}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		loaders = append(loaders, postgres.NewBankLoader(pool))
	}
	if cfg.Quiz.BankDir != "" {
		loaders = append(loaders, bank.NewFileLoader(cfg.Quiz.BankDir))
	}
	loaders = append(loaders, memory.NewStaticBankLoader(bank.Default()))

	bankTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var (
		banks     app.BankRepository
		plays     app.PlayRepository
		standings app.StandingsRepository
	)
	if redisClient != nil {
		banks = redisstore.NewBankRepository(redisClient, loaders, bankTTL)
		plays = redisstore.NewPlayStore(redisClient, redisTTL)
		standings = redisstore.NewStandingsStore(redisClient)
	} else {
		banks = memory.NewBankRepository(loaders, bankTTL)
		plays = memory.NewPlayStore()
		standings = memory.NewStandingsStore()
	}

	service := app.NewGameService(plays, banks, standings, app.Options{
		Clock:    app.SystemClock{},
		Tick:     config.TTLDuration(cfg.Quiz.Tick, time.Second),
		AutoTick: cfg.AutoTickEnabled(),
		LevelTTL: bankTTL,
		Logger:   log,
	})

	defaultBank := cfg.Quiz.DefaultBank
	if defaultBank == "" {
		defaultBank = bank.DefaultID
	}
	wsHandler := transport.NewWSHandler(service, defaultBank, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.Handle("/leaderboard", transport.NewLeaderboardHandler(service, log))

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting quiz engine", "port", finalPort, "redis", redisClient != nil, "postgres", cfg.Postgres.URL != "")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
