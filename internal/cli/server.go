package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"millionaire-service/internal/app"
	"millionaire-service/internal/config"
	"millionaire-service/internal/importer"
	"millionaire-service/internal/infra/memory"
	"millionaire-service/internal/infra/postgres"
	redisinfra "millionaire-service/internal/infra/redis"
	"millionaire-service/internal/logger"
	"millionaire-service/internal/metrics"
	transport "millionaire-service/internal/transport/http"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	var seedFile string
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port, seedFile)
		},
	}
	cmd.Flags().StringVar(&seedFile, "seed", "", "question file (yaml or xlsx) imported on start")
	return cmd
}

// storage is the set of repositories the services run on.
type storage struct {
	games     app.GameRepository
	users     app.UserRepository
	questions app.QuestionStore
	loader    memory.QuestionLoader
	close     func()
}

func openStorage(ctx context.Context, cfg config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Postgres.URL == "" {
		log.Entry().Warn("postgres url not configured, keeping data in memory")
		store := memory.NewStore()
		bank := memory.NewQuestionBank()
		return &storage{games: store, users: store, questions: bank, loader: bank, close: func() {}}, nil
	}

	if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
		return nil, err
	}
	db := postgres.Open(cfg.Postgres.URL)
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		db.Close()
		return nil, err
	}
	store := postgres.NewStore(db)
	return &storage{
		games:     store,
		users:     store,
		questions: store,
		loader:    postgres.NewQuestionLoader(pool),
		close: func() {
			pool.Close()
			_ = db.Close()
		},
	}, nil
}

func newRedisClient(cfg config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func runServer(ctx context.Context, configPath, portFlag, seedFile string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.New("millionaire")
	m := metrics.New("millionaire")

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (or JWT_SECRET) is required")
	}

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.close()

	questions := app.NewQuestionService(store.questions, log)
	if seedFile != "" {
		bank, err := importer.ReadFile(seedFile)
		if err != nil {
			return err
		}
		if _, err := questions.Import(ctx, bank); err != nil {
			return err
		}
	}
	if missing, err := questions.MissingLevels(ctx); err == nil && len(missing) > 0 {
		log.Entry().WithField("levels", missing).Warn("question bank has empty levels, games cannot start")
	}

	questionTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	flashTTL := config.TTLDuration(cfg.Flash.TTL, 5*time.Minute)
	tokenTTL := config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour)

	var (
		picker  app.QuestionPicker
		flashes app.FlashStore
	)
	if client := newRedisClient(cfg); client != nil {
		defer client.Close()
		picker = redisinfra.NewQuestionRepository(client, store.loader, questionTTL)
		flashes = redisinfra.NewFlashStore(client, flashTTL)
	} else {
		picker = memory.NewQuestionRepository(store.loader, questionTTL)
		flashes = memory.NewFlashStore(flashTTL)
	}

	games := app.NewGameService(store.games, picker, app.WithLogger(log), app.WithMetrics(m))
	auth := app.NewAuthService(store.users, app.AuthConfig{Secret: cfg.Auth.JWTSecret, TokenTTL: tokenTTL}, log)
	router, err := transport.NewRouter(transport.Deps{
		Games:          games,
		Users:          app.NewUserService(store.users, store.games),
		Auth:           auth,
		Flashes:        flashes,
		Log:            log,
		Metrics:        m,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		SecureCookies:  cfg.Server.SecureCookies,
		TokenTTL:       tokenTTL,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Entry().WithField("port", finalPort).Info("starting millionaire server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Entry().WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Entry().Info("shutting down server...")
	case <-ctx.Done():
		log.Entry().Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
