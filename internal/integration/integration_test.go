package integration

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"millionaire-service/internal/app"
	"millionaire-service/internal/domain"
	"millionaire-service/internal/infra/postgres"
	pgmigrations "millionaire-service/internal/infra/postgres/migrations"
	infraredis "millionaire-service/internal/infra/redis"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun/migrate"
	"golang.org/x/crypto/bcrypt"
)

func TestGameEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := postgres.Open(pgURL)
	defer db.Close()
	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	require.NoError(t, migrator.Init(ctx))
	_, err := migrator.Migrate(ctx)
	require.NoError(t, err)

	store := postgres.NewStore(db)
	report, err := app.NewQuestionService(store, nil).Import(ctx, sampleQuestions())
	require.NoError(t, err)
	require.Equal(t, domain.LevelCount*2, report.Created)

	pool, err := pgxpool.Connect(ctx, pgURL)
	require.NoError(t, err)
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	require.NoError(t, err)
	defer redisClient.Close()

	picker := infraredis.NewQuestionRepository(redisClient, postgres.NewQuestionLoader(pool), 5*time.Minute)
	games := app.NewGameService(store, picker)
	auth := app.NewAuthService(store, app.AuthConfig{Secret: "secret", HashCost: bcrypt.MinCost}, nil)

	user, _, err := auth.Register(ctx, app.RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	game, err := games.CreateGame(ctx, user.ID)
	require.NoError(t, err)

	// The partial unique index rejects a second unfinished game.
	dup := *game
	dup.ID = "duplicate"
	dup.Questions = nil
	require.ErrorIs(t, store.CreateGame(ctx, &dup), domain.ErrGameInProgress)

	_, err = games.UseHelp(ctx, user.ID, game.ID, "friend_call")
	require.NoError(t, err)
	reloaded, err := games.Game(ctx, user.ID, game.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Questions, domain.LevelCount)
	assert.True(t, reloaded.HelpsUsed.Has(domain.HelpFriendCall))
	assert.NotEmpty(t, reloaded.CurrentGameQuestion().Help.FriendCall)

	for !reloaded.Finished() {
		key := reloaded.CurrentGameQuestion().CorrectAnswerKey()
		reloaded, _, err = games.Answer(ctx, user.ID, game.ID, key)
		require.NoError(t, err)
	}
	assert.Equal(t, domain.StatusWon, reloaded.Status())

	require.ErrorIs(t, store.FinishGame(ctx, reloaded), domain.ErrGameFinished)

	stored, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TopPrize(), stored.Balance)

	history, err := store.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.StatusWon, history[0].Status())
	assert.True(t, history[0].HelpsUsed.Has(domain.HelpFriendCall))

	counts, err := store.CountByLevel(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[domain.MaxLevel])
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "millionaire", "POSTGRES_PASSWORD": "millionaire", "POSTGRES_DB": "millionaire"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	dsn := fmt.Sprintf("postgres://millionaire:millionaire@%s:%s/millionaire?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func sampleQuestions() []domain.Question {
	var questions []domain.Question
	for level := domain.MinLevel; level <= domain.MaxLevel; level++ {
		for i := 0; i < 2; i++ {
			questions = append(questions, domain.Question{
				Level:   level,
				Text:    fmt.Sprintf("Level %d, question %d", level, i),
				Answer1: "right",
				Answer2: "wrong",
				Answer3: "also wrong",
				Answer4: "still wrong",
			})
		}
	}
	return questions
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
