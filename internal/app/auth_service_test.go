package app_test

import (
	"context"
	"testing"
	"time"

	"millionaire-service/internal/app"
	"millionaire-service/internal/domain"
	"millionaire-service/internal/infra/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(store *memory.Store) *app.AuthService {
	return app.NewAuthService(store, app.AuthConfig{
		Secret:   "test-secret",
		TokenTTL: time.Hour,
		HashCost: bcrypt.MinCost,
	}, nil)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	auth := newAuthService(store)

	user, token, err := auth.Register(ctx, app.RegisterInput{Name: " Vadik ", Email: "Vadik@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Vadik", user.Name)
	assert.Equal(t, "vadik@example.com", user.Email)
	assert.Zero(t, user.Balance)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	userID, err := auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	_, _, err = auth.Register(ctx, app.RegisterInput{Name: "Other", Email: "vadik@example.com", Password: "secret2"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	logged, token, err := auth.Login(ctx, "VADIK@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	current, err := auth.CurrentUser(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, current.ID)

	_, _, err = auth.Login(ctx, "vadik@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, _, err = auth.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestRegisterValidates(t *testing.T) {
	auth := newAuthService(memory.NewStore())

	_, _, err := auth.Register(context.Background(), app.RegisterInput{Name: "", Email: "not-an-email", Password: "1"})
	assert.Error(t, err)
}

func TestParseTokenRejectsForeignSignature(t *testing.T) {
	store := memory.NewStore()
	other := app.NewAuthService(store, app.AuthConfig{Secret: "other"}, nil)
	token, err := other.GenerateToken("u1")
	require.NoError(t, err)

	_, err = newAuthService(store).ParseToken(token)
	assert.Error(t, err)
}

func TestUpdateAccount(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	auth := newAuthService(store)
	user, _, err := auth.Register(ctx, app.RegisterInput{Name: "Max", Email: "max@example.com", Password: "secret1"})
	require.NoError(t, err)

	updated, err := auth.UpdateAccount(ctx, user.ID, app.AccountInput{Name: "Maxim"})
	require.NoError(t, err)
	assert.Equal(t, "Maxim", updated.Name)
	_, _, err = auth.Login(ctx, "max@example.com", "secret1")
	require.NoError(t, err, "empty password keeps the old one")

	_, err = auth.UpdateAccount(ctx, user.ID, app.AccountInput{Name: "Maxim", Password: "newpass"})
	require.NoError(t, err)
	_, _, err = auth.Login(ctx, "max@example.com", "newpass")
	require.NoError(t, err)
}
