package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvfens/ags/internal/app/model"
	"github.com/dvfens/ags/internal/app/repository"
	"github.com/dvfens/ags/internal/db"
	"github.com/dvfens/ags/pkg/util"
)

type revokeCall struct {
	token string
	ttl   time.Duration
}

func setupAuthServiceTest(t *testing.T) (AuthService, repository.UserRepository, *[]revokeCall) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	var calls []revokeCall
	userRepo := repository.NewUserRepository(testDB)
	authService := NewAuthService(
		userRepo,
		"test-jwt-secret",
		15*time.Minute,
		7*24*time.Hour,
		func(_ context.Context, token string, ttl time.Duration) error {
			calls = append(calls, revokeCall{token: token, ttl: ttl})
			return nil
		},
	)
	return authService, userRepo, &calls
}

func TestAuthService_Register(t *testing.T) {
	authService, _, _ := setupAuthServiceTest(t)

	tests := []struct {
		name    string
		input   RegisterInput
		wantErr error
	}{
		{
			name:  "Valid registration",
			input: RegisterInput{Email: "Test@Example.com", Password: "password123", Name: "Test User", Phone: "9876543210"},
		},
		{
			name:    "Duplicate email is case insensitive",
			input:   RegisterInput{Email: "test@example.com", Password: "password456"},
			wantErr: ErrEmailAlreadyExists,
		},
		{
			name:    "Duplicate phone",
			input:   RegisterInput{Email: "other@example.com", Password: "password456", Phone: "9876543210"},
			wantErr: ErrPhoneAlreadyExists,
		},
		{
			name:    "Missing password",
			input:   RegisterInput{Email: "nopass@example.com"},
			wantErr: ErrMissingCredentials,
		},
		{
			name:    "Missing email",
			input:   RegisterInput{Password: "password"},
			wantErr: ErrMissingCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, tokens, err := authService.Register(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				assert.Nil(t, tokens)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "test@example.com", user.Email)
			assert.Equal(t, "Test User", user.Name)
			assert.Equal(t, model.RoleUser, user.Role)
			assert.NotEqual(t, "password123", user.PasswordHash)
			assert.NotEmpty(t, tokens.AccessToken)
		})
	}
}

func TestAuthService_RegisterDefaults(t *testing.T) {
	authService, _, _ := setupAuthServiceTest(t)

	first, _, err := authService.Register(RegisterInput{Email: "priya.s@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "priya.s", first.Name)
	assert.True(t, first.HasPlaceholderPhone())
	assert.True(t, strings.HasPrefix(first.Phone, "temp_"))

	// Two placeholder phones never collide on the unique column.
	second, _, err := authService.Register(RegisterInput{Email: "rahul@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.NotEqual(t, first.Phone, second.Phone)
}

func TestAuthService_Login(t *testing.T) {
	authService, _, _ := setupAuthServiceTest(t)

	_, _, err := authService.Register(RegisterInput{Email: "login@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	user, tokens, err := authService.Login("LOGIN@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "login@example.com", user.Email)

	claims, err := util.ValidateToken(tokens.AccessToken, "test-jwt-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	_, _, err = authService.Login("login@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = authService.Login("nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Logout(t *testing.T) {
	authService, _, calls := setupAuthServiceTest(t)

	_, tokens, err := authService.Register(RegisterInput{Email: "bye@example.com", Password: "secret"})
	require.NoError(t, err)
	claims, err := util.ValidateToken(tokens.AccessToken, "test-jwt-secret")
	require.NoError(t, err)

	require.NoError(t, authService.Logout(context.Background(), tokens.AccessToken, claims))
	require.Len(t, *calls, 1)
	assert.Equal(t, tokens.AccessToken, (*calls)[0].token)
	assert.Greater(t, (*calls)[0].ttl, 14*time.Minute)
}

func TestAuthService_LogoutRevokerError(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	boom := errors.New("redis down")
	authService := NewAuthService(repository.NewUserRepository(testDB), "s", time.Minute, time.Hour,
		func(context.Context, string, time.Duration) error { return boom })

	err = authService.Logout(context.Background(), "tok", &util.Claims{UserID: 1})
	assert.ErrorIs(t, err, boom)
}

func TestAuthService_GetUserAndUpdateProfile(t *testing.T) {
	authService, _, _ := setupAuthServiceTest(t)

	user, _, err := authService.Register(RegisterInput{Email: "me@example.com", Password: "secret"})
	require.NoError(t, err)
	_, _, err = authService.Register(RegisterInput{Email: "taken@example.com", Password: "secret", Phone: "9000000000"})
	require.NoError(t, err)

	found, err := authService.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "me", found.Name)

	_, err = authService.GetUserByID(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = authService.UpdateProfile(user.ID, "", "9000000000")
	assert.ErrorIs(t, err, ErrPhoneAlreadyExists)

	updated, err := authService.UpdateProfile(user.ID, "Meera", "9111111111")
	require.NoError(t, err)
	assert.Equal(t, "Meera", updated.Name)
	assert.Equal(t, "9111111111", updated.Phone)
	assert.False(t, updated.HasPlaceholderPhone())
}
