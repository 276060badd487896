package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"drpworkshop/server/internal/domain"
)

const testJWTSecret = "test-secret-do-not-use"

func newTestAuthService() (AuthService, *fakeUserRepo) {
	users := newFakeUserRepo()
	return NewAuthService(users, testJWTSecret, 0, 0), users
}

func registerTestUser(t *testing.T, auth AuthService, username string, role domain.Role) *domain.User {
	t.Helper()
	user, _, err := auth.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "hunter22",
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func TestRegisterThenLogin(t *testing.T) {
	auth, _ := newTestAuthService()
	ctx := context.Background()

	user, pair, err := auth.Register(ctx, RegisterInput{
		Username:  "coach",
		Email:     "coach@example.com",
		Password:  "hunter22",
		FirstName: "Jordan",
		LastName:  "Reyes",
		Role:      domain.RolePro,
	})
	require.NoError(t, err)
	require.False(t, user.ID.IsZero())
	require.Empty(t, user.PasswordHash)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	// Login by username.
	loggedIn, pair, err := auth.Login(ctx, "coach", "hunter22")
	require.NoError(t, err)
	require.Equal(t, user.ID, loggedIn.ID)
	require.NotEmpty(t, pair.AccessToken)

	// And by email.
	_, _, err = auth.Login(ctx, "coach@example.com", "hunter22")
	require.NoError(t, err)
}

func TestRegister_DuplicateIdentity(t *testing.T) {
	auth, _ := newTestAuthService()
	ctx := context.Background()
	registerTestUser(t, auth, "coach", domain.RolePro)

	_, _, err := auth.Register(ctx, RegisterInput{
		Username: "coach",
		Email:    "other@example.com",
		Password: "hunter22",
		Role:     domain.RolePro,
	})
	require.ErrorIs(t, err, ErrUserAlreadyExists)

	_, _, err = auth.Register(ctx, RegisterInput{
		Username: "other",
		Email:    "coach@example.com",
		Password: "hunter22",
		Role:     domain.RoleAthlete,
	})
	require.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestRegister_RejectsUnknownRole(t *testing.T) {
	auth, _ := newTestAuthService()
	_, _, err := auth.Register(context.Background(), RegisterInput{
		Username: "coach",
		Email:    "coach@example.com",
		Password: "hunter22",
		Role:     domain.Role("admin"),
	})
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestLogin_WrongPassword(t *testing.T) {
	auth, _ := newTestAuthService()
	registerTestUser(t, auth, "coach", domain.RolePro)

	_, _, err := auth.Login(context.Background(), "coach", "wrong")
	require.ErrorIs(t, err, ErrAuthenticationFailed)

	_, _, err = auth.Login(context.Background(), "nobody", "hunter22")
	require.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestRefresh_IssuesNewPair(t *testing.T) {
	auth, _ := newTestAuthService()
	ctx := context.Background()

	_, pair, err := auth.Register(ctx, RegisterInput{
		Username: "coach",
		Email:    "coach@example.com",
		Password: "hunter22",
		Role:     domain.RolePro,
	})
	require.NoError(t, err)

	fresh, err := auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, fresh.AccessToken)
	require.NotEmpty(t, fresh.RefreshToken)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	auth, _ := newTestAuthService()
	ctx := context.Background()

	_, pair, err := auth.Register(ctx, RegisterInput{
		Username: "coach",
		Email:    "coach@example.com",
		Password: "hunter22",
		Role:     domain.RolePro,
	})
	require.NoError(t, err)

	// An access token must never mint new pairs.
	_, err = auth.Refresh(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefresh_RejectsGarbage(t *testing.T) {
	auth, _ := newTestAuthService()
	_, err := auth.Refresh(context.Background(), "not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
