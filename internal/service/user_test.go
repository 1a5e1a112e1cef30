package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"scribbles/internal/avatar"
	"scribbles/internal/model"
	"scribbles/internal/repository"
	"scribbles/internal/storage"
)

// =============================================================================
// INITIALIZATION
// =============================================================================

func TestAccountService_SeedsDemoAccount(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, 1, f.accounts.AccountCount())
	assert.False(t, f.accounts.IsAuthenticated())

	stored, found, err := repository.NewAccountRepository(f.store).Load(context.Background())
	require.NoError(t, err)
	require.True(t, found, "seed must be persisted immediately")
	require.Len(t, stored, 1)
	assert.Equal(t, model.Account{
		Username:    DemoUsername,
		Password:    DemoPassword,
		DisplayName: DemoDisplayName,
		Bio:         DemoBio,
		Avatar:      "https://api.dicebear.com/7.x/personas/svg?seed=user",
	}, stored[0])
}

func TestAccountService_DoesNotReseed(t *testing.T) {
	f := newFixture(t)
	_, err := f.accounts.Signup(context.Background(), "alice", "pw123", "Alice")
	require.NoError(t, err)

	reloaded := newFixtureOn(t, f.store)
	assert.Equal(t, 2, reloaded.accounts.AccountCount())
}

// =============================================================================
// LOGIN TESTS
// =============================================================================

func TestAccountService_Login_DemoAccount(t *testing.T) {
	f := newFixture(t)

	session, err := f.accounts.Login(context.Background(), "user", "pass")
	require.NoError(t, err)

	assert.Equal(t, "user", session.Username)
	assert.Equal(t, DemoDisplayName, session.DisplayName)
	assert.True(t, f.accounts.IsAuthenticated())

	current, ok := f.accounts.CurrentSession()
	require.True(t, ok)
	assert.Equal(t, *session, current)
}

func TestAccountService_Login_StoredSessionHasNoPassword(t *testing.T) {
	f := newFixture(t)
	_, err := f.accounts.Login(context.Background(), "user", "pass")
	require.NoError(t, err)

	raw, found, err := f.store.Load(context.Background(), storage.SessionKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), "pass\"")
}

func TestAccountService_Login_Failures(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "user", "wrong"},
		{"unknown user", "nobody", "pass"},
		{"username differs in case", "User", "pass"},
		{"empty password", "user", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			before, err := f.accounts.Signup(ctx, "alice", "pw123", "Alice")
			require.NoError(t, err)

			session, err := f.accounts.Login(ctx, tt.username, tt.password)
			assert.ErrorIs(t, err, model.ErrInvalidCredentials)
			assert.Nil(t, session)

			// The existing session is left untouched
			current, ok := f.accounts.CurrentSession()
			require.True(t, ok)
			assert.Equal(t, *before, current)
		})
	}
}

func TestAccountService_Login_SessionSurvivesRestart(t *testing.T) {
	f := newFixture(t)
	_, err := f.accounts.Login(context.Background(), "user", "pass")
	require.NoError(t, err)

	reloaded := newFixtureOn(t, f.store)
	current, ok := reloaded.accounts.CurrentSession()
	require.True(t, ok)
	assert.Equal(t, "user", current.Username)
}

func TestAccountService_Login_PersistFailureKeepsSession(t *testing.T) {
	f := newFixture(t)
	f.store.setFailSave(true)

	_, err := f.accounts.Login(context.Background(), "user", "pass")
	assert.ErrorIs(t, err, errDiskFull)
	assert.False(t, f.accounts.IsAuthenticated())
}

// =============================================================================
// SIGNUP TESTS
// =============================================================================

func TestAccountService_Signup_Success(t *testing.T) {
	f := newFixture(t)

	session, err := f.accounts.Signup(context.Background(), "alice", "pw123", "Alice")
	require.NoError(t, err)

	assert.Equal(t, model.Session{
		Username:    "alice",
		DisplayName: "Alice",
		Bio:         "",
		Avatar:      "https://api.dicebear.com/7.x/personas/svg?seed=alice",
	}, *session)
	assert.True(t, f.accounts.IsAuthenticated())
	assert.Equal(t, 2, f.accounts.AccountCount())

	stored, _, err := repository.NewAccountRepository(f.store).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "alice", stored[1].Username, "new accounts are appended")
	assert.Equal(t, "pw123", stored[1].Password)
}

func TestAccountService_Signup_DefaultsDisplayName(t *testing.T) {
	for _, displayName := range []string{"", "   "} {
		f := newFixture(t)
		session, err := f.accounts.Signup(context.Background(), "bob", "pw", displayName)
		require.NoError(t, err)
		assert.Equal(t, "bob", session.DisplayName)
	}
}

func TestAccountService_Signup_UsernameExists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.accounts.Signup(ctx, "user", "other", "Impostor")
	assert.ErrorIs(t, err, model.ErrUsernameExists)
	assert.Equal(t, 1, f.accounts.AccountCount())
	assert.False(t, f.accounts.IsAuthenticated())

	// The original password still works
	_, err = f.accounts.Login(ctx, "user", "pass")
	assert.NoError(t, err)
}

func TestAccountService_Signup_IsCaseSensitive(t *testing.T) {
	f := newFixture(t)

	_, err := f.accounts.Signup(context.Background(), "User", "pw", "")
	require.NoError(t, err)
	assert.Equal(t, 2, f.accounts.AccountCount())
}

func TestAccountService_Signup_Validation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"empty username", "", "pw", model.ErrUsernameRequired},
		{"blank username", "  ", "pw", model.ErrUsernameRequired},
		{"empty password", "carol", "", model.ErrPasswordRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.accounts.Signup(context.Background(), tt.username, tt.password, "")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 1, f.accounts.AccountCount())
		})
	}
}

func TestAccountService_Signup_PersistFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.store.setFailSave(true)

	_, err := f.accounts.Signup(context.Background(), "alice", "pw123", "Alice")
	assert.ErrorIs(t, err, errDiskFull)
	assert.Equal(t, 1, f.accounts.AccountCount())
	assert.False(t, f.accounts.IsAuthenticated())

	f.store.setFailSave(false)
	_, err = f.accounts.Signup(context.Background(), "alice", "pw123", "Alice")
	assert.NoError(t, err, "username must not be reserved by the failed attempt")
}

func TestAccountService_Signup_SessionWriteFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.setFailKey(storage.SessionKey)

	_, err := f.accounts.Signup(ctx, "alice", "pw123", "Alice")
	assert.ErrorIs(t, err, errDiskFull)
	assert.Equal(t, 1, f.accounts.AccountCount())
	assert.False(t, f.accounts.IsAuthenticated())

	stored, _, err := repository.NewAccountRepository(f.store).Load(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, DemoUsername, stored[0].Username)

	f.store.setFailKey("")
	session, err := f.accounts.Signup(ctx, "alice", "pw123", "Alice")
	require.NoError(t, err, "username must not be reserved by the failed attempt")
	assert.Equal(t, "alice", session.Username)
	assert.Equal(t, 2, f.accounts.AccountCount())
}

func TestAccountService_UsernamesStayUnique(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "a", "user", "b", "c"} {
		_, _ = f.accounts.Signup(ctx, name, "pw", "")
	}

	stored, _, err := repository.NewAccountRepository(f.store).Load(ctx)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, a := range stored {
		assert.False(t, seen[a.Username], "duplicate username %q", a.Username)
		seen[a.Username] = true
	}
	assert.Len(t, stored, 4)
}

// =============================================================================
// LOGOUT TESTS
// =============================================================================

func TestAccountService_Logout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.accounts.Login(ctx, "user", "pass")
	require.NoError(t, err)

	require.NoError(t, f.accounts.Logout(ctx))
	assert.False(t, f.accounts.IsAuthenticated())

	_, found, err := f.store.Load(ctx, storage.SessionKey)
	require.NoError(t, err)
	assert.False(t, found)

	reloaded := newFixtureOn(t, f.store)
	assert.False(t, reloaded.accounts.IsAuthenticated())
}

func TestAccountService_Logout_WithoutSession(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.accounts.Logout(context.Background()))
}

// =============================================================================
// PROFILE
// =============================================================================

func TestAccountService_Profile(t *testing.T) {
	f := newFixture(t)

	profile, err := f.accounts.Profile("user")
	require.NoError(t, err)
	assert.Equal(t, DemoBio, profile.Bio)

	_, err = f.accounts.Profile("ghost")
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

// =============================================================================
// BCRYPT MODE
// =============================================================================

func TestAccountService_BcryptMode(t *testing.T) {
	store := storage.NewMemoryStore("")
	ctx := context.Background()

	svc, err := NewAccountService(ctx,
		repository.NewAccountRepository(store),
		repository.NewSessionRepository(store),
		BcryptPasswords{Cost: bcrypt.MinCost},
		avatar.NewDiceBear(""), zap.NewNop())
	require.NoError(t, err)

	stored, _, err := repository.NewAccountRepository(store).Load(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored[0].Password, "$2"), "demo password should be hashed")

	_, err = svc.Login(ctx, "user", "pass")
	assert.NoError(t, err)

	_, err = svc.Login(ctx, "user", stored[0].Password)
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestNewPasswordHasher(t *testing.T) {
	tests := []struct {
		mode    string
		want    PasswordHasher
		wantErr bool
	}{
		{"", PlainPasswords{}, false},
		{"plain", PlainPasswords{}, false},
		{"bcrypt", BcryptPasswords{}, false},
		{"md5", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			got, err := NewPasswordHasher(tt.mode)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
