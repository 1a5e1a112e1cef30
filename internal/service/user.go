package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"scribbles/internal/avatar"
	"scribbles/internal/model"
	"scribbles/internal/repository"
)

// AccountService owns the registered-account list and the single active
// session. Memory is the source of truth; every change is written through.
type AccountService struct {
	accounts repository.AccountRepository
	sessions repository.SessionRepository
	hasher   PasswordHasher
	avatars  avatar.Generator
	log      *zap.Logger

	mu      sync.RWMutex
	list    []model.Account
	session *model.Session
}

// NewAccountService loads the persisted accounts and session. On first run the
// demo account is seeded and persisted immediately.
func NewAccountService(
	ctx context.Context,
	accounts repository.AccountRepository,
	sessions repository.SessionRepository,
	hasher PasswordHasher,
	avatars avatar.Generator,
	log *zap.Logger,
) (*AccountService, error) {
	s := &AccountService{
		accounts: accounts,
		sessions: sessions,
		hasher:   hasher,
		avatars:  avatars,
		log:      log.Named("AccountService"),
	}

	session, err := sessions.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.session = session

	list, found, err := accounts.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		list = defaultAccounts(avatars.URL(DemoUsername))
		for i := range list {
			hashed, err := hasher.Hash(list[i].Password)
			if err != nil {
				return nil, err
			}
			list[i].Password = hashed
		}
		if err := accounts.Save(ctx, list); err != nil {
			return nil, fmt.Errorf("seed accounts: %w", err)
		}
		s.log.Info("Seeded demo account", zap.String("username", DemoUsername))
	}
	s.list = list

	return s, nil
}

// Login authenticates against the account list and makes that account the
// session. Unknown usernames and wrong passwords both yield
// ErrInvalidCredentials; a failed attempt leaves any current session in place.
func (s *AccountService) Login(ctx context.Context, username, password string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(username)
	// Don't reveal whether username exists or not
	if idx < 0 || !s.hasher.Matches(s.list[idx].Password, password) {
		s.log.Info("Login rejected", zap.String("username", username))
		return nil, model.ErrInvalidCredentials
	}

	session := s.list[idx].Session()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	s.session = &session

	s.log.Info("Logged in", zap.String("username", username))
	out := session
	return &out, nil
}

// Signup registers a new account and logs it in.
func (s *AccountService) Signup(ctx context.Context, username, password, displayName string) (*model.Session, error) {
	if strings.TrimSpace(username) == "" {
		return nil, model.ErrUsernameRequired
	}
	if password == "" {
		return nil, model.ErrPasswordRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Case-sensitive: "Alice" and "alice" are different accounts.
	if s.indexOf(username) >= 0 {
		return nil, model.ErrUsernameExists
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(displayName) == "" {
		displayName = username
	}

	account := model.Account{
		Username:    username,
		Password:    hashed,
		DisplayName: displayName,
		Bio:         "",
		Avatar:      s.avatars.URL(username),
	}

	updated := append(append(make([]model.Account, 0, len(s.list)+1), s.list...), account)
	if err := s.accounts.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	// The account and the session land together or not at all
	session := account.Session()
	if err := s.sessions.Save(ctx, session); err != nil {
		if restoreErr := s.accounts.Save(ctx, s.list); restoreErr != nil {
			s.log.Error("Failed to restore accounts after session write failure",
				zap.String("username", username), zap.Error(restoreErr))
		}
		return nil, err
	}
	s.list = updated
	s.session = &session

	s.log.Info("Account created", zap.String("username", username))
	out := session
	return &out, nil
}

// Logout clears the session in memory and in storage. Memory is cleared even
// when the storage delete fails.
func (s *AccountService) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		s.log.Info("Logged out", zap.String("username", s.session.Username))
	}
	s.session = nil
	return s.sessions.Clear(ctx)
}

// IsAuthenticated reports whether a session is set.
func (s *AccountService) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session != nil
}

// CurrentSession returns a copy of the active session.
func (s *AccountService) CurrentSession() (model.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return model.Session{}, false
	}
	return *s.session, true
}

// Profile returns the public view of any registered account.
func (s *AccountService) Profile(username string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(username)
	if idx < 0 {
		return nil, model.ErrUserNotFound
	}
	profile := s.list[idx].Session()
	return &profile, nil
}

// AccountCount returns the number of registered accounts.
func (s *AccountService) AccountCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.list)
}

func (s *AccountService) indexOf(username string) int {
	for i := range s.list {
		if s.list[i].Username == username {
			return i
		}
	}
	return -1
}
