package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"scribbles/internal/model"
	"scribbles/internal/storage"
)

// accountRepository implements AccountRepository over a storage.Store
type accountRepository struct {
	store storage.Store
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(store storage.Store) AccountRepository {
	return &accountRepository{store: store}
}

// Load reads the full account list
func (r *accountRepository) Load(ctx context.Context) ([]model.Account, bool, error) {
	data, found, err := r.store.Load(ctx, storage.AccountsKey)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load accounts: %w", err)
	}
	if !found {
		return nil, false, nil
	}

	var accounts []model.Account
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, false, fmt.Errorf("failed to decode accounts: %w", err)
	}
	return accounts, true, nil
}

// Save writes the full account list, passwords included
func (r *accountRepository) Save(ctx context.Context, accounts []model.Account) error {
	if accounts == nil {
		accounts = []model.Account{}
	}
	data, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("failed to encode accounts: %w", err)
	}
	if err := r.store.Save(ctx, storage.AccountsKey, data); err != nil {
		return fmt.Errorf("failed to save accounts: %w", err)
	}
	return nil
}

type sessionRepository struct {
	store storage.Store
}

// NewSessionRepository creates a repository for the single active session
func NewSessionRepository(store storage.Store) SessionRepository {
	return &sessionRepository{store: store}
}

// Load returns the persisted session, or nil when nobody is logged in
func (r *sessionRepository) Load(ctx context.Context) (*model.Session, error) {
	data, found, err := r.store.Load(ctx, storage.SessionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !found {
		return nil, nil
	}

	var s model.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if s.Username == "" {
		return nil, nil
	}
	return &s, nil
}

func (r *sessionRepository) Save(ctx context.Context, session model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.store.Save(ctx, storage.SessionKey, data); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *sessionRepository) Clear(ctx context.Context) error {
	if err := r.store.Delete(ctx, storage.SessionKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
