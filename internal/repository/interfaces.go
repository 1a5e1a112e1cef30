package repository

import (
	"context"

	"scribbles/internal/model"
)

// Repositories persist whole collections: every Save rewrites the full
// document under its key. found is false when nothing has been stored yet.

type AccountRepository interface {
	Load(ctx context.Context) (accounts []model.Account, found bool, err error)
	Save(ctx context.Context, accounts []model.Account) error
}

type SessionRepository interface {
	Load(ctx context.Context) (*model.Session, error)
	Save(ctx context.Context, session model.Session) error
	Clear(ctx context.Context) error
}

type PostRepository interface {
	Load(ctx context.Context) (posts []model.Post, found bool, err error)
	Save(ctx context.Context, posts []model.Post) error
}
