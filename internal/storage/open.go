package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"scribbles/internal/config"
)

// Open builds the Store selected by cfg.StorageDriver.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (Store, error) {
	log = log.Named("Storage")

	switch cfg.StorageDriver {
	case config.StorageMemory:
		log.Warn("Using in-memory storage; state is lost on exit")
		return NewMemoryStore(cfg.StorageKeyPrefix), nil

	case config.StorageFile:
		s, err := NewFileStore(cfg.StoragePath, cfg.StorageKeyPrefix)
		if err != nil {
			return nil, err
		}
		log.Info("Using file storage", zap.String("dir", cfg.StoragePath))
		return s, nil

	case config.StorageRedis:
		client, err := NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		s := NewRedisStore(client, cfg.StorageKeyPrefix)
		if err := s.Ping(ctx); err != nil {
			client.Close()
			return nil, err
		}
		log.Info("Using redis storage")
		return s, nil

	case config.StoragePostgres:
		db, err := ConnectPostgres(cfg)
		if err != nil {
			return nil, err
		}
		s, err := NewSQLStore(ctx, db, cfg.StorageKeyPrefix)
		if err != nil {
			db.Close()
			return nil, err
		}
		log.Info("Connected to database successfully", zap.String("host", cfg.DBHost), zap.String("db", cfg.DBName))
		return s, nil

	case config.StorageSQLite:
		db, err := ConnectSQLite(cfg.StoragePath)
		if err != nil {
			return nil, err
		}
		s, err := NewSQLStore(ctx, db, cfg.StorageKeyPrefix)
		if err != nil {
			db.Close()
			return nil, err
		}
		log.Info("Using sqlite storage", zap.String("path", cfg.StoragePath))
		return s, nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
