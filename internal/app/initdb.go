package app

import (
	"context"
	"fmt"

	credRepo "github.com/IT-Nick/exambot/internal/domain/credentials/repository"
	msgRepo "github.com/IT-Nick/exambot/internal/domain/messages/repository"
	reviewsRepo "github.com/IT-Nick/exambot/internal/domain/reviews/repository"
	"github.com/IT-Nick/exambot/internal/infra/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Storage - хранилища бота: токены, ожидающие причины и тексты сообщений
type Storage struct {
	Credentials credRepo.CredentialRepository
	Reviews     reviewsRepo.ReviewRepository
	Messages    msgRepo.MessageStore

	db *pgxpool.Pool
}

// Close закрывает пул соединений, если он есть
func (s *Storage) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// InitDatabase устанавливает подключение к базе данных
func InitDatabase(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	const op = "app.InitDatabase"

	connConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse database config: %w", op, err)
	}

	db, err := pgxpool.NewWithConfig(ctx, connConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create database pool: %w", op, err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	log.Info().Str("host", cfg.Database.Host).Str("db", cfg.Database.Name).Msg("database connected")
	return db, nil
}

// InitStorage выбирает хранилище по storage.type: postgres или память процесса
func InitStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg.Storage.Type == config.StorageMemory {
		log.Warn().Msg("using in-memory storage, tokens and pending reviews are lost on restart")
		return &Storage{
			Credentials: credRepo.NewMemoryRepository(),
			Reviews:     reviewsRepo.NewMemoryRepository(),
			Messages:    msgRepo.NewMemoryRepository(nil),
		}, nil
	}

	db, err := InitDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Storage{
		Credentials: credRepo.NewPostgresRepository(db),
		Reviews:     reviewsRepo.NewPostgresRepository(db),
		Messages:    msgRepo.NewMessageRepository(db),
		db:          db,
	}, nil
}
