package cli

import (
	"context"
	"log/slog"

	"github.com/shaiso/ifs/internal/config"
	"github.com/shaiso/ifs/internal/repo"
)

// Env — зависимости команд, создаваемые лениво.
type Env struct {
	Config func() (config.Config, error)
	Store  func(ctx context.Context, cfg config.Config) (repo.FlightStore, func(), error)
	Output func() *Output
	Logger func() *slog.Logger
}

// open загружает конфигурацию и открывает хранилище.
func (e Env) open(ctx context.Context) (config.Config, repo.FlightStore, func(), error) {
	cfg, err := e.Config()
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	store, closeFn, err := e.Store(ctx, cfg)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	return cfg, store, closeFn, nil
}

// OpenStore — реализация Env.Store по умолчанию.
func OpenStore(ctx context.Context, cfg config.Config) (repo.FlightStore, func(), error) {
	return repo.Open(ctx, cfg.DB.Driver, cfg.DB.URL, cfg.DB.SQLitePath)
}
