package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/smart-lock/internal/config"
	"github.com/taoyao-code/smart-lock/internal/storage"
	pgstorage "github.com/taoyao-code/smart-lock/internal/storage/pg"
	redisstorage "github.com/taoyao-code/smart-lock/internal/storage/redis"
)

// OpenStore 按 storage.driver 打开键值存储，返回的 close 总是可调用
func OpenStore(ctx context.Context, cfg cfgpkg.StorageConfig, log *zap.Logger) (storage.KV, func(), error) {
	switch cfg.Driver {
	case cfgpkg.StorageMemory, "":
		log.Warn("using in-memory password store, changes are lost on restart")
		return storage.NewMemory(), func() {}, nil

	case cfgpkg.StorageRedis:
		client, err := redisstorage.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, func() {}, err
		}
		log.Info("redis store ready", zap.String("addr", cfg.Redis.Addr), zap.Int("db", cfg.Redis.DB))
		return redisstorage.NewStore(client), func() { _ = client.Close() }, nil

	case cfgpkg.StoragePostgres:
		pool, err := pgstorage.NewPool(ctx, cfg.Postgres, log)
		if err != nil {
			log.Error("db connect error", zap.Error(err))
			return nil, func() {}, err
		}
		s := pgstorage.NewStore(pool)
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, func() {}, err
		}
		log.Info("postgres store ready", zap.String("dsn", MaskDSN(cfg.Postgres.DSN)))
		return s, pool.Close, nil

	default:
		return nil, func() {}, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
