package container

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/hiendaovinh/toolkit/pkg/db"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"lifequest/internal/datastore"
	"lifequest/internal/datastore/memory_store"
	"lifequest/internal/datastore/redis_store"
	"lifequest/internal/generation"
	"lifequest/internal/interfaces"
	"lifequest/internal/pkg/caching"
	"lifequest/internal/pkg/limiter"
	"lifequest/internal/pkg/locker"
	"lifequest/internal/services"
)

const (
	STORE_POSTGRES = "postgres"
	STORE_MEMORY   = "memory"
)

var optionalEnvs = []string{
	"STORE",
	"DB_DSN",
	"DB_PASSWORD",
	"DB_DSN_READONLY",
	"DB_PASSWORD_READONLY",
	"REDIS_CACHE",
	"CLUSTER_REDIS_CACHE",
	"REDIS_MUTEX",
	"CLUSTER_REDIS_MUTEX",
	"REDIS_LIMITER",
	"CLUSTER_REDIS_LIMITER",
	"REDIS_DB",
	"CLUSTER_REDIS_DB",
	"API_MODE",
	"API_ORIGINS",
	"LOG_LEVEL",
	"AI_ENABLED",
	"AI_PROVIDER",
	"AI_MODEL",
	"AI_API_KEY",
	"AI_BASE_URL",
	"AI_TIMEOUT_SECONDS",
}

// New builds the production container. vs holds the required envs already
// checked by the caller; optional envs are read here.
func New(vs map[string]string) *do.Injector {
	injector := do.New()
	for _, key := range optionalEnvs {
		if _, ok := vs[key]; !ok {
			vs[key] = os.Getenv(key)
		}
	}

	if vs["API_MODE"] == "" {
		vs["API_MODE"] = services.SERVER_MODE_PRODUCTION
	}
	if vs["API_ORIGINS"] == "" {
		vs["API_ORIGINS"] = "*"
	}
	if vs["STORE"] == "" {
		vs["STORE"] = STORE_MEMORY
		if vs["DB_DSN"] != "" {
			vs["STORE"] = STORE_POSTGRES
		}
	}

	do.ProvideNamedValue(injector, "envs", vs)

	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		return NewLogger(vs["API_MODE"], vs["LOG_LEVEL"])
	})

	provideStore(injector, vs)
	provideRedis(injector, vs)
	provideInfra(injector, vs)
	provideGeneration(injector, vs)

	do.Provide(injector, func(i *do.Injector) (*services.Authentication, error) {
		return services.NewAuthentication(vs["JWT_SECRET"])
	})

	ProvideServices(injector)
	return injector
}

func NewLogger(mode string, level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if mode == services.SERVER_MODE_DEVELOPMENT || mode == services.SERVER_MODE_DEBUG {
		cfg = zap.NewDevelopmentConfig()
	}
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, err
		}
		cfg.Level = lvl
	}
	return cfg.Build()
}

func provideStore(injector *do.Injector, vs map[string]string) {
	if vs["STORE"] != STORE_POSTGRES {
		do.Provide(injector, func(i *do.Injector) (datastore.Store, error) {
			return memory_store.New(), nil
		})
		return
	}

	do.Provide(injector, func(i *do.Injector) (*bun.DB, error) {
		return datastore.OpenPostgres(vs["DB_DSN"], vs["DB_PASSWORD"]), nil
	})

	do.ProvideNamed(injector, "db-readonly", func(i *do.Injector) (*bun.DB, error) {
		if vs["DB_DSN_READONLY"] == "" {
			return do.Invoke[*bun.DB](i)
		}
		return datastore.OpenPostgres(vs["DB_DSN_READONLY"], vs["DB_PASSWORD_READONLY"]), nil
	})

	do.Provide(injector, func(i *do.Injector) (datastore.Store, error) {
		postgresDB, err := do.Invoke[*bun.DB](i)
		if err != nil {
			return nil, err
		}

		readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](i, "db-readonly")
		if err != nil {
			return nil, err
		}

		return datastore.NewPostgresStore(postgresDB, readonlyPostgresDB), nil
	})
}

func redisConfigured(vs map[string]string, name string) bool {
	return vs["CLUSTER_"+name] != "" || vs[name] != ""
}

func provideRedis(injector *do.Injector, vs map[string]string) {
	for _, entry := range []struct{ service, env string }{
		{"redis-cache", "REDIS_CACHE"},
		{"redis-mutex", "REDIS_MUTEX"},
		{"redis-limiter", "REDIS_LIMITER"},
		{"redis-db", "REDIS_DB"},
	} {
		env := entry.env
		do.ProvideNamed(injector, entry.service, func(i *do.Injector) (redis.UniversalClient, error) {
			clusterURL := vs["CLUSTER_"+env]
			if clusterURL != "" {
				clusterOpts, err := redis.ParseClusterURL(clusterURL)
				if err != nil {
					return nil, err
				}
				return redis.NewClusterClient(clusterOpts), nil
			}
			return db.InitRedis(&db.RedisConfig{
				URL: vs[env],
			})
		})
	}
}

func provideInfra(injector *do.Injector, vs map[string]string) {
	do.Provide(injector, func(i *do.Injector) (caching.Cache, error) {
		if !redisConfigured(vs, "REDIS_CACHE") {
			return caching.NewCacheLocal(caching.LOCAL_CACHE_SIZE, services.CACHE_TTL_1_HOUR), nil
		}

		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-cache")
		if err != nil {
			return nil, err
		}
		return caching.NewCacheRedis(dbRedis, true)
	})

	do.Provide(injector, func(i *do.Injector) (caching.ReadOnlyCache, error) {
		return do.Invoke[caching.Cache](i)
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.Locker, error) {
		if !redisConfigured(vs, "REDIS_MUTEX") {
			return locker.NewLocalLocker(), nil
		}

		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-mutex")
		if err != nil {
			return nil, err
		}

		logger, err := do.Invoke[*zap.Logger](i)
		if err != nil {
			return nil, err
		}

		pool := goredis.NewPool(dbRedis)
		return locker.NewRedsyncLocker(redsync.New(pool), logger), nil
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.Limiter, error) {
		if !redisConfigured(vs, "REDIS_LIMITER") {
			return limiter.NewLocalLimiter(nil), nil
		}

		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-limiter")
		if err != nil {
			return nil, err
		}
		return limiter.NewLimiter(dbRedis)
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.Leaderboard, error) {
		if !redisConfigured(vs, "REDIS_DB") {
			return memory_store.NewLeaderboard(), nil
		}

		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-db")
		if err != nil {
			return nil, err
		}
		return redis_store.NewLeaderboard(dbRedis), nil
	})
}

func GenerationConfig(vs map[string]string) *generation.Config {
	enabled, _ := strconv.ParseBool(vs["AI_ENABLED"])
	timeout := generation.DEFAULT_TIMEOUT
	if seconds, err := strconv.Atoi(vs["AI_TIMEOUT_SECONDS"]); err == nil && seconds > 0 {
		timeout = time.Duration(seconds) * time.Second
	}
	return &generation.Config{
		Enabled:  enabled,
		Provider: strings.ToLower(strings.TrimSpace(vs["AI_PROVIDER"])),
		Model:    vs["AI_MODEL"],
		APIKey:   vs["AI_API_KEY"],
		BaseURL:  vs["AI_BASE_URL"],
		Timeout:  timeout,
	}
}

func provideGeneration(injector *do.Injector, vs map[string]string) {
	do.Provide(injector, func(i *do.Injector) (generation.Provider, error) {
		return generation.NewProvider(GenerationConfig(vs))
	})

	do.Provide(injector, func(i *do.Injector) (*generation.Adapter, error) {
		logger, err := do.Invoke[*zap.Logger](i)
		if err != nil {
			return nil, err
		}

		provider, err := do.Invoke[generation.Provider](i)
		if err != nil {
			return nil, err
		}

		templates, err := generation.LoadTemplates()
		if err != nil {
			return nil, err
		}

		cfg := GenerationConfig(vs)
		adapter := generation.NewAdapter(provider, templates, cfg.Timeout, logger)
		logger.Info("content generation configured",
			zap.String("provider", adapter.ProviderName()),
			zap.Bool("live", adapter.Enabled()))
		return adapter, nil
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.Generator, error) {
		return do.Invoke[*generation.Adapter](i)
	})
}

// ProvideServices registers every service constructor. Infrastructure must be
// provided separately.
func ProvideServices(injector *do.Injector) {
	do.Provide(injector, services.NewServiceConfig)
	do.Provide(injector, services.NewServiceProfile)
	do.Provide(injector, services.NewServiceUser)
	do.Provide(injector, services.NewServiceGamification)
	do.Provide(injector, services.NewServiceAchievement)
	do.Provide(injector, services.NewServiceMission)
	do.Provide(injector, services.NewServiceScenario)
	do.Provide(injector, services.NewServiceLeaderboard)
}
