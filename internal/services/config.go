package services

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/samber/do"

	"lifequest/internal/datastore"
	"lifequest/internal/models"
	"lifequest/internal/pkg/caching"
)

type ServiceConfig struct {
	container     *do.Injector
	store         datastore.Store
	cache         caching.Cache
	readonlyCache caching.ReadOnlyCache
}

func NewServiceConfig(container *do.Injector) (*ServiceConfig, error) {
	store, err := do.Invoke[datastore.Store](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readOnlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	return &ServiceConfig{container, store, cache, readOnlyCache}, nil
}

func (service *ServiceConfig) GetStringConfig(ctx context.Context, key string, defaultValue string) (string, error) {
	callback := func() (string, error) {
		config, err := service.store.GetConfigByKey(ctx, key)
		if errors.Is(err, sql.ErrNoRows) {
			return defaultValue, nil
		}
		if err != nil {
			return defaultValue, err
		}
		return config.Value, nil
	}

	value, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyConfig(key), CACHE_TTL_5_MINS, callback)
	if err != nil {
		return defaultValue, err
	}

	return value, nil
}

func (service *ServiceConfig) GetIntConfig(ctx context.Context, key string, defaultValue int) (int, error) {
	callback := func() (int, error) {
		config, err := service.store.GetConfigByKey(ctx, key)
		if errors.Is(err, sql.ErrNoRows) {
			return defaultValue, nil
		}
		if err != nil {
			return defaultValue, err
		}

		intValue, err := strconv.Atoi(config.Value)
		if err != nil {
			return defaultValue, err
		}

		return intValue, nil
	}

	value, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyConfig(key), CACHE_TTL_5_MINS, callback)
	if err != nil {
		return defaultValue, err
	}

	return value, nil
}

func (service *ServiceConfig) SetConfig(ctx context.Context, key string, value string, description string) error {
	err := service.store.UpsertConfig(ctx, &models.Config{Key: key, Value: value, Description: description})
	if err != nil {
		return err
	}
	return service.cache.Delete(ctx, DBKeyConfig(key))
}

// SeedDefaults writes DefaultConfigs without overwriting values already set.
func (service *ServiceConfig) SeedDefaults(ctx context.Context) error {
	for _, config := range DefaultConfigs {
		_, err := service.store.GetConfigByKey(ctx, config.Key)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if err := service.SetConfig(ctx, config.Key, config.Value, config.Description); err != nil {
			return err
		}
	}
	return nil
}
