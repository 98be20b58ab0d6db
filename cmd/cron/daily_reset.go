package main

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/samber/do"
	"go.uber.org/zap"

	"lifequest/internal/datastore"
	"lifequest/internal/services"
)

const DAILY_RESET_USER_TIMEOUT = 2 * time.Minute

// DailyResetJob issues the daily mission set for every user with a profile so
// it is ready before they open the app.
type DailyResetJob struct {
	store          datastore.Store
	serviceConfig  *services.ServiceConfig
	serviceMission *services.ServiceMission
	logger         *zap.Logger
}

func NewDailyResetJob(injector *do.Injector) (*DailyResetJob, error) {
	store, err := do.Invoke[datastore.Store](injector)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*services.ServiceConfig](injector)
	if err != nil {
		return nil, err
	}

	serviceMission, err := do.Invoke[*services.ServiceMission](injector)
	if err != nil {
		return nil, err
	}

	logger, err := do.Invoke[*zap.Logger](injector)
	if err != nil {
		return nil, err
	}

	return &DailyResetJob{store, serviceConfig, serviceMission, logger.Named("daily_reset")}, nil
}

func (j *DailyResetJob) Start(cronRunner *cron.Cron) error {
	spec, err := j.serviceConfig.GetStringConfig(context.Background(), services.CONFIG_CRONJOB_TIME_DAILY_RESET, services.DEFAULT_CRONJOB_TIME_DAILY_RESET)
	if err != nil {
		j.logger.Warn("cron spec unreadable, using default", zap.Error(err))
	}

	_, err = cronRunner.AddFunc(spec, j.Run)
	if err != nil {
		return err
	}

	j.logger.Info("daily reset scheduled", zap.String("cron", spec))
	return nil
}

func (j *DailyResetJob) Run() {
	ctx := context.Background()
	started := time.Now()

	userIDs, err := j.store.ListProfiledUserIDs(ctx)
	if err != nil {
		j.logger.Error("list profiled users failed", zap.Error(err))
		return
	}

	var issued, skipped, failed int
	for _, userID := range userIDs {
		userCtx, cancel := context.WithTimeout(ctx, DAILY_RESET_USER_TIMEOUT)
		daily, err := j.serviceMission.ResetDailyMissions(userCtx, userID)
		cancel()

		switch {
		case err != nil:
			failed++
			j.logger.Error("daily reset failed", zap.String("user_id", userID), zap.Error(err))
		case daily.AlreadyReset:
			skipped++
		default:
			issued++
		}
	}

	j.logger.Info("daily reset done",
		zap.Int("users", len(userIDs)),
		zap.Int("issued", issued),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
		zap.Duration("took", time.Since(started)))
}
