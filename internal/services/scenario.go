package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"go.uber.org/zap"

	"lifequest/internal/interfaces"
	"lifequest/internal/models"
)

// ServiceScenario runs "what if" predictions. A successful prediction counts
// towards the scenarios_completed achievements.
type ServiceScenario struct {
	container *do.Injector
	generator interfaces.Generator
	logger    *zap.Logger

	serviceMission      *ServiceMission
	serviceProfile      *ServiceProfile
	serviceGamification *ServiceGamification
	serviceAchievement  *ServiceAchievement
}

func NewServiceScenario(container *do.Injector) (*ServiceScenario, error) {
	generator, err := do.Invoke[interfaces.Generator](container)
	if err != nil {
		return nil, err
	}

	serviceMission, err := do.Invoke[*ServiceMission](container)
	if err != nil {
		return nil, err
	}

	serviceProfile, err := do.Invoke[*ServiceProfile](container)
	if err != nil {
		return nil, err
	}

	serviceGamification, err := do.Invoke[*ServiceGamification](container)
	if err != nil {
		return nil, err
	}

	serviceAchievement, err := do.Invoke[*ServiceAchievement](container)
	if err != nil {
		return nil, err
	}

	return &ServiceScenario{container, generator, invokeLogger(container), serviceMission, serviceProfile, serviceGamification, serviceAchievement}, nil
}

type ScenarioResult struct {
	Prediction   *models.ScenarioPrediction `json:"prediction"`
	Achievements []*models.Achievement      `json:"achievements"`
}

func (service *ServiceScenario) PredictScenario(ctx context.Context, userID string, scenario string) (*ScenarioResult, error) {
	scenario = strings.TrimSpace(scenario)
	if scenario == "" {
		return nil, errorx.Wrap(errors.New("scenario is required"), errorx.Validation)
	}
	if len(scenario) > MAX_SCENARIO_LENGTH {
		return nil, errorx.Wrap(fmt.Errorf("scenario must be at most %d characters", MAX_SCENARIO_LENGTH), errorx.Validation)
	}

	if err := service.serviceMission.allowGeneration(ctx, userID); err != nil {
		return nil, err
	}

	profile, err := service.serviceProfile.findProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	prediction, err := service.generator.PredictScenarioOutcome(ctx, profile, scenario)
	if err != nil {
		return nil, err
	}

	unlock, err := service.serviceMission.lockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, err := service.serviceGamification.RecordScenario(ctx, userID); err != nil {
		return nil, err
	}

	unlocked := []*models.Achievement{}
	stats, err := service.serviceAchievement.BuildStats(ctx, userID)
	if err == nil {
		unlocked, err = service.serviceAchievement.CheckAndUnlockAchievements(ctx, userID, stats)
	}
	if err != nil {
		service.logger.Error("achievement evaluation failed", zap.String("user_id", userID), zap.Error(err))
		unlocked = []*models.Achievement{}
	}

	return &ScenarioResult{Prediction: prediction, Achievements: unlocked}, nil
}
