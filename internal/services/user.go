package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/do"
	"go.uber.org/zap"

	"lifequest/internal/datastore"
	"lifequest/internal/models"
	"lifequest/internal/pkg/rewardmath"
)

type ServiceUser struct {
	container *do.Injector
	store     datastore.Store
	logger    *zap.Logger

	serviceProfile *ServiceProfile
}

func NewServiceUser(container *do.Injector) (*ServiceUser, error) {
	store, err := do.Invoke[datastore.Store](container)
	if err != nil {
		return nil, err
	}

	serviceProfile, err := do.Invoke[*ServiceProfile](container)
	if err != nil {
		return nil, err
	}

	return &ServiceUser{container, store, invokeLogger(container), serviceProfile}, nil
}

type Me struct {
	User            *models.User          `json:"user"`
	Profile         *models.Profile       `json:"profile"`
	ProfileComplete bool                  `json:"profile_complete"`
	MissingFields   []string              `json:"missing_fields"`
	XPProgress      rewardmath.XPProgress `json:"xp_progress"`
	LifeScoreStatus string                `json:"lifescore_status"`
}

func NewUser(userAuth *models.UserFromAuth) *models.User {
	return &models.User{
		ID:        userAuth.ID,
		Username:  strings.ToLower(userAuth.Username),
		XP:        0,
		Level:     rewardmath.LevelFromXP(0),
		LifeScore: models.DEFAULT_LIFESCORE,
		Coins:     0,
	}
}

func (service *ServiceUser) FindUserByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := service.store.FindUserByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	return user, err
}

func (service *ServiceUser) FindOrCreateUser(ctx context.Context, userAuth *models.UserFromAuth) (*models.User, error) {
	if userAuth == nil || userAuth.ID == "" {
		return nil, errors.New("userAuth is nil")
	}

	user, err := service.store.FindUserByID(ctx, userAuth.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	user = NewUser(userAuth)
	err = service.store.CreateUser(ctx, user)
	if errors.Is(err, datastore.ErrDuplicate) {
		return service.store.FindUserByID(ctx, userAuth.ID)
	}
	if err != nil {
		return nil, err
	}

	service.logger.Info("user created", zap.String("user_id", user.ID))
	return user, nil
}

func (service *ServiceUser) Me(ctx context.Context, userID string) (*Me, error) {
	user, profile, err := service.serviceProfile.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	missing := ValidateProfile(profile)
	return &Me{
		User:            user,
		Profile:         profile,
		ProfileComplete: len(missing) == 0,
		MissingFields:   missing,
		XPProgress:      rewardmath.XPProgressFor(user.XP, user.Level),
		LifeScoreStatus: rewardmath.LifeScoreStatus(user.LifeScore),
	}, nil
}
