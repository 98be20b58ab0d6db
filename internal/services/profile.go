package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"go.uber.org/zap"

	"lifequest/internal/datastore"
	"lifequest/internal/models"
	"lifequest/internal/pkg/caching"
)

const (
	PROFILE_FIELD_NAME                  = "name"
	PROFILE_FIELD_AGE                   = "age"
	PROFILE_FIELD_GENDER                = "gender"
	PROFILE_FIELD_NATIONALITY           = "nationality"
	PROFILE_FIELD_INSURANCE_PREFERENCES = "insurance_preferences"

	MAX_AGE = 120
)

// ValidateProfile returns the missing required fields in a fixed order. A nil
// profile misses all of them.
func ValidateProfile(profile *models.Profile) []string {
	missing := []string{}
	if profile == nil {
		return append(missing,
			PROFILE_FIELD_NAME,
			PROFILE_FIELD_AGE,
			PROFILE_FIELD_GENDER,
			PROFILE_FIELD_NATIONALITY,
			PROFILE_FIELD_INSURANCE_PREFERENCES,
		)
	}

	if strings.TrimSpace(profile.Name) == "" {
		missing = append(missing, PROFILE_FIELD_NAME)
	}
	if profile.Age == nil || *profile.Age <= 0 {
		missing = append(missing, PROFILE_FIELD_AGE)
	}
	if strings.TrimSpace(profile.Gender) == "" {
		missing = append(missing, PROFILE_FIELD_GENDER)
	}
	if strings.TrimSpace(profile.Nationality) == "" {
		missing = append(missing, PROFILE_FIELD_NATIONALITY)
	}
	if len(profile.InsurancePreferences) == 0 {
		missing = append(missing, PROFILE_FIELD_INSURANCE_PREFERENCES)
	}
	return missing
}

type ServiceProfile struct {
	container *do.Injector
	store     datastore.Store
	cache     caching.Cache
	logger    *zap.Logger
}

func NewServiceProfile(container *do.Injector) (*ServiceProfile, error) {
	store, err := do.Invoke[datastore.Store](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	return &ServiceProfile{container, store, cache, invokeLogger(container)}, nil
}

// GetProfile returns a nil profile without error when the user never filled one.
func (service *ServiceProfile) GetProfile(ctx context.Context, userID string) (*models.User, *models.Profile, error) {
	user, err := service.store.FindUserByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	if err != nil {
		return nil, nil, err
	}

	profile, err := service.findProfile(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return user, profile, nil
}

func (service *ServiceProfile) findProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := service.store.FindProfileByUserID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return profile, err
}

// RequireCompleteProfile is the gate in front of mission generation.
func (service *ServiceProfile) RequireCompleteProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := service.findProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, &ProfileIncompleteError{Missing: ValidateProfile(nil), NotFound: true}
	}
	if missing := ValidateProfile(profile); len(missing) > 0 {
		return nil, &ProfileIncompleteError{Missing: missing}
	}
	return profile, nil
}

func normalizeList(values []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func (service *ServiceProfile) UpsertProfile(ctx context.Context, userID string, input *models.Profile) (*models.Profile, error) {
	if input == nil {
		return nil, errorx.Wrap(errors.New("profile is required"), errorx.Validation)
	}
	if _, err := service.store.FindUserByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
		}
		return nil, err
	}

	profile := *input
	profile.UserID = userID
	profile.Name = strings.TrimSpace(profile.Name)
	profile.Gender = strings.ToLower(strings.TrimSpace(profile.Gender))
	profile.Nationality = strings.TrimSpace(profile.Nationality)
	profile.InsurancePreferences = normalizeList(profile.InsurancePreferences)
	profile.Vulnerabilities = normalizeList(profile.Vulnerabilities)

	if profile.Age != nil && (*profile.Age < 0 || *profile.Age > MAX_AGE) {
		return nil, errorx.Wrap(fmt.Errorf("age must be between 0 and %d", MAX_AGE), errorx.Validation)
	}
	if profile.Dependents < 0 {
		return nil, errorx.Wrap(errors.New("dependents must not be negative"), errorx.Validation)
	}
	for _, pref := range profile.InsurancePreferences {
		if !models.IsCategory(pref) {
			return nil, errorx.Wrap(fmt.Errorf("unknown insurance preference: %s", pref), errorx.Validation)
		}
	}

	if err := service.store.UpsertProfile(ctx, &profile); err != nil {
		return nil, err
	}

	service.logger.Info("profile updated",
		zap.String("user_id", userID),
		zap.Strings("missing", ValidateProfile(&profile)))
	return &profile, nil
}
