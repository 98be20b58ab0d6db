package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/samber/do"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"lifequest/internal/container"
	"lifequest/internal/datastore"
	"lifequest/internal/datastore/memory_store"
	"lifequest/internal/generation"
	"lifequest/internal/interfaces"
	"lifequest/internal/models"
	"lifequest/internal/pkg/caching"
	"lifequest/internal/pkg/limiter"
	"lifequest/internal/pkg/locker"
	"lifequest/internal/services"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeProvider struct {
	mu      sync.Mutex
	calls   int
	respond func(prompt string) (string, error)
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.respond(prompt)
}

func (f *fakeProvider) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var errStoreDown = errors.New("store down")

// flakyStore fails selected writes and passes everything else through.
type flakyStore struct {
	datastore.Store

	mu                 sync.Mutex
	completionFailures int
	failAchievementID  string
}

func (s *flakyStore) CompleteUserMission(ctx context.Context, userMission *models.UserMission, fromStatuses []string, user *models.User) (bool, error) {
	s.mu.Lock()
	fail := s.completionFailures > 0
	if fail {
		s.completionFailures--
	}
	s.mu.Unlock()

	if fail {
		return false, errStoreDown
	}
	return s.Store.CompleteUserMission(ctx, userMission, fromStatuses, user)
}

func (s *flakyStore) InsertUserAchievement(ctx context.Context, userAchievement *models.UserAchievement) error {
	if userAchievement.AchievementID == s.failAchievementID {
		return errStoreDown
	}
	return s.Store.InsertUserAchievement(ctx, userAchievement)
}

type fixture struct {
	ctx      context.Context
	injector *do.Injector
	store    *memory_store.Store
	board    *memory_store.Leaderboard
	now      time.Time

	config       *services.ServiceConfig
	users        *services.ServiceUser
	profiles     *services.ServiceProfile
	gamification *services.ServiceGamification
	achievements *services.ServiceAchievement
	missions     *services.ServiceMission
	scenarios    *services.ServiceScenario
	leaderboard  *services.ServiceLeaderboard
}

func newFixture(t *testing.T, provider generation.Provider) *fixture {
	t.Helper()
	return newFixtureWithStore(t, provider, nil)
}

// newFixtureWithStore lets wrap sit between the services and the memory store.
// f.store still reaches the memory store directly.
func newFixtureWithStore(t *testing.T, provider generation.Provider, wrap func(datastore.Store) datastore.Store) *fixture {
	t.Helper()

	f := &fixture{
		ctx:   context.Background(),
		store: memory_store.New(),
		board: memory_store.NewLeaderboard(),
		now:   time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }

	logger := zaptest.NewLogger(t)
	cache := caching.NewCacheLocal(1000, time.Hour)

	templates, err := generation.LoadTemplates()
	require.NoError(t, err)

	injector := do.New()
	do.ProvideValue[*zap.Logger](injector, logger)
	do.ProvideNamedValue[func() time.Time](injector, "clock", clock)
	var store datastore.Store = f.store
	if wrap != nil {
		store = wrap(f.store)
	}
	do.ProvideValue[datastore.Store](injector, store)
	do.ProvideValue[caching.Cache](injector, cache)
	do.ProvideValue[caching.ReadOnlyCache](injector, cache)
	do.ProvideValue[interfaces.Locker](injector, locker.NewLocalLocker())
	do.ProvideValue[interfaces.Limiter](injector, limiter.NewLocalLimiter(clock))
	do.ProvideValue[interfaces.Leaderboard](injector, f.board)
	do.ProvideValue[interfaces.Generator](injector, generation.NewAdapter(provider, templates, time.Second, logger))
	container.ProvideServices(injector)
	f.injector = injector

	f.config = do.MustInvoke[*services.ServiceConfig](injector)
	f.users = do.MustInvoke[*services.ServiceUser](injector)
	f.profiles = do.MustInvoke[*services.ServiceProfile](injector)
	f.gamification = do.MustInvoke[*services.ServiceGamification](injector)
	f.achievements = do.MustInvoke[*services.ServiceAchievement](injector)
	f.missions = do.MustInvoke[*services.ServiceMission](injector)
	f.scenarios = do.MustInvoke[*services.ServiceScenario](injector)
	f.leaderboard = do.MustInvoke[*services.ServiceLeaderboard](injector)

	require.NoError(t, f.achievements.SeedDefaults(f.ctx))
	return f
}

func intPtr(v int) *int { return &v }

func completeProfile() *models.Profile {
	return &models.Profile{
		Name:                 "Ana",
		Age:                  intPtr(34),
		Gender:               "female",
		Nationality:          "PT",
		InsurancePreferences: []string{models.CATEGORY_HEALTH},
		Vulnerabilities:      []string{"debt"},
	}
}

// newUser creates a user with the given coin balance and, optionally, a
// complete profile.
func (f *fixture) newUser(t *testing.T, id string, coins int, withProfile bool) *models.User {
	t.Helper()

	user, err := f.users.FindOrCreateUser(f.ctx, &models.UserFromAuth{ID: id, Username: id})
	require.NoError(t, err)

	if coins > 0 {
		user.Coins = coins
		require.NoError(t, f.store.UpdateUser(f.ctx, user))
	}
	if withProfile {
		_, err := f.profiles.UpsertProfile(f.ctx, id, completeProfile())
		require.NoError(t, err)
	}
	return user
}

func (f *fixture) user(t *testing.T, id string) *models.User {
	t.Helper()
	user, err := f.store.FindUserByID(f.ctx, id)
	require.NoError(t, err)
	return user
}

func (f *fixture) addMission(t *testing.T, mission *models.Mission) *models.Mission {
	t.Helper()
	mission.IsActive = true
	if mission.RecurrenceType == "" {
		mission.RecurrenceType = models.RECURRENCE_NONE
	}
	created, err := f.store.InsertMissionIfNotExists(f.ctx, mission)
	require.NoError(t, err)
	require.True(t, created)
	return mission
}
