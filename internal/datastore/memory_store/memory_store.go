package memory_store

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"lifequest/internal/datastore"
	"lifequest/internal/models"
)

var _ datastore.Store = (*Store)(nil)

// Store keeps every table in process memory. Records are copied on the way in
// and out so callers never share state with the store.
type Store struct {
	mu sync.RWMutex

	users            map[string]models.User
	profiles         map[string]models.Profile
	missions         map[string]models.Mission
	userMissions     map[string]models.UserMission
	steps            map[string]models.MissionStep
	achievements     map[string]models.Achievement
	userAchievements []models.UserAchievement
	dailySlots       []models.DailySlot
	configs          map[string]models.Config

	nextUserAchievementID int64
}

func New() *Store {
	return &Store{
		users:        map[string]models.User{},
		profiles:     map[string]models.Profile{},
		missions:     map[string]models.Mission{},
		userMissions: map[string]models.UserMission{},
		steps:        map[string]models.MissionStep{},
		achievements: map[string]models.Achievement{},
		configs:      map[string]models.Config{},
	}
}

func cloneStrings(v []string) []string {
	if v == nil {
		return nil
	}
	return append([]string(nil), v...)
}

func cloneProfile(p models.Profile) models.Profile {
	p.InsurancePreferences = cloneStrings(p.InsurancePreferences)
	p.Vulnerabilities = cloneStrings(p.Vulnerabilities)
	if p.Age != nil {
		age := *p.Age
		p.Age = &age
	}
	return p
}

func cloneUserMission(um models.UserMission) models.UserMission {
	if um.CompletedAt != nil {
		t := *um.CompletedAt
		um.CompletedAt = &t
	}
	um.Mission = nil
	um.Steps = nil
	return um
}

func cloneStep(s models.MissionStep) models.MissionStep {
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		s.CompletedAt = &t
	}
	return s
}

func (s *Store) FindUserByID(ctx context.Context, userID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return datastore.ErrDuplicate
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	s.users[user.ID] = *user
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return sql.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	s.users[user.ID] = *user
	return nil
}

func (s *Store) ListProfiledUserIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.profiles))
	for id := range s.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) FindProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	profile = cloneProfile(profile)
	return &profile, nil
}

func (s *Store) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if existing, ok := s.profiles[profile.UserID]; ok {
		profile.CreatedAt = existing.CreatedAt
	} else if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	s.profiles[profile.UserID] = cloneProfile(*profile)
	return nil
}

func (s *Store) FindMissionByID(ctx context.Context, missionID string) (*models.Mission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mission, ok := s.missions[missionID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &mission, nil
}

func (s *Store) FindMissionsByIDs(ctx context.Context, missionIDs []string) ([]*models.Mission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	missions := []*models.Mission{}
	for _, id := range missionIDs {
		if mission, ok := s.missions[id]; ok {
			missions = append(missions, &mission)
		}
	}
	return missions, nil
}

func (s *Store) InsertMissionIfNotExists(ctx context.Context, mission *models.Mission) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.missions[mission.ID]; ok {
		return false, nil
	}
	if mission.CreatedAt.IsZero() {
		mission.CreatedAt = time.Now()
	}
	stored := *mission
	stored.SlotToken = ""
	s.missions[mission.ID] = stored
	return true, nil
}

func (s *Store) ListActiveMissions(ctx context.Context, recurrence string) ([]*models.Mission, error) {
	return s.listMissions(func(m models.Mission) bool {
		return m.IsActive && (recurrence == "" || m.RecurrenceType == recurrence)
	}), nil
}

func (s *Store) ListCatalogMissions(ctx context.Context, userID string) ([]*models.Mission, error) {
	return s.listMissions(func(m models.Mission) bool {
		return m.IsActive && m.RecurrenceType == models.RECURRENCE_NONE &&
			(m.OwnerID == "" || m.OwnerID == userID)
	}), nil
}

func (s *Store) listMissions(match func(m models.Mission) bool) []*models.Mission {
	s.mu.RLock()
	defer s.mu.RUnlock()

	missions := []*models.Mission{}
	for _, m := range s.missions {
		if !match(m) {
			continue
		}
		mission := m
		missions = append(missions, &mission)
	}
	sort.Slice(missions, func(i, j int) bool {
		if missions[i].CreatedAt.Equal(missions[j].CreatedAt) {
			return missions[i].ID < missions[j].ID
		}
		return missions[i].CreatedAt.After(missions[j].CreatedAt)
	})
	return missions
}

func (s *Store) InsertUserMission(ctx context.Context, userMission *models.UserMission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.userMissions[userMission.ID]; ok {
		return datastore.ErrDuplicate
	}
	if userMission.IsActive() {
		for _, um := range s.userMissions {
			if um.UserID == userMission.UserID && um.IsActive() {
				return datastore.ErrDuplicate
			}
		}
	}
	s.userMissions[userMission.ID] = cloneUserMission(*userMission)
	return nil
}

func matchStatus(status string, statuses []string) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func (s *Store) FindUserMissions(ctx context.Context, filter *models.UserMissionFilter) ([]*models.UserMission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userMissions := []*models.UserMission{}
	for _, um := range s.userMissions {
		if filter.ID != "" && um.ID != filter.ID {
			continue
		}
		if filter.UserID != "" && um.UserID != filter.UserID {
			continue
		}
		if filter.MissionID != "" && um.MissionID != filter.MissionID {
			continue
		}
		if !matchStatus(um.Status, filter.Statuses) {
			continue
		}
		found := cloneUserMission(um)
		userMissions = append(userMissions, &found)
	}
	sort.Slice(userMissions, func(i, j int) bool {
		if userMissions[i].StartedAt.Equal(userMissions[j].StartedAt) {
			return userMissions[i].ID > userMissions[j].ID
		}
		return userMissions[i].StartedAt.After(userMissions[j].StartedAt)
	})
	return userMissions, nil
}

func (s *Store) CompleteUserMission(ctx context.Context, userMission *models.UserMission, fromStatuses []string, user *models.User) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.userMissions[userMission.ID]
	if !ok || !matchStatus(stored.Status, fromStatuses) {
		return false, nil
	}
	if user != nil {
		if _, ok := s.users[user.ID]; !ok {
			return false, sql.ErrNoRows
		}
		user.UpdatedAt = time.Now()
		s.users[user.ID] = *user
	}
	stored.Status = userMission.Status
	stored.CompletedAt = userMission.CompletedAt
	stored.CoinsEarned = userMission.CoinsEarned
	stored.XPEarned = userMission.XPEarned
	stored.LifeScoreChange = userMission.LifeScoreChange
	s.userMissions[userMission.ID] = cloneUserMission(stored)
	return true, nil
}

func (s *Store) CountCompletedUserMissions(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, um := range s.userMissions {
		if um.UserID == userID && um.Status == models.USER_MISSION_STATUS_COMPLETED {
			count++
		}
	}
	return count, nil
}

func (s *Store) CountActiveDays(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	days := map[string]bool{}
	for _, um := range s.userMissions {
		if um.UserID == userID && um.Status == models.USER_MISSION_STATUS_COMPLETED && um.CompletedAt != nil {
			days[um.CompletedAt.UTC().Format(time.DateOnly)] = true
		}
	}
	return len(days), nil
}

func (s *Store) InsertMissionSteps(ctx context.Context, steps []*models.MissionStep) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, step := range steps {
		if _, ok := s.steps[step.ID]; ok {
			return datastore.ErrDuplicate
		}
		for _, existing := range s.steps {
			if existing.UserMissionID == step.UserMissionID && existing.StepNumber == step.StepNumber {
				return datastore.ErrDuplicate
			}
		}
	}
	now := time.Now()
	for _, step := range steps {
		if step.CreatedAt.IsZero() {
			step.CreatedAt = now
		}
		s.steps[step.ID] = cloneStep(*step)
	}
	return nil
}

func (s *Store) FindMissionSteps(ctx context.Context, userMissionID string) ([]*models.MissionStep, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	steps := []*models.MissionStep{}
	for _, step := range s.steps {
		if step.UserMissionID == userMissionID {
			found := cloneStep(step)
			steps = append(steps, &found)
		}
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].StepNumber < steps[j].StepNumber })
	return steps, nil
}

func (s *Store) UpdateMissionStep(ctx context.Context, step *models.MissionStep) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.steps[step.ID]
	if !ok {
		return sql.ErrNoRows
	}
	stored.Status = step.Status
	stored.CompletedAt = step.CompletedAt
	s.steps[step.ID] = cloneStep(stored)
	return nil
}

func (s *Store) ListActiveAchievements(ctx context.Context) ([]*models.Achievement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	achievements := []*models.Achievement{}
	for _, a := range s.achievements {
		if a.IsActive {
			achievement := a
			achievements = append(achievements, &achievement)
		}
	}
	sort.Slice(achievements, func(i, j int) bool { return achievements[i].ID < achievements[j].ID })
	return achievements, nil
}

func (s *Store) UpsertAchievement(ctx context.Context, achievement *models.Achievement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.achievements[achievement.ID]; ok {
		achievement.CreatedAt = existing.CreatedAt
	} else if achievement.CreatedAt.IsZero() {
		achievement.CreatedAt = time.Now()
	}
	s.achievements[achievement.ID] = *achievement
	return nil
}

func (s *Store) FindUserAchievements(ctx context.Context, userID string) ([]*models.UserAchievement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userAchievements := []*models.UserAchievement{}
	for _, ua := range s.userAchievements {
		if ua.UserID == userID {
			found := ua
			userAchievements = append(userAchievements, &found)
		}
	}
	return userAchievements, nil
}

func (s *Store) InsertUserAchievement(ctx context.Context, userAchievement *models.UserAchievement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ua := range s.userAchievements {
		if ua.UserID == userAchievement.UserID && ua.AchievementID == userAchievement.AchievementID {
			return datastore.ErrDuplicate
		}
	}
	s.nextUserAchievementID++
	userAchievement.ID = s.nextUserAchievementID
	if userAchievement.UnlockedAt.IsZero() {
		userAchievement.UnlockedAt = time.Now()
	}
	s.userAchievements = append(s.userAchievements, *userAchievement)
	return nil
}

func (s *Store) FindDailySlots(ctx context.Context, userID string, date string) ([]*models.DailySlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slots := []*models.DailySlot{}
	for _, slot := range s.dailySlots {
		if slot.UserID == userID && slot.Date == date {
			found := slot
			slots = append(slots, &found)
		}
	}
	return slots, nil
}

func (s *Store) FindDailySlot(ctx context.Context, userID string, token string) (*models.DailySlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, slot := range s.dailySlots {
		if slot.UserID == userID && slot.Token == token {
			found := slot
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *Store) InsertDailySlot(ctx context.Context, slot *models.DailySlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.dailySlots {
		if existing.UserID != slot.UserID {
			continue
		}
		if existing.Token == slot.Token || (existing.Date == slot.Date && existing.Difficulty == slot.Difficulty) {
			return datastore.ErrDuplicate
		}
	}
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = time.Now()
	}
	s.dailySlots = append(s.dailySlots, *slot)
	return nil
}

func (s *Store) GetConfigByKey(ctx context.Context, key string) (*models.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	config, ok := s.configs[key]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &config, nil
}

func (s *Store) UpsertConfig(ctx context.Context, config *models.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.configs[config.Key] = *config
	return nil
}
