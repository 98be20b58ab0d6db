package generation

import (
	_ "embed"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"lifequest/internal/models"
)

//go:embed templates.yaml
var templatesYAML []byte

type textTemplate struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type rewardTemplate struct {
	XP        int `yaml:"xp"`
	Coins     int `yaml:"coins"`
	LifeScore int `yaml:"lifescore"`
}

// Templates is the deterministic content bank used when no provider answers.
type Templates struct {
	Rewards         map[string]rewardTemplate            `yaml:"rewards"`
	Missions        map[string]map[string][]textTemplate `yaml:"missions"`
	Steps           map[string][]textTemplate            `yaml:"steps"`
	Tips            map[string][]string                  `yaml:"tips"`
	Vulnerabilities map[string]string                    `yaml:"vulnerabilities"`
}

func LoadTemplates() (*Templates, error) {
	var t Templates
	if err := yaml.Unmarshal(templatesYAML, &t); err != nil {
		return nil, fmt.Errorf("failed to parse fallback templates: %w", err)
	}

	for _, category := range models.Categories {
		for _, difficulty := range models.Difficulties {
			if len(t.Missions[category][difficulty]) == 0 {
				return nil, fmt.Errorf("fallback templates missing %s/%s missions", category, difficulty)
			}
		}
		if len(t.Steps[category]) != models.STEPS_PER_MISSION {
			return nil, fmt.Errorf("fallback templates need %d steps for %s", models.STEPS_PER_MISSION, category)
		}
	}
	for _, difficulty := range models.Difficulties {
		if _, ok := t.Rewards[difficulty]; !ok {
			return nil, fmt.Errorf("fallback templates missing %s rewards", difficulty)
		}
	}

	return &t, nil
}

func pick(key string, n int) int {
	if n <= 1 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}

// CategoryOrder ranks categories for a profile: declared preferences first,
// then categories implied by vulnerabilities and life situation, then the rest.
func (t *Templates) CategoryOrder(profile *models.Profile) []string {
	seen := map[string]bool{}
	order := make([]string, 0, len(models.Categories))
	add := func(c string) {
		c = strings.ToLower(strings.TrimSpace(c))
		if models.IsCategory(c) && !seen[c] {
			seen[c] = true
			order = append(order, c)
		}
	}

	if profile != nil {
		for _, pref := range profile.InsurancePreferences {
			add(pref)
		}
		for _, v := range profile.Vulnerabilities {
			add(t.Vulnerabilities[strings.ToLower(strings.TrimSpace(v))])
		}
		if profile.FirstTimeBuyer {
			add(models.CATEGORY_FINANCIAL_GUARDIAN)
		}
		if profile.Dependents > 0 {
			add(models.CATEGORY_FAMILY_PROTECTION)
		}
		if profile.AgeValue() >= 50 {
			add(models.CATEGORY_HEALTH)
		}
		if profile.AgeValue() > 0 && profile.AgeValue() < 30 {
			add(models.CATEGORY_LIFESTYLE)
		}
	}

	for _, c := range models.Categories {
		add(c)
	}
	return order
}

func profileKey(profile *models.Profile) string {
	if profile == nil {
		return "anonymous"
	}
	return fmt.Sprintf("%s|%d|%t", strings.ToLower(profile.Nationality), profile.AgeValue(), profile.FirstTimeBuyer)
}

func (t *Templates) mission(category string, difficulty string, key string) *models.Mission {
	options := t.Missions[category][difficulty]
	idx := pick(key+"|"+category+"|"+difficulty, len(options))
	tpl := options[idx]
	reward := t.Rewards[difficulty]

	return &models.Mission{
		ID:              fmt.Sprintf("fb-%s-%s-%d", category, difficulty, idx+1),
		Title:           tpl.Title,
		Description:     tpl.Description,
		Category:        category,
		Difficulty:      difficulty,
		XPReward:        reward.XP,
		LifeScoreImpact: reward.LifeScore,
		CoinReward:      reward.Coins,
		RecurrenceType:  models.RECURRENCE_NONE,
		AIGenerated:     false,
		IsActive:        true,
	}
}

// FallbackMissions returns one mission per difficulty, easy to hard.
func (t *Templates) FallbackMissions(profile *models.Profile) []*models.Mission {
	order := t.CategoryOrder(profile)
	key := profileKey(profile)

	missions := make([]*models.Mission, 0, len(models.Difficulties))
	for i, difficulty := range models.Difficulties {
		missions = append(missions, t.mission(order[i%len(order)], difficulty, key))
	}
	return missions
}

// FallbackAdaptiveMissions rotates the category ranking by day so the daily set
// changes from one day to the next while staying reproducible.
func (t *Templates) FallbackAdaptiveMissions(profile *models.Profile, stats *models.UserStats, day time.Time) []*models.Mission {
	order := t.CategoryOrder(profile)
	offset := day.YearDay() % len(order)
	key := profileKey(profile) + "|" + day.Format("2006-01-02")

	missions := make([]*models.Mission, 0, len(models.Difficulties))
	for i, difficulty := range models.Difficulties {
		m := t.mission(order[(offset+i)%len(order)], difficulty, key)
		m.ID = ""
		m.RecurrenceType = models.RECURRENCE_DAILY
		if stats != nil && stats.CurrentStreak >= 7 {
			m.XPReward += m.XPReward / 10
		}
		missions = append(missions, m)
	}
	return missions
}

func (t *Templates) DefaultMission(category string, difficulty string, profile *models.Profile) *models.Mission {
	if !models.IsCategory(category) {
		category = t.CategoryOrder(profile)[0]
	}
	return t.mission(category, difficulty, profileKey(profile))
}

func (t *Templates) DefaultStep(category string, number int) *models.MissionStep {
	steps, ok := t.Steps[category]
	if !ok {
		steps = t.Steps[models.CATEGORY_LIFESTYLE]
	}
	tpl := steps[(number-1)%len(steps)]
	return &models.MissionStep{
		StepNumber:  number,
		Title:       tpl.Title,
		Description: tpl.Description,
		Status:      models.STEP_STATUS_PENDING,
	}
}

func (t *Templates) FallbackSteps(mission *models.Mission) []*models.MissionStep {
	steps := make([]*models.MissionStep, 0, models.STEPS_PER_MISSION)
	for n := 1; n <= models.STEPS_PER_MISSION; n++ {
		step := t.DefaultStep(mission.Category, n)
		if n == 1 && mission.Title != "" {
			step.Description = fmt.Sprintf("%s (%s)", step.Description, mission.Title)
		}
		steps = append(steps, step)
	}
	return steps
}

func (t *Templates) FallbackDailyBrief(profile *models.Profile, stats *models.UserStats, day time.Time) *models.DailyBrief {
	order := t.CategoryOrder(profile)
	focus := order[day.YearDay()%len(order)]

	name := "there"
	if profile != nil && profile.Name != "" {
		name = profile.Name
	}

	greeting := fmt.Sprintf("Good day, %s!", name)
	if stats != nil && stats.CurrentStreak > 1 {
		greeting = fmt.Sprintf("Good day, %s! You are on a %d day streak.", name, stats.CurrentStreak)
	}

	return &models.DailyBrief{
		Date:     day.Format("2006-01-02"),
		Greeting: greeting,
		Focus:    focus,
		Tips:     append([]string(nil), t.Tips[focus]...),
	}
}

func (t *Templates) FallbackPrediction(profile *models.Profile, scenario string) *models.ScenarioPrediction {
	risk := "low"
	score := 0
	if profile != nil {
		score += len(profile.Vulnerabilities)
		if profile.AgeValue() >= 50 {
			score++
		}
		if profile.Dependents > 0 {
			score++
		}
	}
	switch {
	case score >= 3:
		risk = "high"
	case score >= 1:
		risk = "medium"
	}

	focus := t.CategoryOrder(profile)[0]
	return &models.ScenarioPrediction{
		Scenario:        scenario,
		Outcome:         fmt.Sprintf("With your current habits the %s scenario carries a %s level of risk.", strings.ReplaceAll(focus, "_", " "), risk),
		RiskLevel:       risk,
		Recommendations: append([]string(nil), t.Tips[focus]...),
	}
}
