package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"lifequest/internal/models"
)

var ErrMalformedResponse = errors.New("malformed provider response")

type missionPayload struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	Difficulty      string `json:"difficulty"`
	XPReward        int    `json:"xp_reward"`
	LifeScoreImpact int    `json:"lifescore_impact"`
	CoinReward      int    `json:"coin_reward"`
}

type missionsPayload struct {
	Missions []missionPayload `json:"missions"`
}

type stepPayload struct {
	StepNumber  int    `json:"step_number"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type stepsPayload struct {
	Steps []stepPayload `json:"steps"`
}

type briefPayload struct {
	Greeting string   `json:"greeting"`
	Focus    string   `json:"focus"`
	Tips     []string `json:"tips"`
}

type predictionPayload struct {
	Outcome         string   `json:"outcome"`
	RiskLevel       string   `json:"risk_level"`
	Recommendations []string `json:"recommendations"`
}

// extractJSON strips markdown fences and surrounding prose from a completion.
func extractJSON(text string) (string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
	}
	return text[start : end+1], nil
}

func decode(text string, v any) error {
	raw, err := extractJSON(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// repairMissions keeps the first valid entry per difficulty and synthesizes a
// default for every empty slot, so the result always has one mission per
// difficulty in easy, medium, hard order.
func (t *Templates) repairMissions(payload []missionPayload, profile *models.Profile, recurrence string) []*models.Mission {
	bySlot := map[string]missionPayload{}
	for _, p := range payload {
		difficulty := normalize(p.Difficulty)
		if !models.IsDifficulty(difficulty) || strings.TrimSpace(p.Title) == "" {
			continue
		}
		if _, ok := bySlot[difficulty]; !ok {
			bySlot[difficulty] = p
		}
	}

	missions := make([]*models.Mission, 0, len(models.Difficulties))
	order := t.CategoryOrder(profile)
	for i, difficulty := range models.Difficulties {
		p, ok := bySlot[difficulty]
		if !ok {
			m := t.DefaultMission(order[i%len(order)], difficulty, profile)
			m.RecurrenceType = recurrence
			missions = append(missions, m)
			continue
		}

		category := normalize(p.Category)
		if !models.IsCategory(category) {
			category = order[i%len(order)]
		}

		reward := t.Rewards[difficulty]
		m := &models.Mission{
			ID:              strings.TrimSpace(p.ID),
			Title:           strings.TrimSpace(p.Title),
			Description:     strings.TrimSpace(p.Description),
			Category:        category,
			Difficulty:      difficulty,
			XPReward:        p.XPReward,
			LifeScoreImpact: p.LifeScoreImpact,
			CoinReward:      p.CoinReward,
			RecurrenceType:  recurrence,
			AIGenerated:     true,
			IsActive:        true,
		}
		if m.XPReward <= 0 {
			m.XPReward = reward.XP
		}
		if m.LifeScoreImpact == 0 {
			m.LifeScoreImpact = reward.LifeScore
		}
		if m.CoinReward < 0 {
			m.CoinReward = 0
		}
		missions = append(missions, m)
	}
	return missions
}

// repairSteps returns exactly three steps numbered 1 to 3. Entries without a
// usable step number take the next free slot in order of appearance.
func (t *Templates) repairSteps(payload []stepPayload, mission *models.Mission) []*models.MissionStep {
	bySlot := map[int]stepPayload{}
	var unnumbered []stepPayload
	for _, p := range payload {
		if strings.TrimSpace(p.Title) == "" {
			continue
		}
		if p.StepNumber >= 1 && p.StepNumber <= models.STEPS_PER_MISSION {
			if _, ok := bySlot[p.StepNumber]; !ok {
				bySlot[p.StepNumber] = p
				continue
			}
		}
		unnumbered = append(unnumbered, p)
	}
	for n := 1; n <= models.STEPS_PER_MISSION && len(unnumbered) > 0; n++ {
		if _, ok := bySlot[n]; !ok {
			bySlot[n] = unnumbered[0]
			unnumbered = unnumbered[1:]
		}
	}

	steps := make([]*models.MissionStep, 0, models.STEPS_PER_MISSION)
	for n := 1; n <= models.STEPS_PER_MISSION; n++ {
		p, ok := bySlot[n]
		if !ok {
			steps = append(steps, t.DefaultStep(mission.Category, n))
			continue
		}
		steps = append(steps, &models.MissionStep{
			StepNumber:  n,
			Title:       strings.TrimSpace(p.Title),
			Description: strings.TrimSpace(p.Description),
			Status:      models.STEP_STATUS_PENDING,
		})
	}
	return steps
}
