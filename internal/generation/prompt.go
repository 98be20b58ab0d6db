package generation

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"lifequest/internal/models"
)

type promptProfile struct {
	Name                 string   `json:"name"`
	Age                  int      `json:"age"`
	Gender               string   `json:"gender"`
	Nationality          string   `json:"nationality"`
	InsurancePreferences []string `json:"insurance_preferences"`
	Vulnerabilities      []string `json:"vulnerabilities,omitempty"`
	FirstTimeBuyer       bool     `json:"first_time_buyer"`
	Occupation           string   `json:"occupation,omitempty"`
	MaritalStatus        string   `json:"marital_status,omitempty"`
	Dependents           int      `json:"dependents"`
}

func profileJSON(profile *models.Profile) string {
	if profile == nil {
		return "{}"
	}
	b, _ := json.Marshal(promptProfile{
		Name:                 profile.Name,
		Age:                  profile.AgeValue(),
		Gender:               profile.Gender,
		Nationality:          profile.Nationality,
		InsurancePreferences: profile.InsurancePreferences,
		Vulnerabilities:      profile.Vulnerabilities,
		FirstTimeBuyer:       profile.FirstTimeBuyer,
		Occupation:           profile.Occupation,
		MaritalStatus:        profile.MaritalStatus,
		Dependents:           profile.Dependents,
	})
	return string(b)
}

func statsJSON(stats *models.UserStats) string {
	if stats == nil {
		return "{}"
	}
	b, _ := json.Marshal(stats)
	return string(b)
}

const missionSchema = `{"missions":[{"title":string,"description":string,"category":one of [%s],"difficulty":"easy"|"medium"|"hard","xp_reward":int,"lifescore_impact":int,"coin_reward":int}]}`

func missionsPrompt(profile *models.Profile, extra string) string {
	var sb strings.Builder
	sb.WriteString("You design short, practical wellbeing and protection missions for an insurance engagement app.\n")
	sb.WriteString("Create exactly three missions for the user below: one easy, one medium and one hard.\n")
	sb.WriteString("Favour the user's insurance preferences and vulnerabilities. Keep each description under 200 characters.\n")
	if extra != "" {
		sb.WriteString(extra)
		sb.WriteString("\n")
	}
	sb.WriteString("User profile: ")
	sb.WriteString(profileJSON(profile))
	sb.WriteString("\nRespond with JSON only, matching: ")
	sb.WriteString(fmt.Sprintf(missionSchema, strings.Join(models.Categories, ", ")))
	return sb.String()
}

func adaptivePrompt(profile *models.Profile, stats *models.UserStats, day time.Time) string {
	extra := fmt.Sprintf("These are daily missions for %s. Adapt difficulty to the user's progress: %s", day.Format("2006-01-02"), statsJSON(stats))
	return missionsPrompt(profile, extra)
}

func stepsPrompt(mission *models.Mission, profile *models.Profile) string {
	var sb strings.Builder
	sb.WriteString("Break the mission below into exactly three sequential, concrete steps.\n")
	sb.WriteString(fmt.Sprintf("Mission: %q (%s, %s): %s\n", mission.Title, mission.Category, mission.Difficulty, mission.Description))
	sb.WriteString("User profile: ")
	sb.WriteString(profileJSON(profile))
	sb.WriteString("\nRespond with JSON only, matching: {\"steps\":[{\"step_number\":1|2|3,\"title\":string,\"description\":string}]}")
	return sb.String()
}

func dailyBriefPrompt(profile *models.Profile, stats *models.UserStats, day time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Write a short motivating daily brief for %s.\n", day.Format("Monday 2 January 2006")))
	sb.WriteString("User profile: ")
	sb.WriteString(profileJSON(profile))
	sb.WriteString("\nProgress: ")
	sb.WriteString(statsJSON(stats))
	sb.WriteString(fmt.Sprintf("\nRespond with JSON only, matching: {\"greeting\":string,\"focus\":one of [%s],\"tips\":[string,string,string]}", strings.Join(models.Categories, ", ")))
	return sb.String()
}

func scenarioPrompt(profile *models.Profile, scenario string) string {
	var sb strings.Builder
	sb.WriteString("Predict the likely outcome of the following life scenario for this user and suggest protective actions.\n")
	sb.WriteString(fmt.Sprintf("Scenario: %q\n", scenario))
	sb.WriteString("User profile: ")
	sb.WriteString(profileJSON(profile))
	sb.WriteString("\nRespond with JSON only, matching: {\"outcome\":string,\"risk_level\":\"low\"|\"medium\"|\"high\",\"recommendations\":[string]}")
	return sb.String()
}
