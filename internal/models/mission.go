package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	CATEGORY_SAFE_DRIVING       = "safe_driving"
	CATEGORY_HEALTH             = "health"
	CATEGORY_FINANCIAL_GUARDIAN = "financial_guardian"
	CATEGORY_FAMILY_PROTECTION  = "family_protection"
	CATEGORY_LIFESTYLE          = "lifestyle"

	DIFFICULTY_EASY   = "easy"
	DIFFICULTY_MEDIUM = "medium"
	DIFFICULTY_HARD   = "hard"

	RECURRENCE_NONE  = "none"
	RECURRENCE_DAILY = "daily"
)

var Categories = []string{
	CATEGORY_SAFE_DRIVING,
	CATEGORY_HEALTH,
	CATEGORY_FINANCIAL_GUARDIAN,
	CATEGORY_FAMILY_PROTECTION,
	CATEGORY_LIFESTYLE,
}

// Difficulties is ordered; generated mission sets follow this order.
var Difficulties = []string{DIFFICULTY_EASY, DIFFICULTY_MEDIUM, DIFFICULTY_HARD}

func IsCategory(v string) bool {
	for _, c := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

func IsDifficulty(v string) bool {
	for _, d := range Difficulties {
		if d == v {
			return true
		}
	}
	return false
}

type Mission struct {
	bun.BaseModel   `bun:"table:mission"`
	ID              string    `bun:"id,pk" json:"id"`
	Title           string    `bun:"title" json:"title"`
	Description     string    `bun:"description" json:"description"`
	Category        string    `bun:"category" json:"category"`
	Difficulty      string    `bun:"difficulty" json:"difficulty"`
	XPReward        int       `bun:"xp_reward" json:"xp_reward"`
	LifeScoreImpact int       `bun:"lifescore_impact" json:"lifescore_impact"`
	CoinReward      int       `bun:"coin_reward" json:"coin_reward"`
	RecurrenceType  string    `bun:"recurrence_type" json:"recurrence_type"`
	AIGenerated     bool      `bun:"ai_generated" json:"ai_generated"`
	OwnerID         string    `bun:"owner_id,nullzero" json:"owner_id,omitempty"`
	IsActive        bool      `bun:"is_active" json:"is_active"`
	CreatedAt       time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`

	SlotToken string `bun:"-" json:"slot_token,omitempty"`
}
