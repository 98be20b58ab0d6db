package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	DEFAULT_LIFESCORE = 50
)

type User struct {
	bun.BaseModel      `bun:"table:user"`
	ID                 string    `bun:"id,pk" json:"id"`
	Username           string    `bun:"username" json:"username"`
	XP                 int       `bun:"xp" json:"xp"`
	Level              int       `bun:"level" json:"level"`
	LifeScore          int       `bun:"lifescore" json:"lifescore"`
	Coins              int       `bun:"coins" json:"coins"`
	TotalCoinsEarned   int       `bun:"total_coins_earned" json:"total_coins_earned"`
	CurrentStreak      int       `bun:"current_streak" json:"current_streak"`
	LongestStreak      int       `bun:"longest_streak" json:"longest_streak"`
	LastActiveDate     string    `bun:"last_active_date" json:"last_active_date"`
	ScenariosCompleted int       `bun:"scenarios_completed" json:"scenarios_completed"`
	RewardsRedeemed    int       `bun:"rewards_redeemed" json:"rewards_redeemed"`
	CreatedAt          time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt          time.Time `bun:"updated_at" json:"updated_at"`
}

// UserFromAuth only use in middleware
type UserFromAuth struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Profile holds the declared data used to personalise missions. Required
// fields are checked by ValidateProfile in the services package.
type Profile struct {
	bun.BaseModel        `bun:"table:profile"`
	UserID               string    `bun:"user_id,pk" json:"user_id"`
	Name                 string    `bun:"name" json:"name"`
	Age                  *int      `bun:"age" json:"age"`
	Gender               string    `bun:"gender" json:"gender"`
	Nationality          string    `bun:"nationality" json:"nationality"`
	InsurancePreferences []string  `bun:"insurance_preferences,type:jsonb" json:"insurance_preferences"`
	Vulnerabilities      []string  `bun:"vulnerabilities,type:jsonb" json:"vulnerabilities"`
	FirstTimeBuyer       bool      `bun:"first_time_buyer" json:"first_time_buyer"`
	Occupation           string    `bun:"occupation" json:"occupation"`
	MaritalStatus        string    `bun:"marital_status" json:"marital_status"`
	Dependents           int       `bun:"dependents" json:"dependents"`
	CreatedAt            time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt            time.Time `bun:"updated_at" json:"updated_at"`
}

func (p *Profile) AgeValue() int {
	if p == nil || p.Age == nil {
		return 0
	}
	return *p.Age
}

func (p *Profile) HasPreference(category string) bool {
	if p == nil {
		return false
	}
	for _, pref := range p.InsurancePreferences {
		if pref == category {
			return true
		}
	}
	return false
}
