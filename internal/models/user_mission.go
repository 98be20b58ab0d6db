package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	USER_MISSION_STATUS_ACTIVE    = "active"
	USER_MISSION_STATUS_COMPLETED = "completed"
	USER_MISSION_STATUS_FAILED    = "failed"
	// rows written before the active status existed
	USER_MISSION_STATUS_STARTED_LEGACY = "started"

	STEP_STATUS_PENDING   = "pending"
	STEP_STATUS_COMPLETED = "completed"

	STEPS_PER_MISSION = 3
)

var ActiveUserMissionStatuses = []string{USER_MISSION_STATUS_ACTIVE, USER_MISSION_STATUS_STARTED_LEGACY}

type UserMission struct {
	bun.BaseModel   `bun:"table:user_mission"`
	ID              string     `bun:"id,pk" json:"id"`
	UserID          string     `bun:"user_id" json:"user_id"`
	MissionID       string     `bun:"mission_id" json:"mission_id"`
	Status          string     `bun:"status" json:"status"`
	StartedAt       time.Time  `bun:"started_at" json:"started_at"`
	CompletedAt     *time.Time `bun:"completed_at" json:"completed_at"`
	CoinsEarned     int        `bun:"coins_earned" json:"coins_earned"`
	XPEarned        int        `bun:"xp_earned" json:"xp_earned"`
	LifeScoreChange int        `bun:"lifescore_change" json:"lifescore_change"`

	Mission *Mission       `bun:"-" json:"mission,omitempty"`
	Steps   []*MissionStep `bun:"-" json:"steps,omitempty"`
}

func (um *UserMission) IsActive() bool {
	return um.Status == USER_MISSION_STATUS_ACTIVE || um.Status == USER_MISSION_STATUS_STARTED_LEGACY
}

type MissionStep struct {
	bun.BaseModel `bun:"table:mission_step"`
	ID            string     `bun:"id,pk" json:"id"`
	UserMissionID string     `bun:"user_mission_id" json:"user_mission_id"`
	StepNumber    int        `bun:"step_number" json:"step_number"`
	Title         string     `bun:"title" json:"title"`
	Description   string     `bun:"description" json:"description"`
	Status        string     `bun:"status" json:"status"`
	CompletedAt   *time.Time `bun:"completed_at" json:"completed_at"`
	CreatedAt     time.Time  `bun:"created_at,default:current_timestamp" json:"created_at"`
}

// UserMissionFilter narrows user mission lookups. Zero values are ignored.
type UserMissionFilter struct {
	ID        string
	UserID    string
	MissionID string
	Statuses  []string
}

// DailySlot maps a client facing slot token to the catalog mission created for
// that user, day and difficulty.
type DailySlot struct {
	bun.BaseModel `bun:"table:daily_slot"`
	UserID        string    `bun:"user_id,pk" json:"user_id"`
	Token         string    `bun:"token,pk" json:"token"`
	Date          string    `bun:"date" json:"date"`
	Difficulty    string    `bun:"difficulty" json:"difficulty"`
	MissionID     string    `bun:"mission_id" json:"mission_id"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}
