package models

type RewardBreakdown struct {
	XP        int `json:"xp"`
	Coins     int `json:"coins"`
	LifeScore int `json:"lifescore"`
}

type CompletionResult struct {
	UserMission  *UserMission    `json:"user_mission"`
	Rewards      RewardBreakdown `json:"rewards"`
	XP           int             `json:"xp"`
	Level        int             `json:"level"`
	LeveledUp    bool            `json:"leveled_up"`
	Coins        int             `json:"coins"`
	LifeScore    int             `json:"lifescore"`
	Streak       int             `json:"streak"`
	Achievements []*Achievement  `json:"achievements"`
}

type DailyMissions struct {
	Date         string     `json:"date"`
	Missions     []*Mission `json:"missions"`
	AlreadyReset bool       `json:"already_reset"`
}

type DailyBrief struct {
	Date      string   `json:"date"`
	Greeting  string   `json:"greeting"`
	Focus     string   `json:"focus"`
	Tips      []string `json:"tips"`
	Generated bool     `json:"generated"`
}

type ScenarioPrediction struct {
	Scenario        string   `json:"scenario"`
	Outcome         string   `json:"outcome"`
	RiskLevel       string   `json:"risk_level"`
	Recommendations []string `json:"recommendations"`
	Generated       bool     `json:"generated"`
}
