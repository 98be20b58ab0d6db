package models

type LeaderboardItem struct {
	UserId string  `json:"user_id"`
	Score  float64 `json:"score"`
	Rank   int     `json:"rank"`
}

type LeaderboardResponse struct {
	Items []*LeaderboardItem `json:"items"`
	Me    *LeaderboardItem   `json:"me"`
}
