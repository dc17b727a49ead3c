package models

// DailyStats holds an aggregate count for a single day, used by the admin
// analytics charts.
type DailyStats struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// TierStats holds the member count per subscription tier.
type TierStats struct {
	Tier  string `json:"tier"`
	Count int    `json:"count"`
}
