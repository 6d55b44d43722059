package domain

// Stats is derived state: TotalDays is the number of calendar days since
// install (minimum 1), CompletedDays the number of distinct days on which
// a full workout was finished.
type Stats struct {
	TotalDays     int `json:"total_days"`
	CompletedDays int `json:"completed_days"`
}
