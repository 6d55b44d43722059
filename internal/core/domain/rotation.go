package domain

import "time"

// RotationState is the single process-wide record driving the weekly cycle.
// InstallDate is fixed on first run and never changes afterwards.
type RotationState struct {
	CurrentDay  int        `json:"current_day"`
	InstallDate time.Time  `json:"install_date"`
	LastSyncAt  *time.Time `json:"last_sync_at,omitempty"`
}

// NextDay returns the slot following day, wrapping 7 back to 1.
func NextDay(day int) int {
	if day >= MaxDay {
		return MinDay
	}
	return day + 1
}
