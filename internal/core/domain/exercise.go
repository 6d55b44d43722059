package domain

import "strings"

// Exercise belongs to exactly one Workout. Image points at a locally
// cached file once the download succeeded; OriginalImage keeps the remote
// URL so the file can be re-fetched after a restore on a fresh device.
type Exercise struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Image         string `json:"image,omitempty"`
	OriginalImage string `json:"original_image,omitempty"`
	Completed     bool   `json:"completed"`
}

// HasRemoteImage reports whether Image still holds a remote URL, i.e. the
// exercise was saved before (or without) a successful local download.
func (e *Exercise) HasRemoteImage() bool {
	return strings.HasPrefix(e.Image, "http://") || strings.HasPrefix(e.Image, "https://")
}

// MarkCompleted flips the one-way completion flag. Returns false when the
// exercise was already done, so callers can treat repeats as no-ops.
func (e *Exercise) MarkCompleted() bool {
	if e.Completed {
		return false
	}
	e.Completed = true
	return true
}
