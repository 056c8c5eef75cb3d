package cache

import (
	"errors"
	"fmt"
	"time"
)

// ErrCacheMiss is returned when no generation is recorded for a contract.
var ErrCacheMiss = errors.New("not found in cache")

// Entry describes the last generation of a contract's binding.
type Entry struct {
	// Hash is the hash of the artifact and options the binding was generated from.
	Hash string `json:"hash"`

	// OutputFile is the path the binding was written to.
	OutputFile string `json:"outputFile"`

	// GeneratedAt is when the binding was generated.
	GeneratedAt time.Time `json:"generatedAt"`
}

// Age returns a human-readable description of how long ago the binding was generated.
func (e *Entry) Age() string {
	return formatDuration(time.Since(e.GeneratedAt))
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		minutes := int(d.Minutes())
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	if d < 24*time.Hour {
		hours := int(d.Hours())
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	days := int(d.Hours() / 24)
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}
