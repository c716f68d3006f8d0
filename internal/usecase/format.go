// Package usecase implements the application's use cases following
// clean architecture principles.
package usecase

import (
	"fmt"
	"time"
)

// formatDuration renders a duration as compact hours/minutes text for
// notification bodies, rounding toward whole minutes.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}

// formatClock renders an instant in the configured display timezone. An
// unloadable timezone falls back to the instant's own location.
func formatClock(t time.Time, location string) string {
	if location != "" {
		if loc, err := time.LoadLocation(location); err == nil {
			t = t.In(loc)
		}
	}
	return t.Format("Mon 15:04 MST")
}

// displayTaskID keeps notification texts readable when a task snapshot had
// no usable identifier.
func displayTaskID(id string) string {
	if id == "" {
		return "(unknown)"
	}
	return id
}
