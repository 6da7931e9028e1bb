package domain

import (
	"fmt"
	"time"
)

// Urgency is a display-only classification of how long a ticket has
// been waiting. It never drives a transition.
type Urgency string

const (
	UrgencyNormal   Urgency = "normal"
	UrgencyWarning  Urgency = "warning"  // waiting > 12 minutes
	UrgencyCritical Urgency = "critical" // waiting > 25 minutes
)

const (
	warningAfter  = 12 * time.Minute
	criticalAfter = 25 * time.Minute
)

// ClassifyUrgency buckets the elapsed time since the order was placed.
func ClassifyUrgency(createdAt, now time.Time) Urgency {
	elapsed := now.Sub(createdAt)
	switch {
	case elapsed > criticalAfter:
		return UrgencyCritical
	case elapsed > warningAfter:
		return UrgencyWarning
	}
	return UrgencyNormal
}

// FormatElapsed renders the wait time the way the board shows it: "37m".
func FormatElapsed(createdAt, now time.Time) string {
	mins := int(now.Sub(createdAt).Minutes())
	if mins < 0 {
		mins = 0
	}
	return fmt.Sprintf("%dm", mins)
}
