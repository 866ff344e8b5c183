package triage

import "github.com/inovaitive/revu/internal/core/domain"

// Inclusive lower bounds of each urgency tier.
const (
	criticalThreshold = 80
	highThreshold     = 60
	mediumThreshold   = 30
)

// CategorizeUrgency maps a priority score to its urgency tier.
func CategorizeUrgency(priorityScore int) domain.Urgency {
	switch {
	case priorityScore >= criticalThreshold:
		return domain.UrgencyCritical
	case priorityScore >= highThreshold:
		return domain.UrgencyHigh
	case priorityScore >= mediumThreshold:
		return domain.UrgencyMedium
	default:
		return domain.UrgencyLow
	}
}

// PriorityLabel returns a short human-readable label for a priority score.
func PriorityLabel(priorityScore int) string {
	switch CategorizeUrgency(priorityScore) {
	case domain.UrgencyCritical:
		return "Critical (P0)"
	case domain.UrgencyHigh:
		return "High (P1)"
	case domain.UrgencyMedium:
		return "Medium (P2)"
	default:
		return "Low (P3)"
	}
}
