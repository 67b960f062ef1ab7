package model

// allowedTransitions is the explicit status transition policy. It is
// intentionally permissive today (any status may move to any other by
// direct admin action), but the table exists so that tightening it is a
// one-line review instead of an archaeology project.
var allowedTransitions = map[TicketStatus]map[TicketStatus]bool{
	TicketStatusOpen: {
		TicketStatusInProgress: true,
		TicketStatusResolved:   true,
		TicketStatusClosed:     true,
	},
	TicketStatusInProgress: {
		TicketStatusOpen:     true,
		TicketStatusResolved: true,
		TicketStatusClosed:   true,
	},
	TicketStatusResolved: {
		TicketStatusOpen:       true,
		TicketStatusInProgress: true,
		TicketStatusClosed:     true,
	},
	TicketStatusClosed: {
		TicketStatusOpen:       true,
		TicketStatusInProgress: true,
		TicketStatusResolved:   true,
	},
}

// ValidStatus reports whether s names one of the four ticket statuses.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// ValidPriority reports whether p names one of the four priorities.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// CanTransition reports whether the policy allows moving a ticket from
// one status to another. Staying on the same status is always allowed.
func CanTransition(from, to TicketStatus) bool {
	if from == to {
		return true
	}
	return allowedTransitions[from][to]
}
