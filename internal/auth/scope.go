package auth

import "github.com/spec-kit/chat-ticketing/internal/domain"

// sentinelQueueID can never match a real queue; serial ids start at 1.
const sentinelQueueID = 0

// TicketScope is the authorization policy applied to ticket listings. It is
// computed once from the authenticated agent plus the caller-supplied queue
// override and handed to the query layer, so the trust decision lives here
// rather than inline in query construction.
//
// Both admin and superadmin profiles are elevated. Elevated agents may
// override their queue scope with an explicit list; ordinary agents are
// always restricted to their assigned queues, and an agent with no queues
// is pinned to a sentinel that matches nothing.
type TicketScope struct {
	UserID   int64
	Elevated bool
	// QueueIDs is the effective scope; meaningful only when Restrict is set.
	QueueIDs []int64
	// Restrict indicates the queue clause must be applied.
	Restrict bool
}

// Elevated reports whether a profile may override queue scoping.
func Elevated(profile domain.Profile) bool {
	return profile == domain.ProfileAdmin || profile == domain.ProfileSuperAdmin
}

// ScopeForUser derives the effective queue scope for an agent. requested is
// the caller-supplied queue id list and is honored only for elevated agents.
func ScopeForUser(user *domain.User, requested []int64) TicketScope {
	scope := TicketScope{UserID: user.ID, Elevated: Elevated(user.Profile)}

	if scope.Elevated {
		if len(requested) > 0 {
			scope.QueueIDs = requested
			scope.Restrict = true
		}
		return scope
	}

	scope.Restrict = true
	if len(user.QueueIDs) == 0 {
		scope.QueueIDs = []int64{sentinelQueueID}
		return scope
	}
	scope.QueueIDs = user.QueueIDs
	return scope
}
