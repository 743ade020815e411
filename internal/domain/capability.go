package domain

// Capability names a per-ticket permission.
type Capability string

const (
	CapabilityView    Capability = "view"
	CapabilityComment Capability = "comment"
	CapabilityMutate  Capability = "mutate"
	CapabilityDelete  Capability = "delete"
)

// Can is the single access-control decision point for tickets. A user-role
// caller may view or comment only on tickets they created or are assigned
// to, and may mutate only tickets they created; agents and admins bypass
// per-ticket checks, with deletion reserved for admins.
func Can(user *User, ticket *Ticket, capability Capability) bool {
	if user == nil || ticket == nil {
		return false
	}
	switch capability {
	case CapabilityDelete:
		return user.Role == RoleAdmin
	case CapabilityMutate:
		if user.Role.IsStaff() {
			return true
		}
		return ticket.IsCreator(user.ID)
	case CapabilityView, CapabilityComment:
		if user.Role.IsStaff() {
			return true
		}
		return ticket.IsCreator(user.ID) || ticket.IsAssignee(user.ID)
	default:
		return false
	}
}
