package session

import "quill/internal/models"

// Principal is the identity a request acts as: either a loaded user or the
// explicit anonymous value.
type Principal struct {
	User *models.User
}

// Anonymous is the principal of an unauthenticated request.
func Anonymous() Principal {
	return Principal{}
}

// Authenticated reports whether the principal is a real user.
func (p Principal) Authenticated() bool {
	return p.User != nil
}

// IsAdmin reports whether the principal may author posts.
func (p Principal) IsAdmin() bool {
	return p.User != nil && p.User.IsAdmin
}

// ID returns the user ID, or zero for anonymous.
func (p Principal) ID() uint {
	if p.User == nil {
		return 0
	}
	return p.User.ID
}

// Name returns the display name, or the empty string for anonymous.
func (p Principal) Name() string {
	if p.User == nil {
		return ""
	}
	return p.User.Name
}
