// Package policy holds the authorization decisions for catalog operations.
// Every function is pure: it looks only at the actor and the ids passed in.
package policy

// Actor is the caller as asserted by a verified access token.
// A zero Actor is an anonymous caller.
type Actor struct {
	ID      string
	Email   string
	IsAdmin bool
}

func (a Actor) Authenticated() bool { return a.ID != "" }

// UserAccess is the level of control an actor has over a user record.
type UserAccess int

const (
	AccessNone UserAccess = iota
	// AccessSelf allows changing first and last name only.
	AccessSelf
	AccessFull
)

func (a UserAccess) String() string {
	switch a {
	case AccessSelf:
		return "self_limited"
	case AccessFull:
		return "full"
	default:
		return "none"
	}
}

// CanCreateListing expects non-admin callers to have already been coerced
// to requestedOwnerID == a.ID.
func CanCreateListing(a Actor, requestedOwnerID string) bool {
	return a.Authenticated() && (a.IsAdmin || requestedOwnerID == a.ID)
}

func CanModifyListing(a Actor, ownerID string) bool {
	return a.Authenticated() && (a.IsAdmin || a.ID == ownerID)
}

// CanCreateReview forbids non-admins from reviewing their own listing.
func CanCreateReview(a Actor, listingOwnerID string) bool {
	return a.Authenticated() && (a.IsAdmin || a.ID != listingOwnerID)
}

func CanModifyReview(a Actor, authorID string) bool {
	return a.Authenticated() && (a.IsAdmin || a.ID == authorID)
}

func CanManageAmenity(a Actor) bool {
	return a.Authenticated() && a.IsAdmin
}

// CanRegisterUser gates account creation; registration is admin-only.
func CanRegisterUser(a Actor) bool {
	return a.Authenticated() && a.IsAdmin
}

func CanReadAuditLog(a Actor) bool {
	return a.Authenticated() && a.IsAdmin
}

func ManageUser(a Actor, targetID string) UserAccess {
	switch {
	case !a.Authenticated():
		return AccessNone
	case a.IsAdmin:
		return AccessFull
	case a.ID == targetID:
		return AccessSelf
	default:
		return AccessNone
	}
}
