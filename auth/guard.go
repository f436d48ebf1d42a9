package auth

import "go.mongodb.org/mongo-driver/bson/primitive"

// Principal is the authenticated caller, derived from a verified token.
// It lives for one request and is never persisted.
type Principal struct {
	ID      primitive.ObjectID
	IsAdmin bool
}

// Tier is the access level a route declares.
type Tier int

const (
	// Public allows everyone, principal ignored.
	Public Tier = iota
	// Authenticated requires any valid principal.
	Authenticated
	// AdminOnly requires an admin principal.
	AdminOnly
	// OwnerOrAdmin requires the resource owner or an admin. Used for
	// deletes: admins may remove content they do not own.
	OwnerOrAdmin
	// OwnerOnly requires exactly the resource owner; admin does not
	// override. Used for edits: admins may remove others' content but
	// never modify it.
	OwnerOnly
)

// Denial reasons, for mapping to a transport status by the caller.
const (
	ReasonUnauthenticated = "unauthenticated"
	ReasonForbidden       = "forbidden"
)

// Decision is the outcome of a guard evaluation. Reason is empty when
// Allowed is true.
type Decision struct {
	Allowed bool
	Reason  string
}

var allow = Decision{Allowed: true}

// Decide evaluates tier against the caller and the resource owner. It is a
// pure function: no side effects, never panics. A nil principal means the
// request carried no valid credential. ownerID is only consulted by the
// owner tiers and may be the zero ObjectID otherwise.
func Decide(p *Principal, tier Tier, ownerID primitive.ObjectID) Decision {
	switch tier {
	case Public:
		return allow
	case Authenticated:
		if p == nil {
			return Decision{Reason: ReasonUnauthenticated}
		}
		return allow
	case AdminOnly:
		if p == nil {
			return Decision{Reason: ReasonUnauthenticated}
		}
		if !p.IsAdmin {
			return Decision{Reason: ReasonForbidden}
		}
		return allow
	case OwnerOrAdmin:
		if p == nil {
			return Decision{Reason: ReasonUnauthenticated}
		}
		if p.IsAdmin || p.ID == ownerID {
			return allow
		}
		return Decision{Reason: ReasonForbidden}
	case OwnerOnly:
		if p == nil {
			return Decision{Reason: ReasonUnauthenticated}
		}
		if p.ID == ownerID {
			return allow
		}
		return Decision{Reason: ReasonForbidden}
	}
	return Decision{Reason: ReasonForbidden}
}
