package staffmail

import "github.com/lfmcord/staffmail/pkg/entities"

// Identity is who a message is shown to be from or to.
type Identity struct {
	// ID is the platform ID. It is empty for generic identities.
	ID string

	// Name is the display name.
	Name string

	// AvatarURL is the avatar of the identity, if any.
	AvatarURL string
}

var (
	// StaffIdentity is how staff members are shown to users.
	StaffIdentity = Identity{Name: "Staff"}

	// AnonymousIdentity is how users of anonymous tickets are shown to staff.
	AnonymousIdentity = Identity{Name: "Anonymous"}
)

// Generic reports whether the identity stands in for someone rather than naming them.
func (i Identity) Generic() bool {
	return i.ID == ""
}

// Actor is the party whose identity is being rendered.
type Actor int

const (
	// ActorUser is the user the ticket is for. It is rendered for staff.
	ActorUser Actor = iota

	// ActorStaff is a staff member. It is rendered for the user.
	ActorStaff
)

// RenderIdentity returns the identity that the recipient is shown for the actor.
//
// Users never see which staff member they are talking to. Staff see the real user on named tickets and a
// placeholder on anonymous ones.
func RenderIdentity(mode entities.Mode, actor Actor, actual Identity) Identity {
	if actor == ActorStaff {
		return StaffIdentity
	}
	if mode == entities.ModeNamed {
		return actual
	}
	return AnonymousIdentity
}
