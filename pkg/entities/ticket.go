package entities

import (
	"github.com/lfmcord/staffmail/pkg/custom"
)

// Mode is the disclosure mode of a ticket.
type Mode int

const (
	// ModeNamed discloses the real identity of the user to staff.
	ModeNamed Mode = iota

	// ModeAnonymous hides the identity of the user from staff.
	ModeAnonymous
)

// String implements the fmt.Stringer interface.
func (m Mode) String() string {
	switch m {
	case ModeNamed:
		return "named"
	case ModeAnonymous:
		return "anonymous"
	}
	return "unknown"
}

// Ticket is an open StaffMail. It links a user's direct messages with a dedicated staff channel.
type Ticket struct {
	// ID is the opaque unique identifier of the ticket.
	ID string `json:"id" bson:"id"`

	// GuildID is the ID of the guild that the ticket belongs to.
	GuildID string `json:"guild_id" bson:"guild_id"`

	// UserID is the ID of the user that the staff team is talking to.
	UserID string `json:"user_id" bson:"user_id"`

	// StaffChannelID is the ID of the channel that was created for this ticket.
	StaffChannelID string `json:"staff_channel_id" bson:"staff_channel_id"`

	// Mode is whether the user is disclosed to staff. It never changes.
	Mode Mode `json:"mode" bson:"mode"`

	// Category is what the ticket is about.
	Category Category `json:"category" bson:"category"`

	// Summary is the short description given when the ticket was created.
	Summary string `json:"summary" bson:"summary"`

	// UserChannelID is the ID of the direct message channel with the user.
	UserChannelID string `json:"user_channel_id" bson:"user_channel_id"`

	// MainMessageID is the ID of the opening banner in the user's direct messages.
	MainMessageID string `json:"main_message_id" bson:"main_message_id"`

	// LastMessageID is the ID of the latest mirrored message in the user's direct messages. Replies to this message
	// are relayed to staff; it is the only message of the ticket that is pinned.
	LastMessageID string `json:"last_message_id" bson:"last_message_id"`

	// CreatedAt is the time that the ticket was created.
	CreatedAt custom.Datetime `json:"created_at" bson:"created_at"`

	// LastMessageAt is the time of the latest relay.
	LastMessageAt custom.Datetime `json:"last_message_at" bson:"last_message_at"`
}

// Anonymous reports whether the ticket hides the user's identity.
func (t *Ticket) Anonymous() bool {
	return t.Mode == ModeAnonymous
}
