package staffmail

import (
	"context"
	"time"

	"github.com/lfmcord/staffmail/pkg/entities"
)

// Attachment is a file attached to a message.
type Attachment struct {
	Name string
	URL  string
}

// MessageRef identifies a message on a surface.
type MessageRef struct {
	ChannelID string
	MessageID string
}

// Message is a message observed on either surface.
type Message struct {
	ID          string
	ChannelID   string
	GuildID     string
	Author      Identity
	Content     string
	Attachments []Attachment

	// ReferenceID is the ID of the message this one replies to, if any.
	ReferenceID string
}

// Ref returns the reference of the message.
func (m *Message) Ref() MessageRef {
	return MessageRef{ChannelID: m.ChannelID, MessageID: m.ID}
}

// TicketStore persists open tickets. Lookups return nil without an error when nothing matches.
type TicketStore interface {
	// Create saves a new ticket. It fails with ErrDuplicateTicket if the staff channel already has a ticket.
	Create(ctx context.Context, ticket *entities.Ticket) (*entities.Ticket, error)

	// GetByStaffChannelID gets the ticket of a staff channel.
	GetByStaffChannelID(ctx context.Context, channelID string) (*entities.Ticket, error)

	// GetByLastMessageID gets the ticket whose latest user-side message has the given ID.
	GetByLastMessageID(ctx context.Context, messageID string) (*entities.Ticket, error)

	// GetByUserID gets the open ticket of a user.
	GetByUserID(ctx context.Context, userID string) (*entities.Ticket, error)

	// UpdatePointer moves the ticket's latest message in a single write. It fails with ErrNotFound if the ticket
	// was deleted.
	UpdatePointer(ctx context.Context, ticketID string, messageID string, at time.Time) error

	// Delete removes the ticket and returns what was removed.
	Delete(ctx context.Context, ticketID string) (*entities.Ticket, error)
}

// Surface is what both sides of a conversation can do.
type Surface interface {
	// Pin pins a message.
	Pin(ctx context.Context, ref MessageRef) error

	// Unpin unpins a message.
	Unpin(ctx context.Context, ref MessageRef) error

	// Fetch gets a message. It returns nil if the message does not exist.
	Fetch(ctx context.Context, ref MessageRef) (*Message, error)

	// Delete deletes a message.
	Delete(ctx context.Context, ref MessageRef) error
}

// UserSurface is the direct conversation with a user.
type UserSurface interface {
	Surface

	// Send delivers a message to the user. It fails with ErrDeliveryFailed when the user cannot be reached.
	Send(ctx context.Context, userID string, msg Rendered) (MessageRef, error)

	// Lookup gets the identity of a user.
	Lookup(ctx context.Context, userID string) (Identity, error)

	// RemoveLatestPinNotice removes the most recent "message pinned" notice from the conversation.
	RemoveLatestPinNotice(ctx context.Context, channelID string) error
}

// StaffSurface is the staff side of the conversation, one channel per ticket.
type StaffSurface interface {
	Surface

	// Send delivers a message to a staff channel. It fails with ErrUnknownStaffChannel when the channel is gone.
	Send(ctx context.Context, channelID string, msg Rendered) (MessageRef, error)

	// CreateDedicatedChannel creates a channel for a ticket under the parent group.
	CreateDedicatedChannel(ctx context.Context, name string, parentID string, topic string) (string, error)

	// DeleteChannel deletes a staff channel.
	DeleteChannel(ctx context.Context, channelID string) error

	// Transcript returns a plain-text protocol of the channel.
	Transcript(ctx context.Context, channelID string) (string, error)
}

// Destinations provides the StaffMail configuration of a guild.
type Destinations interface {
	// StaffMailConfig returns the configuration, or nil when the guild has none.
	StaffMailConfig(ctx context.Context, guildID string) (*entities.StaffMailConfig, error)
}

// Auditor receives events after the fact. It has no say in what happens.
type Auditor interface {
	// TicketCreated is called once a ticket has been persisted.
	TicketCreated(ctx context.Context, ticket *entities.Ticket, user Identity, createdBy Identity)

	// TicketClosed is called once a ticket has been deleted.
	TicketClosed(ctx context.Context, ticket *entities.Ticket, user Identity, closedBy Identity, reason string, transcript string)

	// RelayFailed is called when a message could not be delivered.
	RelayFailed(ctx context.Context, ticket *entities.Ticket, stage string, err error)
}
