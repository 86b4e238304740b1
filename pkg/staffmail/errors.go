package staffmail

import "errors"

var (
	// ErrCreationRejected is returned when a ticket cannot be created, e.g. because StaffMail is not configured.
	ErrCreationRejected = errors.New("staffmail creation rejected")

	// ErrTicketAlreadyOpen is returned when the user already has an open ticket. It matches ErrCreationRejected.
	ErrTicketAlreadyOpen = alreadyOpenError{}

	// ErrUnknownStaffChannel is returned when a staff channel does not belong to an open ticket.
	ErrUnknownStaffChannel = errors.New("unknown staffmail channel")

	// ErrPointerNotFound is returned when a user replies to a message that is not the latest message of a ticket.
	ErrPointerNotFound = errors.New("reply does not target the latest staffmail message")

	// ErrNoReference is returned when a user sends a direct message that is not a reply.
	ErrNoReference = errors.New("direct message is not a reply")

	// ErrDeliveryFailed is returned when the other side of the conversation cannot be reached.
	ErrDeliveryFailed = errors.New("delivery failed")

	// ErrStoreUnavailable is returned when the ticket store cannot be used.
	ErrStoreUnavailable = errors.New("ticket store unavailable")

	// ErrDuplicateTicket is returned by the store when a ticket already exists for a staff channel.
	ErrDuplicateTicket = errors.New("duplicate ticket")

	// ErrNotFound is returned by the store when the ticket no longer exists.
	ErrNotFound = errors.New("ticket not found")
)

type alreadyOpenError struct{}

func (alreadyOpenError) Error() string {
	return "user already has an open staffmail"
}

func (alreadyOpenError) Is(target error) bool {
	return target == ErrCreationRejected
}
