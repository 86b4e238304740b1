package staffmail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lfmcord/staffmail/pkg/custom"
	"github.com/lfmcord/staffmail/pkg/entities"
	"github.com/lfmcord/staffmail/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
)

// RelayResult describes a successful relay.
type RelayResult struct {
	// Ticket is the ticket with its new latest message.
	Ticket *entities.Ticket

	// Pointer is the new latest message on the user side.
	Pointer MessageRef
}

// Engine mirrors messages between the user and the staff channel of a ticket.
type Engine struct {
	l        *slog.Logger
	store    TicketStore
	users    UserSurface
	staff    StaffSurface
	renderer Renderer
	audit    Auditor
	locks    *Locker

	now func() time.Time
}

// NewEngine creates a new Engine.
func NewEngine(
	l *slog.Logger,
	store TicketStore,
	users UserSurface,
	staff StaffSurface,
	renderer Renderer,
	audit Auditor,
	locks *Locker,
) *Engine {
	return &Engine{
		l:        l.With(slog.String("component", "staffmail_relay")),
		store:    store,
		users:    users,
		staff:    staff,
		renderer: renderer,
		audit:    audit,
		locks:    locks,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// RelayFromStaff sends a staff reply posted in a staff channel to the user of the ticket.
func (e *Engine) RelayFromStaff(ctx context.Context, msg Message) (res *RelayResult, err error) {
	t := prometheus.NewTimer(RelayDuration.WithLabelValues(directionFromStaff))
	defer t.ObserveDuration()
	defer func() {
		RelaysTotal.WithLabelValues(directionFromStaff, outcome(err)).Inc()
	}()

	ticket, unlock, err := e.resolveLocked(ctx, func(ctx context.Context) (*entities.Ticket, error) {
		return e.store.GetByStaffChannelID(ctx, msg.ChannelID)
	})
	if err != nil {
		return nil, err
	}
	defer unlock()
	if ticket == nil {
		return nil, ErrUnknownStaffChannel
	}

	l := e.l.With(
		slog.String(logging.KeyTicket, ticket.ID),
		slog.String(logging.KeyChannel, ticket.StaffChannelID),
	)

	ref, err := e.users.Send(ctx, ticket.UserID, e.renderer.Render(Banner{
		Kind:        BannerUserIncoming,
		Sender:      RenderIdentity(ticket.Mode, ActorStaff, msg.Author),
		Category:    ticket.Category,
		Mode:        ticket.Mode,
		Summary:     ticket.Summary,
		Body:        msg.Content,
		Attachments: msg.Attachments,
	}))
	if err != nil {
		if errors.Is(err, ErrDeliveryFailed) {
			l.Warn("User cannot be reached", slog.String(logging.KeyError, err.Error()))
			e.noticeStaff(ctx, l, ticket, NoticeUserUnreachable)
			e.audit.RelayFailed(ctx, ticket, directionFromStaff, err)
			return nil, err
		}
		return nil, fmt.Errorf("error sending message to user: %w", err)
	}

	previous := pointerRef(ticket)
	e.movePin(ctx, l, previous, ref)

	if err := e.advance(ctx, l, ticket, previous, ref); err != nil {
		return nil, err
	}

	user := lookupUser(ctx, e.users, ticket.UserID)
	if _, err := e.staff.Send(ctx, ticket.StaffChannelID, e.renderer.Render(Banner{
		Kind:        BannerStaffOutgoing,
		Sender:      msg.Author,
		Recipient:   RenderIdentity(ticket.Mode, ActorUser, user),
		Category:    ticket.Category,
		Mode:        ticket.Mode,
		Body:        msg.Content,
		Attachments: msg.Attachments,
	})); err != nil {
		l.Warn("Error mirroring sent message to staff", slog.String(logging.KeyError, err.Error()))
	}

	if msg.ID != "" {
		if err := e.staff.Delete(ctx, msg.Ref()); err != nil {
			l.Warn("Error deleting relayed staff message", slog.String(logging.KeyError, err.Error()))
		}
	}

	l.Debug("Relayed staff message", slog.String(logging.KeyMessage, ref.MessageID))
	return &RelayResult{Ticket: ticket, Pointer: ref}, nil
}

// RelayFromUser sends a direct message of a user to the staff channel of the ticket it replies to. Only replies to
// the latest message of a ticket are relayed; anything else gets guidance.
func (e *Engine) RelayFromUser(ctx context.Context, msg Message) (res *RelayResult, err error) {
	t := prometheus.NewTimer(RelayDuration.WithLabelValues(directionFromUser))
	defer t.ObserveDuration()
	defer func() {
		RelaysTotal.WithLabelValues(directionFromUser, outcome(err)).Inc()
	}()

	if msg.ReferenceID == "" {
		e.guide(ctx, msg, GuidanceNoReference)
		return nil, ErrNoReference
	}

	ticket, unlock, err := e.resolveLocked(ctx, func(ctx context.Context) (*entities.Ticket, error) {
		return e.store.GetByLastMessageID(ctx, msg.ReferenceID)
	})
	if err != nil {
		return nil, err
	}
	defer unlock()
	if ticket == nil || ticket.UserID != msg.Author.ID {
		e.guide(ctx, msg, GuidanceReplyToPinned)
		return nil, ErrPointerNotFound
	}

	l := e.l.With(
		slog.String(logging.KeyTicket, ticket.ID),
		slog.String(logging.KeyUser, ticket.UserID),
	)

	if _, err := e.staff.Send(ctx, ticket.StaffChannelID, e.renderer.Render(Banner{
		Kind:        BannerStaffIncoming,
		Sender:      RenderIdentity(ticket.Mode, ActorUser, msg.Author),
		Recipient:   StaffIdentity,
		Category:    ticket.Category,
		Mode:        ticket.Mode,
		Body:        msg.Content,
		Attachments: msg.Attachments,
	})); err != nil {
		e.audit.RelayFailed(ctx, ticket, directionFromUser, err)
		if errors.Is(err, ErrUnknownStaffChannel) {
			l.Warn("Staff channel of open ticket is gone", slog.String(logging.KeyError, err.Error()))
			e.guide(ctx, msg, GuidanceStaffUnavailable)
			return nil, err
		}
		return nil, fmt.Errorf("error sending message to staff: %w", err)
	}

	ref, err := e.users.Send(ctx, ticket.UserID, e.renderer.Render(Banner{
		Kind:        BannerUserOutgoing,
		Sender:      msg.Author,
		Recipient:   StaffIdentity,
		Category:    ticket.Category,
		Mode:        ticket.Mode,
		Summary:     ticket.Summary,
		Body:        msg.Content,
		Attachments: msg.Attachments,
	}))
	if err != nil {
		// Staff have the message; the user keeps replying to the current pin.
		l.Warn("Error sending confirmation to user", slog.String(logging.KeyError, err.Error()))
		return nil, fmt.Errorf("error sending confirmation to user: %w", err)
	}

	previous := pointerRef(ticket)
	e.movePin(ctx, l, previous, ref)

	if err := e.advance(ctx, l, ticket, previous, ref); err != nil {
		return nil, err
	}

	l.Debug("Relayed user message", slog.String(logging.KeyMessage, ref.MessageID))
	return &RelayResult{Ticket: ticket, Pointer: ref}, nil
}

// resolveLocked resolves a ticket, locks it, and resolves it again so that the caller works on the pointer as it is
// once no other relay for the ticket is running.
func (e *Engine) resolveLocked(
	ctx context.Context,
	resolve func(ctx context.Context) (*entities.Ticket, error),
) (*entities.Ticket, func(), error) {
	ticket, err := resolve(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("error resolving ticket: %w", err)
	}
	if ticket == nil {
		return nil, func() {}, nil
	}

	unlock, err := e.locks.Lock(ctx, ticketKey(ticket.ID))
	if err != nil {
		return nil, nil, fmt.Errorf("error waiting for ticket lock: %w", err)
	}

	fresh, err := resolve(ctx)
	if err != nil {
		unlock()
		return nil, nil, fmt.Errorf("error resolving ticket: %w", err)
	}
	if fresh == nil || fresh.ID != ticket.ID {
		return nil, unlock, nil
	}
	return fresh, unlock, nil
}

// movePin unpins the previous latest message and pins the new one, so the user never sees two pins for a ticket.
// Pins only help the user find the message to reply to, so failures are logged and the relay carries on.
func (e *Engine) movePin(ctx context.Context, l *slog.Logger, previous MessageRef, next MessageRef) {
	if previous.MessageID != "" && previous != next {
		if err := e.users.Unpin(ctx, previous); err != nil {
			l.Warn("Error unpinning previous message", slog.String(logging.KeyError, err.Error()))
		}
	}

	if err := e.users.Pin(ctx, next); err != nil {
		l.Warn("Error pinning latest message", slog.String(logging.KeyError, err.Error()))
	} else if err := e.users.RemoveLatestPinNotice(ctx, next.ChannelID); err != nil {
		l.Debug("Error removing pin notice", slog.String(logging.KeyError, err.Error()))
	}
}

// advance persists the new pointer. When that fails the user-side message is taken back so the user keeps
// replying to the pointer that is still stored.
func (e *Engine) advance(ctx context.Context, l *slog.Logger, ticket *entities.Ticket, previous MessageRef, next MessageRef) error {
	now := e.now()
	err := e.store.UpdatePointer(ctx, ticket.ID, next.MessageID, now)
	if err == nil {
		ticket.LastMessageID = next.MessageID
		ticket.LastMessageAt = custom.Datetime(now)
		if next.ChannelID != "" {
			ticket.UserChannelID = next.ChannelID
		}
		return nil
	}

	l.Error("Error updating latest message", slog.String(logging.KeyError, err.Error()))
	e.audit.RelayFailed(ctx, ticket, "update_pointer", err)

	if errUnpin := e.users.Unpin(ctx, next); errUnpin != nil {
		l.Warn("Error unpinning undelivered message", slog.String(logging.KeyError, errUnpin.Error()))
	}
	if previous.MessageID != "" {
		if errPin := e.users.Pin(ctx, previous); errPin != nil {
			l.Warn("Error restoring previous pin", slog.String(logging.KeyError, errPin.Error()))
		}
	}
	if errDel := e.users.Delete(ctx, next); errDel != nil {
		l.Error("Relayed message could not be taken back after the ticket failed to save, reconcile manually",
			slog.String(logging.KeyUser, ticket.UserID),
			slog.String(logging.KeyChannel, next.ChannelID),
			slog.String(logging.KeyMessage, next.MessageID),
			slog.String(logging.KeyError, errDel.Error()),
		)
	}

	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("ticket was closed during relay: %w", err)
	}
	return fmt.Errorf("error updating latest message: %w", err)
}

func (e *Engine) guide(ctx context.Context, msg Message, g Guidance) {
	ref := msg.Ref()
	if _, err := e.users.Send(ctx, msg.Author.ID, e.renderer.Render(Banner{
		Kind:      BannerUserGuidance,
		Guidance:  g,
		Recipient: msg.Author,
		Reference: &ref,
	})); err != nil {
		e.l.Warn("Error sending guidance to user",
			slog.String(logging.KeyUser, msg.Author.ID),
			slog.String(logging.KeyError, err.Error()),
		)
	}
}

func (e *Engine) noticeStaff(ctx context.Context, l *slog.Logger, ticket *entities.Ticket, n Notice) {
	if _, err := e.staff.Send(ctx, ticket.StaffChannelID, e.renderer.Render(Banner{
		Kind:     BannerStaffNotice,
		Notice:   n,
		Category: ticket.Category,
		Mode:     ticket.Mode,
		Summary:  ticket.Summary,
	})); err != nil {
		l.Warn("Error sending notice to staff", slog.String(logging.KeyError, err.Error()))
	}
}

func pointerRef(ticket *entities.Ticket) MessageRef {
	return MessageRef{ChannelID: ticket.UserChannelID, MessageID: ticket.LastMessageID}
}

// lookupUser gets the identity of a user, falling back to the bare ID.
func lookupUser(ctx context.Context, users UserSurface, userID string) Identity {
	id, err := users.Lookup(ctx, userID)
	if err != nil || id.ID == "" {
		return Identity{ID: userID, Name: userID}
	}
	return id
}

func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeRelayed
	case errors.Is(err, ErrDeliveryFailed):
		return outcomeDeliveryFailed
	case errors.Is(err, ErrUnknownStaffChannel), errors.Is(err, ErrPointerNotFound), errors.Is(err, ErrNoReference):
		return outcomeUnresolved
	}
	return outcomeError
}
