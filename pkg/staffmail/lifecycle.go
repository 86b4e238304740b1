package staffmail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lfmcord/staffmail/pkg/custom"
	"github.com/lfmcord/staffmail/pkg/entities"
	"github.com/lfmcord/staffmail/pkg/logging"
)

// CreateRequest is a request to open a ticket.
type CreateRequest struct {
	// GuildID is the guild the ticket is opened in.
	GuildID string

	// User is the user the ticket is for.
	User Identity

	// CreatedBy is the staff member who opened the ticket. It is empty when the user opened it.
	CreatedBy Identity

	Category entities.Category
	Mode     entities.Mode
	Summary  string

	// Seed is the first message of the ticket, if any. For user-opened tickets it is relayed to staff, for
	// staff-opened tickets it is shown to the user in the opening banner.
	Seed *Message
}

func (r *CreateRequest) openedByStaff() bool {
	return !r.CreatedBy.Generic()
}

// CloseRequest is a request to close the ticket of a staff channel.
type CloseRequest struct {
	StaffChannelID string
	ClosedBy       Identity
	Reason         string

	// Silent skips telling the user.
	Silent bool
}

// CloseResult describes what happened when a ticket was closed.
type CloseResult struct {
	// Ticket is the deleted ticket.
	Ticket *entities.Ticket

	// Notified is whether the user was sent the closing banner.
	Notified bool

	// NotifyErr is why the user could not be notified, if they could not.
	NotifyErr error

	// ChannelDeleted is whether the staff channel was deleted.
	ChannelDeleted bool
}

// Manager opens and closes tickets.
type Manager struct {
	l            *slog.Logger
	store        TicketStore
	users        UserSurface
	staff        StaffSurface
	renderer     Renderer
	destinations Destinations
	audit        Auditor
	locks        *Locker

	now   func() time.Time
	newID func() string
}

// NewManager creates a new Manager.
func NewManager(
	l *slog.Logger,
	store TicketStore,
	users UserSurface,
	staff StaffSurface,
	renderer Renderer,
	destinations Destinations,
	audit Auditor,
	locks *Locker,
) *Manager {
	return &Manager{
		l:            l.With(slog.String("component", "staffmail_lifecycle")),
		store:        store,
		users:        users,
		staff:        staff,
		renderer:     renderer,
		destinations: destinations,
		audit:        audit,
		locks:        locks,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
	}
}

// CreateTicket opens a ticket: it creates the staff channel, announces the ticket on both sides, pins the user's
// banner and persists the ticket with the banner as its latest message.
func (m *Manager) CreateTicket(ctx context.Context, req CreateRequest) (*entities.Ticket, error) {
	if req.User.ID == "" {
		return nil, fmt.Errorf("%w: user is required", ErrCreationRejected)
	}
	if req.Mode != entities.ModeNamed && req.Mode != entities.ModeAnonymous {
		return nil, fmt.Errorf("%w: unknown mode %d", ErrCreationRejected, req.Mode)
	}
	if !req.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrCreationRejected, req.Category)
	}
	if req.Mode == entities.ModeAnonymous && !req.Category.Template().AllowAnonymous {
		return nil, fmt.Errorf("%w: category %q cannot be anonymous", ErrCreationRejected, req.Category)
	}

	cfg, err := m.destinations.StaffMailConfig(ctx, req.GuildID)
	if err != nil {
		return nil, fmt.Errorf("error getting staffmail configuration: %w", err)
	}
	if cfg == nil || !cfg.Enabled || cfg.CategoryID == "" {
		return nil, fmt.Errorf("%w: staffmail is not configured for guild %s", ErrCreationRejected, req.GuildID)
	}

	unlock, err := m.locks.Lock(ctx, userKey(req.User.ID))
	if err != nil {
		return nil, fmt.Errorf("error waiting for user lock: %w", err)
	}
	defer unlock()

	existing, err := m.store.GetByUserID(ctx, req.User.ID)
	if err != nil {
		return nil, fmt.Errorf("error getting open ticket of user: %w", err)
	}
	if existing != nil {
		return existing, ErrTicketAlreadyOpen
	}

	now := m.now()
	ticket := &entities.Ticket{
		ID:            m.newID(),
		GuildID:       req.GuildID,
		UserID:        req.User.ID,
		Mode:          req.Mode,
		Category:      req.Category,
		Summary:       req.Summary,
		CreatedAt:     custom.Datetime(now),
		LastMessageAt: custom.Datetime(now),
	}

	l := m.l.With(slog.String(logging.KeyTicket, ticket.ID))

	disclosed := RenderIdentity(ticket.Mode, ActorUser, req.User)
	createdBy := disclosed
	if req.openedByStaff() {
		createdBy = req.CreatedBy
	}

	channelID, err := m.staff.CreateDedicatedChannel(ctx, channelName(ticket, req.User), cfg.CategoryID, topic(ticket))
	if err != nil {
		return nil, fmt.Errorf("error creating staff channel: %w", err)
	}
	ticket.StaffChannelID = channelID
	l = l.With(slog.String(logging.KeyChannel, channelID))

	if _, err := m.staff.Send(ctx, channelID, m.renderer.Render(Banner{
		Kind:          BannerStaffNew,
		Sender:        disclosed,
		CreatedBy:     createdBy,
		Category:      ticket.Category,
		Mode:          ticket.Mode,
		Summary:       ticket.Summary,
		OpenedByStaff: req.openedByStaff(),
	})); err != nil {
		m.abandonChannel(ctx, l, channelID)
		return nil, fmt.Errorf("error sending staff banner: %w", err)
	}

	if seed := req.Seed; seed != nil && (seed.Content != "" || len(seed.Attachments) > 0) {
		b := Banner{
			Kind:        BannerStaffIncoming,
			Sender:      disclosed,
			Recipient:   StaffIdentity,
			Body:        seed.Content,
			Attachments: seed.Attachments,
		}
		if req.openedByStaff() {
			b.Kind = BannerStaffOutgoing
			b.Sender = req.CreatedBy
			b.Recipient = disclosed
		}
		if _, err := m.staff.Send(ctx, channelID, m.renderer.Render(b)); err != nil {
			m.abandonChannel(ctx, l, channelID)
			return nil, fmt.Errorf("error sending first message to staff: %w", err)
		}
	}

	opened := Banner{
		Kind:          BannerUserOpened,
		Sender:        StaffIdentity,
		Recipient:     req.User,
		Category:      ticket.Category,
		Mode:          ticket.Mode,
		Summary:       ticket.Summary,
		OpenedByStaff: req.openedByStaff(),
	}
	if req.openedByStaff() && req.Seed != nil {
		opened.Body = req.Seed.Content
		opened.Attachments = req.Seed.Attachments
	}

	ref, err := m.users.Send(ctx, ticket.UserID, m.renderer.Render(opened))
	if err != nil {
		if errors.Is(err, ErrDeliveryFailed) {
			m.audit.RelayFailed(ctx, ticket, "create", err)
		}
		m.abandonChannel(ctx, l, channelID)
		return nil, fmt.Errorf("error sending opening banner to user: %w", err)
	}

	if err := m.users.Pin(ctx, ref); err != nil {
		l.Warn("Error pinning opening banner", slog.String(logging.KeyError, err.Error()))
	} else if err := m.users.RemoveLatestPinNotice(ctx, ref.ChannelID); err != nil {
		l.Debug("Error removing pin notice", slog.String(logging.KeyError, err.Error()))
	}

	ticket.UserChannelID = ref.ChannelID
	ticket.MainMessageID = ref.MessageID
	ticket.LastMessageID = ref.MessageID

	created, err := m.store.Create(ctx, ticket)
	if err != nil {
		m.rollbackCreate(ctx, l, ticket, ref)
		return nil, fmt.Errorf("error saving ticket: %w", err)
	}

	TicketsOpened.WithLabelValues(string(created.Category), created.Mode.String()).Inc()
	l.Info("StaffMail opened",
		slog.String("category", string(created.Category)),
		slog.String("mode", created.Mode.String()),
	)

	m.audit.TicketCreated(ctx, created, disclosed, createdBy)
	return created, nil
}

// CloseTicket closes the ticket of a staff channel. The ticket is deleted before anything else happens so that no
// relay can target it afterwards; failing to tell the user does not undo the close.
func (m *Manager) CloseTicket(ctx context.Context, req CloseRequest) (*CloseResult, error) {
	ticket, err := m.store.GetByStaffChannelID(ctx, req.StaffChannelID)
	if err != nil {
		return nil, fmt.Errorf("error getting ticket: %w", err)
	}
	if ticket == nil {
		return nil, ErrUnknownStaffChannel
	}

	unlock, err := m.locks.Lock(ctx, ticketKey(ticket.ID))
	if err != nil {
		return nil, fmt.Errorf("error waiting for ticket lock: %w", err)
	}
	defer unlock()

	deleted, err := m.store.Delete(ctx, ticket.ID)
	if err != nil {
		return nil, fmt.Errorf("error deleting ticket: %w", err)
	}
	if deleted == nil {
		return nil, ErrUnknownStaffChannel
	}

	l := m.l.With(
		slog.String(logging.KeyTicket, deleted.ID),
		slog.String(logging.KeyChannel, deleted.StaffChannelID),
	)
	res := &CloseResult{Ticket: deleted}

	if req.Silent {
		l.Info("Silent close, not notifying user")
	} else {
		_, err := m.users.Send(ctx, deleted.UserID, m.renderer.Render(Banner{
			Kind:     BannerUserClosed,
			Sender:   StaffIdentity,
			Category: deleted.Category,
			Mode:     deleted.Mode,
			Summary:  deleted.Summary,
			Reason:   req.Reason,
		}))
		if err != nil {
			l.Warn("Error sending closing banner to user", slog.String(logging.KeyError, err.Error()))
			res.NotifyErr = err
			m.noticeStaff(ctx, l, deleted, NoticeCloseNotDelivered)
			m.audit.RelayFailed(ctx, deleted, "close", err)
		} else {
			res.Notified = true
		}
	}

	if deleted.LastMessageID != "" {
		if err := m.users.Unpin(ctx, pointerRef(deleted)); err != nil {
			l.Warn("Error unpinning latest message", slog.String(logging.KeyError, err.Error()))
		}
	}

	transcript, err := m.staff.Transcript(ctx, deleted.StaffChannelID)
	if err != nil {
		l.Warn("Error getting channel transcript", slog.String(logging.KeyError, err.Error()))
	}

	user := m.disclosedUser(ctx, deleted)
	m.audit.TicketClosed(ctx, deleted, user, req.ClosedBy, req.Reason, transcript)
	TicketsClosed.WithLabelValues(strconv.FormatBool(res.Notified)).Inc()

	// Staff need to see the delivery notice, so the channel stays when the user was not told.
	if res.NotifyErr == nil && m.deleteClosedChannels(ctx, deleted.GuildID) {
		if err := m.staff.DeleteChannel(ctx, deleted.StaffChannelID); err != nil {
			l.Warn("Error deleting staff channel", slog.String(logging.KeyError, err.Error()))
		} else {
			res.ChannelDeleted = true
		}
	}

	l.Info("StaffMail closed", slog.Bool("notified", res.Notified), slog.Bool("silent", req.Silent))
	return res, nil
}

func (m *Manager) deleteClosedChannels(ctx context.Context, guildID string) bool {
	cfg, err := m.destinations.StaffMailConfig(ctx, guildID)
	if err != nil {
		m.l.Warn("Error getting staffmail configuration, keeping channel", slog.String(logging.KeyError, err.Error()))
		return false
	}
	return cfg != nil && !cfg.KeepClosedChannels
}

func (m *Manager) disclosedUser(ctx context.Context, ticket *entities.Ticket) Identity {
	return RenderIdentity(ticket.Mode, ActorUser, lookupUser(ctx, m.users, ticket.UserID))
}

func (m *Manager) noticeStaff(ctx context.Context, l *slog.Logger, ticket *entities.Ticket, n Notice) {
	if _, err := m.staff.Send(ctx, ticket.StaffChannelID, m.renderer.Render(Banner{
		Kind:     BannerStaffNotice,
		Notice:   n,
		Category: ticket.Category,
		Mode:     ticket.Mode,
		Summary:  ticket.Summary,
	})); err != nil {
		l.Warn("Error sending notice to staff", slog.String(logging.KeyError, err.Error()))
	}
}

// abandonChannel removes a staff channel of a ticket that could not be created.
func (m *Manager) abandonChannel(ctx context.Context, l *slog.Logger, channelID string) {
	if err := m.staff.DeleteChannel(ctx, channelID); err != nil {
		l.Error("Error deleting staff channel of failed staffmail, it needs to be removed manually",
			slog.String(logging.KeyError, err.Error()))
	}
}

// rollbackCreate undoes the user-visible part of a creation whose ticket could not be saved.
func (m *Manager) rollbackCreate(ctx context.Context, l *slog.Logger, ticket *entities.Ticket, ref MessageRef) {
	if err := m.users.Unpin(ctx, ref); err != nil {
		l.Warn("Error unpinning opening banner", slog.String(logging.KeyError, err.Error()))
	}
	if err := m.users.Delete(ctx, ref); err != nil {
		l.Error("Opening banner of unsaved staffmail could not be deleted, reconcile manually",
			slog.String(logging.KeyUser, ticket.UserID),
			slog.String(logging.KeyMessage, ref.MessageID),
			slog.String(logging.KeyError, err.Error()),
		)
	}
	m.abandonChannel(ctx, l, ticket.StaffChannelID)
}

var channelNameReplacer = regexp.MustCompile(`[^a-z0-9_-]+`)

// channelName returns the name of the staff channel. Anonymous tickets must not leak the username.
func channelName(ticket *entities.Ticket, user Identity) string {
	if ticket.Anonymous() {
		return "anonymous-" + shortID(ticket.ID)
	}

	name := channelNameReplacer.ReplaceAllString(strings.ToLower(user.Name), "-")
	name = strings.Trim(name, "-")
	if name == "" {
		name = "user-" + shortID(ticket.ID)
	}
	return name
}

func topic(ticket *entities.Ticket) string {
	t := ticket.Category.Title()
	if ticket.Summary != "" {
		t += ": " + ticket.Summary
	}
	return t
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
