package staffmail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/lfmcord/staffmail/pkg/custom"
	"github.com/lfmcord/staffmail/pkg/entities"
)

var errBoom = errors.New("boom")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memoryStore struct {
	mu      sync.Mutex
	tickets map[string]entities.Ticket

	// writes counts successful mutations.
	writes int

	failCreate error
	failUpdate error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{tickets: make(map[string]entities.Ticket)}
}

func (s *memoryStore) Create(_ context.Context, ticket *entities.Ticket) (*entities.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate != nil {
		return nil, s.failCreate
	}
	for _, t := range s.tickets {
		if t.StaffChannelID == ticket.StaffChannelID {
			return nil, ErrDuplicateTicket
		}
	}
	s.tickets[ticket.ID] = *ticket
	s.writes++
	cp := *ticket
	return &cp, nil
}

func (s *memoryStore) find(match func(t entities.Ticket) bool) *entities.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tickets {
		if match(t) {
			cp := t
			return &cp
		}
	}
	return nil
}

func (s *memoryStore) GetByStaffChannelID(_ context.Context, channelID string) (*entities.Ticket, error) {
	return s.find(func(t entities.Ticket) bool { return t.StaffChannelID == channelID }), nil
}

func (s *memoryStore) GetByLastMessageID(_ context.Context, messageID string) (*entities.Ticket, error) {
	return s.find(func(t entities.Ticket) bool { return t.LastMessageID == messageID }), nil
}

func (s *memoryStore) GetByUserID(_ context.Context, userID string) (*entities.Ticket, error) {
	return s.find(func(t entities.Ticket) bool { return t.UserID == userID }), nil
}

func (s *memoryStore) UpdatePointer(_ context.Context, ticketID string, messageID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdate != nil {
		return s.failUpdate
	}
	t, ok := s.tickets[ticketID]
	if !ok {
		return ErrNotFound
	}
	t.LastMessageID = messageID
	t.LastMessageAt = custom.Datetime(at)
	s.tickets[ticketID] = t
	s.writes++
	return nil
}

func (s *memoryStore) Delete(_ context.Context, ticketID string) (*entities.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[ticketID]
	if !ok {
		return nil, nil
	}
	delete(s.tickets, ticketID)
	s.writes++
	return &t, nil
}

func (s *memoryStore) get(id string) (entities.Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	return t, ok
}

func (s *memoryStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// sent is a message delivered to a fake surface.
type sent struct {
	To     string
	Ref    MessageRef
	Banner Banner
}

// fakeSurface records what the core does to a surface.
type fakeSurface struct {
	mu      sync.Mutex
	prefix  string
	counter int

	sent    []sent
	pins    map[MessageRef]bool
	deleted []MessageRef

	// mostPinned is the largest number of messages that were pinned at the same time.
	mostPinned int

	pinNoticesRemoved int

	failSend   error
	failPin    error
	failDelete error
}

func newFakeSurface(prefix string) *fakeSurface {
	return &fakeSurface{prefix: prefix, pins: make(map[MessageRef]bool)}
}

func (f *fakeSurface) send(to string, channelID string, msg Rendered) (MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend != nil {
		return MessageRef{}, f.failSend
	}
	f.counter++
	ref := MessageRef{ChannelID: channelID, MessageID: fmt.Sprintf("%s-msg-%d", f.prefix, f.counter)}
	f.sent = append(f.sent, sent{To: to, Ref: ref, Banner: msg.(Banner)})
	return ref, nil
}

func (f *fakeSurface) Pin(_ context.Context, ref MessageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPin != nil {
		return f.failPin
	}
	f.pins[ref] = true
	f.mostPinned = max(f.mostPinned, len(f.pins))
	return nil
}

func (f *fakeSurface) Unpin(_ context.Context, ref MessageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pins, ref)
	return nil
}

func (f *fakeSurface) Fetch(_ context.Context, ref MessageRef) (*Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sent {
		if s.Ref == ref {
			return &Message{ID: ref.MessageID, ChannelID: ref.ChannelID, Content: s.Banner.Body}, nil
		}
	}
	return nil, nil
}

func (f *fakeSurface) Delete(_ context.Context, ref MessageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete != nil {
		return f.failDelete
	}
	f.deleted = append(f.deleted, ref)
	return nil
}

func (f *fakeSurface) pinned() []MessageRef {
	f.mu.Lock()
	defer f.mu.Unlock()
	refs := make([]MessageRef, 0, len(f.pins))
	for ref := range f.pins {
		refs = append(refs, ref)
	}
	return refs
}

func (f *fakeSurface) peakPinned() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mostPinned
}

func (f *fakeSurface) messages() []sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sent(nil), f.sent...)
}

func (f *fakeSurface) last() sent {
	msgs := f.messages()
	return msgs[len(msgs)-1]
}

type fakeUsers struct {
	*fakeSurface
	identities map[string]Identity
}

func newFakeUsers(ids ...Identity) *fakeUsers {
	u := &fakeUsers{fakeSurface: newFakeSurface("dm"), identities: make(map[string]Identity)}
	for _, id := range ids {
		u.identities[id.ID] = id
	}
	return u
}

func (u *fakeUsers) Send(_ context.Context, userID string, msg Rendered) (MessageRef, error) {
	return u.send(userID, "dm-"+userID, msg)
}

func (u *fakeUsers) Lookup(_ context.Context, userID string) (Identity, error) {
	id, ok := u.identities[userID]
	if !ok {
		return Identity{}, errBoom
	}
	return id, nil
}

func (u *fakeUsers) RemoveLatestPinNotice(_ context.Context, _ string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.pinNoticesRemoved++
	return nil
}

type fakeStaff struct {
	*fakeSurface
	channels map[string]string

	deletedChannels []string
	failCreate      error
}

func newFakeStaff() *fakeStaff {
	return &fakeStaff{fakeSurface: newFakeSurface("staff"), channels: make(map[string]string)}
}

func (s *fakeStaff) Send(_ context.Context, channelID string, msg Rendered) (MessageRef, error) {
	s.mu.Lock()
	_, ok := s.channels[channelID]
	s.mu.Unlock()
	if !ok {
		return MessageRef{}, ErrUnknownStaffChannel
	}
	return s.send(channelID, channelID, msg)
}

func (s *fakeStaff) CreateDedicatedChannel(_ context.Context, name string, _ string, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate != nil {
		return "", s.failCreate
	}
	id := fmt.Sprintf("chan-%d", len(s.channels)+len(s.deletedChannels)+1)
	s.channels[id] = name
	return id, nil
}

func (s *fakeStaff) DeleteChannel(_ context.Context, channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.channels, channelID)
	s.deletedChannels = append(s.deletedChannels, channelID)
	return nil
}

func (s *fakeStaff) Transcript(_ context.Context, channelID string) (string, error) {
	return "transcript of " + channelID, nil
}

// bannerRenderer hands the banner itself to the surface.
type bannerRenderer struct{}

func (bannerRenderer) Render(b Banner) Rendered {
	return b
}

type staticDestinations struct {
	cfg *entities.StaffMailConfig
	err error
}

func (d staticDestinations) StaffMailConfig(_ context.Context, _ string) (*entities.StaffMailConfig, error) {
	return d.cfg, d.err
}

type closedEvent struct {
	Ticket     *entities.Ticket
	User       Identity
	ClosedBy   Identity
	Reason     string
	Transcript string
}

type failedEvent struct {
	TicketID string
	Stage    string
	Err      error
}

type recordingAuditor struct {
	mu      sync.Mutex
	created []*entities.Ticket
	closed  []closedEvent
	failed  []failedEvent
}

func (a *recordingAuditor) TicketCreated(_ context.Context, ticket *entities.Ticket, _ Identity, _ Identity) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.created = append(a.created, ticket)
}

func (a *recordingAuditor) TicketClosed(_ context.Context, ticket *entities.Ticket, user Identity, closedBy Identity, reason string, transcript string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = append(a.closed, closedEvent{
		Ticket:     ticket,
		User:       user,
		ClosedBy:   closedBy,
		Reason:     reason,
		Transcript: transcript,
	})
}

func (a *recordingAuditor) RelayFailed(_ context.Context, ticket *entities.Ticket, stage string, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failed = append(a.failed, failedEvent{TicketID: ticket.ID, Stage: stage, Err: err})
}

var (
	testUser  = Identity{ID: "U1", Name: "Listener"}
	testStaff = Identity{ID: "S1", Name: "Moderator"}
)

// harness wires a Manager and an Engine to fakes.
type harness struct {
	store   *memoryStore
	users   *fakeUsers
	staff   *fakeStaff
	audit   *recordingAuditor
	cfg     *entities.StaffMailConfig
	manager *Manager
	engine  *Engine
}

func newHarness() *harness {
	h := &harness{
		store: newMemoryStore(),
		users: newFakeUsers(testUser),
		staff: newFakeStaff(),
		audit: new(recordingAuditor),
		cfg: &entities.StaffMailConfig{
			Enabled:      true,
			CategoryID:   "parent",
			RoleID:       "role",
			LogChannelID: "log",
		},
	}

	l := testLogger()
	locks := NewLocker(0)
	h.manager = NewManager(l, h.store, h.users, h.staff, bannerRenderer{}, staticDestinations{cfg: h.cfg}, h.audit, locks)
	h.engine = NewEngine(l, h.store, h.users, h.staff, bannerRenderer{}, h.audit, locks)

	ids := 0
	h.manager.newID = func() string {
		ids++
		return fmt.Sprintf("0000000%d-aaaa-bbbb-cccc-dddddddddddd", ids)
	}
	return h
}

func (h *harness) open(mode entities.Mode) (*entities.Ticket, error) {
	return h.manager.CreateTicket(context.Background(), CreateRequest{
		GuildID:  "G1",
		User:     testUser,
		Category: entities.CategoryOther,
		Mode:     mode,
		Summary:  "billing question",
	})
}

func staffMessage(channelID string, id string, content string) Message {
	return Message{
		ID:        id,
		ChannelID: channelID,
		GuildID:   "G1",
		Author:    testStaff,
		Content:   content,
	}
}

func userReply(referenceID string, content string) Message {
	return Message{
		ID:          "in-" + content,
		ChannelID:   "dm-" + testUser.ID,
		Author:      testUser,
		Content:     content,
		ReferenceID: referenceID,
	}
}
