package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/lfmcord/staffmail/cmd/bot/config"
	"github.com/lfmcord/staffmail/pkg/custom"
	"github.com/lfmcord/staffmail/pkg/dataaccess"
	"github.com/lfmcord/staffmail/pkg/entities"
	"github.com/lfmcord/staffmail/pkg/staffmail"
)

const testGuildID = "G1"

// stubApp is an IApp backed by in-memory collaborators.
type stubApp struct {
	l       *slog.Logger
	s       *discordgo.Session
	cfg     *config.Config
	guilds  *memoryGuilds
	manager *staffmail.Manager
	engine  *staffmail.Engine

	tickets *memoryTickets
	users   *fakeDMs
	staff   *fakeChannels
}

func (a *stubApp) Log() *slog.Logger { return a.l }

func (a *stubApp) Session() *discordgo.Session { return a.s }

func (a *stubApp) Config() *config.Config { return a.cfg }

func (a *stubApp) GuildDal() dataaccess.GuildDal { return a.guilds }

func (a *stubApp) Manager() *staffmail.Manager { return a.manager }

func (a *stubApp) Engine() *staffmail.Engine { return a.engine }

func newStubApp() *stubApp {
	l := slog.New(slog.NewTextHandler(io.Discard, nil))

	a := &stubApp{
		l: l,
		s: &discordgo.Session{State: discordgo.NewState()},
		cfg: &config.Config{
			GuildId:       testGuildID,
			CommandPrefix: ">>",
		},
		guilds: &memoryGuilds{guilds: map[string]*entities.Guild{
			testGuildID: {
				ID: testGuildID,
				StaffMail: entities.StaffMailConfig{
					Enabled:    true,
					CategoryID: "parent",
					RoleID:     "staff-role",
				},
			},
		}},
		tickets: &memoryTickets{tickets: make(map[string]entities.Ticket)},
		users:   &fakeDMs{},
		staff:   &fakeChannels{channels: make(map[string]bool)},
	}

	locks := staffmail.NewLocker(0)
	audit := nopAuditor{}
	a.manager = staffmail.NewManager(l, a.tickets, a.users, a.staff, bannerRenderer{}, a.guilds, audit, locks)
	a.engine = staffmail.NewEngine(l, a.tickets, a.users, a.staff, bannerRenderer{}, audit, locks)

	if err := a.s.State.GuildAdd(&discordgo.Guild{ID: testGuildID}); err != nil {
		panic(err)
	}
	return a
}

// addMember makes a user known to the guild.
func (a *stubApp) addMember(u *discordgo.User) {
	if err := a.s.State.MemberAdd(&discordgo.Member{GuildID: testGuildID, User: u}); err != nil {
		panic(err)
	}
}

type memoryGuilds struct {
	mu     sync.Mutex
	guilds map[string]*entities.Guild
}

func (g *memoryGuilds) SaveGuild(_ context.Context, guild *entities.Guild) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	cp := *guild
	g.guilds[guild.ID] = &cp
	return nil
}

func (g *memoryGuilds) GetGuildByID(_ context.Context, id string) (*entities.Guild, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	guild, ok := g.guilds[id]
	if !ok {
		return nil, nil
	}
	cp := *guild
	return &cp, nil
}

func (g *memoryGuilds) StaffMailConfig(ctx context.Context, guildID string) (*entities.StaffMailConfig, error) {
	guild, err := g.GetGuildByID(ctx, guildID)
	if err != nil || guild == nil {
		return nil, err
	}
	return &guild.StaffMail, nil
}

func (g *memoryGuilds) update(fn func(cfg *entities.StaffMailConfig)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(&g.guilds[testGuildID].StaffMail)
}

type memoryTickets struct {
	mu      sync.Mutex
	tickets map[string]entities.Ticket
}

func (s *memoryTickets) Create(_ context.Context, ticket *entities.Ticket) (*entities.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[ticket.ID] = *ticket
	cp := *ticket
	return &cp, nil
}

func (s *memoryTickets) find(match func(t entities.Ticket) bool) *entities.Ticket {
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

func (s *memoryTickets) GetByStaffChannelID(_ context.Context, channelID string) (*entities.Ticket, error) {
	return s.find(func(t entities.Ticket) bool { return t.StaffChannelID == channelID }), nil
}

func (s *memoryTickets) GetByLastMessageID(_ context.Context, messageID string) (*entities.Ticket, error) {
	return s.find(func(t entities.Ticket) bool { return t.LastMessageID == messageID }), nil
}

func (s *memoryTickets) GetByUserID(_ context.Context, userID string) (*entities.Ticket, error) {
	return s.find(func(t entities.Ticket) bool { return t.UserID == userID }), nil
}

func (s *memoryTickets) UpdatePointer(_ context.Context, ticketID string, messageID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[ticketID]
	if !ok {
		return staffmail.ErrNotFound
	}
	t.LastMessageID = messageID
	t.LastMessageAt = custom.Datetime(at)
	s.tickets[ticketID] = t
	return nil
}

func (s *memoryTickets) Delete(_ context.Context, ticketID string) (*entities.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[ticketID]
	if !ok {
		return nil, nil
	}
	delete(s.tickets, ticketID)
	return &t, nil
}

func (s *memoryTickets) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tickets)
}

// fakeDMs delivers direct messages to nobody.
type fakeDMs struct {
	mu       sync.Mutex
	counter  int
	sent     []staffmail.Banner
	failSend error
}

func (f *fakeDMs) Send(_ context.Context, userID string, msg staffmail.Rendered) (staffmail.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend != nil {
		return staffmail.MessageRef{}, f.failSend
	}
	f.counter++
	f.sent = append(f.sent, msg.(staffmail.Banner))
	return staffmail.MessageRef{ChannelID: "dm-" + userID, MessageID: fmt.Sprintf("dm-%d", f.counter)}, nil
}

func (f *fakeDMs) banners() []staffmail.Banner {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]staffmail.Banner(nil), f.sent...)
}

func (f *fakeDMs) Lookup(_ context.Context, userID string) (staffmail.Identity, error) {
	return staffmail.Identity{ID: userID, Name: "user-" + userID}, nil
}

func (f *fakeDMs) RemoveLatestPinNotice(context.Context, string) error { return nil }
func (f *fakeDMs) Pin(context.Context, staffmail.MessageRef) error     { return nil }
func (f *fakeDMs) Unpin(context.Context, staffmail.MessageRef) error   { return nil }
func (f *fakeDMs) Delete(context.Context, staffmail.MessageRef) error  { return nil }

func (f *fakeDMs) Fetch(context.Context, staffmail.MessageRef) (*staffmail.Message, error) {
	return nil, nil
}

// fakeChannels is a guild with staff channels.
type fakeChannels struct {
	mu       sync.Mutex
	counter  int
	channels map[string]bool
	deleted  []string
}

func (f *fakeChannels) Send(_ context.Context, channelID string, _ staffmail.Rendered) (staffmail.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.channels[channelID] {
		return staffmail.MessageRef{}, staffmail.ErrUnknownStaffChannel
	}
	f.counter++
	return staffmail.MessageRef{ChannelID: channelID, MessageID: fmt.Sprintf("staff-%d", f.counter)}, nil
}

func (f *fakeChannels) CreateDedicatedChannel(context.Context, string, string, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counter++
	id := fmt.Sprintf("chan-%d", f.counter)
	f.channels[id] = true
	return id, nil
}

func (f *fakeChannels) DeleteChannel(_ context.Context, channelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.channels, channelID)
	f.deleted = append(f.deleted, channelID)
	return nil
}

func (f *fakeChannels) deletedChannels() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func (f *fakeChannels) Transcript(context.Context, string) (string, error) { return "", nil }
func (f *fakeChannels) Pin(context.Context, staffmail.MessageRef) error    { return nil }
func (f *fakeChannels) Unpin(context.Context, staffmail.MessageRef) error  { return nil }
func (f *fakeChannels) Delete(context.Context, staffmail.MessageRef) error { return nil }

func (f *fakeChannels) Fetch(context.Context, staffmail.MessageRef) (*staffmail.Message, error) {
	return nil, nil
}

// bannerRenderer hands the banner itself to the surface.
type bannerRenderer struct{}

func (bannerRenderer) Render(b staffmail.Banner) staffmail.Rendered { return b }

type nopAuditor struct{}

func (nopAuditor) TicketCreated(context.Context, *entities.Ticket, staffmail.Identity, staffmail.Identity) {
}

func (nopAuditor) TicketClosed(context.Context, *entities.Ticket, staffmail.Identity, staffmail.Identity, string, string) {
}

func (nopAuditor) RelayFailed(context.Context, *entities.Ticket, string, error) {}

var errUnreachable = fmt.Errorf("%w: cannot send messages to this user", staffmail.ErrDeliveryFailed)
