package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/lfmcord/staffmail/cmd/bot/monitoring"
	"github.com/lfmcord/staffmail/pkg/entities"
	"github.com/lfmcord/staffmail/pkg/logging"
	"github.com/lfmcord/staffmail/pkg/messages"
	"github.com/lfmcord/staffmail/pkg/staffmail"
	"github.com/lfmcord/staffmail/pkg/surface"
)

// staffCommand handles a staff command. The returned text is posted as a reply when it is not empty.
type staffCommand func(ctx context.Context, a IApp, m *discordgo.Message, args string) (string, error)

var staffCommands = map[string]staffCommand{
	replyCmdName:       replyCommand,
	closeCmdName:       closeCommand(false),
	silentCloseCmdName: closeCommand(true),
	contactCmdName:     contactCommand,
}

// handleStaffMessage runs the staff commands posted in a guild.
func handleStaffMessage(a IApp, m *discordgo.Message) {
	cmd, ok := parseCommand(a.Config().CommandPrefix, m.Content)
	if !ok {
		return
	}
	handler, ok := staffCommands[cmd.name]
	if !ok {
		return
	}

	l := a.Log().With(
		slog.String("command", cmd.name),
		slog.String(logging.KeyChannel, m.ChannelID),
		slog.String(logging.KeyUser, m.Author.ID),
	)

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	reply, err := authorizeStaff(ctx, a, m)
	if err == nil && reply == "" {
		reply, err = handler(ctx, a, m, cmd.args)
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
		l.Error("Error processing staff command", slog.String(logging.KeyError, err.Error()))
		reply = messages.ErrUserErrorProcessing
	}
	monitoring.TotalCommands.WithLabelValues(cmd.name, outcome).Inc()

	if reply == "" {
		return
	}
	if err := replyTo(a, m, reply); err != nil {
		l.Warn("Error replying to staff command", slog.String(logging.KeyError, err.Error()))
	}
}

// authorizeStaff checks that the author has the StaffMail role of the guild. It returns the text to answer with
// when they may not use staff commands.
func authorizeStaff(ctx context.Context, a IApp, m *discordgo.Message) (string, error) {
	cfg, err := a.GuildDal().StaffMailConfig(ctx, m.GuildID)
	if err != nil {
		return "", fmt.Errorf("error getting staffmail config: %w", err)
	} else if cfg == nil || cfg.RoleID == "" {
		return messages.ErrStaffMailDisabled, nil
	}

	if !hasRole(m.Member, cfg.RoleID) {
		return messages.ErrNotStaff, nil
	}
	return "", nil
}

func replyCommand(ctx context.Context, a IApp, m *discordgo.Message, args string) (string, error) {
	msg := surface.Message(m)
	msg.Content = args
	if msg.Content == "" && len(msg.Attachments) == 0 {
		return fmt.Sprintf(messages.UsageReply, a.Config().CommandPrefix), nil
	}

	_, err := a.Engine().RelayFromStaff(ctx, *msg)
	switch {
	case err == nil:
		return "", nil
	case errors.Is(err, staffmail.ErrUnknownStaffChannel):
		return messages.ErrNotStaffMailChannel, nil
	case errors.Is(err, staffmail.ErrDeliveryFailed):
		// Staff have been sent a notice.
		return "", nil
	}
	return "", err
}

func closeCommand(silent bool) staffCommand {
	return func(ctx context.Context, a IApp, m *discordgo.Message, args string) (string, error) {
		res, err := a.Manager().CloseTicket(ctx, staffmail.CloseRequest{
			StaffChannelID: m.ChannelID,
			ClosedBy:       surface.Identity(m.Author),
			Reason:         args,
			Silent:         silent,
		})
		if errors.Is(err, staffmail.ErrUnknownStaffChannel) {
			return messages.ErrNotStaffMailChannel, nil
		} else if err != nil {
			return "", err
		}

		// A failed notification already left a notice in the channel.
		if res.ChannelDeleted || res.NotifyErr != nil {
			return "", nil
		}
		return messages.ClosedInChannel, nil
	}
}

func contactCommand(ctx context.Context, a IApp, m *discordgo.Message, args string) (string, error) {
	userID, text, ok := parseMention(args)
	if !ok {
		return fmt.Sprintf(messages.UsageContact, a.Config().CommandPrefix), nil
	}

	user, err := guildUser(a.Session(), m.GuildID, userID)
	if err != nil {
		return "", fmt.Errorf("error getting member: %w", err)
	}

	var seed *staffmail.Message
	if msg := surface.Message(m); text != "" || len(msg.Attachments) > 0 {
		msg.Content = text
		seed = msg
	}

	ticket, err := a.Manager().CreateTicket(ctx, staffmail.CreateRequest{
		GuildID:   m.GuildID,
		User:      surface.Identity(user),
		CreatedBy: surface.Identity(m.Author),
		Category:  entities.CategoryStaff,
		Mode:      entities.ModeNamed,
		Summary:   messages.ContactSummary,
		Seed:      seed,
	})
	switch {
	case err == nil:
		return fmt.Sprintf(messages.ContactDone, ticket.StaffChannelID), nil
	case errors.Is(err, staffmail.ErrTicketAlreadyOpen) && ticket != nil:
		return fmt.Sprintf(messages.ErrContactAlreadyOpen, ticket.StaffChannelID), nil
	case errors.Is(err, staffmail.ErrCreationRejected):
		return messages.ErrStaffMailDisabled, nil
	case errors.Is(err, staffmail.ErrDeliveryFailed):
		return messages.ErrUserUnreachable, nil
	}
	return "", err
}

// guildUser finds a member of the guild, from the state cache when possible.
func guildUser(s *discordgo.Session, guildID string, userID string) (*discordgo.User, error) {
	if member, err := s.State.Member(guildID, userID); err == nil && member.User != nil {
		return member.User, nil
	}

	member, err := s.GuildMember(guildID, userID)
	if err != nil {
		return nil, err
	} else if member.User == nil {
		return nil, fmt.Errorf("member %s has no user", userID)
	}
	return member.User, nil
}
