package audit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/lfmcord/staffmail/pkg/embeds"
	"github.com/lfmcord/staffmail/pkg/entities"
	"github.com/lfmcord/staffmail/pkg/logging"
	"github.com/lfmcord/staffmail/pkg/staffmail"
)

// Logger records StaffMail events in the application log and in the log channel of the guild.
type Logger struct {
	l *slog.Logger

	// destinations provides the log channel of a guild.
	destinations staffmail.Destinations

	// post sends a message to a channel.
	post func(channelID string, msg *discordgo.MessageSend) error
}

// NewLogger creates a new audit Logger.
func NewLogger(l *slog.Logger, s *discordgo.Session, destinations staffmail.Destinations) *Logger {
	return &Logger{
		l:            l,
		destinations: destinations,
		post: func(channelID string, msg *discordgo.MessageSend) error {
			_, err := s.ChannelMessageSendComplex(channelID, msg)
			return err
		},
	}
}

// TicketCreated implements staffmail.Auditor.
func (a *Logger) TicketCreated(ctx context.Context, ticket *entities.Ticket, user staffmail.Identity, createdBy staffmail.Identity) {
	a.l.Info("Staffmail opened",
		slog.String(logging.KeyTicket, ticket.ID),
		slog.String(logging.KeyChannel, ticket.StaffChannelID),
		slog.String("category", string(ticket.Category)),
		slog.String("mode", ticket.Mode.String()),
		slog.Bool("opened_by_staff", createdBy.ID != ticket.UserID))

	a.send(ctx, ticket, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embeds.AuditCreated(ticket, user, createdBy)},
	})
}

// TicketClosed implements staffmail.Auditor. The transcript is attached when there is one.
func (a *Logger) TicketClosed(ctx context.Context, ticket *entities.Ticket, user staffmail.Identity, closedBy staffmail.Identity, reason string, transcript string) {
	a.l.Info("Staffmail closed",
		slog.String(logging.KeyTicket, ticket.ID),
		slog.String(logging.KeyChannel, ticket.StaffChannelID),
		slog.String("closed_by", closedBy.ID))

	msg := &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embeds.AuditClosed(ticket, user, closedBy, reason)},
	}
	if transcript != "" {
		msg.Files = []*discordgo.File{{
			Name:        transcriptName(ticket),
			ContentType: "text/plain",
			Reader:      strings.NewReader(transcript),
		}}
	}

	a.send(ctx, ticket, msg)
}

// RelayFailed implements staffmail.Auditor.
func (a *Logger) RelayFailed(ctx context.Context, ticket *entities.Ticket, stage string, err error) {
	a.l.Warn("Staffmail relay failed",
		slog.String(logging.KeyTicket, ticket.ID),
		slog.String("stage", stage),
		slog.String(logging.KeyError, err.Error()))

	a.send(ctx, ticket, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embeds.AuditRelayFailed(ticket, stage, err)},
	})
}

func (a *Logger) send(ctx context.Context, ticket *entities.Ticket, msg *discordgo.MessageSend) {
	l := a.l.With(slog.String(logging.KeyTicket, ticket.ID))

	cfg, err := a.destinations.StaffMailConfig(ctx, ticket.GuildID)
	if err != nil {
		l.Error("Error getting staffmail config for audit log", slog.String(logging.KeyError, err.Error()))
		return
	} else if cfg == nil || cfg.LogChannelID == "" {
		l.Debug("No staffmail log channel configured")
		return
	}

	msg.AllowedMentions = &discordgo.MessageAllowedMentions{}
	if err := a.post(cfg.LogChannelID, msg); err != nil {
		l.Error("Error posting audit log",
			slog.String(logging.KeyChannel, cfg.LogChannelID),
			slog.String(logging.KeyError, err.Error()))
	}
}

func transcriptName(ticket *entities.Ticket) string {
	return fmt.Sprintf("staffmail-%s.txt", ticket.ID)
}
