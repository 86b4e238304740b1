package embeds

import (
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/lfmcord/staffmail/pkg/entities"
	"github.com/lfmcord/staffmail/pkg/staffmail"
)

// AuditCreated is the log entry of an opened StaffMail.
func AuditCreated(ticket *entities.Ticket, user staffmail.Identity, createdBy staffmail.Identity) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: OpenEmoji + " StaffMail opened",
		Color: ColorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Channel", Value: "<#" + ticket.StaffChannelID + ">", Inline: true},
			{Name: "Category", Value: ticket.Category.Title(), Inline: true},
			{Name: "Mode", Value: ticket.Mode.String(), Inline: true},
			{Name: "User", Value: UserDisplay(user), Inline: false},
			{Name: "Created by", Value: UserDisplay(createdBy), Inline: false},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: ticket.ID},
		Timestamp: ticket.CreatedAt.Time().Format(time.RFC3339),
	}
}

// AuditClosed is the log entry of a closed StaffMail.
func AuditClosed(ticket *entities.Ticket, user staffmail.Identity, closedBy staffmail.Identity, reason string) *discordgo.MessageEmbed {
	if reason == "" {
		reason = "No reason given"
	}

	return &discordgo.MessageEmbed{
		Title: ClosedEmoji + " StaffMail closed",
		Color: ColorRed,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Summary", Value: ticketTitle(ticket.Category, ticket.Summary), Inline: false},
			{Name: "User", Value: UserDisplay(user), Inline: true},
			{Name: "Closed by", Value: UserDisplay(closedBy), Inline: true},
			{Name: "Reason", Value: reason, Inline: false},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: ticket.ID},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// AuditRelayFailed is the log entry of a message that could not be delivered.
func AuditRelayFailed(ticket *entities.Ticket, stage string, err error) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       WarningEmoji + " StaffMail delivery failed",
		Description: err.Error(),
		Color:       ColorRed,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Channel", Value: "<#" + ticket.StaffChannelID + ">", Inline: true},
			{Name: "Stage", Value: stage, Inline: true},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: ticket.ID},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
