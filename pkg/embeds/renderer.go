package embeds

import (
	"fmt"
	"strings"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/lfmcord/staffmail/pkg/entities"
	"github.com/lfmcord/staffmail/pkg/messages"
	"github.com/lfmcord/staffmail/pkg/staffmail"
)

const (
	ColorBlue  = 0x3498DB
	ColorGreen = 0x008000
	ColorSent  = 0xB80310
	ColorRed   = 0xE74C3C
)

const (
	// IncomingEmoji is the emoji of received messages. (Inbox tray)
	IncomingEmoji = "\U0001F4E5"

	// OutgoingEmoji is the emoji of sent messages. (Outbox tray)
	OutgoingEmoji = "\U0001F4E4"

	// OpenEmoji is the emoji of opened StaffMails. (Green circle)
	OpenEmoji = "\U0001F7E2"

	// ClosedEmoji is the emoji of closed StaffMails. (Red circle)
	ClosedEmoji = "\U0001F534"

	// WarningEmoji is the emoji of notices to staff. (Warning sign)
	WarningEmoji = "⚠️"
)

const (
	footerReplyToStaff = "Please reply to this message to send a reply to staff."
	footerFollowUp     = "To send a follow up message, reply to this message."
	anonymousUser      = "Anonymous User"
)

// Renderer renders StaffMail banners as Discord messages.
type Renderer struct {
	// prefix is the prefix of text commands.
	prefix string

	now func() time.Time
}

// NewRenderer creates a new Renderer.
func NewRenderer(prefix string) *Renderer {
	return &Renderer{
		prefix: prefix,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Upload is a rendered banner whose attachments are uploaded again with the message. The relayed message may be
// deleted, and its attachments with it.
type Upload struct {
	Message *discordgo.MessageSend
	Files   []staffmail.Attachment
}

// Render implements staffmail.Renderer. The result is a *discordgo.MessageSend, or an *Upload when the banner
// carries attachments.
func (r *Renderer) Render(b staffmail.Banner) staffmail.Rendered {
	if len(b.Attachments) == 0 {
		return r.Message(b)
	}

	files := b.Attachments
	b.Attachments = nil
	return &Upload{
		Message: r.Message(b),
		Files:   files,
	}
}

// Message renders a banner.
func (r *Renderer) Message(b staffmail.Banner) *discordgo.MessageSend {
	switch b.Kind {
	case staffmail.BannerStaffNew:
		return embedMessage(r.staffNew(b))
	case staffmail.BannerStaffIncoming:
		return embedMessage(r.staffIncoming(b))
	case staffmail.BannerStaffOutgoing:
		return embedMessage(r.staffOutgoing(b))
	case staffmail.BannerStaffNotice:
		return embedMessage(r.staffNotice(b))
	case staffmail.BannerUserOpened:
		msg := embedMessage(r.userOpened(b))
		if b.Body != "" || len(b.Attachments) > 0 {
			msg.Embeds = append(msg.Embeds, r.userIncoming(b))
		}
		return msg
	case staffmail.BannerUserIncoming:
		return embedMessage(r.userIncoming(b))
	case staffmail.BannerUserOutgoing:
		return embedMessage(r.userOutgoing(b))
	case staffmail.BannerUserClosed:
		return embedMessage(r.userClosed(b))
	case staffmail.BannerUserGuidance:
		return r.guidance(b)
	}
	return &discordgo.MessageSend{Content: b.Body}
}

func (r *Renderer) staffNew(b staffmail.Banner) *discordgo.MessageEmbed {
	title := b.Summary
	if title == "" {
		title = "New StaffMail"
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Category", Value: b.Category.Title(), Inline: true},
	}
	if b.Summary != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Summary", Value: b.Summary, Inline: true})
	}
	fields = append(fields,
		&discordgo.MessageEmbedField{Name: "User", Value: UserDisplay(b.Sender), Inline: false},
		&discordgo.MessageEmbedField{Name: "Created by", Value: UserDisplay(b.CreatedBy), Inline: false},
	)

	return &discordgo.MessageEmbed{
		Title:       title,
		Description: fmt.Sprintf(messages.StaffCommands, r.prefix, r.prefix, r.prefix),
		Color:       ColorBlue,
		Fields:      fields,
		Footer:      identityFooter(b.Sender),
		Timestamp:   r.timestamp(),
	}
}

func (r *Renderer) staffIncoming(b staffmail.Banner) *discordgo.MessageEmbed {
	name := b.Sender.Name
	if b.Sender.Generic() {
		name = anonymousUser
	}

	return &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name:    name + " -> Staff",
			IconURL: b.Sender.AvatarURL,
		},
		Title:       IncomingEmoji + " Message received",
		Description: b.Body,
		Color:       ColorGreen,
		Fields:      attachmentFields(b.Attachments),
		Footer:      identityFooter(b.Sender),
		Timestamp:   r.timestamp(),
	}
}

func (r *Renderer) staffOutgoing(b staffmail.Banner) *discordgo.MessageEmbed {
	recipient := b.Recipient.Name
	if b.Recipient.Generic() {
		recipient = anonymousUser
	}

	return &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name:    b.Sender.Name + " -> " + recipient,
			IconURL: b.Sender.AvatarURL,
		},
		Title:       OutgoingEmoji + " Message sent",
		Description: b.Body,
		Color:       ColorSent,
		Fields:      attachmentFields(b.Attachments),
		Footer:      identityFooter(b.Sender),
		Timestamp:   r.timestamp(),
	}
}

func (r *Renderer) staffNotice(b staffmail.Banner) *discordgo.MessageEmbed {
	var desc string
	switch b.Notice {
	case staffmail.NoticeUserUnreachable:
		desc = messages.NoticeUserUnreachable
	case staffmail.NoticeCloseNotDelivered:
		desc = messages.NoticeCloseNotDelivered
	default:
		desc = b.Body
	}

	return &discordgo.MessageEmbed{
		Title:       WarningEmoji + " Delivery problem",
		Description: desc,
		Color:       ColorRed,
		Timestamp:   r.timestamp(),
	}
}

func (r *Renderer) userOpened(b staffmail.Banner) *discordgo.MessageEmbed {
	desc := messages.OpenedByUser
	if b.OpenedByStaff {
		desc = messages.OpenedByStaff
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Category", Value: b.Category.Title(), Inline: true},
	}
	if b.Summary != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Summary", Value: b.Summary, Inline: true})
	}
	if b.Mode == entities.ModeAnonymous {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Mode", Value: "Anonymous", Inline: true})
	}

	return &discordgo.MessageEmbed{
		Title:       OpenEmoji + " StaffMail Opened",
		Description: desc + "\n\n" + messages.HowToReply,
		Color:       ColorBlue,
		Fields:      fields,
		Timestamp:   r.timestamp(),
	}
}

func (r *Renderer) userIncoming(b staffmail.Banner) *discordgo.MessageEmbed {
	name := b.Sender.Name + " -> You"
	if b.Mode == entities.ModeAnonymous {
		name += " (Anonymous)"
	}

	return &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name: name,
		},
		Title:       IncomingEmoji + " " + ticketTitle(b.Category, b.Summary),
		Description: b.Body,
		Color:       ColorGreen,
		Fields:      attachmentFields(b.Attachments),
		Footer:      &discordgo.MessageEmbedFooter{Text: footerReplyToStaff},
		Timestamp:   r.timestamp(),
	}
}

func (r *Renderer) userOutgoing(b staffmail.Banner) *discordgo.MessageEmbed {
	name := b.Sender.Name
	if b.Mode == entities.ModeAnonymous {
		name += " (Anonymous)"
	}
	name += " -> " + b.Recipient.Name

	author := &discordgo.MessageEmbedAuthor{Name: name}
	if b.Mode == entities.ModeNamed {
		author.IconURL = b.Sender.AvatarURL
	}

	return &discordgo.MessageEmbed{
		Author:      author,
		Title:       OutgoingEmoji + " " + ticketTitle(b.Category, b.Summary),
		Description: b.Body,
		Color:       ColorSent,
		Fields:      attachmentFields(b.Attachments),
		Footer:      &discordgo.MessageEmbedFooter{Text: footerFollowUp},
		Timestamp:   r.timestamp(),
	}
}

func (r *Renderer) userClosed(b staffmail.Banner) *discordgo.MessageEmbed {
	title := b.Category.Title()
	if b.Summary != "" {
		title += " (" + b.Summary + ")"
	}

	embed := &discordgo.MessageEmbed{
		Title:       ClosedEmoji + " StaffMail Closed",
		Description: fmt.Sprintf(messages.Closed, title),
		Color:       ColorRed,
		Timestamp:   r.timestamp(),
	}
	if b.Reason != "" {
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "Closure Reason", Value: b.Reason, Inline: false},
		}
	}
	return embed
}

func (r *Renderer) guidance(b staffmail.Banner) *discordgo.MessageSend {
	var content string
	switch b.Guidance {
	case staffmail.GuidanceNoReference:
		content = fmt.Sprintf(messages.GuidanceNoReference, r.prefix)
	case staffmail.GuidanceReplyToPinned:
		content = messages.GuidanceReplyToPinned
	case staffmail.GuidanceStaffUnavailable:
		content = messages.GuidanceStaffUnavailable
	default:
		content = b.Body
	}

	msg := &discordgo.MessageSend{Content: content}
	if ref := b.Reference; ref != nil && ref.MessageID != "" {
		msg.Reference = &discordgo.MessageReference{
			MessageID: ref.MessageID,
			ChannelID: ref.ChannelID,
		}
	}
	return msg
}

func (r *Renderer) timestamp() string {
	return r.now().Format(time.RFC3339)
}

func embedMessage(embed *discordgo.MessageEmbed) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Embeds:          []*discordgo.MessageEmbed{embed},
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}
}

func ticketTitle(c entities.Category, summary string) string {
	title := c.Title()
	if summary != "" {
		title += ": " + summary
	}
	return title
}

// UserDisplay shows an identity with a mention, or as anonymous for generic identities.
func UserDisplay(id staffmail.Identity) string {
	if id.Generic() {
		if id.Name != "" {
			return id.Name
		}
		return anonymousUser
	}
	return fmt.Sprintf("<@%s> (%s)", id.ID, id.Name)
}

func identityFooter(id staffmail.Identity) *discordgo.MessageEmbedFooter {
	if id.Generic() {
		return &discordgo.MessageEmbedFooter{Text: anonymousUser}
	}
	return &discordgo.MessageEmbedFooter{
		Text:    id.Name + " | " + id.ID,
		IconURL: id.AvatarURL,
	}
}

func attachmentFields(attachments []staffmail.Attachment) []*discordgo.MessageEmbedField {
	if len(attachments) == 0 {
		return nil
	}

	links := make([]string, 0, len(attachments))
	for _, a := range attachments {
		links = append(links, fmt.Sprintf("[%s](%s)", a.Name, a.URL))
	}
	return []*discordgo.MessageEmbedField{
		{Name: "Attachments", Value: strings.Join(links, "\n"), Inline: false},
	}
}
