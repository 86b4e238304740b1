package surface

import (
	"github.com/Jacobbrewer1/discordgo"
	"github.com/lfmcord/staffmail/pkg/staffmail"
)

// Identity converts a Discord user.
func Identity(u *discordgo.User) staffmail.Identity {
	if u == nil {
		return staffmail.Identity{}
	}
	return staffmail.Identity{
		ID:        u.ID,
		Name:      u.Username,
		AvatarURL: u.AvatarURL(""),
	}
}

// Message converts a Discord message.
func Message(m *discordgo.Message) *staffmail.Message {
	if m == nil {
		return nil
	}

	msg := &staffmail.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Author:    Identity(m.Author),
		Content:   m.Content,
	}
	if m.MessageReference != nil {
		msg.ReferenceID = m.MessageReference.MessageID
	}
	for _, a := range m.Attachments {
		msg.Attachments = append(msg.Attachments, staffmail.Attachment{Name: a.Filename, URL: a.URL})
	}
	return msg
}
