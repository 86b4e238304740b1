package surface

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/lfmcord/staffmail/pkg/logging"
	"github.com/lfmcord/staffmail/pkg/staffmail"
)

// transcriptPages bounds how many pages of messages a transcript reads.
const transcriptPages = 10

// StaffChannels is the staff side of StaffMail, one guild channel per ticket.
type StaffChannels struct {
	l *slog.Logger
	s *discordgo.Session
}

// NewStaffChannels creates a new StaffChannels surface.
func NewStaffChannels(l *slog.Logger, s *discordgo.Session) *StaffChannels {
	return &StaffChannels{
		l: l,
		s: s,
	}
}

// Send implements staffmail.StaffSurface.
func (c *StaffChannels) Send(ctx context.Context, channelID string, msg staffmail.Rendered) (staffmail.MessageRef, error) {
	send, attachments, err := messageSend(msg)
	if err != nil {
		return staffmail.MessageRef{}, err
	}

	send, err = attachFiles(ctx, c.s.Client, send, attachments)
	if err != nil {
		return staffmail.MessageRef{}, err
	}

	sent, err := c.s.ChannelMessageSendComplex(channelID, send)
	if err != nil {
		return staffmail.MessageRef{}, fmt.Errorf("error sending staff message: %w", staffError(err))
	}
	return staffmail.MessageRef{ChannelID: sent.ChannelID, MessageID: sent.ID}, nil
}

// CreateDedicatedChannel implements staffmail.StaffSurface. The channel syncs its permissions with the parent.
func (c *StaffChannels) CreateDedicatedChannel(_ context.Context, name string, parentID string, topic string) (string, error) {
	parent, err := c.channel(parentID)
	if err != nil {
		return "", fmt.Errorf("error getting staffmail category: %w", err)
	}

	ch, err := c.s.GuildChannelCreateComplex(parent.GuildID, discordgo.GuildChannelCreateData{
		Name:     name,
		Type:     discordgo.ChannelTypeGuildText,
		Topic:    topic,
		ParentID: parent.ID,
	})
	if err != nil {
		return "", fmt.Errorf("error creating staffmail channel: %w", err)
	}

	c.l.Debug("Staffmail channel created",
		slog.String(logging.KeyChannel, ch.ID),
		slog.String("name", ch.Name))

	return ch.ID, nil
}

// DeleteChannel implements staffmail.StaffSurface. Deleting a channel that is already gone succeeds.
func (c *StaffChannels) DeleteChannel(_ context.Context, channelID string) error {
	if _, err := c.s.ChannelDelete(channelID); err != nil && !isUnknown(err) {
		return fmt.Errorf("error deleting staffmail channel: %w", err)
	}
	return nil
}

// Transcript implements staffmail.StaffSurface.
func (c *StaffChannels) Transcript(_ context.Context, channelID string) (string, error) {
	var (
		all    []*discordgo.Message
		before string
	)

	for page := 0; page < transcriptPages; page++ {
		msgs, err := c.s.ChannelMessages(channelID, 100, before, "", "")
		if err != nil {
			return "", fmt.Errorf("error getting channel messages: %w", staffError(err))
		}
		all = append(all, msgs...)
		if len(msgs) < 100 {
			break
		}
		before = msgs[len(msgs)-1].ID
	}

	return formatTranscript(all), nil
}

// Pin implements staffmail.Surface.
func (c *StaffChannels) Pin(_ context.Context, ref staffmail.MessageRef) error {
	if err := c.s.ChannelMessagePin(ref.ChannelID, ref.MessageID); err != nil {
		return fmt.Errorf("error pinning message: %w", staffError(err))
	}
	return nil
}

// Unpin implements staffmail.Surface.
func (c *StaffChannels) Unpin(_ context.Context, ref staffmail.MessageRef) error {
	if err := c.s.ChannelMessageUnpin(ref.ChannelID, ref.MessageID); err != nil && !isUnknown(err) {
		return fmt.Errorf("error unpinning message: %w", err)
	}
	return nil
}

// Fetch implements staffmail.Surface.
func (c *StaffChannels) Fetch(_ context.Context, ref staffmail.MessageRef) (*staffmail.Message, error) {
	return fetch(c.s, ref)
}

// Delete implements staffmail.Surface.
func (c *StaffChannels) Delete(_ context.Context, ref staffmail.MessageRef) error {
	return deleteMessage(c.s, ref)
}

func (c *StaffChannels) channel(id string) (*discordgo.Channel, error) {
	if c.s.State != nil {
		if ch, err := c.s.State.Channel(id); err == nil {
			return ch, nil
		}
	}
	return c.s.Channel(id)
}
