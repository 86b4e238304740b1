package surface

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/lfmcord/staffmail/pkg/logging"
	"github.com/lfmcord/staffmail/pkg/staffmail"
)

// DefaultDeliveryTimeout is how long a direct message may take before the user counts as unreachable.
const DefaultDeliveryTimeout = 10 * time.Second

// pinNoticeScan is how many recent messages are searched for the pin notice.
const pinNoticeScan = 10

// DMs is the direct message conversation with users.
type DMs struct {
	l *slog.Logger
	s *discordgo.Session

	// timeout bounds the delivery of a direct message.
	timeout time.Duration
}

// NewDMs creates a new DMs surface. A zero timeout uses DefaultDeliveryTimeout.
func NewDMs(l *slog.Logger, s *discordgo.Session, timeout time.Duration) *DMs {
	if timeout <= 0 {
		timeout = DefaultDeliveryTimeout
	}
	return &DMs{
		l:       l,
		s:       s,
		timeout: timeout,
	}
}

// Send implements staffmail.UserSurface.
func (d *DMs) Send(ctx context.Context, userID string, msg staffmail.Rendered) (staffmail.MessageRef, error) {
	send, attachments, err := messageSend(msg)
	if err != nil {
		return staffmail.MessageRef{}, err
	}

	ch, err := d.s.UserChannelCreate(userID)
	if err != nil {
		return staffmail.MessageRef{}, fmt.Errorf("error opening direct message channel: %w", userError(err))
	}

	send, err = attachFiles(ctx, d.s.Client, send, attachments)
	if err != nil {
		return staffmail.MessageRef{}, err
	}

	sent, err := sendWithin(ctx, d.timeout, func() (*discordgo.Message, error) {
		return d.s.ChannelMessageSendComplex(ch.ID, send)
	}, d.takeBack)
	if err != nil {
		d.l.Debug("Direct message not delivered",
			slog.String(logging.KeyUser, userID),
			slog.String(logging.KeyError, err.Error()))
		return staffmail.MessageRef{}, fmt.Errorf("error sending direct message: %w", userError(err))
	}

	return staffmail.MessageRef{ChannelID: sent.ChannelID, MessageID: sent.ID}, nil
}

// takeBack deletes a direct message that arrived after its delivery was given up on.
func (d *DMs) takeBack(m *discordgo.Message) {
	if err := d.s.ChannelMessageDelete(m.ChannelID, m.ID); err != nil && !isUnknown(err) {
		d.l.Error("Late direct message could not be deleted, reconcile manually",
			slog.String(logging.KeyChannel, m.ChannelID),
			slog.String(logging.KeyMessage, m.ID),
			slog.String(logging.KeyError, err.Error()))
		return
	}
	d.l.Info("Deleted late direct message", slog.String(logging.KeyMessage, m.ID))
}

// Lookup implements staffmail.UserSurface.
func (d *DMs) Lookup(_ context.Context, userID string) (staffmail.Identity, error) {
	u, err := d.s.User(userID)
	if err != nil {
		return staffmail.Identity{}, fmt.Errorf("error getting user: %w", err)
	}
	return Identity(u), nil
}

// RemoveLatestPinNotice implements staffmail.UserSurface.
func (d *DMs) RemoveLatestPinNotice(_ context.Context, channelID string) error {
	msgs, err := d.s.ChannelMessages(channelID, pinNoticeScan, "", "", "")
	if err != nil {
		return fmt.Errorf("error getting recent messages: %w", err)
	}

	botID := ""
	if d.s.State != nil && d.s.State.User != nil {
		botID = d.s.State.User.ID
	}

	notice := latestPinNotice(msgs, botID)
	if notice == nil {
		return nil
	}

	if err := d.s.ChannelMessageDelete(channelID, notice.ID); err != nil && !isUnknown(err) {
		return fmt.Errorf("error deleting pin notice: %w", err)
	}
	return nil
}

// Pin implements staffmail.Surface.
func (d *DMs) Pin(_ context.Context, ref staffmail.MessageRef) error {
	if err := d.s.ChannelMessagePin(ref.ChannelID, ref.MessageID); err != nil {
		return fmt.Errorf("error pinning message: %w", userError(err))
	}
	return nil
}

// Unpin implements staffmail.Surface.
func (d *DMs) Unpin(_ context.Context, ref staffmail.MessageRef) error {
	if err := d.s.ChannelMessageUnpin(ref.ChannelID, ref.MessageID); err != nil && !isUnknown(err) {
		return fmt.Errorf("error unpinning message: %w", userError(err))
	}
	return nil
}

// Fetch implements staffmail.Surface.
func (d *DMs) Fetch(_ context.Context, ref staffmail.MessageRef) (*staffmail.Message, error) {
	return fetch(d.s, ref)
}

// Delete implements staffmail.Surface.
func (d *DMs) Delete(_ context.Context, ref staffmail.MessageRef) error {
	return deleteMessage(d.s, ref)
}

// latestPinNotice finds the newest pin notice posted for the bot. Messages are newest first.
func latestPinNotice(msgs []*discordgo.Message, botID string) *discordgo.Message {
	for _, m := range msgs {
		if m == nil || m.Type != discordgo.MessageTypeChannelPinnedMessage {
			continue
		}
		if botID != "" && m.Author != nil && m.Author.ID != botID {
			continue
		}
		return m
	}
	return nil
}

func fetch(s *discordgo.Session, ref staffmail.MessageRef) (*staffmail.Message, error) {
	m, err := s.ChannelMessage(ref.ChannelID, ref.MessageID)
	if isUnknown(err) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("error getting message: %w", err)
	}
	return Message(m), nil
}

func deleteMessage(s *discordgo.Session, ref staffmail.MessageRef) error {
	if err := s.ChannelMessageDelete(ref.ChannelID, ref.MessageID); err != nil && !isUnknown(err) {
		return fmt.Errorf("error deleting message: %w", err)
	}
	return nil
}
