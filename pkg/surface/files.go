package surface

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/lfmcord/staffmail/pkg/embeds"
	"github.com/lfmcord/staffmail/pkg/staffmail"
)

// maxFileSize is the largest attachment a bot may upload without boosts.
const maxFileSize = 25 << 20

var (
	// ErrUnsupportedMessage is returned when a message was not rendered for Discord.
	ErrUnsupportedMessage = errors.New("unsupported message")

	// ErrFileTooLarge is returned when an attachment cannot be uploaded again.
	ErrFileTooLarge = errors.New("attachment too large")
)

// messageSend returns the message to send and the attachments to upload with it.
func messageSend(msg staffmail.Rendered) (*discordgo.MessageSend, []staffmail.Attachment, error) {
	switch m := msg.(type) {
	case *discordgo.MessageSend:
		if m != nil {
			return m, nil, nil
		}
	case *embeds.Upload:
		if m != nil && m.Message != nil {
			return m.Message, m.Files, nil
		}
	}
	return nil, nil, ErrUnsupportedMessage
}

// downloadFiles fetches attachments so they can be uploaded again.
func downloadFiles(ctx context.Context, client *http.Client, attachments []staffmail.Attachment) ([]*discordgo.File, error) {
	if client == nil {
		client = http.DefaultClient
	}

	files := make([]*discordgo.File, 0, len(attachments))
	for _, a := range attachments {
		f, err := downloadFile(ctx, client, a)
		if err != nil {
			return nil, fmt.Errorf("error downloading attachment %s: %w", a.Name, err)
		}
		files = append(files, f)
	}
	return files, nil
}

func downloadFile(ctx context.Context, client *http.Client, a staffmail.Attachment) (*discordgo.File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.URL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFileSize+1))
	if err != nil {
		return nil, err
	} else if len(body) > maxFileSize {
		return nil, ErrFileTooLarge
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}

	return &discordgo.File{
		Name:        a.Name,
		ContentType: contentType,
		Reader:      bytes.NewReader(body),
	}, nil
}

// attachFiles adds the downloaded attachments to a copy of the message.
func attachFiles(ctx context.Context, client *http.Client, send *discordgo.MessageSend, attachments []staffmail.Attachment) (*discordgo.MessageSend, error) {
	if len(attachments) == 0 {
		return send, nil
	}

	files, err := downloadFiles(ctx, client, attachments)
	if err != nil {
		return nil, err
	}

	withFiles := *send
	withFiles.Files = append(append([]*discordgo.File(nil), send.Files...), files...)
	return &withFiles, nil
}
