package surface

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/lfmcord/staffmail/pkg/embeds"
	"github.com/lfmcord/staffmail/pkg/staffmail"
	"github.com/stretchr/testify/require"
)

func restError(status int, code int) error {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: status, Status: http.StatusText(status)},
		Message:  &discordgo.APIErrorMessage{Code: code, Message: "error"},
	}
}

func TestUserError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		unreachable bool
	}{
		{
			name:        "DirectMessagesClosed",
			err:         restError(http.StatusForbidden, discordgo.ErrCodeCannotSendMessagesToThisUser),
			unreachable: true,
		},
		{
			name:        "Forbidden",
			err:         restError(http.StatusForbidden, 0),
			unreachable: true,
		},
		{
			name:        "UnknownUser",
			err:         restError(http.StatusNotFound, discordgo.ErrCodeUnknownUser),
			unreachable: true,
		},
		{
			name:        "ServerError",
			err:         restError(http.StatusInternalServerError, 0),
			unreachable: false,
		},
		{
			name:        "NotRest",
			err:         errors.New("connection reset"),
			unreachable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := userError(tt.err)
			require.Equal(t, tt.unreachable, errors.Is(err, staffmail.ErrDeliveryFailed))
			require.ErrorIs(t, err, tt.err)
		})
	}

	require.NoError(t, userError(nil))
}

func TestStaffError(t *testing.T) {
	err := staffError(restError(http.StatusNotFound, discordgo.ErrCodeUnknownChannel))
	require.ErrorIs(t, err, staffmail.ErrUnknownStaffChannel)

	err = staffError(restError(http.StatusForbidden, discordgo.ErrCodeMissingAccess))
	require.NotErrorIs(t, err, staffmail.ErrUnknownStaffChannel)

	require.NoError(t, staffError(nil))
}

func TestIsUnknown(t *testing.T) {
	require.True(t, isUnknown(restError(http.StatusNotFound, discordgo.ErrCodeUnknownMessage)))
	require.True(t, isUnknown(restError(http.StatusNotFound, 0)))
	require.False(t, isUnknown(restError(http.StatusForbidden, 0)))
	require.False(t, isUnknown(nil))
}

func TestSendWithin(t *testing.T) {
	t.Run("Delivered", func(t *testing.T) {
		msg, err := sendWithin(context.Background(), time.Second, func() (*discordgo.Message, error) {
			return &discordgo.Message{ID: "m1"}, nil
		}, nil)
		require.NoError(t, err)
		require.Equal(t, "m1", msg.ID)
	})

	t.Run("TimedOut", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)

		_, err := sendWithin(context.Background(), 10*time.Millisecond, func() (*discordgo.Message, error) {
			<-release
			return nil, errors.New("cancelled")
		}, nil)
		require.ErrorIs(t, err, staffmail.ErrDeliveryFailed)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("LateDeliveryIsTakenBack", func(t *testing.T) {
		release := make(chan struct{})
		late := make(chan *discordgo.Message, 1)

		_, err := sendWithin(context.Background(), 10*time.Millisecond, func() (*discordgo.Message, error) {
			<-release
			return &discordgo.Message{ID: "late", ChannelID: "dm"}, nil
		}, func(m *discordgo.Message) {
			late <- m
		})
		require.ErrorIs(t, err, staffmail.ErrDeliveryFailed)

		close(release)
		select {
		case m := <-late:
			require.Equal(t, "late", m.ID)
		case <-time.After(time.Second):
			t.Fatal("late message was not handed back")
		}
	})

	t.Run("Failed", func(t *testing.T) {
		want := errors.New("boom")
		_, err := sendWithin(context.Background(), time.Second, func() (*discordgo.Message, error) {
			return nil, want
		}, nil)
		require.ErrorIs(t, err, want)
	})
}

func TestLatestPinNotice(t *testing.T) {
	bot := &discordgo.User{ID: "bot"}
	other := &discordgo.User{ID: "someone"}

	msgs := []*discordgo.Message{
		{ID: "5", Type: discordgo.MessageTypeDefault, Author: bot},
		{ID: "4", Type: discordgo.MessageTypeChannelPinnedMessage, Author: other},
		{ID: "3", Type: discordgo.MessageTypeChannelPinnedMessage, Author: bot},
		{ID: "2", Type: discordgo.MessageTypeChannelPinnedMessage, Author: bot},
	}

	require.Equal(t, "3", latestPinNotice(msgs, "bot").ID)
	require.Equal(t, "4", latestPinNotice(msgs, "").ID)
	require.Nil(t, latestPinNotice(msgs[:1], "bot"))
	require.Nil(t, latestPinNotice(nil, "bot"))
}

func TestFormatTranscript(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	msgs := []*discordgo.Message{
		{
			ID:        "3",
			Author:    &discordgo.User{Username: "moderator"},
			Content:   ">>close done",
			Timestamp: at.Add(2 * time.Minute),
		},
		{
			ID:        "2",
			Type:      discordgo.MessageTypeChannelPinnedMessage,
			Author:    &discordgo.User{Username: "staffmail"},
			Timestamp: at.Add(time.Minute),
		},
		{
			ID:     "1",
			Author: &discordgo.User{Username: "staffmail"},
			Embeds: []*discordgo.MessageEmbed{{
				Author:      &discordgo.MessageEmbedAuthor{Name: "listener -> Staff"},
				Title:       "Message received",
				Description: "hello\nthere",
			}},
			Attachments: []*discordgo.MessageAttachment{{Filename: "a.png", URL: "https://cdn.example/a.png"}},
			Timestamp:   at,
		},
	}

	want := "[2024-03-01 12:00:00] staffmail:\n" +
		"    listener -> Staff\n" +
		"    Message received\n" +
		"    hello\n" +
		"    there\n" +
		"    attachment: a.png https://cdn.example/a.png\n" +
		"[2024-03-01 12:02:00] moderator: >>close done\n"

	require.Equal(t, want, formatTranscript(msgs))
}

func TestMessage(t *testing.T) {
	msg := Message(&discordgo.Message{
		ID:               "m2",
		ChannelID:        "dm",
		Author:           &discordgo.User{ID: "100", Username: "listener"},
		Content:          "thanks",
		MessageReference: &discordgo.MessageReference{MessageID: "m1"},
		Attachments:      []*discordgo.MessageAttachment{{Filename: "a.png", URL: "https://cdn.example/a.png"}},
	})

	require.Equal(t, "m1", msg.ReferenceID)
	require.Equal(t, "listener", msg.Author.Name)
	require.Equal(t, staffmail.MessageRef{ChannelID: "dm", MessageID: "m2"}, msg.Ref())
	require.Equal(t, []staffmail.Attachment{{Name: "a.png", URL: "https://cdn.example/a.png"}}, msg.Attachments)

	require.Nil(t, Message(nil))
}

func TestMessageSend(t *testing.T) {
	_, _, err := messageSend("plain text")
	require.ErrorIs(t, err, ErrUnsupportedMessage)

	send, files, err := messageSend(&discordgo.MessageSend{Content: "hi"})
	require.NoError(t, err)
	require.Equal(t, "hi", send.Content)
	require.Empty(t, files)

	attachments := []staffmail.Attachment{{Name: "a.png", URL: "https://cdn.example/a.png"}}
	send, files, err = messageSend(&embeds.Upload{
		Message: &discordgo.MessageSend{Content: "with file"},
		Files:   attachments,
	})
	require.NoError(t, err)
	require.Equal(t, "with file", send.Content)
	require.Equal(t, attachments, files)

	_, _, err = messageSend(&embeds.Upload{})
	require.ErrorIs(t, err, ErrUnsupportedMessage)
}

func TestAttachFiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/notes.txt":
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("meeting notes"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	original := &discordgo.MessageSend{Content: "see attached"}

	t.Run("Uploaded", func(t *testing.T) {
		got, err := attachFiles(context.Background(), srv.Client(), original, []staffmail.Attachment{
			{Name: "notes.txt", URL: srv.URL + "/notes.txt"},
		})
		require.NoError(t, err)
		require.Equal(t, "see attached", got.Content)
		require.Len(t, got.Files, 1)
		require.Equal(t, "notes.txt", got.Files[0].Name)
		require.Equal(t, "text/plain", got.Files[0].ContentType)

		body, err := io.ReadAll(got.Files[0].Reader)
		require.NoError(t, err)
		require.Equal(t, "meeting notes", string(body))

		// The rendered message is left alone.
		require.Empty(t, original.Files)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := attachFiles(context.Background(), srv.Client(), original, []staffmail.Attachment{
			{Name: "gone.png", URL: srv.URL + "/gone.png"},
		})
		require.Error(t, err)
		require.Contains(t, err.Error(), "gone.png")
	})

	t.Run("NoAttachments", func(t *testing.T) {
		got, err := attachFiles(context.Background(), srv.Client(), original, nil)
		require.NoError(t, err)
		require.Same(t, original, got)
	})
}
