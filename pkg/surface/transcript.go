package surface

import (
	"fmt"
	"strings"

	"github.com/Jacobbrewer1/discordgo"
)

const transcriptTimeFormat = "2006-01-02 15:04:05"

// formatTranscript renders messages as plain text, oldest first. Messages are given newest first.
func formatTranscript(msgs []*discordgo.Message) string {
	b := new(strings.Builder)

	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if m == nil || m.Type == discordgo.MessageTypeChannelPinnedMessage {
			continue
		}

		author := "unknown"
		if m.Author != nil {
			author = m.Author.Username
		}

		fmt.Fprintf(b, "[%s] %s:", m.Timestamp.UTC().Format(transcriptTimeFormat), author)
		if m.Content != "" {
			b.WriteString(" " + m.Content)
		}
		b.WriteString("\n")

		for _, e := range m.Embeds {
			writeEmbed(b, e)
		}
		for _, a := range m.Attachments {
			fmt.Fprintf(b, "    attachment: %s %s\n", a.Filename, a.URL)
		}
	}

	return b.String()
}

func writeEmbed(b *strings.Builder, e *discordgo.MessageEmbed) {
	if e == nil {
		return
	}
	if e.Author != nil && e.Author.Name != "" {
		fmt.Fprintf(b, "    %s\n", e.Author.Name)
	}
	if e.Title != "" {
		fmt.Fprintf(b, "    %s\n", e.Title)
	}
	for _, line := range strings.Split(e.Description, "\n") {
		if line != "" {
			fmt.Fprintf(b, "    %s\n", line)
		}
	}
	for _, f := range e.Fields {
		fmt.Fprintf(b, "    %s: %s\n", f.Name, f.Value)
	}
}
