package main

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/lfmcord/staffmail/pkg/entities"
)

const (
	// createCmdName is the direct message command that opens a StaffMail.
	createCmdName = "staffmail"

	replyCmdName       = "reply"
	closeCmdName       = "close"
	silentCloseCmdName = "silentclose"
	contactCmdName     = "contact"
)

const (
	// categorySelectID is the custom ID of the category select menu.
	categorySelectID = "staffmail_category"

	// sendButtonPrefix prefixes the custom IDs of the send buttons.
	sendButtonPrefix = "staffmail_send"

	// cancelButtonID is the custom ID of the cancel button.
	cancelButtonID = "staffmail_cancel"

	// createModalPrefix prefixes the custom IDs of the creation modal.
	createModalPrefix = "staffmail_modal"

	summaryInputID = "staffmail_summary"
	messageInputID = "staffmail_message"
)

// command is a parsed text command.
type command struct {
	name string
	args string
}

// parseCommand parses a text command. The command name is case-insensitive.
func parseCommand(prefix string, content string) (command, bool) {
	content = strings.TrimSpace(content)
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return command{}, false
	}

	rest := strings.TrimPrefix(content, prefix)
	name, args := rest, ""
	if end := strings.IndexFunc(rest, unicode.IsSpace); end >= 0 {
		name, args = rest[:end], rest[end:]
	}
	if name == "" {
		return command{}, false
	}

	return command{
		name: strings.ToLower(name),
		args: strings.TrimSpace(args),
	}, true
}

var mentionPattern = regexp.MustCompile(`^(?:<@!?(\d+)>|(\d{15,21}))\s*`)

// parseMention splits a leading user mention or user ID off the arguments.
func parseMention(args string) (userID string, rest string, ok bool) {
	m := mentionPattern.FindStringSubmatch(args)
	if m == nil {
		return "", args, false
	}

	userID = m[1]
	if userID == "" {
		userID = m[2]
	}
	return userID, strings.TrimSpace(args[len(m[0]):]), true
}

// sendButtonID encodes the choice of a send button.
func sendButtonID(c entities.Category, mode entities.Mode) string {
	return fmt.Sprintf("%s:%s:%s", sendButtonPrefix, c, mode)
}

// createModalID encodes the choice of a creation modal.
func createModalID(c entities.Category, mode entities.Mode) string {
	return fmt.Sprintf("%s:%s:%s", createModalPrefix, c, mode)
}

// parseChoiceID decodes the category and mode of a send button or creation modal.
func parseChoiceID(prefix string, id string) (entities.Category, entities.Mode, error) {
	parts := strings.Split(id, ":")
	if len(parts) != 3 || parts[0] != prefix {
		return "", 0, fmt.Errorf("malformed custom id %q", id)
	}

	c, err := entities.ParseCategory(parts[1])
	if err != nil {
		return "", 0, err
	}

	var mode entities.Mode
	switch parts[2] {
	case entities.ModeNamed.String():
		mode = entities.ModeNamed
	case entities.ModeAnonymous.String():
		mode = entities.ModeAnonymous
	default:
		return "", 0, fmt.Errorf("unknown mode %q", parts[2])
	}
	return c, mode, nil
}

// customIDPrefix returns the part of a custom ID that selects its handler.
func customIDPrefix(id string) string {
	prefix, _, _ := strings.Cut(id, ":")
	return prefix
}
