package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/lfmcord/staffmail/cmd/bot/monitoring"
	"github.com/lfmcord/staffmail/pkg/entities"
	"github.com/lfmcord/staffmail/pkg/logging"
	"github.com/lfmcord/staffmail/pkg/messages"
	"github.com/lfmcord/staffmail/pkg/staffmail"
	"github.com/lfmcord/staffmail/pkg/surface"
)

const (
	// CancelEmoji is the emoji of the cancel button. (Cross)
	CancelEmoji = "❌"

	// SendEmoji is the emoji of the send buttons. (Envelope with arrow)
	SendEmoji = "\U0001F4E9"

	// AnonymousEmoji is the emoji of the anonymous send button. (Bust in silhouette)
	AnonymousEmoji = "\U0001F464"
)

const (
	summaryMaxLength = 100
	messageMaxLength = 4000
	modalTitleLength = 45
)

// answeredError is an error the user has already been told about.
type answeredError struct {
	error
}

func (e answeredError) Unwrap() error {
	return e.error
}

func messageCreateHandler(a *App) func(s *discordgo.Session, m *discordgo.MessageCreate) {
	return func(s *discordgo.Session, m *discordgo.MessageCreate) {
		defer recoverDiscord(a, "message_create")

		if m.Author == nil || m.Author.Bot {
			return
		}
		if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
			return
		}

		if m.GuildID == "" {
			handleDirectMessage(a, m.Message)
		} else {
			handleStaffMessage(a, m.Message)
		}
	}
}

// handleDirectMessage opens the creation flow for the create command and relays everything else to staff.
func handleDirectMessage(a *App, m *discordgo.Message) {
	l := a.Log().With(slog.String(logging.KeyUser, m.Author.ID))

	if cmd, ok := parseCommand(a.Config().CommandPrefix, m.Content); ok && cmd.name == createCmdName {
		startCreation(a, m)
		return
	}

	if !a.dmLimits.Allow(m.Author.ID) {
		monitoring.RateLimited.WithLabelValues("dm").Inc()
		if err := replyTo(a, m, messages.ErrSlowDown); err != nil {
			l.Error("Error replying to user", slog.String(logging.KeyError, err.Error()))
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	_, err := a.Engine().RelayFromUser(ctx, *surface.Message(m))
	switch {
	case err == nil:
	case errors.Is(err, staffmail.ErrNoReference),
		errors.Is(err, staffmail.ErrPointerNotFound),
		errors.Is(err, staffmail.ErrUnknownStaffChannel):
		// The user has been told what to do.
		l.Debug("Direct message not relayed", slog.String(logging.KeyError, err.Error()))
	default:
		l.Error("Error relaying direct message", slog.String(logging.KeyError, err.Error()))
		if err := replyTo(a, m, messages.ErrUserErrorProcessing); err != nil {
			l.Error("Error replying to user", slog.String(logging.KeyError, err.Error()))
		}
	}
}

// startCreation sends the category menu of the creation flow.
func startCreation(a *App, m *discordgo.Message) {
	l := a.Log().With(slog.String(logging.KeyUser, m.Author.ID))

	reply := func(content string) {
		if err := replyTo(a, m, content); err != nil {
			l.Error("Error replying to user", slog.String(logging.KeyError, err.Error()))
		}
	}

	if !a.createLimits.Allow(m.Author.ID) {
		monitoring.RateLimited.WithLabelValues("create").Inc()
		reply(messages.ErrSlowDown)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	cfg, err := a.GuildDal().StaffMailConfig(ctx, a.Config().GuildId)
	if err != nil {
		l.Error("Error getting staffmail config", slog.String(logging.KeyError, err.Error()))
		reply(messages.ErrUserErrorProcessing)
		return
	} else if cfg == nil || !cfg.Enabled {
		reply(messages.ErrStaffMailDisabled)
		return
	}

	existing, err := a.tickets.GetByUserID(ctx, m.Author.ID)
	if err != nil {
		l.Error("Error getting open staffmail", slog.String(logging.KeyError, err.Error()))
		reply(messages.ErrUserErrorProcessing)
		return
	} else if existing != nil {
		reply(messages.ErrAlreadyOpen)
		return
	}

	if _, err := a.Session().ChannelMessageSendComplex(m.ChannelID, createPrompt()); err != nil {
		l.Error("Error sending creation prompt", slog.String(logging.KeyError, err.Error()))
	}
}

func createPrompt() *discordgo.MessageSend {
	categories := entities.SelectableCategories()
	options := make([]discordgo.SelectMenuOption, 0, len(categories))
	for _, c := range categories {
		tmpl := c.Template()
		options = append(options, discordgo.SelectMenuOption{
			Label:       tmpl.Emoji + " " + tmpl.Title,
			Value:       string(c),
			Description: tmpl.Description,
		})
	}

	return &discordgo.MessageSend{
		Content: messages.CreatePrompt,
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.SelectMenu{
						CustomID:    categorySelectID,
						Placeholder: "What do you need help with?",
						Options:     options,
					},
				},
			},
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					cancelButton(),
				},
			},
		},
	}
}

func cancelButton() discordgo.Button {
	return discordgo.Button{
		Label:    fmt.Sprintf("%s Cancel", CancelEmoji),
		Style:    discordgo.DangerButton,
		CustomID: cancelButtonID,
	}
}

// modeButtons are the buttons that pick how a StaffMail of the category is sent.
func modeButtons(c entities.Category) []discordgo.MessageComponent {
	buttons := []discordgo.MessageComponent{
		discordgo.Button{
			Label:    fmt.Sprintf("%s Send", SendEmoji),
			Style:    discordgo.PrimaryButton,
			CustomID: sendButtonID(c, entities.ModeNamed),
		},
	}
	if c.Template().AllowAnonymous {
		buttons = append(buttons, discordgo.Button{
			Label:    fmt.Sprintf("%s Send anonymously", AnonymousEmoji),
			Style:    discordgo.SecondaryButton,
			CustomID: sendButtonID(c, entities.ModeAnonymous),
		})
	}
	return append(buttons, cancelButton())
}

// categorySelected offers the send buttons for the chosen category.
func categorySelected(a IApp, i *discordgo.InteractionCreate) error {
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return errors.New("no category selected")
	}

	c, err := entities.ParseCategory(values[0])
	if err != nil {
		return err
	} else if !c.Template().UserSelectable {
		return fmt.Errorf("category %q cannot be selected", c)
	}

	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf(messages.CreateChooseMode, c.Title()),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: modeButtons(c),
				},
			},
		},
	})
}

// sendButtonPressed asks for the summary and the message of the StaffMail.
func sendButtonPressed(a IApp, i *discordgo.InteractionCreate) error {
	c, mode, err := parseChoiceID(sendButtonPrefix, i.MessageComponentData().CustomID)
	if err != nil {
		return err
	}

	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   createModalID(c, mode),
			Title:      modalTitle(c, mode),
			Components: createModalInputs(),
		},
	})
}

func createModalInputs() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:    summaryInputID,
					Label:       "Summary",
					Style:       discordgo.TextInputShort,
					Placeholder: "What is this about?",
					MaxLength:   summaryMaxLength,
				},
			},
		},
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:  messageInputID,
					Label:     "Message",
					Style:     discordgo.TextInputParagraph,
					Required:  true,
					MaxLength: messageMaxLength,
				},
			},
		},
	}
}

func modalTitle(c entities.Category, mode entities.Mode) string {
	title := c.Title()
	if mode == entities.ModeAnonymous {
		title += " (Anonymous)"
	}
	if r := []rune(title); len(r) > modalTitleLength {
		title = string(r[:modalTitleLength])
	}
	return title
}

// modalValues returns the values of the text inputs of a modal by custom ID.
func modalValues(data discordgo.ModalSubmitInteractionData) map[string]string {
	got := make(map[string]string)
	for _, c := range data.Components {
		row, ok := c.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, rc := range row.Components {
			if in, ok := rc.(*discordgo.TextInput); ok {
				got[in.CustomID] = strings.TrimSpace(in.Value)
			}
		}
	}
	return got
}

// cancelButtonPressed ends the creation flow.
func cancelButtonPressed(a IApp, i *discordgo.InteractionCreate) error {
	return updateMessage(a, i, messages.CreateCancelled)
}

// createModalSubmitted opens the StaffMail.
func createModalSubmitted(a IApp, i *discordgo.InteractionCreate) error {
	data := i.ModalSubmitData()
	c, mode, err := parseChoiceID(createModalPrefix, data.CustomID)
	if err != nil {
		return err
	}

	user := interactionUser(i)
	if user == nil {
		return errors.New("interaction has no user")
	}

	// Creating the staff channel and both banners can take longer than an interaction may wait.
	if err := a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		return fmt.Errorf("error deferring interaction: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	values := modalValues(data)
	author := surface.Identity(user)

	_, err = a.Manager().CreateTicket(ctx, staffmail.CreateRequest{
		GuildID:  a.Config().GuildId,
		User:     author,
		Category: c,
		Mode:     mode,
		Summary:  values[summaryInputID],
		Seed: &staffmail.Message{
			ChannelID: i.ChannelID,
			Author:    author,
			Content:   values[messageInputID],
		},
	})

	content := messages.CreateDone
	switch {
	case err == nil:
	case errors.Is(err, staffmail.ErrTicketAlreadyOpen):
		content = messages.ErrAlreadyOpen
	case errors.Is(err, staffmail.ErrCreationRejected):
		content = messages.ErrStaffMailDisabled
	default:
		content = messages.ErrUserErrorProcessing
	}

	if editErr := editPrompt(a, i, content); editErr != nil {
		a.Log().Error("Error updating creation prompt",
			slog.String(logging.KeyUser, user.ID),
			slog.String(logging.KeyError, editErr.Error()))
	}

	if err != nil {
		return answeredError{fmt.Errorf("error creating staffmail: %w", err)}
	}
	return nil
}

// editPrompt replaces the creation prompt once the interaction has been deferred.
func editPrompt(a IApp, i *discordgo.InteractionCreate, content string) error {
	if i.Message == nil {
		_, err := a.Session().ChannelMessageSend(i.ChannelID, content)
		return err
	}

	_, err := a.Session().ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    i.ChannelID,
		ID:         i.Message.ID,
		Content:    &content,
		Components: []discordgo.MessageComponent{},
	})
	return err
}
