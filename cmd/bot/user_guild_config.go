package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/lfmcord/staffmail/pkg/entities"
	"github.com/lfmcord/staffmail/pkg/messages"
)

const (
	// setupCmdName is the command for all configuration commands.
	setupCmdName = "setup"

	// enableStaffMailCmdName is the sub command that enables StaffMail.
	enableStaffMailCmdName = "staffmail_enable"

	// disableStaffMailCmdName is the sub command that disables StaffMail.
	disableStaffMailCmdName = "staffmail_disable"

	categoryOptName     = "category"
	roleOptName         = "role"
	logChannelOptName   = "log_channel"
	keepChannelsOptName = "keep_channels"
)

var (
	// setupCmd is the command for all configuration commands.
	setupCmd = &discordgo.ApplicationCommand{
		Name:        setupCmdName,
		Type:        discordgo.ChatApplicationCommand,
		Description: "This is the command for all configuration commands.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        enableStaffMailCmdName,
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "This will enable StaffMail for your server.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:         categoryOptName,
						Type:         discordgo.ApplicationCommandOptionChannel,
						Description:  "This is the category that StaffMail channels are created in.",
						ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildCategory},
						Required:     true,
					},
					{
						Name:        roleOptName,
						Type:        discordgo.ApplicationCommandOptionRole,
						Description: "This is the role that handles StaffMails.",
						Required:    true,
					},
					{
						Name:         logChannelOptName,
						Type:         discordgo.ApplicationCommandOptionChannel,
						Description:  "This is the channel that opened and closed StaffMails are logged to.",
						ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
					},
					{
						Name:        keepChannelsOptName,
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Description: "Keep the channels of closed StaffMails instead of deleting them.",
					},
				},
			},
			{
				Name:        disableStaffMailCmdName,
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Description: "This will disable StaffMail for your server.",
			},
		},
	}
)

func setupCmdController(a IApp, i *discordgo.InteractionCreate) (slashProcessor, error) {
	// Ensure the user is an administrator.
	if i.Member == nil || i.Member.Permissions&discordgo.PermissionAdministrator != discordgo.PermissionAdministrator {
		if err := respondEphemeral(a, i, messages.ErrNotAdministrator); err != nil {
			return nil, fmt.Errorf("error responding to interaction: %w", err)
		}
		return nil, nil
	}

	opts := i.ApplicationCommandData().Options
	if len(opts) == 0 {
		return nil, errors.New("missing sub command")
	}

	switch subCmd := opts[0].Name; subCmd {
	case enableStaffMailCmdName:
		return enableStaffMailCmdProcessor, nil
	case disableStaffMailCmdName:
		return disableStaffMailCmdProcessor, nil
	default:
		return nil, fmt.Errorf("unhandled sub command %s", subCmd)
	}
}

// subCommandOptions returns the options of the sub command by name.
func subCommandOptions(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	got := make(map[string]*discordgo.ApplicationCommandInteractionDataOption)
	for _, o := range i.ApplicationCommandData().Options[0].Options {
		got[o.Name] = o
	}
	return got
}

// enableStaffMailCmdProcessor is the processor for the enable StaffMail command.
func enableStaffMailCmdProcessor(a IApp, i *discordgo.InteractionCreate) error {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	opts := subCommandOptions(i)

	category := opts[categoryOptName].ChannelValue(a.Session())
	role := opts[roleOptName].RoleValue(a.Session(), i.GuildID)
	if category == nil || role == nil {
		return errors.New("missing required options")
	}

	// Ensure the channel is a category.
	if category.Type != discordgo.ChannelTypeGuildCategory {
		return respondEphemeral(a, i, "You must provide a category for StaffMail channels.")
	}

	gd := a.GuildDal()

	guild, err := gd.GetGuildByID(ctx, i.GuildID)
	if err != nil {
		return fmt.Errorf("error getting guild: %w", err)
	}
	if guild == nil {
		guild = &entities.Guild{
			ID: i.GuildID,
		}
	}

	guild.StaffMail.Enabled = true
	guild.StaffMail.CategoryID = category.ID
	guild.StaffMail.RoleID = role.ID

	if o, ok := opts[logChannelOptName]; ok {
		if ch := o.ChannelValue(a.Session()); ch != nil {
			guild.StaffMail.LogChannelID = ch.ID
		}
	}
	if o, ok := opts[keepChannelsOptName]; ok {
		guild.StaffMail.KeepClosedChannels = o.BoolValue()
	}

	if err := gd.SaveGuild(ctx, guild); err != nil {
		return fmt.Errorf("error saving guild: %w", err)
	}

	a.Log().Info("Staffmail enabled",
		slog.String("guild_id", i.GuildID),
		slog.String("category_id", category.ID),
		slog.String("role_id", role.ID))

	if err := respondEphemeral(a, i, fmt.Sprintf(messages.SetupEnabled, category.ID)); err != nil {
		return fmt.Errorf("error responding to interaction: %w", err)
	}
	return nil
}

// disableStaffMailCmdProcessor is the processor for the disable StaffMail command. Open StaffMails keep working.
func disableStaffMailCmdProcessor(a IApp, i *discordgo.InteractionCreate) error {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	gd := a.GuildDal()

	guild, err := gd.GetGuildByID(ctx, i.GuildID)
	if err != nil {
		return fmt.Errorf("error getting guild: %w", err)
	}
	if guild == nil {
		guild = &entities.Guild{
			ID: i.GuildID,
		}
	}

	guild.StaffMail.Enabled = false

	if err := gd.SaveGuild(ctx, guild); err != nil {
		return fmt.Errorf("error saving guild: %w", err)
	}

	a.Log().Info("Staffmail disabled", slog.String("guild_id", i.GuildID))

	if err := respondEphemeral(a, i, messages.SetupDisabled); err != nil {
		return fmt.Errorf("error responding to interaction: %w", err)
	}
	return nil
}
