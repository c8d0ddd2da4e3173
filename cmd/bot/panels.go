package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/lupine-bot/lupine/cmd/bot/monitoring"
	"github.com/lupine-bot/lupine/pkg/entities"
)

const (
	// TicketsCmdName is the command grouping all ticket operations.
	TicketsCmdName = "tickets"

	// PanelCmdName is the sub command for creating or updating a panel.
	PanelCmdName = "panel"

	// DeletePanelCmdName is the sub command for deleting a panel.
	DeletePanelCmdName = "delete_panel"

	// ButtonCmdName is the sub command for creating or updating a button.
	ButtonCmdName = "button"

	// DeleteButtonCmdName is the sub command for deleting a button.
	DeleteButtonCmdName = "delete_button"

	// HereCmdName is the sub command for publishing a panel.
	HereCmdName = "here"

	// CloseCmdName is the sub command for closing the ticket that the
	// command was executed in.
	CloseCmdName = "close"
)

// ticketsCmd is the command for the ticket system.
var ticketsCmd = &discordgo.ApplicationCommand{
	Name:        TicketsCmdName,
	Type:        discordgo.ChatApplicationCommand,
	Description: "This is the command for the ticket system.",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Name:        PanelCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "Create or update a ticket panel. With only a name, shows the current configuration.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "name",
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "The name of the panel.",
					Required:    true,
				},
				{
					Name:        "category",
					Type:        discordgo.ApplicationCommandOptionChannel,
					Description: "The category that ticket channels are created under.",
				},
				{
					Name:        "log_channel",
					Type:        discordgo.ApplicationCommandOptionChannel,
					Description: "The channel that ticket archives are posted to.",
				},
				{
					Name:        "title",
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "The title of the panel message.",
				},
				{
					Name:        "description",
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "The description of the panel message.",
				},
			},
		},
		{
			Name:        DeletePanelCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "Delete a ticket panel and all of its buttons. Open tickets are unaffected.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "name",
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "The name of the panel.",
					Required:    true,
				},
			},
		},
		{
			Name:        ButtonCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "Create or update a panel button. With only panel and position, shows the configuration.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "panel",
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "The name of the panel.",
					Required:    true,
				},
				{
					Name:        "position",
					Type:        discordgo.ApplicationCommandOptionInteger,
					Description: "The position of the button on the panel (1-5).",
					Required:    true,
				},
				{
					Name:        "label",
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "The button label.",
				},
				{
					Name:        "emoji",
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "The button emoji.",
				},
				{
					Name:        "style",
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "The button style.",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Primary", Value: "primary"},
						{Name: "Secondary", Value: "secondary"},
						{Name: "Success", Value: "success"},
						{Name: "Danger", Value: "danger"},
					},
				},
				{
					Name:        "title",
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "The title of the opening message of spawned tickets.",
				},
				{
					Name:        "message",
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "The body of the opening message of spawned tickets.",
				},
				{
					Name:        "color",
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "The accent colour of the opening message.",
				},
				{
					Name:        "staff_roles",
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "Comma-separated staff role mentions or IDs.",
				},
				{
					Name:        "user_roles",
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "Comma-separated role mentions or IDs permitted to click. Empty means everyone.",
				},
			},
		},
		{
			Name:        DeleteButtonCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "Delete a panel button. Tickets it already spawned are unaffected.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "panel",
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "The name of the panel.",
					Required:    true,
				},
				{
					Name:        "position",
					Type:        discordgo.ApplicationCommandOptionInteger,
					Description: "The position of the button on the panel (1-5).",
					Required:    true,
				},
			},
		},
		{
			Name:        HereCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "Publish a panel, replacing any previously published panel message.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "panel",
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "The name of the panel.",
					Required:    true,
				},
				{
					Name:        "channel",
					Type:        discordgo.ApplicationCommandOptionChannel,
					Description: "The channel to publish to. Defaults to the current channel.",
				},
			},
		},
		{
			Name:        CloseCmdName,
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Description: "Close the ticket that the command was executed in.",
		},
	},
}

func ticketsCmdController(a IApp, i *discordgo.InteractionCreate) (commandProcessor, error) {
	if a.Engine() == nil {
		// The core is built on the ready event; interactions cannot arrive
		// before it in practice.
		if err := respondEphemeral(a, i, "The bot is still starting up. Try again in a moment."); err != nil {
			return nil, fmt.Errorf("error responding to interaction: %w", err)
		}
		return nil, nil
	}

	subCmd := i.ApplicationCommandData().Options[0].Name

	switch subCmd {
	case PanelCmdName:
		return requireOperator(panelCmdProcessor), nil
	case DeletePanelCmdName:
		return requireOperator(deletePanelCmdProcessor), nil
	case ButtonCmdName:
		return requireOperator(buttonCmdProcessor), nil
	case DeleteButtonCmdName:
		return requireOperator(deleteButtonCmdProcessor), nil
	case HereCmdName:
		return hereCmdProcessor, nil
	case CloseCmdName:
		return closeCmdProcessor, nil
	default:
		return nil, fmt.Errorf("unhandled sub command %s", subCmd)
	}
}

// requireOperator gates panel-authoring commands on guild management
// permissions.
func requireOperator(next commandProcessor) commandProcessor {
	return func(a IApp, i *discordgo.InteractionCreate) error {
		if !isOperator(i) {
			return respondEphemeral(a, i, "You must be able to manage the server to configure ticket panels.")
		}
		return next(a, i)
	}
}

func panelCmdProcessor(a IApp, i *discordgo.InteractionCreate) error {
	opts := subOptions(i)
	name := opts["name"].StringValue()

	update := new(entities.PanelUpdate)
	if o, ok := opts["category"]; ok {
		channel := o.ChannelValue(a.Session())
		if channel.Type != discordgo.ChannelTypeGuildCategory {
			return respondEphemeral(a, i, "The category must be a channel category.")
		}
		update.CategoryID = &channel.ID
	}
	if o, ok := opts["log_channel"]; ok {
		channel := o.ChannelValue(a.Session())
		if channel.Type != discordgo.ChannelTypeGuildText {
			return respondEphemeral(a, i, "The log channel must be a text channel.")
		}
		update.LogChannelID = &channel.ID
	}
	if o, ok := opts["title"]; ok {
		v := o.StringValue()
		update.Title = &v
	}
	if o, ok := opts["description"]; ok {
		v := o.StringValue()
		update.Description = &v
	}

	// With no fields the command reports instead of writing.
	if update.Empty() {
		return showPanelConfig(a, i, name)
	}

	if _, err := a.Panels().UpsertPanel(context.Background(), i.GuildID, name, update); err != nil {
		return fmt.Errorf("error upserting panel: %w", err)
	}
	return respondEphemeral(a, i, fmt.Sprintf("Panel `%s` configured. Publish it with `/tickets here`.", name))
}

func showPanelConfig(a IApp, i *discordgo.InteractionCreate, name string) error {
	panel, err := a.Panels().GetPanel(context.Background(), i.GuildID, name)
	if err != nil {
		names := make([]string, 0)
		if panels, listErr := a.Panels().ListPanels(context.Background(), i.GuildID); listErr == nil {
			for _, p := range panels {
				names = append(names, "`"+p.Name+"`")
			}
		}
		msg := fmt.Sprintf("No panel named `%s`. Provide fields to create it.", name)
		if len(names) > 0 {
			msg += " Existing panels: " + strings.Join(names, ", ")
		}
		return respondEphemeral(a, i, msg)
	}

	category := "not set"
	if panel.CategoryID != "" {
		category = "<#" + panel.CategoryID + ">"
	}
	logChannel := "not set"
	if panel.LogChannelID != "" {
		logChannel = "<#" + panel.LogChannelID + ">"
	}

	return respondEphemeral(a, i, fmt.Sprintf(
		"**Panel `%s`**\nCategory: %s\nLog Channel: %s\nTitle: %s\nDescription: %s\nButtons: %d",
		panel.Name, category, logChannel,
		orDefault(panel.Title), orDefault(panel.Description), len(panel.Buttons),
	))
}

func orDefault(s string) string {
	if s == "" {
		return "default"
	}
	return s
}

func deletePanelCmdProcessor(a IApp, i *discordgo.InteractionCreate) error {
	name := subOptions(i)["name"].StringValue()

	if err := a.Panels().DeletePanel(context.Background(), i.GuildID, name); err != nil {
		return fmt.Errorf("error deleting panel: %w", err)
	}
	return respondEphemeral(a, i, fmt.Sprintf("Panel `%s` deleted. Open tickets are unaffected.", name))
}

func buttonCmdProcessor(a IApp, i *discordgo.InteractionCreate) error {
	opts := subOptions(i)
	panelName := opts["panel"].StringValue()
	position := int(opts["position"].IntValue())

	if position < 1 || position > entities.MaxButtonPosition {
		return respondEphemeral(a, i, fmt.Sprintf("The position must be between 1 and %d.", entities.MaxButtonPosition))
	}

	update := new(entities.ButtonUpdate)
	if o, ok := opts["label"]; ok {
		v := o.StringValue()
		update.Label = &v
	}
	if o, ok := opts["emoji"]; ok {
		v := o.StringValue()
		update.Emoji = &v
	}
	if o, ok := opts["style"]; ok {
		v := strings.ToLower(o.StringValue())
		update.Style = &v
	}
	if o, ok := opts["title"]; ok {
		v := o.StringValue()
		update.TicketTitle = &v
	}
	if o, ok := opts["message"]; ok {
		v := o.StringValue()
		update.TicketMessage = &v
	}
	if o, ok := opts["color"]; ok {
		v := strings.ToLower(o.StringValue())
		update.TicketColor = &v
	}
	if o, ok := opts["staff_roles"]; ok {
		v := parseRoleList(o.StringValue())
		update.StaffRoleIDs = &v
	}
	if o, ok := opts["user_roles"]; ok {
		v := parseRoleList(o.StringValue())
		update.UserRoleIDs = &v
	}

	// With no fields the command reports instead of writing.
	if update.Empty() {
		return showButtonConfig(a, i, panelName, position)
	}

	if _, err := a.Panels().UpsertButton(context.Background(), i.GuildID, panelName, position, update); err != nil {
		return fmt.Errorf("error upserting button: %w", err)
	}
	return respondEphemeral(a, i, fmt.Sprintf(
		"Button %d of panel `%s` configured. Re-publish the panel with `/tickets here` to apply it.",
		position, panelName,
	))
}

func showButtonConfig(a IApp, i *discordgo.InteractionCreate, panelName string, position int) error {
	button, err := a.Panels().GetButton(context.Background(), i.GuildID, panelName, position)
	if err != nil {
		return respondEphemeral(a, i, fmt.Sprintf(
			"No button at position %d of panel `%s`. Provide fields to create it.", position, panelName))
	}

	return respondEphemeral(a, i, fmt.Sprintf(
		"**Button %d of panel `%s`**\nLabel: %s\nEmoji: %s\nStyle: %s\nTicket Title: %s\nTicket Message: %s\nColour: %s\nStaff Roles: %s\nUser Roles: %s",
		button.Position, button.Panel,
		orDefault(button.Label), orDefault(button.Emoji), orDefault(button.Style),
		orDefault(button.TicketTitle), orDefault(button.TicketMessage), orDefault(button.TicketColor),
		formatRoleList(button.StaffRoleIDs), formatRoleList(button.UserRoleIDs),
	))
}

func deleteButtonCmdProcessor(a IApp, i *discordgo.InteractionCreate) error {
	opts := subOptions(i)
	panelName := opts["panel"].StringValue()
	position := int(opts["position"].IntValue())

	if err := a.Panels().DeleteButton(context.Background(), i.GuildID, panelName, position); err != nil {
		return fmt.Errorf("error deleting button: %w", err)
	}
	return respondEphemeral(a, i, fmt.Sprintf(
		"Button %d of panel `%s` deleted. Tickets it already created are unaffected.", position, panelName))
}

func hereCmdProcessor(a IApp, i *discordgo.InteractionCreate) error {
	if !canManageChannels(i) {
		return respondEphemeral(a, i, "You must be able to manage channels to publish ticket panels.")
	}

	opts := subOptions(i)
	panelName := opts["panel"].StringValue()

	target := i.ChannelID
	if o, ok := opts["channel"]; ok {
		channel := o.ChannelValue(a.Session())
		if channel.Type != discordgo.ChannelTypeGuildText {
			return respondEphemeral(a, i, "Panels can only be published to text channels.")
		}
		target = channel.ID
	}

	if _, err := a.Publisher().Publish(context.Background(), i.GuildID, panelName, target); err != nil {
		return fmt.Errorf("error publishing panel: %w", err)
	}

	monitoring.TotalPanelsPublished.Inc()
	return respondEphemeral(a, i, fmt.Sprintf("Panel `%s` published to <#%s>.", panelName, target))
}

// parseRoleList parses a comma-separated list of role mentions or raw role
// IDs. Entries that are neither are dropped.
func parseRoleList(raw string) []string {
	ids := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "<@&") && strings.HasSuffix(part, ">") {
			part = part[3 : len(part)-1]
		}
		if part == "" || !isDigits(part) {
			continue
		}
		ids = append(ids, part)
	}
	return ids
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func formatRoleList(ids []string) string {
	if len(ids) == 0 {
		return "none"
	}
	mentions := make([]string, 0, len(ids))
	for _, id := range ids {
		mentions = append(mentions, "<@&"+id+">")
	}
	return strings.Join(mentions, ", ")
}
