package main

import (
	"github.com/Jacobbrewer1/discordgo"
)

func respondEphemeral(a IApp, i *discordgo.InteractionCreate, content string) error {
	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// isOperator reports whether the member may act on any ticket or panel in
// the guild.
func isOperator(i *discordgo.InteractionCreate) bool {
	return i.Member != nil &&
		(i.Member.Permissions&discordgo.PermissionAdministrator != 0 ||
			i.Member.Permissions&discordgo.PermissionManageServer != 0)
}

// canManageChannels reports whether the member may publish panels.
func canManageChannels(i *discordgo.InteractionCreate) bool {
	return isOperator(i) ||
		(i.Member != nil && i.Member.Permissions&discordgo.PermissionManageChannels != 0)
}

// subOptions indexes the options of the invoked subcommand by name.
func subOptions(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	opts := i.ApplicationCommandData().Options[0].Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}
