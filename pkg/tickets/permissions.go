package tickets

import (
	"github.com/Jacobbrewer1/discordgo"
	"github.com/lupine-bot/lupine/pkg/entities"
)

const (
	// memberPermissions are granted to the creator and to user roles:
	// view and send, nothing more.
	memberPermissions = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages

	// staffPermissions are granted to staff roles and the bot itself.
	staffPermissions = memberPermissions | discordgo.PermissionManageMessages
)

// ResolveOverwrites derives the permission overwrite set for a ticket from
// the button's configured role lists plus the creator. The channel is private
// by default: @everyone is denied view at the root and each resolved entry is
// an explicit allow. The set is a snapshot; role changes after creation do
// not retroactively alter it.
//
// A button with no configured roles is legal and produces a creator-only
// channel.
func ResolveOverwrites(button *entities.Button, guildID, creatorID, botID string) []*discordgo.PermissionOverwrite {
	overwrites := []*discordgo.PermissionOverwrite{
		// Deny @everyone from seeing the ticket.
		{
			ID:   guildID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		// The creator can see and use the ticket but not manage it.
		{
			ID:    creatorID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: memberPermissions,
		},
	}

	if botID != "" && botID != creatorID {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    botID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: staffPermissions,
		})
	}

	seen := map[string]bool{guildID: true, creatorID: true, botID: true}

	for _, roleID := range button.StaffRoleIDs {
		if roleID == "" || seen[roleID] {
			continue
		}
		seen[roleID] = true
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    roleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: staffPermissions,
		})
	}

	// User roles only gate who may click the button, but members of those
	// roles are also allowed into the channel.
	for _, roleID := range button.UserRoleIDs {
		if roleID == "" || seen[roleID] {
			continue
		}
		seen[roleID] = true
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    roleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: memberPermissions,
		})
	}

	return overwrites
}
