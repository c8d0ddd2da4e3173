package tickets

import (
	"testing"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/lupine-bot/lupine/pkg/entities"
	"github.com/stretchr/testify/require"
)

func findOverwrite(overwrites []*discordgo.PermissionOverwrite, id string) *discordgo.PermissionOverwrite {
	for _, o := range overwrites {
		if o.ID == id {
			return o
		}
	}
	return nil
}

func TestResolveOverwrites(t *testing.T) {
	button := &entities.Button{
		GuildID:      "g1",
		Panel:        "support",
		Position:     1,
		StaffRoleIDs: []string{"staff-a", "staff-b"},
		UserRoleIDs:  []string{"members"},
	}

	overwrites := ResolveOverwrites(button, "g1", "user-1", "bot-1")
	require.Len(t, overwrites, 6)

	// @everyone is denied view at the root.
	everyone := findOverwrite(overwrites, "g1")
	require.NotNil(t, everyone)
	require.Equal(t, discordgo.PermissionOverwriteTypeRole, everyone.Type)
	require.EqualValues(t, discordgo.PermissionViewChannel, everyone.Deny)
	require.Zero(t, everyone.Allow)

	// The creator can see and use the ticket but not manage it.
	creator := findOverwrite(overwrites, "user-1")
	require.NotNil(t, creator)
	require.Equal(t, discordgo.PermissionOverwriteTypeMember, creator.Type)
	require.EqualValues(t, memberPermissions, creator.Allow)
	require.Zero(t, creator.Allow&discordgo.PermissionManageMessages)

	// The bot gets staff access.
	bot := findOverwrite(overwrites, "bot-1")
	require.NotNil(t, bot)
	require.EqualValues(t, staffPermissions, bot.Allow)

	for _, roleID := range button.StaffRoleIDs {
		o := findOverwrite(overwrites, roleID)
		require.NotNil(t, o, roleID)
		require.Equal(t, discordgo.PermissionOverwriteTypeRole, o.Type)
		require.EqualValues(t, staffPermissions, o.Allow)
	}

	// User roles are let in without management rights.
	members := findOverwrite(overwrites, "members")
	require.NotNil(t, members)
	require.EqualValues(t, memberPermissions, members.Allow)
}

func TestResolveOverwritesBareButton(t *testing.T) {
	// No configured roles produces a creator-only channel.
	overwrites := ResolveOverwrites(&entities.Button{}, "g1", "user-1", "bot-1")
	require.Len(t, overwrites, 3)
	require.NotNil(t, findOverwrite(overwrites, "g1"))
	require.NotNil(t, findOverwrite(overwrites, "user-1"))
	require.NotNil(t, findOverwrite(overwrites, "bot-1"))
}

func TestResolveOverwritesDeduplicates(t *testing.T) {
	button := &entities.Button{
		StaffRoleIDs: []string{"role-a", "role-a", ""},
		// A role in both lists resolves once, at the stronger grant.
		UserRoleIDs: []string{"role-a", "role-b"},
	}

	overwrites := ResolveOverwrites(button, "g1", "user-1", "bot-1")
	require.Len(t, overwrites, 5)

	roleA := findOverwrite(overwrites, "role-a")
	require.NotNil(t, roleA)
	require.EqualValues(t, staffPermissions, roleA.Allow)

	roleB := findOverwrite(overwrites, "role-b")
	require.NotNil(t, roleB)
	require.EqualValues(t, memberPermissions, roleB.Allow)
}
