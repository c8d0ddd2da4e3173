package tickets

import (
	"strings"

	"github.com/Jacobbrewer1/discordgo"
)

const (
	// DefaultPanelTitle is the panel message title when none is configured.
	DefaultPanelTitle = "Support Tickets"

	// DefaultPanelDescription is the panel message description when none is
	// configured.
	DefaultPanelDescription = "Click a button below to create a support ticket"

	// DefaultButtonLabel is the button label when none is configured.
	DefaultButtonLabel = "Create Ticket"

	// DefaultButtonEmoji is the button emoji when none is configured.
	// (Ticket)
	DefaultButtonEmoji = "\U0001F3AB"

	// DefaultTicketTitle is the opening message title when none is
	// configured.
	DefaultTicketTitle = "Support Ticket"

	// DefaultTicketMessage is the opening message body when none is
	// configured.
	DefaultTicketMessage = "Support will be with you shortly."

	// DefaultTicketColor is the opening message accent colour when none is
	// configured.
	DefaultTicketColor = "green"
)

const (
	// PanelColor is the accent colour of panel messages. (Blurple)
	PanelColor = 0x5865F2

	// ClosedColor is the accent colour of archive messages. (Red)
	ClosedColor = 0xED4245
)

// buttonStyle maps a configured style name onto the platform style. Unknown
// names fall back to primary.
func buttonStyle(name string) discordgo.ButtonStyle {
	switch strings.ToLower(name) {
	case "secondary":
		return discordgo.SecondaryButton
	case "success":
		return discordgo.SuccessButton
	case "danger":
		return discordgo.DangerButton
	default:
		return discordgo.PrimaryButton
	}
}

// accentColor maps a configured colour name onto an embed colour. Unknown
// names fall back to green.
func accentColor(name string) int {
	switch strings.ToLower(name) {
	case "red":
		return 0xED4245
	case "blue":
		return 0x3498DB
	case "blurple":
		return 0x5865F2
	case "yellow":
		return 0xFEE75C
	case "orange":
		return 0xE67E22
	case "purple":
		return 0x9B59B6
	default:
		return 0x57F287
	}
}

// channelSlug lowercases s and strips everything a channel name cannot
// carry, collapsing runs into single hyphens.
func channelSlug(s string) string {
	var b strings.Builder
	lastHyphen := true // strip leading hyphens
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
