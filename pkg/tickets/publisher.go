package tickets

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/lupine-bot/lupine/pkg/entities"
	"github.com/lupine-bot/lupine/pkg/logging"
)

// PanelButtonPrefix is the custom-ID prefix of panel buttons. The full ID is
// "<prefix>:<panel>:<position>".
const PanelButtonPrefix = "ticket_panel"

// PanelButtonID builds the custom ID for a panel button.
func PanelButtonID(panel string, position int) string {
	return fmt.Sprintf("%s:%s:%d", PanelButtonPrefix, panel, position)
}

// Publisher renders panels into channel messages with one interactive button
// per configured position. Re-publication keeps exactly one live panel
// message per panel.
type Publisher struct {
	l        *slog.Logger
	store    PanelStore
	platform Platform
}

// NewPublisher creates a new panel publisher.
func NewPublisher(l *slog.Logger, store PanelStore, platform Platform) *Publisher {
	return &Publisher{
		l:        l,
		store:    store,
		platform: platform,
	}
}

// Publish posts the panel's current configuration to targetChannelID, or to
// the channel of the previous publication when targetChannelID is empty. Any
// previously published message is deleted first, best-effort, so at most one
// live panel message exists afterwards. The new message reference is
// recorded back into the store.
//
// Returns ErrPanelIncomplete when the panel has no buttons and
// ErrNoTargetChannel when there is nowhere to post.
func (p *Publisher) Publish(ctx context.Context, guildID, panelName, targetChannelID string) (*discordgo.Message, error) {
	panel, err := p.store.GetPanel(ctx, guildID, panelName)
	if err != nil {
		return nil, fmt.Errorf("error getting panel: %w", err)
	}

	if len(panel.Buttons) == 0 {
		return nil, fmt.Errorf("panel %q has no buttons: %w", panelName, ErrPanelIncomplete)
	}

	target := targetChannelID
	if target == "" {
		target = panel.MessageChannelID
	}
	if target == "" {
		return nil, ErrNoTargetChannel
	}

	// Delete the prior panel message. Absence is not an error; the message
	// may have been removed by hand.
	if panel.MessageID != "" && panel.MessageChannelID != "" {
		if err := p.platform.ChannelMessageDelete(panel.MessageChannelID, panel.MessageID); err != nil {
			p.l.Debug("Prior panel message could not be deleted",
				slog.String(logging.KeyPanel, panelName),
				slog.String(logging.KeyError, err.Error()),
			)
		}
	}

	msg, err := p.platform.ChannelMessageSendComplex(target, composePanelMessage(panel))
	if err != nil {
		return nil, fmt.Errorf("error sending panel message: %w", err)
	}

	if err := p.store.RecordPanelMessage(ctx, guildID, panelName, target, msg.ID); err != nil {
		return nil, fmt.Errorf("error recording panel message: %w", err)
	}

	return msg, nil
}

func composePanelMessage(panel *entities.Panel) *discordgo.MessageSend {
	title := panel.Title
	if title == "" {
		title = DefaultPanelTitle
	}
	description := panel.Description
	if description == "" {
		description = DefaultPanelDescription
	}

	row := discordgo.ActionsRow{}
	for _, b := range panel.Buttons {
		label := b.Label
		if label == "" {
			label = DefaultButtonLabel
		}
		emoji := b.Emoji
		if emoji == "" {
			emoji = DefaultButtonEmoji
		}

		row.Components = append(row.Components, discordgo.Button{
			Label:    label,
			Style:    buttonStyle(b.Style),
			Emoji:    discordgo.ComponentEmoji{Name: emoji},
			CustomID: PanelButtonID(b.Panel, b.Position),
		})
	}

	return &discordgo.MessageSend{
		Embed: &discordgo.MessageEmbed{
			Title:       title,
			Description: description,
			Color:       PanelColor,
		},
		Components: []discordgo.MessageComponent{row},
	}
}
