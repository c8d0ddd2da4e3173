package tickets

import (
	"context"
	"errors"
	"testing"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/lupine-bot/lupine/pkg/entities"
	"github.com/lupine-bot/lupine/pkg/logging"
	"github.com/stretchr/testify/require"
)

func newTestPublisher(t *testing.T) (*Publisher, *fakePanelStore, *fakePlatform) {
	t.Helper()

	l, err := logging.CommonLogger(logging.NewConfig(`tests`))
	require.NoError(t, err, "Failed to create logger")

	panels := newFakePanelStore()
	platform := newFakePlatform()

	_, err = panels.UpsertPanel(context.Background(), "g1", "support", &entities.PanelUpdate{
		CategoryID: ptr("cat-1"),
	})
	require.NoError(t, err)

	_, err = panels.UpsertButton(context.Background(), "g1", "support", 2, &entities.ButtonUpdate{
		Label: ptr("Billing"),
	})
	require.NoError(t, err)
	_, err = panels.UpsertButton(context.Background(), "g1", "support", 1, &entities.ButtonUpdate{
		Label: ptr("Help"),
		Style: ptr("danger"),
	})
	require.NoError(t, err)

	return NewPublisher(l, panels, platform), panels, platform
}

func TestPublisherPublish(t *testing.T) {
	p, panels, platform := newTestPublisher(t)

	msg, err := p.Publish(context.Background(), "g1", "support", "chan-target")
	require.NoError(t, err)

	// The message reference is recorded for later republication.
	panel, err := panels.GetPanel(context.Background(), "g1", "support")
	require.NoError(t, err)
	require.Equal(t, "chan-target", panel.MessageChannelID)
	require.Equal(t, msg.ID, panel.MessageID)

	// One action row holding the buttons in position order.
	sent := platform.sent["chan-target"][0]
	require.Len(t, sent.Components, 1)
	row, ok := sent.Components[0].(discordgo.ActionsRow)
	require.True(t, ok)
	require.Len(t, row.Components, 2)

	first, ok := row.Components[0].(discordgo.Button)
	require.True(t, ok)
	require.Equal(t, "Help", first.Label)
	require.Equal(t, discordgo.DangerButton, first.Style)
	require.Equal(t, "ticket_panel:support:1", first.CustomID)

	second, ok := row.Components[1].(discordgo.Button)
	require.True(t, ok)
	require.Equal(t, "Billing", second.Label)
	require.Equal(t, discordgo.PrimaryButton, second.Style)
	require.Equal(t, "ticket_panel:support:2", second.CustomID)

	// Unset panel text falls back to the defaults.
	require.Equal(t, DefaultPanelTitle, sent.Embed.Title)
	require.Equal(t, DefaultPanelDescription, sent.Embed.Description)
}

func TestPublisherRepublish(t *testing.T) {
	p, _, platform := newTestPublisher(t)

	first, err := p.Publish(context.Background(), "g1", "support", "chan-a")
	require.NoError(t, err)

	// Republishing elsewhere removes the previous panel message.
	_, err = p.Publish(context.Background(), "g1", "support", "chan-b")
	require.NoError(t, err)
	require.Contains(t, platform.deleted, "chan-a/"+first.ID)
	require.Equal(t, 1, platform.sentCount("chan-b"))
}

func TestPublisherRepublishSameChannel(t *testing.T) {
	p, panels, platform := newTestPublisher(t)

	_, err := p.Publish(context.Background(), "g1", "support", "chan-a")
	require.NoError(t, err)

	// An empty target reuses the recorded channel.
	msg, err := p.Publish(context.Background(), "g1", "support", "")
	require.NoError(t, err)
	require.Equal(t, 2, platform.sentCount("chan-a"))

	panel, err := panels.GetPanel(context.Background(), "g1", "support")
	require.NoError(t, err)
	require.Equal(t, msg.ID, panel.MessageID)
}

func TestPublisherPriorMessageGone(t *testing.T) {
	p, _, platform := newTestPublisher(t)

	_, err := p.Publish(context.Background(), "g1", "support", "chan-a")
	require.NoError(t, err)

	// Deletion of the prior message failing (removed by hand) does not block
	// republication.
	platform.deleteErr = errors.New("unknown message")
	_, err = p.Publish(context.Background(), "g1", "support", "chan-a")
	require.NoError(t, err)
	require.Equal(t, 2, platform.sentCount("chan-a"))
}

func TestPublisherNoButtons(t *testing.T) {
	p, panels, platform := newTestPublisher(t)

	_, err := panels.UpsertPanel(context.Background(), "g1", "empty", &entities.PanelUpdate{Title: ptr("Empty")})
	require.NoError(t, err)

	_, err = p.Publish(context.Background(), "g1", "empty", "chan-a")
	require.ErrorIs(t, err, ErrPanelIncomplete)
	require.Equal(t, 0, platform.sentCount("chan-a"))
}

func TestPublisherNoTargetChannel(t *testing.T) {
	p, _, _ := newTestPublisher(t)

	// Never published before and no target given.
	_, err := p.Publish(context.Background(), "g1", "support", "")
	require.ErrorIs(t, err, ErrNoTargetChannel)
}

func TestPublisherUnknownPanel(t *testing.T) {
	p, _, _ := newTestPublisher(t)

	_, err := p.Publish(context.Background(), "g1", "missing", "chan-a")
	require.ErrorIs(t, err, ErrNotFound)
}
