package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/lupine-bot/lupine/cmd/bot/monitoring"
	"github.com/lupine-bot/lupine/pkg/logging"
	"github.com/lupine-bot/lupine/pkg/tickets"
	"log/slog"
)

// panelButtonHandler opens a ticket when a panel button is clicked. The
// custom ID carries the panel name and button position.
func panelButtonHandler(a IApp, i *discordgo.InteractionCreate) error {
	if a.Engine() == nil {
		return respondEphemeral(a, i, "The bot is still starting up. Try again in a moment.")
	}
	if i.Member == nil || i.Member.User == nil {
		return respondEphemeral(a, i, "Tickets can only be opened from within a server.")
	}

	panelName, position, err := parsePanelButtonID(i.MessageComponentData().CustomID)
	if err != nil {
		return fmt.Errorf("error parsing button id: %w", err)
	}

	res, err := a.Engine().Open(context.Background(), &tickets.Activation{
		GuildID:  i.GuildID,
		Panel:    panelName,
		Position: position,
		UserID:   i.Member.User.ID,
		Username: i.Member.User.Username,
		RoleIDs:  i.Member.Roles,
	})
	if err != nil {
		return fmt.Errorf("error opening ticket: %w", err)
	}

	if res.AlreadyOpen {
		return respondEphemeral(a, i, fmt.Sprintf("You already have an open ticket: <#%s>", res.Ticket.ChannelID))
	}

	monitoring.TotalTicketsOpened.Inc()
	return respondEphemeral(a, i, fmt.Sprintf("Your ticket has been created: <#%s>", res.Ticket.ChannelID))
}

func parsePanelButtonID(customID string) (panel string, position int, err error) {
	rest, ok := strings.CutPrefix(customID, tickets.PanelButtonPrefix+":")
	if !ok {
		return "", 0, fmt.Errorf("malformed panel button id %q", customID)
	}

	// The panel name may itself contain separators; the position never does.
	idx := strings.LastIndex(rest, ":")
	if idx <= 0 {
		return "", 0, fmt.Errorf("malformed panel button id %q", customID)
	}
	position, err = strconv.Atoi(rest[idx+1:])
	if err != nil {
		return "", 0, fmt.Errorf("malformed button position in %q: %w", customID, err)
	}
	return rest[:idx], position, nil
}

// closeTicketHandler closes the ticket whose channel holds the clicked
// close button.
func closeTicketHandler(a IApp, i *discordgo.InteractionCreate) error {
	return closeCurrentTicket(a, i)
}

// closeCmdProcessor closes the ticket that the command was executed in.
func closeCmdProcessor(a IApp, i *discordgo.InteractionCreate) error {
	return closeCurrentTicket(a, i)
}

func closeCurrentTicket(a IApp, i *discordgo.InteractionCreate) error {
	if a.Engine() == nil {
		return respondEphemeral(a, i, "The bot is still starting up. Try again in a moment.")
	}
	if i.Member == nil || i.Member.User == nil {
		return respondEphemeral(a, i, "Tickets can only be closed from within a server.")
	}

	req := &tickets.CloseRequest{
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		UserID:    i.Member.User.ID,
		RoleIDs:   i.Member.Roles,
		Operator:  isOperator(i),
	}

	// Respond before the channel is deleted; responding afterwards fails as
	// the interaction's channel no longer exists.
	if err := respondEphemeral(a, i, "Closing ticket..."); err != nil {
		return fmt.Errorf("error responding to interaction: %w", err)
	}

	if err := a.Engine().Close(context.Background(), req); err != nil {
		a.Log().Error("Error closing ticket",
			slog.String(logging.KeyGuild, i.GuildID),
			slog.String(logging.KeyTicket, i.ChannelID),
			slog.String(logging.KeyError, err.Error()),
		)
		// The ephemeral response is already spent, so report in-channel. The
		// channel still exists on every close failure path.
		if _, sendErr := a.Session().ChannelMessageSend(i.ChannelID, tickets.UserMessage(err)); sendErr != nil {
			a.Log().Error("Error reporting close failure",
				slog.String(logging.KeyTicket, i.ChannelID),
				slog.String(logging.KeyError, sendErr.Error()),
			)
		}
		return nil
	}

	monitoring.TotalTicketsClosed.Inc()
	return nil
}
