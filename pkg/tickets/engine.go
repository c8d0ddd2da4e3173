package tickets

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/lupine-bot/lupine/pkg/custom"
	"github.com/lupine-bot/lupine/pkg/entities"
	"github.com/lupine-bot/lupine/pkg/logging"
	"golang.org/x/sync/singleflight"
)

// CloseButtonID is the custom ID of the close control posted inside every
// ticket channel.
const CloseButtonID = "ticket_close"

// Activation is a validated button-activation event.
type Activation struct {
	GuildID  string
	Panel    string
	Position int
	UserID   string
	Username string
	RoleIDs  []string
}

// CloseRequest is a validated close request for the channel it was issued
// in, either from the close command or the close control.
type CloseRequest struct {
	GuildID   string
	ChannelID string
	UserID    string
	RoleIDs   []string

	// Operator marks a user with guild-management permissions, who may
	// close any ticket.
	Operator bool
}

// OpenResult is the outcome of an activation.
type OpenResult struct {
	Ticket *entities.Ticket

	// AlreadyOpen is set when no new ticket was created because the
	// creator already has one open for this button, or because a
	// concurrent activation for the same (button, user) pair won the race.
	AlreadyOpen bool
}

// Engine is the ticket lifecycle state machine: (none) -> open -> closing ->
// closed. It exclusively owns ticket status transitions.
type Engine struct {
	l        *slog.Logger
	panels   PanelStore
	tickets  TicketStore
	platform Platform
	sink     *Sink

	// flight serializes channel creation per (button, user) pair so that
	// concurrent double-clicks never spawn two channels. Unrelated tickets
	// are not serialized against each other.
	flight singleflight.Group

	// botID is the bot's own user ID, granted staff access in every ticket.
	botID string
}

// NewEngine creates a new lifecycle engine.
func NewEngine(l *slog.Logger, panels PanelStore, tickets TicketStore, platform Platform, sink *Sink, botID string) *Engine {
	return &Engine{
		l:        l,
		panels:   panels,
		tickets:  tickets,
		platform: platform,
		sink:     sink,
		botID:    botID,
	}
}

type openOutcome struct {
	ticket  *entities.Ticket
	created bool
}

// Open handles a button activation. At most one ticket creation proceeds per
// (button, user) pair at a time; losers of the race observe AlreadyOpen. On
// any failure during channel creation no ticket record is left behind and
// the activation is safely retriable.
func (e *Engine) Open(ctx context.Context, act *Activation) (*OpenResult, error) {
	panel, err := e.panels.GetPanel(ctx, act.GuildID, act.Panel)
	if err != nil {
		return nil, fmt.Errorf("error getting panel: %w", err)
	}
	if panel.CategoryID == "" {
		return nil, fmt.Errorf("panel %q has no category: %w", act.Panel, ErrPanelIncomplete)
	}

	button, err := e.panels.GetButton(ctx, act.GuildID, act.Panel, act.Position)
	if err != nil {
		return nil, fmt.Errorf("error getting button: %w", err)
	}

	// An empty user-role set means the button is unrestricted.
	if len(button.UserRoleIDs) > 0 && !rolesIntersect(button.UserRoleIDs, act.RoleIDs) {
		return nil, fmt.Errorf("user %s may not use button %d of panel %q: %w",
			act.UserID, act.Position, act.Panel, ErrForbidden)
	}

	key := fmt.Sprintf("%s:%s:%d:%s", act.GuildID, act.Panel, act.Position, act.UserID)

	// The closure only runs for the flight winner; concurrent duplicates
	// share its outcome.
	executed := false
	v, err, _ := e.flight.Do(key, func() (any, error) {
		executed = true
		return e.createTicket(ctx, panel, button, act)
	})
	if err != nil {
		return nil, err
	}

	outcome := v.(*openOutcome)
	return &OpenResult{
		Ticket:      outcome.ticket,
		AlreadyOpen: !executed || !outcome.created,
	}, nil
}

func (e *Engine) createTicket(ctx context.Context, panel *entities.Panel, button *entities.Button, act *Activation) (*openOutcome, error) {
	// One open ticket per (button, user): point a repeat click at the
	// existing channel instead of spawning another.
	existing, err := e.tickets.GetOpenTicket(ctx, act.GuildID, act.Panel, act.Position, act.UserID)
	if err == nil {
		return &openOutcome{ticket: existing}, nil
	}

	overwrites := ResolveOverwrites(button, act.GuildID, act.UserID, e.botID)

	channel, err := e.platform.GuildChannelCreateComplex(act.GuildID, discordgo.GuildChannelCreateData{
		Name:                 ticketChannelName(button, act.Username),
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                fmt.Sprintf("Ticket created by %s", act.Username),
		PermissionOverwrites: overwrites,
		ParentID:             panel.CategoryID,
	})
	if err != nil {
		// No ticket record exists; the user can safely click again.
		return nil, fmt.Errorf("error creating ticket channel: %w", err)
	}

	ticket := &entities.Ticket{
		ChannelID:      channel.ID,
		GuildID:        act.GuildID,
		Panel:          act.Panel,
		ButtonPosition: act.Position,
		UserID:         act.UserID,
		Username:       act.Username,
		Status:         entities.TicketStatusOpen,
		CreatedAt:      custom.Datetime(time.Now().UTC()),
	}
	if err := e.tickets.SaveTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("error saving ticket: %w", err)
	}

	// The opening message is best-effort: the ticket stands without it.
	msg, err := e.platform.ChannelMessageSendComplex(channel.ID, composeOpeningMessage(button, act.UserID))
	if err != nil {
		e.l.Warn("Error posting opening message",
			slog.String(logging.KeyTicket, ticket.ChannelID),
			slog.String(logging.KeyError, err.Error()),
		)
	} else {
		ticket.OpenMessageID = msg.ID
		if err := e.tickets.SaveTicket(ctx, ticket); err != nil {
			return nil, fmt.Errorf("error saving ticket: %w", err)
		}
	}

	return &openOutcome{ticket: ticket, created: true}, nil
}

// Close handles an authorized close request: the ticket moves open ->
// closing, the archive sink persists the record, the live channel is deleted
// only once archiving has durably succeeded, and the ticket ends closed.
// A failed archive leaves the ticket in closing for a retried close.
func (e *Engine) Close(ctx context.Context, req *CloseRequest) error {
	ticket, err := e.tickets.GetTicket(ctx, req.GuildID, req.ChannelID)
	if err != nil {
		return fmt.Errorf("no ticket for channel %s: %w", req.ChannelID, ErrUnknownTicket)
	}
	if ticket.Status == entities.TicketStatusClosed {
		return fmt.Errorf("ticket %s already closed: %w", ticket.ChannelID, ErrUnknownTicket)
	}

	if !e.mayClose(ctx, ticket, req) {
		return fmt.Errorf("user %s may not close ticket %s: %w", req.UserID, ticket.ChannelID, ErrForbidden)
	}

	// The panel supplies the archive destination. A panel deleted after the
	// ticket opened leaves nowhere to archive to.
	logChannelID := ""
	if panel, err := e.panels.GetPanel(ctx, ticket.GuildID, ticket.Panel); err == nil {
		logChannelID = panel.LogChannelID
	}

	if ticket.Status != entities.TicketStatusClosing {
		ticket.Status = entities.TicketStatusClosing
		ticket.ClosedBy = req.UserID
		if err := e.tickets.SaveTicket(ctx, ticket); err != nil {
			return fmt.Errorf("error saving ticket: %w", err)
		}
	}

	if _, err := e.sink.Archive(ctx, ticket, logChannelID); err != nil {
		return fmt.Errorf("error archiving ticket %s: %w", ticket.ChannelID, err)
	}

	if _, err := e.platform.ChannelDelete(ticket.ChannelID); err != nil {
		return fmt.Errorf("error deleting ticket channel: %w", err)
	}

	ticket.Status = entities.TicketStatusClosed
	ticket.ClosedAt = custom.Datetime(time.Now().UTC())
	if err := e.tickets.SaveTicket(ctx, ticket); err != nil {
		return fmt.Errorf("error saving ticket: %w", err)
	}

	e.l.Info("Ticket closed",
		slog.String(logging.KeyGuild, ticket.GuildID),
		slog.String(logging.KeyTicket, ticket.ChannelID),
	)
	return nil
}

// mayClose reports whether the requester is the creator, holds one of the
// owning button's staff roles, or is an operator. A deleted button leaves
// creator and operator as the only closers.
func (e *Engine) mayClose(ctx context.Context, ticket *entities.Ticket, req *CloseRequest) bool {
	if req.Operator || req.UserID == ticket.UserID {
		return true
	}

	button, err := e.panels.GetButton(ctx, ticket.GuildID, ticket.Panel, ticket.ButtonPosition)
	if err != nil {
		return false
	}
	return rolesIntersect(button.StaffRoleIDs, req.RoleIDs)
}

func rolesIntersect(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y && x != "" {
				return true
			}
		}
	}
	return false
}

func ticketChannelName(button *entities.Button, username string) string {
	base := channelSlug(button.Label)
	if base == "" {
		base = "ticket"
	}
	user := channelSlug(username)
	if user == "" {
		user = "member"
	}
	return base + "-" + user
}

func composeOpeningMessage(button *entities.Button, creatorID string) *discordgo.MessageSend {
	title := button.TicketTitle
	if title == "" {
		title = DefaultTicketTitle
	}
	body := button.TicketMessage
	if body == "" {
		body = DefaultTicketMessage
	}
	color := button.TicketColor
	if color == "" {
		color = DefaultTicketColor
	}

	return &discordgo.MessageSend{
		Embed: &discordgo.MessageEmbed{
			Title:       title,
			Description: fmt.Sprintf("Ticket created by <@%s>\n%s", creatorID, body),
			Color:       accentColor(color),
		},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						// Padlock.
						Label:    "\U0001F512 Close Ticket",
						Style:    discordgo.DangerButton,
						CustomID: CloseButtonID,
					},
				},
			},
		},
	}
}
