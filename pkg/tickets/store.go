package tickets

import (
	"context"

	"github.com/lupine-bot/lupine/pkg/entities"
)

// PanelStore is the configuration store for panels and their buttons. It is
// the single source of truth for panel and button definitions.
//
// Writes are partial merges: nil update fields leave the stored value
// unchanged, so concurrent upserts to different fields or different button
// positions never lose either write. All writes are atomic with respect to
// concurrent reads. Lookups of absent records return ErrNotFound.
type PanelStore interface {
	// UpsertPanel creates the panel or merges the given fields into it.
	UpsertPanel(ctx context.Context, guildID, name string, update *entities.PanelUpdate) (*entities.Panel, error)

	// DeletePanel removes the panel and all of its buttons. Tickets already
	// spawned by the panel are unaffected.
	DeletePanel(ctx context.Context, guildID, name string) error

	// GetPanel returns the panel with its buttons ordered by position.
	GetPanel(ctx context.Context, guildID, name string) (*entities.Panel, error)

	// ListPanels returns the guild's panels.
	ListPanels(ctx context.Context, guildID string) ([]*entities.Panel, error)

	// UpsertButton creates or merges the button at the given position.
	// Returns ErrNotFound if the panel does not exist.
	UpsertButton(ctx context.Context, guildID, panel string, position int, update *entities.ButtonUpdate) (*entities.Button, error)

	// DeleteButton removes the button. Tickets it already spawned are
	// unaffected.
	DeleteButton(ctx context.Context, guildID, panel string, position int) error

	// GetButton returns the button at the given position.
	GetButton(ctx context.Context, guildID, panel string, position int) (*entities.Button, error)

	// RecordPanelMessage stores the published-message reference for the
	// panel, overwriting any previous reference.
	RecordPanelMessage(ctx context.Context, guildID, name, channelID, messageID string) error
}

// TicketStore persists ticket records across restarts. The lifecycle engine
// exclusively owns status transitions; the store never mutates a ticket on
// its own.
type TicketStore interface {
	// SaveTicket inserts or replaces the ticket, keyed by its channel ID.
	SaveTicket(ctx context.Context, ticket *entities.Ticket) error

	// GetTicket returns the ticket for the given channel, or ErrNotFound.
	GetTicket(ctx context.Context, guildID, channelID string) (*entities.Ticket, error)

	// GetOpenTicket returns the creator's open ticket for the given button,
	// or ErrNotFound.
	GetOpenTicket(ctx context.Context, guildID, panel string, position int, userID string) (*entities.Ticket, error)
}
