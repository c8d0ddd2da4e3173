package entities

import (
	"github.com/lupine-bot/lupine/pkg/custom"
)

// TicketStatus is the lifecycle status of a ticket.
type TicketStatus string

const (
	// TicketStatusOpen is a live ticket.
	TicketStatusOpen TicketStatus = "open"

	// TicketStatusClosing is a ticket whose close was requested but whose
	// archive has not durably completed.
	TicketStatusClosing TicketStatus = "closing"

	// TicketStatusClosed is a ticket whose channel has been removed. The
	// archive is the durable remainder.
	TicketStatusClosed TicketStatus = "closed"
)

// Ticket is a live, access-restricted channel created from a button
// activation. Its identity is the created channel ID.
type Ticket struct {
	// ChannelID is the ID of the ticket channel.
	ChannelID string `json:"channel_id" bson:"channel_id"`

	// GuildID is the ID of the guild that the ticket is in.
	GuildID string `json:"guild_id" bson:"guild_id"`

	// Panel is the name of the panel that spawned the ticket.
	Panel string `json:"panel" bson:"panel"`

	// ButtonPosition is the position of the button that spawned the ticket.
	ButtonPosition int `json:"button_position" bson:"button_position"`

	// UserID is the ID of the user that created the ticket.
	UserID string `json:"user_id" bson:"user_id"`

	// Username is the username of the user that created the ticket.
	Username string `json:"username" bson:"username"`

	// Status is the lifecycle status of the ticket.
	Status TicketStatus `json:"status" bson:"status"`

	// OpenMessageID is the ID of the opening message posted in the ticket
	// channel.
	OpenMessageID string `json:"open_message_id" bson:"open_message_id"`

	// ArchiveMessageID is the ID of the archive message posted to the log
	// channel. Set once the transcript has been durably posted; archive
	// retries must not post again when this is set.
	ArchiveMessageID string `json:"archive_message_id" bson:"archive_message_id"`

	// ClosedBy is the ID of the user that closed the ticket.
	ClosedBy string `json:"closed_by" bson:"closed_by"`

	// CreatedAt is the time that the ticket was created.
	CreatedAt custom.Datetime `json:"created_at" bson:"created_at"`

	// ClosedAt is the time that the ticket reached closed.
	ClosedAt custom.Datetime `json:"closed_at" bson:"closed_at"`
}
