package entities

import (
	"github.com/lupine-bot/lupine/pkg/custom"
)

// ArchiveRecord is the durable remainder of a closed ticket: a pointer to
// the transcript message posted in the panel's log channel.
type ArchiveRecord struct {
	// ID is the unique ID of the record.
	ID string `json:"id" bson:"id"`

	// GuildID is the ID of the guild that the ticket was in.
	GuildID string `json:"guild_id" bson:"guild_id"`

	// TicketChannelID is the ID of the archived ticket's channel.
	TicketChannelID string `json:"ticket_channel_id" bson:"ticket_channel_id"`

	// LogChannelID is the ID of the channel that the transcript was posted
	// to.
	LogChannelID string `json:"log_channel_id" bson:"log_channel_id"`

	// MessageID is the ID of the transcript message.
	MessageID string `json:"message_id" bson:"message_id"`

	// FileName is the name of the transcript file.
	FileName string `json:"file_name" bson:"file_name"`

	// ClosedBy is the ID of the user that closed the ticket.
	ClosedBy string `json:"closed_by" bson:"closed_by"`

	// ArchivedAt is the time that the transcript was posted.
	ArchivedAt custom.Datetime `json:"archived_at" bson:"archived_at"`
}
