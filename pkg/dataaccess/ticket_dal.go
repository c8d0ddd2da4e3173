package dataaccess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lupine-bot/lupine/pkg/entities"
	"github.com/lupine-bot/lupine/pkg/logging"
	"github.com/lupine-bot/lupine/pkg/tickets"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ticketDalName = "ticket_dal"

type ticketDal struct {
	// l is the logger.
	l *slog.Logger

	// client is the database.
	client *mongo.Client
}

// NewTicketDal creates the mongo-backed ticket store. Tickets are keyed by
// their channel ID and survive process restarts; closed tickets are retained
// as history.
func NewTicketDal(l *slog.Logger) tickets.TicketStore {
	l = l.With(slog.String(logging.KeyDal, ticketDalName))

	if MongoDB == nil {
		l.Warn("MongoDB is nil, this can cause a panic. Proceeding...")
	}

	return &ticketDal{
		l:      l,
		client: MongoDB,
	}
}

func (d *ticketDal) SaveTicket(ctx context.Context, ticket *entities.Ticket) error {
	collection := d.client.Database(mongoDatabase).Collection(collectionTickets)

	t := startQuery(ticketDalName, "save_ticket", collectionTickets)
	defer t.ObserveDuration()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"guild_id": ticket.GuildID, "channel_id": ticket.ChannelID}
	if _, err := collection.UpdateOne(ctx, filter, bson.M{"$set": ticket}, opts); err != nil {
		return fmt.Errorf("error saving ticket: %w", err)
	}
	return nil
}

func (d *ticketDal) GetTicket(ctx context.Context, guildID, channelID string) (*entities.Ticket, error) {
	collection := d.client.Database(mongoDatabase).Collection(collectionTickets)

	t := startQuery(ticketDalName, "get_ticket", collectionTickets)
	defer t.ObserveDuration()

	ticket := new(entities.Ticket)
	err := collection.FindOne(ctx, bson.M{
		"guild_id":   guildID,
		"channel_id": channelID,
	}).Decode(ticket)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("ticket %s: %w", channelID, tickets.ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("error getting ticket: %w", err)
	}
	return ticket, nil
}

func (d *ticketDal) GetOpenTicket(ctx context.Context, guildID, panel string, position int, userID string) (*entities.Ticket, error) {
	collection := d.client.Database(mongoDatabase).Collection(collectionTickets)

	t := startQuery(ticketDalName, "get_open_ticket", collectionTickets)
	defer t.ObserveDuration()

	ticket := new(entities.Ticket)
	err := collection.FindOne(ctx, bson.M{
		"guild_id":        guildID,
		"panel":           panel,
		"button_position": position,
		"user_id":         userID,
		"status":          entities.TicketStatusOpen,
	}).Decode(ticket)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("no open ticket for user %s: %w", userID, tickets.ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("error getting open ticket: %w", err)
	}
	return ticket, nil
}
