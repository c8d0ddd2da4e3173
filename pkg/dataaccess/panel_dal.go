package dataaccess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lupine-bot/lupine/pkg/dataaccess/monitoring"
	"github.com/lupine-bot/lupine/pkg/entities"
	"github.com/lupine-bot/lupine/pkg/logging"
	"github.com/lupine-bot/lupine/pkg/tickets"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const panelDalName = "panel_dal"

type panelDal struct {
	// l is the logger.
	l *slog.Logger

	// client is the database.
	client *mongo.Client
}

// NewPanelDal creates the mongo-backed configuration store for panels and
// buttons. Buttons are stored in their own collection keyed by
// (guild, panel, position), so concurrent upserts to different positions
// never contend, and partial updates are field-wise $set documents so that
// unsupplied fields are left unchanged.
func NewPanelDal(l *slog.Logger) tickets.PanelStore {
	l = l.With(slog.String(logging.KeyDal, panelDalName))

	if MongoDB == nil {
		l.Warn("MongoDB is nil, this can cause a panic. Proceeding...")
	}

	return &panelDal{
		l:      l,
		client: MongoDB,
	}
}

// startQuery starts the prometheus instrumentation for a query. Stop the
// returned timer when the query completes.
func startQuery(dal, query, collection string) *prometheus.Timer {
	monitoring.MongoTotalRequests.WithLabelValues(dal, query, mongoDatabase, collection).Inc()
	return prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(dal, query, mongoDatabase, collection))
}

func (d *panelDal) UpsertPanel(ctx context.Context, guildID, name string, update *entities.PanelUpdate) (*entities.Panel, error) {
	collection := d.client.Database(mongoDatabase).Collection(collectionPanels)

	t := startQuery(panelDalName, "upsert_panel", collectionPanels)
	defer t.ObserveDuration()

	// The identity fields are always set so that a bare upsert still
	// creates the panel.
	set := bson.M{
		"guild_id": guildID,
		"name":     name,
	}
	if update != nil {
		if update.CategoryID != nil {
			set["category_id"] = *update.CategoryID
		}
		if update.LogChannelID != nil {
			set["log_channel_id"] = *update.LogChannelID
		}
		if update.Title != nil {
			set["title"] = *update.Title
		}
		if update.Description != nil {
			set["description"] = *update.Description
		}
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"guild_id": guildID, "name": name}
	if _, err := collection.UpdateOne(ctx, filter, bson.M{"$set": set}, opts); err != nil {
		return nil, fmt.Errorf("error upserting panel: %w", err)
	}

	return d.GetPanel(ctx, guildID, name)
}

func (d *panelDal) DeletePanel(ctx context.Context, guildID, name string) error {
	collection := d.client.Database(mongoDatabase).Collection(collectionPanels)

	t := startQuery(panelDalName, "delete_panel", collectionPanels)
	defer t.ObserveDuration()

	res, err := collection.DeleteOne(ctx, bson.M{"guild_id": guildID, "name": name})
	if err != nil {
		return fmt.Errorf("error deleting panel: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("panel %q: %w", name, tickets.ErrNotFound)
	}

	// Cascade to the panel's buttons. Open tickets are untouched.
	buttons := d.client.Database(mongoDatabase).Collection(collectionButtons)
	if _, err := buttons.DeleteMany(ctx, bson.M{"guild_id": guildID, "panel": name}); err != nil {
		return fmt.Errorf("error deleting panel buttons: %w", err)
	}
	return nil
}

func (d *panelDal) GetPanel(ctx context.Context, guildID, name string) (*entities.Panel, error) {
	collection := d.client.Database(mongoDatabase).Collection(collectionPanels)

	t := startQuery(panelDalName, "get_panel", collectionPanels)
	defer t.ObserveDuration()

	panel := new(entities.Panel)
	err := collection.FindOne(ctx, bson.M{"guild_id": guildID, "name": name}).Decode(panel)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("panel %q: %w", name, tickets.ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("error getting panel: %w", err)
	}

	if panel.Buttons, err = d.loadButtons(ctx, guildID, name); err != nil {
		return nil, err
	}
	return panel, nil
}

func (d *panelDal) ListPanels(ctx context.Context, guildID string) ([]*entities.Panel, error) {
	collection := d.client.Database(mongoDatabase).Collection(collectionPanels)

	t := startQuery(panelDalName, "list_panels", collectionPanels)
	defer t.ObserveDuration()

	opts := options.Find().SetSort(bson.M{"name": 1})
	cursor, err := collection.Find(ctx, bson.M{"guild_id": guildID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing panels: %w", err)
	}

	var panels []*entities.Panel
	if err := cursor.All(ctx, &panels); err != nil {
		return nil, fmt.Errorf("error decoding panels: %w", err)
	}

	for _, p := range panels {
		if p.Buttons, err = d.loadButtons(ctx, guildID, p.Name); err != nil {
			return nil, err
		}
	}
	return panels, nil
}

func (d *panelDal) UpsertButton(ctx context.Context, guildID, panel string, position int, update *entities.ButtonUpdate) (*entities.Button, error) {
	if position < 1 || position > entities.MaxButtonPosition {
		return nil, fmt.Errorf("button position %d out of range 1..%d", position, entities.MaxButtonPosition)
	}

	panels := d.client.Database(mongoDatabase).Collection(collectionPanels)

	t := startQuery(panelDalName, "upsert_button", collectionButtons)
	defer t.ObserveDuration()

	n, err := panels.CountDocuments(ctx, bson.M{"guild_id": guildID, "name": panel})
	if err != nil {
		return nil, fmt.Errorf("error checking panel: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("panel %q: %w", panel, tickets.ErrNotFound)
	}

	set := bson.M{
		"guild_id": guildID,
		"panel":    panel,
		"position": position,
	}
	if update != nil {
		if update.Label != nil {
			set["label"] = *update.Label
		}
		if update.Emoji != nil {
			set["emoji"] = *update.Emoji
		}
		if update.Style != nil {
			set["style"] = *update.Style
		}
		if update.TicketTitle != nil {
			set["ticket_title"] = *update.TicketTitle
		}
		if update.TicketMessage != nil {
			set["ticket_message"] = *update.TicketMessage
		}
		if update.TicketColor != nil {
			set["ticket_color"] = *update.TicketColor
		}
		if update.StaffRoleIDs != nil {
			set["staff_role_ids"] = *update.StaffRoleIDs
		}
		if update.UserRoleIDs != nil {
			set["user_role_ids"] = *update.UserRoleIDs
		}
	}

	buttons := d.client.Database(mongoDatabase).Collection(collectionButtons)
	opts := options.Update().SetUpsert(true)
	filter := bson.M{"guild_id": guildID, "panel": panel, "position": position}
	if _, err := buttons.UpdateOne(ctx, filter, bson.M{"$set": set}, opts); err != nil {
		return nil, fmt.Errorf("error upserting button: %w", err)
	}

	return d.GetButton(ctx, guildID, panel, position)
}

func (d *panelDal) DeleteButton(ctx context.Context, guildID, panel string, position int) error {
	collection := d.client.Database(mongoDatabase).Collection(collectionButtons)

	t := startQuery(panelDalName, "delete_button", collectionButtons)
	defer t.ObserveDuration()

	res, err := collection.DeleteOne(ctx, bson.M{"guild_id": guildID, "panel": panel, "position": position})
	if err != nil {
		return fmt.Errorf("error deleting button: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("button %d of panel %q: %w", position, panel, tickets.ErrNotFound)
	}
	return nil
}

func (d *panelDal) GetButton(ctx context.Context, guildID, panel string, position int) (*entities.Button, error) {
	collection := d.client.Database(mongoDatabase).Collection(collectionButtons)

	t := startQuery(panelDalName, "get_button", collectionButtons)
	defer t.ObserveDuration()

	button := new(entities.Button)
	err := collection.FindOne(ctx, bson.M{"guild_id": guildID, "panel": panel, "position": position}).Decode(button)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("button %d of panel %q: %w", position, panel, tickets.ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("error getting button: %w", err)
	}
	return button, nil
}

func (d *panelDal) RecordPanelMessage(ctx context.Context, guildID, name, channelID, messageID string) error {
	collection := d.client.Database(mongoDatabase).Collection(collectionPanels)

	t := startQuery(panelDalName, "record_panel_message", collectionPanels)
	defer t.ObserveDuration()

	res, err := collection.UpdateOne(ctx,
		bson.M{"guild_id": guildID, "name": name},
		bson.M{"$set": bson.M{"message_channel_id": channelID, "message_id": messageID}},
	)
	if err != nil {
		return fmt.Errorf("error recording panel message: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("panel %q: %w", name, tickets.ErrNotFound)
	}
	return nil
}

func (d *panelDal) loadButtons(ctx context.Context, guildID, panel string) ([]*entities.Button, error) {
	collection := d.client.Database(mongoDatabase).Collection(collectionButtons)

	opts := options.Find().SetSort(bson.M{"position": 1})
	cursor, err := collection.Find(ctx, bson.M{"guild_id": guildID, "panel": panel}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing buttons: %w", err)
	}

	var buttons []*entities.Button
	if err := cursor.All(ctx, &buttons); err != nil {
		return nil, fmt.Errorf("error decoding buttons: %w", err)
	}
	return buttons, nil
}
