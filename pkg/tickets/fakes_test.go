package tickets

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/lupine-bot/lupine/pkg/entities"
)

// fakePanelStore is an in-memory PanelStore with the same merge semantics as
// the real store.
type fakePanelStore struct {
	mu      sync.Mutex
	panels  map[string]*entities.Panel
	buttons map[string]*entities.Button
}

func newFakePanelStore() *fakePanelStore {
	return &fakePanelStore{
		panels:  make(map[string]*entities.Panel),
		buttons: make(map[string]*entities.Button),
	}
}

func panelKey(guildID, name string) string {
	return guildID + "/" + name
}

func buttonKey(guildID, panel string, position int) string {
	return guildID + "/" + panel + "/" + strconv.Itoa(position)
}

func (s *fakePanelStore) UpsertPanel(_ context.Context, guildID, name string, update *entities.PanelUpdate) (*entities.Panel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.panels[panelKey(guildID, name)]
	if !ok {
		p = &entities.Panel{GuildID: guildID, Name: name}
		s.panels[panelKey(guildID, name)] = p
	}
	if update.CategoryID != nil {
		p.CategoryID = *update.CategoryID
	}
	if update.LogChannelID != nil {
		p.LogChannelID = *update.LogChannelID
	}
	if update.Title != nil {
		p.Title = *update.Title
	}
	if update.Description != nil {
		p.Description = *update.Description
	}
	out := *p
	return &out, nil
}

func (s *fakePanelStore) DeletePanel(_ context.Context, guildID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.panels[panelKey(guildID, name)]; !ok {
		return fmt.Errorf("panel %s: %w", name, ErrNotFound)
	}
	delete(s.panels, panelKey(guildID, name))
	for k, b := range s.buttons {
		if b.GuildID == guildID && b.Panel == name {
			delete(s.buttons, k)
		}
	}
	return nil
}

func (s *fakePanelStore) GetPanel(_ context.Context, guildID, name string) (*entities.Panel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.panels[panelKey(guildID, name)]
	if !ok {
		return nil, fmt.Errorf("panel %s: %w", name, ErrNotFound)
	}
	out := *p
	out.Buttons = nil
	for _, b := range s.buttons {
		if b.GuildID == guildID && b.Panel == name {
			copied := *b
			out.Buttons = append(out.Buttons, &copied)
		}
	}
	sort.Slice(out.Buttons, func(i, j int) bool {
		return out.Buttons[i].Position < out.Buttons[j].Position
	})
	return &out, nil
}

func (s *fakePanelStore) ListPanels(_ context.Context, guildID string) ([]*entities.Panel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*entities.Panel
	for _, p := range s.panels {
		if p.GuildID == guildID {
			copied := *p
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *fakePanelStore) UpsertButton(_ context.Context, guildID, panel string, position int, update *entities.ButtonUpdate) (*entities.Button, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.panels[panelKey(guildID, panel)]; !ok {
		return nil, fmt.Errorf("panel %s: %w", panel, ErrNotFound)
	}

	b, ok := s.buttons[buttonKey(guildID, panel, position)]
	if !ok {
		b = &entities.Button{GuildID: guildID, Panel: panel, Position: position}
		s.buttons[buttonKey(guildID, panel, position)] = b
	}
	if update.Label != nil {
		b.Label = *update.Label
	}
	if update.Emoji != nil {
		b.Emoji = *update.Emoji
	}
	if update.Style != nil {
		b.Style = *update.Style
	}
	if update.TicketTitle != nil {
		b.TicketTitle = *update.TicketTitle
	}
	if update.TicketMessage != nil {
		b.TicketMessage = *update.TicketMessage
	}
	if update.TicketColor != nil {
		b.TicketColor = *update.TicketColor
	}
	if update.StaffRoleIDs != nil {
		b.StaffRoleIDs = append([]string(nil), (*update.StaffRoleIDs)...)
	}
	if update.UserRoleIDs != nil {
		b.UserRoleIDs = append([]string(nil), (*update.UserRoleIDs)...)
	}
	out := *b
	return &out, nil
}

func (s *fakePanelStore) DeleteButton(_ context.Context, guildID, panel string, position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buttons[buttonKey(guildID, panel, position)]; !ok {
		return fmt.Errorf("button %d: %w", position, ErrNotFound)
	}
	delete(s.buttons, buttonKey(guildID, panel, position))
	return nil
}

func (s *fakePanelStore) GetButton(_ context.Context, guildID, panel string, position int) (*entities.Button, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buttons[buttonKey(guildID, panel, position)]
	if !ok {
		return nil, fmt.Errorf("button %d: %w", position, ErrNotFound)
	}
	out := *b
	return &out, nil
}

func (s *fakePanelStore) RecordPanelMessage(_ context.Context, guildID, name, channelID, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.panels[panelKey(guildID, name)]
	if !ok {
		return fmt.Errorf("panel %s: %w", name, ErrNotFound)
	}
	p.MessageChannelID = channelID
	p.MessageID = messageID
	return nil
}

// fakeTicketStore is an in-memory TicketStore.
type fakeTicketStore struct {
	mu      sync.Mutex
	tickets map[string]*entities.Ticket

	saveErr error
}

func newFakeTicketStore() *fakeTicketStore {
	return &fakeTicketStore{tickets: make(map[string]*entities.Ticket)}
}

func (s *fakeTicketStore) SaveTicket(_ context.Context, ticket *entities.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveErr != nil {
		return s.saveErr
	}
	copied := *ticket
	s.tickets[ticket.GuildID+"/"+ticket.ChannelID] = &copied
	return nil
}

func (s *fakeTicketStore) GetTicket(_ context.Context, guildID, channelID string) (*entities.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[guildID+"/"+channelID]
	if !ok {
		return nil, fmt.Errorf("ticket %s: %w", channelID, ErrNotFound)
	}
	out := *t
	return &out, nil
}

func (s *fakeTicketStore) GetOpenTicket(_ context.Context, guildID, panel string, position int, userID string) (*entities.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tickets {
		if t.GuildID == guildID && t.Panel == panel && t.ButtonPosition == position &&
			t.UserID == userID && t.Status == entities.TicketStatusOpen {
			out := *t
			return &out, nil
		}
	}
	return nil, fmt.Errorf("open ticket: %w", ErrNotFound)
}

func (s *fakeTicketStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tickets)
}

// fakePlatform is an in-memory Platform. History pages are provided
// newest-first, as the real API returns them.
type fakePlatform struct {
	mu       sync.Mutex
	channels map[string]*discordgo.Channel
	history  map[string][]*discordgo.Message
	sent     map[string][]*discordgo.MessageSend
	deleted  []string
	nextID   int

	createErr error
	sendErr   error
	deleteErr error
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		channels: make(map[string]*discordgo.Channel),
		history:  make(map[string][]*discordgo.Message),
		sent:     make(map[string][]*discordgo.MessageSend),
	}
}

func (p *fakePlatform) addChannel(id, name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels[id] = &discordgo.Channel{ID: id, Name: name, Type: discordgo.ChannelTypeGuildText}
}

func (p *fakePlatform) Channel(channelID string) (*discordgo.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, ok := p.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("channel %s not found", channelID)
	}
	return ch, nil
}

func (p *fakePlatform) GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.createErr != nil {
		return nil, p.createErr
	}
	p.nextID++
	ch := &discordgo.Channel{
		ID:                   "chan-" + strconv.Itoa(p.nextID),
		GuildID:              guildID,
		Name:                 data.Name,
		Type:                 data.Type,
		Topic:                data.Topic,
		ParentID:             data.ParentID,
		PermissionOverwrites: data.PermissionOverwrites,
	}
	p.channels[ch.ID] = ch
	return ch, nil
}

func (p *fakePlatform) ChannelDelete(channelID string) (*discordgo.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.deleteErr != nil {
		return nil, p.deleteErr
	}
	ch, ok := p.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("channel %s not found", channelID)
	}
	delete(p.channels, channelID)
	p.deleted = append(p.deleted, channelID)
	return ch, nil
}

func (p *fakePlatform) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sendErr != nil {
		return nil, p.sendErr
	}
	p.nextID++
	p.sent[channelID] = append(p.sent[channelID], data)
	msg := &discordgo.Message{
		ID:        "msg-" + strconv.Itoa(p.nextID),
		ChannelID: channelID,
		Timestamp: time.Now().UTC(),
	}
	if data.Embed != nil {
		msg.Embeds = []*discordgo.MessageEmbed{data.Embed}
	}
	// Sent messages become channel history, newest first.
	p.history[channelID] = append([]*discordgo.Message{msg}, p.history[channelID]...)
	return msg, nil
}

func (p *fakePlatform) ChannelMessageDelete(channelID, messageID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.deleteErr != nil {
		return p.deleteErr
	}
	p.deleted = append(p.deleted, channelID+"/"+messageID)
	return nil
}

func (p *fakePlatform) ChannelMessages(channelID string, limit int, beforeID, _, _ string) ([]*discordgo.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	msgs := p.history[channelID]
	start := 0
	if beforeID != "" {
		for i, m := range msgs {
			if m.ID == beforeID {
				start = i + 1
				break
			}
		}
	}
	if start >= len(msgs) {
		return nil, nil
	}
	end := start + limit
	if end > len(msgs) {
		end = len(msgs)
	}
	return msgs[start:end], nil
}

func (p *fakePlatform) sentCount(channelID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent[channelID])
}

func (p *fakePlatform) createdCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for id := range p.channels {
		if len(id) > 5 && id[:5] == "chan-" {
			n++
		}
	}
	for _, id := range p.deleted {
		if len(id) > 5 && id[:5] == "chan-" {
			n++
		}
	}
	return n
}

func (p *fakePlatform) hasChannel(channelID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.channels[channelID]
	return ok
}
