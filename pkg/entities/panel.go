package entities

// Panel is a named, guild-scoped ticket panel configuration. A panel owns an
// ordered set of buttons and records where its live panel message (if any)
// was last published.
type Panel struct {
	// GuildID is the ID of the guild that owns the panel.
	GuildID string `json:"guild_id" bson:"guild_id"`

	// Name is the name of the panel. Unique within a guild.
	Name string `json:"name" bson:"name"`

	// CategoryID is the ID of the category that ticket channels are created
	// under.
	CategoryID string `json:"category_id" bson:"category_id"`

	// LogChannelID is the ID of the channel that archives are posted to.
	LogChannelID string `json:"log_channel_id" bson:"log_channel_id"`

	// Title is the title of the panel message.
	Title string `json:"title" bson:"title"`

	// Description is the description of the panel message.
	Description string `json:"description" bson:"description"`

	// MessageChannelID is the ID of the channel that the panel message was
	// last published to.
	MessageChannelID string `json:"message_channel_id" bson:"message_channel_id"`

	// MessageID is the ID of the last published panel message.
	MessageID string `json:"message_id" bson:"message_id"`

	// Buttons are the panel's buttons, ordered by position. Populated on
	// reads; stored separately.
	Buttons []*Button `json:"buttons" bson:"-"`
}

// PanelUpdate is a partial update to a panel. Nil fields are left unchanged.
type PanelUpdate struct {
	CategoryID   *string
	LogChannelID *string
	Title        *string
	Description  *string
}

// Empty reports whether the update carries no fields.
func (u *PanelUpdate) Empty() bool {
	return u == nil ||
		(u.CategoryID == nil && u.LogChannelID == nil && u.Title == nil && u.Description == nil)
}
