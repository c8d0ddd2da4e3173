package entities

// MaxButtonPosition is the highest button position a panel supports. Five
// buttons fill one message action row.
const MaxButtonPosition = 5

// Button is one clickable control on a panel. It configures the permissions
// and initial content of the tickets it spawns.
type Button struct {
	// GuildID is the ID of the guild that owns the button's panel.
	GuildID string `json:"guild_id" bson:"guild_id"`

	// Panel is the name of the panel that the button belongs to.
	Panel string `json:"panel" bson:"panel"`

	// Position is the position of the button on the panel. Unique within a
	// panel, 1 to MaxButtonPosition.
	Position int `json:"position" bson:"position"`

	// Label is the button label.
	Label string `json:"label" bson:"label"`

	// Emoji is the button emoji. Optional.
	Emoji string `json:"emoji" bson:"emoji"`

	// Style is the button style. One of primary, secondary, success, danger.
	Style string `json:"style" bson:"style"`

	// TicketTitle is the title of the opening message of spawned tickets.
	TicketTitle string `json:"ticket_title" bson:"ticket_title"`

	// TicketMessage is the body of the opening message of spawned tickets.
	TicketMessage string `json:"ticket_message" bson:"ticket_message"`

	// TicketColor is the accent colour of the opening message.
	TicketColor string `json:"ticket_color" bson:"ticket_color"`

	// StaffRoleIDs are the roles granted staff access to spawned tickets.
	StaffRoleIDs []string `json:"staff_role_ids" bson:"staff_role_ids"`

	// UserRoleIDs are the roles permitted to click the button. Empty means
	// everyone.
	UserRoleIDs []string `json:"user_role_ids" bson:"user_role_ids"`
}

// ButtonUpdate is a partial update to a button. Nil fields are left
// unchanged.
type ButtonUpdate struct {
	Label         *string
	Emoji         *string
	Style         *string
	TicketTitle   *string
	TicketMessage *string
	TicketColor   *string
	StaffRoleIDs  *[]string
	UserRoleIDs   *[]string
}

// Empty reports whether the update carries no fields.
func (u *ButtonUpdate) Empty() bool {
	return u == nil ||
		(u.Label == nil && u.Emoji == nil && u.Style == nil && u.TicketTitle == nil &&
			u.TicketMessage == nil && u.TicketColor == nil && u.StaffRoleIDs == nil && u.UserRoleIDs == nil)
}
