package logging

const (
	// KeyApp is the key for the application name.
	KeyApp = "app"

	// KeyError is the key for an error.
	KeyError = "err"

	// KeyDal is the key for the data access layer in use.
	KeyDal = "dal"

	// KeyGuild is the key for a guild ID.
	KeyGuild = "guild"

	// KeyPanel is the key for a panel name.
	KeyPanel = "panel"

	// KeyTicket is the key for a ticket channel ID.
	KeyTicket = "ticket"

	// KeyCommand is the key for a command name.
	KeyCommand = "command"
)
