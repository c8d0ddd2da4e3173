package config

const (
	// AppName is the name of the application.
	AppName = "lupine"

	// EnvBotToken is the environment variable for the bot token.
	EnvBotToken = `BOT_TOKEN`

	// EnvApplicationId is the environment variable for the application ID.
	EnvApplicationId = `APPLICATION_ID`

	// EnvMongoUri is the environment variable for the MongoDB URI.
	EnvMongoUri = `MONGO_URI`

	// EnvMonitoringPort is the environment variable for the monitoring port.
	EnvMonitoringPort = `MONITORING_PORT`

	// EnvConfigFile is the environment variable for an optional YAML config
	// file. Environment variables override file values.
	EnvConfigFile = `CONFIG_FILE`
)

var (
	// BotToken is the token for the bot.
	BotToken string

	// ApplicationId is the ID of the application.
	ApplicationId string

	// MongoUri is the URI for the MongoDB database.
	MongoUri string

	// MonitoringPort is the port for the monitoring server.
	MonitoringPort string
)

// File is the YAML layout of the optional config file.
type File struct {
	BotToken       string `yaml:"bot_token"`
	ApplicationID  string `yaml:"application_id"`
	MongoURI       string `yaml:"mongo_uri"`
	MonitoringPort string `yaml:"monitoring_port"`
}
