package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lupine-bot/lupine/pkg/dataaccess"
	"github.com/lupine-bot/lupine/pkg/dataaccess/connection"
	"github.com/lupine-bot/lupine/pkg/logging"
	"gopkg.in/yaml.v3"
)

// Parse loads the configuration from the optional YAML file and the
// environment (environment wins), then connects to MongoDB. Missing required
// values are fatal.
func Parse(l *slog.Logger) {
	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := parseFile(path); err != nil {
			l.Error("Error reading config file", slog.String(logging.KeyError, err.Error()))
			os.Exit(1)
		}
		l.Debug("Loaded config file", slog.String("path", path))
	}

	if envBT := os.Getenv(EnvBotToken); envBT != "" {
		l.Debug("Found bot token in environment", slog.String("key", EnvBotToken))
		BotToken = envBT
	}

	if envAppId := os.Getenv(EnvApplicationId); envAppId != "" {
		l.Debug("Found application ID in environment", slog.String("key", EnvApplicationId))
		ApplicationId = envAppId
	}

	if envMongoUri := os.Getenv(EnvMongoUri); envMongoUri != "" {
		l.Debug("Found MongoDB URI in environment", slog.String("key", EnvMongoUri))
		MongoUri = envMongoUri
	}

	if envMonitoringPort := os.Getenv(EnvMonitoringPort); envMonitoringPort != "" {
		l.Debug("Found monitoring port in environment", slog.String("key", EnvMonitoringPort))
		MonitoringPort = envMonitoringPort
	} else if MonitoringPort == "" {
		// Default to 8080 if not provided.
		MonitoringPort = "8080"

		l.Info("No monitoring port provided, defaulting to 8080", slog.String("key", EnvMonitoringPort))
	}

	if BotToken == "" || ApplicationId == "" || MongoUri == "" {
		l.Error("Not all required configuration values have been provided",
			slog.String(logging.KeyError, "incomplete configuration"))
		os.Exit(1)
	}

	connectMongo(l)
}

func parseFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", path, err)
	}

	f := new(File)
	if err := yaml.Unmarshal(raw, f); err != nil {
		return fmt.Errorf("error parsing %s: %w", path, err)
	}

	BotToken = f.BotToken
	ApplicationId = f.ApplicationID
	MongoUri = f.MongoURI
	MonitoringPort = f.MonitoringPort
	return nil
}

func connectMongo(l *slog.Logger) {
	mongoConn := new(connection.MongoDB)
	mongoConn.ConnectionString = MongoUri

	db, err := mongoConn.Connect()
	if err != nil {
		l.Error("Error connecting to mongo", slog.String(logging.KeyError, err.Error()))
		os.Exit(1)
	} else if db == nil {
		l.Error("MongoDB came back nil", slog.String(logging.KeyError, "MongoDB came back nil"))
		os.Exit(1)
	}

	dataaccess.MongoDB = db

	l.Debug("Connected to MongoDB", slog.String("key", EnvMongoUri))
}
