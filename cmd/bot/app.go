package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/gorilla/mux"
	"github.com/lupine-bot/lupine/cmd/bot/config"
	"github.com/lupine-bot/lupine/cmd/bot/monitoring"
	"github.com/lupine-bot/lupine/pkg/dataaccess"
	"github.com/lupine-bot/lupine/pkg/logging"
	"github.com/lupine-bot/lupine/pkg/request"
	"github.com/lupine-bot/lupine/pkg/tickets"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// PathMetrics is the path for metrics.
	PathMetrics = "/metrics"

	// PathHealth is the path for health check.
	PathHealth = "/health"
)

// IApp is the interface handlers use to reach the application.
type IApp interface {
	// Session returns the discord session.
	Session() *discordgo.Session

	// Log returns the logger.
	Log() *slog.Logger

	// Panels returns the panel configuration store.
	Panels() tickets.PanelStore

	// Engine returns the ticket lifecycle engine.
	Engine() *tickets.Engine

	// Publisher returns the panel publisher.
	Publisher() *tickets.Publisher
}

type App struct {
	// l is the logger.
	l *slog.Logger

	// r is the router for the application.
	r *mux.Router

	// svr is the server for the application.
	svr *http.Server

	// s is the discord session.
	s *discordgo.Session

	// eventNotifier is the channel for notifying of events.
	eventNotifier chan any

	// commandIDs maps guild ID to the registered tickets command ID, so
	// shutdown can unregister exactly what was created.
	commandIDs map[string]string

	// coreOnce guards core construction, which needs the bot's own user ID
	// from the ready event.
	coreOnce  sync.Once
	panels    tickets.PanelStore
	ticketDal tickets.TicketStore
	engine    *tickets.Engine
	publisher *tickets.Publisher
}

// NewApp creates a new instance of App.
func NewApp(l *slog.Logger, r *mux.Router) *App {
	return &App{
		l: l,
		r: r,
	}
}

func (a *App) Run() error {
	// Register bot.
	if err := a.RegisterBot(); err != nil {
		return fmt.Errorf("error registering bot: %w", err)
	}

	a.s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		a.Log().Info(fmt.Sprintf("Logged in as %s#%s", r.User.Username, r.User.Discriminator))
		a.initCore(r.User.ID)
	})

	// Register slash commands.
	if err := a.registerSlashCommands(); err != nil {
		return fmt.Errorf("error registering slash commands: %w", err)
	}

	if err := a.RegisterDiscordHandlers(); err != nil {
		return fmt.Errorf("error registering discord handlers: %w", err)
	}

	// Start event listener.
	go a.eventListener()

	// Open websocket.
	if err := a.s.Open(); err != nil {
		return fmt.Errorf("error opening connection to Discord: %w", err)
	}

	a.Log().Info("Bot is now running.")

	a.generateServer()
	a.setupRoutes()
	a.runServer()

	// Register listener for shutdown signal.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	// Process shutdown signal.
	for sig := range c {
		a.Log().Info("Received shutdown signal", slog.String("signal", sig.String()))
		if err := a.ShutdownHook(); err != nil {
			a.Log().Error("Error shutting down application", slog.String(logging.KeyError, err.Error()))
		}
		os.Exit(0)
	}
	return nil
}

func (a *App) ShutdownHook() error {
	// Reset the total number of guilds to 0.
	monitoring.TotalDiscordGuilds.Set(0)

	// Unregister slash commands.
	if err := a.unregisterSlashCommands(); err != nil {
		return fmt.Errorf("error unregistering slash commands: %w", err)
	}

	// Close the connection to Discord.
	if err := a.s.Close(); err != nil {
		return fmt.Errorf("error closing connection to Discord: %w", err)
	}
	return nil
}

func (a *App) RegisterBot() error {
	// Default the number of guilds to 0.
	monitoring.TotalDiscordGuilds.Set(0)

	dg, err := discordgo.New("Bot " + config.BotToken)
	if err != nil {
		return fmt.Errorf("error creating Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.MakeIntent(discordgo.IntentsAll)

	if a.eventNotifier == nil {
		// Buffered to prevent blocking the gateway reader.
		a.eventNotifier = make(chan any, 100)
	}

	dg.SetEventNotifier(a.eventNotifier)

	a.s = dg
	return nil
}

// initCore builds the ticket core once the bot's own user ID is known. The
// bot is granted staff access in every ticket it creates.
func (a *App) initCore(botID string) {
	a.coreOnce.Do(func() {
		platform := tickets.SessionPlatform(a.s)
		a.panels = dataaccess.NewPanelDal(a.Log())
		a.ticketDal = dataaccess.NewTicketDal(a.Log())
		sink := tickets.NewSink(a.Log(), a.ticketDal, platform)
		a.engine = tickets.NewEngine(a.Log(), a.panels, a.ticketDal, platform, sink, botID)
		a.publisher = tickets.NewPublisher(a.Log(), a.panels, platform)
	})
}

func (a *App) runServer() {
	go func() {
		a.Log().Info("Starting monitoring server")
		if err := a.svr.ListenAndServe(); err != nil {
			a.Log().Error("Error starting monitoring server", slog.String(logging.KeyError, err.Error()))
			a.Log().Warn("Monitoring server will not be available")
		}
	}()
}

func (a *App) setupRoutes() {
	// PathMetrics is the path for metrics.
	a.r.HandleFunc(PathMetrics, promhttp.Handler().ServeHTTP).Methods(http.MethodGet)

	// PathHealth is the path for health check.
	a.r.HandleFunc(PathHealth, middlewareHttp(a.healthCheck(), a)).Methods(http.MethodGet)

	// NotFoundHandler is the handler for 404.
	a.r.NotFoundHandler = request.NotFoundHandler(a.Log())

	// MethodNotAllowedHandler is the handler for 405.
	a.r.MethodNotAllowedHandler = request.MethodNotAllowedHandler(a.Log())
}

func (a *App) generateServer() {
	a.svr = &http.Server{
		Addr:    ":" + config.MonitoringPort,
		Handler: a.r,
	}
}

func (a *App) GetJoinedGuilds() ([]*discordgo.UserGuild, error) {
	guilds, err := a.s.UserGuilds(0, "", "")
	if err != nil {
		return nil, fmt.Errorf("error getting guilds: %w", err)
	}
	return guilds, nil
}

func (a *App) RegisterDiscordHandlers() error {
	// Bot joined guild.
	a.s.AddHandler(guildJoinedHandler(a))

	// Bot left guild.
	a.s.AddHandler(guildLeaveHandler(a))

	// Interaction create handler.
	a.s.AddHandler(interactionHandler(a,
		// Slash Controllers
		map[string]commandController{
			ticketsCmd.Name: ticketsCmdController,
		},
		// Button Controllers, keyed by custom ID or custom-ID prefix.
		map[string]commandProcessor{
			tickets.PanelButtonPrefix: panelButtonHandler,
			tickets.CloseButtonID:     closeTicketHandler,
		}))
	return nil
}

func (a *App) eventListener() {
	for e := range a.eventNotifier {
		switch t := e.(type) {
		case *discordgo.Event:
			if t.Type != "" {
				monitoring.TotalDiscordEvents.WithLabelValues(t.Type).Inc()
			} else {
				// If there is no type, then use the operation name.
				monitoring.TotalDiscordEvents.WithLabelValues(strings.ToUpper(t.Operation.String())).Inc()
			}
		default:
			a.Log().Error("Unknown event type", slog.String("type", fmt.Sprintf("%T", e)))
			monitoring.TotalDiscordEvents.WithLabelValues("UNKNOWN").Inc()
		}
	}
}

func (a *App) registerSlashCommands() error {
	// Get all guilds the bot is in.
	guilds, err := a.GetJoinedGuilds()
	if err != nil {
		return fmt.Errorf("error getting guilds: %w", err)
	}

	// Register the tickets command for each guild, keeping the created IDs
	// for unregistration on shutdown.
	a.commandIDs = make(map[string]string, len(guilds))
	for _, g := range guilds {
		cmd, err := a.Session().ApplicationCommandCreate(config.ApplicationId, g.ID, ticketsCmd)
		if err != nil {
			return fmt.Errorf("error creating tickets command for guild %s: %w", g.ID, err)
		}
		a.commandIDs[g.ID] = cmd.ID
	}
	return nil
}

func (a *App) unregisterSlashCommands() error {
	// Delete the tickets command for each guild it was registered in.
	for guildID, cmdID := range a.commandIDs {
		if err := a.s.ApplicationCommandDelete(config.ApplicationId, guildID, cmdID); err != nil {
			return fmt.Errorf("error deleting tickets command for guild %s: %w", guildID, err)
		}
	}
	return nil
}

func (a *App) Session() *discordgo.Session {
	return a.s
}

func (a *App) Log() *slog.Logger {
	return a.l
}

func (a *App) Panels() tickets.PanelStore {
	return a.panels
}

func (a *App) Engine() *tickets.Engine {
	return a.engine
}

func (a *App) Publisher() *tickets.Publisher {
	return a.publisher
}
