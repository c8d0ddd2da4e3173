package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/gorilla/mux"
	"github.com/lupine-bot/lupine/cmd/bot/monitoring"
	"github.com/lupine-bot/lupine/pkg/logging"
	"github.com/lupine-bot/lupine/pkg/request"
	"github.com/lupine-bot/lupine/pkg/tickets"
	"github.com/prometheus/client_golang/prometheus"
	"log/slog"
)

// commandController resolves a slash command interaction to its processor.
// It performs the command-level permission gate.
type commandController func(a IApp, i *discordgo.InteractionCreate) (commandProcessor, error)

// commandProcessor processes a single interaction.
type commandProcessor func(a IApp, i *discordgo.InteractionCreate) error

type Controller func(w http.ResponseWriter, r *http.Request)

func middlewareHttp(handler Controller, a IApp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC()
		cw := request.NewClientWriter(w)

		// Recover from any panics that occur in the handler.
		defer func() {
			if rec := recover(); rec != nil {
				a.Log().Error("Panic in handler",
					slog.String(logging.KeyError, fmt.Sprintf("%v", rec)),
					slog.String("stack", string(debug.Stack())),
				)
				cw.WriteHeader(http.StatusInternalServerError)
				if err := json.NewEncoder(cw).Encode(request.NewMessage(request.ErrInternalServer.Error())); err != nil {
					a.Log().Error("Error encoding response", slog.String(logging.KeyError, err.Error()))
				}
			}
		}()

		var path string
		route := mux.CurrentRoute(r)
		if route != nil { // The route may be nil if the request is not routed.
			var err error
			path, err = route.GetPathTemplate()
			if err != nil {
				// An error here is only returned if the route does not define a path.
				a.Log().Error("Error getting path template", slog.String(logging.KeyError, err.Error()))
				path = r.URL.Path
			}
		} else {
			path = r.URL.Path
		}

		defer func() {
			// Run after the request has been handled, as the status code is
			// not available until then.
			monitoring.HttpTotalRequests.WithLabelValues(path, r.Method, fmt.Sprintf("%d", cw.StatusCode())).Inc()
			monitoring.HttpRequestDuration.WithLabelValues(path, r.Method, fmt.Sprintf("%d", cw.StatusCode())).Observe(time.Since(now).Seconds())
		}()

		handler(cw, r)
	}
}

// interactionHandler routes interactions to their controllers: slash
// commands by name, message components by custom ID or custom-ID prefix
// (the part before the first ':'). Events arrive concurrently; everything
// downstream must be safe for concurrent use.
func interactionHandler(a IApp, slashControllers map[string]commandController, buttonControllers map[string]commandProcessor) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			handleSlashCommand(a, i, slashControllers)
		case discordgo.InteractionMessageComponent:
			handleComponent(a, i, buttonControllers)
		}
	}
}

func handleSlashCommand(a IApp, i *discordgo.InteractionCreate, controllers map[string]commandController) {
	name := i.ApplicationCommandData().Name
	a.Log().Debug("Handling interaction " + name)

	t := prometheus.NewTimer(monitoring.DiscordCommandDuration.WithLabelValues(name))
	defer t.ObserveDuration()

	controller, ok := controllers[name]
	if !ok {
		a.Log().Error("No controller found for command", slog.String(logging.KeyCommand, name))
		respondInteractionError(a, i, nil)
		return
	}

	processor, err := controller(a, i)
	if err != nil {
		a.Log().Error(fmt.Sprintf("Error getting processor for command %s", name),
			slog.String(logging.KeyError, err.Error()))
		respondInteractionError(a, i, err)
		return
	} else if processor == nil {
		// The controller already responded (permission gate).
		return
	}

	if err := processor(a, i); err != nil {
		a.Log().Error(fmt.Sprintf("Error processing command %s", name),
			slog.String(logging.KeyError, err.Error()))
		respondInteractionError(a, i, err)
	}
}

func handleComponent(a IApp, i *discordgo.InteractionCreate, controllers map[string]commandProcessor) {
	id := i.MessageComponentData().CustomID
	a.Log().Debug("Handling component " + id)

	processor, ok := controllers[id]
	if !ok {
		if prefix, _, found := strings.Cut(id, ":"); found {
			processor, ok = controllers[prefix]
		}
	}
	if !ok {
		a.Log().Error("No controller found for component", slog.String("custom_id", id))
		return
	}

	if err := processor(a, i); err != nil {
		a.Log().Error(fmt.Sprintf("Error processing component %s", id),
			slog.String(logging.KeyError, err.Error()))
		respondInteractionError(a, i, err)
	}
}

// respondInteractionError reports a failure to the interacting user. The
// text comes from the error taxonomy; raw transport errors never reach the
// user.
func respondInteractionError(a IApp, i *discordgo.InteractionCreate, err error) {
	if respondErr := respondEphemeral(a, i, tickets.UserMessage(err)); respondErr != nil {
		a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, respondErr.Error()))
	}
}
