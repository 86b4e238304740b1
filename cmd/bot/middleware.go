package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/gorilla/mux"
	"github.com/lfmcord/staffmail/cmd/bot/monitoring"
	"github.com/lfmcord/staffmail/pkg/logging"
	"github.com/lfmcord/staffmail/pkg/request"
)

// slashController selects the processor of a slash command.
type slashController func(a IApp, i *discordgo.InteractionCreate) (slashProcessor, error)

// slashProcessor is the processor for slash commands.
type slashProcessor func(a IApp, i *discordgo.InteractionCreate) error

// interactionProcessor is the processor for message components and modals.
type interactionProcessor func(a IApp, i *discordgo.InteractionCreate) error

type Controller func(w http.ResponseWriter, r *http.Request)

func middlewareHttp(a IApp, handler Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC()
		cw := request.NewClientWriter(w)

		// Recover from any panics that occur in the handler.
		defer func() {
			if rec := recover(); rec != nil {
				a.Log().Error("Panic in handler",
					slog.String(logging.KeyError, fmt.Sprint(rec)),
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
			// The status code is only known once the request has been handled.
			code := strconv.Itoa(cw.StatusCode())
			monitoring.HttpTotalRequests.WithLabelValues(path, r.Method, code).Inc()
			monitoring.HttpRequestDuration.WithLabelValues(path, r.Method, code).Observe(time.Since(now).Seconds())
		}()

		handler(cw, r)
	}
}

// recoverDiscord logs a panic in a Discord handler instead of crashing the bot.
func recoverDiscord(a IApp, handler string) {
	if rec := recover(); rec != nil {
		a.Log().Error("Panic in discord handler",
			slog.String("handler", handler),
			slog.String(logging.KeyError, fmt.Sprint(rec)),
			slog.String("stack", string(debug.Stack())),
		)
	}
}

// interactionHandler dispatches slash commands by name and components and modals by custom ID prefix.
func interactionHandler(a IApp, slash map[string]slashController, processors map[string]interactionProcessor) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		defer recoverDiscord(a, "interaction")

		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			handleSlashCommand(a, i, slash)
		case discordgo.InteractionMessageComponent:
			handleProcessor(a, i, i.MessageComponentData().CustomID, processors)
		case discordgo.InteractionModalSubmit:
			handleProcessor(a, i, i.ModalSubmitData().CustomID, processors)
		}
	}
}

func handleSlashCommand(a IApp, i *discordgo.InteractionCreate, controllers map[string]slashController) {
	name := i.ApplicationCommandData().Name
	a.Log().Debug("Handling interaction " + name)

	controller, ok := controllers[name]
	if !ok {
		commandDone(a, i, name, fmt.Errorf("no controller found for command %s", name))
		return
	}

	processor, err := controller(a, i)
	if err != nil {
		commandDone(a, i, name, fmt.Errorf("error getting processor: %w", err))
		return
	} else if processor == nil {
		// The controller answered the interaction itself.
		monitoring.TotalCommands.WithLabelValues(name, "rejected").Inc()
		return
	}

	commandDone(a, i, name, processor(a, i))
}

func handleProcessor(a IApp, i *discordgo.InteractionCreate, customID string, processors map[string]interactionProcessor) {
	prefix := customIDPrefix(customID)

	processor, ok := processors[prefix]
	if !ok {
		a.Log().Warn("No processor found for interaction", slog.String("custom_id", customID))
		return
	}

	commandDone(a, i, prefix, processor(a, i))
}

// commandDone records the outcome of an interaction and tells the user if it failed.
func commandDone(a IApp, i *discordgo.InteractionCreate, name string, err error) {
	if err == nil {
		monitoring.TotalCommands.WithLabelValues(name, "ok").Inc()
		return
	}

	monitoring.TotalCommands.WithLabelValues(name, "error").Inc()
	a.Log().Error(fmt.Sprintf("Error processing command %s", name), slog.String(logging.KeyError, err.Error()))

	var answered answeredError
	if errors.As(err, &answered) {
		return
	}

	if err := respondSlashError(a, i); err != nil {
		a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
	}
}
