package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/gorilla/mux"
	"github.com/lfmcord/staffmail/cmd/bot/config"
	"github.com/lfmcord/staffmail/cmd/bot/monitoring"
	"github.com/lfmcord/staffmail/pkg/dataaccess"
	"github.com/lfmcord/staffmail/pkg/logging"
	"github.com/lfmcord/staffmail/pkg/request"
	"github.com/lfmcord/staffmail/pkg/staffmail"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	// PathMetrics is the path for metrics.
	PathMetrics = "/metrics"

	// PathHealth is the path for the health check.
	PathHealth = "/health"
)

const (
	// handlerTimeout bounds the work done for a single Discord event.
	handlerTimeout = 30 * time.Second

	// shutdownTimeout bounds the graceful shutdown.
	shutdownTimeout = 10 * time.Second
)

// IApp is the interface for the application.
type IApp interface {
	// Log returns the logger.
	Log() *slog.Logger

	// Session returns the discord session.
	Session() *discordgo.Session

	// Config returns the configuration.
	Config() *config.Config

	// GuildDal returns the guild data access layer.
	GuildDal() dataaccess.GuildDal

	// Manager returns the StaffMail lifecycle manager.
	Manager() *staffmail.Manager

	// Engine returns the StaffMail relay engine.
	Engine() *staffmail.Engine
}

type App struct {
	// is the logger.
	*slog.Logger

	// cfg is the configuration.
	cfg *config.Config

	// r is the router for the application.
	r *mux.Router

	// svr is the server for the application.
	svr *http.Server

	// s is the discord session.
	s *discordgo.Session

	// mongo is the database client.
	mongo *mongo.Client

	// guilds stores the guild configurations.
	guilds dataaccess.GuildDal

	// tickets stores the open StaffMails.
	tickets *dataaccess.TicketDal

	manager *staffmail.Manager
	engine  *staffmail.Engine

	// dmLimits throttles the direct messages of each user.
	dmLimits *userLimiter

	// createLimits throttles the creation of StaffMails.
	createLimits *userLimiter

	cmdMut sync.Mutex

	// commands are the registered slash commands per guild.
	commands map[string][]*discordgo.ApplicationCommand

	// eventNotifier is the channel for notifying of events.
	eventNotifier chan any
}

// NewApp creates a new instance of App.
func NewApp(
	l *slog.Logger,
	cfg *config.Config,
	r *mux.Router,
	s *discordgo.Session,
	client *mongo.Client,
	guilds dataaccess.GuildDal,
	tickets *dataaccess.TicketDal,
	manager *staffmail.Manager,
	engine *staffmail.Engine,
) *App {
	return &App{
		Logger:       l,
		cfg:          cfg,
		r:            r,
		s:            s,
		mongo:        client,
		guilds:       guilds,
		tickets:      tickets,
		manager:      manager,
		engine:       engine,
		dmLimits:     newUserLimiter(time.Second, 5),
		createLimits: newUserLimiter(time.Minute, 3),
		commands:     make(map[string][]*discordgo.ApplicationCommand),
	}
}

// newSession creates the discord session. It is not connected until the app runs.
func newSession(cfg *config.Config) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.MakeIntent(discordgo.IntentsAll)

	// REST requests are cut off with the direct message delivery so a timed out send does not land later.
	dg.Client = &http.Client{Timeout: cfg.UserDeliveryTimeout}
	return dg, nil
}

func (a *App) Run(ctx context.Context) error {
	// Default the number of guilds to 0.
	monitoring.TotalDiscordGuilds.Set(0)

	if err := a.tickets.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("error creating ticket indexes: %w", err)
	}

	if a.eventNotifier == nil {
		// Create event notifier. It is buffered to prevent blocking.
		a.eventNotifier = make(chan any, 100)
	}
	a.s.SetEventNotifier(a.eventNotifier)

	a.s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		a.Info(fmt.Sprintf("Logged in as %s", r.User.Username))
	})

	a.registerDiscordHandlers()

	// Start event listener.
	go a.eventListener()

	// Open websocket.
	if err := a.s.Open(); err != nil {
		return fmt.Errorf("error opening connection to Discord: %w", err)
	}

	// Register slash commands.
	if err := a.registerSlashCommands(); err != nil {
		return fmt.Errorf("error registering slash commands: %w", err)
	}

	a.Info("Bot is now running.")

	a.setupRoutes()
	a.runServer()

	// Wait for the shutdown signal.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	a.Info("Received shutdown signal")
	return a.ShutdownHook()
}

func (a *App) ShutdownHook() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Reset the total number of guilds to 0.
	monitoring.TotalDiscordGuilds.Set(0)

	var errs []error

	// Unregister slash commands.
	if err := a.unregisterSlashCommands(); err != nil {
		errs = append(errs, fmt.Errorf("error unregistering slash commands: %w", err))
	}

	// Close the connection to Discord.
	if err := a.s.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing connection to Discord: %w", err))
	}

	if a.svr != nil {
		if err := a.svr.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("error shutting down monitoring server: %w", err))
		}
	}

	if err := a.mongo.Disconnect(ctx); err != nil {
		errs = append(errs, fmt.Errorf("error disconnecting from mongo: %w", err))
	}

	return errors.Join(errs...)
}

func (a *App) runServer() {
	a.svr = &http.Server{
		Addr:              ":" + a.cfg.MonitoringPort,
		Handler:           a.r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.Info("Starting monitoring server", slog.String("addr", a.svr.Addr))
		if err := a.svr.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Error("Error starting monitoring server", slog.String(logging.KeyError, err.Error()))
			a.Warn("Monitoring server will not be available")
		}
	}()
}

func (a *App) setupRoutes() {
	a.r.HandleFunc(PathMetrics, promhttp.Handler().ServeHTTP).Methods(http.MethodGet)
	a.r.HandleFunc(PathHealth, middlewareHttp(a, a.healthCheck())).Methods(http.MethodGet)

	a.r.NotFoundHandler = request.NotFoundHandler(a.Logger)
	a.r.MethodNotAllowedHandler = request.MethodNotAllowedHandler(a.Logger)
}

func (a *App) GetJoinedGuilds() ([]*discordgo.UserGuild, error) {
	guilds, err := a.s.UserGuilds(0, "", "")
	if err != nil {
		return nil, fmt.Errorf("error getting guilds: %w", err)
	}
	return guilds, nil
}

func (a *App) registerDiscordHandlers() {
	// Bot joined guild.
	a.s.AddHandler(guildJoinedHandler(a))

	// Bot left guild.
	a.s.AddHandler(guildLeaveHandler(a))

	// Direct messages and staff commands.
	a.s.AddHandler(messageCreateHandler(a))

	// Interaction create handler.
	a.s.AddHandler(interactionHandler(a,
		// Slash Controllers
		map[string]slashController{
			setupCmdName: setupCmdController,
		},
		// Component and modal processors, keyed by custom ID prefix.
		map[string]interactionProcessor{
			categorySelectID:  categorySelected,
			sendButtonPrefix:  sendButtonPressed,
			cancelButtonID:    cancelButtonPressed,
			createModalPrefix: createModalSubmitted,
		}))
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
			a.Error("Unknown event type", slog.String("type", fmt.Sprintf("%T", e)))
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

	for _, g := range guilds {
		if err := a.registerGuildCommands(g.ID); err != nil {
			return err
		}
	}
	return nil
}

// registerGuildCommands registers the slash commands of a guild once.
func (a *App) registerGuildCommands(guildID string) error {
	a.cmdMut.Lock()
	defer a.cmdMut.Unlock()

	if _, ok := a.commands[guildID]; ok {
		return nil
	}

	cmd, err := a.s.ApplicationCommandCreate(a.cfg.ApplicationId, guildID, setupCmd)
	if err != nil {
		return fmt.Errorf("error creating setup command for guild %s: %w", guildID, err)
	}
	a.commands[guildID] = append(a.commands[guildID], cmd)
	return nil
}

func (a *App) unregisterSlashCommands() error {
	a.cmdMut.Lock()
	defer a.cmdMut.Unlock()

	var errs []error
	for guildID, cmds := range a.commands {
		for _, cmd := range cmds {
			if err := a.s.ApplicationCommandDelete(a.cfg.ApplicationId, guildID, cmd.ID); err != nil {
				errs = append(errs, fmt.Errorf("error deleting command %s for guild %s: %w", cmd.Name, guildID, err))
			}
		}
		delete(a.commands, guildID)
	}
	return errors.Join(errs...)
}

func (a *App) Log() *slog.Logger {
	return a.Logger
}

func (a *App) Session() *discordgo.Session {
	return a.s
}

func (a *App) Config() *config.Config {
	return a.cfg
}

func (a *App) GuildDal() dataaccess.GuildDal {
	return a.guilds
}

func (a *App) Manager() *staffmail.Manager {
	return a.manager
}

func (a *App) Engine() *staffmail.Engine {
	return a.engine
}
