package dataaccess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lfmcord/staffmail/pkg/dataaccess/monitoring"
	"github.com/lfmcord/staffmail/pkg/entities"
	"github.com/lfmcord/staffmail/pkg/logging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	guildDalName = "guild_dal"

	guildCollection = "guilds"
)

type GuildDal interface {
	// SaveGuild saves a guild.
	SaveGuild(ctx context.Context, guild *entities.Guild) error

	// GetGuildByID gets a guild by ID. It returns nil if the guild has no configuration.
	GetGuildByID(ctx context.Context, id string) (*entities.Guild, error)

	// StaffMailConfig gets the StaffMail configuration of a guild.
	StaffMailConfig(ctx context.Context, guildID string) (*entities.StaffMailConfig, error)
}

type guildDalImpl struct {
	// l is the logger.
	l *slog.Logger

	// db is the database.
	db *mongo.Database
}

// NewGuildDal creates a new guild data access layer.
func NewGuildDal(l *slog.Logger, db *mongo.Database) GuildDal {
	return &guildDalImpl{
		l:  l.With(slog.String(logging.KeyDal, guildDalName)),
		db: db,
	}
}

func (g *guildDalImpl) SaveGuild(ctx context.Context, guild *entities.Guild) error {
	// Get the guild collection.
	collection := g.db.Collection(guildCollection)

	// Start the prometheus metrics.
	t := monitoring.Observe(guildDalName, "save_guild_config", g.db.Name(), guildCollection)
	defer t.ObserveDuration()

	// Save the guild.
	opts := options.Update().SetUpsert(true)
	_, err := collection.UpdateOne(ctx, bson.M{"id": guild.ID}, bson.M{"$set": guild}, opts)
	if err != nil {
		monitoring.MongoErrors.WithLabelValues(guildDalName, "save_guild_config", g.db.Name(), guildCollection).Inc()
		return fmt.Errorf("error updating guild: %w", err)
	}

	g.l.Debug("Guild saved", slog.String("guild_id", guild.ID))
	return nil
}

// GetGuildByID gets a guild by ID.
func (g *guildDalImpl) GetGuildByID(ctx context.Context, id string) (*entities.Guild, error) {
	// Get the guild collection.
	collection := g.db.Collection(guildCollection)

	// Start the prometheus metrics.
	t := monitoring.Observe(guildDalName, "get_guild_by_id", g.db.Name(), guildCollection)
	defer t.ObserveDuration()

	// Get the guild.
	guild := new(entities.Guild)

	err := collection.FindOne(ctx, bson.M{"id": id}).Decode(guild)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	} else if err != nil {
		monitoring.MongoErrors.WithLabelValues(guildDalName, "get_guild_by_id", g.db.Name(), guildCollection).Inc()
		return nil, fmt.Errorf("error getting guild: %w", err)
	}
	return guild, nil
}

// StaffMailConfig gets the StaffMail configuration of a guild.
func (g *guildDalImpl) StaffMailConfig(ctx context.Context, guildID string) (*entities.StaffMailConfig, error) {
	guild, err := g.GetGuildByID(ctx, guildID)
	if err != nil {
		return nil, err
	} else if guild == nil {
		return nil, nil
	}
	return &guild.StaffMail, nil
}
