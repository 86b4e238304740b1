package dataaccess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lfmcord/staffmail/pkg/custom"
	"github.com/lfmcord/staffmail/pkg/dataaccess/monitoring"
	"github.com/lfmcord/staffmail/pkg/entities"
	"github.com/lfmcord/staffmail/pkg/logging"
	"github.com/lfmcord/staffmail/pkg/staffmail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ticketDalName = "ticket_dal"

	ticketCollection = "staffmail_tickets"
)

// TicketDal stores open StaffMails in MongoDB.
type TicketDal struct {
	// l is the logger.
	l *slog.Logger

	// db is the database.
	db *mongo.Database
}

// NewTicketDal creates a new ticket data access layer.
func NewTicketDal(l *slog.Logger, db *mongo.Database) *TicketDal {
	return &TicketDal{
		l:  l.With(slog.String(logging.KeyDal, ticketDalName)),
		db: db,
	}
}

func (d *TicketDal) collection() *mongo.Collection {
	return d.db.Collection(ticketCollection)
}

func (d *TicketDal) observe(query string) func() {
	t := monitoring.Observe(ticketDalName, query, d.db.Name(), ticketCollection)
	return func() { t.ObserveDuration() }
}

// storeError marks a failed query as an unavailable store.
func (d *TicketDal) storeError(query string, err error) error {
	monitoring.MongoErrors.WithLabelValues(ticketDalName, query, d.db.Name(), ticketCollection).Inc()
	return fmt.Errorf("%w: %s: %w", staffmail.ErrStoreUnavailable, query, err)
}

// EnsureIndexes creates the indexes that the lookups rely on. A staff channel and a user can only have one open
// StaffMail at a time.
func (d *TicketDal) EnsureIndexes(ctx context.Context) error {
	defer d.observe("ensure_indexes")()

	_, err := d.collection().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "staff_channel_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "last_message_id", Value: 1}},
		},
	})
	if err != nil {
		return d.storeError("ensure_indexes", err)
	}
	return nil
}

// Create saves a new ticket.
func (d *TicketDal) Create(ctx context.Context, ticket *entities.Ticket) (*entities.Ticket, error) {
	defer d.observe("create")()

	if _, err := d.collection().InsertOne(ctx, ticket); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: staff channel %s or user %s", staffmail.ErrDuplicateTicket, ticket.StaffChannelID, ticket.UserID)
		}
		return nil, d.storeError("create", err)
	}

	d.l.Debug("Ticket saved", slog.String(logging.KeyTicket, ticket.ID))
	return ticket, nil
}

// GetByStaffChannelID gets the ticket of a staff channel.
func (d *TicketDal) GetByStaffChannelID(ctx context.Context, channelID string) (*entities.Ticket, error) {
	defer d.observe("get_by_staff_channel_id")()
	return d.findOne(ctx, "get_by_staff_channel_id", bson.M{"staff_channel_id": channelID})
}

// GetByLastMessageID gets the ticket whose latest user-side message has the given ID.
func (d *TicketDal) GetByLastMessageID(ctx context.Context, messageID string) (*entities.Ticket, error) {
	if messageID == "" {
		return nil, nil
	}

	defer d.observe("get_by_last_message_id")()
	return d.findOne(ctx, "get_by_last_message_id", bson.M{"last_message_id": messageID})
}

// GetByUserID gets the open ticket of a user.
func (d *TicketDal) GetByUserID(ctx context.Context, userID string) (*entities.Ticket, error) {
	defer d.observe("get_by_user_id")()
	return d.findOne(ctx, "get_by_user_id", bson.M{"user_id": userID})
}

func (d *TicketDal) findOne(ctx context.Context, query string, filter bson.M) (*entities.Ticket, error) {
	ticket := new(entities.Ticket)
	err := d.collection().FindOne(ctx, filter).Decode(ticket)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	} else if err != nil {
		return nil, d.storeError(query, err)
	}
	return ticket, nil
}

// UpdatePointer moves the latest message of a ticket.
func (d *TicketDal) UpdatePointer(ctx context.Context, ticketID string, messageID string, at time.Time) error {
	defer d.observe("update_pointer")()

	res, err := d.collection().UpdateOne(ctx, bson.M{"id": ticketID}, bson.M{
		"$set": bson.M{
			"last_message_id": messageID,
			"last_message_at": custom.Datetime(at),
		},
	})
	if err != nil {
		return d.storeError("update_pointer", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", staffmail.ErrNotFound, ticketID)
	}
	return nil
}

// Delete removes a ticket and returns it.
func (d *TicketDal) Delete(ctx context.Context, ticketID string) (*entities.Ticket, error) {
	defer d.observe("delete")()

	ticket := new(entities.Ticket)
	err := d.collection().FindOneAndDelete(ctx, bson.M{"id": ticketID}).Decode(ticket)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	} else if err != nil {
		return nil, d.storeError("delete", err)
	}

	d.l.Debug("Ticket deleted", slog.String(logging.KeyTicket, ticketID))
	return ticket, nil
}
