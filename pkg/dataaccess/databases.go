package dataaccess

import (
	"go.mongodb.org/mongo-driver/mongo"
)

const mongoDatabase = "staffmail"

// Database returns the StaffMail database of the client.
func Database(client *mongo.Client) *mongo.Database {
	return client.Database(mongoDatabase)
}
