package config

import "time"

const (
	// AppName is the name of the application.
	AppName = "staffmail"

	// EnvBotToken is the environment variable for the bot token.
	EnvBotToken = `BOT_TOKEN`

	// EnvApplicationId is the environment variable for the application ID.
	EnvApplicationId = `APPLICATION_ID`

	// EnvMongoUri is the environment variable for the MongoDB URI.
	EnvMongoUri = `MONGO_URI`

	// EnvMonitoringPort is the environment variable for the monitoring port.
	EnvMonitoringPort = `MONITORING_PORT`

	// EnvGuildId is the environment variable for the guild that StaffMails are opened in.
	EnvGuildId = `GUILD_ID`

	// EnvCommandPrefix is the environment variable for the prefix of text commands.
	EnvCommandPrefix = `COMMAND_PREFIX`

	// EnvUserDeliveryTimeout is the environment variable for how long a direct message may take.
	EnvUserDeliveryTimeout = `USER_DELIVERY_TIMEOUT`
)

const (
	defaultMonitoringPort      = "8080"
	defaultCommandPrefix       = ">>"
	defaultUserDeliveryTimeout = 10 * time.Second
)

// Config is the configuration of the bot.
type Config struct {
	// BotToken is the token for the bot.
	BotToken string

	// ApplicationId is the ID of the application.
	ApplicationId string

	// MongoUri is the URI for the MongoDB database.
	MongoUri string

	// MonitoringPort is the port for the monitoring server.
	MonitoringPort string

	// GuildId is the guild that direct message StaffMails belong to.
	GuildId string

	// CommandPrefix is the prefix of text commands.
	CommandPrefix string

	// UserDeliveryTimeout bounds the delivery of a direct message.
	UserDeliveryTimeout time.Duration
}
