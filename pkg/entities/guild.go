package entities

// Guild is a configuration for a guild.
type Guild struct {
	// ID is the ID of the guild.
	ID string `json:"id" bson:"id"`

	// StaffMail is the StaffMail configuration.
	StaffMail StaffMailConfig `json:"staff_mail" bson:"staff_mail"`
}

// StaffMailConfig is the StaffMail configuration of a guild.
type StaffMailConfig struct {
	// Enabled is whether StaffMail is enabled.
	Enabled bool `json:"enabled" bson:"enabled"`

	// CategoryID is the ID of the channel category that staff channels are created in.
	CategoryID string `json:"category_id" bson:"category_id"`

	// RoleID is the ID of the role that handles StaffMails.
	RoleID string `json:"role_id" bson:"role_id"`

	// LogChannelID is the ID of the channel that opened and closed StaffMails are logged to.
	LogChannelID string `json:"log_channel_id" bson:"log_channel_id"`

	// KeepClosedChannels is whether staff channels are left in place when a StaffMail is closed.
	KeepClosedChannels bool `json:"keep_closed_channels" bson:"keep_closed_channels"`
}
