package messages

const (
	// ErrUserErrorProcessing is shown when a command failed for a reason the user cannot fix.
	ErrUserErrorProcessing = "There was an error processing your request. Please try again later."

	// ErrNotAdministrator is shown when a setup command is used without administrator permissions.
	ErrNotAdministrator = "You must be an administrator to use this command."

	// ErrNotStaff is shown when a staff command is used without the staff role.
	ErrNotStaff = "You need the StaffMail role to use this command."

	// ErrStaffMailDisabled is shown when StaffMail is not set up for the server.
	ErrStaffMailDisabled = "StaffMail is not available at the moment. Please contact a staff member directly."

	// ErrAlreadyOpen is shown when a user tries to open a second StaffMail.
	ErrAlreadyOpen = "You already have an open StaffMail. Please reply to the latest message in it instead, you can find it in your pins."

	// ErrContactAlreadyOpen is shown to staff when the user they want to contact already has an open StaffMail.
	ErrContactAlreadyOpen = "This user already has an open StaffMail: <#%s>"

	// ErrSlowDown is shown when a user sends too many messages too quickly.
	ErrSlowDown = "You are sending messages too quickly. Please wait a moment and try again."

	// ErrNotStaffMailChannel is shown when a staff command is used outside of an open StaffMail.
	ErrNotStaffMailChannel = "This channel is not an open StaffMail."

	// ErrUserUnreachable is shown to staff when the user cannot receive direct messages.
	ErrUserUnreachable = "I cannot send direct messages to this user. They may have blocked me or disabled direct messages from server members."
)

const (
	// GuidanceNoReference is sent for direct messages that are not replies. It takes the command prefix.
	GuidanceNoReference = "It looks like you are trying to chat with me.\n" +
		"- If you want to reply to an existing StaffMail, please check your pinned messages for instructions.\n" +
		"- If you do not have any open StaffMails, you can create a new one with `%sstaffmail`!"

	// GuidanceReplyToPinned is sent for replies to anything but the latest message of a StaffMail.
	GuidanceReplyToPinned = "In order to send a reply or follow-up message in a StaffMail, please always reply to the latest " +
		"message you sent or received! Check the pins in this channel to find it."

	// GuidanceStaffUnavailable is sent when the staff channel of a StaffMail is gone.
	GuidanceStaffUnavailable = "Your message could not be delivered to staff. Please try again later or open a new StaffMail."
)

const (
	// OpenedByUser is the opening text of a StaffMail the user opened.
	OpenedByUser = "Thank you for using StaffMail! To make sure staff can see your request timely, please open a new " +
		"StaffMail for matters that aren't directly related to this one."

	// OpenedByStaff is the opening text of a StaffMail staff opened.
	OpenedByStaff = "The staff team has a concern that they want to discuss with you. Please get back to them after " +
		"you've read the messages!"

	// HowToReply is shown on every message that can be replied to.
	HowToReply = "**How to reply:** always reply to the last message you sent or received. It is pinned in this channel."

	// Closed is the text of the closing message. It takes the title of the StaffMail.
	Closed = "Thank you for using StaffMail! This StaffMail has been closed:\n\n**%s**\n\n" +
		"Please open another StaffMail if you feel that this closing was not correct."

	// StaffCommands lists the staff commands of a StaffMail channel. It takes the command prefix three times.
	StaffCommands = "`%sreply [message]` to reply to the user\n" +
		"`%sclose [reason]` to close the StaffMail with an optional reason sent to the user\n" +
		"`%ssilentclose [reason]` to close the StaffMail without notifying the user"

	// NoticeUserUnreachable is posted to staff when a reply could not be delivered.
	NoticeUserUnreachable = "Your message could not be delivered: the user cannot be reached. The StaffMail is unchanged."

	// NoticeCloseNotDelivered is posted to staff when the user was not told about the closing.
	NoticeCloseNotDelivered = "The StaffMail is closed, but the user could not be told. This channel is kept so you can " +
		"follow up another way."
)

const (
	// CreatePrompt asks the user what they need help with.
	CreatePrompt = "Hello! Looks like you are trying to send a message to the staff team.\n\n" +
		"**Please select below what you need help with.**"

	// CreateCancelled is shown when the user cancels the creation of a StaffMail.
	CreateCancelled = "No StaffMail was sent."

	// CreateDone is shown once a StaffMail has been opened.
	CreateDone = "Your StaffMail has been sent. Staff will get back to you here."

	// ContactDone is shown to staff once a staff-opened StaffMail has been created.
	ContactDone = "StaffMail opened: <#%s>"

	// SetupEnabled is shown when StaffMail has been enabled.
	SetupEnabled = "StaffMail has been enabled. New StaffMails will be created in <#%s>."

	// SetupDisabled is shown when StaffMail has been disabled.
	SetupDisabled = "StaffMail has been disabled."

	// CreateChooseMode asks how the StaffMail should be sent. It takes the category title.
	CreateChooseMode = "**%s**\n\nPlease choose how you want to send your StaffMail. You will be asked for your message next."

	// ClosedInChannel is posted to a staff channel that is kept after its StaffMail was closed.
	ClosedInChannel = "This StaffMail has been closed."
)

const (
	// UsageReply shows how to use the reply command. It takes the command prefix.
	UsageReply = "Usage: `%sreply [message]`"

	// UsageContact shows how to use the contact command. It takes the command prefix.
	UsageContact = "Usage: `%scontact @user [message]`"

	// ContactSummary is the summary of StaffMails opened by staff.
	ContactSummary = "Contacted by staff"
)
