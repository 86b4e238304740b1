package staffmail

import "github.com/lfmcord/staffmail/pkg/entities"

// BannerKind is the template a banner is rendered with.
type BannerKind int

const (
	// BannerStaffNew announces a new ticket in its staff channel.
	BannerStaffNew BannerKind = iota

	// BannerStaffIncoming is a message from the user, shown to staff.
	BannerStaffIncoming

	// BannerStaffOutgoing confirms to staff that a reply was sent.
	BannerStaffOutgoing

	// BannerStaffNotice tells staff about a problem with the ticket.
	BannerStaffNotice

	// BannerUserOpened tells the user a ticket was opened.
	BannerUserOpened

	// BannerUserIncoming is a reply from staff, shown to the user.
	BannerUserIncoming

	// BannerUserOutgoing confirms to the user that their message was sent.
	BannerUserOutgoing

	// BannerUserClosed tells the user the ticket was closed.
	BannerUserClosed

	// BannerUserGuidance tells the user how to talk to staff.
	BannerUserGuidance
)

// Guidance is the advice given to a user whose message could not be relayed.
type Guidance int

const (
	// GuidanceNone means no advice.
	GuidanceNone Guidance = iota

	// GuidanceNoReference is for direct messages that are not replies.
	GuidanceNoReference

	// GuidanceReplyToPinned is for replies to anything but the latest message.
	GuidanceReplyToPinned

	// GuidanceStaffUnavailable is for replies that could not reach the staff channel.
	GuidanceStaffUnavailable
)

// Notice is a problem reported to staff.
type Notice int

const (
	// NoticeNone means no notice.
	NoticeNone Notice = iota

	// NoticeUserUnreachable means the user could not be sent a message.
	NoticeUserUnreachable

	// NoticeCloseNotDelivered means the closing message did not reach the user.
	NoticeCloseNotDelivered
)

// Banner carries the semantic fields of a message. A Renderer turns it into something a surface can send.
type Banner struct {
	Kind BannerKind

	// Sender and Recipient are already disclosed; renderers show them as given.
	Sender    Identity
	Recipient Identity

	// CreatedBy is the staff member who opened the ticket, or the user.
	CreatedBy Identity

	Category  entities.Category
	Mode      entities.Mode
	Summary   string
	Body      string
	Reason    string
	Guidance  Guidance
	Notice    Notice
	Reference *MessageRef

	// OpenedByStaff is whether staff opened the ticket.
	OpenedByStaff bool

	Attachments []Attachment
}

// Rendered is a message produced by a Renderer for a surface. The core never looks inside it.
type Rendered any

// Renderer renders banners.
type Renderer interface {
	Render(b Banner) Rendered
}
