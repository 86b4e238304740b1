package entities

import "fmt"

// Category is the type of a ticket. It is used for labelling and routing only.
type Category string

const (
	CategoryReport           Category = "report"
	CategoryUrgentReport     Category = "urgentreport"
	CategoryInServerReport   Category = "inserverreport"
	CategoryCrownsReport     Category = "crowns-report"
	CategoryCrownsBanInquiry Category = "crowns-baninquiry"
	CategoryCrownsFalseCrown Category = "crowns-falsecrown"
	CategoryCrownsOther      Category = "crowns-other"
	CategoryLastfm           Category = "lastfm"
	CategoryServer           Category = "server"
	CategoryOther            Category = "other"
	CategoryStaff            Category = "staff"
)

// CategoryTemplate is how a category is presented.
type CategoryTemplate struct {
	// Title is the human-readable name of the category.
	Title string

	// Emoji is shown in front of the title in the creation menu.
	Emoji string

	// Description is shown in the creation menu.
	Description string

	// AllowAnonymous is whether users may open a ticket of this category anonymously.
	AllowAnonymous bool

	// UserSelectable is whether users can pick the category themselves. Staff-opened tickets are not.
	UserSelectable bool
}

var categoryTemplates = map[Category]CategoryTemplate{
	CategoryReport: {
		Title:          "Report",
		Emoji:          "⚠️",
		Description:    "Report a member or a message",
		AllowAnonymous: true,
		UserSelectable: true,
	},
	CategoryUrgentReport: {
		Title:          "Urgent Report",
		Emoji:          "\U0001F6A8",
		Description:    "Something needs staff attention right now",
		AllowAnonymous: true,
		UserSelectable: true,
	},
	CategoryInServerReport: {
		Title:          "In-Server Report",
		Emoji:          "\U0001F6A9",
		Description:    "Report a message you saw in the server",
		AllowAnonymous: true,
	},
	CategoryCrownsReport: {
		Title:          "Crowns Game Report",
		Emoji:          "\U0001F451",
		Description:    "Report someone cheating in the crowns game",
		UserSelectable: true,
	},
	CategoryCrownsBanInquiry: {
		Title:          "Crowns Game Ban",
		Emoji:          "\U0001F451",
		Description:    "Ask about a crowns game ban",
		UserSelectable: true,
	},
	CategoryCrownsFalseCrown: {
		Title:          "Crowns Game - False Crown",
		Emoji:          "\U0001F451",
		Description:    "A crown was given out wrongly",
		UserSelectable: true,
	},
	CategoryCrownsOther: {
		Title:          "Crowns Game - Other",
		Emoji:          "\U0001F451",
		Description:    "Anything else about the crowns game",
		UserSelectable: true,
	},
	CategoryLastfm: {
		Title:          "Last.fm Question",
		Emoji:          "\U0001F3B5",
		Description:    "Questions about your Last.fm account",
		UserSelectable: true,
	},
	CategoryServer: {
		Title:          "Question/Suggestion",
		Emoji:          "❔",
		Description:    "Questions or suggestions about the server",
		UserSelectable: true,
	},
	CategoryOther: {
		Title:          "Other",
		Emoji:          "\U0001F0CF",
		Description:    "Anything else",
		AllowAnonymous: true,
		UserSelectable: true,
	},
	CategoryStaff: {
		Title: "Message from Staff",
		Emoji: "\U0001F4EB",
	},
}

// categoryOrder is the order categories are offered in.
var categoryOrder = []Category{
	CategoryReport,
	CategoryUrgentReport,
	CategoryCrownsReport,
	CategoryCrownsBanInquiry,
	CategoryCrownsFalseCrown,
	CategoryCrownsOther,
	CategoryLastfm,
	CategoryServer,
	CategoryOther,
}

// ParseCategory parses a category, rejecting unknown values.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Valid reports whether the category is known.
func (c Category) Valid() bool {
	_, ok := categoryTemplates[c]
	return ok
}

// Template returns the presentation of the category. Unknown categories get a generic template.
func (c Category) Template() CategoryTemplate {
	if tmpl, ok := categoryTemplates[c]; ok {
		return tmpl
	}
	return CategoryTemplate{Title: "Unknown Category", Emoji: "❓"}
}

// Title returns the human-readable name of the category.
func (c Category) Title() string {
	return c.Template().Title
}

// SelectableCategories returns the categories users may open tickets in, in menu order.
func SelectableCategories() []Category {
	got := make([]Category, 0, len(categoryOrder))
	for _, c := range categoryOrder {
		if c.Template().UserSelectable {
			got = append(got, c)
		}
	}
	return got
}
