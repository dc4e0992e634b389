package models

// LinkClass is how a link target was classified before checking.
type LinkClass string

const (
	LinkExternal     LinkClass = "external"
	LinkAnchor       LinkClass = "anchor"
	LinkPlaceholder  LinkClass = "placeholder"
	LinkHostRelative LinkClass = "host-relative"
	LinkInternal     LinkClass = "internal"
)

// Link is a Markdown [text](target) occurrence.
type Link struct {
	Text   string    `json:"text"`
	Target string    `json:"target"`
	Class  LinkClass `json:"class"`
}
