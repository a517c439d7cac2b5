package domain

import (
	"encoding/json"
	"time"
)

type Kind string

const (
	KindEvent     Kind = "EVENT"
	KindPromotion Kind = "PROMOTION"
)

// ParseKind accepts the canonical names plus the lowercase plural forms used in URLs.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "EVENT", "event", "events":
		return KindEvent, true
	case "PROMOTION", "promotion", "promotions":
		return KindPromotion, true
	}
	return "", false
}

func (k Kind) Valid() bool { return k == KindEvent || k == KindPromotion }

type State string

const (
	StateDraft     State = "DRAFT"
	StateScheduled State = "SCHEDULED"
	StateLive      State = "LIVE"
	StateArchived  State = "ARCHIVED"
)

func (s State) Valid() bool {
	switch s {
	case StateDraft, StateScheduled, StateLive, StateArchived:
		return true
	}
	return false
}

// Asset is a reference to one uploaded image; Position orders multi-page flyers.
type Asset struct {
	Key      string `json:"key"`
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
	Position int    `json:"position"`
}

// ContentItem is an event flyer or promotional popup.
//
// State records administrative intent only. Whether an item is shown is
// decided by the publication engine from ForcePublished and ScheduledGoLiveAt.
type ContentItem struct {
	ID                string          `json:"id"`
	Kind              Kind            `json:"kind"`
	Title             string          `json:"title,omitempty"`
	Assets            []Asset         `json:"assets"`
	ScheduledGoLiveAt *time.Time      `json:"scheduledGoLiveAt,omitempty"`
	ForcePublished    bool            `json:"forcePublished"`
	State             State           `json:"state"`
	DisplayConfig     json.RawMessage `json:"displayConfig,omitempty"`
	Version           int64           `json:"version"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// Upload is one image handed to the content ingestion boundary.
type Upload struct {
	Filename string
	MimeType string
	Data     []byte
}
