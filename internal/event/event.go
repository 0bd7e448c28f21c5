package event

import (
	"encoding/json"
	"time"
)

// Type identifies an event kind.
type Type string

const (
	RosterCreated          Type = "roster.created"
	RosterCharacterDropped Type = "roster.character_dropped"
	RosterPhaseChanged     Type = "roster.phase_changed"
	RosterReset            Type = "roster.reset"
	RosterResized          Type = "roster.resized"

	WatchlistItemAdded   Type = "watchlist.item_added"
	WatchlistItemRemoved Type = "watchlist.item_removed"

	MarketPriceObserved Type = "market.price_observed"

	CharacterRegistered Type = "character.registered"
)

// Event represents a single domain event.
type Event struct {
	ID          string          `json:"id" db:"id"`
	AggregateID string          `json:"aggregate_id" db:"aggregate_id"`
	Type        Type            `json:"type" db:"type"`
	Data        json.RawMessage `json:"data" db:"data"`
	Version     int             `json:"version" db:"version"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// RosterCreatedData is the payload for RosterCreated events.
type RosterCreatedData struct {
	Name      string `json:"name"`
	CreatedBy string `json:"created_by"`
	Size      int    `json:"size"`
}

// CharacterDroppedData is the payload for RosterCharacterDropped events.
// Regions lists every drop region the point fell into.
type CharacterDroppedData struct {
	Name    string   `json:"name"`
	Race    string   `json:"race"`
	Gender  string   `json:"gender"`
	Class   string   `json:"class"`
	Spec    string   `json:"spec"`
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
	Regions []string `json:"regions"`
}

// PhaseChangedData is the payload for RosterPhaseChanged events.
type PhaseChangedData struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// RosterResetData is the payload for RosterReset events.
type RosterResetData struct {
	Phase int `json:"phase"`
}

// RosterResizedData is the payload for RosterResized events.
type RosterResizedData struct {
	Size int `json:"size"`
}

// WatchlistChangeData is the payload for watchlist events.
type WatchlistChangeData struct {
	Owner  string `json:"owner"`
	ItemID int    `json:"item_id"`
}

// PriceObservedData is the payload for MarketPriceObserved events.
type PriceObservedData struct {
	Server      string    `json:"server"`
	ItemID      int       `json:"item_id"`
	MinBuyout   int64     `json:"min_buyout"`
	MarketValue int64     `json:"market_value"`
	Quantity    int64     `json:"quantity"`
	ScannedAt   time.Time `json:"scanned_at"`
}

// CharacterRegisteredData is the payload for CharacterRegistered events.
type CharacterRegisteredData struct {
	Name  string `json:"name"`
	Class string `json:"class"`
	Spec  string `json:"spec"`
}
