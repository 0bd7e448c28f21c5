// Package market reads auction-house prices from the NexusHub API and
// compares them between two servers.
package market

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ItemID is an item identifier. The API writes it as a number on some
// endpoints and as a string on others.
type ItemID int

func (id *ItemID) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("item id %q: %w", data, err)
	}
	*id = ItemID(n)
	return nil
}

// GameItem is the item record of one server.
type GameItem struct {
	Server        string        `json:"server"`
	ItemID        ItemID        `json:"itemId"`
	Name          string        `json:"name"`
	UniqueName    string        `json:"uniqueName"`
	Icon          string        `json:"icon"`
	Tags          []string      `json:"tags"`
	RequiredLevel int           `json:"requiredLevel"`
	ItemLevel     int           `json:"itemLevel"`
	SellPrice     int64         `json:"sellPrice"`
	VendorPrice   *int64        `json:"vendorPrice"`
	Tooltip       []TooltipLine `json:"tooltip"`
	ItemLink      string        `json:"itemLink"`
	Stats         ItemStats     `json:"stats"`
}

type TooltipLine struct {
	Label  string `json:"label"`
	Format string `json:"format,omitempty"`
}

// ItemStats holds the latest two auction snapshots.
type ItemStats struct {
	LastUpdated time.Time       `json:"lastUpdated"`
	Current     AuctionSnapshot `json:"current"`
	Previous    AuctionSnapshot `json:"previous"`
}

type AuctionSnapshot struct {
	MarketValue     int64 `json:"marketValue"`
	HistoricalValue int64 `json:"historicalValue"`
	MinBuyout       int64 `json:"minBuyout"`
	NumAuctions     int64 `json:"numAuctions"`
	Quantity        int64 `json:"quantity"`
}

// PriceHistory is the scan history of an item on one server.
type PriceHistory struct {
	ItemID     ItemID       `json:"itemId"`
	Name       string       `json:"name"`
	UniqueName string       `json:"uniqueName"`
	Slug       string       `json:"slug"`
	Timerange  int          `json:"timerange"`
	Data       []PricePoint `json:"data"`
}

type PricePoint struct {
	MarketValue int64     `json:"marketValue"`
	MinBuyout   int64     `json:"minBuyout"`
	Quantity    int64     `json:"quantity"`
	ScannedAt   time.Time `json:"scannedAt"`
}

// Last returns the most recent point and whether there is one.
func (h PriceHistory) Last() (PricePoint, bool) {
	if len(h.Data) == 0 {
		return PricePoint{}, false
	}
	return h.Data[len(h.Data)-1], true
}

// PreviousScan returns the time of the second to last point, or the zero time.
func (h PriceHistory) PreviousScan() time.Time {
	if len(h.Data) < 2 {
		return time.Time{}
	}
	return h.Data[len(h.Data)-2].ScannedAt
}

// SearchItem is one search suggestion.
type SearchItem struct {
	ItemID     ItemID `json:"itemId"`
	Name       string `json:"name"`
	UniqueName string `json:"uniqueName"`
	ImgURL     string `json:"imgUrl"`
}

// Listing is an item merged with its price history, the row of the price grid.
type Listing struct {
	Item         GameItem     `json:"item"`
	History      PriceHistory `json:"history"`
	CurrentPrice int64        `json:"current_price"`
	MarketPrice  int64        `json:"market_price"`
}

// NewListing merges an item and its history. The grid prices come from
// the last price point and are zero without one.
func NewListing(item GameItem, history PriceHistory) Listing {
	l := Listing{Item: item, History: history}
	if p, ok := history.Last(); ok {
		l.CurrentPrice = p.MinBuyout
		l.MarketPrice = p.MarketValue
	}
	return l
}

// dedupeSearch keeps one entry per item id, at the position of its first
// occurrence and with the data of its last.
func dedupeSearch(items []SearchItem) []SearchItem {
	index := make(map[ItemID]int, len(items))
	out := make([]SearchItem, 0, len(items))
	for _, it := range items {
		if i, ok := index[it.ItemID]; ok {
			out[i] = it
			continue
		}
		index[it.ItemID] = len(out)
		out = append(out, it)
	}
	return out
}

func decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
