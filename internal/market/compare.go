package market

import (
	"time"

	"github.com/jensholdgaard/wowtools/internal/money"
)

// Side is one server's listing in a comparison.
type Side struct {
	Label   string
	Listing Listing
}

// Category is one price block of the comparison, e.g. "NGK Min Buyout".
// Percent is nil when the previous price is zero.
type Category struct {
	Label           string      `json:"label"`
	Current         int64       `json:"current"`
	Previous        int64       `json:"previous"`
	Diff            int64       `json:"diff"`
	Percent         *float64    `json:"percent"`
	Trend           money.Trend `json:"trend"`
	LastUpdated     time.Time   `json:"last_updated"`
	PreviousUpdated time.Time   `json:"previous_updated"`
}

// CrossDiff is the primary minus secondary price of one measure.
type CrossDiff struct {
	Label string      `json:"label"`
	Diff  int64       `json:"diff"`
	Trend money.Trend `json:"trend"`
}

// Series is one chart: a value per scan for each server, labelled with
// the primary server's scan times.
type Series struct {
	Title     string      `json:"title"`
	Labels    []time.Time `json:"labels"`
	Primary   []int64     `json:"primary"`
	Secondary []int64     `json:"secondary"`
}

// Comparison is the side-by-side price view of one item on two servers.
type Comparison struct {
	ItemID         int           `json:"item_id"`
	Name           string        `json:"name"`
	Icon           string        `json:"icon"`
	Tags           []string      `json:"tags"`
	Tooltip        []TooltipLine `json:"tooltip"`
	SellPrice      int64         `json:"sell_price"`
	PrimaryLabel   string        `json:"primary_label"`
	SecondaryLabel string        `json:"secondary_label"`
	Categories     []Category    `json:"categories"`
	Diffs          []CrossDiff   `json:"diffs"`
	Series         []Series      `json:"series"`
}

// Measure names.
const (
	MeasureMinBuyout   = "Min Buyout"
	MeasureMarketValue = "Market Value"
	MeasureQuantity    = "Quantity"
)

// Compare builds the comparison. Item details and both update times come
// from the primary server.
func Compare(primary, secondary Side) *Comparison {
	p, s := primary.Listing, secondary.Listing
	lastUpdated := p.Item.Stats.LastUpdated
	prevUpdated := p.History.PreviousScan()

	category := func(label string, current, previous int64) Category {
		c := Category{
			Label:           label,
			Current:         current,
			Previous:        previous,
			Diff:            current - previous,
			Trend:           money.Direction(current - previous),
			LastUpdated:     lastUpdated,
			PreviousUpdated: prevUpdated,
		}
		if pct, err := money.PercentDelta(current, previous); err == nil {
			c.Percent = &pct
		}
		return c
	}
	cross := func(label string, a, b int64) CrossDiff {
		return CrossDiff{Label: label, Diff: a - b, Trend: money.Direction(a - b)}
	}

	pc, pp := p.Item.Stats.Current, p.Item.Stats.Previous
	sc, sp := s.Item.Stats.Current, s.Item.Stats.Previous

	return &Comparison{
		ItemID:         int(p.Item.ItemID),
		Name:           p.Item.Name,
		Icon:           p.Item.Icon,
		Tags:           p.Item.Tags,
		Tooltip:        p.Item.Tooltip,
		SellPrice:      p.Item.SellPrice,
		PrimaryLabel:   primary.Label,
		SecondaryLabel: secondary.Label,
		Categories: []Category{
			category(primary.Label+" "+MeasureMinBuyout, pc.MinBuyout, pp.MinBuyout),
			category(secondary.Label+" "+MeasureMinBuyout, sc.MinBuyout, sp.MinBuyout),
			category(primary.Label+" "+MeasureMarketValue, pc.MarketValue, pp.MarketValue),
			category(secondary.Label+" "+MeasureMarketValue, sc.MarketValue, sp.MarketValue),
		},
		Diffs: []CrossDiff{
			cross(MeasureMinBuyout, pc.MinBuyout, sc.MinBuyout),
			cross(MeasureMarketValue, pc.MarketValue, sc.MarketValue),
		},
		Series: []Series{
			series(MeasureMinBuyout, p.History, s.History, func(pt PricePoint) int64 { return pt.MinBuyout }),
			series(MeasureMarketValue, p.History, s.History, func(pt PricePoint) int64 { return pt.MarketValue }),
			series(MeasureQuantity, p.History, s.History, func(pt PricePoint) int64 { return pt.Quantity }),
		},
	}
}

func series(title string, primary, secondary PriceHistory, value func(PricePoint) int64) Series {
	s := Series{
		Title:     title,
		Labels:    make([]time.Time, len(primary.Data)),
		Primary:   make([]int64, len(primary.Data)),
		Secondary: make([]int64, len(secondary.Data)),
	}
	for i, pt := range primary.Data {
		s.Labels[i] = pt.ScannedAt
		s.Primary[i] = value(pt)
	}
	for i, pt := range secondary.Data {
		s.Secondary[i] = value(pt)
	}
	return s
}
