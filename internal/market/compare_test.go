package market_test

import (
	"testing"
	"time"

	"github.com/jensholdgaard/wowtools/internal/market"
	"github.com/jensholdgaard/wowtools/internal/money"
)

func side(label string, cur, prev market.AuctionSnapshot, points ...market.PricePoint) market.Side {
	item := market.GameItem{ItemID: 2589, Name: "Linen Cloth", Stats: market.ItemStats{
		LastUpdated: time.Date(2022, 3, 20, 12, 0, 0, 0, time.UTC),
		Current:     cur,
		Previous:    prev,
	}}
	return market.Side{Label: label, Listing: market.NewListing(item, market.PriceHistory{Data: points})}
}

func TestCompare(t *testing.T) {
	t0 := time.Date(2022, 3, 20, 10, 0, 0, 0, time.UTC)
	primary := side("NGK",
		market.AuctionSnapshot{MinBuyout: 150, MarketValue: 200},
		market.AuctionSnapshot{MinBuyout: 100, MarketValue: 0},
		market.PricePoint{MinBuyout: 100, MarketValue: 180, Quantity: 5, ScannedAt: t0},
		market.PricePoint{MinBuyout: 150, MarketValue: 200, Quantity: 7, ScannedAt: t0.Add(time.Hour)},
	)
	secondary := side("PWV",
		market.AuctionSnapshot{MinBuyout: 160, MarketValue: 200},
		market.AuctionSnapshot{MinBuyout: 200, MarketValue: 250},
		market.PricePoint{MinBuyout: 160, MarketValue: 200, Quantity: 3, ScannedAt: t0},
	)

	c := market.Compare(primary, secondary)

	if c.ItemID != 2589 || c.PrimaryLabel != "NGK" || c.SecondaryLabel != "PWV" {
		t.Errorf("header = %+v", c)
	}

	wantCats := []struct {
		label   string
		diff    int64
		percent *float64
		trend   money.Trend
	}{
		{"NGK Min Buyout", 50, ptr(50.0), money.Up},
		{"PWV Min Buyout", -40, ptr(-20.0), money.Down},
		{"NGK Market Value", 200, nil, money.Up},
		{"PWV Market Value", -50, ptr(-20.0), money.Down},
	}
	if len(c.Categories) != len(wantCats) {
		t.Fatalf("got %d categories", len(c.Categories))
	}
	for i, w := range wantCats {
		got := c.Categories[i]
		if got.Label != w.label || got.Diff != w.diff || got.Trend != w.trend {
			t.Errorf("category %d = %+v, want %s diff %d %s", i, got, w.label, w.diff, w.trend)
		}
		switch {
		case w.percent == nil && got.Percent != nil:
			t.Errorf("%s percent = %v, want nil", w.label, *got.Percent)
		case w.percent != nil && (got.Percent == nil || *got.Percent != *w.percent):
			t.Errorf("%s percent = %v, want %v", w.label, got.Percent, *w.percent)
		}
		if !got.PreviousUpdated.Equal(t0) {
			t.Errorf("%s previous updated = %s, want the primary's second to last scan", w.label, got.PreviousUpdated)
		}
	}

	if c.Diffs[0].Diff != -10 || c.Diffs[0].Trend != money.Down {
		t.Errorf("min buyout cross diff = %+v", c.Diffs[0])
	}
	if c.Diffs[1].Diff != 0 || c.Diffs[1].Trend != money.Flat {
		t.Errorf("market value cross diff = %+v", c.Diffs[1])
	}

	if len(c.Series) != 3 {
		t.Fatalf("got %d series, want 3", len(c.Series))
	}
	qty := c.Series[2]
	if qty.Title != market.MeasureQuantity || len(qty.Labels) != 2 || len(qty.Secondary) != 1 {
		t.Errorf("quantity series = %+v", qty)
	}
	if qty.Primary[1] != 7 || qty.Secondary[0] != 3 {
		t.Errorf("quantity values = %v / %v", qty.Primary, qty.Secondary)
	}
}

func TestCompare_SinglePoint(t *testing.T) {
	s := side("NGK", market.AuctionSnapshot{}, market.AuctionSnapshot{},
		market.PricePoint{ScannedAt: time.Now()})
	c := market.Compare(s, s)
	if !c.Categories[0].PreviousUpdated.IsZero() {
		t.Error("previous updated should be zero with fewer than two scans")
	}
}

func ptr(f float64) *float64 { return &f }
