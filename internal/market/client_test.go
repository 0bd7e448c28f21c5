package market_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace/noop"

	"github.com/jensholdgaard/wowtools/internal/config"
	"github.com/jensholdgaard/wowtools/internal/market"
)

const ngk = "nethergarde-keep-alliance"

// fakeAPI serves the two fixture files for item 2589 on any server.
type fakeAPI struct {
	hits   atomic.Int32
	broken atomic.Bool
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.hits.Add(1)
	if f.broken.Load() {
		w.WriteHeader(http.StatusBadGateway)
		return
	}

	serve := func(name string) {
		data, err := os.ReadFile("testdata/" + name)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	}

	switch r.URL.Path {
	case "/items/" + ngk + "/2589", "/items/pyrewood-village-alliance/2589":
		serve("item.json")
	case "/items/" + ngk + "/2589/prices", "/items/pyrewood-village-alliance/2589/prices":
		serve("prices.json")
	case "/search":
		if r.URL.Query().Get("query") != "linen" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`[
			{"itemId": 2589, "name": "Linen Cloth", "uniqueName": "linen-cloth", "imgUrl": "a.jpg"},
			{"itemId": 2996, "name": "Bolt of Linen Cloth", "uniqueName": "bolt-of-linen-cloth", "imgUrl": "b.jpg"},
			{"itemId": 2589, "name": "Linen Cloth", "uniqueName": "linen-cloth", "imgUrl": "c.jpg"}
		]`))
	case "/":
		w.WriteHeader(http.StatusNotFound)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"item not found"}`))
	}
}

func testMarketConfig(baseURL string) config.MarketConfig {
	cfg := config.Defaults().Market
	cfg.BaseURL = baseURL
	cfg.RateLimit = 1000
	cfg.Burst = 100
	cfg.SearchWait = 20 * time.Millisecond
	cfg.SearchMaxWait = 40 * time.Millisecond
	return cfg
}

func newTestClient(t *testing.T) (*market.Client, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return market.NewClient(testMarketConfig(srv.URL), noop.NewTracerProvider()), api
}

func TestClient_Item(t *testing.T) {
	c, _ := newTestClient(t)

	item, err := c.Item(context.Background(), ngk, 2589)
	if err != nil {
		t.Fatalf("Item() error = %v", err)
	}
	if item.ItemID != 2589 || item.Name != "Linen Cloth" || item.VendorPrice != nil {
		t.Errorf("unexpected item %+v", item)
	}
	if item.Stats.Current.MinBuyout != 100 || item.Stats.Previous.MinBuyout != 80 {
		t.Errorf("unexpected stats %+v", item.Stats)
	}
	if item.Stats.LastUpdated.IsZero() || len(item.Tooltip) != 2 {
		t.Errorf("unexpected details %+v", item)
	}
}

func TestClient_Prices(t *testing.T) {
	c, _ := newTestClient(t)

	h, err := c.Prices(context.Background(), ngk, 2589)
	if err != nil {
		t.Fatalf("Prices() error = %v", err)
	}
	if len(h.Data) != 3 || h.Timerange != 7 {
		t.Fatalf("unexpected history %+v", h)
	}
	if last, _ := h.Last(); last.MinBuyout != 100 {
		t.Errorf("last min buyout = %d, want 100", last.MinBuyout)
	}
}

func TestClient_CachesAndInvalidates(t *testing.T) {
	c, api := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.Item(ctx, ngk, 2589); err != nil {
			t.Fatal(err)
		}
	}
	if got := api.hits.Load(); got != 1 {
		t.Errorf("upstream hits = %d, want 1", got)
	}

	c.Invalidate(ngk, 2589)
	if _, err := c.Item(ctx, ngk, 2589); err != nil {
		t.Fatal(err)
	}
	if got := api.hits.Load(); got != 2 {
		t.Errorf("upstream hits after invalidate = %d, want 2", got)
	}
}

func TestClient_Errors(t *testing.T) {
	c, api := newTestClient(t)
	ctx := context.Background()

	if _, err := c.Item(ctx, ngk, 1); !errors.Is(err, market.ErrNotFound) {
		t.Errorf("Item(1) error = %v, want ErrNotFound", err)
	}
	if err := c.Ping(ctx); err != nil {
		t.Errorf("Ping() with a 404 root should count as reachable, got %v", err)
	}

	api.broken.Store(true)
	if _, err := c.Prices(ctx, ngk, 2589); !errors.Is(err, market.ErrUpstream) {
		t.Errorf("Prices() error = %v, want ErrUpstream", err)
	}
	if err := c.Ping(ctx); !errors.Is(err, market.ErrUpstream) {
		t.Errorf("Ping() error = %v, want ErrUpstream", err)
	}
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := market.NewClient(testMarketConfig(url), noop.NewTracerProvider())
	if _, err := c.Search(context.Background(), "linen"); !errors.Is(err, market.ErrUpstream) {
		t.Errorf("Search() error = %v, want ErrUpstream", err)
	}
	if err := c.Ping(context.Background()); !errors.Is(err, market.ErrUpstream) {
		t.Errorf("Ping() error = %v, want ErrUpstream", err)
	}
}

func TestClient_SearchDedupes(t *testing.T) {
	c, _ := newTestClient(t)

	got, err := c.Search(context.Background(), "linen")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	if got[0].ItemID != 2589 || got[0].ImgURL != "c.jpg" {
		t.Errorf("first result = %+v, want item 2589 with the last occurrence's data", got[0])
	}
}
