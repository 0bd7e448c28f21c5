package gems_test

import (
	"errors"
	"testing"

	"github.com/jensholdgaard/wowtools/internal/gear"
	"github.com/jensholdgaard/wowtools/internal/gems"
)

func loadCatalog(t *testing.T) *gems.Catalog {
	t.Helper()
	c, err := gems.LoadCatalog("testdata/gems.json", "testdata/gear.json")
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	return c
}

func names(gs []gems.Gem) []string {
	out := make([]string, len(gs))
	for i, g := range gs {
		out[i] = g.Name
	}
	return out
}

func TestCatalog_Search(t *testing.T) {
	c := loadCatalog(t)

	tests := []struct {
		name  string
		term  string
		want  int
		first string
	}{
		{name: "empty term returns all", term: "", want: 12, first: "Bold Living Ruby"},
		{name: "by name", term: "dawnstone", want: 2, first: "Smooth Dawnstone"},
		{name: "by stat", term: "crit", want: 2, first: "Smooth Dawnstone"},
		{name: "any of several terms", term: "bold solid", want: 2, first: "Bold Living Ruby"},
		{name: "case insensitive", term: "ELUNE", want: 2, first: "Solid Star of Elune"},
		{name: "first stat of a later entry", term: "hitrating", want: 2, first: "Rigid Dawnstone"},
		{name: "no match", term: "zzz", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Search(tt.term)
			if len(got) != tt.want {
				t.Fatalf("Search(%q) = %v, want %d gems", tt.term, names(got), tt.want)
			}
			if tt.want > 0 && got[0].Name != tt.first {
				t.Errorf("Search(%q)[0] = %q, want %q", tt.term, got[0].Name, tt.first)
			}
		})
	}
}

func TestCatalog_GearNames(t *testing.T) {
	c := loadCatalog(t)
	if len(c.GearNames()) != 7 {
		t.Errorf("GearNames() = %d, want 7", len(c.GearNames()))
	}
	got := c.SearchGear("plate", 0)
	if len(got) != 1 || got[0] != "Merciless Gladiator's Plate Helm" {
		t.Errorf("SearchGear(plate) = %v", got)
	}
	if _, err := c.ByName("bold living ruby"); err != nil {
		t.Errorf("ByName() error = %v", err)
	}
	if _, err := c.ByName("Shiny Rock"); !errors.Is(err, gems.ErrNotFound) {
		t.Errorf("ByName(Shiny Rock) error = %v, want ErrNotFound", err)
	}
}

func TestSelection_AddLimit(t *testing.T) {
	var s gems.Selection
	g := gems.Gem{Name: "Bold Living Ruby"}
	for i := 0; i < gems.MaxSelected; i++ {
		if err := s.Add(g); err != nil {
			t.Fatalf("Add() #%d error = %v", i, err)
		}
	}
	if err := s.Add(g); !errors.Is(err, gems.ErrSelectionFull) {
		t.Fatalf("fourth Add() error = %v, want ErrSelectionFull", err)
	}
	s.Remove(1)
	s.Remove(7)
	if len(s.Gems) != 2 {
		t.Errorf("after Remove got %d gems, want 2", len(s.Gems))
	}
}

func TestSelection_QuickAdd(t *testing.T) {
	c := loadCatalog(t)
	var s gems.Selection

	if err := s.QuickAdd(c.Search("dawnstone")); !errors.Is(err, gems.ErrAmbiguousSearch) {
		t.Errorf("QuickAdd(two results) error = %v", err)
	}
	if err := s.QuickAdd(nil); !errors.Is(err, gems.ErrNotFound) {
		t.Errorf("QuickAdd(nil) error = %v", err)
	}
	if err := s.QuickAdd(c.Search("smooth")); err != nil {
		t.Fatalf("QuickAdd(one result) error = %v", err)
	}
	if len(s.Gems) != 1 || s.Gems[0].Name != "Smooth Dawnstone" {
		t.Errorf("selection = %v", names(s.Gems))
	}
}

func TestSelection_Request(t *testing.T) {
	bold := gems.Gem{Name: "Bold Living Ruby"}
	solid := gems.Gem{Name: "Solid Star of Elune"}

	tests := []struct {
		name    string
		sel     gems.Selection
		want    string
		wantErr error
	}{
		{
			name: "grouped in first pick order",
			sel:  gems.Selection{Gear: "Onslaught Breastplate", Gems: []gems.Gem{bold, solid, bold}},
			want: "Onslaught Breastplate \n2x Bold Living Ruby\n1x Solid Star of Elune",
		},
		{
			name: "single gem",
			sel:  gems.Selection{Gear: "Helm", Gems: []gems.Gem{solid}},
			want: "Helm \n1x Solid Star of Elune",
		},
		{name: "no gear", sel: gems.Selection{Gems: []gems.Gem{bold}}, wantErr: gems.ErrNoGearSelected},
		{name: "no gems", sel: gems.Selection{Gear: "Helm"}, wantErr: gems.ErrNoGemsSelected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.sel.Request()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Request() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Request() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatLabel(t *testing.T) {
	tests := []struct {
		stat gear.Stat
		want string
	}{
		{gear.Stat{Name: "CritRating", Value: 8}, "Crit Rating 8"},
		{gear.Stat{Name: "Stamina", Value: 12}, "Stamina 12"},
		{gear.Stat{Name: "Mp5", Value: 4}, "Mp5 4"},
		{gear.Stat{Name: "SpellPower", Value: 4.5}, "Spell Power 4.5"},
	}
	for _, tt := range tests {
		if got := gems.StatLabel(tt.stat); got != tt.want {
			t.Errorf("StatLabel(%v) = %q, want %q", tt.stat, got, tt.want)
		}
	}
}

func TestGem_Display(t *testing.T) {
	c := loadCatalog(t)
	g, err := c.ByName("Inscribed Noble Topaz")
	if err != nil {
		t.Fatal(err)
	}
	if g.ShortName() != "Inscribed" {
		t.Errorf("ShortName() = %q", g.ShortName())
	}
	labels := g.Labels()
	if len(labels) != 2 || labels[0] != "Strength 4" || labels[1] != "Crit Rating 4" {
		t.Errorf("Labels() = %v", labels)
	}
	if g.IconURL() != "https://wow.zamimg.com/images/wow/icons/large/inv_jewelcrafting_nobletopaz_03.jpg" {
		t.Errorf("IconURL() = %q", g.IconURL())
	}
}
