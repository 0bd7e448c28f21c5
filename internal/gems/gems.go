// Package gems holds the gem catalog and builds jewelcrafting requests
// for a gear piece.
package gems

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/jensholdgaard/wowtools/internal/gear"
)

// MaxSelected is the number of sockets a request can fill.
const MaxSelected = 3

var (
	ErrNotFound        = errors.New("gem not found")
	ErrSelectionFull   = errors.New("gem selection is full")
	ErrNoGearSelected  = errors.New("no gear piece selected")
	ErrNoGemsSelected  = errors.New("no gems selected")
	ErrAmbiguousSearch = errors.New("search matched more than one gem")
)

// Gem is a catalog entry. Each Stats entry usually holds a single stat.
type Gem struct {
	Name  string       `json:"Name"`
	Icon  string       `json:"Icon"`
	Stats []gear.Stats `json:"Stats"`
}

// IconURL returns the gem's icon image.
func (g Gem) IconURL() string { return gear.IconURL(g.Icon) }

// ShortName is the first word of the name, used on selection chips.
func (g Gem) ShortName() string {
	if i := strings.IndexByte(g.Name, ' '); i > 0 {
		return g.Name[:i]
	}
	return g.Name
}

// Labels returns one display label per stat entry.
func (g Gem) Labels() []string {
	out := make([]string, 0, len(g.Stats))
	for _, s := range g.Stats {
		if s.Len() == 0 {
			continue
		}
		// The last member of an entry wins.
		out = append(out, StatLabel(s.List[s.Len()-1]))
	}
	return out
}

// Catalog is the gem list plus the gear names a request can target.
type Catalog struct {
	gems []Gem
	gear []string
}

// NewCatalog builds a catalog from already decoded data.
func NewCatalog(gems []Gem, gearNames []string) *Catalog {
	return &Catalog{gems: gems, gear: gearNames}
}

// LoadCatalog reads the gem list and the gear name list.
func LoadCatalog(gemsPath, gearNamesPath string) (*Catalog, error) {
	var gems []Gem
	if err := readJSON(gemsPath, &gems); err != nil {
		return nil, fmt.Errorf("loading gems: %w", err)
	}
	var names []string
	if err := readJSON(gearNamesPath, &names); err != nil {
		return nil, fmt.Errorf("loading gear names: %w", err)
	}
	return NewCatalog(gems, names), nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Gems returns every gem in catalog order.
func (c *Catalog) Gems() []Gem { return c.gems }

// GearNames returns every gear name a request can be made for.
func (c *Catalog) GearNames() []string { return c.gear }

// ByName returns the gem with the exact name, ignoring case.
func (c *Catalog) ByName(name string) (Gem, error) {
	for _, g := range c.gems {
		if strings.EqualFold(g.Name, name) {
			return g, nil
		}
	}
	return Gem{}, fmt.Errorf("%q: %w", name, ErrNotFound)
}

// Search splits term on spaces. A gem matches when any term is a
// case-insensitive substring of its name or of the first stat of any
// of its entries. An empty term matches every gem.
func (c *Catalog) Search(term string) []Gem {
	terms := strings.Split(strings.ToLower(term), " ")
	var out []Gem
	for _, g := range c.gems {
		if matches(g, terms) {
			out = append(out, g)
		}
	}
	return out
}

func matches(g Gem, terms []string) bool {
	name := strings.ToLower(g.Name)
	for _, t := range terms {
		if strings.Contains(name, t) {
			return true
		}
		for _, s := range g.Stats {
			if s.Len() > 0 && strings.Contains(strings.ToLower(s.List[0].Name), t) {
				return true
			}
		}
	}
	return false
}

// SearchGear returns gear names containing query, ignoring case.
func (c *Catalog) SearchGear(query string, limit int) []string {
	q := strings.ToLower(query)
	var out []string
	for _, n := range c.gear {
		if strings.Contains(strings.ToLower(n), q) {
			out = append(out, n)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}

// Selection is a gear piece plus up to MaxSelected gems, in the order they
// were picked. The same gem may be picked more than once.
type Selection struct {
	Gear string `json:"gear"`
	Gems []Gem  `json:"gems"`
}

// Add appends a gem.
func (s *Selection) Add(g Gem) error {
	if len(s.Gems) >= MaxSelected {
		return ErrSelectionFull
	}
	s.Gems = append(s.Gems, g)
	return nil
}

// QuickAdd adds the search result when exactly one gem matched.
func (s *Selection) QuickAdd(results []Gem) error {
	switch len(results) {
	case 0:
		return ErrNotFound
	case 1:
		return s.Add(results[0])
	default:
		return ErrAmbiguousSearch
	}
}

// Remove drops the gem at index i. Out of range indexes are ignored.
func (s *Selection) Remove(i int) {
	if i < 0 || i >= len(s.Gems) {
		return
	}
	s.Gems = append(s.Gems[:i], s.Gems[i+1:]...)
}

// Request renders the request text: the gear name, a space and a newline,
// then one "<n>x <gem>" line per distinct gem in first-pick order.
func (s Selection) Request() (string, error) {
	if s.Gear == "" {
		return "", ErrNoGearSelected
	}
	if len(s.Gems) == 0 {
		return "", ErrNoGemsSelected
	}

	var order []string
	counts := make(map[string]int, len(s.Gems))
	for _, g := range s.Gems {
		if counts[g.Name] == 0 {
			order = append(order, g.Name)
		}
		counts[g.Name]++
	}

	lines := make([]string, 0, len(order))
	for _, name := range order {
		lines = append(lines, fmt.Sprintf("%dx %s", counts[name], name))
	}
	return s.Gear + " \n" + strings.Join(lines, "\n"), nil
}

// StatLabel spaces a camel-case stat name and appends the amount,
// e.g. CritRating 8 becomes "Crit Rating 8".
func StatLabel(st gear.Stat) string {
	var b strings.Builder
	for _, r := range st.Name {
		if unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String()) + " " + strconv.FormatFloat(st.Value, 'f', -1, 64)
}
