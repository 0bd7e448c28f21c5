// Package roster plans raid rosters: characters are dropped from the guild
// list into the raid and onto role buckets, phase by phase.
package roster

import (
	"fmt"

	"github.com/jensholdgaard/wowtools/internal/store"
)

// Character is a guild member as the planner sees it.
type Character struct {
	Name   string `json:"name"`
	Race   string `json:"race"`
	Gender string `json:"gender"`
	Class  string `json:"class"`
	Spec   string `json:"spec"`
}

// Races, genders and classes a character may have.
var (
	Races   = []string{"human", "gnome", "nightelf", "draenei", "dwarf"}
	Genders = []string{"male", "female"}
	Classes = []string{"warrior", "paladin", "rogue", "deathknight", "mage", "warlock", "priest", "hunter", "druid", "shaman"}
)

// DefaultGuild is the roster seeded into an empty character store.
func DefaultGuild() []Character {
	return []Character{
		{Name: "Sumire", Race: "draenei", Gender: "female", Class: "paladin", Spec: "holy"},
		{Name: "Takforkaffe", Race: "gnome", Gender: "female", Class: "warrior", Spec: "fury"},
		{Name: "Iskii", Race: "nightelf", Gender: "female", Class: "druid", Spec: "restoration"},
	}
}

// ClassIconURL returns the class icon image.
func ClassIconURL(class string) string {
	return fmt.Sprintf("https://wow.zamimg.com/images/wow/icons/large/classicon_%s.jpg", class)
}

// FromStore converts a stored character.
func FromStore(c store.Character) Character {
	return Character{Name: c.Name, Race: c.Race, Gender: c.Gender, Class: c.Class, Spec: c.Spec}
}

// ToStore converts a character for storage.
func (c Character) ToStore() *store.Character {
	return &store.Character{Name: c.Name, Race: c.Race, Gender: c.Gender, Class: c.Class, Spec: c.Spec}
}

func without(list []Character, name string) []Character {
	out := list[:0:0]
	for _, c := range list {
		if c.Name != name {
			out = append(out, c)
		}
	}
	return out
}

func contains(list []Character, name string) bool {
	for _, c := range list {
		if c.Name == name {
			return true
		}
	}
	return false
}
