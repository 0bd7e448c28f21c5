// Package gear loads the item database and scores gear pieces by weighting
// their stats into a single equivalency number.
package gear

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Quality is an item rarity tier.
type Quality string

const (
	Common    Quality = "Common"
	Rare      Quality = "Rare"
	Epic      Quality = "Epic"
	Legendary Quality = "Legendary"
)

// SocketColor is the color of a gem socket.
type SocketColor string

const (
	Red    SocketColor = "Red"
	Blue   SocketColor = "Blue"
	Yellow SocketColor = "Yellow"
	Meta   SocketColor = "Meta"
)

// SocketColors lists socket colors in the order the score sums them.
var SocketColors = []SocketColor{Meta, Red, Blue, Yellow}

// Stat is one attribute of a stat block.
type Stat struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// SpecialEffect is a proc or on-use effect attached to an item.
type SpecialEffect struct {
	Trigger  string  `json:"Trigger"`
	Stats    Stats   `json:"Stats"`
	Duration float64 `json:"Duration"`
	Cooldown float64 `json:"Cooldown"`
	Chance   float64 `json:"Chance"`
	MaxStack float64 `json:"MaxStack"`
}

// Stats is a sparse stat block in the order the database lists it.
// The database writes an empty block as "" instead of {}.
type Stats struct {
	List    []Stat
	Effects []SpecialEffect
}

// Get returns the value of the named stat, or zero.
func (s Stats) Get(name string) float64 {
	for _, st := range s.List {
		if st.Name == name {
			return st.Value
		}
	}
	return 0
}

// Len returns the number of numeric stats.
func (s Stats) Len() int { return len(s.List) }

// UnmarshalJSON decodes an object while keeping key order, or "" as empty.
func (s *Stats) UnmarshalJSON(data []byte) error {
	*s = Stats{}
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte(`""`)) || bytes.Equal(data, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("stats must be an object or \"\", got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("reading stat name: %w", err)
		}
		name := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("reading stat %q: %w", name, err)
		}

		if name == "SpecialEffects" {
			effects, err := decodeEffects(raw)
			if err != nil {
				return err
			}
			s.Effects = append(s.Effects, effects...)
			continue
		}

		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			// Non-numeric members carry no weight.
			continue
		}
		s.List = append(s.List, Stat{Name: name, Value: v})
	}
	return nil
}

// MarshalJSON writes the stat block as an object in its original order.
func (s Stats) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, st := range s.List {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, _ := json.Marshal(st.Name)
		buf.Write(name)
		buf.WriteByte(':')
		v, err := json.Marshal(st.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	if len(s.Effects) > 0 {
		effects, err := json.Marshal(map[string][]SpecialEffect{"SpecialEffect": s.Effects})
		if err != nil {
			return nil, err
		}
		if len(s.List) > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(`"SpecialEffects":`)
		buf.Write(effects)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// decodeEffects accepts {"SpecialEffect": [...]} or {"SpecialEffect": {...}}.
func decodeEffects(raw json.RawMessage) ([]SpecialEffect, error) {
	var wrapper struct {
		SpecialEffect json.RawMessage `json:"SpecialEffect"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, fmt.Errorf("reading special effects: %w", err)
	}
	inner := bytes.TrimSpace(wrapper.SpecialEffect)
	if len(inner) == 0 {
		return nil, nil
	}
	if inner[0] == '[' {
		var list []SpecialEffect
		if err := json.Unmarshal(inner, &list); err != nil {
			return nil, fmt.Errorf("reading special effects: %w", err)
		}
		return list, nil
	}
	var one SpecialEffect
	if err := json.Unmarshal(inner, &one); err != nil {
		return nil, fmt.Errorf("reading special effect: %w", err)
	}
	return []SpecialEffect{one}, nil
}

// Piece is a single item from the gear database.
type Piece struct {
	ID              int         `json:"Id"`
	Name            string      `json:"Name"`
	Slot            string      `json:"Slot"`
	ItemLevel       int         `json:"ItemLevel"`
	DisplayID       int         `json:"DisplayId"`
	DisplaySlot     int         `json:"DisplaySlot"`
	IconPath        string      `json:"IconPath"`
	Stats           Stats       `json:"Stats"`
	Quality         Quality     `json:"Quality"`
	Type            string      `json:"Type"`
	RequiredClasses string      `json:"RequiredClasses"`
	Faction         string      `json:"Faction"`
	Bind            string      `json:"Bind"`
	Unique          bool        `json:"Unique,omitempty"`
	SocketColor1    SocketColor `json:"SocketColor1,omitempty"`
	SocketColor2    SocketColor `json:"SocketColor2,omitempty"`
	SocketColor3    SocketColor `json:"SocketColor3,omitempty"`
	SocketBonus     Stats       `json:"SocketBonus"`
	SetName         string      `json:"SetName,omitempty"`
}

// Sockets returns the piece's socket colors, skipping empty slots.
func (p Piece) Sockets() []SocketColor {
	var out []SocketColor
	for _, c := range []SocketColor{p.SocketColor1, p.SocketColor2, p.SocketColor3} {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// SocketCount counts the sockets of the given color.
func (p Piece) SocketCount(color SocketColor) int {
	n := 0
	for _, c := range p.Sockets() {
		if c == color {
			n++
		}
	}
	return n
}

// HasSockets reports whether the piece has any socket.
func (p Piece) HasSockets() bool {
	return p.SocketColor1 != "" || p.SocketColor2 != "" || p.SocketColor3 != ""
}
