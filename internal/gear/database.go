package gear

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound is returned when no piece has the requested id.
var ErrNotFound = errors.New("gear piece not found")

// Slots are the paper-doll rows shown by the gear planner.
var Slots = []string{"head", "neck", "shoulders", "back", "chest", "wrists", "hands", "waist", "legs"}

// Database is an immutable, indexed copy of the item database.
type Database struct {
	pieces []Piece
	byID   map[int]int
}

// Load reads an item database file of the form {"Item": [...]}.
func Load(path string) (*Database, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading gear database: %w", err)
	}
	return Parse(data)
}

// Parse decodes an item database document.
func Parse(data []byte) (*Database, error) {
	var doc struct {
		Item []Piece `json:"Item"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing gear database: %w", err)
	}
	return NewDatabase(doc.Item), nil
}

// NewDatabase indexes pieces by id. Later duplicates win.
func NewDatabase(pieces []Piece) *Database {
	db := &Database{pieces: pieces, byID: make(map[int]int, len(pieces))}
	for i, p := range pieces {
		db.byID[p.ID] = i
	}
	return db
}

// Len returns the number of pieces.
func (db *Database) Len() int { return len(db.pieces) }

// ByID returns the piece with the given id.
func (db *Database) ByID(id int) (Piece, error) {
	i, ok := db.byID[id]
	if !ok {
		return Piece{}, fmt.Errorf("id %d: %w", id, ErrNotFound)
	}
	return db.pieces[i], nil
}

// Search returns pieces whose name contains query, case-insensitively,
// ordered by name. An empty query matches everything. limit <= 0 means no limit.
func (db *Database) Search(query string, limit int) []Piece {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []Piece
	for _, p := range db.pieces {
		if q == "" || strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// BySlot returns every piece for a slot, matched case-insensitively.
func (db *Database) BySlot(slot string) []Piece {
	var out []Piece
	for _, p := range db.pieces {
		if strings.EqualFold(p.Slot, slot) {
			out = append(out, p)
		}
	}
	return out
}
