package gear

import "fmt"

// Weights maps a stat name (or "<Color>Socket") to its equivalency factor.
type Weights map[string]float64

// DefaultWeights returns the stock weight table.
func DefaultWeights() Weights {
	return Weights{
		"Armor":        0.001,
		"Stamina":      0.2,
		"Strength":     2,
		"Agility":      1.5,
		"AttackPower":  1,
		"CritRating":   0.8,
		"Resilience":   0.1,
		"MetaSocket":   80,
		"RedSocket":    40,
		"BlueSocket":   20,
		"YellowSocket": 36,
	}
}

// SocketKey returns the weight key for a socket color.
func SocketKey(c SocketColor) string { return fmt.Sprintf("%sSocket", c) }

// Row is one line of the stat table.
type Row struct {
	Stat        string  `json:"stat"`
	Amount      float64 `json:"amount"`
	Equivalency float64 `json:"equivalency"`
}

// SocketCount is the number of sockets of one color and their weighted value.
type SocketCount struct {
	Color       SocketColor `json:"color"`
	Count       int         `json:"count"`
	Equivalency float64     `json:"equivalency"`
}

// Evaluation is the scored stat table of a piece.
type Evaluation struct {
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	Rows           []Row           `json:"rows"`
	Effects        []SpecialEffect `json:"effects,omitempty"`
	Sockets        []SocketCount   `json:"sockets,omitempty"`
	GemEquivalency float64         `json:"gem_equivalency"`
	SocketBonus    []Row           `json:"socket_bonus,omitempty"`
	Total          float64         `json:"total"`
}

// Evaluate scores a piece. Each stat contributes amount times its weight,
// or nothing when the stat has no weight. Sockets contribute their color
// weight per socket. The socket bonus is reported but not counted.
func Evaluate(p Piece, w Weights) Evaluation {
	ev := Evaluation{ID: p.ID, Name: p.Name, Effects: p.Stats.Effects}

	ev.Rows = rows(p.Stats, w)
	for _, r := range ev.Rows {
		ev.Total += r.Equivalency
	}

	if p.HasSockets() {
		for _, c := range SocketColors {
			n := p.SocketCount(c)
			if n == 0 {
				continue
			}
			eq := w[SocketKey(c)] * float64(n)
			ev.Sockets = append(ev.Sockets, SocketCount{Color: c, Count: n, Equivalency: eq})
			ev.GemEquivalency += eq
		}
		ev.SocketBonus = rows(p.SocketBonus, w)
	}

	ev.Total += ev.GemEquivalency
	return ev
}

func rows(s Stats, w Weights) []Row {
	out := make([]Row, 0, s.Len())
	for _, st := range s.List {
		out = append(out, Row{Stat: st.Name, Amount: st.Value, Equivalency: st.Value * w[st.Name]})
	}
	return out
}
