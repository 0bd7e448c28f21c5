package roster

// Region is a drop target of the planner.
type Region string

const (
	Guild  Region = "guild"
	Raid   Region = "raid"
	Tank   Region = "tank"
	Healer Region = "healer"
	DPS    Region = "dps"
	Flex   Region = "flex"
)

// Regions lists every region in the order drops are applied.
var Regions = []Region{Guild, Raid, Tank, Healer, DPS, Flex}

// RoleRegions are the four role buckets.
var RoleRegions = []Region{Tank, Healer, DPS, Flex}

// Point is a position in planner coordinates. For a drop it is the top
// left corner of the dragged card.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned region.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Contains reports whether p lies in r, edges included.
func (r Rect) Contains(p Point) bool {
	return r.Left <= p.X && p.X <= r.Right && r.Top <= p.Y && p.Y <= r.Bottom
}

// Layout places each region on the planner.
type Layout map[Region]Rect

// Hit returns every region containing p, in Regions order.
func (l Layout) Hit(p Point) []Region {
	var out []Region
	for _, r := range Regions {
		if rect, ok := l[r]; ok && rect.Contains(p) {
			out = append(out, r)
		}
	}
	return out
}

// DefaultLayout stacks the guild list, the raid and the role buckets in
// three equal bands. The role band is split 20/20/40/20 between tank,
// healer, dps and flex.
func DefaultLayout(width, height float64) Layout {
	band := height / 3
	split := func(from, to float64) Rect {
		return Rect{Left: width * from, Top: 2 * band, Right: width * to, Bottom: height}
	}
	return Layout{
		Guild:  {Left: 0, Top: 0, Right: width, Bottom: band},
		Raid:   {Left: 0, Top: band, Right: width, Bottom: 2 * band},
		Tank:   split(0, 0.2),
		Healer: split(0.2, 0.4),
		DPS:    split(0.4, 0.8),
		Flex:   split(0.8, 1),
	}
}
