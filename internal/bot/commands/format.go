package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/jensholdgaard/wowtools/internal/combatlog"
	"github.com/jensholdgaard/wowtools/internal/gear"
	"github.com/jensholdgaard/wowtools/internal/gems"
	"github.com/jensholdgaard/wowtools/internal/market"
	"github.com/jensholdgaard/wowtools/internal/money"
)

// Discord limits.
const (
	maxMessageLen = 2000
	maxChoices    = 25
	maxChoiceName = 100
)

var trendArrows = map[money.Trend]string{
	money.Up:   "▲",
	money.Down: "▼",
	money.Flat: "•",
}

func truncate(msg string) string {
	if len(msg) <= maxMessageLen {
		return msg
	}
	const ellipsis = "\n…"
	cut := maxMessageLen - len(ellipsis)
	// Do not split a multi-byte rune.
	for cut > 0 && !isRuneStart(msg[cut]) {
		cut--
	}
	return msg[:cut] + ellipsis
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

// SearchChoices converts search hits to autocomplete choices whose value
// is the item id.
func SearchChoices(items []market.SearchItem) []*discordgo.ApplicationCommandOptionChoice {
	if len(items) > maxChoices {
		items = items[:maxChoices]
	}
	out := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(items))
	for _, it := range items {
		name := it.Name
		if len(name) > maxChoiceName {
			name = name[:maxChoiceName]
		}
		out = append(out, &discordgo.ApplicationCommandOptionChoice{
			Name:  name,
			Value: strconv.Itoa(int(it.ItemID)),
		})
	}
	return out
}

// FormatComparison renders the price categories and cross-server diffs.
func FormatComparison(c *market.Comparison) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** (%s vs %s)\n", c.Name, c.PrimaryLabel, c.SecondaryLabel)
	for _, cat := range c.Categories {
		pct := "n/a"
		if cat.Percent != nil {
			pct = fmt.Sprintf("%+.1f%%", *cat.Percent)
		}
		fmt.Fprintf(&b, "%s: %s %s %s (%s)\n",
			cat.Label, money.Format(cat.Current), trendArrows[cat.Trend],
			money.Format(cat.Diff, money.WithoutSign()), pct)
	}
	for _, d := range c.Diffs {
		fmt.Fprintf(&b, "%s %s-%s: %s %s\n",
			d.Label, c.PrimaryLabel, c.SecondaryLabel, trendArrows[d.Trend], money.Format(d.Diff))
	}
	if len(c.Categories) > 0 && !c.Categories[0].LastUpdated.IsZero() {
		fmt.Fprintf(&b, "_Updated %s_", c.Categories[0].LastUpdated.Format("2006-01-02 15:04 MST"))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatEvaluation renders the stat table of a piece.
func FormatEvaluation(p gear.Piece, ev gear.Evaluation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** (%s, ilvl %d)\n```\n", p.Name, p.Slot, p.ItemLevel)
	for _, r := range ev.Rows {
		fmt.Fprintf(&b, "%-16s %8g %8.2f\n", r.Stat, r.Amount, r.Equivalency)
	}
	for _, sc := range ev.Sockets {
		fmt.Fprintf(&b, "%-16s %8d %8.2f\n", string(sc.Color)+" Socket", sc.Count, sc.Equivalency)
	}
	b.WriteString("```\n")
	for _, r := range ev.SocketBonus {
		fmt.Fprintf(&b, "Socket bonus: %s %g (%.2f)\n", r.Stat, r.Amount, r.Equivalency)
	}
	for _, e := range ev.Effects {
		fmt.Fprintf(&b, "Effect (%s): %s\n", e.Trigger, statList(e.Stats))
	}
	fmt.Fprintf(&b, "**Total: %.2f**", ev.Total)
	return b.String()
}

func statList(s gear.Stats) string {
	parts := make([]string, 0, s.Len())
	for _, st := range s.List {
		parts = append(parts, gems.StatLabel(st))
	}
	return strings.Join(parts, ", ")
}

// FormatGems lists gems with their stat labels.
func FormatGems(found []gems.Gem) string {
	if len(found) == 0 {
		return "No gems match."
	}
	var b strings.Builder
	for _, g := range found {
		fmt.Fprintf(&b, "**%s**: %s\n", g.Name, strings.Join(g.Labels(), ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatUsage renders the consumable table as a code block.
func FormatUsage(t *combatlog.UsageTable) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**", t.Title)
	if t.Guild != "" {
		fmt.Fprintf(&b, " (%s)", t.Guild)
	}
	b.WriteString("\n```\n")
	fmt.Fprintf(&b, "%-14s", "Name")
	for _, c := range t.Consumables {
		fmt.Fprintf(&b, " %10s", c.Key)
	}
	b.WriteByte('\n')
	for _, r := range t.Rows {
		fmt.Fprintf(&b, "%-14s", r.Name)
		for _, c := range t.Consumables {
			fmt.Fprintf(&b, " %10d", r.Counts[c.Key])
		}
		b.WriteByte('\n')
	}
	b.WriteString("```")
	return b.String()
}
