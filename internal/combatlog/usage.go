package combatlog

// Consumable is a column of the usage table: every ability id that counts
// as one use.
type Consumable struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	AbilityIDs []int  `json:"ability_ids"`
}

// Ability ids of the tracked potions.
const (
	SuperManaPotion     = 28499
	MadAlchemistsPotion = 45051
	HastePotion         = 28507
	DestructionPotion   = 28508
)

// DefaultConsumables returns the mana, haste and destruction potion columns.
func DefaultConsumables() []Consumable {
	return []Consumable{
		{Key: "manapot", Label: "Mana Pot Usage", AbilityIDs: []int{SuperManaPotion, MadAlchemistsPotion}},
		{Key: "hastepot", Label: "Haste Pot Usage", AbilityIDs: []int{HastePotion}},
		{Key: "destrupot", Label: "Destru Pot Usage", AbilityIDs: []int{DestructionPotion}},
	}
}

// UsageRow is one character's consumable counts, keyed by Consumable.Key.
type UsageRow struct {
	ID     int            `json:"id"`
	Name   string         `json:"name"`
	Counts map[string]int `json:"counts"`
}

// Usage builds one row per ranked character, in ranking order. The
// character's actor is found by name; a character without an actor gets
// zero counts.
func Usage(r *Report, consumables []Consumable) []UsageRow {
	byAbility := make(map[int][]string)
	for _, c := range consumables {
		for _, id := range c.AbilityIDs {
			byAbility[id] = append(byAbility[id], c.Key)
		}
	}

	rows := make([]UsageRow, 0, len(r.RankedCharacters))
	for i, ch := range r.RankedCharacters {
		row := UsageRow{ID: i, Name: ch.Name, Counts: make(map[string]int, len(consumables))}
		for _, c := range consumables {
			row.Counts[c.Key] = 0
		}

		if actor, ok := r.ActorByName(ch.Name); ok {
			for _, ev := range r.Events.Data {
				if ev.SourceID != actor.ID {
					continue
				}
				for _, key := range byAbility[ev.AbilityGameID] {
					row.Counts[key]++
				}
			}
		}
		rows = append(rows, row)
	}
	return rows
}
