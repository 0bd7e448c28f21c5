// Package combatlog reads combat-log reports and tallies consumable usage
// per raid member.
package combatlog

// Report is a combat-log report as returned by the log analytics API.
type Report struct {
	Title            string            `json:"title"`
	StartTime        int64             `json:"startTime"`
	EndTime          int64             `json:"endTime"`
	Owner            Owner             `json:"owner"`
	Guild            Guild             `json:"guild"`
	Fights           []Fight           `json:"fights"`
	Events           EventData         `json:"events"`
	MasterData       MasterData        `json:"masterData"`
	RankedCharacters []RankedCharacter `json:"rankedCharacters"`
}

type Owner struct {
	Name string `json:"name"`
}

type Guild struct {
	Name string `json:"name"`
}

// Fight is one pull within the report.
type Fight struct {
	Name           string     `json:"name"`
	StartTime      int64      `json:"startTime"`
	EndTime        int64      `json:"endTime"`
	Kill           bool       `json:"kill"`
	BossPercentage float64    `json:"bossPercentage"`
	EnemyNPCs      []EnemyNPC `json:"enemyNPCs"`
}

type EnemyNPC struct {
	GameID int `json:"gameID"`
}

type EventData struct {
	Data []Event `json:"data"`
}

// Event is a single cast.
type Event struct {
	AbilityGameID int    `json:"abilityGameID"`
	Fight         int    `json:"fight"`
	SourceID      int    `json:"sourceID"`
	TargetID      int    `json:"targetID"`
	Timestamp     int64  `json:"timestamp"`
	Type          string `json:"type"`
	SourceMarker  *int   `json:"sourceMarker,omitempty"`
}

type MasterData struct {
	GameVersion int     `json:"gameVersion"`
	Actors      []Actor `json:"actors"`
}

// Actor maps a report-local id to a unit name.
type Actor struct {
	GameID int    `json:"gameID"`
	ID     int    `json:"id"`
	Name   string `json:"name"`
}

// RankedCharacter is a player that appears in the report rankings.
type RankedCharacter struct {
	ID      int    `json:"id"`
	ClassID int    `json:"classID"`
	Name    string `json:"name"`
}

// ActorByName returns the first actor with the given name.
func (r *Report) ActorByName(name string) (Actor, bool) {
	for _, a := range r.MasterData.Actors {
		if a.Name == name {
			return a, true
		}
	}
	return Actor{}, false
}
