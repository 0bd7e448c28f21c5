package export_test

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/jensholdgaard/wowtools/internal/combatlog"
	"github.com/jensholdgaard/wowtools/internal/export"
	"github.com/jensholdgaard/wowtools/internal/roster"
)

func readRows(t *testing.T, buf *bytes.Buffer, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("GetRows(%q) error = %v", sheet, err)
	}
	return rows
}

func TestConsumables(t *testing.T) {
	rows := []combatlog.UsageRow{
		{ID: 0, Name: "Iskii", Counts: map[string]int{"manapot": 1, "hastepot": 0, "destrupot": 2}},
		{ID: 1, Name: "Sumire", Counts: map[string]int{"manapot": 2}},
	}
	var buf bytes.Buffer
	if err := export.Consumables(&buf, rows, combatlog.DefaultConsumables()); err != nil {
		t.Fatalf("Consumables() error = %v", err)
	}

	got := readRows(t, &buf, export.ConsumablesSheet)
	want := [][]string{
		{"Name", "Mana Pot Usage", "Haste Pot Usage", "Destru Pot Usage"},
		{"Iskii", "1", "0", "2"},
		{"Sumire", "2", "0", "0"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Errorf("cell (%d,%d) = %q, want %q", i, j, got[i][j], want[i][j])
			}
		}
	}
}

func TestRoster(t *testing.T) {
	stats := roster.Statistics{Rows: []roster.StatRow{
		{Name: "Takforkaffe", Class: "warrior", Spec: "fury", Role: roster.RoleTank},
		{Name: "Iskii", Class: "druid", Spec: "restoration", Role: roster.RoleNone},
	}}
	var buf bytes.Buffer
	if err := export.Roster(&buf, stats); err != nil {
		t.Fatalf("Roster() error = %v", err)
	}

	got := readRows(t, &buf, export.RosterSheet)
	if len(got) != 3 {
		t.Fatalf("got %d rows, want 3", len(got))
	}
	if got[0][3] != "Role" || got[1][0] != "Takforkaffe" || got[1][3] != "tank" || got[2][3] != "none" {
		t.Errorf("rows = %v", got)
	}
}

func TestRoster_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := export.Roster(&buf, roster.Statistics{}); err != nil {
		t.Fatalf("Roster() error = %v", err)
	}
	if got := readRows(t, &buf, export.RosterSheet); len(got) != 1 {
		t.Errorf("empty roster should only have the header, got %v", got)
	}
}
