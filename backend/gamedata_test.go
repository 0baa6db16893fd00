// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package backend

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
)

// indented re-encodes a snapshot so diffs are line based.
func indented(t *testing.T, data []byte) string {
	t.Helper()
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		t.Fatalf("json.Indent: %v", err)
	}
	return buf.String()
}

func assertSameSnapshot(t *testing.T, want, got *GameData) {
	t.Helper()
	if want.Equal(got) {
		return
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(indented(t, want.Snapshot())),
		B:        difflib.SplitLines(indented(t, got.Snapshot())),
		FromFile: "Expected",
		ToFile:   "Actual",
		Context:  3,
	})
	t.Fatalf("scorecards differ:\n%s", diff)
}

func sampleGameData() *GameData {
	g := NewGameData()
	g.HomeTeam = "Cubs"
	g.VisitingTeam = "Cardinals"
	g.GameDate = "2026-04-12"
	g.GameNotes = "Rain delay in the 5th"
	g.Scores = Scores{Home: 5, Visiting: 3}
	g.SetPlayerField(TeamHome, 1, FieldName, "Hoerner")
	g.SetPlayerField(TeamHome, 1, FieldPosition, "2B")
	g.SetCell(TeamHome, 1, 1, ActionHit)
	g.SetCell(TeamHome, 1, 2, ActionOut)
	g.SetCell(TeamHome, 13, 1, ActionRun)
	g.SetPlayerField(TeamVisiting, 7, FieldName, "Goldschmidt")
	g.SetCell(TeamVisiting, 2, 1, ActionError)
	return g
}

func TestGameDataRoundTrip(t *testing.T) {
	g := sampleGameData()
	restored, warnings := RestoreGameData(g.Snapshot())
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	assertSameSnapshot(t, g, restored)

	// Through encoding/json as well.
	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	var decoded GameData
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	assertSameSnapshot(t, g, &decoded)
}

func TestRestoreEmpty(t *testing.T) {
	for _, in := range []string{"", "  ", "{}"} {
		g, warnings := RestoreGameData([]byte(in))
		if len(warnings) != 0 {
			t.Errorf("RestoreGameData(%q) warnings: %v", in, warnings)
		}
		assertSameSnapshot(t, NewGameData(), g)
	}
}

func TestRestoreCorrupt(t *testing.T) {
	g, warnings := RestoreGameData([]byte("not json"))
	if len(warnings) != 1 {
		t.Errorf("warnings = %v", warnings)
	}
	assertSameSnapshot(t, NewGameData(), g)
}

func TestRestoreMalformedEntries(t *testing.T) {
	in := `{
		"homeTeam": "Cubs",
		"visitingTeam": 42,
		"scores": {"home": 120, "visiting": -4},
		"home": {
			"1": {"name": "Hoerner", "1": "hit", "2": "homer", "3": null, "15": "out"},
			"x": {"1": "hit"},
			"2": "not an object"
		},
		"visiting": {"3": {"1": "NONE", "2": 7}}
	}`
	g, warnings := RestoreGameData([]byte(in))

	if g.HomeTeam != "Cubs" || g.VisitingTeam != "" {
		t.Errorf("teams = %q %q", g.HomeTeam, g.VisitingTeam)
	}
	if g.Scores != (Scores{Home: 99, Visiting: 0}) {
		t.Errorf("scores = %+v", g.Scores)
	}
	if g.Cell(TeamHome, 1, 1) != ActionHit || g.Cell(TeamHome, 1, 2) != ActionNone {
		t.Errorf("home player 1 = %v", g.Player(TeamHome, 1))
	}
	if g.Player(TeamHome, 1).Name != "Hoerner" {
		t.Errorf("name = %q", g.Player(TeamHome, 1).Name)
	}
	if g.Cell(TeamVisiting, 3, 1) != ActionNone {
		t.Errorf("none should restore as an empty cell")
	}

	joined := strings.Join(warnings, "\n")
	for _, want := range []string{
		"visitingTeam is not a string",
		"home score 120 clamped to 99",
		"visiting score -4 clamped to 0",
		"Invalid action found: homer for home player 1 inning 2",
		`ignoring key "15"`,
		`ignoring player key "x"`,
		"home player 2 is not an object",
		"Invalid action found: 7 for visiting player 3 inning 2",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing warning %q in:\n%s", want, joined)
		}
	}
}

func TestSnapshotFormat(t *testing.T) {
	g := NewGameData()
	g.SetCell(TeamHome, 1, 1, ActionDouble)
	var raw map[string]any
	if err := json.Unmarshal(g.Snapshot(), &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"homeTeam", "visitingTeam", "gameDate", "gameNotes", "scores", "home", "visiting"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("snapshot lacks %q", key)
		}
	}
	home := raw["home"].(map[string]any)
	if got := home["1"].(map[string]any)["1"]; got != "double" {
		t.Errorf("home.1.1 = %v", got)
	}
}

func TestSetCellNoneDeletes(t *testing.T) {
	g := NewGameData()
	g.SetCell(TeamHome, 1, 1, ActionHit)
	g.SetCell(TeamHome, 1, 1, ActionNone)
	if len(g.Player(TeamHome, 1).Innings) != 0 {
		t.Errorf("clearing a cell should remove the entry: %v", g.Player(TeamHome, 1).Innings)
	}
}

func TestCloneIsDeep(t *testing.T) {
	g := sampleGameData()
	c := g.Clone()
	c.SetCell(TeamHome, 1, 3, ActionRun)
	c.Player(TeamHome, 1).Name = "Swanson"
	if g.Cell(TeamHome, 1, 3) != ActionNone || g.Player(TeamHome, 1).Name != "Hoerner" {
		t.Error("mutating the clone changed the original")
	}
}

func TestValidateWarnings(t *testing.T) {
	g := NewGameData()
	g.SetCell(TeamVisiting, 20, 1, ActionHit)
	g.player(TeamHome, 1).Innings[3] = Action("bunt")
	warnings := g.Validate()
	if len(warnings) != 2 {
		t.Fatalf("warnings = %v", warnings)
	}
}
