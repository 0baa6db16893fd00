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
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func renderDoc(t *testing.T, g *GameData) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	if err := RenderPrintView(&buf, g); err != nil {
		t.Fatalf("RenderPrintView: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		t.Fatalf("goquery: %v", err)
	}
	return doc
}

func TestPrintViewCells(t *testing.T) {
	doc := renderDoc(t, sampleGameData())

	if got := doc.Find("h1").Text(); got != "Cardinals at Cubs" {
		t.Errorf("title = %q", got)
	}
	if got := doc.Find("#homeScore").Text(); got != "5" {
		t.Errorf("home score = %q", got)
	}
	if got := doc.Find("#visitingTeam").Text(); got != "Cardinals" {
		t.Errorf("visiting team = %q", got)
	}

	cell := func(team Team, player, inning string) *goquery.Selection {
		return doc.Find(`section.scorecard[data-team="` + string(team) + `"] tr.player-row[data-player="` + player + `"] td[data-inning="` + inning + `"]`)
	}
	tests := []struct {
		team           Team
		player, inning string
		glyph, class   string
	}{
		{TeamHome, "1", "1", "H", "hit"},
		{TeamHome, "1", "2", "O", "out"},
		{TeamHome, "1", "3", "", ""},
		{TeamHome, "13", "1", "R", "run"},
		{TeamVisiting, "2", "1", "E", "error"},
	}
	for _, tt := range tests {
		sel := cell(tt.team, tt.player, tt.inning)
		if sel.Length() != 1 {
			t.Errorf("%s/%s/%s: found %d cells", tt.team, tt.player, tt.inning, sel.Length())
			continue
		}
		if got := sel.Text(); got != tt.glyph {
			t.Errorf("%s/%s/%s: glyph = %q, want %q", tt.team, tt.player, tt.inning, got, tt.glyph)
		}
		if tt.class != "" && !sel.HasClass(tt.class) {
			t.Errorf("%s/%s/%s: missing class %q", tt.team, tt.player, tt.inning, tt.class)
		}
	}

	row := doc.Find(`section[data-team="home"] tr.player-row[data-player="1"]`)
	if got := row.Find(".player-name").Text(); got != "Hoerner" {
		t.Errorf("name = %q", got)
	}
	if got := row.Find(".player-position").Text(); got != "2B" {
		t.Errorf("position = %q", got)
	}
	if got := doc.Find(".game-notes p").Text(); got != "Rain delay in the 5th" {
		t.Errorf("notes = %q", got)
	}
}

func TestPrintViewEmpty(t *testing.T) {
	doc := renderDoc(t, NewGameData())

	if got := doc.Find("h1").Text(); got != "Baseball Scorecard" {
		t.Errorf("title = %q", got)
	}
	for _, team := range Teams {
		rows := doc.Find(`section[data-team="` + string(team) + `"] tr.player-row`)
		if rows.Length() != DefaultPlayers {
			t.Errorf("%s rows = %d", team, rows.Length())
		}
		if cells := rows.First().Find("td.inning-cell"); cells.Length() != MaxInnings {
			t.Errorf("%s cells = %d", team, cells.Length())
		}
	}
	if doc.Find(".game-notes").Length() != 0 {
		t.Error("notes section rendered without notes")
	}
}

func TestPrintViewExtraPlayersAndEscaping(t *testing.T) {
	g := NewGameData()
	g.HomeTeam = "<script>alert(1)</script>"
	g.SetCell(TeamVisiting, 20, 1, ActionTriple)

	var buf bytes.Buffer
	if err := RenderPrintView(&buf, g); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "<script>alert") {
		t.Error("team name not escaped")
	}
	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	rows := doc.Find(`section[data-team="visiting"] tr.player-row`)
	if rows.Length() != DefaultPlayers+1 {
		t.Errorf("visiting rows = %d", rows.Length())
	}
	if got := rows.Last().AttrOr("data-player", ""); got != "20" {
		t.Errorf("last row = %q", got)
	}
	if got := rows.Last().Find(`td[data-inning="1"]`).Text(); got != "T" {
		t.Errorf("extra player glyph = %q", got)
	}
}
