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
	"html/template"
	"io"
	"slices"
)

var printTemplate = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="/style.css">
</head>
<body class="print-view">
<header class="game-info">
  <h1>{{.Title}}</h1>
  <p class="game-date">{{.Data.GameDate}}</p>
  <table class="score-summary">
    <tr><th>Visiting</th><td id="visitingTeam">{{.Data.VisitingTeam}}</td><td id="visitingScore">{{.Data.Scores.Visiting}}</td></tr>
    <tr><th>Home</th><td id="homeTeam">{{.Data.HomeTeam}}</td><td id="homeScore">{{.Data.Scores.Home}}</td></tr>
  </table>
</header>
{{range .Grids}}
<section class="scorecard" data-team="{{.Team}}">
  <h2>{{.Label}}</h2>
  <table class="grid">
    <thead>
      <tr class="innings-header">
        <th>#</th><th>Player</th><th>Pos</th>
        {{range $.Innings}}<th class="inning-cell">{{.}}</th>{{end}}
      </tr>
    </thead>
    <tbody>
      {{range .Rows}}
      <tr class="player-row" data-player="{{.Number}}">
        <td class="player-number">{{.Number}}</td>
        <td class="player-name">{{.Name}}</td>
        <td class="player-position">{{.Position}}</td>
        {{range .Cells}}<td class="inning-cell {{.Class}}" data-inning="{{.Inning}}">{{.Glyph}}</td>{{end}}
      </tr>
      {{end}}
    </tbody>
  </table>
</section>
{{end}}
{{with .Data.GameNotes}}<section class="game-notes"><h2>Notes</h2><p>{{.}}</p></section>{{end}}
</body>
</html>
`))

type printCell struct {
	Inning int
	Glyph  string
	Class  string
}

type printRow struct {
	Number   int
	Name     string
	Position string
	Cells    []printCell
}

type printGrid struct {
	Team  Team
	Label string
	Rows  []printRow
}

type printPage struct {
	Title   string
	Data    *GameData
	Innings []int
	Grids   []printGrid
}

// printRows lists players 1..DefaultPlayers and any stored player beyond.
func printRows(g *GameData, team Team) []printRow {
	numbers := make([]int, 0, DefaultPlayers)
	for n := 1; n <= DefaultPlayers; n++ {
		numbers = append(numbers, n)
	}
	for _, n := range g.PlayerNumbers(team) {
		if !slices.Contains(numbers, n) {
			numbers = append(numbers, n)
		}
	}
	slices.Sort(numbers)

	rows := make([]printRow, 0, len(numbers))
	for _, n := range numbers {
		row := printRow{Number: n}
		if p := g.Player(team, n); p != nil {
			row.Name, row.Position = p.Name, p.Position
		}
		for inning := 1; inning <= MaxInnings; inning++ {
			a := g.Cell(team, n, inning)
			row.Cells = append(row.Cells, printCell{Inning: inning, Glyph: a.Glyph(), Class: a.Class()})
		}
		rows = append(rows, row)
	}
	return rows
}

// RenderPrintView writes a printable HTML rendering of g.
func RenderPrintView(w io.Writer, g *GameData) error {
	title := "Baseball Scorecard"
	if g.HomeTeam != "" || g.VisitingTeam != "" {
		title = g.VisitingTeam + " at " + g.HomeTeam
	}
	page := printPage{Title: title, Data: g}
	for i := 1; i <= MaxInnings; i++ {
		page.Innings = append(page.Innings, i)
	}
	for _, team := range Teams {
		page.Grids = append(page.Grids, printGrid{Team: team, Label: team.Label(), Rows: printRows(g, team)})
	}
	return printTemplate.Execute(w, page)
}
