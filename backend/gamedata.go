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
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// PlayerRecord holds one batting-order slot of one team.
// Innings is sparse: a missing entry is an empty cell.
type PlayerRecord struct {
	Name     string
	Position string
	Innings  map[int]Action
}

func newPlayerRecord() *PlayerRecord {
	return &PlayerRecord{Innings: make(map[int]Action)}
}

func (r *PlayerRecord) equal(o *PlayerRecord) bool {
	if r.Name != o.Name || r.Position != o.Position {
		return false
	}
	count := 0
	for inning, a := range r.Innings {
		if a == ActionNone {
			continue
		}
		count++
		if o.Innings[inning] != a {
			return false
		}
	}
	for _, a := range o.Innings {
		if a != ActionNone {
			count--
		}
	}
	return count == 0
}

// GameData is the authoritative record of one scorecard. Everything shown
// on the grid is a projection of it.
type GameData struct {
	HomeTeam     string
	VisitingTeam string
	GameDate     string
	GameNotes    string
	Scores       Scores
	Players      map[Team]map[int]*PlayerRecord
}

// NewGameData returns an empty scorecard.
func NewGameData() *GameData {
	return &GameData{
		Players: make(map[Team]map[int]*PlayerRecord),
	}
}

// Player returns the record of a player, or nil if nothing was ever recorded for it.
func (g *GameData) Player(team Team, player int) *PlayerRecord {
	return g.Players[team][player]
}

func (g *GameData) player(team Team, player int) *PlayerRecord {
	if g.Players == nil {
		g.Players = make(map[Team]map[int]*PlayerRecord)
	}
	roster, ok := g.Players[team]
	if !ok {
		roster = make(map[int]*PlayerRecord)
		g.Players[team] = roster
	}
	rec, ok := roster[player]
	if !ok {
		rec = newPlayerRecord()
		roster[player] = rec
	}
	return rec
}

// PlayerNumbers returns the recorded player slots of a team in batting order.
func (g *GameData) PlayerNumbers(team Team) []int {
	return slices.Sorted(maps.Keys(g.Players[team]))
}

// Cell returns the action recorded at (team, player, inning).
func (g *GameData) Cell(team Team, player, inning int) Action {
	rec := g.Player(team, player)
	if rec == nil {
		return ActionNone
	}
	return rec.Innings[inning]
}

// SetCell writes an action unconditionally. Callers validate sequencing first.
// Writing ActionNone, or anything outside the vocabulary, clears the cell.
func (g *GameData) SetCell(team Team, player, inning int, a Action) {
	rec := g.player(team, player)
	if a == ActionNone || !a.Valid() {
		delete(rec.Innings, inning)
		return
	}
	rec.Innings[inning] = a
}

func (g *GameData) scalarField(key string) (*string, error) {
	switch key {
	case FieldHomeTeam:
		return &g.HomeTeam, nil
	case FieldVisitingTeam:
		return &g.VisitingTeam, nil
	case FieldGameDate:
		return &g.GameDate, nil
	case FieldGameNotes:
		return &g.GameNotes, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownField, key)
}

// Field returns a scalar metadata value.
func (g *GameData) Field(key string) (string, error) {
	p, err := g.scalarField(key)
	if err != nil {
		return "", err
	}
	return *p, nil
}

// SetField writes a scalar metadata value (team names, date, notes).
func (g *GameData) SetField(key, value string) error {
	p, err := g.scalarField(key)
	if err != nil {
		return err
	}
	*p = value
	return nil
}

// SetPlayerField writes a player's name or position.
func (g *GameData) SetPlayerField(team Team, player int, key, value string) error {
	switch key {
	case FieldName:
		g.player(team, player).Name = value
	case FieldPosition:
		g.player(team, player).Position = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	return nil
}

// Clone returns a deep copy.
func (g *GameData) Clone() *GameData {
	c := *g
	c.Players = make(map[Team]map[int]*PlayerRecord, len(g.Players))
	for team, roster := range g.Players {
		r := make(map[int]*PlayerRecord, len(roster))
		for num, rec := range roster {
			cp := *rec
			cp.Innings = maps.Clone(rec.Innings)
			if cp.Innings == nil {
				cp.Innings = make(map[int]Action)
			}
			r[num] = &cp
		}
		c.Players[team] = r
	}
	return &c
}

// Equal reports structural equality. A missing team or inning is the same
// as an empty one.
func (g *GameData) Equal(o *GameData) bool {
	if g == nil || o == nil {
		return g == o
	}
	if g.HomeTeam != o.HomeTeam || g.VisitingTeam != o.VisitingTeam ||
		g.GameDate != o.GameDate || g.GameNotes != o.GameNotes || g.Scores != o.Scores {
		return false
	}
	for _, team := range Teams {
		a, b := g.Players[team], o.Players[team]
		if len(a) != len(b) {
			return false
		}
		for num, ra := range a {
			rb, ok := b[num]
			if !ok || !ra.equal(rb) {
				return false
			}
		}
	}
	return true
}

// Validate reports entries that the grid cannot display. It never modifies g.
func (g *GameData) Validate() []string {
	var warnings []string
	for _, team := range Teams {
		for _, num := range g.PlayerNumbers(team) {
			if num < 1 || num > DefaultPlayers {
				warnings = append(warnings, fmt.Sprintf("%s player %d is outside the %d-player grid", team, num, DefaultPlayers))
			}
			rec := g.Players[team][num]
			for _, inning := range slices.Sorted(maps.Keys(rec.Innings)) {
				if a := rec.Innings[inning]; !a.Valid() {
					warnings = append(warnings, fmt.Sprintf("Invalid action found: %s for %s player %d inning %d", a, team, num, inning))
				}
				if inning < 1 || inning > MaxInnings {
					warnings = append(warnings, fmt.Sprintf("%s player %d has inning %d outside 1-%d", team, num, inning, MaxInnings))
				}
			}
		}
	}
	return warnings
}

// Snapshot serializes g into the persistence format.
func (g *GameData) Snapshot() []byte {
	data, err := g.MarshalJSON()
	if err != nil {
		// Only strings and ints are encoded, this cannot happen.
		panic(err)
	}
	return data
}

// MarshalJSON encodes the flat persistence format:
//
//	{"homeTeam": ..., "scores": {...}, "home": {"1": {"name": ..., "1": "hit"}}, "visiting": {...}}
func (g *GameData) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		FieldHomeTeam:     g.HomeTeam,
		FieldVisitingTeam: g.VisitingTeam,
		FieldGameDate:     g.GameDate,
		FieldGameNotes:    g.GameNotes,
		"scores":          g.Scores,
	}
	for _, team := range Teams {
		players := make(map[string]map[string]string, len(g.Players[team]))
		for num, rec := range g.Players[team] {
			entry := make(map[string]string)
			if rec.Name != "" {
				entry[FieldName] = rec.Name
			}
			if rec.Position != "" {
				entry[FieldPosition] = rec.Position
			}
			for inning, a := range rec.Innings {
				if a != ActionNone && a.Valid() {
					entry[strconv.Itoa(inning)] = string(a)
				}
			}
			players[strconv.Itoa(num)] = entry
		}
		out[string(team)] = players
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the persistence format leniently. It only fails
// when data is not a JSON object at all.
func (g *GameData) UnmarshalJSON(data []byte) error {
	restored, _, err := decodeGameData(data)
	if err != nil {
		return err
	}
	*g = *restored
	return nil
}

// RestoreGameData rebuilds a scorecard from its persisted form. It never
// fails: whatever cannot be understood is dropped and reported in the
// returned warnings, and empty or corrupt input yields an empty scorecard.
func RestoreGameData(data []byte) (*GameData, []string) {
	if len(bytes.TrimSpace(data)) == 0 {
		return NewGameData(), nil
	}
	g, warnings, err := decodeGameData(data)
	if err != nil {
		return NewGameData(), append(warnings, err.Error())
	}
	return g, warnings
}

func decodeGameData(data []byte) (*GameData, []string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("invalid scorecard JSON: %w", err)
	}

	g := NewGameData()
	var warnings []string
	warnf := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	scalars := []struct {
		key string
		dst *string
	}{
		{FieldHomeTeam, &g.HomeTeam},
		{FieldVisitingTeam, &g.VisitingTeam},
		{FieldGameDate, &g.GameDate},
		{FieldGameNotes, &g.GameNotes},
	}
	for _, f := range scalars {
		v, ok := raw[f.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, f.dst); err != nil {
			*f.dst = ""
			warnf("%s is not a string", f.key)
		}
	}

	if v, ok := raw["scores"]; ok {
		var scores map[string]json.RawMessage
		if err := json.Unmarshal(v, &scores); err != nil {
			warnf("scores is not an object")
		}
		for _, team := range Teams {
			sv, ok := scores[string(team)]
			if !ok || isJSONNull(sv) {
				continue
			}
			var n float64
			if err := json.Unmarshal(sv, &n); err != nil {
				warnf("%s score is not a number", team)
				continue
			}
			val := int(n)
			if c := clampScore(val); c != val {
				warnf("%s score %d clamped to %d", team, val, c)
				val = c
			}
			*g.Scores.ref(team) = val
		}
	}

	for _, team := range Teams {
		v, ok := raw[string(team)]
		if !ok || isJSONNull(v) {
			continue
		}
		var players map[string]json.RawMessage
		if err := json.Unmarshal(v, &players); err != nil {
			warnf("%s players are not an object", team)
			continue
		}
		for _, key := range slices.Sorted(maps.Keys(players)) {
			num, err := strconv.Atoi(key)
			if err != nil || num < 1 || num > MaxPlayerSlot {
				warnf("%s: ignoring player key %q", team, key)
				continue
			}
			var fields map[string]json.RawMessage
			if err := json.Unmarshal(players[key], &fields); err != nil {
				warnf("%s player %d is not an object", team, num)
				continue
			}
			rec := g.player(team, num)
			for _, fk := range slices.Sorted(maps.Keys(fields)) {
				fv := fields[fk]
				switch fk {
				case FieldName, FieldPosition:
					var s string
					if err := json.Unmarshal(fv, &s); err != nil {
						warnf("%s player %d: %s is not a string", team, num, fk)
						continue
					}
					if fk == FieldName {
						rec.Name = s
					} else {
						rec.Position = s
					}
				default:
					inning, err := strconv.Atoi(fk)
					if err != nil || inning < 1 || inning > MaxInnings {
						warnf("%s player %d: ignoring key %q", team, num, fk)
						continue
					}
					if isJSONNull(fv) {
						continue
					}
					var s string
					if err := json.Unmarshal(fv, &s); err != nil {
						warnf("Invalid action found: %s for %s player %d inning %d", fv, team, num, inning)
						continue
					}
					a, ok := ParseAction(s)
					if !ok {
						warnf("Invalid action found: %s for %s player %d inning %d", s, team, num, inning)
						continue
					}
					if a != ActionNone {
						rec.Innings[inning] = a
					}
				}
			}
		}
	}
	return g, warnings, nil
}

func isJSONNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
