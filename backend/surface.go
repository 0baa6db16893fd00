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

// Surface receives every visible change of a scorecard. It is write-only:
// the scorecard never reads state back from what it rendered.
type Surface interface {
	CellChanged(team Team, player, inning int, a Action)
	// FieldChanged reports a metadata edit. player is 0 for game-level fields.
	FieldChanged(team Team, player int, key, value string)
	ScoreChanged(team Team, value int)
	HeaderChanged(active int, playerInfo bool)
	// Restored asks the surface to redraw everything from g.
	Restored(g *GameData, headers HeaderSequencer)
	// Notify shows a message. Delivery is best-effort.
	Notify(message string, severity Severity)
}

// Update kinds
const (
	UpdateCell   = "cell"
	UpdateField  = "field"
	UpdateScore  = "score"
	UpdateHeader = "header"
	UpdateState  = "state"
	UpdateNotify = "notify"
)

// Update is one projected change, as sent to browsers.
type Update struct {
	Kind       string    `json:"kind"`
	Team       Team      `json:"team,omitempty"`
	Player     int       `json:"player,omitempty"`
	Inning     int       `json:"inning,omitempty"`
	Action     Action    `json:"action,omitempty"`
	Glyph      string    `json:"glyph,omitempty"`
	Key        string    `json:"key,omitempty"`
	Value      string    `json:"value,omitempty"`
	Score      *int      `json:"score,omitempty"`
	Active     *int      `json:"active,omitempty"`
	PlayerInfo bool      `json:"playerInfo,omitempty"`
	State      *GameData `json:"state,omitempty"`
	Message    string    `json:"message,omitempty"`
	Severity   Severity  `json:"severity,omitempty"`
}

func intPtr(v int) *int {
	return &v
}

// updateRecorder is a Surface that buffers updates until they are taken.
type updateRecorder struct {
	updates []Update
}

func (r *updateRecorder) CellChanged(team Team, player, inning int, a Action) {
	r.updates = append(r.updates, Update{
		Kind:   UpdateCell,
		Team:   team,
		Player: player,
		Inning: inning,
		Action: a,
		Glyph:  a.Glyph(),
	})
}

func (r *updateRecorder) FieldChanged(team Team, player int, key, value string) {
	r.updates = append(r.updates, Update{Kind: UpdateField, Team: team, Player: player, Key: key, Value: value})
}

func (r *updateRecorder) ScoreChanged(team Team, value int) {
	r.updates = append(r.updates, Update{Kind: UpdateScore, Team: team, Score: intPtr(value)})
}

func (r *updateRecorder) HeaderChanged(active int, playerInfo bool) {
	r.updates = append(r.updates, Update{Kind: UpdateHeader, Active: intPtr(active), PlayerInfo: playerInfo})
}

func (r *updateRecorder) Restored(g *GameData, headers HeaderSequencer) {
	r.updates = append(r.updates, Update{
		Kind:       UpdateState,
		State:      g.Clone(),
		Active:     intPtr(headers.Active),
		PlayerInfo: headers.PlayerInfo,
	})
}

func (r *updateRecorder) Notify(message string, severity Severity) {
	r.updates = append(r.updates, Update{Kind: UpdateNotify, Message: message, Severity: severity})
}

// Take returns the buffered updates and empties the buffer.
func (r *updateRecorder) Take() []Update {
	u := r.updates
	r.updates = nil
	return u
}
