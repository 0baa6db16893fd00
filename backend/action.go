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
	"fmt"
	"strings"
)

// Action is the batting outcome recorded in one inning cell.
type Action string

// The zero value ActionNone is an empty cell.
const (
	ActionNone   Action = ""
	ActionHit    Action = "hit"
	ActionDouble Action = "double"
	ActionTriple Action = "triple"
	ActionRun    Action = "run"
	ActionError  Action = "error"
	ActionOut    Action = "out"
)

// actionCycle is the order a cell steps through on each click.
var actionCycle = [...]Action{
	ActionNone,
	ActionHit,
	ActionDouble,
	ActionTriple,
	ActionRun,
	ActionError,
	ActionOut,
}

var actionGlyphs = map[Action]string{
	ActionHit:    "H",
	ActionDouble: "D",
	ActionTriple: "T",
	ActionRun:    "R",
	ActionError:  "E",
	ActionOut:    "O",
}

// ParseAction converts a persisted or client-supplied string to an Action.
// The empty string, "none" and "clear" all mean an empty cell.
func ParseAction(s string) (Action, bool) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case "", "none", "clear":
		return ActionNone, true
	case ActionHit, ActionDouble, ActionTriple, ActionRun, ActionError, ActionOut:
		return a, true
	default:
		return ActionNone, false
	}
}

// NextAction returns the successor of current in the click cycle.
// Unknown values restart the cycle as if the cell were empty.
func NextAction(current Action) Action {
	idx := 0
	for i, a := range actionCycle {
		if a == current {
			idx = i
			break
		}
	}
	return actionCycle[(idx+1)%len(actionCycle)]
}

// Valid reports whether a is a member of the vocabulary, including ActionNone.
func (a Action) Valid() bool {
	if a == ActionNone {
		return true
	}
	_, ok := actionGlyphs[a]
	return ok
}

// Glyph is the one-letter label shown in the cell.
func (a Action) Glyph() string {
	return actionGlyphs[a]
}

// Class is the style classification of the cell. Empty cells have none.
func (a Action) Class() string {
	if a == ActionNone || !a.Valid() {
		return ""
	}
	return string(a)
}

func (a Action) String() string {
	if a == ActionNone {
		return "none"
	}
	return string(a)
}

// Team identifies one side of the scorecard.
type Team string

const (
	TeamHome     Team = "home"
	TeamVisiting Team = "visiting"
)

// Teams lists both sides in display order.
var Teams = []Team{TeamHome, TeamVisiting}

// ParseTeam accepts "home" and "visiting". An empty value means home,
// which is what an untagged row on the grid belongs to.
func ParseTeam(s string) (Team, error) {
	switch t := Team(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return TeamHome, nil
	case TeamHome, TeamVisiting:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown team %q", ErrOutOfRange, s)
	}
}

// Label is the human name used in notifications.
func (t Team) Label() string {
	if t == TeamVisiting {
		return "Visiting Team"
	}
	return "Home Team"
}
