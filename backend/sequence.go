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

import "fmt"

// Both the inning cells of a player and the inning headers unlock as a
// contiguous prefix: position n is reachable once n-1 is filled. The two
// share these helpers but keep separate state.

// prefixAllows reports whether position n may be touched.
func prefixAllows(n int, filled func(int) bool) bool {
	if n < 1 {
		return false
	}
	return n == 1 || filled(n-1)
}

// firstUnset returns the first position in [1, limit] that is not filled,
// or 0 when every position is.
func firstUnset(limit int, filled func(int) bool) int {
	for i := 1; i <= limit; i++ {
		if !filled(i) {
			return i
		}
	}
	return 0
}

func (g *GameData) cellFilled(team Team, player int) func(int) bool {
	return func(inning int) bool {
		return g.Cell(team, player, inning) != ActionNone
	}
}

// IsInningAllowed reports whether the cell (team, player, inning) may be
// edited: inning 1 always, any later inning only when the previous one
// holds an action. It is evaluated against the current data every time.
func (g *GameData) IsInningAllowed(team Team, player, inning int) bool {
	return prefixAllows(inning, g.cellFilled(team, player))
}

// NextAllowedInning returns the first empty inning of a player. When all
// innings are filled it returns 1 with complete set.
func (g *GameData) NextAllowedInning(team Team, player int) (inning int, complete bool) {
	if n := firstUnset(MaxInnings, g.cellFilled(team, player)); n > 0 {
		return n, false
	}
	return 1, true
}

// HeaderOutcome is the result of clicking an inning header.
type HeaderOutcome int

const (
	HeaderRejected HeaderOutcome = iota
	HeaderSelected
	HeaderDeselected
)

// HeaderSequencer tracks which inning headers are marked active. The active
// set is always {1..Active}. It is display state only and is not persisted.
type HeaderSequencer struct {
	Active     int
	PlayerInfo bool
}

func (s *HeaderSequencer) filled(n int) bool {
	return n <= s.Active
}

// Click applies a click on header inning and returns the notification text
// for it. Rejected clicks leave the selection unchanged and return a
// *SequenceError.
func (s *HeaderSequencer) Click(inning int) (HeaderOutcome, string, error) {
	switch {
	case inning < 1 || inning > MaxInnings:
		return HeaderRejected, "", fmt.Errorf("%w: inning %d", ErrOutOfRange, inning)

	case s.Active > 0 && inning == s.Active:
		s.Active = inning - 1
		if s.Active == 0 {
			s.PlayerInfo = false
			return HeaderDeselected, msgAllDeselected, nil
		}
		return HeaderDeselected, fmt.Sprintf("Innings %d-%d deselected", inning, MaxInnings), nil

	case prefixAllows(inning, s.filled) && !s.filled(inning):
		s.Active = inning
		if inning == 1 {
			return HeaderSelected, "Inning 1 selected", nil
		}
		return HeaderSelected, fmt.Sprintf("Innings 1-%d selected", inning), nil
	}

	err := &SequenceError{Target: inning, Next: s.Active + 1, Header: true}
	if s.Active == 0 {
		return HeaderRejected, msgStartInning, err
	}
	return HeaderRejected, fmt.Sprintf("Please select Inning %d next", s.Active+1), err
}

// ClickPlayerInfo toggles the player-info header and deselects every inning header.
func (s *HeaderSequencer) ClickPlayerInfo() {
	s.PlayerInfo = !s.PlayerInfo
	s.Active = 0
}

// Reset clears all header state.
func (s *HeaderSequencer) Reset() {
	*s = HeaderSequencer{}
}
