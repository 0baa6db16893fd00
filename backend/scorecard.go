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
	"errors"
	"fmt"
)

// Scorecard applies user interactions to one GameData and mirrors every
// change to its Surface. It is not safe for concurrent use; a Hub owns it.
type Scorecard struct {
	data    *GameData
	headers HeaderSequencer
	surface Surface
}

// NewScorecard wraps data. A nil data starts an empty scorecard.
func NewScorecard(data *GameData, surface Surface) *Scorecard {
	if data == nil {
		data = NewGameData()
	}
	if surface == nil {
		surface = &updateRecorder{}
	}
	return &Scorecard{data: data, surface: surface}
}

// Data returns the authoritative record. Callers must not modify it.
func (sc *Scorecard) Data() *GameData {
	return sc.data
}

// Headers returns the current inning header selection.
func (sc *Scorecard) Headers() HeaderSequencer {
	return sc.headers
}

// Notify forwards a message to the surface.
func (sc *Scorecard) Notify(message string, severity Severity) {
	sc.surface.Notify(message, severity)
}

func checkCell(team Team, player, inning int) error {
	if team != TeamHome && team != TeamVisiting {
		return fmt.Errorf("%w: team %q", ErrOutOfRange, team)
	}
	if player < 1 || player > MaxPlayerSlot {
		return fmt.Errorf("%w: player %d", ErrOutOfRange, player)
	}
	if inning < 1 || inning > MaxInnings {
		return fmt.Errorf("%w: inning %d", ErrOutOfRange, inning)
	}
	return nil
}

// ClickCell advances the cell to its next action. Innings must be filled
// left to right; an out-of-sequence click changes nothing and returns a
// *SequenceError naming the inning to complete first.
func (sc *Scorecard) ClickCell(team Team, player, inning int) (Action, error) {
	if err := checkCell(team, player, inning); err != nil {
		return ActionNone, err
	}
	if !sc.data.IsInningAllowed(team, player, inning) {
		next, _ := sc.data.NextAllowedInning(team, player)
		sc.surface.Notify(fmt.Sprintf("Please complete Inning %d first for this player", next), SeverityError)
		return sc.data.Cell(team, player, inning), &SequenceError{Target: inning, Next: next}
	}
	next := NextAction(sc.data.Cell(team, player, inning))
	sc.data.SetCell(team, player, inning, next)
	sc.surface.CellChanged(team, player, inning, next)
	return next, nil
}

func fieldLimit(key string) int {
	switch key {
	case FieldHomeTeam, FieldVisitingTeam:
		return maxTeamNameLen
	case FieldGameDate:
		return maxDateLen
	case FieldGameNotes:
		return maxNotesLen
	case FieldName:
		return maxNameLen
	case FieldPosition:
		return maxPositionLen
	}
	return 0
}

func checkFieldLen(key, value string) error {
	if limit := fieldLimit(key); limit > 0 && len(value) > limit {
		return fmt.Errorf("%w: %s (max %d chars)", ErrFieldTooLong, key, limit)
	}
	return nil
}

// SetField edits a game-level text field.
func (sc *Scorecard) SetField(key, value string) error {
	if err := checkFieldLen(key, value); err != nil {
		return err
	}
	if err := sc.data.SetField(key, value); err != nil {
		return err
	}
	sc.surface.FieldChanged("", 0, key, value)
	return nil
}

// SetPlayerField edits a player's name or position.
func (sc *Scorecard) SetPlayerField(team Team, player int, key, value string) error {
	if err := checkCell(team, player, 1); err != nil {
		return err
	}
	if err := checkFieldLen(key, value); err != nil {
		return err
	}
	if err := sc.data.SetPlayerField(team, player, key, value); err != nil {
		return err
	}
	sc.surface.FieldChanged(team, player, key, value)
	return nil
}

// Increment adds a run to team. At MaxScore it warns and returns ErrScoreBounds.
func (sc *Scorecard) Increment(team Team) (int, error) {
	if err := checkCell(team, 1, 1); err != nil {
		return 0, err
	}
	ch := sc.data.Scores.Increment(team)
	if !ch.Changed {
		sc.surface.Notify(msgMaxScore, SeverityWarning)
		return ch.Value, ErrScoreBounds
	}
	sc.surface.ScoreChanged(team, ch.Value)
	if ch.Milestone {
		sc.surface.Notify(fmt.Sprintf("%s reaches %d runs!", team.Label(), ch.Value), SeveritySuccess)
	}
	return ch.Value, nil
}

// Decrement removes a run from team. At zero it warns and returns ErrScoreBounds.
func (sc *Scorecard) Decrement(team Team) (int, error) {
	if err := checkCell(team, 1, 1); err != nil {
		return 0, err
	}
	ch := sc.data.Scores.Decrement(team)
	if !ch.Changed {
		sc.surface.Notify(msgMinScore, SeverityWarning)
		return ch.Value, ErrScoreBounds
	}
	sc.surface.ScoreChanged(team, ch.Value)
	return ch.Value, nil
}

// ClickHeader extends or shrinks the active inning header selection.
func (sc *Scorecard) ClickHeader(inning int) (HeaderOutcome, error) {
	outcome, msg, err := sc.headers.Click(inning)
	if errors.Is(err, ErrOutOfRange) {
		return outcome, err
	}
	if err != nil {
		sc.surface.Notify(msg, SeverityError)
		return outcome, err
	}
	sc.surface.HeaderChanged(sc.headers.Active, sc.headers.PlayerInfo)
	sc.surface.Notify(msg, SeverityInfo)
	return outcome, nil
}

// ClickPlayerInfo toggles the player-info header.
func (sc *Scorecard) ClickPlayerInfo() {
	sc.headers.ClickPlayerInfo()
	sc.surface.HeaderChanged(sc.headers.Active, sc.headers.PlayerInfo)
}

// Clear empties every cell, field and score and resets the header selection.
func (sc *Scorecard) Clear() {
	sc.data = NewGameData()
	sc.headers.Reset()
	sc.surface.Restored(sc.data, sc.headers)
	sc.surface.Notify(msgCleared, SeveritySuccess)
}

// Load replaces the record with g, as read back from storage.
func (sc *Scorecard) Load(g *GameData) {
	if g == nil {
		g = NewGameData()
	}
	sc.data = g
	sc.surface.Restored(sc.data, sc.headers)
	sc.surface.Notify(msgLoaded, SeveritySuccess)
}
