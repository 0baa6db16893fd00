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

import "time"

const (
	CurrentAppVersion = "0.3.0"

	// DefaultScorecardID is the storage key of the scorecard opened when no id is given.
	DefaultScorecardID = "baseballScorecard"
)

// Grid dimensions
const (
	MaxInnings     = 14
	DefaultPlayers = 13
	// MaxPlayerSlot bounds the batting-order slot accepted from clients.
	MaxPlayerSlot = 99
)

// Score bounds
const (
	MinScore          = 0
	MaxScore          = 99
	ScoreMilestoneRun = 10
)

// DefaultSaveDelay is the quiet period before a debounced write.
const DefaultSaveDelay = 300 * time.Millisecond

// Field keys
const (
	FieldHomeTeam     = "homeTeam"
	FieldVisitingTeam = "visitingTeam"
	FieldGameDate     = "gameDate"
	FieldGameNotes    = "gameNotes"
	FieldName         = "name"
	FieldPosition     = "position"
)

// Field length limits (bytes)
const (
	maxTeamNameLen = 100
	maxDateLen     = 32
	maxNotesLen    = 4000
	maxNameLen     = 100
	maxPositionLen = 16
)

// Severity is the level attached to a user-facing notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification messages
const (
	msgSaved         = "Game saved successfully!"
	msgLoaded        = "Game loaded successfully!"
	msgCleared       = "Scorecard cleared successfully!"
	msgMaxScore      = "Maximum score reached (99)"
	msgMinScore      = "Score cannot go below 0"
	msgStartInning   = "Please start with Inning 1"
	msgAllDeselected = "All innings deselected"
	msgInternalError = "An error occurred. Please refresh the page if issues persist."
)
