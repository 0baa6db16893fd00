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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// maxRequestBody bounds every JSON request body.
const maxRequestBody = 1 << 16

// isValidScorecardID accepts the default scorecard and canonical UUIDs.
func isValidScorecardID(id string) bool {
	if id == DefaultScorecardID {
		return true
	}
	u, err := uuid.Parse(id)
	return err == nil && u.String() == strings.ToLower(id)
}

// newScorecardID returns a fresh random scorecard id.
func newScorecardID() string {
	return uuid.NewString()
}

// cellRequest is the body of a cell click.
type cellRequest struct {
	Team   string `json:"team"`
	Player int    `json:"player"`
	Inning int    `json:"inning"`
}

// fieldRequest is the body of a text field edit. Player is 0 for game fields.
type fieldRequest struct {
	Team   string `json:"team"`
	Player int    `json:"player"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// headerRequest is the body of an inning header click.
type headerRequest struct {
	Inning int `json:"inning"`
}

func decodeBody(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	if err := dec.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after JSON value", ErrMalformedRequest)
	}
	return nil
}

func validateInning(inning int) error {
	if inning < 1 || inning > MaxInnings {
		return fmt.Errorf("%w: inning %d", ErrOutOfRange, inning)
	}
	return nil
}

func validatePlayer(player int) error {
	if player < 1 || player > MaxPlayerSlot {
		return fmt.Errorf("%w: player %d", ErrOutOfRange, player)
	}
	return nil
}

// decodeCellCommand reads and validates a cell click.
func decodeCellCommand(r io.Reader) (Command, error) {
	var req cellRequest
	if err := decodeBody(r, &req); err != nil {
		return Command{}, err
	}
	team, err := ParseTeam(req.Team)
	if err != nil {
		return Command{}, err
	}
	if err := validatePlayer(req.Player); err != nil {
		return Command{}, err
	}
	if err := validateInning(req.Inning); err != nil {
		return Command{}, err
	}
	return Command{Team: team, Player: req.Player, Inning: req.Inning}, nil
}

// decodeFieldCommand reads and validates a text field edit.
func decodeFieldCommand(r io.Reader) (Command, error) {
	var req fieldRequest
	if err := decodeBody(r, &req); err != nil {
		return Command{}, err
	}
	if req.Player == 0 {
		if _, err := NewGameData().Field(req.Key); err != nil {
			return Command{}, err
		}
		if err := checkFieldLen(req.Key, req.Value); err != nil {
			return Command{}, err
		}
		return Command{Key: req.Key, Value: req.Value}, nil
	}
	team, err := ParseTeam(req.Team)
	if err != nil {
		return Command{}, err
	}
	if err := validatePlayer(req.Player); err != nil {
		return Command{}, err
	}
	if req.Key != FieldName && req.Key != FieldPosition {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownField, req.Key)
	}
	if err := checkFieldLen(req.Key, req.Value); err != nil {
		return Command{}, err
	}
	return Command{Team: team, Player: req.Player, Key: req.Key, Value: req.Value}, nil
}

// decodeHeaderCommand reads and validates a header click.
func decodeHeaderCommand(r io.Reader) (Command, error) {
	var req headerRequest
	if err := decodeBody(r, &req); err != nil {
		return Command{}, err
	}
	if err := validateInning(req.Inning); err != nil {
		return Command{}, err
	}
	return Command{Inning: req.Inning}, nil
}

// scoreCommand validates the path parameters of a score change.
func scoreCommand(team, op string) (Command, error) {
	t, err := ParseTeam(team)
	if err != nil || team == "" {
		return Command{}, fmt.Errorf("%w: team %q", ErrOutOfRange, team)
	}
	switch op {
	case "increment":
		return Command{Team: t, Delta: 1}, nil
	case "decrement":
		return Command{Team: t, Delta: -1}, nil
	}
	return Command{}, fmt.Errorf("%w: score operation %q", ErrOutOfRange, op)
}
