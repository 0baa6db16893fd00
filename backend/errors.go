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

var (
	// ErrOutOfSequence is returned when an inning or header is edited before its predecessor.
	ErrOutOfSequence = errors.New("out of sequence")
	// ErrScoreBounds is returned when a score is already at 0 or 99.
	ErrScoreBounds = errors.New("score out of bounds")
	// ErrOutOfRange is returned for unknown teams, players or innings.
	ErrOutOfRange = errors.New("out of range")
	// ErrUnknownField is returned for a field key that is not part of the scorecard.
	ErrUnknownField = errors.New("unknown field")
	// ErrFieldTooLong is returned when a text field exceeds its limit.
	ErrFieldTooLong = errors.New("field too long")
	// ErrMalformedRequest is returned for request bodies that are not valid JSON.
	ErrMalformedRequest = errors.New("malformed request")
)

// SequenceError reports a rejected edit and the position that must be filled first.
type SequenceError struct {
	// Target is the inning the caller tried to edit.
	Target int
	// Next is the inning that has to be completed or selected next.
	Next int
	// Header is true for inning header selection, false for player cells.
	Header bool
}

func (e *SequenceError) Error() string {
	if e.Header {
		return fmt.Sprintf("header %d out of sequence, next is %d", e.Target, e.Next)
	}
	return fmt.Sprintf("inning %d out of sequence, complete inning %d first", e.Target, e.Next)
}

func (e *SequenceError) Unwrap() error {
	return ErrOutOfSequence
}
