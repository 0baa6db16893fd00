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

// Scores holds the two running totals. Both stay within [MinScore, MaxScore].
type Scores struct {
	Home     int `json:"home"`
	Visiting int `json:"visiting"`
}

// ScoreChange describes the outcome of one increment or decrement.
type ScoreChange struct {
	Value int
	// Changed is false when the counter was already at its bound.
	Changed bool
	// Milestone is set when an increment lands on a positive multiple of ten.
	Milestone bool
}

func (s *Scores) ref(team Team) *int {
	if team == TeamVisiting {
		return &s.Visiting
	}
	return &s.Home
}

// Get returns the score of team.
func (s Scores) Get(team Team) int {
	return *s.ref(team)
}

// Increment adds one run unless the score is already MaxScore.
func (s *Scores) Increment(team Team) ScoreChange {
	v := s.ref(team)
	if *v >= MaxScore {
		return ScoreChange{Value: *v}
	}
	*v++
	return ScoreChange{
		Value:     *v,
		Changed:   true,
		Milestone: *v > 0 && *v%ScoreMilestoneRun == 0,
	}
}

// Decrement removes one run unless the score is already MinScore.
func (s *Scores) Decrement(team Team) ScoreChange {
	v := s.ref(team)
	if *v <= MinScore {
		return ScoreChange{Value: *v}
	}
	*v--
	return ScoreChange{Value: *v, Changed: true}
}

func clampScore(v int) int {
	return max(MinScore, min(MaxScore, v))
}
