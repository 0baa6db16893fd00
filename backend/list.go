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
	"cmp"
	"slices"

	"github.com/ttbt-io/scorecard/backend/search"
)

// matchScorecard reports whether s satisfies every criterion of q.
// Unknown filter keys never match.
func matchScorecard(q search.Query, s ScorecardSummary) bool {
	for _, f := range q.Filters {
		var ok bool
		switch f.Key {
		case "home":
			ok = f.Match(s.HomeTeam)
		case "visiting", "away":
			ok = f.Match(s.VisitingTeam)
		case "team":
			ok = f.Match(s.HomeTeam) || f.Match(s.VisitingTeam)
		case "date":
			ok = f.Match(s.GameDate)
		case "notes":
			ok = f.Match(s.GameNotes)
		case "id":
			ok = f.Match(s.ID)
		}
		if !ok {
			return false
		}
	}
	for _, text := range q.FreeText {
		if !search.ContainsFold(s.HomeTeam, text) &&
			!search.ContainsFold(s.VisitingTeam, text) &&
			!search.ContainsFold(s.GameNotes, text) {
			return false
		}
	}
	return true
}

// sortSummaries orders by sortBy (date, home, visiting), newest date first
// by default. order "asc" reverses the default direction.
func sortSummaries(list []ScorecardSummary, sortBy, order string) {
	key := func(s ScorecardSummary) string {
		switch sortBy {
		case "home":
			return s.HomeTeam
		case "visiting":
			return s.VisitingTeam
		}
		return s.GameDate
	}
	desc := order != "asc"
	if sortBy == "home" || sortBy == "visiting" {
		desc = order == "desc"
	}
	slices.SortStableFunc(list, func(a, b ScorecardSummary) int {
		c := cmp.Compare(key(a), key(b))
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		if desc {
			return -c
		}
		return c
	})
}

// ListPage is one page of the scorecard list.
type ListPage struct {
	Data []ScorecardSummary `json:"data"`
	Meta struct {
		Total  int `json:"total"`
		Offset int `json:"offset"`
		Limit  int `json:"limit"`
	} `json:"meta"`
}

// listScorecards filters, sorts and paginates the stored scorecards.
func listScorecards(ss *ScorecardStore, query, sortBy, order string, limit, offset int) (ListPage, error) {
	q := search.Parse(query)
	all := make([]ScorecardSummary, 0)
	for s, err := range ss.ListScorecards() {
		if err != nil {
			return ListPage{}, err
		}
		if matchScorecard(q, s) {
			all = append(all, s)
		}
	}
	sortSummaries(all, sortBy, order)

	var page ListPage
	page.Meta.Total = len(all)
	page.Meta.Offset = offset
	page.Meta.Limit = limit
	page.Data = make([]ScorecardSummary, 0)
	if offset < len(all) {
		page.Data = all[offset:min(offset+limit, len(all))]
	}
	return page, nil
}
