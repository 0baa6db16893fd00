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

package e2e

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

func scoreButton(team, op string) string {
	return fmt.Sprintf(`.score-counter[data-team="%s"] .score-btn[data-op="%s"]`, team, op)
}

func waitActiveHeaders(n int) chromedp.Action {
	return chromedp.Poll(fmt.Sprintf(`document.querySelectorAll('th[data-header].active-inning').length === %d`, n), nil,
		chromedp.WithPollingInterval(50*time.Millisecond), chromedp.WithPollingTimeout(5*time.Second))
}

func TestScorecardWorkflow(t *testing.T) {
	ctx, cancel := newBrowser(t, 60*time.Second)
	defer cancel()
	server := startTestServer(t)

	runStep(t, ctx, "Open scorecard",
		chromedp.ActionFunc(func(ctx context.Context) error {
			return OpenScorecard(ctx, server.URL, "")
		}),
	)

	runStep(t, ctx, "Game and player info",
		SetInput(`#visitingTeam`, "Cardinals"),
		SetInput(`#homeTeam`, "Cubs"),
		SetInput(PlayerInput("home", 1, "name"), "Hoerner"),
		SetInput(PlayerInput("home", 1, "position"), "2B"),
	)

	runStep(t, ctx, "Record innings",
		cycleTo(t, Cell("home", 1, 1), "H"),
		cycleTo(t, Cell("home", 1, 2), "O"),
		cycleTo(t, Cell("visiting", 2, 1), "E"),
	)

	runStep(t, ctx, "Out of sequence",
		chromedp.Click(Cell("home", 2, 3)),
		WaitNotification("Please complete Inning 1 first for this player"),
		WaitText(Cell("home", 2, 3), ""),
	)

	runStep(t, ctx, "Score counters",
		chromedp.Click(scoreButton("home", "increment")),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return AssertScore(ctx, "0", "1")
		}),
		chromedp.Click(scoreButton("visiting", "decrement")),
		WaitNotification("Score cannot go below 0"),
	)

	runStep(t, ctx, "Inning headers",
		chromedp.Click(Header(2)),
		WaitNotification("Please start with Inning 1"),
		chromedp.Click(Header(1)),
		WaitNotification("Inning 1 selected"),
		chromedp.Click(Header(2)),
		waitActiveHeaders(2),
		chromedp.Click(Header(2)),
		waitActiveHeaders(1),
	)

	runStep(t, ctx, "Save",
		chromedp.Click(`#saveScorecard`),
		WaitNotification("Game saved successfully!"),
	)

	runStep(t, ctx, "Reload restores the scorecard",
		chromedp.ActionFunc(func(ctx context.Context) error {
			return OpenScorecard(ctx, server.URL, "")
		}),
		WaitText(Cell("home", 1, 1), "H"),
		WaitText(Cell("home", 1, 2), "O"),
		WaitValue(`#homeTeam`, "Cubs"),
		WaitValue(PlayerInput("home", 1, "name"), "Hoerner"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return AssertScore(ctx, "0", "1")
		}),
	)

	VerifyPrintView(t, ctx, server.URL, "baseballScorecard", "print_view.golden")
}

func TestClearScorecard(t *testing.T) {
	ctx, cancel := newBrowser(t, 60*time.Second)
	defer cancel()
	server := startTestServer(t)
	AcceptDialogs(ctx)

	runStep(t, ctx, "Fill",
		chromedp.ActionFunc(func(ctx context.Context) error {
			return OpenScorecard(ctx, server.URL, "")
		}),
		SetInput(`#gameNotes`, "Rain delay"),
		cycleTo(t, Cell("visiting", 1, 1), "D"),
		chromedp.Click(scoreButton("visiting", "increment")),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return AssertScore(ctx, "1", "0")
		}),
	)

	runStep(t, ctx, "Clear",
		chromedp.Click(`#clearScorecard`),
		WaitNotification("Scorecard cleared successfully!"),
		WaitText(Cell("visiting", 1, 1), ""),
		WaitValue(`#gameNotes`, ""),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return AssertScore(ctx, "0", "0")
		}),
		waitUntilDisplayNone(`#notifications .notification`),
	)
}

func TestLiveUpdates(t *testing.T) {
	ctx, cancel := newBrowser(t, 60*time.Second)
	defer cancel()
	server := startTestServer(t)

	other, cancelOther := chromedp.NewContext(ctx)
	defer cancelOther()

	runStep(t, ctx, "Open first tab",
		chromedp.ActionFunc(func(ctx context.Context) error {
			return OpenScorecard(ctx, server.URL, "")
		}),
	)
	runStep(t, other, "Open second tab",
		chromedp.ActionFunc(func(ctx context.Context) error {
			return OpenScorecard(ctx, server.URL, "")
		}),
	)

	runStep(t, ctx, "Edit in first tab",
		cycleTo(t, Cell("home", 4, 1), "T"),
		SetInput(`#visitingTeam`, "Mets"),
	)
	runStep(t, other, "Seen in second tab",
		WaitText(Cell("home", 4, 1), "T"),
		WaitValue(`#visitingTeam`, "Mets"),
	)

	runStep(t, other, "Edit in second tab",
		JSClick(scoreButton("home", "increment")),
	)
	runStep(t, ctx, "Seen in first tab",
		chromedp.ActionFunc(func(ctx context.Context) error {
			return AssertScore(ctx, "0", "1")
		}),
	)
}

func TestSeparateScorecards(t *testing.T) {
	ctx, cancel := newBrowser(t, 60*time.Second)
	defer cancel()
	server := startTestServer(t)

	var id string
	runStep(t, ctx, "Create scorecard",
		chromedp.Navigate(server.URL+"/"),
		chromedp.Evaluate(`fetch('/api/scorecards', {method: 'POST'}).then((r) => r.json()).then((j) => j.id)`, &id,
			func(p *runtime.EvaluateParams) *runtime.EvaluateParams { return p.WithAwaitPromise(true) }),
	)
	if id == "" {
		t.Fatal("no scorecard id returned")
	}

	runStep(t, ctx, "Edit new scorecard",
		chromedp.ActionFunc(func(ctx context.Context) error {
			return OpenScorecard(ctx, server.URL, id)
		}),
		cycleTo(t, Cell("home", 1, 1), "H"),
	)

	runStep(t, ctx, "Default scorecard untouched",
		chromedp.ActionFunc(func(ctx context.Context) error {
			return OpenScorecard(ctx, server.URL, "")
		}),
		WaitText(Cell("home", 1, 1), ""),
	)
}
