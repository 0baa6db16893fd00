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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chromedp/chromedp"
	"github.com/pmezard/go-difflib/difflib"
)

// printSummaryJS reduces the print view to one line per header value and
// one line per player row that has anything recorded.
const printSummaryJS = `
(() => {
	const text = (el) => (el ? el.textContent.trim() : '');
	const lines = [text(document.querySelector('h1'))];
	for (const team of ['visiting', 'home']) {
		lines.push([team, text(document.getElementById(team + 'Team')), text(document.getElementById(team + 'Score'))].filter(Boolean).join(' '));
	}
	document.querySelectorAll('section.scorecard').forEach((s) => {
		s.querySelectorAll('tr.player-row').forEach((tr) => {
			const name = text(tr.querySelector('.player-name'));
			const pos = text(tr.querySelector('.player-position'));
			const cells = Array.from(tr.querySelectorAll('td.inning-cell')).map((td) => text(td) || '.');
			if (!name && !pos && cells.every((c) => c === '.')) {
				return;
			}
			lines.push([s.dataset.team, '#' + tr.dataset.player, name, pos, '|', ...cells].filter(Boolean).join(' '));
		});
	});
	return lines.join('\n');
})()
`

// VerifyPrintView opens the print view of a scorecard and compares its
// summary to a golden file. If UPDATE_GOLDENS is true, it writes the file instead.
func VerifyPrintView(t *testing.T, ctx context.Context, baseURL, id, goldenFilename string) {
	var actual string
	if err := chromedp.Run(ctx,
		chromedp.Navigate(baseURL+"/print/"+id),
		chromedp.WaitVisible(`section.scorecard`),
		chromedp.Evaluate(printSummaryJS, &actual),
	); err != nil {
		t.Fatalf("Failed to capture print view: %v", err)
	}
	actual = strings.TrimSpace(actual)

	goldenPath := filepath.Join("goldens", goldenFilename)

	if os.Getenv("UPDATE_GOLDENS") == "true" {
		if err := os.MkdirAll(filepath.Dir(goldenPath), 0755); err != nil {
			t.Fatalf("Failed to create golden directory: %v", err)
		}
		if err := os.WriteFile(goldenPath, []byte(actual+"\n"), 0644); err != nil {
			t.Fatalf("Failed to write golden file %s: %v", goldenPath, err)
		}
		t.Logf("Updated golden file: %s", goldenPath)
		return
	}

	expectedBytes, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			t.Errorf("Golden file missing: %s. Run with UPDATE_GOLDENS=true to create it.\nActual Content:\n%s", goldenPath, actual)
			return
		}
		t.Fatalf("Failed to read golden file %s: %v", goldenPath, err)
	}
	expected := strings.TrimSpace(string(expectedBytes))

	if actual != expected {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(expected),
			B:        difflib.SplitLines(actual),
			FromFile: "Expected",
			ToFile:   "Actual",
			Context:  3,
		})
		t.Errorf("Print view mismatch for %s:\n%s", goldenFilename, diff)
	}
}
