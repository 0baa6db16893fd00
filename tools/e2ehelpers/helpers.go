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

package e2ehelpers

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Logger interface allows passing *testing.T or log.Printf
type Logger interface {
	Logf(format string, args ...any)
}

// CaptureScreenshot captures a screenshot and saves it to the specified filename.
func CaptureScreenshot(ctx context.Context, filename string) error {
	var buf []byte
	if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create directory for screenshot: %w", err)
	}

	if err := os.WriteFile(filename, buf, 0644); err != nil {
		return fmt.Errorf("failed to write screenshot to file: %w", err)
	}
	log.Printf("Saved screenshot to %s", filename)
	return nil
}

func DisableCSSAnimations() chromedp.ActionFunc {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		return chromedp.Evaluate(`
                        const style = document.createElement('style');
                        style.innerHTML = '*{-webkit-transition-duration:0s!important;transition-duration:0s!important;-webkit-animation-duration:0s!important;animation-duration:0s!important;}';
                        document.head.appendChild(style);
                `, nil).Do(ctx)
	})
}

// AcceptDialogs answers every JavaScript confirm() with OK.
func AcceptDialogs(ctx context.Context) {
	chromedp.ListenTarget(ctx, func(ev any) {
		if _, ok := ev.(*page.EventJavascriptDialogOpening); ok {
			go func() {
				if err := chromedp.Run(ctx, page.HandleJavaScriptDialog(true)); err != nil {
					log.Printf("AcceptDialogs: %v", err)
				}
			}()
		}
	})
}

// --- Scorecard ---

// CellSelector returns the selector of one inning cell of the grid.
func CellSelector(team string, player, inning int) string {
	return fmt.Sprintf(`td[data-team="%s"][data-player="%d"][data-inning="%d"]`, team, player, inning)
}

// HeaderSelector returns the selector of an inning header.
func HeaderSelector(inning int) string {
	return fmt.Sprintf(`th[data-header="%d"]`, inning)
}

// PlayerInputSelector returns the selector of a player's name or position input.
func PlayerInputSelector(team string, player int, key string) string {
	return fmt.Sprintf(`tr[data-team="%s"][data-player="%d"] input[data-key="%s"]`, team, player, key)
}

// OpenScorecard loads the scorecard page and waits for the grids and the
// live connection.
func OpenScorecard(ctx context.Context, baseURL, id string) error {
	url := baseURL + "/"
	if id != "" {
		url += "?id=" + id
	}
	return chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(CellSelector("home", 1, 1)),
		DisableCSSAnimations(),
		chromedp.Poll(`socket !== null && socket.readyState === WebSocket.OPEN`, nil,
			chromedp.WithPollingInterval(100*time.Millisecond), chromedp.WithPollingTimeout(5*time.Second)),
	)
}

// SetInput replaces the value of an input and fires its change event.
func SetInput(selector, value string) chromedp.Action {
	return chromedp.Evaluate(fmt.Sprintf(`
		(() => {
			const el = document.querySelector(%q);
			if (!el) throw new Error('SetInput: Element not found: ' + %q);
			el.value = %q;
			el.dispatchEvent(new Event('change', {bubbles: true}));
		})()
	`, selector, selector, value), nil)
}

// WaitText waits until the trimmed text of selector equals want.
func WaitText(selector, want string) chromedp.Action {
	return chromedp.Poll(fmt.Sprintf(`
		(() => {
			const el = document.querySelector(%q);
			return !!el && el.textContent.trim() === %q;
		})()
	`, selector, want), nil, chromedp.WithPollingInterval(100*time.Millisecond), chromedp.WithPollingTimeout(5*time.Second))
}

// WaitValue waits until the value of the input selector equals want.
func WaitValue(selector, want string) chromedp.Action {
	return chromedp.Poll(fmt.Sprintf(`
		(() => {
			const el = document.querySelector(%q);
			return !!el && el.value === %q;
		})()
	`, selector, want), nil, chromedp.WithPollingInterval(100*time.Millisecond), chromedp.WithPollingTimeout(5*time.Second))
}

// WaitNotification waits for a notification whose text contains message.
func WaitNotification(message string) chromedp.Action {
	return chromedp.Poll(fmt.Sprintf(`
		Array.from(document.querySelectorAll('#notifications .notification'))
			.some(n => n.textContent.includes(%q))
	`, message), nil, chromedp.WithPollingInterval(50*time.Millisecond), chromedp.WithPollingTimeout(5*time.Second))
}

// AssertScore checks both score counters.
func AssertScore(ctx context.Context, visiting, home string) error {
	return chromedp.Run(ctx,
		WaitText(`#visitingScore`, visiting),
		WaitText(`#homeScore`, home),
	)
}

// JSClick clicks an element using JavaScript.
func JSClick(selector string) chromedp.Action {
	return chromedp.Evaluate(fmt.Sprintf(`
		(() => {
			const el = document.querySelector(%q);
			if (el) {
				el.dispatchEvent(new MouseEvent('click', {bubbles: true}));
			} else {
				throw new Error("JSClick: Element not found: " + %q);
			}
		})()
	`, selector, selector), nil)
}

// CycleTo clicks a cell until its glyph matches the target value. Each
// click waits for the server's update before the next one.
// l is optional (can be nil) if not used for logging.
func CycleTo(l Logger, selector, value string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		for range 8 {
			var currentText string
			if err := chromedp.Text(selector, &currentText, chromedp.ByQuery).Do(ctx); err != nil {
				return fmt.Errorf("failed to get text of %s: %w", selector, err)
			}
			currentText = strings.TrimSpace(currentText)

			if l != nil {
				l.Logf("cycleTo: cell %s current text: %q, target: %q", selector, currentText, value)
			}
			if currentText == value {
				return nil
			}
			if err := chromedp.Click(selector, chromedp.ByQuery).Do(ctx); err != nil {
				return fmt.Errorf("failed to click cell %s: %w", selector, err)
			}
			err := chromedp.Poll(fmt.Sprintf(`document.querySelector(%q).textContent.trim() !== %q`, selector, currentText), nil,
				chromedp.WithPollingInterval(50*time.Millisecond), chromedp.WithPollingTimeout(2*time.Second)).Do(ctx)
			if err != nil {
				return fmt.Errorf("cell %s did not change from %q: %w", selector, currentText, err)
			}
		}
		return fmt.Errorf("failed to cycle %s to %q", selector, value)
	})
}

// WaitUntilDisplayNone waits until the element is hidden (display: none) or removed.
func WaitUntilDisplayNone(selector string) chromedp.Tasks {
	return chromedp.Tasks{
		chromedp.ActionFunc(func(ctx context.Context) error {
			log.Printf("WaitUntilDisplayNone: %s", selector)
			ticker := time.NewTicker(100 * time.Millisecond)
			defer ticker.Stop()
			timeout := time.After(10 * time.Second)
			for {
				select {
				case <-ctx.Done():
					return fmt.Errorf("context cancelled while waiting for %s to have display: none", selector)
				case <-ticker.C:
					var display string
					err := chromedp.Evaluate(fmt.Sprintf(`
						(() => {
							const el = document.querySelector(%q);
							return el ? window.getComputedStyle(el).display : 'none';
						})()
					`, selector), &display).Do(ctx)
					if err != nil {
						return fmt.Errorf("error getting display style for %s: %w", selector, err)
					}
					if display == "none" {
						return nil
					}
				case <-timeout:
					return fmt.Errorf("timeout waiting for %s to have display: none (current display: visible)", selector)
				}
			}
		}),
	}
}
