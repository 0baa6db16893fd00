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
	"testing"

	"github.com/chromedp/chromedp"
	"github.com/ttbt-io/scorecard/tools/e2ehelpers"
)

var CaptureScreenshot = e2ehelpers.CaptureScreenshot
var SelfSignedCert = e2ehelpers.SelfSignedCert
var AcceptDialogs = e2ehelpers.AcceptDialogs
var OpenScorecard = e2ehelpers.OpenScorecard
var Cell = e2ehelpers.CellSelector
var Header = e2ehelpers.HeaderSelector
var PlayerInput = e2ehelpers.PlayerInputSelector
var SetInput = e2ehelpers.SetInput
var WaitText = e2ehelpers.WaitText
var WaitValue = e2ehelpers.WaitValue
var WaitNotification = e2ehelpers.WaitNotification
var AssertScore = e2ehelpers.AssertScore
var JSClick = e2ehelpers.JSClick

func cycleTo(t *testing.T, selector, value string) chromedp.Action {
	var l e2ehelpers.Logger
	if t != nil {
		l = t
	}
	return e2ehelpers.CycleTo(l, selector, value)
}

func waitUntilDisplayNone(selector string) chromedp.Tasks {
	return e2ehelpers.WaitUntilDisplayNone(selector)
}
