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

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/c2FmZQ/storage"
	"github.com/chromedp/chromedp"
	"github.com/ttbt-io/scorecard/backend"
	"github.com/ttbt-io/scorecard/tools/e2ehelpers"
)

var (
	chromeURL = flag.String("chrome-url", "", "The url of the remote debugging port")
	outputDir = flag.String("output-dir", "/screenshots", "Directory to save screenshots")
	demoOnly  = flag.Bool("demo-only", false, "Only write demo-scorecard.json to the output directory")
)

// Scorecard ids served by the screenshot server.
const (
	demoID   = "7d0c5a52-3f1e-4b8a-9c6d-2e4f8a1b3c5d"
	manualID = "0a9b8c7d-6e5f-4a3b-8c2d-1e0f9a8b7c6d"
)

func main() {
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Failed to create output dir: %v", err)
	}

	demo, err := constructDemoScorecard()
	if err != nil {
		log.Fatalf("Failed to construct demo scorecard: %v", err)
	}
	if err := os.WriteFile(filepath.Join(*outputDir, "demo-scorecard.json"), demo.Snapshot(), 0644); err != nil {
		log.Fatalf("Failed to write demo scorecard: %v", err)
	}
	if *demoOnly {
		log.Println("Demo scorecard written.")
		return
	}

	if *chromeURL == "" {
		log.Fatal("--chrome-url must be set")
	}

	baseURL, shutdown := startServer(demo)
	defer shutdown()
	log.Printf("Server started at %s", baseURL)

	ctx, cancel := chromedp.NewRemoteAllocator(context.Background(), *chromeURL)
	defer cancel()

	ctx, cancel = chromedp.NewContext(ctx, chromedp.WithLogf(log.Printf))
	defer cancel()

	ctx, cancel = context.WithTimeout(ctx, 120*time.Second)
	defer cancel()

	log.Println("Starting screenshot generation...")

	if err := generateScreenshots(ctx, baseURL); err != nil {
		log.Fatalf("Failed to generate screenshots: %v", err)
	}
	if err := generateManualImages(ctx, baseURL); err != nil {
		log.Fatalf("Failed to generate manual images: %v", err)
	}

	log.Println("Screenshots generated successfully.")
}

// constructDemoScorecard fills a scorecard the way a scorer would after
// three innings.
func constructDemoScorecard() (*backend.GameData, error) {
	g := backend.NewGameData()
	fields := map[string]string{
		backend.FieldVisitingTeam: "Cardinals",
		backend.FieldHomeTeam:     "Cubs",
		backend.FieldGameDate:     "2026-04-03",
		backend.FieldGameNotes:    "Wrigley Field. Wind blowing out.",
	}
	for k, v := range fields {
		if err := g.SetField(k, v); err != nil {
			return nil, err
		}
	}

	rosters := map[backend.Team][][2]string{
		backend.TeamVisiting: {
			{"Nootbaar", "LF"}, {"Donovan", "2B"}, {"Goldschmidt", "1B"}, {"Arenado", "3B"},
			{"Contreras", "C"}, {"Walker", "RF"}, {"Winn", "SS"}, {"Edman", "CF"}, {"Gibson", "P"},
		},
		backend.TeamHome: {
			{"Hoerner", "2B"}, {"Happ", "LF"}, {"Suzuki", "RF"}, {"Bellinger", "CF"},
			{"Busch", "1B"}, {"Morel", "3B"}, {"Swanson", "SS"}, {"Amaya", "C"}, {"Steele", "P"},
		},
	}
	for team, roster := range rosters {
		for i, p := range roster {
			if err := g.SetPlayerField(team, i+1, backend.FieldName, p[0]); err != nil {
				return nil, err
			}
			if err := g.SetPlayerField(team, i+1, backend.FieldPosition, p[1]); err != nil {
				return nil, err
			}
		}
	}

	plays := []struct {
		team   backend.Team
		player int
		inning int
		action backend.Action
	}{
		{backend.TeamVisiting, 1, 1, backend.ActionOut},
		{backend.TeamVisiting, 2, 1, backend.ActionHit},
		{backend.TeamVisiting, 3, 1, backend.ActionOut},
		{backend.TeamVisiting, 4, 1, backend.ActionOut},
		{backend.TeamHome, 1, 1, backend.ActionDouble},
		{backend.TeamHome, 2, 1, backend.ActionRun},
		{backend.TeamHome, 3, 1, backend.ActionOut},
		{backend.TeamHome, 4, 1, backend.ActionOut},
		{backend.TeamHome, 5, 1, backend.ActionOut},
		{backend.TeamVisiting, 1, 2, backend.ActionError},
		{backend.TeamVisiting, 2, 2, backend.ActionTriple},
		{backend.TeamVisiting, 3, 2, backend.ActionOut},
		{backend.TeamHome, 1, 2, backend.ActionHit},
		{backend.TeamHome, 2, 2, backend.ActionOut},
		{backend.TeamVisiting, 4, 3, backend.ActionOut},
	}
	for _, p := range plays {
		g.SetCell(p.team, p.player, p.inning, p.action)
	}
	g.Scores = backend.Scores{Visiting: 1, Home: 2}

	if problems := g.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("demo scorecard is invalid: %v", problems)
	}
	return g, nil
}

func debugFailure(ctx context.Context, name string) {
	filename := filepath.Join(*outputDir, "debug-"+name+".png")
	if err := e2ehelpers.CaptureScreenshot(ctx, filename); err != nil {
		log.Printf("Failed to capture debug screenshot: %v", err)
	}
}

// runAction executes one step with a timeout and keeps a screenshot of
// the page when the step fails.
func runAction(ctx context.Context, name string, action chromedp.Action, timeout time.Duration) error {
	log.Printf("Executing action: %s", name)
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := chromedp.Run(stepCtx, action); err != nil {
		log.Printf("Action '%s' failed: %v", name, err)
		debugFailure(ctx, name)
		return err
	}
	return nil
}

func generateScreenshots(ctx context.Context, baseURL string) error {
	steps := []struct {
		name   string
		action chromedp.Action
		file   string
	}{
		{
			name: "Scorecard",
			action: chromedp.Tasks{
				chromedp.EmulateViewport(1400, 1000),
				chromedp.ActionFunc(func(ctx context.Context) error {
					return e2ehelpers.OpenScorecard(ctx, baseURL, demoID)
				}),
				e2ehelpers.WaitText(e2ehelpers.CellSelector("home", 1, 1), "D"),
			},
			file: "scorecard.png",
		},
		{
			name: "Active innings",
			action: chromedp.Tasks{
				chromedp.Click(e2ehelpers.HeaderSelector(1)),
				chromedp.Click(e2ehelpers.HeaderSelector(2)),
				chromedp.Click(e2ehelpers.HeaderSelector(3)),
				e2ehelpers.WaitNotification("Innings 1-3 selected"),
			},
			file: "active-innings.png",
		},
		{
			name: "Out of sequence",
			action: chromedp.Tasks{
				chromedp.Click(e2ehelpers.CellSelector("home", 9, 4)),
				e2ehelpers.WaitNotification("Please complete Inning 1 first for this player"),
			},
			file: "out-of-sequence.png",
		},
		{
			name: "Print view",
			action: chromedp.Tasks{
				chromedp.Navigate(baseURL + "/print/" + demoID),
				chromedp.WaitVisible(`section.scorecard`),
			},
			file: "print-view.png",
		},
		{
			name: "Mobile",
			action: chromedp.Tasks{
				chromedp.EmulateViewport(412, 915),
				chromedp.ActionFunc(func(ctx context.Context) error {
					return e2ehelpers.OpenScorecard(ctx, baseURL, demoID)
				}),
			},
			file: "scorecard-mobile.png",
		},
	}
	for _, s := range steps {
		if err := runAction(ctx, s.name, s.action, 20*time.Second); err != nil {
			return err
		}
		if err := e2ehelpers.CaptureScreenshot(ctx, filepath.Join(*outputDir, s.file)); err != nil {
			return err
		}
	}
	return nil
}

// generateManualImages captures single cells showing each action glyph,
// recorded on a fresh scorecard by clicking.
func generateManualImages(ctx context.Context, baseURL string) error {
	if err := runAction(ctx, "Open manual scorecard", chromedp.Tasks{
		chromedp.EmulateViewport(1400, 1000),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return e2ehelpers.OpenScorecard(ctx, baseURL, manualID)
		}),
	}, 20*time.Second); err != nil {
		return err
	}

	captureCell := func(selector, filename string) error {
		var buf []byte
		if err := chromedp.Run(ctx,
			chromedp.ScrollIntoView(selector),
			chromedp.Sleep(200*time.Millisecond),
			chromedp.Screenshot(selector, &buf),
		); err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(*outputDir, filename), buf, 0644)
	}

	if err := captureCell(e2ehelpers.CellSelector("home", 1, 1), "cell-empty.png"); err != nil {
		return err
	}
	glyphs := []struct {
		glyph string
		file  string
	}{
		{"H", "cell-hit.png"},
		{"D", "cell-double.png"},
		{"T", "cell-triple.png"},
		{"R", "cell-run.png"},
		{"E", "cell-error.png"},
		{"O", "cell-out.png"},
	}
	for i, g := range glyphs {
		sel := e2ehelpers.CellSelector("home", i+1, 1)
		log.Printf("Manual: %s", g.glyph)
		if err := runAction(ctx, "Cycle "+g.glyph, e2ehelpers.CycleTo(nil, sel, g.glyph), 10*time.Second); err != nil {
			return err
		}
		if err := captureCell(sel, g.file); err != nil {
			return err
		}
	}
	return nil
}

// startServer serves the demo scorecard from a temporary data directory.
func startServer(demo *backend.GameData) (string, func()) {
	cert, err := e2ehelpers.SelfSignedCert()
	if err != nil {
		log.Fatalf("Failed to generate cert: %v", err)
	}
	dataDir, err := os.MkdirTemp("", "scorecard-screenshots")
	if err != nil {
		log.Fatalf("Failed to create data dir: %v", err)
	}
	s := storage.New(dataDir, nil)
	store := backend.NewScorecardStore(dataDir, s)
	if err := store.SaveScorecard(demoID, demo); err != nil {
		log.Fatalf("Failed to save demo scorecard: %v", err)
	}
	if err := store.SaveScorecard(manualID, backend.NewGameData()); err != nil {
		log.Fatalf("Failed to save manual scorecard: %v", err)
	}

	l, err := net.Listen("tcp", "0.0.0.0:0")
	if err != nil {
		log.Fatalf("Failed to listen: %v", err)
	}
	server, err := backend.StartServer(backend.Options{
		Listener: l,
		Cert:     cert,
		DataDir:  dataDir,
		Storage:  s,
		Store:    store,
	})
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	_, port, _ := net.SplitHostPort(l.Addr().String())
	return fmt.Sprintf("https://devtest.local:%s", port), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
		os.RemoveAll(dataDir)
	}
}
