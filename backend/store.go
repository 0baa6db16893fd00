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
	"iter"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/c2FmZQ/storage"
)

// ScorecardSummary is the list view of a stored scorecard.
type ScorecardSummary struct {
	ID           string `json:"id"`
	HomeTeam     string `json:"homeTeam"`
	VisitingTeam string `json:"visitingTeam"`
	GameDate     string `json:"gameDate"`
	GameNotes    string `json:"gameNotes,omitempty"`
	Scores       Scores `json:"scores"`
}

func summarize(id string, g *GameData) ScorecardSummary {
	return ScorecardSummary{
		ID:           id,
		HomeTeam:     g.HomeTeam,
		VisitingTeam: g.VisitingTeam,
		GameDate:     g.GameDate,
		GameNotes:    g.GameNotes,
		Scores:       g.Scores,
	}
}

// ScorecardStore persists scorecards, one data file per scorecard.
type ScorecardStore struct {
	DataDir string
	Debug   bool
	storage *storage.Storage
	mu      sync.Map // Stores *sync.RWMutex for each scorecard id
	cache   sync.Map // Stores the latest snapshot []byte for each scorecard id
}

// NewScorecardStore creates a new ScorecardStore.
func NewScorecardStore(dataDir string, s *storage.Storage) *ScorecardStore {
	return &ScorecardStore{
		DataDir: dataDir,
		storage: s,
	}
}

func scorecardFilename(id string) string {
	return filepath.Join("scorecards", fmt.Sprintf("%s.json", url.PathEscape(id)))
}

func (ss *ScorecardStore) lock(id string) *sync.RWMutex {
	m, _ := ss.mu.LoadOrStore(id, &sync.RWMutex{})
	return m.(*sync.RWMutex)
}

// SaveScorecard writes the full snapshot of g atomically.
func (ss *ScorecardStore) SaveScorecard(id string, g *GameData) error {
	mutex := ss.lock(id)
	mutex.Lock()
	defer mutex.Unlock()

	if err := ss.storage.SaveDataFile(scorecardFilename(id), g); err != nil {
		return fmt.Errorf("storage.SaveDataFile: %w", err)
	}
	ss.cache.Store(id, g.Snapshot())
	return nil
}

// LoadScorecard reads a scorecard. It returns os.ErrNotExist when there is none.
// Entries that cannot be understood are dropped and logged.
func (ss *ScorecardStore) LoadScorecard(id string) (*GameData, error) {
	g, warnings, err := ss.readScorecard(id)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		log.Printf("Restore: scorecard %s: %s", id, w)
	}
	return g, nil
}

// readScorecard decodes a stored scorecard and returns the decoding warnings.
func (ss *ScorecardStore) readScorecard(id string) (*GameData, []string, error) {
	if val, ok := ss.cache.Load(id); ok {
		if ss.Debug {
			log.Printf("[CACHE] Hit for scorecard %s", id)
		}
		g, warnings := RestoreGameData(val.([]byte))
		return g, warnings, nil
	}

	mutex := ss.lock(id)
	mutex.RLock()
	defer mutex.RUnlock()

	var raw json.RawMessage
	if err := ss.storage.ReadDataFile(scorecardFilename(id), &raw); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, os.ErrNotExist
		}
		return nil, nil, fmt.Errorf("ReadDataFile: %w", err)
	}
	g, warnings, err := decodeGameData(raw)
	if err != nil {
		return nil, nil, err
	}
	ss.cache.Store(id, g.Snapshot())
	return g, warnings, nil
}

// RestoreScorecard loads a scorecard for editing. Missing or unreadable
// data yields an empty scorecard; it never fails.
func (ss *ScorecardStore) RestoreScorecard(id string) *GameData {
	g, err := ss.LoadScorecard(id)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("Restore: scorecard %s is unreadable, starting empty: %v", id, err)
		}
		return NewGameData()
	}
	for _, w := range g.Validate() {
		log.Printf("Restore: scorecard %s: %s", id, w)
	}
	return g
}

// DeleteScorecard permanently removes a scorecard.
func (ss *ScorecardStore) DeleteScorecard(id string) error {
	mutex := ss.lock(id)
	mutex.Lock()
	defer mutex.Unlock()

	ss.cache.Delete(id)
	if err := os.Remove(filepath.Join(ss.DataDir, scorecardFilename(id))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not delete scorecard file: %w", err)
	}
	return nil
}

// Exists reports whether a scorecard has been stored under id.
func (ss *ScorecardStore) Exists(id string) bool {
	if _, ok := ss.cache.Load(id); ok {
		return true
	}
	_, err := os.Stat(filepath.Join(ss.DataDir, scorecardFilename(id)))
	return err == nil
}

// ListScorecards returns an iterator over the summaries of all stored scorecards.
func (ss *ScorecardStore) ListScorecards() iter.Seq2[ScorecardSummary, error] {
	return func(yield func(ScorecardSummary, error) bool) {
		files, err := os.ReadDir(filepath.Join(ss.DataDir, "scorecards"))
		if err != nil {
			if !os.IsNotExist(err) {
				yield(ScorecardSummary{}, fmt.Errorf("could not read scorecards directory: %w", err))
			}
			return
		}
		for _, file := range files {
			if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
				continue
			}
			id, err := url.PathUnescape(strings.TrimSuffix(file.Name(), ".json"))
			if err != nil {
				continue
			}
			g, err := ss.LoadScorecard(id)
			if err != nil {
				log.Printf("Warning: could not load scorecard '%s': %v", id, err)
				continue
			}
			if !yield(summarize(id, g), nil) {
				return
			}
		}
	}
}
